package model

import (
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// SynchronizeParams are the parameters of buildsync/synchronize.
type SynchronizeParams struct {
	Roots []uri.URI `json:"roots"`
	// Policy is one of "import", "skip" or "prompt". Empty means "import".
	Policy string `json:"policy,omitempty"`
	// WorkDoneToken receives $/progress notifications and identifies the run for cancellation.
	WorkDoneToken *protocol.ProgressToken `json:"workDoneToken,omitempty"`
}

// ConfirmImportParams are sent to the client with buildsync/confirmImport.
type ConfirmImportParams struct {
	RootDir     uri.URI `json:"rootDir"`
	ProjectPath string  `json:"projectPath"`
	ProjectDir  uri.URI `json:"projectDir"`
	Name        string  `json:"name,omitempty"`
}

// ConfirmImportResult is the client's answer to buildsync/confirmImport.
type ConfirmImportResult struct {
	Import bool `json:"import"`
}

// ProjectParams identify a managed project.
type ProjectParams struct {
	Project string `json:"project"`
}

// LoadModelResult is the result of buildsync/loadModel.
type LoadModelResult struct {
	Project string `json:"project"`
	Present bool   `json:"present"`
	// Model is set when Present is true.
	Model *ProjectModel `json:"model,omitempty"`
}

// ProjectModel is the wire representation of a present persistent model.
type ProjectModel struct {
	RootDir          uri.URI  `json:"rootDir"`
	ProjectDir       uri.URI  `json:"projectDir"`
	ProjectPath      string   `json:"projectPath"`
	BuildDir         string   `json:"buildDir"`
	BuildScript      string   `json:"buildScript,omitempty"`
	SubprojectPaths  []string `json:"subprojectPaths,omitempty"`
	SourceRoots      []string `json:"sourceRoots,omitempty"`
	DerivedResources []string `json:"derivedResources,omitempty"`
	LinkedResources  []string `json:"linkedResources,omitempty"`
	Natures          []string `json:"natures,omitempty"`
	Classpath        []string `json:"classpath,omitempty"`
	GradleVersion    string   `json:"gradleVersion,omitempty"`
	SyncedAt         string   `json:"syncedAt,omitempty"`
}

// BuildConfigurationParams are the parameters of buildsync/buildConfiguration and buildsync/saveBuildConfiguration.
type BuildConfigurationParams struct {
	RootDir                   uri.URI  `json:"rootDir"`
	Distribution              string   `json:"distribution,omitempty"`
	OverrideWorkspaceSettings bool     `json:"overrideWorkspaceSettings"`
	GradleUserHome            string   `json:"gradleUserHome,omitempty"`
	JavaHome                  string   `json:"javaHome,omitempty"`
	JVMArguments              []string `json:"jvmArguments,omitempty"`
	Arguments                 []string `json:"arguments,omitempty"`
	OfflineMode               bool     `json:"offlineMode"`
	AutoSync                  bool     `json:"autoSync"`
	BuildScansEnabled         bool     `json:"buildScansEnabled"`
}

// WorkspaceConfigurationParams carry the workspace wide settings on the wire.
type WorkspaceConfigurationParams struct {
	GradleUserHome string `json:"gradleUserHome,omitempty"`
	Offline        bool   `json:"offline"`
	AutoSync       bool   `json:"autoSync"`
}
