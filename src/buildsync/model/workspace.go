package model

// WorkspaceRegistry is the stored list of managed workspace projects.
type WorkspaceRegistry struct {
	Projects []WorkspaceProject `yaml:"projects"`
}

// WorkspaceProject is the stored representation of a workspace project.
type WorkspaceProject struct {
	Name     string   `yaml:"name"`
	Location string   `yaml:"location"`
	RootDir  string   `yaml:"rootDir"`
	Path     string   `yaml:"path"`
	Natures  []string `yaml:"natures,omitempty"`
}

// WorkspaceConfiguration is the stored representation of the workspace wide settings.
type WorkspaceConfiguration struct {
	GradleUserHome string `yaml:"gradleUserHome,omitempty"`
	Offline        bool   `yaml:"offline"`
	AutoSync       bool   `yaml:"autoSync"`
}
