package mapper

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/entity"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/errors"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/model"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// RequestToSynchronizeParams maps the parameters from a jsonrpc2.Request into model.SynchronizeParams.
func RequestToSynchronizeParams(req jsonrpc2.Request) (*model.SynchronizeParams, error) {
	params := model.SynchronizeParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToWorkDoneProgressCancelParams maps the parameters from a jsonrpc2.Request into protocol.WorkDoneProgressCancelParams.
func RequestToWorkDoneProgressCancelParams(req jsonrpc2.Request) (*protocol.WorkDoneProgressCancelParams, error) {
	params := protocol.WorkDoneProgressCancelParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToProjectParams maps the parameters from a jsonrpc2.Request into model.ProjectParams.
func RequestToProjectParams(req jsonrpc2.Request) (*model.ProjectParams, error) {
	params := model.ProjectParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	if params.Project == "" {
		return nil, &errors.ConfigurationError{Field: "project", Reason: "must not be empty"}
	}
	return &params, nil
}

// RequestToBuildConfigurationParams maps the parameters from a jsonrpc2.Request into model.BuildConfigurationParams.
func RequestToBuildConfigurationParams(req jsonrpc2.Request) (*model.BuildConfigurationParams, error) {
	params := model.BuildConfigurationParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToWorkspaceConfigurationParams maps the parameters from a jsonrpc2.Request into model.WorkspaceConfigurationParams.
func RequestToWorkspaceConfigurationParams(req jsonrpc2.Request) (*model.WorkspaceConfigurationParams, error) {
	params := model.WorkspaceConfigurationParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

func wrapErrParse(err error) error {
	return fmt.Errorf("%s: %w", jsonrpc2.ErrParse, err)
}

// URIToPath converts a file URI to a local path.
func URIToPath(field string, u uri.URI) (string, error) {
	if u == "" {
		return "", &errors.ConfigurationError{Field: field, Reason: "must not be empty", Err: errors.ErrNoRootDir}
	}
	if !strings.HasPrefix(string(u), uri.FileScheme+"://") {
		return "", &errors.ConfigurationError{Field: field, Reason: fmt.Sprintf("%q is not a file URI", u)}
	}
	return u.Filename(), nil
}

// URIsToPaths converts file URIs to local paths.
func URIsToPaths(field string, uris []uri.URI) ([]string, error) {
	paths := make([]string, 0, len(uris))
	for _, u := range uris {
		path, err := URIToPath(field, u)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// BuildConfigurationParamsToEntity maps wire build settings to the entity. An empty distribution inherits from the build.
func BuildConfigurationParamsToEntity(p model.BuildConfigurationParams) (entity.BuildConfiguration, error) {
	root, err := URIToPath("rootDir", p.RootDir)
	if err != nil {
		return entity.BuildConfiguration{}, err
	}
	distribution := entity.InheritDistribution()
	if p.Distribution != "" {
		if distribution, err = entity.ParseDistribution(p.Distribution); err != nil {
			return entity.BuildConfiguration{}, &errors.ConfigurationError{Field: "distribution", Reason: "cannot be parsed", Err: err}
		}
	}
	return entity.BuildConfiguration{
		RootDir:                   root,
		Distribution:              distribution,
		OverrideWorkspaceSettings: p.OverrideWorkspaceSettings,
		GradleUserHome:            p.GradleUserHome,
		JavaHome:                  p.JavaHome,
		JVMArguments:              slices.Clone(p.JVMArguments),
		Arguments:                 slices.Clone(p.Arguments),
		OfflineMode:               p.OfflineMode,
		AutoSync:                  p.AutoSync,
		BuildScansEnabled:         p.BuildScansEnabled,
	}, nil
}

// BuildConfigurationToParams maps build settings to their wire representation.
func BuildConfigurationToParams(c entity.BuildConfiguration) model.BuildConfigurationParams {
	return model.BuildConfigurationParams{
		RootDir:                   uri.File(c.RootDir),
		Distribution:              c.Distribution.String(),
		OverrideWorkspaceSettings: c.OverrideWorkspaceSettings,
		GradleUserHome:            c.GradleUserHome,
		JavaHome:                  c.JavaHome,
		JVMArguments:              slices.Clone(c.JVMArguments),
		Arguments:                 slices.Clone(c.Arguments),
		OfflineMode:               c.OfflineMode,
		AutoSync:                  c.AutoSync,
		BuildScansEnabled:         c.BuildScansEnabled,
	}
}

// WorkspaceConfigurationToParams maps the workspace settings to their wire representation.
func WorkspaceConfigurationToParams(c entity.WorkspaceConfiguration) model.WorkspaceConfigurationParams {
	return model.WorkspaceConfigurationParams{
		GradleUserHome: c.GradleUserHome,
		Offline:        c.Offline,
		AutoSync:       c.AutoSync,
	}
}

// WorkspaceConfigurationParamsToEntity maps wire workspace settings to the entity.
func WorkspaceConfigurationParamsToEntity(p model.WorkspaceConfigurationParams) entity.WorkspaceConfiguration {
	return entity.WorkspaceConfiguration{
		GradleUserHome: p.GradleUserHome,
		Offline:        p.Offline,
		AutoSync:       p.AutoSync,
	}
}

// PersistentModelToLoadModelResult maps a persistent model to the result of buildsync/loadModel.
func PersistentModelToLoadModelResult(m entity.PersistentModel) (*model.LoadModelResult, error) {
	result := &model.LoadModelResult{Project: string(m.Project()), Present: m.Present()}
	if !m.Present() {
		return result, nil
	}
	attrs, err := m.Attributes()
	if err != nil {
		return nil, err
	}
	result.Model = &model.ProjectModel{
		RootDir:          uri.File(attrs.RootDir),
		ProjectDir:       uri.File(attrs.ProjectDir),
		ProjectPath:      attrs.ProjectPath,
		BuildDir:         attrs.BuildDir,
		BuildScript:      attrs.BuildScript,
		SubprojectPaths:  attrs.SubprojectPaths,
		SourceRoots:      attrs.SourceRoots,
		DerivedResources: attrs.DerivedResources,
		LinkedResources:  attrs.LinkedResources,
		Natures:          attrs.Natures,
		Classpath:        attrs.Classpath,
		GradleVersion:    attrs.GradleVersion,
	}
	if !attrs.SyncedAt.IsZero() {
		result.Model.SyncedAt = attrs.SyncedAt.UTC().Format(time.RFC3339Nano)
	}
	return result, nil
}

// SubprojectToConfirmImportParams maps a discovered project to the parameters of buildsync/confirmImport.
func SubprojectToConfirmImportParams(rootDir string, sub entity.Subproject) model.ConfirmImportParams {
	return model.ConfirmImportParams{
		RootDir:     uri.File(rootDir),
		ProjectPath: sub.Path,
		ProjectDir:  uri.File(sub.ProjectDir),
		Name:        sub.Name,
	}
}
