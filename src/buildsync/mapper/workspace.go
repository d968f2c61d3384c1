package mapper

import (
	"slices"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/entity"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/model"
)

// ProjectToModel maps a workspace Project entity to its stored representation.
func ProjectToModel(p entity.Project) model.WorkspaceProject {
	return model.WorkspaceProject{
		Name:     string(p.ID),
		Location: p.Location,
		RootDir:  p.RootDir,
		Path:     p.Path,
		Natures:  slices.Clone(p.Natures),
	}
}

// ModelToProject maps a stored workspace project to its entity equivalent.
func ModelToProject(m model.WorkspaceProject) entity.Project {
	return entity.Project{
		ID:       entity.ProjectID(m.Name),
		Location: m.Location,
		RootDir:  m.RootDir,
		Path:     m.Path,
		Natures:  slices.Clone(m.Natures),
	}
}

// WorkspaceConfigurationToModel maps the workspace settings to their stored representation.
func WorkspaceConfigurationToModel(c entity.WorkspaceConfiguration) model.WorkspaceConfiguration {
	return model.WorkspaceConfiguration{
		GradleUserHome: c.GradleUserHome,
		Offline:        c.Offline,
		AutoSync:       c.AutoSync,
	}
}

// ModelToWorkspaceConfiguration maps stored workspace settings to their entity equivalent.
func ModelToWorkspaceConfiguration(m model.WorkspaceConfiguration) entity.WorkspaceConfiguration {
	return entity.WorkspaceConfiguration{
		GradleUserHome: m.GradleUserHome,
		Offline:        m.Offline,
		AutoSync:       m.AutoSync,
	}
}
