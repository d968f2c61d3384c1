// Package mapper maps between buildsync entities and their repository models.
package mapper

import (
	"fmt"
	"time"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/entity"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/model"
)

// PersistentModelToModel maps a present PersistentModel entity to its stored representation.
func PersistentModelToModel(m entity.PersistentModel) (*model.PersistentModel, error) {
	attrs, err := m.Attributes()
	if err != nil {
		return nil, err
	}
	var syncedAt int64
	if !attrs.SyncedAt.IsZero() {
		syncedAt = attrs.SyncedAt.UnixNano()
	}
	return &model.PersistentModel{
		Version:          model.PersistentModelRecordVersion,
		Project:          string(m.Project()),
		RootDir:          attrs.RootDir,
		ProjectDir:       attrs.ProjectDir,
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
		SyncedAtUnixNano: syncedAt,
	}, nil
}

// ModelToPersistentModel maps a stored record to a present PersistentModel entity.
func ModelToPersistentModel(m *model.PersistentModel) (entity.PersistentModel, error) {
	if m.Version != model.PersistentModelRecordVersion {
		return entity.PersistentModel{}, fmt.Errorf("unsupported persistent model version %d", m.Version)
	}
	var syncedAt time.Time
	if m.SyncedAtUnixNano != 0 {
		syncedAt = time.Unix(0, m.SyncedAtUnixNano)
	}
	return entity.NewPersistentModel(entity.ProjectID(m.Project), entity.ModelAttributes{
		RootDir:          m.RootDir,
		ProjectDir:       m.ProjectDir,
		ProjectPath:      m.ProjectPath,
		BuildDir:         m.BuildDir,
		BuildScript:      m.BuildScript,
		SubprojectPaths:  m.SubprojectPaths,
		SourceRoots:      m.SourceRoots,
		DerivedResources: m.DerivedResources,
		LinkedResources:  m.LinkedResources,
		Natures:          m.Natures,
		Classpath:        m.Classpath,
		GradleVersion:    m.GradleVersion,
		SyncedAt:         syncedAt,
	}), nil
}
