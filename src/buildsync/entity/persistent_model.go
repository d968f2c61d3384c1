package entity

import (
	"fmt"
	"slices"
	"time"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/errors"
)

// ProjectID identifies a workspace project. It is the project's unique workspace name.
type ProjectID string

// ModelAttributes are the structural facts recorded for a project by its last successful synchronization.
type ModelAttributes struct {
	RootDir         string
	ProjectDir      string
	ProjectPath     string
	BuildDir        string
	BuildScript     string
	SubprojectPaths []string
	// SourceRoots are the derived source directories, relative to ProjectDir.
	SourceRoots      []string
	DerivedResources []string
	LinkedResources  []string
	Natures          []string
	Classpath        []string
	GradleVersion    string
	SyncedAt         time.Time
}

// PersistentModel is a project's durable structural snapshot. It is either present or absent.
type PersistentModel struct {
	project ProjectID
	attrs   *ModelAttributes
}

// NewPersistentModel returns a present model.
func NewPersistentModel(project ProjectID, attrs ModelAttributes) PersistentModel {
	attrs.SubprojectPaths = slices.Clone(attrs.SubprojectPaths)
	attrs.SourceRoots = slices.Clone(attrs.SourceRoots)
	attrs.DerivedResources = slices.Clone(attrs.DerivedResources)
	attrs.LinkedResources = slices.Clone(attrs.LinkedResources)
	attrs.Natures = slices.Clone(attrs.Natures)
	attrs.Classpath = slices.Clone(attrs.Classpath)
	if !attrs.SyncedAt.IsZero() {
		// Drop the monotonic reading and location so that persisted copies compare equal.
		attrs.SyncedAt = time.Unix(0, attrs.SyncedAt.UnixNano()).UTC()
	}
	return PersistentModel{project: project, attrs: &attrs}
}

// AbsentModel returns the sentinel model for a project without a snapshot.
func AbsentModel(project ProjectID) PersistentModel {
	return PersistentModel{project: project}
}

// Project returns the identity of the project the model belongs to. Valid for both variants.
func (m PersistentModel) Project() ProjectID {
	return m.project
}

// Present reports whether the model carries attributes.
func (m PersistentModel) Present() bool {
	return m.attrs != nil
}

// Attributes returns a copy of all attributes, failing with an illegal-state error for an absent model.
func (m PersistentModel) Attributes() (ModelAttributes, error) {
	if err := m.checkPresent(); err != nil {
		return ModelAttributes{}, err
	}
	attrs := *m.attrs
	attrs.SubprojectPaths = slices.Clone(attrs.SubprojectPaths)
	attrs.SourceRoots = slices.Clone(attrs.SourceRoots)
	attrs.DerivedResources = slices.Clone(attrs.DerivedResources)
	attrs.LinkedResources = slices.Clone(attrs.LinkedResources)
	attrs.Natures = slices.Clone(attrs.Natures)
	attrs.Classpath = slices.Clone(attrs.Classpath)
	return attrs, nil
}

// BuildDir returns the build output directory.
func (m PersistentModel) BuildDir() (string, error) {
	if err := m.checkPresent(); err != nil {
		return "", err
	}
	return m.attrs.BuildDir, nil
}

// SubprojectPaths returns the paths of the direct subprojects.
func (m PersistentModel) SubprojectPaths() ([]string, error) {
	if err := m.checkPresent(); err != nil {
		return nil, err
	}
	return slices.Clone(m.attrs.SubprojectPaths), nil
}

// SourceRoots returns the derived source roots.
func (m PersistentModel) SourceRoots() ([]string, error) {
	if err := m.checkPresent(); err != nil {
		return nil, err
	}
	return slices.Clone(m.attrs.SourceRoots), nil
}

// Equal reports whether both models belong to the same project and carry the same attributes.
func (m PersistentModel) Equal(other PersistentModel) bool {
	if m.project != other.project || m.Present() != other.Present() {
		return false
	}
	if !m.Present() {
		return true
	}
	a, b := m.attrs, other.attrs
	return a.RootDir == b.RootDir &&
		a.ProjectDir == b.ProjectDir &&
		a.ProjectPath == b.ProjectPath &&
		a.BuildDir == b.BuildDir &&
		a.BuildScript == b.BuildScript &&
		a.GradleVersion == b.GradleVersion &&
		a.SyncedAt.Equal(b.SyncedAt) &&
		slices.Equal(a.SubprojectPaths, b.SubprojectPaths) &&
		slices.Equal(a.SourceRoots, b.SourceRoots) &&
		slices.Equal(a.DerivedResources, b.DerivedResources) &&
		slices.Equal(a.LinkedResources, b.LinkedResources) &&
		slices.Equal(a.Natures, b.Natures) &&
		slices.Equal(a.Classpath, b.Classpath)
}

func (m PersistentModel) checkPresent() error {
	if m.attrs == nil {
		return &errors.IllegalStateError{
			Reason: fmt.Sprintf("no persistent model is available for project %q", m.project),
		}
	}
	return nil
}
