// Package buildconfig persists the per-root BuildConfiguration in the root's preference file.
package buildconfig

import (
	"bytes"
	"context"
	"path/filepath"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/entity"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/errors"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/fs"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/preferences"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/mapper"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/model"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the build configuration Repository.
var Module = fx.Provide(New)

const (
	_nameKey     = "build_config"
	_settingsDir = ".settings"
	_prefsFile   = "org.eclipse.buildship.core.prefs"
)

// Repository loads and stores build configurations keyed by root directory.
type Repository interface {
	// Load returns the persisted configuration of rootDir, or the defaults when none is persisted.
	Load(ctx context.Context, rootDir string) (entity.BuildConfiguration, error)
	// Save persists the configuration. Entries of the preference file not managed here are preserved.
	Save(ctx context.Context, c entity.BuildConfiguration) error
	// Delete removes the persisted configuration of rootDir. Deleting a missing configuration is not an error.
	Delete(ctx context.Context, rootDir string) error
}

// Params are the dependencies of the Repository.
type Params struct {
	fx.In

	Logger *zap.SugaredLogger
	FS     fs.BuildsyncFS
}

type repository struct {
	fs     fs.BuildsyncFS
	logger *zap.SugaredLogger
}

// New returns a Repository writing into the build roots.
func New(p Params) Repository {
	return &repository{
		fs:     p.FS,
		logger: p.Logger.With("plugin", _nameKey),
	}
}

// PrefsPath returns the location of the preference file of rootDir.
func PrefsPath(rootDir string) string {
	return filepath.Join(rootDir, _settingsDir, _prefsFile)
}

func canonicalRoot(rootDir string) (string, error) {
	if rootDir == "" {
		return "", &errors.ConfigurationError{Field: "rootDir", Reason: "must not be empty", Err: errors.ErrNoRootDir}
	}
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return "", &errors.ConfigurationError{Field: "rootDir", Reason: "cannot be made absolute", Err: err}
	}
	return abs, nil
}

func (r *repository) Load(ctx context.Context, rootDir string) (entity.BuildConfiguration, error) {
	root, err := canonicalRoot(rootDir)
	if err != nil {
		return entity.BuildConfiguration{}, err
	}
	prefs, err := r.read(root)
	if err != nil {
		return entity.BuildConfiguration{}, err
	}
	return mapper.ModelToBuildConfiguration(root, model.BuildConfiguration(prefs)), nil
}

// read returns the entries of the preference file, or none when it does not exist.
func (r *repository) read(root string) (preferences.Preferences, error) {
	path := PrefsPath(root)
	exists, err := r.fs.FileExists(path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return preferences.Preferences{}, nil
	}
	data, err := r.fs.ReadFile(path)
	if err != nil {
		return nil, err
	}
	prefs, err := preferences.Parse(bytes.NewReader(data))
	if err != nil {
		r.logger.Warnw("Ignoring malformed build configuration entries", "path", path, "error", err)
	}
	return prefs, nil
}

func (r *repository) Save(ctx context.Context, c entity.BuildConfiguration) error {
	root, err := canonicalRoot(c.RootDir)
	if err != nil {
		return err
	}
	prefs, err := r.read(root)
	if err != nil {
		return err
	}

	delete(prefs, model.BuildConfigDistribution)
	for _, key := range model.BuildConfigOverrideKeys {
		delete(prefs, key)
	}
	for k, v := range mapper.BuildConfigurationToModel(c) {
		prefs[k] = v
	}

	var buf bytes.Buffer
	if err := preferences.Write(&buf, prefs); err != nil {
		return err
	}
	if err := r.fs.WriteFile(PrefsPath(root), buf.Bytes()); err != nil {
		return err
	}
	r.logger.Debugw("Saved build configuration", "rootDir", root, "override", c.OverrideWorkspaceSettings)
	return nil
}

func (r *repository) Delete(ctx context.Context, rootDir string) error {
	root, err := canonicalRoot(rootDir)
	if err != nil {
		return err
	}
	return r.fs.Remove(PrefsPath(root))
}
