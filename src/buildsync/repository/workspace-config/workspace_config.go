// Package workspaceconfig holds the process wide WorkspaceConfiguration.
package workspaceconfig

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/entity"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/errors"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/fs"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/mapper"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/model"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Module provides the workspace configuration Holder.
var Module = fx.Provide(New)

const (
	_nameKey = "workspace_config"
	_file    = "workspace.yaml"
)

// Holder gives access to the workspace configuration. It is loaded once and changes only through Save.
type Holder interface {
	// Get returns a copy of the current configuration.
	Get() entity.WorkspaceConfiguration
	// Save persists c and makes it the current configuration.
	Save(ctx context.Context, c entity.WorkspaceConfiguration) error
	// Location is the directory of the workspace itself. Empty when not configured.
	Location() string
}

// Config is the workspace section of the configuration.
type Config struct {
	Location string                        `yaml:"location"`
	Defaults entity.WorkspaceConfiguration `yaml:"defaults"`
}

// Params are the dependencies of the Holder.
type Params struct {
	fx.In

	Config config.Provider
	Logger *zap.SugaredLogger
	FS     fs.MetadataFS
}

type holder struct {
	mu       sync.RWMutex
	current  entity.WorkspaceConfiguration
	location string
	fs       fs.BuildsyncFS
	logger   *zap.SugaredLogger
}

// New loads the configured defaults and then the persisted configuration, if any.
func New(p Params) (Holder, error) {
	var cfg Config
	if err := p.Config.Get(entity.WorkspaceConfigKey).Populate(&cfg); err != nil {
		return nil, fmt.Errorf("getting configuration for %q: %w", entity.WorkspaceConfigKey, err)
	}
	h := &holder{
		current: cfg.Defaults,
		fs:      p.FS,
		logger:  p.Logger.With("plugin", _nameKey),
	}
	if cfg.Location != "" {
		abs, err := filepath.Abs(cfg.Location)
		if err != nil {
			return nil, &errors.ConfigurationError{Field: "workspace.location", Reason: "cannot be made absolute", Err: err}
		}
		h.location = abs
	}

	exists, err := h.fs.FileExists(_file)
	if err != nil {
		return nil, err
	}
	if exists {
		data, err := h.fs.ReadFile(_file)
		if err != nil {
			return nil, err
		}
		var stored model.WorkspaceConfiguration
		if err := yaml.Unmarshal(data, &stored); err != nil {
			// The defaults stay in effect until the next Save.
			h.logger.Warnw("Ignoring unreadable workspace configuration", "error", err)
		} else {
			h.current = mapper.ModelToWorkspaceConfiguration(stored)
		}
	}
	h.logger.Infow("Loaded workspace configuration", "offline", h.current.Offline, "autoSync", h.current.AutoSync)
	return h, nil
}

func (h *holder) Get() entity.WorkspaceConfiguration {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

func (h *holder) Location() string {
	return h.location
}

func (h *holder) Save(ctx context.Context, c entity.WorkspaceConfiguration) error {
	stored := mapper.WorkspaceConfigurationToModel(c)
	data, err := yaml.Marshal(&stored)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.fs.WriteFile(_file, data); err != nil {
		return &errors.WorkspaceError{Op: "save configuration", Err: err}
	}
	h.current = c
	return nil
}
