// Package serverinfofile publishes the connection details of the running service for clients to discover.
package serverinfofile

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/fs"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const _configKeyInfoFile = "serverInfoFilePath"

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// ServerInfoFile manages the contents of a single server info file.
// The file is rewritten on every update and removed when the service stops.
type ServerInfoFile interface {
	UpdateField(key string, value string) error
	// Fields returns a copy of the published fields.
	Fields() map[string]string
}

type module struct {
	infofile     string
	fs           fs.BuildsyncFS
	logger       *zap.SugaredLogger
	fileContents map[string]string
	mu           sync.Mutex
}

// Params define values to be used by ServerInfoFile.
type Params struct {
	fx.In

	Config    config.Provider
	Lifecycle fx.Lifecycle
	Logger    *zap.SugaredLogger
	FS        fs.BuildsyncFS
}

// New creates a new ServerInfoFile.
func New(p Params) (ServerInfoFile, error) {
	m := module{
		fs:           p.FS,
		logger:       p.Logger,
		fileContents: make(map[string]string),
	}

	if err := m.processConfig(p.Config); err != nil {
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: m.OnStop,
	})

	return &m, nil
}

func (m *module) OnStop(ctx context.Context) error {
	return m.fs.Remove(m.infofile)
}

func (m *module) UpdateField(key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fileContents[key] = value
	jsonOutput, err := json.Marshal(m.fileContents)
	if err != nil {
		return fmt.Errorf("marshalling json: %w", err)
	}

	if err := m.fs.WriteFile(m.infofile, jsonOutput); err != nil {
		return fmt.Errorf("creating info file: %w", err)
	}
	m.logger.Infow("connection info saved", zap.String("file", m.infofile), zap.String(key, value))
	return nil
}

func (m *module) Fields() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	fields := make(map[string]string, len(m.fileContents))
	for k, v := range m.fileContents {
		fields[k] = v
	}
	return fields
}

func (m *module) processConfig(cfg config.Provider) error {
	val := cfg.Get(_configKeyInfoFile)
	if err := val.Populate(&m.infofile); err != nil {
		// incorrectly formatted config
		return fmt.Errorf("getting config field %q: %w", _configKeyInfoFile, err)
	}

	if m.infofile == "" {
		// yaml is missing either the key or value
		return fmt.Errorf("missing field %q in config", _configKeyInfoFile)
	}

	return nil
}
