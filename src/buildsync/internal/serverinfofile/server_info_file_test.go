package serverinfofile

import (
	"context"
	"testing"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/config"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

const _infoFile = "/run/buildsync/server-info.json"

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		cfg         map[string]interface{}
		errorString string
	}{
		{
			name: "valid configuration",
			cfg:  map[string]interface{}{"serverInfoFilePath": _infoFile},
		},
		{
			name:        "missing path key",
			cfg:         map[string]interface{}{},
			errorString: "missing field \"serverInfoFilePath\" in config",
		},
		{
			name:        "missing path value",
			cfg:         map[string]interface{}{"serverInfoFilePath": ""},
			errorString: "missing field \"serverInfoFilePath\" in config",
		},
		{
			name:        "incorrectly formatted entry",
			cfg:         map[string]interface{}{"serverInfoFilePath": map[string]interface{}{"path": _infoFile}},
			errorString: "getting config field \"serverInfoFilePath\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := config.NewStaticProvider(tt.cfg)
			require.NoError(t, err)

			_, err = New(Params{
				Config:    provider,
				Lifecycle: fxtest.NewLifecycle(t),
				Logger:    zap.NewNop().Sugar(),
				FS:        fs.NewInMemory(),
			})
			if tt.errorString != "" {
				assert.ErrorContains(t, err, tt.errorString)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUpdateField(t *testing.T) {
	fsys := fs.NewInMemory()
	m := module{
		infofile:     _infoFile,
		fs:           fsys,
		logger:       zap.NewNop().Sugar(),
		fileContents: make(map[string]string),
	}

	steps := []struct {
		key        string
		value      string
		expectJSON string
	}{
		{key: "key1", value: "value1", expectJSON: `{"key1":"value1"}`},
		{key: "key1", value: "value2", expectJSON: `{"key1":"value2"}`},
		{key: "key2", value: "value2", expectJSON: `{"key1":"value2","key2":"value2"}`},
	}
	for _, step := range steps {
		require.NoError(t, m.UpdateField(step.key, step.value))
		contents, err := fsys.ReadFile(_infoFile)
		require.NoError(t, err)
		assert.JSONEq(t, step.expectJSON, string(contents))
	}

	fields := m.Fields()
	assert.Equal(t, map[string]string{"key1": "value2", "key2": "value2"}, fields)
	fields["key1"] = "changed"
	assert.Equal(t, "value2", m.Fields()["key1"])
}

func TestOnStop(t *testing.T) {
	fsys := fs.NewInMemory()
	m := module{
		infofile:     _infoFile,
		fs:           fsys,
		logger:       zap.NewNop().Sugar(),
		fileContents: make(map[string]string),
	}

	// Nothing was published yet.
	assert.NoError(t, m.OnStop(context.Background()))

	require.NoError(t, m.UpdateField("key", "value"))
	require.NoError(t, m.OnStop(context.Background()))
	exists, err := fsys.FileExists(_infoFile)
	require.NoError(t, err)
	assert.False(t, exists)
}
