package fs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/config"
)

func TestMkdirAll(t *testing.T) {
	dir := t.TempDir()
	fs := New()
	require.NoError(t, fs.MkdirAll(filepath.Join(dir, "foo/bar")))

	exists, err := fs.DirExists(filepath.Join(dir, "foo/bar"))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "build.gradle")
	require.NoError(t, os.WriteFile(file, []byte("plugins {}"), 0o644))
	fs := New()

	tests := []struct {
		name       string
		path       string
		dirExists  bool
		fileExists bool
	}{
		{name: "dir", path: dir, dirExists: true},
		{name: "file", path: file, fileExists: true},
		{name: "missing", path: dir + "foo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := fs.DirExists(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.dirExists, d)
			f, err := fs.FileExists(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.fileExists, f)
		})
	}
}

func TestWriteFileAtomic(t *testing.T) {
	for name, fs := range map[string]BuildsyncFS{
		"os":     New(),
		"memory": NewInMemory(),
	} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			target := filepath.Join(dir, "nested", "record")

			require.NoError(t, fs.WriteFile(target, []byte("first")))
			require.NoError(t, fs.WriteFile(target, []byte("second")))

			data, err := fs.ReadFile(target)
			require.NoError(t, err)
			assert.Equal(t, "second", string(data))

			entries, err := fs.ReadDir(filepath.Join(dir, "nested"))
			require.NoError(t, err)
			require.Len(t, entries, 1, "no temporary files are left behind")
			assert.Equal(t, "record", entries[0].Name())
		})
	}
}

func TestWriteTempAndRename(t *testing.T) {
	fs := NewInMemory()
	tmp, err := fs.WriteTemp("projects/app", ".model.tmp-", []byte("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(tmp), ".model.tmp-"))

	require.NoError(t, fs.Rename(tmp, fs.Join("projects", "app", "model")))
	exists, err := fs.FileExists("projects/app/model")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestTempFile(t *testing.T) {
	fs := NewInMemory()
	require.NoError(t, fs.MkdirAll("logs"))
	file, err := fs.TempFile("logs", "gradle-")
	require.NoError(t, err)
	_, err = file.Write([]byte("BUILD SUCCESSFUL"))
	require.NoError(t, err)
	require.NoError(t, file.Close())

	data, err := fs.ReadFile(file.Name())
	require.NoError(t, err)
	assert.Equal(t, "BUILD SUCCESSFUL", string(data))
	assert.True(t, strings.HasPrefix(filepath.Base(file.Name()), "gradle-"))
}

func TestRemove(t *testing.T) {
	fs := NewInMemory()
	require.NoError(t, fs.WriteFile("a/b", []byte("x")))
	require.NoError(t, fs.Remove("a/b"))
	require.NoError(t, fs.Remove("a/b"), "removing a missing file is not an error")

	require.NoError(t, fs.WriteFile("c/d/e", []byte("x")))
	require.NoError(t, fs.RemoveAll("c"))
	exists, err := fs.DirExists("c")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserHomeDir(t *testing.T) {
	t.Setenv("HOME", "/home/test")
	dir, err := New().UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, "/home/test", dir)
}

func TestNewMetadata(t *testing.T) {
	t.Run("configured", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "metadata")
		cfg, err := config.NewStaticProvider(map[string]any{
			"storage": map[string]any{"metadataDir": dir},
		})
		require.NoError(t, err)

		metadata, err := NewMetadata(cfg)
		require.NoError(t, err)
		require.NoError(t, metadata.WriteFile("workspace.yaml", []byte("offline: true")))

		data, err := os.ReadFile(filepath.Join(dir, "workspace.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "offline: true", string(data))
	})

	t.Run("missing", func(t *testing.T) {
		cfg, err := config.NewStaticProvider(map[string]any{})
		require.NoError(t, err)
		_, err = NewMetadata(cfg)
		assert.Error(t, err)
	})
}
