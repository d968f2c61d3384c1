// Package fs wraps the filesystem operations used by buildsync on top of go-billy.
package fs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/config"
	"go.uber.org/fx"
)

// Module is the Fx module for this package.
var Module = fx.Options(
	fx.Provide(New),
	fx.Provide(NewMetadata),
)

const _storageConfigKey = "storage"

// BuildsyncFS wraps the filesystem operations used by buildsync.
type BuildsyncFS interface {
	UserHomeDir() (string, error)
	MkdirAll(path string) error
	DirExists(path string) (bool, error)
	FileExists(path string) (bool, error)
	ReadDir(path string) ([]fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	// WriteFile replaces name atomically: readers observe either the old or the new content.
	WriteFile(name string, data []byte) error
	// WriteTemp writes data to a new synced file in dir and returns its name.
	WriteTemp(dir, prefix string, data []byte) (string, error)
	// TempFile creates a new file in dir and leaves it open for writing.
	TempFile(dir, prefix string) (billy.File, error)
	Rename(from, to string) error
	// Remove deletes name. A missing file is not an error.
	Remove(name string) error
	RemoveAll(path string) error
	Join(elem ...string) string
}

// MetadataFS is the private metadata region of the service, rooted at storage.metadataDir.
type MetadataFS interface {
	BuildsyncFS
}

// StorageConfig configures the metadata region.
type StorageConfig struct {
	MetadataDir string `yaml:"metadataDir"`
}

type fsImpl struct {
	fs billy.Filesystem
}

// New creates a BuildsyncFS over the operating system filesystem. Paths are absolute.
func New() BuildsyncFS {
	return NewBilly(osfs.New("/"))
}

// NewMetadata creates the metadata region configured under storage.metadataDir.
func NewMetadata(cfg config.Provider) (MetadataFS, error) {
	var storage StorageConfig
	if err := cfg.Get(_storageConfigKey).Populate(&storage); err != nil {
		return nil, fmt.Errorf("loading storage config: %w", err)
	}
	if storage.MetadataDir == "" {
		return nil, errors.New("storage.metadataDir is required")
	}
	if err := os.MkdirAll(storage.MetadataDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("creating metadata directory: %w", err)
	}
	return NewBilly(osfs.New(storage.MetadataDir)), nil
}

// NewBilly wraps an arbitrary billy filesystem.
func NewBilly(fsys billy.Filesystem) BuildsyncFS {
	return &fsImpl{fs: fsys}
}

// NewInMemory returns an empty in-memory filesystem.
func NewInMemory() BuildsyncFS {
	return NewBilly(memfs.New())
}

func (*fsImpl) UserHomeDir() (string, error) { return os.UserHomeDir() }

func (f *fsImpl) MkdirAll(path string) error {
	if err := f.fs.MkdirAll(path, os.ModePerm); err != nil {
		return fmt.Errorf("mkdirall %q: %w", path, err)
	}
	return nil
}

func (f *fsImpl) DirExists(path string) (bool, error) {
	info, err := f.stat(path)
	if err != nil || info == nil {
		return false, err
	}
	return info.IsDir(), nil
}

func (f *fsImpl) FileExists(path string) (bool, error) {
	info, err := f.stat(path)
	if err != nil || info == nil {
		return false, err
	}
	return !info.IsDir(), nil
}

func (f *fsImpl) stat(path string) (fs.FileInfo, error) {
	info, err := f.fs.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat %q: %w", path, err)
	}
	return info, nil
}

func (f *fsImpl) ReadDir(path string) ([]fs.FileInfo, error) {
	return f.fs.ReadDir(path)
}

func (f *fsImpl) ReadFile(name string) ([]byte, error) {
	return util.ReadFile(f.fs, name)
}

func (f *fsImpl) WriteFile(name string, data []byte) error {
	tmp, err := f.WriteTemp(filepath.Dir(name), "."+filepath.Base(name)+".tmp-", data)
	if err != nil {
		return err
	}
	if err := f.fs.Rename(tmp, name); err != nil {
		_ = f.fs.Remove(tmp)
		return fmt.Errorf("rename %q: %w", name, err)
	}
	return nil
}

func (f *fsImpl) WriteTemp(dir, prefix string, data []byte) (string, error) {
	if err := f.MkdirAll(dir); err != nil {
		return "", err
	}
	file, err := util.TempFile(f.fs, dir, prefix)
	if err != nil {
		return "", fmt.Errorf("create temp file in %q: %w", dir, err)
	}
	name := file.Name()
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		_ = f.fs.Remove(name)
		return "", fmt.Errorf("write %q: %w", name, err)
	}
	if syncer, ok := file.(interface{ Sync() error }); ok {
		if err := syncer.Sync(); err != nil {
			_ = file.Close()
			_ = f.fs.Remove(name)
			return "", fmt.Errorf("sync %q: %w", name, err)
		}
	}
	if err := file.Close(); err != nil {
		_ = f.fs.Remove(name)
		return "", fmt.Errorf("close %q: %w", name, err)
	}
	return name, nil
}

func (f *fsImpl) TempFile(dir, prefix string) (billy.File, error) {
	return util.TempFile(f.fs, dir, prefix)
}

func (f *fsImpl) Rename(from, to string) error {
	return f.fs.Rename(from, to)
}

func (f *fsImpl) Remove(name string) error {
	if err := f.fs.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (f *fsImpl) RemoveAll(path string) error {
	return util.RemoveAll(f.fs, path)
}

func (f *fsImpl) Join(elem ...string) string {
	return f.fs.Join(elem...)
}
