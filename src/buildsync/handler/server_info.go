package handler

import (
	"fmt"
	"os"
	"strconv"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/entity"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/fs"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/serverinfofile"
	"go.uber.org/config"
)

const (
	_infoFileKeyMetadataDir = "metadata-dir"
	_infoFileKeyWorkspace   = "workspace-location"
	_infoFileKeyPID         = "pid"
)

// outputStorageInfo publishes the metadata directory, the workspace location and the process id.
func outputStorageInfo(cfg config.Provider, infofile serverinfofile.ServerInfoFile) error {
	var storage fs.StorageConfig
	if err := cfg.Get(entity.StorageConfigKey).Populate(&storage); err != nil {
		return fmt.Errorf("loading storage config: %w", err)
	}
	var workspace struct {
		Location string `yaml:"location"`
	}
	if err := cfg.Get(entity.WorkspaceConfigKey).Populate(&workspace); err != nil {
		return fmt.Errorf("loading workspace config: %w", err)
	}

	fields := []struct{ key, value string }{
		{_infoFileKeyMetadataDir, storage.MetadataDir},
		{_infoFileKeyWorkspace, workspace.Location},
		{_infoFileKeyPID, strconv.Itoa(os.Getpid())},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := infofile.UpdateField(f.key, f.value); err != nil {
			return fmt.Errorf("outputting %q to info file: %w", f.key, err)
		}
	}
	return nil
}
