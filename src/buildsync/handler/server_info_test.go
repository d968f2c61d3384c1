package handler

import (
	"errors"
	"os"
	"strconv"
	"testing"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/serverinfofile/serverinfofilemock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/config"
	"go.uber.org/mock/gomock"
)

func TestOutputStorageInfo(t *testing.T) {
	pid := strconv.Itoa(os.Getpid())

	tests := []struct {
		name       string
		cfg        map[string]interface{}
		setupMocks func(infofile *serverinfofilemock.MockServerInfoFile)
		wantErr    bool
	}{
		{
			name: "all fields",
			cfg: map[string]interface{}{
				"storage":   map[string]interface{}{"metadataDir": "/var/buildsync"},
				"workspace": map[string]interface{}{"location": "/work"},
			},
			setupMocks: func(infofile *serverinfofilemock.MockServerInfoFile) {
				gomock.InOrder(
					infofile.EXPECT().UpdateField(_infoFileKeyMetadataDir, "/var/buildsync").Return(nil),
					infofile.EXPECT().UpdateField(_infoFileKeyWorkspace, "/work").Return(nil),
					infofile.EXPECT().UpdateField(_infoFileKeyPID, pid).Return(nil),
				)
			},
		},
		{
			name: "empty values are skipped",
			cfg: map[string]interface{}{
				"storage": map[string]interface{}{"metadataDir": "/var/buildsync"},
			},
			setupMocks: func(infofile *serverinfofilemock.MockServerInfoFile) {
				infofile.EXPECT().UpdateField(_infoFileKeyMetadataDir, "/var/buildsync").Return(nil)
				infofile.EXPECT().UpdateField(_infoFileKeyPID, pid).Return(nil)
			},
		},
		{
			name: "invalid storage section",
			cfg: map[string]interface{}{
				"storage": "foo",
			},
			setupMocks: func(infofile *serverinfofilemock.MockServerInfoFile) {},
			wantErr:    true,
		},
		{
			name: "write failure",
			cfg: map[string]interface{}{
				"storage": map[string]interface{}{"metadataDir": "/var/buildsync"},
			},
			setupMocks: func(infofile *serverinfofilemock.MockServerInfoFile) {
				infofile.EXPECT().UpdateField(gomock.Any(), gomock.Any()).Return(errors.New("read-only"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			infofile := serverinfofilemock.NewMockServerInfoFile(ctrl)
			tt.setupMocks(infofile)

			cfg, err := config.NewStaticProvider(tt.cfg)
			require.NoError(t, err)

			err = outputStorageInfo(cfg, infofile)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
