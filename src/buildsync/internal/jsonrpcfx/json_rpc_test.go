package jsonrpcfx

import (
	"context"
	"net"
	"testing"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/factory"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/serverinfofile/serverinfofilemock"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/jsonrpc2"
	"go.uber.org/config"
	"go.uber.org/fx/fxtest"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func staticConfig(t *testing.T, cfg map[string]interface{}) config.Provider {
	provider, err := config.NewStaticProvider(cfg)
	require.NoError(t, err)
	return provider
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr bool
	}{
		{
			name:    "missing required params",
			params:  Params{},
			wantErr: true,
		},
		{
			name: "all required params are present",
			params: Params{
				Lifecycle: fxtest.NewLifecycle(t),
				Config:    staticConfig(t, map[string]interface{}{"jsonrpc": map[string]interface{}{"address": "127.0.0.1:0"}}),
				Logger:    zap.NewNop().Sugar(),
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.params)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegisterConnectionManager(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := module{}

	mockConnectionManager := NewMockConnectionManager(ctrl)
	assert.NoError(t, m.RegisterConnectionManager(mockConnectionManager))
	assert.Error(t, m.RegisterConnectionManager(mockConnectionManager))
}

func TestProcessConfig(t *testing.T) {
	tests := []struct {
		name        string
		cfg         map[string]interface{}
		errorString string
	}{
		{
			name: "valid configuration",
			cfg:  map[string]interface{}{"jsonrpc": map[string]interface{}{"address": "127.0.0.1:0"}},
		},
		{
			name:        "missing address key",
			cfg:         map[string]interface{}{"jsonrpc": map[string]interface{}{}},
			errorString: "missing field \"jsonrpc.address\" in config",
		},
		{
			name:        "incorrectly formatted entry",
			cfg:         map[string]interface{}{"jsonrpc": map[string]interface{}{"address": map[string]interface{}{"host": "localhost"}}},
			errorString: "getting config field \"jsonrpc.address\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := module{logger: zap.NewNop().Sugar()}
			err := m.processConfig(staticConfig(t, tt.cfg))
			if tt.errorString != "" {
				assert.ErrorContains(t, err, tt.errorString)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSetup(t *testing.T) {
	m := module{logger: zap.NewNop().Sugar()}
	assert.Error(t, m.setup())
	assert.NoError(t, m.OnStop(context.Background()), "stopping a module that never started")
}

func TestServeStreamWithoutConnectionManager(t *testing.T) {
	m := module{logger: zap.NewNop().Sugar()}
	client, server := net.Pipe()
	defer client.Close()
	conn := jsonrpc2.NewConn(jsonrpc2.NewStream(server))
	defer conn.Close()

	assert.Error(t, m.ServeStream(context.Background(), conn))
}

func TestServe(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	infoFile := serverinfofilemock.NewMockServerInfoFile(ctrl)
	var address string
	infoFile.EXPECT().UpdateField(_outputKey, gomock.Any()).DoAndReturn(func(_, value string) error {
		address = value
		return nil
	})

	lc := fxtest.NewLifecycle(t)
	mod, err := New(Params{
		Config:         staticConfig(t, map[string]interface{}{"jsonrpc": map[string]interface{}{"address": "127.0.0.1:0"}}),
		Lifecycle:      lc,
		Logger:         zap.NewNop().Sugar(),
		ServerInfoFile: infoFile,
	})
	require.NoError(t, err)

	id := factory.UUID()
	router := NewMockRouter(ctrl)
	router.EXPECT().UUID().Return(id).AnyTimes()
	router.EXPECT().HandleReq(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
			assert.Equal(t, "buildsync/ping", req.Method())
			return reply(ctx, "pong", nil)
		})

	removed := make(chan struct{})
	connectionManager := NewMockConnectionManager(ctrl)
	connectionManager.EXPECT().NewConnection(gomock.Any(), gomock.Any()).Return(router, nil)
	connectionManager.EXPECT().RemoveConnection(gomock.Any(), id).Do(func(context.Context, uuid.UUID) { close(removed) })
	require.NoError(t, mod.RegisterConnectionManager(connectionManager))

	lc.RequireStart()
	require.NotEmpty(t, address)

	nc, err := net.Dial("tcp", address)
	require.NoError(t, err)
	client := jsonrpc2.NewConn(jsonrpc2.NewStream(nc))
	client.Go(ctx, jsonrpc2.MethodNotFoundHandler)

	var result string
	_, err = client.Call(ctx, "buildsync/ping", nil, &result)
	require.NoError(t, err)
	assert.Equal(t, "pong", result)

	require.NoError(t, client.Close())
	<-client.Done()
	<-removed

	lc.RequireStop()
}
