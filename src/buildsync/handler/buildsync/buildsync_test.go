package buildsync

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/controller/autosync/autosyncmock"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/controller/synchronizer/synchronizermock"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/jsonrpcfx/jsonrpcfxmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tally "github.com/uber-go/tally/v4"
	"go.lsp.dev/jsonrpc2"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		registerErr error
		wantErr     bool
	}{
		{name: "registers the connection manager"},
		{name: "registration failure", registerErr: errors.New("already registered"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			jsonRPCMock := jsonrpcfxmock.NewMockJSONRPCModule(ctrl)
			jsonRPCMock.EXPECT().RegisterConnectionManager(gomock.Any()).Return(tt.registerErr)

			h, err := New(Params{
				Synchronizer: synchronizermock.NewMockController(ctrl),
				AutoSync:     autosyncmock.NewMockController(ctrl),
				JSONRPC:      jsonRPCMock,
				Logger:       zap.NewNop().Sugar(),
				Stats:        tally.NewTestScope("testing", make(map[string]string, 0)),
			})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 0, h.Connections())
		})
	}
}

func TestNewConnection(t *testing.T) {
	ctx := context.Background()
	testScope := tally.NewTestScope("testing", make(map[string]string, 0))
	mgr := newTestConnectionManager(t, testScope)

	t.Run("missing connection", func(t *testing.T) {
		_, err := mgr.NewConnection(ctx, nil)
		assert.Error(t, err)
	})

	t.Run("create success", func(t *testing.T) {
		conn := newPipeConn(t)
		router, err := mgr.NewConnection(ctx, conn)
		require.NoError(t, err)
		assert.IsType(t, &jsonRPCRouter{}, router)
		assert.Equal(t, 1, mgr.Connections())
		assert.Equal(t, float64(1), testScope.Snapshot().Gauges()["testing.json_rpc.connections+"].Value())

		mgr.RemoveConnection(ctx, router.UUID())
	})
}

func TestRemoveConnection(t *testing.T) {
	ctx := context.Background()
	testScope := tally.NewTestScope("testing", make(map[string]string, 0))
	mgr := newTestConnectionManager(t, testScope)

	first, err := mgr.NewConnection(ctx, newPipeConn(t))
	require.NoError(t, err)
	second, err := mgr.NewConnection(ctx, newPipeConn(t))
	require.NoError(t, err)
	assert.NotEqual(t, first.UUID(), second.UUID())
	assert.Equal(t, 2, mgr.Connections())

	r := first.(*jsonRPCRouter)
	started := make(chan struct{})
	r.goAsync(func(ctx context.Context) {
		close(started)
		<-ctx.Done()
	})
	<-started

	mgr.RemoveConnection(ctx, first.UUID())
	assert.Error(t, r.ctx.Err(), "work of a removed connection is cancelled")
	assert.Equal(t, 1, mgr.Connections())
	assert.Equal(t, float64(1), testScope.Snapshot().Gauges()["testing.json_rpc.connections+"].Value())

	// Unknown connections are ignored.
	mgr.RemoveConnection(ctx, first.UUID())
	mgr.RemoveConnection(ctx, second.UUID())
	assert.Equal(t, 0, mgr.Connections())
}

func newTestConnectionManager(t *testing.T, scope tally.Scope) *connectionManager {
	ctrl := gomock.NewController(t)
	jsonRPCMock := jsonrpcfxmock.NewMockJSONRPCModule(ctrl)
	jsonRPCMock.EXPECT().RegisterConnectionManager(gomock.Any()).Return(nil)

	h, err := New(Params{
		Synchronizer: synchronizermock.NewMockController(ctrl),
		AutoSync:     autosyncmock.NewMockController(ctrl),
		JSONRPC:      jsonRPCMock,
		Logger:       zap.NewNop().Sugar(),
		Stats:        scope,
	})
	require.NoError(t, err)
	return h.(*connectionManager)
}

// newPipeConn returns a connection that is never served, closed with the test.
func newPipeConn(t *testing.T) jsonrpc2.Conn {
	a, b := net.Pipe()
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	return jsonrpc2.NewConn(jsonrpc2.NewStream(a))
}
