// Package buildsync implements the JSON-RPC surface of the buildsync service.
package buildsync

import (
	"context"
	"fmt"
	"sync"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/controller/autosync"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/controller/synchronizer"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/factory"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/jsonrpcfx"
	"github.com/gofrs/uuid"
	tally "github.com/uber-go/tally/v4"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the JSON-RPC handler into an Fx application.
var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(func(Handler) {}),
)

// Handler accepts client connections and routes their requests to the controllers.
type Handler interface {
	jsonrpcfx.ConnectionManager
	// Connections returns the number of open client connections.
	Connections() int
}

// Params defines the dependencies of the handler.
type Params struct {
	fx.In

	Synchronizer synchronizer.Controller
	AutoSync     autosync.Controller
	JSONRPC      jsonrpcfx.JSONRPCModule
	Logger       *zap.SugaredLogger
	Stats        tally.Scope
}

type connectionManager struct {
	synchronizer synchronizer.Controller
	autoSync     autosync.Controller
	logger       *zap.SugaredLogger
	stats        tally.Scope

	routers   map[uuid.UUID]*jsonRPCRouter
	routersMu sync.Mutex
}

// New constructs a new Handler and registers it with the JSON-RPC module.
func New(p Params) (Handler, error) {
	c := &connectionManager{
		synchronizer: p.Synchronizer,
		autoSync:     p.AutoSync,
		logger:       p.Logger.With("plugin", "json_rpc"),
		stats:        p.Stats.SubScope("json_rpc"),
		routers:      make(map[uuid.UUID]*jsonRPCRouter),
	}
	if err := p.JSONRPC.RegisterConnectionManager(c); err != nil {
		return nil, err
	}
	return c, nil
}

// NewConnection will store a new connection and return a router that includes its UUID.
func (c *connectionManager) NewConnection(ctx context.Context, conn jsonrpc2.Conn) (jsonrpcfx.Router, error) {
	if conn == nil {
		return nil, fmt.Errorf("error while creating new connection: missing connection")
	}
	id := factory.UUID()
	connCtx, cancel := context.WithCancel(context.Background())
	r := &jsonRPCRouter{
		synchronizer: c.synchronizer,
		autoSync:     c.autoSync,
		uuid:         id,
		conn:         conn,
		client:       protocol.ClientDispatcher(conn, c.logger.Desugar()),
		logger:       c.logger.With("connection", id.String()),
		stats:        c.stats,
		ctx:          connCtx,
		cancel:       cancel,
	}

	c.routersMu.Lock()
	defer c.routersMu.Unlock()
	c.routers[id] = r
	c.stats.Gauge("connections").Update(float64(len(c.routers)))
	return r, nil
}

// RemoveConnection cancels the work still running for a closed connection and waits for it to end.
func (c *connectionManager) RemoveConnection(ctx context.Context, id uuid.UUID) {
	c.routersMu.Lock()
	r, ok := c.routers[id]
	delete(c.routers, id)
	c.stats.Gauge("connections").Update(float64(len(c.routers)))
	c.routersMu.Unlock()

	if ok {
		r.close()
	}
}

func (c *connectionManager) Connections() int {
	c.routersMu.Lock()
	defer c.routersMu.Unlock()
	return len(c.routers)
}
