// Package jsonrpcfx serves JSON-RPC connections over TCP as part of the fx application lifecycle.
package jsonrpcfx

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/serverinfofile"
	"github.com/gofrs/uuid"
	"go.lsp.dev/jsonrpc2"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	_configKeyAddress = "jsonrpc.address"
	_outputKey        = "jsonrpc-address"
)

// Module is an fx module to handle JSON-RPC requests.
var Module = fx.Provide(New)

// JSONRPCModule represents a module to manage JSON-RPC requests.
type JSONRPCModule interface {
	OnStart(ctx context.Context) error
	OnStop(ctx context.Context) error
	ServeStream(ctx context.Context, conn jsonrpc2.Conn) error
	RegisterConnectionManager(connectionManager ConnectionManager) error
}

// Router serves as the interface through which handling of requests will be implemented.
type Router interface {
	HandleReq(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error
	UUID() uuid.UUID
}

// ConnectionManager will manage each active connection and its corresponding Router throughout the lifecycle of a connection.
type ConnectionManager interface {
	NewConnection(ctx context.Context, conn jsonrpc2.Conn) (router Router, err error)
	RemoveConnection(ctx context.Context, id uuid.UUID)
}

type module struct {
	Address string `json:"address"`

	connectionMgr  ConnectionManager
	ln             net.Listener
	logger         *zap.SugaredLogger
	serverInfoFile serverinfofile.ServerInfoFile
	// cancel stops serving, done is closed once the accept loop and every connection returned.
	cancel context.CancelFunc
	done   chan struct{}
	conns  sync.WaitGroup
	mu     sync.Mutex
}

// Params define values to be used by JsonRpcHandler.
type Params struct {
	fx.In

	Config         config.Provider
	Lifecycle      fx.Lifecycle
	Logger         *zap.SugaredLogger
	ServerInfoFile serverinfofile.ServerInfoFile
}

// New creates a new server to handle JSON-RPC requests on the configured address.
func New(p Params) (JSONRPCModule, error) {
	if p.Lifecycle == nil || p.Config == nil {
		return nil, errors.New("required parameters are missing")
	}

	m := module{
		logger:         p.Logger,
		serverInfoFile: p.ServerInfoFile,
	}

	if err := m.processConfig(p.Config); err != nil {
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: m.OnStart,
		OnStop:  m.OnStop,
	})

	return &m, nil
}

// OnStart listens on the configured address, publishes it and then begins handling incoming connections.
func (m *module) OnStart(ctx context.Context) error {
	if err := m.setup(); err != nil {
		return err
	}
	// The bound address differs from the configured one when the port is 0.
	if err := m.serverInfoFile.UpdateField(_outputKey, m.ln.Addr().String()); err != nil {
		m.ln.Close()
		return err
	}

	serveCtx, cancel := context.WithCancel(context.Background())
	m.mu.Lock()
	m.cancel = cancel
	m.done = make(chan struct{})
	m.mu.Unlock()

	go m.start(serveCtx)
	return nil
}

// OnStop closes the listener and waits for the accept loop to return.
func (m *module) OnStop(ctx context.Context) error {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.mu.Unlock()
	if cancel == nil {
		return nil
	}

	cancel()
	err := m.ln.Close()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// ServeStream is called when a new connection is initiated. Requests received via the connection will be routed to the handler, and answered via the connection's replier.
func (m *module) ServeStream(ctx context.Context, conn jsonrpc2.Conn) error {
	if m.connectionMgr == nil {
		m.logger.Errorf("cannot serve connection, no connection manager set")
		return errors.New("cannot serve connection, no connection manager set")
	}

	// Start handling the connection.
	handler, err := m.connectionMgr.NewConnection(ctx, conn)
	if err != nil {
		return err
	}
	m.logger.Infow("client connected", zap.Stringer("uuid", handler.UUID()))
	conn.Go(ctx, handler.HandleReq)

	// Block until the connection closes or the server stops.
	select {
	case <-conn.Done():
	case <-ctx.Done():
		conn.Close()
		<-conn.Done()
	}

	// Cleanup after connection.
	m.connectionMgr.RemoveConnection(ctx, handler.UUID())
	m.logger.Infow("client disconnected", zap.Stringer("uuid", handler.UUID()))

	return conn.Err()
}

// RegisterConnectionManager sets the connection manager, which keeps track of current active connections and provides a Router implementation.
func (m *module) RegisterConnectionManager(connectionMgr ConnectionManager) error {
	if m.connectionMgr != nil {
		return errors.New("cannot register a duplicate connection manager")
	}
	m.connectionMgr = connectionMgr
	return nil
}

// setup should be called after creation of a new handler to set initial values.
func (m *module) setup() error {
	if m.Address == "" {
		return errors.New("setup called before address is set")
	}

	ln, err := net.Listen("tcp", m.Address)
	if err != nil {
		return err
	}
	m.ln = ln
	return nil
}

// start accepts connections until the listener is closed, then waits for the open connections to end.
func (m *module) start(ctx context.Context) {
	defer close(m.done)
	defer m.conns.Wait()

	m.logger.Infow("started JSON-RPC inbound", zap.String("address", m.ln.Addr().String()))
	for {
		nc, err := m.ln.Accept()
		if err != nil {
			if ctx.Err() == nil {
				m.logger.Errorw("JSON-RPC inbound stopped", zap.Error(err))
			}
			return
		}

		m.conns.Add(1)
		go func() {
			defer m.conns.Done()
			conn := jsonrpc2.NewConn(jsonrpc2.NewStream(nc))
			if err := m.ServeStream(ctx, conn); err != nil && ctx.Err() == nil {
				m.logger.Debugw("connection closed", zap.Error(err))
			}
			conn.Close()
		}()
	}
}

// processConfig will parse the configuration for any values required by this module.
func (m *module) processConfig(cfg config.Provider) error {
	val := cfg.Get(_configKeyAddress)
	if err := val.Populate(&m.Address); err != nil {
		// incorrectly formatted config
		return fmt.Errorf("getting config field %q: %w", _configKeyAddress, err)
	}

	if m.Address == "" {
		// yaml is missing either the key or value
		return fmt.Errorf("missing field %q in config", _configKeyAddress)
	}

	return nil
}
