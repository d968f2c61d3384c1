package buildsync

import (
	"context"
	"sync"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/controller/autosync"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/controller/synchronizer"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/entity"
	"github.com/gofrs/uuid"
	tally "github.com/uber-go/tally/v4"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
)

// Methods served in addition to the protocol's work done progress cancellation.
const (
	MethodSynchronize                = "buildsync/synchronize"
	MethodLoadModel                  = "buildsync/loadModel"
	MethodUnmanage                   = "buildsync/unmanage"
	MethodWorkspaceConfiguration     = "buildsync/workspaceConfiguration"
	MethodSaveWorkspaceConfiguration = "buildsync/saveWorkspaceConfiguration"
	MethodBuildConfiguration         = "buildsync/buildConfiguration"
	MethodSaveBuildConfiguration     = "buildsync/saveBuildConfiguration"
	MethodManagedRoots               = "buildsync/managedRoots"
)

// MethodConfirmImport is called on the client to decide on a discovered project under the prompt policy.
const MethodConfirmImport = "buildsync/confirmImport"

type jsonRPCRouter struct {
	synchronizer synchronizer.Controller
	autoSync     autosync.Controller
	uuid         uuid.UUID
	conn         jsonrpc2.Conn
	client       protocol.Client
	logger       *zap.SugaredLogger
	stats        tally.Scope

	// ctx lives as long as the connection and bounds the requests answered asynchronously.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// HandleReq handles routing for a single request.
func (r *jsonRPCRouter) HandleReq(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	ctx = context.WithValue(ctx, entity.SessionContextKey, r.uuid)
	r.stats.Tagged(map[string]string{"method": req.Method()}).Counter("requests").Inc(1)

	switch req.Method() {
	case MethodSynchronize:
		return r.Synchronize(ctx, reply, req)

	case protocol.MethodWorkDoneProgressCancel:
		return r.WorkDoneProgressCancel(ctx, reply, req)

	case MethodLoadModel:
		return r.LoadModel(ctx, reply, req)

	case MethodUnmanage:
		return r.Unmanage(ctx, reply, req)

	case MethodWorkspaceConfiguration:
		return r.WorkspaceConfiguration(ctx, reply, req)

	case MethodSaveWorkspaceConfiguration:
		return r.SaveWorkspaceConfiguration(ctx, reply, req)

	case MethodBuildConfiguration:
		return r.BuildConfiguration(ctx, reply, req)

	case MethodSaveBuildConfiguration:
		return r.SaveBuildConfiguration(ctx, reply, req)

	case MethodManagedRoots:
		return r.ManagedRoots(ctx, reply, req)

	default:
		return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
	}
}

func (r *jsonRPCRouter) UUID() uuid.UUID {
	return r.uuid
}

// goAsync answers a request from its own goroutine so that the connection keeps reading,
// e.g. the cancellation of the request or the client's answers to calls made while handling it.
func (r *jsonRPCRouter) goAsync(fn func(ctx context.Context)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		fn(r.ctx)
	}()
}

func (r *jsonRPCRouter) close() {
	r.cancel()
	r.wg.Wait()
}

// refreshAutoSync adjusts the watched build files after the managed projects or their settings changed.
func (r *jsonRPCRouter) refreshAutoSync(ctx context.Context) {
	if r.autoSync == nil {
		return
	}
	if err := r.autoSync.Refresh(ctx); err != nil {
		r.logger.Warnw("Failed to refresh auto synchronization", "error", err)
	}
}
