package buildsync

import (
	"context"
	"fmt"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/controller/synchronizer"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/entity"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/errors"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/mapper"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/model"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

const _progressTitle = "Synchronize Gradle projects"

// Synchronize runs a synchronization and answers once every root reached a terminal state.
// Progress is reported on the request's work done token, which also cancels the run.
func (r *jsonRPCRouter) Synchronize(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToSynchronizeParams(req)
	if err != nil {
		return reply(ctx, nil, invalidParams(err))
	}
	roots, err := mapper.URIsToPaths("roots", params.Roots)
	if err != nil {
		return reply(ctx, nil, toRPCError(err))
	}
	policy, err := entity.ParseNewProjectHandling(params.Policy, r.confirmImport)
	if err != nil {
		return reply(ctx, nil, toRPCError(err))
	}

	syncReq := synchronizer.Request{Roots: roots, Policy: policy}
	var progress *progressReporter
	if params.WorkDoneToken != nil {
		syncReq.ProgressToken = params.WorkDoneToken.String()
		progress = &progressReporter{client: r.client, token: *params.WorkDoneToken, router: r}
		syncReq.Listener = progress
	}

	r.goAsync(func(connCtx context.Context) {
		progress.begin(connCtx)
		result, err := r.synchronizer.Synchronize(connCtx, syncReq)
		progress.end(connCtx, result, err)
		if err == nil {
			r.refreshAutoSync(connCtx)
			r.logger.Infow("Synchronization answered", "runId", result.RunID, "cancelled", result.Cancelled())
			if err := reply(connCtx, result, nil); err != nil {
				r.logger.Debugw("Failed to reply", "method", req.Method(), "error", err)
			}
			return
		}
		if err := reply(connCtx, nil, toRPCError(err)); err != nil {
			r.logger.Debugw("Failed to reply", "method", req.Method(), "error", err)
		}
	})
	return nil
}

// confirmImport asks the client whether a discovered project is imported.
func (r *jsonRPCRouter) confirmImport(ctx context.Context, rootDir string, candidate entity.Subproject) (bool, error) {
	params := mapper.SubprojectToConfirmImportParams(rootDir, candidate)
	var result model.ConfirmImportResult
	if _, err := r.conn.Call(ctx, MethodConfirmImport, &params, &result); err != nil {
		return false, fmt.Errorf("asking the client about %s: %w", candidate.Path, err)
	}
	return result.Import, nil
}

// WorkDoneProgressCancel cancels the synchronization started with the given token.
func (r *jsonRPCRouter) WorkDoneProgressCancel(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToWorkDoneProgressCancelParams(req)
	if err != nil {
		return reply(ctx, nil, invalidParams(err))
	}
	if !r.synchronizer.Cancel(params.Token.String()) {
		r.logger.Debugw("No synchronization to cancel", "token", params.Token.String())
	}
	return reply(ctx, nil, nil)
}

func (r *jsonRPCRouter) LoadModel(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToProjectParams(req)
	if err != nil {
		return reply(ctx, nil, invalidParams(err))
	}
	m, err := r.synchronizer.LoadModel(ctx, entity.ProjectID(params.Project))
	if err != nil {
		return reply(ctx, nil, toRPCError(err))
	}
	result, err := mapper.PersistentModelToLoadModelResult(m)
	return reply(ctx, result, toRPCError(err))
}

func (r *jsonRPCRouter) Unmanage(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToProjectParams(req)
	if err != nil {
		return reply(ctx, nil, invalidParams(err))
	}
	if err := r.synchronizer.Unmanage(ctx, entity.ProjectID(params.Project)); err != nil {
		return reply(ctx, nil, toRPCError(err))
	}
	r.refreshAutoSync(ctx)
	return reply(ctx, nil, nil)
}

func (r *jsonRPCRouter) WorkspaceConfiguration(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	return reply(ctx, mapper.WorkspaceConfigurationToParams(r.synchronizer.WorkspaceConfiguration()), nil)
}

func (r *jsonRPCRouter) SaveWorkspaceConfiguration(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToWorkspaceConfigurationParams(req)
	if err != nil {
		return reply(ctx, nil, invalidParams(err))
	}
	if err := r.synchronizer.SaveWorkspaceConfiguration(ctx, mapper.WorkspaceConfigurationParamsToEntity(*params)); err != nil {
		return reply(ctx, nil, toRPCError(err))
	}
	r.refreshAutoSync(ctx)
	return reply(ctx, nil, nil)
}

func (r *jsonRPCRouter) BuildConfiguration(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToBuildConfigurationParams(req)
	if err != nil {
		return reply(ctx, nil, invalidParams(err))
	}
	root, err := mapper.URIToPath("rootDir", params.RootDir)
	if err != nil {
		return reply(ctx, nil, toRPCError(err))
	}
	bc, err := r.synchronizer.BuildConfiguration(ctx, root)
	if err != nil {
		return reply(ctx, nil, toRPCError(err))
	}
	return reply(ctx, mapper.BuildConfigurationToParams(bc), nil)
}

func (r *jsonRPCRouter) SaveBuildConfiguration(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToBuildConfigurationParams(req)
	if err != nil {
		return reply(ctx, nil, invalidParams(err))
	}
	bc, err := mapper.BuildConfigurationParamsToEntity(*params)
	if err != nil {
		return reply(ctx, nil, toRPCError(err))
	}
	if err := r.synchronizer.SaveBuildConfiguration(ctx, bc); err != nil {
		return reply(ctx, nil, toRPCError(err))
	}
	r.refreshAutoSync(ctx)
	return reply(ctx, nil, nil)
}

func (r *jsonRPCRouter) ManagedRoots(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	roots, err := r.synchronizer.ManagedRoots(ctx)
	if err != nil {
		return reply(ctx, nil, toRPCError(err))
	}
	uris := make([]uri.URI, 0, len(roots))
	for _, root := range roots {
		uris = append(uris, uri.File(root))
	}
	return reply(ctx, uris, nil)
}

func invalidParams(err error) error {
	return jsonrpc2.Errorf(jsonrpc2.InvalidParams, "%v", err)
}

// toRPCError maps a controller error to the JSON-RPC error returned to the client.
func toRPCError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.IsBadRequest(err):
		return jsonrpc2.Errorf(jsonrpc2.InvalidParams, "%v", err)
	case errors.IsNotFound(err):
		return jsonrpc2.Errorf(jsonrpc2.InvalidRequest, "%v", err)
	case errors.IsCancelled(err):
		return jsonrpc2.Errorf(protocol.CodeRequestCancelled, "%v", err)
	default:
		return jsonrpc2.Errorf(jsonrpc2.InternalError, "%v", err)
	}
}

// progressReporter forwards the progress of a synchronization as work done notifications.
// A nil reporter reports nothing.
type progressReporter struct {
	client protocol.Client
	token  protocol.ProgressToken
	router *jsonRPCRouter
}

func (p *progressReporter) ProgressChanged(event entity.ProgressEvent) {
	if event.Heartbeat || event.Description == "" {
		return
	}
	p.send(p.router.ctx, &protocol.WorkDoneProgressReport{
		Kind:    protocol.WorkDoneProgressKindReport,
		Message: event.Description,
	})
}

func (p *progressReporter) begin(ctx context.Context) {
	if p == nil {
		return
	}
	p.send(ctx, &protocol.WorkDoneProgressBegin{
		Kind:        protocol.WorkDoneProgressKindBegin,
		Title:       _progressTitle,
		Cancellable: true,
	})
}

func (p *progressReporter) end(ctx context.Context, result entity.SyncResult, err error) {
	if p == nil {
		return
	}
	message := "Synchronization finished"
	switch {
	case err != nil:
		message = err.Error()
	case result.Err() != nil:
		message = errors.CollectMessages(result.Err())
	case result.Cancelled():
		message = "Synchronization cancelled"
	}
	p.send(ctx, &protocol.WorkDoneProgressEnd{Kind: protocol.WorkDoneProgressKindEnd, Message: message})
}

func (p *progressReporter) send(ctx context.Context, value interface{}) {
	if err := p.client.Progress(ctx, &protocol.ProgressParams{Token: p.token, Value: value}); err != nil {
		p.router.logger.Debugw("Failed to report progress", "error", err)
	}
}
