// Package synchronizer reconciles the workspace with the projects reported by the build tool.
package synchronizer

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/entity"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/factory"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/gateway/gradle"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/cancellation"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/clock"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/contribution"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/errors"
	buildconfig "github.com/eclipse-buildship/buildship-sub001/src/buildsync/repository/build-config"
	persistentmodel "github.com/eclipse-buildship/buildship-sub001/src/buildsync/repository/persistent-model"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/repository/workspace"
	workspaceconfig "github.com/eclipse-buildship/buildship-sub001/src/buildsync/repository/workspace-config"
	tally "github.com/uber-go/tally/v4"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Module provides the synchronization Controller.
var Module = fx.Provide(New)

const (
	_nameKey                 = "synchronizer"
	_work                    = "Synchronization"
	_defaultMaxParallelRoots = 4
)

// Request describes one synchronization.
type Request struct {
	// Roots are the build root directories to synchronize.
	Roots  []string
	Policy entity.NewProjectHandling
	// ProgressToken identifies the run for cancellation by the client. A token is generated when empty.
	ProgressToken string
	// Signal is an optional host cancellation signal polled during the run.
	Signal cancellation.Signal
	// Listener receives the progress of every root.
	Listener entity.ProgressListener
}

// Controller runs synchronizations and manages the lifecycle of managed projects.
type Controller interface {
	// Synchronize processes every root independently. The returned error is only set for an invalid request;
	// the failures of individual roots are reported in the result.
	Synchronize(ctx context.Context, req Request) (entity.SyncResult, error)
	// Cancel requests cancellation of the run registered under progressToken.
	Cancel(progressToken string) bool
	// LoadModel returns the persistent model of a project.
	LoadModel(ctx context.Context, id entity.ProjectID) (entity.PersistentModel, error)
	// Unmanage removes a project from management along with its model and, for a root project, its build configuration.
	Unmanage(ctx context.Context, id entity.ProjectID) error
	WorkspaceConfiguration() entity.WorkspaceConfiguration
	SaveWorkspaceConfiguration(ctx context.Context, c entity.WorkspaceConfiguration) error
	BuildConfiguration(ctx context.Context, rootDir string) (entity.BuildConfiguration, error)
	SaveBuildConfiguration(ctx context.Context, c entity.BuildConfiguration) error
	// ManagedRoots returns the root directories of all managed builds.
	ManagedRoots(ctx context.Context) ([]string, error)
}

// Config is the synchronization section of the configuration.
type Config struct {
	// MaxParallelRoots bounds the number of roots processed concurrently.
	MaxParallelRoots int `yaml:"maxParallelRoots"`
}

// Params defines the dependencies of the synchronization controller.
type Params struct {
	fx.In

	Config          config.Provider
	Logger          *zap.SugaredLogger
	Stats           tally.Scope
	Lifecycle       fx.Lifecycle
	Clock           clock.Clock
	Gradle          gradle.Client
	Models          persistentmodel.Store
	Workspace       workspace.Repository
	BuildConfigs    buildconfig.Repository
	WorkspaceConfig workspaceconfig.Holder
	Contributions   contribution.Facade
}

type controller struct {
	config          Config
	logger          *zap.SugaredLogger
	stats           tally.Scope
	clock           clock.Clock
	gradle          gradle.Client
	models          persistentmodel.Store
	workspace       workspace.Repository
	buildConfigs    buildconfig.Repository
	workspaceConfig workspaceconfig.Holder
	contributions   contribution.Facade

	pendingRuns pendingRunStore
	rootLocks   rootLockStore
}

// New creates a new synchronization controller.
func New(p Params) (Controller, error) {
	cfg := Config{MaxParallelRoots: _defaultMaxParallelRoots}
	if err := p.Config.Get(entity.SynchronizationConfigKey).Populate(&cfg); err != nil {
		return nil, fmt.Errorf("getting configuration for %q: %w", entity.SynchronizationConfigKey, err)
	}
	if cfg.MaxParallelRoots < 1 {
		return nil, &errors.ConfigurationError{Field: "synchronization.maxParallelRoots", Reason: "must be at least 1"}
	}

	c := &controller{
		config:          cfg,
		logger:          p.Logger.With("plugin", _nameKey),
		stats:           p.Stats.SubScope(_nameKey),
		clock:           p.Clock,
		gradle:          p.Gradle,
		models:          p.Models,
		workspace:       p.Workspace,
		buildConfigs:    p.BuildConfigs,
		workspaceConfig: p.WorkspaceConfig,
		contributions:   p.Contributions,
	}
	if p.Lifecycle != nil {
		p.Lifecycle.Append(fx.Hook{
			OnStop: func(context.Context) error {
				if ids := c.pendingRuns.runIDs(); len(ids) > 0 {
					c.logger.Infow("Cancelling pending synchronizations", "runs", ids)
				}
				c.pendingRuns.cancelAll()
				return nil
			},
		})
	}
	return c, nil
}

func (c *controller) Synchronize(ctx context.Context, req Request) (entity.SyncResult, error) {
	roots, err := canonicalRoots(req.Roots)
	if err != nil {
		return entity.SyncResult{}, err
	}

	result := entity.SyncResult{RunID: factory.UUID().String()}
	token := req.ProgressToken
	if token == "" {
		token = result.RunID
	}
	flag, ok := c.pendingRuns.setPendingRun(token, result.RunID)
	if !ok {
		return entity.SyncResult{}, &errors.ConfigurationError{Field: "progressToken", Reason: fmt.Sprintf("a synchronization with token %q is already running", token)}
	}
	defer c.pendingRuns.deletePendingRun(token)

	c.stats.Counter("runs").Inc(1)
	start := c.clock.Now()
	signal := cancellation.Any{req.Signal, flag, cancellation.FromContext(ctx)}
	c.logger.Infow("Synchronization started", "runId", result.RunID, "roots", roots, "policy", req.Policy.String())

	// Roots never fail the group: every outcome is recorded in its own slot.
	result.Outcomes = make([]entity.RootOutcome, len(roots))
	g := new(errgroup.Group)
	g.SetLimit(c.config.MaxParallelRoots)
	for i, root := range roots {
		g.Go(func() error {
			result.Outcomes[i] = c.synchronizeRoot(ctx, root, req, signal)
			return nil
		})
	}
	_ = g.Wait()

	c.stats.Timer("duration").Record(c.clock.Since(start))
	for _, o := range result.Outcomes {
		switch o.State {
		case entity.SyncCommitted:
			c.stats.Counter("committed").Inc(1)
		case entity.SyncFailed:
			c.stats.Counter("failed").Inc(1)
			c.logger.Warnw("Synchronization of root failed", "runId", result.RunID, "rootDir", o.RootDir, "error", o.Err)
		case entity.SyncCancelled:
			c.stats.Counter("cancelled").Inc(1)
		}
	}
	c.logger.Infow("Synchronization finished", "runId", result.RunID, "duration", c.clock.Since(start), "cancelled", result.Cancelled())
	return result, nil
}

// canonicalRoots returns the absolute, de-duplicated roots in request order.
func canonicalRoots(roots []string) ([]string, error) {
	if len(roots) == 0 {
		return nil, &errors.ConfigurationError{Field: "roots", Reason: "at least one build root is required"}
	}
	seen := make(map[string]struct{}, len(roots))
	canonical := make([]string, 0, len(roots))
	for _, root := range roots {
		if root == "" {
			return nil, &errors.ConfigurationError{Field: "roots", Reason: "must not be empty", Err: errors.ErrNoRootDir}
		}
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, &errors.ConfigurationError{Field: "roots", Reason: "cannot be made absolute", Err: err}
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		canonical = append(canonical, abs)
	}
	return canonical, nil
}

func (c *controller) lockRoot(root string) func() {
	return c.rootLocks.lock(root)
}

func (c *controller) Cancel(progressToken string) bool {
	ok := c.pendingRuns.cancel(progressToken)
	if ok {
		c.logger.Infow("Cancellation requested", "progressToken", progressToken)
	}
	return ok
}

func (c *controller) LoadModel(ctx context.Context, id entity.ProjectID) (entity.PersistentModel, error) {
	return c.models.LoadModel(ctx, id)
}

func (c *controller) Unmanage(ctx context.Context, id entity.ProjectID) error {
	project, err := c.workspace.Get(ctx, id)
	if err != nil {
		return err
	}
	defer c.lockRoot(project.RootDir)()

	if err := c.models.DeleteModel(ctx, id); err != nil {
		return &errors.WorkspaceError{Op: "delete model", Err: err}
	}
	if project.IsRoot() {
		if err := c.buildConfigs.Delete(ctx, project.RootDir); err != nil {
			return &errors.WorkspaceError{Op: "delete build configuration", Err: err}
		}
	}
	for _, contribution := range c.contributions.Configurators() {
		if err := contribution.Configurator.Unconfigure(ctx, project); err != nil {
			c.logger.Warnw("Project configurator failed", "configurator", contribution.FullyQualifiedID(), "project", id, "error", err)
		}
	}
	if err := c.workspace.RemoveProject(ctx, id); err != nil {
		return err
	}
	c.logger.Infow("Project unmanaged", "project", id)
	return nil
}

func (c *controller) WorkspaceConfiguration() entity.WorkspaceConfiguration {
	return c.workspaceConfig.Get()
}

func (c *controller) SaveWorkspaceConfiguration(ctx context.Context, cfg entity.WorkspaceConfiguration) error {
	return c.workspaceConfig.Save(ctx, cfg)
}

func (c *controller) BuildConfiguration(ctx context.Context, rootDir string) (entity.BuildConfiguration, error) {
	return c.buildConfigs.Load(ctx, rootDir)
}

func (c *controller) SaveBuildConfiguration(ctx context.Context, cfg entity.BuildConfiguration) error {
	return c.buildConfigs.Save(ctx, cfg)
}

func (c *controller) ManagedRoots(ctx context.Context) ([]string, error) {
	projects, err := c.workspace.All(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var roots []string
	for _, p := range projects {
		if _, ok := seen[p.RootDir]; ok {
			continue
		}
		seen[p.RootDir] = struct{}{}
		roots = append(roots, p.RootDir)
	}
	return roots, nil
}
