package synchronizer

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/entity"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/cancellation"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/errors"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/request"
	persistentmodel "github.com/eclipse-buildship/buildship-sub001/src/buildsync/repository/persistent-model"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// rootRun is the state machine of one root within a synchronization.
type rootRun struct {
	outcome entity.RootOutcome
	logger  *zap.SugaredLogger
}

func newRootRun(root string, logger *zap.SugaredLogger) *rootRun {
	return &rootRun{
		outcome: entity.RootOutcome{
			RootDir: root,
			State:   entity.SyncPending,
			Trace:   []entity.SyncState{entity.SyncPending},
		},
		logger: logger,
	}
}

func (r *rootRun) transition(next entity.SyncState) {
	if !r.outcome.State.CanTransition(next) {
		panic(fmt.Sprintf("illegal synchronization transition %s -> %s", r.outcome.State, next))
	}
	r.logger.Debugw("Root state changed", "from", r.outcome.State, "to", next)
	r.outcome.State = next
	r.outcome.Trace = append(r.outcome.Trace, next)
}

// finish moves the run to its terminal state according to err.
func (r *rootRun) finish(err error) entity.RootOutcome {
	switch {
	case err == nil:
		r.transition(entity.SyncCommitted)
	case errors.IsCancelled(err):
		r.transition(entity.SyncCancelled)
	default:
		r.transition(entity.SyncFailed)
		r.outcome.Err = err
	}
	r.outcome.Status = errors.Classify(_work, err)
	return r.outcome
}

// plannedProject is a reported project that will be managed after the commit.
type plannedProject struct {
	subproject entity.Subproject
	project    entity.Project
	// create is set for projects that are not yet in the workspace.
	create bool
	// changed is set for existing projects whose mapping to the root changes.
	changed bool
}

type plan struct {
	projects []*plannedProject
	skipped  []string
	orphans  []entity.Project
}

func (c *controller) synchronizeRoot(ctx context.Context, root string, req Request, signal cancellation.Signal) entity.RootOutcome {
	defer c.lockRoot(root)()

	start := c.clock.Now()
	run := newRootRun(root, c.logger.With("rootDir", root))
	outcome := run.finish(c.runRoot(ctx, run, req, signal))
	outcome.Duration = c.clock.Since(start)
	return outcome
}

func (c *controller) runRoot(ctx context.Context, run *rootRun, req Request, signal cancellation.Signal) error {
	root := run.outcome.RootDir
	source := cancellation.NewTokenSource()
	bridge := cancellation.NewBridge(signal, source.Cancel)
	if bridge.Poll() {
		return errors.ErrCancelled
	}

	run.transition(entity.SyncConnecting)
	if req.Listener != nil {
		req.Listener.ProgressChanged(entity.ProgressEvent{Description: "Synchronizing " + root, Time: c.clock.Now()})
	}
	bc, err := c.buildConfigs.Load(ctx, root)
	if err != nil {
		return err
	}
	attrs, err := request.ForBuild(c.workspaceConfig.Get(), bc, c.contributions)
	if err != nil {
		return err
	}

	run.transition(entity.SyncQuerying)
	model, err := c.gradle.Query(ctx, attrs, source.Token(), entity.CombineListeners(bridge, req.Listener))
	if err != nil {
		return err
	}
	if bridge.Poll() {
		return errors.ErrCancelled
	}

	run.transition(entity.SyncReconciling)
	p, err := c.reconcile(ctx, root, model, req.Policy)
	if err != nil {
		return err
	}
	// The policy may have prompted for a long time.
	if bridge.Poll() {
		return errors.ErrCancelled
	}

	if err := c.commit(ctx, root, model, p, &run.outcome); err != nil {
		return err
	}
	c.configure(ctx, p, &run.outcome)
	return nil
}

// reconcile compares the reported projects with the projects mapped to the root.
func (c *controller) reconcile(ctx context.Context, root string, model *entity.BuildModel, policy entity.NewProjectHandling) (*plan, error) {
	if location := c.workspaceConfig.Location(); location != "" {
		for _, sub := range model.Projects {
			if filepath.Clean(sub.ProjectDir) == location {
				return nil, &errors.UnsupportedConfigurationError{
					Reason: fmt.Sprintf("project %s is located at the workspace location %s", sub.Path, location),
				}
			}
		}
	}

	mapped, err := c.workspace.ProjectsMappedToRoot(ctx, root)
	if err != nil {
		return nil, err
	}
	mappedByLocation := make(map[string]entity.Project, len(mapped))
	for _, p := range mapped {
		mappedByLocation[p.Location] = p
	}

	p := &plan{}
	matched := make(map[entity.ProjectID]struct{}, len(mapped))
	for _, sub := range model.Projects {
		if sub.ProjectDir == "" {
			continue
		}
		location := filepath.Clean(sub.ProjectDir)

		if existing, ok := mappedByLocation[location]; ok {
			matched[existing.ID] = struct{}{}
			p.projects = append(p.projects, &plannedProject{subproject: sub, project: existing, changed: existing.Path != sub.Path})
			continue
		}
		// A project at the same location outside this root is merged into it.
		existing, ok, err := c.workspace.FindByLocation(ctx, location)
		if err != nil {
			return nil, err
		}
		if ok {
			p.projects = append(p.projects, &plannedProject{subproject: sub, project: existing, changed: true})
			continue
		}

		importIt, err := policy.ShouldImport(ctx, root, sub)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("deciding on %s: %w", sub.Path, errors.ErrCancelled)
			}
			return nil, fmt.Errorf("deciding on %s: %w", sub.Path, err)
		}
		if !importIt {
			p.skipped = append(p.skipped, sub.Path)
			continue
		}
		p.projects = append(p.projects, &plannedProject{subproject: sub, create: true})
	}

	for _, existing := range mapped {
		if _, ok := matched[existing.ID]; !ok {
			p.orphans = append(p.orphans, existing)
		}
	}
	return p, nil
}

// commit applies the workspace changes and then writes every model of the root together.
// When the models cannot be written, created projects are removed and updated projects get their previous mapping back.
func (c *controller) commit(ctx context.Context, root string, model *entity.BuildModel, p *plan, outcome *entity.RootOutcome) (err error) {
	var (
		created  []entity.ProjectID
		previous []entity.Project
	)
	defer func() {
		if err == nil {
			return
		}
		for _, id := range created {
			err = multierr.Append(err, c.workspace.RemoveProject(ctx, id))
		}
		for i := len(previous) - 1; i >= 0; i-- {
			err = multierr.Append(err, c.workspace.UpdateProject(ctx, previous[i]))
		}
	}()

	for _, planned := range p.projects {
		switch {
		case planned.create:
			project, isNew, err := c.workspace.CreateProject(ctx, root, planned.subproject)
			if err != nil {
				return err
			}
			if isNew {
				created = append(created, project.ID)
			}
			planned.project = project
		case planned.changed:
			before := planned.project
			planned.project.RootDir = root
			planned.project.Path = planned.subproject.Path
			if err := c.workspace.UpdateProject(ctx, planned.project); err != nil {
				return err
			}
			previous = append(previous, before)
		}
	}

	syncedAt := c.clock.Now()
	batch := persistentmodel.Batch{}
	for _, planned := range p.projects {
		batch.Save = append(batch.Save, newPersistentModel(root, model.GradleVersion, planned, syncedAt))
	}
	for _, orphan := range p.orphans {
		batch.Delete = append(batch.Delete, orphan.ID)
	}
	if err := c.models.Apply(ctx, batch); err != nil {
		return &errors.WorkspaceError{Op: "commit models", Err: err}
	}

	for _, planned := range p.projects {
		if planned.create {
			outcome.Created = append(outcome.Created, planned.project.ID)
		} else {
			outcome.Updated = append(outcome.Updated, planned.project.ID)
		}
	}
	outcome.Skipped = p.skipped
	for _, orphan := range p.orphans {
		outcome.Orphaned = append(outcome.Orphaned, orphan.ID)
	}
	return nil
}

// configure runs the configurators on the committed projects. Failures are recorded as warnings.
func (c *controller) configure(ctx context.Context, p *plan, outcome *entity.RootOutcome) {
	configurators := c.contributions.Configurators()
	if len(configurators) == 0 {
		return
	}
	warn := func(id string, project entity.ProjectID, err error) {
		cfgErr := &errors.ConfiguratorError{ID: id, Project: string(project), Err: err}
		c.logger.Warnw("Project configurator failed", "configurator", id, "project", project, "error", err)
		outcome.Warnings = append(outcome.Warnings, cfgErr.Error())
	}

	for _, contribution := range configurators {
		for _, planned := range p.projects {
			project, err := c.workspace.Get(ctx, planned.project.ID)
			if err != nil {
				warn(contribution.FullyQualifiedID(), planned.project.ID, err)
				continue
			}
			m, err := c.models.LoadModel(ctx, project.ID)
			if err != nil {
				warn(contribution.FullyQualifiedID(), project.ID, err)
				continue
			}
			req := entity.ConfigureRequest{Project: project, Subproject: planned.subproject, Model: m}
			if err := contribution.Configurator.Configure(ctx, req); err != nil {
				warn(contribution.FullyQualifiedID(), project.ID, err)
			}
		}
		for _, orphan := range p.orphans {
			if err := contribution.Configurator.Unconfigure(ctx, orphan); err != nil {
				warn(contribution.FullyQualifiedID(), orphan.ID, err)
			}
		}
	}
}

func newPersistentModel(root, gradleVersion string, planned *plannedProject, syncedAt time.Time) entity.PersistentModel {
	sub := planned.subproject
	projectDir := filepath.Clean(sub.ProjectDir)

	var sourceRoots, linked []string
	for _, dir := range append(slices.Clone(sub.SourceDirs), sub.ResourceDirs...) {
		if dir == ".." || strings.HasPrefix(dir, ".."+string(filepath.Separator)) {
			linked = append(linked, dir)
			continue
		}
		sourceRoots = append(sourceRoots, dir)
	}
	derived := []string{".gradle"}
	if rel, err := filepath.Rel(projectDir, sub.BuildDir); err == nil && sub.BuildDir != "" && !strings.HasPrefix(rel, "..") {
		derived = append([]string{rel}, derived...)
	}

	return entity.NewPersistentModel(planned.project.ID, entity.ModelAttributes{
		RootDir:          root,
		ProjectDir:       projectDir,
		ProjectPath:      sub.Path,
		BuildDir:         sub.BuildDir,
		BuildScript:      sub.BuildScript,
		SubprojectPaths:  sub.Children,
		SourceRoots:      sourceRoots,
		DerivedResources: derived,
		LinkedResources:  linked,
		Natures:          planned.project.Natures,
		Classpath:        sub.Classpath,
		GradleVersion:    gradleVersion,
		SyncedAt:         syncedAt,
	})
}
