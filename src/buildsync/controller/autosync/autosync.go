// Package autosync synchronizes build roots when their build files change.
package autosync

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/controller/synchronizer"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/entity"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/clock"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/repository/workspace"
	"github.com/fsnotify/fsnotify"
	tally "github.com/uber-go/tally/v4"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the auto synchronization Controller.
var Module = fx.Provide(New)

const (
	_nameKey         = "autosync"
	_defaultDebounce = 500 * time.Millisecond
)

var _defaultBuildFiles = []string{
	"build.gradle",
	"build.gradle.kts",
	"settings.gradle",
	"settings.gradle.kts",
	"gradle.properties",
}

// Controller watches the build files of managed roots with auto synchronization enabled.
type Controller interface {
	// Refresh re-reads the managed projects and their settings and adjusts the watched directories.
	Refresh(ctx context.Context) error
	// WatchedRoots returns the roots currently watched, sorted.
	WatchedRoots() []string
}

// Config is the autoSync section of the configuration.
type Config struct {
	Debounce   time.Duration `yaml:"debounce"`
	BuildFiles []string      `yaml:"buildFiles"`
}

// Params defines the dependencies of the auto synchronization controller.
type Params struct {
	fx.In

	Config       config.Provider
	Logger       *zap.SugaredLogger
	Stats        tally.Scope
	Lifecycle    fx.Lifecycle
	Clock        clock.Clock
	Synchronizer synchronizer.Controller
	Workspace    workspace.Repository
}

type controller struct {
	config       Config
	logger       *zap.SugaredLogger
	stats        tally.Scope
	clock        clock.Clock
	synchronizer synchronizer.Controller
	workspace    workspace.Repository

	watcher *fsnotify.Watcher
	closer  chan struct{}
	done    chan struct{}
	// ctx is cancelled on shutdown and aborts triggered synchronizations.
	ctx    context.Context
	cancel context.CancelFunc

	// watched maps a watched project directory to its root.
	watched   map[string]string
	watchedMu sync.Mutex

	debounceTimers map[string]clock.Timer
	// stopped is set under debounceMu once shutdown begins; no callback starts afterwards.
	stopped    bool
	debounceMu sync.Mutex
	// inflight tracks the debounce callbacks that are running.
	inflight sync.WaitGroup
	stopOnce sync.Once
}

// New creates a new auto synchronization controller. Watching starts with the application.
func New(p Params) (Controller, error) {
	cfg := Config{Debounce: _defaultDebounce, BuildFiles: _defaultBuildFiles}
	if err := p.Config.Get(entity.AutoSyncConfigKey).Populate(&cfg); err != nil {
		return nil, fmt.Errorf("getting configuration for %q: %w", entity.AutoSyncConfigKey, err)
	}
	if len(cfg.BuildFiles) == 0 {
		cfg.BuildFiles = _defaultBuildFiles
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fs watcher for build files: %w", err)
	}

	c := newController(cfg, p, watcher)
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go c.handleChanges()
			if err := c.Refresh(ctx); err != nil {
				c.logger.Warnw("Failed to watch managed roots", "error", err)
			}
			return nil
		},
		OnStop: func(context.Context) error {
			c.stop()
			return nil
		},
	})
	return c, nil
}

func newController(cfg Config, p Params, watcher *fsnotify.Watcher) *controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &controller{
		config:         cfg,
		logger:         p.Logger.With("plugin", _nameKey),
		stats:          p.Stats.SubScope(_nameKey),
		clock:          p.Clock,
		synchronizer:   p.Synchronizer,
		workspace:      p.Workspace,
		watcher:        watcher,
		closer:         make(chan struct{}),
		done:           make(chan struct{}),
		ctx:            ctx,
		cancel:         cancel,
		watched:        make(map[string]string),
		debounceTimers: make(map[string]clock.Timer),
	}
}

func (c *controller) Refresh(ctx context.Context) error {
	projects, err := c.workspace.All(ctx)
	if err != nil {
		return err
	}

	workspaceCfg := c.synchronizer.WorkspaceConfiguration()
	enabled := make(map[string]bool)
	desired := make(map[string]string)
	for _, project := range projects {
		on, ok := enabled[project.RootDir]
		if !ok {
			bc, err := c.synchronizer.BuildConfiguration(ctx, project.RootDir)
			if err != nil {
				c.logger.Warnw("Cannot read build configuration", "rootDir", project.RootDir, "error", err)
			}
			on = err == nil && bc.EffectiveAutoSync(workspaceCfg)
			enabled[project.RootDir] = on
		}
		if on {
			desired[project.Location] = project.RootDir
		}
	}

	c.watchedMu.Lock()
	defer c.watchedMu.Unlock()
	for dir := range c.watched {
		if _, ok := desired[dir]; ok {
			continue
		}
		if err := c.watcher.Remove(dir); err != nil {
			c.logger.Debugw("Failed to stop watching", "dir", dir, "error", err)
		}
		delete(c.watched, dir)
	}
	for dir, root := range desired {
		if _, ok := c.watched[dir]; ok {
			c.watched[dir] = root
			continue
		}
		if err := c.watcher.Add(dir); err != nil {
			c.logger.Warnf("Failed to watch for changes in %q: %v", dir, err)
			continue
		}
		c.watched[dir] = root
	}
	c.stats.Gauge("watched_dirs").Update(float64(len(c.watched)))
	return nil
}

func (c *controller) WatchedRoots() []string {
	c.watchedMu.Lock()
	defer c.watchedMu.Unlock()

	var roots []string
	for _, root := range c.watched {
		if !slices.Contains(roots, root) {
			roots = append(roots, root)
		}
	}
	slices.Sort(roots)
	return roots
}

func (c *controller) handleChanges() {
	defer close(c.done)
	for {
		select {
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			c.handleDebounce(event)
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			c.logger.Warnf("Failure in build file watcher: %v", err)
		case <-c.closer:
			return
		}
	}
}

// handleDebounce schedules a synchronization of the root owning a changed build file,
// replacing the one already scheduled for that root.
func (c *controller) handleDebounce(event fsnotify.Event) {
	if !slices.Contains(c.config.BuildFiles, filepath.Base(event.Name)) {
		return
	}
	c.watchedMu.Lock()
	root, ok := c.watched[filepath.Dir(event.Name)]
	c.watchedMu.Unlock()
	if !ok {
		return
	}

	c.debounceMu.Lock()
	defer c.debounceMu.Unlock()
	if c.stopped {
		return
	}
	if timer, exists := c.debounceTimers[root]; exists {
		timer.Stop()
	}
	var timer clock.Timer
	timer = c.clock.AfterFunc(c.config.Debounce, func() {
		c.debounceMu.Lock()
		if c.debounceTimers[root] == timer {
			delete(c.debounceTimers, root)
		}
		if c.stopped {
			c.debounceMu.Unlock()
			return
		}
		c.inflight.Add(1)
		c.debounceMu.Unlock()
		defer c.inflight.Done()

		c.synchronize(root, event.Name)
	})
	c.debounceTimers[root] = timer
}

func (c *controller) synchronize(root, changed string) {
	if c.ctx.Err() != nil {
		return
	}
	c.stats.Counter("triggered").Inc(1)
	c.logger.Infow("Build file changed, synchronizing", "rootDir", root, "file", changed)

	result, err := c.synchronizer.Synchronize(c.ctx, synchronizer.Request{
		Roots:  []string{root},
		Policy: entity.ImportAndMerge(),
	})
	if err != nil {
		c.logger.Warnw("Automatic synchronization rejected", "rootDir", root, "error", err)
		return
	}
	if err := result.Err(); err != nil {
		c.logger.Warnw("Automatic synchronization failed", "rootDir", root, "error", err)
	}
	// New subprojects bring new directories to watch.
	if err := c.Refresh(c.ctx); err != nil {
		c.logger.Warnw("Failed to refresh watched roots", "error", err)
	}
}

// stop cancels running synchronizations and waits for them before closing the watcher.
func (c *controller) stop() {
	c.stopOnce.Do(func() {
		c.cancel()
		close(c.closer)
		<-c.done

		c.debounceMu.Lock()
		c.stopped = true
		for _, timer := range c.debounceTimers {
			timer.Stop()
		}
		c.debounceTimers = make(map[string]clock.Timer)
		c.debounceMu.Unlock()
		c.inflight.Wait()

		if err := c.watcher.Close(); err != nil {
			c.logger.Warnf("Failed to close build file watcher: %v", err)
		}
	})
}
