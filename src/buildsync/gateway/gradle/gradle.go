// Package gradle is the build tool client. It launches the build tool with an init script that reports
// the structural model of a build root.
package gradle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/entity"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/cancellation"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/clock"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/errors"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/executor"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/fs"
	tally "github.com/uber-go/tally/v4"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Module provides the build tool Client and closes it on shutdown.
var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(func(lc fx.Lifecycle, c Client) {
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return c.Close() }})
	}),
)

const (
	_nameKey            = "gradle"
	_defaultCommand     = "gradle"
	_wrapperScript      = "gradlew"
	_jvmArgsProperty    = "-Dorg.gradle.jvmargs="
	_javaHomeEnv        = "JAVA_HOME"
	_gradleUserHomeEnv  = "GRADLE_USER_HOME"
	_outputTailLines    = 40
	_defaultProgressGap = 5 * time.Second
)

// Client queries the structural model of build roots.
type Client interface {
	// Query runs the build tool for attrs.RootDir and returns its structural model.
	// It returns an error wrapping errors.ErrCancelled once token is cancelled.
	Query(ctx context.Context, attrs entity.EffectiveRequestAttributes, token cancellation.Token, listener entity.ProgressListener) (*entity.BuildModel, error)
	// Close releases all cached connections.
	Close() error
}

// Config is the gradle section of the configuration.
type Config struct {
	// Command is the launcher used when a build has no wrapper script.
	Command string `yaml:"command"`
	// InstallationsDir contains gradle-<version> installations used by version distributions.
	InstallationsDir string `yaml:"installationsDir"`
	// SupportedVersions is a semantic version constraint, e.g. ">= 4.3".
	SupportedVersions string `yaml:"supportedVersions"`
	// ProgressInterval is the period of heartbeat events while the build tool is silent. Zero disables them.
	ProgressInterval time.Duration `yaml:"progressInterval"`
	// TempDir holds init scripts and model outputs. Defaults to the system temporary directory.
	TempDir string `yaml:"tempDir"`
}

// Params are the dependencies of the Client.
type Params struct {
	fx.In

	Config   config.Provider
	Logger   *zap.SugaredLogger
	Stats    tally.Scope
	Executor executor.Executor
	FS       fs.BuildsyncFS
	Clock    clock.Clock
	// Output receives the build tool output of every query, one line per root prefixed with the root.
	Output io.Writer `name:"buildOutput" optional:"true"`
}

// connection is the resolved launcher for one set of request attributes.
type connection struct {
	attrs      entity.EffectiveRequestAttributes
	launcher   string
	initScript string
}

type client struct {
	cfg       Config
	supported *semver.Constraints
	logger    *zap.SugaredLogger
	stats     tally.Scope
	executor  executor.Executor
	fs        fs.BuildsyncFS
	clock     clock.Clock
	output    io.Writer

	mu          sync.Mutex
	connections map[string]*connection
}

// New creates a Client.
func New(p Params) (Client, error) {
	cfg := Config{ProgressInterval: _defaultProgressGap}
	if err := p.Config.Get(entity.GradleConfigKey).Populate(&cfg); err != nil {
		return nil, fmt.Errorf("getting configuration for %q: %w", entity.GradleConfigKey, err)
	}
	if cfg.Command == "" {
		cfg.Command = _defaultCommand
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}

	c := &client{
		cfg:         cfg,
		logger:      p.Logger.With("plugin", _nameKey),
		stats:       p.Stats.SubScope(_nameKey),
		executor:    p.Executor,
		fs:          p.FS,
		clock:       p.Clock,
		output:      p.Output,
		connections: make(map[string]*connection),
	}
	if c.output == nil {
		c.output = io.Discard
	}
	if cfg.SupportedVersions != "" {
		constraint, err := semver.NewConstraint(cfg.SupportedVersions)
		if err != nil {
			return nil, &errors.ConfigurationError{Field: "gradle.supportedVersions", Reason: "invalid version constraint", Err: err}
		}
		c.supported = constraint
	}
	return c, nil
}

func (c *client) Query(ctx context.Context, attrs entity.EffectiveRequestAttributes, token cancellation.Token, listener entity.ProgressListener) (*entity.BuildModel, error) {
	if token == nil {
		token = cancellation.NewTokenSource().Token()
	}
	if token.IsCancellationRequested() {
		return nil, errors.ErrCancelled
	}
	conn, err := c.connect(attrs)
	if err != nil {
		return nil, err
	}
	c.stats.Counter("queries").Inc(1)

	output, err := c.fs.WriteTemp(c.cfg.TempDir, "buildsync-model-", nil)
	if err != nil {
		return nil, &errors.ConnectionError{RootDir: attrs.RootDir, Err: err}
	}
	defer func() {
		if err := c.fs.Remove(output); err != nil {
			c.logger.Warnw("Cannot remove model output", "path", output, "error", err)
		}
	}()

	runCtx, cancel := cancellation.WithToken(ctx, token)
	defer cancel()

	console := c.consoleListener(attrs.RootDir)
	progress := newLineWriter(c.clock, entity.CombineListeners(listener, console))
	errOutput := newLineWriter(c.clock, console)
	stderr := newTailBuffer(_outputTailLines)
	cmd, env := c.prepareCommandAndEnv(runCtx, conn, output, progress, io.MultiWriter(stderr, errOutput))

	stopHeartbeat := c.heartbeat(listener)
	err = c.executor.RunCommand(cmd, env)
	stopHeartbeat()
	progress.Flush()
	errOutput.Flush()

	if token.IsCancellationRequested() || (err != nil && ctx.Err() != nil) {
		return nil, fmt.Errorf("build in %q: %w", attrs.RootDir, errors.ErrCancelled)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &errors.BuildError{RootDir: attrs.RootDir, ExitCode: exitErr.ExitCode(), Output: stderr.String(), Err: err}
		}
		return nil, &errors.ConnectionError{RootDir: attrs.RootDir, Err: err}
	}

	model, err := c.readModel(output)
	if err != nil {
		return nil, &errors.BuildError{RootDir: attrs.RootDir, Output: stderr.String(), Err: err}
	}
	if err := c.checkVersion(model.GradleVersion); err != nil {
		return nil, err
	}
	return model, nil
}

// consoleListener copies the output lines of a query to the build output.
func (c *client) consoleListener(rootDir string) entity.ProgressListener {
	return entity.ProgressListenerFunc(func(event entity.ProgressEvent) {
		fmt.Fprintf(c.output, "[%s] %s\n", rootDir, event.Description)
	})
}

// connect returns the cached connection for attrs, creating it on first use.
func (c *client) connect(attrs entity.EffectiveRequestAttributes) (*connection, error) {
	key := attrs.Key()

	c.mu.Lock()
	defer c.mu.Unlock()

	if conn, ok := c.connections[key]; ok && conn.attrs.Equal(attrs) {
		c.stats.Counter("connections_reused").Inc(1)
		return conn, nil
	}

	launcher, err := c.resolveLauncher(attrs)
	if err != nil {
		return nil, err
	}
	script, err := c.fs.WriteTemp(c.cfg.TempDir, "buildsync-init-", []byte(_initScript))
	if err != nil {
		return nil, &errors.ConnectionError{RootDir: attrs.RootDir, Err: fmt.Errorf("writing init script: %w", err)}
	}
	// Gradle requires the .gradle extension for init scripts.
	if err := c.fs.Rename(script, script+".gradle"); err != nil {
		_ = c.fs.Remove(script)
		return nil, &errors.ConnectionError{RootDir: attrs.RootDir, Err: fmt.Errorf("writing init script: %w", err)}
	}

	conn := &connection{attrs: attrs.Clone(), launcher: launcher, initScript: script + ".gradle"}
	c.connections[key] = conn
	c.stats.Counter("connections_created").Inc(1)
	c.logger.Debugw("Created build tool connection", "rootDir", attrs.RootDir, "launcher", launcher, "distribution", attrs.Distribution.String())
	return conn, nil
}

// resolveLauncher selects the executable for the distribution of attrs.
func (c *client) resolveLauncher(attrs entity.EffectiveRequestAttributes) (string, error) {
	d := attrs.Distribution
	switch d.Type {
	case entity.DistributionWrapper:
		wrapper := filepath.Join(attrs.RootDir, _wrapperScript)
		exists, err := c.fs.FileExists(wrapper)
		if err != nil {
			return "", &errors.ConnectionError{RootDir: attrs.RootDir, Err: err}
		}
		if exists {
			return wrapper, nil
		}
		return c.cfg.Command, nil
	case entity.DistributionLocalInstallation:
		return c.installedLauncher(attrs.RootDir, d.Configuration)
	case entity.DistributionVersion:
		return c.versionLauncher(attrs.RootDir, d.Configuration)
	case entity.DistributionRemote:
		version, ok := versionFromDistributionURI(d.Configuration)
		if !ok {
			return "", &errors.UnsupportedConfigurationError{Reason: fmt.Sprintf("cannot determine the version of remote distribution %q", d.Configuration)}
		}
		return c.versionLauncher(attrs.RootDir, version)
	default:
		return "", &errors.ConnectionError{RootDir: attrs.RootDir, Err: fmt.Errorf("unknown distribution %s", d.Type)}
	}
}

func (c *client) versionLauncher(rootDir, version string) (string, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return "", &errors.ConnectionError{RootDir: rootDir, Err: fmt.Errorf("invalid version %q: %w", version, err)}
	}
	if err := c.checkVersion(v.Original()); err != nil {
		return "", err
	}
	if c.cfg.InstallationsDir == "" {
		return "", &errors.ConnectionError{RootDir: rootDir, Err: fmt.Errorf("no installation directory configured for version %s", version)}
	}
	return c.installedLauncher(rootDir, filepath.Join(c.cfg.InstallationsDir, "gradle-"+v.Original()))
}

func (c *client) installedLauncher(rootDir, installDir string) (string, error) {
	launcher := filepath.Join(installDir, "bin", _defaultCommand)
	exists, err := c.fs.FileExists(launcher)
	if err != nil {
		return "", &errors.ConnectionError{RootDir: rootDir, Err: err}
	}
	if !exists {
		return "", &errors.ConnectionError{RootDir: rootDir, Err: fmt.Errorf("no build tool installation at %q", installDir)}
	}
	return launcher, nil
}

// checkVersion verifies version against the supported versions. An empty version is not checked.
func (c *client) checkVersion(version string) error {
	if c.supported == nil || version == "" {
		return nil
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		c.logger.Warnw("Cannot parse build tool version", "version", version, "error", err)
		return nil
	}
	if ok, reasons := c.supported.Validate(v); !ok {
		return &errors.UnsupportedConfigurationError{
			Reason: fmt.Sprintf("build tool version %s is not supported: %v", version, multierr.Combine(reasons...)),
		}
	}
	return nil
}

// versionFromDistributionURI extracts the version of distribution archives named gradle-<version>-(bin|all).zip.
func versionFromDistributionURI(uri string) (string, bool) {
	name := uri[strings.LastIndex(uri, "/")+1:]
	if !strings.HasPrefix(name, "gradle-") {
		return "", false
	}
	for _, suffix := range []string{"-bin.zip", "-all.zip"} {
		if strings.HasSuffix(name, suffix) {
			version := strings.TrimSuffix(strings.TrimPrefix(name, "gradle-"), suffix)
			return version, version != ""
		}
	}
	return "", false
}

func (c *client) prepareCommandAndEnv(ctx context.Context, conn *connection, output string, stdout, stderr io.Writer) (*exec.Cmd, []string) {
	attrs := conn.attrs
	args := []string{
		"--init-script", conn.initScript,
		"-P" + _modelOutputProperty + "=" + output,
	}
	if len(attrs.JVMArguments) > 0 {
		args = append(args, _jvmArgsProperty+strings.Join(attrs.JVMArguments, " "))
	}
	args = append(args, attrs.Arguments...)
	args = append(args, _modelTask)

	cmd := exec.CommandContext(ctx, conn.launcher, args...)
	cmd.Dir = attrs.RootDir
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	env := os.Environ()
	if attrs.JavaHome != "" {
		env = append(env, _javaHomeEnv+"="+attrs.JavaHome)
	}
	if attrs.GradleUserHome != "" {
		env = append(env, _gradleUserHomeEnv+"="+attrs.GradleUserHome)
	}
	return cmd, env
}

func (c *client) readModel(output string) (*entity.BuildModel, error) {
	data, err := c.fs.ReadFile(output)
	if err != nil {
		return nil, fmt.Errorf("reading model: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("the build did not report a model")
	}
	var model entity.BuildModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("decoding model: %w", err)
	}
	return &model, nil
}

// heartbeat emits periodic progress events until the returned function is called.
func (c *client) heartbeat(listener entity.ProgressListener) (stop func()) {
	if listener == nil || c.cfg.ProgressInterval <= 0 {
		return func() {}
	}
	ticker := c.clock.NewTicker(c.cfg.ProgressInterval)
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			case t := <-ticker.C():
				listener.ProgressChanged(entity.ProgressEvent{Description: "Waiting for the build", Time: t, Heartbeat: true})
			}
		}
	}()
	return func() {
		ticker.Stop()
		close(done)
		wg.Wait()
	}
}

func (c *client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs error
	for key, conn := range c.connections {
		errs = multierr.Append(errs, c.fs.Remove(conn.initScript))
		delete(c.connections, key)
	}
	return errs
}
