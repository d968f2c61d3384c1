// Package executor runs external processes on behalf of the build tool gateway.
package executor

import (
	"bytes"
	"errors"
	"io"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides a module to inject using fx.
var Module = fx.Provide(func(logger *zap.SugaredLogger) Executor {
	return NewExecutor(WithLogger(logger.With("plugin", "executor")))
})

// Executor wraps the execution of "os/exec".Cmd's so that every process launch is logged
// and can be replaced in tests.
type Executor interface {
	// RunCommand logs and executes cmd with the given environment, blocking until it exits.
	RunCommand(cmd *exec.Cmd, env []string) error
}

type executorImpl struct {
	logger *zap.SugaredLogger
	// execFunc may be nil to skip execution in tests.
	execFunc func(cmd *exec.Cmd) error
	now      func() time.Time
}

// Option defines options to customize the executor's behavior
type Option func(*executorImpl)

// WithLogger overrides the default noop logger
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(e *executorImpl) {
		e.logger = logger
	}
}

// WithExecFunc replaces the function that runs the command.
func WithExecFunc(execFunc func(cmd *exec.Cmd) error) Option {
	return func(e *executorImpl) {
		e.execFunc = execFunc
	}
}

// NewExecutor creates an Executor that runs commands with cmd.Run unless overridden.
func NewExecutor(opts ...Option) Executor {
	e := &executorImpl{
		logger:   zap.NewNop().Sugar(),
		execFunc: func(cmd *exec.Cmd) error { return cmd.Run() },
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunCommand logs the Path/Args and calls the exec function if it is set.
func (e *executorImpl) RunCommand(cmd *exec.Cmd, env []string) error {
	if err := e.logCommand(cmd, env); err != nil {
		return err
	}

	if e.execFunc == nil {
		e.logger.Warn("missing ExecFunc - skipped execution")
		return nil
	}

	cmd.Env = env
	start := e.now()
	err := e.execFunc(cmd)

	exitCode := 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	} else if err != nil {
		exitCode = -1
	}
	e.logger.Debugw("Exec finished", "Path", cmd.Path, "ExitCode", exitCode, "Duration", e.now().Sub(start))
	return err
}

// logCommand logs Path, Dir, Args, the names of the environment variables and Stdin if available.
func (e *executorImpl) logCommand(cmd *exec.Cmd, env []string) error {
	keysAndValues := []interface{}{
		"Path", cmd.Path,
		"Dir", cmd.Dir,
		"Args", cmd.Args[1:], // First arg is always the command itself
	}

	if len(env) > 0 {
		names := make([]string, 0, len(env))
		for _, kv := range env {
			name, _, _ := strings.Cut(kv, "=")
			names = append(names, name)
		}
		keysAndValues = append(keysAndValues, "Env", names)
	}

	if cmd.Stdin != nil {
		stdinBytes, err := io.ReadAll(cmd.Stdin)
		if err != nil {
			return err
		}
		keysAndValues = append(keysAndValues, "Stdin", string(stdinBytes))
		cmd.Stdin = bytes.NewReader(stdinBytes)
	}

	e.logger.Infow("Exec", keysAndValues...)
	return nil
}
