package errors

import "fmt"

// ConfigurationError indicates malformed or missing configuration. It is detected before the build tool is invoked.
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

// Error is an implementation of the error interface.
func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("invalid configuration %q: %s", e.Field, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ConnectionError indicates that the build tool could not be started or reached.
type ConnectionError struct {
	RootDir string
	Err     error
}

// Error is an implementation of the error interface.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("could not connect to the build in %q: %v", e.RootDir, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// BuildError indicates that the build tool ran and reported a failure.
type BuildError struct {
	RootDir  string
	ExitCode int
	Output   string
	Err      error
}

// Error is an implementation of the error interface.
func (e *BuildError) Error() string {
	msg := fmt.Sprintf("build in %q failed with exit code %d", e.RootDir, e.ExitCode)
	if e.Output != "" {
		msg += "\n" + e.Output
	}
	return msg
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// UnsupportedConfigurationError indicates that the build describes a layout this system cannot manage.
type UnsupportedConfigurationError struct {
	Reason string
}

// Error is an implementation of the error interface.
func (e *UnsupportedConfigurationError) Error() string {
	return e.Reason
}

// WorkspaceError indicates that the workspace could not be updated.
type WorkspaceError struct {
	Op  string
	Err error
}

// Error is an implementation of the error interface.
func (e *WorkspaceError) Error() string {
	return fmt.Sprintf("workspace %s: %v", e.Op, e.Err)
}

func (e *WorkspaceError) Unwrap() error {
	return e.Err
}

// ConfiguratorError indicates that a project configurator failed.
type ConfiguratorError struct {
	ID      string
	Project string
	Err     error
}

// Error is an implementation of the error interface.
func (e *ConfiguratorError) Error() string {
	return fmt.Sprintf("configurator %q failed for project %q: %v", e.ID, e.Project, e.Err)
}

func (e *ConfiguratorError) Unwrap() error {
	return e.Err
}

// IllegalStateError indicates an operation that is invalid for the current state of its receiver.
type IllegalStateError struct {
	Reason string
}

// Error is an implementation of the error interface.
func (e *IllegalStateError) Error() string {
	return "illegal state: " + e.Reason
}

// ProjectNotFoundError indicates that no workspace project has the given id.
type ProjectNotFoundError struct {
	ID string
}

// Error is an implementation of the error interface.
func (e *ProjectNotFoundError) Error() string {
	return fmt.Sprintf("workspace project %q not found", e.ID)
}
