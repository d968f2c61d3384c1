// Package errors defines the error taxonomy shared by the buildsync components.
package errors

import stderr "errors"

// New returns an error that formats as the given text.
// Each call to New returns a distinct error value even if the text is identical.
func New(msg string) error {
	return stderr.New(msg)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return stderr.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return stderr.As(err, target)
}

var (
	// ErrCancelled reports that an operation stopped because cancellation was requested.
	// Cancellation is an outcome, not a failure.
	ErrCancelled = New("operation cancelled")
	// ErrNoRootDir reports that a request was built without a root directory.
	ErrNoRootDir = New("root directory is required")
)

// IsCancelled reports whether the error is the result of a cancellation.
func IsCancelled(err error) bool {
	return stderr.Is(err, ErrCancelled)
}

// IsBadRequest reports whether the error was caused by invalid caller input.
func IsBadRequest(err error) bool {
	var cfgErr *ConfigurationError
	return stderr.As(err, &cfgErr)
}

// IsNotFound reports whether the error reports a missing workspace project.
func IsNotFound(err error) bool {
	var nf *ProjectNotFoundError
	return stderr.As(err, &nf)
}
