package errors

import (
	stderr "errors"
	"fmt"
	"strings"
)

// StatusKind is the category a failure is reported under.
type StatusKind int

const (
	// StatusOK means no failure.
	StatusOK StatusKind = iota
	StatusCancelled
	StatusConfigurationInvalid
	StatusBuildFailed
	StatusConnectionFailed
	StatusUnsupportedConfiguration
	StatusWorkspaceFailed
	StatusPluginFailed
	StatusUnknown
)

// Severity of a status.
type Severity int

const (
	SeverityOK Severity = iota
	SeverityCancel
	SeverityWarning
	SeverityError
)

var _statusTemplates = map[StatusKind]struct {
	severity Severity
	template string
}{
	StatusOK:                       {SeverityOK, "%s succeeded."},
	StatusCancelled:                {SeverityCancel, "%s cancelled."},
	StatusConfigurationInvalid:     {SeverityError, "%s failed due to an invalid configuration."},
	StatusBuildFailed:              {SeverityWarning, "%s failed due to an error in the referenced Gradle build."},
	StatusConnectionFailed:         {SeverityWarning, "%s failed due to an error connecting to the Gradle build."},
	StatusUnsupportedConfiguration: {SeverityWarning, "%s failed due to an unsupported configuration in the referenced Gradle build."},
	StatusWorkspaceFailed:          {SeverityError, "%s failed due to an error updating the workspace."},
	StatusPluginFailed:             {SeverityError, "%s failed due to an error configuring the workspace project."},
	StatusUnknown:                  {SeverityError, "%s failed due to an unexpected error."},
}

// String implements fmt.Stringer.
func (k StatusKind) String() string {
	switch k {
	case StatusOK:
		return "ok"
	case StatusCancelled:
		return "cancelled"
	case StatusConfigurationInvalid:
		return "configuration_invalid"
	case StatusBuildFailed:
		return "build_failed"
	case StatusConnectionFailed:
		return "connection_failed"
	case StatusUnsupportedConfiguration:
		return "unsupported_configuration"
	case StatusWorkspaceFailed:
		return "workspace_failed"
	case StatusPluginFailed:
		return "plugin_failed"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k StatusKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// String implements fmt.Stringer.
func (s Severity) String() string {
	switch s {
	case SeverityOK:
		return "ok"
	case SeverityCancel:
		return "cancel"
	case SeverityWarning:
		return "warning"
	default:
		return "error"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Status is the user facing classification of an operation's outcome.
type Status struct {
	Kind     StatusKind `json:"kind"`
	Severity Severity   `json:"severity"`
	Message  string     `json:"message"`
	// Details holds the collected cause messages of the failure.
	Details string `json:"details,omitempty"`
}

// OK reports whether the status describes a success.
func (s Status) OK() bool {
	return s.Kind == StatusOK
}

// Classify maps the outcome of the named work to a Status.
func Classify(work string, err error) Status {
	kind := classifyKind(err)
	t := _statusTemplates[kind]
	status := Status{
		Kind:     kind,
		Severity: t.severity,
		Message:  fmt.Sprintf(t.template, work),
	}
	if kind != StatusOK && kind != StatusCancelled {
		status.Details = CollectMessages(err)
	}
	return status
}

func classifyKind(err error) StatusKind {
	var (
		cfgErr         *ConfigurationError
		buildErr       *BuildError
		connErr        *ConnectionError
		unsupportedErr *UnsupportedConfigurationError
		wsErr          *WorkspaceError
		pluginErr      *ConfiguratorError
	)
	switch {
	case err == nil:
		return StatusOK
	case stderr.Is(err, ErrCancelled):
		return StatusCancelled
	case stderr.As(err, &cfgErr):
		return StatusConfigurationInvalid
	case stderr.As(err, &unsupportedErr):
		return StatusUnsupportedConfiguration
	case stderr.As(err, &buildErr):
		return StatusBuildFailed
	case stderr.As(err, &connErr):
		return StatusConnectionFailed
	case stderr.As(err, &wsErr):
		return StatusWorkspaceFailed
	case stderr.As(err, &pluginErr):
		return StatusPluginFailed
	default:
		return StatusUnknown
	}
}

// CollectMessages returns the message of err followed by the messages of its causes, one line each,
// with adjacent duplicate lines removed. Messages repeated from a wrapped cause are reported once.
func CollectMessages(err error) string {
	if err == nil {
		return ""
	}
	var lines []string
	for cur := err; cur != nil; cur = stderr.Unwrap(cur) {
		msg := cur.Error()
		if next := stderr.Unwrap(cur); next != nil {
			msg = strings.TrimSuffix(msg, ": "+next.Error())
		}
		for _, line := range strings.Split(msg, "\n") {
			if line == "" {
				continue
			}
			if len(lines) > 0 && lines[len(lines)-1] == line {
				continue
			}
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
