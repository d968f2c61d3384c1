package entity

import (
	"context"
	"fmt"
	"time"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/errors"
	"go.uber.org/multierr"
)

// Subproject is one project of a build as reported by the build tool.
type Subproject struct {
	// Path is the build tool path of the project, ":" for the root project.
	Path        string   `json:"path"`
	Name        string   `json:"name"`
	ProjectDir  string   `json:"projectDir"`
	BuildDir    string   `json:"buildDir"`
	BuildScript string   `json:"buildScript,omitempty"`
	SourceDirs  []string `json:"sourceDirs,omitempty"`
	// ResourceDirs are the generated or linked resource folders outside the standard source sets.
	ResourceDirs []string `json:"resourceDirs,omitempty"`
	Classpath    []string `json:"classpath,omitempty"`
	Children     []string `json:"children,omitempty"`
	// Plugins are the ids of the plugins applied to the project.
	Plugins []string `json:"plugins,omitempty"`
}

// BuildModel is the structural model of one build root as reported by the build tool.
type BuildModel struct {
	RootDir       string       `json:"rootDir"`
	GradleVersion string       `json:"gradleVersion"`
	Projects      []Subproject `json:"projects"`
}

// Project is a project managed by the workspace.
type Project struct {
	ID       ProjectID `json:"id" yaml:"id"`
	Location string    `json:"location" yaml:"location"`
	RootDir  string    `json:"rootDir" yaml:"rootDir"`
	// Path is the build tool path of the project within its root.
	Path    string   `json:"path" yaml:"path"`
	Natures []string `json:"natures,omitempty" yaml:"natures,omitempty"`
}

// IsRoot reports whether the project is the root project of its build.
func (p Project) IsRoot() bool {
	return p.Location == p.RootDir
}

// PromptFunc decides whether a discovered project without a workspace counterpart is imported.
type PromptFunc func(ctx context.Context, rootDir string, candidate Subproject) (bool, error)

type newProjectHandlingKind int

const (
	importAndMerge newProjectHandlingKind = iota
	skipNew
	promptNew
)

// NewProjectHandling is the strategy applied to discovered projects that are not part of the workspace.
type NewProjectHandling struct {
	kind   newProjectHandlingKind
	prompt PromptFunc
}

// ImportAndMerge adds newly discovered projects to the workspace.
func ImportAndMerge() NewProjectHandling {
	return NewProjectHandling{kind: importAndMerge}
}

// SkipNewProjects leaves newly discovered projects unmanaged.
func SkipNewProjects() NewProjectHandling {
	return NewProjectHandling{kind: skipNew}
}

// PromptForNewProjects asks fn for every newly discovered project.
func PromptForNewProjects(fn PromptFunc) NewProjectHandling {
	return NewProjectHandling{kind: promptNew, prompt: fn}
}

// ParseNewProjectHandling maps the wire names "import", "skip" and "prompt" to a policy.
func ParseNewProjectHandling(name string, prompt PromptFunc) (NewProjectHandling, error) {
	switch name {
	case "", "import":
		return ImportAndMerge(), nil
	case "skip":
		return SkipNewProjects(), nil
	case "prompt":
		if prompt == nil {
			return NewProjectHandling{}, &errors.ConfigurationError{Field: "policy", Reason: "prompt policy requires a decision function"}
		}
		return PromptForNewProjects(prompt), nil
	default:
		return NewProjectHandling{}, &errors.ConfigurationError{Field: "policy", Reason: fmt.Sprintf("unknown policy %q", name)}
	}
}

// ShouldImport applies the policy to a discovered project.
func (p NewProjectHandling) ShouldImport(ctx context.Context, rootDir string, candidate Subproject) (bool, error) {
	switch p.kind {
	case importAndMerge:
		return true, nil
	case promptNew:
		if p.prompt == nil {
			return false, nil
		}
		return p.prompt(ctx, rootDir, candidate)
	default:
		return false, nil
	}
}

// String implements fmt.Stringer.
func (p NewProjectHandling) String() string {
	switch p.kind {
	case importAndMerge:
		return "import"
	case skipNew:
		return "skip"
	default:
		return "prompt"
	}
}

// SyncState is the state of one build root within a synchronization.
type SyncState int

const (
	SyncPending SyncState = iota
	SyncConnecting
	SyncQuerying
	SyncReconciling
	SyncCommitted
	SyncFailed
	SyncCancelled
)

var _syncTransitions = map[SyncState][]SyncState{
	SyncPending:     {SyncConnecting, SyncFailed, SyncCancelled},
	SyncConnecting:  {SyncQuerying, SyncFailed, SyncCancelled},
	SyncQuerying:    {SyncReconciling, SyncFailed, SyncCancelled},
	SyncReconciling: {SyncCommitted, SyncFailed, SyncCancelled},
}

// String implements fmt.Stringer.
func (s SyncState) String() string {
	switch s {
	case SyncPending:
		return "PENDING"
	case SyncConnecting:
		return "CONNECTING"
	case SyncQuerying:
		return "QUERYING"
	case SyncReconciling:
		return "RECONCILING"
	case SyncCommitted:
		return "COMMITTED"
	case SyncFailed:
		return "FAILED"
	case SyncCancelled:
		return "CANCELLED"
	default:
		return fmt.Sprintf("SyncState(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s SyncState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether no further transitions are possible.
func (s SyncState) Terminal() bool {
	return s == SyncCommitted || s == SyncFailed || s == SyncCancelled
}

// CanTransition reports whether next is a legal successor of s.
func (s SyncState) CanTransition(next SyncState) bool {
	for _, candidate := range _syncTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// RootOutcome is the result of synchronizing one build root.
type RootOutcome struct {
	RootDir string        `json:"rootDir"`
	State   SyncState     `json:"state"`
	Trace   []SyncState   `json:"trace"`
	Err     error         `json:"-"`
	Status  errors.Status `json:"status"`
	// Created are the projects added to the workspace.
	Created []ProjectID `json:"created,omitempty"`
	// Updated are the existing projects whose model was replaced.
	Updated []ProjectID `json:"updated,omitempty"`
	// Skipped are the paths of discovered projects left unmanaged.
	Skipped []string `json:"skipped,omitempty"`
	// Orphaned are projects mapped to the root that the build tool no longer reports.
	Orphaned []ProjectID   `json:"orphaned,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
	Duration time.Duration `json:"duration"`
}

// SyncResult aggregates the outcomes of one synchronization.
type SyncResult struct {
	RunID    string        `json:"runId"`
	Outcomes []RootOutcome `json:"outcomes"`
}

// Outcome returns the outcome recorded for rootDir.
func (r SyncResult) Outcome(rootDir string) (RootOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.RootDir == rootDir {
			return o, true
		}
	}
	return RootOutcome{}, false
}

// Err combines the failures of all roots. Cancelled roots do not contribute.
func (r SyncResult) Err() error {
	var err error
	for _, o := range r.Outcomes {
		if o.State == SyncFailed {
			err = multierr.Append(err, fmt.Errorf("%s: %w", o.RootDir, o.Err))
		}
	}
	return err
}

// Cancelled reports whether any root was cancelled.
func (r SyncResult) Cancelled() bool {
	for _, o := range r.Outcomes {
		if o.State == SyncCancelled {
			return true
		}
	}
	return false
}

// ProgressEvent is a progress notification emitted during a build tool invocation.
type ProgressEvent struct {
	Description string
	Time        time.Time
	// Heartbeat is set for periodic events emitted while the build tool is silent.
	Heartbeat bool
}

// ProgressListener receives progress events. Implementations must be safe for concurrent use.
type ProgressListener interface {
	ProgressChanged(event ProgressEvent)
}

// ProgressListenerFunc adapts a function to a ProgressListener.
type ProgressListenerFunc func(event ProgressEvent)

// ProgressChanged implements ProgressListener.
func (f ProgressListenerFunc) ProgressChanged(event ProgressEvent) {
	f(event)
}

// CombineListeners returns a listener that forwards every event to each non-nil listener, in order.
func CombineListeners(listeners ...ProgressListener) ProgressListener {
	return ProgressListenerFunc(func(event ProgressEvent) {
		for _, l := range listeners {
			if l != nil {
				l.ProgressChanged(event)
			}
		}
	})
}

// InvocationCustomizer contributes extra arguments to every build tool invocation.
type InvocationCustomizer interface {
	ExtraArguments() []string
}

// ConfigureRequest carries the project a configurator is applied to.
type ConfigureRequest struct {
	Project Project
	// Subproject is the build tool's view of the project.
	Subproject Subproject
	Model      PersistentModel
}

// Configurator adjusts workspace projects after their model is committed.
type Configurator interface {
	Configure(ctx context.Context, req ConfigureRequest) error
	Unconfigure(ctx context.Context, project Project) error
}

// ConfiguratorContribution is a registered configurator with its identity and provenance.
type ConfiguratorContribution struct {
	ID string
	// Source is the provenance of the contribution, e.g. the contributing component.
	Source       string
	Configurator Configurator
}

// FullyQualifiedID is the id used to detect duplicate contributions.
func (c ConfiguratorContribution) FullyQualifiedID() string {
	return c.Source + "." + c.ID
}
