// Package request builds the effective attributes of a build tool invocation from layered configuration.
package request

import (
	"path/filepath"
	"slices"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/entity"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/errors"
)

// ArgumentSource supplies the contributed arguments appended to every invocation.
type ArgumentSource interface {
	ExtraArguments() []string
}

// Builder accumulates request attributes. It is an immutable value: every With method returns a new
// Builder and leaves the receiver untouched, so a partially configured Builder can be shared.
type Builder struct {
	rootDir        string
	gradleUserHome string
	distribution   entity.Distribution
	javaHome       string
	jvmArguments   []string
	arguments      []string

	// err is the first error recorded while building. It is reported by Build.
	err error
}

// FromDefaults starts an empty request for rootDir that inherits the distribution declared by the build.
func FromDefaults(rootDir string) Builder {
	b := Builder{distribution: entity.InheritDistribution()}
	if rootDir == "" {
		b.err = &errors.ConfigurationError{Field: "rootDir", Reason: "must not be empty", Err: errors.ErrNoRootDir}
		return b
	}
	b.rootDir = canonical(rootDir)
	return b
}

// FromWorkspaceSettings starts from FromDefaults and applies the workspace configuration followed by
// the contributed arguments, in the order received.
func FromWorkspaceSettings(rootDir string, ws entity.WorkspaceConfiguration, contributions ArgumentSource) Builder {
	b := FromDefaults(rootDir)
	if ws.GradleUserHome != "" {
		b = b.WithGradleUserHome(ws.GradleUserHome)
	}
	if ws.Offline {
		b = b.withFlag(entity.OfflineArgument)
	}
	if contributions != nil {
		if extra := contributions.ExtraArguments(); len(extra) > 0 {
			b = b.WithArguments(extra...)
		}
	}
	return b
}

// ForBuild composes the request for a build root: the workspace settings, or the root's own values when it
// overrides them, then the contributed arguments, then the root's distribution, Java home and arguments.
func ForBuild(ws entity.WorkspaceConfiguration, bc entity.BuildConfiguration, contributions ArgumentSource) (entity.EffectiveRequestAttributes, error) {
	effective := ws
	if bc.OverrideWorkspaceSettings {
		effective = entity.WorkspaceConfiguration{
			GradleUserHome: bc.GradleUserHome,
			Offline:        bc.OfflineMode,
			AutoSync:       bc.AutoSync,
		}
	}

	b := FromWorkspaceSettings(bc.RootDir, effective, contributions).WithDistribution(bc.Distribution)
	if bc.JavaHome != "" {
		b = b.WithJavaHome(bc.JavaHome)
	}
	if len(bc.JVMArguments) > 0 {
		b = b.WithJVMArguments(bc.JVMArguments...)
	}
	if len(bc.Arguments) > 0 {
		b = b.WithArguments(bc.Arguments...)
	}
	if bc.BuildScansEnabled {
		b = b.withFlag(entity.BuildScanArgument)
	}
	return b.Build()
}

// WithGradleUserHome overrides the build tool home directory.
func (b Builder) WithGradleUserHome(dir string) Builder {
	b.gradleUserHome = dir
	return b
}

// WithDistribution overrides the distribution. The zero value inherits from the build.
func (b Builder) WithDistribution(d entity.Distribution) Builder {
	b.distribution = d
	return b
}

// WithJavaHome overrides the Java home.
func (b Builder) WithJavaHome(dir string) Builder {
	b.javaHome = dir
	return b
}

// WithJVMArguments appends JVM arguments. An empty list is rejected.
func (b Builder) WithJVMArguments(args ...string) Builder {
	if len(args) == 0 {
		return b.fail("jvmArguments")
	}
	b.jvmArguments = append(slices.Clone(b.jvmArguments), args...)
	return b
}

// WithArguments appends invocation arguments. An empty list is rejected.
// The offline and build scan flags are kept at their first position.
func (b Builder) WithArguments(args ...string) Builder {
	if len(args) == 0 {
		return b.fail("arguments")
	}
	out := slices.Clone(b.arguments)
	for _, arg := range args {
		if isFlag(arg) && slices.Contains(out, arg) {
			continue
		}
		out = append(out, arg)
	}
	b.arguments = out
	return b
}

// Build returns the accumulated attributes, or the first error recorded while building.
func (b Builder) Build() (entity.EffectiveRequestAttributes, error) {
	if b.err != nil {
		return entity.EffectiveRequestAttributes{}, b.err
	}
	return entity.EffectiveRequestAttributes{
		RootDir:        b.rootDir,
		GradleUserHome: b.gradleUserHome,
		Distribution:   b.distribution,
		JavaHome:       b.javaHome,
		JVMArguments:   slices.Clone(b.jvmArguments),
		Arguments:      slices.Clone(b.arguments),
	}, nil
}

// withFlag appends a synthetic flag unless it is already present, so the flag occurs at most once.
func (b Builder) withFlag(flag string) Builder {
	if !slices.Contains(b.arguments, flag) {
		b.arguments = append(slices.Clone(b.arguments), flag)
	}
	return b
}

func isFlag(arg string) bool {
	return arg == entity.OfflineArgument || arg == entity.BuildScanArgument
}

func (b Builder) fail(field string) Builder {
	if b.err == nil {
		b.err = &errors.ConfigurationError{Field: field, Reason: "an explicit empty override is not allowed, omit the call instead"}
	}
	return b
}

func canonical(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}
