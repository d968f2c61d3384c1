package entity

import (
	"slices"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/codec"
)

// EffectiveRequestAttributes is the merged, immutable configuration passed to the build tool for one invocation.
type EffectiveRequestAttributes struct {
	RootDir        string       `json:"rootDir" zap:"rootDir"`
	GradleUserHome string       `json:"gradleUserHome,omitempty" zap:"gradleUserHome"`
	Distribution   Distribution `json:"distribution" zap:"distribution"`
	JavaHome       string       `json:"javaHome,omitempty" zap:"javaHome"`
	JVMArguments   []string     `json:"jvmArguments,omitempty" zap:"jvmArguments"`
	Arguments      []string     `json:"arguments,omitempty" zap:"arguments"`
}

// Equal reports whether two attribute sets can share a build tool connection.
func (a EffectiveRequestAttributes) Equal(other EffectiveRequestAttributes) bool {
	return a.RootDir == other.RootDir &&
		a.GradleUserHome == other.GradleUserHome &&
		a.Distribution == other.Distribution &&
		a.JavaHome == other.JavaHome &&
		slices.Equal(a.JVMArguments, other.JVMArguments) &&
		slices.Equal(a.Arguments, other.Arguments)
}

// Key returns a stable fingerprint of the attributes. Equal attributes have equal keys.
func (a EffectiveRequestAttributes) Key() string {
	digest, err := codec.Fingerprint(a.fingerprintFields())
	if err != nil {
		// Only plain strings are encoded, so encoding cannot fail.
		panic(err)
	}
	return digest.String()
}

// fingerprintFields normalizes nil and empty lists so that they fingerprint identically, matching Equal.
func (a EffectiveRequestAttributes) fingerprintFields() []any {
	jvmArgs := a.JVMArguments
	if jvmArgs == nil {
		jvmArgs = []string{}
	}
	args := a.Arguments
	if args == nil {
		args = []string{}
	}
	return []any{
		a.RootDir,
		a.GradleUserHome,
		int(a.Distribution.Type),
		a.Distribution.Configuration,
		a.JavaHome,
		jvmArgs,
		args,
	}
}

// Clone returns a copy that does not share argument slices with the receiver.
func (a EffectiveRequestAttributes) Clone() EffectiveRequestAttributes {
	a.JVMArguments = slices.Clone(a.JVMArguments)
	a.Arguments = slices.Clone(a.Arguments)
	return a
}
