package request

import (
	"path/filepath"
	"slices"
	"testing"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/entity"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticArguments []string

func (s staticArguments) ExtraArguments() []string { return s }

func TestFromDefaults(t *testing.T) {
	for _, root := range []string{"/ws/app", "/ws/app/", "/ws/./app", "relative/app"} {
		t.Run(root, func(t *testing.T) {
			first, err := FromDefaults(root).Build()
			require.NoError(t, err)
			second, err := FromDefaults(root).Build()
			require.NoError(t, err)

			assert.True(t, first.Equal(second))
			assert.Equal(t, first.Key(), second.Key())
			assert.True(t, filepath.IsAbs(first.RootDir))
			assert.Equal(t, entity.InheritDistribution(), first.Distribution)
			assert.Empty(t, first.Arguments)
			assert.Empty(t, first.JVMArguments)
		})
	}
}

func TestFromDefaultsRequiresRootDir(t *testing.T) {
	_, err := FromDefaults("").WithJavaHome("/jdk").Build()
	var cfgErr *errors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "rootDir", cfgErr.Field)
	assert.ErrorIs(t, err, errors.ErrNoRootDir)
}

func TestFromWorkspaceSettings(t *testing.T) {
	tests := []struct {
		name     string
		ws       entity.WorkspaceConfiguration
		extra    ArgumentSource
		wantArgs []string
		wantHome string
	}{
		{
			name: "defaults",
		},
		{
			name:     "offline with home",
			ws:       entity.WorkspaceConfiguration{Offline: true, GradleUserHome: "/g"},
			wantArgs: []string{"--offline"},
			wantHome: "/g",
		},
		{
			name:     "contributed arguments follow offline in order",
			ws:       entity.WorkspaceConfiguration{Offline: true},
			extra:    staticArguments{"--init-script", "a.gradle", "--init-script", "b.gradle"},
			wantArgs: []string{"--offline", "--init-script", "a.gradle", "--init-script", "b.gradle"},
		},
		{
			name:     "contributed offline is not duplicated",
			ws:       entity.WorkspaceConfiguration{Offline: true},
			extra:    staticArguments{"--offline", "--info"},
			wantArgs: []string{"--offline", "--info"},
		},
		{
			name:  "empty contribution",
			extra: staticArguments{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs, err := FromWorkspaceSettings("/ws/app", tt.ws, tt.extra).Build()
			require.NoError(t, err)
			assert.Equal(t, tt.wantArgs, attrs.Arguments)
			assert.Equal(t, tt.wantHome, attrs.GradleUserHome)
		})
	}
}

func TestOfflineAppearsOnceBeforeProjectArguments(t *testing.T) {
	projectArgs := [][]string{
		{"--info"},
		{"--offline", "--stacktrace"},
		{"-Pkey=value", "--offline", "--offline"},
	}
	for _, args := range projectArgs {
		attrs, err := FromWorkspaceSettings("/ws/app", entity.WorkspaceConfiguration{Offline: true}, nil).
			WithArguments(args...).
			Build()
		require.NoError(t, err)

		count := 0
		for _, a := range attrs.Arguments {
			if a == entity.OfflineArgument {
				count++
			}
		}
		assert.Equal(t, 1, count, args)
		assert.Equal(t, 0, slices.Index(attrs.Arguments, entity.OfflineArgument), args)
	}
}

func TestFluentSetters(t *testing.T) {
	base := FromDefaults("/ws/app").WithArguments("--info")

	a, err := base.WithArguments("--stacktrace").WithJVMArguments("-Xmx1g").Build()
	require.NoError(t, err)
	b, err := base.WithArguments("--debug").
		WithDistribution(entity.VersionDistribution("8.5")).
		WithDistribution(entity.VersionDistribution("8.6")).
		WithJavaHome("/jdk17").
		WithGradleUserHome("/g").
		Build()
	require.NoError(t, err)

	assert.Equal(t, []string{"--info", "--stacktrace"}, a.Arguments)
	assert.Equal(t, []string{"-Xmx1g"}, a.JVMArguments)
	assert.Equal(t, []string{"--info", "--debug"}, b.Arguments, "builders derived from a shared base do not interfere")
	assert.Equal(t, entity.VersionDistribution("8.6"), b.Distribution, "later calls win")
	assert.Equal(t, "/jdk17", b.JavaHome)
	assert.Equal(t, "/g", b.GradleUserHome)

	built, err := base.Build()
	require.NoError(t, err)
	built.Arguments[0] = "--changed"
	again, err := base.Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"--info"}, again.Arguments, "built values do not alias the builder")
}

func TestEmptyOverrideRejected(t *testing.T) {
	tests := []struct {
		name  string
		b     Builder
		field string
	}{
		{name: "arguments", b: FromDefaults("/r").WithArguments(), field: "arguments"},
		{name: "jvm arguments", b: FromDefaults("/r").WithJVMArguments(), field: "jvmArguments"},
		{name: "first error wins", b: FromDefaults("/r").WithJVMArguments().WithArguments(), field: "jvmArguments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.b.Build()
			var cfgErr *errors.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestForBuild(t *testing.T) {
	ws := entity.WorkspaceConfiguration{GradleUserHome: "/ws-home", Offline: true}
	contributions := staticArguments{"--init-script", "contrib.gradle"}

	tests := []struct {
		name     string
		bc       entity.BuildConfiguration
		wantHome string
		wantArgs []string
		wantJVM  []string
		wantJava string
	}{
		{
			name: "workspace settings",
			bc: entity.BuildConfiguration{
				RootDir:      "/ws/app",
				Distribution: entity.VersionDistribution("8.5"),
				JavaHome:     "/jdk",
				JVMArguments: []string{"-Xmx2g"},
				Arguments:    []string{"--info"},
				// Ignored without override.
				GradleUserHome: "/project-home",
			},
			wantHome: "/ws-home",
			wantArgs: []string{"--offline", "--init-script", "contrib.gradle", "--info"},
			wantJVM:  []string{"-Xmx2g"},
			wantJava: "/jdk",
		},
		{
			name: "override",
			bc: entity.BuildConfiguration{
				RootDir:                   "/ws/app",
				OverrideWorkspaceSettings: true,
				GradleUserHome:            "/project-home",
				BuildScansEnabled:         true,
				Arguments:                 []string{"--info"},
			},
			wantHome: "/project-home",
			wantArgs: []string{"--init-script", "contrib.gradle", "--info", "--scan"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs, err := ForBuild(ws, tt.bc, contributions)
			require.NoError(t, err)
			assert.Equal(t, tt.wantHome, attrs.GradleUserHome)
			assert.Equal(t, tt.wantArgs, attrs.Arguments)
			assert.Equal(t, tt.wantJVM, attrs.JVMArguments)
			assert.Equal(t, tt.wantJava, attrs.JavaHome)
			assert.Equal(t, tt.bc.Distribution, attrs.Distribution)

			again, err := ForBuild(ws, tt.bc, contributions)
			require.NoError(t, err)
			assert.True(t, attrs.Equal(again))
		})
	}

	_, err := ForBuild(ws, entity.BuildConfiguration{}, nil)
	assert.True(t, errors.IsBadRequest(err))
}
