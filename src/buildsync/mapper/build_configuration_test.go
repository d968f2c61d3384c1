package mapper

import (
	"testing"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/entity"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/model"
	"github.com/stretchr/testify/assert"
)

func TestBuildConfigurationMapping(t *testing.T) {
	t.Run("override", func(t *testing.T) {
		in := entity.BuildConfiguration{
			RootDir:                   "/ws/app",
			Distribution:              entity.VersionDistribution("8.5"),
			OverrideWorkspaceSettings: true,
			GradleUserHome:            "/home/u/.gradle",
			JavaHome:                  "/jdk",
			JVMArguments:              []string{"-Xmx2g", "-Dfoo=bar"},
			Arguments:                 []string{"--info"},
			OfflineMode:               true,
			AutoSync:                  true,
			BuildScansEnabled:         true,
		}
		m := BuildConfigurationToModel(in)
		assert.Equal(t, "true", m[model.BuildConfigOverrideWorkspaceSettings])
		assert.Equal(t, "-Xmx2g -Dfoo=bar", m[model.BuildConfigJVMArguments])
		assert.Equal(t, in, ModelToBuildConfiguration("/ws/app", m))
	})

	t.Run("no override", func(t *testing.T) {
		in := entity.BuildConfiguration{
			RootDir:      "/ws/app",
			Distribution: entity.LocalDistribution("/opt/gradle"),
			JavaHome:     "/jdk",
			OfflineMode:  true,
		}
		m := BuildConfigurationToModel(in)
		for _, key := range model.BuildConfigOverrideKeys {
			assert.NotContains(t, m, key)
		}
		out := ModelToBuildConfiguration("/ws/app", m)
		assert.Equal(t, in.Distribution, out.Distribution)
		assert.False(t, out.OverrideWorkspaceSettings)
		assert.Empty(t, out.JavaHome)
		assert.False(t, out.OfflineMode)
	})

	t.Run("invalid values", func(t *testing.T) {
		out := ModelToBuildConfiguration("/ws/app", model.BuildConfiguration{
			model.BuildConfigDistribution:              "GRADLE_DISTRIBUTION(BROKEN",
			model.BuildConfigOverrideWorkspaceSettings: "yes please",
		})
		assert.Equal(t, entity.InheritDistribution(), out.Distribution)
		assert.False(t, out.OverrideWorkspaceSettings)
		assert.Empty(t, out.Arguments)
	})
}

func TestWorkspaceMapping(t *testing.T) {
	p := entity.Project{ID: "core", Location: "/ws/app/core", RootDir: "/ws/app", Path: ":core", Natures: []string{"n"}}
	assert.Equal(t, p, ModelToProject(ProjectToModel(p)))

	c := entity.WorkspaceConfiguration{GradleUserHome: "/g", Offline: true, AutoSync: true}
	assert.Equal(t, c, ModelToWorkspaceConfiguration(WorkspaceConfigurationToModel(c)))
}
