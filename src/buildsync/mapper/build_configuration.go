package mapper

import (
	"strconv"
	"strings"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/entity"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/model"
)

// BuildConfigurationToModel maps a root's settings to preference key/value pairs.
// Override values are omitted unless workspace settings are overridden.
func BuildConfigurationToModel(c entity.BuildConfiguration) model.BuildConfiguration {
	m := model.BuildConfiguration{
		model.BuildConfigDistribution: c.Distribution.String(),
	}
	if !c.OverrideWorkspaceSettings {
		return m
	}
	m[model.BuildConfigOverrideWorkspaceSettings] = strconv.FormatBool(true)
	m[model.BuildConfigGradleUserHome] = c.GradleUserHome
	m[model.BuildConfigJavaHome] = c.JavaHome
	m[model.BuildConfigBuildScansEnabled] = strconv.FormatBool(c.BuildScansEnabled)
	m[model.BuildConfigOfflineMode] = strconv.FormatBool(c.OfflineMode)
	m[model.BuildConfigAutoSync] = strconv.FormatBool(c.AutoSync)
	m[model.BuildConfigArguments] = strings.Join(c.Arguments, " ")
	m[model.BuildConfigJVMArguments] = strings.Join(c.JVMArguments, " ")
	return m
}

// ModelToBuildConfiguration maps preference key/value pairs to a root's settings.
// Missing or unparsable values fall back to their defaults.
func ModelToBuildConfiguration(rootDir string, m model.BuildConfiguration) entity.BuildConfiguration {
	c := entity.DefaultBuildConfiguration(rootDir)
	if d, err := entity.ParseDistribution(m[model.BuildConfigDistribution]); err == nil {
		c.Distribution = d
	}
	c.OverrideWorkspaceSettings = parseBool(m[model.BuildConfigOverrideWorkspaceSettings])
	c.GradleUserHome = m[model.BuildConfigGradleUserHome]
	c.JavaHome = m[model.BuildConfigJavaHome]
	c.BuildScansEnabled = parseBool(m[model.BuildConfigBuildScansEnabled])
	c.OfflineMode = parseBool(m[model.BuildConfigOfflineMode])
	c.AutoSync = parseBool(m[model.BuildConfigAutoSync])
	c.Arguments = fields(m[model.BuildConfigArguments])
	c.JVMArguments = fields(m[model.BuildConfigJVMArguments])
	return c
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

// fields splits a space separated list. An empty list is nil.
func fields(s string) []string {
	f := strings.Fields(s)
	if len(f) == 0 {
		return nil
	}
	return f
}
