package model

// Keys of the per-root build configuration preference file.
const (
	BuildConfigDistribution              = "connection.gradle.distribution"
	BuildConfigOverrideWorkspaceSettings = "override.workspace.settings"
	BuildConfigGradleUserHome            = "gradle.user.home"
	BuildConfigJavaHome                  = "java.home"
	BuildConfigBuildScansEnabled         = "build.scans.enabled"
	BuildConfigOfflineMode               = "offline.mode"
	BuildConfigAutoSync                  = "auto.sync"
	BuildConfigArguments                 = "arguments"
	BuildConfigJVMArguments              = "jvm.arguments"
)

// BuildConfigOverrideKeys are only written while workspace settings are overridden.
var BuildConfigOverrideKeys = []string{
	BuildConfigOverrideWorkspaceSettings,
	BuildConfigGradleUserHome,
	BuildConfigJavaHome,
	BuildConfigBuildScansEnabled,
	BuildConfigOfflineMode,
	BuildConfigAutoSync,
	BuildConfigArguments,
	BuildConfigJVMArguments,
}

// BuildConfiguration is the stored representation of a root's settings: the key/value pairs of its preference file.
type BuildConfiguration map[string]string
