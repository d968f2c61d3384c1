// Package entity contains the domain logic for the buildsync service.
package entity

type keyType string

// SessionContextKey indicates the key to be used to identify the connection session UUID in the context.
const SessionContextKey keyType = "SessionUUID"

// Configuration keys read by more than one component.
const (
	// WorkspaceConfigKey contains workspace wide settings such as the workspace location and defaults.
	WorkspaceConfigKey = "workspace"
	// SynchronizationConfigKey contains settings of the synchronization engine.
	SynchronizationConfigKey = "synchronization"
	// StorageConfigKey contains settings of the durable metadata region.
	StorageConfigKey = "storage"
	// GradleConfigKey contains settings of the build tool gateway.
	GradleConfigKey = "gradle"
	// AutoSyncConfigKey contains settings of the build file watcher.
	AutoSyncConfigKey = "autoSync"
)

// OfflineArgument is the build tool argument that disables network access.
const OfflineArgument = "--offline"

// BuildScanArgument is the build tool argument that publishes a build scan.
const BuildScanArgument = "--scan"
