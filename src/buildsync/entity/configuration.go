package entity

import (
	"fmt"
	"strings"
)

// WorkspaceConfiguration holds the process wide defaults applied to every build tool invocation.
type WorkspaceConfiguration struct {
	// GradleUserHome is the shared build tool cache/home directory. Empty means the build tool default.
	GradleUserHome string `yaml:"gradleUserHome" json:"gradleUserHome"`
	// Offline adds the offline argument to every invocation.
	Offline bool `yaml:"offline" json:"offline"`
	// AutoSync enables synchronization when build files change.
	AutoSync bool `yaml:"autoSync" json:"autoSync"`
}

// DistributionType selects how the build tool distribution is obtained.
type DistributionType int

const (
	// DistributionWrapper inherits the distribution declared by the build itself.
	DistributionWrapper DistributionType = iota
	// DistributionLocalInstallation uses an installation on the local disk.
	DistributionLocalInstallation
	// DistributionRemote uses a distribution archive identified by a URI.
	DistributionRemote
	// DistributionVersion uses a fixed build tool version.
	DistributionVersion
)

// String implements fmt.Stringer.
func (t DistributionType) String() string {
	switch t {
	case DistributionWrapper:
		return "WRAPPER"
	case DistributionLocalInstallation:
		return "LOCAL_INSTALLATION"
	case DistributionRemote:
		return "REMOTE_DISTRIBUTION"
	case DistributionVersion:
		return "VERSION"
	default:
		return fmt.Sprintf("INVALID(%d)", int(t))
	}
}

const (
	_distributionPrefix = "GRADLE_DISTRIBUTION("
	_distributionSuffix = ")"
)

// Distribution is the build tool distribution selector. The zero value inherits from the build.
type Distribution struct {
	Type DistributionType `json:"type"`
	// Configuration is the version, installation path or URI, depending on Type.
	Configuration string `json:"configuration,omitempty"`
}

// InheritDistribution returns the distribution declared by the build.
func InheritDistribution() Distribution {
	return Distribution{Type: DistributionWrapper}
}

// VersionDistribution returns a fixed version distribution.
func VersionDistribution(version string) Distribution {
	return Distribution{Type: DistributionVersion, Configuration: version}
}

// LocalDistribution returns a distribution installed at the given directory.
func LocalDistribution(installDir string) Distribution {
	return Distribution{Type: DistributionLocalInstallation, Configuration: installDir}
}

// RemoteDistribution returns a distribution downloaded from the given URI.
func RemoteDistribution(uri string) Distribution {
	return Distribution{Type: DistributionRemote, Configuration: uri}
}

// String returns the persisted representation, e.g. GRADLE_DISTRIBUTION(VERSION(8.5)).
func (d Distribution) String() string {
	if d.Type == DistributionWrapper {
		return _distributionPrefix + d.Type.String() + _distributionSuffix
	}
	return fmt.Sprintf("%s%s(%s))", _distributionPrefix, d.Type, d.Configuration)
}

// ParseDistribution parses the representation produced by Distribution.String.
func ParseDistribution(s string) (Distribution, error) {
	if s == InheritDistribution().String() {
		return InheritDistribution(), nil
	}
	for _, t := range []DistributionType{DistributionLocalInstallation, DistributionRemote, DistributionVersion} {
		prefix := _distributionPrefix + t.String() + "("
		if strings.HasPrefix(s, prefix) && strings.HasSuffix(s, "))") {
			value := strings.TrimSuffix(strings.TrimPrefix(s, prefix), "))")
			if value == "" {
				break
			}
			return Distribution{Type: t, Configuration: value}, nil
		}
	}
	return Distribution{}, fmt.Errorf("cannot parse distribution %q", s)
}

// BuildConfiguration holds the settings persisted for a single build root.
type BuildConfiguration struct {
	// RootDir is the canonical root directory of the build and identifies the configuration.
	RootDir      string       `json:"rootDir"`
	Distribution Distribution `json:"distribution"`
	// OverrideWorkspaceSettings enables the project level values below.
	OverrideWorkspaceSettings bool     `json:"overrideWorkspaceSettings"`
	GradleUserHome            string   `json:"gradleUserHome,omitempty"`
	JavaHome                  string   `json:"javaHome,omitempty"`
	JVMArguments              []string `json:"jvmArguments,omitempty"`
	Arguments                 []string `json:"arguments,omitempty"`
	OfflineMode               bool     `json:"offlineMode"`
	AutoSync                  bool     `json:"autoSync"`
	BuildScansEnabled         bool     `json:"buildScansEnabled"`
}

// DefaultBuildConfiguration returns the configuration used for a root without persisted settings.
func DefaultBuildConfiguration(rootDir string) BuildConfiguration {
	return BuildConfiguration{
		RootDir:      rootDir,
		Distribution: InheritDistribution(),
	}
}

// EffectiveAutoSync reports whether build file changes under this root trigger a synchronization.
func (c BuildConfiguration) EffectiveAutoSync(workspace WorkspaceConfiguration) bool {
	if c.OverrideWorkspaceSettings {
		return c.AutoSync
	}
	return workspace.AutoSync
}
