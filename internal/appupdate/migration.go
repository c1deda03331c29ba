package appupdate

import (
	"os"

	"github.com/geodex-io/geodex/internal/core"
)

// GetLastUsedVersion reads the version that last ran on this machine.
// Returns empty string when no marker exists (fresh install).
func GetLastUsedVersion() string {
	data, err := os.ReadFile(core.VersionMarkerFile())
	if err != nil {
		return ""
	}
	return string(data)
}

// UpdateVersionMarker records the current version as the last one used.
func UpdateVersionMarker(version string) error {
	return os.WriteFile(core.VersionMarkerFile(), []byte(version), 0644)
}

// IsFirstRunAfterUpgrade reports whether this run is the first under a new
// version. Fresh installs don't count: there are no stale assets to warn
// about.
func IsFirstRunAfterUpgrade(currentVersion string) bool {
	lastVersion := GetLastUsedVersion()
	return lastVersion != "" && lastVersion != currentVersion
}

// GetUpgradeMessage returns the notice shown on the first run after an
// upgrade. Assets on disk were rendered by the previous version's templates
// until the user regenerates them.
func GetUpgradeMessage() string {
	return "geodex was updated: completion assets on disk were rendered by the previous version.\n" +
		"Run `geodex generate` to refresh them."
}
