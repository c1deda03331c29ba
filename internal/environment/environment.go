// Package environment resolves geodex settings from environment variables.
// These are process-level overrides; everything else comes from the sources
// manifest or command line flags.
package environment

import (
	"os"
	"strings"

	"github.com/geodex-io/geodex/internal/core"
	"go.uber.org/zap"
)

const (
	// EnvSourcesFile overrides the path of the sources manifest.
	EnvSourcesFile = "GEODEX_SOURCES_FILE"
	// EnvCompletionDir overrides the directory completion assets are written to.
	EnvCompletionDir = "GEODEX_COMPLETION_DIR"
	// EnvLogLevel sets the log level (debug, info, warn, error).
	EnvLogLevel = "GEODEX_LOG_LEVEL"
	// EnvCleanLogFile truncates the log file on startup when set to a truthy value.
	EnvCleanLogFile = "GEODEX_CLEAN_LOG_FILE"
	// EnvNoUpdateCheck disables the background release check when set to a truthy value.
	EnvNoUpdateCheck = "GEODEX_NO_UPDATE_CHECK"
)

// GetLogLevel returns the log level configured through the environment,
// defaulting to info.
func GetLogLevel() zap.AtomicLevel {
	switch strings.ToLower(os.Getenv(EnvLogLevel)) {
	case "debug":
		return zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn", "warning":
		return zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		return zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	}
}

// ShouldCleanLogFile reports whether the log file should be truncated on startup.
func ShouldCleanLogFile() bool {
	return isTruthy(os.Getenv(EnvCleanLogFile))
}

// NoUpdateCheck reports whether the background release check is disabled.
func NoUpdateCheck() bool {
	return isTruthy(os.Getenv(EnvNoUpdateCheck))
}

// ManifestFile returns the sources manifest path, honoring the environment
// override.
func ManifestFile() string {
	if path := os.Getenv(EnvSourcesFile); path != "" {
		return path
	}
	return core.DefaultManifestFile
}

// CompletionDir returns the completion output directory, honoring the
// environment override.
func CompletionDir() string {
	if dir := os.Getenv(EnvCompletionDir); dir != "" {
		return dir
	}
	return core.DefaultCompletionDir
}

func isTruthy(value string) bool {
	switch strings.ToLower(value) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
