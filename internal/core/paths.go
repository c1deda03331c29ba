package core

import (
	"os"
	"path/filepath"
)

// DefaultManifestFile is the sources manifest the generator reads when no
// override is given, relative to the working directory.
const DefaultManifestFile = "sources.yaml"

// DefaultCompletionDir is the directory completion assets are written to when
// no override is given, relative to the working directory.
const DefaultCompletionDir = "completions"

type Paths struct {
	HomeDir           string
	DataDir           string
	LogFile           string
	BuildLogFile      string
	LatestVersionFile string
	VersionMarkerFile string
}

var defaultPaths *Paths

func ensureDefaultPaths() {
	if defaultPaths == nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			panic(err)
		}

		defaultPaths = &Paths{
			HomeDir:           homeDir,
			DataDir:           filepath.Join(homeDir, ".geodex"),
			LogFile:           filepath.Join(homeDir, ".geodex", "geodex.log"),
			BuildLogFile:      filepath.Join(homeDir, ".geodex", "runs.db"),
			LatestVersionFile: filepath.Join(homeDir, ".geodex", "latest_version.txt"),
			VersionMarkerFile: filepath.Join(homeDir, ".geodex", "last_version.txt"),
		}

		err = os.MkdirAll(defaultPaths.DataDir, 0755)
		if err != nil {
			panic(err)
		}
	}
}

func HomeDir() string {
	ensureDefaultPaths()
	return defaultPaths.HomeDir
}

func DataDir() string {
	ensureDefaultPaths()
	return defaultPaths.DataDir
}

func LogFile() string {
	ensureDefaultPaths()
	return defaultPaths.LogFile
}

func BuildLogFile() string {
	ensureDefaultPaths()
	return defaultPaths.BuildLogFile
}

func LatestVersionFile() string {
	ensureDefaultPaths()
	return defaultPaths.LatestVersionFile
}

func VersionMarkerFile() string {
	ensureDefaultPaths()
	return defaultPaths.VersionMarkerFile
}

// ResetPaths clears the cached paths, forcing them to be reinitialized.
// This is primarily used for testing purposes.
func ResetPaths() {
	defaultPaths = nil
}
