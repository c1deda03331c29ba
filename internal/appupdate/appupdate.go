// Package appupdate checks for newer geodex releases in the background and
// records what it finds, so the CLI can nudge without ever blocking a run.
package appupdate

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/geodex-io/geodex/internal/core"
	"github.com/geodex-io/geodex/internal/filesystem"
)

// Repo is the release repository checked for updates.
const Repo = "geodex-io/geodex"

// CheckForUpdate starts a background release check and returns a channel that
// yields the newer version string, if one exists, before closing. Dev builds
// (any non-semver version) skip the check entirely.
func CheckForUpdate(
	currentVersion string,
	logger *zap.Logger,
	fs filesystem.FileSystem,
	updater Updater,
) chan string {
	resultChannel := make(chan string)

	currentSemVer, err := semver.NewVersion(currentVersion)
	if err != nil {
		logger.Debug("running a dev build, skipping update check")
		close(resultChannel)
		return resultChannel
	}

	go fetchAndSaveLatestVersion(resultChannel, logger, fs, updater, currentSemVer)

	return resultChannel
}

// ReadLatestVersion returns the newest version recorded by a previous check,
// or "" when none was recorded.
func ReadLatestVersion(fs filesystem.FileSystem) string {
	file, err := fs.Open(core.LatestVersionFile())
	if err != nil {
		return ""
	}
	defer file.Close()

	var buf bytes.Buffer
	_, err = io.Copy(&buf, file)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(buf.String())
}

func fetchAndSaveLatestVersion(
	resultChannel chan string,
	logger *zap.Logger,
	fs filesystem.FileSystem,
	updater Updater,
	currentSemVer *semver.Version,
) {
	defer close(resultChannel)

	latest, found, err := updater.DetectLatest(context.Background(), Repo)
	if err != nil {
		logger.Warn("error occurred while getting latest version from remote", zap.Error(err))
		return
	}
	if !found {
		logger.Warn("latest version could not be found")
		return
	}

	latestSemVer, err := semver.NewVersion(latest.Version())
	if err != nil {
		logger.Error("failed to parse latest version", zap.Error(err))
		return
	}

	if latestSemVer.LessThanEqual(currentSemVer) {
		logger.Debug("already running the latest version")
		return
	}

	// Record the find so later runs can notice without hitting the network.
	recordFilePath := core.LatestVersionFile()
	file, err := fs.Create(recordFilePath)
	if err != nil {
		logger.Error("failed to save latest version", zap.Error(err))
		return
	}
	defer file.Close()

	_, err = file.WriteString(latest.Version())
	if err != nil {
		logger.Error("failed to save latest version", zap.Error(err))
		return
	}

	logger.Info(
		"new version available",
		zap.String("current", currentSemVer.String()),
		zap.String("latest", latest.Version()),
	)
	resultChannel <- latest.Version()
}
