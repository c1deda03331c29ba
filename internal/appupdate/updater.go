package appupdate

import (
	"context"
	"fmt"

	"github.com/creativeprojects/go-selfupdate"
)

// Release is the subset of release metadata the update check consumes.
type Release interface {
	Version() string
	AssetURL() string
	AssetName() string
}

// Updater detects and applies releases. The production implementation talks
// to GitHub through go-selfupdate; tests substitute a mock.
type Updater interface {
	DetectLatest(ctx context.Context, repo string) (Release, bool, error)
	UpdateTo(ctx context.Context, assetURL string, assetName string, exePath string) error
}

// GitHubUpdater is the production Updater backed by go-selfupdate.
type GitHubUpdater struct {
	updater *selfupdate.Updater
}

func NewGitHubUpdater() (*GitHubUpdater, error) {
	updater, err := selfupdate.NewUpdater(selfupdate.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize updater: %w", err)
	}
	return &GitHubUpdater{updater: updater}, nil
}

func (g *GitHubUpdater) DetectLatest(ctx context.Context, repo string) (Release, bool, error) {
	release, found, err := g.updater.DetectLatest(ctx, selfupdate.ParseSlug(repo))
	if err != nil || !found || release == nil {
		return nil, found, err
	}
	return releaseAdapter{release: release}, true, nil
}

func (g *GitHubUpdater) UpdateTo(ctx context.Context, assetURL string, assetName string, exePath string) error {
	return selfupdate.UpdateTo(ctx, assetURL, assetName, exePath)
}

// releaseAdapter exposes go-selfupdate's release fields through the Release
// interface.
type releaseAdapter struct {
	release *selfupdate.Release
}

func (r releaseAdapter) Version() string {
	return r.release.Version()
}

func (r releaseAdapter) AssetURL() string {
	return r.release.AssetURL
}

func (r releaseAdapter) AssetName() string {
	return r.release.AssetName
}
