// Package updater replaces the running binary with the latest GitHub release.
package updater

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/smazurov/alsavolume/internal/version"
)

// DefaultRepository is the GitHub slug releases are fetched from.
const DefaultRepository = "smazurov/alsavolume"

// Options contains configuration for the updater.
type Options struct {
	Repository     string // GitHub repo slug, DefaultRepository when empty
	Prerelease     bool
	CurrentVersion string
	Logger         *slog.Logger
}

// UpdateInfo describes the latest release relative to the running binary.
type UpdateInfo struct {
	CurrentVersion  string    `json:"current_version"`
	LatestVersion   string    `json:"latest_version"`
	ReleaseNotes    string    `json:"release_notes,omitempty"`
	ReleaseURL      string    `json:"release_url,omitempty"`
	PublishedAt     time.Time `json:"published_at"`
	AssetSize       int       `json:"asset_size"`
	UpdateAvailable bool      `json:"update_available"`
}

// releaseSource is the part of *selfupdate.Updater used here.
type releaseSource interface {
	DetectLatest(ctx context.Context, repository selfupdate.Repository) (*selfupdate.Release, bool, error)
	UpdateTo(ctx context.Context, rel *selfupdate.Release, cmdPath string) error
}

// Updater checks for and applies releases.
type Updater struct {
	source     releaseSource
	repository selfupdate.Repository
	current    string
	executable func() (string, error)
	logger     *slog.Logger
}

// New creates an updater backed by GitHub releases.
func New(opts Options) (*Updater, error) {
	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub source: %w", err)
	}

	updater, err := selfupdate.NewUpdater(selfupdate.Config{
		Source:     source,
		Prerelease: opts.Prerelease,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create updater: %w", err)
	}

	return newUpdater(updater, opts), nil
}

func newUpdater(source releaseSource, opts Options) *Updater {
	repo := opts.Repository
	if repo == "" {
		repo = DefaultRepository
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Updater{
		source:     source,
		repository: selfupdate.ParseSlug(repo),
		current:    opts.CurrentVersion,
		executable: selfupdate.ExecutablePath,
		logger:     logger,
	}
}

// Check queries GitHub for the latest release without downloading it.
func (u *Updater) Check(ctx context.Context) (*UpdateInfo, *selfupdate.Release, error) {
	release, found, err := u.source.DetectLatest(ctx, u.repository)
	if err != nil {
		return nil, nil, newError(ErrCodeCheckFailed, "failed to check for updates", err)
	}
	if !found {
		return nil, nil, newError(ErrCodeNotFound, "repository not found or has no releases", nil)
	}

	info := &UpdateInfo{
		CurrentVersion: u.current,
		LatestVersion:  release.Version(),
		ReleaseNotes:   release.ReleaseNotes,
		ReleaseURL:     release.URL,
		PublishedAt:    release.PublishedAt,
		AssetSize:      release.AssetByteSize,
		UpdateAvailable: version.IsDev(u.current) || release.GreaterThan(u.current),
	}
	return info, release, nil
}

// Apply installs the latest release over the running executable. The
// process keeps running the old binary until it is restarted.
func (u *Updater) Apply(ctx context.Context) (*UpdateInfo, error) {
	exe, err := u.executable()
	if err != nil {
		return nil, newError(ErrCodeApplyFailed, "failed to get executable path", err)
	}
	if reason := checkWritePermission(exe); reason != "" {
		return nil, newError(ErrCodeDisabled, reason, nil)
	}

	info, release, err := u.Check(ctx)
	if err != nil {
		return nil, err
	}
	if !info.UpdateAvailable {
		return info, newError(ErrCodeNoUpdate, "no update available", nil)
	}

	u.logger.Info("Applying update", "from", info.CurrentVersion, "to", info.LatestVersion)
	if err := u.source.UpdateTo(ctx, release, exe); err != nil {
		return nil, newError(ErrCodeApplyFailed, "failed to apply update", err)
	}

	u.logger.Info("Update applied", "version", info.LatestVersion)
	return info, nil
}

// checkWritePermission returns why exe cannot be replaced, or "".
func checkWritePermission(exe string) string {
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return fmt.Sprintf("failed to resolve symlinks: %v", err)
	}

	dir := filepath.Dir(resolved)
	tmp := filepath.Join(dir, ".alsavolume.update.test")
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Sprintf("no write permission to %s: %v", dir, err)
	}
	f.Close()
	os.Remove(tmp)
	return ""
}
