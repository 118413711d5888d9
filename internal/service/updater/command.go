package updater

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/elliot-zen/cursorup/internal/config"
	"github.com/elliot-zen/cursorup/internal/logger"
)

// fallbackArtifactName is used when the download URL has no usable last path segment.
const fallbackArtifactName = "cursor-download.tmp"

// Options are inputs accepted by the updater entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// Platform overrides the configured OS/architecture identifier.
	Platform string
	// ReleaseTrack overrides the configured release channel.
	ReleaseTrack string
	// Out receives the download progress output. Defaults to os.Stdout.
	Out io.Writer
}

// runner holds the resolved configuration and helpers for a single run.
// It is intentionally unexported—call Run(ctx, Options) from callers.
type runner struct {
	cfg    *config.Config // Resolved settings and per-user paths.
	client *http.Client   // Transport for metadata and artifact requests.
	out    io.Writer      // Console progress destination.
}

// Run executes the whole install/update pipeline and is the public entry
// point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "cursorup")

	if opts == nil {
		opts = new(Options)
	}

	cfg, err := config.Resolve(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("resolve configuration: %w", err)
	}

	if opts.Platform != "" {
		cfg.Platform = opts.Platform
	}

	if opts.ReleaseTrack != "" {
		cfg.ReleaseTrack = opts.ReleaseTrack
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	r := &runner{
		cfg:    cfg,
		client: http.DefaultClient,
		out:    out,
	}

	if err = r.run(ctx); err != nil {
		logger.ErrorKV(ctx, "Updater run failed", "error", err)
		return err
	}

	logger.Info(ctx, "Updater completed")

	return nil
}

// run executes the pipeline for this runner instance:
// 1) Fetch release metadata.
// 2) Acquire the scratch directory (released on every exit path).
// 3) Download the artifact with progress reporting.
// 4) Install it: extract, back up, copy, register the desktop entry.
func (r *runner) run(ctx context.Context) error {
	logger.InfoKV(ctx, "Fetching release metadata",
		"endpoint", r.cfg.Endpoint,
		"platform", r.cfg.Platform,
		"track", r.cfg.ReleaseTrack)

	release, err := r.fetchMetadata(ctx)
	if err != nil {
		return fmt.Errorf("fetch release metadata: %w", err)
	}

	logger.InfoKV(ctx, "Latest release", "version", release.Version, "commit", release.CommitSHA)
	logger.DebugKV(ctx, "Remote execution host", "url", release.RehURL)

	scratch, err := acquireScratch(r.cfg.ScratchDir)
	if err != nil {
		return fmt.Errorf("create scratch directory: %w", err)
	}

	defer scratch.release(ctx)

	artifactPath := filepath.Join(r.cfg.ScratchDir, artifactFileName(release.DownloadURL))

	if err = r.downloadFile(ctx, release.DownloadURL, artifactPath); err != nil {
		return fmt.Errorf("download artifact: %w", err)
	}

	if err = r.install(ctx, artifactPath); err != nil {
		return fmt.Errorf("install artifact: %w", err)
	}

	logger.InfoKV(ctx, "Update complete", "version", release.Version)

	return nil
}

// artifactFileName derives the local filename from the last path segment of
// the download URL.
func artifactFileName(downloadURL string) string {
	parsed, err := url.Parse(downloadURL)
	if err != nil {
		return fallbackArtifactName
	}

	name := path.Base(parsed.Path)
	if name == "." || name == "/" {
		return fallbackArtifactName
	}

	return name
}
