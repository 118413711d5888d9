package updater

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	goupdate "github.com/doitdistributed/go-update"
	"github.com/mitchellh/go-ps"

	"github.com/elliot-zen/cursorup/internal/config"
	"github.com/elliot-zen/cursorup/internal/logger"
)

const (
	// extractFlag asks the artifact to unpack itself.
	extractFlag = "--appimage-extract"

	// extractedDirName is where self-extraction lands by packaging
	// convention. Not independently verified.
	extractedDirName = "squashfs-root"

	// artifactFileMode marks the artifact executable (rwxr-xr-x).
	artifactFileMode os.FileMode = 0o755

	// directoryMode is used for directories created during installation.
	directoryMode os.FileMode = 0o755
)

// ErrExtractionFailed is returned when the self-extraction subprocess exits
// non-zero. The wrapped message carries the captured standard error.
var ErrExtractionFailed = errors.New("artifact extraction failed")

// install places the downloaded artifact into the install directory:
// mark executable, self-extract in the scratch directory, back up the
// previous generation, copy the icon, apply the artifact, and register the
// desktop entry. Copies are full-content writes, not transactional; a crash
// mid-step leaves whatever already landed.
func (r *runner) install(ctx context.Context, artifactPath string) error {
	logger.Info(ctx, "Starting installation")

	if err := os.Chmod(artifactPath, artifactFileMode); err != nil {
		return fmt.Errorf("set executable permissions: %w", err)
	}

	logger.InfoKV(ctx, "Granted execute permissions", "path", artifactPath)

	extractedDir, err := r.extractArtifact(ctx, artifactPath)
	if err != nil {
		return err
	}

	if err = os.MkdirAll(r.cfg.InstallDir, directoryMode); err != nil {
		return fmt.Errorf("create install directory: %w", err)
	}

	r.warnAboutRunningInstances(ctx)

	if err = r.backupPrevious(ctx); err != nil {
		return fmt.Errorf("back up previous installation: %w", err)
	}

	iconDest := filepath.Join(r.cfg.InstallDir, config.IconFilename)
	if err = copyFile(filepath.Join(extractedDir, config.IconFilename), iconDest); err != nil {
		return fmt.Errorf("copy icon: %w", err)
	}

	logger.InfoKV(ctx, "Copied icon", "path", iconDest)

	artifactDest := filepath.Join(r.cfg.InstallDir, filepath.Base(artifactPath))
	if err = applyArtifact(artifactPath, artifactDest); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Installed artifact", "path", artifactDest)

	if err = r.writeDesktopEntry(ctx, artifactDest, iconDest); err != nil {
		return err
	}

	logger.Info(ctx, "Installation complete")

	return nil
}

// extractArtifact runs the artifact's self-extraction in the scratch
// directory and returns the extracted tree's path.
func (r *runner) extractArtifact(ctx context.Context, artifactPath string) (string, error) {
	logger.InfoKV(ctx, "Extracting artifact", "path", artifactPath)

	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, artifactPath, extractFlag)
	cmd.Dir = r.cfg.ScratchDir
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: %v: %s", ErrExtractionFailed, err, strings.TrimSpace(stderr.String()))
	}

	extractedDir := filepath.Join(r.cfg.ScratchDir, extractedDirName)
	logger.InfoKV(ctx, "Extracted artifact", "path", extractedDir)

	return extractedDir, nil
}

// applyArtifact writes the downloaded artifact to its final location with
// the executable mode set, then clears the intermediate .old copy the apply
// may leave behind.
func applyArtifact(sourcePath, destPath string) error {
	source, err := os.Open(filepath.Clean(sourcePath))
	if err != nil {
		return fmt.Errorf("open downloaded artifact: %w", err)
	}

	defer func() {
		_ = source.Close()
	}()

	// Apply swaps the target aside before writing, so a fresh install needs
	// an empty target to exist first.
	if _, err = os.Stat(destPath); err != nil && os.IsNotExist(err) {
		var placeholder *os.File

		placeholder, err = os.Create(destPath)
		if err != nil {
			return fmt.Errorf("create install target: %w", err)
		}

		if err = placeholder.Close(); err != nil {
			return fmt.Errorf("create install target: %w", err)
		}
	}

	options := goupdate.Options{
		TargetPath: destPath,
		TargetMode: artifactFileMode,
	}

	if err = goupdate.Apply(source, options); err != nil {
		return fmt.Errorf("apply artifact: %w", err)
	}

	oldPath := destPath + ".old"
	if _, err = os.Stat(oldPath); err == nil {
		_ = os.Remove(oldPath)
	}

	return nil
}

// warnAboutRunningInstances reports previously installed artifacts that
// still have live processes. A running instance keeps executing the old
// build until restarted; killing the user's editor session here is not an
// option, so this only warns.
func (r *runner) warnAboutRunningInstances(ctx context.Context) {
	entries, err := os.ReadDir(r.cfg.InstallDir)
	if err != nil {
		logger.DebugKV(ctx, "Unable to list install directory", "error", err)
		return
	}

	installed := make(map[string]struct{}, len(entries))

	for _, entry := range entries {
		if !entry.Type().IsRegular() || filepath.Ext(entry.Name()) != config.ArtifactExtension {
			continue
		}

		installed[entry.Name()] = struct{}{}
	}

	if len(installed) == 0 {
		return
	}

	processList, err := ps.Processes()
	if err != nil {
		logger.DebugKV(ctx, "Unable to list processes", "error", err)
		return
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if _, found := installed[process.Executable()]; found {
			logger.WarnKV(ctx, "Previous version is still running, it keeps the old build until restarted",
				"executable", process.Executable(),
				"pid", process.Pid())
		}
	}
}

// copyFile duplicates a regular file's contents. Not atomic.
func copyFile(sourcePath, destPath string) error {
	source, err := os.Open(filepath.Clean(sourcePath))
	if err != nil {
		return err
	}

	defer func() {
		_ = source.Close()
	}()

	dest, err := os.Create(destPath)
	if err != nil {
		return err
	}

	if _, err = io.Copy(dest, source); err != nil {
		_ = dest.Close()

		return err
	}

	return dest.Close()
}
