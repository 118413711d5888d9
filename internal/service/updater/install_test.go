package updater

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elliot-zen/cursorup/internal/config"
)

// writeScript creates an executable shell script standing in for the
// self-extracting artifact.
func writeScript(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o700))
}

// newInstallRunner builds a runner with scratch, install and launcher paths
// under one temp root.
func newInstallRunner(t *testing.T) *runner {
	t.Helper()

	root := t.TempDir()
	scratchDir := filepath.Join(root, "scratch")
	require.NoError(t, os.MkdirAll(scratchDir, 0o755))

	return &runner{
		cfg: &config.Config{
			InstallDir:       filepath.Join(root, "Applications", "cursor"),
			ScratchDir:       scratchDir,
			DesktopEntryPath: filepath.Join(root, ".local", "share", "applications", "cursor.desktop"),
		},
	}
}

// TestInstall runs the full install sequence with a fake self-extracting
// artifact and verifies the produced filesystem layout.
func TestInstall(t *testing.T) {
	t.Parallel()

	r := newInstallRunner(t)
	artifactPath := filepath.Join(r.cfg.ScratchDir, "cursor-1.2.3.AppImage")
	writeScript(t, artifactPath, "mkdir -p squashfs-root\nprintf 'icon-bytes' > squashfs-root/code.png\n")

	require.NoError(t, r.install(context.Background(), artifactPath))

	// Artifact landed under its original name, executable.
	installedArtifact := filepath.Join(r.cfg.InstallDir, "cursor-1.2.3.AppImage")
	info, err := os.Stat(installedArtifact)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	// Icon landed under its fixed name.
	icon, err := os.ReadFile(filepath.Join(r.cfg.InstallDir, "code.png"))
	require.NoError(t, err)
	require.Equal(t, "icon-bytes", string(icon))

	// Desktop entry points at the installed paths.
	entry, err := os.ReadFile(r.cfg.DesktopEntryPath)
	require.NoError(t, err)
	require.Contains(t, string(entry), "[Desktop Entry]")
	require.Contains(t, string(entry), "Exec="+installedArtifact)
	require.Contains(t, string(entry), "Icon="+filepath.Join(r.cfg.InstallDir, "code.png"))
}

// TestInstall_BacksUpPreviousGeneration archives what was installed before.
func TestInstall_BacksUpPreviousGeneration(t *testing.T) {
	t.Parallel()

	r := newInstallRunner(t)

	require.NoError(t, os.MkdirAll(r.cfg.InstallDir, 0o755))
	writeFile(t, filepath.Join(r.cfg.InstallDir, "cursor-1.2.2.AppImage"), "previous artifact")
	writeFile(t, filepath.Join(r.cfg.InstallDir, "code.png"), "previous icon")

	artifactPath := filepath.Join(r.cfg.ScratchDir, "cursor-1.2.3.AppImage")
	writeScript(t, artifactPath, "mkdir -p squashfs-root\nprintf 'new icon' > squashfs-root/code.png\n")

	require.NoError(t, r.install(context.Background(), artifactPath))

	_, err := os.Stat(filepath.Join(r.cfg.InstallDir, "back", "cursor-1.2.2.AppImage.bak"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(r.cfg.InstallDir, "back", "code.png.bak"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(r.cfg.InstallDir, "cursor-1.2.2.AppImage"))
	require.ErrorIs(t, err, os.ErrNotExist)

	icon, err := os.ReadFile(filepath.Join(r.cfg.InstallDir, "code.png"))
	require.NoError(t, err)
	require.Equal(t, "new icon", string(icon))
}

// TestInstall_ExtractionFailure carries the subprocess stderr and copies nothing.
func TestInstall_ExtractionFailure(t *testing.T) {
	t.Parallel()

	r := newInstallRunner(t)
	artifactPath := filepath.Join(r.cfg.ScratchDir, "cursor-1.2.3.AppImage")
	writeScript(t, artifactPath, "echo 'unsupported format' >&2\nexit 3\n")

	err := r.install(context.Background(), artifactPath)
	require.ErrorIs(t, err, ErrExtractionFailed)
	require.Contains(t, err.Error(), "unsupported format")

	// Extraction fails before the install directory is even created.
	_, err = os.Stat(r.cfg.InstallDir)
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestInstall_MissingIcon propagates the copy failure when the extracted
// tree lacks the icon.
func TestInstall_MissingIcon(t *testing.T) {
	t.Parallel()

	r := newInstallRunner(t)
	artifactPath := filepath.Join(r.cfg.ScratchDir, "cursor-1.2.3.AppImage")
	writeScript(t, artifactPath, "mkdir -p squashfs-root\n")

	err := r.install(context.Background(), artifactPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "copy icon")

	// Nothing was installed.
	_, err = os.Stat(filepath.Join(r.cfg.InstallDir, "cursor-1.2.3.AppImage"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
