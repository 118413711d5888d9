package updater

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/elliot-zen/cursorup/internal/config"
	"github.com/elliot-zen/cursorup/internal/logger"
)

// backupSuffix is appended to archived filenames.
const backupSuffix = ".bak"

// backupPrevious moves the previous artifact and icon into the backup
// subdirectory of the install directory, appending the backup suffix.
// The move is destructive: once a generation is archived, a rerun finds
// nothing left to back up. A stale backup with the same name is replaced,
// so the backup directory holds exactly one previous generation.
//
// Must run before any new file lands in the install directory, or the
// prior version is lost instead of archived.
func (r *runner) backupPrevious(ctx context.Context) error {
	backupDir := filepath.Join(r.cfg.InstallDir, config.BackupDirName)
	if err := os.MkdirAll(backupDir, directoryMode); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	entries, err := os.ReadDir(r.cfg.InstallDir)
	if err != nil {
		return fmt.Errorf("list install directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		ext := filepath.Ext(entry.Name())
		if ext != config.ArtifactExtension && ext != config.IconExtension {
			continue
		}

		destPath := filepath.Join(backupDir, entry.Name()+backupSuffix)
		if _, err = os.Stat(destPath); err == nil {
			if err = os.Remove(destPath); err != nil {
				return fmt.Errorf("replace stale backup %s: %w", destPath, err)
			}
		}

		sourcePath := filepath.Join(r.cfg.InstallDir, entry.Name())
		logger.InfoKV(ctx, "Backing up previous file", "from", sourcePath, "to", destPath)

		if err = os.Rename(sourcePath, destPath); err != nil {
			return fmt.Errorf("back up %s: %w", entry.Name(), err)
		}
	}

	return nil
}
