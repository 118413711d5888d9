package updater

import (
	"context"
	"os"

	"github.com/elliot-zen/cursorup/internal/logger"
)

// scratch owns the temporary working directory for one run. All download
// and extraction intermediates live under it.
type scratch struct {
	path string
}

// acquireScratch creates the scratch directory and returns its guard.
func acquireScratch(path string) (*scratch, error) {
	if err := os.MkdirAll(path, directoryMode); err != nil {
		return nil, err
	}

	return &scratch{path: path}, nil
}

// release removes the scratch directory and everything under it.
// Best effort: failures are logged and never replace the run's primary error.
func (s *scratch) release(ctx context.Context) {
	logger.InfoKV(ctx, "Cleaning up scratch directory", "path", s.path)

	if err := os.RemoveAll(s.path); err != nil {
		logger.WarnKV(ctx, "Unable to remove scratch directory", "path", s.path, "error", err)
	}
}
