package updater

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/elliot-zen/cursorup/internal/logger"
)

// desktopEntryTemplate is the fixed launcher descriptor schema. Exec and
// Icon receive the absolute installed paths.
const desktopEntryTemplate = `[Desktop Entry]
Name=Cursor
Exec=%s
Icon=%s
Type=Application
Categories=Utility;Development;
Terminal=false
`

// writeDesktopEntry renders the launcher descriptor and fully overwrites
// the registration file. No merge with prior content.
func (r *runner) writeDesktopEntry(ctx context.Context, artifactPath, iconPath string) error {
	contents := fmt.Sprintf(desktopEntryTemplate, artifactPath, iconPath)

	if err := os.MkdirAll(filepath.Dir(r.cfg.DesktopEntryPath), directoryMode); err != nil {
		return fmt.Errorf("create launcher directory: %w", err)
	}

	if err := os.WriteFile(r.cfg.DesktopEntryPath, []byte(contents), 0o644); err != nil {
		return fmt.Errorf("write launcher descriptor: %w", err)
	}

	logger.InfoKV(ctx, "Updated desktop entry", "path", r.cfg.DesktopEntryPath)

	return nil
}
