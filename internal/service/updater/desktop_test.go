package updater

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elliot-zen/cursorup/internal/config"
)

// TestWriteDesktopEntry renders the fixed schema and creates missing parents.
func TestWriteDesktopEntry(t *testing.T) {
	t.Parallel()

	entryPath := filepath.Join(t.TempDir(), ".local", "share", "applications", "cursor.desktop")
	r := &runner{
		cfg: &config.Config{DesktopEntryPath: entryPath},
	}

	err := r.writeDesktopEntry(context.Background(), "/home/u/Applications/cursor/cursor-1.2.3.AppImage", "/home/u/Applications/cursor/code.png")
	require.NoError(t, err)

	contents, err := os.ReadFile(entryPath)
	require.NoError(t, err)

	expected := `[Desktop Entry]
Name=Cursor
Exec=/home/u/Applications/cursor/cursor-1.2.3.AppImage
Icon=/home/u/Applications/cursor/code.png
Type=Application
Categories=Utility;Development;
Terminal=false
`
	require.Equal(t, expected, string(contents))
}

// TestWriteDesktopEntry_Overwrites fully replaces prior content.
func TestWriteDesktopEntry_Overwrites(t *testing.T) {
	t.Parallel()

	entryPath := filepath.Join(t.TempDir(), "cursor.desktop")
	require.NoError(t, os.WriteFile(entryPath, []byte("stale content that must disappear"), 0o644))

	r := &runner{
		cfg: &config.Config{DesktopEntryPath: entryPath},
	}

	require.NoError(t, r.writeDesktopEntry(context.Background(), "/a/cursor.AppImage", "/a/code.png"))

	contents, err := os.ReadFile(entryPath)
	require.NoError(t, err)
	require.NotContains(t, string(contents), "stale")
	require.Contains(t, string(contents), "Exec=/a/cursor.AppImage")
}
