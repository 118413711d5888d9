package updater

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestArtifactFileName derives the local filename from the download URL.
func TestArtifactFileName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"https://downloads.local/releases/cursor-1.2.3.AppImage": "cursor-1.2.3.AppImage",
		"https://downloads.local/cursor.AppImage?token=x":        "cursor.AppImage",
		"https://downloads.local/":                               fallbackArtifactName,
		"https://downloads.local":                                fallbackArtifactName,
		"::bad url::":                                            fallbackArtifactName,
	}
	for input, want := range cases {
		require.Equal(t, want, artifactFileName(input), "input: %s", input)
	}
}

// TestRun_WithoutHome fails at configuration resolution.
func TestRun_WithoutHome(t *testing.T) {
	t.Setenv("HOME", "")

	err := Run(context.Background(), new(Options))
	require.Error(t, err)
	require.Contains(t, err.Error(), "resolve configuration")
}
