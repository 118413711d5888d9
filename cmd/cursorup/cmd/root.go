package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/elliot-zen/cursorup/internal/logger"
	"github.com/elliot-zen/cursorup/internal/service/updater"
	"github.com/elliot-zen/cursorup/internal/version"
)

var (
	// configPath to the optional settings YAML file.
	configPath string

	// platform overrides the configured OS/architecture identifier.
	platform string

	// releaseTrack overrides the configured release channel.
	releaseTrack string

	// logLevel sets the minimum level for log output.
	logLevel string

	// rootCmd represents the base command that downloads and installs the latest release.
	rootCmd = &cobra.Command{
		Use:   "cursorup",
		Short: "Download and install the latest Cursor release",
		Long:  "Query the release endpoint for the latest Cursor build, download it with progress reporting, back up the previous installation, install the new AppImage and icon, and refresh the desktop launcher entry.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if lvl, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(lvl)
			}

			options := &updater.Options{
				ConfigPath:   configPath,
				Platform:     platform,
				ReleaseTrack: releaseTrack,
			}

			return updater.Run(ctx, options)
		},
		SilenceUsage: true,
	}
)

// Execute runs the cursorup CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to settings file (default ~/.config/cursorup/settings.yaml)")
	rootCmd.Flags().StringVar(&platform, "platform", "", "platform identifier sent to the release endpoint")
	rootCmd.Flags().StringVar(&releaseTrack, "release-track", "", "release channel to query")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "minimum log level (debug, info, warn, error)")
}
