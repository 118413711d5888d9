package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the release-query settings and the per-user paths resolved
// once per run. Every component receives this value instead of reading the
// environment on its own.
type Config struct {
	// Endpoint is the release metadata URL queried for the latest build.
	Endpoint string `yaml:"endpoint"`
	// Platform is the OS/architecture identifier sent to the metadata endpoint.
	Platform string `yaml:"platform"`
	// ReleaseTrack selects the release channel (stable, latest, ...).
	ReleaseTrack string `yaml:"release_track"`
	// Timeout bounds the metadata request and the download handshake.
	// The download body itself is not subject to it.
	Timeout time.Duration `yaml:"timeout"`

	// HomeDir is the user's home directory taken from the environment.
	HomeDir string `yaml:"-"`
	// InstallDir is the persistent directory holding the installed artifact and icon.
	InstallDir string `yaml:"-"`
	// ScratchDir is the per-run working directory for download and extraction.
	ScratchDir string `yaml:"-"`
	// DesktopEntryPath is the launcher descriptor location.
	DesktopEntryPath string `yaml:"-"`
}

const (
	// DefaultEndpoint is the release metadata endpoint.
	DefaultEndpoint = "https://cursor.com/api/download"

	// DefaultPlatform pins the single supported download target.
	DefaultPlatform = "linux-x64"

	// DefaultReleaseTrack is the release channel queried by default.
	DefaultReleaseTrack = "stable"

	// DefaultTimeout is the default duration for network handshakes.
	DefaultTimeout = 30 * time.Second

	// DefaultFilePermissions is the default file permission for settings files.
	DefaultFilePermissions = 0o600

	// IconFilename is the icon shipped inside the extracted artifact
	// and installed next to it.
	IconFilename = "code.png"

	// BackupDirName is the subdirectory of the install directory holding
	// the previous generation.
	BackupDirName = "back"

	// ArtifactExtension is the filename extension of the release artifact.
	ArtifactExtension = ".AppImage"

	// IconExtension is the filename extension of the installed icon.
	IconExtension = ".png"

	// scratchDirName is the fixed scratch directory name under the system temp root.
	scratchDirName = "cursorup_temp"
)

var (
	// ErrHomeNotSet is returned when the HOME environment variable is missing,
	// making every per-user path unresolvable.
	ErrHomeNotSet = errors.New("HOME environment variable is not set")

	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
)

// DefaultPath returns the default settings file location for the given home directory.
func DefaultPath(homeDir string) string {
	return filepath.Join(homeDir, ".config", "cursorup", "settings.yaml")
}

// Resolve builds the effective configuration for one run: it reads HOME,
// loads the optional settings file, and derives every per-user path.
// A missing settings file at the default location is not an error;
// an explicitly provided path must exist.
func Resolve(path string) (*Config, error) {
	homeDir := os.Getenv("HOME")
	if homeDir == "" {
		return nil, ErrHomeNotSet
	}

	var (
		cfg *Config
		err error
	)

	switch {
	case path != "":
		cfg, err = Load(path)
		if err != nil {
			return nil, err
		}
	default:
		cfg, err = Load(DefaultPath(homeDir))
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}

			cfg = new(Config)
		}
	}

	cfg.HomeDir = homeDir
	cfg.InstallDir = filepath.Join(homeDir, "Applications", "cursor")
	cfg.ScratchDir = filepath.Join(os.TempDir(), scratchDirName)
	cfg.DesktopEntryPath = filepath.Join(homeDir, ".local", "share", "applications", "cursor.desktop")

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load reads settings from the provided YAML file.
func Load(path string) (*Config, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	return &cfg, nil
}

// Save writes settings to the provided path, creating parent directories as needed.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills in defaults for unset fields.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}

	if _, err := url.ParseRequestURI(cfg.Endpoint); err != nil {
		return fmt.Errorf("invalid endpoint URI: %w", err)
	}

	if cfg.Platform == "" {
		cfg.Platform = DefaultPlatform
	}

	if cfg.ReleaseTrack == "" {
		cfg.ReleaseTrack = DefaultReleaseTrack
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return nil
}
