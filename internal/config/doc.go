// Package config defines the updater settings and provides helpers to load,
// validate and save them in YAML format.
//
// Resolve produces one Config per run with every per-user path (install
// directory, scratch directory, desktop entry) derived from HOME up front,
// so downstream components never touch the environment themselves.
package config
