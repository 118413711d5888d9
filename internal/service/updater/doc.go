// Package updater implements the install/update pipeline for the editor.
//
// One run fetches the latest release metadata, downloads the artifact into
// a scratch directory with console progress, extracts it, backs up the
// previous installation, installs the new artifact and icon into the
// per-user application directory, and rewrites the desktop launcher entry.
// The pipeline is strictly sequential; any step failure propagates to the
// caller unchanged, and only the scratch directory cleanup is best effort.
package updater
