package updater

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

var (
	// ErrMissingMetadataField is returned when the metadata response lacks
	// one of its documented fields.
	ErrMissingMetadataField = errors.New("metadata field missing")

	// errBadMetadataStatus is returned on a non-200 metadata response.
	errBadMetadataStatus = errors.New("unexpected metadata status")
)

// Release is the consumed subset of the metadata endpoint response.
// Additional fields are ignored.
type Release struct {
	// Version is the semantic version of the published build.
	Version string `json:"version"`
	// DownloadURL points at the release artifact.
	DownloadURL string `json:"downloadUrl"`
	// CommitSHA identifies the source revision of the build.
	CommitSHA string `json:"commitSha"`
	// RehURL is the remote-execution-host download URL. Carried but unused.
	RehURL string `json:"rehUrl"`
}

// fetchMetadata queries the release endpoint once, with the configured
// platform and release track, and decodes the response. No retry.
func (r *runner) fetchMetadata(ctx context.Context) (*Release, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	endpoint, err := url.Parse(r.cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}

	query := endpoint.Query()
	query.Set("platform", r.cfg.Platform)
	query.Set("releaseTrack", r.cfg.ReleaseTrack)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build metadata request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request metadata: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %w", resp.Status, errBadMetadataStatus)
	}

	var release Release
	if err = json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}

	if err = release.validate(); err != nil {
		return nil, err
	}

	return &release, nil
}

// validate rejects responses missing any of the documented fields.
func (m *Release) validate() error {
	for field, value := range map[string]string{
		"version":     m.Version,
		"downloadUrl": m.DownloadURL,
		"commitSha":   m.CommitSHA,
		"rehUrl":      m.RehURL,
	} {
		if value == "" {
			return fmt.Errorf("%s: %w", field, ErrMissingMetadataField)
		}
	}

	return nil
}
