package updater

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/elliot-zen/cursorup/internal/logger"
)

var (
	// ErrBadDownloadStatus is returned when the download endpoint answers
	// with a non-success status.
	ErrBadDownloadStatus = errors.New("unexpected download status")

	// ErrUnknownSize is returned when the response does not declare its
	// content length. Unbounded streaming is not supported.
	ErrUnknownSize = errors.New("response did not declare its content length")
)

const (
	// downloadChunkSize is the read buffer size for the download stream.
	downloadChunkSize = 32 * 1024

	// bytesPerMiB converts byte counts for the progress line.
	bytesPerMiB = 1 << 20
)

// downloadFile streams the artifact at fileURL into destPath, redrawing a
// single progress line as bytes arrive. The destination file is only
// created once status and size checks have passed. A failure mid-stream
// leaves a partial file behind; it lives in the scratch directory and is
// swept by the guard.
func (r *runner) downloadFile(ctx context.Context, fileURL, destPath string) error {
	logger.InfoKV(ctx, "Downloading artifact", "url", fileURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("request artifact: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%s: %w", resp.Status, ErrBadDownloadStatus)
	}

	total := resp.ContentLength
	if total <= 0 {
		return ErrUnknownSize
	}

	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}

	defer func() {
		_ = dest.Close()
	}()

	var (
		downloaded int64
		buffer     = make([]byte, downloadChunkSize)
	)

	for {
		n, readErr := resp.Body.Read(buffer)
		if n > 0 {
			if _, writeErr := dest.Write(buffer[:n]); writeErr != nil {
				return fmt.Errorf("write destination file: %w", writeErr)
			}

			downloaded += int64(n)
			r.printProgress(downloaded, total)
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}

			return fmt.Errorf("read download stream: %w", readErr)
		}
	}

	if err = dest.Close(); err != nil {
		return fmt.Errorf("close destination file: %w", err)
	}

	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "Download completed successfully to %s\n", destPath)
	logger.InfoKV(ctx, "Download finished", "path", destPath, "bytes", downloaded)

	return nil
}

// printProgress overwrites the previous progress line in place.
func (r *runner) printProgress(downloaded, total int64) {
	percentage := float64(downloaded) / float64(total) * 100

	fmt.Fprintf(r.out, "\rDownloading... %.2f%% (%.2f MiB / %.2f MiB)",
		percentage,
		float64(downloaded)/bytesPerMiB,
		float64(total)/bytesPerMiB)
}
