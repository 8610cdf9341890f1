package sources

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// ErrFileNotFound signals a 404 from the file server.
var ErrFileNotFound = errors.New("file not found")

// ReportFunc receives download progress. total is -1 when the server
// does not send a Content-Length header.
type ReportFunc func(downloaded, total int64)

// Fetcher downloads remote artifacts to local paths. A failed fetch is
// reported to the caller; it is never retried (the sources are static
// files and the caller decides whether dependent steps proceed).
type Fetcher struct {
	httpClient *retryablehttp.Client
}

// NewFetcher configures the http client used for fetching artifacts.
func NewFetcher() *Fetcher {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 0
	httpClient.HTTPClient.Timeout = 10 * time.Minute
	httpClient.Logger = nil

	return &Fetcher{httpClient: httpClient}
}

// Fetch downloads url into dest, writing to dest+".tmp" first and
// renaming on success. report may be nil.
func (f *Fetcher) Fetch(url, dest string, report ReportFunc) error {
	req, err := retryablehttp.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if code := resp.StatusCode; code != http.StatusOK {
		if code == http.StatusNotFound {
			return fmt.Errorf("%w: %s", ErrFileNotFound, url)
		}
		return fmt.Errorf("failed to download %s, status: %s", url, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	tmpPath := dest + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	total := resp.ContentLength // -1 when the header is missing
	if report != nil {
		_, err = copyWithProgress(out, resp.Body, total, report)
	} else {
		_, err = io.Copy(out, resp.Body)
	}
	_ = out.Close()
	if err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	return nil
}

// copyWithProgress copies from src to dst while reporting progress
func copyWithProgress(dst io.Writer, src io.Reader, total int64, report ReportFunc) (int64, error) {
	buf := make([]byte, 32*1024) // 32KB buffer
	var written int64
	var lastReport int64

	for {
		nr, er := src.Read(buf)
		if nr > 0 {
			nw, ew := dst.Write(buf[0:nr])
			if nw < 0 || nr < nw {
				nw = 0
				if ew == nil {
					ew = fmt.Errorf("invalid write result")
				}
			}
			written += int64(nw)

			// Report progress every 100KB
			if written-lastReport > 100*1024 {
				report(written, total)
				lastReport = written
			}

			if ew != nil {
				return written, ew
			}
			if nr != nw {
				return written, io.ErrShortWrite
			}
		}
		if er != nil {
			if er != io.EOF {
				return written, er
			}
			break
		}
	}

	report(written, total)
	return written, nil
}
