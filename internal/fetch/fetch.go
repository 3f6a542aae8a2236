// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads proposal PDFs into the local cache.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/jwst-live/internal/httputil"
	"github.com/pdiddy/jwst-live/pkg/types"
)

const rawDir = "raw"

// BatchResult holds the outcome of a batch download run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int

	// Paths maps each available proposal to its cached PDF.
	Paths map[int]string

	// Missing lists proposals whose PDF could not be fetched. Their
	// observations need manual entry in the correction file.
	Missing []int
}

// Total returns the total number of proposals processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any download failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// PDFPath returns where the PDF of a proposal is cached.
func PDFPath(cacheDir string, proposal int) string {
	return filepath.Join(cacheDir, rawDir, strconv.Itoa(proposal)+".pdf")
}

// FetchProposal downloads one proposal PDF unless it is already cached.
// The skipped return value reports a cache hit.
func FetchProposal(ctx context.Context, client *http.Client, proposal int, cfg types.FetchConfig, w io.Writer) (path string, skipped bool, err error) {
	path = PDFPath(cfg.CacheDir, proposal)

	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(w, "skipped:     %d (already cached)\n", proposal)
		return path, true, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", false, fmt.Errorf("creating directory %s: %w", filepath.Dir(path), err)
	}

	fmt.Fprintf(w, "downloading: %d\n", proposal)
	if err := downloadFile(ctx, client, cfg.ProposalURL(proposal), path, cfg); err != nil {
		return "", false, fmt.Errorf("downloading proposal %d: %w", proposal, err)
	}
	return path, false, nil
}

// FetchBatch downloads every proposal in order, sleeping DownloadDelay
// between network fetches. Failures are recorded and the batch continues;
// only context cancellation stops it early.
func FetchBatch(ctx context.Context, client *http.Client, proposals []int, cfg types.FetchConfig, w io.Writer) BatchResult {
	log := zerolog.Ctx(ctx)
	result := BatchResult{Paths: make(map[int]string)}

	fetched := false
	for _, id := range proposals {
		if ctx.Err() != nil {
			result.Failed++
			result.Missing = append(result.Missing, id)
			continue
		}
		if fetched && cfg.DownloadDelay > 0 && !cached(cfg.CacheDir, id) {
			if err := sleep(ctx, cfg.DownloadDelay); err != nil {
				result.Failed++
				result.Missing = append(result.Missing, id)
				continue
			}
		}

		path, wasSkipped, err := FetchProposal(ctx, client, id, cfg, w)
		if err != nil {
			fmt.Fprintf(w, "failed:      %d (%v)\n", id, err)
			log.Warn().Int("proposal", id).Err(err).Msg("proposal download failed")
			result.Failed++
			result.Missing = append(result.Missing, id)
			fetched = true
			continue
		}
		if wasSkipped {
			result.Skipped++
		} else {
			result.Downloaded++
			fetched = true
		}
		result.Paths[id] = path
	}

	slices.Sort(result.Missing)
	fmt.Fprintf(w, "\nDownload summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())
	return result
}

func cached(cacheDir string, proposal int) bool {
	_, err := os.Stat(PDFPath(cacheDir, proposal))
	return err == nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// downloadFile fetches url to destPath through a temporary file that is
// renamed into place only after the body is fully written.
func downloadFile(ctx context.Context, client *http.Client, url, destPath string, cfg types.FetchConfig) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := httputil.DoWithRetry(ctx, client, req, cfg.MaxRetries)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
