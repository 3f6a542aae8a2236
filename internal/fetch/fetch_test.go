// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/jwst-live/internal/httputil"
	"github.com/pdiddy/jwst-live/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = 0
}

// newTestServer serves "<id>.pdf" for proposals 1000-1999 and 404 for the rest.
func newTestServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		assert.Equal(t, "jwst-live-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/pdf", r.Header.Get("Accept"))
		switch r.URL.Path {
		case "/1234.pdf", "/1500.pdf":
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write([]byte("%PDF-1.4 " + r.URL.Path))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func testConfig(t *testing.T, ts *httptest.Server) types.FetchConfig {
	return types.FetchConfig{
		HTTPConfig: types.HTTPConfig{UserAgent: "jwst-live-test", MaxRetries: 1},
		BaseURL:    ts.URL + "/",
		CacheDir:   t.TempDir(),
	}
}

func TestPDFPath(t *testing.T) {
	assert.Equal(t, filepath.Join("cache", "raw", "1234.pdf"), PDFPath("cache", 1234))
}

func TestFetchProposal(t *testing.T) {
	ts := newTestServer(t, nil)
	cfg := testConfig(t, ts)

	var log bytes.Buffer
	path, skipped, err := FetchProposal(context.Background(), ts.Client(), 1234, cfg, &log)
	require.NoError(t, err)
	assert.False(t, skipped)
	assert.Equal(t, PDFPath(cfg.CacheDir, 1234), path)
	assert.Contains(t, log.String(), "downloading: 1234")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 /1234.pdf", string(data))

	// No temp files are left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFetchProposal_SkipsCached(t *testing.T) {
	var hits int32
	ts := newTestServer(t, &hits)
	cfg := testConfig(t, ts)

	path := PDFPath(cfg.CacheDir, 1234)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("cached"), 0o644))

	var log bytes.Buffer
	got, skipped, err := FetchProposal(context.Background(), ts.Client(), 1234, cfg, &log)
	require.NoError(t, err)
	assert.True(t, skipped)
	assert.Equal(t, path, got)
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
	assert.Contains(t, log.String(), "already cached")
}

func TestFetchProposal_NotFound(t *testing.T) {
	ts := newTestServer(t, nil)
	cfg := testConfig(t, ts)

	_, _, err := FetchProposal(context.Background(), ts.Client(), 9999, cfg, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")

	_, statErr := os.Stat(PDFPath(cfg.CacheDir, 9999))
	assert.True(t, os.IsNotExist(statErr))
}

func TestFetchBatch(t *testing.T) {
	ts := newTestServer(t, nil)
	cfg := testConfig(t, ts)

	cachedPath := PDFPath(cfg.CacheDir, 1500)
	require.NoError(t, os.MkdirAll(filepath.Dir(cachedPath), 0o755))
	require.NoError(t, os.WriteFile(cachedPath, []byte("cached"), 0o644))

	var log bytes.Buffer
	result := FetchBatch(context.Background(), ts.Client(), []int{9999, 1234, 1500, 4242}, cfg, &log)

	assert.Equal(t, 1, result.Downloaded)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, 4, result.Total())
	assert.True(t, result.HasFailures())
	assert.Equal(t, []int{4242, 9999}, result.Missing)
	assert.Equal(t, map[int]string{
		1234: PDFPath(cfg.CacheDir, 1234),
		1500: cachedPath,
	}, result.Paths)
	assert.Contains(t, log.String(), "Download summary: 1 downloaded, 1 skipped, 2 failed (total: 4)")
}

func TestFetchBatch_Cancelled(t *testing.T) {
	var hits int32
	ts := newTestServer(t, &hits)
	cfg := testConfig(t, ts)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := FetchBatch(ctx, ts.Client(), []int{1234, 1500}, cfg, io.Discard)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, []int{1234, 1500}, result.Missing)
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}
