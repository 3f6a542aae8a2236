package types

import (
	"strconv"
	"time"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "jwst-live/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries bounds retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// FetchConfig holds settings for downloading proposal PDFs.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is prefixed to "<proposal>.pdf" to build a download URL.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// DownloadDelay is the delay between consecutive downloads (default 1s).
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`

	// CacheDir is the base directory for proposals (contains raw/, text/, metadata/).
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`
}

// ProposalURL returns the download URL for a proposal PDF.
func (c FetchConfig) ProposalURL(proposal int) string {
	return c.BaseURL + strconv.Itoa(proposal) + ".pdf"
}

// ConversionBackend identifies how PDF text is extracted.
type ConversionBackend string

const (
	// BackendContainer runs pdftotext inside a docker or podman image.
	BackendContainer ConversionBackend = "container"
	// BackendLocal runs a pdftotext binary found on PATH.
	BackendLocal ConversionBackend = "local"
)

// ConversionConfig holds settings for PDF-to-text conversion.
type ConversionConfig struct {
	// Backend selects container or local pdftotext.
	Backend ConversionBackend `json:"backend" yaml:"backend"`

	// Image is the container image that provides pdftotext.
	Image string `json:"image" yaml:"image"`

	// Binary is the pdftotext executable for the local backend.
	Binary string `json:"binary" yaml:"binary"`
}

// OutputConfig holds settings for the compile stage outputs.
type OutputConfig struct {
	// Dir is the base directory; each run writes to Dir/YYYY_MM_DD/.
	Dir string `json:"dir" yaml:"dir"`

	// Stellarium is the planetarium executable. Empty skips the screenshot run.
	Stellarium string `json:"stellarium" yaml:"stellarium"`

	// FieldOfView is passed to the planetarium in degrees (default 40).
	FieldOfView int `json:"fov" yaml:"fov"`
}

// PublishConfig carries everything the publishing client needs. It is
// passed explicitly; there are no package-level credentials.
type PublishConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the platform API root (e.g. "https://example.social/api/v1").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Username and Password authenticate the account.
	Username string `json:"-" yaml:"-"`
	Password string `json:"-" yaml:"-"`

	// Handle is the page or project the posts are published to.
	Handle string `json:"handle" yaml:"handle"`

	// Draft publishes posts as drafts.
	Draft bool `json:"draft" yaml:"draft"`

	// LedgerPath is the SQLite file recording published posts.
	LedgerPath string `json:"ledger_path" yaml:"ledger_path"`

	// RatePerSec limits platform requests (default 1).
	RatePerSec float64 `json:"rate_per_sec" yaml:"rate_per_sec"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Fetch      FetchConfig      `json:"fetch" yaml:"fetch"`
	Conversion ConversionConfig `json:"conversion" yaml:"conversion"`
	Output     OutputConfig     `json:"output" yaml:"output"`
	Publish    PublishConfig    `json:"publish" yaml:"publish"`
}
