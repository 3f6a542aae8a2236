// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/jwst-live/internal/convert"
	"github.com/pdiddy/jwst-live/internal/ledger"
	"github.com/pdiddy/jwst-live/internal/secrets"
	"github.com/pdiddy/jwst-live/pkg/types"
)

const (
	defaultTimeout     = 60 * time.Second
	defaultDelay       = 1 * time.Second
	defaultUserAgent   = "jwst-live/0.1"
	defaultProposalURL = "https://www.stsci.edu/jwst/phase2-public/"
)

func setDefaults() {
	viper.SetDefault("log_level", "info")

	viper.SetDefault("http.timeout", defaultTimeout)
	viper.SetDefault("http.user_agent", defaultUserAgent)
	viper.SetDefault("http.max_retries", 5)

	viper.SetDefault("fetch.base_url", defaultProposalURL)
	viper.SetDefault("fetch.cache_dir", "cache")
	viper.SetDefault("fetch.download_delay", defaultDelay)

	viper.SetDefault("conversion.backend", string(types.BackendContainer))
	viper.SetDefault("conversion.image", convert.DefaultImage)
	viper.SetDefault("conversion.binary", "pdftotext")

	viper.SetDefault("output.dir", "output")
	viper.SetDefault("output.fov", 40)

	viper.SetDefault("publish.ledger_path", ledger.DefaultPath)
	viper.SetDefault("publish.rate_per_sec", 1.0)
}

// loadConfig assembles the pipeline configuration from viper. Publishing
// credentials come from the config or environment first, then from the
// secrets directory.
func loadConfig() types.PipelineConfig {
	httpCfg := types.HTTPConfig{
		Timeout:    viper.GetDuration("http.timeout"),
		UserAgent:  viper.GetString("http.user_agent"),
		MaxRetries: viper.GetInt("http.max_retries"),
	}

	cfg := types.PipelineConfig{
		Fetch: types.FetchConfig{
			HTTPConfig:    httpCfg,
			BaseURL:       viper.GetString("fetch.base_url"),
			DownloadDelay: viper.GetDuration("fetch.download_delay"),
			CacheDir:      viper.GetString("fetch.cache_dir"),
		},
		Conversion: types.ConversionConfig{
			Backend: types.ConversionBackend(viper.GetString("conversion.backend")),
			Image:   viper.GetString("conversion.image"),
			Binary:  viper.GetString("conversion.binary"),
		},
		Output: types.OutputConfig{
			Dir:         viper.GetString("output.dir"),
			Stellarium:  viper.GetString("output.stellarium"),
			FieldOfView: viper.GetInt("output.fov"),
		},
		Publish: types.PublishConfig{
			HTTPConfig: httpCfg,
			BaseURL:    viper.GetString("publish.base_url"),
			Username:   viper.GetString("publish.username"),
			Password:   viper.GetString("publish.password"),
			Handle:     viper.GetString("publish.handle"),
			Draft:      viper.GetBool("publish.draft"),
			LedgerPath: viper.GetString("publish.ledger_path"),
			RatePerSec: viper.GetFloat64("publish.rate_per_sec"),
		},
	}
	secrets.Apply(&cfg.Publish, loadedSecrets)
	return cfg
}
