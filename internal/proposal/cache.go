// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package proposal

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/jwst-live/pkg/types"
)

const metadataDir = "metadata"

// MetadataPath returns where the extraction for a proposal is cached.
func MetadataPath(cacheDir string, proposal int) string {
	return filepath.Join(cacheDir, metadataDir, strconv.Itoa(proposal)+".yaml")
}

// WriteExtraction stores an extraction as YAML, creating the directory.
func WriteExtraction(path string, ex types.Extraction) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating metadata directory: %w", err)
	}
	data, err := yaml.Marshal(ex)
	if err != nil {
		return fmt.Errorf("marshaling extraction: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadExtraction loads a cached extraction.
func ReadExtraction(path string) (types.Extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Extraction{}, err
	}
	var ex types.Extraction
	if err := yaml.Unmarshal(data, &ex); err != nil {
		return types.Extraction{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return ex, nil
}
