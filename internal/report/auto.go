// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/jwst-live/pkg/types"
)

// AutoPath returns the file preprocess writes the merged, enriched
// observations of a report to.
func AutoPath(reportPath string) string { return reportPath + ".auto.json" }

// ManualPath returns the correction file preprocess writes for a report.
func ManualPath(reportPath string) string { return reportPath + ".manual.csv" }

// WriteObservations writes obs as indented JSON, replacing path atomically.
func WriteObservations(path string, obs []types.Observation) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(obs); err != nil {
		return fmt.Errorf("encoding observations: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".auto-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// ReadObservations loads observations written by WriteObservations.
func ReadObservations(path string) ([]types.Observation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var obs []types.Observation
	if err := json.Unmarshal(data, &obs); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return obs, nil
}
