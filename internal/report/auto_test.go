// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/jwst-live/pkg/types"
)

func TestIntermediatePaths(t *testing.T) {
	assert.Equal(t, "in/schedule.txt.auto.json", AutoPath("in/schedule.txt"))
	assert.Equal(t, "in/schedule.txt.manual.csv", ManualPath("in/schedule.txt"))
}

func TestObservationsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt.auto.json")
	obs := []types.Observation{{
		VisitID:     "1234:1:1",
		Category:    "Galaxies",
		VisitType:   []string{"PRIME TARGETED FIXED"},
		Instruments: []string{"MIRI Imaging", "NIRCam Imaging"},
		Title:       "Dust in Distant Spiral Galaxies",
		PI:          &types.Investigator{Name: "Jane Doe", Institution: "Space Telescope Science Institute"},
		RA:          "10h 00m 00.00s",
		Dec:         "+02d 00' 00.0\"",
	}}

	require.NoError(t, WriteObservations(path, obs))
	got, err := ReadObservations(path)
	require.NoError(t, err)
	assert.Equal(t, obs, got)

	// No temp files are left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestReadObservationsErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadObservations(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = ReadObservations(bad)
	assert.ErrorContains(t, err, "parsing")
}
