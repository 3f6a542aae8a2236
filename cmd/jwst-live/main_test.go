// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/jwst-live/internal/ledger"
	"github.com/pdiddy/jwst-live/pkg/types"
)

func TestPublishable(t *testing.T) {
	obs := []types.Observation{
		{VisitID: "1234:1:1", Title: "Kept"},
		{VisitID: "1234:2:1"},
		{VisitID: "4242:1:1", Title: "Excluded"},
		{VisitID: "bogus", Title: "Unparseable"},
		{VisitID: "1500:3:2", Title: "Also kept"},
	}

	got := publishable(obs, []int{4242})
	var ids []string
	for _, o := range got {
		ids = append(ids, o.VisitID)
	}
	assert.Equal(t, []string{"1234:1:1", "1500:3:2"}, ids)

	assert.Len(t, publishable(obs, nil), 3)
	assert.Empty(t, publishable(nil, nil))
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		" DEBUG ": zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"loud":    zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestPrintRuns(t *testing.T) {
	var buf bytes.Buffer
	printRuns(&buf, []ledger.RunSummary{
		{RunDir: "output/2024_01_08", Observations: 12, Published: 3},
	})
	assert.Equal(t,
		"RUN                OBSERVATIONS  PUBLISHED\n"+
			"output/2024_01_08  12            3\n",
		buf.String())
}
