// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/jwst-live/pkg/types"
)

const scheduleHeader = "VISIT ID      PCS MODE   VISIT TYPE        SCHEDULED START TIME    DURATION      SCIENCE INSTRUMENT AND MODE   TARGET NAME    CATEGORY        KEYWORDS"

// layout places each value at the start of the matching column.
func layout(t *testing.T, spec types.ColumnSpec, values ...string) string {
	t.Helper()
	require.LessOrEqual(t, len(values), len(spec))
	var b strings.Builder
	for i, v := range values {
		for b.Len() < spec[i].Start {
			b.WriteByte(' ')
		}
		b.WriteString(v)
	}
	return b.String()
}

func TestDetectColumns(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   types.ColumnSpec
	}{
		{
			name:   "single spaces stay inside a label",
			header: "A   B C   DEF",
			want: types.ColumnSpec{
				{Label: "A", Start: 0, End: 4},
				{Label: "B C", Start: 4, End: 10},
				{Label: "DEF", Start: 10, End: -1},
			},
		},
		{
			name:   "leading whitespace",
			header: "   VISIT TYPE   CATEGORY",
			want: types.ColumnSpec{
				{Label: "VISIT TYPE", Start: 3, End: 16},
				{Label: "CATEGORY", Start: 16, End: -1},
			},
		},
		{
			name:   "trailing gap",
			header: "AB  CD    \n",
			want: types.ColumnSpec{
				{Label: "AB", Start: 0, End: 4},
				{Label: "CD", Start: 4, End: -1},
			},
		},
		{
			name:   "digits do not start a column",
			header: "NAME   42   KIND",
			want: types.ColumnSpec{
				{Label: "NAME", Start: 0, End: 12},
				{Label: "KIND", Start: 12, End: -1},
			},
		},
		{
			name:   "duplicate label keeps first",
			header: "ID   NAME   ID",
			want: types.ColumnSpec{
				{Label: "ID", Start: 0, End: 5},
				{Label: "NAME", Start: 5, End: 12},
			},
		},
		{name: "no words", header: "   ---   ", want: nil},
		{name: "empty", header: "", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectColumns(tt.header))
		})
	}
}

func TestDetectColumns_ScheduleHeader(t *testing.T) {
	spec := DetectColumns(scheduleHeader)
	assert.Equal(t, []string{
		"VISIT ID", "PCS MODE", "VISIT TYPE", "SCHEDULED START TIME", "DURATION",
		"SCIENCE INSTRUMENT AND MODE", "TARGET NAME", "CATEGORY", "KEYWORDS",
	}, spec.Labels())

	for i := 1; i < len(spec); i++ {
		assert.Equal(t, spec[i].Start, spec[i-1].End, "column %q must end where %q starts", spec[i-1].Label, spec[i].Label)
	}
	assert.True(t, spec[len(spec)-1].Unbounded())
}

func TestSliceLine(t *testing.T) {
	spec := DetectColumns(scheduleHeader)
	line := layout(t, spec,
		"1234:1:1", "COARSE", "PRIME TARGETED", "2024-01-01T00:00:00Z", "00/01:02:03",
		"NIRCam Imaging", "NGC 1234", "Galaxies", "Spiral galaxies, Dust")

	obs := SliceLine(line, spec)

	assert.Equal(t, "1234:1:1", obs.VisitID)
	assert.Equal(t, "2024-01-01T00:00:00Z", obs.StartTime)
	assert.Equal(t, "00/01:02:03", obs.Duration)
	assert.Equal(t, "NGC 1234", obs.TargetName)
	assert.Equal(t, "Galaxies", obs.Category)
	assert.Equal(t, "Spiral galaxies, Dust", obs.Keywords)
	assert.Equal(t, []string{"PRIME TARGETED"}, obs.VisitType)
	assert.Equal(t, []string{"NIRCam Imaging"}, obs.Instruments)
	assert.Equal(t, map[string]string{"PCS MODE": "COARSE"}, obs.Extra)
}

func TestSliceLine_ShortLine(t *testing.T) {
	spec := DetectColumns(scheduleHeader)
	line := layout(t, spec, "1234:1:1", "COARSE")

	var obs types.Observation
	require.NotPanics(t, func() { obs = SliceLine(line, spec) })
	assert.Equal(t, "1234:1:1", obs.VisitID)
	assert.Empty(t, obs.StartTime)
	assert.Empty(t, obs.Keywords)
	assert.Equal(t, []string{""}, obs.Instruments)
}

func TestSliceLine_EmptySpec(t *testing.T) {
	obs := SliceLine("1234:1:1   Science", nil)
	assert.Empty(t, obs.VisitID)
	assert.Nil(t, obs.Extra)
}

func TestFoldAttachments(t *testing.T) {
	raw := []types.Observation{
		{VisitID: "1:1:1", StartTime: "2024-01-01T00:00:00Z", VisitType: []string{"PRIME"}, Instruments: []string{"NIRCam Imaging"}},
		{StartTime: types.AttachedToPrime, VisitType: []string{"PARALLEL"}, Instruments: []string{"NIRISS Imaging"}},
		{StartTime: types.AttachedToPrime, VisitType: []string{"PRIME"}, Instruments: []string{"MIRI Imaging"}},
		{VisitID: "1:2:1", StartTime: "2024-01-01T05:00:00Z", VisitType: []string{"PRIME"}, Instruments: []string{"NIRSpec MOS"}},
	}

	got, err := FoldAttachments(raw)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.ElementsMatch(t, []string{"PRIME", "PARALLEL"}, got[0].VisitType)
	assert.ElementsMatch(t, []string{"NIRCam Imaging", "NIRISS Imaging", "MIRI Imaging"}, got[0].Instruments)
	assert.Equal(t, []string{"NIRSpec MOS"}, got[1].Instruments)

	// The input is left untouched.
	assert.Equal(t, []string{"PRIME"}, raw[0].VisitType)
}

func TestFoldAttachments_Orphan(t *testing.T) {
	raw := []types.Observation{
		{StartTime: types.AttachedToPrime, VisitType: []string{"PARALLEL"}},
	}
	_, err := FoldAttachments(raw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOrphanAttachment))
}

func TestMerge(t *testing.T) {
	raw := []types.Observation{
		{VisitID: "1:1:1", Category: "Galaxies", StartTime: "t0", VisitType: []string{"PRIME"}, Instruments: []string{"NIRCam Imaging"}},
		{StartTime: types.AttachedToPrime, VisitType: []string{"PARALLEL"}, Instruments: []string{"MIRI Imaging"}},
		{VisitID: "2:1:1", Category: "Calibration", StartTime: "t1", VisitType: []string{"PRIME"}, Instruments: []string{"NIRSpec"}},
		{VisitID: "", Category: "Galaxies", StartTime: "t2", VisitType: []string{"PRIME"}, Instruments: []string{"NIRSpec"}},
		{VisitID: "3:1:1", Category: "Exoplanets", StartTime: "t3", VisitType: []string{"PRIME"}, Instruments: []string{"NIRISS SOSS"}},
	}

	got, err := Merge(raw)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "1:1:1", got[0].VisitID)
	assert.Equal(t, []string{"PARALLEL", "PRIME"}, got[0].VisitType)
	assert.Equal(t, []string{"MIRI Imaging", "NIRCam Imaging"}, got[0].Instruments)
	assert.Equal(t, "3:1:1", got[1].VisitID)

	for _, o := range got {
		assert.NotEqual(t, types.CategoryCalibration, o.Category)
	}
}

func TestMerge_CalibrationWithAttachment(t *testing.T) {
	raw := []types.Observation{
		{VisitID: "1:1:1", Category: "Calibration", StartTime: "t0", VisitType: []string{"PRIME"}},
		{StartTime: types.AttachedToPrime, VisitType: []string{"PARALLEL"}},
		{VisitID: "2:1:1", Category: "Galaxies", StartTime: "t1", VisitType: []string{"PRIME"}},
	}
	got, err := Merge(raw)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2:1:1", got[0].VisitID)
	assert.Equal(t, []string{"PRIME"}, got[0].VisitType)
}

func TestFinalize_Idempotent(t *testing.T) {
	obs := []types.Observation{
		{VisitID: "1:1:1", VisitType: []string{"b", "a", "b"}, Instruments: []string{"z", "y"}},
		{VisitID: "1:2:1"},
	}
	Finalize(obs)
	once := make([]types.Observation, len(obs))
	copy(once, obs)

	Finalize(obs)
	assert.Equal(t, once, obs)
	assert.Equal(t, []string{"a", "b"}, obs[0].VisitType)
	assert.Equal(t, []string{"y", "z"}, obs[0].Instruments)
	assert.Equal(t, []string{}, obs[1].VisitType)
}

func TestParse_EndToEnd(t *testing.T) {
	header := "   VISIT TYPE   SCIENCE INSTRUMENT AND MODE   CATEGORY   VISIT ID   SCHEDULED START TIME"
	spec := DetectColumns(header)
	data := layout(t, spec, "PRIME", "NIRCam Imaging", "Science", "1234:1:1", "2024-01-01T00:00:00Z")

	input := strings.Join([]string{
		"JWST SCIENCE OBSERVING SCHEDULE",
		"",
		header,
		"   ----------   ---------------------------   --------   --------   --------------------",
		data,
		"",
	}, "\n")

	got, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1234:1:1", got[0].VisitID)
	assert.Equal(t, "Science", got[0].Category)
	assert.Equal(t, "2024-01-01T00:00:00Z", got[0].StartTime)
}

func TestParse_Attached(t *testing.T) {
	spec := DetectColumns(scheduleHeader)
	lines := []string{
		"title",
		"",
		scheduleHeader,
		"",
		layout(t, spec, "1234:1:1", "COARSE", "PRIME TARGETED", "2024-01-01T00:00:00Z", "00/01:00:00", "NIRCam Imaging", "NGC 1234", "Galaxies", "Dust"),
		layout(t, spec, "", "", "PARALLEL PURE", types.AttachedToPrime, "", "MIRI Imaging"),
		layout(t, spec, "99:1:1", "FINE", "PRIME TARGETED", "2024-01-01T02:00:00Z", "00/00:10:00", "NIRSpec", "DARK", "Calibration", ""),
		layout(t, spec, "1235:2:1", "COARSE", "PRIME TARGETED", "2024-01-01T03:00:00Z", "00/02:00:00", "NIRSpec IFU", "WASP-39", "Exoplanets", "Transits"),
	}

	got, err := Parse(strings.NewReader(strings.Join(lines, "\n")))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"MIRI Imaging", "NIRCam Imaging"}, got[0].Instruments)
	assert.Equal(t, []string{"PARALLEL PURE", "PRIME TARGETED"}, got[0].VisitType)
	assert.Equal(t, "1235:2:1", got[1].VisitID)
}

func TestParse_Empty(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no lines", ""},
		{"header only", "a\n\nVISIT ID   CATEGORY\n"},
		{"only calibration", "a\n\nVISIT ID   CATEGORY\n\n1:1:1      Calibration\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNoObservations))
		})
	}
}
