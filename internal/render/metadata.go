// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns merged observations into the compile outputs: the
// planetarium screenshot script, metadata.json and the post queue.
package render

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/jwst-live/pkg/types"
)

// NotAvailable stands in for missing metadata values.
const NotAvailable = "N/A"

// knownInstruments are matched against the first word of a mode.
var knownInstruments = map[string]bool{
	"NIRSpec": true,
	"MIRI":    true,
	"NIRCam":  true,
	"NIRISS":  true,
}

// Instrument returns the instrument an instrument mode such as
// "NIRCam Imaging" runs on. Wavefront sensing modes belong to NIRCam.
func Instrument(mode string) (string, bool) {
	first, _, _ := strings.Cut(mode, " ")
	if knownInstruments[first] {
		return first, true
	}
	if strings.HasPrefix(mode, "WFSC NIRCam") {
		return "NIRCam", true
	}
	return "", false
}

// Metadata flattens observations into metadata records. Calibration
// observations are dropped. Unrecognized instrument modes are logged and
// left out of the instrument list.
func Metadata(obs []types.Observation, log zerolog.Logger) []types.ObservationMetadata {
	out := make([]types.ObservationMetadata, 0, len(obs))
	for i := range obs {
		o := &obs[i]
		if o.Category == types.CategoryCalibration {
			continue
		}

		md := types.ObservationMetadata{
			VisitID:         o.VisitID,
			TargetName:      o.TargetName,
			Duration:        o.Duration,
			PI:              NotAvailable,
			PIInstitution:   NotAvailable,
			Title:           orNA(o.Title),
			Image:           NotAvailable,
			Category:        o.Category,
			Keywords:        o.Keywords,
			Abstract:        orNA(o.Abstract),
			CoInvestigators: o.CoInvestigators,
			InstrumentModes: []string{},
			Instruments:     []string{},
		}
		if id, err := o.ID(); err == nil {
			md.ProposalID = strconv.Itoa(id.Proposal)
			md.Observation = strconv.Itoa(id.Observation)
		}
		date, clock, _ := strings.Cut(o.StartTime, "T")
		md.StartDate = date
		md.StartTime = strings.TrimSuffix(clock, "Z")

		if o.PI != nil {
			md.PI = orNA(o.PI.Name)
			md.PIInstitution = orNA(o.PI.Institution)
		}
		if md.CoInvestigators == nil {
			md.CoInvestigators = []types.Investigator{}
		}
		if o.HasCoordinates() {
			md.Image = ScreenshotBase(o.VisitID) + ".png"
		}

		for _, mode := range o.Instruments {
			if mode == "" {
				continue
			}
			md.InstrumentModes = append(md.InstrumentModes, mode)
			inst, ok := Instrument(mode)
			if !ok {
				log.Warn().Str("visit_id", o.VisitID).Str("mode", mode).Msg("unrecognized instrument")
				continue
			}
			md.Instruments = append(md.Instruments, inst)
		}
		out = append(out, md)
	}
	return out
}

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}
