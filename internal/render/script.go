// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/pdiddy/jwst-live/pkg/types"
)

// scriptTmpl is the planetarium script: a fixed view setup, one
// screenshot block per observation with coordinates, then exit.
var scriptTmpl = template.Must(template.New("ssc").Parse(`
// pause time playback
core.setTimeRate(0)

// disable GUI
core.setGuiVisible(false)

// enable only azimuthal grid
GridLinesMgr.setFlagAzimuthalGrid(true)
GridLinesMgr.setFlagEquatorGrid(false)

// turn on constellation lines and labels
ConstellationMgr.setFlagLines(true)
ConstellationMgr.setFlagLabels(true)

// BEGIN LOOP
{{range .}}
// set date
core.setDate("{{js .Date}}", "utc", true)

// move to correct location
core.moveToRaDecJ2000("{{js .RA}}", "{{js .Dec}}", 0)

// add marker
MarkerMgr.markerEquatorial("{{js .RA}}", "{{js .Dec}}", true, true, "cross", "#ff3366", 15.0, false, 0, true)

// take screenshot
core.screenshot("{{js .Shot}}", false, "", true, "")

MarkerMgr.deleteAllMarkers()

core.wait(0.1)

{{end}}
// END LOOP

// quit application
core.quitStellarium()
`))

type scriptShot struct {
	Date, RA, Dec, Shot string
}

// ScreenshotBase returns the screenshot file name for a visit id, without
// extension.
func ScreenshotBase(visitID string) string {
	return "screenshot_" + strings.ReplaceAll(visitID, ":", "_")
}

// Script renders the planetarium script. Calibration observations and
// observations without coordinates get no screenshot.
func Script(obs []types.Observation) (string, error) {
	var shots []scriptShot
	for i := range obs {
		o := &obs[i]
		if o.Category == types.CategoryCalibration || !o.HasCoordinates() {
			continue
		}
		shots = append(shots, scriptShot{
			Date: strings.TrimSuffix(o.StartTime, "Z"),
			RA:   o.RA,
			Dec:  o.Dec,
			Shot: ScreenshotBase(o.VisitID),
		})
	}

	var buf bytes.Buffer
	if err := scriptTmpl.Execute(&buf, shots); err != nil {
		return "", err
	}
	return buf.String(), nil
}
