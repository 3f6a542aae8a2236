// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/jwst-live/pkg/types"
)

// BaseTags are attached to every post.
var BaseTags = []string{
	"jwst",
	"jwst live bot",
	"astronomy",
	"cosmology",
	"space telescope",
	"james webb space telescope",
	"webb space telescope",
	"NASA",
	"bot account",
	"automated post",
}

var instrumentLinks = map[string]string{
	"NIRSpec": "[NIRSpec](https://en.wikipedia.org/wiki/NIRSpec) - Near-InfraRed Spectrograph",
	"MIRI":    "[MIRI](https://en.wikipedia.org/wiki/Mid-Infrared_Instrument) - Mid-InfraRed Instrument",
	"NIRCam":  "[NIRCam](https://en.wikipedia.org/wiki/NIRCam) - Near-InfraRed Camera",
	"NIRISS":  "[FGS-NIRISS](https://en.wikipedia.org/wiki/Fine_Guidance_Sensor_and_Near_Infrared_Imager_and_Slitless_Spectrograph) - Fine Guidance Sensor and Near-InfraRed Imager and Slitless Spectrograph",
}

// instrumentRenders are hosted images of the instrument modules.
var instrumentRenders = map[string]string{
	"NIRSpec": "https://staging.cohostcdn.org/attachment/c6533fd7-158d-40cc-b5e5-f2323841b271/NIRSpec_vis.png",
	"MIRI":    "https://staging.cohostcdn.org/attachment/4690ddbb-8ea3-4470-88f6-7aec5afd027a/MIRI_vis.png",
}

var coInvestigatorsTmpl = template.Must(template.New("coi").Parse(`<b>Co-Investigators:</b>
<table>
    <tr>
        <th style="text-align:left;">Name</th>
        <th style="text-align:left;">Institution</th>
    </tr>
{{- range .}}
    <tr>
        <td>{{.Name}}</td>
        <td>{{.Institution}}</td>
    </tr>
{{- end}}
</table>`))

// postTimeLayout is how metadata start date and time combine.
const postTimeLayout = "2006-01-02 15:04:05"

// Posts builds one post per metadata record that has a title. Records
// whose start time cannot be parsed are logged and skipped.
func Posts(records []types.ObservationMetadata, log zerolog.Logger) ([]types.Post, error) {
	var posts []types.Post
	for i := range records {
		md := &records[i]
		if md.Title == NotAvailable {
			continue
		}
		at, err := time.ParseInLocation(postTimeLayout, md.StartDate+" "+md.StartTime, time.UTC)
		if err != nil {
			log.Warn().Str("visit_id", md.VisitID).Err(err).Msg("skipping post with unreadable start time")
			continue
		}
		body, err := postBody(md, at)
		if err != nil {
			return nil, fmt.Errorf("rendering post for %s: %w", md.VisitID, err)
		}
		posts = append(posts, types.Post{
			PostTime: at,
			Title:    md.Title,
			Body:     body,
			Tags:     Tags(md),
		})
	}
	return posts, nil
}

func postBody(md *types.ObservationMetadata, at time.Time) ([]types.Block, error) {
	text := func(v string) types.Block { return types.Block{Type: types.BlockMarkdown, Value: v} }

	body := []types.Block{
		text(fmt.Sprintf("<b>Principal Investigator:</b> %s (%s)", md.PI, md.PIInstitution)),
	}

	if md.Image != NotAvailable {
		body = append(body,
			types.Block{
				Type:    types.BlockImage,
				Value:   md.Image,
				AltText: fmt.Sprintf("A map of the sky indicating where %s is located.", md.TargetName),
			},
			text(fmt.Sprintf("<p style='text-align:center;'><b>Target:</b> %s</p>", md.TargetName)),
		)
	} else {
		body = append(body, text("<b>Target:</b> "+md.TargetName))
	}

	body = append(body,
		text(fmt.Sprintf("<b>Scheduled Observation Start:</b> %s at %s UTC (%s)\n<b>Duration:</b> %s",
			md.StartDate, md.StartTime, Clock12(at), HumanDuration(md.Duration))),
		text("---"),
	)

	if md.Abstract != NotAvailable {
		body = append(body, text(fmt.Sprintf("<b>Abstract:</b> <p>%s</p>", md.Abstract)))
	}

	if len(md.CoInvestigators) > 0 {
		var buf bytes.Buffer
		if err := coInvestigatorsTmpl.Execute(&buf, md.CoInvestigators); err != nil {
			return nil, err
		}
		body = append(body, text(buf.String()))
	}

	body = append(body, text(instrumentsBlock(md.Instruments)))
	return body, nil
}

func instrumentsBlock(instruments []string) string {
	var seen []string
	for _, inst := range instruments {
		if !slices.Contains(seen, inst) {
			seen = append(seen, inst)
		}
	}

	var b strings.Builder
	switch len(seen) {
	case 0:
	case 1:
		b.WriteString("<b>Instrument:</b> ")
	default:
		b.WriteString("<b>Instruments:</b> ")
	}
	for _, inst := range seen {
		b.WriteString(instrumentLinks[inst])
		b.WriteString("\n")
		if img, ok := instrumentRenders[inst]; ok {
			fmt.Fprintf(&b, "![A computer rendering of the %s module](%s)\n", inst, img)
		}
	}
	return b.String()
}

// Tags returns the base tags, the category tag and each keyword.
func Tags(md *types.ObservationMetadata) []string {
	tags := append([]string(nil), BaseTags...)
	tags = append(tags, "Category: "+md.Category)
	for _, kw := range strings.Split(md.Keywords, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			tags = append(tags, kw)
		}
	}
	return tags
}

// Clock12 formats the time of day on a 12-hour clock, e.g. "03:04:05 PM".
// Midnight and noon are 12.
func Clock12(t time.Time) string {
	return t.Format("03:04:05 PM")
}

// HumanDuration spells out a "d/hh:mm:ss" duration, dropping leading
// zero units: "0/01:02:03" is "1 hour 2 min 3 sec". Values in any other
// shape are returned unchanged.
func HumanDuration(s string) string {
	days, clock, ok := strings.Cut(s, "/")
	if !ok {
		return s
	}
	parts := strings.Split(clock, ":")
	if len(parts) != 3 {
		return s
	}
	var n [4]int
	for i, p := range append([]string{days}, parts...) {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return s
		}
		n[i] = v
	}
	d, h, m, sec := n[0], n[1], n[2], n[3]

	var b strings.Builder
	if d > 0 {
		b.WriteString(plural(d, "day", "days"))
	}
	if d > 0 || h > 0 {
		b.WriteString(plural(h, "hour", "hours"))
	}
	if d > 0 || h > 0 || m > 0 {
		fmt.Fprintf(&b, "%d min ", m)
	}
	fmt.Fprintf(&b, "%d sec", sec)
	return b.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one + " "
	}
	return strconv.Itoa(n) + " " + many + " "
}
