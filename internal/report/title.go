// Package report implements title and date derivation from report
// bodies and the composite administrator filter.
//
// A report body is plain text structured by newlines. Its first line,
// trimmed, is the display title. If the title contains a DD/MM/YYYY
// substring, the report carries that date; otherwise it is undated.
// Neither value is ever stored, both are recomputed on read.
package report

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// TitleMarkerPrefix opens the title line produced by the new-report
// template. A colon-free exported line is rendered emphasized only when
// it starts with this prefix.
const TitleMarkerPrefix = "Report del"

var datePattern = regexp.MustCompile(`(\d{2})/(\d{2})/(\d{4})`)

// ExtractTitle returns the trimmed first line of body. A body with no
// newline is its own title line; a whitespace-only body derives the
// empty title, which is still a valid (colliding) title.
func ExtractTitle(body string) string {
	line, _, _ := strings.Cut(body, "\n")
	return strings.TrimSpace(line)
}

// ExtractDate scans the derived title for a DD/MM/YYYY substring and
// returns the calendar date it names, at UTC midnight. Only the first
// match in the title line is considered; a first match that is not a
// real calendar date (e.g. 31/02/2024) yields no date, since it could
// never equal a real target date. The second result is false when the
// title carries no date.
func ExtractDate(body string) (time.Time, bool) {
	m := datePattern.FindStringSubmatch(ExtractTitle(body))
	if m == nil {
		return time.Time{}, false
	}
	day, err := time.Parse("02/01/2006", m[0])
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

// NewBodyTemplate returns the pre-filled body for a new report dated
// now, matching the structure users are expected to keep: a dated title
// line followed by labelled sections.
func NewBodyTemplate(now time.Time) string {
	date := now.Format("02/01/2006")
	return fmt.Sprintf("%s %s\n\nVisita n°1: Ore xx.xx- . Az Agricola.Località. Visita Periodica/Prima visita\n\nRiassunto visita: \n\nObiettivo prox visita :\n\nProx visita entro: ", TitleMarkerPrefix, date)
}
