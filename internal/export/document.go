// Package export renders a report body as a paginated document, one
// paragraph per body line, with the emphasis rules of the original
// report layout.
package export

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/fbellini/daybook-server/internal/report"
)

// Run is a fragment of one exported line with a single style.
type Run struct {
	Text string
	Bold bool
}

// SegmentLine splits one body line into styled runs. A line containing
// a colon renders the substring up to and including the colon in bold
// and the remainder in normal style. A colon-free line is entirely bold
// when it starts with the title-line marker prefix, otherwise entirely
// normal.
func SegmentLine(line string) []Run {
	if i := strings.Index(line, ":"); i >= 0 {
		return []Run{
			{Text: line[:i+1], Bold: true},
			{Text: line[i+1:], Bold: false},
		}
	}
	bold := strings.HasPrefix(strings.TrimSpace(line), report.TitleMarkerPrefix)
	return []Run{{Text: line, Bold: bold}}
}

var filenameDate = regexp.MustCompile(`(\d{2})/(\d{2})/(\d{4})`)

// Filename derives the export filename from the date embedded in the
// body's title line, DD-MM-YYYY.pdf. When the title carries no date a
// generic name with the current date is used instead.
func Filename(body string, now time.Time) string {
	title := report.ExtractTitle(body)
	if m := filenameDate.FindString(title); m != "" {
		return strings.ReplaceAll(m, "/", "-") + ".pdf"
	}
	return fmt.Sprintf("report-%s.pdf", now.Format("2006-01-02"))
}
