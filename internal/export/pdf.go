package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	pageFont   = "Helvetica"
	fontSize   = 11
	lineHeight = 5.5
)

// RenderPDF writes the report body to w as an A4 PDF, one paragraph per
// body line, styled by SegmentLine. Pagination is handled by the
// renderer's page breaks.
func RenderPDF(body string, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	pdf.SetFont(pageFont, "", fontSize)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, line := range strings.Split(body, "\n") {
		if strings.TrimRight(line, "\r") == "" {
			pdf.Ln(lineHeight)
			continue
		}
		for _, run := range SegmentLine(strings.TrimRight(line, "\r")) {
			style := ""
			if run.Bold {
				style = "B"
			}
			pdf.SetFont(pageFont, style, fontSize)
			pdf.Write(lineHeight, tr(run.Text))
		}
		pdf.Ln(lineHeight)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}
