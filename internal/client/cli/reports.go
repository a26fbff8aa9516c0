package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fbellini/daybook-server/internal/report"
)

// newReportBody keeps the user's text, or falls back to the dated
// template when nothing was entered.
func newReportBody(input string, now time.Time) string {
	if strings.TrimSpace(input) != "" {
		return input
	}
	return report.NewBodyTemplate(now)
}

// List prints the caller's reports, newest first.
func (a *App) List(ctx context.Context) error {
	reports, err := a.client.ListReports(ctx)
	if err != nil {
		a.reportError(err)
		return err
	}

	if len(reports) == 0 {
		printlnFn("No reports yet.")
		return nil
	}
	for _, r := range reports {
		line := fmt.Sprintf("%s  %s", r.ID, r.Title)
		if r.Date != "" {
			line += fmt.Sprintf("  [%s]", r.Date)
		}
		printlnFn(line)
	}
	return nil
}

// Add reads a multi-line body and saves a new report. An empty entry
// falls back to the dated template so a new report starts from the
// usual sections.
func (a *App) Add(ctx context.Context) error {
	input, err := GetMultiline(a.reader, "Report text (first line becomes the title; leave empty for today's template)", os.Stdout)
	if err != nil {
		return err
	}

	body := newReportBody(input, time.Now())
	if body != input {
		printlnFn("Starting from today's template:")
		printlnFn(body)
	}

	created, err := a.client.CreateReport(ctx, body)
	if err != nil {
		a.reportError(err)
		return err
	}
	printlnFn("Saved:", created.Title)
	return nil
}

// Edit replaces the body of an existing report.
func (a *App) Edit(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Report ID", os.Stdout)
	if err != nil {
		return err
	}
	body, err := GetMultiline(a.reader, "New report text", os.Stdout)
	if err != nil {
		return err
	}

	updated, err := a.client.UpdateReport(ctx, id, body)
	if err != nil {
		a.reportError(err)
		return err
	}
	printlnFn("Updated:", updated.Title)
	return nil
}

// Delete removes a report.
func (a *App) Delete(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Report ID", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.client.DeleteReport(ctx, id); err != nil {
		a.reportError(err)
		return err
	}
	printlnFn("Deleted.")
	return nil
}

// Export downloads a report as a PDF into the current directory.
func (a *App) Export(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Report ID", os.Stdout)
	if err != nil {
		return err
	}

	doc, err := a.client.ExportReport(ctx, id)
	if err != nil {
		a.reportError(err)
		return err
	}

	name := doc.Filename
	if name == "" {
		name = "report.pdf"
	}
	// Never let a server-supplied name escape the working directory.
	name = filepath.Base(name)

	if err := os.WriteFile(name, doc.Content, 0o600); err != nil {
		printlnFn("Error:", err.Error())
		return err
	}
	printlnFn("Saved", name)
	return nil
}
