package report

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fbellini/daybook-server/internal/model"
)

// Filter is the administrator's composite search: a subset of owners,
// a single target date and a keyword, AND-ed together. Zero values mean
// no restriction on that axis.
type Filter struct {
	// OwnerIDs restricts results to these owners. Empty means all.
	OwnerIDs []uuid.UUID
	// Date requires the report's derived date to exist and equal this
	// calendar date exactly. Undated reports never match.
	Date *time.Time
	// Keyword requires a case-insensitive substring match against the
	// full body, not just the title. A keyword of only whitespace means
	// no restriction; an active keyword matches verbatim, surrounding
	// spaces included.
	Keyword string
}

// Apply evaluates the filter over the full report set, attaching each
// report's owner from the directory. A report whose owner is missing
// from the directory is silently dropped, not an error: account
// deletion cascades to reports, but a listing read mid-delete may still
// see orphans.
func Apply(reports []model.Report, directory []model.Account, f Filter) []model.ReportWithAuthor {
	byID := make(map[uuid.UUID]model.Account, len(directory))
	for _, a := range directory {
		byID[a.ID] = a
	}

	owners := make(map[uuid.UUID]struct{}, len(f.OwnerIDs))
	for _, id := range f.OwnerIDs {
		owners[id] = struct{}{}
	}

	keywordActive := strings.TrimSpace(f.Keyword) != ""
	keyword := strings.ToLower(f.Keyword)

	out := make([]model.ReportWithAuthor, 0, len(reports))
	for _, r := range reports {
		author, ok := byID[r.OwnerID]
		if !ok {
			continue
		}

		if len(owners) > 0 {
			if _, ok := owners[r.OwnerID]; !ok {
				continue
			}
		}

		if f.Date != nil {
			day, dated := ExtractDate(r.Body)
			if !dated || !day.Equal(*f.Date) {
				continue
			}
		}

		if keywordActive && !strings.Contains(strings.ToLower(r.Body), keyword) {
			continue
		}

		out = append(out, model.ReportWithAuthor{Report: r, Author: author})
	}

	return out
}

// FindDuplicateTitle reports whether any report in existing, other than
// the one identified by exclude, derives the same title as candidate's
// body. Comparison is case-sensitive and exact. Pass uuid.Nil as
// exclude when creating a new report.
func FindDuplicateTitle(existing []model.Report, candidateBody string, exclude uuid.UUID) (string, bool) {
	title := ExtractTitle(candidateBody)
	for _, r := range existing {
		if r.ID == exclude {
			continue
		}
		if ExtractTitle(r.Body) == title {
			return title, true
		}
	}
	return title, false
}
