package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/fbellini/daybook-server/internal/model"
	"github.com/fbellini/daybook-server/internal/report"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// AccountResponse is the wire form of an account. The password hash
// never leaves the server.
type AccountResponse struct {
	ID        string `json:"id"`
	Handle    string `json:"handle"`
	Email     string `json:"email"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

func toAccountResponse(a model.Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID.String(),
		Handle:    a.Handle,
		Email:     a.Email,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
}

// ReportResponse is the wire form of a report. Title and date are
// derived from the body on the way out, never stored.
type ReportResponse struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id"`
	Body      string `json:"body"`
	Title     string `json:"title"`
	Date      string `json:"date,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toReportResponse(r model.Report) ReportResponse {
	resp := ReportResponse{
		ID:        r.ID.String(),
		OwnerID:   r.OwnerID.String(),
		Body:      r.Body,
		Title:     report.ExtractTitle(r.Body),
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
		UpdatedAt: r.UpdatedAt.Format(time.RFC3339),
	}
	if day, ok := report.ExtractDate(r.Body); ok {
		resp.Date = day.Format("2006-01-02")
	}
	return resp
}

// SearchResultResponse pairs a report with its author for the
// administrator search.
type SearchResultResponse struct {
	ReportResponse
	Author AccountResponse `json:"author"`
}

func toSearchResultResponse(r model.ReportWithAuthor) SearchResultResponse {
	return SearchResultResponse{
		ReportResponse: toReportResponse(r.Report),
		Author:         toAccountResponse(r.Author),
	}
}
