package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/fbellini/daybook-server/internal/apierrors"
	"github.com/fbellini/daybook-server/internal/logger"
	"github.com/fbellini/daybook-server/internal/model"
	"github.com/fbellini/daybook-server/internal/report"
	"github.com/fbellini/daybook-server/internal/service"
)

// ReportService describes the report operations the handler needs.
type ReportService interface {
	Create(ctx context.Context, ownerID uuid.UUID, body string) (model.Report, error)
	Update(ctx context.Context, ownerID, reportID uuid.UUID, body string) (model.Report, error)
	ListOwn(ctx context.Context, ownerID uuid.UUID) ([]model.Report, error)
	Delete(ctx context.Context, ownerID, reportID uuid.UUID) error
	Search(ctx context.Context, filter report.Filter) ([]model.ReportWithAuthor, error)
	Export(ctx context.Context, callerID, reportID uuid.UUID, isAdmin bool) (service.ExportDocument, error)
}

// Report serves the report endpoints.
type Report struct {
	reportService  ReportService
	authService    AuthService
	accountService AccountService
	contextManager contextManager
	logger         *logger.Logger
}

// NewReport returns a new report handler.
func NewReport(
	reportService ReportService,
	authService AuthService,
	accountService AccountService,
	contextManager contextManager,
	l *logger.Logger,
) *Report {
	return &Report{
		reportService:  reportService,
		authService:    authService,
		accountService: accountService,
		contextManager: contextManager,
		logger:         l,
	}
}

// ReportRequest carries a report body for create and update.
type ReportRequest struct {
	Body string `json:"body"`
}

// SearchRequest is the administrator filter. All present criteria must
// match at once.
type SearchRequest struct {
	OwnerIDs []string `json:"owner_ids"`
	Date     string   `json:"date,omitempty"`
	Keyword  string   `json:"keyword,omitempty"`
}

// List returns the caller's own reports, newest first.
func (h *Report) List(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.contextManager.GetAccountIDFromContext(r.Context())
	if !ok {
		apierrors.Write(w, apierrors.NewErrMissingAuthorizationToken())
		return
	}

	reports, err := h.reportService.ListOwn(r.Context(), accountID)
	if err != nil {
		h.logger.Error("failed to list reports", "account_id", accountID, "error", err)
		apierrors.Write(w, err)
		return
	}

	resp := make([]ReportResponse, 0, len(reports))
	for _, rep := range reports {
		resp = append(resp, toReportResponse(rep))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create stores a new report owned by the caller.
func (h *Report) Create(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.contextManager.GetAccountIDFromContext(r.Context())
	if !ok {
		apierrors.Write(w, apierrors.NewErrMissingAuthorizationToken())
		return
	}

	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.Write(w, apierrors.NewErrValidation("malformed request body"))
		return
	}

	created, err := h.reportService.Create(r.Context(), accountID, req.Body)
	if err != nil {
		h.logger.Debug("failed to create report", "account_id", accountID, "error", err)
		apierrors.Write(w, err)
		return
	}

	h.logger.Info("report created", "report_id", created.ID, "account_id", accountID)

	writeJSON(w, http.StatusCreated, toReportResponse(created))
}

// Update replaces the body of one of the caller's reports.
func (h *Report) Update(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.contextManager.GetAccountIDFromContext(r.Context())
	if !ok {
		apierrors.Write(w, apierrors.NewErrMissingAuthorizationToken())
		return
	}

	reportID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		apierrors.Write(w, apierrors.NewErrReportNotFound())
		return
	}

	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.Write(w, apierrors.NewErrValidation("malformed request body"))
		return
	}

	updated, err := h.reportService.Update(r.Context(), accountID, reportID, req.Body)
	if err != nil {
		h.logger.Debug("failed to update report", "report_id", reportID, "error", err)
		apierrors.Write(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toReportResponse(updated))
}

// Delete removes one of the caller's reports.
func (h *Report) Delete(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.contextManager.GetAccountIDFromContext(r.Context())
	if !ok {
		apierrors.Write(w, apierrors.NewErrMissingAuthorizationToken())
		return
	}

	reportID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		apierrors.Write(w, apierrors.NewErrReportNotFound())
		return
	}

	if err := h.reportService.Delete(r.Context(), accountID, reportID); err != nil {
		h.logger.Debug("failed to delete report", "report_id", reportID, "error", err)
		apierrors.Write(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Export renders a report as a PDF download. Owners can export their
// own reports; the master administrator can export anyone's.
func (h *Report) Export(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.contextManager.GetAccountIDFromContext(r.Context())
	if !ok {
		apierrors.Write(w, apierrors.NewErrMissingAuthorizationToken())
		return
	}

	reportID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		apierrors.Write(w, apierrors.NewErrReportNotFound())
		return
	}

	caller, err := h.authService.Profile(r.Context(), accountID)
	if err != nil {
		apierrors.Write(w, err)
		return
	}

	doc, err := h.reportService.Export(r.Context(), accountID, reportID, h.accountService.IsMaster(caller))
	if err != nil {
		h.logger.Debug("failed to export report", "report_id", reportID, "error", err)
		apierrors.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Content)
}

// Search runs the administrator filter over every account's reports.
func (h *Report) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.Write(w, apierrors.NewErrValidation("malformed request body"))
		return
	}

	filter := report.Filter{Keyword: req.Keyword}
	for _, raw := range req.OwnerIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			apierrors.Write(w, apierrors.NewErrValidation("malformed owner id"))
			return
		}
		filter.OwnerIDs = append(filter.OwnerIDs, id)
	}
	if req.Date != "" {
		day, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			apierrors.Write(w, apierrors.NewErrValidation("malformed date, want YYYY-MM-DD"))
			return
		}
		filter.Date = &day
	}

	results, err := h.reportService.Search(r.Context(), filter)
	if err != nil {
		h.logger.Error("report search failed", "error", err)
		apierrors.Write(w, err)
		return
	}

	resp := make([]SearchResultResponse, 0, len(results))
	for _, res := range results {
		resp = append(resp, toSearchResultResponse(res))
	}
	writeJSON(w, http.StatusOK, resp)
}
