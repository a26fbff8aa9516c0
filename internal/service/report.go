package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fbellini/daybook-server/internal/apierrors"
	"github.com/fbellini/daybook-server/internal/export"
	"github.com/fbellini/daybook-server/internal/logger"
	"github.com/fbellini/daybook-server/internal/model"
	"github.com/fbellini/daybook-server/internal/report"
)

// Report manages report persistence, the title-uniqueness invariant and
// the administrator search.
type Report struct {
	reportStore  model.ReportStore
	accountStore model.AccountStore
	storage      model.Storage
	logger       *logger.Logger
}

func NewReport(
	reportStore model.ReportStore,
	accountStore model.AccountStore,
	storage model.Storage,
	logger *logger.Logger,
) *Report {
	return &Report{
		reportStore:  reportStore,
		accountStore: accountStore,
		storage:      storage,
		logger:       logger,
	}
}

// Create saves a new report after the uniqueness pre-check. The owner's
// reports are re-fetched immediately before comparing, which narrows but
// does not close the race window against concurrent saves.
func (s *Report) Create(ctx context.Context, ownerID uuid.UUID, body string) (model.Report, error) {
	if strings.TrimSpace(body) == "" {
		return model.Report{}, apierrors.NewErrValidation("report body is empty")
	}

	if err := s.checkDuplicateTitle(ctx, ownerID, body, uuid.Nil); err != nil {
		return model.Report{}, err
	}

	saved, err := s.reportStore.Create(ctx, model.Report{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Body:    body,
	})
	if err != nil {
		return model.Report{}, fmt.Errorf("failed to create report: %w", err)
	}

	s.logger.Info("Report service: report created",
		"owner_id", ownerID.String(),
		"report_id", saved.ID.String())

	return saved, nil
}

// Update replaces a report's body, keeping the uniqueness invariant.
// The report being updated is excluded from the collision scan so an
// unchanged title never collides with itself.
func (s *Report) Update(ctx context.Context, ownerID, reportID uuid.UUID, body string) (model.Report, error) {
	if strings.TrimSpace(body) == "" {
		return model.Report{}, apierrors.NewErrValidation("report body is empty")
	}

	existing, err := s.ownedReport(ctx, ownerID, reportID)
	if err != nil {
		return model.Report{}, err
	}

	if err := s.checkDuplicateTitle(ctx, ownerID, body, existing.ID); err != nil {
		return model.Report{}, err
	}

	updated, err := s.reportStore.UpdateBody(ctx, existing.ID, body)
	if errors.Is(err, model.ErrNotFound) {
		return model.Report{}, apierrors.NewErrReportNotFound()
	}
	if err != nil {
		return model.Report{}, fmt.Errorf("failed to update report: %w", err)
	}

	// Retire the archived render of the previous revision; the next
	// export re-renders from the new body.
	if err := s.storage.Delete(ctx, archiveKey(existing)); err != nil {
		s.logger.Error("Report service: failed to retire archived export",
			"report_id", existing.ID.String(),
			"error", err.Error())
	}

	return updated, nil
}

// ListOwn returns the caller's reports, newest first.
func (s *Report) ListOwn(ctx context.Context, ownerID uuid.UUID) ([]model.Report, error) {
	reports, err := s.reportStore.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reports by owner: %w", err)
	}
	return reports, nil
}

// Delete removes one of the caller's reports.
func (s *Report) Delete(ctx context.Context, ownerID, reportID uuid.UUID) error {
	existing, err := s.ownedReport(ctx, ownerID, reportID)
	if err != nil {
		return err
	}

	if err := s.reportStore.Delete(ctx, existing.ID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return apierrors.NewErrReportNotFound()
		}
		return fmt.Errorf("failed to delete report: %w", err)
	}

	if err := s.storage.Delete(ctx, archiveKey(existing)); err != nil {
		s.logger.Error("Report service: failed to delete archived export",
			"report_id", existing.ID.String(),
			"error", err.Error())
	}

	return nil
}

// Search evaluates the administrator's composite filter over the full
// report set joined with the account directory.
func (s *Report) Search(ctx context.Context, filter report.Filter) ([]model.ReportWithAuthor, error) {
	reports, err := s.reportStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get all reports: %w", err)
	}

	directory, err := s.accountStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	return report.Apply(reports, directory, filter), nil
}

// ExportDocument is a rendered report ready for download.
type ExportDocument struct {
	Filename string
	Content  []byte
}

// Export renders a report as a PDF, archives a copy in object storage
// under the owner's prefix and returns the document. An unchanged
// report revision is served from the archive instead of re-rendering.
// Admin callers may export any report; owners only their own.
func (s *Report) Export(ctx context.Context, callerID uuid.UUID, reportID uuid.UUID, isAdmin bool) (ExportDocument, error) {
	rep, err := s.reportStore.GetByID(ctx, reportID)
	if errors.Is(err, model.ErrNotFound) {
		return ExportDocument{}, apierrors.NewErrReportNotFound()
	}
	if err != nil {
		return ExportDocument{}, fmt.Errorf("failed to get report by id: %w", err)
	}

	if rep.OwnerID != callerID && !isAdmin {
		return ExportDocument{}, apierrors.NewErrReportNotFound()
	}

	filename := export.Filename(rep.Body, time.Now())
	key := archiveKey(rep)

	if content, ok := s.archivedCopy(ctx, key); ok {
		return ExportDocument{Filename: filename, Content: content}, nil
	}

	var buf bytes.Buffer
	if err := export.RenderPDF(rep.Body, &buf); err != nil {
		return ExportDocument{}, fmt.Errorf("failed to render report: %w", err)
	}

	doc := ExportDocument{
		Filename: filename,
		Content:  buf.Bytes(),
	}

	if err := s.storage.Upload(ctx, key, bytes.NewReader(doc.Content)); err != nil {
		// The archive copy is best effort; the download still proceeds.
		s.logger.Error("Report service: failed to archive export",
			"report_id", rep.ID.String(),
			"key", key,
			"error", err.Error())
	}

	return doc, nil
}

// archivedCopy fetches a previously archived render of the same report
// revision. Any archive failure falls back to a fresh render.
func (s *Report) archivedCopy(ctx context.Context, key string) ([]byte, bool) {
	exists, err := s.storage.Exists(ctx, key)
	if err != nil || !exists {
		return nil, false
	}

	obj, err := s.storage.Download(ctx, key)
	if err != nil {
		s.logger.Error("Report service: failed to download archived export",
			"key", key,
			"error", err.Error())
		return nil, false
	}
	defer obj.Close()

	content, err := io.ReadAll(obj)
	if err != nil {
		s.logger.Error("Report service: failed to read archived export",
			"key", key,
			"error", err.Error())
		return nil, false
	}

	return content, true
}

// archiveKey names one revision of a report in the export archive.
// Edits bump UpdatedAt, so a stale render is never served.
func archiveKey(rep model.Report) string {
	return fmt.Sprintf("accounts/%s/exports/%s-%d.pdf", rep.OwnerID, rep.ID, rep.UpdatedAt.Unix())
}

// ownedReport fetches a report and hides it from non-owners: a foreign
// report is indistinguishable from a missing one.
func (s *Report) ownedReport(ctx context.Context, ownerID, reportID uuid.UUID) (model.Report, error) {
	rep, err := s.reportStore.GetByID(ctx, reportID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Report{}, apierrors.NewErrReportNotFound()
	}
	if err != nil {
		return model.Report{}, fmt.Errorf("failed to get report by id: %w", err)
	}
	if rep.OwnerID != ownerID {
		return model.Report{}, apierrors.NewErrReportNotFound()
	}
	return rep, nil
}

func (s *Report) checkDuplicateTitle(ctx context.Context, ownerID uuid.UUID, body string, exclude uuid.UUID) error {
	// Re-fetch right before comparing to shrink the race window against
	// concurrent edits from the same account.
	existing, err := s.reportStore.GetByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("failed to get reports by owner: %w", err)
	}

	if title, dup := report.FindDuplicateTitle(existing, body, exclude); dup {
		return apierrors.NewErrDuplicateTitle(title)
	}

	return nil
}
