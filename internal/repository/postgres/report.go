package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fbellini/daybook-server/internal/model"
)

var _ model.ReportStore = (*ReportRepository)(nil)

// ReportRepository persists reports.
type ReportRepository struct {
	db DBTX
}

// NewReportRepository constructs a repository bound to the given DBTX.
func NewReportRepository(db DBTX) *ReportRepository {
	return &ReportRepository{db: db}
}

const reportColumns = `id, owner_id, body, created_at, updated_at`

func scanReport(row interface{ Scan(...any) error }) (model.Report, error) {
	var rep model.Report
	err := row.Scan(&rep.ID, &rep.OwnerID, &rep.Body, &rep.CreatedAt, &rep.UpdatedAt)
	return rep, err
}

// Create inserts the report. Creation timestamp is assigned by the
// database so ordering stays monotonic per insertion.
func (r *ReportRepository) Create(ctx context.Context, report model.Report) (model.Report, error) {
	query := `INSERT INTO reports (id, owner_id, body)
			  VALUES ($1, $2, $3)
			  RETURNING ` + reportColumns

	saved, err := scanReport(r.db.QueryRowContext(ctx, query, report.ID, report.OwnerID, report.Body))
	if err != nil {
		return model.Report{}, fmt.Errorf("failed to create report: %w", err)
	}

	return saved, nil
}

func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`

	report, err := scanReport(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Report{}, model.ErrNotFound
		}
		return model.Report{}, fmt.Errorf("failed to get report by id: %w", err)
	}

	return report, nil
}

// GetByOwner returns one account's reports, newest first.
func (r *ReportRepository) GetByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports
			  WHERE owner_id = $1
			  ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reports by owner: %w", err)
	}
	defer rows.Close()

	return collectReports(rows)
}

// GetAll returns every report in the system, newest first. Administrator
// use only.
func (r *ReportRepository) GetAll(ctx context.Context) ([]model.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all reports: %w", err)
	}
	defer rows.Close()

	return collectReports(rows)
}

// UpdateBody replaces the report body. There is no versioning, the
// overwrite is destructive.
func (r *ReportRepository) UpdateBody(ctx context.Context, id uuid.UUID, body string) (model.Report, error) {
	query := `UPDATE reports SET body = $2, updated_at = NOW()
			  WHERE id = $1
			  RETURNING ` + reportColumns

	report, err := scanReport(r.db.QueryRowContext(ctx, query, id, body))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Report{}, model.ErrNotFound
		}
		return model.Report{}, fmt.Errorf("failed to update report body: %w", err)
	}

	return report, nil
}

func (r *ReportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM reports WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}

	return nil
}

func collectReports(rows *sql.Rows) ([]model.Report, error) {
	var reports []model.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reports, nil
}
