package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ReportStore defines persistence operations for reports.
type ReportStore interface {
	Create(ctx context.Context, report Report) (Report, error)
	GetByID(ctx context.Context, id uuid.UUID) (Report, error)
	GetByOwner(ctx context.Context, ownerID uuid.UUID) ([]Report, error)
	GetAll(ctx context.Context) ([]Report, error)
	UpdateBody(ctx context.Context, id uuid.UUID, body string) (Report, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Report is a free-text, newline-structured record owned by one account.
// The title and the report date are derived from the body on read and
// never stored independently.
type Report struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReportWithAuthor pairs a report with its owning account for
// administrator listings.
type ReportWithAuthor struct {
	Report
	Author Account
}
