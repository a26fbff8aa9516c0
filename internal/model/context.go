package model

import (
	"context"

	"github.com/google/uuid"
)

// ContextManager carries the authenticated account ID through request
// contexts.
type ContextManager interface {
	SetAccountIDToContext(ctx context.Context, accountID uuid.UUID) context.Context
	GetAccountIDFromContext(ctx context.Context) (uuid.UUID, bool)
}
