// Package context carries the authenticated account ID through request
// contexts.
package context

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey int

const accountIDKey ctxKey = iota

// Manager implements model.ContextManager over request contexts.
type Manager struct{}

// NewManager creates a new context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetAccountIDToContext returns a child context carrying the account ID.
func (m *Manager) SetAccountIDToContext(ctx context.Context, accountID uuid.UUID) context.Context {
	return context.WithValue(ctx, accountIDKey, accountID)
}

// GetAccountIDFromContext retrieves the account ID set by the
// authentication middleware, reporting whether one was present.
func (m *Manager) GetAccountIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(accountIDKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}
