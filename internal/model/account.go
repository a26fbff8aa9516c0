package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AccountStatus enumerates account states.
type AccountStatus string

const (
	// AccountStatusActive marks an account allowed to sign in.
	AccountStatusActive AccountStatus = "active"
	// AccountStatusBlocked marks an account rejected at the session gate.
	AccountStatusBlocked AccountStatus = "blocked"
)

// AccountStore defines persistence operations for accounts.
type AccountStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (Account, error)
	GetByHandle(ctx context.Context, handle string) (Account, error)
	GetByEmail(ctx context.Context, email string) (Account, error)
	List(ctx context.Context) ([]Account, error)
	Create(ctx context.Context, account Account) (Account, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status AccountStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Account represents a registered user or the administrator.
type Account struct {
	ID           uuid.UUID
	Handle       string
	Email        string
	Status       AccountStatus
	PasswordHash []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActive reports whether the account may hold a session.
func (a Account) IsActive() bool {
	return a.Status == AccountStatusActive
}
