package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/fbellini/daybook-server/internal/apierrors"
	"github.com/fbellini/daybook-server/internal/logger"
	"github.com/fbellini/daybook-server/internal/model"
)

// Account manages the account directory on behalf of the master account.
type Account struct {
	accountStore model.AccountStore
	tokenService *TokenService
	masterEmail  string
	emailDomain  string
	logger       *logger.Logger
}

func NewAccount(
	accountStore model.AccountStore,
	refreshTokenStore model.RefreshTokenStore,
	tokenManager model.TokenManager,
	masterEmail string,
	emailDomain string,
	logger *logger.Logger,
) *Account {
	return &Account{
		accountStore: accountStore,
		tokenService: NewTokenService(tokenManager, refreshTokenStore, logger),
		masterEmail:  masterEmail,
		emailDomain:  emailDomain,
		logger:       logger,
	}
}

// IsMaster reports whether the account is the single administrator,
// identified by its fixed contact address.
func (s *Account) IsMaster(account model.Account) bool {
	return account.Email == s.masterEmail
}

// List returns the directory ordered by handle.
func (s *Account) List(ctx context.Context) ([]model.Account, error) {
	accounts, err := s.accountStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// Create registers a new account with an active status and a contact
// address derived from the handle. A taken handle fails with
// HandleTaken.
func (s *Account) Create(ctx context.Context, handle, secret string) (model.Account, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" || strings.TrimSpace(secret) == "" {
		return model.Account{}, apierrors.NewErrValidation("username and password are required")
	}

	existing, err := s.accountStore.GetByHandle(ctx, handle)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return model.Account{}, fmt.Errorf("failed to get account by handle: %w", err)
	}
	if existing.ID != uuid.Nil {
		return model.Account{}, apierrors.NewErrHandleTaken(handle)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to hash secret: %w", err)
	}

	now := time.Now()
	account := model.Account{
		ID:           uuid.New(),
		Handle:       handle,
		Email:        s.deriveEmail(handle),
		Status:       model.AccountStatusActive,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	saved, err := s.accountStore.Create(ctx, account)
	if errors.Is(err, model.ErrAlreadyExists) {
		// Lost the race against a concurrent create with the same handle.
		return model.Account{}, apierrors.NewErrHandleTaken(handle)
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Info("Account service: account created", "handle", handle)

	return saved, nil
}

// SetStatus flips an account between active and blocked. Blocking also
// terminates the account's live sessions. The master account is exempt.
func (s *Account) SetStatus(ctx context.Context, id uuid.UUID, status model.AccountStatus) (model.Account, error) {
	if status != model.AccountStatusActive && status != model.AccountStatusBlocked {
		return model.Account{}, apierrors.NewErrValidation(fmt.Sprintf("unknown status %q", status))
	}

	account, err := s.accountStore.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.Account{}, apierrors.NewErrAccountNotFound()
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to get account by id: %w", err)
	}

	if s.IsMaster(account) {
		return model.Account{}, apierrors.NewErrMasterImmutable()
	}

	if err := s.accountStore.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Account{}, apierrors.NewErrAccountNotFound()
		}
		return model.Account{}, fmt.Errorf("failed to update account status: %w", err)
	}

	if status == model.AccountStatusBlocked {
		if err := s.tokenService.RevokeAllForAccount(ctx, id); err != nil {
			s.logger.Error("Account service: failed to revoke sessions of blocked account",
				"account_id", id.String(),
				"error", err.Error())
		}
	}

	account.Status = status
	return account, nil
}

// Delete removes an account and, through the reports cascade, every report
// it owns, in one atomic statement. The master account is exempt.
func (s *Account) Delete(ctx context.Context, id uuid.UUID) error {
	account, err := s.accountStore.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return apierrors.NewErrAccountNotFound()
	}
	if err != nil {
		return fmt.Errorf("failed to get account by id: %w", err)
	}

	if s.IsMaster(account) {
		return apierrors.NewErrMasterImmutable()
	}

	if err := s.accountStore.Delete(ctx, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return apierrors.NewErrAccountNotFound()
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}

	s.logger.Info("Account service: account deleted", "account_id", id.String())

	return nil
}

// EnsureMaster creates the master account when it does not exist yet.
// Called once at server startup.
func (s *Account) EnsureMaster(ctx context.Context, handle, secret string) error {
	_, err := s.accountStore.GetByEmail(ctx, s.masterEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("failed to get master account: %w", err)
	}

	if strings.TrimSpace(secret) == "" {
		return fmt.Errorf("master account is missing and no master password is configured")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash master secret: %w", err)
	}

	now := time.Now()
	_, err = s.accountStore.Create(ctx, model.Account{
		ID:           uuid.New(),
		Handle:       handle,
		Email:        s.masterEmail,
		Status:       model.AccountStatusActive,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, model.ErrAlreadyExists) {
		// Another replica created it first.
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create master account: %w", err)
	}

	s.logger.Info("Account service: master account created", "handle", handle)

	return nil
}

func (s *Account) deriveEmail(handle string) string {
	local := strings.ToLower(strings.ReplaceAll(handle, " ", ""))
	return local + "@" + s.emailDomain
}
