package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/fbellini/daybook-server/internal/apierrors"
	"github.com/fbellini/daybook-server/internal/logger"
	"github.com/fbellini/daybook-server/internal/model"
)

// dummyHash costs the same to compare as a real stored hash.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("daybook-dummy"), bcrypt.DefaultCost)

// Auth is the session gate: it resolves a handle to a stored account,
// verifies the secret and refuses blocked accounts.
type Auth struct {
	accountStore model.AccountStore
	tokenService *TokenService
	logger       *logger.Logger
}

func NewAuth(
	accountStore model.AccountStore,
	refreshTokenStore model.RefreshTokenStore,
	tokenManager model.TokenManager,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		accountStore: accountStore,
		tokenService: NewTokenService(tokenManager, refreshTokenStore, logger),
		logger:       logger,
	}
}

// SessionResult is the issued token pair plus the signed-in profile.
type SessionResult struct {
	Account      model.Account
	AccessToken  string
	RefreshToken string
}

// Login authenticates a handle/secret pair. An unknown handle and a
// wrong secret produce the same InvalidCredentials failure so the login
// form cannot be used to probe which handles exist. Valid credentials
// on a blocked account terminate any live sessions and fail with
// AccountBlocked.
func (a *Auth) Login(ctx context.Context, handle, secret string) (SessionResult, error) {
	a.logger.Debug("Auth service: starting login", "handle", handle)

	account, err := a.accountStore.GetByHandle(ctx, handle)
	if errors.Is(err, model.ErrNotFound) {
		// Burn a compare anyway so the unknown-handle path takes as
		// long as a wrong secret.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(secret))
		return SessionResult{}, apierrors.NewErrInvalidCredentials()
	}
	if err != nil {
		return SessionResult{}, fmt.Errorf("failed to get account by handle: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(secret)); err != nil {
		return SessionResult{}, apierrors.NewErrInvalidCredentials()
	}

	// Re-fetch the status record: it may have flipped since the handle
	// lookup, and a blocked account must not come out of the gate with
	// live tokens.
	fresh, err := a.accountStore.GetByID(ctx, account.ID)
	if errors.Is(err, model.ErrNotFound) || (err == nil && !fresh.IsActive()) {
		if revokeErr := a.tokenService.RevokeAllForAccount(ctx, account.ID); revokeErr != nil {
			a.logger.Error("Auth service: failed to revoke sessions of blocked account",
				"handle", handle,
				"error", revokeErr.Error())
		}
		return SessionResult{}, apierrors.NewErrAccountBlocked()
	}
	if err != nil {
		return SessionResult{}, fmt.Errorf("failed to get account by id: %w", err)
	}

	access, refresh, err := a.tokenService.Issue(ctx, fresh.ID)
	if err != nil {
		return SessionResult{}, fmt.Errorf("failed to issue tokens: %w", err)
	}

	a.logger.Info("Auth service: login completed", "handle", handle)

	return SessionResult{
		Account:      fresh,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// Refresh rotates the presented refresh token. The account is
// re-checked so refreshing cannot resurrect a session for a blocked
// account.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (SessionResult, error) {
	accountID, _, err := a.tokenService.manager.ParseRefreshToken(refreshToken)
	if err != nil {
		return SessionResult{}, apierrors.NewErrInvalidAuthorizationToken()
	}

	account, err := a.accountStore.GetByID(ctx, accountID)
	if errors.Is(err, model.ErrNotFound) || (err == nil && !account.IsActive()) {
		if revokeErr := a.tokenService.RevokeAllForAccount(ctx, accountID); revokeErr != nil {
			a.logger.Error("Auth service: failed to revoke sessions of blocked account",
				"account_id", accountID.String(),
				"error", revokeErr.Error())
		}
		return SessionResult{}, apierrors.NewErrAccountBlocked()
	}
	if err != nil {
		return SessionResult{}, fmt.Errorf("failed to get account by id: %w", err)
	}

	access, refresh, err := a.tokenService.Refresh(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, model.ErrTokenRevoked) || errors.Is(err, model.ErrTokenExpired) ||
			errors.Is(err, model.ErrTokenMismatch) || errors.Is(err, model.ErrNotFound) {
			return SessionResult{}, apierrors.NewErrInvalidAuthorizationToken()
		}
		return SessionResult{}, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	return SessionResult{
		Account:      account,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// Logout revokes the presented refresh token (explicit provider
// sign-out).
func (a *Auth) Logout(ctx context.Context, refreshToken string) error {
	if err := a.tokenService.RevokeByToken(ctx, refreshToken); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			// Already signed out; idempotent.
			return nil
		}
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// Profile re-fetches the caller's account record. A session whose
// account vanished or was blocked gets its tokens revoked and an
// AccountBlocked failure, mirroring the gate's login behavior.
func (a *Auth) Profile(ctx context.Context, id uuid.UUID) (model.Account, error) {
	account, err := a.accountStore.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) || (err == nil && !account.IsActive()) {
		if revokeErr := a.tokenService.RevokeAllForAccount(ctx, id); revokeErr != nil {
			a.logger.Error("Auth service: failed to revoke sessions of blocked account",
				"account_id", id.String(),
				"error", revokeErr.Error())
		}
		return model.Account{}, apierrors.NewErrAccountBlocked()
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to get account by id: %w", err)
	}

	return account, nil
}
