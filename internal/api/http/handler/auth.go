package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/fbellini/daybook-server/internal/apierrors"
	"github.com/fbellini/daybook-server/internal/logger"
	"github.com/fbellini/daybook-server/internal/model"
	"github.com/fbellini/daybook-server/internal/service"
)

// contextManager extracts the authenticated account from the request
// context, where the authenticate middleware put it.
type contextManager interface {
	GetAccountIDFromContext(ctx context.Context) (uuid.UUID, bool)
}

// AuthService describes the session operations the auth handler needs.
type AuthService interface {
	Login(ctx context.Context, handle, secret string) (service.SessionResult, error)
	Refresh(ctx context.Context, refreshToken string) (service.SessionResult, error)
	Logout(ctx context.Context, refreshToken string) error
	Profile(ctx context.Context, id uuid.UUID) (model.Account, error)
}

// Auth serves the authentication endpoints.
type Auth struct {
	authService    AuthService
	contextManager contextManager
	logger         *logger.Logger
}

// NewAuth returns a new auth handler.
func NewAuth(authService AuthService, contextManager contextManager, l *logger.Logger) *Auth {
	return &Auth{
		authService:    authService,
		contextManager: contextManager,
		logger:         l,
	}
}

// LoginRequest carries the credentials for a sign-in attempt.
type LoginRequest struct {
	Handle   string `json:"handle"`
	Password string `json:"password"`
}

// RefreshRequest carries the refresh token being rotated or revoked.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// SessionResponse is returned on successful login or refresh.
type SessionResponse struct {
	Account      AccountResponse `json:"account"`
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
}

// Login exchanges credentials for a token pair.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.Write(w, apierrors.NewErrValidation("malformed request body"))
		return
	}

	session, err := h.authService.Login(r.Context(), req.Handle, req.Password)
	if err != nil {
		h.logger.Debug("login failed", "handle", req.Handle, "error", err)
		apierrors.Write(w, err)
		return
	}

	h.logger.Info("account signed in", "account_id", session.Account.ID)

	writeJSON(w, http.StatusOK, SessionResponse{
		Account:      toAccountResponse(session.Account),
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	})
}

// Refresh rotates a refresh token and returns a fresh pair.
func (h *Auth) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.Write(w, apierrors.NewErrValidation("malformed request body"))
		return
	}

	session, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.logger.Debug("refresh failed", "error", err)
		apierrors.Write(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SessionResponse{
		Account:      toAccountResponse(session.Account),
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	})
}

// Logout revokes the presented refresh token.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.Write(w, apierrors.NewErrValidation("malformed request body"))
		return
	}

	if err := h.authService.Logout(r.Context(), req.RefreshToken); err != nil {
		h.logger.Error("logout failed", "error", err)
		apierrors.Write(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated account's own profile. A blocked account
// fails here, which is how clients learn they were force-signed-out.
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.contextManager.GetAccountIDFromContext(r.Context())
	if !ok {
		apierrors.Write(w, apierrors.NewErrMissingAuthorizationToken())
		return
	}

	account, err := h.authService.Profile(r.Context(), accountID)
	if err != nil {
		apierrors.Write(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(account))
}
