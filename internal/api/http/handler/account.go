package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/fbellini/daybook-server/internal/apierrors"
	"github.com/fbellini/daybook-server/internal/logger"
	"github.com/fbellini/daybook-server/internal/model"
)

// AccountService describes the account administration operations.
type AccountService interface {
	List(ctx context.Context) ([]model.Account, error)
	Create(ctx context.Context, handle, secret string) (model.Account, error)
	SetStatus(ctx context.Context, id uuid.UUID, status model.AccountStatus) (model.Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
	IsMaster(account model.Account) bool
}

// Account serves the administrator account endpoints.
type Account struct {
	accountService AccountService
	logger         *logger.Logger
}

// NewAccount returns a new account handler.
func NewAccount(accountService AccountService, l *logger.Logger) *Account {
	return &Account{
		accountService: accountService,
		logger:         l,
	}
}

// CreateAccountRequest carries a new account's handle and password.
type CreateAccountRequest struct {
	Handle   string `json:"handle"`
	Password string `json:"password"`
}

// SetStatusRequest carries the target status for an account.
type SetStatusRequest struct {
	Status string `json:"status"`
}

// List returns every account, ordered by handle.
func (h *Account) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accountService.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list accounts", "error", err)
		apierrors.Write(w, err)
		return
	}

	resp := make([]AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		resp = append(resp, toAccountResponse(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create registers a new account.
func (h *Account) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.Write(w, apierrors.NewErrValidation("malformed request body"))
		return
	}

	account, err := h.accountService.Create(r.Context(), req.Handle, req.Password)
	if err != nil {
		h.logger.Debug("failed to create account", "handle", req.Handle, "error", err)
		apierrors.Write(w, err)
		return
	}

	h.logger.Info("account created", "account_id", account.ID, "handle", account.Handle)

	writeJSON(w, http.StatusCreated, toAccountResponse(account))
}

// SetStatus blocks or unblocks an account.
func (h *Account) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		apierrors.Write(w, apierrors.NewErrAccountNotFound())
		return
	}

	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.Write(w, apierrors.NewErrValidation("malformed request body"))
		return
	}

	account, err := h.accountService.SetStatus(r.Context(), id, model.AccountStatus(req.Status))
	if err != nil {
		h.logger.Debug("failed to set account status", "account_id", id, "error", err)
		apierrors.Write(w, err)
		return
	}

	h.logger.Info("account status changed", "account_id", id, "status", account.Status)

	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

// Delete removes an account together with its reports.
func (h *Account) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		apierrors.Write(w, apierrors.NewErrAccountNotFound())
		return
	}

	if err := h.accountService.Delete(r.Context(), id); err != nil {
		h.logger.Debug("failed to delete account", "account_id", id, "error", err)
		apierrors.Write(w, err)
		return
	}

	h.logger.Info("account deleted", "account_id", id)

	w.WriteHeader(http.StatusNoContent)
}
