package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/fbellini/daybook-server/internal/apierrors"
	"github.com/fbellini/daybook-server/internal/logger"
	"github.com/fbellini/daybook-server/internal/model"
)

// AccountResolver re-fetches the caller's account record; the session
// gate's Profile does this while also expelling blocked sessions.
type AccountResolver interface {
	Profile(ctx context.Context, id uuid.UUID) (model.Account, error)
}

// MasterChecker distinguishes the master account.
type MasterChecker interface {
	IsMaster(account model.Account) bool
}

// RequireMaster admits only the master account. It runs after
// Authenticate, so the account ID is already in context.
type RequireMaster struct {
	resolver       AccountResolver
	checker        MasterChecker
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewRequireMaster creates a new RequireMaster middleware instance.
func NewRequireMaster(resolver AccountResolver, checker MasterChecker, contextManager model.ContextManager, logger *logger.Logger) *RequireMaster {
	return &RequireMaster{
		resolver:       resolver,
		checker:        checker,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Handle rejects callers other than the master account with 403.
func (m *RequireMaster) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := m.contextManager.GetAccountIDFromContext(r.Context())
		if !ok {
			apierrors.Write(w, apierrors.NewErrMissingAuthorizationToken())
			return
		}

		account, err := m.resolver.Profile(r.Context(), accountID)
		if err != nil {
			apierrors.Write(w, err)
			return
		}

		if !m.checker.IsMaster(account) {
			apierrors.Write(w, apierrors.NewErrForbidden())
			return
		}

		next.ServeHTTP(w, r)
	})
}
