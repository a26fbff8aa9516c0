package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fbellini/daybook-server/internal/api/http/handler"
	"github.com/fbellini/daybook-server/internal/api/http/middleware"
)

// New assembles the HTTP routing table. Login and refresh are public;
// everything else sits behind the bearer-token gate, and the admin
// subtree additionally requires the master account.
func New(
	authHandler *handler.Auth,
	accountHandler *handler.Account,
	reportHandler *handler.Report,
	logging *middleware.Logging,
	authenticate *middleware.Authenticate,
	requireMaster *middleware.RequireMaster,
) http.Handler {
	r := mux.NewRouter()
	r.Use(logging.Handle)

	r.HandleFunc("/api/auth/login", authHandler.Login).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/refresh", authHandler.Refresh).Methods(http.MethodPost)

	authed := r.PathPrefix("/api").Subrouter()
	authed.Use(authenticate.Handle)

	authed.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)
	authed.HandleFunc("/me", authHandler.Me).Methods(http.MethodGet)

	authed.HandleFunc("/reports", reportHandler.List).Methods(http.MethodGet)
	authed.HandleFunc("/reports", reportHandler.Create).Methods(http.MethodPost)
	authed.HandleFunc("/reports/{id}", reportHandler.Update).Methods(http.MethodPut)
	authed.HandleFunc("/reports/{id}", reportHandler.Delete).Methods(http.MethodDelete)
	authed.HandleFunc("/reports/{id}/export", reportHandler.Export).Methods(http.MethodGet)

	admin := authed.PathPrefix("/admin").Subrouter()
	admin.Use(requireMaster.Handle)

	admin.HandleFunc("/accounts", accountHandler.List).Methods(http.MethodGet)
	admin.HandleFunc("/accounts", accountHandler.Create).Methods(http.MethodPost)
	admin.HandleFunc("/accounts/{id}/status", accountHandler.SetStatus).Methods(http.MethodPut)
	admin.HandleFunc("/accounts/{id}", accountHandler.Delete).Methods(http.MethodDelete)
	admin.HandleFunc("/reports/search", reportHandler.Search).Methods(http.MethodPost)

	return r
}
