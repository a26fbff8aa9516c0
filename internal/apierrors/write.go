package apierrors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fbellini/daybook-server/internal/model"
)

type errorResponse struct {
	Error string `json:"error"`
}

// Write maps err to its HTTP status and writes a single human-readable
// message. Anything that is not an APIError or a known sentinel is a
// backend failure and stays opaque to the client.
func Write(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.Status
		message = apiErr.Message
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
		message = "not found"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message})
}
