// Package errhttp maps inventory domain errors to HTTP responses.
// Every domain error matches one kind via errors.Is; add new kinds to Classify.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/ghuser/brigade/pkg/httpx"
	"github.com/ghuser/brigade/services/inventory/domain"
)

// ErrorResponse is the body of every error response. Available and Requested
// are set for insufficient stock only.
type ErrorResponse struct {
	Error     string `json:"error" example:"insufficient stock for item 7: requested 5, 2 available"`
	Kind      string `json:"kind" example:"insufficient_stock"`
	Available *int   `json:"available,omitempty" example:"2"`
	Requested *int   `json:"requested,omitempty" example:"5"`
} // @name ErrorResponse

// WriteError writes err with full detail.
func WriteError(w http.ResponseWriter, err error) {
	Write(w, err, false)
}

// Write maps err to a status and writes an ErrorResponse. In production, 5xx
// messages are replaced by the status text.
func Write(w http.ResponseWriter, err error, isProduction bool) {
	status, kind := Classify(err)
	resp := ErrorResponse{Error: httpx.SafeError(err, status, isProduction), Kind: kind}

	var ise *domain.InsufficientStockError
	if errors.As(err, &ise) {
		resp.Available = &ise.Available
		resp.Requested = &ise.Requested
	}
	httpx.JSON(w, status, resp)
}

// Classify returns the HTTP status and the machine-readable kind of err.
func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusUnprocessableEntity, "invalid_input"
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict, "invalid_state"
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict, "insufficient_stock"
	case errors.Is(err, domain.ErrStorageFailure):
		return http.StatusServiceUnavailable, "storage_failure"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
