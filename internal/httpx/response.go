package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/VinitPatil01/BookStoreApp/internal/books"
	"github.com/VinitPatil01/BookStoreApp/internal/orders"
	"github.com/VinitPatil01/BookStoreApp/internal/users"
)

// ApiResponse is the uniform envelope for every endpoint.
type ApiResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
	Error     string    `json:"error,omitempty"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, code int, message string, data any) {
	writeJSON(w, code, ApiResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ApiResponse{
		Success:   false,
		Error:     msg,
		Timestamp: time.Now().UTC(),
	})
}

// writeDomainError maps the error taxonomy onto HTTP codes: invalid input is
// 400, missing entities 404, stock rejection 409, anything else 500.
func writeDomainError(w http.ResponseWriter, err error) {
	var stockErr *orders.InsufficientStockError
	switch {
	case errors.Is(err, orders.ErrInvalidOrderRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, orders.ErrOrderNotFound),
		errors.Is(err, orders.ErrBookNotFound),
		errors.Is(err, orders.ErrUserNotFound),
		errors.Is(err, books.ErrNotFound),
		errors.Is(err, users.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &stockErr):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
