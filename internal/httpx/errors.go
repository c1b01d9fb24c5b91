package httpx

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/wrx861/tyres/internal/carts"
	"github.com/wrx861/tyres/internal/fourtochki"
	"github.com/wrx861/tyres/internal/orders"
	"github.com/wrx861/tyres/internal/settings"
	"github.com/wrx861/tyres/internal/users"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errBody struct {
	Error string `json:"error"`
}

// writeError maps domain errors onto HTTP statuses. Expected 4xx conditions
// go out with their message; anything unrecognized is a 500 with a generic
// body and the detail only in the server log.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, carts.ErrInsufficientStock),
		errors.Is(err, carts.ErrInvalidQuantity),
		errors.Is(err, orders.ErrEmptyOrder),
		errors.Is(err, orders.ErrInvalidQuantity),
		errors.Is(err, orders.ErrInvalidAddress),
		errors.Is(err, orders.ErrInvalidTransition),
		errors.Is(err, orders.ErrInvalidState),
		errors.Is(err, settings.ErrMarkupOutOfRange):
		writeJSON(w, http.StatusBadRequest, errBody{err.Error()})
	case errors.Is(err, carts.ErrBlocked):
		writeJSON(w, http.StatusForbidden, errBody{"доступ заблокирован, обратитесь к администратору"})
	case errors.Is(err, carts.ErrNotFound),
		errors.Is(err, orders.ErrNotFound),
		errors.Is(err, users.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errBody{err.Error()})
	case errors.Is(err, fourtochki.ErrUnavailable):
		log.Printf("catalog unavailable: %v", err)
		writeJSON(w, http.StatusBadGateway, errBody{"catalog provider unavailable"})
	default:
		var serr *fourtochki.SupplierError
		if errors.As(err, &serr) {
			writeJSON(w, http.StatusBadRequest, errBody{serr.Message})
			return
		}
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errBody{"internal error"})
	}
}

func forbidden(w http.ResponseWriter) {
	writeJSON(w, http.StatusForbidden, errBody{"access denied"})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errBody{msg})
}
