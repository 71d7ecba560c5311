// Package handler exposes the café API over HTTP: the public ordering
// surface, the admin dashboard surface, and the websocket event streams.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/teamates/cafe-api/internal/domain/menu"
	"github.com/teamates/cafe-api/internal/domain/order"
	"github.com/teamates/cafe-api/internal/domain/payment"
	"github.com/teamates/cafe-api/internal/domain/report"
	"github.com/teamates/cafe-api/internal/domain/session"
	"github.com/teamates/cafe-api/internal/events"
	"github.com/teamates/cafe-api/internal/gateway/phonepe"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// FrontendURL is where gateway callbacks redirect the customer's browser.
	FrontendURL string
	// ImageBaseURL is prepended to relative image paths in menu responses.
	// When empty, image paths are returned as stored in the database.
	ImageBaseURL string
}

// Handler serves the HTTP API, delegating business logic to the injected
// domain services.
type Handler struct {
	cfg      Config
	catalog  menu.Repository
	orders   *order.Service
	payments *payment.Service
	sessions *session.Manager
	gateway  *phonepe.Client
	reports  report.Repository
	hub      *events.Hub
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cfg Config,
	catalog menu.Repository,
	orders *order.Service,
	payments *payment.Service,
	sessions *session.Manager,
	gateway *phonepe.Client,
	reports report.Repository,
	hub *events.Hub,
) *Handler {
	return &Handler{
		cfg:      cfg,
		catalog:  catalog,
		orders:   orders,
		payments: payments,
		sessions: sessions,
		gateway:  gateway,
		reports:  reports,
		hub:      hub,
	}
}

// errorResponse is the JSON error envelope for every non-2xx response.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Code: status, Message: msg})
}

// writeDomainError maps a domain error to an HTTP status and writes the error
// envelope. Unrecognized errors become an opaque 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, payment.ErrNotFound),
		errors.Is(err, menu.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrCustomerNameRequired),
		errors.Is(err, order.ErrInvalidOrderType),
		errors.Is(err, order.ErrInvalidPayment),
		errors.Is(err, order.ErrUnknownStatus),
		errors.Is(err, payment.ErrInvalidUTR),
		errors.Is(err, payment.ErrFutureTimestamp),
		errors.Is(err, payment.ErrStaleTimestamp),
		errors.Is(err, payment.ErrUnknownResolution):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, payment.ErrDuplicateUTR),
		errors.Is(err, payment.ErrAlreadyResolved),
		errors.Is(err, payment.ErrNoPendingPayment):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, payment.ErrNotOnlineOrder):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		var (
			illegal     *order.IllegalTransitionError
			notFound    *order.ItemNotFoundError
			unavailable *order.ItemUnavailableError
		)
		switch {
		case errors.As(err, &illegal):
			writeError(w, http.StatusConflict, err.Error())
		case errors.As(err, &notFound), errors.As(err, &unavailable):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
