// Package handler exposes the checkout HTTP surface. It owns request/response
// JSON shapes and status-code mapping; all business decisions live in the
// checkout service.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cszshop/checkout-api/internal/domain/checkout"
)

// idempotencyHeader carries the client-supplied checkout-attempt token used
// by the duplicate-session guard.
const idempotencyHeader = "X-Idempotency-Key"

// Handler serves the checkout endpoints.
type Handler struct {
	service *checkout.Service
}

// NewHandler constructs a Handler over the checkout service.
func NewHandler(service *checkout.Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the checkout router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/checkout/create-session", h.createSession)
	r.Post("/checkout/bank-transfer", h.bankTransfer)
	r.Post("/checkout/calculate", h.calculate)
	return r
}
