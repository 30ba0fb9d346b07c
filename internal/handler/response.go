package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/cszshop/checkout-api/internal/domain/checkout"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps checkout errors to status codes. Validation failures
// and catalog misses surface their specific message as 400; everything else
// is a downstream failure logged with full context and reported as a generic
// 500 so no internals leak to the client.
func writeDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	var (
		vErr   *checkout.ValidationError
		pnfErr *checkout.ProductNotFoundError
	)
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Message)
	case errors.As(err, &pnfErr):
		writeError(w, http.StatusBadRequest, pnfErr.Error())
	default:
		zctx.From(ctx).Error("checkout failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
