package handler

import (
	"encoding/json"
	"net/http"

	"github.com/cszshop/checkout-api/internal/domain/checkout"
)

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var dto checkoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.service.CreateCardSession(r.Context(), dto.toDomain(r.Header.Get(idempotencyHeader)))
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, createSessionResponse{
		ClientSecret: res.ClientSecret,
		OrderID:      res.OrderID,
		OrderNumber:  res.OrderNumber,
	})
}

func (h *Handler) bankTransfer(w http.ResponseWriter, r *http.Request) {
	var dto checkoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.service.CreateBankTransferOrder(r.Context(), dto.toDomain(""))
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, bankTransferResponse{
		OrderID:          res.OrderID,
		OrderNumber:      res.OrderNumber,
		Total:            res.Total.IntPart(),
		BankAccount:      res.BankAccount,
		PaymentReference: res.PaymentReference,
	})
}

func (h *Handler) calculate(w http.ResponseWriter, r *http.Request) {
	var dto calculateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.service.CalculateTotals(r.Context(), &checkout.CalculateRequest{
		LineItems:       toDomainItems(dto.LineItems),
		CouponCode:      dto.CouponCode,
		ShippingCountry: dto.ShippingCountry,
	})
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCalculateResponse(res))
}
