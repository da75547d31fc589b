package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/models"
)

// ListPendingPayments returns the requester's unpaid installments
func (h *Handler) ListPendingPayments(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requester(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}
	payments, err := h.svc.ListPendingPaymentsForClient(userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

// PayInstallment charges one installment with the submitted card data
func (h *Handler) PayInstallment(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := requester(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	paymentID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payment id"})
		return
	}

	var instrument models.PaymentInstrument
	if err := json.NewDecoder(r.Body).Decode(&instrument); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	existing, err := h.svc.GetPayment(paymentID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !isStaff(role) && existing.ClientID != userID {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "payment belongs to another client"})
		return
	}

	payment, credit, err := h.svc.SubmitPayment(paymentID, &instrument)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"payment": payment,
		"credit":  credit,
	})
}
