package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/models"
)

type grantCreditRequest struct {
	ClientID     int64   `json:"client_id"`
	Amount       float64 `json:"amount"`
	InterestRate float64 `json:"interest_rate"`
	TermMonths   int     `json:"term_months"`
}

// GrantCredit handles credit creation. Clients may only request credits for
// themselves; staff may grant on behalf of any client.
func (h *Handler) GrantCredit(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := requester(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	var req grantCreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if req.ClientID == 0 {
		req.ClientID = userID
	}
	if !isStaff(role) && req.ClientID != userID {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "clients may only request credits for themselves"})
		return
	}

	credit, payments, err := h.svc.GrantCredit(req.ClientID, req.Amount, req.InterestRate, req.TermMonths)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"credit":   credit,
		"schedule": payments,
	})
}

// ListCredits returns the requester's credits, or any client's for staff via
// the client_id query parameter
func (h *Handler) ListCredits(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := requester(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	clientID := userID
	if q := r.URL.Query().Get("client_id"); q != "" && isStaff(role) {
		if id, err := strconv.ParseInt(q, 10, 64); err == nil {
			clientID = id
		}
	}

	credits, err := h.svc.ListCreditsForClient(clientID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, credits)
}

// GetCreditBalance returns a credit's balance figures
func (h *Handler) GetCreditBalance(w http.ResponseWriter, r *http.Request) {
	credit, ok := h.creditForRequester(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"credit_id":         credit.ID,
		"status":            credit.Status,
		"total_paid":        credit.TotalPaid,
		"remaining_balance": credit.RemainingBalance,
	})
}

// GetSchedule returns a credit's installments and schedule summary
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	credit, ok := h.creditForRequester(w, r)
	if !ok {
		return
	}
	payments, summary, err := h.svc.GetSchedule(credit.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"schedule": payments,
		"summary":  summary,
	})
}

// GetCertificate returns the balance certificate data for a credit
func (h *Handler) GetCertificate(w http.ResponseWriter, r *http.Request) {
	credit, ok := h.creditForRequester(w, r)
	if !ok {
		return
	}
	cert, err := h.svc.BalanceCertificate(credit.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cert)
}

// GetCreditBurden returns the requester's aggregate credit burden
func (h *Handler) GetCreditBurden(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requester(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}
	burden, err := h.svc.CreditBurden(userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, burden)
}

// GetSuggestedRate returns the reference rate plus margin for new credits
func (h *Handler) GetSuggestedRate(w http.ResponseWriter, r *http.Request) {
	rate, err := h.svc.SuggestedRate()
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"suggested_rate": rate})
}

// ListDelinquentCredits returns active credits with overdue installments,
// for the assistant and manager dashboards
func (h *Handler) ListDelinquentCredits(w http.ResponseWriter, r *http.Request) {
	credits, err := h.svc.ListDelinquentCredits(time.Now())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, credits)
}

// creditForRequester loads the credit in the path and enforces that a client
// requester owns it
func (h *Handler) creditForRequester(w http.ResponseWriter, r *http.Request) (*models.Credit, bool) {
	userID, role, authed := requester(r)
	if !authed {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return nil, false
	}
	creditID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid credit id"})
		return nil, false
	}
	credit, err := h.svc.GetCreditBalance(creditID)
	if err != nil {
		h.writeError(w, err)
		return nil, false
	}
	if !isStaff(role) && credit.ClientID != userID {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "credit belongs to another client"})
		return nil, false
	}
	return credit, true
}
