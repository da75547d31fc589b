package models

import "time"

// BalanceCertificate is the structured data behind a credit balance
// certificate. Rendering (PDF and friends) happens outside this service.
type BalanceCertificate struct {
	CreditID         int64        `json:"credit_id"`
	ClientID         int64        `json:"client_id"`
	ClientName       string       `json:"client_name"`
	Amount           float64      `json:"amount"`
	InterestRate     float64      `json:"interest_rate"`
	TermMonths       int          `json:"term_months"`
	Status           CreditStatus `json:"status"`
	TotalPaid        float64      `json:"total_paid"`
	RemainingBalance float64      `json:"remaining_balance"`
	StartDate        time.Time    `json:"start_date"`
	IssuedAt         time.Time    `json:"issued_at"`
}
