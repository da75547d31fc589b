package models

import "time"

// CreditStatus represents the lifecycle state of a credit
type CreditStatus string

const (
	CreditStatusActive    CreditStatus = "active"
	CreditStatusCompleted CreditStatus = "completed"
	CreditStatusDefaulted CreditStatus = "defaulted"
)

// Credit represents a credit granted to a client
type Credit struct {
	ID               int64        `json:"id"`
	ClientID         int64        `json:"client_id"`
	Amount           float64      `json:"amount"`
	InterestRate     float64      `json:"interest_rate"` // annual percent
	TermMonths       int          `json:"term_months"`
	MonthlyPayment   float64      `json:"monthly_payment"` // fixed at grant time
	Status           CreditStatus `json:"status"`
	TotalPaid        float64      `json:"total_paid"`
	RemainingBalance float64      `json:"remaining_balance"`
	StartDate        time.Time    `json:"start_date"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// ApplyPayment credits a paid installment amount against the balance.
// TotalPaid only grows; RemainingBalance floors at zero, and reaching zero
// completes the credit.
func (c *Credit) ApplyPayment(amount float64) {
	c.TotalPaid += amount
	c.RemainingBalance -= amount
	if c.RemainingBalance <= 0 {
		c.RemainingBalance = 0
		if c.Status == CreditStatusActive {
			c.Status = CreditStatusCompleted
		}
	}
}
