package models

import "time"

// PaymentStatus represents the state of a scheduled installment
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusOverdue PaymentStatus = "overdue"
)

// Payment represents one scheduled installment of a credit
type Payment struct {
	ID                int64         `json:"id"`
	CreditID          int64         `json:"credit_id"`
	ClientID          int64         `json:"client_id"` // denormalized for client lookups
	InstallmentNumber int           `json:"installment_number"`
	Amount            float64       `json:"amount"`
	DueDate           time.Time     `json:"due_date"`
	Status            PaymentStatus `json:"status"`
	PaidDate          *time.Time    `json:"paid_date,omitempty"`
	Method            string        `json:"method,omitempty"`
	TransactionID     string        `json:"transaction_id,omitempty"`
	InstrumentEnc     string        `json:"-"` // AES-encrypted instrument audit record
	InstrumentHMAC    string        `json:"-"` // integrity tag over the submitted instrument
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// DeriveStatus returns the effective status of a payment at the given time.
// Only pending and paid are ever persisted; overdue is a view over pending
// installments whose due date has passed.
func DeriveStatus(p *Payment, now time.Time) PaymentStatus {
	if p.Status == PaymentStatusPaid {
		return PaymentStatusPaid
	}
	if p.DueDate.Before(now) {
		return PaymentStatusOverdue
	}
	return PaymentStatusPending
}

// PaymentNotice joins an unpaid installment with the owning client's contact
// details, for reminder and overdue notifications.
type PaymentNotice struct {
	Payment     *Payment
	ClientEmail string
	ClientName  string
}

// PaymentInstrument carries the card data submitted with a payment.
// It is validated, used for the charge, and never stored in clear text.
type PaymentInstrument struct {
	CardNumber string `json:"card_number"`
	ExpiryDate string `json:"expiry_date"` // MM/YY
	CVV        string `json:"cvv"`
	HolderName string `json:"holder_name"`
	Address    string `json:"address"`
}
