package models

import "time"

// CreditBurden summarizes a client's monthly obligations across active credits
type CreditBurden struct {
	ActiveCredits   int     `json:"active_credits"`
	MonthlyPayments float64 `json:"monthly_payments"`
	TotalBalance    float64 `json:"total_balance"`
	BurdenRatio     float64 `json:"burden_ratio"` // MonthlyPayments / TotalBalance
}

// ScheduleSummary aggregates a credit's schedule for dashboard views
type ScheduleSummary struct {
	TotalInstallments   int     `json:"total_installments"`
	PaidInstallments    int     `json:"paid_installments"`
	PendingInstallments int     `json:"pending_installments"`
	OverdueInstallments int     `json:"overdue_installments"`
	PaidAmount          float64 `json:"paid_amount"`
	OutstandingAmount   float64 `json:"outstanding_amount"`
	OverdueAmount       float64 `json:"overdue_amount"`
}

// SummarizeSchedule computes a ScheduleSummary over a credit's installments,
// deriving overdue against the given time.
func SummarizeSchedule(payments []*Payment, now time.Time) *ScheduleSummary {
	summary := &ScheduleSummary{TotalInstallments: len(payments)}
	for _, p := range payments {
		switch DeriveStatus(p, now) {
		case PaymentStatusPaid:
			summary.PaidInstallments++
			summary.PaidAmount += p.Amount
		case PaymentStatusOverdue:
			summary.OverdueInstallments++
			summary.OverdueAmount += p.Amount
			summary.OutstandingAmount += p.Amount
		default:
			summary.PendingInstallments++
			summary.OutstandingAmount += p.Amount
		}
	}
	return summary
}
