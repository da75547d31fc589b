package utils

import (
	"math"

	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/apperrors"
)

// MonthlyPayment computes the fixed annuity payment that amortizes principal
// over termMonths at the given nominal annual rate (percent). A zero rate
// degrades to straight-line principal/term.
//
// The result is returned at full float64 precision; rounding to cents is a
// display concern and must not feed back into balance arithmetic.
func MonthlyPayment(principal, annualRatePercent float64, termMonths int) (float64, error) {
	if principal <= 0 {
		return 0, apperrors.NewValidation("amount", "must be positive, got %.2f", principal)
	}
	if annualRatePercent < 0 {
		return 0, apperrors.NewValidation("interest_rate", "must not be negative, got %.2f", annualRatePercent)
	}
	if termMonths <= 0 {
		return 0, apperrors.NewValidation("term_months", "must be a positive number of months, got %d", termMonths)
	}

	monthlyRate := annualRatePercent / 100 / 12
	if monthlyRate == 0 {
		return principal / float64(termMonths), nil
	}

	powFactor := math.Pow(1+monthlyRate, float64(termMonths))
	payment := principal * (monthlyRate * powFactor) / (powFactor - 1)
	if math.IsNaN(payment) || math.IsInf(payment, 0) || payment <= 0 {
		return 0, apperrors.NewValidation("term_months", "amortization is undefined for the given inputs")
	}
	return payment, nil
}

// TotalRepayable returns the exact sum of all scheduled installments for a
// credit with the given payment and term.
func TotalRepayable(monthlyPayment float64, termMonths int) float64 {
	return monthlyPayment * float64(termMonths)
}

// RoundCents rounds a monetary amount to two decimal places, for presentation
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
