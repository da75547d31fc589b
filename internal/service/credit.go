package service

import (
	"time"

	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/apperrors"
	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/models"
	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/utils"
)

// GrantCredit creates a credit for a client together with its complete
// installment schedule. The monthly payment is fixed here and never
// recomputed afterwards.
func (s *Service) GrantCredit(clientID int64, amount, interestRate float64, termMonths int) (*models.Credit, []*models.Payment, error) {
	client, err := s.repo.FindUserByID(clientID)
	if err != nil {
		return nil, nil, err
	}
	if client.Role != models.RoleClient {
		return nil, nil, apperrors.NewValidation("client_id", "user %d is not a client", clientID)
	}

	monthlyPayment, err := utils.MonthlyPayment(amount, interestRate, termMonths)
	if err != nil {
		return nil, nil, err
	}

	active, err := s.repo.HasActiveCredit(clientID)
	if err != nil {
		return nil, nil, err
	}
	if active {
		return nil, nil, apperrors.NewValidation("client_id", "client %d already holds an active credit", clientID)
	}

	credit := &models.Credit{
		ClientID:         clientID,
		Amount:           amount,
		InterestRate:     interestRate,
		TermMonths:       termMonths,
		MonthlyPayment:   monthlyPayment,
		Status:           models.CreditStatusActive,
		TotalPaid:        0,
		RemainingBalance: amount,
		StartDate:        time.Now(),
	}
	payments := buildSchedule(credit)

	if err := s.repo.CreateCreditWithSchedule(credit, payments); err != nil {
		return nil, nil, err
	}

	s.log.Infof("Credit granted: id=%d client=%d amount=%.2f term=%d payment=%.2f",
		credit.ID, clientID, amount, termMonths, utils.RoundCents(monthlyPayment))
	return credit, payments, nil
}

// buildSchedule produces the credit's installments: one per month, due dates
// advancing by calendar months from the start date. The last installment
// absorbs the floating-point residual so the schedule sums exactly to the
// total repayable.
func buildSchedule(credit *models.Credit) []*models.Payment {
	payments := make([]*models.Payment, 0, credit.TermMonths)
	total := utils.TotalRepayable(credit.MonthlyPayment, credit.TermMonths)
	for i := 1; i <= credit.TermMonths; i++ {
		amount := credit.MonthlyPayment
		if i == credit.TermMonths {
			amount = total - credit.MonthlyPayment*float64(credit.TermMonths-1)
		}
		payments = append(payments, &models.Payment{
			ClientID:          credit.ClientID,
			InstallmentNumber: i,
			Amount:            amount,
			DueDate:           credit.StartDate.AddDate(0, i, 0),
			Status:            models.PaymentStatusPending,
		})
	}
	return payments
}

// ListCreditsForClient retrieves all credits owned by a client
func (s *Service) ListCreditsForClient(clientID int64) ([]*models.Credit, error) {
	return s.repo.ListCreditsByClient(clientID)
}

// GetCreditBalance retrieves a credit's balance figures
func (s *Service) GetCreditBalance(creditID int64) (*models.Credit, error) {
	return s.repo.FindCreditByID(creditID)
}

// GetSchedule retrieves a credit's installments with statuses derived
// against the current time, along with an aggregate summary.
func (s *Service) GetSchedule(creditID int64) ([]*models.Payment, *models.ScheduleSummary, error) {
	if _, err := s.repo.FindCreditByID(creditID); err != nil {
		return nil, nil, err
	}
	payments, err := s.repo.ListPaymentsByCredit(creditID)
	if err != nil {
		return nil, nil, err
	}
	now := time.Now()
	for _, p := range payments {
		p.Status = models.DeriveStatus(p, now)
	}
	return payments, models.SummarizeSchedule(payments, now), nil
}

// BalanceCertificate assembles the certificate data for a credit. Rendering
// is left to the consuming layer.
func (s *Service) BalanceCertificate(creditID int64) (*models.BalanceCertificate, error) {
	credit, err := s.repo.FindCreditByID(creditID)
	if err != nil {
		return nil, err
	}
	client, err := s.repo.FindUserByID(credit.ClientID)
	if err != nil {
		return nil, err
	}
	return &models.BalanceCertificate{
		CreditID:         credit.ID,
		ClientID:         client.ID,
		ClientName:       client.FullName,
		Amount:           credit.Amount,
		InterestRate:     credit.InterestRate,
		TermMonths:       credit.TermMonths,
		Status:           credit.Status,
		TotalPaid:        credit.TotalPaid,
		RemainingBalance: credit.RemainingBalance,
		StartDate:        credit.StartDate,
		IssuedAt:         time.Now(),
	}, nil
}

// CreditBurden summarizes a client's monthly obligations across active credits
func (s *Service) CreditBurden(clientID int64) (*models.CreditBurden, error) {
	credits, err := s.repo.ListCreditsByClient(clientID)
	if err != nil {
		return nil, err
	}
	burden := &models.CreditBurden{}
	for _, c := range credits {
		if c.Status != models.CreditStatusActive {
			continue
		}
		burden.ActiveCredits++
		burden.MonthlyPayments += c.MonthlyPayment
		burden.TotalBalance += c.RemainingBalance
	}
	if burden.TotalBalance > 0 {
		burden.BurdenRatio = burden.MonthlyPayments / burden.TotalBalance
	}
	return burden, nil
}

// SuggestedRate returns the current reference rate plus the bank margin, a
// starting point for pricing new credits
func (s *Service) SuggestedRate() (float64, error) {
	keyRate, err := s.rates.GetKeyRate()
	if err != nil {
		return 0, &apperrors.UpstreamError{Op: "key rate", Err: err}
	}
	return keyRate + s.config.RateMargin, nil
}
