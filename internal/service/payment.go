package service

import (
	"fmt"
	"time"

	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/models"
	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/utils"
	"github.com/google/uuid"
)

// consecutive overdue installments before a credit is declared defaulted
const defaultAfterOverdue = 3

// SubmitPayment charges one installment. The instrument is validated first;
// on success the installment and the parent credit are settled atomically,
// and a transaction identifier is assigned. Re-submitting an already paid
// installment is rejected without side effects.
func (s *Service) SubmitPayment(paymentID int64, instrument *models.PaymentInstrument) (*models.Payment, *models.Credit, error) {
	if err := utils.ValidateInstrument(instrument); err != nil {
		return nil, nil, err
	}

	method := "card " + utils.MaskCardNumber(instrument.CardNumber)
	transactionID := uuid.NewString()

	// The instrument itself is never stored in clear text: the audit record
	// is AES-encrypted and carries an HMAC integrity tag.
	instrumentEnc, err := utils.Encrypt(instrument.CardNumber+"|"+instrument.ExpiryDate, s.config.EncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encrypt instrument record: %w", err)
	}
	instrumentHMAC := utils.GenerateHMAC(instrument.CardNumber, instrument.ExpiryDate, instrument.CVV, s.config.HMACSecret)

	payment, credit, err := s.repo.ApplyPayment(paymentID, time.Now(), method, transactionID, instrumentEnc, instrumentHMAC)
	if err != nil {
		return nil, nil, err
	}

	s.log.Infof("Payment applied: payment=%d credit=%d amount=%.2f tx=%s remaining=%.2f",
		payment.ID, credit.ID, payment.Amount, transactionID, utils.RoundCents(credit.RemainingBalance))
	if credit.Status == models.CreditStatusCompleted {
		s.log.Infof("Credit completed: id=%d client=%d", credit.ID, credit.ClientID)
	}
	return payment, credit, nil
}

// GetPayment retrieves a single installment
func (s *Service) GetPayment(paymentID int64) (*models.Payment, error) {
	return s.repo.FindPaymentByID(paymentID)
}

// ListPendingPaymentsForClient retrieves a client's unpaid installments with
// overdue derived against the current time
func (s *Service) ListPendingPaymentsForClient(clientID int64) ([]*models.Payment, error) {
	payments, err := s.repo.ListPendingPaymentsByClient(clientID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for _, p := range payments {
		p.Status = models.DeriveStatus(p, now)
	}
	return payments, nil
}

// ListDelinquentCredits retrieves active credits that have at least one
// overdue installment, for the assistant and manager views
func (s *Service) ListDelinquentCredits(now time.Time) ([]*models.Credit, error) {
	credits, err := s.repo.ListActiveCredits()
	if err != nil {
		return nil, err
	}
	var delinquent []*models.Credit
	for _, c := range credits {
		payments, err := s.repo.ListPaymentsByCredit(c.ID)
		if err != nil {
			return nil, err
		}
		if maxOverdueRun(payments, now) > 0 {
			delinquent = append(delinquent, c)
		}
	}
	return delinquent, nil
}

// RunDelinquencyCheck applies the default policy and dispatches payment
// notifications. A credit with three or more consecutive overdue installments
// is transitioned to defaulted; clients with installments due within three
// days, or already overdue, are emailed.
func (s *Service) RunDelinquencyCheck(now time.Time) error {
	credits, err := s.repo.ListActiveCredits()
	if err != nil {
		return err
	}
	for _, c := range credits {
		payments, err := s.repo.ListPaymentsByCredit(c.ID)
		if err != nil {
			return err
		}
		if maxOverdueRun(payments, now) < defaultAfterOverdue {
			continue
		}
		if err := s.repo.MarkCreditDefaulted(c.ID); err != nil {
			s.log.Errorf("Failed to default credit %d: %v", c.ID, err)
			continue
		}
		s.log.Warnf("Credit defaulted: id=%d client=%d overdue_run=%d",
			c.ID, c.ClientID, maxOverdueRun(payments, now))
		if s.mailer != nil {
			if client, err := s.repo.FindUserByID(c.ClientID); err == nil {
				if err := s.mailer.SendDefaultNotice(client.Email, client.FullName, c.ID); err != nil {
					s.log.Errorf("Failed to send default notice for credit %d: %v", c.ID, err)
				}
			}
		}
	}

	if s.mailer == nil {
		return nil
	}
	notices, err := s.repo.ListPaymentNotices(now.AddDate(0, 0, 3))
	if err != nil {
		return err
	}
	for _, n := range notices {
		overdue := n.Payment.DueDate.Before(now)
		err := s.mailer.SendPaymentReminder(n.ClientEmail, n.ClientName, n.Payment.DueDate, n.Payment.Amount, overdue)
		if err != nil {
			s.log.Errorf("Failed to send reminder for payment %d: %v", n.Payment.ID, err)
		}
	}
	return nil
}

// maxOverdueRun returns the longest streak of consecutive overdue
// installments in a schedule, by installment number
func maxOverdueRun(payments []*models.Payment, now time.Time) int {
	longest, run := 0, 0
	for _, p := range payments {
		if models.DeriveStatus(p, now) == models.PaymentStatusOverdue {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return longest
}
