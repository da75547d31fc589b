package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/config"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendPaymentReminder notifies a client about an upcoming or overdue
// installment
func (s *Sender) SendPaymentReminder(to, name string, dueDate time.Time, amount float64, overdue bool) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	if overdue {
		e.Subject = "El Granito: Overdue Installment Notice"
	} else {
		e.Subject = "El Granito: Upcoming Installment Reminder"
	}

	body := fmt.Sprintf("Dear %s,\n\n", name)
	if overdue {
		body += fmt.Sprintf(
			"Your installment of %.2f was due on %s and has not been received.\n"+
				"Please submit the payment as soon as possible to avoid default proceedings.\n",
			amount, dueDate.Format("2006-01-02"),
		)
	} else {
		body += fmt.Sprintf(
			"This is a reminder that your installment of %.2f is due on %s.\n",
			amount, dueDate.Format("2006-01-02"),
		)
	}
	body += "\nBest regards,\nEl Granito"
	e.Text = []byte(body)

	return s.send(e)
}

// SendDefaultNotice informs a client that a credit has been declared in
// default
func (s *Sender) SendDefaultNotice(to, name string, creditID int64) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "El Granito: Credit Default Notice"

	e.Text = []byte(fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your credit %d has accumulated three or more consecutive overdue installments\n"+
			"and has been declared in default. Please contact your assistant to arrange a\n"+
			"repayment plan.\n\nBest regards,\nEl Granito",
		name, creditID,
	))

	return s.send(e)
}

func (s *Sender) send(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %v: %v", e.To, err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	s.logger.Infof("Email sent to %v: %s", e.To, e.Subject)
	return nil
}
