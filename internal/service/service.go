package service

import (
	"time"

	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/config"
	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/models"
	"github.com/sirupsen/logrus"
)

// Storage is the persistence surface the service depends on. The Postgres
// repository implements it; tests inject an in-memory fake.
type Storage interface {
	CreateUser(user *models.User) error
	FindUserByEmail(email string) (*models.User, error)
	FindUserByID(id int64) (*models.User, error)

	CreateCreditWithSchedule(credit *models.Credit, payments []*models.Payment) error
	FindCreditByID(id int64) (*models.Credit, error)
	ListCreditsByClient(clientID int64) ([]*models.Credit, error)
	HasActiveCredit(clientID int64) (bool, error)
	ListActiveCredits() ([]*models.Credit, error)
	MarkCreditDefaulted(id int64) error

	FindPaymentByID(id int64) (*models.Payment, error)
	ListPaymentsByCredit(creditID int64) ([]*models.Payment, error)
	ListPendingPaymentsByClient(clientID int64) ([]*models.Payment, error)
	ApplyPayment(paymentID int64, paidAt time.Time, method, transactionID, instrumentEnc, instrumentHMAC string) (*models.Payment, *models.Credit, error)
	ListPaymentNotices(dueBefore time.Time) ([]*models.PaymentNotice, error)
}

// Mailer sends payment notifications to clients
type Mailer interface {
	SendPaymentReminder(to, name string, dueDate time.Time, amount float64, overdue bool) error
	SendDefaultNotice(to, name string, creditID int64) error
}

// RateSource supplies the current reference interest rate
type RateSource interface {
	GetKeyRate() (float64, error)
}

// Service handles business logic
type Service struct {
	repo   Storage
	log    *logrus.Logger
	config *config.Config
	mailer Mailer
	rates  RateSource
}

// NewService initializes a new service
func NewService(repo Storage, log *logrus.Logger, cfg *config.Config, mailer Mailer, rates RateSource) *Service {
	return &Service{repo: repo, log: log, config: cfg, mailer: mailer, rates: rates}
}
