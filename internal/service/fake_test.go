package service_test

import (
	"sort"
	"sync"
	"time"

	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/apperrors"
	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/models"
)

// fakeStorage is an in-memory stand-in for the Postgres repository
type fakeStorage struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]*models.User
	credits  map[int64]*models.Credit
	payments map[int64]*models.Payment
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		users:    make(map[int64]*models.User),
		credits:  make(map[int64]*models.Credit),
		payments: make(map[int64]*models.Payment),
	}
}

func (f *fakeStorage) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStorage) CreateUser(user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = f.id()
	user.CreatedAt = time.Now()
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeStorage) FindUserByEmail(email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, &apperrors.NotFoundError{Entity: "user"}
}

func (f *fakeStorage) FindUserByID(id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, &apperrors.NotFoundError{Entity: "user", ID: id}
	}
	copied := *u
	return &copied, nil
}

func (f *fakeStorage) CreateCreditWithSchedule(credit *models.Credit, payments []*models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	credit.ID = f.id()
	stored := *credit
	f.credits[credit.ID] = &stored
	for _, p := range payments {
		p.ID = f.id()
		p.CreditID = credit.ID
		storedPayment := *p
		f.payments[p.ID] = &storedPayment
	}
	return nil
}

func (f *fakeStorage) FindCreditByID(id int64) (*models.Credit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.credits[id]
	if !ok {
		return nil, &apperrors.NotFoundError{Entity: "credit", ID: id}
	}
	copied := *c
	return &copied, nil
}

func (f *fakeStorage) ListCreditsByClient(clientID int64) ([]*models.Credit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var credits []*models.Credit
	for _, c := range f.credits {
		if c.ClientID == clientID {
			copied := *c
			credits = append(credits, &copied)
		}
	}
	return credits, nil
}

func (f *fakeStorage) HasActiveCredit(clientID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.credits {
		if c.ClientID == clientID && c.Status == models.CreditStatusActive {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStorage) ListActiveCredits() ([]*models.Credit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var credits []*models.Credit
	for _, c := range f.credits {
		if c.Status == models.CreditStatusActive {
			copied := *c
			credits = append(credits, &copied)
		}
	}
	return credits, nil
}

func (f *fakeStorage) MarkCreditDefaulted(id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.credits[id]
	if !ok {
		return &apperrors.NotFoundError{Entity: "credit", ID: id}
	}
	if c.Status != models.CreditStatusActive {
		return &apperrors.ConflictError{Message: "credit is not active"}
	}
	c.Status = models.CreditStatusDefaulted
	return nil
}

func (f *fakeStorage) FindPaymentByID(id int64) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok {
		return nil, &apperrors.NotFoundError{Entity: "payment", ID: id}
	}
	copied := *p
	return &copied, nil
}

func (f *fakeStorage) ListPaymentsByCredit(creditID int64) ([]*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var payments []*models.Payment
	for _, p := range f.payments {
		if p.CreditID == creditID {
			copied := *p
			payments = append(payments, &copied)
		}
	}
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].InstallmentNumber < payments[j].InstallmentNumber
	})
	return payments, nil
}

func (f *fakeStorage) ListPendingPaymentsByClient(clientID int64) ([]*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var payments []*models.Payment
	for _, p := range f.payments {
		if p.ClientID == clientID && p.Status != models.PaymentStatusPaid {
			copied := *p
			payments = append(payments, &copied)
		}
	}
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].DueDate.Before(payments[j].DueDate)
	})
	return payments, nil
}

func (f *fakeStorage) ApplyPayment(paymentID int64, paidAt time.Time, method, transactionID, instrumentEnc, instrumentHMAC string) (*models.Payment, *models.Credit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[paymentID]
	if !ok {
		return nil, nil, &apperrors.NotFoundError{Entity: "payment", ID: paymentID}
	}
	if p.Status == models.PaymentStatusPaid {
		return nil, nil, &apperrors.ConflictError{Message: "payment is already paid"}
	}
	c, ok := f.credits[p.CreditID]
	if !ok {
		return nil, nil, &apperrors.NotFoundError{Entity: "credit", ID: p.CreditID}
	}

	p.Status = models.PaymentStatusPaid
	p.PaidDate = &paidAt
	p.Method = method
	p.TransactionID = transactionID
	p.InstrumentEnc = instrumentEnc
	p.InstrumentHMAC = instrumentHMAC
	c.ApplyPayment(p.Amount)

	paymentCopy := *p
	creditCopy := *c
	return &paymentCopy, &creditCopy, nil
}

func (f *fakeStorage) ListPaymentNotices(dueBefore time.Time) ([]*models.PaymentNotice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var notices []*models.PaymentNotice
	for _, p := range f.payments {
		if p.Status == models.PaymentStatusPaid || p.DueDate.After(dueBefore) {
			continue
		}
		copied := *p
		notice := &models.PaymentNotice{Payment: &copied}
		if u, ok := f.users[p.ClientID]; ok {
			notice.ClientEmail = u.Email
			notice.ClientName = u.FullName
		}
		notices = append(notices, notice)
	}
	sort.Slice(notices, func(i, j int) bool {
		return notices[i].Payment.DueDate.Before(notices[j].Payment.DueDate)
	})
	return notices, nil
}

// fakeMailer records notifications instead of sending them
type fakeMailer struct {
	mu             sync.Mutex
	reminders      []string
	defaultNotices []int64
}

func (m *fakeMailer) SendPaymentReminder(to, name string, dueDate time.Time, amount float64, overdue bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reminders = append(m.reminders, to)
	return nil
}

func (m *fakeMailer) SendDefaultNotice(to, name string, creditID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultNotices = append(m.defaultNotices, creditID)
	return nil
}

// fakeRates serves a fixed key rate
type fakeRates struct {
	rate float64
	err  error
}

func (r *fakeRates) GetKeyRate() (float64, error) {
	return r.rate, r.err
}
