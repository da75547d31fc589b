package service_test

import (
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/apperrors"
	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/config"
	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/models"
	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/service"
	"github.com/sirupsen/logrus"
)

func newTestService(t *testing.T) (*service.Service, *fakeStorage, *fakeMailer) {
	t.Helper()
	store := newFakeStorage()
	mailer := &fakeMailer{}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	cfg := &config.Config{
		JWTSecret:     "test-secret",
		RateMargin:    5.0,
		HMACSecret:    "test-hmac-secret",
		EncryptionKey: []byte(strings.Repeat("k", 32)),
	}
	svc := service.NewService(store, logger, cfg, mailer, &fakeRates{rate: 16.0})
	return svc, store, mailer
}

func newTestClient(t *testing.T, store *fakeStorage) *models.User {
	t.Helper()
	user := &models.User{
		Email:        "client@example.com",
		FullName:     "Maria Lopez",
		PasswordHash: "x",
		Role:         models.RoleClient,
	}
	if err := store.CreateUser(user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func TestGrantCredit_ScheduleProperties(t *testing.T) {
	svc, store, _ := newTestService(t)
	client := newTestClient(t, store)

	credit, payments, err := svc.GrantCredit(client.ID, 50000, 12, 24)
	if err != nil {
		t.Fatalf("grant credit: %v", err)
	}

	if math.Abs(credit.MonthlyPayment-2347.22) > 0.01 {
		t.Errorf("monthly payment = %.4f, want ~2347.22", credit.MonthlyPayment)
	}
	if credit.Status != models.CreditStatusActive {
		t.Errorf("status = %s, want active", credit.Status)
	}
	if credit.TotalPaid != 0 || credit.RemainingBalance != credit.Amount {
		t.Errorf("fresh credit has totalPaid=%.2f remaining=%.2f", credit.TotalPaid, credit.RemainingBalance)
	}

	if len(payments) != 24 {
		t.Fatalf("schedule has %d installments, want 24", len(payments))
	}
	for i, p := range payments {
		if p.InstallmentNumber != i+1 {
			t.Errorf("installment[%d] number = %d, want %d", i, p.InstallmentNumber, i+1)
		}
		if p.Status != models.PaymentStatusPending {
			t.Errorf("installment %d status = %s, want pending", p.InstallmentNumber, p.Status)
		}
		want := credit.StartDate.AddDate(0, i+1, 0)
		if !p.DueDate.Equal(want) {
			t.Errorf("installment %d due %v, want %v", p.InstallmentNumber, p.DueDate, want)
		}
		if i > 0 && !payments[i-1].DueDate.Before(p.DueDate) {
			t.Errorf("due dates not strictly increasing at installment %d", p.InstallmentNumber)
		}
	}

	var total float64
	for _, p := range payments {
		total += p.Amount
	}
	if math.Abs(total-credit.MonthlyPayment*24) > 1e-6 {
		t.Errorf("schedule total = %.6f, want %.6f", total, credit.MonthlyPayment*24)
	}
}

func TestGrantCredit_ZeroRateStraightLine(t *testing.T) {
	svc, store, _ := newTestService(t)
	client := newTestClient(t, store)

	credit, payments, err := svc.GrantCredit(client.ID, 9000, 0, 12)
	if err != nil {
		t.Fatalf("grant credit: %v", err)
	}
	if math.Abs(credit.MonthlyPayment-750) > 1e-9 {
		t.Errorf("monthly payment = %.6f, want 750", credit.MonthlyPayment)
	}

	// The last installment absorbs any floating-point residual so the
	// schedule sums exactly to the principal.
	var total float64
	for _, p := range payments {
		total += p.Amount
	}
	if math.Abs(total-9000) > 1e-9 {
		t.Errorf("schedule total = %.10f, want 9000", total)
	}
}

func TestGrantCredit_PresentValue(t *testing.T) {
	svc, store, _ := newTestService(t)
	client := newTestClient(t, store)

	principal := 120000.0
	rate := 18.0
	term := 36
	credit, _, err := svc.GrantCredit(client.ID, principal, rate, term)
	if err != nil {
		t.Fatalf("grant credit: %v", err)
	}

	// The term payments discount back to the principal at the monthly rate.
	monthlyRate := rate / 100 / 12
	pv := 0.0
	for i := 1; i <= term; i++ {
		pv += credit.MonthlyPayment / math.Pow(1+monthlyRate, float64(i))
	}
	if math.Abs(pv-principal) > 0.01 {
		t.Errorf("present value = %.6f, want %.2f", pv, principal)
	}
}

func TestGrantCredit_RejectsInvalidInputs(t *testing.T) {
	svc, store, _ := newTestService(t)
	client := newTestClient(t, store)

	cases := []struct {
		name   string
		amount float64
		rate   float64
		term   int
	}{
		{"zero amount", 0, 12, 24},
		{"negative amount", -500, 12, 24},
		{"negative rate", 10000, -1, 24},
		{"zero term", 10000, 12, 0},
		{"negative term", 10000, 12, -6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.GrantCredit(client.ID, tc.amount, tc.rate, tc.term)
			var validationErr *apperrors.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestGrantCredit_RejectsDuplicateActiveCredit(t *testing.T) {
	svc, store, _ := newTestService(t)
	client := newTestClient(t, store)

	if _, _, err := svc.GrantCredit(client.ID, 10000, 10, 12); err != nil {
		t.Fatalf("first grant: %v", err)
	}
	_, _, err := svc.GrantCredit(client.ID, 5000, 10, 6)
	var validationErr *apperrors.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for duplicate active credit, got %v", err)
	}
}

func TestGrantCredit_RejectsNonClient(t *testing.T) {
	svc, store, _ := newTestService(t)
	staff := &models.User{Email: "mgr@example.com", FullName: "Ana Ruiz", Role: models.RoleManager}
	if err := store.CreateUser(staff); err != nil {
		t.Fatalf("create user: %v", err)
	}

	_, _, err := svc.GrantCredit(staff.ID, 10000, 10, 12)
	var validationErr *apperrors.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for non-client, got %v", err)
	}
}

func TestGrantCredit_UnknownClient(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, _, err := svc.GrantCredit(999, 10000, 10, 12)
	var notFoundErr *apperrors.NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestCreditBurden(t *testing.T) {
	svc, store, _ := newTestService(t)
	client := newTestClient(t, store)

	credit, _, err := svc.GrantCredit(client.ID, 50000, 12, 24)
	if err != nil {
		t.Fatalf("grant credit: %v", err)
	}

	burden, err := svc.CreditBurden(client.ID)
	if err != nil {
		t.Fatalf("credit burden: %v", err)
	}
	if burden.ActiveCredits != 1 {
		t.Errorf("active credits = %d, want 1", burden.ActiveCredits)
	}
	if math.Abs(burden.MonthlyPayments-credit.MonthlyPayment) > 1e-9 {
		t.Errorf("monthly payments = %.4f, want %.4f", burden.MonthlyPayments, credit.MonthlyPayment)
	}
	if math.Abs(burden.TotalBalance-50000) > 1e-9 {
		t.Errorf("total balance = %.2f, want 50000", burden.TotalBalance)
	}
}

func TestBalanceCertificate(t *testing.T) {
	svc, store, _ := newTestService(t)
	client := newTestClient(t, store)

	credit, _, err := svc.GrantCredit(client.ID, 20000, 15, 18)
	if err != nil {
		t.Fatalf("grant credit: %v", err)
	}

	cert, err := svc.BalanceCertificate(credit.ID)
	if err != nil {
		t.Fatalf("certificate: %v", err)
	}
	if cert.CreditID != credit.ID || cert.ClientID != client.ID {
		t.Errorf("certificate ids = (%d, %d), want (%d, %d)", cert.CreditID, cert.ClientID, credit.ID, client.ID)
	}
	if cert.ClientName != client.FullName {
		t.Errorf("certificate client name = %q, want %q", cert.ClientName, client.FullName)
	}
	if cert.RemainingBalance != 20000 || cert.TotalPaid != 0 {
		t.Errorf("certificate balances = (%.2f, %.2f), want (20000, 0)", cert.RemainingBalance, cert.TotalPaid)
	}
}

func TestSuggestedRate(t *testing.T) {
	svc, _, _ := newTestService(t)

	rate, err := svc.SuggestedRate()
	if err != nil {
		t.Fatalf("suggested rate: %v", err)
	}
	if math.Abs(rate-21.0) > 1e-9 {
		t.Errorf("suggested rate = %.2f, want 21.00 (key rate 16 + margin 5)", rate)
	}
}

func TestSuggestedRate_FeedFailureIsUpstreamError(t *testing.T) {
	store := newFakeStorage()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	cfg := &config.Config{RateMargin: 5.0}
	svc := service.NewService(store, logger, cfg, &fakeMailer{}, &fakeRates{err: errors.New("connection refused")})

	_, err := svc.SuggestedRate()
	var upstreamErr *apperrors.UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
}
