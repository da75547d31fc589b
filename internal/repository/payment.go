package repository

import (
	"database/sql"
	"time"

	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/apperrors"
	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/models"
)

const paymentColumns = `
	id, credit_id, client_id, installment_number, amount, due_date,
	status, paid_date, method, transaction_id, instrument_enc, instrument_hmac,
	created_at, updated_at`

func scanPayment(row interface{ Scan(...any) error }) (*models.Payment, error) {
	p := &models.Payment{}
	var paidDate sql.NullTime
	var method, transactionID, instrumentEnc, instrumentHMAC sql.NullString
	err := row.Scan(
		&p.ID, &p.CreditID, &p.ClientID, &p.InstallmentNumber, &p.Amount,
		&p.DueDate, &p.Status, &paidDate, &method, &transactionID,
		&instrumentEnc, &instrumentHMAC, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if paidDate.Valid {
		p.PaidDate = &paidDate.Time
	}
	p.Method = method.String
	p.TransactionID = transactionID.String
	p.InstrumentEnc = instrumentEnc.String
	p.InstrumentHMAC = instrumentHMAC.String
	return p, nil
}

// FindPaymentByID retrieves a payment by id
func (r *Repository) FindPaymentByID(id int64) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM granito.payments WHERE id = $1`
	payment, err := scanPayment(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, &apperrors.NotFoundError{Entity: "payment", ID: id}
	}
	if err != nil {
		return nil, storageErr("find payment", err)
	}
	return payment, nil
}

// ListPaymentsByCredit retrieves a credit's schedule ordered by installment
func (r *Repository) ListPaymentsByCredit(creditID int64) ([]*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM granito.payments WHERE credit_id = $1 ORDER BY installment_number`
	return r.listPayments(query, creditID)
}

// ListPendingPaymentsByClient retrieves a client's unpaid installments across
// all credits, soonest due first
func (r *Repository) ListPendingPaymentsByClient(clientID int64) ([]*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM granito.payments WHERE client_id = $1 AND status <> $2 ORDER BY due_date`
	return r.listPayments(query, clientID, models.PaymentStatusPaid)
}

func (r *Repository) listPayments(query string, args ...any) ([]*models.Payment, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, storageErr("list payments", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, storageErr("scan payment", err)
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list payments", err)
	}
	return payments, nil
}

// ApplyPayment marks an installment paid and settles it against the parent
// credit's balance in one transaction. Both rows are locked for the duration,
// and a payment that is already paid is rejected without any mutation, which
// makes duplicate submissions of the same payment id safe. The encrypted
// instrument record and its integrity tag are stored with the payment.
func (r *Repository) ApplyPayment(paymentID int64, paidAt time.Time, method, transactionID, instrumentEnc, instrumentHMAC string) (*models.Payment, *models.Credit, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, nil, storageErr("begin payment transaction", err)
	}
	defer tx.Rollback()

	query := `SELECT ` + paymentColumns + ` FROM granito.payments WHERE id = $1 FOR UPDATE`
	payment, err := scanPayment(tx.QueryRow(query, paymentID))
	if err == sql.ErrNoRows {
		return nil, nil, &apperrors.NotFoundError{Entity: "payment", ID: paymentID}
	}
	if err != nil {
		return nil, nil, storageErr("lock payment", err)
	}
	if payment.Status == models.PaymentStatusPaid {
		return nil, nil, &apperrors.ConflictError{Message: "payment is already paid"}
	}

	query = `SELECT ` + creditColumns + ` FROM granito.credits WHERE id = $1 FOR UPDATE`
	credit, err := scanCredit(tx.QueryRow(query, payment.CreditID))
	if err == sql.ErrNoRows {
		return nil, nil, &apperrors.NotFoundError{Entity: "credit", ID: payment.CreditID}
	}
	if err != nil {
		return nil, nil, storageErr("lock credit", err)
	}

	payment.Status = models.PaymentStatusPaid
	payment.PaidDate = &paidAt
	payment.Method = method
	payment.TransactionID = transactionID
	payment.InstrumentEnc = instrumentEnc
	payment.InstrumentHMAC = instrumentHMAC
	_, err = tx.Exec(`
		UPDATE granito.payments
		SET status = $2, paid_date = $3, method = $4, transaction_id = $5,
			instrument_enc = $6, instrument_hmac = $7, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`,
		payment.ID, payment.Status, paidAt, method, transactionID, instrumentEnc, instrumentHMAC)
	if err != nil {
		return nil, nil, storageErr("update payment", err)
	}

	credit.ApplyPayment(payment.Amount)
	_, err = tx.Exec(`
		UPDATE granito.credits
		SET total_paid = $2, remaining_balance = $3, status = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`,
		credit.ID, credit.TotalPaid, credit.RemainingBalance, credit.Status)
	if err != nil {
		return nil, nil, storageErr("update credit", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, storageErr("commit payment transaction", err)
	}
	return payment, credit, nil
}

// ListPaymentNotices retrieves unpaid installments due inside the given
// window, joined with the owning client's contact details
func (r *Repository) ListPaymentNotices(dueBefore time.Time) ([]*models.PaymentNotice, error) {
	query := `
		SELECT p.id, p.credit_id, p.client_id, p.installment_number, p.amount,
			p.due_date, p.status, p.paid_date, p.method, p.transaction_id,
			p.created_at, p.updated_at, u.email, u.full_name
		FROM granito.payments p
		JOIN granito.users u ON u.id = p.client_id
		WHERE p.status <> $1 AND p.due_date <= $2
		ORDER BY p.due_date`
	rows, err := r.db.Query(query, models.PaymentStatusPaid, dueBefore)
	if err != nil {
		return nil, storageErr("list payment notices", err)
	}
	defer rows.Close()

	var notices []*models.PaymentNotice
	for rows.Next() {
		p := &models.Payment{}
		notice := &models.PaymentNotice{Payment: p}
		var paidDate sql.NullTime
		var method, transactionID sql.NullString
		err := rows.Scan(
			&p.ID, &p.CreditID, &p.ClientID, &p.InstallmentNumber, &p.Amount,
			&p.DueDate, &p.Status, &paidDate, &method, &transactionID,
			&p.CreatedAt, &p.UpdatedAt, &notice.ClientEmail, &notice.ClientName)
		if err != nil {
			return nil, storageErr("scan payment notice", err)
		}
		if paidDate.Valid {
			p.PaidDate = &paidDate.Time
		}
		p.Method = method.String
		p.TransactionID = transactionID.String
		notices = append(notices, notice)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list payment notices", err)
	}
	return notices, nil
}
