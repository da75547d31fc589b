package repository

import (
	"database/sql"

	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/apperrors"
	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/models"
)

const creditColumns = `
	id, client_id, amount, interest_rate, term_months, monthly_payment,
	status, total_paid, remaining_balance, start_date, created_at, updated_at`

func scanCredit(row interface{ Scan(...any) error }) (*models.Credit, error) {
	c := &models.Credit{}
	err := row.Scan(
		&c.ID, &c.ClientID, &c.Amount, &c.InterestRate, &c.TermMonths,
		&c.MonthlyPayment, &c.Status, &c.TotalPaid, &c.RemainingBalance,
		&c.StartDate, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CreateCreditWithSchedule persists a credit and its full installment
// schedule in a single transaction. A credit row never exists without its
// complete schedule.
func (r *Repository) CreateCreditWithSchedule(credit *models.Credit, payments []*models.Payment) error {
	tx, err := r.db.Begin()
	if err != nil {
		return storageErr("begin grant transaction", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO granito.credits (client_id, amount, interest_rate, term_months,
			monthly_payment, status, total_paid, remaining_balance, start_date,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err = tx.QueryRow(query, credit.ClientID, credit.Amount, credit.InterestRate,
		credit.TermMonths, credit.MonthlyPayment, credit.Status, credit.TotalPaid,
		credit.RemainingBalance, credit.StartDate).
		Scan(&credit.ID, &credit.CreatedAt, &credit.UpdatedAt)
	if err != nil {
		return storageErr("create credit", err)
	}

	stmt := `
		INSERT INTO granito.payments (credit_id, client_id, installment_number,
			amount, due_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	for _, p := range payments {
		p.CreditID = credit.ID
		err = tx.QueryRow(stmt, credit.ID, p.ClientID, p.InstallmentNumber,
			p.Amount, p.DueDate, p.Status).
			Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return storageErr("create installment", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit grant transaction", err)
	}
	return nil
}

// FindCreditByID retrieves a credit by id
func (r *Repository) FindCreditByID(id int64) (*models.Credit, error) {
	query := `SELECT ` + creditColumns + ` FROM granito.credits WHERE id = $1`
	credit, err := scanCredit(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, &apperrors.NotFoundError{Entity: "credit", ID: id}
	}
	if err != nil {
		return nil, storageErr("find credit", err)
	}
	return credit, nil
}

// ListCreditsByClient retrieves all credits owned by a client
func (r *Repository) ListCreditsByClient(clientID int64) ([]*models.Credit, error) {
	query := `SELECT ` + creditColumns + ` FROM granito.credits WHERE client_id = $1 ORDER BY start_date DESC`
	rows, err := r.db.Query(query, clientID)
	if err != nil {
		return nil, storageErr("list credits", err)
	}
	defer rows.Close()

	var credits []*models.Credit
	for rows.Next() {
		credit, err := scanCredit(rows)
		if err != nil {
			return nil, storageErr("scan credit", err)
		}
		credits = append(credits, credit)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list credits", err)
	}
	return credits, nil
}

// HasActiveCredit reports whether a client currently holds an active credit
func (r *Repository) HasActiveCredit(clientID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM granito.credits WHERE client_id = $1 AND status = $2)`
	if err := r.db.QueryRow(query, clientID, models.CreditStatusActive).Scan(&exists); err != nil {
		return false, storageErr("check active credit", err)
	}
	return exists, nil
}

// ListActiveCredits retrieves all credits still in the active state
func (r *Repository) ListActiveCredits() ([]*models.Credit, error) {
	query := `SELECT ` + creditColumns + ` FROM granito.credits WHERE status = $1`
	rows, err := r.db.Query(query, models.CreditStatusActive)
	if err != nil {
		return nil, storageErr("list active credits", err)
	}
	defer rows.Close()

	var credits []*models.Credit
	for rows.Next() {
		credit, err := scanCredit(rows)
		if err != nil {
			return nil, storageErr("scan credit", err)
		}
		credits = append(credits, credit)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list active credits", err)
	}
	return credits, nil
}

// MarkCreditDefaulted transitions an active credit to defaulted
func (r *Repository) MarkCreditDefaulted(id int64) error {
	query := `
		UPDATE granito.credits
		SET status = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND status = $3`
	res, err := r.db.Exec(query, id, models.CreditStatusDefaulted, models.CreditStatusActive)
	if err != nil {
		return storageErr("mark credit defaulted", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storageErr("mark credit defaulted", err)
	}
	if affected == 0 {
		return &apperrors.ConflictError{Message: "credit is not active"}
	}
	return nil
}
