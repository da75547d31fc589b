package repository

import (
	"database/sql"

	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/apperrors"
	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/models"
)

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func storageErr(op string, err error) error {
	return &apperrors.StorageError{Op: op, Err: err}
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(user *models.User) error {
	query := `
		INSERT INTO granito.users (email, full_name, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRow(query, user.Email, user.FullName, user.PasswordHash, user.Role).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return storageErr("create user", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, email, full_name, password_hash, role, created_at
		FROM granito.users
		WHERE email = $1`
	err := r.db.QueryRow(query, email).
		Scan(&user.ID, &user.Email, &user.FullName, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, &apperrors.NotFoundError{Entity: "user"}
	}
	if err != nil {
		return nil, storageErr("find user", err)
	}
	return user, nil
}

// FindUserByID retrieves a user by id
func (r *Repository) FindUserByID(id int64) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, email, full_name, password_hash, role, created_at
		FROM granito.users
		WHERE id = $1`
	err := r.db.QueryRow(query, id).
		Scan(&user.ID, &user.Email, &user.FullName, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, &apperrors.NotFoundError{Entity: "user", ID: id}
	}
	if err != nil {
		return nil, storageErr("find user", err)
	}
	return user, nil
}
