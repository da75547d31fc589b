package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/apperrors"
	"github.com/ImaGaf/elgranito-finance-hub-sub000/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Register creates a new user with a hashed password
func (s *Service) Register(email, fullName, password string, role models.Role) (*models.User, error) {
	if strings.TrimSpace(email) == "" || !strings.Contains(email, "@") {
		return nil, apperrors.NewValidation("email", "must be a valid email address")
	}
	if strings.TrimSpace(fullName) == "" {
		return nil, apperrors.NewValidation("full_name", "must not be empty")
	}
	if len(password) < 8 {
		return nil, apperrors.NewValidation("password", "must be at least 8 characters")
	}
	switch role {
	case models.RoleClient, models.RoleAssistant, models.RoleManager:
	default:
		return nil, apperrors.NewValidation("role", "unknown role %q", role)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}

	if err := s.repo.CreateUser(user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s (%s)", user.Email, user.Role)
	return user, nil
}

// Login authenticates a user and returns a JWT token carrying the role claim
func (s *Service) Login(email, password string) (string, error) {
	user, err := s.repo.FindUserByEmail(email)
	if err != nil {
		return "", apperrors.NewValidation("credentials", "invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperrors.NewValidation("credentials", "invalid email or password")
	}

	claims := jwt.MapClaims{
		"sub":  fmt.Sprintf("%d", user.ID),
		"role": string(user.Role),
		"exp":  jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}
