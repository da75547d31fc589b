package models

import "time"

// Role determines which views and operations a user may access
type Role string

const (
	RoleClient    Role = "client"
	RoleAssistant Role = "assistant"
	RoleManager   Role = "manager"
)

// User represents a user in the system
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"` // Not serialized
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
