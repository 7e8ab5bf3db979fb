package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	IsAdmin      bool      `db:"is_admin"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`

	LastLoginAt      sql.NullTime `db:"last_login_at"`
	FailedLoginCount int          `db:"failed_login_count"`

	OTPEnabled bool           `db:"otp_enabled"`
	OTPSecret  sql.NullString `db:"otp_secret"`
	OTPAuthURL sql.NullString `db:"otp_auth_url"`
}

func NewUser(email, username, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		IsAdmin:      false,
		CreatedAt:    now,
		UpdatedAt:    now,
		OTPEnabled:   false,
	}
}
