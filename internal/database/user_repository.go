package database

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"scrumboard/internal/models"

	"github.com/google/uuid"
)

// CreateUser fügt einen neuen Benutzer in die Datenbank ein.
func (r *sqlxRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (id, email, username, password_hash, is_admin, failed_login_count, otp_enabled, created_at, updated_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		user.ID.String(),
		user.Email,
		user.Username,
		user.PasswordHash,
		user.IsAdmin,
		user.FailedLoginCount,
		user.OTPEnabled,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Einfügen des Benutzers", slog.Any("error", err), slog.String("email", user.Email))
		return err
	}
	slog.DebugContext(ctx, "Benutzer erfolgreich in DB erstellt", slog.String("user_id", user.ID.String()))
	return nil
}

// GetUserByEmail ruft einen Benutzer anhand seiner E-Mail-Adresse ab.
func (r *sqlxRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `SELECT * FROM users WHERE email = ? LIMIT 1`
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			slog.DebugContext(ctx, "Benutzer nicht gefunden", slog.String("email", email))
			return nil, ErrUserNotFound
		}
		slog.ErrorContext(ctx, "Fehler beim Abrufen des Benutzers nach E-Mail", slog.Any("error", err), slog.String("email", email))
		return nil, err
	}
	return &user, nil
}

// GetUserByID ruft einen Benutzer anhand seiner ID ab.
func (r *sqlxRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	query := `SELECT * FROM users WHERE id = ? LIMIT 1`
	err := r.db.GetContext(ctx, &user, query, id.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			slog.DebugContext(ctx, "Benutzer nicht gefunden", slog.String("id", id.String()))
			return nil, ErrUserNotFound
		}
		slog.ErrorContext(ctx, "Fehler beim Abrufen des Benutzers nach ID", slog.Any("error", err), slog.String("id", id.String()))
		return nil, err
	}
	return &user, nil
}

// UpdateUser aktualisiert globale Benutzerdaten (E-Mail, Benutzername).
func (r *sqlxRepository) UpdateUser(ctx context.Context, user *models.User) error {
	query := `UPDATE users SET email = ?, username = ?, updated_at = ? WHERE id = ?`

	user.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		user.Email,
		user.Username,
		user.UpdatedAt,
		user.ID.String(),
	)
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Aktualisieren des Benutzers", slog.Any("error", err), slog.String("user_id", user.ID.String()))
		return err
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		slog.WarnContext(ctx, "Versuch, nicht existierenden Benutzer zu aktualisieren", slog.String("user_id", user.ID.String()))
		return ErrUserNotFound
	}
	return nil
}

// UpdatePassword ersetzt den Passwort-Hash eines Benutzers.
func (r *sqlxRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	query := `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, passwordHash, time.Now().UTC(), userID.String())
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Aktualisieren des Passworts", slog.Any("error", err), slog.String("user_id", userID.String()))
		return err
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	slog.InfoContext(ctx, "Passwort erfolgreich geändert", slog.String("user_id", userID.String()))
	return nil
}

func (r *sqlxRepository) GetUserCount(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM users`

	err := r.db.GetContext(ctx, &count, query)
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Zählen der Benutzer", slog.Any("error", err))
		return 0, err
	}
	return count, nil
}

func (r *sqlxRepository) ListUsers(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	query := `SELECT * FROM users ORDER BY created_at`

	err := r.db.SelectContext(ctx, &users, query)
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Auflisten der Benutzer", slog.Any("error", err))
		return nil, err
	}
	return users, nil
}

// RecordLoginSuccess setzt last_login_at und setzt den Fehlerzähler zurück.
func (r *sqlxRepository) RecordLoginSuccess(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE users SET last_login_at = ?, failed_login_count = 0 WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query, time.Now().UTC(), userID.String())
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Verbuchen des Logins", slog.Any("error", err), slog.String("user_id", userID.String()))
		return err
	}
	return nil
}

// RecordLoginFailure erhöht den Fehlerzähler.
func (r *sqlxRepository) RecordLoginFailure(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE users SET failed_login_count = failed_login_count + 1 WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query, userID.String())
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Verbuchen des fehlgeschlagenen Logins", slog.Any("error", err), slog.String("user_id", userID.String()))
		return err
	}
	return nil
}

func (r *sqlxRepository) SetOTPSecretAndURL(ctx context.Context, userID uuid.UUID, secret, authURL string) error {
	query := `UPDATE users SET otp_secret = ?, otp_auth_url = ?, updated_at = ?
	           WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, secret, authURL, time.Now().UTC(), userID.String())
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Setzen des OTP-Secrets/URL", "error", err, "user_id", userID.String())
		return err
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	slog.DebugContext(ctx, "OTP-Secret und URL erfolgreich gesetzt", "user_id", userID.String())
	return nil
}

func (r *sqlxRepository) EnableOTP(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE users SET otp_enabled = TRUE, updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), userID.String())
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Aktivieren von OTP", "error", err, "user_id", userID.String())
		return err
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	slog.InfoContext(ctx, "OTP erfolgreich aktiviert", "user_id", userID.String())
	return nil
}

func (r *sqlxRepository) DisableOTP(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE users SET otp_enabled = FALSE, otp_secret = NULL, otp_auth_url = NULL, updated_at = ?
	           WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), userID.String())
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Deaktivieren von OTP", "error", err, "user_id", userID.String())
		return err
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	slog.InfoContext(ctx, "OTP erfolgreich deaktiviert", "user_id", userID.String())
	return nil
}

func (r *sqlxRepository) GetOTPSecretAndStatus(ctx context.Context, userID uuid.UUID) (secret sql.NullString, isEnabled bool, err error) {
	query := `SELECT otp_secret, otp_enabled FROM users WHERE id = ? LIMIT 1`

	row := r.db.QueryRowContext(ctx, query, userID.String())
	err = row.Scan(&secret, &isEnabled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			slog.DebugContext(ctx, "Benutzer für OTP-Statusabfrage nicht gefunden", "user_id", userID.String())
			return secret, false, ErrUserNotFound
		}
		slog.ErrorContext(ctx, "Fehler beim Abrufen des OTP-Status/Secrets", "error", err, "user_id", userID.String())
		return secret, false, err
	}
	return secret, isEnabled, nil
}
