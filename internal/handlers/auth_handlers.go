package handlers

import (
	"context"
	"crypto/rsa"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"scrumboard/internal/auth"
	"scrumboard/internal/config"
	"scrumboard/internal/database"
	"scrumboard/internal/logging"
	"scrumboard/internal/middleware"
	"scrumboard/internal/models"
)

type AuthHandlers struct {
	UserRepo        database.UserRepository
	TokenRepo       database.TokenRepository
	PrivateKey      *rsa.PrivateKey
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Config          *config.Config
}

func NewAuthHandlers(
	userRepo database.UserRepository,
	tokenRepo database.TokenRepository,
	pk *rsa.PrivateKey,
	cfg *config.Config,
) *AuthHandlers {
	return &AuthHandlers{
		UserRepo:        userRepo,
		TokenRepo:       tokenRepo,
		PrivateKey:      pk,
		AccessTokenTTL:  cfg.JWTAccessTokenTTL,
		RefreshTokenTTL: cfg.JWTRefreshTokenTTL,
		Config:          cfg,
	}
}

// RegisterHandler legt einen Benutzer an. Der allererste Benutzer der
// Installation wird Admin.
func (h *AuthHandlers) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req RegisterRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	existingUser, err := h.UserRepo.GetUserByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, database.ErrUserNotFound) {
		slog.ErrorContext(ctx, "Fehler beim Prüfen des Benutzers", slog.Any("error", err))
		writeJSONError(w, "Interner Serverfehler", http.StatusInternalServerError)
		return
	}
	if existingUser != nil {
		logging.LogAuditEvent(ctx, "AUTH_REGISTER", logging.AuditFailure,
			slog.String("email", req.Email),
			slog.String("reason", "email_already_exists"),
		)
		writeJSONError(w, "Ein Benutzer mit dieser E-Mail existiert bereits", http.StatusConflict)
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		writeJSONError(w, "Interner Serverfehler", http.StatusInternalServerError)
		return
	}

	newUser := models.NewUser(req.Email, req.Username, hashedPassword)

	userCount, err := h.UserRepo.GetUserCount(ctx)
	if err != nil {
		writeJSONError(w, "Interner Serverfehler (DB-Zählung)", http.StatusInternalServerError)
		return
	}
	if userCount == 0 {
		newUser.IsAdmin = true
		slog.InfoContext(ctx, "Erster Benutzer wird als Admin registriert", "email", req.Email)
	}

	if err := h.UserRepo.CreateUser(ctx, newUser); err != nil {
		slog.ErrorContext(ctx, "Fehler beim Speichern des Benutzers", slog.Any("error", err))
		writeJSONError(w, "Interner Serverfehler beim Speichern", http.StatusInternalServerError)
		return
	}

	logging.LogAuditEvent(ctx, "AUTH_REGISTER", logging.AuditSuccess,
		slog.String("email", req.Email),
		slog.String("user_id", newUser.ID.String()),
	)
	w.WriteHeader(http.StatusCreated)
}

// LoginHandler prüft E-Mail und Passwort. Hat der Benutzer 2FA aktiviert,
// wird kein Token ausgestellt, sondern otp_required signalisiert.
func (h *AuthHandlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req LoginRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	user, err := h.UserRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		logging.LogAuditEvent(ctx, "AUTH_LOGIN", logging.AuditFailure,
			slog.String("email", req.Email),
			slog.String("reason", "user_not_found"),
		)
		handleGetUserError(ctx, w, err, req.Email)
		return
	}
	ctx = context.WithValue(ctx, middleware.UserIDContextKey, user.ID)

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		if err := h.UserRepo.RecordLoginFailure(ctx, user.ID); err != nil {
			slog.ErrorContext(ctx, "Fehler beim Verbuchen des Fehlversuchs", slog.Any("error", err))
		}
		logging.LogAuditEvent(ctx, "AUTH_LOGIN", logging.AuditFailure,
			slog.String("email", req.Email),
			slog.String("reason", "invalid_password"),
		)
		writeJSONError(w, "Ungültige E-Mail oder Passwort", http.StatusUnauthorized)
		return
	}

	if user.OTPEnabled {
		logging.LogAuditEvent(ctx, "AUTH_LOGIN", logging.AuditSuccess,
			slog.String("result", "otp_required"),
		)
		writeJSONResponse(w, map[string]bool{"otp_required": true}, http.StatusOK)
		return
	}

	if err := h.UserRepo.RecordLoginSuccess(ctx, user.ID); err != nil {
		slog.ErrorContext(ctx, "Fehler beim Verbuchen des Logins", slog.Any("error", err))
	}
	logging.LogAuditEvent(ctx, "AUTH_LOGIN", logging.AuditSuccess,
		slog.String("result", "tokens_issued"),
	)
	h.issueTokensAndRespond(ctx, w, user)
}

// ChangePasswordHandler setzt das Passwort des angemeldeten Benutzers neu.
func (h *AuthHandlers) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	user, err := h.UserRepo.GetUserByID(ctx, userID)
	if err != nil {
		handleGetUserError(ctx, w, err, userID.String())
		return
	}

	if !auth.CheckPasswordHash(req.OldPassword, user.PasswordHash) {
		logging.LogAuditEvent(ctx, "AUTH_CHANGE_PASSWORD", logging.AuditFailure,
			slog.String("reason", "invalid_old_password"),
		)
		writeJSONError(w, "Das alte Passwort ist falsch", http.StatusUnauthorized)
		return
	}

	newHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		writeJSONError(w, "Interner Serverfehler", http.StatusInternalServerError)
		return
	}
	if err := h.UserRepo.UpdatePassword(ctx, userID, newHash); err != nil {
		slog.ErrorContext(ctx, "Fehler beim Speichern des neuen Passworts", slog.Any("error", err))
		writeJSONError(w, "Interner Serverfehler", http.StatusInternalServerError)
		return
	}

	logging.LogAuditEvent(ctx, "AUTH_CHANGE_PASSWORD", logging.AuditSuccess)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandlers) issueTokensAndRespond(ctx context.Context, w http.ResponseWriter, user *models.User) {
	accessToken, err := auth.GenerateToken(user, h.PrivateKey, h.AccessTokenTTL)
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Erstellen des Access JWT für Login", slog.String("user_id", user.ID.String()), slog.Any("error", err))
		writeJSONError(w, "Interner Serverfehler", http.StatusInternalServerError)
		return
	}

	refreshTokenString := auth.GenerateRefreshToken()
	refreshTokenHash := database.HashToken(refreshTokenString)
	refreshExpiresAt := time.Now().UTC().Add(h.RefreshTokenTTL)

	refreshTokenDB := &database.RefreshToken{
		TokenHash: refreshTokenHash,
		UserID:    user.ID,
		ExpiresAt: refreshExpiresAt,
		CreatedAt: time.Now().UTC(),
		Revoked:   false,
	}

	if err := h.TokenRepo.SaveRefreshToken(ctx, refreshTokenDB); err != nil {
		slog.ErrorContext(ctx, "Fehler beim Speichern des Refresh Tokens", slog.String("user_id", user.ID.String()), slog.Any("error", err))
		writeJSONError(w, "Interner Serverfehler", http.StatusInternalServerError)
		return
	}

	resp := LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenString,
	}
	writeJSONResponse(w, resp, http.StatusOK)
}
