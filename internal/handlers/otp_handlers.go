package handlers

import (
	"encoding/base64"
	"log/slog"
	"net/http"

	"scrumboard/internal/auth"
	"scrumboard/internal/config"
	"scrumboard/internal/database"
	"scrumboard/internal/logging"
)

type OTPHandlers struct {
	UserRepo database.UserRepository
	Auth     *AuthHandlers
	Config   *config.Config
}

func NewOTPHandlers(userRepo database.UserRepository, authHandlers *AuthHandlers, cfg *config.Config) *OTPHandlers {
	return &OTPHandlers{
		UserRepo: userRepo,
		Auth:     authHandlers,
		Config:   cfg,
	}
}

// SetupOTPHandler erzeugt ein neues TOTP-Secret für den Benutzer und liefert
// den QR-Code als Base64-PNG. Aktiv wird 2FA erst nach VerifyOTPHandler.
func (h *OTPHandlers) SetupOTPHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}

	user, err := h.UserRepo.GetUserByID(ctx, userID)
	if err != nil {
		handleGetUserError(ctx, w, err, userID.String())
		return
	}
	if user.OTPEnabled {
		writeJSONError(w, "2FA ist bereits aktiviert", http.StatusConflict)
		return
	}

	key, err := auth.GenerateOTPSecret(h.Config.OTPIssuerName, user.Email)
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Erzeugen des OTP-Secrets", slog.Any("error", err))
		writeJSONError(w, "Interner Serverfehler", http.StatusInternalServerError)
		return
	}

	authURL := auth.GenerateOTPAuthURL(key)
	pngBytes, err := auth.GenerateQRCodePNG(authURL)
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Rendern des QR-Codes", slog.Any("error", err))
		writeJSONError(w, "Interner Serverfehler", http.StatusInternalServerError)
		return
	}

	if err := h.UserRepo.SetOTPSecretAndURL(ctx, userID, key.Secret(), authURL); err != nil {
		slog.ErrorContext(ctx, "Fehler beim Speichern des OTP-Secrets", slog.Any("error", err))
		writeJSONError(w, "Interner Serverfehler", http.StatusInternalServerError)
		return
	}

	logging.LogAuditEvent(ctx, "OTP_SETUP", logging.AuditSuccess)
	writeJSONResponse(w, OTPSetupResponse{
		Secret:  key.Secret(),
		QRCode:  base64.StdEncoding.EncodeToString(pngBytes),
		AuthURL: authURL,
	}, http.StatusOK)
}

// VerifyOTPHandler prüft den ersten Code nach dem Setup und schaltet 2FA frei.
func (h *OTPHandlers) VerifyOTPHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}

	var req OTPSecureRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	secret, isEnabled, err := h.UserRepo.GetOTPSecretAndStatus(ctx, userID)
	if err != nil {
		handleGetUserError(ctx, w, err, userID.String())
		return
	}
	if isEnabled {
		writeJSONError(w, "2FA ist bereits aktiviert", http.StatusConflict)
		return
	}
	if !secret.Valid || secret.String == "" {
		writeJSONError(w, "Es wurde noch kein 2FA-Setup gestartet", http.StatusBadRequest)
		return
	}

	valid, err := auth.ValidateOTPCode(secret.String, req.OTPCode)
	if err != nil {
		writeJSONError(w, "Interner Serverfehler", http.StatusInternalServerError)
		return
	}
	if !valid {
		logging.LogAuditEvent(ctx, "OTP_VERIFY", logging.AuditFailure,
			slog.String("reason", "invalid_code"),
		)
		writeJSONError(w, "Der OTP-Code ist ungültig", http.StatusUnauthorized)
		return
	}

	if err := h.UserRepo.EnableOTP(ctx, userID); err != nil {
		slog.ErrorContext(ctx, "Fehler beim Aktivieren von 2FA", slog.Any("error", err))
		writeJSONError(w, "Interner Serverfehler", http.StatusInternalServerError)
		return
	}

	logging.LogAuditEvent(ctx, "OTP_VERIFY", logging.AuditSuccess)
	w.WriteHeader(http.StatusNoContent)
}

// DisableOTPHandler schaltet 2FA ab. Zum Schutz vor Session-Hijacking wird
// ein gültiger aktueller Code verlangt.
func (h *OTPHandlers) DisableOTPHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}

	var req OTPSecureRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	secret, isEnabled, err := h.UserRepo.GetOTPSecretAndStatus(ctx, userID)
	if err != nil {
		handleGetUserError(ctx, w, err, userID.String())
		return
	}
	if !isEnabled {
		writeJSONError(w, "2FA ist nicht aktiviert", http.StatusBadRequest)
		return
	}

	valid, err := auth.ValidateOTPCode(secret.String, req.OTPCode)
	if err != nil {
		writeJSONError(w, "Interner Serverfehler", http.StatusInternalServerError)
		return
	}
	if !valid {
		logging.LogAuditEvent(ctx, "OTP_DISABLE", logging.AuditFailure,
			slog.String("reason", "invalid_code"),
		)
		writeJSONError(w, "Der OTP-Code ist ungültig", http.StatusUnauthorized)
		return
	}

	if err := h.UserRepo.DisableOTP(ctx, userID); err != nil {
		slog.ErrorContext(ctx, "Fehler beim Deaktivieren von 2FA", slog.Any("error", err))
		writeJSONError(w, "Interner Serverfehler", http.StatusInternalServerError)
		return
	}

	logging.LogAuditEvent(ctx, "OTP_DISABLE", logging.AuditSuccess)
	w.WriteHeader(http.StatusNoContent)
}

// LoginOTPHandler ist der zweite Schritt des Logins für Benutzer mit 2FA:
// E-Mail, Passwort und aktueller Code in einem Request.
func (h *OTPHandlers) LoginOTPHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req LoginOTPRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	user, err := h.UserRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		logging.LogAuditEvent(ctx, "AUTH_LOGIN_OTP", logging.AuditFailure,
			slog.String("email", req.Email),
			slog.String("reason", "user_not_found"),
		)
		handleGetUserError(ctx, w, err, req.Email)
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		if err := h.UserRepo.RecordLoginFailure(ctx, user.ID); err != nil {
			slog.ErrorContext(ctx, "Fehler beim Verbuchen des Fehlversuchs", slog.Any("error", err))
		}
		logging.LogAuditEvent(ctx, "AUTH_LOGIN_OTP", logging.AuditFailure,
			slog.String("email", req.Email),
			slog.String("reason", "invalid_password"),
		)
		writeJSONError(w, "Ungültige E-Mail oder Passwort", http.StatusUnauthorized)
		return
	}

	secret, isEnabled, err := h.UserRepo.GetOTPSecretAndStatus(ctx, user.ID)
	if err != nil {
		handleGetUserError(ctx, w, err, req.Email)
		return
	}
	if !isEnabled {
		writeJSONError(w, "2FA ist für dieses Konto nicht aktiviert", http.StatusBadRequest)
		return
	}

	valid, err := auth.ValidateOTPCode(secret.String, req.OTPCode)
	if err != nil {
		writeJSONError(w, "Interner Serverfehler", http.StatusInternalServerError)
		return
	}
	if !valid {
		if err := h.UserRepo.RecordLoginFailure(ctx, user.ID); err != nil {
			slog.ErrorContext(ctx, "Fehler beim Verbuchen des Fehlversuchs", slog.Any("error", err))
		}
		logging.LogAuditEvent(ctx, "AUTH_LOGIN_OTP", logging.AuditFailure,
			slog.String("email", req.Email),
			slog.String("reason", "invalid_otp_code"),
		)
		writeJSONError(w, "Der OTP-Code ist ungültig", http.StatusUnauthorized)
		return
	}

	if err := h.UserRepo.RecordLoginSuccess(ctx, user.ID); err != nil {
		slog.ErrorContext(ctx, "Fehler beim Verbuchen des Logins", slog.Any("error", err))
	}
	logging.LogAuditEvent(ctx, "AUTH_LOGIN_OTP", logging.AuditSuccess,
		slog.String("user_id", user.ID.String()),
	)
	h.Auth.issueTokensAndRespond(ctx, w, user)
}
