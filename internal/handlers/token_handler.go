package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"scrumboard/internal/database"
	"scrumboard/internal/logging"
)

// RefreshHandler tauscht einen gültigen Refresh Token gegen ein neues
// Token-Paar. Der alte Refresh Token wird dabei rotiert (widerrufen).
func (h *AuthHandlers) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req RefreshRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	tokenHash := database.HashToken(req.RefreshToken)
	storedToken, err := h.TokenRepo.GetRefreshTokenByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, database.ErrRefreshTokenNotFound) {
			logging.LogAuditEvent(ctx, "AUTH_REFRESH", logging.AuditFailure,
				slog.String("reason", "token_not_found"),
			)
			writeJSONError(w, "Ungültiger Refresh Token", http.StatusUnauthorized)
			return
		}
		slog.ErrorContext(ctx, "Fehler beim Laden des Refresh Tokens", slog.Any("error", err))
		writeJSONError(w, "Interner Serverfehler", http.StatusInternalServerError)
		return
	}

	if storedToken.Revoked {
		logging.LogAuditEvent(ctx, "AUTH_REFRESH", logging.AuditFailure,
			slog.String("user_id", storedToken.UserID.String()),
			slog.String("reason", "token_revoked"),
		)
		writeJSONError(w, "Der Refresh Token wurde widerrufen", http.StatusUnauthorized)
		return
	}
	// Kurz abgelaufene Tokens werden innerhalb der Grace-Periode noch
	// akzeptiert, damit Clients mit knapper Uhr nicht ausgesperrt werden.
	if time.Now().UTC().After(storedToken.ExpiresAt.Add(h.Config.JWTGraceTokenTTL)) {
		logging.LogAuditEvent(ctx, "AUTH_REFRESH", logging.AuditFailure,
			slog.String("user_id", storedToken.UserID.String()),
			slog.String("reason", "token_expired"),
		)
		writeJSONError(w, "Der Refresh Token ist abgelaufen", http.StatusUnauthorized)
		return
	}

	user, err := h.UserRepo.GetUserByID(ctx, storedToken.UserID)
	if err != nil {
		handleGetUserError(ctx, w, err, storedToken.UserID.String())
		return
	}

	// Rotation: der eingelöste Token verliert seine Gültigkeit.
	if err := h.TokenRepo.RevokeRefreshToken(ctx, tokenHash); err != nil {
		slog.ErrorContext(ctx, "Fehler beim Widerrufen des alten Refresh Tokens", slog.Any("error", err))
		writeJSONError(w, "Interner Serverfehler", http.StatusInternalServerError)
		return
	}

	logging.LogAuditEvent(ctx, "AUTH_REFRESH", logging.AuditSuccess,
		slog.String("user_id", user.ID.String()),
	)
	h.issueTokensAndRespond(ctx, w, user)
}

// LogoutHandler widerruft den übergebenen Refresh Token. Access Tokens
// bleiben bis zu ihrem Ablauf technisch gültig.
func (h *AuthHandlers) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req LogoutRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	tokenHash := database.HashToken(req.RefreshToken)
	if err := h.TokenRepo.RevokeRefreshToken(ctx, tokenHash); err != nil {
		if !errors.Is(err, database.ErrRefreshTokenNotFound) {
			slog.ErrorContext(ctx, "Fehler beim Widerrufen des Refresh Tokens", slog.Any("error", err))
			writeJSONError(w, "Interner Serverfehler", http.StatusInternalServerError)
			return
		}
	}

	logging.LogAuditEvent(ctx, "AUTH_LOGOUT", logging.AuditSuccess)
	w.WriteHeader(http.StatusNoContent)
}
