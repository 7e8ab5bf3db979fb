package middleware

import (
	"context"
	"crypto/rsa"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"scrumboard/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const UserIDContextKey contextKey = "userID"

func Authenticator(publicKey *rsa.PublicKey) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			tokenString, err := extractBearerToken(r)
			if err != nil {
				slog.WarnContext(ctx, "Authentifizierung fehlgeschlagen: Kein oder ungültiger Token", slog.Any("error", err))
				http.Error(w, `{"error": "unauthorized", "message": "Authentifizierung erforderlich"}`, http.StatusUnauthorized)
				return
			}

			token, err := jwt.ParseWithClaims(tokenString, &auth.CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
					return nil, fmt.Errorf("unerwarteter Signaturalgorithmus: %v", token.Header["alg"])
				}
				return publicKey, nil
			})

			if err != nil {
				slog.WarnContext(ctx, "Authentifizierung fehlgeschlagen: Token Validierung fehlgeschlagen", slog.Any("error", err))
				http.Error(w, `{"error": "unauthorized", "message": "Ungültiger oder abgelaufener Token"}`, http.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(*auth.CustomClaims)
			if !ok || !token.Valid {
				slog.WarnContext(ctx, "Authentifizierung fehlgeschlagen: Ungültige Claims nach erfolgreichem Parsen")
				http.Error(w, `{"error": "unauthorized", "message": "Ungültiger Token"}`, http.StatusUnauthorized)
				return
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil || userID == uuid.Nil {
				slog.ErrorContext(ctx, "Authentifizierung fehlgeschlagen: UserID im Token unbrauchbar", slog.Any("error", err))
				http.Error(w, `{"error": "internal_error", "message": "Token-Daten unvollständig"}`, http.StatusInternalServerError)
				return
			}

			ctx = context.WithValue(ctx, UserIDContextKey, userID)
			slog.DebugContext(ctx, "Authentifizierung erfolgreich", slog.String("user_id", userID.String()))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("authorization Header fehlt")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", fmt.Errorf("authorization Header Format ist ungültig ('Bearer TOKEN')")
	}

	return parts[1], nil
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(uuid.UUID)
	return userID, ok
}
