package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"scrumboard/internal/database"
	"scrumboard/internal/middleware"
	"scrumboard/internal/scrum"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// dateonly prüft Kalenderdaten im Format YYYY-MM-DD.
	v.RegisterValidation("dateonly", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(time.DateOnly, fl.Field().String())
		return err == nil
	})
	return v
}

func validateRequest(ctx context.Context, req interface{}) map[string]string {
	err := validate.StructCtx(ctx, req)
	if err == nil {
		return nil
	}

	validationErrors := err.(validator.ValidationErrors)
	errorMessages := make(map[string]string)

	for _, fieldErr := range validationErrors {
		fieldName := fieldErr.Field()
		switch fieldErr.Tag() {
		case "required":
			errorMessages[fieldName] = fmt.Sprintf("Feld '%s' ist erforderlich.", fieldName)
		case "email":
			errorMessages[fieldName] = fmt.Sprintf("Feld '%s' muss eine gültige E-Mail-Adresse sein.", fieldName)
		case "min":
			errorMessages[fieldName] = fmt.Sprintf("Feld '%s' muss mindestens %s Zeichen lang sein.", fieldName, fieldErr.Param())
		case "max":
			errorMessages[fieldName] = fmt.Sprintf("Feld '%s' darf höchstens %s Zeichen lang sein.", fieldName, fieldErr.Param())
		case "numeric":
			errorMessages[fieldName] = fmt.Sprintf("Feld '%s' muss numerisch sein.", fieldName)
		case "len":
			errorMessages[fieldName] = fmt.Sprintf("Feld '%s' muss genau %s Zeichen lang sein.", fieldName, fieldErr.Param())
		case "oneof":
			errorMessages[fieldName] = fmt.Sprintf("Feld '%s' muss einer der Werte sein: %s.", fieldName, fieldErr.Param())
		case "gt":
			errorMessages[fieldName] = fmt.Sprintf("Feld '%s' muss größer als %s sein.", fieldName, fieldErr.Param())
		case "gte":
			errorMessages[fieldName] = fmt.Sprintf("Feld '%s' muss mindestens %s sein.", fieldName, fieldErr.Param())
		case "dateonly":
			errorMessages[fieldName] = fmt.Sprintf("Feld '%s' muss ein Datum im Format JJJJ-MM-TT sein.", fieldName)
		default:
			errorMessages[fieldName] = fmt.Sprintf("Feld '%s' ist ungültig (%s).", fieldName, fieldErr.Tag())
		}
	}
	return errorMessages
}

func writeJSONError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

func writeJSONResponse(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Fehler beim Senden der JSON-Antwort", slog.Any("error", err))
	}
}

// decodeJSONBody liest und validiert den Request-Body; bei einem Fehler
// ist die Antwort bereits geschrieben.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeJSONError(w, "Ungültiger JSON Body", http.StatusBadRequest)
		return false
	}
	defer r.Body.Close()

	if validationErrs := validateRequest(r.Context(), req); validationErrs != nil {
		writeJSONResponse(w, validationErrs, http.StatusBadRequest)
		return false
	}
	return true
}

// requestUser holt die authentifizierte Benutzer-ID aus dem Kontext.
func requestUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		slog.ErrorContext(r.Context(), "Benutzer-ID fehlt im Kontext trotz Authenticator")
		writeJSONError(w, "Authentifizierung erforderlich", http.StatusUnauthorized)
		return uuid.Nil, false
	}
	return userID, true
}

// pathUUID liest einen UUID-Pfadparameter.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		writeJSONError(w, fmt.Sprintf("Ungültige ID im Pfadparameter '%s'", name), http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// handleServiceError bildet Service-Fehler auf HTTP-Status ab:
// Validierungs- und Regelverletzungen 400, fehlende Berechtigung 403,
// fehlende Entität 404, alles andere 500.
func handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	var vErr *scrum.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeJSONError(w, vErr.Message, http.StatusBadRequest)
	case errors.Is(err, scrum.ErrForbidden):
		writeJSONError(w, "Keine Berechtigung für diese Aktion", http.StatusForbidden)
	case errors.Is(err, scrum.ErrNotFound):
		writeJSONError(w, "Ressource nicht gefunden", http.StatusNotFound)
	default:
		slog.ErrorContext(ctx, "Unerwarteter Service-Fehler", slog.Any("error", err))
		writeJSONError(w, "Interner Serverfehler", http.StatusInternalServerError)
	}
}

func handleGetUserError(ctx context.Context, w http.ResponseWriter, err error, identifier string) {
	if errors.Is(err, database.ErrUserNotFound) {
		slog.WarnContext(ctx, "Benutzer nicht gefunden", slog.String("identifier", identifier), slog.Any("error", err))
		writeJSONError(w, "Ungültige Anmeldedaten", http.StatusUnauthorized)
	} else {
		slog.ErrorContext(ctx, "Fehler beim Abrufen des Benutzers", slog.Any("error", err), slog.String("identifier", identifier))
		writeJSONError(w, "Interner Serverfehler", http.StatusInternalServerError)
	}
}

func HealthCheckHandler(pinger database.DBPinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := pinger.PingContext(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "Health Check fehlgeschlagen: DB nicht erreichbar", slog.Any("error", err))
			http.Error(w, "NOK", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}
