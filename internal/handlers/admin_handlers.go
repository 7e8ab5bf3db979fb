package handlers

import (
	"log/slog"
	"net/http"

	"scrumboard/internal/database"
)

type AdminHandlers struct {
	UserRepo database.UserRepository
}

func NewAdminHandlers(userRepo database.UserRepository) *AdminHandlers {
	return &AdminHandlers{UserRepo: userRepo}
}

// OnlyAdmin lässt nur Benutzer mit Admin-Flag durch. Das Flag wird aus der
// Datenbank gelesen, nicht aus dem Token, damit ein Entzug sofort greift.
func (h *AdminHandlers) OnlyAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
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
		if !user.IsAdmin {
			slog.WarnContext(ctx, "Zugriff auf Admin-Endpunkt ohne Admin-Rechte",
				slog.String("user_id", userID.String()),
			)
			writeJSONError(w, "Keine Berechtigung für diese Aktion", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ListUsersHandler liefert alle Benutzerkonten der Installation.
func (h *AdminHandlers) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.UserRepo.ListUsers(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Laden der Benutzerliste", slog.Any("error", err))
		writeJSONError(w, "Interner Serverfehler", http.StatusInternalServerError)
		return
	}

	profiles := make([]ProfileResponse, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, profileFromUser(u))
	}
	writeJSONResponse(w, profiles, http.StatusOK)
}
