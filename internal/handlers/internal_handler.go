package handlers

import (
	"log/slog"
	"net/http"

	"scrumboard/internal/database"
)

// InternalHandlers bedient den Wartungs-Endpunkt hinter Gatekeeper und
// InternalAuth. Er ist für Monitoring und Betrieb gedacht, nicht für Clients.
type InternalHandlers struct {
	DB       database.DBPinger
	UserRepo database.UserRepository
}

func NewInternalHandlers(db database.DBPinger, userRepo database.UserRepository) *InternalHandlers {
	return &InternalHandlers{
		DB:       db,
		UserRepo: userRepo,
	}
}

// StatusHandler prüft die Datenbankverbindung und liefert die Benutzerzahl.
func (h *InternalHandlers) StatusHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.DB.PingContext(ctx); err != nil {
		slog.ErrorContext(ctx, "[INTERNAL] Datenbank nicht erreichbar", slog.Any("error", err))
		writeJSONResponse(w, map[string]string{"status": "degraded", "database": "unreachable"}, http.StatusServiceUnavailable)
		return
	}

	userCount, err := h.UserRepo.GetUserCount(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "[INTERNAL] Fehler beim Zählen der Benutzer", slog.Any("error", err))
		writeJSONError(w, "Interner Serverfehler", http.StatusInternalServerError)
		return
	}

	writeJSONResponse(w, map[string]interface{}{
		"status":     "ok",
		"database":   "reachable",
		"user_count": userCount,
	}, http.StatusOK)
}
