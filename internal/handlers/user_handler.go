package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"scrumboard/internal/database"
	"scrumboard/internal/logging"
	"scrumboard/internal/models"
)

type UserHandlers struct {
	UserRepo database.UserRepository
}

func NewUserHandlers(userRepo database.UserRepository) *UserHandlers {
	return &UserHandlers{UserRepo: userRepo}
}

func profileFromUser(user *models.User) ProfileResponse {
	resp := ProfileResponse{
		ID:         user.ID,
		Email:      user.Email,
		Username:   user.Username,
		IsAdmin:    user.IsAdmin,
		OTPEnabled: user.OTPEnabled,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
	if user.LastLoginAt.Valid {
		t := user.LastLoginAt.Time
		resp.LastLoginAt = &t
	}
	return resp
}

// GetCurrentUserHandler liefert das Profil des angemeldeten Benutzers.
func (h *UserHandlers) GetCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
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

	writeJSONResponse(w, profileFromUser(user), http.StatusOK)
}

// UpdateCurrentUserHandler ändert E-Mail und Anzeigenamen.
func (h *UserHandlers) UpdateCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	user, err := h.UserRepo.GetUserByID(ctx, userID)
	if err != nil {
		handleGetUserError(ctx, w, err, userID.String())
		return
	}

	if req.Email != user.Email {
		existing, err := h.UserRepo.GetUserByEmail(ctx, req.Email)
		if err == nil && existing != nil {
			writeJSONError(w, "Ein Benutzer mit dieser E-Mail existiert bereits", http.StatusConflict)
			return
		}
	}

	user.Email = req.Email
	user.Username = req.Username
	user.UpdatedAt = time.Now().UTC()

	if err := h.UserRepo.UpdateUser(ctx, user); err != nil {
		slog.ErrorContext(ctx, "Fehler beim Aktualisieren des Profils", slog.Any("error", err))
		writeJSONError(w, "Interner Serverfehler", http.StatusInternalServerError)
		return
	}

	logging.LogAuditEvent(ctx, "USER_PROFILE_UPDATE", logging.AuditSuccess)
	writeJSONResponse(w, profileFromUser(user), http.StatusOK)
}
