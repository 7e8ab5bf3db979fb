package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"scrumboard/internal/logging"
	"scrumboard/internal/scrum"
)

type SprintHandlers struct {
	Sprints *scrum.SprintService
}

func NewSprintHandlers(sprints *scrum.SprintService) *SprintHandlers {
	return &SprintHandlers{Sprints: sprints}
}

// sprintDateLayout ist das Format der Sprint-Datumsfelder im API.
const sprintDateLayout = "2006-01-02"

func parseSprintDate(w http.ResponseWriter, field, value string) (time.Time, bool) {
	t, err := time.Parse(sprintDateLayout, value)
	if err != nil {
		writeJSONError(w, field+" muss das Format YYYY-MM-DD haben", http.StatusBadRequest)
		return time.Time{}, false
	}
	return t, true
}

func (h *SprintHandlers) CreateSprintHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	projectID, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}

	var req CreateSprintRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	start, ok := parseSprintDate(w, "start_date", req.StartDate)
	if !ok {
		return
	}
	end, ok := parseSprintDate(w, "end_date", req.EndDate)
	if !ok {
		return
	}

	sprint, err := h.Sprints.Create(ctx, userID, projectID, scrum.CreateSprintParams{
		StartDate: start,
		EndDate:   end,
		Velocity:  req.Velocity,
	})
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	logging.LogAuditEvent(ctx, "SPRINT_CREATE", logging.AuditSuccess,
		slog.String("project_id", projectID.String()),
		slog.String("sprint_id", sprint.ID.String()),
	)
	writeJSONResponse(w, sprint, http.StatusCreated)
}

func (h *SprintHandlers) GetSprintHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	sprintID, ok := pathUUID(w, r, "sprintID")
	if !ok {
		return
	}

	sprint, err := h.Sprints.Get(ctx, userID, sprintID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, sprint, http.StatusOK)
}

func (h *SprintHandlers) ListSprintsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	projectID, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}

	sprints, err := h.Sprints.List(ctx, userID, projectID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, sprints, http.StatusOK)
}

// ActiveSprintHandler liefert den heute laufenden Sprint oder 404.
func (h *SprintHandlers) ActiveSprintHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	projectID, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}

	sprint, err := h.Sprints.Active(ctx, userID, projectID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, sprint, http.StatusOK)
}

// UpcomingSprintHandler liefert den nächsten geplanten Sprint oder 404.
func (h *SprintHandlers) UpcomingSprintHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	projectID, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}

	sprint, err := h.Sprints.Upcoming(ctx, userID, projectID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, sprint, http.StatusOK)
}

func (h *SprintHandlers) UpdateSprintHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	sprintID, ok := pathUUID(w, r, "sprintID")
	if !ok {
		return
	}

	var req UpdateSprintRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	params := scrum.UpdateSprintParams{Velocity: req.Velocity}
	if req.StartDate != nil {
		start, ok := parseSprintDate(w, "start_date", *req.StartDate)
		if !ok {
			return
		}
		params.StartDate = &start
	}
	if req.EndDate != nil {
		end, ok := parseSprintDate(w, "end_date", *req.EndDate)
		if !ok {
			return
		}
		params.EndDate = &end
	}

	sprint, err := h.Sprints.Update(ctx, userID, sprintID, params)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	logging.LogAuditEvent(ctx, "SPRINT_UPDATE", logging.AuditSuccess,
		slog.String("sprint_id", sprintID.String()),
	)
	writeJSONResponse(w, sprint, http.StatusOK)
}

func (h *SprintHandlers) DeleteSprintHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	sprintID, ok := pathUUID(w, r, "sprintID")
	if !ok {
		return
	}

	if err := h.Sprints.Delete(ctx, userID, sprintID); err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	logging.LogAuditEvent(ctx, "SPRINT_DELETE", logging.AuditSuccess,
		slog.String("sprint_id", sprintID.String()),
	)
	w.WriteHeader(http.StatusNoContent)
}

// FinishSprintHandler schließt einen Sprint ab. Das geht nur, wenn alle
// zugeordneten Stories abgenommen oder abgelehnt sind.
func (h *SprintHandlers) FinishSprintHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	sprintID, ok := pathUUID(w, r, "sprintID")
	if !ok {
		return
	}

	sprint, err := h.Sprints.Finish(ctx, userID, sprintID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	logging.LogAuditEvent(ctx, "SPRINT_FINISH", logging.AuditSuccess,
		slog.String("sprint_id", sprintID.String()),
	)
	writeJSONResponse(w, sprint, http.StatusOK)
}
