package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"scrumboard/internal/logging"
	"scrumboard/internal/models"
	"scrumboard/internal/scrum"
)

type ProjectHandlers struct {
	Projects *scrum.ProjectService
}

func NewProjectHandlers(projects *scrum.ProjectService) *ProjectHandlers {
	return &ProjectHandlers{Projects: projects}
}

// CreateProjectHandler legt ein Projekt an. Der Ersteller wird Product Owner,
// der benannte Benutzer Scrum Master.
func (h *ProjectHandlers) CreateProjectHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}

	var req CreateProjectRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	smID, err := uuid.Parse(req.ScrumMasterID)
	if err != nil {
		writeJSONError(w, "scrum_master_id ist keine gültige UUID", http.StatusBadRequest)
		return
	}

	project, err := h.Projects.Create(ctx, userID, scrum.CreateProjectParams{
		Name:          req.Name,
		Description:   req.Description,
		ScrumMasterID: smID,
	})
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	logging.LogAuditEvent(ctx, "PROJECT_CREATE", logging.AuditSuccess,
		slog.String("project_id", project.ID.String()),
		slog.String("name", project.Name),
	)
	writeJSONResponse(w, project, http.StatusCreated)
}

func (h *ProjectHandlers) GetProjectHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	projectID, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}

	project, err := h.Projects.Get(ctx, userID, projectID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, project, http.StatusOK)
}

func (h *ProjectHandlers) ListProjectsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}

	projects, err := h.Projects.ListMine(ctx, userID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, projects, http.StatusOK)
}

func (h *ProjectHandlers) UpdateProjectHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	projectID, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	project, err := h.Projects.Update(ctx, userID, projectID, scrum.UpdateProjectParams{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	logging.LogAuditEvent(ctx, "PROJECT_UPDATE", logging.AuditSuccess,
		slog.String("project_id", projectID.String()),
	)
	writeJSONResponse(w, project, http.StatusOK)
}

func (h *ProjectHandlers) AddMemberHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	projectID, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}

	var req AddMemberRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	newUserID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeJSONError(w, "user_id ist keine gültige UUID", http.StatusBadRequest)
		return
	}

	member, err := h.Projects.AddMember(ctx, userID, projectID, newUserID, models.Role(req.Role))
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	logging.LogAuditEvent(ctx, "PROJECT_MEMBER_ADD", logging.AuditSuccess,
		slog.String("project_id", projectID.String()),
		slog.String("member_id", newUserID.String()),
		slog.String("role", req.Role),
	)
	writeJSONResponse(w, member, http.StatusCreated)
}

func (h *ProjectHandlers) ListMembersHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	projectID, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}

	members, err := h.Projects.ListMembers(ctx, userID, projectID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, members, http.StatusOK)
}

func (h *ProjectHandlers) UpdateMemberRoleHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	projectID, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}
	memberID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}

	var req UpdateMemberRoleRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if err := h.Projects.UpdateMemberRole(ctx, userID, projectID, memberID, models.Role(req.Role)); err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	logging.LogAuditEvent(ctx, "PROJECT_MEMBER_ROLE_UPDATE", logging.AuditSuccess,
		slog.String("project_id", projectID.String()),
		slog.String("member_id", memberID.String()),
		slog.String("role", req.Role),
	)
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProjectHandlers) RemoveMemberHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	projectID, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}
	memberID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}

	if err := h.Projects.RemoveMember(ctx, userID, projectID, memberID); err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	logging.LogAuditEvent(ctx, "PROJECT_MEMBER_REMOVE", logging.AuditSuccess,
		slog.String("project_id", projectID.String()),
		slog.String("member_id", memberID.String()),
	)
	w.WriteHeader(http.StatusNoContent)
}
