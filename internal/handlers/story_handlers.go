package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"scrumboard/internal/logging"
	"scrumboard/internal/models"
	"scrumboard/internal/scrum"
)

type StoryHandlers struct {
	Stories *scrum.StoryService
}

func NewStoryHandlers(stories *scrum.StoryService) *StoryHandlers {
	return &StoryHandlers{Stories: stories}
}

func (h *StoryHandlers) CreateStoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	projectID, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}

	var req CreateStoryRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	story, err := h.Stories.Create(ctx, userID, projectID, scrum.CreateStoryParams{
		Name:               req.Name,
		Description:        req.Description,
		AcceptanceCriteria: req.AcceptanceCriteria,
		Priority:           models.Priority(req.Priority),
		BusinessValue:      req.BusinessValue,
	})
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	logging.LogAuditEvent(ctx, "STORY_CREATE", logging.AuditSuccess,
		slog.String("project_id", projectID.String()),
		slog.String("story_id", story.ID.String()),
	)
	writeJSONResponse(w, story, http.StatusCreated)
}

func (h *StoryHandlers) GetStoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	storyID, ok := pathUUID(w, r, "storyID")
	if !ok {
		return
	}

	story, err := h.Stories.Get(ctx, userID, storyID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, story, http.StatusOK)
}

// ListStoriesHandler liefert alle Stories eines Projekts. Mit ?backlog=true
// werden nur Stories ohne Sprint-Zuordnung geliefert.
func (h *StoryHandlers) ListStoriesHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	projectID, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}

	backlogOnly := r.URL.Query().Get("backlog") == "true"
	stories, err := h.Stories.List(ctx, userID, projectID, backlogOnly)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, stories, http.StatusOK)
}

func (h *StoryHandlers) ListSprintStoriesHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	sprintID, ok := pathUUID(w, r, "sprintID")
	if !ok {
		return
	}

	stories, err := h.Stories.ListBySprint(ctx, userID, sprintID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, stories, http.StatusOK)
}

func (h *StoryHandlers) UpdateStoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	storyID, ok := pathUUID(w, r, "storyID")
	if !ok {
		return
	}

	var req UpdateStoryRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	params := scrum.UpdateStoryParams{
		Name:               req.Name,
		Description:        req.Description,
		AcceptanceCriteria: req.AcceptanceCriteria,
		BusinessValue:      req.BusinessValue,
	}
	if req.Priority != nil {
		p := models.Priority(*req.Priority)
		params.Priority = &p
	}

	story, err := h.Stories.Update(ctx, userID, storyID, params)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	logging.LogAuditEvent(ctx, "STORY_UPDATE", logging.AuditSuccess,
		slog.String("story_id", storyID.String()),
	)
	writeJSONResponse(w, story, http.StatusOK)
}

// EstimateStoryHandler setzt die Story Points. Das darf nur der Scrum
// Master, und nur solange die Story keinem Sprint zugeordnet ist.
func (h *StoryHandlers) EstimateStoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	storyID, ok := pathUUID(w, r, "storyID")
	if !ok {
		return
	}

	var req EstimateStoryRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	story, err := h.Stories.Estimate(ctx, userID, storyID, req.StoryPoints)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	logging.LogAuditEvent(ctx, "STORY_ESTIMATE", logging.AuditSuccess,
		slog.String("story_id", storyID.String()),
		slog.Int("story_points", req.StoryPoints),
	)
	writeJSONResponse(w, story, http.StatusOK)
}

func (h *StoryHandlers) UpdateStoryStatusHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	storyID, ok := pathUUID(w, r, "storyID")
	if !ok {
		return
	}

	var req UpdateStoryStatusRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	story, err := h.Stories.UpdateStatus(ctx, userID, storyID, models.StoryStatus(req.Status))
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	logging.LogAuditEvent(ctx, "STORY_STATUS_UPDATE", logging.AuditSuccess,
		slog.String("story_id", storyID.String()),
		slog.String("status", req.Status),
	)
	writeJSONResponse(w, story, http.StatusOK)
}

// AddStoriesToSprintHandler ordnet mehrere Stories einem Sprint zu. Der
// Batch ist atomar: scheitert eine Story, wird keine zugeordnet.
func (h *StoryHandlers) AddStoriesToSprintHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	sprintID, ok := pathUUID(w, r, "sprintID")
	if !ok {
		return
	}

	var req AddStoriesToSprintRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	storyIDs := make([]uuid.UUID, 0, len(req.StoryIDs))
	for _, raw := range req.StoryIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeJSONError(w, "story_ids enthält eine ungültige UUID: "+raw, http.StatusBadRequest)
			return
		}
		storyIDs = append(storyIDs, id)
	}

	if err := h.Stories.AddToSprint(ctx, userID, sprintID, storyIDs); err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	logging.LogAuditEvent(ctx, "SPRINT_STORIES_ADD", logging.AuditSuccess,
		slog.String("sprint_id", sprintID.String()),
		slog.Int("count", len(storyIDs)),
	)
	w.WriteHeader(http.StatusNoContent)
}

func (h *StoryHandlers) RemoveStoryFromSprintHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	storyID, ok := pathUUID(w, r, "storyID")
	if !ok {
		return
	}

	if err := h.Stories.RemoveFromSprint(ctx, userID, storyID); err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	logging.LogAuditEvent(ctx, "SPRINT_STORY_REMOVE", logging.AuditSuccess,
		slog.String("story_id", storyID.String()),
	)
	w.WriteHeader(http.StatusNoContent)
}

func (h *StoryHandlers) DeleteStoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	storyID, ok := pathUUID(w, r, "storyID")
	if !ok {
		return
	}

	if err := h.Stories.Delete(ctx, userID, storyID); err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	logging.LogAuditEvent(ctx, "STORY_DELETE", logging.AuditSuccess,
		slog.String("story_id", storyID.String()),
	)
	w.WriteHeader(http.StatusNoContent)
}

func (h *StoryHandlers) AddStoryCommentHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	storyID, ok := pathUUID(w, r, "storyID")
	if !ok {
		return
	}

	var req CommentRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	comment, err := h.Stories.AddComment(ctx, userID, storyID, req.Content)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, comment, http.StatusCreated)
}

func (h *StoryHandlers) ListStoryCommentsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	storyID, ok := pathUUID(w, r, "storyID")
	if !ok {
		return
	}

	comments, err := h.Stories.ListComments(ctx, userID, storyID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, comments, http.StatusOK)
}
