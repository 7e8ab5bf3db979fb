package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"scrumboard/internal/logging"
	"scrumboard/internal/scrum"
)

type TaskHandlers struct {
	Tasks *scrum.TaskService
}

func NewTaskHandlers(tasks *scrum.TaskService) *TaskHandlers {
	return &TaskHandlers{Tasks: tasks}
}

func (h *TaskHandlers) CreateTaskHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	storyID, ok := pathUUID(w, r, "storyID")
	if !ok {
		return
	}

	var req CreateTaskRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	task, err := h.Tasks.Create(ctx, userID, storyID, scrum.CreateTaskParams{
		Title:          req.Title,
		Description:    req.Description,
		EstimatedHours: req.EstimatedHours,
	})
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	logging.LogAuditEvent(ctx, "TASK_CREATE", logging.AuditSuccess,
		slog.String("story_id", storyID.String()),
		slog.String("task_id", task.ID.String()),
	)
	writeJSONResponse(w, task, http.StatusCreated)
}

func (h *TaskHandlers) GetTaskHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	taskID, ok := pathUUID(w, r, "taskID")
	if !ok {
		return
	}

	task, err := h.Tasks.Get(ctx, userID, taskID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, task, http.StatusOK)
}

func (h *TaskHandlers) ListStoryTasksHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	storyID, ok := pathUUID(w, r, "storyID")
	if !ok {
		return
	}

	tasks, err := h.Tasks.ListByStory(ctx, userID, storyID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, tasks, http.StatusOK)
}

func (h *TaskHandlers) ListProjectTasksHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	projectID, ok := pathUUID(w, r, "projectID")
	if !ok {
		return
	}

	tasks, err := h.Tasks.ListByProject(ctx, userID, projectID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, tasks, http.StatusOK)
}

func (h *TaskHandlers) UpdateTaskHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	taskID, ok := pathUUID(w, r, "taskID")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	task, err := h.Tasks.Update(ctx, userID, taskID, scrum.UpdateTaskParams{
		Title:          req.Title,
		Description:    req.Description,
		EstimatedHours: req.EstimatedHours,
	})
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	logging.LogAuditEvent(ctx, "TASK_UPDATE", logging.AuditSuccess,
		slog.String("task_id", taskID.String()),
	)
	writeJSONResponse(w, task, http.StatusOK)
}

func (h *TaskHandlers) DeleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	taskID, ok := pathUUID(w, r, "taskID")
	if !ok {
		return
	}

	if err := h.Tasks.Delete(ctx, userID, taskID); err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	logging.LogAuditEvent(ctx, "TASK_DELETE", logging.AuditSuccess,
		slog.String("task_id", taskID.String()),
	)
	w.WriteHeader(http.StatusNoContent)
}

// AssignTaskHandler weist den aufrufenden Benutzer dem Task zu.
func (h *TaskHandlers) AssignTaskHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	taskID, ok := pathUUID(w, r, "taskID")
	if !ok {
		return
	}

	task, err := h.Tasks.Assign(ctx, userID, taskID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	logging.LogAuditEvent(ctx, "TASK_ASSIGN", logging.AuditSuccess,
		slog.String("task_id", taskID.String()),
	)
	writeJSONResponse(w, task, http.StatusOK)
}

func (h *TaskHandlers) UnassignTaskHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	taskID, ok := pathUUID(w, r, "taskID")
	if !ok {
		return
	}

	task, err := h.Tasks.Unassign(ctx, userID, taskID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	logging.LogAuditEvent(ctx, "TASK_UNASSIGN", logging.AuditSuccess,
		slog.String("task_id", taskID.String()),
	)
	writeJSONResponse(w, task, http.StatusOK)
}

func (h *TaskHandlers) StartTaskHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	taskID, ok := pathUUID(w, r, "taskID")
	if !ok {
		return
	}

	task, err := h.Tasks.Start(ctx, userID, taskID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	logging.LogAuditEvent(ctx, "TASK_START", logging.AuditSuccess,
		slog.String("task_id", taskID.String()),
	)
	writeJSONResponse(w, task, http.StatusOK)
}

// StopTaskHandler unterbricht die Arbeit am Task und bucht optional die
// geleisteten Stunden.
func (h *TaskHandlers) StopTaskHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	taskID, ok := pathUUID(w, r, "taskID")
	if !ok {
		return
	}

	var req StopTaskRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	task, err := h.Tasks.Stop(ctx, userID, taskID, req.HoursSpent, req.Description)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	logging.LogAuditEvent(ctx, "TASK_STOP", logging.AuditSuccess,
		slog.String("task_id", taskID.String()),
	)
	writeJSONResponse(w, task, http.StatusOK)
}

func (h *TaskHandlers) CompleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	taskID, ok := pathUUID(w, r, "taskID")
	if !ok {
		return
	}

	var req CompleteTaskRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	task, err := h.Tasks.Complete(ctx, userID, taskID, scrum.CompleteTaskParams{
		EstimatedHours: req.EstimatedHours,
		HoursSpent:     req.HoursSpent,
		Description:    req.Description,
	})
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	logging.LogAuditEvent(ctx, "TASK_COMPLETE", logging.AuditSuccess,
		slog.String("task_id", taskID.String()),
	)
	writeJSONResponse(w, task, http.StatusOK)
}

// StartSessionHandler startet eine Zeiterfassungs-Session. Läuft für den
// Benutzer auf diesem Task bereits eine Session, wird sie zurückgegeben
// statt eine zweite zu öffnen.
func (h *TaskHandlers) StartSessionHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	taskID, ok := pathUUID(w, r, "taskID")
	if !ok {
		return
	}

	session, created, err := h.Tasks.StartSession(ctx, userID, taskID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	resumed := !created

	logging.LogAuditEvent(ctx, "TASK_SESSION_START", logging.AuditSuccess,
		slog.String("task_id", taskID.String()),
		slog.String("session_id", session.ID.String()),
		slog.Bool("resumed", resumed),
	)
	code := http.StatusCreated
	if resumed {
		code = http.StatusOK
	}
	writeJSONResponse(w, StartSessionResponse{
		SessionID: session.ID,
		StartTime: session.StartTime,
		Resumed:   resumed,
	}, code)
}

// OpenSessionHandler liefert die gerade laufende Session des Benutzers
// auf dem Task, oder 404 wenn keine offen ist.
func (h *TaskHandlers) OpenSessionHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	taskID, ok := pathUUID(w, r, "taskID")
	if !ok {
		return
	}

	session, err := h.Tasks.OpenSession(ctx, userID, taskID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, OpenSessionResponse{
		SessionID: session.ID,
		StartTime: session.StartTime,
	}, http.StatusOK)
}

// StopSessionHandler beendet die offene Session und verbucht die Zeit als
// Zeiteintrag. Angebrochene Zeit unter einer halben Stunde wird aufgerundet.
func (h *TaskHandlers) StopSessionHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	taskID, ok := pathUUID(w, r, "taskID")
	if !ok {
		return
	}

	session, timeLog, err := h.Tasks.StopSession(ctx, userID, taskID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	logging.LogAuditEvent(ctx, "TASK_SESSION_STOP", logging.AuditSuccess,
		slog.String("task_id", taskID.String()),
		slog.String("session_id", session.ID.String()),
		slog.Float64("hours_spent", timeLog.HoursSpent),
	)
	writeJSONResponse(w, StopSessionResponse{
		SessionID:  session.ID,
		StartTime:  session.StartTime,
		EndTime:    session.EndTime.Time,
		HoursSpent: timeLog.HoursSpent,
	}, http.StatusOK)
}

func (h *TaskHandlers) CreateTimeLogHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	taskID, ok := pathUUID(w, r, "taskID")
	if !ok {
		return
	}

	var req CreateTimeLogRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	var logDate time.Time
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeJSONError(w, "date muss das Format YYYY-MM-DD haben", http.StatusBadRequest)
			return
		}
		logDate = parsed
	}

	timeLog, err := h.Tasks.LogTime(ctx, userID, taskID, req.HoursSpent, logDate, req.Description)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	logging.LogAuditEvent(ctx, "TIMELOG_CREATE", logging.AuditSuccess,
		slog.String("task_id", taskID.String()),
		slog.Float64("hours_spent", req.HoursSpent),
	)
	writeJSONResponse(w, timeLog, http.StatusCreated)
}

func (h *TaskHandlers) ListTimeLogsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	taskID, ok := pathUUID(w, r, "taskID")
	if !ok {
		return
	}

	logs, err := h.Tasks.ListTimeLogs(ctx, userID, taskID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, logs, http.StatusOK)
}

func (h *TaskHandlers) UpdateTimeLogHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	logID, ok := pathUUID(w, r, "logID")
	if !ok {
		return
	}

	var req UpdateTimeLogRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	timeLog, err := h.Tasks.UpdateTimeLog(ctx, userID, logID, req.HoursSpent, req.Description)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	logging.LogAuditEvent(ctx, "TIMELOG_UPDATE", logging.AuditSuccess,
		slog.String("timelog_id", logID.String()),
	)
	writeJSONResponse(w, timeLog, http.StatusOK)
}

func (h *TaskHandlers) DeleteTimeLogHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	logID, ok := pathUUID(w, r, "logID")
	if !ok {
		return
	}

	if err := h.Tasks.DeleteTimeLog(ctx, userID, logID); err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	logging.LogAuditEvent(ctx, "TIMELOG_DELETE", logging.AuditSuccess,
		slog.String("timelog_id", logID.String()),
	)
	w.WriteHeader(http.StatusNoContent)
}
