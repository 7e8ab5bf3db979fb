package scrum

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"scrumboard/internal/database"
	"scrumboard/internal/models"

	"github.com/google/uuid"
)

// TaskService setzt den Task-Lebenszyklus und die Zeiterfassung um:
// UNASSIGNED → ASSIGNED → IN_PROGRESS → COMPLETED, mit der Rückkante
// ASSIGNED → UNASSIGNED. Ein COMPLETED-Task kann nicht wieder gestartet
// werden.
type TaskService struct {
	Gate  *Gate
	Tasks database.TaskRepository
	now   func() time.Time
}

func NewTaskService(gate *Gate, tasks database.TaskRepository) *TaskService {
	return &TaskService{Gate: gate, Tasks: tasks, now: time.Now}
}

// load löst den Task und sein Projekt auf und prüft die Mitgliedschaft.
func (s *TaskService) load(ctx context.Context, userID, taskID uuid.UUID) (*models.Task, models.Role, error) {
	task, projectID, err := s.Gate.ProjectOfTask(ctx, taskID)
	if err != nil {
		return nil, "", err
	}
	role, err := s.Gate.MemberRole(ctx, projectID, userID)
	if err != nil {
		return nil, "", err
	}
	return task, role, nil
}

// assigneeOrScrumMaster prüft die Regel "Assignee oder Scrum Master".
func assigneeOrScrumMaster(task *models.Task, userID uuid.UUID, role models.Role) error {
	if task.IsAssignedTo(userID) || role == models.RoleScrumMaster {
		return nil
	}
	return ErrForbidden
}

type CreateTaskParams struct {
	Title          string
	Description    string
	EstimatedHours float64
}

// Create legt einen Task unter einer Story an (Scrum Master oder Developer).
func (s *TaskService) Create(ctx context.Context, userID, storyID uuid.UUID, p CreateTaskParams) (*models.Task, error) {
	_, projectID, err := s.Gate.ProjectOfStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Gate.Require(ctx, projectID, userID, ActionCreateTask); err != nil {
		return nil, err
	}

	if strings.TrimSpace(p.Title) == "" {
		return nil, newValidationError("der Titel des Tasks darf nicht leer sein")
	}
	if p.EstimatedHours < 0 {
		return nil, newValidationError("die geschätzten Stunden dürfen nicht negativ sein")
	}

	task := models.NewTask(storyID, p.Title, p.Description, p.EstimatedHours, userID)
	if err := s.Tasks.CreateTask(ctx, task); err != nil {
		if errors.Is(err, database.ErrTaskTitleTaken) {
			return nil, newValidationError("ein Task mit diesem Titel existiert bereits in der Story")
		}
		return nil, err
	}

	slog.InfoContext(ctx, "Task erstellt",
		slog.String("task_id", task.ID.String()),
		slog.String("story_id", storyID.String()),
	)
	return task, nil
}

// Get liefert einen Task für jedes Projektmitglied.
func (s *TaskService) Get(ctx context.Context, userID, taskID uuid.UUID) (*models.Task, error) {
	task, _, err := s.load(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// ListByStory liefert die Tasks einer Story.
func (s *TaskService) ListByStory(ctx context.Context, userID, storyID uuid.UUID) ([]*models.Task, error) {
	_, projectID, err := s.Gate.ProjectOfStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Gate.Require(ctx, projectID, userID, ActionView); err != nil {
		return nil, err
	}
	return s.Tasks.ListTasksByStory(ctx, storyID)
}

// ListByProject liefert alle Tasks eines Projekts über alle Stories hinweg.
func (s *TaskService) ListByProject(ctx context.Context, userID, projectID uuid.UUID) ([]*models.Task, error) {
	if _, err := s.Gate.Require(ctx, projectID, userID, ActionView); err != nil {
		return nil, err
	}
	return s.Tasks.ListTasksByProject(ctx, projectID)
}

type UpdateTaskParams struct {
	Title          *string
	Description    *string
	EstimatedHours *float64
}

// Update ändert Stammdaten des Tasks (Assignee oder Scrum Master).
// Eine geänderte Schätzung verschiebt remaining_hours um die Differenz,
// bereits verbuchte Zeit bleibt abgezogen; das Ergebnis wird bei null
// gekappt.
func (s *TaskService) Update(ctx context.Context, userID, taskID uuid.UUID, p UpdateTaskParams) (*models.Task, error) {
	task, role, err := s.load(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if err := assigneeOrScrumMaster(task, userID, role); err != nil {
		return nil, err
	}

	if p.Title != nil {
		if strings.TrimSpace(*p.Title) == "" {
			return nil, newValidationError("der Titel des Tasks darf nicht leer sein")
		}
		task.Title = *p.Title
	}
	if p.Description != nil {
		task.Description = *p.Description
	}
	if p.EstimatedHours != nil {
		if *p.EstimatedHours < 0 {
			return nil, newValidationError("die geschätzten Stunden dürfen nicht negativ sein")
		}
		delta := *p.EstimatedHours - task.EstimatedHours
		task.EstimatedHours = *p.EstimatedHours
		if task.Status != models.TaskCompleted {
			task.RemainingHours += delta
			if task.RemainingHours < 0 {
				task.RemainingHours = 0
			}
		}
	}

	if err := s.Tasks.UpdateTask(ctx, task); err != nil {
		if errors.Is(err, database.ErrTaskTitleTaken) {
			return nil, newValidationError("ein Task mit diesem Titel existiert bereits in der Story")
		}
		if errors.Is(err, database.ErrTaskNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return task, nil
}

// Delete markiert den Task als gelöscht (Assignee oder Scrum Master).
func (s *TaskService) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	task, role, err := s.load(ctx, userID, taskID)
	if err != nil {
		return err
	}
	if err := assigneeOrScrumMaster(task, userID, role); err != nil {
		return err
	}
	if err := s.Tasks.SoftDeleteTask(ctx, taskID); err != nil {
		if errors.Is(err, database.ErrTaskNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Assign weist den Task dem Aufrufer selbst zu (Scrum Master oder
// Developer). Ein bereits fremd zugewiesener Task wird abgelehnt.
func (s *TaskService) Assign(ctx context.Context, userID, taskID uuid.UUID) (*models.Task, error) {
	task, role, err := s.load(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if !Allowed(role, ActionCreateTask) {
		return nil, ErrForbidden
	}

	if task.Status == models.TaskCompleted {
		return nil, newValidationError("ein abgeschlossener Task kann nicht zugewiesen werden")
	}
	if task.AssignedTo.Valid && task.AssignedTo.UUID != userID {
		return nil, newValidationError("der Task ist bereits einem anderen Benutzer zugewiesen")
	}

	task.AssignedTo = uuid.NullUUID{UUID: userID, Valid: true}
	if task.Status == models.TaskUnassigned {
		task.Status = models.TaskAssigned
	}
	if err := s.Tasks.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Task zugewiesen",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", userID.String()),
	)
	return task, nil
}

// Unassign löst die Zuweisung (Assignee oder Scrum Master) und setzt
// den Status auf UNASSIGNED zurück.
func (s *TaskService) Unassign(ctx context.Context, userID, taskID uuid.UUID) (*models.Task, error) {
	task, role, err := s.load(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if err := assigneeOrScrumMaster(task, userID, role); err != nil {
		return nil, err
	}
	if task.Status == models.TaskCompleted {
		return nil, newValidationError("die Zuweisung eines abgeschlossenen Tasks kann nicht gelöst werden")
	}

	task.AssignedTo = uuid.NullUUID{}
	task.Status = models.TaskUnassigned
	if err := s.Tasks.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Start setzt den Task auf IN_PROGRESS (nur der aktuelle Assignee).
func (s *TaskService) Start(ctx context.Context, userID, taskID uuid.UUID) (*models.Task, error) {
	task, _, err := s.load(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsAssignedTo(userID) {
		return nil, ErrForbidden
	}
	if task.Status == models.TaskCompleted {
		return nil, newValidationError("ein abgeschlossener Task kann nicht wieder gestartet werden")
	}

	task.Status = models.TaskInProgress
	if err := s.Tasks.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Stop unterbricht die Arbeit am Task (nur der Assignee): Status zurück
// auf ASSIGNED, optional mit manueller Buchung der geleisteten Stunden.
func (s *TaskService) Stop(ctx context.Context, userID, taskID uuid.UUID, hours *float64, description string) (*models.Task, error) {
	task, _, err := s.load(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsAssignedTo(userID) {
		return nil, ErrForbidden
	}
	if task.Status != models.TaskInProgress {
		return nil, newValidationError("nur ein laufender Task kann gestoppt werden")
	}

	if hours != nil {
		if *hours <= 0 {
			return nil, newValidationError("die gebuchten Stunden müssen größer als null sein")
		}
		entry := models.NewTimeLog(taskID, userID, *hours, s.now(), description)
		if err := s.Tasks.InsertTimeLog(ctx, entry); err != nil {
			return nil, err
		}
	}

	task.Status = models.TaskAssigned
	if err := s.Tasks.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	return s.Tasks.GetTaskByID(ctx, taskID)
}

type CompleteTaskParams struct {
	// Optionale finale Neuschätzung der Gesamtstunden.
	EstimatedHours *float64
	// Optionale abschließende manuelle Buchung.
	HoursSpent  *float64
	Description string
}

// Complete schließt den Task ab (Assignee oder Scrum Master): Status
// COMPLETED, remaining_hours = 0. Optional werden Schätzung und ein
// letzter Zeiteintrag übernommen.
func (s *TaskService) Complete(ctx context.Context, userID, taskID uuid.UUID, p CompleteTaskParams) (*models.Task, error) {
	task, role, err := s.load(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if err := assigneeOrScrumMaster(task, userID, role); err != nil {
		return nil, err
	}

	if p.EstimatedHours != nil {
		if *p.EstimatedHours < 0 {
			return nil, newValidationError("die geschätzten Stunden dürfen nicht negativ sein")
		}
		task.EstimatedHours = *p.EstimatedHours
	}
	if p.HoursSpent != nil {
		if *p.HoursSpent <= 0 {
			return nil, newValidationError("die gebuchten Stunden müssen größer als null sein")
		}
		entry := models.NewTimeLog(taskID, userID, *p.HoursSpent, s.now(), p.Description)
		if err := s.Tasks.InsertTimeLog(ctx, entry); err != nil {
			return nil, err
		}
	}

	task.Status = models.TaskCompleted
	task.RemainingHours = 0
	if err := s.Tasks.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Task abgeschlossen", slog.String("task_id", taskID.String()))
	return task, nil
}

// StartSession öffnet eine Arbeits-Session auf dem Task (nur der
// aktuelle Assignee). Existiert für (Task, Benutzer) bereits eine
// offene Session, wird genau diese zurückgegeben statt eine zweite zu
// öffnen.
func (s *TaskService) StartSession(ctx context.Context, userID, taskID uuid.UUID) (*models.TaskSession, bool, error) {
	task, _, err := s.load(ctx, userID, taskID)
	if err != nil {
		return nil, false, err
	}
	if !task.IsAssignedTo(userID) {
		return nil, false, ErrForbidden
	}
	if task.Status == models.TaskCompleted {
		return nil, false, newValidationError("auf einem abgeschlossenen Task kann keine Session gestartet werden")
	}

	session, created, err := s.Tasks.StartSession(ctx, taskID, userID)
	if err != nil {
		return nil, false, err
	}
	if created {
		slog.InfoContext(ctx, "Session gestartet",
			slog.String("task_id", taskID.String()),
			slog.String("session_id", session.ID.String()),
		)
	}
	return session, created, nil
}

// OpenSession liefert die offene Session des Aufrufers auf dem Task,
// oder ErrNotFound wenn gerade keine läuft.
func (s *TaskService) OpenSession(ctx context.Context, userID, taskID uuid.UUID) (*models.TaskSession, error) {
	if _, _, err := s.load(ctx, userID, taskID); err != nil {
		return nil, err
	}
	session, err := s.Tasks.GetOpenSession(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, database.ErrNoOpenSession) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return session, nil
}

// StopSession schließt die offene Session des Aufrufers auf dem Task.
// Die Dauer wird als TimeLog verbucht, mindestens 0,5 Stunden.
func (s *TaskService) StopSession(ctx context.Context, userID, taskID uuid.UUID) (*models.TaskSession, *models.TimeLog, error) {
	task, _, err := s.load(ctx, userID, taskID)
	if err != nil {
		return nil, nil, err
	}
	if !task.IsAssignedTo(userID) {
		return nil, nil, ErrForbidden
	}

	session, entry, err := s.Tasks.StopOpenSession(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, database.ErrNoOpenSession) {
			return nil, nil, newValidationError("es gibt keine offene Session auf diesem Task")
		}
		return nil, nil, err
	}
	slog.InfoContext(ctx, "Session gestoppt",
		slog.String("task_id", taskID.String()),
		slog.String("session_id", session.ID.String()),
		slog.Float64("hours", entry.HoursSpent),
	)
	return session, entry, nil
}

// LogTime erfasst manuell Zeit auf dem Task (nur der aktuelle Assignee).
func (s *TaskService) LogTime(ctx context.Context, userID, taskID uuid.UUID, hours float64, date time.Time, description string) (*models.TimeLog, error) {
	task, _, err := s.load(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsAssignedTo(userID) {
		return nil, ErrForbidden
	}
	if hours <= 0 {
		return nil, newValidationError("die gebuchten Stunden müssen größer als null sein")
	}
	if date.IsZero() {
		date = s.now()
	}

	entry := models.NewTimeLog(taskID, userID, hours, date, description)
	if err := s.Tasks.InsertTimeLog(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListTimeLogs liefert die Zeiteinträge eines Tasks.
func (s *TaskService) ListTimeLogs(ctx context.Context, userID, taskID uuid.UUID) ([]*models.TimeLog, error) {
	_, _, err := s.load(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	return s.Tasks.ListTimeLogsByTask(ctx, taskID)
}

// loadTimeLog löst den Zeiteintrag samt Task und Rolle auf.
func (s *TaskService) loadTimeLog(ctx context.Context, userID, logID uuid.UUID) (*models.TimeLog, models.Role, error) {
	entry, err := s.Tasks.GetTimeLogByID(ctx, logID)
	if err != nil {
		if errors.Is(err, database.ErrTimeLogNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	_, role, err := s.load(ctx, userID, entry.TaskID)
	if err != nil {
		return nil, "", err
	}
	return entry, role, nil
}

// UpdateTimeLog korrigiert einen Zeiteintrag (Eigentümer des Eintrags
// oder Scrum Master); remaining_hours wird neu berechnet.
func (s *TaskService) UpdateTimeLog(ctx context.Context, userID, logID uuid.UUID, hours float64, description string) (*models.TimeLog, error) {
	entry, role, err := s.loadTimeLog(ctx, userID, logID)
	if err != nil {
		return nil, err
	}
	if entry.UserID != userID && role != models.RoleScrumMaster {
		return nil, ErrForbidden
	}
	if hours <= 0 {
		return nil, newValidationError("die gebuchten Stunden müssen größer als null sein")
	}

	entry.HoursSpent = hours
	entry.Description = description
	if err := s.Tasks.UpdateTimeLog(ctx, entry); err != nil {
		if errors.Is(err, database.ErrTimeLogNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return entry, nil
}

// DeleteTimeLog entfernt einen Zeiteintrag (Eigentümer oder Scrum
// Master); seine Wirkung auf remaining_hours wird zurückgenommen.
func (s *TaskService) DeleteTimeLog(ctx context.Context, userID, logID uuid.UUID) error {
	entry, role, err := s.loadTimeLog(ctx, userID, logID)
	if err != nil {
		return err
	}
	if entry.UserID != userID && role != models.RoleScrumMaster {
		return ErrForbidden
	}
	if err := s.Tasks.DeleteTimeLog(ctx, logID); err != nil {
		if errors.Is(err, database.ErrTimeLogNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
