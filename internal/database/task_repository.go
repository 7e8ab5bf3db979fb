package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"scrumboard/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// CreateTask fügt einen Task ein. Titel-Eindeutigkeit pro Story über den
// Unique-Index (story_id, title).
func (r *sqlxRepository) CreateTask(ctx context.Context, task *models.Task) error {
	query := `INSERT INTO tasks
	           (id, story_id, title, description, status, estimated_hours, remaining_hours,
	            assigned_to, created_by, is_deleted, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		task.ID.String(), task.StoryID.String(), task.Title, task.Description, task.Status,
		task.EstimatedHours, task.RemainingHours,
		task.AssignedTo, task.CreatedBy, task.Deleted,
		task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrTaskTitleTaken
		}
		slog.ErrorContext(ctx, "Fehler beim Einfügen des Tasks", slog.Any("error", err), slog.String("story_id", task.StoryID.String()))
		return err
	}
	slog.DebugContext(ctx, "Task erfolgreich erstellt", slog.String("task_id", task.ID.String()))
	return nil
}

// GetTaskByID liefert keine gelöschten Tasks.
func (r *sqlxRepository) GetTaskByID(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	var task models.Task
	query := `SELECT * FROM tasks WHERE id = ? AND is_deleted = FALSE LIMIT 1`

	err := r.db.GetContext(ctx, &task, query, taskID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		slog.ErrorContext(ctx, "Fehler beim Abrufen des Tasks", slog.Any("error", err), slog.String("task_id", taskID.String()))
		return nil, err
	}
	return &task, nil
}

func (r *sqlxRepository) ListTasksByStory(ctx context.Context, storyID uuid.UUID) ([]*models.Task, error) {
	var tasks []*models.Task
	query := `SELECT * FROM tasks WHERE story_id = ? AND is_deleted = FALSE ORDER BY created_at`

	err := r.db.SelectContext(ctx, &tasks, query, storyID.String())
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Auflisten der Tasks", slog.Any("error", err), slog.String("story_id", storyID.String()))
		return nil, err
	}
	return tasks, nil
}

// ListTasksByProject sammelt alle Tasks über die Stories des Projekts.
func (r *sqlxRepository) ListTasksByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Task, error) {
	var tasks []*models.Task
	query := `SELECT t.* FROM tasks t
	           JOIN user_stories s ON s.id = t.story_id
	           WHERE s.project_id = ? AND t.is_deleted = FALSE AND s.is_deleted = FALSE
	           ORDER BY t.created_at`

	err := r.db.SelectContext(ctx, &tasks, query, projectID.String())
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Auflisten der Projekt-Tasks", slog.Any("error", err), slog.String("project_id", projectID.String()))
		return nil, err
	}
	return tasks, nil
}

func (r *sqlxRepository) UpdateTask(ctx context.Context, task *models.Task) error {
	query := `UPDATE tasks
	           SET title = ?, description = ?, status = ?, estimated_hours = ?,
	               remaining_hours = ?, assigned_to = ?, updated_at = ?
	           WHERE id = ? AND is_deleted = FALSE`

	task.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, query,
		task.Title, task.Description, task.Status, task.EstimatedHours,
		task.RemainingHours, task.AssignedTo, task.UpdatedAt,
		task.ID.String(),
	)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrTaskTitleTaken
		}
		slog.ErrorContext(ctx, "Fehler beim Aktualisieren des Tasks", slog.Any("error", err), slog.String("task_id", task.ID.String()))
		return err
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *sqlxRepository) SoftDeleteTask(ctx context.Context, taskID uuid.UUID) error {
	query := `UPDATE tasks SET is_deleted = TRUE, updated_at = ? WHERE id = ? AND is_deleted = FALSE`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), taskID.String())
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Löschen des Tasks", slog.Any("error", err), slog.String("task_id", taskID.String()))
		return err
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrTaskNotFound
	}
	slog.DebugContext(ctx, "Task als gelöscht markiert", slog.String("task_id", taskID.String()))
	return nil
}

// recalcRemainingHours stellt die Invariante
// remaining = max(0, estimated − SUM(hours_spent)) wieder her.
// Muss in derselben Transaktion wie die TimeLog-Mutation laufen.
func recalcRemainingHours(ctx context.Context, tx *sqlx.Tx, taskID uuid.UUID) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE tasks
		  SET remaining_hours = GREATEST(0, estimated_hours - COALESCE(
		        (SELECT SUM(hours_spent) FROM time_logs WHERE task_id = tasks.id), 0)),
		      updated_at = ?
		  WHERE id = ? AND status <> ?`,
		time.Now().UTC(), taskID.String(), models.TaskCompleted,
	)
	return err
}

func (r *sqlxRepository) InsertTimeLog(ctx context.Context, log *models.TimeLog) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("fehler beim Starten der Transaktion: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO time_logs (id, task_id, user_id, hours_spent, log_date, description, created_at, updated_at)
		  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID.String(), log.TaskID.String(), log.UserID.String(),
		log.HoursSpent, log.Date, log.Description, log.CreatedAt, log.UpdatedAt,
	)
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Einfügen des Zeiteintrags", slog.Any("error", err), slog.String("task_id", log.TaskID.String()))
		return err
	}

	if err := recalcRemainingHours(ctx, tx, log.TaskID); err != nil {
		slog.ErrorContext(ctx, "Fehler beim Neuberechnen der Reststunden", slog.Any("error", err), slog.String("task_id", log.TaskID.String()))
		return err
	}

	return tx.Commit()
}

func (r *sqlxRepository) GetTimeLogByID(ctx context.Context, logID uuid.UUID) (*models.TimeLog, error) {
	var log models.TimeLog
	query := `SELECT * FROM time_logs WHERE id = ? LIMIT 1`

	err := r.db.GetContext(ctx, &log, query, logID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTimeLogNotFound
		}
		slog.ErrorContext(ctx, "Fehler beim Abrufen des Zeiteintrags", slog.Any("error", err), slog.String("log_id", logID.String()))
		return nil, err
	}
	return &log, nil
}

func (r *sqlxRepository) ListTimeLogsByTask(ctx context.Context, taskID uuid.UUID) ([]*models.TimeLog, error) {
	var logs []*models.TimeLog
	query := `SELECT * FROM time_logs WHERE task_id = ? ORDER BY log_date DESC, created_at DESC`

	err := r.db.SelectContext(ctx, &logs, query, taskID.String())
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Auflisten der Zeiteinträge", slog.Any("error", err), slog.String("task_id", taskID.String()))
		return nil, err
	}
	return logs, nil
}

// UpdateTimeLog schreibt den Eintrag und berechnet die Reststunden des
// Tasks in derselben Transaktion neu (alte Wirkung wird damit rückgängig).
func (r *sqlxRepository) UpdateTimeLog(ctx context.Context, log *models.TimeLog) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("fehler beim Starten der Transaktion: %w", err)
	}
	defer tx.Rollback()

	log.UpdatedAt = time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		`UPDATE time_logs SET hours_spent = ?, log_date = ?, description = ?, updated_at = ? WHERE id = ?`,
		log.HoursSpent, log.Date, log.Description, log.UpdatedAt, log.ID.String(),
	)
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Aktualisieren des Zeiteintrags", slog.Any("error", err), slog.String("log_id", log.ID.String()))
		return err
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrTimeLogNotFound
	}

	if err := recalcRemainingHours(ctx, tx, log.TaskID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *sqlxRepository) DeleteTimeLog(ctx context.Context, logID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("fehler beim Starten der Transaktion: %w", err)
	}
	defer tx.Rollback()

	var taskIDStr string
	err = tx.GetContext(ctx, &taskIDStr, `SELECT task_id FROM time_logs WHERE id = ? FOR UPDATE`, logID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTimeLogNotFound
		}
		return err
	}
	taskID, err := uuid.Parse(taskIDStr)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM time_logs WHERE id = ?`, logID.String())
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Löschen des Zeiteintrags", slog.Any("error", err), slog.String("log_id", logID.String()))
		return err
	}

	if err := recalcRemainingHours(ctx, tx, taskID); err != nil {
		return err
	}

	return tx.Commit()
}

// StartSession ist idempotent. Die offene Session wird in der Transaktion
// gesperrt (FOR UPDATE), damit zwei parallele Starts nicht zwei offene
// Sessions erzeugen; zusätzlich sichert der Unique-Index auf
// (task_id, user_id, open_flag) die Invariante auf DB-Ebene.
func (r *sqlxRepository) StartSession(ctx context.Context, taskID, userID uuid.UUID) (*models.TaskSession, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("fehler beim Starten der Transaktion: %w", err)
	}
	defer tx.Rollback()

	var existing models.TaskSession
	err = tx.GetContext(ctx, &existing,
		`SELECT id, task_id, user_id, start_time, end_time, created_at FROM task_sessions
		  WHERE task_id = ? AND user_id = ? AND end_time IS NULL LIMIT 1 FOR UPDATE`,
		taskID.String(), userID.String(),
	)
	if err == nil {
		if err := tx.Commit(); err != nil {
			return nil, false, err
		}
		slog.DebugContext(ctx, "Offene Session existiert bereits, wird zurückgegeben", slog.String("session_id", existing.ID.String()))
		return &existing, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		slog.ErrorContext(ctx, "Fehler beim Suchen der offenen Session", slog.Any("error", err), slog.String("task_id", taskID.String()))
		return nil, false, err
	}

	session := models.NewTaskSession(taskID, userID)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO task_sessions (id, task_id, user_id, start_time, created_at) VALUES (?, ?, ?, ?, ?)`,
		session.ID.String(), taskID.String(), userID.String(), session.StartTime, session.CreatedAt,
	)
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Anlegen der Session", slog.Any("error", err), slog.String("task_id", taskID.String()))
		return nil, false, err
	}

	// Nebenwirkung: Task läuft ab jetzt.
	_, err = tx.ExecContext(ctx,
		`UPDATE tasks SET status = ?, updated_at = ? WHERE id = ? AND status <> ?`,
		models.TaskInProgress, time.Now().UTC(), taskID.String(), models.TaskInProgress,
	)
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	slog.DebugContext(ctx, "Session erfolgreich gestartet", slog.String("session_id", session.ID.String()))
	return session, true, nil
}

func (r *sqlxRepository) GetOpenSession(ctx context.Context, taskID, userID uuid.UUID) (*models.TaskSession, error) {
	var session models.TaskSession
	query := `SELECT id, task_id, user_id, start_time, end_time, created_at FROM task_sessions
	           WHERE task_id = ? AND user_id = ? AND end_time IS NULL LIMIT 1`

	err := r.db.GetContext(ctx, &session, query, taskID.String(), userID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoOpenSession
		}
		slog.ErrorContext(ctx, "Fehler beim Abrufen der offenen Session", slog.Any("error", err), slog.String("task_id", taskID.String()))
		return nil, err
	}
	return &session, nil
}

// StopOpenSession schließt die offene Session, verbucht den TimeLog
// (Mindestabrechnung aus models.MinSessionHours) und reduziert die
// Reststunden in einer Transaktion.
func (r *sqlxRepository) StopOpenSession(ctx context.Context, taskID, userID uuid.UUID) (*models.TaskSession, *models.TimeLog, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("fehler beim Starten der Transaktion: %w", err)
	}
	defer tx.Rollback()

	var session models.TaskSession
	err = tx.GetContext(ctx, &session,
		`SELECT id, task_id, user_id, start_time, end_time, created_at FROM task_sessions
		  WHERE task_id = ? AND user_id = ? AND end_time IS NULL LIMIT 1 FOR UPDATE`,
		taskID.String(), userID.String(),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrNoOpenSession
		}
		slog.ErrorContext(ctx, "Fehler beim Suchen der offenen Session", slog.Any("error", err), slog.String("task_id", taskID.String()))
		return nil, nil, err
	}

	now := time.Now().UTC()
	hours := session.BillableHours(now)
	session.EndTime = sql.NullTime{Time: now, Valid: true}

	_, err = tx.ExecContext(ctx,
		`UPDATE task_sessions SET end_time = ? WHERE id = ?`,
		now, session.ID.String(),
	)
	if err != nil {
		return nil, nil, err
	}

	log := models.NewTimeLog(taskID, userID, hours, now, "Automatisch erfasst beim Stoppen der Session")
	_, err = tx.ExecContext(ctx,
		`INSERT INTO time_logs (id, task_id, user_id, hours_spent, log_date, description, created_at, updated_at)
		  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID.String(), log.TaskID.String(), log.UserID.String(),
		log.HoursSpent, log.Date, log.Description, log.CreatedAt, log.UpdatedAt,
	)
	if err != nil {
		return nil, nil, err
	}

	if err := recalcRemainingHours(ctx, tx, taskID); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	slog.DebugContext(ctx, "Session gestoppt und Zeit verbucht",
		slog.String("session_id", session.ID.String()), slog.Float64("hours", hours))
	return &session, log, nil
}
