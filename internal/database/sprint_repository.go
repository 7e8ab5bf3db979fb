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
)

// CreateSprint fügt einen Sprint ein. Die Überlappungsprüfung läuft in der
// Einfüge-Transaktion (FOR UPDATE), damit zwei parallele Requests nicht
// beide durchrutschen.
func (r *sqlxRepository) CreateSprint(ctx context.Context, sprint *models.Sprint) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("fehler beim Starten der Transaktion: %w", err)
	}
	defer tx.Rollback()

	var count int
	err = tx.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM sprints
		  WHERE project_id = ? AND start_date <= ? AND end_date >= ? FOR UPDATE`,
		sprint.ProjectID.String(), models.DateOnly(sprint.EndDate), models.DateOnly(sprint.StartDate),
	)
	if err != nil {
		slog.ErrorContext(ctx, "Fehler bei der Überlappungsprüfung", slog.Any("error", err), slog.String("project_id", sprint.ProjectID.String()))
		return err
	}
	if count > 0 {
		return ErrSprintOverlap
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sprints (id, project_id, start_date, end_date, velocity, is_completed, created_by, created_at, updated_at)
		  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sprint.ID.String(), sprint.ProjectID.String(),
		models.DateOnly(sprint.StartDate), models.DateOnly(sprint.EndDate),
		sprint.Velocity, sprint.IsCompleted, sprint.CreatedBy, sprint.CreatedAt, sprint.UpdatedAt,
	)
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Einfügen des Sprints", slog.Any("error", err), slog.String("project_id", sprint.ProjectID.String()))
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.DebugContext(ctx, "Sprint erfolgreich erstellt", slog.String("sprint_id", sprint.ID.String()))
	return nil
}

func (r *sqlxRepository) GetSprintByID(ctx context.Context, sprintID uuid.UUID) (*models.Sprint, error) {
	var sprint models.Sprint
	query := `SELECT * FROM sprints WHERE id = ? LIMIT 1`

	err := r.db.GetContext(ctx, &sprint, query, sprintID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSprintNotFound
		}
		slog.ErrorContext(ctx, "Fehler beim Abrufen des Sprints", slog.Any("error", err), slog.String("sprint_id", sprintID.String()))
		return nil, err
	}
	return &sprint, nil
}

func (r *sqlxRepository) GetSprintsByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Sprint, error) {
	var sprints []*models.Sprint
	query := `SELECT * FROM sprints WHERE project_id = ? ORDER BY start_date DESC`

	err := r.db.SelectContext(ctx, &sprints, query, projectID.String())
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Auflisten der Sprints", slog.Any("error", err), slog.String("project_id", projectID.String()))
		return nil, err
	}
	return sprints, nil
}

// GetActiveSprint liefert den Sprint, in dessen Datumsbereich heute fällt.
// Durch die Überlappungs-Invariante kann es höchstens einen geben.
func (r *sqlxRepository) GetActiveSprint(ctx context.Context, projectID uuid.UUID, today time.Time) (*models.Sprint, error) {
	var sprint models.Sprint
	query := `SELECT * FROM sprints
	           WHERE project_id = ? AND start_date <= ? AND end_date >= ?
	           LIMIT 1`

	day := models.DateOnly(today)
	err := r.db.GetContext(ctx, &sprint, query, projectID.String(), day, day)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSprintNotFound
		}
		slog.ErrorContext(ctx, "Fehler beim Abrufen des aktiven Sprints", slog.Any("error", err), slog.String("project_id", projectID.String()))
		return nil, err
	}
	return &sprint, nil
}

// GetUpcomingSprint liefert den nächsten zukünftigen Sprint.
func (r *sqlxRepository) GetUpcomingSprint(ctx context.Context, projectID uuid.UUID, today time.Time) (*models.Sprint, error) {
	var sprint models.Sprint
	query := `SELECT * FROM sprints
	           WHERE project_id = ? AND start_date > ?
	           ORDER BY start_date ASC LIMIT 1`

	err := r.db.GetContext(ctx, &sprint, query, projectID.String(), models.DateOnly(today))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSprintNotFound
		}
		slog.ErrorContext(ctx, "Fehler beim Abrufen des kommenden Sprints", slog.Any("error", err), slog.String("project_id", projectID.String()))
		return nil, err
	}
	return &sprint, nil
}

// UpdateSprint schreibt Daten und Velocity; die Überlappungsprüfung (ohne
// den Sprint selbst) läuft wieder in der Transaktion.
func (r *sqlxRepository) UpdateSprint(ctx context.Context, sprint *models.Sprint) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("fehler beim Starten der Transaktion: %w", err)
	}
	defer tx.Rollback()

	var count int
	err = tx.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM sprints
		  WHERE project_id = ? AND id <> ? AND start_date <= ? AND end_date >= ? FOR UPDATE`,
		sprint.ProjectID.String(), sprint.ID.String(),
		models.DateOnly(sprint.EndDate), models.DateOnly(sprint.StartDate),
	)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrSprintOverlap
	}

	sprint.UpdatedAt = time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		`UPDATE sprints SET start_date = ?, end_date = ?, velocity = ?, updated_at = ? WHERE id = ?`,
		models.DateOnly(sprint.StartDate), models.DateOnly(sprint.EndDate),
		sprint.Velocity, sprint.UpdatedAt, sprint.ID.String(),
	)
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Aktualisieren des Sprints", slog.Any("error", err), slog.String("sprint_id", sprint.ID.String()))
		return err
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrSprintNotFound
	}

	return tx.Commit()
}

func (r *sqlxRepository) DeleteSprint(ctx context.Context, sprintID uuid.UUID) error {
	query := `DELETE FROM sprints WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, sprintID.String())
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Löschen des Sprints", slog.Any("error", err), slog.String("sprint_id", sprintID.String()))
		return err
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrSprintNotFound
	}
	slog.DebugContext(ctx, "Sprint erfolgreich gelöscht", slog.String("sprint_id", sprintID.String()))
	return nil
}

// FinishSprint setzt is_completed. Die Prüfung "alle Stories im Endzustand"
// und das Setzen des Flags laufen in einer Transaktion, damit keine Story
// zwischen Prüfung und Commit zurückgesetzt werden kann.
func (r *sqlxRepository) FinishSprint(ctx context.Context, sprintID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("fehler beim Starten der Transaktion: %w", err)
	}
	defer tx.Rollback()

	var open int
	err = tx.GetContext(ctx, &open,
		`SELECT COUNT(*) FROM user_stories
		  WHERE sprint_id = ? AND is_deleted = FALSE
		    AND status NOT IN (?, ?) FOR UPDATE`,
		sprintID.String(), models.StoryAccepted, models.StoryRejected,
	)
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Prüfen der Sprint-Stories", slog.Any("error", err), slog.String("sprint_id", sprintID.String()))
		return err
	}
	if open > 0 {
		return ErrSprintHasOpenStories
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE sprints SET is_completed = TRUE, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), sprintID.String(),
	)
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Abschließen des Sprints", slog.Any("error", err), slog.String("sprint_id", sprintID.String()))
		return err
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrSprintNotFound
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Sprint erfolgreich abgeschlossen", slog.String("sprint_id", sprintID.String()))
	return nil
}
