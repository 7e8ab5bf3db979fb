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

// CreateStory fügt eine Story ein. Die Namens-Eindeutigkeit pro Projekt
// wird über den Unique-Index (project_id, name) erzwungen; die Spalte ist
// case-insensitiv kollationiert.
func (r *sqlxRepository) CreateStory(ctx context.Context, story *models.UserStory) error {
	query := `INSERT INTO user_stories
	           (id, project_id, sprint_id, name, description, acceptance_criteria, priority,
	            business_value, story_points, status, assigned_to, created_by, is_deleted, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		story.ID.String(), story.ProjectID.String(), story.SprintID,
		story.Name, story.Description, story.AcceptanceCriteria, story.Priority,
		story.BusinessValue, story.StoryPoints, story.Status,
		story.AssignedTo, story.CreatedBy, story.Deleted,
		story.CreatedAt, story.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrStoryNameTaken
		}
		slog.ErrorContext(ctx, "Fehler beim Einfügen der Story", slog.Any("error", err), slog.String("project_id", story.ProjectID.String()))
		return err
	}
	slog.DebugContext(ctx, "Story erfolgreich erstellt", slog.String("story_id", story.ID.String()))
	return nil
}

// GetStoryByID liefert keine gelöschten Stories.
func (r *sqlxRepository) GetStoryByID(ctx context.Context, storyID uuid.UUID) (*models.UserStory, error) {
	var story models.UserStory
	query := `SELECT * FROM user_stories WHERE id = ? AND is_deleted = FALSE LIMIT 1`

	err := r.db.GetContext(ctx, &story, query, storyID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStoryNotFound
		}
		slog.ErrorContext(ctx, "Fehler beim Abrufen der Story", slog.Any("error", err), slog.String("story_id", storyID.String()))
		return nil, err
	}
	return &story, nil
}

func (r *sqlxRepository) ListStoriesByProject(ctx context.Context, projectID uuid.UUID, backlogOnly bool) ([]*models.UserStory, error) {
	var stories []*models.UserStory
	query := `SELECT * FROM user_stories
	           WHERE project_id = ? AND is_deleted = FALSE`
	if backlogOnly {
		query += ` AND sprint_id IS NULL`
	}
	query += ` ORDER BY business_value DESC, created_at`

	err := r.db.SelectContext(ctx, &stories, query, projectID.String())
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Auflisten der Stories", slog.Any("error", err), slog.String("project_id", projectID.String()))
		return nil, err
	}
	return stories, nil
}

func (r *sqlxRepository) ListStoriesBySprint(ctx context.Context, sprintID uuid.UUID) ([]*models.UserStory, error) {
	var stories []*models.UserStory
	query := `SELECT * FROM user_stories
	           WHERE sprint_id = ? AND is_deleted = FALSE
	           ORDER BY business_value DESC, created_at`

	err := r.db.SelectContext(ctx, &stories, query, sprintID.String())
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Auflisten der Sprint-Stories", slog.Any("error", err), slog.String("sprint_id", sprintID.String()))
		return nil, err
	}
	return stories, nil
}

func (r *sqlxRepository) UpdateStory(ctx context.Context, story *models.UserStory) error {
	query := `UPDATE user_stories
	           SET name = ?, description = ?, acceptance_criteria = ?, priority = ?,
	               business_value = ?, status = ?, assigned_to = ?, updated_at = ?
	           WHERE id = ? AND is_deleted = FALSE`

	story.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, query,
		story.Name, story.Description, story.AcceptanceCriteria, story.Priority,
		story.BusinessValue, story.Status, story.AssignedTo, story.UpdatedAt,
		story.ID.String(),
	)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrStoryNameTaken
		}
		slog.ErrorContext(ctx, "Fehler beim Aktualisieren der Story", slog.Any("error", err), slog.String("story_id", story.ID.String()))
		return err
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrStoryNotFound
	}
	return nil
}

func (r *sqlxRepository) SetStoryPoints(ctx context.Context, storyID uuid.UUID, points int) error {
	query := `UPDATE user_stories SET story_points = ?, updated_at = ? WHERE id = ? AND is_deleted = FALSE`

	result, err := r.db.ExecContext(ctx, query, points, time.Now().UTC(), storyID.String())
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Setzen der Story Points", slog.Any("error", err), slog.String("story_id", storyID.String()))
		return err
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrStoryNotFound
	}
	return nil
}

func (r *sqlxRepository) SetStoryStatus(ctx context.Context, storyID uuid.UUID, status models.StoryStatus) error {
	query := `UPDATE user_stories SET status = ?, updated_at = ? WHERE id = ? AND is_deleted = FALSE`

	result, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), storyID.String())
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Setzen des Story-Status", slog.Any("error", err), slog.String("story_id", storyID.String()))
		return err
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrStoryNotFound
	}
	return nil
}

// AssignStoriesToSprint ordnet alle Stories des Batches dem Sprint zu.
// Der Service hat die Vorbedingungen (geschätzt, noch in keinem Sprint)
// bereits geprüft; hier werden sie in der Transaktion erneut erzwungen,
// damit der Batch atomar bleibt.
func (r *sqlxRepository) AssignStoriesToSprint(ctx context.Context, sprintID uuid.UUID, storyIDs []uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("fehler beim Starten der Transaktion: %w", err)
	}
	defer tx.Rollback()

	for _, storyID := range storyIDs {
		result, err := tx.ExecContext(ctx,
			`UPDATE user_stories SET sprint_id = ?, updated_at = ?
			  WHERE id = ? AND is_deleted = FALSE
			    AND sprint_id IS NULL AND story_points IS NOT NULL`,
			sprintID.String(), time.Now().UTC(), storyID.String(),
		)
		if err != nil {
			slog.ErrorContext(ctx, "Fehler beim Zuordnen der Story zum Sprint", slog.Any("error", err), slog.String("story_id", storyID.String()))
			return err
		}
		rowsAffected, _ := result.RowsAffected()
		if rowsAffected == 0 {
			// Story verschwunden, bereits im Sprint oder ungeschätzt:
			// ganzen Batch verwerfen.
			return ErrStoryNotFound
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.DebugContext(ctx, "Stories erfolgreich dem Sprint zugeordnet", slog.String("sprint_id", sprintID.String()), slog.Int("count", len(storyIDs)))
	return nil
}

func (r *sqlxRepository) RemoveStoryFromSprint(ctx context.Context, storyID uuid.UUID) error {
	query := `UPDATE user_stories SET sprint_id = NULL, updated_at = ? WHERE id = ? AND is_deleted = FALSE`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), storyID.String())
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Entfernen der Story aus dem Sprint", slog.Any("error", err), slog.String("story_id", storyID.String()))
		return err
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrStoryNotFound
	}
	return nil
}

func (r *sqlxRepository) SoftDeleteStory(ctx context.Context, storyID uuid.UUID) error {
	query := `UPDATE user_stories SET is_deleted = TRUE, updated_at = ? WHERE id = ? AND is_deleted = FALSE`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), storyID.String())
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Löschen der Story", slog.Any("error", err), slog.String("story_id", storyID.String()))
		return err
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrStoryNotFound
	}
	slog.DebugContext(ctx, "Story als gelöscht markiert", slog.String("story_id", storyID.String()))
	return nil
}

func (r *sqlxRepository) CreateStoryComment(ctx context.Context, comment *models.StoryComment) error {
	query := `INSERT INTO story_comments (id, story_id, author_id, content, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		comment.ID.String(), comment.StoryID.String(), comment.AuthorID.String(),
		comment.Content, comment.CreatedAt, comment.UpdatedAt,
	)
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Einfügen des Story-Kommentars", slog.Any("error", err), slog.String("story_id", comment.StoryID.String()))
		return err
	}
	return nil
}

func (r *sqlxRepository) ListStoryComments(ctx context.Context, storyID uuid.UUID) ([]*models.StoryComment, error) {
	var comments []*models.StoryComment
	query := `SELECT * FROM story_comments WHERE story_id = ? ORDER BY created_at`

	err := r.db.SelectContext(ctx, &comments, query, storyID.String())
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Auflisten der Story-Kommentare", slog.Any("error", err), slog.String("story_id", storyID.String()))
		return nil, err
	}
	return comments, nil
}
