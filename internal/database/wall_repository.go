package database

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"scrumboard/internal/models"

	"github.com/google/uuid"
)

func (r *sqlxRepository) CreateWallPost(ctx context.Context, post *models.WallPost) error {
	query := `INSERT INTO wall_posts (id, project_id, author_id, content, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		post.ID.String(), post.ProjectID.String(), post.AuthorID.String(),
		post.Content, post.CreatedAt, post.UpdatedAt,
	)
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Einfügen des Pinnwand-Beitrags", slog.Any("error", err), slog.String("project_id", post.ProjectID.String()))
		return err
	}
	return nil
}

func (r *sqlxRepository) GetWallPostByID(ctx context.Context, postID uuid.UUID) (*models.WallPost, error) {
	var post models.WallPost
	query := `SELECT * FROM wall_posts WHERE id = ? LIMIT 1`

	err := r.db.GetContext(ctx, &post, query, postID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		slog.ErrorContext(ctx, "Fehler beim Abrufen des Pinnwand-Beitrags", slog.Any("error", err), slog.String("post_id", postID.String()))
		return nil, err
	}
	return &post, nil
}

func (r *sqlxRepository) ListWallPosts(ctx context.Context, projectID uuid.UUID) ([]*models.WallPost, error) {
	var posts []*models.WallPost
	query := `SELECT * FROM wall_posts WHERE project_id = ? ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &posts, query, projectID.String())
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Auflisten der Pinnwand-Beiträge", slog.Any("error", err), slog.String("project_id", projectID.String()))
		return nil, err
	}
	return posts, nil
}

func (r *sqlxRepository) DeleteWallPost(ctx context.Context, postID uuid.UUID) error {
	query := `DELETE FROM wall_posts WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, postID.String())
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Löschen des Pinnwand-Beitrags", slog.Any("error", err), slog.String("post_id", postID.String()))
		return err
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *sqlxRepository) CreateWallComment(ctx context.Context, comment *models.WallComment) error {
	query := `INSERT INTO wall_comments (id, post_id, author_id, content, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		comment.ID.String(), comment.PostID.String(), comment.AuthorID.String(),
		comment.Content, comment.CreatedAt, comment.UpdatedAt,
	)
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Einfügen des Kommentars", slog.Any("error", err), slog.String("post_id", comment.PostID.String()))
		return err
	}
	return nil
}

func (r *sqlxRepository) ListWallComments(ctx context.Context, postID uuid.UUID) ([]*models.WallComment, error) {
	var comments []*models.WallComment
	query := `SELECT * FROM wall_comments WHERE post_id = ? ORDER BY created_at`

	err := r.db.SelectContext(ctx, &comments, query, postID.String())
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Auflisten der Kommentare", slog.Any("error", err), slog.String("post_id", postID.String()))
		return nil, err
	}
	return comments, nil
}

func (r *sqlxRepository) CreateDocument(ctx context.Context, doc *models.Document) error {
	query := `INSERT INTO documents (id, project_id, author_id, title, content, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		doc.ID.String(), doc.ProjectID.String(), doc.AuthorID.String(),
		doc.Title, doc.Content, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Einfügen des Dokuments", slog.Any("error", err), slog.String("project_id", doc.ProjectID.String()))
		return err
	}
	return nil
}

func (r *sqlxRepository) GetDocumentByID(ctx context.Context, docID uuid.UUID) (*models.Document, error) {
	var doc models.Document
	query := `SELECT * FROM documents WHERE id = ? LIMIT 1`

	err := r.db.GetContext(ctx, &doc, query, docID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		slog.ErrorContext(ctx, "Fehler beim Abrufen des Dokuments", slog.Any("error", err), slog.String("doc_id", docID.String()))
		return nil, err
	}
	return &doc, nil
}

func (r *sqlxRepository) ListDocuments(ctx context.Context, projectID uuid.UUID) ([]*models.Document, error) {
	var docs []*models.Document
	query := `SELECT * FROM documents WHERE project_id = ? ORDER BY title`

	err := r.db.SelectContext(ctx, &docs, query, projectID.String())
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Auflisten der Dokumente", slog.Any("error", err), slog.String("project_id", projectID.String()))
		return nil, err
	}
	return docs, nil
}

func (r *sqlxRepository) UpdateDocument(ctx context.Context, doc *models.Document) error {
	query := `UPDATE documents SET title = ?, content = ?, updated_at = ? WHERE id = ?`

	doc.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, query, doc.Title, doc.Content, doc.UpdatedAt, doc.ID.String())
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Aktualisieren des Dokuments", slog.Any("error", err), slog.String("doc_id", doc.ID.String()))
		return err
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (r *sqlxRepository) DeleteDocument(ctx context.Context, docID uuid.UUID) error {
	query := `DELETE FROM documents WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, docID.String())
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Löschen des Dokuments", slog.Any("error", err), slog.String("doc_id", docID.String()))
		return err
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrDocumentNotFound
	}
	return nil
}
