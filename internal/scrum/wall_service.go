package scrum

import (
	"context"
	"errors"
	"strings"

	"scrumboard/internal/database"
	"scrumboard/internal/models"

	"github.com/google/uuid"
)

// WallService bedient Pinnwand und Dokumente eines Projekts. Alle
// Mitglieder dürfen lesen und posten; löschen darf der Autor oder der
// Scrum Master.
type WallService struct {
	Gate *Gate
	Wall database.WallRepository
}

func NewWallService(gate *Gate, wall database.WallRepository) *WallService {
	return &WallService{Gate: gate, Wall: wall}
}

func (s *WallService) CreatePost(ctx context.Context, userID, projectID uuid.UUID, content string) (*models.WallPost, error) {
	if _, err := s.Gate.Require(ctx, projectID, userID, ActionView); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, newValidationError("der Beitrag darf nicht leer sein")
	}

	post := models.NewWallPost(projectID, userID, content)
	if err := s.Wall.CreateWallPost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *WallService) ListPosts(ctx context.Context, userID, projectID uuid.UUID) ([]*models.WallPost, error) {
	if _, err := s.Gate.Require(ctx, projectID, userID, ActionView); err != nil {
		return nil, err
	}
	return s.Wall.ListWallPosts(ctx, projectID)
}

func (s *WallService) DeletePost(ctx context.Context, userID, postID uuid.UUID) error {
	post, err := s.Wall.GetWallPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, database.ErrPostNotFound) {
			return ErrNotFound
		}
		return err
	}
	role, err := s.Gate.MemberRole(ctx, post.ProjectID, userID)
	if err != nil {
		return err
	}
	if post.AuthorID != userID && role != models.RoleScrumMaster {
		return ErrForbidden
	}
	return s.Wall.DeleteWallPost(ctx, postID)
}

func (s *WallService) CommentPost(ctx context.Context, userID, postID uuid.UUID, content string) (*models.WallComment, error) {
	post, err := s.Wall.GetWallPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, database.ErrPostNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if _, err := s.Gate.Require(ctx, post.ProjectID, userID, ActionView); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, newValidationError("der Kommentar darf nicht leer sein")
	}

	comment := models.NewWallComment(postID, userID, content)
	if err := s.Wall.CreateWallComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *WallService) ListComments(ctx context.Context, userID, postID uuid.UUID) ([]*models.WallComment, error) {
	post, err := s.Wall.GetWallPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, database.ErrPostNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if _, err := s.Gate.Require(ctx, post.ProjectID, userID, ActionView); err != nil {
		return nil, err
	}
	return s.Wall.ListWallComments(ctx, postID)
}

func (s *WallService) CreateDocument(ctx context.Context, userID, projectID uuid.UUID, title, content string) (*models.Document, error) {
	if _, err := s.Gate.Require(ctx, projectID, userID, ActionView); err != nil {
		return nil, err
	}
	if strings.TrimSpace(title) == "" {
		return nil, newValidationError("der Titel des Dokuments darf nicht leer sein")
	}

	doc := models.NewDocument(projectID, userID, title, content)
	if err := s.Wall.CreateDocument(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *WallService) GetDocument(ctx context.Context, userID, docID uuid.UUID) (*models.Document, error) {
	doc, err := s.Wall.GetDocumentByID(ctx, docID)
	if err != nil {
		if errors.Is(err, database.ErrDocumentNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if _, err := s.Gate.Require(ctx, doc.ProjectID, userID, ActionView); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *WallService) ListDocuments(ctx context.Context, userID, projectID uuid.UUID) ([]*models.Document, error) {
	if _, err := s.Gate.Require(ctx, projectID, userID, ActionView); err != nil {
		return nil, err
	}
	return s.Wall.ListDocuments(ctx, projectID)
}

func (s *WallService) UpdateDocument(ctx context.Context, userID, docID uuid.UUID, title, content string) (*models.Document, error) {
	doc, err := s.Wall.GetDocumentByID(ctx, docID)
	if err != nil {
		if errors.Is(err, database.ErrDocumentNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	role, err := s.Gate.MemberRole(ctx, doc.ProjectID, userID)
	if err != nil {
		return nil, err
	}
	if doc.AuthorID != userID && role != models.RoleScrumMaster {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(title) == "" {
		return nil, newValidationError("der Titel des Dokuments darf nicht leer sein")
	}

	doc.Title = title
	doc.Content = content
	if err := s.Wall.UpdateDocument(ctx, doc); err != nil {
		if errors.Is(err, database.ErrDocumentNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *WallService) DeleteDocument(ctx context.Context, userID, docID uuid.UUID) error {
	doc, err := s.Wall.GetDocumentByID(ctx, docID)
	if err != nil {
		if errors.Is(err, database.ErrDocumentNotFound) {
			return ErrNotFound
		}
		return err
	}
	role, err := s.Gate.MemberRole(ctx, doc.ProjectID, userID)
	if err != nil {
		return err
	}
	if doc.AuthorID != userID && role != models.RoleScrumMaster {
		return ErrForbidden
	}
	return s.Wall.DeleteDocument(ctx, docID)
}
