package scrum

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"scrumboard/internal/database"
	"scrumboard/internal/models"

	"github.com/google/uuid"
)

// StoryService setzt den Story-Lebenszyklus um:
// NOT_STARTED → IN_PROGRESS → DONE → {ACCEPTED | REJECTED}.
type StoryService struct {
	Gate    *Gate
	Stories database.StoryRepository
}

func NewStoryService(gate *Gate, stories database.StoryRepository) *StoryService {
	return &StoryService{Gate: gate, Stories: stories}
}

type CreateStoryParams struct {
	Name               string
	Description        string
	AcceptanceCriteria string
	Priority           models.Priority
	BusinessValue      int
}

// Create legt eine Story im Backlog an (Product Owner oder Scrum Master).
// Die Namens-Eindeutigkeit pro Projekt ist case-insensitiv.
func (s *StoryService) Create(ctx context.Context, userID, projectID uuid.UUID, p CreateStoryParams) (*models.UserStory, error) {
	if _, err := s.Gate.Require(ctx, projectID, userID, ActionManageStory); err != nil {
		return nil, err
	}

	if strings.TrimSpace(p.Name) == "" {
		return nil, newValidationError("der Name der Story darf nicht leer sein")
	}
	if !p.Priority.Valid() {
		return nil, newValidationError("ungültige Priorität: %s", p.Priority)
	}
	if p.BusinessValue < 0 {
		return nil, newValidationError("der Business Value darf nicht negativ sein")
	}

	story := models.NewUserStory(projectID, p.Name, p.Description, p.AcceptanceCriteria, p.Priority, p.BusinessValue, userID)
	if err := s.Stories.CreateStory(ctx, story); err != nil {
		if errors.Is(err, database.ErrStoryNameTaken) {
			return nil, newValidationError("eine Story mit diesem Namen existiert bereits im Projekt")
		}
		return nil, err
	}

	slog.InfoContext(ctx, "Story erstellt",
		slog.String("story_id", story.ID.String()),
		slog.String("project_id", projectID.String()),
	)
	return story, nil
}

// Get liefert eine Story für jedes Projektmitglied.
func (s *StoryService) Get(ctx context.Context, userID, storyID uuid.UUID) (*models.UserStory, error) {
	story, projectID, err := s.Gate.ProjectOfStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Gate.Require(ctx, projectID, userID, ActionView); err != nil {
		return nil, err
	}
	return story, nil
}

// List liefert die Stories eines Projekts; backlogOnly filtert auf
// Stories ohne Sprint.
func (s *StoryService) List(ctx context.Context, userID, projectID uuid.UUID, backlogOnly bool) ([]*models.UserStory, error) {
	if _, err := s.Gate.Require(ctx, projectID, userID, ActionView); err != nil {
		return nil, err
	}
	return s.Stories.ListStoriesByProject(ctx, projectID, backlogOnly)
}

// ListBySprint liefert die Stories eines Sprints.
func (s *StoryService) ListBySprint(ctx context.Context, userID, sprintID uuid.UUID) ([]*models.UserStory, error) {
	_, projectID, err := s.Gate.ProjectOfSprint(ctx, sprintID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Gate.Require(ctx, projectID, userID, ActionView); err != nil {
		return nil, err
	}
	return s.Stories.ListStoriesBySprint(ctx, sprintID)
}

type UpdateStoryParams struct {
	Name               *string
	Description        *string
	AcceptanceCriteria *string
	Priority           *models.Priority
	BusinessValue      *int
}

// Update ändert Stammdaten der Story (Product Owner oder Scrum Master).
// Die Namens-Eindeutigkeit wird bei jedem Speichern erzwungen.
func (s *StoryService) Update(ctx context.Context, userID, storyID uuid.UUID, p UpdateStoryParams) (*models.UserStory, error) {
	story, projectID, err := s.Gate.ProjectOfStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Gate.Require(ctx, projectID, userID, ActionManageStory); err != nil {
		return nil, err
	}

	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return nil, newValidationError("der Name der Story darf nicht leer sein")
		}
		story.Name = *p.Name
	}
	if p.Description != nil {
		story.Description = *p.Description
	}
	if p.AcceptanceCriteria != nil {
		story.AcceptanceCriteria = *p.AcceptanceCriteria
	}
	if p.Priority != nil {
		if !p.Priority.Valid() {
			return nil, newValidationError("ungültige Priorität: %s", *p.Priority)
		}
		story.Priority = *p.Priority
	}
	if p.BusinessValue != nil {
		if *p.BusinessValue < 0 {
			return nil, newValidationError("der Business Value darf nicht negativ sein")
		}
		story.BusinessValue = *p.BusinessValue
	}

	if err := s.Stories.UpdateStory(ctx, story); err != nil {
		if errors.Is(err, database.ErrStoryNameTaken) {
			return nil, newValidationError("eine Story mit diesem Namen existiert bereits im Projekt")
		}
		if errors.Is(err, database.ErrStoryNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return story, nil
}

// Estimate setzt die Story Points (nur Scrum Master, nur solange die
// Story in keinem Sprint ist).
func (s *StoryService) Estimate(ctx context.Context, userID, storyID uuid.UUID, points int) (*models.UserStory, error) {
	story, projectID, err := s.Gate.ProjectOfStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Gate.Require(ctx, projectID, userID, ActionEstimateStory); err != nil {
		return nil, err
	}

	if story.InSprint() {
		return nil, newValidationError("die Punkte einer Story, die bereits in einem Sprint ist, können nicht geändert werden")
	}
	if points <= 0 {
		return nil, newValidationError("die Story Points müssen größer als null sein")
	}
	if story.BusinessValue <= 0 {
		return nil, newValidationError("eine Story ohne Business Value kann nicht geschätzt werden")
	}

	if err := s.Stories.SetStoryPoints(ctx, storyID, points); err != nil {
		if errors.Is(err, database.ErrStoryNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	story.StoryPoints.Int64 = int64(points)
	story.StoryPoints.Valid = true
	return story, nil
}

// UpdateStatus bewegt die Story durch ihren Lebenszyklus.
// ACCEPTED/REJECTED darf nur der Product Owner setzen und nur aus DONE;
// die Arbeits-Status setzt Developer oder Scrum Master.
func (s *StoryService) UpdateStatus(ctx context.Context, userID, storyID uuid.UUID, status models.StoryStatus) (*models.UserStory, error) {
	story, projectID, err := s.Gate.ProjectOfStory(ctx, storyID)
	if err != nil {
		return nil, err
	}

	if !status.Valid() {
		return nil, newValidationError("ungültiger Status: %s", status)
	}

	if status.Terminal() {
		if _, err := s.Gate.Require(ctx, projectID, userID, ActionAcceptStory); err != nil {
			return nil, err
		}
		if story.Status != models.StoryDone {
			return nil, newValidationError("nur Stories mit Status DONE können angenommen oder abgelehnt werden")
		}
	} else {
		if _, err := s.Gate.Require(ctx, projectID, userID, ActionAdvanceStory); err != nil {
			return nil, err
		}
		if story.Status.Terminal() {
			return nil, newValidationError("eine angenommene oder abgelehnte Story kann nicht zurückgesetzt werden")
		}
	}

	if err := s.Stories.SetStoryStatus(ctx, storyID, status); err != nil {
		if errors.Is(err, database.ErrStoryNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	story.Status = status
	slog.InfoContext(ctx, "Story-Status geändert",
		slog.String("story_id", storyID.String()),
		slog.String("status", string(status)),
	)
	return story, nil
}

// AddToSprint ordnet einen Batch von Stories einem Sprint zu (nur Scrum
// Master). Der ganze Batch scheitert, sobald eine Story ungeschätzt ist,
// bereits in einem Sprint steckt oder nicht zum Projekt gehört; die
// Meldung benennt die betroffenen IDs.
func (s *StoryService) AddToSprint(ctx context.Context, userID, sprintID uuid.UUID, storyIDs []uuid.UUID) error {
	sprint, projectID, err := s.Gate.ProjectOfSprint(ctx, sprintID)
	if err != nil {
		return err
	}
	if _, err := s.Gate.Require(ctx, projectID, userID, ActionManageSprint); err != nil {
		return err
	}
	if sprint.IsCompleted {
		return newValidationError("einem abgeschlossenen Sprint können keine Stories zugeordnet werden")
	}
	if len(storyIDs) == 0 {
		return newValidationError("es wurden keine Stories angegeben")
	}

	var unestimated, inSprint, foreign []string
	for _, id := range storyIDs {
		story, err := s.Stories.GetStoryByID(ctx, id)
		if err != nil {
			if errors.Is(err, database.ErrStoryNotFound) {
				return ErrNotFound
			}
			return err
		}
		if story.ProjectID != projectID {
			foreign = append(foreign, id.String())
			continue
		}
		if story.InSprint() {
			inSprint = append(inSprint, id.String())
			continue
		}
		if !story.IsEstimated() || story.BusinessValue <= 0 {
			unestimated = append(unestimated, id.String())
		}
	}
	if len(foreign) > 0 {
		return newValidationError("stories gehören nicht zu diesem Projekt: %s", strings.Join(foreign, ", "))
	}
	if len(inSprint) > 0 {
		return newValidationError("stories sind bereits einem Sprint zugeordnet: %s", strings.Join(inSprint, ", "))
	}
	if len(unestimated) > 0 {
		return newValidationError("stories sind nicht geschätzt oder ohne Business Value: %s", strings.Join(unestimated, ", "))
	}

	if err := s.Stories.AssignStoriesToSprint(ctx, sprintID, storyIDs); err != nil {
		if errors.Is(err, database.ErrStoryNotFound) {
			// Zwischen Prüfung und Transaktion hat sich eine Story
			// geändert; der Batch wurde verworfen.
			return newValidationError("mindestens eine Story konnte nicht zugeordnet werden, der Batch wurde verworfen")
		}
		return err
	}

	slog.InfoContext(ctx, "Stories dem Sprint zugeordnet",
		slog.String("sprint_id", sprintID.String()),
		slog.Int("count", len(storyIDs)),
	)
	return nil
}

// RemoveFromSprint setzt den Sprint der Story bedingungslos auf NULL
// (nur Scrum Master).
func (s *StoryService) RemoveFromSprint(ctx context.Context, userID, storyID uuid.UUID) error {
	_, projectID, err := s.Gate.ProjectOfStory(ctx, storyID)
	if err != nil {
		return err
	}
	if _, err := s.Gate.Require(ctx, projectID, userID, ActionManageSprint); err != nil {
		return err
	}

	if err := s.Stories.RemoveStoryFromSprint(ctx, storyID); err != nil {
		if errors.Is(err, database.ErrStoryNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Delete markiert die Story als gelöscht (Product Owner oder Scrum
// Master). Die Zeile bleibt erhalten, ist aber für Lesezugriffe unsichtbar.
func (s *StoryService) Delete(ctx context.Context, userID, storyID uuid.UUID) error {
	_, projectID, err := s.Gate.ProjectOfStory(ctx, storyID)
	if err != nil {
		return err
	}
	if _, err := s.Gate.Require(ctx, projectID, userID, ActionManageStory); err != nil {
		return err
	}

	if err := s.Stories.SoftDeleteStory(ctx, storyID); err != nil {
		if errors.Is(err, database.ErrStoryNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// AddComment hängt einen Kommentar an die Story (jedes Projektmitglied).
func (s *StoryService) AddComment(ctx context.Context, userID, storyID uuid.UUID, content string) (*models.StoryComment, error) {
	_, projectID, err := s.Gate.ProjectOfStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Gate.Require(ctx, projectID, userID, ActionView); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, newValidationError("der Kommentar darf nicht leer sein")
	}

	comment := models.NewStoryComment(storyID, userID, content)
	if err := s.Stories.CreateStoryComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments liefert die Kommentare einer Story.
func (s *StoryService) ListComments(ctx context.Context, userID, storyID uuid.UUID) ([]*models.StoryComment, error) {
	_, projectID, err := s.Gate.ProjectOfStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Gate.Require(ctx, projectID, userID, ActionView); err != nil {
		return nil, err
	}
	return s.Stories.ListStoryComments(ctx, storyID)
}
