package scrum

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"scrumboard/internal/database"
	"scrumboard/internal/models"

	"github.com/google/uuid"
)

// SprintService setzt die Sprint-Zustandsmaschine um: Planned und Active
// sind aus den Daten abgeleitet, Completed wird ausschließlich über
// Finish gesetzt.
type SprintService struct {
	Gate    *Gate
	Sprints database.SprintRepository

	// now ist injizierbar für Tests.
	now func() time.Time
}

func NewSprintService(gate *Gate, sprints database.SprintRepository) *SprintService {
	return &SprintService{Gate: gate, Sprints: sprints, now: time.Now}
}

type CreateSprintParams struct {
	StartDate time.Time
	EndDate   time.Time
	Velocity  int
}

// Create legt einen Sprint an (nur Scrum Master). Geprüft werden
// Datumsordnung, "Start nicht in der Vergangenheit" (nur bei Anlage)
// und die inklusive Überlappung mit bestehenden Sprints des Projekts.
func (s *SprintService) Create(ctx context.Context, userID, projectID uuid.UUID, p CreateSprintParams) (*models.Sprint, error) {
	if _, err := s.Gate.Require(ctx, projectID, userID, ActionManageSprint); err != nil {
		return nil, err
	}

	today := models.DateOnly(s.now())
	if p.Velocity < 0 {
		return nil, newValidationError("die Velocity darf nicht negativ sein")
	}
	if models.DateOnly(p.EndDate).Before(models.DateOnly(p.StartDate)) {
		return nil, newValidationError("das Enddatum darf nicht vor dem Startdatum liegen")
	}
	if models.DateOnly(p.StartDate).Before(today) {
		return nil, newValidationError("das Startdatum darf nicht in der Vergangenheit liegen")
	}

	sprint := models.NewSprint(projectID, p.StartDate, p.EndDate, p.Velocity, userID)
	if err := s.Sprints.CreateSprint(ctx, sprint); err != nil {
		if errors.Is(err, database.ErrSprintOverlap) {
			return nil, newValidationError("die Sprint-Daten überschneiden sich mit einem bestehenden Sprint")
		}
		return nil, err
	}

	slog.InfoContext(ctx, "Sprint erstellt",
		slog.String("sprint_id", sprint.ID.String()),
		slog.String("project_id", projectID.String()),
	)
	return sprint, nil
}

// Get liefert einen Sprint für jedes Projektmitglied.
func (s *SprintService) Get(ctx context.Context, userID, sprintID uuid.UUID) (*models.Sprint, error) {
	sprint, projectID, err := s.Gate.ProjectOfSprint(ctx, sprintID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Gate.Require(ctx, projectID, userID, ActionView); err != nil {
		return nil, err
	}
	return sprint, nil
}

// List liefert alle Sprints eines Projekts für jedes Mitglied.
func (s *SprintService) List(ctx context.Context, userID, projectID uuid.UUID) ([]*models.Sprint, error) {
	if _, err := s.Gate.Require(ctx, projectID, userID, ActionView); err != nil {
		return nil, err
	}
	return s.Sprints.GetSprintsByProject(ctx, projectID)
}

// Active liefert den heute laufenden Sprint oder ErrNotFound.
func (s *SprintService) Active(ctx context.Context, userID, projectID uuid.UUID) (*models.Sprint, error) {
	if _, err := s.Gate.Require(ctx, projectID, userID, ActionView); err != nil {
		return nil, err
	}
	sprint, err := s.Sprints.GetActiveSprint(ctx, projectID, s.now())
	if err != nil {
		if errors.Is(err, database.ErrSprintNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sprint, nil
}

// Upcoming liefert den nächsten zukünftigen Sprint oder ErrNotFound.
func (s *SprintService) Upcoming(ctx context.Context, userID, projectID uuid.UUID) (*models.Sprint, error) {
	if _, err := s.Gate.Require(ctx, projectID, userID, ActionView); err != nil {
		return nil, err
	}
	sprint, err := s.Sprints.GetUpcomingSprint(ctx, projectID, s.now())
	if err != nil {
		if errors.Is(err, database.ErrSprintNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sprint, nil
}

type UpdateSprintParams struct {
	StartDate *time.Time
	EndDate   *time.Time
	Velocity  *int
}

// Update ändert Daten/Velocity eines Sprints (nur Scrum Master). Sobald
// der Sprint begonnen hat, sind die Daten unveränderlich.
func (s *SprintService) Update(ctx context.Context, userID, sprintID uuid.UUID, p UpdateSprintParams) (*models.Sprint, error) {
	sprint, projectID, err := s.Gate.ProjectOfSprint(ctx, sprintID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Gate.Require(ctx, projectID, userID, ActionManageSprint); err != nil {
		return nil, err
	}

	datesTouched := p.StartDate != nil || p.EndDate != nil
	if datesTouched && sprint.HasStarted(s.now()) {
		return nil, newValidationError("die Daten eines bereits gestarteten Sprints können nicht geändert werden")
	}

	if p.StartDate != nil {
		sprint.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		sprint.EndDate = *p.EndDate
	}
	if p.Velocity != nil {
		if *p.Velocity < 0 {
			return nil, newValidationError("die Velocity darf nicht negativ sein")
		}
		sprint.Velocity = *p.Velocity
	}

	if models.DateOnly(sprint.EndDate).Before(models.DateOnly(sprint.StartDate)) {
		return nil, newValidationError("das Enddatum darf nicht vor dem Startdatum liegen")
	}

	if err := s.Sprints.UpdateSprint(ctx, sprint); err != nil {
		if errors.Is(err, database.ErrSprintOverlap) {
			return nil, newValidationError("die Sprint-Daten überschneiden sich mit einem bestehenden Sprint")
		}
		if errors.Is(err, database.ErrSprintNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sprint, nil
}

// Delete entfernt einen Sprint (nur Scrum Master, nur solange er nicht
// begonnen hat).
func (s *SprintService) Delete(ctx context.Context, userID, sprintID uuid.UUID) error {
	sprint, projectID, err := s.Gate.ProjectOfSprint(ctx, sprintID)
	if err != nil {
		return err
	}
	if _, err := s.Gate.Require(ctx, projectID, userID, ActionManageSprint); err != nil {
		return err
	}
	if sprint.HasStarted(s.now()) {
		return newValidationError("ein bereits gestarteter Sprint kann nicht gelöscht werden")
	}

	if err := s.Sprints.DeleteSprint(ctx, sprintID); err != nil {
		if errors.Is(err, database.ErrSprintNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Finish schließt den Sprint explizit ab (nur Scrum Master). Die Prüfung
// "alle Stories im Endzustand" läuft transaktional im Repository.
func (s *SprintService) Finish(ctx context.Context, userID, sprintID uuid.UUID) (*models.Sprint, error) {
	sprint, projectID, err := s.Gate.ProjectOfSprint(ctx, sprintID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Gate.Require(ctx, projectID, userID, ActionManageSprint); err != nil {
		return nil, err
	}
	if sprint.IsCompleted {
		return nil, newValidationError("der Sprint ist bereits abgeschlossen")
	}

	if err := s.Sprints.FinishSprint(ctx, sprintID); err != nil {
		if errors.Is(err, database.ErrSprintHasOpenStories) {
			return nil, newValidationError("der Sprint kann nicht abgeschlossen werden: es gibt noch nicht abgenommene Stories")
		}
		if errors.Is(err, database.ErrSprintNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	sprint.IsCompleted = true
	slog.InfoContext(ctx, "Sprint abgeschlossen", slog.String("sprint_id", sprintID.String()))
	return sprint, nil
}
