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

// ProjectService verwaltet Projekte und ihre Mitgliedschaften. Pro
// Projekt gibt es genau einen Product Owner und genau einen Scrum
// Master; Developer beliebig viele.
type ProjectService struct {
	Gate     *Gate
	Projects database.ProjectRepository
	Users    database.UserRepository
}

func NewProjectService(gate *Gate, projects database.ProjectRepository, users database.UserRepository) *ProjectService {
	return &ProjectService{Gate: gate, Projects: projects, Users: users}
}

type CreateProjectParams struct {
	Name        string
	Description string
	// ScrumMasterID muss ein anderer Benutzer als der Ersteller sein;
	// der Ersteller wird immer Product Owner.
	ScrumMasterID uuid.UUID
}

// Create legt ein Projekt an. Der Aufrufer wird Product Owner, der
// benannte Benutzer Scrum Master; beides in einer Transaktion.
func (s *ProjectService) Create(ctx context.Context, userID uuid.UUID, p CreateProjectParams) (*models.Project, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, newValidationError("der Name des Projekts darf nicht leer sein")
	}
	if p.ScrumMasterID == uuid.Nil {
		return nil, newValidationError("es muss ein Scrum Master benannt werden")
	}
	if p.ScrumMasterID == userID {
		return nil, newValidationError("Product Owner und Scrum Master müssen verschiedene Benutzer sein")
	}
	if _, err := s.Users.GetUserByID(ctx, p.ScrumMasterID); err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, newValidationError("der benannte Scrum Master existiert nicht")
		}
		return nil, err
	}

	project := models.NewProject(p.Name, p.Description)
	owner := models.NewProjectMember(project.ID, userID, models.RoleProductOwner)
	master := models.NewProjectMember(project.ID, p.ScrumMasterID, models.RoleScrumMaster)

	if err := s.Projects.CreateProject(ctx, project, owner, master); err != nil {
		if errors.Is(err, database.ErrProjectNameTaken) {
			return nil, newValidationError("ein Projekt mit diesem Namen existiert bereits")
		}
		return nil, err
	}

	slog.InfoContext(ctx, "Projekt erstellt",
		slog.String("project_id", project.ID.String()),
		slog.String("owner_id", userID.String()),
	)
	return project, nil
}

// Get liefert ein Projekt für jedes Mitglied.
func (s *ProjectService) Get(ctx context.Context, userID, projectID uuid.UUID) (*models.Project, error) {
	if _, err := s.Gate.Require(ctx, projectID, userID, ActionView); err != nil {
		return nil, err
	}
	project, err := s.Projects.GetProjectByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, database.ErrProjectNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return project, nil
}

// ListMine liefert die Projekte, in denen der Benutzer Mitglied ist.
func (s *ProjectService) ListMine(ctx context.Context, userID uuid.UUID) ([]*models.Project, error) {
	return s.Projects.GetProjectsByUserID(ctx, userID)
}

type UpdateProjectParams struct {
	Name        *string
	Description *string
}

// Update ändert Projektstammdaten (Product Owner oder Scrum Master).
func (s *ProjectService) Update(ctx context.Context, userID, projectID uuid.UUID, p UpdateProjectParams) (*models.Project, error) {
	if _, err := s.Gate.Require(ctx, projectID, userID, ActionEditProject); err != nil {
		return nil, err
	}
	project, err := s.Projects.GetProjectByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, database.ErrProjectNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return nil, newValidationError("der Name des Projekts darf nicht leer sein")
		}
		project.Name = *p.Name
	}
	if p.Description != nil {
		project.Description = *p.Description
	}

	if err := s.Projects.UpdateProject(ctx, project); err != nil {
		if errors.Is(err, database.ErrProjectNameTaken) {
			return nil, newValidationError("ein Projekt mit diesem Namen existiert bereits")
		}
		return nil, err
	}
	return project, nil
}

// AddMember nimmt einen Benutzer ins Projekt auf (nur Scrum Master).
func (s *ProjectService) AddMember(ctx context.Context, userID, projectID, newUserID uuid.UUID, role models.Role) (*models.ProjectMember, error) {
	if _, err := s.Gate.Require(ctx, projectID, userID, ActionManageMembers); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, newValidationError("ungültige Rolle: %s", role)
	}
	if _, err := s.Users.GetUserByID(ctx, newUserID); err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, newValidationError("der Benutzer existiert nicht")
		}
		return nil, err
	}

	member := models.NewProjectMember(projectID, newUserID, role)
	if err := s.Projects.AddMember(ctx, member); err != nil {
		switch {
		case errors.Is(err, database.ErrMemberExists):
			return nil, newValidationError("der Benutzer ist bereits Mitglied des Projekts")
		case errors.Is(err, database.ErrRoleTaken):
			return nil, newValidationError("die Rolle %s ist in diesem Projekt bereits vergeben", role)
		}
		return nil, err
	}

	slog.InfoContext(ctx, "Mitglied aufgenommen",
		slog.String("project_id", projectID.String()),
		slog.String("user_id", newUserID.String()),
		slog.String("role", string(role)),
	)
	return member, nil
}

// ListMembers liefert die Mitglieder eines Projekts.
func (s *ProjectService) ListMembers(ctx context.Context, userID, projectID uuid.UUID) ([]*models.ProjectMember, error) {
	if _, err := s.Gate.Require(ctx, projectID, userID, ActionView); err != nil {
		return nil, err
	}
	return s.Projects.ListMembers(ctx, projectID)
}

// UpdateMemberRole ändert die Rolle eines Mitglieds (nur Scrum Master).
func (s *ProjectService) UpdateMemberRole(ctx context.Context, userID, projectID, memberUserID uuid.UUID, role models.Role) error {
	if _, err := s.Gate.Require(ctx, projectID, userID, ActionManageMembers); err != nil {
		return err
	}
	if !role.Valid() {
		return newValidationError("ungültige Rolle: %s", role)
	}

	if err := s.Projects.UpdateMemberRole(ctx, projectID, memberUserID, role); err != nil {
		switch {
		case errors.Is(err, database.ErrUserNotInProject):
			return ErrNotFound
		case errors.Is(err, database.ErrRoleTaken):
			return newValidationError("die Rolle %s ist in diesem Projekt bereits vergeben", role)
		}
		return err
	}
	return nil
}

// RemoveMember entfernt ein Mitglied (nur Scrum Master). Product Owner
// und Scrum Master selbst können nicht entfernt werden, ohne vorher die
// Rolle zu übertragen.
func (s *ProjectService) RemoveMember(ctx context.Context, userID, projectID, memberUserID uuid.UUID) error {
	if _, err := s.Gate.Require(ctx, projectID, userID, ActionManageMembers); err != nil {
		return err
	}

	member, err := s.Projects.GetMember(ctx, projectID, memberUserID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotInProject) {
			return ErrNotFound
		}
		return err
	}
	if member.Role != models.RoleDeveloper {
		return newValidationError("product Owner und Scrum Master können nicht entfernt werden, solange ihre Rolle nicht übertragen wurde")
	}

	if err := s.Projects.RemoveMember(ctx, projectID, memberUserID); err != nil {
		if errors.Is(err, database.ErrUserNotInProject) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
