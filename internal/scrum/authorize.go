package scrum

import (
	"context"
	"errors"
	"log/slog"

	"scrumboard/internal/database"
	"scrumboard/internal/models"

	"github.com/google/uuid"
)

// Action ist eine zugriffsgeschützte Operation. Die Tabelle actionRoles
// bildet die komplette Rollen-Matrix ab; feinere Regeln (z.B. "Assignee
// oder Scrum Master") setzen die Services auf dieser Tabelle auf.
type Action string

const (
	// Lesen: jedes Projektmitglied.
	ActionView Action = "VIEW"
	// Sprint anlegen/ändern/löschen/abschließen, Stories in den/aus dem
	// Sprint bewegen: nur Scrum Master.
	ActionManageSprint Action = "MANAGE_SPRINT"
	// Story anlegen/ändern/löschen: Product Owner oder Scrum Master.
	ActionManageStory Action = "MANAGE_STORY"
	// Story Points setzen: nur Scrum Master.
	ActionEstimateStory Action = "ESTIMATE_STORY"
	// Story annehmen/ablehnen: nur Product Owner.
	ActionAcceptStory Action = "ACCEPT_STORY"
	// Arbeits-Status der Story (IN_PROGRESS, DONE): Developer oder Scrum Master.
	ActionAdvanceStory Action = "ADVANCE_STORY"
	// Task anlegen bzw. sich selbst zuweisen: Scrum Master oder Developer.
	ActionCreateTask Action = "CREATE_TASK"
	// Projektstammdaten ändern: Product Owner oder Scrum Master.
	ActionEditProject Action = "EDIT_PROJECT"
	// Mitglieder verwalten: nur Scrum Master.
	ActionManageMembers Action = "MANAGE_MEMBERS"
)

var actionRoles = map[Action][]models.Role{
	ActionView:          {models.RoleProductOwner, models.RoleScrumMaster, models.RoleDeveloper},
	ActionManageSprint:  {models.RoleScrumMaster},
	ActionManageStory:   {models.RoleProductOwner, models.RoleScrumMaster},
	ActionEstimateStory: {models.RoleScrumMaster},
	ActionAcceptStory:   {models.RoleProductOwner},
	ActionAdvanceStory:  {models.RoleDeveloper, models.RoleScrumMaster},
	ActionCreateTask:    {models.RoleScrumMaster, models.RoleDeveloper},
	ActionEditProject:   {models.RoleProductOwner, models.RoleScrumMaster},
	ActionManageMembers: {models.RoleScrumMaster},
}

// Allowed ist die reine Entscheidungsfunktion über (Rolle, Aktion).
func Allowed(role models.Role, action Action) bool {
	for _, r := range actionRoles[action] {
		if r == role {
			return true
		}
	}
	return false
}

// Gate löst für eine Zielentität das besitzende Projekt und die Rolle des
// Aufrufers auf und entscheidet anhand der Rollen-Tabelle. Fehlende
// Entitäten werden als ErrNotFound gemeldet, fehlende Mitgliedschaft als
// ErrForbidden, nie als interner Fehler.
type Gate struct {
	Projects database.ProjectRepository
	Sprints  database.SprintRepository
	Stories  database.StoryRepository
	Tasks    database.TaskRepository
}

func NewGate(projects database.ProjectRepository, sprints database.SprintRepository,
	stories database.StoryRepository, tasks database.TaskRepository) *Gate {
	return &Gate{Projects: projects, Sprints: sprints, Stories: stories, Tasks: tasks}
}

// MemberRole liefert die Rolle des Benutzers im Projekt oder ErrForbidden.
func (g *Gate) MemberRole(ctx context.Context, projectID, userID uuid.UUID) (models.Role, error) {
	member, err := g.Projects.GetMember(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotInProject) {
			return "", ErrForbidden
		}
		return "", err
	}
	return member.Role, nil
}

// Require prüft, ob der Benutzer die Aktion im Projekt ausführen darf,
// und liefert seine Rolle für nachgelagerte Detailregeln zurück.
func (g *Gate) Require(ctx context.Context, projectID, userID uuid.UUID, action Action) (models.Role, error) {
	role, err := g.MemberRole(ctx, projectID, userID)
	if err != nil {
		return "", err
	}
	if !Allowed(role, action) {
		slog.DebugContext(ctx, "Aktion für Rolle nicht erlaubt",
			slog.String("user_id", userID.String()),
			slog.String("project_id", projectID.String()),
			slog.String("role", string(role)),
			slog.String("action", string(action)),
		)
		return "", ErrForbidden
	}
	return role, nil
}

// ProjectOfSprint löst das besitzende Projekt eines Sprints auf.
func (g *Gate) ProjectOfSprint(ctx context.Context, sprintID uuid.UUID) (*models.Sprint, uuid.UUID, error) {
	sprint, err := g.Sprints.GetSprintByID(ctx, sprintID)
	if err != nil {
		if errors.Is(err, database.ErrSprintNotFound) {
			return nil, uuid.Nil, ErrNotFound
		}
		return nil, uuid.Nil, err
	}
	return sprint, sprint.ProjectID, nil
}

// ProjectOfStory löst das besitzende Projekt einer Story auf. Der direkte
// Projekt-Link hat Vorrang vor dem über den Sprint abgeleiteten.
func (g *Gate) ProjectOfStory(ctx context.Context, storyID uuid.UUID) (*models.UserStory, uuid.UUID, error) {
	story, err := g.Stories.GetStoryByID(ctx, storyID)
	if err != nil {
		if errors.Is(err, database.ErrStoryNotFound) {
			return nil, uuid.Nil, ErrNotFound
		}
		return nil, uuid.Nil, err
	}
	if story.ProjectID != uuid.Nil {
		return story, story.ProjectID, nil
	}
	if story.SprintID.Valid {
		sprint, err := g.Sprints.GetSprintByID(ctx, story.SprintID.UUID)
		if err != nil {
			if errors.Is(err, database.ErrSprintNotFound) {
				return nil, uuid.Nil, ErrNotFound
			}
			return nil, uuid.Nil, err
		}
		return story, sprint.ProjectID, nil
	}
	return nil, uuid.Nil, ErrNotFound
}

// ProjectOfTask läuft die Kette Task → Story → Projekt.
func (g *Gate) ProjectOfTask(ctx context.Context, taskID uuid.UUID) (*models.Task, uuid.UUID, error) {
	task, err := g.Tasks.GetTaskByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, database.ErrTaskNotFound) {
			return nil, uuid.Nil, ErrNotFound
		}
		return nil, uuid.Nil, err
	}
	_, projectID, err := g.ProjectOfStory(ctx, task.StoryID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	return task, projectID, nil
}
