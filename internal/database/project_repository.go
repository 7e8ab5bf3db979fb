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

// CreateProject legt Projekt, Product Owner und Scrum Master in einer
// Transaktion an. Schlägt ein Schritt fehl, wird nichts persistiert.
func (r *sqlxRepository) CreateProject(ctx context.Context, project *models.Project, owner, master *models.ProjectMember) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("fehler beim Starten der Transaktion: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO projects (id, name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		project.ID.String(), project.Name, project.Description, project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrProjectNameTaken
		}
		slog.ErrorContext(ctx, "Fehler beim Einfügen des Projekts", slog.Any("error", err), slog.String("name", project.Name))
		return err
	}

	for _, m := range []*models.ProjectMember{owner, master} {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO project_members (id, project_id, user_id, role, joined_at) VALUES (?, ?, ?, ?, ?)`,
			m.ID.String(), m.ProjectID.String(), m.UserID.String(), m.Role, m.JoinedAt,
		)
		if err != nil {
			if isDuplicateKey(err) {
				return ErrMemberExists
			}
			slog.ErrorContext(ctx, "Fehler beim Einfügen der Projektmitgliedschaft", slog.Any("error", err), slog.String("project_id", project.ID.String()))
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.DebugContext(ctx, "Projekt mit Rollen erfolgreich erstellt", slog.String("project_id", project.ID.String()))
	return nil
}

func (r *sqlxRepository) GetProjectByID(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	var project models.Project
	query := `SELECT * FROM projects WHERE id = ? LIMIT 1`

	err := r.db.GetContext(ctx, &project, query, projectID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		slog.ErrorContext(ctx, "Fehler beim Abrufen des Projekts", slog.Any("error", err), slog.String("project_id", projectID.String()))
		return nil, err
	}
	return &project, nil
}

func (r *sqlxRepository) GetProjectsByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Project, error) {
	var projects []*models.Project
	query := `SELECT p.* FROM projects p
	           JOIN project_members pm ON pm.project_id = p.id
	           WHERE pm.user_id = ?
	           ORDER BY p.name`

	err := r.db.SelectContext(ctx, &projects, query, userID.String())
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Auflisten der Projekte des Benutzers", slog.Any("error", err), slog.String("user_id", userID.String()))
		return nil, err
	}
	return projects, nil
}

func (r *sqlxRepository) UpdateProject(ctx context.Context, project *models.Project) error {
	query := `UPDATE projects SET name = ?, description = ?, updated_at = ? WHERE id = ?`

	project.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, query, project.Name, project.Description, project.UpdatedAt, project.ID.String())
	if err != nil {
		if isDuplicateKey(err) {
			return ErrProjectNameTaken
		}
		slog.ErrorContext(ctx, "Fehler beim Aktualisieren des Projekts", slog.Any("error", err), slog.String("project_id", project.ID.String()))
		return err
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// AddMember fügt eine Mitgliedschaft hinzu. Für Product Owner und Scrum
// Master wird die Eindeutigkeit pro Projekt in der Transaktion geprüft.
func (r *sqlxRepository) AddMember(ctx context.Context, member *models.ProjectMember) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("fehler beim Starten der Transaktion: %w", err)
	}
	defer tx.Rollback()

	if member.Role == models.RoleProductOwner || member.Role == models.RoleScrumMaster {
		var count int
		err = tx.GetContext(ctx, &count,
			`SELECT COUNT(*) FROM project_members WHERE project_id = ? AND role = ? FOR UPDATE`,
			member.ProjectID.String(), member.Role,
		)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrRoleTaken
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO project_members (id, project_id, user_id, role, joined_at) VALUES (?, ?, ?, ?, ?)`,
		member.ID.String(), member.ProjectID.String(), member.UserID.String(), member.Role, member.JoinedAt,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrMemberExists
		}
		slog.ErrorContext(ctx, "Fehler beim Hinzufügen des Mitglieds", slog.Any("error", err), slog.String("project_id", member.ProjectID.String()), slog.String("user_id", member.UserID.String()))
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.DebugContext(ctx, "Mitglied erfolgreich hinzugefügt", slog.String("project_id", member.ProjectID.String()), slog.String("user_id", member.UserID.String()), slog.String("role", string(member.Role)))
	return nil
}

// GetMember ist die einzige Quelle, aus der das Berechtigungs-Gate die
// Rolle eines Benutzers in einem Projekt bezieht.
func (r *sqlxRepository) GetMember(ctx context.Context, projectID, userID uuid.UUID) (*models.ProjectMember, error) {
	var member models.ProjectMember
	query := `SELECT * FROM project_members WHERE project_id = ? AND user_id = ? LIMIT 1`

	err := r.db.GetContext(ctx, &member, query, projectID.String(), userID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			slog.DebugContext(ctx, "Benutzer nicht im Projekt gefunden", slog.String("user_id", userID.String()), slog.String("project_id", projectID.String()))
			return nil, ErrUserNotInProject
		}
		slog.ErrorContext(ctx, "Fehler beim Abrufen der Mitgliedschaft", slog.Any("error", err), slog.String("user_id", userID.String()), slog.String("project_id", projectID.String()))
		return nil, err
	}
	return &member, nil
}

func (r *sqlxRepository) ListMembers(ctx context.Context, projectID uuid.UUID) ([]*models.ProjectMember, error) {
	var members []*models.ProjectMember
	query := `SELECT * FROM project_members WHERE project_id = ? ORDER BY joined_at`

	err := r.db.SelectContext(ctx, &members, query, projectID.String())
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Auflisten der Mitglieder", slog.Any("error", err), slog.String("project_id", projectID.String()))
		return nil, err
	}
	return members, nil
}

// UpdateMemberRole ändert die Rolle eines Mitglieds; die PO/SM-Eindeutigkeit
// wird wie bei AddMember transaktional geprüft.
func (r *sqlxRepository) UpdateMemberRole(ctx context.Context, projectID, userID uuid.UUID, role models.Role) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("fehler beim Starten der Transaktion: %w", err)
	}
	defer tx.Rollback()

	if role == models.RoleProductOwner || role == models.RoleScrumMaster {
		var count int
		err = tx.GetContext(ctx, &count,
			`SELECT COUNT(*) FROM project_members WHERE project_id = ? AND role = ? AND user_id <> ? FOR UPDATE`,
			projectID.String(), role, userID.String(),
		)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrRoleTaken
		}
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE project_members SET role = ? WHERE project_id = ? AND user_id = ?`,
		role, projectID.String(), userID.String(),
	)
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Aktualisieren der Mitgliedsrolle", slog.Any("error", err), slog.String("user_id", userID.String()), slog.String("project_id", projectID.String()))
		return err
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrUserNotInProject
	}

	return tx.Commit()
}

func (r *sqlxRepository) RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error {
	query := `DELETE FROM project_members WHERE project_id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, query, projectID.String(), userID.String())
	if err != nil {
		slog.ErrorContext(ctx, "Fehler beim Entfernen des Mitglieds", slog.Any("error", err), slog.String("user_id", userID.String()), slog.String("project_id", projectID.String()))
		return err
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrUserNotInProject
	}
	slog.DebugContext(ctx, "Mitglied erfolgreich entfernt", slog.String("user_id", userID.String()), slog.String("project_id", projectID.String()))
	return nil
}
