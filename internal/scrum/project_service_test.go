package scrum

import (
	"context"
	"errors"
	"testing"

	"scrumboard/internal/models"

	"github.com/google/uuid"
)

func newProjectService(f *fixture) *ProjectService {
	return NewProjectService(f.gate, f.store, f.store)
}

func TestProjectCreateAssignsRoles(t *testing.T) {
	f := newFixture()
	svc := newProjectService(f)

	project, err := svc.Create(context.Background(), f.po, CreateProjectParams{
		Name: "Atlas", Description: "Neues Reporting", ScrumMasterID: f.sm,
	})
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}

	owner, err := f.store.GetMember(context.Background(), project.ID, f.po)
	if err != nil || owner.Role != models.RoleProductOwner {
		t.Fatalf("erwartet PRODUCT_OWNER für den Ersteller, bekommen %v / %v", owner, err)
	}
	master, err := f.store.GetMember(context.Background(), project.ID, f.sm)
	if err != nil || master.Role != models.RoleScrumMaster {
		t.Fatalf("erwartet SCRUM_MASTER, bekommen %v / %v", master, err)
	}
}

func TestProjectCreateNameTaken(t *testing.T) {
	f := newFixture()
	svc := newProjectService(f)

	// "Phoenix" existiert bereits aus der Fixture, case-insensitiv
	if _, err := svc.Create(context.Background(), f.po, CreateProjectParams{
		Name: "phoenix", ScrumMasterID: f.sm,
	}); !IsValidation(err) {
		t.Fatalf("erwartet Validierungsfehler, bekommen %v", err)
	}
}

func TestProjectCreateRejectsOwnerAsScrumMaster(t *testing.T) {
	f := newFixture()
	svc := newProjectService(f)

	project, err := svc.Create(context.Background(), f.po, CreateProjectParams{
		Name: "Atlas", ScrumMasterID: f.po,
	})
	if !IsValidation(err) {
		t.Fatalf("erwartet Validierungsfehler, bekommen project=%v err=%v", project != nil, err)
	}
	if project != nil {
		t.Fatal("bei PO == SM darf kein Projekt entstehen")
	}
}

func TestProjectCreateUnknownScrumMaster(t *testing.T) {
	f := newFixture()
	svc := newProjectService(f)

	if _, err := svc.Create(context.Background(), f.po, CreateProjectParams{
		Name: "Atlas", ScrumMasterID: uuid.New(),
	}); !IsValidation(err) {
		t.Fatalf("erwartet Validierungsfehler, bekommen %v", err)
	}
}

func TestProjectGetOnlyMembers(t *testing.T) {
	f := newFixture()
	svc := newProjectService(f)

	if _, err := svc.Get(context.Background(), f.outsider, f.projectID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("erwartet ErrForbidden, bekommen %v", err)
	}
	if _, err := svc.Get(context.Background(), f.dev, f.projectID); err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
}

func TestProjectAddMemberOnlyScrumMaster(t *testing.T) {
	f := newFixture()
	svc := newProjectService(f)
	newcomer := models.NewUser("neu@example.com", "neu", "hash")
	f.store.users[newcomer.ID] = newcomer

	if _, err := svc.AddMember(context.Background(), f.po, f.projectID, newcomer.ID, models.RoleDeveloper); !errors.Is(err, ErrForbidden) {
		t.Fatalf("erwartet ErrForbidden, bekommen %v", err)
	}

	member, err := svc.AddMember(context.Background(), f.sm, f.projectID, newcomer.ID, models.RoleDeveloper)
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if member.Role != models.RoleDeveloper {
		t.Fatalf("erwartet DEVELOPER, bekommen %s", member.Role)
	}

	// doppelte Aufnahme
	if _, err := svc.AddMember(context.Background(), f.sm, f.projectID, newcomer.ID, models.RoleDeveloper); !IsValidation(err) {
		t.Fatalf("erwartet Validierungsfehler, bekommen %v", err)
	}
}

func TestProjectSingleOwnerAndMaster(t *testing.T) {
	f := newFixture()
	svc := newProjectService(f)
	newcomer := models.NewUser("neu@example.com", "neu", "hash")
	f.store.users[newcomer.ID] = newcomer

	if _, err := svc.AddMember(context.Background(), f.sm, f.projectID, newcomer.ID, models.RoleProductOwner); !IsValidation(err) {
		t.Fatalf("zweiter Product Owner: erwartet Validierungsfehler, bekommen %v", err)
	}
	if _, err := svc.AddMember(context.Background(), f.sm, f.projectID, newcomer.ID, models.RoleScrumMaster); !IsValidation(err) {
		t.Fatalf("zweiter Scrum Master: erwartet Validierungsfehler, bekommen %v", err)
	}
}

func TestProjectRemoveMemberRules(t *testing.T) {
	f := newFixture()
	svc := newProjectService(f)

	// Rollenträger können nicht entfernt werden
	if err := svc.RemoveMember(context.Background(), f.sm, f.projectID, f.po); !IsValidation(err) {
		t.Fatalf("erwartet Validierungsfehler, bekommen %v", err)
	}

	if err := svc.RemoveMember(context.Background(), f.sm, f.projectID, f.dev); err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if _, err := f.store.GetMember(context.Background(), f.projectID, f.dev); err == nil {
		t.Fatal("der Developer sollte entfernt sein")
	}
}

func TestProjectListMine(t *testing.T) {
	f := newFixture()
	svc := newProjectService(f)

	mine, err := svc.ListMine(context.Background(), f.dev)
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != f.projectID {
		t.Fatalf("erwartet genau das Fixture-Projekt, bekommen %d Projekte", len(mine))
	}

	none, err := svc.ListMine(context.Background(), f.outsider)
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("erwartet keine Projekte, bekommen %d", len(none))
	}
}
