package scrum

import (
	"context"
	"errors"
	"strings"
	"testing"

	"scrumboard/internal/models"

	"github.com/google/uuid"
)

func TestStoryCreateRoles(t *testing.T) {
	f := newFixture()
	svc := NewStoryService(f.gate, f.store)
	params := CreateStoryParams{Name: "Login", Priority: models.PriorityMustHave, BusinessValue: 100}

	if _, err := svc.Create(context.Background(), f.dev, f.projectID, params); !errors.Is(err, ErrForbidden) {
		t.Errorf("Developer: erwartet ErrForbidden, bekommen %v", err)
	}

	story, err := svc.Create(context.Background(), f.po, f.projectID, params)
	if err != nil {
		t.Fatalf("Product Owner: unerwarteter Fehler: %v", err)
	}
	if story.Status != models.StoryNotStarted {
		t.Errorf("erwartet Status NOT_STARTED, bekommen %s", story.Status)
	}
	if story.InSprint() {
		t.Error("neue Story darf keinem Sprint zugeordnet sein")
	}
}

func TestStoryNameUniquePerProjectCaseInsensitive(t *testing.T) {
	f := newFixture()
	svc := NewStoryService(f.gate, f.store)

	if _, err := svc.Create(context.Background(), f.po, f.projectID, CreateStoryParams{
		Name: "Login", Priority: models.PriorityMustHave, BusinessValue: 100,
	}); err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if _, err := svc.Create(context.Background(), f.po, f.projectID, CreateStoryParams{
		Name: "LOGIN", Priority: models.PriorityMustHave, BusinessValue: 100,
	}); !IsValidation(err) {
		t.Fatalf("erwartet Validierungsfehler, bekommen %v", err)
	}
}

func TestStoryEstimateRules(t *testing.T) {
	f := newFixture()
	svc := NewStoryService(f.gate, f.store)
	story := f.addStory("Login", 100)

	// nur Scrum Master
	for _, userID := range []uuid.UUID{f.po, f.dev} {
		if _, err := svc.Estimate(context.Background(), userID, story.ID, 5); !errors.Is(err, ErrForbidden) {
			t.Errorf("erwartet ErrForbidden, bekommen %v", err)
		}
	}

	if _, err := svc.Estimate(context.Background(), f.sm, story.ID, 0); !IsValidation(err) {
		t.Errorf("Punkte 0: erwartet Validierungsfehler, bekommen %v", err)
	}

	estimated, err := svc.Estimate(context.Background(), f.sm, story.ID, 5)
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if !estimated.IsEstimated() || estimated.StoryPoints.Int64 != 5 {
		t.Fatalf("erwartet 5 Punkte, bekommen %+v", estimated.StoryPoints)
	}

	// im Sprint sind die Punkte eingefroren
	sprint := models.NewSprint(f.projectID, day(0), day(13), 20, f.sm)
	f.store.sprints[sprint.ID] = sprint
	f.store.stories[story.ID].SprintID = uuid.NullUUID{UUID: sprint.ID, Valid: true}

	if _, err := svc.Estimate(context.Background(), f.sm, story.ID, 8); !IsValidation(err) {
		t.Fatalf("erwartet Validierungsfehler, bekommen %v", err)
	}
}

func TestStoryEstimateRequiresBusinessValue(t *testing.T) {
	f := newFixture()
	svc := NewStoryService(f.gate, f.store)
	story := f.addStory("Ohne Wert", 0)

	if _, err := svc.Estimate(context.Background(), f.sm, story.ID, 5); !IsValidation(err) {
		t.Fatalf("erwartet Validierungsfehler, bekommen %v", err)
	}
}

func TestStoryStatusAcceptOnlyProductOwnerFromDone(t *testing.T) {
	f := newFixture()
	svc := NewStoryService(f.gate, f.store)
	story := f.addStory("Login", 100)

	// ACCEPTED aus NOT_STARTED ist auch für den PO verboten
	if _, err := svc.UpdateStatus(context.Background(), f.po, story.ID, models.StoryAccepted); !IsValidation(err) {
		t.Fatalf("erwartet Validierungsfehler, bekommen %v", err)
	}

	// Developer arbeitet die Story durch
	if _, err := svc.UpdateStatus(context.Background(), f.dev, story.ID, models.StoryInProgress); err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), f.dev, story.ID, models.StoryDone); err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}

	// SM und Developer dürfen nicht annehmen
	for _, userID := range []uuid.UUID{f.sm, f.dev} {
		if _, err := svc.UpdateStatus(context.Background(), userID, story.ID, models.StoryAccepted); !errors.Is(err, ErrForbidden) {
			t.Errorf("erwartet ErrForbidden, bekommen %v", err)
		}
	}

	accepted, err := svc.UpdateStatus(context.Background(), f.po, story.ID, models.StoryAccepted)
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if accepted.Status != models.StoryAccepted {
		t.Fatalf("erwartet ACCEPTED, bekommen %s", accepted.Status)
	}

	// Endzustand ist endgültig
	if _, err := svc.UpdateStatus(context.Background(), f.dev, story.ID, models.StoryInProgress); !IsValidation(err) {
		t.Fatalf("erwartet Validierungsfehler, bekommen %v", err)
	}
}

func TestStoryAddToSprintBatchAtomic(t *testing.T) {
	f := newFixture()
	svc := NewStoryService(f.gate, f.store)

	sprint := models.NewSprint(f.projectID, day(0), day(13), 20, f.sm)
	f.store.sprints[sprint.ID] = sprint

	estimated := f.addStory("Login", 100)
	if _, err := svc.Estimate(context.Background(), f.sm, estimated.ID, 5); err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	unestimated := f.addStory("Logout", 50)

	err := svc.AddToSprint(context.Background(), f.sm, sprint.ID, []uuid.UUID{estimated.ID, unestimated.ID})
	if !IsValidation(err) {
		t.Fatalf("erwartet Validierungsfehler, bekommen %v", err)
	}
	if !strings.Contains(err.Error(), unestimated.ID.String()) {
		t.Errorf("die Meldung sollte die ungeschätzte Story benennen: %q", err.Error())
	}

	// der ganze Batch wurde verworfen
	if f.store.stories[estimated.ID].InSprint() {
		t.Fatal("die geschätzte Story darf bei einem abgelehnten Batch nicht zugeordnet sein")
	}

	if err := svc.AddToSprint(context.Background(), f.sm, sprint.ID, []uuid.UUID{estimated.ID}); err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if !f.store.stories[estimated.ID].InSprint() {
		t.Fatal("die Story sollte dem Sprint zugeordnet sein")
	}
}

func TestStoryAddToSprintOnlyScrumMaster(t *testing.T) {
	f := newFixture()
	svc := NewStoryService(f.gate, f.store)

	sprint := models.NewSprint(f.projectID, day(0), day(13), 20, f.sm)
	f.store.sprints[sprint.ID] = sprint
	story := f.addStory("Login", 100)

	if err := svc.AddToSprint(context.Background(), f.po, sprint.ID, []uuid.UUID{story.ID}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("erwartet ErrForbidden, bekommen %v", err)
	}
}

func TestStorySoftDeleteHidesStory(t *testing.T) {
	f := newFixture()
	svc := NewStoryService(f.gate, f.store)
	story := f.addStory("Login", 100)

	if err := svc.Delete(context.Background(), f.dev, story.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("erwartet ErrForbidden, bekommen %v", err)
	}
	if err := svc.Delete(context.Background(), f.po, story.ID); err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}

	if _, err := svc.Get(context.Background(), f.po, story.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("erwartet ErrNotFound, bekommen %v", err)
	}

	// die Zeile existiert noch, nur markiert
	if !f.store.stories[story.ID].Deleted {
		t.Fatal("erwartet is_deleted = true")
	}
}

func TestStoryBacklogFilter(t *testing.T) {
	f := newFixture()
	svc := NewStoryService(f.gate, f.store)

	sprint := models.NewSprint(f.projectID, day(0), day(13), 20, f.sm)
	f.store.sprints[sprint.ID] = sprint

	inSprint := f.addStory("Login", 100)
	inSprint.StoryPoints.Int64 = 5
	inSprint.StoryPoints.Valid = true
	inSprint.SprintID = uuid.NullUUID{UUID: sprint.ID, Valid: true}
	backlog := f.addStory("Logout", 50)

	got, err := svc.List(context.Background(), f.dev, f.projectID, true)
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if len(got) != 1 || got[0].ID != backlog.ID {
		t.Fatalf("erwartet nur die Backlog-Story, bekommen %d Stories", len(got))
	}
}
