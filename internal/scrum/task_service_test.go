package scrum

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"scrumboard/internal/models"

	"github.com/google/uuid"
)

func newTaskService(f *fixture) *TaskService {
	svc := NewTaskService(f.gate, f.store)
	svc.now = func() time.Time { return testToday }
	return svc
}

func TestTaskCreateRoles(t *testing.T) {
	f := newFixture()
	svc := newTaskService(f)
	story := f.addStory("Login", 100)
	params := CreateTaskParams{Title: "Formular bauen", EstimatedHours: 4}

	if _, err := svc.Create(context.Background(), f.po, story.ID, params); !errors.Is(err, ErrForbidden) {
		t.Errorf("Product Owner: erwartet ErrForbidden, bekommen %v", err)
	}

	task, err := svc.Create(context.Background(), f.dev, story.ID, params)
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if task.Status != models.TaskUnassigned {
		t.Errorf("erwartet UNASSIGNED, bekommen %s", task.Status)
	}
	if task.RemainingHours != 4 {
		t.Errorf("erwartet remaining_hours 4, bekommen %g", task.RemainingHours)
	}
}

func TestTaskAssignLifecycle(t *testing.T) {
	f := newFixture()
	svc := newTaskService(f)
	story := f.addStory("Login", 100)
	task := f.addTask(story.ID, "Formular bauen", 4)

	assigned, err := svc.Assign(context.Background(), f.dev, task.ID)
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if assigned.Status != models.TaskAssigned || !assigned.IsAssignedTo(f.dev) {
		t.Fatalf("erwartet ASSIGNED an dev, bekommen %s / %v", assigned.Status, assigned.AssignedTo)
	}

	// ein fremd zugewiesener Task kann nicht übernommen werden
	if _, err := svc.Assign(context.Background(), f.sm, task.ID); !IsValidation(err) {
		t.Fatalf("erwartet Validierungsfehler, bekommen %v", err)
	}

	// Unassign durch den Scrum Master setzt auf UNASSIGNED zurück
	unassigned, err := svc.Unassign(context.Background(), f.sm, task.ID)
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if unassigned.Status != models.TaskUnassigned || unassigned.AssignedTo.Valid {
		t.Fatalf("erwartet UNASSIGNED ohne Assignee, bekommen %s", unassigned.Status)
	}
}

func TestTaskStartOnlyAssignee(t *testing.T) {
	f := newFixture()
	svc := newTaskService(f)
	story := f.addStory("Login", 100)
	task := f.addTask(story.ID, "Formular bauen", 4)

	if _, err := svc.Start(context.Background(), f.dev, task.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("ohne Zuweisung: erwartet ErrForbidden, bekommen %v", err)
	}

	if _, err := svc.Assign(context.Background(), f.dev, task.ID); err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	started, err := svc.Start(context.Background(), f.dev, task.ID)
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if started.Status != models.TaskInProgress {
		t.Fatalf("erwartet IN_PROGRESS, bekommen %s", started.Status)
	}
}

func TestTaskCompletedCannotRestart(t *testing.T) {
	f := newFixture()
	svc := newTaskService(f)
	story := f.addStory("Login", 100)
	task := f.addTask(story.ID, "Formular bauen", 4)

	if _, err := svc.Assign(context.Background(), f.dev, task.ID); err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if _, err := svc.Complete(context.Background(), f.dev, task.ID, CompleteTaskParams{}); err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}

	if _, err := svc.Start(context.Background(), f.dev, task.ID); !IsValidation(err) {
		t.Fatalf("erwartet Validierungsfehler, bekommen %v", err)
	}
	if _, _, err := svc.StartSession(context.Background(), f.dev, task.ID); !IsValidation(err) {
		t.Fatalf("erwartet Validierungsfehler, bekommen %v", err)
	}
}

func TestTaskStopReturnsToAssignedAndBooksHours(t *testing.T) {
	f := newFixture()
	svc := newTaskService(f)
	story := f.addStory("Login", 100)
	task := f.addTask(story.ID, "Formular bauen", 4)

	if _, err := svc.Assign(context.Background(), f.dev, task.ID); err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}

	// nur ein laufender Task kann gestoppt werden
	if _, err := svc.Stop(context.Background(), f.dev, task.ID, nil, ""); !IsValidation(err) {
		t.Fatalf("erwartet Validierungsfehler, bekommen %v", err)
	}

	if _, err := svc.Start(context.Background(), f.dev, task.ID); err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}

	hours := 1.5
	stopped, err := svc.Stop(context.Background(), f.dev, task.ID, &hours, "Zwischenstand")
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if stopped.Status != models.TaskAssigned {
		t.Errorf("erwartet ASSIGNED, bekommen %s", stopped.Status)
	}
	if stopped.RemainingHours != 2.5 {
		t.Errorf("erwartet remaining_hours 2.5, bekommen %g", stopped.RemainingHours)
	}

	logs, err := svc.ListTimeLogs(context.Background(), f.dev, task.ID)
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if len(logs) != 1 || logs[0].HoursSpent != 1.5 {
		t.Fatalf("erwartet einen Zeiteintrag über 1.5h, bekommen %v", logs)
	}
}

func TestTaskRemainingHoursArithmetic(t *testing.T) {
	f := newFixture()
	svc := newTaskService(f)
	story := f.addStory("Login", 100)
	task := f.addTask(story.ID, "Formular bauen", 10)

	if _, err := svc.Assign(context.Background(), f.dev, task.ID); err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}

	entry, err := svc.LogTime(context.Background(), f.dev, task.ID, 3, testToday, "Markup")
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if got := f.store.tasks[task.ID].RemainingHours; got != 7 {
		t.Fatalf("nach 3h: erwartet remaining 7, bekommen %g", got)
	}

	// Korrektur des Eintrags wird vollständig neu verrechnet
	if _, err := svc.UpdateTimeLog(context.Background(), f.dev, entry.ID, 5, "Markup und Styling"); err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if got := f.store.tasks[task.ID].RemainingHours; got != 5 {
		t.Fatalf("nach Korrektur auf 5h: erwartet remaining 5, bekommen %g", got)
	}

	// Löschen nimmt die Wirkung zurück
	if err := svc.DeleteTimeLog(context.Background(), f.dev, entry.ID); err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if got := f.store.tasks[task.ID].RemainingHours; got != 10 {
		t.Fatalf("nach Löschen: erwartet remaining 10, bekommen %g", got)
	}

	// remaining wird bei null gekappt
	if _, err := svc.LogTime(context.Background(), f.dev, task.ID, 12, testToday, "alles"); err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if got := f.store.tasks[task.ID].RemainingHours; got != 0 {
		t.Fatalf("erwartet remaining 0, bekommen %g", got)
	}
}

func TestTaskEstimateEditShiftsRemaining(t *testing.T) {
	f := newFixture()
	svc := newTaskService(f)
	story := f.addStory("Login", 100)
	task := f.addTask(story.ID, "Formular bauen", 10)

	if _, err := svc.Assign(context.Background(), f.dev, task.ID); err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if _, err := svc.LogTime(context.Background(), f.dev, task.ID, 4, testToday, ""); err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}

	// 10 → 12 geschätzt: remaining 6 → 8, Verbrauch bleibt abgezogen
	hours := 12.0
	updated, err := svc.Update(context.Background(), f.dev, task.ID, UpdateTaskParams{EstimatedHours: &hours})
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if updated.RemainingHours != 8 {
		t.Fatalf("erwartet remaining 8, bekommen %g", updated.RemainingHours)
	}

	// 12 → 2 geschätzt: remaining würde negativ, wird gekappt
	hours = 2.0
	updated, err = svc.Update(context.Background(), f.dev, task.ID, UpdateTaskParams{EstimatedHours: &hours})
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if updated.RemainingHours != 0 {
		t.Fatalf("erwartet remaining 0, bekommen %g", updated.RemainingHours)
	}
}

func TestSessionStartIdempotent(t *testing.T) {
	f := newFixture()
	svc := newTaskService(f)
	story := f.addStory("Login", 100)
	task := f.addTask(story.ID, "Formular bauen", 4)

	if _, err := svc.Assign(context.Background(), f.dev, task.ID); err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}

	first, created, err := svc.StartSession(context.Background(), f.dev, task.ID)
	if err != nil || !created {
		t.Fatalf("erwartet neue Session, bekommen created=%v err=%v", created, err)
	}
	second, created, err := svc.StartSession(context.Background(), f.dev, task.ID)
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if created || second.ID != first.ID {
		t.Fatalf("erwartet dieselbe offene Session %s, bekommen %s (created=%v)", first.ID, second.ID, created)
	}

	// genau eine offene Session
	open := 0
	for _, s := range f.store.sessions {
		if s.TaskID == task.ID && s.Open() {
			open++
		}
	}
	if open != 1 {
		t.Fatalf("erwartet genau eine offene Session, bekommen %d", open)
	}

	// Start setzt den Task auf IN_PROGRESS
	if got := f.store.tasks[task.ID].Status; got != models.TaskInProgress {
		t.Fatalf("erwartet IN_PROGRESS, bekommen %s", got)
	}
}

func TestSessionOpenLookup(t *testing.T) {
	f := newFixture()
	svc := newTaskService(f)
	story := f.addStory("Login", 100)
	task := f.addTask(story.ID, "Formular bauen", 4)

	if _, err := svc.Assign(context.Background(), f.dev, task.ID); err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}

	if _, err := svc.OpenSession(context.Background(), f.dev, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ohne offene Session: erwartet ErrNotFound, bekommen %v", err)
	}

	started, _, err := svc.StartSession(context.Background(), f.dev, task.ID)
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}

	open, err := svc.OpenSession(context.Background(), f.dev, task.ID)
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if open.ID != started.ID {
		t.Fatalf("erwartet Session %s, bekommen %s", started.ID, open.ID)
	}

	// fremde Benutzer sehen nur ihre eigenen Sessions
	if _, err := svc.OpenSession(context.Background(), f.sm, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("erwartet ErrNotFound für anderen Benutzer, bekommen %v", err)
	}

	if _, _, err := svc.StopSession(context.Background(), f.dev, task.ID); err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if _, err := svc.OpenSession(context.Background(), f.dev, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("nach Stop: erwartet ErrNotFound, bekommen %v", err)
	}
}

func TestSessionStopOnlyAssigneeAndNeedsOpenSession(t *testing.T) {
	f := newFixture()
	svc := newTaskService(f)
	story := f.addStory("Login", 100)
	task := f.addTask(story.ID, "Formular bauen", 4)

	if _, err := svc.Assign(context.Background(), f.dev, task.ID); err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}

	if _, _, err := svc.StopSession(context.Background(), f.dev, task.ID); !IsValidation(err) {
		t.Fatalf("ohne offene Session: erwartet Validierungsfehler, bekommen %v", err)
	}

	if _, _, err := svc.StartSession(context.Background(), f.dev, task.ID); err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if _, _, err := svc.StopSession(context.Background(), f.sm, task.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("nicht Assignee: erwartet ErrForbidden, bekommen %v", err)
	}
}

func TestSessionStopBillsMinimumHalfHour(t *testing.T) {
	f := newFixture()
	svc := newTaskService(f)
	story := f.addStory("Login", 100)
	task := f.addTask(story.ID, "Formular bauen", 4)

	if _, err := svc.Assign(context.Background(), f.dev, task.ID); err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}

	clock := testToday
	f.store.clock = func() time.Time { return clock }

	if _, _, err := svc.StartSession(context.Background(), f.dev, task.ID); err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}

	// nach 10 Minuten gestoppt: 0,5h Mindestabrechnung
	clock = clock.Add(10 * time.Minute)
	_, entry, err := svc.StopSession(context.Background(), f.dev, task.ID)
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if entry.HoursSpent != models.MinSessionHours {
		t.Fatalf("erwartet 0,5h, bekommen %g", entry.HoursSpent)
	}
	if got := f.store.tasks[task.ID].RemainingHours; got != 3.5 {
		t.Fatalf("erwartet remaining 3,5, bekommen %g", got)
	}
}

func TestSessionStopTwoHours(t *testing.T) {
	f := newFixture()
	svc := newTaskService(f)
	story := f.addStory("Login", 100)
	task := f.addTask(story.ID, "Formular bauen", 4)

	if _, err := svc.Assign(context.Background(), f.dev, task.ID); err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}

	clock := testToday
	f.store.clock = func() time.Time { return clock }

	if _, _, err := svc.StartSession(context.Background(), f.dev, task.ID); err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}

	clock = clock.Add(2 * time.Hour)
	session, entry, err := svc.StopSession(context.Background(), f.dev, task.ID)
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	if math.Abs(entry.HoursSpent-2.0) > 0.1 {
		t.Fatalf("erwartet ca. 2,0h, bekommen %g", entry.HoursSpent)
	}
	if !session.EndTime.Valid {
		t.Fatal("erwartet gesetzte end_time")
	}
	if got := f.store.tasks[task.ID].RemainingHours; math.Abs(got-2.0) > 0.1 {
		t.Fatalf("erwartet remaining ca. 2,0, bekommen %g", got)
	}
}

func TestTimeLogEditOwnerOrScrumMaster(t *testing.T) {
	f := newFixture()
	svc := newTaskService(f)
	story := f.addStory("Login", 100)
	task := f.addTask(story.ID, "Formular bauen", 4)

	if _, err := svc.Assign(context.Background(), f.dev, task.ID); err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}
	entry, err := svc.LogTime(context.Background(), f.dev, task.ID, 1, testToday, "")
	if err != nil {
		t.Fatalf("unerwarteter Fehler: %v", err)
	}

	if _, err := svc.UpdateTimeLog(context.Background(), f.po, entry.ID, 2, ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("Product Owner: erwartet ErrForbidden, bekommen %v", err)
	}
	if _, err := svc.UpdateTimeLog(context.Background(), f.sm, entry.ID, 2, "korrigiert"); err != nil {
		t.Fatalf("Scrum Master: unerwarteter Fehler: %v", err)
	}
}

// Der Ablauf aus einem kompletten Sprint-Zyklus: anlegen, schätzen,
// zuordnen, abarbeiten, abnehmen, abschließen.
func TestFullSprintCycle(t *testing.T) {
	f := newFixture()
	sprints := newSprintService(f)
	stories := NewStoryService(f.gate, f.store)
	tasks := newTaskService(f)
	ctx := context.Background()

	sprint, err := sprints.Create(ctx, f.sm, f.projectID, CreateSprintParams{
		StartDate: day(0), EndDate: day(14), Velocity: 20,
	})
	if err != nil {
		t.Fatalf("Sprint anlegen: %v", err)
	}

	story, err := stories.Create(ctx, f.po, f.projectID, CreateStoryParams{
		Name: "Login", Priority: models.PriorityMustHave, BusinessValue: 100,
	})
	if err != nil {
		t.Fatalf("Story anlegen: %v", err)
	}
	if _, err := stories.Estimate(ctx, f.sm, story.ID, 5); err != nil {
		t.Fatalf("Story schätzen: %v", err)
	}
	if err := stories.AddToSprint(ctx, f.sm, sprint.ID, []uuid.UUID{story.ID}); err != nil {
		t.Fatalf("Story zuordnen: %v", err)
	}

	task, err := tasks.Create(ctx, f.dev, story.ID, CreateTaskParams{Title: "Formular bauen", EstimatedHours: 4})
	if err != nil {
		t.Fatalf("Task anlegen: %v", err)
	}
	if _, err := tasks.Assign(ctx, f.dev, task.ID); err != nil {
		t.Fatalf("Task zuweisen: %v", err)
	}

	clock := testToday
	f.store.clock = func() time.Time { return clock }
	if _, _, err := tasks.StartSession(ctx, f.dev, task.ID); err != nil {
		t.Fatalf("Session starten: %v", err)
	}
	clock = clock.Add(2 * time.Hour)
	if _, _, err := tasks.StopSession(ctx, f.dev, task.ID); err != nil {
		t.Fatalf("Session stoppen: %v", err)
	}
	if got := f.store.tasks[task.ID].RemainingHours; math.Abs(got-2.0) > 0.1 {
		t.Fatalf("erwartet remaining ca. 2,0, bekommen %g", got)
	}

	done, err := tasks.Complete(ctx, f.dev, task.ID, CompleteTaskParams{})
	if err != nil {
		t.Fatalf("Task abschließen: %v", err)
	}
	if done.Status != models.TaskCompleted || done.RemainingHours != 0 {
		t.Fatalf("erwartet COMPLETED mit remaining 0, bekommen %s / %g", done.Status, done.RemainingHours)
	}

	if _, err := stories.UpdateStatus(ctx, f.dev, story.ID, models.StoryInProgress); err != nil {
		t.Fatalf("Story starten: %v", err)
	}
	if _, err := stories.UpdateStatus(ctx, f.dev, story.ID, models.StoryDone); err != nil {
		t.Fatalf("Story fertigstellen: %v", err)
	}
	if _, err := stories.UpdateStatus(ctx, f.po, story.ID, models.StoryAccepted); err != nil {
		t.Fatalf("Story abnehmen: %v", err)
	}

	finished, err := sprints.Finish(ctx, f.sm, sprint.ID)
	if err != nil {
		t.Fatalf("Sprint abschließen: %v", err)
	}
	if !finished.IsCompleted {
		t.Fatal("erwartet is_completed = true")
	}
}
