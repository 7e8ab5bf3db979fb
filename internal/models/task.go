package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskUnassigned TaskStatus = "UNASSIGNED"
	TaskAssigned   TaskStatus = "ASSIGNED"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskCompleted  TaskStatus = "COMPLETED"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskUnassigned, TaskAssigned, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

// MinSessionHours ist die Mindestabrechnung beim Stoppen einer Session:
// Sessions unter 30 Minuten werden mit 0,5 Stunden verbucht.
const MinSessionHours = 0.5

// Task ist eine zuweisbare Arbeitseinheit unter einer User Story.
// RemainingHours startet bei EstimatedHours und wird durch TimeLogs reduziert.
type Task struct {
	ID             uuid.UUID     `db:"id" json:"id"`
	StoryID        uuid.UUID     `db:"story_id" json:"story_id"`
	Title          string        `db:"title" json:"title"`
	Description    string        `db:"description" json:"description"`
	Status         TaskStatus    `db:"status" json:"status"`
	EstimatedHours float64       `db:"estimated_hours" json:"estimated_hours"`
	RemainingHours float64       `db:"remaining_hours" json:"remaining_hours"`
	AssignedTo     uuid.NullUUID `db:"assigned_to" json:"assigned_to"`
	CreatedBy      uuid.NullUUID `db:"created_by" json:"created_by"`
	Deleted        bool          `db:"is_deleted" json:"-"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

func NewTask(storyID uuid.UUID, title, description string, estimatedHours float64, createdBy uuid.UUID) *Task {
	now := time.Now().UTC()
	return &Task{
		ID:             uuid.New(),
		StoryID:        storyID,
		Title:          title,
		Description:    description,
		Status:         TaskUnassigned,
		EstimatedHours: estimatedHours,
		RemainingHours: estimatedHours,
		CreatedAt:      now,
		UpdatedAt:      now,
		CreatedBy:      uuid.NullUUID{UUID: createdBy, Valid: true},
	}
}

// IsAssignedTo prüft, ob der Task aktuell diesem Benutzer zugewiesen ist.
func (t *Task) IsAssignedTo(userID uuid.UUID) bool {
	return t.AssignedTo.Valid && t.AssignedTo.UUID == userID
}

// TimeLog ist ein Zeiteintrag eines Benutzers auf einem Task,
// manuell erfasst oder beim Stoppen einer Session erzeugt.
type TimeLog struct {
	ID          uuid.UUID `db:"id" json:"id"`
	TaskID      uuid.UUID `db:"task_id" json:"task_id"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	HoursSpent  float64   `db:"hours_spent" json:"hours_spent"`
	Date        time.Time `db:"log_date" json:"date"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

func NewTimeLog(taskID, userID uuid.UUID, hours float64, date time.Time, description string) *TimeLog {
	now := time.Now().UTC()
	return &TimeLog{
		ID:          uuid.New(),
		TaskID:      taskID,
		UserID:      userID,
		HoursSpent:  hours,
		Date:        DateOnly(date),
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// TaskSession ist ein offenes Arbeitsintervall (EndTime == NULL solange offen).
// Pro (Task, Benutzer) existiert höchstens eine offene Session.
type TaskSession struct {
	ID        uuid.UUID    `db:"id" json:"id"`
	TaskID    uuid.UUID    `db:"task_id" json:"task_id"`
	UserID    uuid.UUID    `db:"user_id" json:"user_id"`
	StartTime time.Time    `db:"start_time" json:"start_time"`
	EndTime   sql.NullTime `db:"end_time" json:"end_time"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}

func NewTaskSession(taskID, userID uuid.UUID) *TaskSession {
	now := time.Now().UTC()
	return &TaskSession{
		ID:        uuid.New(),
		TaskID:    taskID,
		UserID:    userID,
		StartTime: now,
		CreatedAt: now,
	}
}

// Open prüft, ob die Session noch läuft.
func (s *TaskSession) Open() bool {
	return !s.EndTime.Valid
}

// BillableHours berechnet die abzurechnenden Stunden bis zum Zeitpunkt end,
// mindestens MinSessionHours.
func (s *TaskSession) BillableHours(end time.Time) float64 {
	hours := end.Sub(s.StartTime).Hours()
	if hours < MinSessionHours {
		return MinSessionHours
	}
	return hours
}
