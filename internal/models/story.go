package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Priority string

const (
	PriorityMustHave   Priority = "MUST_HAVE"
	PriorityShouldHave Priority = "SHOULD_HAVE"
	PriorityCouldHave  Priority = "COULD_HAVE"
	PriorityWontHave   Priority = "WONT_HAVE"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityMustHave, PriorityShouldHave, PriorityCouldHave, PriorityWontHave:
		return true
	}
	return false
}

type StoryStatus string

const (
	StoryNotStarted StoryStatus = "NOT_STARTED"
	StoryInProgress StoryStatus = "IN_PROGRESS"
	StoryDone       StoryStatus = "DONE"
	StoryAccepted   StoryStatus = "ACCEPTED"
	StoryRejected   StoryStatus = "REJECTED"
)

func (s StoryStatus) Valid() bool {
	switch s {
	case StoryNotStarted, StoryInProgress, StoryDone, StoryAccepted, StoryRejected:
		return true
	}
	return false
}

// Terminal: ACCEPTED und REJECTED sind Endzustände; nur solche Stories
// zählen beim Sprint-Abschluss als fertig.
func (s StoryStatus) Terminal() bool {
	return s == StoryAccepted || s == StoryRejected
}

// UserStory ist ein Backlog-Eintrag; SprintID == NULL bedeutet Backlog.
// Gelöschte Stories bleiben als Zeile erhalten (Deleted-Flag), jede
// Leseabfrage filtert den Zustand explizit.
type UserStory struct {
	ID                 uuid.UUID     `db:"id" json:"id"`
	ProjectID          uuid.UUID     `db:"project_id" json:"project_id"`
	SprintID           uuid.NullUUID `db:"sprint_id" json:"sprint_id"`
	Name               string        `db:"name" json:"name"`
	Description        string        `db:"description" json:"description"`
	AcceptanceCriteria string        `db:"acceptance_criteria" json:"acceptance_criteria"`
	Priority           Priority      `db:"priority" json:"priority"`
	BusinessValue      int           `db:"business_value" json:"business_value"`
	StoryPoints        sql.NullInt64 `db:"story_points" json:"story_points"`
	Status             StoryStatus   `db:"status" json:"status"`
	AssignedTo         uuid.NullUUID `db:"assigned_to" json:"assigned_to"`
	CreatedBy          uuid.NullUUID `db:"created_by" json:"created_by"`
	Deleted            bool          `db:"is_deleted" json:"-"`
	CreatedAt          time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time     `db:"updated_at" json:"updated_at"`
}

func NewUserStory(projectID uuid.UUID, name, description, criteria string, priority Priority, businessValue int, createdBy uuid.UUID) *UserStory {
	now := time.Now().UTC()
	return &UserStory{
		ID:                 uuid.New(),
		ProjectID:          projectID,
		Name:               name,
		Description:        description,
		AcceptanceCriteria: criteria,
		Priority:           priority,
		BusinessValue:      businessValue,
		Status:             StoryNotStarted,
		CreatedBy:          uuid.NullUUID{UUID: createdBy, Valid: true},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// IsEstimated prüft, ob Story Points gesetzt wurden.
func (s *UserStory) IsEstimated() bool {
	return s.StoryPoints.Valid
}

// InSprint prüft, ob die Story einem Sprint zugeordnet ist.
func (s *UserStory) InSprint() bool {
	return s.SprintID.Valid
}

// StoryComment ist ein Kommentar unter einer User Story.
type StoryComment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	StoryID   uuid.UUID `db:"story_id" json:"story_id"`
	AuthorID  uuid.UUID `db:"author_id" json:"author_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func NewStoryComment(storyID, authorID uuid.UUID, content string) *StoryComment {
	now := time.Now().UTC()
	return &StoryComment{
		ID:        uuid.New(),
		StoryID:   storyID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
