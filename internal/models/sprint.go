package models

import (
	"time"

	"github.com/google/uuid"
)

// Sprint ist ein zeitlich begrenztes Entwicklungsfenster eines Projekts.
// Planned/Active/Past sind aus den Daten abgeleitet; nur IsCompleted wird gespeichert.
type Sprint struct {
	ID          uuid.UUID     `db:"id" json:"id"`
	ProjectID   uuid.UUID     `db:"project_id" json:"project_id"`
	StartDate   time.Time     `db:"start_date" json:"start_date"`
	EndDate     time.Time     `db:"end_date" json:"end_date"`
	Velocity    int           `db:"velocity" json:"velocity"`
	IsCompleted bool          `db:"is_completed" json:"is_completed"`
	CreatedBy   uuid.NullUUID `db:"created_by" json:"created_by"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

func NewSprint(projectID uuid.UUID, start, end time.Time, velocity int, createdBy uuid.UUID) *Sprint {
	now := time.Now().UTC()
	return &Sprint{
		ID:        uuid.New(),
		ProjectID: projectID,
		StartDate: start,
		EndDate:   end,
		Velocity:  velocity,
		CreatedBy: uuid.NullUUID{UUID: createdBy, Valid: true},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsActive prüft, ob der Sprint heute läuft.
func (s *Sprint) IsActive(today time.Time) bool {
	d := DateOnly(today)
	return !d.Before(DateOnly(s.StartDate)) && !d.After(DateOnly(s.EndDate))
}

// IsFuture prüft, ob der Sprint noch nicht begonnen hat.
func (s *Sprint) IsFuture(today time.Time) bool {
	return DateOnly(today).Before(DateOnly(s.StartDate))
}

// HasStarted: ab dem Starttag sind die Daten unveränderlich
// und der Sprint kann nicht mehr gelöscht werden.
func (s *Sprint) HasStarted(today time.Time) bool {
	return !DateOnly(s.StartDate).After(DateOnly(today))
}

// Overlaps prüft inklusive Überschneidung zweier Datumsbereiche.
func (s *Sprint) Overlaps(start, end time.Time) bool {
	return !DateOnly(s.StartDate).After(DateOnly(end)) && !DateOnly(s.EndDate).Before(DateOnly(start))
}

// DateOnly schneidet die Uhrzeit ab, damit Sprint-Daten als Kalendertage
// verglichen werden (UTC).
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
