package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"scrumboard/internal/models"

	"github.com/google/uuid"
)

// --- Fehler (Bleiben global) ---
var ErrUserNotFound = errors.New("benutzer nicht gefunden")
var ErrRefreshTokenNotFound = errors.New("refresh token nicht gefunden oder ungültig")
var ErrUserNotInProject = errors.New("benutzer ist diesem projekt nicht zugeordnet")
var ErrProjectNotFound = errors.New("projekt nicht gefunden")
var ErrProjectNameTaken = errors.New("ein projekt mit diesem namen existiert bereits")
var ErrMemberExists = errors.New("benutzer ist bereits mitglied dieses projekts")
var ErrRoleTaken = errors.New("diese rolle ist im projekt bereits vergeben")
var ErrSprintNotFound = errors.New("sprint nicht gefunden")
var ErrSprintOverlap = errors.New("die sprint-daten überschneiden sich mit einem bestehenden sprint")
var ErrSprintHasOpenStories = errors.New("der sprint enthält noch nicht abgenommene stories")
var ErrStoryNotFound = errors.New("user story nicht gefunden")
var ErrStoryNameTaken = errors.New("eine story mit diesem namen existiert bereits im projekt")
var ErrTaskNotFound = errors.New("task nicht gefunden")
var ErrTaskTitleTaken = errors.New("ein task mit diesem titel existiert bereits in der story")
var ErrTimeLogNotFound = errors.New("zeiteintrag nicht gefunden")
var ErrNoOpenSession = errors.New("keine offene session für diesen task und benutzer")
var ErrPostNotFound = errors.New("pinnwand-beitrag nicht gefunden")
var ErrDocumentNotFound = errors.New("dokument nicht gefunden")

// --- DTOs ---
type RefreshToken struct {
	TokenHash string    `db:"token_hash"`
	UserID    uuid.UUID `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
	Revoked   bool      `db:"revoked"`
	CreatedAt time.Time `db:"created_at"`
}

// DBPinger ist ein Interface, das von *sqlx.DB und unserem Repo implementiert wird
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// UserRepository kümmert sich NUR um globale Benutzerkonten
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
	GetUserCount(ctx context.Context) (int, error)
	ListUsers(ctx context.Context) ([]*models.User, error)

	// Login-Buchführung
	RecordLoginSuccess(ctx context.Context, userID uuid.UUID) error
	RecordLoginFailure(ctx context.Context, userID uuid.UUID) error

	// 2FA
	SetOTPSecretAndURL(ctx context.Context, userID uuid.UUID, secret, authURL string) error
	EnableOTP(ctx context.Context, userID uuid.UUID) error
	DisableOTP(ctx context.Context, userID uuid.UUID) error
	GetOTPSecretAndStatus(ctx context.Context, userID uuid.UUID) (secret sql.NullString, isEnabled bool, err error)
}

// TokenRepository kümmert sich NUR um Refresh Tokens
type TokenRepository interface {
	SaveRefreshToken(ctx context.Context, rt *RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	DeleteRefreshToken(ctx context.Context, tokenHash string) error
}

// ProjectRepository kümmert sich um Projekte und deren Mitgliedschaften
type ProjectRepository interface {
	// CreateProject legt das Projekt samt Product Owner und Scrum Master
	// in einer Transaktion an.
	CreateProject(ctx context.Context, project *models.Project, owner, master *models.ProjectMember) error
	GetProjectByID(ctx context.Context, projectID uuid.UUID) (*models.Project, error)
	GetProjectsByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Project, error)
	UpdateProject(ctx context.Context, project *models.Project) error

	// Mitgliedschaften; PO/SM-Eindeutigkeit wird transaktional erzwungen.
	AddMember(ctx context.Context, member *models.ProjectMember) error
	GetMember(ctx context.Context, projectID, userID uuid.UUID) (*models.ProjectMember, error)
	ListMembers(ctx context.Context, projectID uuid.UUID) ([]*models.ProjectMember, error)
	UpdateMemberRole(ctx context.Context, projectID, userID uuid.UUID, role models.Role) error
	RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error
}

// SprintRepository kümmert sich um Sprints. Die Überlappungsprüfung läuft
// in der Transaktion der jeweiligen Schreiboperation, damit zwei parallele
// Requests keine überlappenden Sprints anlegen können.
type SprintRepository interface {
	CreateSprint(ctx context.Context, sprint *models.Sprint) error
	GetSprintByID(ctx context.Context, sprintID uuid.UUID) (*models.Sprint, error)
	GetSprintsByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Sprint, error)
	GetActiveSprint(ctx context.Context, projectID uuid.UUID, today time.Time) (*models.Sprint, error)
	GetUpcomingSprint(ctx context.Context, projectID uuid.UUID, today time.Time) (*models.Sprint, error)
	UpdateSprint(ctx context.Context, sprint *models.Sprint) error
	DeleteSprint(ctx context.Context, sprintID uuid.UUID) error
	// FinishSprint setzt is_completed, sofern alle Stories des Sprints
	// in einem Endzustand sind (transaktional geprüft).
	FinishSprint(ctx context.Context, sprintID uuid.UUID) error
}

// StoryRepository kümmert sich um User Stories und deren Kommentare.
// Gelöschte Stories werden in jeder Leseabfrage explizit ausgefiltert.
type StoryRepository interface {
	CreateStory(ctx context.Context, story *models.UserStory) error
	GetStoryByID(ctx context.Context, storyID uuid.UUID) (*models.UserStory, error)
	ListStoriesByProject(ctx context.Context, projectID uuid.UUID, backlogOnly bool) ([]*models.UserStory, error)
	ListStoriesBySprint(ctx context.Context, sprintID uuid.UUID) ([]*models.UserStory, error)
	UpdateStory(ctx context.Context, story *models.UserStory) error
	SetStoryPoints(ctx context.Context, storyID uuid.UUID, points int) error
	SetStoryStatus(ctx context.Context, storyID uuid.UUID, status models.StoryStatus) error
	// AssignStoriesToSprint ordnet den ganzen Batch transaktional zu
	// oder gar nichts.
	AssignStoriesToSprint(ctx context.Context, sprintID uuid.UUID, storyIDs []uuid.UUID) error
	RemoveStoryFromSprint(ctx context.Context, storyID uuid.UUID) error
	SoftDeleteStory(ctx context.Context, storyID uuid.UUID) error

	CreateStoryComment(ctx context.Context, comment *models.StoryComment) error
	ListStoryComments(ctx context.Context, storyID uuid.UUID) ([]*models.StoryComment, error)
}

// TaskRepository kümmert sich um Tasks, Zeiteinträge und Sessions.
// remaining_hours wird bei jeder TimeLog-Mutation in derselben Transaktion
// aus estimated_hours − SUM(hours_spent) neu berechnet (Untergrenze 0).
type TaskRepository interface {
	CreateTask(ctx context.Context, task *models.Task) error
	GetTaskByID(ctx context.Context, taskID uuid.UUID) (*models.Task, error)
	ListTasksByStory(ctx context.Context, storyID uuid.UUID) ([]*models.Task, error)
	ListTasksByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Task, error)
	UpdateTask(ctx context.Context, task *models.Task) error
	SoftDeleteTask(ctx context.Context, taskID uuid.UUID) error

	InsertTimeLog(ctx context.Context, log *models.TimeLog) error
	GetTimeLogByID(ctx context.Context, logID uuid.UUID) (*models.TimeLog, error)
	ListTimeLogsByTask(ctx context.Context, taskID uuid.UUID) ([]*models.TimeLog, error)
	UpdateTimeLog(ctx context.Context, log *models.TimeLog) error
	DeleteTimeLog(ctx context.Context, logID uuid.UUID) error

	// StartSession ist idempotent: existiert bereits eine offene Session
	// für (Task, Benutzer), wird diese zurückgegeben (created == false).
	StartSession(ctx context.Context, taskID, userID uuid.UUID) (session *models.TaskSession, created bool, err error)
	GetOpenSession(ctx context.Context, taskID, userID uuid.UUID) (*models.TaskSession, error)
	// StopOpenSession schließt die offene Session, erzeugt den TimeLog
	// (Mindestabrechnung 0,5h) und reduziert remaining_hours, alles in
	// einer Transaktion.
	StopOpenSession(ctx context.Context, taskID, userID uuid.UUID) (*models.TaskSession, *models.TimeLog, error)
}

// WallRepository kümmert sich um Pinnwand und Dokumente eines Projekts
type WallRepository interface {
	CreateWallPost(ctx context.Context, post *models.WallPost) error
	GetWallPostByID(ctx context.Context, postID uuid.UUID) (*models.WallPost, error)
	ListWallPosts(ctx context.Context, projectID uuid.UUID) ([]*models.WallPost, error)
	DeleteWallPost(ctx context.Context, postID uuid.UUID) error
	CreateWallComment(ctx context.Context, comment *models.WallComment) error
	ListWallComments(ctx context.Context, postID uuid.UUID) ([]*models.WallComment, error)

	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocumentByID(ctx context.Context, docID uuid.UUID) (*models.Document, error)
	ListDocuments(ctx context.Context, projectID uuid.UUID) ([]*models.Document, error)
	UpdateDocument(ctx context.Context, doc *models.Document) error
	DeleteDocument(ctx context.Context, docID uuid.UUID) error
}
