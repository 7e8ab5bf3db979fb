package scrum

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"scrumboard/internal/database"
	"scrumboard/internal/models"

	"github.com/google/uuid"
)

// memStore ist eine In-Memory-Ausprägung aller Repository-Interfaces
// für die Service-Tests. Die Geschäftsregeln der SQL-Schicht
// (Namens-Eindeutigkeit, Überlappung, Batch-Atomik, Neuberechnung von
// remaining_hours) sind hier nachgebildet, damit die Services gegen
// dieselben Sentinel-Fehler getestet werden.
type memStore struct {
	users     map[uuid.UUID]*models.User
	projects  map[uuid.UUID]*models.Project
	members   map[uuid.UUID][]*models.ProjectMember
	sprints   map[uuid.UUID]*models.Sprint
	stories   map[uuid.UUID]*models.UserStory
	tasks     map[uuid.UUID]*models.Task
	timeLogs  map[uuid.UUID]*models.TimeLog
	sessions  map[uuid.UUID]*models.TaskSession
	posts     map[uuid.UUID]*models.WallPost
	comments  map[uuid.UUID]*models.WallComment
	documents map[uuid.UUID]*models.Document
	scomments map[uuid.UUID]*models.StoryComment

	// clock liefert die Zeit für Session-Stop und TimeLog-Erzeugung.
	clock func() time.Time
}

func newMemStore() *memStore {
	return &memStore{
		users:     make(map[uuid.UUID]*models.User),
		projects:  make(map[uuid.UUID]*models.Project),
		members:   make(map[uuid.UUID][]*models.ProjectMember),
		sprints:   make(map[uuid.UUID]*models.Sprint),
		stories:   make(map[uuid.UUID]*models.UserStory),
		tasks:     make(map[uuid.UUID]*models.Task),
		timeLogs:  make(map[uuid.UUID]*models.TimeLog),
		sessions:  make(map[uuid.UUID]*models.TaskSession),
		posts:     make(map[uuid.UUID]*models.WallPost),
		comments:  make(map[uuid.UUID]*models.WallComment),
		documents: make(map[uuid.UUID]*models.Document),
		scomments: make(map[uuid.UUID]*models.StoryComment),
		clock:     time.Now,
	}
}

var (
	_ database.UserRepository    = (*memStore)(nil)
	_ database.ProjectRepository = (*memStore)(nil)
	_ database.SprintRepository  = (*memStore)(nil)
	_ database.StoryRepository   = (*memStore)(nil)
	_ database.TaskRepository    = (*memStore)(nil)
	_ database.WallRepository    = (*memStore)(nil)
)

// --- UserRepository ---

func (m *memStore) CreateUser(_ context.Context, user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, database.ErrUserNotFound
}

func (m *memStore) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, database.ErrUserNotFound
	}
	return u, nil
}

func (m *memStore) UpdateUser(_ context.Context, user *models.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return database.ErrUserNotFound
	}
	m.users[user.ID] = user
	return nil
}

func (m *memStore) UpdatePassword(_ context.Context, userID uuid.UUID, passwordHash string) error {
	u, ok := m.users[userID]
	if !ok {
		return database.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *memStore) GetUserCount(_ context.Context) (int, error) {
	return len(m.users), nil
}

func (m *memStore) ListUsers(_ context.Context) ([]*models.User, error) {
	var out []*models.User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memStore) RecordLoginSuccess(_ context.Context, userID uuid.UUID) error {
	u, ok := m.users[userID]
	if !ok {
		return database.ErrUserNotFound
	}
	u.LastLoginAt = sql.NullTime{Time: m.clock(), Valid: true}
	u.FailedLoginCount = 0
	return nil
}

func (m *memStore) RecordLoginFailure(_ context.Context, userID uuid.UUID) error {
	u, ok := m.users[userID]
	if !ok {
		return database.ErrUserNotFound
	}
	u.FailedLoginCount++
	return nil
}

func (m *memStore) SetOTPSecretAndURL(_ context.Context, userID uuid.UUID, secret, authURL string) error {
	u, ok := m.users[userID]
	if !ok {
		return database.ErrUserNotFound
	}
	u.OTPSecret = sql.NullString{String: secret, Valid: true}
	u.OTPAuthURL = sql.NullString{String: authURL, Valid: true}
	return nil
}

func (m *memStore) EnableOTP(_ context.Context, userID uuid.UUID) error {
	u, ok := m.users[userID]
	if !ok {
		return database.ErrUserNotFound
	}
	u.OTPEnabled = true
	return nil
}

func (m *memStore) DisableOTP(_ context.Context, userID uuid.UUID) error {
	u, ok := m.users[userID]
	if !ok {
		return database.ErrUserNotFound
	}
	u.OTPEnabled = false
	u.OTPSecret = sql.NullString{}
	u.OTPAuthURL = sql.NullString{}
	return nil
}

func (m *memStore) GetOTPSecretAndStatus(_ context.Context, userID uuid.UUID) (sql.NullString, bool, error) {
	u, ok := m.users[userID]
	if !ok {
		return sql.NullString{}, false, database.ErrUserNotFound
	}
	return u.OTPSecret, u.OTPEnabled, nil
}

// --- ProjectRepository ---

func (m *memStore) CreateProject(_ context.Context, project *models.Project, owner, master *models.ProjectMember) error {
	for _, p := range m.projects {
		if strings.EqualFold(p.Name, project.Name) {
			return database.ErrProjectNameTaken
		}
	}
	// Wie der Unique-Key in project_members: dieselbe Person kann nicht
	// zweimal Mitglied werden, die Transaktion bricht komplett ab.
	if master.UserID == owner.UserID {
		return database.ErrMemberExists
	}
	m.projects[project.ID] = project
	m.members[project.ID] = append(m.members[project.ID], owner, master)
	return nil
}

func (m *memStore) GetProjectByID(_ context.Context, projectID uuid.UUID) (*models.Project, error) {
	p, ok := m.projects[projectID]
	if !ok {
		return nil, database.ErrProjectNotFound
	}
	return p, nil
}

func (m *memStore) GetProjectsByUserID(_ context.Context, userID uuid.UUID) ([]*models.Project, error) {
	var out []*models.Project
	for id, members := range m.members {
		for _, mem := range members {
			if mem.UserID == userID {
				out = append(out, m.projects[id])
			}
		}
	}
	return out, nil
}

func (m *memStore) UpdateProject(_ context.Context, project *models.Project) error {
	if _, ok := m.projects[project.ID]; !ok {
		return database.ErrProjectNotFound
	}
	for id, p := range m.projects {
		if id != project.ID && strings.EqualFold(p.Name, project.Name) {
			return database.ErrProjectNameTaken
		}
	}
	m.projects[project.ID] = project
	return nil
}

func (m *memStore) AddMember(_ context.Context, member *models.ProjectMember) error {
	for _, mem := range m.members[member.ProjectID] {
		if mem.UserID == member.UserID {
			return database.ErrMemberExists
		}
		if mem.Role == member.Role && member.Role != models.RoleDeveloper {
			return database.ErrRoleTaken
		}
	}
	m.members[member.ProjectID] = append(m.members[member.ProjectID], member)
	return nil
}

func (m *memStore) GetMember(_ context.Context, projectID, userID uuid.UUID) (*models.ProjectMember, error) {
	for _, mem := range m.members[projectID] {
		if mem.UserID == userID {
			return mem, nil
		}
	}
	return nil, database.ErrUserNotInProject
}

func (m *memStore) ListMembers(_ context.Context, projectID uuid.UUID) ([]*models.ProjectMember, error) {
	return m.members[projectID], nil
}

func (m *memStore) UpdateMemberRole(_ context.Context, projectID, userID uuid.UUID, role models.Role) error {
	for _, mem := range m.members[projectID] {
		if mem.UserID != userID && mem.Role == role && role != models.RoleDeveloper {
			return database.ErrRoleTaken
		}
	}
	for _, mem := range m.members[projectID] {
		if mem.UserID == userID {
			mem.Role = role
			return nil
		}
	}
	return database.ErrUserNotInProject
}

func (m *memStore) RemoveMember(_ context.Context, projectID, userID uuid.UUID) error {
	members := m.members[projectID]
	for i, mem := range members {
		if mem.UserID == userID {
			m.members[projectID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return database.ErrUserNotInProject
}

// --- SprintRepository ---

func (m *memStore) CreateSprint(_ context.Context, sprint *models.Sprint) error {
	for _, s := range m.sprints {
		if s.ProjectID == sprint.ProjectID && s.Overlaps(sprint.StartDate, sprint.EndDate) {
			return database.ErrSprintOverlap
		}
	}
	m.sprints[sprint.ID] = sprint
	return nil
}

func (m *memStore) GetSprintByID(_ context.Context, sprintID uuid.UUID) (*models.Sprint, error) {
	s, ok := m.sprints[sprintID]
	if !ok {
		return nil, database.ErrSprintNotFound
	}
	return s, nil
}

func (m *memStore) GetSprintsByProject(_ context.Context, projectID uuid.UUID) ([]*models.Sprint, error) {
	var out []*models.Sprint
	for _, s := range m.sprints {
		if s.ProjectID == projectID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) GetActiveSprint(_ context.Context, projectID uuid.UUID, today time.Time) (*models.Sprint, error) {
	for _, s := range m.sprints {
		if s.ProjectID == projectID && s.IsActive(today) {
			return s, nil
		}
	}
	return nil, database.ErrSprintNotFound
}

func (m *memStore) GetUpcomingSprint(_ context.Context, projectID uuid.UUID, today time.Time) (*models.Sprint, error) {
	var next *models.Sprint
	for _, s := range m.sprints {
		if s.ProjectID == projectID && s.IsFuture(today) {
			if next == nil || s.StartDate.Before(next.StartDate) {
				next = s
			}
		}
	}
	if next == nil {
		return nil, database.ErrSprintNotFound
	}
	return next, nil
}

func (m *memStore) UpdateSprint(_ context.Context, sprint *models.Sprint) error {
	if _, ok := m.sprints[sprint.ID]; !ok {
		return database.ErrSprintNotFound
	}
	for id, s := range m.sprints {
		if id != sprint.ID && s.ProjectID == sprint.ProjectID && s.Overlaps(sprint.StartDate, sprint.EndDate) {
			return database.ErrSprintOverlap
		}
	}
	m.sprints[sprint.ID] = sprint
	return nil
}

func (m *memStore) DeleteSprint(_ context.Context, sprintID uuid.UUID) error {
	if _, ok := m.sprints[sprintID]; !ok {
		return database.ErrSprintNotFound
	}
	delete(m.sprints, sprintID)
	return nil
}

func (m *memStore) FinishSprint(_ context.Context, sprintID uuid.UUID) error {
	sprint, ok := m.sprints[sprintID]
	if !ok {
		return database.ErrSprintNotFound
	}
	for _, story := range m.stories {
		if story.SprintID.Valid && story.SprintID.UUID == sprintID && !story.Deleted && !story.Status.Terminal() {
			return database.ErrSprintHasOpenStories
		}
	}
	sprint.IsCompleted = true
	return nil
}

// --- StoryRepository ---

func (m *memStore) CreateStory(_ context.Context, story *models.UserStory) error {
	for _, s := range m.stories {
		if s.ProjectID == story.ProjectID && strings.EqualFold(s.Name, story.Name) {
			return database.ErrStoryNameTaken
		}
	}
	m.stories[story.ID] = story
	return nil
}

func (m *memStore) GetStoryByID(_ context.Context, storyID uuid.UUID) (*models.UserStory, error) {
	s, ok := m.stories[storyID]
	if !ok || s.Deleted {
		return nil, database.ErrStoryNotFound
	}
	return s, nil
}

func (m *memStore) ListStoriesByProject(_ context.Context, projectID uuid.UUID, backlogOnly bool) ([]*models.UserStory, error) {
	var out []*models.UserStory
	for _, s := range m.stories {
		if s.ProjectID != projectID || s.Deleted {
			continue
		}
		if backlogOnly && s.SprintID.Valid {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *memStore) ListStoriesBySprint(_ context.Context, sprintID uuid.UUID) ([]*models.UserStory, error) {
	var out []*models.UserStory
	for _, s := range m.stories {
		if s.SprintID.Valid && s.SprintID.UUID == sprintID && !s.Deleted {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) UpdateStory(_ context.Context, story *models.UserStory) error {
	if _, ok := m.stories[story.ID]; !ok {
		return database.ErrStoryNotFound
	}
	for id, s := range m.stories {
		if id != story.ID && s.ProjectID == story.ProjectID && strings.EqualFold(s.Name, story.Name) {
			return database.ErrStoryNameTaken
		}
	}
	m.stories[story.ID] = story
	return nil
}

func (m *memStore) SetStoryPoints(_ context.Context, storyID uuid.UUID, points int) error {
	s, ok := m.stories[storyID]
	if !ok || s.Deleted {
		return database.ErrStoryNotFound
	}
	s.StoryPoints.Int64 = int64(points)
	s.StoryPoints.Valid = true
	return nil
}

func (m *memStore) SetStoryStatus(_ context.Context, storyID uuid.UUID, status models.StoryStatus) error {
	s, ok := m.stories[storyID]
	if !ok || s.Deleted {
		return database.ErrStoryNotFound
	}
	s.Status = status
	return nil
}

func (m *memStore) AssignStoriesToSprint(_ context.Context, sprintID uuid.UUID, storyIDs []uuid.UUID) error {
	// ganz oder gar nicht, wie die transaktionale Variante
	for _, id := range storyIDs {
		s, ok := m.stories[id]
		if !ok || s.Deleted || s.SprintID.Valid || !s.IsEstimated() {
			return database.ErrStoryNotFound
		}
	}
	for _, id := range storyIDs {
		m.stories[id].SprintID = uuid.NullUUID{UUID: sprintID, Valid: true}
	}
	return nil
}

func (m *memStore) RemoveStoryFromSprint(_ context.Context, storyID uuid.UUID) error {
	s, ok := m.stories[storyID]
	if !ok || s.Deleted {
		return database.ErrStoryNotFound
	}
	s.SprintID = uuid.NullUUID{}
	return nil
}

func (m *memStore) SoftDeleteStory(_ context.Context, storyID uuid.UUID) error {
	s, ok := m.stories[storyID]
	if !ok || s.Deleted {
		return database.ErrStoryNotFound
	}
	s.Deleted = true
	return nil
}

func (m *memStore) CreateStoryComment(_ context.Context, comment *models.StoryComment) error {
	m.scomments[comment.ID] = comment
	return nil
}

func (m *memStore) ListStoryComments(_ context.Context, storyID uuid.UUID) ([]*models.StoryComment, error) {
	var out []*models.StoryComment
	for _, c := range m.scomments {
		if c.StoryID == storyID {
			out = append(out, c)
		}
	}
	return out, nil
}

// --- TaskRepository ---

func (m *memStore) CreateTask(_ context.Context, task *models.Task) error {
	for _, t := range m.tasks {
		if t.StoryID == task.StoryID && strings.EqualFold(t.Title, task.Title) {
			return database.ErrTaskTitleTaken
		}
	}
	m.tasks[task.ID] = task
	return nil
}

func (m *memStore) GetTaskByID(_ context.Context, taskID uuid.UUID) (*models.Task, error) {
	t, ok := m.tasks[taskID]
	if !ok || t.Deleted {
		return nil, database.ErrTaskNotFound
	}
	return t, nil
}

func (m *memStore) ListTasksByStory(_ context.Context, storyID uuid.UUID) ([]*models.Task, error) {
	var out []*models.Task
	for _, t := range m.tasks {
		if t.StoryID == storyID && !t.Deleted {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) ListTasksByProject(_ context.Context, projectID uuid.UUID) ([]*models.Task, error) {
	var out []*models.Task
	for _, t := range m.tasks {
		if t.Deleted {
			continue
		}
		if s, ok := m.stories[t.StoryID]; ok && s.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) UpdateTask(_ context.Context, task *models.Task) error {
	if t, ok := m.tasks[task.ID]; !ok || t.Deleted {
		return database.ErrTaskNotFound
	}
	m.tasks[task.ID] = task
	return nil
}

func (m *memStore) SoftDeleteTask(_ context.Context, taskID uuid.UUID) error {
	t, ok := m.tasks[taskID]
	if !ok || t.Deleted {
		return database.ErrTaskNotFound
	}
	t.Deleted = true
	return nil
}

func (m *memStore) recalcRemaining(taskID uuid.UUID) {
	t, ok := m.tasks[taskID]
	if !ok || t.Status == models.TaskCompleted {
		return
	}
	var spent float64
	for _, l := range m.timeLogs {
		if l.TaskID == taskID {
			spent += l.HoursSpent
		}
	}
	remaining := t.EstimatedHours - spent
	if remaining < 0 {
		remaining = 0
	}
	t.RemainingHours = remaining
}

func (m *memStore) InsertTimeLog(_ context.Context, log *models.TimeLog) error {
	m.timeLogs[log.ID] = log
	m.recalcRemaining(log.TaskID)
	return nil
}

func (m *memStore) GetTimeLogByID(_ context.Context, logID uuid.UUID) (*models.TimeLog, error) {
	l, ok := m.timeLogs[logID]
	if !ok {
		return nil, database.ErrTimeLogNotFound
	}
	return l, nil
}

func (m *memStore) ListTimeLogsByTask(_ context.Context, taskID uuid.UUID) ([]*models.TimeLog, error) {
	var out []*models.TimeLog
	for _, l := range m.timeLogs {
		if l.TaskID == taskID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memStore) UpdateTimeLog(_ context.Context, log *models.TimeLog) error {
	if _, ok := m.timeLogs[log.ID]; !ok {
		return database.ErrTimeLogNotFound
	}
	m.timeLogs[log.ID] = log
	m.recalcRemaining(log.TaskID)
	return nil
}

func (m *memStore) DeleteTimeLog(_ context.Context, logID uuid.UUID) error {
	l, ok := m.timeLogs[logID]
	if !ok {
		return database.ErrTimeLogNotFound
	}
	delete(m.timeLogs, logID)
	m.recalcRemaining(l.TaskID)
	return nil
}

func (m *memStore) StartSession(_ context.Context, taskID, userID uuid.UUID) (*models.TaskSession, bool, error) {
	for _, s := range m.sessions {
		if s.TaskID == taskID && s.UserID == userID && s.Open() {
			return s, false, nil
		}
	}
	session := models.NewTaskSession(taskID, userID)
	session.StartTime = m.clock()
	m.sessions[session.ID] = session
	if t, ok := m.tasks[taskID]; ok {
		t.Status = models.TaskInProgress
	}
	return session, true, nil
}

func (m *memStore) GetOpenSession(_ context.Context, taskID, userID uuid.UUID) (*models.TaskSession, error) {
	for _, s := range m.sessions {
		if s.TaskID == taskID && s.UserID == userID && s.Open() {
			return s, nil
		}
	}
	return nil, database.ErrNoOpenSession
}

func (m *memStore) StopOpenSession(_ context.Context, taskID, userID uuid.UUID) (*models.TaskSession, *models.TimeLog, error) {
	for _, s := range m.sessions {
		if s.TaskID == taskID && s.UserID == userID && s.Open() {
			now := m.clock()
			hours := s.BillableHours(now)
			s.EndTime.Time = now
			s.EndTime.Valid = true
			log := models.NewTimeLog(taskID, userID, hours, now, "Automatisch erfasst beim Stoppen der Session")
			m.timeLogs[log.ID] = log
			m.recalcRemaining(taskID)
			return s, log, nil
		}
	}
	return nil, nil, database.ErrNoOpenSession
}

// --- WallRepository ---

func (m *memStore) CreateWallPost(_ context.Context, post *models.WallPost) error {
	m.posts[post.ID] = post
	return nil
}

func (m *memStore) GetWallPostByID(_ context.Context, postID uuid.UUID) (*models.WallPost, error) {
	p, ok := m.posts[postID]
	if !ok {
		return nil, database.ErrPostNotFound
	}
	return p, nil
}

func (m *memStore) ListWallPosts(_ context.Context, projectID uuid.UUID) ([]*models.WallPost, error) {
	var out []*models.WallPost
	for _, p := range m.posts {
		if p.ProjectID == projectID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) DeleteWallPost(_ context.Context, postID uuid.UUID) error {
	if _, ok := m.posts[postID]; !ok {
		return database.ErrPostNotFound
	}
	delete(m.posts, postID)
	return nil
}

func (m *memStore) CreateWallComment(_ context.Context, comment *models.WallComment) error {
	m.comments[comment.ID] = comment
	return nil
}

func (m *memStore) ListWallComments(_ context.Context, postID uuid.UUID) ([]*models.WallComment, error) {
	var out []*models.WallComment
	for _, c := range m.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) CreateDocument(_ context.Context, doc *models.Document) error {
	m.documents[doc.ID] = doc
	return nil
}

func (m *memStore) GetDocumentByID(_ context.Context, docID uuid.UUID) (*models.Document, error) {
	d, ok := m.documents[docID]
	if !ok {
		return nil, database.ErrDocumentNotFound
	}
	return d, nil
}

func (m *memStore) ListDocuments(_ context.Context, projectID uuid.UUID) ([]*models.Document, error) {
	var out []*models.Document
	for _, d := range m.documents {
		if d.ProjectID == projectID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memStore) UpdateDocument(_ context.Context, doc *models.Document) error {
	if _, ok := m.documents[doc.ID]; !ok {
		return database.ErrDocumentNotFound
	}
	m.documents[doc.ID] = doc
	return nil
}

func (m *memStore) DeleteDocument(_ context.Context, docID uuid.UUID) error {
	if _, ok := m.documents[docID]; !ok {
		return database.ErrDocumentNotFound
	}
	delete(m.documents, docID)
	return nil
}

// --- Fixtures ---

type fixture struct {
	store *memStore
	gate  *Gate

	projectID uuid.UUID
	po        uuid.UUID
	sm        uuid.UUID
	dev       uuid.UUID
	outsider  uuid.UUID
}

// newFixture baut ein Projekt mit Product Owner, Scrum Master und einem
// Developer; outsider ist kein Mitglied.
func newFixture() *fixture {
	store := newMemStore()
	f := &fixture{
		store: store,
		gate:  NewGate(store, store, store, store),
	}
	for name, target := range map[string]*uuid.UUID{
		"po": &f.po, "sm": &f.sm, "dev": &f.dev, "outsider": &f.outsider,
	} {
		u := models.NewUser(name+"@example.com", name, "hash")
		store.users[u.ID] = u
		*target = u.ID
	}

	project := models.NewProject("Phoenix", "Relaunch des Kundenportals")
	owner := models.NewProjectMember(project.ID, f.po, models.RoleProductOwner)
	master := models.NewProjectMember(project.ID, f.sm, models.RoleScrumMaster)
	if err := store.CreateProject(context.Background(), project, owner, master); err != nil {
		panic(err)
	}
	if err := store.AddMember(context.Background(), models.NewProjectMember(project.ID, f.dev, models.RoleDeveloper)); err != nil {
		panic(err)
	}
	f.projectID = project.ID
	return f
}

// addStory legt eine Story direkt im Store an.
func (f *fixture) addStory(name string, businessValue int) *models.UserStory {
	story := models.NewUserStory(f.projectID, name, "", "", models.PriorityMustHave, businessValue, f.po)
	if err := f.store.CreateStory(context.Background(), story); err != nil {
		panic(err)
	}
	return story
}

// addTask legt einen Task direkt im Store an.
func (f *fixture) addTask(storyID uuid.UUID, title string, hours float64) *models.Task {
	task := models.NewTask(storyID, title, "", hours, f.sm)
	if err := f.store.CreateTask(context.Background(), task); err != nil {
		panic(err)
	}
	return task
}
