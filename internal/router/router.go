package router

import (
	"crypto/rsa"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"scrumboard/internal/config"
	"scrumboard/internal/database"
	"scrumboard/internal/handlers"
	"scrumboard/internal/middleware"
	"scrumboard/internal/scrum"
)

type HandlerDependencies struct {
	UserRepo  database.UserRepository
	TokenRepo database.TokenRepository
	DBPinger  database.DBPinger

	Projects *scrum.ProjectService
	Sprints  *scrum.SprintService
	Stories  *scrum.StoryService
	Tasks    *scrum.TaskService
	Wall     *scrum.WallService

	PrivateKey *rsa.PrivateKey
	PublicKey  *rsa.PublicKey
	Config     *config.Config
}

func SetupRouter(deps HandlerDependencies) http.Handler {
	// Handler initialisieren
	authHandlers := handlers.NewAuthHandlers(deps.UserRepo, deps.TokenRepo, deps.PrivateKey, deps.Config)
	otpHandlers := handlers.NewOTPHandlers(deps.UserRepo, authHandlers, deps.Config)
	userHandlers := handlers.NewUserHandlers(deps.UserRepo)
	adminHandlers := handlers.NewAdminHandlers(deps.UserRepo)
	projectHandlers := handlers.NewProjectHandlers(deps.Projects)
	sprintHandlers := handlers.NewSprintHandlers(deps.Sprints)
	storyHandlers := handlers.NewStoryHandlers(deps.Stories)
	taskHandlers := handlers.NewTaskHandlers(deps.Tasks)
	wallHandlers := handlers.NewWallHandlers(deps.Wall)
	internalHandlers := handlers.NewInternalHandlers(deps.DBPinger, deps.UserRepo)

	r := chi.NewRouter()

	// Globale Middlewares
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httprate.LimitAll(100, 1*time.Second))
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.AuditContext)

	// Health Check & Root
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Scrumboard Service ist online!"))
	})
	r.Get("/health", handlers.HealthCheckHandler(deps.DBPinger))

	// --- Routen-Definitionen ---
	r.Route("/auth", func(r chi.Router) {
		// Login und Registrierung schärfer limitieren als den Rest.
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(10, 1*time.Minute))
			r.Post("/register", authHandlers.RegisterHandler)
			r.Post("/login", authHandlers.LoginHandler)
			r.Post("/login/otp", otpHandlers.LoginOTPHandler)
		})

		r.Post("/refresh", authHandlers.RefreshHandler)
		r.Post("/logout", authHandlers.LogoutHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticator(deps.PublicKey))
			r.Post("/password", authHandlers.ChangePasswordHandler)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(middleware.Authenticator(deps.PublicKey))
		r.Get("/me", userHandlers.GetCurrentUserHandler)
		r.Put("/me", userHandlers.UpdateCurrentUserHandler)

		// Kontenliste nur für Admins
		r.With(adminHandlers.OnlyAdmin).Get("/", adminHandlers.ListUsersHandler)
	})

	r.Route("/auth/otp", func(r chi.Router) {
		r.Use(middleware.Authenticator(deps.PublicKey))

		r.Post("/setup", otpHandlers.SetupOTPHandler)
		r.Post("/verify", otpHandlers.VerifyOTPHandler)
		r.Post("/disable", otpHandlers.DisableOTPHandler)
	})

	r.Route("/projects", func(r chi.Router) {
		r.Use(middleware.Authenticator(deps.PublicKey))
		r.Post("/", projectHandlers.CreateProjectHandler)
		r.Get("/", projectHandlers.ListProjectsHandler)

		r.Route("/{projectID}", func(r chi.Router) {
			r.Get("/", projectHandlers.GetProjectHandler)
			r.Put("/", projectHandlers.UpdateProjectHandler)

			// Mitglieder-Management
			r.Post("/members", projectHandlers.AddMemberHandler)
			r.Get("/members", projectHandlers.ListMembersHandler)
			r.Put("/members/{userID}", projectHandlers.UpdateMemberRoleHandler)
			r.Delete("/members/{userID}", projectHandlers.RemoveMemberHandler)

			// Sprints des Projekts
			r.Post("/sprints", sprintHandlers.CreateSprintHandler)
			r.Get("/sprints", sprintHandlers.ListSprintsHandler)
			r.Get("/active-sprint", sprintHandlers.ActiveSprintHandler)
			r.Get("/upcoming-sprint", sprintHandlers.UpcomingSprintHandler)

			// Backlog und Stories des Projekts
			r.Post("/stories", storyHandlers.CreateStoryHandler)
			r.Get("/stories", storyHandlers.ListStoriesHandler)

			// Alle Tasks über Stories hinweg
			r.Get("/tasks", taskHandlers.ListProjectTasksHandler)

			// Pinnwand und Dokumente
			r.Post("/wall", wallHandlers.CreatePostHandler)
			r.Get("/wall", wallHandlers.ListPostsHandler)
			r.Post("/documents", wallHandlers.CreateDocumentHandler)
			r.Get("/documents", wallHandlers.ListDocumentsHandler)
		})
	})

	r.Route("/sprints/{sprintID}", func(r chi.Router) {
		r.Use(middleware.Authenticator(deps.PublicKey))
		r.Get("/", sprintHandlers.GetSprintHandler)
		r.Patch("/", sprintHandlers.UpdateSprintHandler)
		r.Delete("/", sprintHandlers.DeleteSprintHandler)
		r.Post("/finish", sprintHandlers.FinishSprintHandler)

		r.Get("/stories", storyHandlers.ListSprintStoriesHandler)
		r.Post("/stories", storyHandlers.AddStoriesToSprintHandler)
	})

	r.Route("/stories/{storyID}", func(r chi.Router) {
		r.Use(middleware.Authenticator(deps.PublicKey))
		r.Get("/", storyHandlers.GetStoryHandler)
		r.Patch("/", storyHandlers.UpdateStoryHandler)
		r.Delete("/", storyHandlers.DeleteStoryHandler)
		r.Post("/estimate", storyHandlers.EstimateStoryHandler)
		r.Post("/status", storyHandlers.UpdateStoryStatusHandler)
		r.Post("/remove-from-sprint", storyHandlers.RemoveStoryFromSprintHandler)

		r.Post("/comments", storyHandlers.AddStoryCommentHandler)
		r.Get("/comments", storyHandlers.ListStoryCommentsHandler)

		r.Post("/tasks", taskHandlers.CreateTaskHandler)
		r.Get("/tasks", taskHandlers.ListStoryTasksHandler)
	})

	r.Route("/tasks/{taskID}", func(r chi.Router) {
		r.Use(middleware.Authenticator(deps.PublicKey))
		r.Get("/", taskHandlers.GetTaskHandler)
		r.Patch("/", taskHandlers.UpdateTaskHandler)
		r.Delete("/", taskHandlers.DeleteTaskHandler)

		r.Post("/assign", taskHandlers.AssignTaskHandler)
		r.Post("/unassign", taskHandlers.UnassignTaskHandler)
		r.Post("/start", taskHandlers.StartTaskHandler)
		r.Post("/stop", taskHandlers.StopTaskHandler)
		r.Post("/complete", taskHandlers.CompleteTaskHandler)

		r.Post("/sessions/start", taskHandlers.StartSessionHandler)
		r.Post("/sessions/stop", taskHandlers.StopSessionHandler)
		r.Get("/sessions/open", taskHandlers.OpenSessionHandler)

		r.Post("/timelogs", taskHandlers.CreateTimeLogHandler)
		r.Get("/timelogs", taskHandlers.ListTimeLogsHandler)
	})

	r.Route("/timelogs/{logID}", func(r chi.Router) {
		r.Use(middleware.Authenticator(deps.PublicKey))
		r.Put("/", taskHandlers.UpdateTimeLogHandler)
		r.Delete("/", taskHandlers.DeleteTimeLogHandler)
	})

	r.Route("/wall/{postID}", func(r chi.Router) {
		r.Use(middleware.Authenticator(deps.PublicKey))
		r.Delete("/", wallHandlers.DeletePostHandler)
		r.Post("/comments", wallHandlers.CommentPostHandler)
		r.Get("/comments", wallHandlers.ListPostCommentsHandler)
	})

	r.Route("/documents/{documentID}", func(r chi.Router) {
		r.Use(middleware.Authenticator(deps.PublicKey))
		r.Get("/", wallHandlers.GetDocumentHandler)
		r.Put("/", wallHandlers.UpdateDocumentHandler)
		r.Delete("/", wallHandlers.DeleteDocumentHandler)
	})

	r.Route("/internal/v1", func(r chi.Router) {
		r.Use(middleware.Gatekeeper(deps.Config.InternalIPs))
		r.Use(middleware.InternalAuth)
		r.Get("/status", internalHandlers.StatusHandler)
	})

	return r
}
