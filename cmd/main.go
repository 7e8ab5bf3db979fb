package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"scrumboard/internal/auth"
	"scrumboard/internal/config"
	"scrumboard/internal/database"
	"scrumboard/internal/router"
	"scrumboard/internal/scrum"
	"scrumboard/internal/server"
)

func main() {
	// 1. Setup (Logging & Config)
	err := godotenv.Load()
	if err != nil {
		slog.Warn("Fehler beim Laden der .env-Datei (ignoriert)", slog.Any("error", err))
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Fehler beim Laden der Konfiguration", slog.Any("error", err))
		os.Exit(1)
	}

	// 2. Abhängigkeiten (Secrets & DB)
	secrets, err := auth.LoadSecrets(cfg)
	if err != nil {
		slog.Error("Fehler beim Laden der Secrets", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := database.ConnectDB(secrets.DatabaseDSN)
	if err != nil {
		slog.Error("Fehler beim Verbinden zur Datenbank", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Migrations
	if err := database.RunMigrations(db.DB.DB, "scrumboard_db"); err != nil {
		slog.Error("Fehler bei der Datenbank-Migration", slog.Any("error", err))
		os.Exit(1)
	}

	// 3. Repositories & Services
	userRepo := database.NewUserRepository(db)
	tokenRepo := database.NewTokenRepository(db)
	projectRepo := database.NewProjectRepository(db)
	sprintRepo := database.NewSprintRepository(db)
	storyRepo := database.NewStoryRepository(db)
	taskRepo := database.NewTaskRepository(db)
	wallRepo := database.NewWallRepository(db)

	gate := scrum.NewGate(projectRepo, sprintRepo, storyRepo, taskRepo)

	deps := router.HandlerDependencies{
		UserRepo:  userRepo,
		TokenRepo: tokenRepo,
		DBPinger:  db,

		Projects: scrum.NewProjectService(gate, projectRepo, userRepo),
		Sprints:  scrum.NewSprintService(gate, sprintRepo),
		Stories:  scrum.NewStoryService(gate, storyRepo),
		Tasks:    scrum.NewTaskService(gate, taskRepo),
		Wall:     scrum.NewWallService(gate, wallRepo),

		PrivateKey: secrets.PrivateKey,
		PublicKey:  secrets.PublicKey,
		Config:     cfg,
	}

	// 4. Router & Server
	r := router.SetupRouter(deps)

	srv := server.NewServer(cfg.Port, r)

	// 5. Starten & Graceful Shutdown
	server.StartAndShutdown(srv, db)
}
