package database

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// sqlxRepository ist die konkrete Implementierung, die die DB-Verbindung hält.
// Sie implementiert alle Repository-Interfaces (User, Token, Project, Sprint,
// Story, Task, Wall).
type sqlxRepository struct {
	db *DB
}

// Stellen Sie sicher, dass die Struct die Interfaces implementiert
var _ UserRepository = (*sqlxRepository)(nil)
var _ TokenRepository = (*sqlxRepository)(nil)
var _ ProjectRepository = (*sqlxRepository)(nil)
var _ SprintRepository = (*sqlxRepository)(nil)
var _ StoryRepository = (*sqlxRepository)(nil)
var _ TaskRepository = (*sqlxRepository)(nil)
var _ WallRepository = (*sqlxRepository)(nil)
var _ DBPinger = (*sqlxRepository)(nil)

// --- Konstruktoren ---

func NewUserRepository(db *DB) UserRepository {
	return &sqlxRepository{db: db}
}

func NewTokenRepository(db *DB) TokenRepository {
	return &sqlxRepository{db: db}
}

func NewProjectRepository(db *DB) ProjectRepository {
	return &sqlxRepository{db: db}
}

func NewSprintRepository(db *DB) SprintRepository {
	return &sqlxRepository{db: db}
}

func NewStoryRepository(db *DB) StoryRepository {
	return &sqlxRepository{db: db}
}

func NewTaskRepository(db *DB) TaskRepository {
	return &sqlxRepository{db: db}
}

func NewWallRepository(db *DB) WallRepository {
	return &sqlxRepository{db: db}
}

// PingContext implementiert DBPinger
func (r *sqlxRepository) PingContext(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// isDuplicateKey erkennt MySQL-Fehler 1062 (Unique-Constraint verletzt).
func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
