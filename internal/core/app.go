package core

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/vrsandeep/cropduster/internal/assets"
	"github.com/vrsandeep/cropduster/internal/config"
	"github.com/vrsandeep/cropduster/internal/db"
	"github.com/vrsandeep/cropduster/internal/jobs"
	"github.com/vrsandeep/cropduster/internal/media"
)

// App holds the core components of the application that are shared
// between the server and the CLI.
type App struct {
	config     *config.Config
	db         *sql.DB
	media      *media.Storage
	jobManager *jobs.JobManager
}

// New sets up and returns a new App instance. It handles loading the
// configuration, initializing the database connection, and running migrations.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig is New with an already loaded configuration.
func NewWithConfig(cfg *config.Config) (*App, error) {
	if err := media.PrepareRoot(cfg.Media.Root); err != nil {
		return nil, err
	}

	database, err := db.InitDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.RunMigrations(database, assets.MigrationsFS); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	log.Println("Core application setup complete.")
	return NewApp(cfg, database), nil
}

// NewApp wires an App around an open, migrated database.
func NewApp(cfg *config.Config, database *sql.DB) *App {
	app := &App{
		config: cfg,
		db:     database,
		media:  media.New(cfg.Media.Root, cfg.Media.URL),
	}
	app.jobManager = jobs.NewManager(app)
	return app
}

func (a *App) DB() *sql.DB                  { return a.db }
func (a *App) Config() *config.Config       { return a.config }
func (a *App) Media() *media.Storage        { return a.media }
func (a *App) JobManager() *jobs.JobManager { return a.jobManager }

// Close gracefully closes the application's resources, like the DB connection.
func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
	}
}
