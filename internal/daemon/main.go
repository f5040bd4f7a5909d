// Package daemon wires the membership engine together: it opens the
// database, migrates the schema, builds the criterion registry, starts the
// event worker pool and the web service.
package daemon

import (
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/GoUserGroups/GoUserGroups/internal/config"
	"github.com/GoUserGroups/GoUserGroups/internal/criteria"
	"github.com/GoUserGroups/GoUserGroups/internal/db/dsn"
	"github.com/GoUserGroups/GoUserGroups/internal/db/models"
	"github.com/GoUserGroups/GoUserGroups/internal/engine"
	"github.com/GoUserGroups/GoUserGroups/internal/events"
	"github.com/GoUserGroups/GoUserGroups/internal/logger"
	"github.com/GoUserGroups/GoUserGroups/internal/tasks"
	"github.com/GoUserGroups/GoUserGroups/internal/web"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
	workerPool *tasks.Pool
}

// Start starts the worker pool and the web service. It blocks until the web
// service stops.
func (d *Daemon) Start() error {
	d.workerPool.Start()
	defer d.workerPool.Stop()

	return d.webService.Start(d.cfg)
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	if err := logger.Init(cfg.Log); err != nil {
		log.Fatal().Err(err).Msg("failed to init logger")
	}

	db := openDatabase(cfg)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Enrollment{},
		&models.Scope{},
		&models.Group{},
		&models.Criterion{},
		&models.Membership{},
		&models.GroupCollection{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	seed(cfg, db)

	registry := criteria.DefaultRegistry()
	backend := criteria.NewGormBackendClient(db)
	engineService := engine.New(db, registry, backend)

	bus := events.NewBus(cfg.Engine.QueueSize)
	orchestrator := tasks.NewOrchestrator(db, engineService, registry.EventMap())
	pool := tasks.NewPool(bus, orchestrator, cfg.Engine.Workers)

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, engineService, bus),
		workerPool: pool,
	}
}

// openDatabase opens the configured gorm engine, defaulting to MySQL.
func openDatabase(cfg *config.Config) *gorm.DB {
	var dialector gorm.Dialector

	switch cfg.DB.GormEngine {
	case "postgres":
		dialector = gormpostgres.Open(dsn.CreatePostgres(cfg))
	default:
		dialector = gormmysql.Open(dsn.Create(cfg))
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	return db
}
