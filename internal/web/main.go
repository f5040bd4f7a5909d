// Package web implements the operational HTTP surface of the membership
// engine: health checking, Prometheus metrics, criterion schema
// introspection, group management and the event ingestion webhook. The REST
// surface is a thin layer over the engine; all domain logic lives there.
package web

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/GoUserGroups/GoUserGroups/internal/config"
	"github.com/GoUserGroups/GoUserGroups/internal/engine"
	"github.com/GoUserGroups/GoUserGroups/internal/events"
	accesslog "github.com/GoUserGroups/GoUserGroups/internal/logger/adapter/fiber"
	criteriahandler "github.com/GoUserGroups/GoUserGroups/internal/web/handler/criteria"
	eventshandler "github.com/GoUserGroups/GoUserGroups/internal/web/handler/events"
	groupshandler "github.com/GoUserGroups/GoUserGroups/internal/web/handler/groups"
)

// Service represents the web service.
type Service struct {
	App   *fiber.App
	cfg   *config.Config
	alive atomic.Bool
}

// Start starts the web service and blocks until a shutdown signal arrives
// and the graceful shutdown completes.
func (s *Service) Start(cfg *config.Config) error {
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Webserver.Port)

		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}
	}()

	s.WaitShutdown()

	return nil
}

// WaitShutdown waits for SIGINT/SIGTERM and gracefully stops the server.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: fail the health check first so
	// the LB removes this instance from active targets.
	s.alive.Store(false)
	time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)

	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		if err := s.App.Shutdown(); err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped")
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, engineService *engine.Service, bus *events.Bus) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if engineService == nil {
		panic("engine cannot be nil")
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.Title,
		DisableStartupMessage: !cfg.DevMode,
	})

	app.Use(accesslog.New(accesslog.Config{
		Config:        cfg.Log,
		CheckAliveURI: "/checkalive",
	}))

	service := &Service{App: app, cfg: cfg}
	service.alive.Store(true)

	app.Get("/checkalive", func(c *fiber.Ctx) error {
		if !service.alive.Load() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendString("OK")
	})

	app.Get("/metrics", metricsHandler())

	for _, h := range []interface {
		Init(app *fiber.App, cfg *config.Config, eng *engine.Service, bus *events.Bus) error
	}{
		&criteriahandler.Handler,
		&groupshandler.Handler,
		&eventshandler.Handler,
	} {
		if err := h.Init(app, cfg, engineService, bus); err != nil {
			log.Fatal().Err(err).Msg("failed to initialize web handler")
		}
	}

	return service
}

// metricsHandler wraps the Prometheus HTTP handler for fiber.
func metricsHandler() fiber.Handler {
	promHandler := promhttp.Handler()

	return func(c *fiber.Ctx) error {
		rec := &metricsRecorder{header: make(http.Header)}

		req, err := http.NewRequest(http.MethodGet, "/metrics", nil)
		if err != nil {
			return c.SendStatus(fiber.StatusInternalServerError)
		}

		promHandler.ServeHTTP(rec, req)

		c.Set(fiber.HeaderContentType, rec.header.Get(fiber.HeaderContentType))

		return c.Status(rec.status).Send(rec.body)
	}
}

// metricsRecorder is a minimal http.ResponseWriter capturing the Prometheus
// handler output for replay through fiber.
type metricsRecorder struct {
	header http.Header
	body   []byte
	status int
}

func (r *metricsRecorder) Header() http.Header {
	return r.header
}

func (r *metricsRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}

	r.body = append(r.body, p...)

	return len(p), nil
}

func (r *metricsRecorder) WriteHeader(status int) {
	r.status = status
}
