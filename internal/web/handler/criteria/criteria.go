// Package criteria exposes the registered criterion type schemas for callers
// building criterion input (e.g. UI forms).
package criteria

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/GoUserGroups/GoUserGroups/internal/config"
	"github.com/GoUserGroups/GoUserGroups/internal/engine"
	"github.com/GoUserGroups/GoUserGroups/internal/events"
)

const (
	// Path is the path to the criterion schema endpoint.
	Path = "/api/v1/criteria"
)

// Service is the criterion schema handler service.
type Service struct {
	cfg    *config.Config
	engine *engine.Service
}

// Handler is the criterion schema handler.
var Handler = Service{}

// Init initializes the criterion schema handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, eng *engine.Service, _ *events.Bus) error {
	if app == nil || cfg == nil || eng == nil {
		return errors.New("app, cfg or engine is nil")
	}

	s.cfg = cfg
	s.engine = eng

	app.Get(Path, s.Get)

	return nil
}

// Get returns the schema of every registered criterion type.
func (s *Service) Get(c *fiber.Ctx) error {
	return c.JSON(s.engine.Schemas())
}
