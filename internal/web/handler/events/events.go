// Package events implements the event ingestion endpoint. Accepted events are
// queued on the in-process bus; the worker pool picks them up asynchronously.
package events

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/GoUserGroups/GoUserGroups/internal/config"
	"github.com/GoUserGroups/GoUserGroups/internal/engine"
	"github.com/GoUserGroups/GoUserGroups/internal/events"
)

const (
	// Path is the path of the event ingestion endpoint.
	Path = "/api/v1/events"
)

// Service is the event ingestion handler service.
type Service struct {
	cfg       *config.Config
	bus       *events.Bus
	validator *validator.Validate
}

// Handler is the event ingestion handler.
var Handler = Service{}

// Init initializes the event ingestion handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, _ *engine.Service, bus *events.Bus) error {
	if app == nil || cfg == nil || bus == nil {
		return errors.New("app, cfg or bus is nil")
	}

	s.cfg = cfg
	s.bus = bus
	s.validator = validator.New()

	app.Post(Path, s.Post)

	return nil
}

// eventInput is the request body for event ingestion.
type eventInput struct {
	Type string         `json:"type" validate:"required"`
	Data map[string]any `json:"data"`
}

// Post accepts an event envelope and queues it for impact analysis. The
// answer is 202 because the membership updates happen asynchronously.
func (s *Service) Post(c *fiber.Ctx) error {
	var input eventInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := s.validator.Struct(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	event := events.NewEvent(input.Type, input.Data)
	if !s.bus.Publish(event) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "event queue is full"})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"id": event.ID})
}
