// Package groups implements the group management endpoints: creation with
// criteria, membership evaluation, inspection and deletion.
package groups

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoUserGroups/GoUserGroups/internal/config"
	"github.com/GoUserGroups/GoUserGroups/internal/criteria"
	"github.com/GoUserGroups/GoUserGroups/internal/engine"
	"github.com/GoUserGroups/GoUserGroups/internal/events"
)

const (
	// Path is the base path of the group endpoints.
	Path = "/api/v1/groups"
)

// Service is the group management handler service.
type Service struct {
	cfg       *config.Config
	engine    *engine.Service
	validator *validator.Validate
}

// Handler is the group management handler.
var Handler = Service{}

// Init initializes the group management handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, eng *engine.Service, _ *events.Bus) error {
	if app == nil || cfg == nil || eng == nil {
		return errors.New("app, cfg or engine is nil")
	}

	s.cfg = cfg
	s.engine = eng
	s.validator = validator.New()

	app.Route(Path, func(router fiber.Router) {
		router.Post("/", s.Create)
		router.Get("/:id", s.Get)
		router.Get("/:id/members", s.Members)
		router.Post("/:id/evaluate", s.Evaluate)
		router.Delete("/:id", s.Delete)
	})

	return nil
}

// createGroupInput is the request body for group creation.
type createGroupInput struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Scope       scopeInput      `json:"scope"`
	Criteria    []criteria.Spec `json:"criteria"`
	Evaluate    bool            `json:"evaluate"`
}

type scopeInput struct {
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description"`
	ResourceType string `json:"resource_type" validate:"required"`
	ResourceID   string `json:"resource_id"`
}

// Create creates a group with its criteria, optionally evaluating the
// membership immediately.
func (s *Service) Create(c *fiber.Ctx) error {
	var input createGroupInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := s.validator.Struct(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	scopeSpec := engine.ScopeSpec{
		Name:         input.Scope.Name,
		Description:  input.Scope.Description,
		ResourceType: input.Scope.ResourceType,
		ResourceID:   input.Scope.ResourceID,
	}

	create := s.engine.CreateGroupWithCriteria
	if input.Evaluate {
		create = s.engine.CreateGroupWithCriteriaAndEvaluateMembership
	}

	group, err := create(input.Name, input.Description, scopeSpec, input.Criteria)
	if err != nil {
		return s.renderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(group)
}

// Get returns a group with its scope and criteria.
func (s *Service) Get(c *fiber.Ctx) error {
	groupID, err := parseGroupID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid group id"})
	}

	group, err := s.engine.GetGroupByID(groupID)
	if err != nil {
		return s.renderError(c, err)
	}

	return c.JSON(group)
}

// Members returns the group's current roster.
func (s *Service) Members(c *fiber.Ctx) error {
	groupID, err := parseGroupID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid group id"})
	}

	members, err := s.engine.GetGroupMembers(groupID)
	if err != nil {
		return s.renderError(c, err)
	}

	return c.JSON(members)
}

// Evaluate re-evaluates the group's criteria and replaces its roster.
func (s *Service) Evaluate(c *fiber.Ctx) error {
	groupID, err := parseGroupID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid group id"})
	}

	if err := s.engine.EvaluateAndUpdateMembershipForGroup(groupID); err != nil {
		return s.renderError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Delete soft-deletes the group by default; ?hard=true removes the group
// together with its criteria and memberships.
func (s *Service) Delete(c *fiber.Ctx) error {
	groupID, err := parseGroupID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid group id"})
	}

	if c.Query("hard") == "true" {
		err = s.engine.HardDeleteGroup(groupID)
	} else {
		err = s.engine.SoftDeleteGroup(groupID)
	}

	if err != nil {
		return s.renderError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// renderError maps engine errors to HTTP answers, surfacing which criterion
// and which validation rule failed so the caller can correct the input.
func (s *Service) renderError(c *fiber.Ctx, err error) error {
	var criterionErr *engine.CriterionValidationError
	if errors.As(err, &criterionErr) {
		body := fiber.Map{
			"error":           criterionErr.Error(),
			"criterion_index": criterionErr.Index,
			"criterion_type":  criterionErr.CriterionType,
		}

		var configErr *criteria.InvalidConfigurationError
		if errors.As(err, &configErr) {
			body["fields"] = configErr.Fields
		}

		return c.Status(fiber.StatusBadRequest).JSON(body)
	}

	switch {
	case errors.Is(err, engine.ErrGroupNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, engine.ErrDuplicateGroupName):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Error().Err(err).Msg("group operation failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}

func parseGroupID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}

	return uint(id), nil
}
