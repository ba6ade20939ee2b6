package handlers

import (
	"github.com/gofiber/fiber/v2"

	"isuumo/internal/condition"
	applog "isuumo/internal/log"
	"isuumo/internal/services"
)

type InitializeHandler struct {
	Storage *services.StorageService
}

// POST /initialize
func (h *InitializeHandler) Initialize(c *fiber.Ctx) error {
	if err := h.Storage.Initialize(c.UserContext()); err != nil {
		return err
	}
	applog.Audit(c, "storage.initialize", nil)
	return c.JSON(fiber.Map{"language": "go"})
}

type ConditionHandler struct {
	Catalog *condition.Catalog
}

// GET /api/chair/search/condition
func (h *ConditionHandler) Chair(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(h.Catalog.Raw(condition.Chair))
}

// GET /api/estate/search/condition
func (h *ConditionHandler) Estate(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(h.Catalog.Raw(condition.Estate))
}
