package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"isuumo/internal/cache"
	applog "isuumo/internal/log"
	"isuumo/internal/services"
)

type ChairHandler struct {
	Chairs *services.ChairService
	Cache  cache.Store
}

// GET /api/chair/low_priced
func (h *ChairHandler) LowPriced(c *fiber.Ctx) error {
	chairs, err := h.Chairs.LowPriced(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"chairs": chairs})
}

// GET /api/chair/search
func (h *ChairHandler) Search(c *fiber.Ctx) error {
	chairs, count, err := h.Chairs.Search(c.UserContext(), c.Queries())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"count": count, "chairs": chairs})
}

// GET /api/chair/:id
func (h *ChairHandler) Get(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	chair, err := h.Chairs.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(chair)
}

// POST /api/chair/buy/:id
func (h *ChairHandler) Buy(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	email, ok := contactEmail(c)
	if !ok {
		return badRequest(c, "email invalid")
	}
	if err := h.Chairs.Buy(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	invalidate(c, h.Cache, "/api/chair/"+strconv.FormatInt(id, 10))
	applog.Audit(c, "chair.buy", map[string]any{"chair_id": id, "email": email})
	return c.JSON(fiber.Map{"ok": true})
}

// POST /api/chair (multipart field "chairs")
func (h *ChairHandler) Import(c *fiber.Ctx) error {
	return importUpload(c, "chairs", h.Chairs.Import, h.Cache)
}
