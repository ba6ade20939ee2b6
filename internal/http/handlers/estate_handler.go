package handlers

import (
	"bytes"
	_ "embed"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"isuumo/internal/cache"
	"isuumo/internal/domain"
	applog "isuumo/internal/log"
	"isuumo/internal/services"
)

//go:embed nazotte.schema.json
var nazotteSchemaJSON []byte

var nazotteSchema = func() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("nazotte.schema.json", bytes.NewReader(nazotteSchemaJSON)); err != nil {
		panic(err)
	}
	return compiler.MustCompile("nazotte.schema.json")
}()

type EstateHandler struct {
	Estates *services.EstateService
	Cache   cache.Store
}

// GET /api/estate/low_priced
func (h *EstateHandler) LowPriced(c *fiber.Ctx) error {
	estates, err := h.Estates.LowPriced(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"estates": estates})
}

// GET /api/estate/search
func (h *EstateHandler) Search(c *fiber.Ctx) error {
	estates, count, err := h.Estates.Search(c.UserContext(), c.Queries())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"count": count, "estates": estates})
}

// GET /api/estate/:id
func (h *EstateHandler) Get(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	estate, err := h.Estates.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(estate)
}

// GET /api/recommended_estate/:id
func (h *EstateHandler) Recommended(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	estates, err := h.Estates.RecommendedFor(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"estates": estates})
}

type nazotteRequest struct {
	Coordinates []domain.Coordinate `json:"coordinates"`
}

// POST /api/estate/nazotte
func (h *EstateHandler) Nazotte(c *fiber.Ctx) error {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return badRequest(c, "malformed json")
	}
	if err := nazotteSchema.Validate(doc); err != nil {
		return badRequest(c, "coordinates invalid")
	}
	var req nazotteRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "coordinates invalid")
	}

	estates, err := h.Estates.Nazotte(c.UserContext(), req.Coordinates)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"count": len(estates), "estates": estates})
}

// POST /api/estate/req_doc/:id
func (h *EstateHandler) RequestDocument(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	email, ok := contactEmail(c)
	if !ok {
		return badRequest(c, "email invalid")
	}
	if err := h.Estates.RequestDocument(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "estate.req_doc", map[string]any{
		"estate_id":  id,
		"email":      email,
		"request_id": uuid.NewString(),
	})
	return c.JSON(fiber.Map{"ok": true})
}

// POST /api/estate (multipart field "estates")
func (h *EstateHandler) Import(c *fiber.Ctx) error {
	return importUpload(c, "estates", h.Estates.Import, h.Cache)
}
