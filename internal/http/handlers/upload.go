package handlers

import (
	"context"
	"encoding/json"
	"io"

	"github.com/gofiber/fiber/v2"

	"isuumo/internal/cache"
	applog "isuumo/internal/log"
	"isuumo/internal/validate"
)

type importFunc func(ctx context.Context, r io.Reader) (int, error)

// importUpload feeds the multipart file in field to fn. Parse or insert
// failures are server errors: nothing of the upload is kept. A successful
// import purges the response cache.
func importUpload(c *fiber.Ctx, field string, fn importFunc, store cache.Store) error {
	fh, err := c.FormFile(field)
	if err != nil {
		return badRequest(c, "missing file field "+field)
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := fn(c.UserContext(), f)
	if err != nil {
		return err
	}
	purgeCache(c, store)
	applog.Audit(c, "catalog.import", map[string]any{"field": field, "rows": n, "file": fh.Filename})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true})
}

// contactEmail reads the optional {"email": ...} body. An absent body or
// email is fine; a present but malformed one is not.
func contactEmail(c *fiber.Ctx) (string, bool) {
	body := c.Body()
	if len(body) == 0 {
		return "", true
	}
	var req struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return "", false
	}
	if req.Email == "" {
		return "", true
	}
	return validate.Email(req.Email)
}
