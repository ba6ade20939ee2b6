package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "isuumo/internal/log"
	"isuumo/internal/repos"
	"isuumo/internal/search"
	"isuumo/internal/validate"
)

// ErrorHandler is the fiber.Config error handler. Client errors keep their
// status and message; everything else is logged and reported as a bare 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return c.Status(fe.Code).SendString(fe.Message)
	}
	applog.Error(c, "server.error", err, nil)
	return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
}

// fail maps domain errors to responses and passes the rest to ErrorHandler.
func fail(c *fiber.Ctx, err error) error {
	var ie *search.InputError
	switch {
	case errors.As(err, &ie):
		return badRequest(c, ie.Msg)
	case errors.Is(err, repos.ErrNotFound):
		return c.Status(fiber.StatusNotFound).SendString("Not Found")
	}
	return err
}

func badRequest(c *fiber.Ctx, msg string) error {
	applog.Security(c, "validation.fail", map[string]any{"reason": msg})
	return c.Status(fiber.StatusBadRequest).SendString(msg)
}

func pathID(c *fiber.Ctx) (int64, bool) {
	return validate.ID(c.Params("id"))
}
