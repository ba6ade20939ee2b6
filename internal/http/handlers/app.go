package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"isuumo/internal/config"
	"isuumo/internal/metrics"
)

// NewApp builds the fiber application with middleware and every route.
func NewApp(deps *Deps, cfg config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "isuumo",
		ErrorHandler: ErrorHandler,
		BodyLimit:    cfg.MaxUploadBytes,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	if cfg.AccessLog {
		app.Use(logger.New())
	}
	app.Use(helmet.New())
	app.Use(metrics.Middleware())
	app.Use(BlockCrawlers())

	// ---------- Ops ----------
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Post("/initialize", deps.InitializeHandler.Initialize)

	// ---------- API ----------
	api := app.Group("/api", ResponseCache(deps.Cache, cfg.CacheTTL))

	api.Get("/chair/low_priced", deps.ChairHandler.LowPriced)
	api.Get("/chair/search/condition", deps.ConditionHandler.Chair)
	api.Get("/chair/search", deps.ChairHandler.Search)
	api.Get("/chair/:id", deps.ChairHandler.Get)
	api.Post("/chair/buy/:id", deps.ChairHandler.Buy)
	api.Post("/chair", deps.ChairHandler.Import)

	api.Get("/estate/low_priced", deps.EstateHandler.LowPriced)
	api.Get("/estate/search/condition", deps.ConditionHandler.Estate)
	api.Get("/estate/search", deps.EstateHandler.Search)
	api.Get("/estate/:id", deps.EstateHandler.Get)
	api.Post("/estate/nazotte", deps.EstateHandler.Nazotte)
	api.Post("/estate/req_doc/:id", deps.EstateHandler.RequestDocument)
	api.Post("/estate", deps.EstateHandler.Import)

	api.Get("/recommended_estate/:id", deps.EstateHandler.Recommended)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).SendString("Not Found")
	})
	return app
}
