package handlers

import (
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	"isuumo/internal/cache"
	applog "isuumo/internal/log"
	"isuumo/internal/metrics"
)

// ResponseCache memoizes successful GET bodies for ttl. Hits are replayed
// without running the handler and carry X-Cache: HIT. A failing store never
// fails the request.
//
// Writes invalidate only what they can name: a purchase drops that chair's
// detail entry and an import purges everything. Lists and search pages that
// include a purchased chair keep its old stock until ttl runs out.
func ResponseCache(store cache.Store, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ttl <= 0 || c.Method() != fiber.MethodGet {
			return c.Next()
		}
		ctx := c.UserContext()
		key := cache.Key(c.Path(), queryValues(c))

		body, ok, err := store.Get(ctx, key)
		switch {
		case err != nil:
			metrics.CacheLookups.WithLabelValues("error").Inc()
			applog.Error(c, "cache.get.fail", err, nil)
		case ok:
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			c.Set("X-Cache", "HIT")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(body)
		default:
			metrics.CacheLookups.WithLabelValues("miss").Inc()
		}

		c.Set("X-Cache", "MISS")
		if err := c.Next(); err != nil {
			return err
		}
		if c.Response().StatusCode() != fiber.StatusOK {
			return nil
		}
		// fasthttp reuses the response buffer after the request completes
		out := append([]byte(nil), c.Response().Body()...)
		if err := store.Set(ctx, key, out, ttl); err != nil {
			applog.Error(c, "cache.set.fail", err, nil)
		}
		return nil
	}
}

func queryValues(c *fiber.Ctx) url.Values {
	q := url.Values{}
	c.Request().URI().QueryArgs().VisitAll(func(k, v []byte) {
		q.Add(string(k), string(v))
	})
	return q
}

// invalidate drops the cached responses for paths after a successful write.
func invalidate(c *fiber.Ctx, store cache.Store, paths ...string) {
	keys := make([]string, len(paths))
	for i, p := range paths {
		keys[i] = cache.Key(p, nil)
	}
	if err := store.Delete(c.UserContext(), keys...); err != nil {
		applog.Error(c, "cache.delete.fail", err, map[string]any{"keys": keys})
	}
}

func purgeCache(c *fiber.Ctx, store cache.Store) {
	if err := store.PurgeAll(c.UserContext()); err != nil {
		applog.Error(c, "cache.purge.fail", err, nil)
	}
}
