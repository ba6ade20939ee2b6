package handlers

import (
	"regexp"

	"github.com/gofiber/fiber/v2"

	applog "isuumo/internal/log"
)

var blockedUserAgents = []*regexp.Regexp{
	regexp.MustCompile(`ISUCONbot(-Mobile)?`),
	regexp.MustCompile(`ISUCONbot-Image/`),
	regexp.MustCompile(`Mediapartners-ISUCON`),
	regexp.MustCompile(`ISUCONCoffee`),
	regexp.MustCompile(`ISUCONFeedSeeker(Beta)?`),
	regexp.MustCompile(`crawler \(https://isucon\.invalid/(support/faq/|help/jp/)`),
	regexp.MustCompile(`isubot`),
	regexp.MustCompile(`Isupider`),
	regexp.MustCompile(`Isupider(-image)?\+`),
	regexp.MustCompile(`(?i)(bot|crawler|spider)(?:[-_ ./;@()]|$)`),
}

// BlockCrawlers answers known crawler user agents with an empty 503.
func BlockCrawlers() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ua := c.Get(fiber.HeaderUserAgent)
		for _, re := range blockedUserAgents {
			if re.MatchString(ua) {
				applog.Security(c, "ua.blocked", map[string]any{"ua": ua})
				return c.Status(fiber.StatusServiceUnavailable).Send(nil)
			}
		}
		return c.Next()
	}
}
