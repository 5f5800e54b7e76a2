package middleware

import (
	"context"
	"html"
	"log/slog"

	"github.com/gofiber/fiber/v3"
)

// ModelLoader loads the shared sentiment model on demand.
type ModelLoader interface {
	EnsureModel(ctx context.Context) error
}

// ModelMiddleware guards routes that cannot run without the model.
type ModelMiddleware struct {
	loader ModelLoader
}

// NewModelMiddleware creates a new model middleware instance.
func NewModelMiddleware(loader ModelLoader) *ModelMiddleware {
	return &ModelMiddleware{loader: loader}
}

// RequireModel loads the model before the handler runs. HTMX requests get
// an inline banner; full page requests get the error page with 503.
func (m *ModelMiddleware) RequireModel(c fiber.Ctx) error {
	if err := m.loader.EnsureModel(c.Context()); err != nil {
		slog.Warn("model unavailable", "path", c.Path(), "error", err)
		if c.Get("HX-Request") == "true" {
			return c.SendString(`<div class="p-3 rounded-lg bg-red-50 dark:bg-red-900/30 text-red-700 dark:text-red-300 text-sm">` +
				html.EscapeString(unavailableMessage) + `</div>`)
		}
		return fiber.NewError(fiber.StatusServiceUnavailable, unavailableMessage)
	}
	return c.Next()
}

// RequireModelJSON is RequireModel for the JSON API.
func (m *ModelMiddleware) RequireModelJSON(c fiber.Ctx) error {
	if err := m.loader.EnsureModel(c.Context()); err != nil {
		slog.Warn("model unavailable", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "error",
			"error":  "model unavailable",
		})
	}
	return c.Next()
}

const unavailableMessage = "The sentiment model is unavailable right now. Please try again shortly."
