package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"sentinel/internal/batch"
	"sentinel/internal/classifier"
	"sentinel/internal/reports"
	"sentinel/internal/scoring"
)

// errBadUpload marks a multipart upload that could not be turned into a table.
var errBadUpload = errors.New("invalid upload")

// jsonSuccess returns a 200 response with data wrapped in the standard envelope.
func jsonSuccess(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"data":   data,
	})
}

// jsonError returns an error response with the given HTTP status code.
func jsonError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "error",
		"error":  message,
	})
}

// jsonAnalysisError maps analysis errors to HTTP statuses.
func jsonAnalysisError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, scoring.ErrEmptyInput):
		return jsonError(c, fiber.StatusBadRequest, "text is empty")
	case errors.Is(err, errBadUpload), errors.Is(err, batch.ErrNoTextColumn), errors.Is(err, batch.ErrNoRows),
		errors.Is(err, batch.ErrMalformedCSV), errors.Is(err, batch.ErrTooManyRows):
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, classifier.ErrModelLoad):
		return jsonError(c, fiber.StatusServiceUnavailable, "model unavailable")
	case errors.Is(err, reports.ErrReportNotFound):
		return jsonError(c, fiber.StatusNotFound, "report not found")
	default:
		slog.Error("api analysis failed", "path", c.Path(), "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "analysis failed")
	}
}
