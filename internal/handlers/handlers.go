package handlers

import (
	"context"
	"errors"
	"html"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"sentinel/internal/batch"
	"sentinel/internal/classifier"
	"sentinel/internal/models"
	"sentinel/internal/reports"
	"sentinel/internal/scoring"
)

// Analyzer is the analysis service as used by the dashboard.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*models.AnalysisResult, error)
	RunBatch(ctx context.Context, table *batch.Table) (*models.BatchReport, error)
	Report(id string) (*models.BatchReport, error)
	Export(id string) ([]byte, error)
	Config() models.ConfigResponse
	Ready() bool
}

// htmxError returns an error message as HTML that HTMX will display.
// Uses 200 status so HTMX processes the swap (HTMX ignores non-2xx by default).
func htmxError(c fiber.Ctx, message string) error {
	return c.SendString(
		`<div class="p-3 rounded-lg bg-red-50 dark:bg-red-900/30 text-red-700 dark:text-red-300 text-sm">` + html.EscapeString(message) + `</div>`,
	)
}

// userMessage maps analysis errors to text shown in the dashboard.
func userMessage(err error) string {
	switch {
	case errors.Is(err, scoring.ErrEmptyInput):
		return "Please enter some feedback to analyze."
	case errors.Is(err, classifier.ErrModelLoad):
		return "The sentiment model is unavailable right now. Please try again shortly."
	case errors.Is(err, batch.ErrNoTextColumn):
		return "The CSV file needs a header row and at least one column of feedback text."
	case errors.Is(err, batch.ErrNoRows):
		return "The CSV file has a header but no feedback rows."
	case errors.Is(err, batch.ErrMalformedCSV):
		return "The CSV file has a broken quoted field. " + err.Error()
	case errors.Is(err, batch.ErrTooManyRows):
		return "The CSV file has too many rows. " + err.Error()
	case errors.Is(err, reports.ErrReportNotFound):
		return "That report has expired. Run the batch again to regenerate it."
	default:
		slog.Error("analysis failed", "error", err)
		return "Analysis failed. Please try again."
	}
}
