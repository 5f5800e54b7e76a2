package handlers

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"sentinel/internal/batch"
	"sentinel/internal/config"
	"sentinel/internal/reports"
	"sentinel/internal/validation"
)

// sessionLastReport holds the ID of the visitor's most recent batch report.
const sessionLastReport = "last_report_id"

// ExportFilename is the name offered for downloaded reports.
const ExportFilename = "UX_SRS_Report.csv"

// DashboardHandler serves the single-entry and batch dashboard.
type DashboardHandler struct {
	svc Analyzer
	cfg *config.Config
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(svc Analyzer, cfg *config.Config) *DashboardHandler {
	return &DashboardHandler{svc: svc, cfg: cfg}
}

// Index renders the dashboard.
func (h *DashboardHandler) Index(c fiber.Ctx) error {
	data := MergeBranding(fiber.Map{
		"Config":     h.svc.Config(),
		"ModelReady": h.svc.Ready(),
		"Tab":        c.Query("tab", "single"),
	}, h.cfg)

	if sess := session.FromContext(c); sess != nil {
		if id, ok := sess.Get(sessionLastReport).(string); ok {
			if report, err := h.svc.Report(id); err == nil {
				data["LastReport"] = report
			}
		}
	}

	return c.Render("index", data)
}

// Analyze triages one feedback text and renders the result partial.
func (h *DashboardHandler) Analyze(c fiber.Ctx) error {
	text := c.FormValue("text")
	if valid, msg := validation.ValidateFeedback(text); !valid {
		return htmxError(c, msg)
	}

	result, err := h.svc.Analyze(c.Context(), text)
	if err != nil {
		return htmxError(c, userMessage(err))
	}

	return c.Render("partials/triage", fiber.Map{
		"Result": result,
	}, "")
}

// Batch analyses an uploaded CSV and renders the batch results partial.
func (h *DashboardHandler) Batch(c fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return htmxError(c, "Please choose a CSV file to upload.")
	}
	if valid, msg := validation.ValidateUpload(file.Filename, file.Size, h.cfg.MaxUploadBytes); !valid {
		return htmxError(c, msg)
	}

	f, err := file.Open()
	if err != nil {
		slog.Error("failed to open upload", "filename", file.Filename, "error", err)
		return htmxError(c, "The uploaded file could not be read.")
	}
	defer f.Close()

	table, err := batch.ReadCSV(f, h.cfg.MaxBatchRows)
	if err != nil {
		switch {
		case errors.Is(err, batch.ErrNoTextColumn), errors.Is(err, batch.ErrNoRows),
			errors.Is(err, batch.ErrMalformedCSV), errors.Is(err, batch.ErrTooManyRows):
			return htmxError(c, userMessage(err))
		}
		return htmxError(c, "The CSV file could not be parsed: "+err.Error())
	}

	report, err := h.svc.RunBatch(c.Context(), table)
	if err != nil {
		return htmxError(c, userMessage(err))
	}

	if sess := session.FromContext(c); sess != nil {
		sess.Set(sessionLastReport, report.ID)
	}

	return c.Render("partials/batch", fiber.Map{
		"Report": report,
	}, "")
}

// Download sends a stored report as CSV. The route parameter may carry a
// ".csv" suffix.
func (h *DashboardHandler) Download(c fiber.Ctx) error {
	id := strings.TrimSuffix(c.Params("file"), ".csv")

	data, err := h.svc.Export(id)
	if err != nil {
		if errors.Is(err, reports.ErrReportNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Report not found or expired")
		}
		return err
	}

	c.Attachment(ExportFilename)
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.Send(data)
}
