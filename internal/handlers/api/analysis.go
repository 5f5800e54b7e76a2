package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"

	"sentinel/internal/batch"
	"sentinel/internal/config"
	"sentinel/internal/models"
	"sentinel/internal/validation"
)

// Analyzer is the analysis service as used by the JSON API.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*models.AnalysisResult, error)
	RunBatch(ctx context.Context, table *batch.Table) (*models.BatchReport, error)
	Report(id string) (*models.BatchReport, error)
	DeleteReport(id string) error
	Config() models.ConfigResponse
}

// AnalysisHandler serves analysis over the JSON API.
type AnalysisHandler struct {
	svc Analyzer
	cfg *config.Config
}

// NewAnalysisHandler creates a new API analysis handler.
func NewAnalysisHandler(svc Analyzer, cfg *config.Config) *AnalysisHandler {
	return &AnalysisHandler{svc: svc, cfg: cfg}
}

// Config returns the active model and vocabulary settings.
func (h *AnalysisHandler) Config(c fiber.Ctx) error {
	return jsonSuccess(c, h.svc.Config())
}

// Analyze triages a single text sent as {"text": "..."}.
func (h *AnalysisHandler) Analyze(c fiber.Ctx) error {
	var body models.AnalyzeRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.svc.Analyze(c.Context(), body.Text)
	if err != nil {
		return jsonAnalysisError(c, err)
	}

	return jsonSuccess(c, result)
}

// Batch analyses rows sent either as a multipart CSV upload in "file" or as
// {"rows": [...]}.
func (h *AnalysisHandler) Batch(c fiber.Ctx) error {
	var table *batch.Table
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		t, err := h.readUpload(c)
		if err != nil {
			return jsonAnalysisError(c, err)
		}
		table = t
	} else {
		var body models.BatchRequest
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid request body")
		}
		if len(body.Rows) == 0 {
			return jsonError(c, fiber.StatusBadRequest, "rows must not be empty")
		}
		if h.cfg.MaxBatchRows > 0 && len(body.Rows) > h.cfg.MaxBatchRows {
			return jsonAnalysisError(c, fmt.Errorf("%w: limit is %d", batch.ErrTooManyRows, h.cfg.MaxBatchRows))
		}
		table = batch.TableFromTexts("text", rowTexts(body.Rows))
	}

	report, err := h.svc.RunBatch(c.Context(), table)
	if err != nil {
		return jsonAnalysisError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "ok",
		"data":   report,
	})
}

// rowTexts turns JSON rows into cell text. Strings are used as is, numbers
// and booleans by their literal. null, objects and arrays become empty cells,
// which the runner marks as malformed rows.
func rowTexts(rows []json.RawMessage) []string {
	texts := make([]string, len(rows))
	for i, raw := range rows {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 {
			continue
		}
		switch raw[0] {
		case '"':
			var s string
			if err := json.Unmarshal(raw, &s); err == nil {
				texts[i] = s
			}
		case 't', 'f', '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			texts[i] = string(raw)
		}
	}
	return texts
}

// readUpload parses the multipart CSV in "file".
func (h *AnalysisHandler) readUpload(c fiber.Ctx) (*batch.Table, error) {
	file, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("%w: file is required", errBadUpload)
	}
	if valid, msg := validation.ValidateUpload(file.Filename, file.Size, h.cfg.MaxUploadBytes); !valid {
		return nil, fmt.Errorf("%w: %s", errBadUpload, msg)
	}

	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errBadUpload, err)
	}
	defer f.Close()

	table, err := batch.ReadCSV(f, h.cfg.MaxBatchRows)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errBadUpload, err)
	}
	return table, nil
}

// Report returns a stored batch report by ID.
func (h *AnalysisHandler) Report(c fiber.Ctx) error {
	report, err := h.svc.Report(c.Params("id"))
	if err != nil {
		return jsonAnalysisError(c, err)
	}
	return jsonSuccess(c, report)
}

// DeleteReport removes a stored batch report before it expires.
func (h *AnalysisHandler) DeleteReport(c fiber.Ctx) error {
	id := c.Params("id")
	if err := h.svc.DeleteReport(id); err != nil {
		return jsonAnalysisError(c, err)
	}
	return jsonSuccess(c, fiber.Map{"id": id, "deleted": true})
}
