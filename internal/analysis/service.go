package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sentinel/internal/batch"
	"sentinel/internal/metrics"
	"sentinel/internal/models"
	"sentinel/internal/reports"
	"sentinel/internal/scoring"
)

// Classifier is the shared sentiment model as seen by the service.
type Classifier interface {
	batch.Classifier
	ModelID() string
	ProviderName() string
	TruncateLength() int
	Ready() bool
	Warm(ctx context.Context) error
}

// Alerter is notified about results that carry security risk.
type Alerter interface {
	NotifySecurityRisk(ctx context.Context, result *models.AnalysisResult)
	NotifyBatchSecurityRisks(ctx context.Context, report *models.BatchReport)
}

// Options tunes the service.
type Options struct {
	BatchWorkers         int
	SensitivityThreshold float64 // displayed only
}

// Service ties the classifier, the keyword scorer and the report store
// together for the dashboard and the API.
type Service struct {
	classifier Classifier
	scorer     *scoring.Scorer
	reports    *reports.Store
	alerter    Alerter
	opts       Options
}

// New creates the analysis service. alerter may be nil.
func New(c Classifier, scorer *scoring.Scorer, store *reports.Store, alerter Alerter, opts Options) *Service {
	if alerter == nil {
		alerter = noopAlerter{}
	}
	return &Service{
		classifier: c,
		scorer:     scorer,
		reports:    store,
		alerter:    alerter,
		opts:       opts,
	}
}

// Ready reports whether the model is loaded.
func (s *Service) Ready() bool {
	return s.classifier.Ready()
}

// EnsureModel loads the model if needed.
func (s *Service) EnsureModel(ctx context.Context) error {
	return s.classifier.Warm(ctx)
}

// Analyze classifies and scores one feedback text. Blank text fails with
// scoring.ErrEmptyInput before the model is touched.
func (s *Service) Analyze(ctx context.Context, text string) (*models.AnalysisResult, error) {
	if scoring.IsBlank(text) {
		return nil, scoring.ErrEmptyInput
	}

	start := time.Now()
	cls, err := s.classifier.Classify(ctx, text)
	if err != nil {
		return nil, err
	}

	result, err := s.scorer.Evaluate(text, cls)
	if err != nil {
		return nil, err
	}

	metrics.ObserveDuration(models.ModeSingle, time.Since(start))
	metrics.RecordAnalysis(models.ModeSingle, &result)

	if result.HasSecurityRisk() {
		slog.Info("security risk flagged", "terms", result.SecurityHits, "label", result.Label)
		s.alerter.NotifySecurityRisk(ctx, &result)
	}

	return &result, nil
}

// RunBatch analyses every row of table, stores the report and its CSV
// export, and returns the report with its ID set. A model that cannot be
// loaded aborts the batch; individual bad rows do not.
func (s *Service) RunBatch(ctx context.Context, table *batch.Table) (*models.BatchReport, error) {
	if err := s.classifier.Warm(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	runner := batch.NewRunner(s.classifier, s.scorer,
		batch.WithWorkers(s.opts.BatchWorkers),
		batch.WithRowHook(metrics.RecordRow),
	)
	rows := runner.Run(ctx, table.Texts())
	elapsed := time.Since(start)

	report := &models.BatchReport{
		TextColumn:   table.TextColumn(),
		Rows:         rows,
		Distribution: batch.Summarize(rows),
	}

	export, err := batch.ExportCSV(table, rows)
	if err != nil {
		return nil, fmt.Errorf("export report: %w", err)
	}
	if err := s.reports.Save(report, export); err != nil {
		return nil, err
	}

	metrics.RecordBatch(len(rows), elapsed)
	slog.Info("batch analysed",
		"report_id", report.ID,
		"rows", report.Distribution.Total,
		"failed", report.Distribution.Failed,
		"security_flagged", report.Distribution.SecurityFlagged,
		"duration", elapsed,
	)

	s.alerter.NotifyBatchSecurityRisks(ctx, report)
	return report, nil
}

// Report returns a stored batch report.
func (s *Service) Report(id string) (*models.BatchReport, error) {
	return s.reports.Report(id)
}

// Export returns the CSV export of a stored batch report.
func (s *Service) Export(id string) ([]byte, error) {
	return s.reports.Export(id)
}

// DeleteReport removes a stored batch report and its export.
func (s *Service) DeleteReport(id string) error {
	if err := s.reports.Delete(id); err != nil {
		return err
	}
	slog.Info("batch report deleted", "report_id", id)
	return nil
}

// Config returns the active analysis configuration.
func (s *Service) Config() models.ConfigResponse {
	vocab := s.scorer.Vocabulary()
	return models.ConfigResponse{
		ModelID:              s.classifier.ModelID(),
		Provider:             s.classifier.ProviderName(),
		ModelReady:           s.classifier.Ready(),
		Vocabulary:           vocab.Name,
		FrictionTerms:        vocab.Friction,
		SecurityTerms:        vocab.Security,
		TruncateLength:       s.classifier.TruncateLength(),
		SensitivityThreshold: s.opts.SensitivityThreshold,
		ReportTTL:            reportTTL(s.reports.TTL()),
	}
}

func reportTTL(ttl time.Duration) string {
	if ttl <= 0 {
		return "never"
	}
	return ttl.String()
}

type noopAlerter struct{}

func (noopAlerter) NotifySecurityRisk(context.Context, *models.AnalysisResult)    {}
func (noopAlerter) NotifyBatchSecurityRisks(context.Context, *models.BatchReport) {}
