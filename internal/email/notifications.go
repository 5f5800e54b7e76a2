package email

import (
	"context"
	"log/slog"

	"sentinel/internal/config"
	"sentinel/internal/models"
)

// Notifier sends security risk alerts to the configured recipients.
type Notifier struct {
	service   *Service
	templates *Templates
	cfg       *config.Config
}

// NewNotifier creates a new email notifier.
func NewNotifier(cfg *config.Config) *Notifier {
	return &Notifier{
		service:   NewService(cfg),
		templates: NewTemplates(cfg),
		cfg:       cfg,
	}
}

// Enabled reports whether alerts will actually be sent.
func (n *Notifier) Enabled() bool {
	return n.service.IsEnabled() && len(n.cfg.AlertRecipients) > 0
}

// NotifySecurityRisk alerts on a single analysed text with security hits.
func (n *Notifier) NotifySecurityRisk(ctx context.Context, result *models.AnalysisResult) {
	if !n.Enabled() || result == nil || !result.HasSecurityRisk() {
		return
	}

	subject, htmlBody, textBody := n.templates.SecurityRiskDetected(result)
	n.service.SendAsync(n.cfg.AlertRecipients, subject, htmlBody, textBody)
}

// NotifyBatchSecurityRisks sends one digest for all flagged rows of a batch.
func (n *Notifier) NotifyBatchSecurityRisks(ctx context.Context, report *models.BatchReport) {
	if !n.Enabled() || report == nil || report.Distribution.SecurityFlagged == 0 {
		return
	}

	var flagged []models.RowResult
	for _, row := range report.Rows {
		if row.IsOK() && row.Result.HasSecurityRisk() {
			flagged = append(flagged, row)
		}
	}
	if len(flagged) == 0 {
		return
	}

	slog.Info("sending batch security digest", "report_id", report.ID, "flagged", len(flagged))
	subject, htmlBody, textBody := n.templates.BatchSecurityDigest(report, flagged)
	n.service.SendAsync(n.cfg.AlertRecipients, subject, htmlBody, textBody)
}
