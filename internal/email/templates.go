package email

import (
	"fmt"
	"html"
	"strings"

	"sentinel/internal/config"
	"sentinel/internal/models"
)

// Templates provides email template generation.
type Templates struct {
	cfg *config.Config
}

// NewTemplates creates a new templates instance.
func NewTemplates(cfg *config.Config) *Templates {
	return &Templates{cfg: cfg}
}

// baseHTML wraps content in a consistent HTML email template.
func (t *Templates) baseHTML(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #111827; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
        .footer { background: #f3f4f6; padding: 15px; text-align: center; font-size: 12px; color: #6b7280; border-radius: 0 0 8px 8px; border: 1px solid #e5e7eb; border-top: none; }
        .button { display: inline-block; background: #ef553b; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; margin: 10px 0; }
        .button:hover { background: #dc2626; }
        .info-box { background: white; border: 1px solid #e5e7eb; border-radius: 6px; padding: 15px; margin: 15px 0; }
        .label { font-weight: 600; color: #374151; }
        .value { color: #6b7280; }
        .success { color: #059669; }
        .warning { color: #d97706; }
        .error { color: #dc2626; }
        code { background: #e5e7eb; padding: 2px 6px; border-radius: 4px; font-family: monospace; }
    </style>
</head>
<body>
    <div class="header">
        <h1>%s</h1>
    </div>
    <div class="content">
        %s
    </div>
    <div class="footer">
        <p>This email was sent by %s</p>
        <p><a href="%s">%s</a></p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(t.cfg.SiteTitle), content, html.EscapeString(t.cfg.SiteTitle), t.cfg.BaseURL, t.cfg.BaseURL)
}

// excerptLength bounds how much feedback text an alert quotes.
const excerptLength = 280

// SecurityRiskDetected generates the alert for one feedback text that
// mentions security terms.
func (t *Templates) SecurityRiskDetected(r *models.AnalysisResult) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("[%s] Security risk flagged: %s", t.cfg.SiteTitle, strings.Join(r.SecurityHits, ", "))

	frictionHTML := "none"
	frictionText := "none"
	if len(r.FrictionHits) > 0 {
		frictionHTML = html.EscapeString(strings.Join(r.FrictionHits, ", "))
		frictionText = strings.Join(r.FrictionHits, ", ")
	}

	content := fmt.Sprintf(`
        <p>A piece of user feedback mentions security-sensitive terms.</p>

        <div class="info-box">
            <p><span class="label">Feedback:</span> <span class="value">%s</span></p>
            <p><span class="label">Security terms:</span> <span class="error">%s</span></p>
            <p><span class="label">Friction terms:</span> %s</p>
            <p><span class="label">Sentiment:</span> %s (%.1f%%)</p>
            <p><span class="label">Resonance:</span> <code>%.3f</code></p>
        </div>

        <p style="text-align: center;">
            <a href="%s/" class="button">Open Dashboard</a>
        </p>
    `,
		html.EscapeString(excerpt(r.Text)),
		html.EscapeString(strings.Join(r.SecurityHits, ", ")),
		frictionHTML,
		r.Label,
		r.ConfidencePercent(),
		r.Resonance,
		t.cfg.BaseURL,
	)

	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf(`Security risk flagged

Feedback: %s
Security terms: %s
Friction terms: %s
Sentiment: %s (%.1f%%)
Resonance: %.3f

Dashboard: %s/

--
%s
%s`,
		excerpt(r.Text),
		strings.Join(r.SecurityHits, ", "),
		frictionText,
		r.Label,
		r.ConfidencePercent(),
		r.Resonance,
		t.cfg.BaseURL,
		t.cfg.SiteTitle,
		t.cfg.BaseURL,
	)

	return
}

// BatchSecurityDigest generates one alert listing every flagged row of a
// batch run.
func (t *Templates) BatchSecurityDigest(report *models.BatchReport, flagged []models.RowResult) (subject, htmlBody, textBody string) {
	count := len(flagged)
	subject = fmt.Sprintf("[%s] %d of %d feedback rows flagged for security risk", t.cfg.SiteTitle, count, report.Distribution.Total)
	downloadURL := fmt.Sprintf("%s/reports/%s.csv", t.cfg.BaseURL, report.ID)

	var rowsHTML strings.Builder
	var rowsText strings.Builder

	for _, row := range flagged {
		terms := strings.Join(row.Result.SecurityHits, ", ")
		fmt.Fprintf(&rowsHTML, `
            <div class="info-box">
                <p><span class="label">Row %d:</span> <span class="value">%s</span></p>
                <p><span class="label">Security terms:</span> <span class="error">%s</span></p>
            </div>
        `,
			row.Index+1,
			html.EscapeString(excerpt(row.Text)),
			html.EscapeString(terms),
		)

		fmt.Fprintf(&rowsText, "\n- Row %d: %s\n  Security terms: %s\n", row.Index+1, excerpt(row.Text), terms)
	}

	content := fmt.Sprintf(`
        <p>A batch run of %d rows found %d row(s) mentioning security-sensitive terms:</p>
        %s
        <p style="text-align: center;">
            <a href="%s" class="button">Download Full Report</a>
        </p>
    `,
		report.Distribution.Total,
		count,
		rowsHTML.String(),
		downloadURL,
	)

	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf(`Batch security digest

%d of %d row(s) mention security-sensitive terms:
%s
Download: %s

--
%s
%s`,
		count,
		report.Distribution.Total,
		rowsText.String(),
		downloadURL,
		t.cfg.SiteTitle,
		t.cfg.BaseURL,
	)

	return
}

func excerpt(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= excerptLength {
		return text
	}
	return string(runes[:excerptLength]) + "..."
}
