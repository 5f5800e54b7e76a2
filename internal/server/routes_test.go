package server

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel/internal/analysis"
	"sentinel/internal/config"
	"sentinel/internal/metrics"
	"sentinel/internal/models"
	"sentinel/internal/reports"
	"sentinel/internal/scoring"
)

// keywordModel is a deterministic classifier: text mentioning "confusing",
// "hacked" or "slow" is negative, anything else positive.
type keywordModel struct {
	mu    sync.Mutex
	ready bool
}

func (k *keywordModel) ModelID() string      { return "keyword-test" }
func (k *keywordModel) ProviderName() string { return "test" }
func (k *keywordModel) TruncateLength() int  { return 512 }

func (k *keywordModel) Ready() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.ready
}

func (k *keywordModel) LoadedAt() time.Time { return time.Time{} }

func (k *keywordModel) Warm(context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.ready = true
	return nil
}

func (k *keywordModel) Classify(ctx context.Context, text string) (models.Classification, error) {
	_ = k.Warm(ctx)
	lower := strings.ToLower(text)
	for _, w := range []string{"confusing", "hacked", "slow"} {
		if strings.Contains(lower, w) {
			return models.Classification{Label: models.LabelNegative, Confidence: 0.99}, nil
		}
	}
	return models.Classification{Label: models.LabelPositive, Confidence: 0.95}, nil
}

var initMetrics sync.Once

func newTestServer(t *testing.T, opts ...func(*config.Config)) *Server {
	t.Helper()

	cfg := &config.Config{
		Env:            "development",
		BaseURL:        "http://localhost:3000",
		SessionSecret:  "test-secret-that-is-long-enough-for-production",
		MaxUploadBytes: 1 << 20,
		MaxBatchRows:   100,
		SiteTitle:      "UX-SRS Test",
		SiteTagline:    "Strategic Intelligence System",
		SiteFooter:     "Neural-Heuristic Integration",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	model := &keywordModel{}
	initMetrics.Do(func() { metrics.Init(model) })

	vocab, ok := scoring.Builtin(scoring.DefaultVocabulary)
	require.True(t, ok)
	storage := reports.NewMemory()
	t.Cleanup(func() { _ = storage.Close() })
	svc := analysis.New(model, scoring.NewScorer(vocab), reports.New(storage, time.Minute), nil,
		analysis.Options{BatchWorkers: 2, SensitivityThreshold: 0.5})

	srv := New(cfg, storage)
	srv.RegisterRoutes(svc)
	return srv
}

func do(t *testing.T, srv *Server, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := srv.App.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, string(body)
}

func TestDashboardPages(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, srv, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "UX-SRS Test")
	assert.Contains(t, body, "Single Entry Triage")
	assert.Contains(t, body, "keyword-test")
	assert.Contains(t, body, "Degraded")

	resp, body = do(t, srv, httptest.NewRequest(http.MethodGet, "/?tab=batch", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `hx-post="/batch"`)

	resp, body = do(t, srv, httptest.NewRequest(http.MethodGet, "/static/css/sentinel.css", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "#00cc96")
}

func TestAnalyzeFlow(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := do(t, srv, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	form := url.Values{"text": {"The login process is confusing and I'm worried about my data privacy."}}
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")

	resp, body := do(t, srv, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "NEGATIVE")
	assert.Contains(t, body, "99.00%")
	assert.Contains(t, body, "-1.140")
	assert.Contains(t, body, "Security risk detected")
	assert.Contains(t, body, "login, privacy")
	assert.NotContains(t, body, "<html", "partials render without the layout")

	resp, _ = do(t, srv, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = do(t, srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "sentinel_analyses_total")
	assert.Contains(t, body, "sentinel_model_ready")
}

var reportLink = regexp.MustCompile(`/reports/([0-9a-f-]{36})\.csv`)

// uploadRequest builds an htmx batch upload of a small feedback CSV with
// one security hit among three analysable rows.
func uploadRequest(t *testing.T) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "feedback.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("feedback\nMy account was hacked\nLove the redesign\n\nSo slow today\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/batch", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("HX-Request", "true")
	return req
}

func TestBatchFlow(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, srv, uploadRequest(t))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `data-positive="1"`)
	assert.Contains(t, body, `data-negative="2"`)
	assert.Contains(t, body, "Download Report")

	match := reportLink.FindStringSubmatch(body)
	require.Len(t, match, 2, "body: %s", body)

	resp, csvBody := do(t, srv, httptest.NewRequest(http.MethodGet, "/reports/"+match[1]+".csv", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "UX_SRS_Report.csv")
	assert.True(t, strings.HasPrefix(csvBody, "feedback,Sentiment,Confidence,Resonance,FrictionHits,SecurityHits,RiskLevel,Status\n"), csvBody)
	assert.Contains(t, csvBody, "My account was hacked,NEGATIVE,0.99,-0.99,,hacked,HIGH,ok")

	resp, body = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/reports/"+match[1], nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"security_flagged":1`)

	resp, _ = do(t, srv, httptest.NewRequest(http.MethodDelete, "/api/v1/reports/"+match[1], nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = do(t, srv, httptest.NewRequest(http.MethodGet, "/reports/"+match[1]+".csv", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReportDownload_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, srv, httptest.NewRequest(http.MethodGet, "/reports/00000000-0000-4000-8000-000000000000.csv", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Report not found or expired")
	assert.Contains(t, body, "UX-SRS Test", "error page uses the branded layout")
}

func TestAPIConfig(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/config", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"model_id":"keyword-test"`)
	assert.Contains(t, body, `"vocabulary":"sentinel"`)
	assert.Contains(t, body, `"sensitivity_threshold":0.5`)
	assert.Contains(t, body, `"report_ttl":"1m0s"`)
}

func TestAPIBatch_MixedRows(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/batch",
		strings.NewReader(`{"rows":["slow login",42,null,"love it"]}`))
	req.Header.Set("Content-Type", "application/json")

	resp, body := do(t, srv, req)
	assert.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Contains(t, body, `"total":4`)
	assert.Contains(t, body, `"analyzed":3`)
	assert.Contains(t, body, `"failed":1`)
	assert.Contains(t, body, `"text":"42","status":"ok"`)
	assert.Contains(t, body, `"status":"error","error":"malformed row: text is empty"`)
}
