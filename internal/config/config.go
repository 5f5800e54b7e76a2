package config

import (
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// Model provider names
const (
	ProviderHuggingFace = "huggingface"
	ProviderONNX        = "onnx"
)

// DefaultModelID is the pretrained binary sentiment model used when MODEL_ID is unset.
const DefaultModelID = "distilbert-base-uncased-finetuned-sst-2-english"

// DefaultVocabulary is the keyword profile used when neither VOCABULARY nor
// the config file names one.
const DefaultVocabulary = "sentinel"

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // text, json

	// TLS/mTLS
	TLSEnabled  bool
	TLSCertFile string
	TLSKeyFile  string
	TLSCAFile   string // CA for verifying client certs (mTLS)

	// Session
	SessionSecret string // Used for encrypting cookies (min 32 chars)

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// Rate limiting
	RateLimitPerMinute int

	// Redis backs the rate limiter and report store when set.
	RedisURL string

	// Model
	ModelProvider    string // huggingface, onnx
	ModelID          string
	HFHubURL         string
	HFInferenceURL   string
	HFToken          string
	ModelDir         string // onnx: directory holding model.onnx and vocab.txt
	ONNXLibPath      string // onnx: path to libonnxruntime shared library
	ModelLoadRetries uint64
	ModelTimeout     time.Duration
	WarmupOnStart    bool
	WarmupInterval   time.Duration

	// Analysis
	TruncateLength       int
	SensitivityThreshold float64 // shown in the dashboard, not used by scoring
	Vocabulary           string  // vocabulary profile name; empty defers to the config file

	// Batch
	BatchWorkers   int
	MaxBatchRows   int
	MaxUploadBytes int
	ReportTTL      time.Duration

	// Email (security alerts)
	SMTPEnabled     bool
	SMTPHost        string
	SMTPPort        int
	SMTPUsername    string
	SMTPPassword    string
	SMTPFrom        string
	SMTPFromName    string
	SMTPTLS         string // none, tls, starttls
	AlertRecipients []string

	// Site Branding
	SiteTitle   string // env: SITE_TITLE
	SiteTagline string // env: SITE_TAGLINE
	SiteFooter  string // env: SITE_FOOTER
	SiteLogoURL string // env: SITE_LOGO_URL, default: "" (no logo, text only)
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:        getEnv("ENV", "development"),
		ServerAddr: getEnv("SERVER_ADDR", ":3000"),
		BaseURL:    getEnv("BASE_URL", "http://localhost:3000"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		TLSEnabled:  getEnv("TLS_ENABLED", "") != "",
		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),
		TLSCAFile:   getEnv("TLS_CA_FILE", ""),

		SessionSecret:      getEnv("SESSION_SECRET", "change-me-in-production-min-32-chars"),
		CORSOrigins:        getEnv("CORS_ORIGINS", ""),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 100),
		RedisURL:           getEnv("REDIS_URL", ""),

		ModelProvider:    strings.ToLower(getEnv("MODEL_PROVIDER", ProviderHuggingFace)),
		ModelID:          getEnv("MODEL_ID", DefaultModelID),
		HFHubURL:         strings.TrimRight(getEnv("HF_HUB_URL", "https://huggingface.co"), "/"),
		HFInferenceURL:   strings.TrimRight(getEnv("HF_INFERENCE_URL", "https://router.huggingface.co/hf-inference"), "/"),
		HFToken:          getEnv("HF_TOKEN", ""),
		ModelDir:         getEnv("MODEL_DIR", "models"),
		ONNXLibPath:      getEnv("ONNX_LIB_PATH", ""),
		ModelLoadRetries: getEnvUint("MODEL_LOAD_RETRIES", 3),
		ModelTimeout:     getEnvDuration("MODEL_TIMEOUT", 30*time.Second),
		WarmupOnStart:    getEnv("WARMUP_ON_START", "true") != "false",
		WarmupInterval:   getEnvPositiveDuration("WARMUP_INTERVAL", time.Minute),

		TruncateLength:       getEnvInt("TRUNCATE_LENGTH", 512),
		SensitivityThreshold: clamp01(getEnvFloat("SENSITIVITY_THRESHOLD", 0.5)),
		Vocabulary:           getEnv("VOCABULARY", ""),

		BatchWorkers:   getEnvInt("BATCH_WORKERS", 4),
		MaxBatchRows:   getEnvInt("MAX_BATCH_ROWS", 5000),
		MaxUploadBytes: getEnvInt("MAX_UPLOAD_BYTES", 10*1024*1024),
		ReportTTL:      getEnvDuration("REPORT_TTL", 30*time.Minute),

		SMTPEnabled:     getEnv("SMTP_ENABLED", "") != "",
		SMTPHost:        getEnv("SMTP_HOST", ""),
		SMTPPort:        getEnvInt("SMTP_PORT", 587),
		SMTPUsername:    getEnv("SMTP_USERNAME", ""),
		SMTPPassword:    getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:        getEnv("SMTP_FROM", ""),
		SMTPFromName:    getEnv("SMTP_FROM_NAME", "UX-SRS Sentinel"),
		SMTPTLS:         getEnv("SMTP_TLS", "starttls"),
		AlertRecipients: splitList(getEnv("ALERT_RECIPIENTS", "")),

		SiteTitle:   getEnv("SITE_TITLE", "UX Resonance & Security Sentinel (UX-SRS)"),
		SiteTagline: getEnv("SITE_TAGLINE", "Strategic Intelligence System • Multidisciplinary Systems Research"),
		SiteFooter:  getEnv("SITE_FOOTER", "Neural-Heuristic Integration"),
		SiteLogoURL: getEnv("SITE_LOGO_URL", ""),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// getEnvUint rejects negative and non-numeric values.
func getEnvUint(key string, fallback uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

// getEnvFloat falls back on NaN and infinities as well as parse errors.
func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

// getEnvPositiveDuration is getEnvDuration for intervals that must tick.
func getEnvPositiveDuration(key string, fallback time.Duration) time.Duration {
	if d := getEnvDuration(key, fallback); d > 0 {
		return d
	}
	return fallback
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// VocabularyName picks the keyword profile: VOCABULARY wins, then the
// config file default, then DefaultVocabulary.
func (c *Config) VocabularyName(file *YAMLConfig) string {
	if c.Vocabulary != "" {
		return c.Vocabulary
	}
	return file.DefaultVocabulary(DefaultVocabulary)
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsMTLSEnabled returns true if mTLS is configured with a CA file.
func (c *Config) IsMTLSEnabled() bool {
	return c.TLSEnabled && c.TLSCAFile != ""
}

// IsEmailEnabled returns true if SMTP is configured well enough to send mail.
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPEnabled && c.SMTPHost != "" && c.SMTPFrom != ""
}

// IsRedisEnabled returns true if a Redis URL is configured.
func (c *Config) IsRedisEnabled() bool {
	return c.RedisURL != ""
}
