package models

import "encoding/json"

// AnalyzeRequest is the JSON body for single-text analysis.
type AnalyzeRequest struct {
	Text string `json:"text"`
}

// BatchRequest is the JSON body for batch analysis without a CSV upload.
// Rows are kept raw so one non-string entry does not reject the batch.
type BatchRequest struct {
	Rows []json.RawMessage `json:"rows"`
}

// ConfigResponse exposes the active analysis configuration.
type ConfigResponse struct {
	ModelID              string   `json:"model_id"`
	Provider             string   `json:"provider"`
	ModelReady           bool     `json:"model_ready"`
	Vocabulary           string   `json:"vocabulary"`
	FrictionTerms        []string `json:"friction_terms"`
	SecurityTerms        []string `json:"security_terms"`
	TruncateLength       int      `json:"truncate_length"`
	SensitivityThreshold float64  `json:"sensitivity_threshold"`
	ReportTTL            string   `json:"report_ttl"` // how long batch reports stay downloadable
}

// ProbeResponse is returned by the health probe endpoints.
type ProbeResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
