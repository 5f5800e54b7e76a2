package models

import "time"

// Row status constants
const (
	RowOK    = "ok"
	RowError = "error"
)

// RowResult is the outcome of analysing one batch row. Failed rows keep
// their position and carry the error message instead of a result.
type RowResult struct {
	Index  int             `json:"index"`
	Text   string          `json:"text"`
	Status string          `json:"status"`
	Error  string          `json:"error,omitempty"`
	Result *AnalysisResult `json:"result,omitempty"`
}

// IsOK returns true if the row was analysed.
func (r *RowResult) IsOK() bool {
	return r.Status == RowOK && r.Result != nil
}

// Distribution summarises a batch for the dashboard charts.
type Distribution struct {
	Total           int     `json:"total"`
	Analyzed        int     `json:"analyzed"`
	Failed          int     `json:"failed"`
	Positive        int     `json:"positive"`
	Negative        int     `json:"negative"`
	PositiveShare   float64 `json:"positive_share"`
	NegativeShare   float64 `json:"negative_share"`
	MeanConfidence  float64 `json:"mean_confidence"`
	MeanResonance   float64 `json:"mean_resonance"`
	FrictionFlagged int     `json:"friction_flagged"`
	SecurityFlagged int     `json:"security_flagged"`
}

// BatchReport is the result of one batch run. It lives only as long as the
// downloadable export is retained.
type BatchReport struct {
	ID           string       `json:"id"`
	CreatedAt    time.Time    `json:"created_at"`
	TextColumn   string       `json:"text_column"`
	Rows         []RowResult  `json:"rows"`
	Distribution Distribution `json:"distribution"`
}
