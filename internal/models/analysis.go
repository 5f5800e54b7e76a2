package models

// Level is a two-step categorical signal.
type Level string

// Level constants
const (
	LevelLow  Level = "LOW"
	LevelHigh Level = "HIGH"
)

// Keyword categories
const (
	CategoryFriction = "friction"
	CategorySecurity = "security"
)

// Analysis modes, used for metrics labels.
const (
	ModeSingle = "single"
	ModeBatch  = "batch"
)

// AnalysisResult is the full triage of one feedback text.
type AnalysisResult struct {
	Text             string   `json:"text"`
	Label            Label    `json:"label"`
	Confidence       float64  `json:"confidence"`
	FrictionHits     []string `json:"friction_hits"`
	SecurityHits     []string `json:"security_hits"`
	Resonance        float64  `json:"resonance"`
	RiskLevel        Level    `json:"risk_level"`
	FrictionSeverity Level    `json:"friction_severity"`
}

// FrictionCount returns the number of distinct friction terms found.
func (r *AnalysisResult) FrictionCount() int {
	return len(r.FrictionHits)
}

// HasSecurityRisk returns true if any security term was found.
func (r *AnalysisResult) HasSecurityRisk() bool {
	return r.RiskLevel == LevelHigh
}

// ConfidencePercent returns the confidence scaled to 0-100.
func (r *AnalysisResult) ConfidencePercent() float64 {
	return r.Confidence * 100
}
