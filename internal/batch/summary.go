package batch

import (
	"math"

	"sentinel/internal/models"
)

// Summarize builds the label distribution and averages for a batch.
// Failed rows count towards Total and Failed only.
func Summarize(results []models.RowResult) models.Distribution {
	d := models.Distribution{Total: len(results)}

	var confSum, resSum float64
	for i := range results {
		row := &results[i]
		if !row.IsOK() {
			d.Failed++
			continue
		}
		d.Analyzed++
		r := row.Result
		switch r.Label {
		case models.LabelPositive:
			d.Positive++
		case models.LabelNegative:
			d.Negative++
		}
		confSum += r.Confidence
		resSum += r.Resonance
		if len(r.FrictionHits) > 0 {
			d.FrictionFlagged++
		}
		if len(r.SecurityHits) > 0 {
			d.SecurityFlagged++
		}
	}

	if d.Analyzed > 0 {
		n := float64(d.Analyzed)
		d.MeanConfidence = round3(confSum / n)
		d.MeanResonance = round3(resSum / n)
		d.PositiveShare = round3(float64(d.Positive) / n)
		d.NegativeShare = round3(float64(d.Negative) / n)
	}
	return d
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
