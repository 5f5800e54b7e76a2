package batch

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel/internal/models"
)

func TestReadCSV(t *testing.T) {
	input := "\ufefffeedback,source\n" +
		"\"Login is confusing, honestly\",app\n" +
		"Great update\n" +
		",web\n"

	table, err := ReadCSV(strings.NewReader(input), 0)
	require.NoError(t, err)

	assert.Equal(t, "feedback", table.TextColumn())
	assert.Equal(t, []string{"feedback", "source"}, table.Header)
	require.Len(t, table.Records, 3)
	assert.Equal(t, []string{"Login is confusing, honestly", "Great update", ""}, table.Texts())
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  error
	}{
		{"empty upload", "", 0, ErrNoTextColumn},
		{"blank header", "\n", 0, ErrNoTextColumn},
		{"too many rows", "text\na\nb\nc\n", 2, ErrTooManyRows},
		{"header only", "feedback\n", 0, ErrNoRows},
		{"header only with blank lines", "feedback,source\n\n\n", 0, ErrNoRows},
		{"unterminated quote", "feedback\n\"unterminated,1\nok\n", 0, ErrMalformedCSV},
		{"stray text after closing quote", "feedback\n\"closed\"x\n", 0, ErrMalformedCSV},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input), tt.max)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReadCSV_BareQuotes(t *testing.T) {
	input := "feedback\nThe \"save\" button is hidden\nfine\n"

	table, err := ReadCSV(strings.NewReader(input), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{`The "save" button is hidden`, "fine"}, table.Texts())
}

func TestReadCSV_MalformedReportsLine(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("feedback\nok\n\"never closed\nmore\n"), 0)
	require.ErrorIs(t, err, ErrMalformedCSV)
	assert.Contains(t, err.Error(), "line 3")
}

func TestReadCSV_RowLimitInclusive(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("text\na\nb\n"), 2)
	require.NoError(t, err)
	assert.Len(t, table.Records, 2)
}

func TestWriteCSV(t *testing.T) {
	table := &Table{
		Header:  []string{"feedback", "source"},
		Records: [][]string{{"Login leak, confusing", "app"}, {""}},
	}
	results := []models.RowResult{
		{
			Index:  0,
			Status: models.RowOK,
			Result: &models.AnalysisResult{
				Label:        models.LabelNegative,
				Confidence:   0.9,
				Resonance:    -1.05,
				FrictionHits: []string{"confusing"},
				SecurityHits: []string{"login", "leak"},
				RiskLevel:    models.LevelHigh,
			},
		},
		{Index: 1, Status: models.RowError, Error: "malformed row: text is empty"},
	}

	data, err := ExportCSV(table, results)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"feedback", "source", "Sentiment", "Confidence", "Resonance", "FrictionHits", "SecurityHits", "RiskLevel", "Status"}, records[0])
	assert.Equal(t, []string{"Login leak, confusing", "app", "NEGATIVE", "0.9", "-1.05", "confusing", "login;leak", "HIGH", "ok"}, records[1])
	assert.Equal(t, "", records[2][1], "short rows are padded")
	assert.Equal(t, "error: malformed row: text is empty", records[2][8])
}

func TestTableFromTexts(t *testing.T) {
	table := TableFromTexts("text", []string{"one", "two"})
	assert.Equal(t, "text", table.TextColumn())
	assert.Equal(t, []string{"one", "two"}, table.Texts())
}
