package batch

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"sentinel/internal/models"
)

// utf8BOM is stripped from the first header cell; spreadsheet exports add it.
const utf8BOM = "\ufeff"

// Columns appended to the export, in order.
var exportColumns = []string{"Sentiment", "Confidence", "Resonance", "FrictionHits", "SecurityHits", "RiskLevel", "Status"}

// Table is an uploaded CSV: a header and the data records, kept verbatim.
// The first column holds the feedback text.
type Table struct {
	Header  []string
	Records [][]string
}

// TextColumn returns the header of the first column.
func (t *Table) TextColumn() string {
	if len(t.Header) == 0 {
		return ""
	}
	return t.Header[0]
}

// Texts returns the first cell of every record. Records without cells yield
// an empty string, which the runner marks as malformed.
func (t *Table) Texts() []string {
	texts := make([]string, len(t.Records))
	for i, rec := range t.Records {
		if len(rec) > 0 {
			texts[i] = rec[0]
		}
	}
	return texts
}

// TableFromTexts builds a single-column table, used when rows arrive as JSON.
func TableFromTexts(column string, texts []string) *Table {
	records := make([][]string, len(texts))
	for i, text := range texts {
		records[i] = []string{text}
	}
	return &Table{Header: []string{column}, Records: records}
}

// ReadCSV parses an upload. The first record is the header and at least one
// data record must follow. Rows may have differing lengths; maxRows <= 0
// disables the row limit. Bare quotes inside unquoted text are accepted, but
// a quoted field that never closes is rejected with ErrMalformedCSV.
func ReadCSV(r io.Reader, maxRows int) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if err := checkQuotes(data); err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoTextColumn
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) == 0 || (len(header) == 1 && strings.TrimSpace(strings.TrimPrefix(header[0], utf8BOM)) == "") {
		return nil, ErrNoTextColumn
	}
	header[0] = strings.TrimPrefix(header[0], utf8BOM)

	table := &Table{Header: header}
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(table.Records)+1, err)
		}
		if maxRows > 0 && len(table.Records) >= maxRows {
			return nil, fmt.Errorf("%w: limit is %d", ErrTooManyRows, maxRows)
		}
		table.Records = append(table.Records, rec)
	}
	if len(table.Records) == 0 {
		return nil, ErrNoRows
	}

	return table, nil
}

// checkQuotes runs a strict parse and fails on the first broken quoted
// field. Lazy parsing would otherwise fold the rest of the file into it.
func checkQuotes(data []byte) error {
	strict := csv.NewReader(bytes.NewReader(data))
	strict.FieldsPerRecord = -1
	strict.ReuseRecord = true
	for {
		_, err := strict.Read()
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) && errors.Is(perr.Err, csv.ErrQuote) {
			return fmt.Errorf("%w: line %d: %w", ErrMalformedCSV, perr.StartLine, perr.Err)
		}
		if !errors.As(err, &perr) {
			return err
		}
	}
}

// WriteCSV writes the table with the analysis columns appended to every
// record. results must be index-aligned with t.Records.
func WriteCSV(w io.Writer, t *Table, results []models.RowResult) error {
	width := len(t.Header)
	for _, rec := range t.Records {
		width = max(width, len(rec))
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(append(pad(t.Header, width), exportColumns...)); err != nil {
		return err
	}

	for i, rec := range t.Records {
		var res models.RowResult
		if i < len(results) {
			res = results[i]
		}
		if err := cw.Write(append(pad(rec, width), exportCells(res)...)); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportCSV renders WriteCSV into a byte slice.
func ExportCSV(t *Table, results []models.RowResult) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t, results); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportCells(res models.RowResult) []string {
	if !res.IsOK() {
		status := "error"
		if res.Error != "" {
			status += ": " + res.Error
		}
		return []string{"", "", "", "", "", "", status}
	}
	r := res.Result
	return []string{
		string(r.Label),
		strconv.FormatFloat(r.Confidence, 'f', -1, 64),
		strconv.FormatFloat(r.Resonance, 'f', -1, 64),
		strings.Join(r.FrictionHits, ";"),
		strings.Join(r.SecurityHits, ";"),
		string(r.RiskLevel),
		models.RowOK,
	}
}

// pad returns a copy of rec extended with empty cells to width.
func pad(rec []string, width int) []string {
	out := make([]string, width, width+len(exportColumns))
	copy(out, rec)
	return out
}
