package batch

import "errors"

// Batch error sentinels.
var (
	// ErrMalformedRow marks a single row that could not be analysed. It is
	// reported on the row; the batch carries on.
	ErrMalformedRow = errors.New("malformed row")

	// ErrNoTextColumn means the upload has no header or no first column.
	ErrNoTextColumn = errors.New("upload has no text column")

	// ErrTooManyRows means the upload exceeds the configured row limit.
	ErrTooManyRows = errors.New("upload has too many rows")

	// ErrNoRows means the batch has a header but nothing to analyse.
	ErrNoRows = errors.New("batch has no rows")

	// ErrMalformedCSV means a quoted field is never closed or is followed by
	// stray characters.
	ErrMalformedCSV = errors.New("malformed CSV")
)
