package classifier

import "errors"

// Classifier error sentinels.
var (
	// ErrModelLoad means the sentiment model could not be initialised.
	// Analysis must not proceed until a later load succeeds.
	ErrModelLoad = errors.New("sentiment model unavailable")

	// ErrInvalidModelOutput means the model returned something other than a
	// known label with a score in [0,1].
	ErrInvalidModelOutput = errors.New("invalid model output")

	// ErrEmptyText is returned when Classify is called without text.
	ErrEmptyText = errors.New("empty text")

	// Provider errors
	ErrInvalidModelID   = errors.New("invalid model identifier")
	ErrModelNotFound    = errors.New("model not found")
	ErrUnsupportedModel = errors.New("model is not a text-classification model")
)
