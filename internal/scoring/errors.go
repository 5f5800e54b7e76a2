package scoring

import "errors"

// Scoring error sentinels.
var (
	// ErrEmptyInput is returned when there is no text to analyse.
	ErrEmptyInput = errors.New("no feedback text to analyze")

	// Vocabulary errors
	ErrVocabularyOverlap = errors.New("friction and security vocabularies share a term")
	ErrEmptyTerm         = errors.New("vocabulary contains an empty term")
	ErrUnknownVocabulary = errors.New("unknown vocabulary profile")
	ErrVocabularyUnnamed = errors.New("vocabulary profile has no name")
)
