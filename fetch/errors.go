package fetch

import (
	"errors"
	"fmt"

	"ewintr.nl/ytcollect/model"
)

type Stage string

const (
	StageSearch      Stage = "search"
	StageDetails     Stage = "details"
	StageTranscripts Stage = "transcripts"
)

var (
	ErrEmptyQuery        = errors.New("search query is empty")
	ErrInvalidCount      = errors.New("target count must be positive")
	ErrTranscriptMissing = errors.New("no transcript available")
)

// FetchError is a transport or API failure in the search or details stage.
// Partial holds the candidates that were collected before the failure; it
// is up to the caller whether they are kept.
type FetchError struct {
	Stage   Stage
	Err     error
	Partial []model.Candidate
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
