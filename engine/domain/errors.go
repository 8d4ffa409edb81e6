package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure taxonomy. Callers branch with errors.Is.
var (
	// ErrCorpusParse marks a single document that failed structural parsing.
	// Policy: skip-and-continue, logged, ingestion proceeds.
	ErrCorpusParse = errors.New("corpus parse failed")
	// ErrRateLimited marks throttling by the embedding/generation service.
	// Policy during ingestion: bounded exponential backoff, then skip batch.
	ErrRateLimited = errors.New("rate limited")
	// ErrIndexUnavailable marks a missing or unreachable collection at query
	// time. Fatal to the current ask call, not retried.
	ErrIndexUnavailable = errors.New("index unavailable")
	// ErrGenerationService marks a failed or timed-out synthesis call.
	ErrGenerationService = errors.New("generation service failed")
	// ErrMissingCredential marks absent API configuration at startup.
	ErrMissingCredential = errors.New("missing API credential")
	// ErrEmptyQuery marks a blank question.
	ErrEmptyQuery = errors.New("empty query")
	// ErrQueryTooLong marks a question over the length bound.
	ErrQueryTooLong = errors.New("query too long")
)

// ParseError wraps ErrCorpusParse with the offending file and reason.
type ParseError struct {
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrCorpusParse, e.Path, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrCorpusParse }

// NewParseError creates a ParseError for the given transcript file.
func NewParseError(path, reason string) *ParseError {
	return &ParseError{Path: path, Reason: reason}
}
