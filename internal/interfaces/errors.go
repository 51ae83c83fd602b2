package interfaces

import "errors"

// Pipeline error taxonomy. Callers distinguish these with errors.Is; every
// service wraps them with fmt.Errorf("...: %w", ...) so the sentinel survives
// through the pipeline.
var (
	// ErrInvalidInput indicates an empty or malformed question. Surfaced
	// immediately, before any external call is made.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRetrievalUnavailable indicates the search index could not be
	// reached or timed out. The pipeline recovers from this locally via
	// the knowledge base fallback; it is never surfaced to the caller.
	ErrRetrievalUnavailable = errors.New("retrieval service unavailable")

	// ErrCompletionFailed indicates the completion provider returned a
	// failure or a malformed response. Fatal for the query, not retried.
	ErrCompletionFailed = errors.New("completion failed")

	// ErrCompletionTimeout indicates the completion call exceeded its
	// configured deadline. Fatal for the query, not retried.
	ErrCompletionTimeout = errors.New("completion timed out")
)
