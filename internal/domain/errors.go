package domain

import "errors"

var (
	// ErrValidation signals malformed user input (missing or empty query text).
	ErrValidation = errors.New("invalid query")
	// ErrExtraction signals that query decomposition failed or produced
	// output that does not conform to the filter schema.
	ErrExtraction = errors.New("query extraction failed")
	// ErrEmbedding signals that the semantic query could not be vectorized.
	ErrEmbedding = errors.New("query embedding failed")
	// ErrIndexQuery signals a vector index failure.
	ErrIndexQuery = errors.New("index query failed")
	// ErrCompletionProvider signals a chat completion provider failure.
	ErrCompletionProvider = errors.New("completion provider error")
	// ErrEmbeddingProvider signals an embedding provider failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")
)
