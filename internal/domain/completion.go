package domain

import "context"

// Completer is the structured-completion contract: a chat model constrained
// to emit a single JSON document. Implementations return the raw JSON bytes;
// callers decode and validate against their own schema.
type Completer interface {
	CompleteJSON(ctx context.Context, system, user string) ([]byte, error)
}
