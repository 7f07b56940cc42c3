package streamdown

import (
	"context"

	"github.com/riverfjs/streamdown-go/internal/engine"
)

// Engine is the expensive asynchronous tokenizer collaborator. It may fail
// per call or be temporarily not ready; the scheduler treats both as
// recoverable.
//
// Implementations must be safe for use from the scheduler's frame callbacks.
type Engine interface {
	// WhenReady blocks until the engine can accept work, or reports why
	// it cannot.
	WhenReady(ctx context.Context) error
	// HighlightToTokens tokenizes code for a language and theme.
	HighlightToTokens(ctx context.Context, code, language, theme string) ([]CodeLine, error)
	// PlainTextFallback renders code as unstyled lines. It must not fail;
	// it is the recovery path when HighlightToTokens does.
	PlainTextFallback(code string) []CodeLine
}

// NewChromaEngine returns the default chroma-backed engine.
func NewChromaEngine() Engine {
	return engine.New()
}
