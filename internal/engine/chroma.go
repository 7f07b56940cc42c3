// Package engine provides the default chroma-backed highlight engine.
package engine

import (
	"context"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/riverfjs/streamdown-go/internal/types"
)

// Chroma tokenizes code with alecthomas/chroma. Lexer lookup is cached per
// language; the zero value is not usable, use New.
type Chroma struct {
	mu         sync.Mutex
	lexerCache map[string]chroma.Lexer
}

// New creates a Chroma engine.
func New() *Chroma {
	return &Chroma{lexerCache: make(map[string]chroma.Lexer)}
}

// WhenReady reports readiness. Chroma needs no warm-up; only context
// cancellation can make it unavailable.
func (e *Chroma) WhenReady(ctx context.Context) error {
	return ctx.Err()
}

// HighlightToTokens tokenizes code for the given language and theme.
func (e *Chroma) HighlightToTokens(ctx context.Context, code, language, theme string) ([]types.CodeLine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lexer := e.lexerFor(language)
	style := styles.Get(theme)
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return nil, err
	}

	lines := []types.CodeLine{{LineNumber: 1}}
	for _, token := range iterator.Tokens() {
		out := styledToken(style, token)
		value := token.Value
		for strings.Contains(value, "\n") {
			before, after, _ := strings.Cut(value, "\n")
			if before != "" {
				part := out
				part.Content = before
				last := &lines[len(lines)-1]
				last.Tokens = append(last.Tokens, part)
			}
			lines = append(lines, types.CodeLine{LineNumber: len(lines) + 1})
			value = after
		}
		if value != "" {
			part := out
			part.Content = value
			last := &lines[len(lines)-1]
			last.Tokens = append(last.Tokens, part)
		}
	}

	// 源码末尾的换行会多出一个空行，去掉
	if len(lines) > 1 && len(lines[len(lines)-1].Tokens) == 0 {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}

// PlainTextFallback renders code as unstyled lines. It never fails and is
// used when tokenization does.
func (e *Chroma) PlainTextFallback(code string) []types.CodeLine {
	raw := strings.Split(strings.TrimSuffix(code, "\n"), "\n")
	lines := make([]types.CodeLine, len(raw))
	for i, text := range raw {
		lines[i] = types.CodeLine{LineNumber: i + 1}
		if text != "" {
			lines[i].Tokens = []types.Token{{Content: text}}
		}
	}
	return lines
}

func (e *Chroma) lexerFor(language string) chroma.Lexer {
	e.mu.Lock()
	defer e.mu.Unlock()
	if lexer, ok := e.lexerCache[language]; ok {
		return lexer
	}
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)
	e.lexerCache[language] = lexer
	return lexer
}

func styledToken(style *chroma.Style, token chroma.Token) types.Token {
	entry := style.Get(token.Type)

	out := types.Token{}
	if entry.Colour.IsSet() {
		out.Color = entry.Colour.String()
	}
	var parts []string
	if entry.Bold == chroma.Yes {
		parts = append(parts, "bold")
	}
	if entry.Italic == chroma.Yes {
		parts = append(parts, "italic")
	}
	if entry.Underline == chroma.Yes {
		parts = append(parts, "underline")
	}
	out.FontStyle = strings.Join(parts, " ")
	return out
}
