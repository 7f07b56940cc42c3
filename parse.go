package streamdown

import "github.com/riverfjs/streamdown-go/internal/parser"

// Parser is the incremental block parser. One instance corresponds to one
// document stream; Parse keeps block ids stable while the text grows.
type Parser = parser.Parser

// NewParser creates an incremental block parser.
func NewParser() *Parser {
	return parser.New()
}

// ParseBlocks parses a complete document in one shot, without identity
// state. For streams, use a Parser or a Session.
func ParseBlocks(text string) []Block {
	return parser.New().Parse(text)
}

// NormalizeLanguage lowercases a fence language tag and resolves common
// aliases ("golang" to "go", "ts" to "typescript", ...).
func NormalizeLanguage(lang string) string {
	return parser.NormalizeLanguage(lang)
}
