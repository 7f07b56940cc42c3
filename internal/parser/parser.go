// Package parser turns a growing markdown stream into an ordered list of
// typed blocks with stable identities.
//
// Every call reparses the full text with goldmark; identity reuse against the
// previous parse is purely an optimization layered on top. Correctness always
// wins over diff cleverness: at the first position where the old list stops
// matching, the whole tail is re-identified.
package parser

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	gparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/riverfjs/streamdown-go/internal/types"
)

// StandardOptions 对应 telegramify 的 goldmark 扩展配置
var StandardOptions = []goldmark.Option{
	goldmark.WithExtensions(
		extension.GFM, // tables, strikethrough, tasklists
	),
	goldmark.WithParserOptions(
		gparser.WithAutoHeadingID(),
	),
}

// Parser is an incremental block parser. It owns the previous block list and
// an id counter; one Parser instance corresponds to one document stream.
type Parser struct {
	md     goldmark.Markdown
	prev   []types.Block
	nextID int
}

// New creates a Parser with the standard goldmark configuration.
func New() *Parser {
	return &Parser{
		md: goldmark.New(StandardOptions...),
	}
}

// Blocks returns the block list from the most recent Parse.
func (p *Parser) Blocks() []types.Block {
	return p.prev
}

// Reset discards all block identity state. The id counter is not rewound,
// so ids stay unique for the parser's lifetime.
func (p *Parser) Reset() {
	p.prev = nil
}

// Parse reparses the full text and returns the ordered block list.
//
// Unchanged leading blocks keep their ids; the trailing, still-growing block
// keeps its id as long as it remains the same logical block. Only the last
// block may be incomplete. A tokenizer failure never propagates: the result
// degrades to a single incomplete paragraph wrapping the raw text.
func (p *Parser) Parse(input string) (blocks []types.Block) {
	defer func() {
		if r := recover(); r != nil {
			blocks = p.fallback(input, fmt.Sprintf("%v", r))
		}
	}()

	if input == "" {
		p.prev = nil
		return nil
	}

	source := []byte(input)
	reader := text.NewReader(source)
	doc := p.md.Parser().Parse(reader)

	blocks = p.collectBlocks(doc, source, input)
	p.assignIDs(blocks)
	p.prev = blocks
	return blocks
}

// fallback wraps the raw text in one incomplete paragraph block.
func (p *Parser) fallback(input, cause string) []types.Block {
	_ = cause
	blocks := []types.Block{{
		Type:       types.BlockParagraph,
		Content:    input,
		IsComplete: false,
		Position:   0,
	}}
	p.assignIDs(blocks)
	p.prev = blocks
	return blocks
}

// collectBlocks walks the top-level AST children into typed blocks.
func (p *Parser) collectBlocks(doc ast.Node, source []byte, input string) []types.Block {
	var blocks []types.Block
	cursor := 0

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		b, end := p.blockFor(n, source, cursor)
		b.Position = len(blocks)
		if end > cursor {
			cursor = end
		}
		blocks = append(blocks, b)
	}

	markCompleteness(blocks, input)
	return blocks
}

// blockFor converts one top-level node and reports the byte offset just past
// its content. cursor is the offset just past the previous block, used when
// the node carries no line segments of its own.
func (p *Parser) blockFor(n ast.Node, source []byte, cursor int) (types.Block, int) {
	switch n := n.(type) {
	case *ast.FencedCodeBlock:
		return codeBlockFor(n, source, cursor)
	case *ast.CodeBlock:
		start, stop, ok := nodeSpan(n, source)
		b := types.Block{Type: types.BlockCodeBlock, IsComplete: true}
		if !ok {
			return b, cursor
		}
		b.RawContent = strings.TrimRight(string(source[start:stop]), "\n")
		b.Content = strings.TrimRight(expandLines(source, start, stop), "\n")
		return b, stop
	case *ast.Heading:
		return spanBlock(types.BlockHeading, n, source, cursor)
	case *ast.List:
		return spanBlock(types.BlockList, n, source, cursor)
	case *ast.Blockquote:
		return spanBlock(types.BlockQuote, n, source, cursor)
	case *east.Table:
		return spanBlock(types.BlockTable, n, source, cursor)
	case *ast.ThematicBreak:
		return spanBlock(types.BlockThematicBreak, n, source, cursor)
	case *ast.HTMLBlock:
		return spanBlock(types.BlockHTML, n, source, cursor)
	default:
		return spanBlock(types.BlockParagraph, n, source, cursor)
	}
}

// assignIDs reuses previous ids for the unchanged leading run and mints fresh
// ids for everything after the first mismatch.
func (p *Parser) assignIDs(blocks []types.Block) {
	reusable := true
	for i := range blocks {
		if reusable && i < len(p.prev) && sameLogicalBlock(&p.prev[i], &blocks[i]) {
			blocks[i].ID = p.prev[i].ID
			continue
		}
		reusable = false
		p.nextID++
		blocks[i].ID = fmt.Sprintf("blk-%d", p.nextID)
	}
}

// sameLogicalBlock reports whether new is the same logical block as old:
// matching type at the same position, with the new content a textual
// continuation of the old.
func sameLogicalBlock(old, new *types.Block) bool {
	if old.Type != new.Type {
		return false
	}
	if old.Type == types.BlockCodeBlock {
		if old.Language != new.Language {
			return false
		}
		return strings.HasPrefix(new.RawContent, old.RawContent)
	}
	return strings.HasPrefix(new.Content, old.Content)
}

// markCompleteness flags every block complete except, possibly, the trailing
// one: a block is complete only once its terminating construct is observed.
func markCompleteness(blocks []types.Block, input string) {
	if len(blocks) == 0 {
		return
	}
	for i := 0; i < len(blocks)-1; i++ {
		blocks[i].IsComplete = true
	}
	last := &blocks[len(blocks)-1]
	switch last.Type {
	case types.BlockCodeBlock:
		// codeBlockFor already decided from the closing fence.
		return
	case types.BlockHeading, types.BlockThematicBreak:
		last.IsComplete = strings.HasSuffix(input, "\n")
	default:
		last.IsComplete = strings.HasSuffix(input, "\n\n")
	}
}
