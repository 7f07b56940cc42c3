package parser

import (
	"strings"

	"github.com/yuin/goldmark/ast"

	"github.com/riverfjs/streamdown-go/internal/types"
)

// spanBlock builds a block whose content is the full source lines covered by
// the node and its descendants. Nodes without any line segment (thematic
// breaks, empty constructs) fall back to the first non-blank line after
// cursor.
func spanBlock(t types.BlockType, n ast.Node, source []byte, cursor int) (types.Block, int) {
	start, stop, ok := nodeSpan(n, source)
	if !ok {
		start, stop = fallbackLine(source, cursor)
	}
	content := strings.TrimRight(expandLines(source, start, stop), "\n")
	return types.Block{Type: t, Content: content}, stop
}

// codeBlockFor 提取围栏代码块：原始代码、规范化语言，
// 以及根据闭合围栏判断的完整性。
func codeBlockFor(n *ast.FencedCodeBlock, source []byte, cursor int) (types.Block, int) {
	b := types.Block{Type: types.BlockCodeBlock}
	b.Language = NormalizeLanguage(string(n.Language(source)))

	bodyStart, bodyStop := -1, -1
	if lines := n.Lines(); lines.Len() > 0 {
		bodyStart = lines.At(0).Start
		bodyStop = lines.At(lines.Len() - 1).Stop
		b.RawContent = strings.TrimRight(string(source[bodyStart:bodyStop]), "\n")
	}

	fenceStart := openingFenceStart(n, source, bodyStart, cursor)
	fenceChar := byte('`')
	if fenceStart >= 0 {
		line := lineText(source, fenceStart)
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed != "" && (trimmed[0] == '`' || trimmed[0] == '~') {
			fenceChar = trimmed[0]
		}
	}

	// The closing fence, when present, is the first line after the body.
	scanFrom := bodyStop
	if scanFrom < 0 {
		if fenceStart >= 0 {
			scanFrom = lineEnd(source, fenceStart) + 1
		} else {
			scanFrom = cursor
		}
	}
	closeStart, closed := closingFence(source, scanFrom, fenceChar)

	contentStart := fenceStart
	if contentStart < 0 {
		contentStart = bodyStart
	}
	contentEnd := bodyStop
	if closed {
		contentEnd = lineEnd(source, closeStart)
	}
	if contentStart >= 0 && contentEnd > contentStart {
		b.Content = strings.TrimRight(expandLines(source, contentStart, contentEnd), "\n")
	} else if contentStart >= 0 {
		b.Content = strings.TrimRight(lineText(source, contentStart), "\n")
	}

	b.IsComplete = closed

	end := contentEnd
	if end < bodyStop {
		end = bodyStop
	}
	if end < cursor {
		end = cursor
	}
	return b, end
}

// openingFenceStart locates the start of the opening fence line.
func openingFenceStart(n *ast.FencedCodeBlock, source []byte, bodyStart, cursor int) int {
	if n.Info != nil {
		return lineStart(source, n.Info.Segment.Start)
	}
	if bodyStart > 0 {
		return lineStart(source, bodyStart-1)
	}
	// No info string and no body: scan forward for the fence itself.
	for pos := cursor; pos < len(source); pos = lineEnd(source, pos) + 1 {
		trimmed := strings.TrimLeft(lineText(source, pos), " \t")
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			return pos
		}
	}
	return -1
}

// closingFence looks for a closing fence at scanFrom or on the following
// line. Checking two lines keeps this independent of whether line segments
// include their trailing newline.
func closingFence(source []byte, scanFrom int, fenceChar byte) (int, bool) {
	if scanFrom < 0 || scanFrom >= len(source) {
		return -1, false
	}
	start := lineStart(source, scanFrom)
	for i := 0; i < 2 && start < len(source); i++ {
		if isFenceLine(lineText(source, start), fenceChar) {
			return start, true
		}
		start = lineEnd(source, start) + 1
	}
	return -1, false
}

func isFenceLine(line string, fenceChar byte) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 3 {
		return false
	}
	for i := 0; i < len(trimmed); i++ {
		if trimmed[i] != fenceChar {
			return false
		}
	}
	return true
}

// nodeSpan returns the minimal byte span covering every line segment of the
// node and its descendants.
func nodeSpan(n ast.Node, source []byte) (int, int, bool) {
	start, stop := len(source)+1, -1
	var walk func(ast.Node)
	walk = func(node ast.Node) {
		if node.Type() == ast.TypeInline {
			if t, isText := node.(*ast.Text); isText {
				if t.Segment.Start < start {
					start = t.Segment.Start
				}
				if t.Segment.Stop > stop {
					stop = t.Segment.Stop
				}
			}
		} else if lines := node.Lines(); lines != nil && lines.Len() > 0 {
			if s := lines.At(0).Start; s < start {
				start = s
			}
			if e := lines.At(lines.Len() - 1).Stop; e > stop {
				stop = e
			}
		}
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			walk(c)
		}
	}
	walk(n)
	if stop < 0 || start > stop {
		return 0, 0, false
	}
	return start, stop, true
}

// fallbackLine returns the span of the first non-blank line at or after
// cursor, for nodes that carry no segments of their own.
func fallbackLine(source []byte, cursor int) (int, int) {
	pos := cursor
	for pos < len(source) {
		end := lineEnd(source, pos)
		if strings.TrimSpace(string(source[pos:end])) != "" {
			return pos, end
		}
		pos = end + 1
	}
	return len(source), len(source)
}

// expandLines widens [start,stop) to whole source lines.
func expandLines(source []byte, start, stop int) string {
	if start >= len(source) {
		return ""
	}
	s := lineStart(source, start)
	e := stop
	if e > 0 {
		e = lineEnd(source, e-1)
	}
	if e > len(source) {
		e = len(source)
	}
	return string(source[s:e])
}

// lineStart backs up to the beginning of the line containing pos.
func lineStart(source []byte, pos int) int {
	if pos > len(source) {
		pos = len(source)
	}
	for pos > 0 && source[pos-1] != '\n' {
		pos--
	}
	return pos
}

// lineEnd returns the offset of the newline terminating the line containing
// pos, or len(source).
func lineEnd(source []byte, pos int) int {
	for pos < len(source) && source[pos] != '\n' {
		pos++
	}
	return pos
}

// lineText returns the line containing pos, without its newline.
func lineText(source []byte, pos int) string {
	s := lineStart(source, pos)
	return string(source[s:lineEnd(source, s)])
}
