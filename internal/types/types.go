package types

import "time"

// BlockType identifies the kind of a parsed block. The set is closed:
// consumers switch over these values rather than registering matchers.
type BlockType string

const (
	BlockParagraph     BlockType = "paragraph"
	BlockHeading       BlockType = "heading"
	BlockList          BlockType = "list"
	BlockQuote         BlockType = "quote"
	BlockCodeBlock     BlockType = "code_block"
	BlockTable         BlockType = "table"
	BlockThematicBreak BlockType = "thematic_break"
	BlockHTML          BlockType = "html"
)

// Block is one logical unit of parsed markdown.
//
// The ID is stable across successive reparses of a growing stream: the same
// logical block keeps the same ID while its content grows. Only the trailing
// block of a stream may have IsComplete=false.
type Block struct {
	ID         string
	Type       BlockType
	Content    string
	RawContent string // for code blocks: the code body without fences
	Language   string // normalized language tag, code blocks only
	IsComplete bool
	Position   int
}

// IsCode reports whether the block is a fenced code block.
func (b *Block) IsCode() bool {
	return b.Type == BlockCodeBlock
}

// Priority classifies a queued highlight job by viewport relevance.
// Lower values are more urgent.
type Priority int

const (
	PriorityVisible Priority = iota
	PriorityOverscan
	PriorityBackground
)

func (p Priority) String() string {
	switch p {
	case PriorityVisible:
		return "visible"
	case PriorityOverscan:
		return "overscan"
	case PriorityBackground:
		return "background"
	default:
		return "unknown"
	}
}

// VirtualWindow is the currently visible block index range, supplied by an
// external virtual-scrolling collaborator.
type VirtualWindow struct {
	Start       int
	End         int
	TotalHeight int
	OffsetTop   int
}

// PriorityFor derives the scheduling class of a block index relative to the
// window and its overscan margin.
func (w VirtualWindow) PriorityFor(index, overscan int) Priority {
	if index >= w.Start && index <= w.End {
		return PriorityVisible
	}
	if index >= w.Start-overscan && index <= w.End+overscan {
		return PriorityOverscan
	}
	return PriorityBackground
}

// Token is one highlighted span within a line.
type Token struct {
	Content   string
	Color     string // hex color, empty when the theme has none
	FontStyle string // "bold", "italic", "bold italic", "underline" or empty
}

// CodeLine is one highlighted line of a code block.
type CodeLine struct {
	LineNumber int
	Tokens     []Token
}

// HighlightResult is the outcome of highlighting one code block. Fallback
// marks plain-text results produced when the engine failed; they are
// delivered to subscribers but never cached.
type HighlightResult struct {
	Lines    []CodeLine
	Fallback bool
}

// Signature is a cheap fingerprint of a block's code content: byte length
// plus head and tail slices. It detects "same vs. changed" without hashing
// the whole body. Deliberately collision-prone for adversarial inputs that
// share length, head and tail; harden to a real hash if that ever matters.
type Signature struct {
	Length int
	Head   string
	Tail   string
}

const signatureSlice = 16

// NewSignature fingerprints the given content.
func NewSignature(content string) Signature {
	head := content
	if len(head) > signatureSlice {
		head = head[:signatureSlice]
	}
	tail := content
	if len(tail) > signatureSlice {
		tail = tail[len(tail)-signatureSlice:]
	}
	return Signature{Length: len(content), Head: head, Tail: tail}
}

// IsZero reports whether the signature is the zero value.
func (s Signature) IsZero() bool {
	return s.Length == 0 && s.Head == "" && s.Tail == ""
}

// Stats is a snapshot of scheduler counters.
type Stats struct {
	TotalProcessed    int
	TotalSkipped      int
	TotalErrors       int
	AvgProcessingTime time.Duration
}
