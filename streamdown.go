// Package streamdown renders nothing: it incrementally parses a growing
// markdown stream into stable logical blocks and schedules expensive syntax
// highlighting of code blocks without blocking the caller's render loop.
//
// Core pieces:
//   - incremental block parser: full text in, ordered typed blocks out, with
//     ids that stay stable while the stream grows
//   - frame-budgeted scheduler: drains a viewport-priority queue of highlight
//     jobs under per-frame count and time budgets
//   - content-aware cache: unchanged code reuses its result instantly, grown
//     code misses and is recomputed
//
// Main API:
//   - Session: streaming facade, Append(chunk) reparses and auto-queues
//   - Scheduler: the queue/cache/stats owner, one instance per document
//   - Engine: the pluggable async highlighter collaborator
//
// Example:
//
//	sched := streamdown.New(streamdown.NewChromaEngine())
//	defer sched.Reset()
//	sess := streamdown.NewSession(sched)
//	for chunk := range stream {
//	    for _, b := range sess.Append(chunk) {
//	        // render placeholder or highlighted lines per block
//	        _, _ = sched.GetHighlightedLines(b.ID)
//	    }
//	}
package streamdown

import "github.com/riverfjs/streamdown-go/internal/types"

// 导出类型别名
type (
	Block           = types.Block
	BlockType       = types.BlockType
	Priority        = types.Priority
	VirtualWindow   = types.VirtualWindow
	Token           = types.Token
	CodeLine        = types.CodeLine
	HighlightResult = types.HighlightResult
	Signature       = types.Signature
	Stats           = types.Stats
)

const (
	BlockParagraph     = types.BlockParagraph
	BlockHeading       = types.BlockHeading
	BlockList          = types.BlockList
	BlockQuote         = types.BlockQuote
	BlockCodeBlock     = types.BlockCodeBlock
	BlockTable         = types.BlockTable
	BlockThematicBreak = types.BlockThematicBreak
	BlockHTML          = types.BlockHTML
)

const (
	PriorityVisible    = types.PriorityVisible
	PriorityOverscan   = types.PriorityOverscan
	PriorityBackground = types.PriorityBackground
)

// NewSignature fingerprints code content for cache lookups.
func NewSignature(content string) Signature {
	return types.NewSignature(content)
}
