package streamdown

import (
	"sync"

	"github.com/riverfjs/streamdown-go/internal/buffer"
	"github.com/riverfjs/streamdown-go/internal/parser"
)

// Session ties a block parser, a chunk buffer and a scheduler together for
// one streamed document: each appended chunk reparses the accumulated text
// and auto-queues complete code blocks for highlighting.
//
// Incomplete code blocks are not queued; their content is still growing and
// every change would force a recompute. They are picked up on the append
// that closes their fence.
type Session struct {
	mu     sync.Mutex
	parser *parser.Parser
	buf    *buffer.ChunkBuffer
	sched  *Scheduler
}

// NewSession creates a session feeding the given scheduler.
func NewSession(sched *Scheduler) *Session {
	return &Session{
		parser: parser.New(),
		buf:    buffer.New(),
		sched:  sched,
	}
}

// Append adds a streamed chunk, reparses the full text and returns the
// current block list. Ids are stable across appends for unchanged and
// still-growing blocks.
func (s *Session) Append(chunk string) []Block {
	s.mu.Lock()
	s.buf.Append(chunk)
	blocks := s.parser.Parse(s.buf.String())
	s.mu.Unlock()

	// 只入队已完整的代码块，未闭合的等下一个分片
	for _, b := range blocks {
		if b.IsCode() && b.IsComplete {
			s.sched.QueueBlock(b, b.Position)
		}
	}
	return blocks
}

// Blocks returns the block list from the most recent Append.
func (s *Session) Blocks() []Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parser.Blocks()
}

// Text returns the accumulated stream text.
func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

// Scheduler returns the scheduler this session feeds.
func (s *Session) Scheduler() *Scheduler {
	return s.sched
}

// Reset clears the buffer, the parser's identity state and the scheduler.
func (s *Session) Reset() {
	s.mu.Lock()
	s.buf.Reset()
	s.parser.Reset()
	s.mu.Unlock()
	s.sched.Reset()
}
