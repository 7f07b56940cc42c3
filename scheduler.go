package streamdown

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/riverfjs/streamdown-go/internal/cache"
	"github.com/riverfjs/streamdown-go/internal/queue"
)

// ErrNotCodeBlock is returned by HighlightNow for non-code blocks.
var ErrNotCodeBlock = errors.New("streamdown: block is not a code block")

type schedulerState int

const (
	stateIdle schedulerState = iota
	stateScheduled
	stateDraining
)

// IndexedBlock pairs a block with an explicit absolute index.
type IndexedBlock struct {
	Block Block
	Index int
}

type notification struct {
	blockID string
	result  HighlightResult
}

// Scheduler owns all mutable highlighting state for one document stream:
// the job queue, the result cache, statistics and the cached virtual
// window. External code interacts only through its methods; concurrent
// documents need separate instances.
//
// The drain loop runs on frame callbacks supplied by a FrameDriver and
// issues at most one engine call at a time, so frame budgets are soft: a
// single slow call may overrun MaxTimePerFrame.
type Scheduler struct {
	mu     sync.Mutex
	engine Engine
	config SchedulerConfig
	driver FrameDriver

	queue       *queue.Queue
	cache       *cache.Store
	highlighted map[string]Signature
	window      VirtualWindow

	state      schedulerState
	generation uint64

	// inflight is the block id currently being highlighted by the drain
	// loop; inflightDropped marks it explicitly dequeued mid-flight.
	inflight        string
	inflightDropped bool

	processed int
	skipped   int
	errored   int
	totalTime time.Duration

	subs    map[int]func(string, HighlightResult)
	nextSub int
}

// New creates a scheduler around the given engine.
func New(engine Engine, opts ...Option) *Scheduler {
	cfg := applyOptions(DefaultConfig(), opts...)
	return &Scheduler{
		engine:      engine,
		config:      cfg,
		driver:      NewIntervalDriver(cfg.FrameInterval),
		queue:       queue.New(cfg.MaxQueueSize),
		cache:       cache.New(),
		highlighted: make(map[string]Signature),
		subs:        make(map[int]func(string, HighlightResult)),
	}
}

// SetFrameDriver replaces the frame source. Call before queueing work.
func (s *Scheduler) SetFrameDriver(d FrameDriver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d != nil {
		s.driver = d
	}
}

// Config returns a copy of the current configuration.
func (s *Scheduler) Config() SchedulerConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// SetConfig applies partial configuration updates and re-derives queue
// priorities under the new overscan.
func (s *Scheduler) SetConfig(opts ...Option) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = applyOptions(s.config, opts...)
	s.queue.SetMaxSize(s.config.MaxQueueSize)
	s.queue.Recompute(s.window, s.config.Overscan)
}

// SetWindow stores the current virtual window and re-sorts the queue by the
// new priorities.
func (s *Scheduler) SetWindow(w VirtualWindow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.window = w
	s.queue.Recompute(w, s.config.Overscan)
}

// Window returns the cached virtual window.
func (s *Scheduler) Window() VirtualWindow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window
}

// ObserveWindow adopts the provider's current window and subscribes to its
// changes. The returned function stops observing.
func (s *Scheduler) ObserveWindow(p *WindowProvider) func() {
	s.SetWindow(p.Get())
	return p.Subscribe(s.SetWindow)
}

// QueueBlock enqueues one code block for highlighting at the given absolute
// index. Non-code blocks, blocks whose current content is already
// highlighted and duplicates already queued are silently ignored; none of
// these count as errors. The return value reports whether the block was
// accepted.
func (s *Scheduler) QueueBlock(block Block, index int) bool {
	s.mu.Lock()
	accepted, scheduleNeeded := s.queueLocked(block, index)
	driver := s.driver
	s.mu.Unlock()

	if scheduleNeeded {
		driver.RequestFrame(s.frame)
	}
	return accepted
}

// QueueBlocks enqueues every code block in the list at its parser position.
func (s *Scheduler) QueueBlocks(blocks []Block) int {
	items := make([]IndexedBlock, len(blocks))
	for i, b := range blocks {
		items[i] = IndexedBlock{Block: b, Index: b.Position}
	}
	return s.QueueIndexedBlocks(items)
}

// QueueIndexedBlocks enqueues blocks with explicit absolute indices,
// returning how many were accepted.
func (s *Scheduler) QueueIndexedBlocks(items []IndexedBlock) int {
	s.mu.Lock()
	accepted := 0
	scheduleNeeded := false
	for _, it := range items {
		ok, sched := s.queueLocked(it.Block, it.Index)
		if ok {
			accepted++
		}
		scheduleNeeded = scheduleNeeded || sched
	}
	driver := s.driver
	s.mu.Unlock()

	if scheduleNeeded {
		driver.RequestFrame(s.frame)
	}
	return accepted
}

// queueLocked applies the enqueue gating rules. It reports acceptance and
// whether the caller must request a frame.
func (s *Scheduler) queueLocked(block Block, index int) (accepted, scheduleNeeded bool) {
	if !block.IsCode() {
		return false, false
	}
	sig := signatureOf(block)

	if live, ok := s.highlighted[block.ID]; ok {
		if live == sig {
			return false, false
		}
		// New signature supersedes the old result immediately.
		delete(s.highlighted, block.ID)
		s.cache.Delete(block.ID)
	}
	if _, ok := s.cache.GetBySignature(block.ID, sig); ok {
		s.highlighted[block.ID] = sig
		return false, false
	}

	if existing, ok := s.queue.Get(block.ID); ok {
		if existing.Signature == sig {
			return false, false
		}
		// Superseding signature change destroys the stale item.
		s.queue.Remove(block.ID)
	}

	item := queue.Item{
		Block:     block,
		Priority:  s.window.PriorityFor(index, s.config.Overscan),
		Index:     index,
		Signature: sig,
		QueuedAt:  time.Now(),
	}
	if !s.queue.Push(item) {
		// Full queue with no evictable background item: dropped, not an
		// error.
		return false, false
	}

	if s.state == stateIdle {
		s.state = stateScheduled
		return true, true
	}
	return true, false
}

// DequeueBlock removes a pending job. In-flight work for the block is not
// cancelled; its late result is discarded by the relevance check.
func (s *Scheduler) DequeueBlock(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != "" && id == s.inflight {
		s.inflightDropped = true
		return true
	}
	return s.queue.Remove(id)
}

// ClearQueue drops all pending jobs, keeping cache and stats.
func (s *Scheduler) ClearQueue() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.Clear()
}

// QueueSize returns the number of pending jobs.
func (s *Scheduler) QueueSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// IsProcessing reports whether a frame drain is currently running.
func (s *Scheduler) IsProcessing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateDraining
}

// frame drains the queue under the per-frame budgets. It runs on the frame
// driver's callback.
func (s *Scheduler) frame() {
	s.mu.Lock()
	if s.state == stateDraining {
		s.mu.Unlock()
		return
	}
	s.state = stateDraining
	gen := s.generation
	frameStart := time.Now()
	attempts := 0
	var notes []notification

	for s.generation == gen &&
		attempts < s.config.MaxBlocksPerFrame &&
		time.Since(frameStart) < s.config.MaxTimePerFrame &&
		s.queue.Len() > 0 {

		item, _ := s.queue.Pop()
		if item.Priority == PriorityBackground && !s.config.EnableBackground {
			// 后台块直接跳过，不消耗高亮预算
			s.skipped++
			continue
		}

		eng := s.engine
		theme := s.config.Theme
		s.inflight = item.Block.ID
		s.inflightDropped = false
		s.mu.Unlock()

		start := time.Now()
		lines, err := highlightOnce(eng, item.Block, theme)
		elapsed := time.Since(start)

		s.mu.Lock()
		attempts++
		dropped := s.inflightDropped
		s.inflight = ""
		s.inflightDropped = false

		if s.generation != gen {
			// Reset while the call was in flight; result is irrelevant.
			break
		}
		if dropped {
			// Explicitly dequeued while in flight; result is irrelevant.
			continue
		}
		if err != nil {
			s.errored++
			Logger.Printf("highlight failed: block=%s lang=%q: %v", item.Block.ID, item.Block.Language, err)
			// Subscribers get readable plain text; the block itself stays
			// un-highlighted and is not re-queued.
			notes = append(notes, notification{
				blockID: item.Block.ID,
				result:  HighlightResult{Lines: eng.PlainTextFallback(codeOf(item.Block)), Fallback: true},
			})
			continue
		}
		if current, ok := s.queue.Get(item.Block.ID); ok {
			if current.Signature != item.Signature {
				// Newer content was queued while the call was in flight.
				continue
			}
			// Identical content was re-queued mid-flight; this result
			// covers it, so drop the duplicate instead of computing twice.
			s.queue.Remove(item.Block.ID)
		}

		result := HighlightResult{Lines: lines}
		s.cache.Put(item.Block.ID, item.Signature, result)
		s.highlighted[item.Block.ID] = item.Signature
		s.processed++
		s.totalTime += elapsed
		notes = append(notes, notification{blockID: item.Block.ID, result: result})
	}

	var driver FrameDriver
	if s.generation == gen && s.queue.Len() > 0 {
		s.state = stateScheduled
		driver = s.driver
	} else {
		s.state = stateIdle
	}
	subs := s.subscribersLocked()
	s.mu.Unlock()

	if driver != nil {
		driver.RequestFrame(s.frame)
	}
	for _, note := range notes {
		for _, fn := range subs {
			fn(note.blockID, note.result)
		}
	}
}

// HighlightNow bypasses the queue and highlights synchronously, consulting
// the cache first. Engine failure degrades to the plain-text fallback and
// is counted in TotalErrors, never returned.
func (s *Scheduler) HighlightNow(ctx context.Context, block Block, index int) ([]CodeLine, error) {
	if !block.IsCode() {
		return nil, ErrNotCodeBlock
	}
	_ = index // accepted for queueBlock parity; no priority on the eager path

	sig := signatureOf(block)
	s.mu.Lock()
	if res, ok := s.cache.GetBySignature(block.ID, sig); ok {
		s.mu.Unlock()
		return res.Lines, nil
	}
	eng := s.engine
	theme := s.config.Theme
	gen := s.generation
	s.mu.Unlock()

	code := codeOf(block)
	start := time.Now()
	lines, err := highlightOnce(eng, block, theme)
	elapsed := time.Since(start)

	s.mu.Lock()
	if err != nil {
		s.errored++
		s.mu.Unlock()
		Logger.Printf("highlight failed: block=%s lang=%q: %v", block.ID, block.Language, err)
		return eng.PlainTextFallback(code), nil
	}

	result := HighlightResult{Lines: lines}
	var subs []func(string, HighlightResult)
	if s.generation == gen {
		s.cache.Put(block.ID, sig, result)
		s.highlighted[block.ID] = sig
		s.queue.Remove(block.ID)
		s.processed++
		s.totalTime += elapsed
		subs = s.subscribersLocked()
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(block.ID, result)
	}
	return lines, nil
}

// GetHighlightedLines returns the latest highlighted lines for a block id.
func (s *Scheduler) GetHighlightedLines(id string) ([]CodeLine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	return res.Lines, true
}

// GetHighlightedLinesBySignature returns lines only while the given
// signature is still the block's live one.
func (s *Scheduler) GetHighlightedLinesBySignature(id string, sig Signature) ([]CodeLine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.cache.GetBySignature(id, sig)
	if !ok {
		return nil, false
	}
	return res.Lines, true
}

// HasHighlightedResult reports whether a block id holds a live result.
func (s *Scheduler) HasHighlightedResult(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Has(id)
}

// OnHighlightResult registers a result callback and returns its
// unsubscribe function. Callbacks run outside the scheduler lock.
func (s *Scheduler) OnHighlightResult(fn func(blockID string, result HighlightResult)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Stats returns a snapshot of the counters.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{
		TotalProcessed: s.processed,
		TotalSkipped:   s.skipped,
		TotalErrors:    s.errored,
	}
	if s.processed > 0 {
		st.AvgProcessingTime = s.totalTime / time.Duration(s.processed)
	}
	return st
}

// Reset atomically clears queue, cache, highlighted set and statistics.
// In-flight engine calls keep running but their results are discarded.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.queue.Clear()
	s.cache.Clear()
	s.highlighted = make(map[string]Signature)
	s.processed = 0
	s.skipped = 0
	s.errored = 0
	s.totalTime = 0
}

func (s *Scheduler) subscribersLocked() []func(string, HighlightResult) {
	if len(s.subs) == 0 {
		return nil
	}
	out := make([]func(string, HighlightResult), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}

func highlightOnce(eng Engine, block Block, theme string) ([]CodeLine, error) {
	ctx := context.Background()
	if err := eng.WhenReady(ctx); err != nil {
		return nil, err
	}
	return eng.HighlightToTokens(ctx, codeOf(block), block.Language, theme)
}

func codeOf(block Block) string {
	if block.RawContent != "" {
		return block.RawContent
	}
	return block.Content
}

func signatureOf(block Block) Signature {
	return NewSignature(codeOf(block))
}
