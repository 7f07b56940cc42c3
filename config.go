package streamdown

import (
	"sync"
	"time"
)

// SchedulerConfig bounds how much highlighting work a scheduler performs
// per frame and how large its queue may grow.
type SchedulerConfig struct {
	// MaxBlocksPerFrame caps how many blocks are highlighted in one frame.
	MaxBlocksPerFrame int
	// MaxTimePerFrame caps the highlighting time spent in one frame. The
	// budget is soft: one slow engine call may overrun it.
	MaxTimePerFrame time.Duration
	// MaxQueueSize caps pending jobs; overflow evicts the oldest
	// background item or silently drops the newcomer.
	MaxQueueSize int
	// EnableBackground controls whether off-screen blocks are highlighted
	// at all. When false, background items are skipped without an engine
	// call.
	EnableBackground bool
	// Overscan is the margin, in block indices, around the visible window
	// that still counts as near-viewport.
	Overscan int
	// Theme names the highlight style passed to the engine.
	Theme string
	// FrameInterval is the delay the default frame driver waits before
	// running a requested frame.
	FrameInterval time.Duration
}

var (
	defaultConfig     SchedulerConfig
	defaultConfigOnce sync.Once
)

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() SchedulerConfig {
	defaultConfigOnce.Do(func() {
		defaultConfig = SchedulerConfig{
			MaxBlocksPerFrame: 3,
			MaxTimePerFrame:   8 * time.Millisecond,
			MaxQueueSize:      100,
			EnableBackground:  true,
			Overscan:          5,
			Theme:             "github",
			FrameInterval:     16 * time.Millisecond,
		}
	})
	return defaultConfig
}
