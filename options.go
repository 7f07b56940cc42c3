package streamdown

import "time"

// Option is a function that configures a SchedulerConfig.
type Option func(*SchedulerConfig)

// WithMaxBlocksPerFrame sets the per-frame block budget.
func WithMaxBlocksPerFrame(n int) Option {
	return func(cfg *SchedulerConfig) {
		if n > 0 {
			cfg.MaxBlocksPerFrame = n
		}
	}
}

// WithMaxTimePerFrame sets the per-frame time budget.
func WithMaxTimePerFrame(d time.Duration) Option {
	return func(cfg *SchedulerConfig) {
		if d > 0 {
			cfg.MaxTimePerFrame = d
		}
	}
}

// WithMaxQueueSize sets the pending-job capacity.
func WithMaxQueueSize(n int) Option {
	return func(cfg *SchedulerConfig) {
		if n > 0 {
			cfg.MaxQueueSize = n
		}
	}
}

// WithBackground enables or disables highlighting of off-screen blocks.
func WithBackground(enable bool) Option {
	return func(cfg *SchedulerConfig) {
		cfg.EnableBackground = enable
	}
}

// WithOverscan sets the near-viewport margin in block indices.
func WithOverscan(n int) Option {
	return func(cfg *SchedulerConfig) {
		if n >= 0 {
			cfg.Overscan = n
		}
	}
}

// WithTheme sets the highlight style name passed to the engine.
func WithTheme(theme string) Option {
	return func(cfg *SchedulerConfig) {
		if theme != "" {
			cfg.Theme = theme
		}
	}
}

// WithFrameInterval sets the default frame driver's delay.
func WithFrameInterval(d time.Duration) Option {
	return func(cfg *SchedulerConfig) {
		if d > 0 {
			cfg.FrameInterval = d
		}
	}
}

func applyOptions(cfg SchedulerConfig, opts ...Option) SchedulerConfig {
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
