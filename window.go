package streamdown

import "sync"

// WindowProvider holds the current virtual window and notifies subscribers
// when it changes. It replaces implicit framework reactivity with an
// explicit observer contract: the scheduler subscribes and re-derives queue
// priorities on every notification.
type WindowProvider struct {
	mu      sync.Mutex
	window  VirtualWindow
	subs    map[int]func(VirtualWindow)
	nextSub int
}

// NewWindowProvider creates a provider with the given initial window.
func NewWindowProvider(initial VirtualWindow) *WindowProvider {
	return &WindowProvider{
		window: initial,
		subs:   make(map[int]func(VirtualWindow)),
	}
}

// Get returns the current window.
func (p *WindowProvider) Get() VirtualWindow {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.window
}

// Set stores a new window and notifies subscribers. Unchanged values are
// not re-broadcast.
func (p *WindowProvider) Set(w VirtualWindow) {
	p.mu.Lock()
	if p.window == w {
		p.mu.Unlock()
		return
	}
	p.window = w
	subs := make([]func(VirtualWindow), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(w)
	}
}

// Subscribe registers a change callback and returns its unsubscribe
// function.
func (p *WindowProvider) Subscribe(fn func(VirtualWindow)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}
