package widget

import "sync"

// Signal names a page-wide event.
type Signal string

// SignalOpenChat asks the widget to open, raised by any call-to-action.
const SignalOpenChat Signal = "open-chat"

// Bus is a small in-process observer hub for page-wide signals.
type Bus struct {
	mu   sync.RWMutex
	subs map[Signal]map[int]func()
	next int
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Signal]map[int]func())}
}

// Subscribe calls fn on every Publish of sig until the returned func is called.
func (b *Bus) Subscribe(sig Signal, fn func()) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	if b.subs[sig] == nil {
		b.subs[sig] = make(map[int]func())
	}
	b.subs[sig][id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[sig], id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers sig to current subscribers synchronously.
func (b *Bus) Publish(sig Signal) {
	b.mu.RLock()
	handlers := make([]func(), 0, len(b.subs[sig]))
	for _, fn := range b.subs[sig] {
		handlers = append(handlers, fn)
	}
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn()
	}
}
