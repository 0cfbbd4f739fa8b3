package shell

import (
	"context"
	"sync"
)

// Loop queues callbacks posted from any goroutine until the UI goroutine
// drains them. It implements view.Poster.
type Loop struct {
	mu    sync.Mutex
	queue []func()
	ready chan struct{}
}

func NewLoop() *Loop {
	return &Loop{ready: make(chan struct{}, 1)}
}

// Post queues fn. It never blocks.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.ready <- struct{}{}:
	default:
	}
}

// Ready receives a value after Post when the queue may hold callbacks.
func (l *Loop) Ready() <-chan struct{} {
	return l.ready
}

// Drain runs the queued callbacks in order and returns how many ran.
// Callbacks posted while draining wait for the next call.
func (l *Loop) Drain() int {
	l.mu.Lock()
	queue := l.queue
	l.queue = nil
	l.mu.Unlock()

	for _, fn := range queue {
		fn()
	}
	return len(queue)
}

// Run makes the calling goroutine the UI goroutine until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.ready:
			l.Drain()
		}
	}
}
