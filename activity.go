package sessionguard

import (
	"context"
	"sync"
)

// ActivityKind identifies a class of user interaction. The set mirrors
// what a UI shell can cheaply observe; the guard treats every kind the
// same.
type ActivityKind int

const (
	ActivityPointerDown ActivityKind = iota
	ActivityPointerMove
	ActivityKeyPress
	ActivityScroll
	ActivityTouchStart
	ActivityClick
)

func (k ActivityKind) String() string {
	switch k {
	case ActivityPointerDown:
		return "pointer-down"
	case ActivityPointerMove:
		return "pointer-move"
	case ActivityKeyPress:
		return "key-press"
	case ActivityScroll:
		return "scroll"
	case ActivityTouchStart:
		return "touch-start"
	case ActivityClick:
		return "click"
	default:
		return "unknown"
	}
}

// ActivitySource is a stream of user-interaction events, typically backed
// by a UI event loop. Subscribe returns a cancel function that must fully
// detach the subscriber.
type ActivitySource interface {
	Subscribe(fn func(ActivityKind)) (cancel func())
}

// ActivityMonitor bridges an ActivitySource to the guard's recency
// tracking. It holds exactly one subscription and guarantees it is
// released on Close, regardless of how the guard shuts down.
type ActivityMonitor struct {
	guard  *Guard
	source ActivitySource

	mu     sync.Mutex
	cancel func()
}

// NewActivityMonitor wires source to g. Call Start to begin observing.
func NewActivityMonitor(g *Guard, source ActivitySource) *ActivityMonitor {
	return &ActivityMonitor{guard: g, source: source}
}

// Start subscribes to the source. Calling Start on a started monitor is a
// no-op.
func (m *ActivityMonitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		return
	}
	m.cancel = m.source.Subscribe(func(ActivityKind) {
		m.guard.RecordActivity(context.Background())
	})
}

// Close detaches from the source. Idempotent.
func (m *ActivityMonitor) Close() {
	if m == nil {
		return
	}

	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}
