// Package connectivity tracks network reachability for the rest of the
// application. The monitor holds a single boolean fed by runtime
// online/offline events; it never polls and has no side effects.
package connectivity

import "sync"

const subscriberBufferSize = 16

// Monitor exposes the current reachability state and notifies subscribers
// on transitions.
type Monitor struct {
	mu     sync.RWMutex
	online bool
	subs   []chan bool
	closed bool
}

// NewMonitor creates a monitor with the given initial state.
func NewMonitor(online bool) *Monitor {
	return &Monitor{online: online}
}

// Online returns the current reachability state.
func (m *Monitor) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// SetOnline records a reachability event. Subscribers are notified only
// when the state actually changes.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || m.online == online {
		return
	}
	m.online = online

	for _, ch := range m.subs {
		select {
		case ch <- online:
		default:
			// Slow subscriber: drop rather than block the event source.
		}
	}
}

// Subscribe returns a channel receiving the new state on each transition.
// The channel is closed when the monitor is closed.
func (m *Monitor) Subscribe() <-chan bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan bool, subscriberBufferSize)
	if m.closed {
		close(ch)
		return ch
	}
	m.subs = append(m.subs, ch)
	return ch
}

// Close releases all subscriptions.
func (m *Monitor) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true
	for _, ch := range m.subs {
		close(ch)
	}
	m.subs = nil
}
