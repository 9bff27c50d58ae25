// internal/automation/events/bus.go
package events

import (
	"sync"
	"time"

	"taskpilot/internal/automation/action"
	"taskpilot/internal/models"
)

// Type identifies a lifecycle event of one automation invocation.
type Type string

const (
	AutomationStart   Type = "automationStart"
	AutomationSuccess Type = "automationSuccess"
	AutomationError   Type = "automationError"
)

// Event carries the action name and parameters, plus the result or
// error for terminal events. Events are fire-and-forget and are not
// persisted.
type Event struct {
	ID         string         `json:"id"`
	Type       Type           `json:"type"`
	Action     action.Name    `json:"action"`
	Parameters *action.Bag    `json:"parameters"`
	Result     *models.Result `json:"result,omitempty"`
	Error      string         `json:"error,omitempty"`
	At         time.Time      `json:"at"`
}

const subscriberBuffer = 16

// Bus fans lifecycle events out to UI subscribers over channels.
// Publish never blocks: a subscriber that falls behind misses events,
// matching the fire-and-forget contract.
type Bus struct {
	mu   sync.RWMutex
	subs map[int]chan Event
	next int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe returns a receive channel and a cancel function. The
// channel is closed on cancel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Event, subscriberBuffer)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber without blocking.
func (b *Bus) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
