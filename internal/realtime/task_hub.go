package realtime

import (
	"sync"

	"todoboard/internal/models"
)

const subscriberBuffer = 16

// TaskHub fans task events out to connected list pages.
type TaskHub struct {
	mu   sync.RWMutex
	subs map[chan models.TaskEvent]struct{}
}

func NewTaskHub() *TaskHub {
	return &TaskHub{
		subs: make(map[chan models.TaskEvent]struct{}),
	}
}

// Subscribe registers a listener. The returned func unregisters it and closes the channel.
func (h *TaskHub) Subscribe() (<-chan models.TaskEvent, func()) {
	ch := make(chan models.TaskEvent, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Publish never blocks: slow subscribers drop events.
func (h *TaskHub) Publish(ev models.TaskEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (h *TaskHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
