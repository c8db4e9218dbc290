package nfc

import (
	"sync"

	"hose_installation/internal/models"

	"github.com/cskr/pubsub"
)

const statusTopic = "nfc.status"

// Hub keeps the latest snapshot and fans new ones out to subscribers.
// Slow subscribers miss snapshots instead of blocking the poller.
type Hub struct {
	mu     sync.RWMutex
	ps     *pubsub.PubSub
	latest models.StatusSnapshot
	has    bool
	closed bool
}

func NewHub(capacity int) *Hub {
	if capacity < 1 {
		capacity = 1
	}
	return &Hub{ps: pubsub.New(capacity)}
}

// Publish replaces the latest snapshot and notifies subscribers.
func (h *Hub) Publish(s models.StatusSnapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.latest = s
	h.has = true
	h.ps.TryPub(s, statusTopic)
}

func (h *Hub) Latest() (models.StatusSnapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest, h.has
}

// Subscribe returns a channel of models.StatusSnapshot values. It is closed by
// Unsubscribe or Close.
func (h *Hub) Subscribe() chan interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		ch := make(chan interface{})
		close(ch)
		return ch
	}
	return h.ps.Sub(statusTopic)
}

func (h *Hub) Unsubscribe(ch chan interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	h.ps.Unsub(ch)
}

func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	h.ps.Shutdown()
}
