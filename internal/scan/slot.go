package scan

import "sync"

// Slot is a single-slot mailbox. A newer offer replaces an undelivered one,
// so a consumer only ever sees the latest scan and sees it once.
type Slot struct {
	mu sync.Mutex
	ch chan Event
}

func NewSlot() *Slot {
	return &Slot{ch: make(chan Event, 1)}
}

// Offer stores ev and reports whether a pending event was dropped for it.
func (s *Slot) Offer(ev Event) (replaced bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-s.ch:
		replaced = true
	default:
	}
	s.ch <- ev
	return replaced
}

// Take removes the pending event, if any, without blocking.
func (s *Slot) Take() (Event, bool) {
	select {
	case ev := <-s.ch:
		return ev, true
	default:
		return Event{}, false
	}
}

// Clear drops a pending event.
func (s *Slot) Clear() {
	s.Take()
}

func (s *Slot) C() <-chan Event {
	return s.ch
}
