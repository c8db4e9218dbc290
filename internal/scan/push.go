package scan

import (
	"context"
	"sync"
)

// PushSource is fed by the browser: the phone decodes the tag with Web NFC or
// its QR scanner and posts the text to the API, which calls Push.
type PushSource struct {
	mu        sync.Mutex
	capable   bool
	listening bool
	slot      *Slot
}

var _ Source = (*PushSource)(nil)

func NewPushSource() *PushSource {
	return &PushSource{slot: NewSlot()}
}

// SetCapability records whether the client reported a usable scanner.
func (p *PushSource) SetCapability(ok bool) {
	p.mu.Lock()
	p.capable = ok
	p.mu.Unlock()
}

func (p *PushSource) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.capable {
		return ErrUnavailable
	}
	p.listening = true
	return nil
}

func (p *PushSource) Stop() error {
	p.mu.Lock()
	p.listening = false
	p.mu.Unlock()
	p.slot.Clear()
	return nil
}

func (p *PushSource) Listening() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.listening
}

// Push hands a decoded payload to the consumer.
func (p *PushSource) Push(ev Event) error {
	if !p.Listening() {
		return ErrNotListening
	}
	p.slot.Offer(ev)
	return nil
}

func (p *PushSource) Events() <-chan Event {
	return p.slot.C()
}
