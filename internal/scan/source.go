// Package scan delivers decoded position tags to an installation session.
// A tag can come from the phone's NFC reader, its camera (QR) or a hardware
// reader bridged over MQTT; consumers never care which.
package scan

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Origin identifies the medium that produced a scan.
type Origin string

const (
	OriginNFC    Origin = "nfc"
	OriginQR     Origin = "qr"
	OriginReader Origin = "reader"
)

// Valid reports whether o is one of the known origins.
func (o Origin) Valid() bool {
	switch o {
	case OriginNFC, OriginQR, OriginReader:
		return true
	}
	return false
}

var (
	// ErrUnavailable is returned by Start when the scanning capability is absent.
	ErrUnavailable = errors.New("scanning is not available on this device")
	// ErrGarbled marks a read that produced no usable text.
	ErrGarbled = errors.New("scanned tag could not be read")
	// ErrNotListening is returned when a payload arrives for a stopped source.
	ErrNotListening = errors.New("scan source is not listening")
)

// Event is a single decoded scan.
type Event struct {
	ID      string    `json:"id"`
	Payload string    `json:"payload"`
	Origin  Origin    `json:"origin"`
	Err     error     `json:"-"`
	At      time.Time `json:"at"`
}

// NewEvent stamps a payload with an id and the current time.
func NewEvent(origin Origin, payload string) Event {
	return Event{
		ID:      uuid.NewString(),
		Payload: payload,
		Origin:  origin,
		At:      time.Now().UTC(),
	}
}

// FailedEvent records a read error instead of a payload.
func FailedEvent(origin Origin, err error) Event {
	ev := NewEvent(origin, "")
	ev.Err = err
	return ev
}

// Text is the payload with surrounding whitespace removed.
func (e Event) Text() string {
	return strings.TrimSpace(e.Payload)
}

// Source produces scan events while started.
type Source interface {
	Start(ctx context.Context) error
	Stop() error
	Events() <-chan Event
}
