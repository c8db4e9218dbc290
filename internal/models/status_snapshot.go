package models

// StatusSnapshot is the latest known reading of the NFC reader hardware.
// It is replaced wholesale on every poll cycle.
type StatusSnapshot struct {
	TagDetected bool    `json:"tag_detected"`
	Timestamp   float64 `json:"timestamp"` // unix milliseconds
	Error       bool    `json:"error,omitempty"`
	Message     string  `json:"message,omitempty"`
}
