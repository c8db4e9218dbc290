package service

import "time"

// LogFilter narrows the installation audit log.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "SESSION_OPENED", "SCAN_ACCEPTED", ...
}

// OpenParams selects what a new session installs. InstallationID wins over
// the explicit machine and attachment pair.
type OpenParams struct {
	InstallationID int64
	MachineID      int64
	AttachmentID   int64
	ReaderID       string
}

// Audit event types.
const (
	EventSessionOpened = "SESSION_OPENED"
	EventSessionClosed = "SESSION_CLOSED"
	EventStepCompleted = "STEP_COMPLETED"
	EventScanAccepted  = "SCAN_ACCEPTED"
	EventScanRejected  = "SCAN_REJECTED"
	EventScanError     = "SCAN_ERROR"
	EventFinished      = "FINISHED"
)
