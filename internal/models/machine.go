package models

import "time"

// Machine is a carrier vehicle that hydraulic attachments are mounted on.
type Machine struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Type               string    `json:"type"`
	WorkingPressureBar float64   `json:"working_pressure_bar"` // bar
	MaxPressureBar     float64   `json:"max_pressure_bar"`     // bar
	FlowLPM            float64   `json:"flow_lpm"`             // l/min
	PowerW             float64   `json:"power_w"`              // W
	Description        string    `json:"description"`
	CreatedAt          time.Time `json:"created_at"`
}

// Attachment is a hydraulic tool that can be fitted to one or more machines.
type Attachment struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Installation links a user to a machine/attachment pairing they are fitting.
type Installation struct {
	ID           int64     `json:"id"`
	UserID       int       `json:"user_id"`
	MachineID    int64     `json:"machine_id"`
	AttachmentID int64     `json:"attachment_id"`
	CreatedAt    time.Time `json:"created_at"`
}
