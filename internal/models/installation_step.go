package models

// InstallationStep is one instruction of an attachment's installation sequence.
type InstallationStep struct {
	ID               int64  `json:"id"`
	AttachmentID     int64  `json:"attachment_id"`
	StepNumber       int    `json:"step_number"`
	Description      string `json:"description"`
	ImageURL         string `json:"image_url,omitempty"`
	ScanRequired     bool   `json:"scan_required"`
	ExpectedPosition string `json:"expected_position,omitempty"` // e.g. SUPPLY_LEFT
}
