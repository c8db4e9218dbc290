package models

// Connection types accepted for a hose coupling.
const (
	ConnectionSingleActing = "single_acting"
	ConnectionDoubleActing = "double_acting"
	ConnectionHighFlow     = "high_flow"
	ConnectionLowFlow      = "low_flow"
)

// Valve is a control valve on a machine's hydraulic block.
type Valve struct {
	ID           int64  `json:"id"`
	MachineID    int64  `json:"machine_id"`
	Number       int    `json:"valve_number"`
	FunctionName string `json:"function_name"`
	Position     string `json:"position"`
	ValveType    string `json:"valve_type"`
	Description  string `json:"description,omitempty"`
	ColorCode    string `json:"color_code,omitempty"`
	PortALabel   string `json:"port_a_label"`
	PortBLabel   string `json:"port_b_label"`
	Order        int    `json:"order"`
	Active       bool   `json:"active"`
}

// HoseCoupling describes which hose goes onto which valve port.
type HoseCoupling struct {
	ID                  int64   `json:"id"`
	MachineID           int64   `json:"machine_id"`
	AttachmentID        *int64  `json:"attachment_id,omitempty"`
	HoseNumber          int     `json:"hose_number"`
	HoseColor           string  `json:"hose_color"`
	HoseLabel           string  `json:"hose_label"`
	ValveID             int64   `json:"valve_id"`
	Port                string  `json:"port"`
	FunctionDescription string  `json:"function_description"`
	InstructionText     string  `json:"instruction_text"`
	ConnectionType      string  `json:"connection_type"` // single_acting | double_acting | high_flow | low_flow
	PressureRating      float64 `json:"pressure_rating"` // bar
	FlowRating          float64 `json:"flow_rating"`     // l/min
	Order               int     `json:"order"`
}

// HydraulicInput is a coloured hydraulic input on a machine.
type HydraulicInput struct {
	ID          int64  `json:"id"`
	MachineID   int64  `json:"machine_id"`
	InputNumber int    `json:"input_number"`
	Color       string `json:"color"`
	Order       int    `json:"order"`
}
