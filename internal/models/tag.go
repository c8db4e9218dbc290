package models

// TagInfo describes the hose a tag position belongs to.
type TagInfo struct {
	Position    string `json:"position"`
	Type        string `json:"type"`
	Function    string `json:"function"`
	Connection  string `json:"connection"`
	Color       string `json:"color"`
	MaxPressure string `json:"max_pressure"`
	FlowRate    string `json:"flow_rate"`
}
