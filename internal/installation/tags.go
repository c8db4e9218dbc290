package installation

import (
	"strings"

	"hose_installation/internal/models"
)

const (
	PositionSupplyLeft  = "SUPPLY_LEFT"
	PositionReturnRight = "RETURN_RIGHT"
	PositionLeak        = "LEAK"

	unknownTagValue = "unknown"
)

var tagCatalogue = map[string]models.TagInfo{
	PositionSupplyLeft: {
		Position:    PositionSupplyLeft,
		Type:        "supply hose",
		Function:    "hydraulic oil to the implement",
		Connection:  "valve A (left)",
		Color:       "red",
		MaxPressure: "300 bar",
		FlowRate:    "60 l/min",
	},
	PositionReturnRight: {
		Position:    PositionReturnRight,
		Type:        "return hose",
		Function:    "oil back to the tank",
		Connection:  "valve B (right)",
		Color:       "blue",
		MaxPressure: "300 bar",
		FlowRate:    "60 l/min",
	},
	PositionLeak: {
		Position:    PositionLeak,
		Type:        "leak line",
		Function:    "drain of leakage oil",
		Connection:  "valve C (leak port)",
		Color:       "yellow",
		MaxPressure: "10 bar",
		FlowRate:    "5 l/min",
	},
}

// KnownPosition reports whether p names a catalogued hose position.
func KnownPosition(p string) bool {
	_, ok := tagCatalogue[strings.ToUpper(strings.TrimSpace(p))]
	return ok
}

// LookupTag returns the hose description for a position. Unknown positions get
// a placeholder record and ok=false.
func LookupTag(position string) (info models.TagInfo, ok bool) {
	key := strings.ToUpper(strings.TrimSpace(position))
	if info, ok := tagCatalogue[key]; ok {
		return info, true
	}
	return models.TagInfo{
		Position:    key,
		Type:        unknownTagValue,
		Function:    unknownTagValue,
		Connection:  unknownTagValue,
		Color:       unknownTagValue,
		MaxPressure: unknownTagValue,
		FlowRate:    unknownTagValue,
	}, false
}

// Recommendation summarises the hydraulic system implied by the connected hoses.
type Recommendation struct {
	SystemType    string   `json:"system_type"`
	RequiredHoses int      `json:"required_hoses"`
	MaxPressure   string   `json:"max_pressure"`
	RequiredFlow  string   `json:"required_flow"`
	Warnings      []string `json:"warnings"`
}

// Recommend derives the system type from the positions scanned so far.
func Recommend(scanned []string) Recommendation {
	connected := make(map[string]bool, len(scanned))
	for _, p := range scanned {
		connected[strings.ToUpper(strings.TrimSpace(p))] = true
	}

	r := Recommendation{
		RequiredHoses: 2,
		MaxPressure:   "300 bar",
		RequiredFlow:  "60 l/min",
		Warnings:      []string{},
	}
	if !connected[PositionSupplyLeft] {
		r.Warnings = append(r.Warnings, "supply hose is not connected")
	}
	if !connected[PositionReturnRight] {
		r.Warnings = append(r.Warnings, "return hose is not connected")
	}

	switch {
	case connected[PositionLeak]:
		r.SystemType = "system with leak line"
		r.RequiredHoses = 3
	case connected[PositionSupplyLeft] && connected[PositionReturnRight]:
		r.SystemType = "double-acting system"
	default:
		r.SystemType = "single-acting system"
	}
	return r
}
