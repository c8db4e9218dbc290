// Package seed imports machines, attachments and their installation steps
// from a YAML file.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"hose_installation/internal/models"

	"gopkg.in/yaml.v3"
)

// File is the top level of a seed document.
type File struct {
	Machines    []Machine    `yaml:"machines"`
	Attachments []Attachment `yaml:"attachments"`
}

type Machine struct {
	Name               string           `yaml:"name"`
	Type               string           `yaml:"type"`
	WorkingPressureBar float64          `yaml:"working_pressure_bar"`
	MaxPressureBar     float64          `yaml:"max_pressure_bar"`
	FlowLPM            float64          `yaml:"flow_lpm"`
	PowerW             float64          `yaml:"power_w"`
	Description        string           `yaml:"description"`
	Valves             []Valve          `yaml:"valves"`
	Couplings          []Coupling       `yaml:"couplings"`
	HydraulicInputs    []HydraulicInput `yaml:"hydraulic_inputs"`
}

type Valve struct {
	Number       int    `yaml:"number"`
	FunctionName string `yaml:"function"`
	Position     string `yaml:"position"`
	ValveType    string `yaml:"type"`
	Description  string `yaml:"description"`
	ColorCode    string `yaml:"color"`
	PortALabel   string `yaml:"port_a"`
	PortBLabel   string `yaml:"port_b"`
	Order        int    `yaml:"order"`
	Active       *bool  `yaml:"active"`
}

// Coupling refers to its valve by valve number within the same machine.
type Coupling struct {
	HoseNumber          int     `yaml:"hose"`
	HoseColor           string  `yaml:"color"`
	HoseLabel           string  `yaml:"label"`
	Valve               int     `yaml:"valve"`
	Port                string  `yaml:"port"`
	FunctionDescription string  `yaml:"function"`
	InstructionText     string  `yaml:"instruction"`
	ConnectionType      string  `yaml:"connection_type"`
	PressureRating      float64 `yaml:"pressure_rating"`
	FlowRating          float64 `yaml:"flow_rating"`
	Order               int     `yaml:"order"`
}

type HydraulicInput struct {
	Number int    `yaml:"number"`
	Color  string `yaml:"color"`
	Order  int    `yaml:"order"`
}

// Attachment lists the machines it fits by name.
type Attachment struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	Description string   `yaml:"description"`
	Machines    []string `yaml:"machines"`
	Steps       []Step   `yaml:"steps"`
}

type Step struct {
	Description      string `yaml:"description"`
	ImageURL         string `yaml:"image"`
	ScanRequired     bool   `yaml:"scan_required"`
	ExpectedPosition string `yaml:"expected_position"`
}

// Catalog is the part of the catalogue service an import writes through.
type Catalog interface {
	CreateMachine(ctx context.Context, m models.Machine) (int64, error)
	CreateAttachment(ctx context.Context, a models.Attachment, machineIDs []int64) (int64, error)
	CreateStep(ctx context.Context, s models.InstallationStep) (int64, error)
}

type MachineConfig interface {
	CreateValve(ctx context.Context, v models.Valve) (int64, error)
	CreateCoupling(ctx context.Context, c models.HoseCoupling) (int64, error)
	CreateHydraulicInput(ctx context.Context, in models.HydraulicInput) (int64, error)
}

// Result counts the rows an import created.
type Result struct {
	Machines    int `json:"machines"`
	Attachments int `json:"attachments"`
	Steps       int `json:"steps"`
	Valves      int `json:"valves"`
	Couplings   int `json:"couplings"`
	Inputs      int `json:"hydraulic_inputs"`
}

var errEmpty = errors.New("seed file defines no machines or attachments")

// Parse decodes a seed document. Unknown keys are errors.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errEmpty
		}
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if len(f.Machines) == 0 && len(f.Attachments) == 0 {
		return nil, errEmpty
	}
	return &f, nil
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	f, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Import creates every machine first, then the attachments that reference
// them. It stops at the first failure; rows created before it are kept.
func Import(ctx context.Context, f *File, cat Catalog, mc MachineConfig) (Result, error) {
	var res Result
	machineIDs := make(map[string]int64, len(f.Machines))

	for _, m := range f.Machines {
		key := strings.ToLower(strings.TrimSpace(m.Name))
		if _, dup := machineIDs[key]; dup {
			return res, fmt.Errorf("machine %q listed twice", m.Name)
		}
		id, err := cat.CreateMachine(ctx, models.Machine{
			Name:               strings.TrimSpace(m.Name),
			Type:               m.Type,
			WorkingPressureBar: m.WorkingPressureBar,
			MaxPressureBar:     m.MaxPressureBar,
			FlowLPM:            m.FlowLPM,
			PowerW:             m.PowerW,
			Description:        m.Description,
		})
		if err != nil {
			return res, fmt.Errorf("machine %q: %w", m.Name, err)
		}
		machineIDs[key] = id
		res.Machines++

		if err := importConfig(ctx, mc, id, m, &res); err != nil {
			return res, fmt.Errorf("machine %q: %w", m.Name, err)
		}
	}

	for _, a := range f.Attachments {
		links := make([]int64, 0, len(a.Machines))
		for _, name := range a.Machines {
			id, ok := machineIDs[strings.ToLower(strings.TrimSpace(name))]
			if !ok {
				return res, fmt.Errorf("attachment %q: unknown machine %q", a.Name, name)
			}
			links = append(links, id)
		}
		aid, err := cat.CreateAttachment(ctx, models.Attachment{
			Name:        strings.TrimSpace(a.Name),
			Type:        a.Type,
			Description: a.Description,
		}, links)
		if err != nil {
			return res, fmt.Errorf("attachment %q: %w", a.Name, err)
		}
		res.Attachments++

		for i, s := range a.Steps {
			_, err := cat.CreateStep(ctx, models.InstallationStep{
				AttachmentID:     aid,
				StepNumber:       i + 1,
				Description:      s.Description,
				ImageURL:         s.ImageURL,
				ScanRequired:     s.ScanRequired,
				ExpectedPosition: strings.ToUpper(strings.TrimSpace(s.ExpectedPosition)),
			})
			if err != nil {
				return res, fmt.Errorf("attachment %q step %d: %w", a.Name, i+1, err)
			}
			res.Steps++
		}
	}
	return res, nil
}

func importConfig(ctx context.Context, mc MachineConfig, machineID int64, m Machine, res *Result) error {
	valveIDs := make(map[int]int64, len(m.Valves))
	for _, v := range m.Valves {
		active := true
		if v.Active != nil {
			active = *v.Active
		}
		id, err := mc.CreateValve(ctx, models.Valve{
			MachineID:    machineID,
			Number:       v.Number,
			FunctionName: v.FunctionName,
			Position:     v.Position,
			ValveType:    v.ValveType,
			Description:  v.Description,
			ColorCode:    v.ColorCode,
			PortALabel:   v.PortALabel,
			PortBLabel:   v.PortBLabel,
			Order:        v.Order,
			Active:       active,
		})
		if err != nil {
			return fmt.Errorf("valve %d: %w", v.Number, err)
		}
		valveIDs[v.Number] = id
		res.Valves++
	}

	for _, c := range m.Couplings {
		var valveID int64
		if c.Valve != 0 {
			id, ok := valveIDs[c.Valve]
			if !ok {
				return fmt.Errorf("coupling %d: unknown valve %d", c.HoseNumber, c.Valve)
			}
			valveID = id
		}
		_, err := mc.CreateCoupling(ctx, models.HoseCoupling{
			MachineID:           machineID,
			HoseNumber:          c.HoseNumber,
			HoseColor:           c.HoseColor,
			HoseLabel:           c.HoseLabel,
			ValveID:             valveID,
			Port:                c.Port,
			FunctionDescription: c.FunctionDescription,
			InstructionText:     c.InstructionText,
			ConnectionType:      c.ConnectionType,
			PressureRating:      c.PressureRating,
			FlowRating:          c.FlowRating,
			Order:               c.Order,
		})
		if err != nil {
			return fmt.Errorf("coupling %d: %w", c.HoseNumber, err)
		}
		res.Couplings++
	}

	for _, in := range m.HydraulicInputs {
		_, err := mc.CreateHydraulicInput(ctx, models.HydraulicInput{
			MachineID:   machineID,
			InputNumber: in.Number,
			Color:       in.Color,
			Order:       in.Order,
		})
		if err != nil {
			return fmt.Errorf("hydraulic input %d: %w", in.Number, err)
		}
		res.Inputs++
	}
	return nil
}
