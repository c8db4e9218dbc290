package service

import (
	"context"
	"strings"

	"hose_installation/internal/models"
	"hose_installation/internal/repository"
)

const (
	maxCouplingPressureBar = 350
	maxCouplingFlowLPM     = 200
)

var connectionTypes = map[string]struct{}{
	models.ConnectionSingleActing: {},
	models.ConnectionDoubleActing: {},
	models.ConnectionHighFlow:     {},
	models.ConnectionLowFlow:      {},
}

type MachineConfigService struct {
	valves   repository.ValveRepo
	coupling repository.CouplingRepo
	inputs   repository.HydraulicInputRepo
}

func NewMachineConfigService(repos *repository.Repository) *MachineConfigService {
	return &MachineConfigService{
		valves:   repos.Valves,
		coupling: repos.Couplings,
		inputs:   repos.HydraulicInputs,
	}
}

func (s *MachineConfigService) ListValves(ctx context.Context, machineID int64) ([]models.Valve, error) {
	out, err := s.valves.ListByMachine(ctx, machineID)
	return out, storeErr("list valves", err)
}

func validValve(v models.Valve) error {
	switch {
	case v.MachineID <= 0:
		return invalid("machine_id is required")
	case v.Number < 1:
		return invalid("valve_number must be positive")
	case strings.TrimSpace(v.FunctionName) == "":
		return invalid("function_name is required")
	}
	return nil
}

func (s *MachineConfigService) CreateValve(ctx context.Context, v models.Valve) (int64, error) {
	if err := validValve(v); err != nil {
		return 0, err
	}
	id, err := s.valves.Create(ctx, v)
	return id, storeErr("create valve", err)
}

func (s *MachineConfigService) UpdateValve(ctx context.Context, v models.Valve) error {
	if err := validValve(v); err != nil {
		return err
	}
	return storeErr("update valve", s.valves.Update(ctx, v))
}

func (s *MachineConfigService) DeleteValve(ctx context.Context, id int64) error {
	return storeErr("delete valve", s.valves.Delete(ctx, id))
}

func (s *MachineConfigService) ListCouplings(ctx context.Context, machineID int64) ([]models.HoseCoupling, error) {
	out, err := s.coupling.ListByMachine(ctx, machineID)
	return out, storeErr("list couplings", err)
}

func validCoupling(c models.HoseCoupling) error {
	if c.MachineID <= 0 {
		return invalid("machine_id is required")
	}
	if c.HoseNumber < 1 {
		return invalid("hose_number must be positive")
	}
	if c.ValveID <= 0 {
		return invalid("valve_id is required")
	}
	if _, ok := connectionTypes[c.ConnectionType]; !ok {
		return invalid("unknown connection_type %q", c.ConnectionType)
	}
	if c.PressureRating < 0 || c.PressureRating > maxCouplingPressureBar {
		return invalid("pressure_rating must be within 0..%d bar", maxCouplingPressureBar)
	}
	if c.FlowRating < 0 || c.FlowRating > maxCouplingFlowLPM {
		return invalid("flow_rating must be within 0..%d l/min", maxCouplingFlowLPM)
	}
	return nil
}

func (s *MachineConfigService) CreateCoupling(ctx context.Context, c models.HoseCoupling) (int64, error) {
	if err := validCoupling(c); err != nil {
		return 0, err
	}
	id, err := s.coupling.Create(ctx, c)
	return id, storeErr("create coupling", err)
}

func (s *MachineConfigService) UpdateCoupling(ctx context.Context, c models.HoseCoupling) error {
	if err := validCoupling(c); err != nil {
		return err
	}
	return storeErr("update coupling", s.coupling.Update(ctx, c))
}

func (s *MachineConfigService) DeleteCoupling(ctx context.Context, id int64) error {
	return storeErr("delete coupling", s.coupling.Delete(ctx, id))
}

func (s *MachineConfigService) ListHydraulicInputs(ctx context.Context, machineID int64) ([]models.HydraulicInput, error) {
	out, err := s.inputs.ListByMachine(ctx, machineID)
	return out, storeErr("list hydraulic inputs", err)
}

func validInput(in models.HydraulicInput) error {
	switch {
	case in.MachineID <= 0:
		return invalid("machine_id is required")
	case in.InputNumber < 1:
		return invalid("input_number must be positive")
	}
	return nil
}

func (s *MachineConfigService) CreateHydraulicInput(ctx context.Context, in models.HydraulicInput) (int64, error) {
	if err := validInput(in); err != nil {
		return 0, err
	}
	id, err := s.inputs.Create(ctx, in)
	return id, storeErr("create hydraulic input", err)
}

func (s *MachineConfigService) UpdateHydraulicInput(ctx context.Context, in models.HydraulicInput) error {
	if err := validInput(in); err != nil {
		return err
	}
	return storeErr("update hydraulic input", s.inputs.Update(ctx, in))
}

func (s *MachineConfigService) DeleteHydraulicInput(ctx context.Context, id int64) error {
	return storeErr("delete hydraulic input", s.inputs.Delete(ctx, id))
}
