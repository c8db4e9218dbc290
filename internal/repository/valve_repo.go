package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hose_installation/internal/models"
)

type ValveSQLite struct {
	db *sql.DB
}

func NewValveSQLite(db *sql.DB) *ValveSQLite {
	return &ValveSQLite{db: db}
}

var _ ValveRepo = (*ValveSQLite)(nil)

const (
	selectValvesByMachineSQL = `
		SELECT id, machine_id, valve_number, function_name, position, valve_type, description, color_code,
		       port_a_label, port_b_label, sort_order, active
		FROM machine_valves
		WHERE machine_id = ?
		ORDER BY sort_order ASC
	`
	shiftValvesSQL = `UPDATE machine_valves SET sort_order = sort_order + 1 WHERE machine_id = ? AND sort_order >= ?`
	insertValveSQL = `
		INSERT INTO machine_valves (machine_id, valve_number, function_name, position, valve_type, description,
		                            color_code, port_a_label, port_b_label, sort_order, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	updateValveSQL = `
		UPDATE machine_valves
		SET valve_number=?, function_name=?, position=?, valve_type=?, description=?, color_code=?,
		    port_a_label=?, port_b_label=?, sort_order=?, active=?
		WHERE id=?
	`
	deleteValveSQL = `DELETE FROM machine_valves WHERE id = ?`

	defaultPortALabel = "A"
	defaultPortBLabel = "B"
)

func withDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func (r *ValveSQLite) ListByMachine(ctx context.Context, machineID int64) ([]models.Valve, error) {
	rows, err := r.db.QueryContext(ctx, selectValvesByMachineSQL, machineID)
	if err != nil {
		return nil, fmt.Errorf("select valves for machine %d: %w", machineID, err)
	}
	defer rows.Close()

	out := make([]models.Valve, 0, 8)
	for rows.Next() {
		var v models.Valve
		if err := rows.Scan(&v.ID, &v.MachineID, &v.Number, &v.FunctionName, &v.Position, &v.ValveType,
			&v.Description, &v.ColorCode, &v.PortALabel, &v.PortBLabel, &v.Order, &v.Active); err != nil {
			return nil, fmt.Errorf("scan valve: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Create inserts the valve at v.Order, moving existing valves at or after that order down.
func (r *ValveSQLite) Create(ctx context.Context, v models.Valve) (int64, error) {
	order := normalizeOrder(v.Order)
	id, err := insertShifted(ctx, r.db, shiftValvesSQL, v.MachineID, order, insertValveSQL,
		v.MachineID, v.Number, v.FunctionName, v.Position, v.ValveType, v.Description, v.ColorCode,
		withDefault(v.PortALabel, defaultPortALabel), withDefault(v.PortBLabel, defaultPortBLabel),
		order, v.Active,
	)
	if err != nil {
		return 0, fmt.Errorf("insert valve %d for machine %d: %w", v.Number, v.MachineID, err)
	}
	return id, nil
}

func (r *ValveSQLite) Update(ctx context.Context, v models.Valve) error {
	err := execAffectingOne(ctx, r.db, updateValveSQL,
		v.Number, v.FunctionName, v.Position, v.ValveType, v.Description, v.ColorCode,
		withDefault(v.PortALabel, defaultPortALabel), withDefault(v.PortBLabel, defaultPortBLabel),
		normalizeOrder(v.Order), v.Active, v.ID,
	)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("update valve %d: %w", v.ID, err)
	}
	return err
}

func (r *ValveSQLite) Delete(ctx context.Context, id int64) error {
	err := execAffectingOne(ctx, r.db, deleteValveSQL, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete valve %d: %w", id, err)
	}
	return err
}
