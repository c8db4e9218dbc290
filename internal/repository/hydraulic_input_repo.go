package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hose_installation/internal/models"
)

type HydraulicInputSQLite struct {
	db *sql.DB
}

func NewHydraulicInputSQLite(db *sql.DB) *HydraulicInputSQLite {
	return &HydraulicInputSQLite{db: db}
}

var _ HydraulicInputRepo = (*HydraulicInputSQLite)(nil)

const (
	selectInputsByMachineSQL = `
		SELECT id, machine_id, input_number, color, sort_order
		FROM hydraulic_inputs
		WHERE machine_id = ?
		ORDER BY sort_order ASC
	`
	shiftInputsSQL = `UPDATE hydraulic_inputs SET sort_order = sort_order + 1 WHERE machine_id = ? AND sort_order >= ?`
	insertInputSQL = `INSERT INTO hydraulic_inputs (machine_id, input_number, color, sort_order) VALUES (?, ?, ?, ?)`
	updateInputSQL = `UPDATE hydraulic_inputs SET input_number=?, color=?, sort_order=? WHERE id=?`
	deleteInputSQL = `DELETE FROM hydraulic_inputs WHERE id = ?`
)

func (r *HydraulicInputSQLite) ListByMachine(ctx context.Context, machineID int64) ([]models.HydraulicInput, error) {
	rows, err := r.db.QueryContext(ctx, selectInputsByMachineSQL, machineID)
	if err != nil {
		return nil, fmt.Errorf("select hydraulic inputs for machine %d: %w", machineID, err)
	}
	defer rows.Close()

	out := make([]models.HydraulicInput, 0, 4)
	for rows.Next() {
		var in models.HydraulicInput
		if err := rows.Scan(&in.ID, &in.MachineID, &in.InputNumber, &in.Color, &in.Order); err != nil {
			return nil, fmt.Errorf("scan hydraulic input: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// Create defaults the order to the input number, as inputs are usually listed by number.
func (r *HydraulicInputSQLite) Create(ctx context.Context, in models.HydraulicInput) (int64, error) {
	order := in.Order
	if order < 1 {
		order = in.InputNumber
	}
	order = normalizeOrder(order)
	id, err := insertShifted(ctx, r.db, shiftInputsSQL, in.MachineID, order, insertInputSQL,
		in.MachineID, in.InputNumber, in.Color, order,
	)
	if err != nil {
		return 0, fmt.Errorf("insert hydraulic input %d for machine %d: %w", in.InputNumber, in.MachineID, err)
	}
	return id, nil
}

func (r *HydraulicInputSQLite) Update(ctx context.Context, in models.HydraulicInput) error {
	err := execAffectingOne(ctx, r.db, updateInputSQL, in.InputNumber, in.Color, normalizeOrder(in.Order), in.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("update hydraulic input %d: %w", in.ID, err)
	}
	return err
}

func (r *HydraulicInputSQLite) Delete(ctx context.Context, id int64) error {
	err := execAffectingOne(ctx, r.db, deleteInputSQL, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete hydraulic input %d: %w", id, err)
	}
	return err
}
