package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hose_installation/internal/models"
)

type CouplingSQLite struct {
	db *sql.DB
}

func NewCouplingSQLite(db *sql.DB) *CouplingSQLite {
	return &CouplingSQLite{db: db}
}

var _ CouplingRepo = (*CouplingSQLite)(nil)

const (
	selectCouplingsByMachineSQL = `
		SELECT id, machine_id, attachment_id, hose_number, hose_color, hose_label, valve_id, port,
		       function_description, instruction_text, connection_type, pressure_rating, flow_rating, sort_order
		FROM hose_couplings
		WHERE machine_id = ?
		ORDER BY sort_order ASC
	`
	shiftCouplingsSQL = `UPDATE hose_couplings SET sort_order = sort_order + 1 WHERE machine_id = ? AND sort_order >= ?`
	insertCouplingSQL = `
		INSERT INTO hose_couplings (machine_id, attachment_id, hose_number, hose_color, hose_label, valve_id, port,
		                            function_description, instruction_text, connection_type, pressure_rating,
		                            flow_rating, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	updateCouplingSQL = `
		UPDATE hose_couplings
		SET attachment_id=?, hose_number=?, hose_color=?, hose_label=?, valve_id=?, port=?, function_description=?,
		    instruction_text=?, connection_type=?, pressure_rating=?, flow_rating=?, sort_order=?
		WHERE id=?
	`
	deleteCouplingSQL = `DELETE FROM hose_couplings WHERE id = ?`
)

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func (r *CouplingSQLite) ListByMachine(ctx context.Context, machineID int64) ([]models.HoseCoupling, error) {
	rows, err := r.db.QueryContext(ctx, selectCouplingsByMachineSQL, machineID)
	if err != nil {
		return nil, fmt.Errorf("select couplings for machine %d: %w", machineID, err)
	}
	defer rows.Close()

	out := make([]models.HoseCoupling, 0, 8)
	for rows.Next() {
		var (
			c            models.HoseCoupling
			attachmentID sql.NullInt64
		)
		if err := rows.Scan(&c.ID, &c.MachineID, &attachmentID, &c.HoseNumber, &c.HoseColor, &c.HoseLabel,
			&c.ValveID, &c.Port, &c.FunctionDescription, &c.InstructionText, &c.ConnectionType,
			&c.PressureRating, &c.FlowRating, &c.Order); err != nil {
			return nil, fmt.Errorf("scan coupling: %w", err)
		}
		if attachmentID.Valid {
			id := attachmentID.Int64
			c.AttachmentID = &id
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CouplingSQLite) Create(ctx context.Context, c models.HoseCoupling) (int64, error) {
	order := normalizeOrder(c.Order)
	id, err := insertShifted(ctx, r.db, shiftCouplingsSQL, c.MachineID, order, insertCouplingSQL,
		c.MachineID, nullableID(c.AttachmentID), c.HoseNumber, c.HoseColor, c.HoseLabel, c.ValveID, c.Port,
		c.FunctionDescription, c.InstructionText, c.ConnectionType, c.PressureRating, c.FlowRating, order,
	)
	if err != nil {
		return 0, fmt.Errorf("insert coupling %d for machine %d: %w", c.HoseNumber, c.MachineID, err)
	}
	return id, nil
}

func (r *CouplingSQLite) Update(ctx context.Context, c models.HoseCoupling) error {
	err := execAffectingOne(ctx, r.db, updateCouplingSQL,
		nullableID(c.AttachmentID), c.HoseNumber, c.HoseColor, c.HoseLabel, c.ValveID, c.Port,
		c.FunctionDescription, c.InstructionText, c.ConnectionType, c.PressureRating, c.FlowRating,
		normalizeOrder(c.Order), c.ID,
	)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("update coupling %d: %w", c.ID, err)
	}
	return err
}

func (r *CouplingSQLite) Delete(ctx context.Context, id int64) error {
	err := execAffectingOne(ctx, r.db, deleteCouplingSQL, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete coupling %d: %w", id, err)
	}
	return err
}
