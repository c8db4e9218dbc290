package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hose_installation/internal/models"
)

type MachineSQLite struct {
	db *sql.DB
}

func NewMachineSQLite(db *sql.DB) *MachineSQLite {
	return &MachineSQLite{db: db}
}

var _ MachineRepo = (*MachineSQLite)(nil)

const (
	machineColumns = `id, name, type, working_pressure_bar, max_pressure_bar, flow_lpm, power_w, description, created_at`

	selectMachinesSQL    = `SELECT ` + machineColumns + ` FROM machines ORDER BY name ASC`
	selectMachineByIDSQL = `SELECT ` + machineColumns + ` FROM machines WHERE id = ?`

	insertMachineSQL = `
		INSERT INTO machines (name, type, working_pressure_bar, max_pressure_bar, flow_lpm, power_w, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	updateMachineSQL = `
		UPDATE machines SET name=?, type=?, working_pressure_bar=?, max_pressure_bar=?, flow_lpm=?, power_w=?, description=?
		WHERE id=?
	`
	deleteMachineSQL = `DELETE FROM machines WHERE id = ?`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMachine(row rowScanner) (models.Machine, error) {
	var m models.Machine
	err := row.Scan(&m.ID, &m.Name, &m.Type, &m.WorkingPressureBar, &m.MaxPressureBar, &m.FlowLPM, &m.PowerW, &m.Description, &m.CreatedAt)
	m.CreatedAt = m.CreatedAt.UTC()
	return m, err
}

// List returns all machines ordered by name.
func (r *MachineSQLite) List(ctx context.Context) ([]models.Machine, error) {
	rows, err := r.db.QueryContext(ctx, selectMachinesSQL)
	if err != nil {
		return nil, fmt.Errorf("select machines: %w", err)
	}
	defer rows.Close()

	out := make([]models.Machine, 0, 16)
	for rows.Next() {
		m, err := scanMachine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan machine: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MachineSQLite) GetByID(ctx context.Context, id int64) (models.Machine, error) {
	m, err := scanMachine(r.db.QueryRowContext(ctx, selectMachineByIDSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Machine{}, ErrNotFound
		}
		return models.Machine{}, fmt.Errorf("select machine %d: %w", id, err)
	}
	return m, nil
}

func (r *MachineSQLite) Create(ctx context.Context, m models.Machine) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertMachineSQL,
		m.Name, m.Type, m.WorkingPressureBar, m.MaxPressureBar, m.FlowLPM, m.PowerW, m.Description,
		time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert machine %q: %w", m.Name, err)
	}
	return res.LastInsertId()
}

func (r *MachineSQLite) Update(ctx context.Context, m models.Machine) error {
	err := execAffectingOne(ctx, r.db, updateMachineSQL,
		m.Name, m.Type, m.WorkingPressureBar, m.MaxPressureBar, m.FlowLPM, m.PowerW, m.Description, m.ID,
	)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("update machine %d: %w", m.ID, err)
	}
	return err
}

func (r *MachineSQLite) Delete(ctx context.Context, id int64) error {
	err := execAffectingOne(ctx, r.db, deleteMachineSQL, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete machine %d: %w", id, err)
	}
	return err
}
