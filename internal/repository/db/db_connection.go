package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens/creates a SQLite DB file and ensures tables exist.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// Conservative pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is not great with many writers
	db.SetMaxIdleConns(1)

	// Pragmas to improve reliability
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set PRAGMA journal_mode=WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set PRAGMA foreign_keys=ON: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set PRAGMA busy_timeout=5000: %w", err)
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Fail fast if the DB cannot be reached
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

const sqliteDriverName = "sqlite"

const schemaMachines = `
CREATE TABLE IF NOT EXISTS machines (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    type TEXT NOT NULL DEFAULT '',
    working_pressure_bar REAL NOT NULL DEFAULT 0,
    max_pressure_bar REAL NOT NULL DEFAULT 0,
    flow_lpm REAL NOT NULL DEFAULT 0,
    power_w REAL NOT NULL DEFAULT 0,
    description TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);
`

const schemaAttachments = `
CREATE TABLE IF NOT EXISTS attachments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    type TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);
`

const schemaAttachmentMachines = `
CREATE TABLE IF NOT EXISTS attachment_machines (
    attachment_id INTEGER NOT NULL REFERENCES attachments(id) ON DELETE CASCADE,
    machine_id INTEGER NOT NULL REFERENCES machines(id) ON DELETE CASCADE,
    PRIMARY KEY (attachment_id, machine_id)
);
`

const schemaInstallationSteps = `
CREATE TABLE IF NOT EXISTS installation_steps (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    attachment_id INTEGER NOT NULL REFERENCES attachments(id) ON DELETE CASCADE,
    step_number INTEGER NOT NULL,
    description TEXT NOT NULL,
    image_url TEXT,
    scan_required BOOLEAN NOT NULL DEFAULT 0,
    expected_position TEXT
);
`

const schemaMachineValves = `
CREATE TABLE IF NOT EXISTS machine_valves (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    machine_id INTEGER NOT NULL REFERENCES machines(id) ON DELETE CASCADE,
    valve_number INTEGER NOT NULL,
    function_name TEXT NOT NULL,
    position TEXT NOT NULL,
    valve_type TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    color_code TEXT NOT NULL DEFAULT '',
    port_a_label TEXT NOT NULL DEFAULT 'A',
    port_b_label TEXT NOT NULL DEFAULT 'B',
    sort_order INTEGER NOT NULL DEFAULT 1,
    active BOOLEAN NOT NULL DEFAULT 1
);
`

const schemaHoseCouplings = `
CREATE TABLE IF NOT EXISTS hose_couplings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    machine_id INTEGER NOT NULL REFERENCES machines(id) ON DELETE CASCADE,
    attachment_id INTEGER REFERENCES attachments(id) ON DELETE CASCADE,
    hose_number INTEGER NOT NULL,
    hose_color TEXT NOT NULL,
    hose_label TEXT NOT NULL,
    valve_id INTEGER NOT NULL REFERENCES machine_valves(id) ON DELETE CASCADE,
    port TEXT NOT NULL,
    function_description TEXT NOT NULL,
    instruction_text TEXT NOT NULL,
    connection_type TEXT NOT NULL,
    pressure_rating REAL NOT NULL,
    flow_rating REAL NOT NULL,
    sort_order INTEGER NOT NULL DEFAULT 1
);
`

const schemaHydraulicInputs = `
CREATE TABLE IF NOT EXISTS hydraulic_inputs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    machine_id INTEGER NOT NULL REFERENCES machines(id) ON DELETE CASCADE,
    input_number INTEGER NOT NULL,
    color TEXT NOT NULL,
    sort_order INTEGER NOT NULL DEFAULT 1
);
`

const schemaUsers = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'user',
    created_at TIMESTAMP NOT NULL
);
`

const schemaUserInstallations = `
CREATE TABLE IF NOT EXISTS user_installations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    machine_id INTEGER NOT NULL REFERENCES machines(id) ON DELETE CASCADE,
    attachment_id INTEGER NOT NULL REFERENCES attachments(id) ON DELETE CASCADE,
    created_at TIMESTAMP NOT NULL
);
`

const schemaInstallationEvents = `
CREATE TABLE IF NOT EXISTS installation_events (
    id TEXT PRIMARY KEY,
    occurred_at TIMESTAMP NOT NULL,
    type TEXT NOT NULL,
    message TEXT NOT NULL,
    meta TEXT
);
`

// EnsureSchema creates missing tables on an already opened database.
func EnsureSchema(db *sql.DB) error {
	return ensureSchema(db)
}

func ensureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		// In case of panic, rollback to avoid leaving an open transaction
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{
		schemaMachines,
		schemaAttachments,
		schemaAttachmentMachines,
		schemaInstallationSteps,
		schemaMachineValves,
		schemaHoseCouplings,
		schemaHydraulicInputs,
		schemaUsers,
		schemaUserInstallations,
		schemaInstallationEvents,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
