package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"hose_installation/internal/models"
)

// ErrNotFound is returned by single-row lookups that match nothing.
var ErrNotFound = errors.New("record not found")

type Authorization interface {
	Create(username, hash, role string) (int, error)
	GetByUsername(username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateRole(ctx context.Context, id int, role string) error
}

type MachineRepo interface {
	List(ctx context.Context) ([]models.Machine, error)
	GetByID(ctx context.Context, id int64) (models.Machine, error)
	Create(ctx context.Context, m models.Machine) (int64, error)
	Update(ctx context.Context, m models.Machine) error
	Delete(ctx context.Context, id int64) error
}

type AttachmentRepo interface {
	List(ctx context.Context) ([]models.Attachment, error)
	ListByMachine(ctx context.Context, machineID int64) ([]models.Attachment, error)
	GetByID(ctx context.Context, id int64) (models.Attachment, error)
	Create(ctx context.Context, a models.Attachment) (int64, error)
	Update(ctx context.Context, a models.Attachment) error
	Delete(ctx context.Context, id int64) error
	LinkMachine(ctx context.Context, attachmentID, machineID int64) error
	UnlinkMachine(ctx context.Context, attachmentID, machineID int64) error
}

type StepRepo interface {
	ListByAttachment(ctx context.Context, attachmentID int64) ([]models.InstallationStep, error)
	Create(ctx context.Context, s models.InstallationStep) (int64, error)
	Update(ctx context.Context, s models.InstallationStep) error
	Delete(ctx context.Context, id int64) error
}

// ValveRepo, CouplingRepo and HydraulicInputRepo keep rows ordered per machine;
// inserting at an occupied order shifts the following rows down by one.
type ValveRepo interface {
	ListByMachine(ctx context.Context, machineID int64) ([]models.Valve, error)
	Create(ctx context.Context, v models.Valve) (int64, error)
	Update(ctx context.Context, v models.Valve) error
	Delete(ctx context.Context, id int64) error
}

type CouplingRepo interface {
	ListByMachine(ctx context.Context, machineID int64) ([]models.HoseCoupling, error)
	Create(ctx context.Context, c models.HoseCoupling) (int64, error)
	Update(ctx context.Context, c models.HoseCoupling) error
	Delete(ctx context.Context, id int64) error
}

type HydraulicInputRepo interface {
	ListByMachine(ctx context.Context, machineID int64) ([]models.HydraulicInput, error)
	Create(ctx context.Context, in models.HydraulicInput) (int64, error)
	Update(ctx context.Context, in models.HydraulicInput) error
	Delete(ctx context.Context, id int64) error
}

type InstallationRepo interface {
	GetByID(ctx context.Context, id int64) (models.Installation, error)
	Create(ctx context.Context, in models.Installation) (int64, error)
	ListByUser(ctx context.Context, userID int) ([]models.Installation, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.InstallationEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.InstallationEvent, error)
}

type Repository struct {
	Machines        MachineRepo
	Attachments     AttachmentRepo
	Steps           StepRepo
	Valves          ValveRepo
	Couplings       CouplingRepo
	HydraulicInputs HydraulicInputRepo
	Installations   InstallationRepo
	EventRepo       EventRepo
	Auth            Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Machines:        NewMachineSQLite(db),
		Attachments:     NewAttachmentSQLite(db),
		Steps:           NewStepSQLite(db),
		Valves:          NewValveSQLite(db),
		Couplings:       NewCouplingSQLite(db),
		HydraulicInputs: NewHydraulicInputSQLite(db),
		Installations:   NewInstallationSQLite(db),
		EventRepo:       NewEventSQLite(db),
		Auth:            NewUserRepository(db),
	}
}

// execAffectingOne runs a write that must hit exactly one row.
func execAffectingOne(ctx context.Context, db *sql.DB, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// insertShifted opens a gap at sortOrder for the given machine and inserts a row into it.
func insertShifted(ctx context.Context, db *sql.DB, shiftSQL string, machineID int64, sortOrder int, insertSQL string, args ...any) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, shiftSQL, machineID, sortOrder); err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, insertSQL, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func normalizeOrder(order int) int {
	if order < 1 {
		return 1
	}
	return order
}
