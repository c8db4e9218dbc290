package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hose_installation/internal/models"
)

type AttachmentSQLite struct {
	db *sql.DB
}

func NewAttachmentSQLite(db *sql.DB) *AttachmentSQLite {
	return &AttachmentSQLite{db: db}
}

var _ AttachmentRepo = (*AttachmentSQLite)(nil)

const (
	selectAttachmentsSQL = `SELECT id, name, type, description, created_at FROM attachments ORDER BY name ASC`

	// Attachments reach machines through the attachment_machines junction table.
	selectAttachmentsByMachineSQL = `
		SELECT a.id, a.name, a.type, a.description, a.created_at
		FROM attachments a
		JOIN attachment_machines am ON am.attachment_id = a.id
		WHERE am.machine_id = ?
		ORDER BY a.name ASC
	`
	selectAttachmentByIDSQL = `SELECT id, name, type, description, created_at FROM attachments WHERE id = ?`

	insertAttachmentSQL = `INSERT INTO attachments (name, type, description, created_at) VALUES (?, ?, ?, ?)`
	updateAttachmentSQL = `UPDATE attachments SET name=?, type=?, description=? WHERE id=?`
	deleteAttachmentSQL = `DELETE FROM attachments WHERE id = ?`

	linkAttachmentSQL   = `INSERT OR IGNORE INTO attachment_machines (attachment_id, machine_id) VALUES (?, ?)`
	unlinkAttachmentSQL = `DELETE FROM attachment_machines WHERE attachment_id = ? AND machine_id = ?`
)

func scanAttachment(row rowScanner) (models.Attachment, error) {
	var a models.Attachment
	err := row.Scan(&a.ID, &a.Name, &a.Type, &a.Description, &a.CreatedAt)
	a.CreatedAt = a.CreatedAt.UTC()
	return a, err
}

func (r *AttachmentSQLite) queryAttachments(ctx context.Context, query string, args ...any) ([]models.Attachment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Attachment, 0, 8)
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AttachmentSQLite) List(ctx context.Context) ([]models.Attachment, error) {
	out, err := r.queryAttachments(ctx, selectAttachmentsSQL)
	if err != nil {
		return nil, fmt.Errorf("select attachments: %w", err)
	}
	return out, nil
}

// ListByMachine returns the attachments linked to a machine.
func (r *AttachmentSQLite) ListByMachine(ctx context.Context, machineID int64) ([]models.Attachment, error) {
	out, err := r.queryAttachments(ctx, selectAttachmentsByMachineSQL, machineID)
	if err != nil {
		return nil, fmt.Errorf("select attachments for machine %d: %w", machineID, err)
	}
	return out, nil
}

func (r *AttachmentSQLite) GetByID(ctx context.Context, id int64) (models.Attachment, error) {
	a, err := scanAttachment(r.db.QueryRowContext(ctx, selectAttachmentByIDSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Attachment{}, ErrNotFound
		}
		return models.Attachment{}, fmt.Errorf("select attachment %d: %w", id, err)
	}
	return a, nil
}

func (r *AttachmentSQLite) Create(ctx context.Context, a models.Attachment) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertAttachmentSQL, a.Name, a.Type, a.Description, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("insert attachment %q: %w", a.Name, err)
	}
	return res.LastInsertId()
}

func (r *AttachmentSQLite) Update(ctx context.Context, a models.Attachment) error {
	err := execAffectingOne(ctx, r.db, updateAttachmentSQL, a.Name, a.Type, a.Description, a.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("update attachment %d: %w", a.ID, err)
	}
	return err
}

func (r *AttachmentSQLite) Delete(ctx context.Context, id int64) error {
	err := execAffectingOne(ctx, r.db, deleteAttachmentSQL, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete attachment %d: %w", id, err)
	}
	return err
}

func (r *AttachmentSQLite) LinkMachine(ctx context.Context, attachmentID, machineID int64) error {
	if _, err := r.db.ExecContext(ctx, linkAttachmentSQL, attachmentID, machineID); err != nil {
		return fmt.Errorf("link attachment %d to machine %d: %w", attachmentID, machineID, err)
	}
	return nil
}

func (r *AttachmentSQLite) UnlinkMachine(ctx context.Context, attachmentID, machineID int64) error {
	err := execAffectingOne(ctx, r.db, unlinkAttachmentSQL, attachmentID, machineID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("unlink attachment %d from machine %d: %w", attachmentID, machineID, err)
	}
	return err
}
