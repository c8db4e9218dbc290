package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"hose_installation/internal/models"
)

type StepSQLite struct {
	db *sql.DB
}

func NewStepSQLite(db *sql.DB) *StepSQLite {
	return &StepSQLite{db: db}
}

var _ StepRepo = (*StepSQLite)(nil)

const (
	selectStepsByAttachmentSQL = `
		SELECT id, attachment_id, step_number, description, image_url, scan_required, expected_position
		FROM installation_steps
		WHERE attachment_id = ?
		ORDER BY step_number ASC
	`
	insertStepSQL = `
		INSERT INTO installation_steps (attachment_id, step_number, description, image_url, scan_required, expected_position)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	updateStepSQL = `
		UPDATE installation_steps
		SET step_number=?, description=?, image_url=?, scan_required=?, expected_position=?
		WHERE id=?
	`
	deleteStepSQL = `DELETE FROM installation_steps WHERE id = ?`
)

// nullIfEmpty stores empty optional text as NULL.
func nullIfEmpty(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

// ListByAttachment returns an attachment's steps ordered by step number.
func (r *StepSQLite) ListByAttachment(ctx context.Context, attachmentID int64) ([]models.InstallationStep, error) {
	rows, err := r.db.QueryContext(ctx, selectStepsByAttachmentSQL, attachmentID)
	if err != nil {
		return nil, fmt.Errorf("select steps for attachment %d: %w", attachmentID, err)
	}
	defer rows.Close()

	out := make([]models.InstallationStep, 0, 8)
	for rows.Next() {
		var (
			s        models.InstallationStep
			imageURL sql.NullString
			position sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.AttachmentID, &s.StepNumber, &s.Description, &imageURL, &s.ScanRequired, &position); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		s.ImageURL = imageURL.String
		s.ExpectedPosition = position.String
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *StepSQLite) Create(ctx context.Context, s models.InstallationStep) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertStepSQL,
		s.AttachmentID, s.StepNumber, s.Description, nullIfEmpty(s.ImageURL), s.ScanRequired, nullIfEmpty(s.ExpectedPosition),
	)
	if err != nil {
		return 0, fmt.Errorf("insert step %d for attachment %d: %w", s.StepNumber, s.AttachmentID, err)
	}
	return res.LastInsertId()
}

func (r *StepSQLite) Update(ctx context.Context, s models.InstallationStep) error {
	err := execAffectingOne(ctx, r.db, updateStepSQL,
		s.StepNumber, s.Description, nullIfEmpty(s.ImageURL), s.ScanRequired, nullIfEmpty(s.ExpectedPosition), s.ID,
	)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("update step %d: %w", s.ID, err)
	}
	return err
}

func (r *StepSQLite) Delete(ctx context.Context, id int64) error {
	err := execAffectingOne(ctx, r.db, deleteStepSQL, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete step %d: %w", id, err)
	}
	return err
}
