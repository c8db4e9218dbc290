package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hose_installation/internal/models"
)

type InstallationSQLite struct {
	db *sql.DB
}

func NewInstallationSQLite(db *sql.DB) *InstallationSQLite {
	return &InstallationSQLite{db: db}
}

var _ InstallationRepo = (*InstallationSQLite)(nil)

const (
	selectInstallationByIDSQL = `SELECT id, user_id, machine_id, attachment_id, created_at FROM user_installations WHERE id = ?`
	selectInstallationsByUser = `
		SELECT id, user_id, machine_id, attachment_id, created_at
		FROM user_installations
		WHERE user_id = ?
		ORDER BY created_at DESC
	`
	insertInstallationSQL = `INSERT INTO user_installations (user_id, machine_id, attachment_id, created_at) VALUES (?, ?, ?, ?)`
)

func scanInstallation(row rowScanner) (models.Installation, error) {
	var in models.Installation
	err := row.Scan(&in.ID, &in.UserID, &in.MachineID, &in.AttachmentID, &in.CreatedAt)
	in.CreatedAt = in.CreatedAt.UTC()
	return in, err
}

func (r *InstallationSQLite) GetByID(ctx context.Context, id int64) (models.Installation, error) {
	in, err := scanInstallation(r.db.QueryRowContext(ctx, selectInstallationByIDSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Installation{}, ErrNotFound
		}
		return models.Installation{}, fmt.Errorf("select installation %d: %w", id, err)
	}
	return in, nil
}

func (r *InstallationSQLite) Create(ctx context.Context, in models.Installation) (int64, error) {
	ts := in.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	res, err := r.db.ExecContext(ctx, insertInstallationSQL, in.UserID, in.MachineID, in.AttachmentID, ts.UTC())
	if err != nil {
		return 0, fmt.Errorf("insert installation for user %d: %w", in.UserID, err)
	}
	return res.LastInsertId()
}

func (r *InstallationSQLite) ListByUser(ctx context.Context, userID int) ([]models.Installation, error) {
	rows, err := r.db.QueryContext(ctx, selectInstallationsByUser, userID)
	if err != nil {
		return nil, fmt.Errorf("select installations for user %d: %w", userID, err)
	}
	defer rows.Close()

	out := make([]models.Installation, 0, 4)
	for rows.Next() {
		in, err := scanInstallation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan installation: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}
