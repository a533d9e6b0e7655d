package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bobarin/reelcut/internal/models"
	"github.com/google/uuid"
)

func (db *DB) CreateExportJob(ctx context.Context, id, projectID uuid.UUID) error {
	query := `
		INSERT INTO export_jobs (id, project_id, status)
		VALUES ($1, $2, $3)
	`

	if _, err := db.ExecContext(ctx, query, id, projectID, models.ExportQueued); err != nil {
		return fmt.Errorf("failed to create export job: %w", err)
	}
	return nil
}

func (db *DB) UpdateExportJob(ctx context.Context, id uuid.UUID, status models.ExportJobState, progress int, errMsg string) error {
	query := `
		UPDATE export_jobs
		SET status = $2, progress = $3, error_message = $4, updated_at = NOW()
		WHERE id = $1
	`

	if _, err := db.ExecContext(ctx, query, id, status, progress, errMsg); err != nil {
		return fmt.Errorf("failed to update export job: %w", err)
	}
	return nil
}

func (db *DB) GetExportJob(ctx context.Context, id uuid.UUID) (*models.ExportJobStatus, error) {
	query := `
		SELECT id, status, progress, COALESCE(error_message, '')
		FROM export_jobs
		WHERE id = $1
	`

	status := &models.ExportJobStatus{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&status.JobID, &status.Status, &status.Progress, &status.Error,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("export job not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get export job: %w", err)
	}

	return status, nil
}
