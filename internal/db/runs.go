package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"flightdeals/internal/models"
)

// runColumns is the standard column list for run queries.
const runColumns = `id, started_at, finished_at, destinations_checked, offers_found,
	notifications_sent, error`

func scanRun(row pgx.Row) (*models.Run, error) {
	var run models.Run
	err := row.Scan(
		&run.ID,
		&run.StartedAt,
		&run.FinishedAt,
		&run.DestinationsChecked,
		&run.OffersFound,
		&run.NotificationsSent,
		&run.Error,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// CreateRun records the start of a run.
func (d *DB) CreateRun(ctx context.Context, run *models.Run) error {
	_, err := d.Pool.Exec(ctx, `
		INSERT INTO runs (id, started_at)
		VALUES ($1, $2)
	`, run.ID, run.StartedAt)
	return err
}

// FinishRun stores the final counters and outcome of a run.
func (d *DB) FinishRun(ctx context.Context, run *models.Run) error {
	tag, err := d.Pool.Exec(ctx, `
		UPDATE runs
		SET finished_at = $2, destinations_checked = $3, offers_found = $4,
			notifications_sent = $5, error = $6
		WHERE id = $1
	`, run.ID, run.FinishedAt, run.DestinationsChecked, run.OffersFound, run.NotificationsSent, run.Error)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRunNotFound
	}
	return nil
}

// GetRun retrieves a run by ID.
func (d *DB) GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error) {
	row := d.Pool.QueryRow(ctx, `SELECT `+runColumns+` FROM runs WHERE id = $1`, id)
	return scanRun(row)
}

// ListRuns returns the most recent runs, newest first.
func (d *DB) ListRuns(ctx context.Context, limit int) ([]models.Run, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []models.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}
