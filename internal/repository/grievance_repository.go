package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shresth17/SahayAI/internal/models"
)

var ErrGrievanceNotFound = errors.New("grievance not found")

const grievanceColumns = `
	id, user_id, title, description, category, status, spam_flag, spam_confidence, category_confidence, attachment_bucket, attachment_key, created_at, updated_at
`

type GrievanceRepository struct {
	pool *pgxpool.Pool
}

func NewGrievanceRepository(pool *pgxpool.Pool) *GrievanceRepository {
	return &GrievanceRepository{pool: pool}
}

func (r *GrievanceRepository) Create(ctx context.Context, g models.Grievance) error {
	const query = `
		INSERT INTO grievances (
			id, user_id, title, description, category, status, spam_flag, spam_confidence, category_confidence, attachment_bucket, attachment_key, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		g.ID,
		g.UserID,
		g.Title,
		g.Description,
		g.Category,
		g.Status,
		g.SpamFlag,
		g.SpamConfidence,
		g.CategoryConfidence,
		g.AttachmentBucket,
		g.AttachmentKey,
	)
	return err
}

func (r *GrievanceRepository) GetByID(ctx context.Context, id string) (models.Grievance, error) {
	const query = `SELECT ` + grievanceColumns + ` FROM grievances WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *GrievanceRepository) ListByUser(ctx context.Context, userID string) ([]models.Grievance, error) {
	const query = `
		SELECT ` + grievanceColumns + `
		FROM grievances
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// ListFilter narrows the admin listing. Empty fields match everything.
type ListFilter struct {
	Status   models.GrievanceStatus
	Category string
}

func (r *GrievanceRepository) List(ctx context.Context, filter ListFilter, limit int, offset int) ([]models.Grievance, error) {
	const query = `
		SELECT ` + grievanceColumns + `
		FROM grievances
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR category = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.pool.Query(ctx, query, string(filter.Status), filter.Category, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

func (r *GrievanceRepository) UpdateStatus(ctx context.Context, id string, status models.GrievanceStatus) error {
	const query = `UPDATE grievances SET status = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrGrievanceNotFound
	}
	return nil
}

// ApplyAnalysis records classifier output and moves the grievance out of
// the analyzing state.
func (r *GrievanceRepository) ApplyAnalysis(ctx context.Context, id string, category string, categoryConfidence float64, spam bool, spamConfidence float64, status models.GrievanceStatus) error {
	const query = `
		UPDATE grievances
		SET category = $2,
		    category_confidence = $3,
		    spam_flag = $4,
		    spam_confidence = $5,
		    status = $6,
		    updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, category, categoryConfidence, spam, spamConfidence, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrGrievanceNotFound
	}
	return nil
}

// ListStuck returns grievances still analyzing after the cutoff, so the
// scheduler can re-enqueue them.
func (r *GrievanceRepository) ListStuck(ctx context.Context, olderThan time.Duration, limit int) ([]models.Grievance, error) {
	const query = `
		SELECT ` + grievanceColumns + `
		FROM grievances
		WHERE status = $1 AND updated_at < $2
		ORDER BY updated_at ASC
		LIMIT $3
	`

	cutoff := time.Now().Add(-olderThan)
	rows, err := r.pool.Query(ctx, query, models.GrievanceStatusAnalyzing, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// ListSweepCandidates returns rejected spam grievances whose attachment
// is still stored past the retention window.
func (r *GrievanceRepository) ListSweepCandidates(ctx context.Context, olderThan time.Duration, limit int) ([]models.Grievance, error) {
	const query = `
		SELECT ` + grievanceColumns + `
		FROM grievances
		WHERE status = $1 AND spam_flag AND attachment_key <> '' AND updated_at < $2
		ORDER BY updated_at ASC
		LIMIT $3
	`

	cutoff := time.Now().Add(-olderThan)
	rows, err := r.pool.Query(ctx, query, models.GrievanceStatusRejected, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// ClearAttachment drops the attachment reference after the stored object
// has been removed.
func (r *GrievanceRepository) ClearAttachment(ctx context.Context, id string) error {
	const query = `UPDATE grievances SET attachment_bucket = '', attachment_key = '', updated_at = NOW() WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrGrievanceNotFound
	}
	return nil
}

func (r *GrievanceRepository) scanOne(row pgx.Row) (models.Grievance, error) {
	var g models.Grievance
	if err := scanGrievance(row, &g); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Grievance{}, ErrGrievanceNotFound
		}
		return models.Grievance{}, err
	}
	return g, nil
}

func (r *GrievanceRepository) scanAll(rows pgx.Rows) ([]models.Grievance, error) {
	var out []models.Grievance
	for rows.Next() {
		var g models.Grievance
		if err := scanGrievance(rows, &g); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func scanGrievance(row pgx.Row, g *models.Grievance) error {
	return row.Scan(
		&g.ID,
		&g.UserID,
		&g.Title,
		&g.Description,
		&g.Category,
		&g.Status,
		&g.SpamFlag,
		&g.SpamConfidence,
		&g.CategoryConfidence,
		&g.AttachmentBucket,
		&g.AttachmentKey,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
}
