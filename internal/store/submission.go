package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/snapreward/apiserver/types"
)

// UnknownCampaignName is the placeholder attached to submissions whose
// campaign has since been deleted.
const UnknownCampaignName = "Unknown Campaign"

// SubmissionRepository handles persistence for photo submissions.
type SubmissionRepository struct {
	db *sql.DB
}

func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// List returns all submissions newest first, each annotated with its
// campaign's display name.
func (r *SubmissionRepository) List(ctx context.Context) ([]types.SubmissionWithCampaign, error) {
	const query = `
		SELECT s.id, s.campaign_id, s.customer_name, s.phone, s.image_url, s.status, s.created_at,
			COALESCE(c.name, '')
		FROM submissions s
		LEFT JOIN campaigns c ON c.id = s.campaign_id
		ORDER BY s.created_at DESC, s.id DESC`
	return r.queryMany(ctx, query)
}

// ListByCampaign returns the submissions for one campaign, newest first.
func (r *SubmissionRepository) ListByCampaign(ctx context.Context, campaignID int) ([]types.SubmissionWithCampaign, error) {
	const query = `
		SELECT s.id, s.campaign_id, s.customer_name, s.phone, s.image_url, s.status, s.created_at,
			COALESCE(c.name, '')
		FROM submissions s
		LEFT JOIN campaigns c ON c.id = s.campaign_id
		WHERE s.campaign_id = $1
		ORDER BY s.created_at DESC, s.id DESC`
	return r.queryMany(ctx, query, campaignID)
}

func (r *SubmissionRepository) GetByID(ctx context.Context, id int) (types.Submission, error) {
	const query = `
		SELECT id, campaign_id, customer_name, phone, image_url, status, created_at
		FROM submissions
		WHERE id = $1`
	var submission types.Submission
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&submission.ID,
		&submission.CampaignID,
		&submission.CustomerName,
		&submission.Phone,
		&submission.ImageURL,
		&submission.Status,
		&submission.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Submission{}, ErrNotFound
		}
		return types.Submission{}, err
	}
	return submission, nil
}

func (r *SubmissionRepository) Create(ctx context.Context, submission types.Submission) (types.Submission, error) {
	submission.CreatedAt = time.Now()

	const query = `
		INSERT INTO submissions (campaign_id, customer_name, phone, image_url, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		submission.CampaignID,
		submission.CustomerName,
		submission.Phone,
		submission.ImageURL,
		submission.Status,
		submission.CreatedAt,
	).Scan(&submission.ID); err != nil {
		return types.Submission{}, err
	}
	return submission, nil
}

// UpdateStatus sets the review status of a submission.
func (r *SubmissionRepository) UpdateStatus(ctx context.Context, id int, status string) (types.Submission, error) {
	const query = `
		UPDATE submissions
		SET status = $1
		WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return types.Submission{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Submission{}, err
	}
	if affected == 0 {
		return types.Submission{}, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *SubmissionRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM submissions WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SubmissionRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(1) FROM submissions`
	var total int
	if err := r.db.QueryRowContext(ctx, query).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *SubmissionRepository) queryMany(ctx context.Context, query string, args ...any) ([]types.SubmissionWithCampaign, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	submissions := make([]types.SubmissionWithCampaign, 0)
	for rows.Next() {
		var submission types.SubmissionWithCampaign
		if err := rows.Scan(
			&submission.ID,
			&submission.CampaignID,
			&submission.CustomerName,
			&submission.Phone,
			&submission.ImageURL,
			&submission.Status,
			&submission.CreatedAt,
			&submission.CampaignName,
		); err != nil {
			return nil, err
		}
		if submission.CampaignName == "" {
			submission.CampaignName = UnknownCampaignName
		}
		submissions = append(submissions, submission)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return submissions, nil
}
