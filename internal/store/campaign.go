package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/snapreward/apiserver/types"
)

// CampaignRepository handles persistence for campaigns.
type CampaignRepository struct {
	db *sql.DB
}

func NewCampaignRepository(db *sql.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

func (r *CampaignRepository) List(ctx context.Context) ([]types.Campaign, error) {
	const query = `
		SELECT id, name, description, reward_type, reward_value, end_date, status, slug, created_at
		FROM campaigns
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := make([]types.Campaign, 0)
	for rows.Next() {
		var campaign types.Campaign
		if err := rows.Scan(
			&campaign.ID,
			&campaign.Name,
			&campaign.Description,
			&campaign.RewardType,
			&campaign.RewardValue,
			&campaign.EndDate,
			&campaign.Status,
			&campaign.Slug,
			&campaign.CreatedAt,
		); err != nil {
			return nil, err
		}
		campaigns = append(campaigns, campaign)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return campaigns, nil
}

// ListWithCounts returns all campaigns annotated with their submission
// counts, newest first.
func (r *CampaignRepository) ListWithCounts(ctx context.Context) ([]types.CampaignWithCount, error) {
	const query = `
		SELECT c.id, c.name, c.description, c.reward_type, c.reward_value, c.end_date, c.status, c.slug, c.created_at,
			COUNT(s.id)
		FROM campaigns c
		LEFT JOIN submissions s ON s.campaign_id = c.id
		GROUP BY c.id
		ORDER BY c.created_at DESC, c.id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := make([]types.CampaignWithCount, 0)
	for rows.Next() {
		var campaign types.CampaignWithCount
		if err := rows.Scan(
			&campaign.ID,
			&campaign.Name,
			&campaign.Description,
			&campaign.RewardType,
			&campaign.RewardValue,
			&campaign.EndDate,
			&campaign.Status,
			&campaign.Slug,
			&campaign.CreatedAt,
			&campaign.SubmissionCount,
		); err != nil {
			return nil, err
		}
		campaigns = append(campaigns, campaign)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return campaigns, nil
}

func (r *CampaignRepository) GetByID(ctx context.Context, id int) (types.Campaign, error) {
	const query = `
		SELECT id, name, description, reward_type, reward_value, end_date, status, slug, created_at
		FROM campaigns
		WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *CampaignRepository) GetBySlug(ctx context.Context, slug string) (types.Campaign, error) {
	const query = `
		SELECT id, name, description, reward_type, reward_value, end_date, status, slug, created_at
		FROM campaigns
		WHERE slug = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, slug))
}

func (r *CampaignRepository) Create(ctx context.Context, campaign types.Campaign) (types.Campaign, error) {
	campaign.CreatedAt = time.Now()

	const query = `
		INSERT INTO campaigns (name, description, reward_type, reward_value, end_date, status, slug, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		campaign.Name,
		campaign.Description,
		campaign.RewardType,
		campaign.RewardValue,
		campaign.EndDate,
		campaign.Status,
		campaign.Slug,
		campaign.CreatedAt,
	).Scan(&campaign.ID); err != nil {
		return types.Campaign{}, translateError(err)
	}
	return campaign, nil
}

// Update persists the full campaign record except the slug, which is
// immutable after creation.
func (r *CampaignRepository) Update(ctx context.Context, campaign types.Campaign) (types.Campaign, error) {
	const query = `
		UPDATE campaigns
		SET name = $1,
			description = $2,
			reward_type = $3,
			reward_value = $4,
			end_date = $5,
			status = $6
		WHERE id = $7`
	result, err := r.db.ExecContext(
		ctx,
		query,
		campaign.Name,
		campaign.Description,
		campaign.RewardType,
		campaign.RewardValue,
		campaign.EndDate,
		campaign.Status,
		campaign.ID,
	)
	if err != nil {
		return types.Campaign{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Campaign{}, err
	}
	if affected == 0 {
		return types.Campaign{}, ErrNotFound
	}
	return campaign, nil
}

func (r *CampaignRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM campaigns WHERE id = $1`
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

// Counts returns the total and active campaign counts.
func (r *CampaignRepository) Counts(ctx context.Context) (total, active int, err error) {
	const query = `
		SELECT COUNT(1), COUNT(1) FILTER (WHERE status = 'active')
		FROM campaigns`
	if err := r.db.QueryRowContext(ctx, query).Scan(&total, &active); err != nil {
		return 0, 0, err
	}
	return total, active, nil
}

func (r *CampaignRepository) scanOne(row *sql.Row) (types.Campaign, error) {
	var campaign types.Campaign
	err := row.Scan(
		&campaign.ID,
		&campaign.Name,
		&campaign.Description,
		&campaign.RewardType,
		&campaign.RewardValue,
		&campaign.EndDate,
		&campaign.Status,
		&campaign.Slug,
		&campaign.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Campaign{}, ErrNotFound
		}
		return types.Campaign{}, err
	}
	return campaign, nil
}
