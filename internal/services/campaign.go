package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/snapreward/apiserver/types"
)

// ErrInvalidStatus is returned for an unknown status value.
var ErrInvalidStatus = errors.New("invalid status")

const slugSuffixLength = 8

// CampaignRepository defines persistence operations for campaigns.
type CampaignRepository interface {
	List(ctx context.Context) ([]types.Campaign, error)
	ListWithCounts(ctx context.Context) ([]types.CampaignWithCount, error)
	GetByID(ctx context.Context, id int) (types.Campaign, error)
	GetBySlug(ctx context.Context, slug string) (types.Campaign, error)
	Create(ctx context.Context, campaign types.Campaign) (types.Campaign, error)
	Update(ctx context.Context, campaign types.Campaign) (types.Campaign, error)
	Delete(ctx context.Context, id int) error
	Counts(ctx context.Context) (total, active int, err error)
}

// CampaignPatch carries a partial campaign update. Nil fields are left
// untouched; the slug is never patchable.
type CampaignPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	RewardType  *string `json:"rewardType"`
	RewardValue *string `json:"rewardValue"`
	EndDate     *string `json:"endDate"`
	Status      *string `json:"status"`
}

// CampaignService encapsulates campaign use-cases.
type CampaignService struct {
	repo CampaignRepository
}

func NewCampaignService(repo CampaignRepository) *CampaignService {
	return &CampaignService{repo: repo}
}

func (s *CampaignService) ListWithCounts(ctx context.Context) ([]types.CampaignWithCount, error) {
	return s.repo.ListWithCounts(ctx)
}

func (s *CampaignService) GetByID(ctx context.Context, id int) (types.Campaign, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CampaignService) GetBySlug(ctx context.Context, slug string) (types.Campaign, error) {
	return s.repo.GetBySlug(ctx, slug)
}

// Create persists a new campaign. The slug is derived from the name
// plus a random suffix and never changes afterwards; status defaults
// to draft when unset.
func (s *CampaignService) Create(ctx context.Context, campaign types.Campaign) (types.Campaign, error) {
	if campaign.Status == "" {
		campaign.Status = types.CampaignStatusDraft
	}
	if !types.ValidCampaignStatus(campaign.Status) {
		return types.Campaign{}, ErrInvalidStatus
	}
	campaign.Slug = newSlug(campaign.Name)
	return s.repo.Create(ctx, campaign)
}

// Update shallow-merges the patch onto the stored record.
func (s *CampaignService) Update(ctx context.Context, id int, patch CampaignPatch) (types.Campaign, error) {
	campaign, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.Campaign{}, err
	}

	if patch.Name != nil {
		campaign.Name = *patch.Name
	}
	if patch.Description != nil {
		campaign.Description = *patch.Description
	}
	if patch.RewardType != nil {
		campaign.RewardType = *patch.RewardType
	}
	if patch.RewardValue != nil {
		campaign.RewardValue = *patch.RewardValue
	}
	if patch.EndDate != nil {
		campaign.EndDate = *patch.EndDate
	}
	if patch.Status != nil {
		if !types.ValidCampaignStatus(*patch.Status) {
			return types.Campaign{}, ErrInvalidStatus
		}
		campaign.Status = *patch.Status
	}

	return s.repo.Update(ctx, campaign)
}

func (s *CampaignService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// newSlug builds a URL-safe identifier from the campaign name plus a
// random suffix that makes collisions practically impossible.
func newSlug(name string) string {
	base := slugify(name)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:slugSuffixLength]
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}

func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
