package types

import "time"

// Campaign status values.
const (
	CampaignStatusDraft  = "draft"
	CampaignStatusActive = "active"
	CampaignStatusEnded  = "ended"
)

// Campaign represents a reward promotion customers can join
// through a public, slug-addressed submission form.
type Campaign struct {
	// ID is the unique identifier of the campaign.
	ID int `json:"id" db:"id"`

	// Name is the human-readable campaign name.
	Name string `json:"name" db:"name"`

	// Description explains the promotion to customers.
	Description string `json:"description" db:"description"`

	// RewardType is a category label for the reward, e.g. "Discount Coupon".
	RewardType string `json:"rewardType" db:"reward_type"`

	// RewardValue is the human-readable reward description, e.g. "20% Off".
	RewardValue string `json:"rewardValue" db:"reward_value"`

	// EndDate is the last day of the promotion, as a YYYY-MM-DD string.
	EndDate string `json:"endDate" db:"end_date"`

	// Status is one of draft, active, or ended. Only active campaigns
	// accept public submissions.
	Status string `json:"status" db:"status"`

	// Slug is the unique URL identifier, derived from the name plus a
	// random suffix at creation. It never changes after creation.
	Slug string `json:"slug" db:"slug"`

	// CreatedAt is the timestamp when the campaign was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CampaignWithCount is a campaign annotated with its submission count
// for dashboard listings. The count is derived, never stored.
type CampaignWithCount struct {
	Campaign
	SubmissionCount int `json:"submissionCount"`
}

// ValidCampaignStatus reports whether s is a known campaign status.
func ValidCampaignStatus(s string) bool {
	switch s {
	case CampaignStatusDraft, CampaignStatusActive, CampaignStatusEnded:
		return true
	}
	return false
}
