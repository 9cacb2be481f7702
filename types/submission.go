package types

import "time"

// Submission status values. A submission starts pending and is moved
// to approved or rejected by an admin review.
const (
	SubmissionStatusPending  = "pending"
	SubmissionStatusApproved = "approved"
	SubmissionStatusRejected = "rejected"
)

// Submission represents a customer's photo entry against a campaign.
type Submission struct {
	// ID is the unique identifier of the submission.
	ID int `json:"id" db:"id"`

	// CampaignID identifies the campaign this submission belongs to.
	CampaignID int `json:"campaignId" db:"campaign_id"`

	// CustomerName is the name entered on the public form.
	CustomerName string `json:"customerName" db:"customer_name"`

	// Phone is the contact number entered on the public form.
	Phone string `json:"phone" db:"phone"`

	// ImageURL is the public path of the uploaded photo, e.g.
	// "/uploads/<key>".
	ImageURL string `json:"imageUrl" db:"image_url"`

	// Status is one of pending, approved, or rejected.
	Status string `json:"status" db:"status"`

	// CreatedAt is the timestamp when the submission was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SubmissionWithCampaign is a submission annotated with the campaign's
// display name for list views. Deleted campaigns fall back to a
// placeholder name.
type SubmissionWithCampaign struct {
	Submission
	CampaignName string `json:"campaignName"`
}

// ValidSubmissionStatus reports whether s is a known submission status.
func ValidSubmissionStatus(s string) bool {
	switch s {
	case SubmissionStatusPending, SubmissionStatusApproved, SubmissionStatusRejected:
		return true
	}
	return false
}
