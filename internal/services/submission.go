package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/snapreward/apiserver/internal/storage"
	"github.com/snapreward/apiserver/types"
)

// MaxImageBytes is the size ceiling for an uploaded photo.
const MaxImageBytes = 10 << 20

// ErrCampaignNotActive is returned when submitting to a campaign whose
// status is not active.
var ErrCampaignNotActive = errors.New("campaign is not active")

// ErrFileRejected is returned when an uploaded file fails the image
// type or size checks.
var ErrFileRejected = errors.New("only image files up to 10MB are allowed")

var allowedImageExtensions = map[string]string{
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// SubmissionRepository defines persistence operations for submissions.
type SubmissionRepository interface {
	List(ctx context.Context) ([]types.SubmissionWithCampaign, error)
	ListByCampaign(ctx context.Context, campaignID int) ([]types.SubmissionWithCampaign, error)
	GetByID(ctx context.Context, id int) (types.Submission, error)
	Create(ctx context.Context, submission types.Submission) (types.Submission, error)
	UpdateStatus(ctx context.Context, id int, status string) (types.Submission, error)
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
}

// SubmissionImage is an uploaded photo prior to intake.
type SubmissionImage struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CreateSubmissionParams carries a public form submission.
type CreateSubmissionParams struct {
	CampaignID   int
	CustomerName string
	Phone        string
	Image        SubmissionImage
}

// SubmissionService encapsulates submission intake and review.
type SubmissionService struct {
	repo      SubmissionRepository
	campaigns CampaignRepository
	storage   *storage.Storage
}

func NewSubmissionService(repo SubmissionRepository, campaigns CampaignRepository, store *storage.Storage) *SubmissionService {
	return &SubmissionService{
		repo:      repo,
		campaigns: campaigns,
		storage:   store,
	}
}

// List returns all submissions, or the submissions of one campaign
// when campaignID is non-nil.
func (s *SubmissionService) List(ctx context.Context, campaignID *int) ([]types.SubmissionWithCampaign, error) {
	if campaignID != nil {
		return s.repo.ListByCampaign(ctx, *campaignID)
	}
	return s.repo.List(ctx)
}

// Create validates the target campaign and the uploaded image, stores
// the image, and persists the submission as pending. The image is
// written before the insert; if the insert fails the stored object is
// deleted so no orphan file remains.
func (s *SubmissionService) Create(ctx context.Context, params CreateSubmissionParams) (types.Submission, error) {
	campaign, err := s.campaigns.GetByID(ctx, params.CampaignID)
	if err != nil {
		return types.Submission{}, err
	}
	if campaign.Status != types.CampaignStatusActive {
		return types.Submission{}, ErrCampaignNotActive
	}

	key, contentType, err := intakeImage(params.Image)
	if err != nil {
		return types.Submission{}, err
	}

	size := int64(len(params.Image.Data))
	if err := s.storage.Put(ctx, key, bytes.NewReader(params.Image.Data), size, contentType); err != nil {
		return types.Submission{}, fmt.Errorf("store image: %w", err)
	}

	submission, err := s.repo.Create(ctx, types.Submission{
		CampaignID:   params.CampaignID,
		CustomerName: params.CustomerName,
		Phone:        params.Phone,
		ImageURL:     "/uploads/" + key,
		Status:       types.SubmissionStatusPending,
	})
	if err != nil {
		_ = s.storage.Delete(ctx, key)
		return types.Submission{}, err
	}
	return submission, nil
}

// Review sets the status of a submission.
func (s *SubmissionService) Review(ctx context.Context, id int, status string) (types.Submission, error) {
	if !types.ValidSubmissionStatus(status) {
		return types.Submission{}, ErrInvalidStatus
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *SubmissionService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// intakeImage checks the upload against the image allow-list and size
// ceiling and assigns a durable storage key.
func intakeImage(image SubmissionImage) (key, contentType string, err error) {
	if len(image.Data) == 0 || int64(len(image.Data)) > MaxImageBytes {
		return "", "", ErrFileRejected
	}

	ext := strings.ToLower(filepath.Ext(image.Filename))
	expected, ok := allowedImageExtensions[ext]
	if !ok {
		return "", "", ErrFileRejected
	}

	declared := strings.ToLower(strings.TrimSpace(image.ContentType))
	if declared != "" && declared != expected && !strings.HasPrefix(declared, "image/") {
		return "", "", ErrFileRejected
	}

	return uuid.NewString() + ext, expected, nil
}
