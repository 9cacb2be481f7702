package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/snapreward/apiserver/internal/store"
	"github.com/snapreward/apiserver/types"
)

func submissionFields(campaignID int) map[string]string {
	return map[string]string{
		"campaignId":   fmt.Sprint(campaignID),
		"customerName": "Sarah",
		"phone":        "555-0101",
	}
}

func TestCreateSubmission_PublicForm(t *testing.T) {
	api := newTestAPI(t)
	campaign := createCampaign(t, api, campaignRequest("Summer Sale", "active"))

	recorder := api.doMultipart(t, "/api/submissions/", submissionFields(campaign.ID), "photo.jpg", "image/jpeg", []byte("fake jpeg"))
	if recorder.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", recorder.Code, recorder.Body.String())
	}

	var created types.Submission
	if err := json.NewDecoder(recorder.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Status != types.SubmissionStatusPending {
		t.Fatalf("status = %q, want pending", created.Status)
	}
	if !strings.HasPrefix(created.ImageURL, "/uploads/") {
		t.Fatalf("imageUrl = %q, want /uploads/ prefix", created.ImageURL)
	}
	if api.storage.count() != 1 {
		t.Fatalf("stored objects = %d, want 1", api.storage.count())
	}
}

func TestCreateSubmission_InactiveCampaign(t *testing.T) {
	api := newTestAPI(t)
	campaign := createCampaign(t, api, campaignRequest("Summer Sale", "draft"))

	recorder := api.doMultipart(t, "/api/submissions/", submissionFields(campaign.ID), "photo.jpg", "image/jpeg", []byte("fake jpeg"))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
	if message := errorMessage(t, recorder); message != "campaign is not active" {
		t.Fatalf("message = %q", message)
	}

	count, _ := api.store.Submissions().Count(context.Background())
	if count != 0 {
		t.Fatalf("records = %d, want 0", count)
	}
}

func TestCreateSubmission_UnknownCampaign(t *testing.T) {
	api := newTestAPI(t)

	recorder := api.doMultipart(t, "/api/submissions/", submissionFields(999), "photo.jpg", "image/jpeg", []byte("fake jpeg"))
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", recorder.Code)
	}
}

func TestCreateSubmission_NonImageRejected(t *testing.T) {
	api := newTestAPI(t)
	campaign := createCampaign(t, api, campaignRequest("Summer Sale", "active"))

	recorder := api.doMultipart(t, "/api/submissions/", submissionFields(campaign.ID), "notes.txt", "text/plain", []byte("not an image"))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}

	count, _ := api.store.Submissions().Count(context.Background())
	if count != 0 || api.storage.count() != 0 {
		t.Fatalf("rejected upload left state: records=%d objects=%d", count, api.storage.count())
	}
}

func TestCreateSubmission_MissingImage(t *testing.T) {
	api := newTestAPI(t)
	campaign := createCampaign(t, api, campaignRequest("Summer Sale", "active"))

	recorder := api.doMultipart(t, "/api/submissions/", submissionFields(campaign.ID), "", "", nil)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
}

func TestCreateSubmission_MissingFields(t *testing.T) {
	api := newTestAPI(t)
	campaign := createCampaign(t, api, campaignRequest("Summer Sale", "active"))

	fields := submissionFields(campaign.ID)
	delete(fields, "customerName")
	recorder := api.doMultipart(t, "/api/submissions/", fields, "photo.jpg", "image/jpeg", []byte("fake jpeg"))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
}

func TestReviewSubmission(t *testing.T) {
	api := newTestAPI(t)
	campaign := createCampaign(t, api, campaignRequest("Summer Sale", "active"))

	created, err := api.store.Submissions().Create(context.Background(), types.Submission{
		CampaignID:   campaign.ID,
		CustomerName: "Sarah",
		Phone:        "555-0101",
		ImageURL:     "/uploads/x.jpg",
		Status:       types.SubmissionStatusPending,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	path := fmt.Sprintf("/api/submissions/%d/status", created.ID)

	var reviewed types.Submission
	recorder := api.doJSON(t, http.MethodPatch, path, api.token(t), ReviewRequest{Status: "approved"}, &reviewed)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", recorder.Code, recorder.Body.String())
	}
	if reviewed.Status != types.SubmissionStatusApproved {
		t.Fatalf("reviewed status = %q, want approved", reviewed.Status)
	}

	recorder = api.doJSON(t, http.MethodPatch, path, api.token(t), ReviewRequest{Status: "bogus"}, nil)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("bogus status = %d, want 400", recorder.Code)
	}
	if message := errorMessage(t, recorder); message != "valid status is required" {
		t.Fatalf("message = %q", message)
	}

	current, err := api.store.Submissions().GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if current.Status != types.SubmissionStatusApproved {
		t.Fatalf("invalid review altered record: %q", current.Status)
	}

	recorder = api.doJSON(t, http.MethodPatch, "/api/submissions/999/status", api.token(t), ReviewRequest{Status: "approved"}, nil)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("unknown id status = %d, want 404", recorder.Code)
	}
}

func TestListSubmissions_FilterAndCampaignName(t *testing.T) {
	api := newTestAPI(t)
	ctx := context.Background()

	first := createCampaign(t, api, campaignRequest("Summer Sale", "active"))
	second := createCampaign(t, api, campaignRequest("Winter Promo", "active"))

	for _, campaignID := range []int{first.ID, first.ID, second.ID} {
		if _, err := api.store.Submissions().Create(ctx, types.Submission{
			CampaignID:   campaignID,
			CustomerName: "X",
			Phone:        "555-0101",
			ImageURL:     "/uploads/x.jpg",
			Status:       types.SubmissionStatusPending,
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	var filtered []types.SubmissionWithCampaign
	path := fmt.Sprintf("/api/submissions/?campaignId=%d", first.ID)
	recorder := api.doJSON(t, http.MethodGet, path, api.token(t), nil, &filtered)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}
	if len(filtered) != 2 {
		t.Fatalf("len(filtered) = %d, want 2", len(filtered))
	}
	for _, submission := range filtered {
		if submission.CampaignName != "Summer Sale" {
			t.Fatalf("campaignName = %q, want %q", submission.CampaignName, "Summer Sale")
		}
	}

	if err := api.store.Campaigns().Delete(ctx, second.ID); err != nil {
		t.Fatalf("delete campaign: %v", err)
	}

	var all []types.SubmissionWithCampaign
	if recorder := api.doJSON(t, http.MethodGet, "/api/submissions/", api.token(t), nil, &all); recorder.Code != http.StatusOK {
		t.Fatalf("list all status = %d, want 200", recorder.Code)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3", len(all))
	}
	orphans := 0
	for _, submission := range all {
		if submission.CampaignID == second.ID {
			orphans++
			if submission.CampaignName != store.UnknownCampaignName {
				t.Fatalf("campaignName = %q, want %q", submission.CampaignName, store.UnknownCampaignName)
			}
		}
	}
	if orphans != 1 {
		t.Fatalf("orphans = %d, want 1", orphans)
	}
}

func TestSubmissionAdminRoutes_RequireAuth(t *testing.T) {
	api := newTestAPI(t)

	if recorder := api.doJSON(t, http.MethodGet, "/api/submissions/", "", nil, nil); recorder.Code != http.StatusUnauthorized {
		t.Fatalf("list status = %d, want 401", recorder.Code)
	}
	if recorder := api.doJSON(t, http.MethodPatch, "/api/submissions/1/status", "", ReviewRequest{Status: "approved"}, nil); recorder.Code != http.StatusUnauthorized {
		t.Fatalf("review status = %d, want 401", recorder.Code)
	}
	if recorder := api.doJSON(t, http.MethodDelete, "/api/submissions/1", "", nil, nil); recorder.Code != http.StatusUnauthorized {
		t.Fatalf("delete status = %d, want 401", recorder.Code)
	}
}
