package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/snapreward/apiserver/types"
)

func createCampaign(t *testing.T, api *testAPI, req CampaignCreateRequest) types.Campaign {
	t.Helper()
	var created types.Campaign
	recorder := api.doJSON(t, http.MethodPost, "/api/campaigns/", api.token(t), req, &created)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("create campaign status = %d: %s", recorder.Code, recorder.Body.String())
	}
	return created
}

func campaignRequest(name, status string) CampaignCreateRequest {
	return CampaignCreateRequest{
		Name:        name,
		Description: "Share a photo, win a prize",
		RewardType:  "Discount Coupon",
		RewardValue: "20% Off",
		EndDate:     "2026-12-31",
		Status:      status,
	}
}

func TestCreateCampaign_SlugRoundTrip(t *testing.T) {
	api := newTestAPI(t)

	created := createCampaign(t, api, campaignRequest("Summer Sale", "active"))
	if !strings.HasPrefix(created.Slug, "summer-sale-") {
		t.Fatalf("slug = %q, want prefix %q", created.Slug, "summer-sale-")
	}

	var fetched types.Campaign
	recorder := api.doJSON(t, http.MethodGet, "/api/campaigns/url/"+created.Slug, "", nil, &fetched)
	if recorder.Code != http.StatusOK {
		t.Fatalf("slug lookup status = %d, want 200", recorder.Code)
	}
	if fetched.ID != created.ID {
		t.Fatalf("fetched id = %d, want %d", fetched.ID, created.ID)
	}

	if recorder := api.doJSON(t, http.MethodGet, "/api/campaigns/url/summer-sale-ffffffff", "", nil, nil); recorder.Code != http.StatusNotFound {
		t.Fatalf("unknown slug status = %d, want 404", recorder.Code)
	}
}

func TestCreateCampaign_DefaultsToDraft(t *testing.T) {
	api := newTestAPI(t)

	created := createCampaign(t, api, campaignRequest("Winter Promo", ""))
	if created.Status != types.CampaignStatusDraft {
		t.Fatalf("status = %q, want %q", created.Status, types.CampaignStatusDraft)
	}
}

func TestCreateCampaign_Validation(t *testing.T) {
	api := newTestAPI(t)

	missingName := campaignRequest("", "active")
	if recorder := api.doJSON(t, http.MethodPost, "/api/campaigns/", api.token(t), missingName, nil); recorder.Code != http.StatusBadRequest {
		t.Fatalf("missing name status = %d, want 400", recorder.Code)
	}

	badStatus := campaignRequest("Summer Sale", "archived")
	if recorder := api.doJSON(t, http.MethodPost, "/api/campaigns/", api.token(t), badStatus, nil); recorder.Code != http.StatusBadRequest {
		t.Fatalf("bad status status = %d, want 400", recorder.Code)
	}
}

func TestUpdateCampaign_SlugSurvivesRename(t *testing.T) {
	api := newTestAPI(t)

	created := createCampaign(t, api, campaignRequest("Summer Sale", "active"))

	var updated types.Campaign
	path := fmt.Sprintf("/api/campaigns/%d", created.ID)
	recorder := api.doJSON(t, http.MethodPatch, path, api.token(t), map[string]string{
		"name":   "Autumn Sale",
		"status": "ended",
	}, &updated)
	if recorder.Code != http.StatusOK {
		t.Fatalf("patch status = %d: %s", recorder.Code, recorder.Body.String())
	}

	if updated.Name != "Autumn Sale" || updated.Status != "ended" {
		t.Fatalf("patch not applied: %+v", updated)
	}
	if updated.Slug != created.Slug {
		t.Fatalf("slug changed from %q to %q", created.Slug, updated.Slug)
	}
	if updated.Description != created.Description {
		t.Fatalf("untouched field changed: %q", updated.Description)
	}
}

func TestUpdateCampaign_NotFound(t *testing.T) {
	api := newTestAPI(t)

	recorder := api.doJSON(t, http.MethodPatch, "/api/campaigns/999", api.token(t), map[string]string{"name": "X"}, nil)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", recorder.Code)
	}
}

func TestListCampaigns_IncludesSubmissionCounts(t *testing.T) {
	api := newTestAPI(t)

	first := createCampaign(t, api, campaignRequest("Summer Sale", "active"))
	createCampaign(t, api, campaignRequest("Winter Promo", "draft"))

	fields := map[string]string{
		"campaignId":   fmt.Sprint(first.ID),
		"customerName": "Sarah",
		"phone":        "555-1",
	}
	if recorder := api.doMultipart(t, "/api/submissions/", fields, "photo.jpg", "image/jpeg", []byte("img")); recorder.Code != http.StatusCreated {
		t.Fatalf("submission status = %d: %s", recorder.Code, recorder.Body.String())
	}

	var campaigns []types.CampaignWithCount
	recorder := api.doJSON(t, http.MethodGet, "/api/campaigns/", api.token(t), nil, &campaigns)
	if recorder.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", recorder.Code)
	}
	if len(campaigns) != 2 {
		t.Fatalf("len(campaigns) = %d, want 2", len(campaigns))
	}

	counts := make(map[int]int)
	for _, campaign := range campaigns {
		counts[campaign.ID] = campaign.SubmissionCount
	}
	if counts[first.ID] != 1 {
		t.Fatalf("submissionCount = %d, want 1", counts[first.ID])
	}
}

func TestDeleteCampaign(t *testing.T) {
	api := newTestAPI(t)

	created := createCampaign(t, api, campaignRequest("Summer Sale", "active"))
	path := fmt.Sprintf("/api/campaigns/%d", created.ID)

	if recorder := api.doJSON(t, http.MethodDelete, path, api.token(t), nil, nil); recorder.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", recorder.Code)
	}
	if recorder := api.doJSON(t, http.MethodGet, path, api.token(t), nil, nil); recorder.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", recorder.Code)
	}
	if recorder := api.doJSON(t, http.MethodDelete, path, api.token(t), nil, nil); recorder.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", recorder.Code)
	}
}
