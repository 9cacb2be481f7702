package handlers

import (
	"net/http"
	"strings"
	"testing"
)

func TestNotifyCampaign_PublishesPerRecipient(t *testing.T) {
	api := newTestAPI(t)
	campaign := createCampaign(t, api, campaignRequest("Summer Sale", "active"))

	var resp NotifyResponse
	recorder := api.doJSON(t, http.MethodPost, "/api/notify/campaign", api.token(t), CampaignNotifyRequest{
		CampaignID: campaign.ID,
		Subject:    "New campaign!",
		Recipients: []string{"sarah@example.com", "ben@example.com"},
	}, &resp)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", recorder.Code, recorder.Body.String())
	}

	if resp.Sent != 2 || resp.Failed != 0 {
		t.Fatalf("sent = %d, failed = %d, want 2, 0", resp.Sent, resp.Failed)
	}

	envelopes := api.broker.envelopes()
	if len(envelopes) != 2 {
		t.Fatalf("published = %d, want 2", len(envelopes))
	}
	for _, envelope := range envelopes {
		if envelope.Subject != "New campaign!" {
			t.Fatalf("subject = %q", envelope.Subject)
		}
		if !strings.Contains(envelope.Body, "/c/"+campaign.Slug) {
			t.Fatalf("body missing join URL: %q", envelope.Body)
		}
		if !strings.Contains(envelope.Body, campaign.RewardValue) {
			t.Fatalf("body missing reward: %q", envelope.Body)
		}
	}
}

func TestNotifyCampaign_UnknownCampaign(t *testing.T) {
	api := newTestAPI(t)

	recorder := api.doJSON(t, http.MethodPost, "/api/notify/campaign", api.token(t), CampaignNotifyRequest{
		CampaignID: 999,
		Subject:    "New campaign!",
		Recipients: []string{"sarah@example.com"},
	}, nil)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", recorder.Code)
	}
	if len(api.broker.envelopes()) != 0 {
		t.Fatal("published envelopes for an unknown campaign")
	}
}

func TestNotifyCustom_ReportsFailedRecipients(t *testing.T) {
	api := newTestAPI(t)
	api.broker.fail = map[string]bool{"ben@example.com": true}

	var resp NotifyResponse
	recorder := api.doJSON(t, http.MethodPost, "/api/notify/custom", api.token(t), CustomNotifyRequest{
		Subject:    "Hello",
		Body:       "A quick note",
		Recipients: []string{"sarah@example.com", "ben@example.com", "cam@example.com"},
	}, &resp)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", recorder.Code, recorder.Body.String())
	}

	if resp.Sent != 2 || resp.Failed != 1 {
		t.Fatalf("sent = %d, failed = %d, want 2, 1", resp.Sent, resp.Failed)
	}
	if len(resp.FailedRecipients) != 1 || resp.FailedRecipients[0] != "ben@example.com" {
		t.Fatalf("failedRecipients = %v", resp.FailedRecipients)
	}
	if len(api.broker.envelopes()) != 2 {
		t.Fatalf("published = %d, want 2", len(api.broker.envelopes()))
	}
}

func TestNotifyCustom_Validation(t *testing.T) {
	api := newTestAPI(t)

	recorder := api.doJSON(t, http.MethodPost, "/api/notify/custom", api.token(t), CustomNotifyRequest{
		Subject:    "Hello",
		Recipients: []string{"sarah@example.com"},
	}, nil)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("missing body status = %d, want 400", recorder.Code)
	}
}

func TestNotifyRoutes_RequireAuth(t *testing.T) {
	api := newTestAPI(t)

	recorder := api.doJSON(t, http.MethodPost, "/api/notify/custom", "", CustomNotifyRequest{
		Subject:    "Hello",
		Body:       "A quick note",
		Recipients: []string{"sarah@example.com"},
	}, nil)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", recorder.Code)
	}
}
