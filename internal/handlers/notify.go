package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/snapreward/apiserver/internal/notify"
	"github.com/snapreward/apiserver/internal/services"
	"github.com/snapreward/apiserver/internal/store"
)

// NotifyHandler enqueues bulk customer notifications. Actual delivery
// is an external concern consuming from the broker.
type NotifyHandler struct {
	notifier        *notify.Notifier
	campaignService *services.CampaignService
}

func NewNotifyHandler(notifier *notify.Notifier, campaignService *services.CampaignService) *NotifyHandler {
	return &NotifyHandler{
		notifier:        notifier,
		campaignService: campaignService,
	}
}

// NotifyRouter registers notification routes on the given router. All
// routes are admin-only.
func NotifyRouter(r chi.Router, notifier *notify.Notifier, campaignService *services.CampaignService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewNotifyHandler(notifier, campaignService)

	r.Use(authMiddleware)
	r.Post("/campaign", handler.SendCampaign)
	r.Post("/custom", handler.SendCustom)
}

// SendCampaign notifies recipients about a campaign, deriving the
// public join URL from the campaign slug.
func (h *NotifyHandler) SendCampaign(w http.ResponseWriter, r *http.Request) {
	var req CampaignNotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Subject = strings.TrimSpace(req.Subject)
	if req.CampaignID < 1 || req.Subject == "" || len(req.Recipients) == 0 {
		writeError(w, http.StatusBadRequest, "campaign id, subject, and recipients are required")
		return
	}

	campaign, err := h.campaignService.GetByID(r.Context(), req.CampaignID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "campaign not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch campaign")
		return
	}

	joinURL := fmt.Sprintf("%s/c/%s", requestBaseURL(r), campaign.Slug)
	body := fmt.Sprintf("%s\n\nReward: %s\nJoin here: %s\nValid until: %s",
		campaign.Description, campaign.RewardValue, joinURL, campaign.EndDate)

	h.send(w, r, notify.Message{
		Subject:    req.Subject,
		Body:       body,
		Recipients: req.Recipients,
	})
}

// SendCustom notifies recipients with a caller-provided body.
func (h *NotifyHandler) SendCustom(w http.ResponseWriter, r *http.Request) {
	var req CustomNotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Subject = strings.TrimSpace(req.Subject)
	req.Body = strings.TrimSpace(req.Body)
	if req.Subject == "" || req.Body == "" || len(req.Recipients) == 0 {
		writeError(w, http.StatusBadRequest, "subject, body, and recipients are required")
		return
	}

	h.send(w, r, notify.Message{
		Subject:    req.Subject,
		Body:       req.Body,
		Recipients: req.Recipients,
	})
}

func (h *NotifyHandler) send(w http.ResponseWriter, r *http.Request, msg notify.Message) {
	result, err := h.notifier.SendBulk(r.Context(), msg)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to send notifications")
		return
	}

	writeJSON(w, http.StatusOK, NotifyResponse{
		Message:          fmt.Sprintf("Notification sent to %d recipients", result.Sent),
		Sent:             result.Sent,
		Failed:           len(result.Failed),
		FailedRecipients: result.Failed,
	})
}

type CampaignNotifyRequest struct {
	CampaignID int      `json:"campaignId"`
	Subject    string   `json:"subject"`
	Recipients []string `json:"recipients"`
}

type CustomNotifyRequest struct {
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
	Recipients []string `json:"recipients"`
}

type NotifyResponse struct {
	Message          string   `json:"message"`
	Sent             int      `json:"sent"`
	Failed           int      `json:"failed"`
	FailedRecipients []string `json:"failedRecipients"`
}

func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}
