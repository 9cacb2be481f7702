package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/snapreward/apiserver/internal/services"
	"github.com/snapreward/apiserver/internal/store"
	"github.com/snapreward/apiserver/types"
)

// CampaignHandler provides HTTP handlers for campaigns.
type CampaignHandler struct {
	campaignService *services.CampaignService
}

// NewCampaignHandler constructs a handler with the provided service.
func NewCampaignHandler(campaignService *services.CampaignService) *CampaignHandler {
	return &CampaignHandler{campaignService: campaignService}
}

// CampaignRouter registers campaign routes on the given router. The
// slug lookup stays public for the customer-facing form; everything
// else requires auth.
func CampaignRouter(r chi.Router, campaignService *services.CampaignService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewCampaignHandler(campaignService)

	r.Get("/url/{slug}", handler.GetCampaignBySlug)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", handler.ListCampaigns)
		r.Post("/", handler.CreateCampaign)
		r.Route("/{campaignID}", func(r chi.Router) {
			r.Get("/", handler.GetCampaign)
			r.Patch("/", handler.UpdateCampaign)
			r.Delete("/", handler.DeleteCampaign)
		})
	})
}

func (h *CampaignHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.campaignService.ListWithCounts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch campaigns")
		return
	}
	writeJSON(w, http.StatusOK, campaigns)
}

func (h *CampaignHandler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "campaignID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid campaign id")
		return
	}

	campaign, err := h.campaignService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "campaign not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch campaign")
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

func (h *CampaignHandler) GetCampaignBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	campaign, err := h.campaignService.GetBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "campaign not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch campaign")
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

func (h *CampaignHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req CampaignCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	req.RewardType = strings.TrimSpace(req.RewardType)
	req.RewardValue = strings.TrimSpace(req.RewardValue)
	req.EndDate = strings.TrimSpace(req.EndDate)
	if req.Name == "" || req.Description == "" || req.RewardType == "" || req.RewardValue == "" || req.EndDate == "" {
		writeError(w, http.StatusBadRequest, "name, description, reward type, reward value, and end date are required")
		return
	}

	created, err := h.campaignService.Create(r.Context(), types.Campaign{
		Name:        req.Name,
		Description: req.Description,
		RewardType:  req.RewardType,
		RewardValue: req.RewardValue,
		EndDate:     req.EndDate,
		Status:      req.Status,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidStatus) {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create campaign")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *CampaignHandler) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "campaignID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid campaign id")
		return
	}

	var patch services.CampaignPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	updated, err := h.campaignService.Update(r.Context(), id, patch)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "campaign not found")
		case errors.Is(err, services.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, "invalid status")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update campaign")
		}
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *CampaignHandler) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "campaignID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid campaign id")
		return
	}

	if err := h.campaignService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "campaign not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete campaign")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CampaignCreateRequest is the create payload. Status is optional and
// defaults to draft.
type CampaignCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	RewardType  string `json:"rewardType"`
	RewardValue string `json:"rewardValue"`
	EndDate     string `json:"endDate"`
	Status      string `json:"status"`
}
