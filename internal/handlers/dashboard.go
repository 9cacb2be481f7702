package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/snapreward/apiserver/internal/services"
)

// DashboardHandler serves the aggregate counts for the admin dashboard.
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// DashboardRouter registers dashboard routes on the given router.
func DashboardRouter(r chi.Router, dashboardService *services.DashboardService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewDashboardHandler(dashboardService)

	r.With(authMiddleware).Get("/stats", handler.Stats)
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboardService.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch dashboard stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
