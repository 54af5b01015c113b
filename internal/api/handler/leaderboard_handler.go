package handler

import (
	"net/http"

	"cp_tracker/internal/app/service"
	"cp_tracker/internal/common"
	"cp_tracker/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
}

func NewLeaderboardHandler(ls *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: ls}
}

type LeaderboardResponse struct {
	Window  service.Window           `json:"window"`
	Entries []model.LeaderboardEntry `json:"entries"`
}

func (h *LeaderboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.getLeaderboard) // GET /api/v1/leaderboard?window=weekly
}

func (h *LeaderboardHandler) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	window, err := service.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	entries, err := h.leaderboardService.GetLeaderboard(r.Context(), window)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, LeaderboardResponse{Window: window, Entries: entries})
}
