package handler

import (
	"net/http"
	"strings"

	"cp_tracker/internal/api/middleware"
	"cp_tracker/internal/app/service"
	"cp_tracker/internal/common"
	"cp_tracker/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

// UserHandler serves the logged-in user's dashboard under /me.
type UserHandler struct {
	authService        *service.AuthService
	leaderboardService *service.LeaderboardService
	syncService        *service.SyncService
	judge              service.Judge
}

func NewUserHandler(
	authService *service.AuthService,
	leaderboardService *service.LeaderboardService,
	syncService *service.SyncService,
	judge service.Judge,
) *UserHandler {
	return &UserHandler{
		authService:        authService,
		leaderboardService: leaderboardService,
		syncService:        syncService,
		judge:              judge,
	}
}

type ProfileResponse struct {
	User  *model.User      `json:"user"`
	Stats *model.UserStats `json:"stats"`
}

type HandleResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type ValidateHandleResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

type SolvedResponse struct {
	ProblemIDs []string `json:"problem_ids"`
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.profile)
	r.Put("/password", h.changePassword)
	r.Put("/handle", h.updateHandle)
	r.Get("/handle/validate", h.validateHandle)
	r.Post("/sync", h.sync)
	r.Get("/solved", h.solved)
}

func (h *UserHandler) profile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.SessionFromContext(r.Context()).CurrentUserID()

	user, err := h.authService.GetProfile(r.Context(), userID)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	stats, err := h.leaderboardService.GetUserStats(r.Context(), userID)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, ProfileResponse{User: user, Stats: stats})
}

func (h *UserHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	var req service.ChangePasswordRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		common.RespondWithError(w, http.StatusBadRequest, "New passwords do not match.")
		return
	}

	userID := middleware.SessionFromContext(r.Context()).CurrentUserID()
	if err := h.authService.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, service.MsgPasswordChanged)
}

// updateHandle only stores handles the judge knows about; an empty one unlinks.
func (h *UserHandler) updateHandle(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateHandleRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	userID := middleware.SessionFromContext(r.Context()).CurrentUserID()
	handle := strings.TrimSpace(req.Handle)

	var details string
	if handle != "" {
		valid, msg := h.judge.ValidateHandle(r.Context(), handle)
		if !valid {
			common.RespondWithError(w, http.StatusBadRequest, msg)
			return
		}
		details = msg
	}

	if err := h.authService.UpdateExternalHandle(r.Context(), userID, handle); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	if handle == "" {
		common.RespondWithJSON(w, http.StatusOK, HandleResponse{Message: service.MsgHandleCleared})
		return
	}
	common.RespondWithJSON(w, http.StatusOK, HandleResponse{Message: service.MsgHandleUpdated, Details: details})
}

func (h *UserHandler) validateHandle(w http.ResponseWriter, r *http.Request) {
	handle := strings.TrimSpace(r.URL.Query().Get("handle"))
	if handle == "" {
		common.RespondWithError(w, http.StatusBadRequest, "handle query parameter is required")
		return
	}
	valid, msg := h.judge.ValidateHandle(r.Context(), handle)
	common.RespondWithJSON(w, http.StatusOK, ValidateHandleResponse{Valid: valid, Message: msg})
}

func (h *UserHandler) sync(w http.ResponseWriter, r *http.Request) {
	userID := middleware.SessionFromContext(r.Context()).CurrentUserID()
	result, err := h.syncService.SyncOwnProgress(r.Context(), userID)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}

func (h *UserHandler) solved(w http.ResponseWriter, r *http.Request) {
	userID := middleware.SessionFromContext(r.Context()).CurrentUserID()
	ids, err := h.leaderboardService.GetUserSolvedProblems(r.Context(), userID)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, SolvedResponse{ProblemIDs: ids})
}
