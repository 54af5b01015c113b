package handler

import (
	"net/http"

	"cp_tracker/internal/api/middleware"
	"cp_tracker/internal/app/service"
	"cp_tracker/internal/common"
	"cp_tracker/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type RegisterResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
}

// RegisterRoutes mounts the anonymous endpoints.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
}

// RegisterSessionRoutes mounts endpoints that need a logged-in session.
func (h *AuthHandler) RegisterSessionRoutes(r chi.Router) {
	r.Post("/logout", h.logout)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	if req.Password != req.ConfirmPassword {
		common.RespondWithError(w, http.StatusBadRequest, "Passwords do not match.")
		return
	}

	user, err := h.authService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, RegisterResponse{Message: service.MsgRegistered, User: user})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	resp, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context(), middleware.SessionFromContext(r.Context())); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, service.MsgLoggedOut)
}
