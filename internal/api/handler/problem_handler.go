package handler

import (
	"net/http"

	"cp_tracker/internal/api/middleware"
	"cp_tracker/internal/app/service"
	"cp_tracker/internal/common"
	"cp_tracker/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type ProblemHandler struct {
	problemService    *service.ProblemService
	submissionService *service.SubmissionService
}

func NewProblemHandler(ps *service.ProblemService, ss *service.SubmissionService) *ProblemHandler {
	return &ProblemHandler{problemService: ps, submissionService: ss}
}

type ProblemListResponse struct {
	Filter   service.ProblemFilter `json:"filter"`
	Problems []model.Problem       `json:"problems"`
	Total    int                   `json:"total"`
}

type MarkSolvedResponse struct {
	Created bool   `json:"created"`
	Message string `json:"message"`
}

func (h *ProblemHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listProblems)                 // GET /api/v1/problems?filter=unsolved
	r.Get("/{problemID}", h.getProblem)        // GET /api/v1/problems/{id}
	r.Post("/{problemID}/solve", h.markSolved) // POST /api/v1/problems/{id}/solve

	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(middleware.AdminOnly)
		adminRouter.Post("/", h.createProblem)
		adminRouter.Delete("/{problemID}", h.deleteProblem)
	})
}

func (h *ProblemHandler) createProblem(w http.ResponseWriter, r *http.Request) {
	var req service.CreateProblemRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RespondWithErr(w, err)
		return
	}

	adminID := middleware.SessionFromContext(r.Context()).CurrentUserID()
	resp, err := h.problemService.CreateProblem(r.Context(), adminID, req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, resp)
}

func (h *ProblemHandler) deleteProblem(w http.ResponseWriter, r *http.Request) {
	if err := h.problemService.DeleteProblem(r.Context(), chi.URLParam(r, "problemID")); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Problem deleted.")
}

func (h *ProblemHandler) listProblems(w http.ResponseWriter, r *http.Request) {
	filter, err := service.ParseProblemFilter(r.URL.Query().Get("filter"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}

	userID := middleware.SessionFromContext(r.Context()).CurrentUserID()
	problems, err := h.problemService.ListProblems(r.Context(), userID, filter)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, ProblemListResponse{
		Filter:   filter,
		Problems: problems,
		Total:    len(problems),
	})
}

func (h *ProblemHandler) getProblem(w http.ResponseWriter, r *http.Request) {
	problem, err := h.problemService.GetProblem(r.Context(), chi.URLParam(r, "problemID"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problem)
}

func (h *ProblemHandler) markSolved(w http.ResponseWriter, r *http.Request) {
	userID := middleware.SessionFromContext(r.Context()).CurrentUserID()
	created, err := h.submissionService.MarkSolved(r.Context(), userID, chi.URLParam(r, "problemID"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	if !created {
		common.RespondWithJSON(w, http.StatusOK, MarkSolvedResponse{Message: service.MsgAlreadySolved})
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, MarkSolvedResponse{Created: true, Message: service.MsgMarkedSolved})
}
