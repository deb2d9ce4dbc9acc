package handler

import (
	"net/http"

	"algoprep/internal/api/middleware"
	"algoprep/internal/app/service"
	"algoprep/internal/common"
	"algoprep/internal/domain/model"
	"algoprep/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
)

type ProblemHandler struct {
	problemService *service.ProblemService
}

func NewProblemHandler(ps *service.ProblemService) *ProblemHandler {
	return &ProblemHandler{problemService: ps}
}

func (h *ProblemHandler) RegisterRoutes(r chi.Router) {
	r.With(middleware.OptionalAuthenticator).Get("/", h.listProblems) // GET /api/v1/problems?search=sum
	r.Get("/{problemID}", h.getProblem)
	r.Get("/{problemID}/frames", h.getFrames)

	r.Group(func(admin chi.Router) {
		admin.Use(middleware.Authenticator)
		admin.Use(middleware.AdminOnly)
		admin.Post("/", h.createProblem)
		admin.Put("/{problemID}/steps", h.replaceSteps)
	})
}

func (h *ProblemHandler) listProblems(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context()) // empty for anonymous callers
	groups, err := h.problemService.ListGrouped(r.Context(), r.URL.Query().Get("search"), userID)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, groups)
}

func (h *ProblemHandler) getProblem(w http.ResponseWriter, r *http.Request) {
	problem, err := h.problemService.Get(r.Context(), chi.URLParam(r, "problemID"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problem)
}

func (h *ProblemHandler) getFrames(w http.ResponseWriter, r *http.Request) {
	frames, err := h.problemService.Frames(r.Context(), chi.URLParam(r, "problemID"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	metrics.FramesServed.Add(float64(len(frames)))
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(frames),
		"frames": frames,
	})
}

func (h *ProblemHandler) createProblem(w http.ResponseWriter, r *http.Request) {
	var req service.CreateProblemRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	problem, err := h.problemService.Create(r.Context(), req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, problem)
}

func (h *ProblemHandler) replaceSteps(w http.ResponseWriter, r *http.Request) {
	var steps []model.Step
	if err := common.DecodeJSON(r, &steps); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	id := chi.URLParam(r, "problemID")
	if err := h.problemService.ReplaceSteps(r.Context(), id, steps); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
