package handler

import (
	"net/http"

	"algoprep/internal/api/middleware"
	"algoprep/internal/app/service"
	"algoprep/internal/common"

	"github.com/go-chi/chi/v5"
)

type SolvedHandler struct {
	solvedService *service.SolvedService
}

func NewSolvedHandler(ss *service.SolvedService) *SolvedHandler {
	return &SolvedHandler{solvedService: ss}
}

func (h *SolvedHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/", h.list)
	r.Get("/{problemID}", h.get)
	r.Put("/{problemID}", h.mark)
	r.Delete("/{problemID}", h.unmark)
}

type setSolvedRequest struct {
	Solved *bool `json:"solved"`
}

func (h *SolvedHandler) list(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	ids, err := h.solvedService.List(r.Context(), userID)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"problem_ids": ids})
}

func (h *SolvedHandler) get(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	state, err := h.solvedService.Get(r.Context(), userID, chi.URLParam(r, "problemID"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, state)
}

// mark sets the flag; an empty body means solved=true.
func (h *SolvedHandler) mark(w http.ResponseWriter, r *http.Request) {
	solved := true
	if r.ContentLength != 0 {
		var req setSolvedRequest
		if err := common.DecodeJSON(r, &req); err != nil {
			common.RespondWithErr(w, err)
			return
		}
		if req.Solved != nil {
			solved = *req.Solved
		}
	}
	h.set(w, r, solved)
}

func (h *SolvedHandler) unmark(w http.ResponseWriter, r *http.Request) {
	h.set(w, r, false)
}

func (h *SolvedHandler) set(w http.ResponseWriter, r *http.Request, solved bool) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	state, err := h.solvedService.Set(r.Context(), userID, chi.URLParam(r, "problemID"), solved)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, state)
}
