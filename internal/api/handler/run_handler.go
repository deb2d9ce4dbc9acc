package handler

import (
	"net/http"
	"strconv"

	"algoprep/internal/api/middleware"
	"algoprep/internal/app/service"
	"algoprep/internal/common"

	"github.com/go-chi/chi/v5"
)

type RunHandler struct {
	runService *service.RunService
}

func NewRunHandler(rs *service.RunService) *RunHandler {
	return &RunHandler{runService: rs}
}

func (h *RunHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	// POST /api/v1/run runs synchronously; ?async=true queues a job instead.
	r.Post("/", h.run)
	r.Get("/{jobID}", h.getJob)
}

func (h *RunHandler) run(w http.ResponseWriter, r *http.Request) {
	var req service.RunRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RespondWithErr(w, err)
		return
	}

	async, _ := strconv.ParseBool(r.URL.Query().Get("async"))
	if !async {
		res, err := h.runService.Run(r.Context(), req)
		if err != nil {
			common.RespondWithErr(w, err)
			return
		}
		common.RespondWithJSON(w, http.StatusOK, res)
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	job, err := h.runService.Enqueue(r.Context(), userID, req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	w.Header().Set("Location", "/api/v1/run/"+job.ID)
	common.RespondWithJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.ID,
		"status": job.Status,
	})
}

func (h *RunHandler) getJob(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	job, err := h.runService.Get(r.Context(), userID, chi.URLParam(r, "jobID"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	resp := map[string]interface{}{
		"job_id": job.ID,
		"status": job.Status,
	}
	if job.Outcome != nil {
		resp["result"] = service.NewRunResult(*job.Outcome)
	}
	if job.LastError != nil {
		resp["error"] = *job.LastError
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}
