package handler

import (
	"net/http"

	"algoprep/internal/api/middleware"
	"algoprep/internal/app/service"
	"algoprep/internal/common"

	"github.com/go-chi/chi/v5"
)

type CategoryHandler struct {
	categoryService *service.CategoryService
}

func NewCategoryHandler(cs *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: cs}
}

func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Group(func(admin chi.Router) {
		admin.Use(middleware.Authenticator)
		admin.Use(middleware.AdminOnly)
		admin.Post("/", h.create)
	})
}

func (h *CategoryHandler) list(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categoryService.List(r.Context())
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, cats)
}

func (h *CategoryHandler) create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateCategoryRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	cat, err := h.categoryService.Create(r.Context(), req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, cat)
}
