package service

import (
	"context"
	"strings"

	"algoprep/internal/common"
	"algoprep/internal/domain/model"
	"algoprep/internal/domain/repository"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type CategoryService struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

type CreateCategoryRequest struct {
	Name string `json:"name"`
}

func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*model.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errors.Wrap(common.ErrValidation, "category name is required")
	}
	if strings.EqualFold(name, model.UncategorizedName) {
		return nil, errors.Wrapf(common.ErrValidation, "%q is reserved", model.UncategorizedName)
	}
	c := &model.Category{ID: uuid.NewString(), Name: name, Slug: slug.Make(name)}
	if err := s.categoryRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	cats, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []model.Category{}
	}
	return cats, nil
}
