package service

import (
	"context"
	"sort"
	"strings"

	"algoprep/internal/common"
	"algoprep/internal/domain/model"
	"algoprep/internal/domain/repository"
	"algoprep/internal/render"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type ProblemService struct {
	problemRepo  repository.ProblemRepository
	categoryRepo repository.CategoryRepository
	solvedRepo   repository.SolvedRepository
}

func NewProblemService(
	problemRepo repository.ProblemRepository,
	categoryRepo repository.CategoryRepository,
	solvedRepo repository.SolvedRepository,
) *ProblemService {
	return &ProblemService{
		problemRepo:  problemRepo,
		categoryRepo: categoryRepo,
		solvedRepo:   solvedRepo,
	}
}

type CreateProblemRequest struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Example     *string      `json:"example,omitempty"`
	CategoryID  *string      `json:"category_id,omitempty"`
	Steps       []model.Step `json:"steps"`
}

func (s *ProblemService) Create(ctx context.Context, req CreateProblemRequest) (*model.Problem, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, errors.Wrap(common.ErrValidation, "problem title is required")
	}
	p := &model.Problem{
		ID:          uuid.NewString(),
		Title:       title,
		Slug:        slug.Make(title),
		Description: req.Description,
		Example:     req.Example,
		Steps:       req.Steps,
	}
	if req.CategoryID != nil && *req.CategoryID != "" {
		cat, err := s.categoryRepo.FindByID(ctx, *req.CategoryID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil, errors.Wrapf(common.ErrValidation, "category %s does not exist", *req.CategoryID)
			}
			return nil, err
		}
		p.CategoryID = &cat.ID
		p.CategoryName = &cat.Name
	}
	if p.Steps == nil {
		p.Steps = []model.Step{}
	}
	if err := s.problemRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProblemService) Get(ctx context.Context, id string) (*model.Problem, error) {
	return s.problemRepo.FindByID(ctx, id)
}

// Frames renders every visualization step of a problem.
func (s *ProblemService) Frames(ctx context.Context, id string) ([]render.Frame, error) {
	p, err := s.problemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return render.Frames(p.Steps), nil
}

func (s *ProblemService) ReplaceSteps(ctx context.Context, id string, steps []model.Step) error {
	return s.problemRepo.UpdateSteps(ctx, id, steps)
}

// ListGrouped returns the problem list grouped by category. userID may be empty,
// in which case nothing is marked solved.
func (s *ProblemService) ListGrouped(ctx context.Context, search, userID string) ([]model.CategoryGroup, error) {
	cats, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	problems, err := s.problemRepo.ListSummaries(ctx, search)
	if err != nil {
		return nil, err
	}
	solved := map[string]bool{}
	if userID != "" {
		ids, err := s.solvedRepo.ListProblemIDs(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			solved[id] = true
		}
	}
	return GroupProblems(cats, problems, search, solved), nil
}

// GroupProblems buckets problems under their category, keeping input order within a
// bucket. Problems whose category is unknown share one bucket per missing id, named
// "Uncategorized". Empty buckets are dropped and buckets sort by category name.
func GroupProblems(cats []model.Category, problems []model.ProblemSummary, search string, solved map[string]bool) []model.CategoryGroup {
	needle := strings.ToLower(strings.TrimSpace(search))
	groups := make(map[string]*model.CategoryGroup, len(cats))
	var order []string
	for _, c := range cats {
		groups[c.ID] = &model.CategoryGroup{Category: c, Problems: []model.ProblemSummary{}}
		order = append(order, c.ID)
	}

	for _, p := range problems {
		if needle != "" && !strings.Contains(strings.ToLower(p.Title), needle) {
			continue
		}
		key := ""
		if p.CategoryID != nil {
			key = *p.CategoryID
		}
		g, ok := groups[key]
		if !ok {
			g = &model.CategoryGroup{
				Category: model.Category{ID: key, Name: model.UncategorizedName},
				Problems: []model.ProblemSummary{},
			}
			groups[key] = g
			order = append(order, key)
		}
		p.Solved = solved[p.ID]
		g.Problems = append(g.Problems, p)
	}

	out := make([]model.CategoryGroup, 0, len(order))
	for _, key := range order {
		if g := groups[key]; len(g.Problems) > 0 {
			out = append(out, *g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Category.Name) < strings.ToLower(out[j].Category.Name)
	})
	return out
}
