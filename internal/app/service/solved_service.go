package service

import (
	"context"

	"algoprep/internal/common"
	"algoprep/internal/domain/model"
	"algoprep/internal/domain/repository"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

type SolvedService struct {
	solvedRepo  repository.SolvedRepository
	problemRepo repository.ProblemRepository
}

func NewSolvedService(solvedRepo repository.SolvedRepository, problemRepo repository.ProblemRepository) *SolvedService {
	return &SolvedService{solvedRepo: solvedRepo, problemRepo: problemRepo}
}

// SolvedState is the solved flag of one problem for one user.
type SolvedState struct {
	ProblemID string `json:"problem_id"`
	Solved    bool   `json:"solved"`
}

func (s *SolvedService) Get(ctx context.Context, userID, problemID string) (*SolvedState, error) {
	if userID == "" || problemID == "" {
		return nil, errors.Wrap(common.ErrBadRequest, "user and problem are required")
	}
	solved, err := s.solvedRepo.IsSolved(ctx, userID, problemID)
	if err != nil {
		return nil, err
	}
	return &SolvedState{ProblemID: problemID, Solved: solved}, nil
}

// Set marks or unmarks a problem. Both directions are idempotent.
func (s *SolvedService) Set(ctx context.Context, userID, problemID string, solved bool) (*SolvedState, error) {
	if userID == "" || problemID == "" {
		return nil, errors.Wrap(common.ErrBadRequest, "user and problem are required")
	}
	if !solved {
		if _, err := s.solvedRepo.Unmark(ctx, userID, problemID); err != nil {
			return nil, err
		}
		return &SolvedState{ProblemID: problemID, Solved: false}, nil
	}

	if _, err := s.problemRepo.FindByID(ctx, problemID); err != nil {
		return nil, err
	}
	status := &model.SolvedStatus{ID: uuid.NewString(), UserID: userID, ProblemID: problemID}
	if err := s.solvedRepo.Mark(ctx, status); err != nil {
		return nil, err
	}
	return &SolvedState{ProblemID: problemID, Solved: true}, nil
}

func (s *SolvedService) List(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, common.ErrUnauthorized
	}
	ids, err := s.solvedRepo.ListProblemIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
