package service

import (
	"context"
	"log"
	"strings"
	"time"

	"algoprep/internal/common"
	"algoprep/internal/domain/model"
	"algoprep/internal/domain/repository"
	"algoprep/internal/judge"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// maxSourceBytes bounds one submission.
const maxSourceBytes = 64 << 10

// JobQueue accepts run job ids for the worker.
type JobQueue interface {
	Enqueue(ctx context.Context, jobID string) error
}

type RunService struct {
	runner judge.Runner
	store  repository.RunStore
	queue  JobQueue
	now    func() time.Time
}

func NewRunService(runner judge.Runner, store repository.RunStore, queue JobQueue) *RunService {
	return &RunService{runner: runner, store: store, queue: queue, now: time.Now}
}

type RunRequest struct {
	SourceCode string `json:"source_code"`
	// Language is an editor slug such as "javascript"; LanguageID, when set, wins.
	Language   string `json:"language"`
	LanguageID int    `json:"language_id,omitempty"`
	Stdin      string `json:"stdin"`
}

// RunResult is the answer of a synchronous run.
type RunResult struct {
	Outcome  model.Outcome `json:"outcome"`
	Output   string        `json:"output"`
	HasError bool          `json:"has_error"`
}

func NewRunResult(o model.Outcome) RunResult {
	return RunResult{Outcome: o, Output: o.Display(), HasError: o.HasError()}
}

func (req RunRequest) submission() (judge.Submission, error) {
	if strings.TrimSpace(req.SourceCode) == "" {
		return judge.Submission{}, errors.Wrap(common.ErrValidation, "source_code is required")
	}
	if len(req.SourceCode) > maxSourceBytes {
		return judge.Submission{}, errors.Wrapf(common.ErrValidation, "source_code exceeds %d bytes", maxSourceBytes)
	}
	id := req.LanguageID
	if id <= 0 {
		id = judge.LanguageID(req.Language)
	}
	return judge.Submission{SourceCode: req.SourceCode, LanguageID: id, Stdin: req.Stdin}, nil
}

// Run executes synchronously. Judge failures come back as an Outcome, not an error.
func (s *RunService) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	sub, err := req.submission()
	if err != nil {
		return nil, err
	}
	res := NewRunResult(s.runner.Run(ctx, sub))
	return &res, nil
}

// Enqueue stores a queued job and hands its id to the worker.
func (s *RunService) Enqueue(ctx context.Context, userID string, req RunRequest) (*model.RunJob, error) {
	sub, err := req.submission()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	job := &model.RunJob{
		ID:         uuid.NewString(),
		UserID:     userID,
		Language:   req.Language,
		LanguageID: sub.LanguageID,
		SourceCode: sub.SourceCode,
		Stdin:      sub.Stdin,
		Status:     model.RunStatusQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Save(ctx, job); err != nil {
		return nil, errors.Wrap(err, "failed to store run job")
	}
	if err := s.queue.Enqueue(ctx, job.ID); err != nil {
		log.Printf("ERROR: Failed to enqueue run job %s: %v", job.ID, err)
		return nil, errors.Mark(errors.Wrap(err, "failed to enqueue run job"), common.ErrServiceUnavailable)
	}
	log.Printf("INFO: Run job %s queued (language %d)", job.ID, job.LanguageID)
	return job, nil
}

// Get returns a job owned by userID. Another user's job reads as not found.
func (s *RunService) Get(ctx context.Context, userID, jobID string) (*model.RunJob, error) {
	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.UserID != userID {
		return nil, common.ErrNotFound
	}
	return job, nil
}
