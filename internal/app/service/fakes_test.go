package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"algoprep/internal/common"
	"algoprep/internal/domain/model"
	"algoprep/internal/judge"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMemUsers() *memUsers { return &memUsers{users: map[string]*model.User{}} }

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.users {
		if other.Email == u.Email || other.Username == u.Username {
			return common.ErrConflict
		}
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUsers) find(match func(*model.User) bool) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.Email == email })
}

func (m *memUsers) FindByUsername(_ context.Context, name string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.Username == name })
}

func (m *memUsers) FindByID(_ context.Context, id string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.ID == id })
}

type memCategories struct {
	cats []model.Category
}

func (m *memCategories) Create(_ context.Context, c *model.Category) error {
	for _, other := range m.cats {
		if other.Slug == c.Slug {
			return common.ErrConflict
		}
	}
	m.cats = append(m.cats, *c)
	return nil
}

func (m *memCategories) FindByID(_ context.Context, id string) (*model.Category, error) {
	for _, c := range m.cats {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *memCategories) List(context.Context) ([]model.Category, error) {
	out := append([]model.Category(nil), m.cats...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memProblems struct {
	problems map[string]*model.Problem
}

func newMemProblems(ps ...*model.Problem) *memProblems {
	m := &memProblems{problems: map[string]*model.Problem{}}
	for _, p := range ps {
		m.problems[p.ID] = p
	}
	return m
}

func (m *memProblems) Create(_ context.Context, p *model.Problem) error {
	for _, other := range m.problems {
		if other.Slug == p.Slug {
			return common.ErrConflict
		}
	}
	m.problems[p.ID] = p
	return nil
}

func (m *memProblems) FindByID(_ context.Context, id string) (*model.Problem, error) {
	if p, ok := m.problems[id]; ok {
		return p, nil
	}
	return nil, common.ErrNotFound
}

func (m *memProblems) FindBySlug(_ context.Context, slug string) (*model.Problem, error) {
	for _, p := range m.problems {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *memProblems) ListSummaries(_ context.Context, search string) ([]model.ProblemSummary, error) {
	var out []model.ProblemSummary
	for _, p := range m.problems {
		if search != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(search)) {
			continue
		}
		out = append(out, model.ProblemSummary{ID: p.ID, Title: p.Title, Slug: p.Slug, CategoryID: p.CategoryID})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (m *memProblems) UpdateSteps(_ context.Context, id string, steps []model.Step) error {
	p, ok := m.problems[id]
	if !ok {
		return common.ErrNotFound
	}
	p.Steps = steps
	return nil
}

type memSolved struct {
	rows map[[2]string]bool
}

func newMemSolved() *memSolved { return &memSolved{rows: map[[2]string]bool{}} }

func (m *memSolved) Mark(_ context.Context, s *model.SolvedStatus) error {
	m.rows[[2]string{s.UserID, s.ProblemID}] = true
	return nil
}

func (m *memSolved) Unmark(_ context.Context, userID, problemID string) (bool, error) {
	key := [2]string{userID, problemID}
	had := m.rows[key]
	delete(m.rows, key)
	return had, nil
}

func (m *memSolved) IsSolved(_ context.Context, userID, problemID string) (bool, error) {
	return m.rows[[2]string{userID, problemID}], nil
}

func (m *memSolved) ListProblemIDs(_ context.Context, userID string) ([]string, error) {
	var ids []string
	for key := range m.rows {
		if key[0] == userID {
			ids = append(ids, key[1])
		}
	}
	sort.Strings(ids)
	return ids, nil
}

type memRunStore struct {
	mu   sync.Mutex
	jobs map[string]model.RunJob
}

func newMemRunStore() *memRunStore { return &memRunStore{jobs: map[string]model.RunJob{}} }

func (m *memRunStore) Save(_ context.Context, job *model.RunJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = *job
	return nil
}

func (m *memRunStore) Get(_ context.Context, id string) (*model.RunJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &job, nil
}

type memQueue struct {
	ids []string
	err error
}

func (q *memQueue) Enqueue(_ context.Context, id string) error {
	if q.err != nil {
		return q.err
	}
	q.ids = append(q.ids, id)
	return nil
}

type stubRunner struct {
	got     []judge.Submission
	outcome model.Outcome
}

func (r *stubRunner) Run(_ context.Context, sub judge.Submission) model.Outcome {
	r.got = append(r.got, sub)
	return r.outcome
}
