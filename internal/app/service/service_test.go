package service

import (
	"context"
	"testing"

	"algoprep/internal/common"
	"algoprep/internal/common/security"
	"algoprep/internal/domain/model"
	"algoprep/internal/platform/config"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestAuthSignupAndLogin(t *testing.T) {
	config.AppConfig = config.FromEnv()
	security.InitJWT()
	ctx := context.Background()
	auth := NewAuthService(newMemUsers())

	res, err := auth.Signup(ctx, SignupRequest{Username: "ada", Email: "Ada@Example.com", Password: "hunter22"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.Equal(t, "ada@example.com", res.User.Email)
	require.Empty(t, res.User.HashedPassword)
	require.Equal(t, model.RoleUser, res.User.Role)

	_, err = auth.Signup(ctx, SignupRequest{Username: "ada", Email: "other@example.com", Password: "hunter22"})
	require.True(t, errors.Is(err, common.ErrConflict))

	_, err = auth.Signup(ctx, SignupRequest{Username: "bob", Email: "not-an-email", Password: "hunter22"})
	require.True(t, errors.Is(err, common.ErrValidation))
	_, err = auth.Signup(ctx, SignupRequest{Username: "bob", Email: "bob@example.com", Password: "123"})
	require.True(t, errors.Is(err, common.ErrValidation))
	_, err = auth.Signup(ctx, SignupRequest{})
	require.True(t, errors.Is(err, common.ErrBadRequest))

	for _, login := range []string{"ada", "ada@example.com", "ADA@example.com"} {
		res, err := auth.Login(ctx, LoginRequest{LoginField: login, Password: "hunter22"})
		require.NoError(t, err, login)
		require.Empty(t, res.User.HashedPassword)
	}
	_, err = auth.Login(ctx, LoginRequest{LoginField: "ada", Password: "wrong"})
	require.True(t, errors.Is(err, common.ErrUnauthorized))
	_, err = auth.Login(ctx, LoginRequest{LoginField: "nobody", Password: "hunter22"})
	require.True(t, errors.Is(err, common.ErrUnauthorized))
}

func TestGroupProblems(t *testing.T) {
	cats := []model.Category{
		{ID: "c-graph", Name: "Graphs"},
		{ID: "c-arr", Name: "arrays"},
		{ID: "c-empty", Name: "Dynamic Programming"},
	}
	problems := []model.ProblemSummary{
		{ID: "p1", Title: "BFS Order", CategoryID: strp("c-graph")},
		{ID: "p2", Title: "Two Sum", CategoryID: strp("c-arr")},
		{ID: "p3", Title: "Orphan", CategoryID: strp("c-gone")},
		{ID: "p4", Title: "No Category"},
		{ID: "p5", Title: "three sum", CategoryID: strp("c-arr")},
	}

	groups := GroupProblems(cats, problems, "", map[string]bool{"p2": true})
	var names []string
	for _, g := range groups {
		names = append(names, g.Category.Name)
	}
	require.Equal(t, []string{"arrays", "Graphs", "Uncategorized", "Uncategorized"}, names)
	require.Len(t, groups[0].Problems, 2)
	require.True(t, groups[0].Problems[0].Solved)
	require.False(t, groups[0].Problems[1].Solved)
	require.Equal(t, "c-gone", groups[2].Category.ID)
	require.Equal(t, "", groups[3].Category.ID)

	groups = GroupProblems(cats, problems, "  SUM ", nil)
	require.Len(t, groups, 1)
	require.Equal(t, "arrays", groups[0].Category.Name)
	require.Len(t, groups[0].Problems, 2)

	require.Empty(t, GroupProblems(cats, problems, "zzz", nil))
	require.Empty(t, GroupProblems(nil, nil, "", nil))
}

func TestProblemServiceCreateAndList(t *testing.T) {
	ctx := context.Background()
	cats := &memCategories{}
	problems := newMemProblems()
	solved := newMemSolved()
	catSvc := NewCategoryService(cats)
	svc := NewProblemService(problems, cats, solved)

	arrays, err := catSvc.Create(ctx, CreateCategoryRequest{Name: " Arrays & Hashing "})
	require.NoError(t, err)
	require.Equal(t, "arrays-and-hashing", arrays.Slug)
	_, err = catSvc.Create(ctx, CreateCategoryRequest{Name: "uncategorized"})
	require.True(t, errors.Is(err, common.ErrValidation))

	p, err := svc.Create(ctx, CreateProblemRequest{
		Title:      "Two Sum",
		CategoryID: &arrays.ID,
		Steps:      []model.Step{{Message: "start"}, {Message: "done"}},
	})
	require.NoError(t, err)
	require.Equal(t, "two-sum", p.Slug)
	require.Equal(t, "Arrays & Hashing", *p.CategoryName)

	_, err = svc.Create(ctx, CreateProblemRequest{Title: "Two Sum"})
	require.True(t, errors.Is(err, common.ErrConflict))
	_, err = svc.Create(ctx, CreateProblemRequest{Title: "X", CategoryID: strp("missing")})
	require.True(t, errors.Is(err, common.ErrValidation))
	_, err = svc.Create(ctx, CreateProblemRequest{Title: "   "})
	require.True(t, errors.Is(err, common.ErrValidation))

	loose, err := svc.Create(ctx, CreateProblemRequest{Title: "Valid Parentheses"})
	require.NoError(t, err)
	require.NotNil(t, loose.Steps)

	require.NoError(t, solved.Mark(ctx, &model.SolvedStatus{UserID: "u1", ProblemID: p.ID}))
	groups, err := svc.ListGrouped(ctx, "", "u1")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	require.Equal(t, "Arrays & Hashing", groups[0].Category.Name)
	require.True(t, groups[0].Problems[0].Solved)
	require.Equal(t, model.UncategorizedName, groups[1].Category.Name)

	anon, err := svc.ListGrouped(ctx, "two", "")
	require.NoError(t, err)
	require.Len(t, anon, 1)
	require.False(t, anon[0].Problems[0].Solved)

	frames, err := svc.Frames(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	require.Equal(t, "$ done", frames[1].Prompt)

	require.NoError(t, svc.ReplaceSteps(ctx, p.ID, []model.Step{{Message: "only"}}))
	frames, err = svc.Frames(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, frames, 1)

	_, err = svc.Frames(ctx, "missing")
	require.True(t, errors.Is(err, common.ErrNotFound))
}

func TestSolvedToggle(t *testing.T) {
	ctx := context.Background()
	problems := newMemProblems(&model.Problem{ID: "p1", Title: "Two Sum"})
	svc := NewSolvedService(newMemSolved(), problems)

	st, err := svc.Get(ctx, "u1", "p1")
	require.NoError(t, err)
	require.False(t, st.Solved)

	for i := 0; i < 2; i++ {
		st, err = svc.Set(ctx, "u1", "p1", true)
		require.NoError(t, err)
		require.True(t, st.Solved)
	}
	ids, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, []string{"p1"}, ids)

	others, err := svc.List(ctx, "u2")
	require.NoError(t, err)
	require.Empty(t, others)

	for i := 0; i < 2; i++ {
		st, err = svc.Set(ctx, "u1", "p1", false)
		require.NoError(t, err)
		require.False(t, st.Solved)
	}

	_, err = svc.Set(ctx, "u1", "nope", true)
	require.True(t, errors.Is(err, common.ErrNotFound))
	_, err = svc.Get(ctx, "", "p1")
	require.True(t, errors.Is(err, common.ErrBadRequest))
	_, err = svc.List(ctx, "")
	require.True(t, errors.Is(err, common.ErrUnauthorized))
}

func TestRunService(t *testing.T) {
	ctx := context.Background()
	runner := &stubRunner{outcome: model.Outcome{Kind: model.OutcomeRuntimeError, Text: "boom"}}
	store := newMemRunStore()
	queue := &memQueue{}
	svc := NewRunService(runner, store, queue)

	res, err := svc.Run(ctx, RunRequest{SourceCode: "print(1)", Language: "python"})
	require.NoError(t, err)
	require.True(t, res.HasError)
	require.Equal(t, "Runtime Error:\nboom", res.Output)
	require.Equal(t, 71, runner.got[0].LanguageID)

	_, err = svc.Run(ctx, RunRequest{SourceCode: "x", Language: "python", LanguageID: 54})
	require.NoError(t, err)
	require.Equal(t, 54, runner.got[1].LanguageID)

	_, err = svc.Run(ctx, RunRequest{SourceCode: "   "})
	require.True(t, errors.Is(err, common.ErrValidation))
	require.Len(t, runner.got, 2)

	job, err := svc.Enqueue(ctx, "u1", RunRequest{SourceCode: "console.log(1)", Language: "javascript"})
	require.NoError(t, err)
	require.Equal(t, model.RunStatusQueued, job.Status)
	require.Equal(t, []string{job.ID}, queue.ids)

	got, err := svc.Get(ctx, "u1", job.ID)
	require.NoError(t, err)
	require.Equal(t, 63, got.LanguageID)
	_, err = svc.Get(ctx, "u2", job.ID)
	require.True(t, errors.Is(err, common.ErrNotFound))

	queue.err = errors.New("redis down")
	_, err = svc.Enqueue(ctx, "u1", RunRequest{SourceCode: "x"})
	require.True(t, errors.Is(err, common.ErrServiceUnavailable))
	require.Equal(t, 503, common.HTTPStatusFromError(err))
}
