package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"algoprep/internal/common"
	"algoprep/internal/domain/model"

	"github.com/cockroachdb/errors"
)

type ProblemRepository interface {
	Create(ctx context.Context, p *model.Problem) error
	FindByID(ctx context.Context, id string) (*model.Problem, error)
	FindBySlug(ctx context.Context, slug string) (*model.Problem, error)
	// ListSummaries returns problems ordered by title. A non-empty search keeps only
	// titles containing it, case-insensitively.
	ListSummaries(ctx context.Context, search string) ([]model.ProblemSummary, error)
	UpdateSteps(ctx context.Context, id string, steps []model.Step) error
}

type pgProblemRepository struct {
	db *sql.DB
}

func NewPgProblemRepository(db *sql.DB) ProblemRepository {
	return &pgProblemRepository{db: db}
}

const problemSelect = `SELECT p.id, p.title, p.slug, p.description, p.example, p.category_id, c.name, p.steps, p.created_at, p.updated_at
	FROM problems p LEFT JOIN categories c ON c.id = p.category_id`

func (r *pgProblemRepository) Create(ctx context.Context, p *model.Problem) error {
	steps, err := encodeSteps(p.Steps)
	if err != nil {
		return err
	}
	query := `INSERT INTO problems (id, title, slug, description, example, category_id, steps)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING created_at, updated_at`
	err = r.db.QueryRowContext(ctx, query, p.ID, p.Title, p.Slug, p.Description, p.Example, p.CategoryID, steps).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return errors.Wrap(common.ErrConflict, "problem with this slug already exists")
		case isForeignKeyViolation(err):
			return errors.Wrap(common.ErrValidation, "category does not exist")
		}
		return errors.Wrap(err, "pgProblemRepository.Create")
	}
	return nil
}

func (r *pgProblemRepository) FindByID(ctx context.Context, id string) (*model.Problem, error) {
	return r.findOne(ctx, "FindByID", problemSelect+` WHERE p.id = $1`, id)
}

func (r *pgProblemRepository) FindBySlug(ctx context.Context, slug string) (*model.Problem, error) {
	return r.findOne(ctx, "FindBySlug", problemSelect+` WHERE p.slug = $1`, slug)
}

func (r *pgProblemRepository) findOne(ctx context.Context, op, query, arg string) (*model.Problem, error) {
	p := &model.Problem{}
	var steps []byte
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&p.ID, &p.Title, &p.Slug, &p.Description, &p.Example, &p.CategoryID, &p.CategoryName, &steps, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, errors.Wrapf(err, "pgProblemRepository.%s", op)
	}
	if p.Steps, err = decodeSteps(steps); err != nil {
		return nil, errors.Wrapf(err, "pgProblemRepository.%s: problem %s", op, p.ID)
	}
	return p, nil
}

func (r *pgProblemRepository) ListSummaries(ctx context.Context, search string) ([]model.ProblemSummary, error) {
	query := `SELECT id, title, slug, category_id FROM problems`
	var args []interface{}
	if search = strings.TrimSpace(search); search != "" {
		query += ` WHERE title ILIKE $1`
		args = append(args, "%"+escapeLike(search)+"%")
	}
	query += ` ORDER BY title ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "pgProblemRepository.ListSummaries")
	}
	defer rows.Close()

	var out []model.ProblemSummary
	for rows.Next() {
		var s model.ProblemSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.Slug, &s.CategoryID); err != nil {
			return nil, errors.Wrap(err, "pgProblemRepository.ListSummaries scan")
		}
		out = append(out, s)
	}
	return out, errors.Wrap(rows.Err(), "pgProblemRepository.ListSummaries rows")
}

func (r *pgProblemRepository) UpdateSteps(ctx context.Context, id string, steps []model.Step) error {
	data, err := encodeSteps(steps)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE problems SET steps = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, data, id)
	if err != nil {
		return errors.Wrap(err, "pgProblemRepository.UpdateSteps")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func encodeSteps(steps []model.Step) ([]byte, error) {
	if steps == nil {
		steps = []model.Step{}
	}
	data, err := json.Marshal(steps)
	if err != nil {
		return nil, errors.Wrap(err, "encode steps")
	}
	return data, nil
}

func decodeSteps(data []byte) ([]model.Step, error) {
	if len(data) == 0 {
		return []model.Step{}, nil
	}
	var steps []model.Step
	if err := json.Unmarshal(data, &steps); err != nil {
		return nil, errors.Wrap(err, "decode steps")
	}
	if steps == nil {
		steps = []model.Step{}
	}
	return steps, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
