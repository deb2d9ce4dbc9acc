package repository

import (
	"context"
	"database/sql"

	"algoprep/internal/common"
	"algoprep/internal/domain/model"

	"github.com/cockroachdb/errors"
)

// SolvedRepository stores one row per (user, problem) pair marked solved.
type SolvedRepository interface {
	// Mark is idempotent: marking an already solved problem succeeds.
	Mark(ctx context.Context, s *model.SolvedStatus) error
	// Unmark reports whether a row was removed.
	Unmark(ctx context.Context, userID, problemID string) (bool, error)
	IsSolved(ctx context.Context, userID, problemID string) (bool, error)
	ListProblemIDs(ctx context.Context, userID string) ([]string, error)
}

type pgSolvedRepository struct {
	db *sql.DB
}

func NewPgSolvedRepository(db *sql.DB) SolvedRepository {
	return &pgSolvedRepository{db: db}
}

func (r *pgSolvedRepository) Mark(ctx context.Context, s *model.SolvedStatus) error {
	query := `INSERT INTO solved_status (id, user_id, problem_id) VALUES ($1, $2, $3)
	          ON CONFLICT (user_id, problem_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, s.ID, s.UserID, s.ProblemID); err != nil {
		if isForeignKeyViolation(err) {
			return errors.Wrap(common.ErrNotFound, "problem or user does not exist")
		}
		return errors.Wrap(err, "pgSolvedRepository.Mark")
	}
	return nil
}

func (r *pgSolvedRepository) Unmark(ctx context.Context, userID, problemID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM solved_status WHERE user_id = $1 AND problem_id = $2`, userID, problemID)
	if err != nil {
		return false, errors.Wrap(err, "pgSolvedRepository.Unmark")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "pgSolvedRepository.Unmark rows affected")
	}
	return n > 0, nil
}

func (r *pgSolvedRepository) IsSolved(ctx context.Context, userID, problemID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM solved_status WHERE user_id = $1 AND problem_id = $2)`,
		userID, problemID).Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "pgSolvedRepository.IsSolved")
	}
	return exists, nil
}

func (r *pgSolvedRepository) ListProblemIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT problem_id FROM solved_status WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "pgSolvedRepository.ListProblemIDs")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "pgSolvedRepository.ListProblemIDs scan")
		}
		ids = append(ids, id)
	}
	return ids, errors.Wrap(rows.Err(), "pgSolvedRepository.ListProblemIDs rows")
}
