package repository

import (
	"context"
	"database/sql"

	"algoprep/internal/common"
	"algoprep/internal/domain/model"

	"github.com/cockroachdb/errors"
)

type CategoryRepository interface {
	Create(ctx context.Context, c *model.Category) error
	FindByID(ctx context.Context, id string) (*model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
}

type pgCategoryRepository struct {
	db *sql.DB
}

func NewPgCategoryRepository(db *sql.DB) CategoryRepository {
	return &pgCategoryRepository{db: db}
}

func (r *pgCategoryRepository) Create(ctx context.Context, c *model.Category) error {
	query := `INSERT INTO categories (id, name, slug) VALUES ($1, $2, $3) RETURNING created_at`
	if err := r.db.QueryRowContext(ctx, query, c.ID, c.Name, c.Slug).Scan(&c.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return errors.Wrapf(common.ErrConflict, "category %q already exists", c.Name)
		}
		return errors.Wrap(err, "pgCategoryRepository.Create")
	}
	return nil
}

func (r *pgCategoryRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	c := &model.Category{}
	err := r.db.QueryRowContext(ctx, `SELECT id, name, slug, created_at FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, errors.Wrap(err, "pgCategoryRepository.FindByID")
	}
	return c, nil
}

func (r *pgCategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, slug, created_at FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "pgCategoryRepository.List")
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "pgCategoryRepository.List scan")
		}
		out = append(out, c)
	}
	return out, errors.Wrap(rows.Err(), "pgCategoryRepository.List rows")
}
