package postgresql

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/taskhive-api/internal"
	"github.com/taskhive/taskhive-api/internal/postgresql/db"
)

//Category represents the repository used for persisting Category
//records. Names are unique per owner, duplicates surface as conflicts.
type Category struct {
	pool *pgxpool.Pool
}

//NewCategory instantiates the Category repository
func NewCategory(pool *pgxpool.Pool) *Category {
	return &Category{
		pool: pool,
	}
}

//Create inserts a new Category owned by params.UserID
func (c *Category) Create(ctx context.Context, params internal.CreateCategoryParams) (internal.Category, error) {
	defer newOTELSpan(ctx, "Category.Create").End()

	rec := db.Category{
		ID:     uuid.New(),
		UserID: params.UserID,
		Name:   params.Name,
	}

	if _, err := c.pool.Exec(ctx,
		`INSERT INTO categories (id, user_id, name) VALUES ($1, $2, $3)`,
		rec.ID, rec.UserID, rec.Name); err != nil {
		if isUniqueViolation(err) {
			return internal.Category{}, internal.NewErrorf(internal.ErrorCodeConflict, "category %q already exists", params.Name)
		}
		return internal.Category{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "pool.Exec insert category")
	}

	return internal.Category{
		ID:     rec.ID,
		UserID: rec.UserID,
		Name:   rec.Name,
	}, nil
}

//Find returns the requester's Category, rows owned by anyone else
//behave as not found.
func (c *Category) Find(ctx context.Context, userID, id uuid.UUID) (internal.Category, error) {
	defer newOTELSpan(ctx, "Category.Find").End()

	var rec db.Category

	if err := c.pool.QueryRow(ctx,
		`SELECT id, user_id, name FROM categories WHERE id = $1 AND user_id = $2`,
		id, userID).Scan(&rec.ID, &rec.UserID, &rec.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return internal.Category{}, internal.NewErrorf(internal.ErrorCodeNotFound, "category not found")
		}
		return internal.Category{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "pool.QueryRow select category")
	}

	return internal.Category{
		ID:     rec.ID,
		UserID: rec.UserID,
		Name:   rec.Name,
	}, nil
}

//List returns all of the requester's categories ordered by name
func (c *Category) List(ctx context.Context, userID uuid.UUID) ([]internal.Category, error) {
	defer newOTELSpan(ctx, "Category.List").End()

	rows, err := c.pool.Query(ctx,
		`SELECT id, user_id, name FROM categories WHERE user_id = $1 ORDER BY name`,
		userID)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "pool.Query")
	}
	defer rows.Close()

	var res []internal.Category

	for rows.Next() {
		var rec db.Category

		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Name); err != nil {
			return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "rows.Scan")
		}

		res = append(res, internal.Category{
			ID:     rec.ID,
			UserID: rec.UserID,
			Name:   rec.Name,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "rows.Err")
	}

	return res, nil
}

//Update renames the requester's Category
func (c *Category) Update(ctx context.Context, userID, id uuid.UUID, params internal.UpdateCategoryParams) (internal.Category, error) {
	defer newOTELSpan(ctx, "Category.Update").End()

	tag, err := c.pool.Exec(ctx,
		`UPDATE categories SET name = $1 WHERE id = $2 AND user_id = $3`,
		params.Name, id, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return internal.Category{}, internal.NewErrorf(internal.ErrorCodeConflict, "category %q already exists", params.Name)
		}
		return internal.Category{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "pool.Exec update category")
	}

	if tag.RowsAffected() == 0 {
		return internal.Category{}, internal.NewErrorf(internal.ErrorCodeNotFound, "category not found")
	}

	return internal.Category{
		ID:     id,
		UserID: userID,
		Name:   params.Name,
	}, nil
}

//Delete removes the requester's Category, detaching referencing Tasks
//in the same transaction. Tasks themselves are never deleted here.
func (c *Category) Delete(ctx context.Context, userID, id uuid.UUID) error {
	defer newOTELSpan(ctx, "Category.Delete").End()

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "pool.Begin")
	}
	defer tx.Rollback(ctx) //nolint: errcheck

	if _, err := tx.Exec(ctx,
		`UPDATE tasks SET category_id = NULL WHERE category_id = $1 AND user_id = $2`,
		id, userID); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "tx.Exec detach tasks")
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM categories WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "tx.Exec delete category")
	}

	if tag.RowsAffected() == 0 {
		return internal.NewErrorf(internal.ErrorCodeNotFound, "category not found")
	}

	if err := tx.Commit(ctx); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "tx.Commit")
	}

	return nil
}
