package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fintrack/internal/core"
)

// CategoryPatch carries optional field updates; nil fields keep the stored
// value (COALESCE semantics).
type CategoryPatch struct {
	Name  *string
	Type  *string
	Color *string
	Icon  *string
}

// ListCategories returns a user's categories ordered by name. An empty typ
// imposes no type constraint.
func (r *Repository) ListCategories(ctx context.Context, userID int64, typ core.TransactionType) ([]core.Category, error) {
	query := `SELECT id, user_id, name, type, color, icon, created_at FROM categories WHERE user_id = ?`
	args := []any{userID}
	if typ != "" {
		query += ` AND type = ?`
		args = append(args, typ)
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.Color, &c.Icon, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) GetCategory(ctx context.Context, userID, id int64) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, type, color, icon, created_at
		 FROM categories WHERE id = ? AND user_id = ?`, id, userID).
		Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.Color, &c.Icon, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.NotFoundf("Category not found")
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// CategoryNameExists reports whether the user already has a category with
// this name, optionally excluding one id (for renames).
func (r *Repository) CategoryNameExists(ctx context.Context, userID int64, name string, excludeID int64) (bool, error) {
	query := `SELECT id FROM categories WHERE name = ? AND user_id = ?`
	args := []any{name, userID}
	if excludeID > 0 {
		query += ` AND id != ?`
		args = append(args, excludeID)
	}
	var id int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return true, nil
}

func (r *Repository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (user_id, name, type, color, icon) VALUES (?, ?, ?, ?, ?)`,
		c.UserID, c.Name, c.Type, c.Color, c.Icon)
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category insert id: %w", err)
	}
	return r.GetCategory(ctx, c.UserID, id)
}

func (r *Repository) UpdateCategory(ctx context.Context, userID, id int64, p CategoryPatch) (core.Category, error) {
	_, err := r.db.ExecContext(ctx,
		`UPDATE categories
		 SET name = COALESCE(?, name), type = COALESCE(?, type),
		     color = COALESCE(?, color), icon = COALESCE(?, icon)
		 WHERE id = ? AND user_id = ?`,
		p.Name, p.Type, p.Color, p.Icon, id, userID)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	return r.GetCategory(ctx, userID, id)
}

func (r *Repository) DeleteCategory(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category affected: %w", err)
	}
	if n == 0 {
		return core.NotFoundf("Category not found")
	}
	return nil
}

// CountTransactionsForCategory counts ledger rows still referencing a
// category, used by the delete-while-referenced guard.
func (r *Repository) CountTransactionsForCategory(ctx context.Context, categoryID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE category_id = ?`, categoryID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count category transactions: %w", err)
	}
	return n, nil
}
