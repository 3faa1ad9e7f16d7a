// Package storage is the ledger store adapter: parameterized SQLite queries
// over users, categories and transactions. Every statement that touches
// ledger data is scoped to a user id.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

// Open creates the database directory if needed, opens the SQLite database,
// runs migrations and returns a ready repository.
func Open(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	// The _pragma DSN parameter applies to every pooled connection, unlike
	// a one-off PRAGMA statement.
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateUser inserts a user and returns the stored row.
func (r *Repository) CreateUser(ctx context.Context, username, email, passwordHash string) (core.User, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?)`,
		username, email, passwordHash)
	if err != nil {
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("user insert id: %w", err)
	}
	return r.GetUserByID(ctx, id)
}

// GetUserByLogin resolves a user by username or email, mirroring the login
// form which accepts either.
func (r *Repository) GetUserByLogin(ctx context.Context, login string) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at
		 FROM users WHERE username = ? OR email = ?`, login, login))
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at
		 FROM users WHERE id = ?`, id))
}

// UserExists reports whether a username or email is already taken.
func (r *Repository) UserExists(ctx context.Context, username, email string) (bool, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM users WHERE username = ? OR email = ?`, username, email).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return true, nil
}

func (r *Repository) scanUser(row *sql.Row) (core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.NotFoundf("User not found")
	}
	if err != nil {
		return core.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

// defaultCategories are seeded for every new account.
var defaultCategories = []core.Category{
	{Name: "Salary", Type: core.Income, Color: "#10B981", Icon: "work"},
	{Name: "Freelance", Type: core.Income, Color: "#3B82F6", Icon: "business"},
	{Name: "Investment", Type: core.Income, Color: "#8B5CF6", Icon: "trending_up"},
	{Name: "Food & Dining", Type: core.Expense, Color: "#F59E0B", Icon: "restaurant"},
	{Name: "Transportation", Type: core.Expense, Color: "#EF4444", Icon: "directions_car"},
	{Name: "Entertainment", Type: core.Expense, Color: "#EC4899", Icon: "movie"},
	{Name: "Shopping", Type: core.Expense, Color: "#06B6D4", Icon: "shopping_bag"},
	{Name: "Bills & Utilities", Type: core.Expense, Color: "#84CC16", Icon: "receipt"},
	{Name: "Healthcare", Type: core.Expense, Color: "#F97316", Icon: "local_hospital"},
	{Name: "Education", Type: core.Expense, Color: "#6366F1", Icon: "school"},
}

// SeedDefaultCategories creates the starter category set for a new user in
// a single transaction.
func (r *Repository) SeedDefaultCategories(ctx context.Context, userID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	for _, c := range defaultCategories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (user_id, name, type, color, icon) VALUES (?, ?, ?, ?, ?)`,
			userID, c.Name, c.Type, c.Color, c.Icon); err != nil {
			return fmt.Errorf("seed category %q: %w", c.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed transaction: %w", err)
	}
	return nil
}
