package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fintrack/internal/core"
)

// TransactionFilter is the conjunctive filter shared by listing, counting
// and export reads. Zero values impose no constraint.
type TransactionFilter struct {
	Type       core.TransactionType
	CategoryID int64
	StartDate  string
	EndDate    string
}

// where renders the filter as AND clauses against alias t.
func (f TransactionFilter) where() (string, []any) {
	clause := ""
	var args []any
	if f.Type != "" {
		clause += ` AND t.type = ?`
		args = append(args, f.Type)
	}
	if f.CategoryID > 0 {
		clause += ` AND t.category_id = ?`
		args = append(args, f.CategoryID)
	}
	if f.StartDate != "" {
		clause += ` AND t.date >= ?`
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		clause += ` AND t.date <= ?`
		args = append(args, f.EndDate)
	}
	return clause, args
}

// TransactionPatch carries optional field updates; nil fields keep the
// stored value. A category can be changed but not cleared, matching the
// COALESCE update semantics.
type TransactionPatch struct {
	AmountCents *int64
	Description *string
	Date        *string
	Type        *string
	CategoryID  *int64
}

const transactionColumns = `t.id, t.user_id, t.category_id, t.amount_cents, t.type, t.date, t.description, t.created_at,
	 c.name, c.color, c.icon`

const transactionJoin = ` FROM transactions t LEFT JOIN categories c ON t.category_id = c.id`

func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, category_id, amount_cents, type, date, description)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.UserID, t.CategoryID, t.AmountCents, t.Type, t.Date, t.Description)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction insert id: %w", err)
	}
	return r.GetTransaction(ctx, t.UserID, id)
}

// GetTransaction fetches one ledger row with its category display fields.
// A row owned by another user reports the same not-found outcome as a
// missing row.
func (r *Repository) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+transactionJoin+` WHERE t.id = ? AND t.user_id = ?`,
		id, userID)
	t, err := scanTransaction(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.NotFoundf("Transaction not found")
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *Repository) UpdateTransaction(ctx context.Context, userID, id int64, p TransactionPatch) (core.Transaction, error) {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET amount_cents = COALESCE(?, amount_cents), description = COALESCE(?, description),
		     date = COALESCE(?, date), type = COALESCE(?, type), category_id = COALESCE(?, category_id)
		 WHERE id = ? AND user_id = ?`,
		p.AmountCents, p.Description, p.Date, p.Type, p.CategoryID, id, userID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	return r.GetTransaction(ctx, userID, id)
}

func (r *Repository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction affected: %w", err)
	}
	if n == 0 {
		return core.NotFoundf("Transaction not found")
	}
	return nil
}

// ListTransactions returns one page of filtered rows, newest date first
// with creation time as the tie-break.
func (r *Repository) ListTransactions(ctx context.Context, userID int64, f TransactionFilter, limit, offset int) ([]core.Transaction, error) {
	clause, args := f.where()
	query := `SELECT ` + transactionColumns + transactionJoin + ` WHERE t.user_id = ?` + clause +
		` ORDER BY t.date DESC, t.created_at DESC LIMIT ? OFFSET ?`
	args = append(append([]any{userID}, args...), limit, offset)
	return r.queryTransactions(ctx, query, args...)
}

// CountTransactions re-runs the filter predicate without pagination.
func (r *Repository) CountTransactions(ctx context.Context, userID int64, f TransactionFilter) (int64, error) {
	clause, args := f.where()
	query := `SELECT COUNT(*) FROM transactions t WHERE t.user_id = ?` + clause
	args = append([]any{userID}, args...)

	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

// ExportTransactions returns the full unpaginated match set ordered by date
// descending, for the CSV and document encoders.
func (r *Repository) ExportTransactions(ctx context.Context, userID int64, f TransactionFilter) ([]core.Transaction, error) {
	clause, args := f.where()
	query := `SELECT ` + transactionColumns + transactionJoin + ` WHERE t.user_id = ?` + clause +
		` ORDER BY t.date DESC`
	args = append([]any{userID}, args...)
	return r.queryTransactions(ctx, query, args...)
}

func (r *Repository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTransaction(scan func(...any) error) (core.Transaction, error) {
	var t core.Transaction
	err := scan(&t.ID, &t.UserID, &t.CategoryID, &t.AmountCents, &t.Type, &t.Date, &t.Description, &t.CreatedAt,
		&t.CategoryName, &t.CategoryColor, &t.CategoryIcon)
	return t, err
}
