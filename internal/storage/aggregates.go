package storage

import (
	"context"
	"fmt"

	"fintrack/internal/core"
)

type (
	// TypeTotal is the amount sum and row count for one transaction type
	// within a period.
	TypeTotal struct {
		Type       core.TransactionType
		TotalCents int64
		Count      int
	}

	// BreakdownRow is one (category, type) aggregate. Category fields are
	// nil for uncategorized transactions.
	BreakdownRow struct {
		Name       *string
		Color      *string
		Icon       *string
		Type       core.TransactionType
		TotalCents int64
		Count      int
	}

	// DailyTotal is the conditional income/expense split for one date.
	DailyTotal struct {
		Date         string
		IncomeCents  int64
		ExpenseCents int64
	}

	// MonthTotal is one (year-month, type) aggregate for the trend window.
	MonthTotal struct {
		YearMonth  string // "YYYY-MM"
		Type       core.TransactionType
		TotalCents int64
	}
)

func periodKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// SumByType groups a user's transactions in the given year+month by type.
// Types with no rows are simply absent from the result.
func (r *Repository) SumByType(ctx context.Context, userID int64, year, month int) ([]TypeTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT type, SUM(amount_cents), COUNT(*)
		 FROM transactions
		 WHERE user_id = ? AND strftime('%Y-%m', date) = ?
		 GROUP BY type`,
		userID, periodKey(year, month))
	if err != nil {
		return nil, fmt.Errorf("sum by type: %w", err)
	}
	defer rows.Close()

	var out []TypeTotal
	for rows.Next() {
		var t TypeTotal
		if err := rows.Scan(&t.Type, &t.TotalCents, &t.Count); err != nil {
			return nil, fmt.Errorf("scan type total: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CategoryBreakdown groups by (category, type) for a period. Sorted by
// total descending with category name as the explicit tie-break, so the
// order is stable rather than an accident of the query plan.
func (r *Repository) CategoryBreakdown(ctx context.Context, userID int64, year, month int) ([]BreakdownRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.name, c.color, c.icon, t.type, SUM(t.amount_cents) AS total, COUNT(*)
		 FROM transactions t
		 LEFT JOIN categories c ON t.category_id = c.id
		 WHERE t.user_id = ? AND strftime('%Y-%m', t.date) = ?
		 GROUP BY c.name, c.color, c.icon, t.type
		 ORDER BY total DESC, c.name ASC`,
		userID, periodKey(year, month))
	if err != nil {
		return nil, fmt.Errorf("category breakdown: %w", err)
	}
	defer rows.Close()

	var out []BreakdownRow
	for rows.Next() {
		var b BreakdownRow
		if err := rows.Scan(&b.Name, &b.Color, &b.Icon, &b.Type, &b.TotalCents, &b.Count); err != nil {
			return nil, fmt.Errorf("scan breakdown row: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// DailyFlow sums income and expense per distinct date in a period. Days
// with no transactions are not synthesized.
func (r *Repository) DailyFlow(ctx context.Context, userID int64, year, month int) ([]DailyTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date,
		        SUM(CASE WHEN type = 'income' THEN amount_cents ELSE 0 END),
		        SUM(CASE WHEN type = 'expense' THEN amount_cents ELSE 0 END)
		 FROM transactions
		 WHERE user_id = ? AND strftime('%Y-%m', date) = ?
		 GROUP BY date
		 ORDER BY date`,
		userID, periodKey(year, month))
	if err != nil {
		return nil, fmt.Errorf("daily flow: %w", err)
	}
	defer rows.Close()

	var out []DailyTotal
	for rows.Next() {
		var d DailyTotal
		if err := rows.Scan(&d.Date, &d.IncomeCents, &d.ExpenseCents); err != nil {
			return nil, fmt.Errorf("scan daily total: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// MonthlyTotals groups by (year-month, type) for all transactions dated on
// or after since (YYYY-MM-DD, inclusive).
func (r *Repository) MonthlyTotals(ctx context.Context, userID int64, since string) ([]MonthTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT strftime('%Y-%m', date) AS ym, type, SUM(amount_cents)
		 FROM transactions
		 WHERE user_id = ? AND date >= ?
		 GROUP BY ym, type
		 ORDER BY ym`,
		userID, since)
	if err != nil {
		return nil, fmt.Errorf("monthly totals: %w", err)
	}
	defer rows.Close()

	var out []MonthTotal
	for rows.Next() {
		var m MonthTotal
		if err := rows.Scan(&m.YearMonth, &m.Type, &m.TotalCents); err != nil {
			return nil, fmt.Errorf("scan month total: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
