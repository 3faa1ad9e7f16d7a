package reports

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

func newTestEngine(t *testing.T) (*Engine, *storage.Repository, int64) {
	t.Helper()
	repo, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	user, err := repo.CreateUser(context.Background(), "alice", "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	e := NewEngine(repo)
	e.now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }
	return e, repo, user.ID
}

func seed(t *testing.T, repo *storage.Repository, userID int64, categoryID *int64, cents int64, typ core.TransactionType, date, desc string) {
	t.Helper()
	_, err := repo.CreateTransaction(context.Background(), core.Transaction{
		UserID: userID, CategoryID: categoryID, AmountCents: cents, Type: typ, Date: date, Description: desc,
	})
	if err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
}

func TestMonthlySummaryNetInvariant(t *testing.T) {
	e, repo, userID := newTestEngine(t)
	ctx := context.Background()

	seed(t, repo, userID, nil, 300000, core.Income, "2024-01-01", "Salary")
	seed(t, repo, userID, nil, 1250, core.Expense, "2024-01-05", "Lunch")
	seed(t, repo, userID, nil, 2025, core.Expense, "2024-01-20", "Taxi")

	report, err := e.MonthlySummary(ctx, userID, 2024, 1)
	if err != nil {
		t.Fatalf("monthly summary: %v", err)
	}

	s := report.Summary
	if s.Income != 3000.00 || s.IncomeCount != 1 {
		t.Errorf("income = %v (%d), want 3000.00 (1)", s.Income, s.IncomeCount)
	}
	if s.Expense != 32.75 || s.ExpenseCount != 2 {
		t.Errorf("expense = %v (%d), want 32.75 (2)", s.Expense, s.ExpenseCount)
	}
	if s.Net != s.Income-s.Expense {
		t.Errorf("net = %v, want income-expense = %v", s.Net, s.Income-s.Expense)
	}
}

func TestMonthlySummaryBreakdownSumsMatchTotals(t *testing.T) {
	e, repo, userID := newTestEngine(t)
	ctx := context.Background()

	cat, err := repo.CreateCategory(ctx, core.Category{
		UserID: userID, Name: "Food & Dining", Type: core.Expense, Color: "#EF4444", Icon: "restaurant",
	})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	seed(t, repo, userID, &cat.ID, 1250, core.Expense, "2024-01-05", "Lunch")
	seed(t, repo, userID, nil, 750, core.Expense, "2024-01-06", "Tip")
	seed(t, repo, userID, nil, 500000, core.Income, "2024-01-01", "Salary")

	report, err := e.MonthlySummary(ctx, userID, 2024, 1)
	if err != nil {
		t.Fatalf("monthly summary: %v", err)
	}

	var incomeSum, expenseSum float64
	for _, row := range report.CategoryBreakdown {
		if row.Type == core.Income {
			incomeSum += row.Total
		} else {
			expenseSum += row.Total
		}
	}
	if incomeSum != report.Summary.Income {
		t.Errorf("breakdown income sum %v != summary income %v", incomeSum, report.Summary.Income)
	}
	if expenseSum != report.Summary.Expense {
		t.Errorf("breakdown expense sum %v != summary expense %v", expenseSum, report.Summary.Expense)
	}

	// Rows sorted by total descending.
	for i := 1; i < len(report.CategoryBreakdown); i++ {
		if report.CategoryBreakdown[i-1].Total < report.CategoryBreakdown[i].Total {
			t.Error("breakdown not sorted by total descending")
		}
	}
}

func TestMonthlySummaryEmptyMonth(t *testing.T) {
	e, _, userID := newTestEngine(t)

	report, err := e.MonthlySummary(context.Background(), userID, 2024, 6)
	if err != nil {
		t.Fatalf("monthly summary: %v", err)
	}

	if report.Summary != (PeriodSummary{}) {
		t.Errorf("empty month summary = %+v, want all zeros", report.Summary)
	}
	if report.CategoryBreakdown == nil || report.DailySpending == nil {
		t.Error("empty month must yield empty slices, not nil")
	}
	if len(report.CategoryBreakdown) != 0 || len(report.DailySpending) != 0 {
		t.Error("empty month must yield no rows")
	}
	if report.Period.Year != 2024 || report.Period.Month != 6 {
		t.Errorf("period echo = %+v", report.Period)
	}
}

func TestMonthlySummaryDefaultsToCurrentPeriod(t *testing.T) {
	e, repo, userID := newTestEngine(t)

	// The fixed clock pins "now" to March 2024.
	seed(t, repo, userID, nil, 5000, core.Expense, "2024-03-10", "March spend")
	seed(t, repo, userID, nil, 7000, core.Expense, "2024-02-10", "February spend")

	report, err := e.MonthlySummary(context.Background(), userID, 0, 0)
	if err != nil {
		t.Fatalf("monthly summary: %v", err)
	}
	if report.Period.Year != 2024 || report.Period.Month != 3 {
		t.Errorf("defaulted period = %+v, want 2024-03", report.Period)
	}
	if report.Summary.Expense != 50.00 {
		t.Errorf("expense = %v, want only the March row", report.Summary.Expense)
	}
}

func TestMonthlySummaryRejectsBadMonth(t *testing.T) {
	e, _, userID := newTestEngine(t)

	for _, month := range []int{-1, 13, 99} {
		_, err := e.MonthlySummary(context.Background(), userID, 2024, month)
		if core.KindOf(err) != core.KindValidation {
			t.Errorf("month %d error kind = %v, want validation", month, core.KindOf(err))
		}
	}
}

func TestTrends(t *testing.T) {
	e, repo, userID := newTestEngine(t)
	ctx := context.Background()

	seed(t, repo, userID, nil, 100000, core.Income, "2024-02-01", "Salary")
	seed(t, repo, userID, nil, 2500, core.Expense, "2024-02-14", "Dinner")
	seed(t, repo, userID, nil, 4000, core.Expense, "2024-03-01", "Groceries")
	// Older than the 6 month window anchored at 2024-03-15.
	seed(t, repo, userID, nil, 999999, core.Expense, "2023-01-01", "Ancient")

	trends, err := e.Trends(ctx, userID, 6)
	if err != nil {
		t.Fatalf("trends: %v", err)
	}

	feb, ok := trends["2024-02"]
	if !ok {
		t.Fatalf("missing zero-padded key 2024-02 in %v", trends)
	}
	if feb.Income != 1000.00 || feb.Expense != 25.00 {
		t.Errorf("2024-02 = %+v", feb)
	}

	// A month with only one type keeps the other at zero.
	mar := trends["2024-03"]
	if mar.Income != 0 || mar.Expense != 40.00 {
		t.Errorf("2024-03 = %+v", mar)
	}

	if _, ok := trends["2023-01"]; ok {
		t.Error("window leaked a month older than the cutoff")
	}

	// Same window, same result.
	again, err := e.Trends(ctx, userID, 6)
	if err != nil {
		t.Fatalf("second trends call: %v", err)
	}
	if len(again) != len(trends) {
		t.Error("repeated call over unchanged data differs")
	}
}

func TestTrendsWindowValidation(t *testing.T) {
	e, _, userID := newTestEngine(t)

	for _, months := range []int{0, -3, MaxTrendMonths + 1} {
		_, err := e.Trends(context.Background(), userID, months)
		if core.KindOf(err) != core.KindValidation {
			t.Errorf("months %d error kind = %v, want validation", months, core.KindOf(err))
		}
	}
}

func TestListTransactionsPagination(t *testing.T) {
	e, repo, userID := newTestEngine(t)
	ctx := context.Background()

	for day := 1; day <= 7; day++ {
		seed(t, repo, userID, nil, int64(day)*100, core.Expense, time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC).Format(core.DateLayout), "Row")
	}

	page, err := e.ListTransactions(ctx, userID, storage.TransactionFilter{}, 2, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(page.Transactions) != 3 {
		t.Errorf("page size = %d, want 3", len(page.Transactions))
	}
	p := page.Pagination
	if p.Page != 2 || p.Limit != 3 || p.Total != 7 || p.Pages != 3 {
		t.Errorf("pagination = %+v, want page 2, limit 3, total 7, pages 3", p)
	}

	// Out-of-domain paging inputs fall back to defaults.
	fallback, err := e.ListTransactions(ctx, userID, storage.TransactionFilter{}, 0, -5)
	if err != nil {
		t.Fatalf("fallback list: %v", err)
	}
	if fallback.Pagination.Page != 1 || fallback.Pagination.Limit != DefaultPageLimit {
		t.Errorf("fallback pagination = %+v", fallback.Pagination)
	}
}
