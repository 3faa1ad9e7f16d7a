// Package reports is the aggregation engine: it turns the flat transaction
// ledger into monthly summaries, category breakdowns, daily series and
// multi-month trends, and feeds the CSV and document encoders.
//
// The engine is stateless; every operation reads through the store adapter
// scoped to a single user and computes derived values on the fly.
package reports

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// MaxTrendMonths caps the rolling trend window. Arbitrarily large windows
// would otherwise turn one request into an unbounded scan.
const MaxTrendMonths = 120

// DefaultPageLimit is the listing page size when the caller gives none.
const DefaultPageLimit = 50

type (
	// PeriodSummary is the income/expense overlay for one year+month.
	// Net is always recomputed, never stored.
	PeriodSummary struct {
		Income       float64 `json:"income"`
		Expense      float64 `json:"expense"`
		Net          float64 `json:"net"`
		IncomeCount  int     `json:"incomeCount"`
		ExpenseCount int     `json:"expenseCount"`
	}

	// CategoryBreakdownRow is one (category, type) aggregate. Category
	// fields stay null for uncategorized transactions.
	CategoryBreakdownRow struct {
		CategoryName  *string              `json:"category_name"`
		CategoryColor *string              `json:"category_color"`
		CategoryIcon  *string              `json:"category_icon"`
		Type          core.TransactionType `json:"type"`
		Total         float64              `json:"total"`
		Count         int                  `json:"count"`
	}

	// DailySeriesPoint is the per-day income/expense split. The series is
	// sparse: days without transactions are absent.
	DailySeriesPoint struct {
		Date    string  `json:"date"`
		Income  float64 `json:"income"`
		Expense float64 `json:"expense"`
	}

	Period struct {
		Year  int `json:"year"`
		Month int `json:"month"`
	}

	// MonthlyReport bundles the three reads of the monthly summary
	// operation.
	MonthlyReport struct {
		Summary           PeriodSummary          `json:"summary"`
		CategoryBreakdown []CategoryBreakdownRow `json:"categoryBreakdown"`
		DailySpending     []DailySeriesPoint     `json:"dailySpending"`
		Period            Period                 `json:"period"`
	}

	// TrendPoint is one month's totals in the rolling window. A month
	// present for only one type keeps the other at 0.
	TrendPoint struct {
		Income  float64 `json:"income"`
		Expense float64 `json:"expense"`
	}

	// Pagination echoes the page request plus the unpaginated match count.
	Pagination struct {
		Page  int   `json:"page"`
		Limit int   `json:"limit"`
		Total int64 `json:"total"`
		Pages int64 `json:"pages"`
	}

	// TransactionPage is one listing page with its pagination envelope.
	TransactionPage struct {
		Transactions []core.Transaction
		Pagination   Pagination
	}
)

type Engine struct {
	store *storage.Repository
	now   func() time.Time
}

func NewEngine(store *storage.Repository) *Engine {
	return &Engine{store: store, now: time.Now}
}

// MonthlySummary computes the type totals, category breakdown and daily
// series for one user and period. Zero year/month default to the current
// calendar year/month. The three reads are independent round trips issued
// back to back against the same user+period scope.
func (e *Engine) MonthlySummary(ctx context.Context, userID int64, year, month int) (*MonthlyReport, error) {
	now := e.now()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	if month < 1 || month > 12 {
		return nil, core.Validationf("Month must be between 1 and 12")
	}

	var (
		totals    []storage.TypeTotal
		breakdown []storage.BreakdownRow
		daily     []storage.DailyTotal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totals, err = e.store.SumByType(gctx, userID, year, month)
		return err
	})
	g.Go(func() error {
		var err error
		breakdown, err = e.store.CategoryBreakdown(gctx, userID, year, month)
		return err
	})
	g.Go(func() error {
		var err error
		daily, err = e.store.DailyFlow(gctx, userID, year, month)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, core.Upstream("monthly summary", err)
	}

	report := &MonthlyReport{
		CategoryBreakdown: make([]CategoryBreakdownRow, 0, len(breakdown)),
		DailySpending:     make([]DailySeriesPoint, 0, len(daily)),
		Period:            Period{Year: year, Month: month},
	}

	// Overlay onto the all-zero summary: a type absent from the data
	// keeps its total and count at 0.
	for _, t := range totals {
		if t.Type == core.Income {
			report.Summary.Income = core.CentsToFloat(t.TotalCents)
			report.Summary.IncomeCount = t.Count
		} else {
			report.Summary.Expense = core.CentsToFloat(t.TotalCents)
			report.Summary.ExpenseCount = t.Count
		}
	}
	report.Summary.Net = report.Summary.Income - report.Summary.Expense

	for _, b := range breakdown {
		report.CategoryBreakdown = append(report.CategoryBreakdown, CategoryBreakdownRow{
			CategoryName:  b.Name,
			CategoryColor: b.Color,
			CategoryIcon:  b.Icon,
			Type:          b.Type,
			Total:         core.CentsToFloat(b.TotalCents),
			Count:         b.Count,
		})
	}
	for _, d := range daily {
		report.DailySpending = append(report.DailySpending, DailySeriesPoint{
			Date:    d.Date,
			Income:  core.CentsToFloat(d.IncomeCents),
			Expense: core.CentsToFloat(d.ExpenseCents),
		})
	}
	return report, nil
}

// Trends aggregates per-month income/expense totals over a rolling window
// of the last months calendar months, keyed by zero-padded "YYYY-MM". The
// window is anchored at the moment of the call.
func (e *Engine) Trends(ctx context.Context, userID int64, months int) (map[string]TrendPoint, error) {
	if months <= 0 {
		return nil, core.Validationf("Months must be a positive integer")
	}
	if months > MaxTrendMonths {
		return nil, core.Validationf("Months must be at most %d", MaxTrendMonths)
	}

	since := e.now().AddDate(0, -months, 0).Format(core.DateLayout)
	rows, err := e.store.MonthlyTotals(ctx, userID, since)
	if err != nil {
		return nil, core.Upstream("trends", err)
	}

	trends := make(map[string]TrendPoint, len(rows))
	for _, row := range rows {
		point := trends[row.YearMonth]
		if row.Type == core.Income {
			point.Income = core.CentsToFloat(row.TotalCents)
		} else {
			point.Expense = core.CentsToFloat(row.TotalCents)
		}
		trends[row.YearMonth] = point
	}
	return trends, nil
}

// ListTransactions returns one filtered page plus its pagination envelope.
// The total is a second count query over the same predicate, not the size
// of the returned page.
func (e *Engine) ListTransactions(ctx context.Context, userID int64, f storage.TransactionFilter, page, limit int) (*TransactionPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	offset := (page - 1) * limit

	var (
		items []core.Transaction
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = e.store.ListTransactions(gctx, userID, f, limit, offset)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = e.store.CountTransactions(gctx, userID, f)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, core.Upstream("list transactions", err)
	}

	return &TransactionPage{
		Transactions: items,
		Pagination: Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: (total + int64(limit) - 1) / int64(limit),
		},
	}, nil
}

// ExportTransactions fetches the full unpaginated match set for the
// export encoders.
func (e *Engine) ExportTransactions(ctx context.Context, userID int64, f storage.TransactionFilter) ([]core.Transaction, error) {
	items, err := e.store.ExportTransactions(ctx, userID, f)
	if err != nil {
		return nil, core.Upstream("export transactions", err)
	}
	return items, nil
}

// ExportCSV encodes the filtered match set as CSV text.
func (e *Engine) ExportCSV(ctx context.Context, userID int64, f storage.TransactionFilter) (string, error) {
	items, err := e.ExportTransactions(ctx, userID, f)
	if err != nil {
		return "", err
	}
	return EncodeCSV(items), nil
}

// ExportDocument builds the report document for the filtered match set and
// renders it through the injected renderer. Rendering failures surface as
// a single opaque upstream error; no partial output is emitted.
func (e *Engine) ExportDocument(ctx context.Context, userID int64, f storage.TransactionFilter, r Renderer) ([]byte, error) {
	items, err := e.ExportTransactions(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	doc := BuildReportDocument(items, f.StartDate, f.EndDate, e.now())
	out, err := r.Render(ctx, doc)
	if err != nil {
		return nil, core.Upstream(fmt.Sprintf("render report (%d rows)", len(doc.Rows)), err)
	}
	return out, nil
}
