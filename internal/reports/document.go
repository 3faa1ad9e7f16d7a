package reports

import (
	"context"
	"time"

	"fintrack/internal/core"
)

// Renderer turns a report document into a binary page-formatted artifact.
// Implementations must release any rendering session on every exit path.
type Renderer interface {
	Render(ctx context.Context, doc Document) ([]byte, error)
}

type (
	// Document is the structured transaction report handed to a Renderer.
	Document struct {
		Title       string
		GeneratedAt time.Time
		PeriodStart string
		PeriodEnd   string
		Rows        []DocumentRow
		Summary     DocumentSummary
	}

	// DocumentRow is one tabulated transaction. Class carries the
	// income/expense semantic used for styling.
	DocumentRow struct {
		Date        string
		Type        string
		Amount      string
		Description string
		Category    string
		Class       string
	}

	// DocumentSummary is the trailing totals block, computed from the
	// same filtered set as the rows.
	DocumentSummary struct {
		TransactionCount int
		TotalIncome      string
		TotalExpense     string
	}
)

// BuildReportDocument assembles the document for a filtered transaction
// set. Totals are computed from the rows themselves, never re-queried.
// Empty period bounds fall back to "All time" / "Present".
func BuildReportDocument(transactions []core.Transaction, startDate, endDate string, now time.Time) Document {
	if startDate == "" {
		startDate = "All time"
	}
	if endDate == "" {
		endDate = "Present"
	}

	doc := Document{
		Title:       "Transaction Report",
		GeneratedAt: now,
		PeriodStart: startDate,
		PeriodEnd:   endDate,
		Rows:        make([]DocumentRow, 0, len(transactions)),
	}

	var incomeCents, expenseCents int64
	for _, t := range transactions {
		category := ""
		if t.CategoryName != nil {
			category = *t.CategoryName
		}
		doc.Rows = append(doc.Rows, DocumentRow{
			Date:        t.Date,
			Type:        string(t.Type),
			Amount:      "$" + core.FormatCents(t.AmountCents),
			Description: t.Description,
			Category:    category,
			Class:       string(t.Type),
		})
		if t.Type == core.Income {
			incomeCents += t.AmountCents
		} else {
			expenseCents += t.AmountCents
		}
	}

	doc.Summary = DocumentSummary{
		TransactionCount: len(transactions),
		TotalIncome:      "$" + core.FormatCents(incomeCents),
		TotalExpense:     "$" + core.FormatCents(expenseCents),
	}
	return doc
}
