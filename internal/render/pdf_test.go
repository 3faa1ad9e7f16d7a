package render

import (
	"bytes"
	"context"
	"testing"
	"time"

	"fintrack/internal/reports"
)

func sampleDocument() reports.Document {
	return reports.Document{
		Title:       "Transaction Report",
		GeneratedAt: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
		PeriodStart: "2024-01-01",
		PeriodEnd:   "2024-01-31",
		Rows: []reports.DocumentRow{
			{Date: "2024-01-01", Type: "income", Amount: "$3000.00", Description: "Salary", Category: "Salary", Class: "income"},
			{Date: "2024-01-05", Type: "expense", Amount: "$12.50", Description: "Lunch", Category: "Food & Dining", Class: "expense"},
		},
		Summary: reports.DocumentSummary{
			TransactionCount: 2,
			TotalIncome:      "$3000.00",
			TotalExpense:     "$12.50",
		},
	}
}

func TestRenderProducesPDF(t *testing.T) {
	out, err := NewPDF().Render(context.Background(), sampleDocument())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Errorf("output does not start with a PDF header: %q", out[:min(8, len(out))])
	}
}

func TestRenderEmptyDocument(t *testing.T) {
	doc := reports.Document{
		Title:       "Transaction Report",
		GeneratedAt: time.Now(),
		PeriodStart: "All time",
		PeriodEnd:   "Present",
		Summary:     reports.DocumentSummary{TotalIncome: "$0.00", TotalExpense: "$0.00"},
	}
	out, err := NewPDF().Render(context.Background(), doc)
	if err != nil {
		t.Fatalf("render empty document: %v", err)
	}
	if len(out) == 0 {
		t.Error("empty document still renders the header and summary")
	}
}

func TestRenderCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := NewPDF().Render(ctx, sampleDocument())
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if out != nil {
		t.Error("cancelled render must not emit output")
	}
}

func TestRenderTruncatesLongFields(t *testing.T) {
	doc := sampleDocument()
	long := make([]rune, 0, 300)
	for i := 0; i < 300; i++ {
		long = append(long, 'è')
	}
	doc.Rows[0].Description = string(long)

	// Multi-byte runes must not be split mid-sequence.
	if _, err := NewPDF().Render(context.Background(), doc); err != nil {
		t.Fatalf("render with long multi-byte description: %v", err)
	}
}
