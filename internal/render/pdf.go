// Package render converts report documents into binary artifacts. The PDF
// renderer is the only implementation; the reports engine stays unaware of
// the page format behind its Renderer interface.
package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"

	"fintrack/internal/reports"
)

var (
	incomeColor  = rgb{16, 185, 129}
	expenseColor = rgb{239, 68, 68}
	textColor    = rgb{51, 51, 51}
	headerFill   = rgb{242, 242, 242}
)

type rgb struct{ r, g, b int }

// PDF renders report documents as A4 PDF files.
type PDF struct{}

func NewPDF() *PDF {
	return &PDF{}
}

// Render lays out the document title, period line, transaction table and
// summary block on A4 pages. Income and expense rows are tinted with their
// semantic color. The whole artifact is buffered; an error yields no
// partial output.
func (p *PDF) Render(ctx context.Context, doc reports.Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetTextColor(textColor.r, textColor.g, textColor.b)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, doc.Title)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, "Generated on: "+doc.GeneratedAt.Format("2006-01-02"))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s to %s", doc.PeriodStart, doc.PeriodEnd))
	pdf.Ln(10)

	// Column widths sum to the usable A4 width (190mm).
	widths := []float64{28, 22, 28, 72, 40}
	headers := []string{"Date", "Type", "Amount", "Description", "Category"}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(headerFill.r, headerFill.g, headerFill.b)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range doc.Rows {
		tint := textColor
		if row.Class == "income" {
			tint = incomeColor
		} else if row.Class == "expense" {
			tint = expenseColor
		}

		pdf.SetTextColor(textColor.r, textColor.g, textColor.b)
		pdf.CellFormat(widths[0], 6, row.Date, "1", 0, "L", false, 0, "")
		pdf.SetTextColor(tint.r, tint.g, tint.b)
		pdf.CellFormat(widths[1], 6, row.Type, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, row.Amount, "1", 0, "R", false, 0, "")
		pdf.SetTextColor(textColor.r, textColor.g, textColor.b)
		pdf.CellFormat(widths[3], 6, truncate(row.Description, 48), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[4], 6, truncate(row.Category, 26), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Total Transactions: %d", doc.Summary.TransactionCount))
	pdf.Ln(6)
	pdf.SetTextColor(incomeColor.r, incomeColor.g, incomeColor.b)
	pdf.Cell(0, 6, "Total Income: "+doc.Summary.TotalIncome)
	pdf.Ln(6)
	pdf.SetTextColor(expenseColor.r, expenseColor.g, expenseColor.b)
	pdf.Cell(0, 6, "Total Expenses: "+doc.Summary.TotalExpense)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "..."
}
