package reports

import (
	"strings"

	"fintrack/internal/core"
)

// CSVHeader is the fixed export header row.
const CSVHeader = "Date,Type,Amount,Description,Category"

// EncodeCSV renders transactions as CSV with every field wrapped in double
// quotes and amounts at two decimal places. Missing description or
// category render as empty strings.
//
// Embedded quotes and commas inside fields are deliberately left alone to
// stay byte-compatible with existing consumers of this export; see
// DESIGN.md.
func EncodeCSV(transactions []core.Transaction) string {
	var b strings.Builder
	b.WriteString(CSVHeader)
	b.WriteByte('\n')

	for i, t := range transactions {
		if i > 0 {
			b.WriteByte('\n')
		}
		category := ""
		if t.CategoryName != nil {
			category = *t.CategoryName
		}
		writeQuoted(&b, t.Date)
		b.WriteByte(',')
		writeQuoted(&b, string(t.Type))
		b.WriteByte(',')
		writeQuoted(&b, core.FormatCents(t.AmountCents))
		b.WriteByte(',')
		writeQuoted(&b, t.Description)
		b.WriteByte(',')
		writeQuoted(&b, category)
	}
	return b.String()
}

func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	b.WriteString(s)
	b.WriteByte('"')
}
