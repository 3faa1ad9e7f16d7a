package core

import (
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// DateLayout is the wire and storage format for calendar dates.
// Dates carry no time-of-day; all period grouping keys off this value.
const DateLayout = "2006-01-02"

type (
	TransactionType string

	User struct {
		ID           int64
		Username     string
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}

	Category struct {
		ID        int64
		UserID    int64
		Name      string
		Type      TransactionType
		Color     string
		Icon      string
		CreatedAt time.Time
	}

	Transaction struct {
		ID          int64
		UserID      int64
		CategoryID  *int64
		AmountCents int64
		Type        TransactionType
		Date        string
		Description string
		CreatedAt   time.Time

		// Display fields joined from the owning category; nil when the
		// transaction is uncategorized.
		CategoryName  *string
		CategoryColor *string
		CategoryIcon  *string
	}
)

// Valid reports whether t is one of the two supported ledger directions.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// ParseTransactionType validates a raw type value. The empty string is
// rejected; optional filters should skip the parse instead.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.TrimSpace(s))
	if !t.Valid() {
		return "", Validationf("Type must be either income or expense")
	}
	return t, nil
}

// ValidateDate checks the YYYY-MM-DD wire format.
func ValidateDate(s string) error {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return Validationf("Invalid date %q: expected YYYY-MM-DD", s)
	}
	return nil
}

func (tx Transaction) Validate() error {
	if tx.AmountCents <= 0 {
		return Validationf("Amount must be positive")
	}
	if !tx.Type.Valid() {
		return Validationf("Type must be either income or expense")
	}
	if tx.Date == "" {
		return Validationf("Amount, date, and type are required")
	}
	return ValidateDate(tx.Date)
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return Validationf("Name and type are required")
	}
	if !c.Type.Valid() {
		return Validationf("Type must be either income or expense")
	}
	return nil
}
