package http

import (
	"time"

	"fintrack/internal/core"
)

// transactionDTO is the wire shape of a ledger entry. Amounts cross the
// boundary in currency units; cents stay internal.
type transactionDTO struct {
	ID            int64    `json:"id"`
	UserID        int64    `json:"user_id"`
	CategoryID    *int64   `json:"category_id"`
	Amount        float64  `json:"amount"`
	Type          string   `json:"type"`
	Date          string   `json:"date"`
	Description   string   `json:"description"`
	CreatedAt     string   `json:"created_at"`
	CategoryName  *string  `json:"category_name"`
	CategoryColor *string  `json:"category_color"`
	CategoryIcon  *string  `json:"category_icon"`
}

func toTransactionDTO(t core.Transaction) transactionDTO {
	return transactionDTO{
		ID:            t.ID,
		UserID:        t.UserID,
		CategoryID:    t.CategoryID,
		Amount:        core.CentsToFloat(t.AmountCents),
		Type:          string(t.Type),
		Date:          t.Date,
		Description:   t.Description,
		CreatedAt:     t.CreatedAt.UTC().Format(time.RFC3339),
		CategoryName:  t.CategoryName,
		CategoryColor: t.CategoryColor,
		CategoryIcon:  t.CategoryIcon,
	}
}

func toTransactionDTOs(ts []core.Transaction) []transactionDTO {
	out := make([]transactionDTO, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTransactionDTO(t))
	}
	return out
}

type categoryDTO struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Color  string `json:"color"`
	Icon   string `json:"icon"`
}

func toCategoryDTO(c core.Category) categoryDTO {
	return categoryDTO{
		ID:     c.ID,
		UserID: c.UserID,
		Name:   c.Name,
		Type:   string(c.Type),
		Color:  c.Color,
		Icon:   c.Icon,
	}
}

func toCategoryDTOs(cs []core.Category) []categoryDTO {
	out := make([]categoryDTO, 0, len(cs))
	for _, c := range cs {
		out = append(out, toCategoryDTO(c))
	}
	return out
}

type userDTO struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func toUserDTO(u core.User) userDTO {
	return userDTO{ID: u.ID, Username: u.Username, Email: u.Email}
}
