// Package worker applies ledger change events to the Google Sheets mirror.
package worker

import (
	"context"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/storage"
)

// SheetAppender is the slice of the sheets client the mirror needs.
type SheetAppender interface {
	AppendTransaction(ctx context.Context, t core.Transaction) error
}

// Mirror consumes ledger events and appends the affected rows to the
// spreadsheet. The mirror is append-only, so updates land as a fresh row
// and deletes are skipped.
type Mirror struct {
	store  *storage.Repository
	sheets SheetAppender
}

func NewMirror(store *storage.Repository, sheets SheetAppender) *Mirror {
	return &Mirror{store: store, sheets: sheets}
}

// HandleEvent processes one ledger event. Returning an error requeues the
// event; rows that no longer exist are acknowledged and dropped, since a
// retry can never succeed.
func (m *Mirror) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	if ev.Action == amqp.ActionDeleted {
		slog.InfoContext(ctx, "Skipping deleted transaction", applog.FieldTransactionID, ev.TransactionID)
		return nil
	}

	tx, err := m.store.GetTransaction(ctx, ev.UserID, ev.TransactionID)
	if err != nil {
		if core.KindOf(err) == core.KindNotFound {
			slog.WarnContext(ctx, "Transaction vanished before mirroring",
				applog.FieldTransactionID, ev.TransactionID,
				applog.FieldAction, ev.Action)
			return nil
		}
		return err
	}

	if err := m.sheets.AppendTransaction(ctx, tx); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Mirrored transaction",
		applog.FieldTransactionID, tx.ID,
		applog.FieldAction, ev.Action,
		applog.FieldAmount, tx.AmountCents)
	return nil
}
