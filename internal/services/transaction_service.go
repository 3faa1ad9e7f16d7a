package services

import (
	"context"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/storage"
)

// TransactionService validates and persists ledger writes. The AMQP client
// is optional; when nil the service works without publishing events.
type TransactionService struct {
	store  *storage.Repository
	events *amqp.Client
}

func NewTransactionService(store *storage.Repository, events *amqp.Client) *TransactionService {
	return &TransactionService{store: store, events: events}
}

// TransactionInput carries the writable fields of a new ledger entry.
// Amount is in currency units and converted to cents at this boundary.
type TransactionInput struct {
	Amount      float64
	Description string
	Date        string
	Type        string
	CategoryID  *int64
}

// TransactionUpdate carries optional field updates; nil fields keep their
// stored value.
type TransactionUpdate struct {
	Amount      *float64
	Description *string
	Date        *string
	Type        *string
	CategoryID  *int64
}

func (s *TransactionService) Create(ctx context.Context, userID int64, in TransactionInput) (core.Transaction, error) {
	if in.Amount == 0 || in.Date == "" || in.Type == "" {
		return core.Transaction{}, core.Validationf("Amount, date, and type are required")
	}
	typ, err := core.ParseTransactionType(in.Type)
	if err != nil {
		return core.Transaction{}, err
	}
	if in.Amount <= 0 {
		return core.Transaction{}, core.Validationf("Amount must be positive")
	}
	if err := core.ValidateDate(in.Date); err != nil {
		return core.Transaction{}, err
	}
	if err := s.checkCategory(ctx, userID, in.CategoryID); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.store.CreateTransaction(ctx, core.Transaction{
		UserID:      userID,
		CategoryID:  in.CategoryID,
		AmountCents: core.FloatToCents(in.Amount),
		Type:        typ,
		Date:        in.Date,
		Description: in.Description,
	})
	if err != nil {
		return core.Transaction{}, core.Upstream("create transaction", err)
	}

	s.publish(ctx, created.ID, userID, amqp.ActionCreated)
	return created, nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id int64) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, userID, id)
}

func (s *TransactionService) Update(ctx context.Context, userID, id int64, in TransactionUpdate) (core.Transaction, error) {
	if _, err := s.store.GetTransaction(ctx, userID, id); err != nil {
		return core.Transaction{}, err
	}

	if in.Amount != nil && *in.Amount <= 0 {
		return core.Transaction{}, core.Validationf("Amount must be positive")
	}
	if in.Type != nil {
		if _, err := core.ParseTransactionType(*in.Type); err != nil {
			return core.Transaction{}, err
		}
	}
	if in.Date != nil {
		if err := core.ValidateDate(*in.Date); err != nil {
			return core.Transaction{}, err
		}
	}
	if in.CategoryID != nil {
		if err := s.checkCategory(ctx, userID, in.CategoryID); err != nil {
			return core.Transaction{}, err
		}
	}

	patch := storage.TransactionPatch{
		Description: in.Description,
		Date:        in.Date,
		Type:        in.Type,
		CategoryID:  in.CategoryID,
	}
	if in.Amount != nil {
		cents := core.FloatToCents(*in.Amount)
		patch.AmountCents = &cents
	}

	updated, err := s.store.UpdateTransaction(ctx, userID, id, patch)
	if err != nil {
		if core.KindOf(err) == core.KindNotFound {
			return core.Transaction{}, err
		}
		return core.Transaction{}, core.Upstream("update transaction", err)
	}

	s.publish(ctx, id, userID, amqp.ActionUpdated)
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		if core.KindOf(err) == core.KindNotFound {
			return err
		}
		return core.Upstream("delete transaction", err)
	}

	s.publish(ctx, id, userID, amqp.ActionDeleted)
	return nil
}

// checkCategory verifies that a referenced category exists and belongs to
// the writing user. A nil id means "uncategorized" and always passes.
func (s *TransactionService) checkCategory(ctx context.Context, userID int64, categoryID *int64) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.store.GetCategory(ctx, userID, *categoryID); err != nil {
		if core.KindOf(err) == core.KindNotFound {
			return core.Validationf("Invalid category")
		}
		return core.Upstream("check category", err)
	}
	return nil
}

// publish emits a ledger change event. Failures are logged and swallowed:
// the write already committed and the mirror catches up on the next event.
func (s *TransactionService) publish(ctx context.Context, transactionID, userID int64, action string) {
	if s.events == nil {
		return
	}
	ev := amqp.NewTransactionEvent(transactionID, userID, action)
	if err := s.events.PublishTransactionEvent(ctx, ev); err != nil {
		slog.WarnContext(ctx, "Failed to publish transaction event",
			applog.FieldError, err,
			applog.FieldTransactionID, transactionID,
			applog.FieldAction, action)
	}
}
