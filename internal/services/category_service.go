package services

import (
	"context"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

const (
	defaultCategoryColor = "#3B82F6"
	defaultCategoryIcon  = "category"
)

type CategoryService struct {
	store *storage.Repository
}

func NewCategoryService(store *storage.Repository) *CategoryService {
	return &CategoryService{store: store}
}

// CategoryInput carries the writable category fields. Color and icon fall
// back to defaults when empty.
type CategoryInput struct {
	Name  string
	Type  string
	Color string
	Icon  string
}

// CategoryUpdate carries optional field updates for an existing category.
type CategoryUpdate struct {
	Name  *string
	Type  *string
	Color *string
	Icon  *string
}

func (s *CategoryService) List(ctx context.Context, userID int64, typ string) ([]core.Category, error) {
	var t core.TransactionType
	if typ != "" {
		parsed, err := core.ParseTransactionType(typ)
		if err != nil {
			return nil, err
		}
		t = parsed
	}
	cats, err := s.store.ListCategories(ctx, userID, t)
	if err != nil {
		return nil, core.Upstream("list categories", err)
	}
	return cats, nil
}

func (s *CategoryService) Get(ctx context.Context, userID, id int64) (core.Category, error) {
	return s.store.GetCategory(ctx, userID, id)
}

func (s *CategoryService) Create(ctx context.Context, userID int64, in CategoryInput) (core.Category, error) {
	if strings.TrimSpace(in.Name) == "" || in.Type == "" {
		return core.Category{}, core.Validationf("Name and type are required")
	}
	typ, err := core.ParseTransactionType(in.Type)
	if err != nil {
		return core.Category{}, err
	}

	exists, err := s.store.CategoryNameExists(ctx, userID, in.Name, 0)
	if err != nil {
		return core.Category{}, core.Upstream("check category name", err)
	}
	if exists {
		return core.Category{}, core.Conflictf("Category name already exists")
	}

	c := core.Category{
		UserID: userID,
		Name:   strings.TrimSpace(in.Name),
		Type:   typ,
		Color:  in.Color,
		Icon:   in.Icon,
	}
	if c.Color == "" {
		c.Color = defaultCategoryColor
	}
	if c.Icon == "" {
		c.Icon = defaultCategoryIcon
	}

	created, err := s.store.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, core.Upstream("create category", err)
	}
	return created, nil
}

func (s *CategoryService) Update(ctx context.Context, userID, id int64, in CategoryUpdate) (core.Category, error) {
	if _, err := s.store.GetCategory(ctx, userID, id); err != nil {
		return core.Category{}, err
	}

	if in.Type != nil {
		if _, err := core.ParseTransactionType(*in.Type); err != nil {
			return core.Category{}, err
		}
	}
	if in.Name != nil {
		conflict, err := s.store.CategoryNameExists(ctx, userID, *in.Name, id)
		if err != nil {
			return core.Category{}, core.Upstream("check category name", err)
		}
		if conflict {
			return core.Category{}, core.Conflictf("Category name already exists")
		}
	}

	updated, err := s.store.UpdateCategory(ctx, userID, id, storage.CategoryPatch{
		Name:  in.Name,
		Type:  in.Type,
		Color: in.Color,
		Icon:  in.Icon,
	})
	if err != nil {
		if core.KindOf(err) == core.KindNotFound {
			return core.Category{}, err
		}
		return core.Category{}, core.Upstream("update category", err)
	}
	return updated, nil
}

// Delete removes a category unless any transaction still references it.
// The usage check and the delete are separate statements; a transaction
// inserted between them slips past the guard. See DESIGN.md for why this
// window is accepted.
func (s *CategoryService) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.store.GetCategory(ctx, userID, id); err != nil {
		return err
	}

	inUse, err := s.store.CountTransactionsForCategory(ctx, id)
	if err != nil {
		return core.Upstream("count category usage", err)
	}
	if inUse > 0 {
		return core.Conflictf("Cannot delete category that is being used by transactions")
	}

	if err := s.store.DeleteCategory(ctx, userID, id); err != nil {
		if core.KindOf(err) == core.KindNotFound {
			return err
		}
		return core.Upstream("delete category", err)
	}
	return nil
}
