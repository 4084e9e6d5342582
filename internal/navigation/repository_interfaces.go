package navigation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// MenuRepository exposes persistence operations for menu records.
type MenuRepository interface {
	Create(ctx context.Context, menu *Menu) (*Menu, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Menu, error)
	GetByCode(ctx context.Context, code string) (*Menu, error)
	GetByLocation(ctx context.Context, location string) (*Menu, error)
	List(ctx context.Context) ([]*Menu, error)
	Update(ctx context.Context, menu *Menu) (*Menu, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ItemRepository exposes persistence operations for navigation items.
type ItemRepository interface {
	Create(ctx context.Context, item *Item) (*Item, error)
	GetByID(ctx context.Context, id int64) (*Item, error)
	ListByMenu(ctx context.Context, menuID uuid.UUID, locale string) ([]*Item, error)
	ListChildren(ctx context.Context, parentID int64) ([]*Item, error)
	Update(ctx context.Context, item *Item) (*Item, error)
	Delete(ctx context.Context, id int64) error
	// BulkUpdateHierarchy persists parent/position updates for multiple items
	// atomically: either every update lands or none do, so an in-memory
	// rollback after a failure stays consistent with the store.
	BulkUpdateHierarchy(ctx context.Context, items []*Item) error
}

// NotFoundError is returned when a navigation resource cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}
