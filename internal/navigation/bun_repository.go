package navigation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunMenuRepository implements MenuRepository with optional caching.
type BunMenuRepository struct {
	repo         repository.Repository[*Menu]
	cacheService cache.CacheService
	cachePrefix  string
}

const menuNamespace = "menu"

// NewBunMenuRepository creates a menu repository without caching.
func NewBunMenuRepository(db *bun.DB) *BunMenuRepository {
	return NewBunMenuRepositoryWithCache(db, nil, nil)
}

// NewBunMenuRepositoryWithCache creates a menu repository with caching services.
func NewBunMenuRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunMenuRepository {
	base := NewMenuRepository(db)
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
	}
	prefix := ""
	if svc != nil {
		prefix = cachePrefix(menuNamespace)
	}
	return &BunMenuRepository{
		repo:         base,
		cacheService: svc,
		cachePrefix:  prefix,
	}
}

func (r *BunMenuRepository) Create(ctx context.Context, menu *Menu) (*Menu, error) {
	record, err := r.repo.Create(ctx, menu)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunMenuRepository) GetByID(ctx context.Context, id uuid.UUID) (*Menu, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "menu", id.String())
	}
	return record, nil
}

func (r *BunMenuRepository) GetByCode(ctx context.Context, code string) (*Menu, error) {
	record, err := r.repo.GetByIdentifier(ctx, code)
	if err != nil {
		return nil, mapRepositoryError(err, "menu", code)
	}
	return record, nil
}

func (r *BunMenuRepository) GetByLocation(ctx context.Context, location string) (*Menu, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.location = ?", location)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "menu", Key: location}
	}
	return records[0], nil
}

func (r *BunMenuRepository) List(ctx context.Context) ([]*Menu, error) {
	records, _, err := r.repo.List(ctx)
	return records, err
}

func (r *BunMenuRepository) Update(ctx context.Context, menu *Menu) (*Menu, error) {
	record, err := r.repo.Update(ctx, menu)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunMenuRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.repo.Delete(ctx, &Menu{ID: id})
}

func (r *BunMenuRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

// BunItemRepository implements ItemRepository directly over bun. Items are
// keyed by integer ids, so they bypass the uuid-keyed repository helpers the
// menu repository builds on.
type BunItemRepository struct {
	db *bun.DB
}

// NewBunItemRepository creates an item repository backed by the given database.
func NewBunItemRepository(db *bun.DB) *BunItemRepository {
	return &BunItemRepository{db: db}
}

func (r *BunItemRepository) Create(ctx context.Context, item *Item) (*Item, error) {
	if _, err := r.db.NewInsert().Model(item).Returning("*").Exec(ctx); err != nil {
		return nil, fmt.Errorf("navigation item insert: %w", err)
	}
	return item, nil
}

func (r *BunItemRepository) GetByID(ctx context.Context, id int64) (*Item, error) {
	item := new(Item)
	err := r.db.NewSelect().
		Model(item).
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.deleted_at IS NULL").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "navigation_item", Key: strconv.FormatInt(id, 10)}
		}
		return nil, fmt.Errorf("navigation item select: %w", err)
	}
	return item, nil
}

func (r *BunItemRepository) ListByMenu(ctx context.Context, menuID uuid.UUID, locale string) ([]*Item, error) {
	var items []*Item
	err := r.db.NewSelect().
		Model(&items).
		Where("?TableAlias.menu_id = ?", menuID).
		Where("?TableAlias.locale = ?", locale).
		Where("?TableAlias.deleted_at IS NULL").
		OrderExpr("?TableAlias.parent_id ASC NULLS FIRST").
		OrderExpr("?TableAlias.position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("navigation item list: %w", err)
	}
	return items, nil
}

func (r *BunItemRepository) ListChildren(ctx context.Context, parentID int64) ([]*Item, error) {
	var items []*Item
	err := r.db.NewSelect().
		Model(&items).
		Where("?TableAlias.parent_id = ?", parentID).
		Where("?TableAlias.deleted_at IS NULL").
		OrderExpr("?TableAlias.position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("navigation item children: %w", err)
	}
	return items, nil
}

func (r *BunItemRepository) Update(ctx context.Context, item *Item) (*Item, error) {
	if _, err := r.db.NewUpdate().Model(item).WherePK().Exec(ctx); err != nil {
		return nil, fmt.Errorf("navigation item update: %w", err)
	}
	return item, nil
}

func (r *BunItemRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.NewDelete().
		Model((*Item)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// BulkUpdateHierarchy writes parent/position updates inside one transaction
// so the batch is all-or-nothing.
func (r *BunItemRepository) BulkUpdateHierarchy(ctx context.Context, items []*Item) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, item := range items {
			res, err := tx.NewUpdate().
				Model(item).
				Column("parent_id", "position", "updated_at", "updated_by").
				WherePK().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("navigation item reorder %d: %w", item.ID, err)
			}
			affected, _ := res.RowsAffected()
			if affected == 0 {
				return &NotFoundError{Resource: "navigation_item", Key: strconv.FormatInt(item.ID, 10)}
			}
		}
		return nil
	})
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}

	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}

	return fmt.Errorf("%s repository error: %w", resource, err)
}

func cachePrefix(namespace string) string {
	if namespace == "" {
		return ""
	}
	return namespace + cache.KeySeparator
}
