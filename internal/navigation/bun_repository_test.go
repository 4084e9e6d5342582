package navigation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-navtree/internal/navigation"
	"github.com/goliatone/go-navtree/pkg/testsupport"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func setupBunDB(t *testing.T, name string) *bun.DB {
	t.Helper()

	db, err := testsupport.NewSQLiteMemoryDB(name)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	ddl := []string{
		`CREATE TABLE menus (
			id UUID PRIMARY KEY,
			code VARCHAR(100) NOT NULL UNIQUE,
			location VARCHAR(100),
			description TEXT,
			created_by UUID,
			updated_by UUID,
			created_at TIMESTAMP,
			updated_at TIMESTAMP
		)`,
		`CREATE TABLE navigation_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			menu_id UUID NOT NULL,
			locale VARCHAR(20) NOT NULL,
			label VARCHAR(255) NOT NULL,
			url TEXT,
			parent_id INTEGER,
			position INTEGER NOT NULL DEFAULT 0,
			page_id INTEGER,
			target JSONB,
			created_by UUID,
			updated_by UUID,
			created_at TIMESTAMP,
			updated_at TIMESTAMP,
			deleted_at TIMESTAMP
		)`,
	}
	for _, stmt := range ddl {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

func seedMenu(t *testing.T, db *bun.DB) *navigation.Menu {
	t.Helper()

	now := time.Now().UTC()
	menu := &navigation.Menu{
		ID:        uuid.New(),
		Code:      "main",
		Location:  "header",
		CreatedBy: uuid.New(),
		UpdatedBy: uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := db.NewInsert().Model(menu).Exec(context.Background()); err != nil {
		t.Fatalf("seed menu: %v", err)
	}
	return menu
}

func seedItem(t *testing.T, repo navigation.ItemRepository, menu *navigation.Menu, label string, parentID *int64, position int) *navigation.Item {
	t.Helper()

	now := time.Now().UTC()
	item, err := repo.Create(context.Background(), &navigation.Item{
		MenuID:    menu.ID,
		Locale:    "en",
		Label:     label,
		URL:       "/" + label,
		ParentID:  parentID,
		Position:  position,
		CreatedBy: menu.CreatedBy,
		UpdatedBy: menu.UpdatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed item %s: %v", label, err)
	}
	return item
}

func TestBunItemRepositoryLifecycle(t *testing.T) {
	db := setupBunDB(t, "item_repo_lifecycle")
	repo := navigation.NewBunItemRepository(db)
	menu := seedMenu(t, db)
	ctx := context.Background()

	a := seedItem(t, repo, menu, "A", nil, 0)
	b := seedItem(t, repo, menu, "B", nil, 1)
	child := seedItem(t, repo, menu, "A1", &a.ID, 0)

	if a.ID == 0 || b.ID == 0 {
		t.Fatal("expected autoincrement ids to round-trip")
	}

	got, err := repo.GetByID(ctx, child.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.ParentID == nil || *got.ParentID != a.ID {
		t.Fatalf("parent not persisted: %+v", got)
	}

	items, err := repo.ListByMenu(ctx, menu.ID, "en")
	if err != nil {
		t.Fatalf("list by menu: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	// Roots come first (NULL parent sorts ahead), ordered by position.
	if items[0].Label != "A" || items[1].Label != "B" {
		t.Fatalf("unexpected root order: %s, %s", items[0].Label, items[1].Label)
	}

	children, err := repo.ListChildren(ctx, a.ID)
	if err != nil {
		t.Fatalf("list children: %v", err)
	}
	if len(children) != 1 || children[0].Label != "A1" {
		t.Fatalf("unexpected children: %+v", children)
	}

	if err := repo.Delete(ctx, child.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, child.ID); err == nil {
		t.Fatal("expected deleted item to be gone")
	}
}

func TestBunItemRepositoryGetByIDNotFound(t *testing.T) {
	db := setupBunDB(t, "item_repo_not_found")
	repo := navigation.NewBunItemRepository(db)

	_, err := repo.GetByID(context.Background(), 404)

	var notFound *navigation.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if notFound.Resource != "navigation_item" {
		t.Fatalf("unexpected resource: %s", notFound.Resource)
	}
}

func TestBunItemRepositoryBulkUpdateRollsBack(t *testing.T) {
	db := setupBunDB(t, "item_repo_bulk_rollback")
	repo := navigation.NewBunItemRepository(db)
	menu := seedMenu(t, db)
	ctx := context.Background()

	a := seedItem(t, repo, menu, "A", nil, 0)
	b := seedItem(t, repo, menu, "B", nil, 1)

	now := time.Now().UTC()
	batch := []*navigation.Item{
		{ID: a.ID, Position: 1, UpdatedAt: now, UpdatedBy: menu.UpdatedBy},
		{ID: 404, Position: 0, UpdatedAt: now, UpdatedBy: menu.UpdatedBy},
	}
	err := repo.BulkUpdateHierarchy(ctx, batch)

	var notFound *navigation.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}

	// The transaction must have rolled back the first update too.
	stored, err := repo.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Position != 0 {
		t.Fatalf("partial write survived rollback: position %d", stored.Position)
	}

	other, err := repo.GetByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if other.Position != 1 {
		t.Fatalf("unrelated row changed: %+v", other)
	}
}

func TestBunItemRepositoryBulkUpdateReparents(t *testing.T) {
	db := setupBunDB(t, "item_repo_bulk_reparent")
	repo := navigation.NewBunItemRepository(db)
	menu := seedMenu(t, db)
	ctx := context.Background()

	a := seedItem(t, repo, menu, "A", nil, 0)
	b := seedItem(t, repo, menu, "B", nil, 1)

	now := time.Now().UTC()
	err := repo.BulkUpdateHierarchy(ctx, []*navigation.Item{
		{ID: b.ID, ParentID: &a.ID, Position: 0, UpdatedAt: now, UpdatedBy: menu.UpdatedBy},
	})
	if err != nil {
		t.Fatalf("bulk update: %v", err)
	}

	stored, err := repo.GetByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.ParentID == nil || *stored.ParentID != a.ID || stored.Position != 0 {
		t.Fatalf("reparent not persisted: %+v", stored)
	}
}

func TestBunMenuRepositoryGetByLocation(t *testing.T) {
	db := setupBunDB(t, "menu_repo_location")
	repo := navigation.NewBunMenuRepository(db)
	menu := seedMenu(t, db)
	ctx := context.Background()

	found, err := repo.GetByLocation(ctx, "header")
	if err != nil {
		t.Fatalf("get by location: %v", err)
	}
	if found.ID != menu.ID {
		t.Fatalf("expected menu %s, got %s", menu.ID, found.ID)
	}

	_, err = repo.GetByLocation(ctx, "footer")
	var notFound *navigation.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
