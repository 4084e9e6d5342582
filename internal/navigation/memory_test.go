package navigation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-navtree/internal/navigation"
	"github.com/google/uuid"
)

func TestMemoryItemBulkUpdateIsAllOrNothing(t *testing.T) {
	repo := navigation.NewMemoryItemRepository()
	ctx := context.Background()

	a, err := repo.Create(ctx, &navigation.Item{Label: "A", Position: 0})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, err := repo.Create(ctx, &navigation.Item{Label: "B", Position: 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// The first entry is valid, the second references a missing id. Neither
	// write may land.
	batch := []*navigation.Item{
		{ID: a.ID, Position: 5},
		{ID: 404, Position: 6},
	}
	err = repo.BulkUpdateHierarchy(ctx, batch)

	var notFound *navigation.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}

	stored, err := repo.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Position != 0 {
		t.Fatalf("partial write applied: position %d", stored.Position)
	}
	if _, err := repo.GetByID(ctx, b.ID); err != nil {
		t.Fatalf("unrelated item disturbed: %v", err)
	}
}

func TestMemoryItemCloneOnRead(t *testing.T) {
	repo := navigation.NewMemoryItemRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, &navigation.Item{Label: "A"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	created.Label = "mutated"

	stored, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Label != "A" {
		t.Fatal("caller mutation leaked into the store")
	}
}

func TestMemoryMenuCodeReindexOnUpdate(t *testing.T) {
	repo := navigation.NewMemoryMenuRepository()
	ctx := context.Background()

	menu, err := repo.Create(ctx, &navigation.Menu{ID: uuid.New(), Code: "old"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	menu.Code = "new"
	if _, err := repo.Update(ctx, menu); err != nil {
		t.Fatalf("update: %v", err)
	}

	if _, err := repo.GetByCode(ctx, "old"); err == nil {
		t.Fatal("stale code index entry survived the update")
	}
	if _, err := repo.GetByCode(ctx, "new"); err != nil {
		t.Fatalf("new code not indexed: %v", err)
	}
}
