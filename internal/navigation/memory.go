package navigation

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

type memoryMenuRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*Menu
	byCode map[string]uuid.UUID
}

// NewMemoryMenuRepository constructs an in-memory repository for menus.
func NewMemoryMenuRepository() MenuRepository {
	return &memoryMenuRepository{
		byID:   make(map[uuid.UUID]*Menu),
		byCode: make(map[string]uuid.UUID),
	}
}

func (m *memoryMenuRepository) Create(_ context.Context, menu *Menu) (*Menu, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := cloneMenu(menu)
	m.byID[cloned.ID] = cloned
	if cloned.Code != "" {
		m.byCode[cloned.Code] = cloned.ID
	}
	return cloneMenu(cloned), nil
}

func (m *memoryMenuRepository) GetByID(_ context.Context, id uuid.UUID) (*Menu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "menu", Key: id.String()}
	}
	return cloneMenu(record), nil
}

func (m *memoryMenuRepository) GetByCode(_ context.Context, code string) (*Menu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byCode[code]
	if !ok {
		return nil, &NotFoundError{Resource: "menu", Key: code}
	}
	return cloneMenu(m.byID[id]), nil
}

func (m *memoryMenuRepository) GetByLocation(_ context.Context, location string) (*Menu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, record := range m.byID {
		if record.Location == location {
			return cloneMenu(record), nil
		}
	}
	return nil, &NotFoundError{Resource: "menu", Key: location}
}

func (m *memoryMenuRepository) List(_ context.Context) ([]*Menu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]*Menu, 0, len(m.byID))
	for _, record := range m.byID {
		records = append(records, cloneMenu(record))
	}
	return records, nil
}

func (m *memoryMenuRepository) Update(_ context.Context, menu *Menu) (*Menu, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[menu.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "menu", Key: menu.ID.String()}
	}

	oldCode := existing.Code
	cloned := cloneMenu(menu)

	m.byID[cloned.ID] = cloned

	if oldCode != "" && oldCode != cloned.Code {
		delete(m.byCode, oldCode)
	}
	if cloned.Code != "" {
		m.byCode[cloned.Code] = cloned.ID
	}

	return cloneMenu(cloned), nil
}

func (m *memoryMenuRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[id]
	if !ok {
		return &NotFoundError{Resource: "menu", Key: id.String()}
	}
	delete(m.byID, id)
	if existing.Code != "" {
		delete(m.byCode, existing.Code)
	}
	return nil
}

// NewMemoryItemRepository constructs an in-memory repository for navigation items.
func NewMemoryItemRepository() ItemRepository {
	return &memoryItemRepository{
		byID: make(map[int64]*Item),
	}
}

type memoryItemRepository struct {
	mu   sync.RWMutex
	byID map[int64]*Item
	seq  int64
}

func (m *memoryItemRepository) Create(_ context.Context, item *Item) (*Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := item.Clone()
	if cloned.ID == 0 {
		m.seq++
		cloned.ID = m.seq
	} else if cloned.ID > m.seq {
		m.seq = cloned.ID
	}
	m.byID[cloned.ID] = cloned
	return cloned.Clone(), nil
}

func (m *memoryItemRepository) GetByID(_ context.Context, id int64) (*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok || record.DeletedAt != nil {
		return nil, &NotFoundError{Resource: "navigation_item", Key: strconv.FormatInt(id, 10)}
	}
	return record.Clone(), nil
}

func (m *memoryItemRepository) ListByMenu(_ context.Context, menuID uuid.UUID, locale string) ([]*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var records []*Item
	for _, record := range m.byID {
		if record.DeletedAt != nil {
			continue
		}
		if record.MenuID != menuID || record.Locale != locale {
			continue
		}
		records = append(records, record.Clone())
	}
	sortItems(records)
	return records, nil
}

func (m *memoryItemRepository) ListChildren(_ context.Context, parentID int64) ([]*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var records []*Item
	for _, record := range m.byID {
		if record.DeletedAt != nil || record.ParentID == nil {
			continue
		}
		if *record.ParentID != parentID {
			continue
		}
		records = append(records, record.Clone())
	}
	sortItems(records)
	return records, nil
}

func (m *memoryItemRepository) Update(_ context.Context, item *Item) (*Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[item.ID]; !ok {
		return nil, &NotFoundError{Resource: "navigation_item", Key: strconv.FormatInt(item.ID, 10)}
	}
	cloned := item.Clone()
	m.byID[cloned.ID] = cloned
	return cloned.Clone(), nil
}

func (m *memoryItemRepository) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[id]; !ok {
		return &NotFoundError{Resource: "navigation_item", Key: strconv.FormatInt(id, 10)}
	}
	delete(m.byID, id)
	return nil
}

// BulkUpdateHierarchy applies all updates or none: every id is validated
// before the first write so a failure cannot leave a half-applied batch.
func (m *memoryItemRepository) BulkUpdateHierarchy(_ context.Context, items []*Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, item := range items {
		if _, ok := m.byID[item.ID]; !ok {
			return &NotFoundError{Resource: "navigation_item", Key: strconv.FormatInt(item.ID, 10)}
		}
	}

	for _, item := range items {
		record := m.byID[item.ID]
		record.ParentID = nil
		if item.ParentID != nil {
			parent := *item.ParentID
			record.ParentID = &parent
		}
		record.Position = item.Position
		record.UpdatedAt = item.UpdatedAt
		record.UpdatedBy = item.UpdatedBy
	}
	return nil
}

func sortItems(items []*Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		ak, bk := parentSortKey(a.ParentID), parentSortKey(b.ParentID)
		if ak != bk {
			return ak < bk
		}
		return a.Position < b.Position
	})
}

func parentSortKey(id *int64) int64 {
	if id == nil {
		return -1
	}
	return *id
}

func cloneMenu(menu *Menu) *Menu {
	if menu == nil {
		return nil
	}
	cloned := *menu
	cloned.Items = nil
	if menu.Description != nil {
		desc := *menu.Description
		cloned.Description = &desc
	}
	return &cloned
}
