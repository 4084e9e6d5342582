package navigation

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Menu represents a navigational container that groups hierarchical items.
// A menu is bound to a location slot (e.g. "header", "footer") that host
// templates reference when rendering navigation.
type Menu struct {
	bun.BaseModel `bun:"table:menus,alias:m"`

	ID          uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Code        string    `bun:"code,notnull" json:"code"`
	Location    string    `bun:"location" json:"location,omitempty"`
	Description *string   `bun:"description" json:"description,omitempty"`
	CreatedBy   uuid.UUID `bun:"created_by,notnull,type:uuid" json:"created_by"`
	UpdatedBy   uuid.UUID `bun:"updated_by,notnull,type:uuid" json:"updated_by"`
	CreatedAt   time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
	Items       []*Item   `bun:"rel:has-many,join:id=menu_id" json:"items,omitempty"`
}

// Item describes a single navigational entry with optional hierarchy.
// Items are keyed by a stable integer id; siblings are ordered by Position,
// which the reorder pipeline keeps dense and zero-based. ParentID is nil for
// roots and always refers to an item in the same menu and locale.
type Item struct {
	bun.BaseModel `bun:"table:navigation_items,alias:ni"`

	ID        int64          `bun:"id,pk,autoincrement" json:"id"`
	MenuID    uuid.UUID      `bun:"menu_id,notnull,type:uuid" json:"menu_id"`
	Locale    string         `bun:"locale,notnull" json:"locale"`
	Label     string         `bun:"label,notnull" json:"label"`
	URL       string         `bun:"url" json:"url,omitempty"`
	ParentID  *int64         `bun:"parent_id" json:"parent_id,omitempty"`
	Position  int            `bun:"position,notnull,default:0" json:"position"`
	PageID    *int64         `bun:"page_id" json:"page_id,omitempty"`
	Target    map[string]any `bun:"target,type:jsonb" json:"target,omitempty"`
	CreatedBy uuid.UUID      `bun:"created_by,notnull,type:uuid" json:"created_by"`
	UpdatedBy uuid.UUID      `bun:"updated_by,notnull,type:uuid" json:"updated_by"`
	DeletedAt *time.Time     `bun:"deleted_at,nullzero" json:"deleted_at,omitempty"`
	CreatedAt time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
	Menu      *Menu          `bun:"rel:belongs-to,join:menu_id=id" json:"menu,omitempty"`
	Parent    *Item          `bun:"rel:belongs-to,join:parent_id=id" json:"parent,omitempty"`
	Children  []*Item        `bun:"rel:has-many,join:id=parent_id" json:"children,omitempty"`
}

// Clone returns a copy of the item detached from relation pointers.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	cloned := *i
	cloned.Menu = nil
	cloned.Parent = nil
	cloned.Children = nil
	if i.ParentID != nil {
		parent := *i.ParentID
		cloned.ParentID = &parent
	}
	if i.PageID != nil {
		page := *i.PageID
		cloned.PageID = &page
	}
	if i.Target != nil {
		target := make(map[string]any, len(i.Target))
		for k, v := range i.Target {
			target[k] = v
		}
		cloned.Target = target
	}
	if i.DeletedAt != nil {
		deleted := *i.DeletedAt
		cloned.DeletedAt = &deleted
	}
	return &cloned
}
