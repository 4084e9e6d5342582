package navigation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-navtree/internal/dnd"
	"github.com/goliatone/go-navtree/internal/logging"
	"github.com/goliatone/go-navtree/pkg/interfaces"
	"github.com/google/uuid"
)

var (
	ErrMenuCodeRequired     = errors.New("navigation: menu code is required")
	ErrMenuCodeInvalid      = errors.New("navigation: menu code must contain only letters, numbers, hyphen, or underscore")
	ErrMenuCodeExists       = errors.New("navigation: menu code already exists")
	ErrMenuNotFound         = errors.New("navigation: menu not found")
	ErrItemNotFound         = errors.New("navigation: item not found")
	ErrItemLabelRequired    = errors.New("navigation: item label is required")
	ErrItemLocaleRequired   = errors.New("navigation: item locale is required")
	ErrItemPosition         = errors.New("navigation: position must be zero or positive")
	ErrItemParentInvalid    = errors.New("navigation: parent item invalid")
	ErrItemCycle            = errors.New("navigation: hierarchy creates a cycle")
	ErrItemHasChildren      = errors.New("navigation: item has children; enable cascade to delete")
	ErrPlacementsIncomplete = errors.New("navigation: placements must cover every item in the menu")
	ErrInvalidMove          = errors.New("navigation: move would nest an item inside its own subtree")
)

// Service manages navigation menus and their hierarchical items, and hands
// out drag sessions wired to the persistence layer.
type Service interface {
	CreateMenu(ctx context.Context, input CreateMenuInput) (*Menu, error)
	GetMenuByCode(ctx context.Context, code string) (*Menu, error)
	GetMenuByLocation(ctx context.Context, location string) (*Menu, error)

	CreateItem(ctx context.Context, input CreateItemInput) (*Item, error)
	UpdateItem(ctx context.Context, input UpdateItemInput) (*Item, error)
	DeleteItem(ctx context.Context, req DeleteItemRequest) error
	ListItems(ctx context.Context, input ListItemsInput) ([]*Item, error)

	ApplyPlacements(ctx context.Context, input ApplyPlacementsInput) ([]*Item, error)
	Reorder(ctx context.Context, input ReorderInput) error
	ResolveNavigation(ctx context.Context, location string, locale string) ([]NavigationNode, error)
	NewDragSession(ctx context.Context, input DragSessionInput) (*dnd.Session, error)
}

// CreateMenuInput registers a new menu container.
type CreateMenuInput struct {
	Code        string
	Location    string
	Description *string
	CreatedBy   uuid.UUID
	UpdatedBy   uuid.UUID
}

// CreateItemInput adds an item to a menu. A negative Position appends the
// item after its future siblings.
type CreateItemInput struct {
	MenuID    uuid.UUID
	Locale    string
	Label     string
	URL       string
	ParentID  *int64
	Position  int
	PageID    *int64
	Target    map[string]any
	CreatedBy uuid.UUID
	UpdatedBy uuid.UUID
}

// Validate enforces field-level constraints before the service touches storage.
func (i CreateItemInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.MenuID, validation.Required),
		validation.Field(&i.Locale, validation.Required),
		validation.Field(&i.Label, validation.Required),
	)
}

// UpdateItemInput mutates display fields of an existing item. Nil pointers
// leave the stored value untouched.
type UpdateItemInput struct {
	ItemID    int64
	Label     *string
	URL       *string
	PageID    *int64
	Target    map[string]any
	UpdatedBy uuid.UUID
}

// DeleteItemRequest removes an item, optionally cascading to its subtree.
type DeleteItemRequest struct {
	ItemID    int64
	Cascade   bool
	DeletedBy uuid.UUID
}

// ListItemsInput selects the flat item list for one menu location and language.
type ListItemsInput struct {
	Location string
	Locale   string
}

// Validate enforces the selector fields.
func (i ListItemsInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Location, validation.Required),
		validation.Field(&i.Locale, validation.Required),
	)
}

// ApplyPlacementsInput is the batch reorder payload: the full placement list
// for every item in the menu/locale, as produced by the drag engine.
type ApplyPlacementsInput struct {
	MenuID     uuid.UUID
	Locale     string
	Placements []dnd.ItemPlacement
	UpdatedBy  uuid.UUID
}

// Validate enforces the payload shape; semantic checks (unknown ids, cycles)
// happen against the stored items inside ApplyPlacements.
func (i ApplyPlacementsInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.MenuID, validation.Required),
		validation.Field(&i.Locale, validation.Required),
		validation.Field(&i.Placements, validation.Required),
	)
}

// ReorderInput describes a single direct move for hosts that do not drive a
// drag session: place ItemID under ParentID (nil for root) at Index among the
// new siblings.
type ReorderInput struct {
	Location  string
	Locale    string
	ItemID    int64
	ParentID  *int64
	Index     int
	UpdatedBy uuid.UUID
}

// Validate enforces the selector fields.
func (i ReorderInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Location, validation.Required),
		validation.Field(&i.Locale, validation.Required),
		validation.Field(&i.ItemID, validation.Required),
	)
}

// DragSessionInput selects the tree a drag session operates on.
type DragSessionInput struct {
	Location  string
	Locale    string
	UpdatedBy uuid.UUID
}

// NavigationNode is the nested, render-ready projection of a menu tree.
type NavigationNode struct {
	ID       int64            `json:"id"`
	Label    string           `json:"label"`
	URL      string           `json:"url,omitempty"`
	Depth    int              `json:"depth"`
	Children []NavigationNode `json:"children,omitempty"`
}

// ServiceOption customizes service construction.
type ServiceOption func(*service)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithLogger attaches a logger to the service.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMenuIDGenerator overrides how menu ids are minted.
func WithMenuIDGenerator(generator func() uuid.UUID) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.menuID = generator
		}
	}
}

// WithSessionLogger attaches a dedicated logger to drag sessions, keeping
// drag lifecycle entries in their own namespace. Falls back to the service
// logger when unset.
func WithSessionLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.sessionLogger = logger
		}
	}
}

// WithGeometry overrides the drag geometry handed to new sessions.
func WithGeometry(geo dnd.Geometry) ServiceOption {
	return func(s *service) {
		s.geometry = geo
	}
}

// WithURLResolver overrides how navigation URLs are generated for items that
// carry a route target instead of a literal URL.
func WithURLResolver(resolver URLResolver) ServiceOption {
	return func(s *service) {
		if resolver != nil {
			s.urlResolver = resolver
		}
	}
}

type service struct {
	menus         MenuRepository
	items         ItemRepository
	urlResolver   URLResolver
	logger        interfaces.Logger
	sessionLogger interfaces.Logger
	geometry      dnd.Geometry
	now           func() time.Time
	menuID        func() uuid.UUID
}

// NewService wires a navigation service over the provided repositories.
func NewService(menuRepo MenuRepository, itemRepo ItemRepository, opts ...ServiceOption) Service {
	s := &service{
		menus:    menuRepo,
		items:    itemRepo,
		logger:   logging.NoOp(),
		geometry: dnd.DefaultGeometry(),
		now:      time.Now,
		menuID:   uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateMenu registers a menu container for a location slot.
func (s *service) CreateMenu(ctx context.Context, input CreateMenuInput) (*Menu, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, ErrMenuCodeRequired
	}
	if !isValidMenuCode(code) {
		return nil, ErrMenuCodeInvalid
	}

	if _, err := s.menus.GetByCode(ctx, code); err == nil {
		return nil, ErrMenuCodeExists
	} else {
		var notFound *NotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	now := s.now()
	menu := &Menu{
		ID:          s.menuID(),
		Code:        code,
		Location:    strings.TrimSpace(input.Location),
		Description: input.Description,
		CreatedBy:   input.CreatedBy,
		UpdatedBy:   input.UpdatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.menus.Create(ctx, menu)
	if err != nil {
		return nil, err
	}
	s.logger.Info("menu created", "code", code, "menu_id", created.ID.String())
	return created, nil
}

func (s *service) GetMenuByCode(ctx context.Context, code string) (*Menu, error) {
	menu, err := s.menus.GetByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, asMenuNotFound(err)
	}
	return menu, nil
}

func (s *service) GetMenuByLocation(ctx context.Context, location string) (*Menu, error) {
	menu, err := s.menus.GetByLocation(ctx, strings.TrimSpace(location))
	if err != nil {
		return nil, asMenuNotFound(err)
	}
	return menu, nil
}

// CreateItem inserts an item, shifting later siblings so positions stay dense.
func (s *service) CreateItem(ctx context.Context, input CreateItemInput) (*Item, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.menus.GetByID(ctx, input.MenuID); err != nil {
		return nil, asMenuNotFound(err)
	}

	siblings, err := s.siblings(ctx, input.MenuID, input.Locale, input.ParentID)
	if err != nil {
		return nil, err
	}

	if input.ParentID != nil {
		parent, err := s.items.GetByID(ctx, *input.ParentID)
		if err != nil {
			var notFound *NotFoundError
			if errors.As(err, &notFound) {
				return nil, ErrItemParentInvalid
			}
			return nil, err
		}
		if parent.MenuID != input.MenuID || parent.Locale != input.Locale {
			return nil, ErrItemParentInvalid
		}
	}

	position := input.Position
	if position < 0 || position > len(siblings) {
		position = len(siblings)
	}

	now := s.now()
	item := &Item{
		MenuID:    input.MenuID,
		Locale:    input.Locale,
		Label:     strings.TrimSpace(input.Label),
		URL:       strings.TrimSpace(input.URL),
		ParentID:  input.ParentID,
		Position:  position,
		PageID:    input.PageID,
		Target:    input.Target,
		CreatedBy: input.CreatedBy,
		UpdatedBy: input.UpdatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.items.Create(ctx, item)
	if err != nil {
		return nil, err
	}

	// Shift the siblings the new item displaced.
	var dirty []*Item
	for _, sibling := range siblings {
		if sibling.Position >= position {
			sibling.Position++
			sibling.UpdatedAt = now
			sibling.UpdatedBy = input.UpdatedBy
			dirty = append(dirty, sibling)
		}
	}
	if len(dirty) > 0 {
		if err := s.items.BulkUpdateHierarchy(ctx, dirty); err != nil {
			return nil, err
		}
	}

	return created, nil
}

func (s *service) UpdateItem(ctx context.Context, input UpdateItemInput) (*Item, error) {
	item, err := s.items.GetByID(ctx, input.ItemID)
	if err != nil {
		return nil, asItemNotFound(err)
	}

	if input.Label != nil {
		label := strings.TrimSpace(*input.Label)
		if label == "" {
			return nil, ErrItemLabelRequired
		}
		item.Label = label
	}
	if input.URL != nil {
		item.URL = strings.TrimSpace(*input.URL)
	}
	if input.PageID != nil {
		item.PageID = input.PageID
	}
	if input.Target != nil {
		item.Target = input.Target
	}
	item.UpdatedAt = s.now()
	item.UpdatedBy = input.UpdatedBy

	return s.items.Update(ctx, item)
}

// DeleteItem removes the requested item, optionally cascading to children.
func (s *service) DeleteItem(ctx context.Context, req DeleteItemRequest) error {
	item, err := s.items.GetByID(ctx, req.ItemID)
	if err != nil {
		return asItemNotFound(err)
	}

	children, err := s.items.ListChildren(ctx, item.ID)
	if err != nil {
		return err
	}
	if len(children) > 0 && !req.Cascade {
		return ErrItemHasChildren
	}

	for _, child := range children {
		if err := s.DeleteItem(ctx, DeleteItemRequest{ItemID: child.ID, Cascade: true, DeletedBy: req.DeletedBy}); err != nil {
			return err
		}
	}

	if err := s.items.Delete(ctx, item.ID); err != nil {
		return err
	}

	return s.closeSiblingGap(ctx, item, req.DeletedBy)
}

// closeSiblingGap shifts the trailing siblings of a removed item down one
// slot so positions stay dense.
func (s *service) closeSiblingGap(ctx context.Context, removed *Item, actor uuid.UUID) error {
	siblings, err := s.siblings(ctx, removed.MenuID, removed.Locale, removed.ParentID)
	if err != nil {
		return err
	}

	now := s.now()
	var dirty []*Item
	for _, sibling := range siblings {
		if sibling.Position > removed.Position {
			sibling.Position--
			sibling.UpdatedAt = now
			sibling.UpdatedBy = actor
			dirty = append(dirty, sibling)
		}
	}
	if len(dirty) > 0 {
		return s.items.BulkUpdateHierarchy(ctx, dirty)
	}
	return nil
}

// ListItems is the input collaborator for the drag engine: the flat, ordered
// item list for one menu location and language.
func (s *service) ListItems(ctx context.Context, input ListItemsInput) ([]*Item, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	menu, err := s.GetMenuByLocation(ctx, input.Location)
	if err != nil {
		return nil, err
	}
	return s.items.ListByMenu(ctx, menu.ID, input.Locale)
}

// ApplyPlacements is the output collaborator for the drag engine: it commits
// a full placement list, renormalizing positions per parent and rejecting
// payloads that would corrupt the hierarchy.
func (s *service) ApplyPlacements(ctx context.Context, input ApplyPlacementsInput) ([]*Item, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.menus.GetByID(ctx, input.MenuID); err != nil {
		return nil, asMenuNotFound(err)
	}

	items, err := s.items.ListByMenu(ctx, input.MenuID, input.Locale)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	if len(input.Placements) != len(items) {
		return nil, fmt.Errorf("%w: have %d items, got %d placements",
			ErrPlacementsIncomplete, len(items), len(input.Placements))
	}

	index := make(map[int64]*Item, len(items))
	for _, item := range items {
		index[item.ID] = item
	}

	parents := make(map[int64]*int64, len(items))
	groups := make(map[int64][]dnd.ItemPlacement)
	seen := make(map[int64]struct{}, len(items))

	for _, placement := range input.Placements {
		if placement.Position < 0 {
			return nil, ErrItemPosition
		}
		if _, ok := index[placement.ID]; !ok {
			return nil, ErrItemNotFound
		}
		if _, dup := seen[placement.ID]; dup {
			return nil, fmt.Errorf("navigation: duplicate item %d in placements", placement.ID)
		}
		seen[placement.ID] = struct{}{}

		if placement.ParentID != nil {
			if *placement.ParentID == placement.ID {
				return nil, ErrItemCycle
			}
			if _, ok := index[*placement.ParentID]; !ok {
				return nil, ErrItemParentInvalid
			}
		}

		parents[placement.ID] = placement.ParentID
		key := parentSortKey(placement.ParentID)
		groups[key] = append(groups[key], placement)
	}

	if hasCycle(parents) {
		return nil, ErrItemCycle
	}

	now := s.now()
	var dirty []*Item
	for _, group := range groups {
		slices.SortFunc(group, func(a, b dnd.ItemPlacement) int {
			return a.Position - b.Position
		})
		for idx, placement := range group {
			item := index[placement.ID]
			parent := cloneParentID(placement.ParentID)
			needsUpdate := item.Position != idx || !parentIDEqual(item.ParentID, parent)
			item.ParentID = parent
			item.Position = idx
			item.UpdatedAt = now
			item.UpdatedBy = input.UpdatedBy
			if needsUpdate {
				dirty = append(dirty, item)
			}
		}
	}

	if len(dirty) > 0 {
		if err := s.items.BulkUpdateHierarchy(ctx, dirty); err != nil {
			return nil, err
		}
	}

	result := slices.Clone(items)
	slices.SortFunc(result, func(a, b *Item) int {
		if ak, bk := parentSortKey(a.ParentID), parentSortKey(b.ParentID); ak != bk {
			if ak < bk {
				return -1
			}
			return 1
		}
		return a.Position - b.Position
	})

	s.logger.Info("placements applied",
		"menu_id", input.MenuID.String(),
		"locale", input.Locale,
		"updated", len(dirty),
	)
	return result, nil
}

// Reorder applies one move directly: load the tree, commit the placement, and
// persist the renormalized result. Hosts driving interactive drags use
// NewDragSession instead; this is the one-shot path.
func (s *service) Reorder(ctx context.Context, input ReorderInput) error {
	if err := input.Validate(); err != nil {
		return err
	}

	menu, err := s.GetMenuByLocation(ctx, input.Location)
	if err != nil {
		return err
	}
	items, err := s.items.ListByMenu(ctx, menu.ID, input.Locale)
	if err != nil {
		return err
	}

	tree := dnd.BuildTree(items)
	node := dnd.FindNode(tree, input.ItemID)
	if node == nil {
		return ErrItemNotFound
	}

	depth := 0
	newSiblings := tree
	if input.ParentID != nil {
		parent := dnd.FindNode(tree, *input.ParentID)
		if parent == nil {
			return ErrItemParentInvalid
		}
		depth = parent.Depth + 1
		newSiblings = parent.Children
	}

	// The commit counts insertion slots against the intact tree, so a
	// same-parent move past the item's current slot needs one extra.
	index := input.Index
	if parentIDEqual(node.ParentID, input.ParentID) {
		for current, sibling := range newSiblings {
			if sibling.ID == node.ID {
				if current < index {
					index++
				}
				break
			}
		}
	}

	next, ok := dnd.Commit(tree, input.ItemID, dnd.Projection{
		ParentID: input.ParentID,
		Index:    index,
		Depth:    depth,
	})
	if !ok {
		return ErrInvalidMove
	}

	_, err = s.ApplyPlacements(ctx, ApplyPlacementsInput{
		MenuID:     menu.ID,
		Locale:     input.Locale,
		Placements: dnd.Placements(next),
		UpdatedBy:  input.UpdatedBy,
	})
	return err
}

// ResolveNavigation returns the nested, render-ready tree for a location.
func (s *service) ResolveNavigation(ctx context.Context, location string, locale string) ([]NavigationNode, error) {
	menu, err := s.GetMenuByLocation(ctx, location)
	if err != nil {
		return nil, err
	}
	items, err := s.items.ListByMenu(ctx, menu.ID, locale)
	if err != nil {
		return nil, err
	}

	tree := dnd.BuildTree(items)
	index := make(map[int64]*Item, len(items))
	for _, item := range items {
		index[item.ID] = item
	}

	var build func(nodes []*dnd.Node) []NavigationNode
	build = func(nodes []*dnd.Node) []NavigationNode {
		out := make([]NavigationNode, 0, len(nodes))
		for _, node := range nodes {
			out = append(out, NavigationNode{
				ID:       node.ID,
				Label:    node.Label,
				URL:      s.resolveNodeURL(ctx, menu.Code, index[node.ID], locale),
				Depth:    node.Depth,
				Children: build(node.Children),
			})
		}
		return out
	}
	return build(tree), nil
}

// NewDragSession builds a drag session over the current tree, with drops
// persisted through ApplyPlacements.
func (s *service) NewDragSession(ctx context.Context, input DragSessionInput) (*dnd.Session, error) {
	menu, err := s.GetMenuByLocation(ctx, input.Location)
	if err != nil {
		return nil, err
	}
	items, err := s.items.ListByMenu(ctx, menu.ID, input.Locale)
	if err != nil {
		return nil, err
	}

	persist := func(ctx context.Context, placements []dnd.ItemPlacement) error {
		_, err := s.ApplyPlacements(ctx, ApplyPlacementsInput{
			MenuID:     menu.ID,
			Locale:     input.Locale,
			Placements: placements,
			UpdatedBy:  input.UpdatedBy,
		})
		return err
	}

	logger := s.sessionLogger
	if logger == nil {
		logger = s.logger
	}
	return dnd.NewSession(items, persist,
		dnd.WithGeometry(s.geometry),
		dnd.WithLogger(logger),
	), nil
}

func (s *service) resolveNodeURL(ctx context.Context, menuCode string, item *Item, locale string) string {
	if item == nil {
		return ""
	}
	if item.URL != "" {
		return item.URL
	}
	if s.urlResolver == nil {
		return ""
	}
	url, err := s.urlResolver.Resolve(ctx, ResolveRequest{
		MenuCode: menuCode,
		Item:     item,
		Locale:   locale,
	})
	if err != nil {
		s.logger.Warn("url resolution failed", "item_id", item.ID, "error", err)
		return ""
	}
	return url
}

func (s *service) siblings(ctx context.Context, menuID uuid.UUID, locale string, parentID *int64) ([]*Item, error) {
	items, err := s.items.ListByMenu(ctx, menuID, locale)
	if err != nil {
		return nil, err
	}
	var siblings []*Item
	for _, item := range items {
		if parentIDEqual(item.ParentID, parentID) {
			siblings = append(siblings, item)
		}
	}
	return siblings, nil
}

func hasCycle(parents map[int64]*int64) bool {
	visited := make(map[int64]int, len(parents))

	var visit func(int64) bool
	visit = func(id int64) bool {
		state := visited[id]
		if state == 1 {
			return true
		}
		if state == 2 {
			return false
		}
		visited[id] = 1
		if parent := parents[id]; parent != nil {
			if visit(*parent) {
				return true
			}
		}
		visited[id] = 2
		return false
	}

	for id := range parents {
		if visit(id) {
			return true
		}
	}
	return false
}

func isValidMenuCode(code string) bool {
	for _, r := range code {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}

func parentIDEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func cloneParentID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func asMenuNotFound(err error) error {
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return ErrMenuNotFound
	}
	return err
}

func asItemNotFound(err error) error {
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return ErrItemNotFound
	}
	return err
}
