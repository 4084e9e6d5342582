package dnd

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-navtree/internal/logging"
	"github.com/goliatone/go-navtree/navigation"
	"github.com/goliatone/go-navtree/pkg/interfaces"
)

var (
	ErrDragActive     = errors.New("dnd: a drag is already in progress")
	ErrNoDrag         = errors.New("dnd: no drag in progress")
	ErrPersistPending = errors.New("dnd: previous drop is still being persisted")
	ErrActiveNotFound = errors.New("dnd: dragged node not found in tree")
)

// ItemPlacement is the persistence payload for one item: its id, its dense
// zero-based position among siblings, and its parent id (nil for roots).
type ItemPlacement struct {
	ID       int64  `json:"id"`
	Position int    `json:"position"`
	ParentID *int64 `json:"parent_id"`
}

// PersistFunc commits a full placement list to the backing store. The list is
// the complete tree, not a diff: renormalization can touch siblings far from
// the dragged node. Implementations must apply all updates or none so a
// failed call leaves the store matching the session's rollback.
type PersistFunc func(ctx context.Context, placements []ItemPlacement) error

// Placements flattens the tree pre-order into the persistence payload.
func Placements(tree []*Node) []ItemPlacement {
	flat := Flatten(tree)
	out := make([]ItemPlacement, 0, len(flat))
	for _, node := range flat {
		out = append(out, ItemPlacement{
			ID:       node.ID,
			Position: node.Position,
			ParentID: cloneID(node.ParentID),
		})
	}
	return out
}

type sessionState int

const (
	stateIdle sessionState = iota
	stateDragging
	statePersisting
)

// Session owns the drag lifecycle for one navigation tree: begin takes a deep
// snapshot, moves recompute the projection, drop commits and persists with
// rollback on failure. Drags are serialized: beginning a new drag while a
// drop is persisting is rejected so two batch updates never race on
// overlapping id sets.
type Session struct {
	mu      sync.Mutex
	geo     Geometry
	logger  interfaces.Logger
	persist PersistFunc

	state         sessionState
	epoch         uint64
	tree          []*Node
	snapshot      []*Node
	activeID      int64
	projection    Projection
	hasProjection bool
}

// SessionOption customizes session construction.
type SessionOption func(*Session)

// WithGeometry overrides the projector geometry.
func WithGeometry(geo Geometry) SessionOption {
	return func(s *Session) {
		s.geo = geo
	}
}

// WithLogger attaches a logger for drag lifecycle events.
func WithLogger(logger interfaces.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSession builds a session over the flat item list. The tree is rebuilt
// with Refresh whenever the external store delivers fresh data.
func NewSession(items []*navigation.Item, persist PersistFunc, opts ...SessionOption) *Session {
	s := &Session{
		geo:     DefaultGeometry(),
		logger:  logging.NoOp(),
		persist: persist,
		tree:    BuildTree(items),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh rebuilds the tree from a fresh flat list. A drag in progress is
// abandoned: the external store owns the canonical order. A persist in
// flight keeps its guard; the epoch bump tells its bookkeeping to leave the
// refreshed tree alone.
func (s *Session) Refresh(items []*navigation.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree = BuildTree(items)
	s.epoch++
	if s.state != statePersisting {
		s.reset()
	}
}

// Tree returns a deep copy of the currently displayed tree.
func (s *Session) Tree() []*Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CloneTree(s.tree)
}

// Begin starts a drag for the given node and snapshots the tree so a failed
// persistence call can restore it exactly.
func (s *Session) Begin(activeID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case stateDragging:
		return ErrDragActive
	case statePersisting:
		return ErrPersistPending
	}
	if FindNode(s.tree, activeID) == nil {
		return fmt.Errorf("%w: %d", ErrActiveNotFound, activeID)
	}

	s.state = stateDragging
	s.activeID = activeID
	s.snapshot = CloneTree(s.tree)
	s.hasProjection = false
	s.logger.Debug("drag begin", "active_id", activeID)
	return nil
}

// Move recomputes the projection for the current pointer state. It is called
// once per pointer-move frame; ok is false when the position has no legal
// drop target.
func (s *Session) Move(overID int64, deltaX, deltaY, overOffsetY int) (Projection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateDragging {
		return Projection{}, false
	}

	proj, ok := Project(ProjectionRequest{
		Tree:        s.tree,
		ActiveID:    s.activeID,
		OverID:      overID,
		DeltaX:      deltaX,
		DeltaY:      deltaY,
		OverOffsetY: overOffsetY,
	}, s.geo)

	s.projection = proj
	s.hasProjection = ok
	return proj, ok
}

// Projection returns the last computed projection, if any.
func (s *Session) Projection() (Projection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projection, s.hasProjection
}

// Cancel abandons the drag with no mutation and no persistence.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == stateDragging {
		s.logger.Debug("drag cancel", "active_id", s.activeID)
		s.reset()
	}
}

// Drop commits the current projection, optimistically installs the new tree,
// and submits the full placement list to the persistence collaborator. On
// failure the displayed tree rolls back to the pre-drag snapshot in full; no
// partial merge is attempted.
func (s *Session) Drop(ctx context.Context) error {
	s.mu.Lock()

	if s.state != stateDragging {
		s.mu.Unlock()
		return ErrNoDrag
	}
	if !s.hasProjection {
		// Released outside any valid target: same as a cancel.
		s.reset()
		s.mu.Unlock()
		return nil
	}

	next, ok := Commit(s.tree, s.activeID, s.projection)
	if !ok {
		// Illegal moves are silent: the tree stays as it was.
		s.logger.Debug("drop rejected", "active_id", s.activeID)
		s.reset()
		s.mu.Unlock()
		return nil
	}

	snapshot := s.snapshot
	activeID := s.activeID
	epoch := s.epoch
	s.tree = next
	s.state = statePersisting
	s.hasProjection = false
	placements := Placements(next)
	s.mu.Unlock()

	err := s.persist(ctx, placements)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		// A refresh landed mid-persist; the refreshed tree wins over both the
		// optimistic install and the rollback snapshot.
		s.state = stateIdle
		s.snapshot = nil
		if err != nil {
			s.logger.Warn("drop superseded by refresh", "active_id", activeID, "error", err)
			return fmt.Errorf("dnd: persist reorder: %w", err)
		}
		s.logger.Info("drop persisted", "active_id", activeID, "items", len(placements))
		return nil
	}

	if err != nil {
		s.tree = snapshot
		s.state = stateIdle
		s.snapshot = nil
		s.logger.Warn("drop rollback", "active_id", activeID, "error", err)
		return fmt.Errorf("dnd: persist reorder: %w", err)
	}

	s.state = stateIdle
	s.snapshot = nil
	s.logger.Info("drop persisted", "active_id", activeID, "items", len(placements))
	return nil
}

// reset clears drag state; callers hold the lock.
func (s *Session) reset() {
	s.state = stateIdle
	s.activeID = 0
	s.snapshot = nil
	s.hasProjection = false
	s.projection = Projection{}
}
