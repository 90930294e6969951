// Package board holds the interactive board state and the dialog controllers that edit it.
package board

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hylla/taskcollab/internal/domain"
)

// ErrSyncFailed wraps errors returned by a Syncer. Local state is never rolled back.
var ErrSyncFailed = errors.New("board sync failed")

// Syncer receives every board mutation. In controlled mode it is the only place
// where changes are applied; the owner reloads the board and calls Replace.
type Syncer interface {
	ColumnAdded(ctx context.Context, col domain.Column) error
	ColumnEdited(ctx context.Context, columnID string, patch domain.ColumnPatch) error
	ColumnDeleted(ctx context.Context, columnID string) error
	CardAdded(ctx context.Context, columnID string, card domain.Card) error
	CardEdited(ctx context.Context, columnID, cardID string, patch domain.CardPatch) error
	CardDeleted(ctx context.Context, columnID, cardID string) error
	CardMoved(ctx context.Context, mv domain.Move) error
}

// Option configures a Store.
type Option func(*Store)

// WithControlled makes the store report mutations without applying them locally.
func WithControlled(controlled bool) Option {
	return func(s *Store) { s.controlled = controlled }
}

// WithSyncer sets the mutation callback.
func WithSyncer(syncer Syncer) Option {
	return func(s *Store) { s.syncer = syncer }
}

// WithClock overrides the time source used for card timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithIDGenerator overrides id generation. The function receives the id prefix.
func WithIDGenerator(gen func(prefix string) string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// Store owns the board shown to one user. Mutations must come from a single
// goroutine; Snapshot may be called from any goroutine.
type Store struct {
	board      atomic.Pointer[domain.Board]
	controlled bool
	syncer     Syncer
	clock      func() time.Time
	newID      func(prefix string) string
}

// NewStore seeds a store from initial board data.
func NewStore(initial domain.Board, opts ...Option) *Store {
	s := &Store{
		clock: time.Now,
		newID: domain.NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Replace(initial)
	return s
}

// Controlled reports whether local state is owned by the caller.
func (s *Store) Controlled() bool {
	return s.controlled
}

// Replace re-seeds the store, typically after the owner reloads persisted data.
func (s *Store) Replace(b domain.Board) {
	next := b.Clone()
	s.board.Store(&next)
}

// Snapshot returns the current board. The returned value is never mutated by the store.
func (s *Store) Snapshot() domain.Board {
	return *s.board.Load()
}

// View returns the columns and the cards narrowed to the selected sprint.
func (s *Store) View(sel domain.SprintSelector) domain.Board {
	b := s.Snapshot()
	return domain.Board{
		Columns: b.Columns,
		Cards:   domain.FilterBySprint(b.Cards, sel),
	}
}

// AddColumn creates a column with a fresh id and an empty card list.
func (s *Store) AddColumn(ctx context.Context, title, description string) (domain.Column, error) {
	col, err := domain.NewColumn(s.newID(domain.ColumnIDPrefix), title, description)
	if err != nil {
		return domain.Column{}, err
	}
	err = s.report(func(sy Syncer) error { return sy.ColumnAdded(ctx, col) })
	s.apply(func(b domain.Board) domain.Board { return b.WithColumn(col) })
	return col, err
}

// EditColumn shallow-merges patch into the column with id.
func (s *Store) EditColumn(ctx context.Context, id string, patch domain.ColumnPatch) error {
	err := s.report(func(sy Syncer) error { return sy.ColumnEdited(ctx, id, patch) })
	s.apply(func(b domain.Board) domain.Board { return b.WithColumnPatched(id, patch) })
	return err
}

// DeleteColumn removes a column together with its cards.
func (s *Store) DeleteColumn(ctx context.Context, id string) error {
	err := s.report(func(sy Syncer) error { return sy.ColumnDeleted(ctx, id) })
	s.apply(func(b domain.Board) domain.Board { return b.WithoutColumn(id) })
	return err
}

// AddCard builds a card from defaults merged with overrides and appends it to a column.
func (s *Store) AddCard(ctx context.Context, columnID string, overrides domain.CardPatch) (domain.Card, error) {
	return s.AddCardWithID(ctx, columnID, s.newID(domain.CardIDPrefix), overrides)
}

// AddCardWithID is AddCard with a caller-chosen id.
func (s *Store) AddCardWithID(ctx context.Context, columnID, cardID string, overrides domain.CardPatch) (domain.Card, error) {
	card, err := domain.NewCard(cardID, overrides, s.clock())
	if err != nil {
		return domain.Card{}, err
	}
	err = s.report(func(sy Syncer) error { return sy.CardAdded(ctx, columnID, card) })
	s.apply(func(b domain.Board) domain.Board { return b.WithCard(columnID, card) })
	return card, err
}

// EditCard merges patch into a card and refreshes its UpdatedAt.
func (s *Store) EditCard(ctx context.Context, columnID, cardID string, patch domain.CardPatch) error {
	err := s.report(func(sy Syncer) error { return sy.CardEdited(ctx, columnID, cardID, patch) })
	now := s.clock()
	s.apply(func(b domain.Board) domain.Board { return b.WithCardPatched(columnID, cardID, patch, now) })
	return err
}

// DeleteCard removes one card.
func (s *Store) DeleteCard(ctx context.Context, columnID, cardID string) error {
	err := s.report(func(sy Syncer) error { return sy.CardDeleted(ctx, columnID, cardID) })
	s.apply(func(b domain.Board) domain.Board { return b.WithoutCard(columnID, cardID) })
	return err
}

// Move reports a drop and, when uncontrolled, reorders the local board.
// The syncer sees cancelled drops too.
func (s *Store) Move(ctx context.Context, mv domain.Move) error {
	if mv.CardID == "" {
		if list := s.Snapshot().CardsIn(mv.Source.ColumnID); mv.Source.Index >= 0 && mv.Source.Index < len(list) {
			mv.CardID = list[mv.Source.Index].ID
		}
	}
	err := s.report(func(sy Syncer) error { return sy.CardMoved(ctx, mv) })
	s.apply(func(b domain.Board) domain.Board { return domain.Reorder(b, mv) })
	return err
}

func (s *Store) report(call func(Syncer) error) error {
	if s.syncer == nil {
		return nil
	}
	if err := call(s.syncer); err != nil {
		return fmt.Errorf("%w: %w", ErrSyncFailed, err)
	}
	return nil
}

func (s *Store) apply(change func(domain.Board) domain.Board) {
	if s.controlled {
		return
	}
	next := change(s.Snapshot())
	s.board.Store(&next)
}
