package app

import (
	"context"
	"fmt"
	"slices"

	"github.com/hylla/taskcollab/internal/board"
	"github.com/hylla/taskcollab/internal/domain"
	"golang.org/x/sync/errgroup"
)

// BoardResult is a project's board reloaded after a mutation, with the
// collaborator notices raised while persisting it.
type BoardResult struct {
	Board   domain.Board `json:"board"`
	Notices []Notice     `json:"notices,omitempty"`
}

// LoadBoard reads a project's columns, cards and sprints and assembles the board.
// Cards whose column no longer exists are dropped.
func (s *Service) LoadBoard(ctx context.Context, projectID string) (domain.Board, error) {
	scope := []Predicate{Where(fieldProjectID, projectID)}
	var (
		columnRecords []Record
		cardRecords   []Record
		sprintRecords []Record
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		columnRecords, err = s.store.Query(gctx, CollectionColumns, Query{
			Where:   scope,
			OrderBy: []Order{{Field: fieldColumnPosition}},
		})
		return err
	})
	g.Go(func() error {
		var err error
		cardRecords, err = s.store.Query(gctx, CollectionEntries, Query{
			Where:   scope,
			OrderBy: []Order{{Field: fieldEntryPosition}},
		})
		return err
	})
	g.Go(func() error {
		var err error
		sprintRecords, err = s.store.Query(gctx, CollectionSprints, Query{Where: scope})
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Board{}, fmt.Errorf("load board %q: %w", projectID, err)
	}

	sprintNames := make(map[string]string, len(sprintRecords))
	for _, r := range sprintRecords {
		sprintNames[r.ID] = fieldString(r.Fields, fieldSprintName)
	}
	columns := make([]domain.Column, 0, len(columnRecords))
	for _, r := range columnRecords {
		columns = append(columns, columnFromRecord(r))
	}

	stored := make([]storedCard, 0, len(cardRecords))
	for _, r := range cardRecords {
		sc, err := cardFromRecord(r, sprintNames)
		if err != nil {
			return domain.Board{}, fmt.Errorf("load card %q: %w", r.ID, err)
		}
		stored = append(stored, sc)
	}
	slices.SortStableFunc(stored, func(a, b storedCard) int { return a.Position - b.Position })

	cards := make(map[string][]domain.Card, len(columns))
	for _, col := range columns {
		cards[col.ID] = []domain.Card{}
	}
	for _, sc := range stored {
		if _, ok := cards[sc.ColumnID]; !ok {
			continue
		}
		cards[sc.ColumnID] = append(cards[sc.ColumnID], sc.Card)
	}
	return domain.NewBoard(columns, cards), nil
}

// OpenBoard returns a controlled store seeded with the project's board. Every
// mutation goes through the returned syncer; callers reload and Replace after each one.
func (s *Service) OpenBoard(ctx context.Context, projectID string) (*board.Store, *BoardSyncer, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, nil, err
	}
	b, err := s.LoadBoard(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	syncer := s.BoardSyncer(projectID)
	store := board.NewStore(b,
		board.WithControlled(true),
		board.WithSyncer(syncer),
		board.WithClock(s.clock),
	)
	return store, syncer, nil
}

// Reload re-reads the project and re-seeds store.
func (s *Service) Reload(ctx context.Context, projectID string, store *board.Store) error {
	b, err := s.LoadBoard(ctx, projectID)
	if err != nil {
		return err
	}
	store.Replace(b)
	return nil
}

// AddColumn appends a column to the project's board.
func (s *Service) AddColumn(ctx context.Context, projectID, title, description string) (domain.Column, BoardResult, error) {
	var col domain.Column
	res, err := s.mutate(ctx, projectID, func(st *board.Store) error {
		var err error
		col, err = st.AddColumn(ctx, title, description)
		return err
	})
	return col, res, err
}

// EditColumn patches one column.
func (s *Service) EditColumn(ctx context.Context, projectID, columnID string, patch domain.ColumnPatch) (BoardResult, error) {
	return s.mutate(ctx, projectID, func(st *board.Store) error {
		return st.EditColumn(ctx, columnID, patch)
	})
}

// DeleteColumn removes a column and its cards.
func (s *Service) DeleteColumn(ctx context.Context, projectID, columnID string) (BoardResult, error) {
	return s.mutate(ctx, projectID, func(st *board.Store) error {
		return st.DeleteColumn(ctx, columnID)
	})
}

// AddCard creates a card in a column.
func (s *Service) AddCard(ctx context.Context, projectID, columnID string, overrides domain.CardPatch) (domain.Card, BoardResult, error) {
	var card domain.Card
	res, err := s.mutate(ctx, projectID, func(st *board.Store) error {
		var err error
		card, err = st.AddCard(ctx, columnID, overrides)
		return err
	})
	return card, res, err
}

// EditCard patches one card.
func (s *Service) EditCard(ctx context.Context, projectID, columnID, cardID string, patch domain.CardPatch) (BoardResult, error) {
	return s.mutate(ctx, projectID, func(st *board.Store) error {
		return st.EditCard(ctx, columnID, cardID, patch)
	})
}

// DeleteCard removes one card.
func (s *Service) DeleteCard(ctx context.Context, projectID, columnID, cardID string) (BoardResult, error) {
	return s.mutate(ctx, projectID, func(st *board.Store) error {
		return st.DeleteCard(ctx, columnID, cardID)
	})
}

// MoveCard persists a drop. A move without destination leaves the board unchanged.
func (s *Service) MoveCard(ctx context.Context, projectID string, mv domain.Move) (BoardResult, error) {
	return s.mutate(ctx, projectID, func(st *board.Store) error {
		return st.Move(ctx, mv)
	})
}

func (s *Service) mutate(ctx context.Context, projectID string, op func(*board.Store) error) (BoardResult, error) {
	store, syncer, err := s.OpenBoard(ctx, projectID)
	if err != nil {
		return BoardResult{}, err
	}
	if err := op(store); err != nil {
		return BoardResult{}, err
	}
	if err := s.Reload(ctx, projectID, store); err != nil {
		return BoardResult{}, err
	}
	return BoardResult{Board: store.Snapshot(), Notices: syncer.Notices()}, nil
}
