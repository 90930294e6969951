package app

import (
	"context"
	"fmt"

	"github.com/hylla/taskcollab/internal/domain"
)

// ListSubtasks returns a card's subtasks in creation order.
func (s *Service) ListSubtasks(ctx context.Context, projectID, cardID string) ([]domain.Subtask, error) {
	records, err := s.store.Query(ctx, CollectionSubtasks, Query{
		Where:   []Predicate{Where(fieldProjectID, projectID), Where(fieldSubtaskTaskID, cardID)},
		OrderBy: []Order{{Field: fieldCreatedAt}},
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Subtask, 0, len(records))
	for _, r := range records {
		out = append(out, subtaskFromRecord(r))
	}
	return out, nil
}

// AddSubtask adds a checklist item to a card.
func (s *Service) AddSubtask(ctx context.Context, projectID, cardID, name string) (domain.Subtask, error) {
	r, err := s.store.Get(ctx, CollectionEntries, cardID)
	if err != nil {
		return domain.Subtask{}, err
	}
	if fieldString(r.Fields, fieldProjectID) != projectID {
		return domain.Subtask{}, fmt.Errorf("card %q: %w", cardID, ErrNotFound)
	}
	st, err := domain.NewSubtask(s.newID("sub-"), projectID, cardID, name, s.clock())
	if err != nil {
		return domain.Subtask{}, err
	}
	if err := s.store.Set(ctx, CollectionSubtasks, st.ID, subtaskFields(st)); err != nil {
		return domain.Subtask{}, err
	}
	return st, nil
}

// ToggleSubtask flips the done flag of a subtask.
func (s *Service) ToggleSubtask(ctx context.Context, projectID, subtaskID string) (domain.Subtask, error) {
	st, err := s.subtask(ctx, projectID, subtaskID)
	if err != nil {
		return domain.Subtask{}, err
	}
	st.Done = !st.Done
	if err := s.store.Update(ctx, CollectionSubtasks, subtaskID, Fields{fieldSubtaskDone: st.Done}); err != nil {
		return domain.Subtask{}, err
	}
	return st, nil
}

// DeleteSubtask removes a subtask.
func (s *Service) DeleteSubtask(ctx context.Context, projectID, subtaskID string) error {
	if _, err := s.subtask(ctx, projectID, subtaskID); err != nil {
		return err
	}
	return s.store.Delete(ctx, CollectionSubtasks, subtaskID)
}

func (s *Service) subtask(ctx context.Context, projectID, subtaskID string) (domain.Subtask, error) {
	r, err := s.store.Get(ctx, CollectionSubtasks, subtaskID)
	if err != nil {
		return domain.Subtask{}, err
	}
	st := subtaskFromRecord(r)
	if st.ProjectID != projectID {
		return domain.Subtask{}, fmt.Errorf("subtask %q: %w", subtaskID, ErrNotFound)
	}
	return st, nil
}
