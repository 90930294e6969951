package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/hylla/taskcollab/internal/domain"
)

// SprintDeleteMode selects what happens to a sprint's cards when it is deleted.
type SprintDeleteMode string

// SprintKeepTasks and related constants define package defaults.
const (
	SprintKeepTasks SprintDeleteMode = "keep_tasks"
	SprintWithTasks SprintDeleteMode = "with_tasks"
)

// ParseSprintDeleteMode resolves a delete mode. Blank input keeps the tasks.
func ParseSprintDeleteMode(raw string) (SprintDeleteMode, error) {
	switch SprintDeleteMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", SprintKeepTasks:
		return SprintKeepTasks, nil
	case SprintWithTasks:
		return SprintWithTasks, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDeleteMode, raw)
	}
}

// SprintSummary is a sprint together with the number of cards assigned to it.
type SprintSummary struct {
	domain.Sprint
	TaskCount int `json:"task_count"`
}

// SprintStatusOption is one entry of the sprint status catalog.
type SprintStatusOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ListSprints returns the project's sprints in creation order with task counts.
func (s *Service) ListSprints(ctx context.Context, projectID string) ([]SprintSummary, error) {
	scope := []Predicate{Where(fieldProjectID, projectID)}
	records, err := s.store.Query(ctx, CollectionSprints, Query{
		Where:   scope,
		OrderBy: []Order{{Field: fieldCreatedAt}},
	})
	if err != nil {
		return nil, err
	}
	entries, err := s.store.Query(ctx, CollectionEntries, Query{Where: scope})
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, r := range entries {
		if id := fieldString(r.Fields, fieldEntrySprintID); id != "" {
			counts[id]++
		}
	}
	out := make([]SprintSummary, 0, len(records))
	for _, r := range records {
		sp := sprintFromRecord(r)
		out = append(out, SprintSummary{Sprint: sp, TaskCount: counts[sp.ID]})
	}
	return out, nil
}

// GetSprint returns one sprint of a project.
func (s *Service) GetSprint(ctx context.Context, projectID, sprintID string) (domain.Sprint, error) {
	r, err := s.store.Get(ctx, CollectionSprints, sprintID)
	if err != nil {
		return domain.Sprint{}, err
	}
	sp := sprintFromRecord(r)
	if sp.ProjectID != projectID {
		return domain.Sprint{}, fmt.Errorf("sprint %q: %w", sprintID, ErrNotFound)
	}
	return sp, nil
}

// CreateSprint creates a sprint in a project.
func (s *Service) CreateSprint(ctx context.Context, projectID string, in domain.SprintInput) (domain.Sprint, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return domain.Sprint{}, err
	}
	sp, err := domain.NewSprint(s.newID("sprint-"), projectID, in, s.clock())
	if err != nil {
		return domain.Sprint{}, err
	}
	if err := s.store.Set(ctx, CollectionSprints, sp.ID, sprintFields(sp)); err != nil {
		return domain.Sprint{}, err
	}
	return sp, nil
}

// UpdateSprint replaces a sprint's editable fields.
func (s *Service) UpdateSprint(ctx context.Context, projectID, sprintID string, in domain.SprintInput) (domain.Sprint, error) {
	sp, err := s.GetSprint(ctx, projectID, sprintID)
	if err != nil {
		return domain.Sprint{}, err
	}
	if err := sp.Update(in, s.clock()); err != nil {
		return domain.Sprint{}, err
	}
	fields := sprintFields(sp)
	delete(fields, fieldCreatedAt)
	if err := s.store.Update(ctx, CollectionSprints, sprintID, fields); err != nil {
		return domain.Sprint{}, err
	}
	return sp, nil
}

// DeleteSprint removes a sprint. SprintKeepTasks unassigns its cards;
// SprintWithTasks deletes them. It returns the number of cards affected.
func (s *Service) DeleteSprint(ctx context.Context, projectID, sprintID string, mode SprintDeleteMode) (int, error) {
	if mode != SprintKeepTasks && mode != SprintWithTasks {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDeleteMode, mode)
	}
	if _, err := s.GetSprint(ctx, projectID, sprintID); err != nil {
		return 0, err
	}
	where := []Predicate{Where(fieldProjectID, projectID), Where(fieldEntrySprintID, sprintID)}
	var affected int
	switch mode {
	case SprintWithTasks:
		tasks, err := s.store.Query(ctx, CollectionEntries, Query{Where: where})
		if err != nil {
			return 0, err
		}
		for _, r := range tasks {
			if _, err := s.store.DeleteByQuery(ctx, CollectionSubtasks, []Predicate{Where(fieldSubtaskTaskID, r.ID)}); err != nil {
				return 0, fmt.Errorf("delete subtasks of card %q: %w", r.ID, err)
			}
		}
		n, err := s.store.DeleteByQuery(ctx, CollectionEntries, where)
		if err != nil {
			return 0, err
		}
		affected = n
	default:
		tasks, err := s.store.Query(ctx, CollectionEntries, Query{Where: where})
		if err != nil {
			return 0, err
		}
		updates := make([]RecordUpdate, 0, len(tasks))
		for _, r := range tasks {
			updates = append(updates, RecordUpdate{ID: r.ID, Fields: Fields{fieldEntrySprintID: nil}})
		}
		if len(updates) > 0 {
			if err := s.store.BulkUpdate(ctx, CollectionEntries, updates); err != nil {
				return 0, err
			}
		}
		affected = len(updates)
	}
	if err := s.store.Delete(ctx, CollectionSprints, sprintID); err != nil {
		return affected, err
	}
	return affected, nil
}

// SprintStatusCatalog lists the stored sprint statuses, seeding the configured
// defaults when the catalog is empty.
func (s *Service) SprintStatusCatalog(ctx context.Context) ([]SprintStatusOption, error) {
	records, err := s.store.Query(ctx, CollectionSprintStatuses, Query{})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		out := make([]SprintStatusOption, 0, len(s.sprintStatuses))
		for _, st := range s.sprintStatuses {
			opt := SprintStatusOption{Value: string(st), Label: statusLabel(st)}
			if err := s.store.Set(ctx, CollectionSprintStatuses, opt.Value, Fields{
				fieldStatusValue: opt.Value,
				fieldStatusLabel: opt.Label,
			}); err != nil {
				return nil, err
			}
			out = append(out, opt)
		}
		return out, nil
	}
	byValue := make(map[string]SprintStatusOption, len(records))
	for _, r := range records {
		opt := SprintStatusOption{Value: fieldString(r.Fields, fieldStatusValue), Label: fieldString(r.Fields, fieldStatusLabel)}
		byValue[opt.Value] = opt
	}
	out := make([]SprintStatusOption, 0, len(records))
	for _, st := range s.sprintStatuses {
		if opt, ok := byValue[string(st)]; ok {
			out = append(out, opt)
			delete(byValue, string(st))
		}
	}
	for _, r := range records {
		if opt, ok := byValue[fieldString(r.Fields, fieldStatusValue)]; ok {
			out = append(out, opt)
		}
	}
	return out, nil
}

func statusLabel(st domain.SprintStatus) string {
	words := strings.Fields(string(st))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
