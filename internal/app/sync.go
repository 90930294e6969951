package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/hylla/taskcollab/internal/domain"
)

// Notification texts for newly assigned cards.
const (
	assignmentSubject      = "A new task assigned to you."
	assignmentInnerSubject = "Task Alloted"
	assignmentUpdateType   = "Task"
	assignmentUpdatedBy    = "Project Admin"
	assignmentMessage      = "Please check the task details ASAP."
)

// Notice reports a collaborator failure that did not fail the board operation.
type Notice struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

// BoardSyncer persists board mutations for one project.
type BoardSyncer struct {
	svc       *Service
	projectID string

	mu      sync.Mutex
	notices []Notice
}

// BoardSyncer returns a syncer bound to projectID.
func (s *Service) BoardSyncer(projectID string) *BoardSyncer {
	return &BoardSyncer{svc: s, projectID: projectID}
}

// Notices returns the notices raised so far.
func (b *BoardSyncer) Notices() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.notices)
}

// ColumnAdded stores a new column after the project's last column.
func (b *BoardSyncer) ColumnAdded(ctx context.Context, col domain.Column) error {
	existing, err := b.svc.store.Query(ctx, CollectionColumns, Query{Where: b.scope()})
	if err != nil {
		return err
	}
	position := 0
	for _, r := range existing {
		if p := fieldInt(r.Fields, fieldColumnPosition); p >= position {
			position = p + 1
		}
	}
	return b.svc.store.Set(ctx, CollectionColumns, col.ID, columnFields(b.projectID, col, position))
}

// ColumnEdited updates the patched column fields. A column that is already
// gone is left alone.
func (b *BoardSyncer) ColumnEdited(ctx context.Context, columnID string, patch domain.ColumnPatch) error {
	if _, err := b.column(ctx, columnID); err != nil {
		return ignoreMissing(err)
	}
	if patch.IsEmpty() {
		return nil
	}
	return ignoreMissing(b.svc.store.Update(ctx, CollectionColumns, columnID, columnPatchFields(patch)))
}

// ColumnDeleted removes a column with its cards and their subtasks. Parents go
// first: the board never shows cards whose column is gone, nor subtasks whose
// card is gone, so a failure part way leaves only unreachable records behind.
func (b *BoardSyncer) ColumnDeleted(ctx context.Context, columnID string) error {
	if _, err := b.column(ctx, columnID); err != nil {
		return ignoreMissing(err)
	}
	cards, err := b.svc.store.Query(ctx, CollectionEntries, Query{
		Where: append(b.scope(), Where(fieldEntryColumnID, columnID)),
	})
	if err != nil {
		return err
	}
	if err := b.svc.store.Delete(ctx, CollectionColumns, columnID); err != nil {
		return ignoreMissing(err)
	}
	if len(cards) == 0 {
		return nil
	}
	ids := make([]string, 0, len(cards))
	for _, r := range cards {
		ids = append(ids, r.ID)
	}
	if err := b.svc.store.BulkDelete(ctx, CollectionEntries, ids); err != nil {
		return fmt.Errorf("delete cards of column %q: %w", columnID, err)
	}
	for _, id := range ids {
		if _, err := b.svc.store.DeleteByQuery(ctx, CollectionSubtasks, []Predicate{Where(fieldSubtaskTaskID, id)}); err != nil {
			return fmt.Errorf("delete subtasks of card %q: %w", id, err)
		}
	}
	return nil
}

// CardAdded stores a card at the end of its column and notifies its assignees.
func (b *BoardSyncer) CardAdded(ctx context.Context, columnID string, card domain.Card) error {
	if _, err := b.column(ctx, columnID); err != nil {
		return err
	}
	list, err := b.columnCards(ctx, columnID)
	if err != nil {
		return err
	}
	position := 0
	if n := len(list); n > 0 {
		position = fieldInt(list[n-1].Fields, fieldEntryPosition) + 1
	}
	fields, err := cardFields(b.projectID, columnID, card, position)
	if err != nil {
		return err
	}
	if err := b.svc.store.Set(ctx, CollectionEntries, card.ID, fields); err != nil {
		return err
	}
	b.notifyAssignees(ctx, card, card.Assignees)
	return nil
}

// CardEdited merges patch into the stored card and notifies newly added
// assignees. A card that is already gone is left alone.
func (b *BoardSyncer) CardEdited(ctx context.Context, _ string, cardID string, patch domain.CardPatch) error {
	stored, err := b.card(ctx, cardID)
	if err != nil {
		return ignoreMissing(err)
	}
	before := stored.Card
	after := before.Apply(patch, b.svc.clock())
	fields, err := cardFields(b.projectID, stored.ColumnID, after, stored.Position)
	if err != nil {
		return err
	}
	delete(fields, fieldEntryCreatedAt)
	if err := b.svc.store.Update(ctx, CollectionEntries, cardID, fields); err != nil {
		return ignoreMissing(err)
	}
	b.notifyAssignees(ctx, after, addedAssignees(before.Assignees, after.Assignees))
	return nil
}

// CardDeleted removes a card, then its subtasks. A card that is already gone
// is left alone.
func (b *BoardSyncer) CardDeleted(ctx context.Context, _ string, cardID string) error {
	if _, err := b.card(ctx, cardID); err != nil {
		return ignoreMissing(err)
	}
	if err := b.svc.store.Delete(ctx, CollectionEntries, cardID); err != nil {
		return ignoreMissing(err)
	}
	if _, err := b.svc.store.DeleteByQuery(ctx, CollectionSubtasks, []Predicate{Where(fieldSubtaskTaskID, cardID)}); err != nil {
		return fmt.Errorf("delete subtasks of card %q: %w", cardID, err)
	}
	return nil
}

// CardMoved rewrites column and positions of the affected columns. Cancelled drops are ignored.
func (b *BoardSyncer) CardMoved(ctx context.Context, mv domain.Move) error {
	if mv.Destination == nil {
		return nil
	}
	src, dst := mv.Source.ColumnID, mv.Destination.ColumnID
	lists := map[string][]Record{}
	for _, columnID := range []string{src, dst} {
		if _, ok := lists[columnID]; ok {
			continue
		}
		if _, err := b.column(ctx, columnID); err != nil {
			return fmt.Errorf("%w: column %q: %w", ErrInvalidMove, columnID, err)
		}
		list, err := b.columnCards(ctx, columnID)
		if err != nil {
			return err
		}
		lists[columnID] = list
	}
	srcList := lists[src]
	if mv.Source.Index < 0 || mv.Source.Index >= len(srcList) {
		return fmt.Errorf("%w: source index %d out of range", ErrInvalidMove, mv.Source.Index)
	}
	if mv.CardID != "" && srcList[mv.Source.Index].ID != mv.CardID {
		return fmt.Errorf("%w: card %q is not at source index %d", ErrInvalidMove, mv.CardID, mv.Source.Index)
	}

	columns := make([]domain.Column, 0, len(lists))
	cards := make(map[string][]domain.Card, len(lists))
	current := map[string]Record{}
	for columnID, list := range lists {
		columns = append(columns, domain.Column{ID: columnID})
		for _, r := range list {
			cards[columnID] = append(cards[columnID], domain.Card{ID: r.ID})
			current[r.ID] = r
		}
	}
	moved := domain.Reorder(domain.NewBoard(columns, cards), mv)

	var updates []RecordUpdate
	for _, col := range moved.Columns {
		for i, c := range moved.CardsIn(col.ID) {
			r := current[c.ID]
			if fieldString(r.Fields, fieldEntryColumnID) == col.ID && fieldInt(r.Fields, fieldEntryPosition) == i {
				continue
			}
			updates = append(updates, RecordUpdate{ID: c.ID, Fields: Fields{
				fieldEntryColumnID: col.ID,
				fieldEntryPosition: i,
			}})
		}
	}
	if len(updates) == 0 {
		return nil
	}
	return b.svc.store.BulkUpdate(ctx, CollectionEntries, updates)
}

// ignoreMissing drops ErrNotFound: editing or deleting a column or card that
// no longer exists is a no-op.
func ignoreMissing(err error) error {
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

func (b *BoardSyncer) scope() []Predicate {
	return []Predicate{Where(fieldProjectID, b.projectID)}
}

func (b *BoardSyncer) column(ctx context.Context, columnID string) (Record, error) {
	r, err := b.svc.store.Get(ctx, CollectionColumns, columnID)
	if err != nil {
		return Record{}, err
	}
	if fieldString(r.Fields, fieldProjectID) != b.projectID {
		return Record{}, fmt.Errorf("column %q: %w", columnID, ErrNotFound)
	}
	return r, nil
}

func (b *BoardSyncer) card(ctx context.Context, cardID string) (storedCard, error) {
	r, err := b.svc.store.Get(ctx, CollectionEntries, cardID)
	if err != nil {
		return storedCard{}, err
	}
	if fieldString(r.Fields, fieldProjectID) != b.projectID {
		return storedCard{}, fmt.Errorf("card %q: %w", cardID, ErrNotFound)
	}
	return cardFromRecord(r, nil)
}

func (b *BoardSyncer) columnCards(ctx context.Context, columnID string) ([]Record, error) {
	return b.svc.store.Query(ctx, CollectionEntries, Query{
		Where:   append(b.scope(), Where(fieldEntryColumnID, columnID)),
		OrderBy: []Order{{Field: fieldEntryPosition}},
	})
}

func (b *BoardSyncer) notifyAssignees(ctx context.Context, card domain.Card, assignees []domain.UserRef) {
	if b.svc.notifier == nil {
		return
	}
	to := make(Recipients, 0, len(assignees))
	for _, a := range assignees {
		if email := strings.TrimSpace(a.Email); email != "" {
			to = append(to, email)
		}
	}
	if len(to) == 0 {
		return
	}
	name := ""
	if len(assignees) == 1 {
		name = assignees[0].Name
	}
	res := b.svc.notifier.SendEmail(ctx, EmailRequest{
		To:              to,
		Subject:         assignmentSubject,
		Name:            name,
		InnerSubject:    assignmentInnerSubject,
		UpdateType:      assignmentUpdateType,
		UpdatedBy:       assignmentUpdatedBy,
		TaskStatus:      string(card.Priority),
		TaskPriority:    string(card.Priority),
		OptionalMessage: assignmentMessage,
		TaskLink:        b.svc.taskLink(b.projectID),
	})
	if res.Success {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices = append(b.notices, Notice{
		Source:  "notification",
		Message: fmt.Sprintf("email for card %q: %s", card.ID, res.Message),
	})
}

func (s *Service) taskLink(projectID string) string {
	return s.taskLinkBase + "/projects/" + projectID
}

// addedAssignees returns assignees present in after but not in before, compared by email.
func addedAssignees(before, after []domain.UserRef) []domain.UserRef {
	known := make(map[string]struct{}, len(before))
	for _, a := range before {
		known[strings.ToLower(strings.TrimSpace(a.Email))] = struct{}{}
	}
	var out []domain.UserRef
	for _, a := range after {
		if _, ok := known[strings.ToLower(strings.TrimSpace(a.Email))]; ok {
			continue
		}
		out = append(out, a)
	}
	return out
}
