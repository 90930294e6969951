package board

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/hylla/taskcollab/internal/domain"
)

// ErrDialogClosed is returned when saving or confirming a dialog that is not open.
var ErrDialogClosed = errors.New("dialog is not open")

// Mode distinguishes creating from editing.
type Mode string

const (
	ModeAdd  Mode = "add"
	ModeEdit Mode = "edit"
)

// Editor is the subset of Store used by the dialogs.
type Editor interface {
	AddColumn(ctx context.Context, title, description string) (domain.Column, error)
	EditColumn(ctx context.Context, id string, patch domain.ColumnPatch) error
	DeleteColumn(ctx context.Context, id string) error
	AddCardWithID(ctx context.Context, columnID, cardID string, overrides domain.CardPatch) (domain.Card, error)
	EditCard(ctx context.Context, columnID, cardID string, patch domain.CardPatch) error
	DeleteCard(ctx context.Context, columnID, cardID string) error
}

// ColumnDialog edits one column at a time.
type ColumnDialog struct {
	Open        bool
	Mode        Mode
	ColumnID    string
	Title       string
	Description string
}

// OpenAdd opens an empty form.
func (d *ColumnDialog) OpenAdd() {
	*d = ColumnDialog{Open: true, Mode: ModeAdd}
}

// OpenEdit opens the form prefilled from col.
func (d *ColumnDialog) OpenEdit(col domain.Column) {
	*d = ColumnDialog{
		Open:        true,
		Mode:        ModeEdit,
		ColumnID:    col.ID,
		Title:       col.Title,
		Description: col.Description,
	}
}

// Cancel closes without saving.
func (d *ColumnDialog) Cancel() {
	*d = ColumnDialog{}
}

// Save commits the form. A blank title is saved as "Untitled".
func (d *ColumnDialog) Save(ctx context.Context, ed Editor) error {
	if !d.Open {
		return ErrDialogClosed
	}
	title := strings.TrimSpace(d.Title)
	if title == "" {
		title = domain.DefaultTitle
	}
	var err error
	switch d.Mode {
	case ModeEdit:
		description := d.Description
		err = ed.EditColumn(ctx, d.ColumnID, domain.ColumnPatch{Title: &title, Description: &description})
	default:
		_, err = ed.AddColumn(ctx, title, d.Description)
	}
	if err != nil && !errors.Is(err, ErrSyncFailed) {
		return err
	}
	d.Cancel()
	return err
}

// CardDraft is the editable form state of a card.
type CardDraft struct {
	Title       string
	Description string
	Assignees   []domain.UserRef
	Priority    domain.Priority
	Status      string
	Estimate    string
	DueDate     string
	Tags        []string
	Attachments []domain.Attachment
	Sprint      *domain.SprintRef
}

// CardDialog edits one card at a time.
type CardDialog struct {
	Open      bool
	Mode      Mode
	ColumnID  string
	CardID    string
	Draft     CardDraft
	TagsInput string

	encoder Encoder
	newID   func(prefix string) string
}

// NewCardDialog builds a closed card dialog that encodes attachments with enc.
func NewCardDialog(enc Encoder) *CardDialog {
	newID := enc.NewID
	if newID == nil {
		newID = domain.NewID
	}
	return &CardDialog{encoder: enc, newID: newID}
}

// OpenAdd opens an empty form for a new card in columnID.
func (d *CardDialog) OpenAdd(columnID string) {
	d.reset()
	d.Open = true
	d.Mode = ModeAdd
	d.ColumnID = columnID
	d.Draft = CardDraft{Priority: domain.PriorityMedium}
}

// OpenEdit opens the form prefilled from card.
func (d *CardDialog) OpenEdit(columnID string, card domain.Card) {
	d.reset()
	card = card.Clone()
	d.Open = true
	d.Mode = ModeEdit
	d.ColumnID = columnID
	d.CardID = card.ID
	d.Draft = CardDraft{
		Title:       card.Title,
		Description: card.Description,
		Assignees:   card.Assignees,
		Priority:    card.Priority,
		Status:      card.Status,
		Estimate:    card.Estimate,
		DueDate:     card.DueDate,
		Tags:        card.Tags,
		Attachments: card.Attachments,
		Sprint:      card.Sprint,
	}
}

// Cancel closes without saving.
func (d *CardDialog) Cancel() {
	d.reset()
}

func (d *CardDialog) reset() {
	d.Open = false
	d.Mode = ""
	d.ColumnID = ""
	d.CardID = ""
	d.Draft = CardDraft{}
	d.TagsInput = ""
}

// ApplyTags moves comma-separated tags from TagsInput into the draft, skipping
// blanks and tags already present, and clears TagsInput.
func (d *CardDialog) ApplyTags() {
	for _, raw := range strings.Split(d.TagsInput, ",") {
		tag := strings.TrimSpace(raw)
		if tag == "" || slices.Contains(d.Draft.Tags, tag) {
			continue
		}
		d.Draft.Tags = append(d.Draft.Tags, tag)
	}
	d.TagsInput = ""
}

// RemoveTag drops one tag from the draft.
func (d *CardDialog) RemoveTag(tag string) {
	d.Draft.Tags = slices.DeleteFunc(slices.Clone(d.Draft.Tags), func(t string) bool { return t == tag })
}

// SetAssignees replaces the draft assignees.
func (d *CardDialog) SetAssignees(users []domain.UserRef) {
	d.Draft.Assignees = slices.Clone(users)
}

// SetSprint sets or, with nil, clears the draft sprint.
func (d *CardDialog) SetSprint(ref *domain.SprintRef) {
	if ref == nil {
		d.Draft.Sprint = nil
		return
	}
	cp := *ref
	d.Draft.Sprint = &cp
}

// AttachFiles encodes files and appends the successful ones to the draft.
// It returns how many were added and the joined errors of the rest.
func (d *CardDialog) AttachFiles(ctx context.Context, files []FileSource) (int, error) {
	enc := d.encoder
	enc.NewID = d.newID
	added, err := enc.Encode(ctx, files)
	d.Draft.Attachments = append(d.Draft.Attachments, added...)
	return len(added), err
}

// RemoveAttachment drops one attachment from the draft.
func (d *CardDialog) RemoveAttachment(id string) {
	d.Draft.Attachments = slices.DeleteFunc(slices.Clone(d.Draft.Attachments), func(a domain.Attachment) bool { return a.ID == id })
}

// Patch returns the draft as a card patch setting every editable field.
func (d *CardDialog) Patch() domain.CardPatch {
	draft := d.Draft
	title := strings.TrimSpace(draft.Title)
	assignees := slices.Clone(draft.Assignees)
	tags := slices.Clone(draft.Tags)
	attachments := slices.Clone(draft.Attachments)
	priority := draft.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	var sprint *domain.SprintRef
	if draft.Sprint != nil {
		ref := *draft.Sprint
		sprint = &ref
	}
	return domain.CardPatch{
		Title:       &title,
		Description: &draft.Description,
		Assignees:   &assignees,
		Priority:    &priority,
		Status:      &draft.Status,
		Estimate:    &draft.Estimate,
		DueDate:     &draft.DueDate,
		Tags:        &tags,
		Attachments: &attachments,
		Sprint:      &domain.SprintChange{Ref: sprint},
	}
}

// Save validates and commits the draft. A blank title keeps the dialog open and
// returns domain.ErrInvalidTitle. Sync failures close the dialog and are returned.
func (d *CardDialog) Save(ctx context.Context, ed Editor) error {
	if !d.Open {
		return ErrDialogClosed
	}
	if strings.TrimSpace(d.Draft.Title) == "" {
		return domain.ErrInvalidTitle
	}
	patch := d.Patch()
	var err error
	switch d.Mode {
	case ModeEdit:
		err = ed.EditCard(ctx, d.ColumnID, d.CardID, patch)
	default:
		_, err = ed.AddCardWithID(ctx, d.ColumnID, d.newID(domain.CardIDPrefix), patch)
	}
	if err != nil && !errors.Is(err, ErrSyncFailed) {
		return err
	}
	d.reset()
	return err
}

// DeleteDialog confirms removal of a column or a card.
type DeleteDialog struct {
	Open     bool
	ColumnID string
	CardID   string
	Title    string
}

// OpenForColumn asks to delete a column and its cards.
func (d *DeleteDialog) OpenForColumn(col domain.Column) {
	*d = DeleteDialog{Open: true, ColumnID: col.ID, Title: col.Title}
}

// OpenForCard asks to delete one card.
func (d *DeleteDialog) OpenForCard(columnID string, card domain.Card) {
	*d = DeleteDialog{Open: true, ColumnID: columnID, CardID: card.ID, Title: card.Title}
}

// TargetsCard reports whether the pending deletion is a card.
func (d *DeleteDialog) TargetsCard() bool {
	return d.CardID != ""
}

// Cancel closes without deleting.
func (d *DeleteDialog) Cancel() {
	*d = DeleteDialog{}
}

// Confirm performs the pending deletion and closes the dialog.
func (d *DeleteDialog) Confirm(ctx context.Context, ed Editor) error {
	if !d.Open {
		return ErrDialogClosed
	}
	var err error
	if d.TargetsCard() {
		err = ed.DeleteCard(ctx, d.ColumnID, d.CardID)
	} else {
		err = ed.DeleteColumn(ctx, d.ColumnID)
	}
	d.Cancel()
	return err
}
