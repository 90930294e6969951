package domain

import (
	"slices"
	"strings"
	"time"
)

// Priority is the urgency level of a card.
type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

var validPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// Priorities returns the supported priorities in ascending urgency.
func Priorities() []Priority {
	return slices.Clone(validPriorities)
}

// ParsePriority resolves a priority case-insensitively. Blank input yields PriorityMedium.
func ParsePriority(raw string) (Priority, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return PriorityMedium, nil
	}
	for _, p := range validPriorities {
		if strings.EqualFold(string(p), raw) {
			return p, nil
		}
	}
	return "", ErrInvalidPriority
}

// UserRef is the assignee projection of a user.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Attachment is a file embedded in a card as a data URI.
type Attachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
	Data string `json:"base64"`
}

// SprintRef links a card to a sprint.
type SprintRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SprintChange sets or clears a card's sprint inside a CardPatch. A nil Ref clears.
type SprintChange struct {
	Ref *SprintRef
}

// Card is one unit of work on the board.
type Card struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Assignees   []UserRef    `json:"assignees"`
	Priority    Priority     `json:"priority"`
	Status      string       `json:"status"`
	Estimate    string       `json:"estimate"`
	DueDate     string       `json:"due_date"`
	Tags        []string     `json:"tags"`
	Attachments []Attachment `json:"attachments"`
	Sprint      *SprintRef   `json:"sprint"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// CardPatch carries a partial card update. Nil fields are left unchanged.
type CardPatch struct {
	Title       *string
	Description *string
	Assignees   *[]UserRef
	Priority    *Priority
	Status      *string
	Estimate    *string
	DueDate     *string
	Tags        *[]string
	Attachments *[]Attachment
	Sprint      *SprintChange
}

// NewCard builds a card from defaults with overrides applied on top.
func NewCard(id string, overrides CardPatch, now time.Time) (Card, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Card{}, ErrInvalidID
	}
	if overrides.Priority != nil && !slices.Contains(validPriorities, *overrides.Priority) {
		return Card{}, ErrInvalidPriority
	}
	ts := now.UTC()
	card := Card{
		ID:          id,
		Title:       DefaultTitle,
		Assignees:   []UserRef{},
		Priority:    PriorityMedium,
		Tags:        []string{},
		Attachments: []Attachment{},
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	card = card.merge(overrides)
	return card, nil
}

// Apply returns a copy of c with the patch merged in and UpdatedAt refreshed.
// CreatedAt is never changed and UpdatedAt never moves backwards, even when
// now is behind the stored timestamp.
func (c Card) Apply(patch CardPatch, now time.Time) Card {
	out := c.Clone().merge(patch)
	if now = now.UTC(); now.After(c.UpdatedAt) {
		out.UpdatedAt = now
	}
	return out
}

func (c Card) merge(patch CardPatch) Card {
	if patch.Title != nil {
		c.Title = *patch.Title
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	if patch.Assignees != nil {
		c.Assignees = slices.Clone(*patch.Assignees)
		if c.Assignees == nil {
			c.Assignees = []UserRef{}
		}
	}
	if patch.Priority != nil {
		c.Priority = *patch.Priority
	}
	if patch.Status != nil {
		c.Status = *patch.Status
	}
	if patch.Estimate != nil {
		c.Estimate = *patch.Estimate
	}
	if patch.DueDate != nil {
		c.DueDate = *patch.DueDate
	}
	if patch.Tags != nil {
		c.Tags = slices.Clone(*patch.Tags)
		if c.Tags == nil {
			c.Tags = []string{}
		}
	}
	if patch.Attachments != nil {
		c.Attachments = slices.Clone(*patch.Attachments)
		if c.Attachments == nil {
			c.Attachments = []Attachment{}
		}
	}
	if patch.Sprint != nil {
		if patch.Sprint.Ref == nil {
			c.Sprint = nil
		} else {
			ref := *patch.Sprint.Ref
			c.Sprint = &ref
		}
	}
	return c
}

// Clone deep-copies the card.
func (c Card) Clone() Card {
	c.Assignees = slices.Clone(c.Assignees)
	c.Tags = slices.Clone(c.Tags)
	c.Attachments = slices.Clone(c.Attachments)
	if c.Sprint != nil {
		ref := *c.Sprint
		c.Sprint = &ref
	}
	return c
}

// InSprint reports whether the card belongs to the sprint with the given id.
func (c Card) InSprint(id string) bool {
	return c.Sprint != nil && c.Sprint.ID == id
}

// AssigneeEmails returns the non-empty assignee emails in order.
func (c Card) AssigneeEmails() []string {
	out := make([]string, 0, len(c.Assignees))
	for _, a := range c.Assignees {
		if email := strings.TrimSpace(a.Email); email != "" {
			out = append(out, email)
		}
	}
	return out
}

// PatchFromCard returns a patch that sets every mutable field of c.
func PatchFromCard(c Card) CardPatch {
	c = c.Clone()
	return CardPatch{
		Title:       &c.Title,
		Description: &c.Description,
		Assignees:   &c.Assignees,
		Priority:    &c.Priority,
		Status:      &c.Status,
		Estimate:    &c.Estimate,
		DueDate:     &c.DueDate,
		Tags:        &c.Tags,
		Attachments: &c.Attachments,
		Sprint:      &SprintChange{Ref: c.Sprint},
	}
}
