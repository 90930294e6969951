package domain

import "strings"

// DefaultTitle is used for columns and cards saved without a title.
const DefaultTitle = "Untitled"

// Column is one ordered lane of the board.
type Column struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ColumnPatch carries a partial column update. Nil fields are left unchanged.
type ColumnPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// NewColumn constructs a column, falling back to DefaultTitle for blank titles.
func NewColumn(id, title, description string) (Column, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Column{}, ErrInvalidID
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}
	return Column{
		ID:          id,
		Title:       title,
		Description: description,
	}, nil
}

// Apply returns a copy of c with the patch merged in.
func (c Column) Apply(patch ColumnPatch) Column {
	if patch.Title != nil {
		c.Title = *patch.Title
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	return c
}

// IsEmpty reports whether the patch changes nothing.
func (p ColumnPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil
}
