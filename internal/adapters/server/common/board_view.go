package common

import (
	"slices"

	"github.com/hylla/taskcollab/internal/app"
	"github.com/hylla/taskcollab/internal/domain"
)

// ColumnView is one column with its visible cards.
type ColumnView struct {
	domain.Column
	Cards []domain.Card `json:"cards"`
}

// BoardView is the transport shape of a board narrowed by a sprint selector.
type BoardView struct {
	ProjectID string       `json:"project_id"`
	Sprint    string       `json:"sprint"`
	Columns   []ColumnView `json:"columns"`
	CardCount int          `json:"card_count"`
	Notices   []app.Notice `json:"notices,omitempty"`
}

// NewBoardView filters b by sel and flattens it into column order.
func NewBoardView(projectID string, b domain.Board, sel domain.SprintSelector, notices []app.Notice) BoardView {
	cards := domain.FilterBySprint(b.Cards, sel)
	view := BoardView{
		ProjectID: projectID,
		Sprint:    string(sel),
		Columns:   make([]ColumnView, 0, len(b.Columns)),
		Notices:   slices.Clone(notices),
	}
	for _, col := range b.Columns {
		list := cards[col.ID]
		if list == nil {
			list = []domain.Card{}
		}
		view.Columns = append(view.Columns, ColumnView{Column: col, Cards: list})
		view.CardCount += len(list)
	}
	return view
}
