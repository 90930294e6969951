package domain

import (
	"slices"
	"time"
)

// Board holds the ordered columns and, per column id, the ordered cards.
// Methods never mutate the receiver; they return a new Board sharing untouched lists.
type Board struct {
	Columns []Column          `json:"columns"`
	Cards   map[string][]Card `json:"cards"`
}

// NewBoard builds a board from columns and cards, adding an empty list for every
// column that has none.
func NewBoard(columns []Column, cards map[string][]Card) Board {
	b := Board{
		Columns: slices.Clone(columns),
		Cards:   make(map[string][]Card, len(columns)),
	}
	if b.Columns == nil {
		b.Columns = []Column{}
	}
	for key, list := range cards {
		b.Cards[key] = cloneCards(list)
	}
	for _, col := range b.Columns {
		if _, ok := b.Cards[col.ID]; !ok {
			b.Cards[col.ID] = []Card{}
		}
	}
	return b
}

// Clone deep-copies the board.
func (b Board) Clone() Board {
	return NewBoard(b.Columns, b.Cards)
}

// Column returns the column with id.
func (b Board) Column(id string) (Column, bool) {
	idx := b.columnIndex(id)
	if idx < 0 {
		return Column{}, false
	}
	return b.Columns[idx], true
}

// CardsIn returns the cards of one column.
func (b Board) CardsIn(columnID string) []Card {
	return b.Cards[columnID]
}

// Card returns the card with id in the given column.
func (b Board) Card(columnID, cardID string) (Card, bool) {
	idx := cardIndex(b.Cards[columnID], cardID)
	if idx < 0 {
		return Card{}, false
	}
	return b.Cards[columnID][idx], true
}

// LocateCard finds a card anywhere on the board.
func (b Board) LocateCard(cardID string) (columnID string, index int, ok bool) {
	for _, col := range b.Columns {
		if idx := cardIndex(b.Cards[col.ID], cardID); idx >= 0 {
			return col.ID, idx, true
		}
	}
	return "", -1, false
}

// CardCount returns the number of cards across all columns.
func (b Board) CardCount() int {
	total := 0
	for _, list := range b.Cards {
		total += len(list)
	}
	return total
}

// WithColumn appends a column with an empty card list.
func (b Board) WithColumn(col Column) Board {
	out := b.shallow()
	out.Columns = append(slices.Clone(b.Columns), col)
	out.Cards[col.ID] = []Card{}
	return out
}

// WithColumnPatched merges patch into the column with id. Unknown ids leave the board unchanged.
func (b Board) WithColumnPatched(id string, patch ColumnPatch) Board {
	idx := b.columnIndex(id)
	if idx < 0 {
		return b
	}
	out := b.shallow()
	out.Columns = slices.Clone(b.Columns)
	out.Columns[idx] = out.Columns[idx].Apply(patch)
	return out
}

// WithoutColumn removes a column and its card list.
func (b Board) WithoutColumn(id string) Board {
	idx := b.columnIndex(id)
	_, hasCards := b.Cards[id]
	if idx < 0 && !hasCards {
		return b
	}
	out := b.shallow()
	if idx >= 0 {
		out.Columns = slices.Delete(slices.Clone(b.Columns), idx, idx+1)
	}
	delete(out.Cards, id)
	return out
}

// WithCard appends a card to a column, starting an empty list for a column
// id the board has no cards for.
func (b Board) WithCard(columnID string, card Card) Board {
	list := b.Cards[columnID]
	out := b.shallow()
	next := make([]Card, 0, len(list)+1)
	next = append(next, list...)
	out.Cards[columnID] = append(next, card)
	return out
}

// WithCardPatched merges patch into one card and refreshes its UpdatedAt.
func (b Board) WithCardPatched(columnID, cardID string, patch CardPatch, now time.Time) Board {
	list := b.Cards[columnID]
	idx := cardIndex(list, cardID)
	if idx < 0 {
		return b
	}
	out := b.shallow()
	next := slices.Clone(list)
	next[idx] = next[idx].Apply(patch, now)
	out.Cards[columnID] = next
	return out
}

// WithoutCard removes one card from a column.
func (b Board) WithoutCard(columnID, cardID string) Board {
	list := b.Cards[columnID]
	idx := cardIndex(list, cardID)
	if idx < 0 {
		return b
	}
	out := b.shallow()
	out.Cards[columnID] = slices.Delete(slices.Clone(list), idx, idx+1)
	return out
}

// shallow copies the column slice header and card map; lists are shared until replaced.
func (b Board) shallow() Board {
	out := Board{
		Columns: b.Columns,
		Cards:   make(map[string][]Card, len(b.Cards)+1),
	}
	for key, list := range b.Cards {
		out.Cards[key] = list
	}
	return out
}

func (b Board) columnIndex(id string) int {
	return slices.IndexFunc(b.Columns, func(c Column) bool { return c.ID == id })
}

func cardIndex(list []Card, id string) int {
	return slices.IndexFunc(list, func(c Card) bool { return c.ID == id })
}

func cloneCards(list []Card) []Card {
	if list == nil {
		return []Card{}
	}
	out := make([]Card, len(list))
	for i, c := range list {
		out[i] = c.Clone()
	}
	return out
}
