package domain

import "slices"

// Position addresses one slot in a column's card list.
type Position struct {
	ColumnID string `json:"column_id"`
	Index    int    `json:"index"`
}

// Move describes a drop of the card at Source onto Destination.
// A nil Destination is a cancelled drop. CardID is optional; when set it must
// match the card found at Source.
type Move struct {
	CardID      string    `json:"card_id,omitempty"`
	Source      Position  `json:"source"`
	Destination *Position `json:"destination"`
}

// Reorder applies a move and returns the resulting board. The input board is not
// modified and the set of cards is preserved. Cancelled drops, unknown columns,
// out-of-range source indexes and card id mismatches return b unchanged.
// Destination indexes are clamped to the target list.
func Reorder(b Board, mv Move) Board {
	if mv.Destination == nil {
		return b
	}
	src, ok := b.Cards[mv.Source.ColumnID]
	if !ok || mv.Source.Index < 0 || mv.Source.Index >= len(src) {
		return b
	}
	moved := src[mv.Source.Index]
	if mv.CardID != "" && moved.ID != mv.CardID {
		return b
	}
	dst := *mv.Destination
	if _, ok := b.Cards[dst.ColumnID]; !ok {
		return b
	}

	out := b.shallow()
	remaining := slices.Delete(slices.Clone(src), mv.Source.Index, mv.Source.Index+1)
	if dst.ColumnID == mv.Source.ColumnID {
		out.Cards[dst.ColumnID] = slices.Insert(remaining, clampIndex(dst.Index, len(remaining)), moved)
		return out
	}
	out.Cards[mv.Source.ColumnID] = remaining
	target := slices.Clone(b.Cards[dst.ColumnID])
	out.Cards[dst.ColumnID] = slices.Insert(target, clampIndex(dst.Index, len(target)), moved)
	return out
}

func clampIndex(idx, n int) int {
	if idx < 0 {
		return 0
	}
	if idx > n {
		return n
	}
	return idx
}
