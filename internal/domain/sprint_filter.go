package domain

import "strings"

// SprintSelector chooses which cards a board view shows.
type SprintSelector string

const (
	SprintAll        SprintSelector = "all"
	SprintUnassigned SprintSelector = "unassigned"
)

// ParseSprintSelector normalizes raw selector input. Blank input means SprintAll.
func ParseSprintSelector(raw string) SprintSelector {
	raw = strings.TrimSpace(raw)
	switch strings.ToLower(raw) {
	case "", string(SprintAll):
		return SprintAll
	case string(SprintUnassigned):
		return SprintUnassigned
	default:
		return SprintSelector(raw)
	}
}

// FilterBySprint narrows every column's cards to the selected sprint.
// SprintAll returns cards as is; every input key is present in the result.
func FilterBySprint(cards map[string][]Card, sel SprintSelector) map[string][]Card {
	if sel == SprintAll {
		return cards
	}
	out := make(map[string][]Card, len(cards))
	for columnID, list := range cards {
		kept := make([]Card, 0, len(list))
		for _, card := range list {
			if matchesSprint(card, sel) {
				kept = append(kept, card)
			}
		}
		out[columnID] = kept
	}
	return out
}

func matchesSprint(card Card, sel SprintSelector) bool {
	if sel == SprintUnassigned {
		return card.Sprint == nil
	}
	return card.InSprint(string(sel))
}
