package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFilterBySprint(t *testing.T) {
	s1 := &SprintRef{ID: "s1", Name: "Sprint 1"}
	s2 := &SprintRef{ID: "s2", Name: "Sprint 2"}
	cards := map[string][]Card{
		"A": {{ID: "c1", Sprint: s1}, {ID: "c2"}, {ID: "c3", Sprint: s2}},
		"B": {{ID: "c4", Sprint: s1}},
		"C": {},
	}

	cases := []struct {
		sel  SprintSelector
		want map[string][]string
	}{
		{sel: SprintAll, want: map[string][]string{"A": {"c1", "c2", "c3"}, "B": {"c4"}, "C": {}}},
		{sel: SprintUnassigned, want: map[string][]string{"A": {"c2"}, "B": {}, "C": {}}},
		{sel: "s1", want: map[string][]string{"A": {"c1"}, "B": {"c4"}, "C": {}}},
		{sel: "missing", want: map[string][]string{"A": {}, "B": {}, "C": {}}},
	}
	for _, tc := range cases {
		t.Run(string(tc.sel), func(t *testing.T) {
			filtered := FilterBySprint(cards, tc.sel)
			got := make(map[string][]string, len(filtered))
			for key, list := range filtered {
				got[key] = idsOf(list)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("FilterBySprint(%q) mismatch (-want +got):\n%s", tc.sel, diff)
			}
		})
	}
}

func filterFixture() map[string][]Card {
	s1 := &SprintRef{ID: "s1", Name: "Sprint 1"}
	s2 := &SprintRef{ID: "s2", Name: "Sprint 2"}
	return map[string][]Card{
		"A": {{ID: "c1", Title: "one", Tags: []string{"x"}, Sprint: s1}, {ID: "c2", Priority: PriorityHigh}, {ID: "c3", Sprint: s2}},
		"B": {{ID: "c4", Sprint: s1}},
		"C": {},
	}
}

func TestFilterBySprintAllIsIdentity(t *testing.T) {
	cards := filterFixture()
	if diff := cmp.Diff(filterFixture(), FilterBySprint(cards, SprintAll)); diff != "" {
		t.Fatalf("FilterBySprint(all) mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterBySprintIsIdempotent(t *testing.T) {
	for _, sel := range []SprintSelector{SprintAll, SprintUnassigned, "s1", "s2", "missing"} {
		once := FilterBySprint(filterFixture(), sel)
		twice := FilterBySprint(once, sel)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Fatalf("FilterBySprint(%q) not idempotent (-once +twice):\n%s", sel, diff)
		}
	}
}

func TestFilterBySprintDoesNotMutateInput(t *testing.T) {
	cards := map[string][]Card{
		"A": {{ID: "c1"}, {ID: "c2", Sprint: &SprintRef{ID: "s1"}}},
	}
	_ = FilterBySprint(cards, "s1")
	if len(cards["A"]) != 2 {
		t.Fatalf("input mutated: %#v", cards)
	}
}

func TestParseSprintSelector(t *testing.T) {
	cases := map[string]SprintSelector{
		"":           SprintAll,
		" ALL ":      SprintAll,
		"Unassigned": SprintUnassigned,
		"s-123":      "s-123",
	}
	for raw, want := range cases {
		if got := ParseSprintSelector(raw); got != want {
			t.Fatalf("ParseSprintSelector(%q) = %q, want %q", raw, got, want)
		}
	}
}
