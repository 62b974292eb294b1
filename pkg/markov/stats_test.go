package markov

import "testing"

func TestStats(t *testing.T) {
	m := newTestModel(t, 1)
	mustTrain(t, m, words("a b a b c ."))

	got := m.Stats()
	want := ModelStats{
		Order:       1,
		Prefixes:    4, // a, b, c, .
		Transitions: 4, // a->b, b->a, b->c, c->.
		TotalWeight: 5, // a->b was seen twice
		Starts:      1,
		StartWeight: 1,
		Vocabulary:  4,
	}
	if got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}

func TestStatsEmptyModel(t *testing.T) {
	m := newTestModel(t, 2)
	if got, want := m.Stats(), (ModelStats{Order: 2}); got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}
