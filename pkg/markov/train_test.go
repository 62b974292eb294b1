package markov

import (
	"errors"
	"fmt"
	"math"
	"testing"
)

func TestTrainAdditive(t *testing.T) {
	m := newTestModel(t, 1)
	corpus := words("a b a b c .")

	mustTrain(t, m, corpus)
	first := m.Stats()
	mustTrain(t, m, corpus)
	second := m.Stats()

	// Retraining the same corpus doubles weights without inventing new
	// keys or links.
	if second.Prefixes != first.Prefixes {
		t.Errorf("prefix count changed across retraining: %d -> %d", first.Prefixes, second.Prefixes)
	}
	if second.Transitions != first.Transitions {
		t.Errorf("transition count changed across retraining: %d -> %d", first.Transitions, second.Transitions)
	}
	if second.TotalWeight != first.TotalWeight*2 {
		t.Errorf("total weight = %v, want %v", second.TotalWeight, first.TotalWeight*2)
	}
	if got := succWeights(m, "a"); got["b"] != 4 {
		t.Errorf(`weight of a -> b after two passes = %v, want 4`, got["b"])
	}
}

func TestTrainWeight(t *testing.T) {
	m := newTestModel(t, 1)
	mustTrain(t, m, words("a b"), WithWeight(2.5))

	if got := succWeights(m, "a"); got["b"] != 2.5 {
		t.Errorf("weight of a -> b = %v, want 2.5", got["b"])
	}
	if starts := m.Starts(); len(starts) != 1 || starts[0].Weight != 2.5 {
		t.Errorf("unexpected start set: %+v", starts)
	}
}

func TestTrainInvalidWeight(t *testing.T) {
	m := newTestModel(t, 1)
	for _, w := range []float64{0, -1, math.NaN()} {
		if err := m.Train(words("a b"), WithWeight(w)); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Train with weight %v error = %v, want ErrInvalidConfig", w, err)
		}
	}

	// A rejected pass must not leave partial observations behind.
	if stats := m.Stats(); stats.Prefixes != 0 || stats.Starts != 0 {
		t.Errorf("model mutated by rejected training pass: %+v", stats)
	}
}

func TestTrainWithoutStarts(t *testing.T) {
	m := newTestModel(t, 1)
	mustTrain(t, m, words("a b"), WithoutStarts())

	if starts := m.Starts(); len(starts) != 0 {
		t.Errorf("expected an empty start set, got %+v", starts)
	}
	// The transitions are still recorded.
	if got := succWeights(m, "a"); got["b"] != 1 {
		t.Errorf("weight of a -> b = %v, want 1", got["b"])
	}
}

func TestTrainShortSequence(t *testing.T) {
	m := newTestModel(t, 3)
	mustTrain(t, m, words("too short"))

	if stats := m.Stats(); stats.Prefixes != 0 || stats.Starts != 0 {
		t.Errorf("a sequence shorter than the order must record nothing, got %+v", stats)
	}
}

func TestTrainExactOrderLength(t *testing.T) {
	m := newTestModel(t, 2)
	mustTrain(t, m, words("so long"))

	// The lone window enters both the mapping and the start set, so a
	// generated sentence can consist of just that window.
	if !m.Contains([]string{"so", "long"}) {
		t.Error("the lone window should be a known key")
	}
	if starts := m.Starts(); len(starts) != 1 {
		t.Errorf("expected 1 start key, got %+v", starts)
	}
	if succs := m.Successors([]string{"so", "long"}); len(succs) != 0 {
		t.Errorf("expected no successors, got %v", succs)
	}
}

func BenchmarkTrain(b *testing.B) {
	corpus := createBenchmarkCorpus()

	for _, order := range []int{1, 2, 3, 4, 5} {
		b.Run(fmt.Sprintf("Order%d", order), func(b *testing.B) {
			m, err := New(order)
			if err != nil {
				b.Fatalf("New(%d) error = %v", order, err)
			}

			b.SetBytes(int64(len(corpus)))
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if err := m.Train(corpus); err != nil {
					b.Fatalf("Train() failed: %v", err)
				}
			}
		})
	}
}
