package markov

import (
	"go/build"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// newTestModel creates a model of the given order, failing the test on error.
func newTestModel(t *testing.T, order int, opts ...ModelOption) *Model {
	t.Helper()
	m, err := New(order, opts...)
	if err != nil {
		t.Fatalf("New(%d) error = %v", order, err)
	}
	return m
}

// mustTrain folds one token sequence into the model, failing the test on error.
func mustTrain(t *testing.T, m *Model, tokens []string, opts ...TrainOption) {
	t.Helper()
	if err := m.Train(tokens, opts...); err != nil {
		t.Fatalf("Train(%v) error = %v", tokens, err)
	}
}

// words splits a space-separated literal into a token slice.
func words(s string) []string {
	return strings.Fields(s)
}

// succWeights flattens Successors into a map for easy comparison.
func succWeights(m *Model, key ...string) map[string]float64 {
	out := make(map[string]float64)
	for _, wt := range m.Successors(key) {
		out[wt.Token] = wt.Weight
	}
	return out
}

// stubRand replays a fixed sequence of draws, then sticks on the last one.
// It makes every weighted selection in a test predictable. An empty
// sequence always draws 0, which selects the first candidate.
type stubRand struct {
	seq []float64
	i   int
}

func (r *stubRand) Float64() float64 {
	if len(r.seq) == 0 {
		return 0
	}
	v := r.seq[r.i]
	if r.i < len(r.seq)-1 {
		r.i++
	}
	return v
}

var (
	benchmarkCorpus []string
	corpusOnce      sync.Once
)

// createBenchmarkCorpus tokenizes Go source files into a corpus for benchmarking.
func createBenchmarkCorpus() []string {
	corpusOnce.Do(func() {
		var sb strings.Builder
		goRoot := build.Default.GOROOT
		filesToRead := []string{
			filepath.Join(goRoot, "src/net/http/server.go"),
			filepath.Join(goRoot, "src/go/parser/parser.go"),
			filepath.Join(goRoot, "src/encoding/json/encode.go"),
		}

		for _, file := range filesToRead {
			content, err := os.ReadFile(file)
			if err != nil {
				sb.Reset()
				sb.WriteString("this is a fallback corpus for benchmarking. it is not very long but will prevent a crash. ")
				break
			}
			sb.Write(content)
			sb.WriteString("\n")
		}
		benchmarkCorpus = NewWordTokenizer().Tokenize(sb.String())
	})
	return benchmarkCorpus
}
