package markov

import (
	"errors"
	"reflect"
	"testing"
)

func TestGenerateSentenceScripted(t *testing.T) {
	m := newTestModel(t, 1)
	mustTrain(t, m, words("a b a b c ."))

	// Draws: start (only "a"), a -> b (only choice), b -> {a, c} picks
	// "c", c -> "." (only choice). The terminal period stops the walk.
	rng := &stubRand{seq: []float64{0, 0, 0.9, 0}}
	g := NewGenerator(m, NewWordTokenizer(), WithRand(rng))

	sent, err := g.GenerateSentence()
	if err != nil {
		t.Fatalf("GenerateSentence() error = %v", err)
	}
	if want := (Sentence{"a", "b", "c", "."}); !reflect.DeepEqual(sent, want) {
		t.Errorf("GenerateSentence() = %v, want %v", sent, want)
	}
	if got, want := g.RenderSentence(sent), "A b c."; got != want {
		t.Errorf("RenderSentence() = %q, want %q", got, want)
	}
}

func TestGenerateSentenceDeadEnd(t *testing.T) {
	m := newTestModel(t, 1)
	mustTrain(t, m, words("ab cd"))

	g := NewGenerator(m, NewWordTokenizer(), WithRand(&stubRand{}))
	sent, err := g.GenerateSentence()
	if err != nil {
		t.Fatalf("GenerateSentence() error = %v", err)
	}
	// "cd" was only ever final, so the sentence ends without punctuation.
	if want := (Sentence{"ab", "cd"}); !reflect.DeepEqual(sent, want) {
		t.Errorf("GenerateSentence() = %v, want %v", sent, want)
	}
}

func TestGenerateSentenceEmptyModel(t *testing.T) {
	g := NewGenerator(newTestModel(t, 1), NewWordTokenizer())
	if _, err := g.GenerateSentence(); !errors.Is(err, ErrEmptyModel) {
		t.Errorf("GenerateSentence() error = %v, want ErrEmptyModel", err)
	}
}

func TestGenerateSeededDeterminism(t *testing.T) {
	corpus := NewWordTokenizer().Tokenize(
		"the quick brown fox jumps over the lazy dog. the slow brown cat sleeps. a quick red fox runs over the hill.")

	build := func() *Generator {
		m := newTestModel(t, 1)
		mustTrain(t, m, corpus)
		return NewGenerator(m, NewWordTokenizer(), WithSeed(42), WithMaxTokens(50))
	}

	g1, g2 := build(), build()
	for i := 0; i < 10; i++ {
		s1, err1 := g1.GenerateSentence()
		s2, err2 := g2.GenerateSentence()
		if err1 != nil || err2 != nil {
			t.Fatalf("GenerateSentence() errors = %v, %v", err1, err2)
		}
		if !reflect.DeepEqual(s1, s2) {
			t.Fatalf("same seed diverged at sentence %d:\n%v\n%v", i, s1, s2)
		}
	}
}

func TestGenerateMaxTokens(t *testing.T) {
	m := newTestModel(t, 1)
	// A cycle with no terminal punctuation anywhere; only the cap can
	// stop this walk.
	mustTrain(t, m, words("round and round and round"))

	g := NewGenerator(m, NewWordTokenizer(), WithRand(&stubRand{}), WithMaxTokens(7))
	sent, err := g.GenerateSentence()
	if err != nil {
		t.Fatalf("GenerateSentence() error = %v", err)
	}
	if len(sent) != 7 {
		t.Errorf("expected the cap to stop the walk at 7 tokens, got %d: %v", len(sent), sent)
	}
}

func TestSingleCharSentences(t *testing.T) {
	m := newTestModel(t, 1)
	mustTrain(t, m, words("a"))
	mustTrain(t, m, words("word matters ."))

	// Start weights: "a" = 1, "word" = 1. The first walk lands on "a",
	// dead-ends immediately, and is rejected; the retry lands on "word".
	rng := &stubRand{seq: []float64{0, 0.9, 0, 0}}
	g := NewGenerator(m, NewWordTokenizer(), WithRand(rng))

	sent, err := g.GenerateSentence()
	if err != nil {
		t.Fatalf("GenerateSentence() error = %v", err)
	}
	if want := (Sentence{"word", "matters", "."}); !reflect.DeepEqual(sent, want) {
		t.Errorf("GenerateSentence() = %v, want %v", sent, want)
	}

	// Allowing single-character sentences accepts the first walk as is.
	g = NewGenerator(m, NewWordTokenizer(), WithRand(&stubRand{}), WithSingleCharSentences(true))
	sent, err = g.GenerateSentence()
	if err != nil {
		t.Fatalf("GenerateSentence() error = %v", err)
	}
	if want := (Sentence{"a"}); !reflect.DeepEqual(sent, want) {
		t.Errorf("GenerateSentence() = %v, want %v", sent, want)
	}
}

func TestSingleCharSentenceI(t *testing.T) {
	m := newTestModel(t, 1)
	mustTrain(t, m, words("I"))

	// "I" is the one single-character sentence that passes the default
	// check.
	g := NewGenerator(m, NewWordTokenizer(), WithRand(&stubRand{}))
	sent, err := g.GenerateSentence()
	if err != nil {
		t.Fatalf("GenerateSentence() error = %v", err)
	}
	if want := (Sentence{"I"}); !reflect.DeepEqual(sent, want) {
		t.Errorf("GenerateSentence() = %v, want %v", sent, want)
	}
}

func TestGenerateParagraphs(t *testing.T) {
	m := newTestModel(t, 1)
	mustTrain(t, m, words("it rained today ."))
	g := NewGenerator(m, NewWordTokenizer(), WithRand(&stubRand{}))

	// Probability 1 puts every sentence in a paragraph of its own.
	paragraphs, err := g.GenerateParagraphs(3, 1.0)
	if err != nil {
		t.Fatalf("GenerateParagraphs(3, 1.0) error = %v", err)
	}
	if len(paragraphs) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d", len(paragraphs))
	}
	for i, p := range paragraphs {
		if len(p) != 1 {
			t.Errorf("paragraph %d has %d sentences, want 1", i, len(p))
		}
	}

	// Probability 0 yields a single paragraph holding everything.
	paragraphs, err = g.GenerateParagraphs(3, 0)
	if err != nil {
		t.Fatalf("GenerateParagraphs(3, 0) error = %v", err)
	}
	if len(paragraphs) != 1 || len(paragraphs[0]) != 3 {
		t.Errorf("expected 1 paragraph of 3 sentences, got %+v", paragraphs)
	}
}

func TestGenerateParagraphsInvalid(t *testing.T) {
	m := newTestModel(t, 1)
	mustTrain(t, m, words("it rained today ."))
	g := NewGenerator(m, NewWordTokenizer(), WithRand(&stubRand{}))

	if _, err := g.GenerateParagraphs(0, 0.5); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("GenerateParagraphs(0, 0.5) error = %v, want ErrInvalidConfig", err)
	}
	for _, p := range []float64{-0.1, 1.1} {
		if _, err := g.GenerateParagraphs(1, p); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("GenerateParagraphs(1, %v) error = %v, want ErrInvalidConfig", p, err)
		}
	}
}

func TestWithSentenceEnders(t *testing.T) {
	m := newTestModel(t, 1)
	mustTrain(t, m, []string{"verse", "\n", "chorus", "\n", "refrain"})

	// Newline is the terminal token here instead of punctuation.
	g := NewGenerator(m, NewWordTokenizer(), WithRand(&stubRand{}), WithSentenceEnders("\n"))
	sent, err := g.GenerateSentence()
	if err != nil {
		t.Fatalf("GenerateSentence() error = %v", err)
	}
	if want := (Sentence{"verse", "\n"}); !reflect.DeepEqual(sent, want) {
		t.Errorf("GenerateSentence() = %v, want %v", sent, want)
	}
}

func TestRenderParagraph(t *testing.T) {
	g := NewGenerator(newTestModel(t, 1), NewWordTokenizer())
	p := Paragraph{
		{"it", "rained", "."},
		{"then", "sun", "!"},
	}
	if got, want := g.RenderParagraph(p), "It rained. Then sun!"; got != want {
		t.Errorf("RenderParagraph() = %q, want %q", got, want)
	}
}

func BenchmarkGenerateSentence(b *testing.B) {
	corpus := createBenchmarkCorpus()

	m, err := New(2)
	if err != nil {
		b.Fatal(err)
	}
	if err := m.Train(corpus); err != nil {
		b.Fatalf("Train() setup for benchmark failed: %v", err)
	}
	g := NewGenerator(m, NewWordTokenizer(), WithSeed(1), WithMaxTokens(50))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sent, err := g.GenerateSentence()
		if err != nil {
			b.Fatalf("GenerateSentence() failed: %v", err)
		}
		b.SetBytes(int64(len(g.RenderSentence(sent))))
	}
}
