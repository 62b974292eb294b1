package markov

import (
	"io"
	"log/slog"
	"math/rand/v2"
)

// globalRand adapts the package-level math/rand/v2 source, which is
// randomly seeded, to the Rand interface.
type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// Generator performs weighted random walks over a Model to produce
// sentences and paragraphs. It holds the tokenizer whose separator rules
// turn generated tokens back into text, the randomness source, and the
// stop condition; all of them are swappable, so variants like poem
// generation are configured rather than subclassed.
type Generator struct {
	model      *Model
	tokenizer  Tokenizer
	rng        Rand
	stop       StopFunc
	maxTokens  int
	singleChar bool
	logger     *slog.Logger
}

// GeneratorOption is a function that configures a Generator.
type GeneratorOption func(*Generator)

// WithRand sets the randomness source. For a fixed source and fixed
// training data, generation is byte-for-byte reproducible.
func WithRand(rng Rand) GeneratorOption {
	return func(g *Generator) { g.rng = rng }
}

// WithSeed Is a convenience for WithRand with a seeded PCG source.
func WithSeed(seed uint64) GeneratorOption {
	return func(g *Generator) { g.rng = rand.New(rand.NewPCG(seed, seed)) }
}

// WithStopCondition replaces the sentence-ending test. The default stops on
// the SentenceEnders punctuation set.
func WithStopCondition(stop StopFunc) GeneratorOption {
	return func(g *Generator) { g.stop = stop }
}

// WithSentenceEnders builds a stop condition from an explicit set of
// terminal tokens, replacing the default punctuation set.
func WithSentenceEnders(enders ...string) GeneratorOption {
	set := make(map[string]struct{}, len(enders))
	for _, e := range enders {
		set[e] = struct{}{}
	}
	return func(g *Generator) {
		g.stop = func(token string) bool {
			_, ok := set[token]
			return ok
		}
	}
}

// WithMaxTokens bounds the token count of a single sentence. The walk
// itself has no bound, and a training cycle with no reachable terminal
// punctuation will never stop on its own; the cap trades that fidelity for
// a guaranteed return. 0, the default, means no cap.
func WithMaxTokens(n int) GeneratorOption {
	return func(g *Generator) { g.maxTokens = n }
}

// WithSingleCharSentences allows sentences whose entire content is a single
// character. By default such sentences are rejected and regenerated, since
// they are nearly always stray punctuation artifacts; "I" passes either
// way.
func WithSingleCharSentences(allow bool) GeneratorOption {
	return func(g *Generator) { g.singleChar = allow }
}

// NewGenerator creates a Generator for the given model and tokenizer. The
// tokenizer should be the one the training tokens came from, since its
// separator rules drive detokenization. Without WithRand or WithSeed the
// generator draws from the process-wide random source.
func NewGenerator(model *Model, tokenizer Tokenizer, opts ...GeneratorOption) *Generator {
	g := &Generator{
		model:     model,
		tokenizer: tokenizer,
		rng:       globalRand{},
		stop:      defaultStop,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// SetLogger sets the logger for the Generator. By default, all logs are
// discarded.
func (g *Generator) SetLogger(logger *slog.Logger) {
	if logger != nil {
		g.logger = logger
	}
}
