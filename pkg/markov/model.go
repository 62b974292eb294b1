package markov

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// keySep joins the tokens of an n-gram key into a single map key. The ASCII
// unit separator does not occur in natural text, even in character mode.
const keySep = "\x1f"

// Normalizer maps a token to the form used for prefix-key comparison, for
// example strings.ToLower for case-insensitive chains. Normalization applies
// only to lookups: the tokens stored in the start set and emitted as
// successors keep their original form. A nil Normalizer means identity.
type Normalizer func(token string) string

// Rand is the source of randomness for start and successor selection.
// *math/rand/v2.Rand satisfies it, and tests can supply scripted values to
// make every draw predictable.
type Rand interface {
	Float64() float64
}

// WeightedToken is a candidate successor token with its accumulated weight.
type WeightedToken struct {
	Token  string
	Weight float64
}

// WeightedStart is a sentence-start key with its accumulated weight.
type WeightedStart struct {
	Key    []string
	Weight float64
}

// prefixEntry holds the successor multiset for one n-gram key. Successors
// keep their insertion order so that weighted selection against a fixed
// Rand is reproducible; ranging over a map here would not be.
type prefixEntry struct {
	tokens  []string // the normalized tokens forming the key
	succs   []WeightedToken
	succIdx map[string]int
	total   float64
}

// add records one observed successor, merging weight into an existing entry
// if the token was already seen after this key.
func (e *prefixEntry) add(token string, weight float64) {
	if i, ok := e.succIdx[token]; ok {
		e.succs[i].Weight += weight
	} else {
		e.succIdx[token] = len(e.succs)
		e.succs = append(e.succs, WeightedToken{Token: token, Weight: weight})
	}
	e.total += weight
}

// startEntry holds one sentence-start key in original (unnormalized) form.
type startEntry struct {
	tokens []string
	weight float64
}

// Model is a Markov chain over tokens: a mapping from fixed-length n-gram
// keys to weighted successor multisets, plus a weighted set of keys that
// may begin a sentence. It is built incrementally by Train, possibly across
// many corpora, and consumed by a Generator.
//
// A Model is not safe for concurrent use. Training mutates the mapping and
// start set without synchronization, so callers that share a model across
// goroutines must serialize access themselves: finish training before
// generating, or guard both with a lock.
type Model struct {
	order     int
	normalize Normalizer

	prefixes []*prefixEntry
	index    map[string]*prefixEntry

	starts     []*startEntry
	startIdx   map[string]*startEntry
	startTotal float64

	logger *slog.Logger
}

// ModelOption is a function that configures a Model at construction time.
type ModelOption func(*Model)

// WithNormalizer sets the comparison strategy for prefix-key lookups.
// The default is identity. A persisted model must be reloaded with the same
// normalizer it was trained with, since stored keys are already normalized.
func WithNormalizer(n Normalizer) ModelOption {
	return func(m *Model) { m.normalize = n }
}

// New creates an empty model of the given chain order. The order is the
// number of preceding tokens used to predict the next one and is fixed for
// the life of the model; New returns ErrInvalidConfig if it is below 1.
func New(order int, opts ...ModelOption) (*Model, error) {
	if order < 1 {
		return nil, fmt.Errorf("%w: chain order must be at least 1, got %d", ErrInvalidConfig, order)
	}

	m := &Model{
		order:    order,
		index:    make(map[string]*prefixEntry),
		startIdx: make(map[string]*startEntry),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// SetLogger sets the logger for the model. By default, all logs are
// discarded. Providing a `log/slog.Logger` will enable logging for
// training, codec, and maintenance operations.
func (m *Model) SetLogger(logger *slog.Logger) {
	if logger != nil {
		m.logger = logger
	}
}

// Order returns the chain order the model was created with.
func (m *Model) Order() int {
	return m.order
}

// normToken applies the configured normalizer to a single token.
func (m *Model) normToken(tok string) string {
	if m.normalize == nil {
		return tok
	}
	return m.normalize(tok)
}

// normKey builds the lookup key for a window of (original-form) tokens.
func (m *Model) normKey(window []string) string {
	if m.normalize == nil {
		return strings.Join(window, keySep)
	}
	parts := make([]string, len(window))
	for i, tok := range window {
		parts[i] = m.normalize(tok)
	}
	return strings.Join(parts, keySep)
}

// ensurePrefix returns the entry for the given already-normalized key
// tokens, creating an empty one if the key is new. The token slice is
// copied; callers may reuse it.
func (m *Model) ensurePrefix(normTokens []string) *prefixEntry {
	key := strings.Join(normTokens, keySep)
	if entry, ok := m.index[key]; ok {
		return entry
	}
	entry := &prefixEntry{
		tokens:  append([]string(nil), normTokens...),
		succIdx: make(map[string]int),
	}
	m.prefixes = append(m.prefixes, entry)
	m.index[key] = entry
	return entry
}

// addStart records one sentence-start observation in original form.
func (m *Model) addStart(tokens []string, weight float64) {
	key := strings.Join(tokens, keySep)
	if s, ok := m.startIdx[key]; ok {
		s.weight += weight
	} else {
		s = &startEntry{
			tokens: append([]string(nil), tokens...),
			weight: weight,
		}
		m.starts = append(m.starts, s)
		m.startIdx[key] = s
	}
	m.startTotal += weight
}

// Contains reports whether the key was observed as a window during
// training, regardless of whether any successor was recorded for it. Keys
// of the wrong length are never contained.
func (m *Model) Contains(key []string) bool {
	if len(key) != m.order {
		return false
	}
	_, ok := m.index[m.normKey(key)]
	return ok
}

// Successors returns the weighted successor multiset for the given key. An
// unseen key is not an error: it returns an empty result, which the
// Generator interprets as a dead end. The returned slice is a copy.
func (m *Model) Successors(key []string) []WeightedToken {
	if len(key) != m.order {
		return nil
	}
	entry, ok := m.index[m.normKey(key)]
	if !ok || len(entry.succs) == 0 {
		return nil
	}
	out := make([]WeightedToken, len(entry.succs))
	copy(out, entry.succs)
	return out
}

// Starts returns a copy of the weighted start set in insertion order.
func (m *Model) Starts() []WeightedStart {
	out := make([]WeightedStart, len(m.starts))
	for i, s := range m.starts {
		out[i] = WeightedStart{
			Key:    append([]string(nil), s.tokens...),
			Weight: s.weight,
		}
	}
	return out
}

// RandomStart draws a sentence-start key with probability proportional to
// accumulated weight. It returns ErrEmptyModel if no training call has
// contributed to the start set.
func (m *Model) RandomStart(rng Rand) ([]string, error) {
	if len(m.starts) == 0 {
		return nil, ErrEmptyModel
	}

	r := rng.Float64() * m.startTotal
	for _, s := range m.starts {
		r -= s.weight
		if r < 0 {
			return append([]string(nil), s.tokens...), nil
		}
	}
	// Float rounding can leave r non-negative after the last entry.
	last := m.starts[len(m.starts)-1]
	return append([]string(nil), last.tokens...), nil
}

// RandomSuccessor draws the next token for the given key with probability
// proportional to accumulated weight, so a token observed three times as
// often is three times as likely. It returns ErrDeadEnd if the key has no
// recorded successors; the Generator treats that as the end of the current
// sentence, not as a failure.
func (m *Model) RandomSuccessor(key []string, rng Rand) (string, error) {
	if len(key) != m.order {
		return "", fmt.Errorf("%w: key length %d does not match chain order %d", ErrInvalidConfig, len(key), m.order)
	}

	entry, ok := m.index[m.normKey(key)]
	if !ok || len(entry.succs) == 0 {
		return "", ErrDeadEnd
	}

	r := rng.Float64() * entry.total
	for _, wt := range entry.succs {
		r -= wt.Weight
		if r < 0 {
			return wt.Token, nil
		}
	}
	// Float rounding can leave r non-negative after the last entry.
	return entry.succs[len(entry.succs)-1].Token, nil
}

// Merge folds every observation from other into m: weights for shared
// (key, successor) pairs are summed, and keys, successors, and starts that
// m has not seen are appended in other's order. The other model is left
// unmodified. Models of different order cannot be merged; that returns
// ErrInvalidConfig.
//
// Merge assumes both models were built with the same normalizer, since
// stored keys are compared in their already-normalized form.
func (m *Model) Merge(other *Model) error {
	if other.order != m.order {
		return fmt.Errorf("%w: cannot merge a model of order %d into one of order %d", ErrInvalidConfig, other.order, m.order)
	}

	for _, p := range other.prefixes {
		entry := m.ensurePrefix(p.tokens)
		for _, wt := range p.succs {
			entry.add(wt.Token, wt.Weight)
		}
	}
	for _, s := range other.starts {
		m.addStart(s.tokens, s.weight)
	}

	m.logger.Info("models merged",
		slog.Int("prefixes_merged", len(other.prefixes)),
		slog.Int("starts_merged", len(other.starts)),
	)
	return nil
}
