package markov

import (
	"fmt"
	"log/slog"
)

// trainOptions Is used by Train to configure a single training pass.
type trainOptions struct {
	weight      float64
	learnStarts bool
}

// TrainOption is a function that configures a single Train call.
type TrainOption func(*trainOptions)

// WithWeight sets the weight added per observation in this pass. Heavier
// sources pull generation toward their phrasing; the weight must be
// positive. Default: 1.0
func WithWeight(w float64) TrainOption {
	return func(o *trainOptions) { o.weight = w }
}

// WithoutStarts excludes this pass from the start set, so an auxiliary or
// low-quality source can enrich the transition statistics without changing
// what generated sentences are allowed to open with.
func WithoutStarts() TrainOption {
	return func(o *trainOptions) { o.learnStarts = false }
}

// Train folds one token sequence into the model. Every window of order
// consecutive tokens enters the mapping, and the token following each
// window is recorded as a successor with the configured weight added to its
// accumulated total. The window at position 0 is also added to the start
// set unless WithoutStarts is given. A sequence shorter than the chain
// order contributes nothing at all.
//
// Training is strictly additive: repeated calls only ever increase
// accumulated weights and never remove or overwrite earlier observations,
// which is what lets several corpora with different weights blend into a
// single model. A non-positive weight fails with ErrInvalidConfig before
// anything is recorded.
func (m *Model) Train(tokens []string, opts ...TrainOption) error {
	options := &trainOptions{
		weight:      1.0,
		learnStarts: true,
	}
	for _, opt := range opts {
		opt(options)
	}

	// The negated comparison also rejects NaN.
	if !(options.weight > 0) {
		return fmt.Errorf("%w: training weight must be positive, got %v", ErrInvalidConfig, options.weight)
	}

	if len(tokens) < m.order {
		m.logger.Debug("sequence shorter than chain order, nothing to record",
			slog.Int("tokens", len(tokens)),
			slog.Int("order", m.order),
		)
		return nil
	}

	if options.learnStarts {
		m.addStart(tokens[:m.order], options.weight)
	}

	norm := make([]string, len(tokens))
	for i, tok := range tokens {
		norm[i] = m.normToken(tok)
	}

	// The final window has no successor but still enters the mapping, so
	// every start key resolves even for a sequence of exactly order tokens.
	for i := 0; i+m.order <= len(tokens); i++ {
		entry := m.ensurePrefix(norm[i : i+m.order])
		if next := i + m.order; next < len(tokens) {
			entry.add(tokens[next], options.weight)
		}
	}

	m.logger.Debug("training pass complete",
		slog.Int("tokens", len(tokens)),
		slog.Float64("weight", options.weight),
		slog.Bool("learn_starts", options.learnStarts),
	)
	return nil
}
