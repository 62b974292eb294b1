package markov

import "errors"

// Sentinel errors for model construction, training, generation, and the
// model codec. Most are returned wrapped with extra context, so callers
// should match them with errors.Is.
var (
	// ErrInvalidConfig indicates a bad construction or call parameter, such
	// as a chain order below 1 or a non-positive training weight. The
	// offending operation is rejected outright; it is never partially
	// applied or patched up with a default.
	ErrInvalidConfig = errors.New("markov: invalid configuration")

	// ErrEmptyModel indicates that generation was attempted against a model
	// with no start states: either it was never trained, or every training
	// sequence was shorter than the chain order.
	ErrEmptyModel = errors.New("markov: model has no start states")

	// ErrDeadEnd indicates that a window has no recorded successors. During
	// generation this is a normal, recoverable signal that ends the current
	// sentence; only direct callers of RandomSuccessor ever see it.
	ErrDeadEnd = errors.New("markov: no successors for state")

	// ErrIncompatibleFormat indicates that persisted model data does not
	// match the expected schema version or is internally inconsistent.
	ErrIncompatibleFormat = errors.New("markov: incompatible model format")
)
