package markov

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
)

// FormatVersion is the schema version written by Export. Import rejects any
// other version with ErrIncompatibleFormat rather than guessing at a
// migration.
const FormatVersion = 1

// exportedModel is the serialized representation of a Model. Tokens are
// interned into a vocabulary and referenced by index. Prefix, successor,
// and start records keep their in-memory order, so a reloaded model
// generates byte-identical output against the same random source.
type exportedModel struct {
	Version    int              `json:"version"`
	Order      int              `json:"order"`
	Vocabulary []string         `json:"vocabulary"`
	Prefixes   []exportedPrefix `json:"prefixes"`
	Starts     []exportedStart  `json:"starts"`
}

// exportedPrefix is one n-gram key, in normalized form, with its successor
// links. A key observed only at the end of a sequence has no chains.
type exportedPrefix struct {
	Key    []int           `json:"key"`
	Chains []exportedChain `json:"chains,omitempty"`
}

// exportedChain is a single weighted successor link.
type exportedChain struct {
	Token  int     `json:"token"`
	Weight float64 `json:"weight"`
}

// exportedStart is one sentence-start key, in original form, with its
// accumulated weight.
type exportedStart struct {
	Key    []int   `json:"key"`
	Weight float64 `json:"weight"`
}

// Export serializes the model as indented JSON. The format losslessly
// captures the chain order, the full weighted mapping, and the full
// weighted start set; Import reproduces all three exactly.
func (m *Model) Export(w io.Writer) error {
	vocab := make([]string, 0)
	vocabIdx := make(map[string]int)
	intern := func(tok string) int {
		if id, ok := vocabIdx[tok]; ok {
			return id
		}
		id := len(vocab)
		vocab = append(vocab, tok)
		vocabIdx[tok] = id
		return id
	}

	exported := exportedModel{
		Version:  FormatVersion,
		Order:    m.order,
		Prefixes: make([]exportedPrefix, 0, len(m.prefixes)),
		Starts:   make([]exportedStart, 0, len(m.starts)),
	}

	for _, p := range m.prefixes {
		ep := exportedPrefix{Key: make([]int, len(p.tokens))}
		for i, tok := range p.tokens {
			ep.Key[i] = intern(tok)
		}
		for _, wt := range p.succs {
			ep.Chains = append(ep.Chains, exportedChain{Token: intern(wt.Token), Weight: wt.Weight})
		}
		exported.Prefixes = append(exported.Prefixes, ep)
	}

	for _, s := range m.starts {
		es := exportedStart{Key: make([]int, len(s.tokens)), Weight: s.weight}
		for i, tok := range s.tokens {
			es.Key[i] = intern(tok)
		}
		exported.Starts = append(exported.Starts, es)
	}

	exported.Vocabulary = vocab

	m.logger.Info("model exported",
		slog.Int("vocabulary", len(vocab)),
		slog.Int("prefixes", len(exported.Prefixes)),
		slog.Int("starts", len(exported.Starts)),
	)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exported)
}

// Import reads a model previously written by Export. Undecodable data, a
// wrong version, an invalid order, token references outside the vocabulary,
// and non-positive weights all fail with ErrIncompatibleFormat; nothing is
// silently coerced. Options apply to the new model, and a model trained with
// a normalizer must be imported with the same one, since stored prefix keys
// are already normalized.
func Import(r io.Reader, opts ...ModelOption) (*Model, error) {
	var imported exportedModel
	if err := json.NewDecoder(r).Decode(&imported); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompatibleFormat, err)
	}

	if imported.Version != FormatVersion {
		return nil, fmt.Errorf("%w: version %d, expected %d", ErrIncompatibleFormat, imported.Version, FormatVersion)
	}
	if imported.Order < 1 {
		return nil, fmt.Errorf("%w: chain order %d", ErrIncompatibleFormat, imported.Order)
	}

	m, err := New(imported.Order, opts...)
	if err != nil {
		return nil, err
	}

	lookup := func(id int) (string, error) {
		if id < 0 || id >= len(imported.Vocabulary) {
			return "", fmt.Errorf("%w: token id %d outside vocabulary of %d", ErrIncompatibleFormat, id, len(imported.Vocabulary))
		}
		return imported.Vocabulary[id], nil
	}

	resolveKey := func(ids []int) ([]string, error) {
		if len(ids) != imported.Order {
			return nil, fmt.Errorf("%w: key length %d, expected %d", ErrIncompatibleFormat, len(ids), imported.Order)
		}
		tokens := make([]string, len(ids))
		for i, id := range ids {
			tok, err := lookup(id)
			if err != nil {
				return nil, err
			}
			tokens[i] = tok
		}
		return tokens, nil
	}

	for _, ep := range imported.Prefixes {
		keyTokens, err := resolveKey(ep.Key)
		if err != nil {
			return nil, err
		}
		// Stored keys are already normalized, so they bypass normKey.
		entry := m.ensurePrefix(keyTokens)
		for _, ch := range ep.Chains {
			tok, err := lookup(ch.Token)
			if err != nil {
				return nil, err
			}
			if !(ch.Weight > 0) {
				return nil, fmt.Errorf("%w: non-positive chain weight %v", ErrIncompatibleFormat, ch.Weight)
			}
			entry.add(tok, ch.Weight)
		}
	}

	for _, es := range imported.Starts {
		keyTokens, err := resolveKey(es.Key)
		if err != nil {
			return nil, err
		}
		if !(es.Weight > 0) {
			return nil, fmt.Errorf("%w: non-positive start weight %v", ErrIncompatibleFormat, es.Weight)
		}
		m.addStart(keyTokens, es.Weight)
	}

	m.logger.Info("model imported",
		slog.Int("order", m.order),
		slog.Int("prefixes", len(m.prefixes)),
		slog.Int("starts", len(m.starts)),
	)
	return m, nil
}
