package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/quillfox/confab/pkg/markov"
)

// source is one training text: a path plus the weight its observations
// carry in the model. Auxiliary sources contribute transitions but no
// sentence starts.
type source struct {
	path   string
	weight float64
	aux    bool
}

// parseSource splits a path[:weight] argument. The weight is whatever
// follows the last colon, so paths that themselves contain colons still
// parse; a suffix that is not a number is treated as part of the path.
func parseSource(arg string, aux bool) (source, error) {
	src := source{path: arg, weight: 1, aux: aux}

	idx := strings.LastIndex(arg, ":")
	if idx < 0 {
		return src, nil
	}

	w, err := strconv.ParseFloat(arg[idx+1:], 64)
	if err != nil {
		return src, nil
	}
	if !(w > 0) {
		return source{}, fmt.Errorf("weight in %q must be positive", arg)
	}

	src.path = arg[:idx]
	src.weight = w
	return src, nil
}

// parseSources parses the regular inputs followed by the auxiliary ones.
func parseSources(inputs, aux []string) ([]source, error) {
	srcs := make([]source, 0, len(inputs)+len(aux))
	for _, arg := range inputs {
		src, err := parseSource(arg, false)
		if err != nil {
			return nil, err
		}
		srcs = append(srcs, src)
	}
	for _, arg := range aux {
		src, err := parseSource(arg, true)
		if err != nil {
			return nil, err
		}
		srcs = append(srcs, src)
	}
	return srcs, nil
}

// trainFromSources reads each source file, tokenizes it and folds it into
// the model.
func trainFromSources(m *markov.Model, tk markov.Tokenizer, srcs []source, maskAcronyms bool) error {
	for _, src := range srcs {
		data, err := os.ReadFile(src.path)
		if err != nil {
			return fmt.Errorf("could not read training text: %w", err)
		}

		text := string(data)
		if maskAcronyms {
			text = markov.MaskAcronyms(text)
		}

		tokens := tk.Tokenize(text)

		opts := []markov.TrainOption{markov.WithWeight(src.weight)}
		if src.aux {
			opts = append(opts, markov.WithoutStarts())
		}
		if err := m.Train(tokens, opts...); err != nil {
			return fmt.Errorf("could not train on %q: %w", src.path, err)
		}

		logger.Debug("trained on text",
			slog.String("path", src.path),
			slog.Int("tokens", len(tokens)),
			slog.Float64("weight", src.weight),
			slog.Bool("aux", src.aux),
		)
	}
	return nil
}
