package main

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/quillfox/confab/pkg/markov"
	"github.com/quillfox/confab/pkg/polish"
)

// generateOptions holds the flag values shared by generate and poem, which
// run the same pipeline with different defaults.
type generateOptions struct {
	inputs       []string
	aux          []string
	order        int
	count        int
	chars        bool
	columns      int
	pause        time.Duration
	html         bool
	breakProb    float64
	seed         uint64
	maxTokens    int
	singleChar   bool
	maskAcronyms bool
	loadPath     string
	outputPath   string
	modelName    string
}

func registerGenerateFlags(fs *pflag.FlagSet, opts *generateOptions, defaults generateOptions) {
	fs.StringArrayVarP(&opts.inputs, "input", "i", nil, "Training text as path[:weight] (repeatable)")
	fs.StringArrayVar(&opts.aux, "aux", nil, "Auxiliary training text as path[:weight]; adds transitions but no sentence starts (repeatable)")
	fs.IntVarP(&opts.order, "markov-length", "m", defaults.order, "Chain order: how many trailing tokens pick the next one")
	fs.IntVarP(&opts.count, "count", "c", defaults.count, "Number of sentences to generate")
	fs.BoolVarP(&opts.chars, "chars", "r", defaults.chars, "Model characters instead of words")
	fs.IntVarP(&opts.columns, "columns", "w", defaults.columns, "Wrap width: -1 terminal width, 0 no wrapping, N centered block")
	fs.DurationVarP(&opts.pause, "pause", "p", 0, "Pause between paragraphs")
	fs.BoolVar(&opts.html, "html", false, "Emit an HTML fragment with <p>-wrapped paragraphs")
	fs.Float64Var(&opts.breakProb, "break-prob", defaults.breakProb, "Probability of a paragraph break after each sentence")
	fs.Uint64Var(&opts.seed, "seed", 0, "Random seed; 0 seeds from the system")
	fs.IntVar(&opts.maxTokens, "max-tokens", 0, "Cap sentence length in tokens; 0 means no cap")
	fs.BoolVar(&opts.singleChar, "single-char-sentences", false, "Keep sentences consisting of a single character")
	fs.BoolVar(&opts.maskAcronyms, "mask-acronyms", false, "Keep dotted acronyms like U.S.A. whole during word tokenization")
	fs.StringVarP(&opts.loadPath, "load", "l", "", "Load a saved model file instead of training")
	fs.StringVarP(&opts.outputPath, "output", "o", "", "Save the trained model to this file")
	fs.StringVar(&opts.modelName, "model", "", "Load this model from the store instead of training")
}

func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate prose from training texts or a saved model",
		Long: `Generate trains a chain model on the given texts, or loads a saved one,
and prints freshly generated sentences grouped into paragraphs. With a
fixed --seed the output is reproducible.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, opts)
		},
	}
	registerGenerateFlags(cmd.Flags(), opts, generateOptions{
		order:     1,
		count:     1,
		columns:   -1,
		breakProb: 0.25,
	})
	return cmd
}

// validateGenerateFlags rejects flag combinations that contradict each
// other. The model comes either from training texts or from a saved model,
// never both, and HTML output leaves layout to the browser.
func validateGenerateFlags(cmd *cobra.Command, opts *generateOptions) error {
	hasTraining := len(opts.inputs) > 0 || len(opts.aux) > 0
	hasSaved := opts.loadPath != "" || opts.modelName != ""

	switch {
	case opts.loadPath != "" && opts.modelName != "":
		return errors.New("--load and --model both name a saved model; use one")
	case hasTraining && hasSaved:
		return errors.New("training texts cannot be combined with a saved model; use --input or --load/--model")
	case !hasTraining && !hasSaved:
		return errors.New("nothing to generate from; provide --input texts or a saved model with --load/--model")
	case len(opts.aux) > 0 && len(opts.inputs) == 0:
		return errors.New("auxiliary texts never contribute sentence starts; provide at least one --input")
	case hasSaved && cmd.Flags().Changed("markov-length"):
		return errors.New("a saved model fixes the chain order; --markov-length only applies when training")
	case opts.html && opts.pause > 0:
		return errors.New("--html output cannot be paced; drop --pause")
	case opts.html && opts.columns > 0:
		return errors.New("--html output leaves layout to the browser; drop --columns")
	}
	return nil
}

func runGenerate(cmd *cobra.Command, opts *generateOptions) error {
	if err := validateGenerateFlags(cmd, opts); err != nil {
		return err
	}

	if opts.maskAcronyms && opts.chars {
		warn(cmd, "--mask-acronyms has no effect with --chars; ignoring")
		opts.maskAcronyms = false
	}

	var tk markov.Tokenizer = markov.NewWordTokenizer()
	if opts.chars {
		tk = markov.CharTokenizer{}
	}

	m, err := obtainModel(cmd, opts, tk)
	if err != nil {
		return err
	}

	if opts.outputPath != "" {
		if err := saveModelFile(m, opts.outputPath); err != nil {
			return err
		}
		logger.Info("Model saved", slog.String("path", opts.outputPath))
	}

	genOpts := []markov.GeneratorOption{
		markov.WithMaxTokens(opts.maxTokens),
		markov.WithSingleCharSentences(opts.singleChar),
	}
	if opts.seed != 0 {
		genOpts = append(genOpts, markov.WithSeed(opts.seed))
	}
	g := markov.NewGenerator(m, tk, genOpts...)
	g.SetLogger(logger)

	paragraphs, err := g.GenerateParagraphs(opts.count, opts.breakProb)
	if err != nil {
		return err
	}

	finisher, err := polish.NewFinisher()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.html {
		rendered := make([]string, len(paragraphs))
		for i, p := range paragraphs {
			rendered[i] = g.RenderParagraph(p)
		}
		fragment, err := finisher.Finish(polish.WrapHTML(rendered))
		if err != nil {
			return err
		}
		fmt.Fprintln(out, fragment)
		return nil
	}

	finished := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		if finished[i], err = finisher.Finish(g.RenderParagraph(p)); err != nil {
			return err
		}
	}
	printParagraphs(out, finished, printOptions{columns: opts.columns, pause: opts.pause})
	return nil
}

// obtainModel loads the model the flags name, or trains a fresh one from
// the given sources.
func obtainModel(cmd *cobra.Command, opts *generateOptions, tk markov.Tokenizer) (*markov.Model, error) {
	switch {
	case opts.loadPath != "":
		return loadModelFile(opts.loadPath)
	case opts.modelName != "":
		s, err := openStore()
		if err != nil {
			return nil, err
		}
		defer func() { _ = s.Close() }()
		return s.Load(cmd.Context(), opts.modelName)
	}

	m, err := markov.New(opts.order)
	if err != nil {
		return nil, err
	}
	m.SetLogger(logger)

	srcs, err := parseSources(opts.inputs, opts.aux)
	if err != nil {
		return nil, err
	}
	if err := trainFromSources(m, tk, srcs, opts.maskAcronyms); err != nil {
		return nil, err
	}

	if m.Stats().Prefixes == 0 {
		return nil, fmt.Errorf("training texts are shorter than the chain order %d; nothing was recorded", opts.order)
	}
	return m, nil
}

func loadModelFile(path string) (*markov.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open model file: %w", err)
	}
	defer func() { _ = f.Close() }()

	m, err := markov.Import(f)
	if err != nil {
		return nil, fmt.Errorf("could not load model from %q: %w", path, err)
	}
	m.SetLogger(logger)
	return m, nil
}

// saveModelFile writes the serialized model atomically, so an interrupted
// run cannot leave a truncated file behind.
func saveModelFile(m *markov.Model, path string) error {
	var buf bytes.Buffer
	if err := m.Export(&buf); err != nil {
		return fmt.Errorf("could not serialize model: %w", err)
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("could not write model file %q: %w", path, err)
	}
	return nil
}
