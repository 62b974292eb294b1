package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/quillfox/confab/pkg/markov"
)

func newTrainCmd() *cobra.Command {
	var (
		inputs       []string
		aux          []string
		order        int
		chars        bool
		maskAcronyms bool
		outputPath   string
		modelName    string
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a model and save it without generating",
		Long: `Train builds a chain model from the given texts and saves it to a file,
to the model store, or both. The saved model can later feed generate
--load, generate --model, or the serve command.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(inputs) == 0 {
				return errors.New("provide at least one --input text")
			}
			if outputPath == "" && modelName == "" {
				return errors.New("nowhere to save; provide --output and/or --model")
			}
			if maskAcronyms && chars {
				warn(cmd, "--mask-acronyms has no effect with --chars; ignoring")
				maskAcronyms = false
			}

			var tk markov.Tokenizer = markov.NewWordTokenizer()
			if chars {
				tk = markov.CharTokenizer{}
			}

			m, err := markov.New(order)
			if err != nil {
				return err
			}
			m.SetLogger(logger)

			srcs, err := parseSources(inputs, aux)
			if err != nil {
				return err
			}
			if err := trainFromSources(m, tk, srcs, maskAcronyms); err != nil {
				return err
			}

			stats := m.Stats()
			if stats.Prefixes == 0 {
				return fmt.Errorf("training texts are shorter than the chain order %d; nothing was recorded", order)
			}

			if outputPath != "" {
				if err := saveModelFile(m, outputPath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Model written to %s\n", outputPath)
			}
			if modelName != "" {
				s, err := openStore()
				if err != nil {
					return err
				}
				defer func() { _ = s.Close() }()
				if err := s.Save(cmd.Context(), modelName, m); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Model saved to the store as %q\n", modelName)
			}

			printStatsTable(cmd.OutOrStdout(), stats)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&inputs, "input", "i", nil, "Training text as path[:weight] (repeatable)")
	cmd.Flags().StringArrayVar(&aux, "aux", nil, "Auxiliary training text as path[:weight]; adds transitions but no sentence starts (repeatable)")
	cmd.Flags().IntVarP(&order, "markov-length", "m", 1, "Chain order: how many trailing tokens pick the next one")
	cmd.Flags().BoolVarP(&chars, "chars", "r", false, "Model characters instead of words")
	cmd.Flags().BoolVar(&maskAcronyms, "mask-acronyms", false, "Keep dotted acronyms like U.S.A. whole during word tokenization")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the model to this file")
	cmd.Flags().StringVar(&modelName, "model", "", "Save the model in the store under this name")

	return cmd
}

// printStatsTable writes model statistics to the given writer as an ASCII
// table.
func printStatsTable(w io.Writer, stats markov.ModelStats) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Order", "Prefixes", "Transitions", "Total Weight", "Starts", "Vocabulary"})
	table.Append([]string{
		strconv.Itoa(stats.Order),
		strconv.Itoa(stats.Prefixes),
		strconv.Itoa(stats.Transitions),
		strconv.FormatFloat(stats.TotalWeight, 'g', -1, 64),
		strconv.Itoa(stats.Starts),
		strconv.Itoa(stats.Vocabulary),
	})
	table.Render()
}
