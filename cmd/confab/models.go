package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/quillfox/confab/internal/store"
)

func newModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Manage models in the configured store",
	}
	cmd.AddCommand(newModelsListCmd())
	cmd.AddCommand(newModelsShowCmd())
	cmd.AddCommand(newModelsDeleteCmd())
	cmd.AddCommand(newModelsPruneCmd())
	return cmd
}

func newModelsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			entries, err := s.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "The store holds no models.")
				return nil
			}
			printEntriesTable(cmd.OutOrStdout(), entries)
			return nil
		},
	}
}

func newModelsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Show statistics for a stored model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			m, err := s.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printStatsTable(cmd.OutOrStdout(), m.Stats())
			return nil
		},
	}
}

func newModelsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a stored model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			if err := s.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Model %q deleted.\n", args[0])
			return nil
		},
	}
}

func newModelsPruneCmd() *cobra.Command {
	var minWeight float64
	cmd := &cobra.Command{
		Use:   "prune NAME",
		Short: "Drop rare transitions from a stored model",
		Long: `Prune removes transitions whose accumulated weight is below the given
minimum, then writes the smaller model back. With the default minimum of 2
everything observed only once is dropped, which typically shrinks a model
substantially at a modest cost in variety.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			m, err := s.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			m.SetLogger(logger)

			removed := m.Prune(minWeight)
			if err := s.Save(cmd.Context(), args[0], m); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d transitions, %d prefixes and %d starts from %q.\n",
				removed.Transitions, removed.Prefixes, removed.Starts, args[0])

			if m.Stats().Starts == 0 {
				warn(cmd, "model %q has no sentence starts left; generation from it will fail", args[0])
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&minWeight, "min-weight", 2, "Remove transitions with accumulated weight below this")
	return cmd
}

// printEntriesTable writes store entries to the given writer as an ASCII
// table.
func printEntriesTable(w io.Writer, entries []store.Entry) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Order", "Size", "Saved"})
	for _, e := range entries {
		table.Append([]string{
			e.Name,
			strconv.Itoa(e.Order),
			strconv.FormatInt(e.Size, 10),
			e.SavedAt.Format(time.RFC3339),
		})
	}
	table.Render()
}
