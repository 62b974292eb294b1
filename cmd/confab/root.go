package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/quillfox/confab/internal/config"
	"github.com/quillfox/confab/internal/store"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

var (
	cfgFile   string
	activeCfg config.Config
	logger    = slog.New(slog.NewTextHandler(io.Discard, nil))
)

func NewRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "confab",
		Short: "Markov-chain prose and poetry generator",
		Long: `Confab trains Markov chain models on sample texts and generates new,
statistically plausible prose or poetry by walking them. Models can be
saved to files or to a model store and reused across runs.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(config.LoadOptions{
				Cmd:        cmd,
				ConfigFile: cfgFile,
				Defaults:   defaults,
			})
			if err != nil {
				return err
			}
			activeCfg = loaded
			logger = loaded.Log.NewLogger(cmd.ErrOrStderr())
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (yaml|toml|json)")
	config.RegisterFlags(cmd.PersistentFlags(), defaults)

	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newPoemCmd())
	cmd.AddCommand(newTrainCmd())
	cmd.AddCommand(newModelsCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// warn prints a highlighted warning on the command's error stream without
// going through the log handler.
func warn(cmd *cobra.Command, format string, args ...any) {
	printer := color.New(color.FgYellow)
	printer.Fprintf(cmd.ErrOrStderr(), "[WARNING] "+format+"\n", args...)
}

// openStore opens the model store named by the active config. The sqlite
// backend goes through openSQLite so the driver follows the build tags.
func openStore() (store.Store, error) {
	scheme, path, err := config.SplitEndpoint(activeCfg.Store.Endpoint)
	if err != nil {
		return nil, err
	}

	switch scheme {
	case "sqlite":
		db, err := openSQLite(path)
		if err != nil {
			return nil, fmt.Errorf("could not open sqlite store %q: %w", path, err)
		}
		s, err := store.NewSQLite(db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		s.SetLogger(logger)
		return s, nil
	case "bolt":
		s, err := store.NewBolt(path)
		if err != nil {
			return nil, err
		}
		s.SetLogger(logger)
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", scheme)
	}
}
