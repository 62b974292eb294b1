package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quillfox/confab/pkg/markov"
	"github.com/quillfox/confab/pkg/polish"
)

func newServeCmd() *cobra.Command {
	var (
		addr      string
		modelName string
		loadPath  string
		chars     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve generated text over HTTP",
		Long: `Serve loads a model and answers GET /v1/text with freshly generated
paragraphs, as plain text or as an HTML fragment. GET /healthz reports
liveness. The model comes from the store by name, or from a file with
--load.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srvCfg := activeCfg.Server
			if addr != "" {
				srvCfg.ListenAddr = addr
			}
			if modelName != "" {
				srvCfg.Model = modelName
			}

			if loadPath != "" && srvCfg.Model != "" {
				return errors.New("--load and a store model both given; use one")
			}

			var (
				m   *markov.Model
				err error
			)
			switch {
			case loadPath != "":
				m, err = loadModelFile(loadPath)
			case srvCfg.Model != "":
				m, err = loadStoreModel(cmd.Context(), srvCfg.Model)
			default:
				return errors.New("no model to serve; set server.model in the config, or pass --model or --load")
			}
			if err != nil {
				return err
			}

			var tk markov.Tokenizer = markov.NewWordTokenizer()
			if chars {
				tk = markov.CharTokenizer{}
			}

			g := markov.NewGenerator(m, tk)
			g.SetLogger(logger)

			finisher, err := polish.NewFinisher()
			if err != nil {
				return err
			}

			api := newTextAPI(g, finisher, srvCfg.MaxSentences, logger)
			mux := http.NewServeMux()
			api.RegisterRoutes(mux)

			srv := &http.Server{
				Addr:         srvCfg.ListenAddr,
				Handler:      mux,
				ReadTimeout:  time.Duration(srvCfg.ReadTimeout) * time.Second,
				WriteTimeout: time.Duration(srvCfg.WriteTimeout) * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errChan := make(chan error, 1)
			go func() {
				logger.Info("Starting text server", "address", srv.Addr, "model_order", m.Order())
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errChan <- err
				}
			}()

			select {
			case err := <-errChan:
				return fmt.Errorf("server failed: %w", err)
			case <-ctx.Done():
			}

			logger.Info("Shutdown requested, stopping server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(srvCfg.ShutdownTimeout)*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			logger.Info("Server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.listen_addr)")
	cmd.Flags().StringVar(&modelName, "model", "", "Serve this model from the store (overrides server.model)")
	cmd.Flags().StringVarP(&loadPath, "load", "l", "", "Serve a model file instead of a stored model")
	cmd.Flags().BoolVarP(&chars, "chars", "r", false, "Treat the model as a character model when rendering")

	return cmd
}

// loadStoreModel opens the configured store just long enough to load one
// model.
func loadStoreModel(ctx context.Context, name string) (*markov.Model, error) {
	s, err := openStore()
	if err != nil {
		return nil, err
	}
	defer func() { _ = s.Close() }()
	return s.Load(ctx, name)
}
