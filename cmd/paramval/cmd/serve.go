package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/msto63/paramval/internal/evalsvc"
	"github.com/msto63/paramval/internal/store"
	"github.com/msto63/paramval/pkg/engine"
	"github.com/spf13/cobra"
)

var (
	servePort    int
	serveNoStore bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Evaluator gRPC service",
	Long: `Start the Evaluator gRPC service (paramval.v1.Evaluator).

The service evaluates expressions, cancels polynomial fractions, exports
DAGs and keeps snapshots in the SQLite store at store.path.

Examples:
  paramval serve
  paramval serve --port 9400 --no-store`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default from config)")
	serveCmd.Flags().BoolVar(&serveNoStore, "no-store", false, "run without the snapshot store")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	logger := newLogger(cfg, "evaluator")

	ec, err := engine.ConfigFrom(cfg)
	if err != nil {
		return err
	}

	svcCfg := evalsvc.DefaultConfig()
	svcCfg.Host = cfg.Server.Host
	svcCfg.Port = cfg.Server.Port
	svcCfg.RequestTimeout = cfg.Server.RequestTimeout.Duration
	svcCfg.Engine = ec
	svcCfg.Logger = logger

	if !serveNoStore {
		st, err := store.NewSQLiteStore(store.SQLiteConfig{Path: cfg.Store.Path})
		if err != nil {
			return err
		}
		defer st.Close()
		svcCfg.Store = st
	}

	srv := evalsvc.New(svcCfg)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Evaluator listening on %s\n", cfg.ServerAddress())

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("Shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
	defer cancel()
	srv.Stop(ctx)
	return nil
}
