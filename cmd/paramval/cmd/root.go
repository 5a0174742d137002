package cmd

import (
	"fmt"
	"os"

	"github.com/msto63/paramval/internal/tui/dagview"
	"github.com/msto63/paramval/pkg/core/config"
	"github.com/msto63/paramval/pkg/core/logging"
	"github.com/msto63/paramval/pkg/engine"
	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	verbose    bool
	remoteAddr string
	rounding   string
)

var rootCmd = &cobra.Command{
	Use:   "paramval",
	Short: "paramval - exact values for parametric models",
	Long: `paramval evaluates, simplifies and stores the values of parametric
probabilistic models: exact fractions, polynomials and rational functions
over named parameters, and hash-consed expression DAGs built from them.

Literals:
  fraction     3/4, -1.25, 1.2e3, inf, -inf, -0, invalid
  polynomial   2*p^2*q-3*q+5
  rational     (p+1)/(2*q), p/(1-p), 3/4`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $PARAMVAL_CONFIG or ./configs/paramval.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&remoteAddr, "remote", "", "evaluate on an Evaluator service at host:port")
	rootCmd.PersistentFlags().StringVar(&rounding, "rounding", "", "rounding mode for doubles (ties-to-even, ties-away, floor, ceiling, truncate)")
}

func printError(err error) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
}

// loadConfig reads --config, then PARAMVAL_CONFIG and the default paths,
// and falls back to the built-in defaults
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if cfgFile != "" {
		c, err := config.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = c
	} else if c, err := config.LoadFromEnv(); err == nil {
		cfg = c
	} else {
		cfg = config.Default()
	}

	if rounding != "" {
		cfg.Engine.Rounding = rounding
	}
	if verbose {
		cfg.General.LogLevel = "debug"
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, name string) *logging.Logger {
	return logging.Wrap(name, logging.NewLogger(logging.FromConfig(name, cfg)))
}

func newEngine(cfg *config.Config) (*engine.Context, error) {
	ec, err := engine.ConfigFrom(cfg)
	if err != nil {
		return nil, err
	}
	return engine.New(ec, engine.WithLogger(newLogger(cfg, "engine"))), nil
}

// parsePointFlags merges repeated -p name=value flags
func parsePointFlags(values []string) (map[string]string, error) {
	point := make(map[string]string)
	for _, v := range values {
		kv, err := dagview.ParsePointInput(v)
		if err != nil {
			return nil, err
		}
		for name, value := range kv {
			point[name] = value
		}
	}
	return point, nil
}
