package cmd

import (
	"github.com/msto63/paramval/internal/tui/dagview"
	"github.com/msto63/paramval/pkg/core/logging"
	"github.com/msto63/paramval/pkg/engine"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [EXPR...]",
	Short: "Browse an expression DAG interactively",
	Long: `Open a terminal view of the DAG built from the expressions, or of a
dag-json document given with --file. Select a node and type a point such as
"p=1/2, q=1/3" to evaluate it.`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&loadFile, "file", "", "dag-json document to inspect")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ecfg, err := engine.ConfigFrom(cfg)
	if err != nil {
		return err
	}
	// keep log lines off the alternate screen
	logger := newLogger(cfg, "engine").WithLevel(logging.LevelError)
	ec := engine.New(ecfg, engine.WithLogger(logger))
	hs, err := ec.Build(args...)
	if err != nil {
		return err
	}
	if loadFile != "" {
		loaded, err := importFile(ec, loadFile)
		if err != nil {
			return err
		}
		hs = append(hs, loaded...)
	}
	return dagview.Run(ec, hs...)
}
