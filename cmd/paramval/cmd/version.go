package cmd

import (
	"fmt"
	"runtime"

	"github.com/msto63/paramval/pkg/core/version"
	"github.com/spf13/cobra"
)

var (
	GitCommit = "development"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "paramval v%s\n", version.CLI)
		fmt.Fprintf(out, "  Evaluator:  v%s\n", version.Evaluator)
		fmt.Fprintf(out, "  Store:      v%s\n", version.Store)
		fmt.Fprintf(out, "  dag-json:   v%s\n", version.DagJSON)
		fmt.Fprintf(out, "  Git Commit: %s\n", GitCommit)
		fmt.Fprintf(out, "  Build Date: %s\n", BuildDate)
		fmt.Fprintf(out, "  Go Version: %s\n", runtime.Version())
		fmt.Fprintf(out, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
