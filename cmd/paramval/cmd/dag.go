package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/msto63/paramval/pkg/dag"
	"github.com/msto63/paramval/pkg/engine"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/structpb"
)

var (
	exportFormat string
	exportFile   string
	loadFile     string
)

var dagCmd = &cobra.Command{
	Use:   "dag",
	Short: "Build, export and inspect expression DAGs",
}

var dagExportCmd = &cobra.Command{
	Use:   "export EXPR [EXPR...]",
	Short: "Write expressions as a dag-json document or a dot graph",
	Long: `Intern the expressions into one DAG and write the reachable nodes.

Examples:
  paramval dag export "p/(p+q)" "q/(p+q)" > model.json
  paramval dag export "p*(1-p)" --format dot | dot -Tsvg > model.svg`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDagExport,
}

var dagStatsCmd = &cobra.Command{
	Use:   "stats [EXPR...]",
	Short: "Count the nodes of expressions or of a dag-json document",
	Long: `Count constants, parameters and operators. Expressions given as
arguments are interned into one pool; --file reads a dag-json document.`,
	RunE: runDagStats,
}

var dagLoadCmd = &cobra.Command{
	Use:   "load FILE",
	Short: "Read a dag-json document and evaluate its functions",
	Long: `Read a dag-json document and evaluate every function at a point.

Examples:
  paramval dag load model.json -p p=1/2 -p q=1/2`,
	Args: cobra.ExactArgs(1),
	RunE: runDagLoad,
}

func init() {
	dagExportCmd.Flags().StringVarP(&exportFormat, "format", "f", engine.FormatJSON, "document format (json, dot)")
	dagExportCmd.Flags().StringVar(&exportFile, "out", "", "write to file instead of stdout")
	dagStatsCmd.Flags().StringVar(&loadFile, "file", "", "dag-json document to count")
	dagStatsCmd.Flags().StringVarP(&outputFormat, "output", "o", "", "output format (text, json)")
	dagLoadCmd.Flags().StringArrayVarP(&pointFlags, "point", "p", nil, "parameter value as name=value (repeatable)")
	dagLoadCmd.Flags().StringVarP(&outputFormat, "output", "o", "", "output format (text, json)")

	dagCmd.AddCommand(dagExportCmd, dagStatsCmd, dagLoadCmd)
	rootCmd.AddCommand(dagCmd)
}

func runDagExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportFile != "" {
		f, err := os.Create(exportFile)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", exportFile, err)
		}
		defer f.Close()
		w = f
	}

	if remoteAddr != "" {
		client, closeFn, err := dialRemote()
		if err != nil {
			return err
		}
		defer closeFn()
		resp, err := withTimeout(cmd.Context(), func(ctx context.Context) (*structpb.Struct, error) {
			return client.Export(ctx, exportFormat, "", args...)
		})
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, resp.GetFields()["document"].GetStringValue())
		return err
	}

	ec, err := newEngine(cfg)
	if err != nil {
		return err
	}
	hs, err := ec.Build(args...)
	if err != nil {
		return err
	}
	return ec.Export(w, exportFormat, hs...)
}

func runDagStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(args) == 0 && loadFile == "" {
		return fmt.Errorf("give expressions or --file")
	}
	ec, err := newEngine(cfg)
	if err != nil {
		return err
	}

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

	st := ec.Pool().StatsOf(hs...)
	out := newPrinter(cmd, cfg, outputFormat)
	values := map[string]interface{}{
		"functions":  len(hs),
		"nodes":      st.Total(),
		"constants":  st.Constants,
		"parameters": st.Variables,
		"operators":  st.Operators,
	}
	if out.format == formatJSON {
		values["by_operator"] = st.ByOp
		return out.record(nil, values)
	}
	if err := out.record([]string{"functions", "nodes", "constants", "parameters", "operators"}, values); err != nil {
		return err
	}
	out.counts("by operator", st.ByOp)
	return nil
}

func runDagLoad(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	point, err := parsePointFlags(pointFlags)
	if err != nil {
		return err
	}
	ec, err := newEngine(cfg)
	if err != nil {
		return err
	}
	hs, err := importFile(ec, args[0])
	if err != nil {
		return err
	}
	return evaluateHandles(newPrinter(cmd, cfg, outputFormat), ec, hs, point)
}

func importFile(ec *engine.Context, path string) ([]dag.Handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return ec.Import(f)
}

func evaluateHandles(out *printer, ec *engine.Context, hs []dag.Handle, point map[string]string) error {
	pt, err := ec.ParsePoint(point)
	if err != nil {
		return err
	}
	for _, h := range hs {
		res := ec.EvaluateHandle(h, pt)
		if err := out.record(resultKeys, resultValues(ec, res, out.precision)); err != nil {
			return err
		}
	}
	return nil
}
