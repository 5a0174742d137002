package cmd

import (
	"context"
	"time"

	"github.com/msto63/paramval/internal/evalsvc"
	coreGrpc "github.com/msto63/paramval/pkg/core/grpc"
	"github.com/msto63/paramval/pkg/engine"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/structpb"
)

var (
	pointFlags   []string
	outputFormat string
)

var resultKeys = []string{"expression", "value", "decimal", "double", "lo", "hi", "run_id"}

var evalCmd = &cobra.Command{
	Use:   "eval EXPR [EXPR...]",
	Short: "Evaluate rational expressions at a parameter point",
	Long: `Evaluate one or more rational expressions exactly at a point.

Examples:
  paramval eval "p/(p+q)" -p p=1/3 -p q=2/3
  paramval eval "1/p" -p p=0
  paramval eval "p*(1-p)" -p p=0.25 --output json
  paramval eval "p^2" -p p=1/2 --remote localhost:9330`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEval,
}

func init() {
	evalCmd.Flags().StringArrayVarP(&pointFlags, "point", "p", nil, "parameter value as name=value (repeatable)")
	evalCmd.Flags().StringVarP(&outputFormat, "output", "o", "", "output format (text, json)")
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	point, err := parsePointFlags(pointFlags)
	if err != nil {
		return err
	}
	out := newPrinter(cmd, cfg, outputFormat)

	if remoteAddr != "" {
		return evalRemote(cmd.Context(), out, args, point)
	}

	ec, err := newEngine(cfg)
	if err != nil {
		return err
	}
	defer ec.LogStats()

	for _, expr := range args {
		res, err := ec.Evaluate(expr, point)
		if err != nil {
			return err
		}
		if err := out.record(resultKeys, resultValues(ec, res, out.precision)); err != nil {
			return err
		}
	}
	return nil
}

func resultValues(ec *engine.Context, res *engine.Result, precision int) map[string]interface{} {
	return map[string]interface{}{
		"expression": res.Expression,
		"value":      res.Value.String(),
		"decimal":    res.Value.DecimalString(precision),
		"double":     evalsvc.FormatFloat(res.Double),
		"lo":         evalsvc.FormatFloat(res.Lo),
		"hi":         evalsvc.FormatFloat(res.Hi),
		"run_id":     ec.ID(),
	}
}

func evalRemote(ctx context.Context, out *printer, exprs []string, point map[string]string) error {
	client, closeFn, err := dialRemote()
	if err != nil {
		return err
	}
	defer closeFn()

	for _, expr := range exprs {
		resp, err := withTimeout(ctx, func(ctx context.Context) (*structpb.Struct, error) {
			return client.Evaluate(ctx, expr, point)
		})
		if err != nil {
			return err
		}
		if err := out.record(resultKeys, resp.AsMap()); err != nil {
			return err
		}
	}
	return nil
}

func dialRemote() (*evalsvc.Client, func(), error) {
	conn, err := coreGrpc.DialSimple(remoteAddr)
	if err != nil {
		return nil, nil, err
	}
	return evalsvc.NewClient(conn), func() { conn.Close() }, nil
}

func withTimeout(ctx context.Context, call func(context.Context) (*structpb.Struct, error)) (*structpb.Struct, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return call(ctx)
}
