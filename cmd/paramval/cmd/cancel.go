package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/structpb"
)

var cancelKeys = []string{"result", "numerator", "denominator", "run_id"}

var cancelCmd = &cobra.Command{
	Use:   "cancel NUMERATOR [DENOMINATOR]",
	Short: "Reduce a polynomial fraction to lowest terms",
	Long: `Divide numerator and denominator by their greatest common divisor.

Examples:
  paramval cancel "p^2-1" "p-1"
  paramval cancel "2*p*q+2*q" "4*q"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCancel,
}

func init() {
	cancelCmd.Flags().StringVarP(&outputFormat, "output", "o", "", "output format (text, json)")
	rootCmd.AddCommand(cancelCmd)
}

func runCancel(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := newPrinter(cmd, cfg, outputFormat)

	num, den := args[0], "1"
	if len(args) == 2 {
		den = args[1]
	}

	if remoteAddr != "" {
		client, closeFn, err := dialRemote()
		if err != nil {
			return err
		}
		defer closeFn()
		resp, err := withTimeout(cmd.Context(), func(ctx context.Context) (*structpb.Struct, error) {
			return client.Cancel(ctx, num, den)
		})
		if err != nil {
			return err
		}
		return out.record(cancelKeys, resp.AsMap())
	}

	ec, err := newEngine(cfg)
	if err != nil {
		return err
	}
	r, err := ec.Cancel(num, den)
	if err != nil {
		return err
	}
	return out.record(cancelKeys, map[string]interface{}{
		"result":      r.String(),
		"numerator":   r.Numerator().String(),
		"denominator": r.Denominator().String(),
		"run_id":      ec.ID(),
	})
}
