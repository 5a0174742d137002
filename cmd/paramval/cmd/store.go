package cmd

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	pverrors "github.com/msto63/paramval/foundation/core/errors"
	"github.com/msto63/paramval/internal/store"
	"github.com/msto63/paramval/pkg/core/config"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/structpb"
)

var (
	storePath     string
	listLimit     int
	evalFunction  int
	recordResult  bool
	pruneOlder    time.Duration
	snapshotKeys  = []string{"id", "name", "created", "functions", "nodes", "parameters"}
	storeStatKeys = []string{"path", "snapshots", "results"}
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Save, list and evaluate DAG snapshots",
	Long: `Manage DAG snapshots in the SQLite store (store.path, or --db).

Examples:
  paramval store save chain "p/(p+q)" "q/(p+q)"
  paramval store list
  paramval store eval <id> --function 1 -p p=1/2 -p q=1/4 --record
  paramval store prune --older-than 720h`,
}

var storeSaveCmd = &cobra.Command{
	Use:   "save NAME EXPR [EXPR...]",
	Short: "Intern expressions and save them as a snapshot",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runStoreSave,
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots, newest first",
	Args:  cobra.NoArgs,
	RunE:  runStoreList,
}

var storeShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a snapshot and its recorded results",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreShow,
}

var storeEvalCmd = &cobra.Command{
	Use:   "eval ID",
	Short: "Evaluate a snapshot function at a point",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreEval,
}

var storeDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a snapshot and its results",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreDelete,
}

var storePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete snapshots older than a duration",
	Args:  cobra.NoArgs,
	RunE:  runStorePrune,
}

var storeStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count stored snapshots and results",
	Args:  cobra.NoArgs,
	RunE:  runStoreStats,
}

func init() {
	storeCmd.PersistentFlags().StringVar(&storePath, "db", "", "snapshot database (default from config)")
	storeCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format (text, json)")
	storeListCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "maximum snapshots to list (0 for all)")
	storeEvalCmd.Flags().IntVar(&evalFunction, "function", 0, "index of the function to evaluate")
	storeEvalCmd.Flags().StringArrayVarP(&pointFlags, "point", "p", nil, "parameter value as name=value (repeatable)")
	storeEvalCmd.Flags().BoolVar(&recordResult, "record", false, "record the result in the store")
	storePruneCmd.Flags().DurationVar(&pruneOlder, "older-than", 30*24*time.Hour, "age of snapshots to delete")

	storeCmd.AddCommand(storeSaveCmd, storeListCmd, storeShowCmd, storeEvalCmd, storeDeleteCmd, storePruneCmd, storeStatsCmd)
	rootCmd.AddCommand(storeCmd)
}

func openStore(cfg *config.Config) (*store.SQLiteStore, error) {
	path := cfg.Store.Path
	if storePath != "" {
		path = storePath
	}
	return store.NewSQLiteStore(store.SQLiteConfig{Path: path})
}

func snapshotValues(s *store.Snapshot) map[string]interface{} {
	return map[string]interface{}{
		"id":         s.ID,
		"name":       s.Name,
		"created":    s.CreatedAt.Format(time.RFC3339),
		"functions":  s.Functions,
		"nodes":      s.Nodes,
		"parameters": s.Parameters,
	}
}

func runStoreSave(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	name, exprs := args[0], args[1:]

	if remoteAddr != "" {
		client, closeFn, err := dialRemote()
		if err != nil {
			return err
		}
		defer closeFn()
		resp, err := withTimeout(cmd.Context(), func(ctx context.Context) (*structpb.Struct, error) {
			return client.Export(ctx, "json", name, exprs...)
		})
		if err != nil {
			return err
		}
		return newPrinter(cmd, cfg, outputFormat).record([]string{"id"}, map[string]interface{}{
			"id": resp.GetFields()["snapshot_id"].GetStringValue(),
		})
	}

	ec, err := newEngine(cfg)
	if err != nil {
		return err
	}
	hs, err := ec.Build(exprs...)
	if err != nil {
		return err
	}
	snap, err := store.NewSnapshot(name, ec.Pool(), hs...)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Save(cmd.Context(), snap); err != nil {
		return err
	}
	return newPrinter(cmd, cfg, outputFormat).record(snapshotKeys, snapshotValues(snap))
}

func runStoreList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	snaps, err := st.List(cmd.Context(), listLimit)
	if err != nil {
		return err
	}
	out := newPrinter(cmd, cfg, outputFormat)
	if out.format == formatJSON {
		list := make([]interface{}, len(snaps))
		for i, s := range snaps {
			list[i] = snapshotValues(s)
		}
		return out.record(nil, map[string]interface{}{"snapshots": list})
	}
	if len(snaps) == 0 {
		fmt.Fprintln(out.w, "no snapshots")
		return nil
	}
	for _, s := range snaps {
		fmt.Fprintf(out.w, "%s  %-20s  %s  %d functions, %d nodes\n",
			out.style(valueStyle, s.ID), s.Name, s.CreatedAt.Format(time.RFC3339), s.Functions, s.Nodes)
	}
	return nil
}

func runStoreShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	snap, err := st.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	results, err := st.Results(cmd.Context(), snap.ID)
	if err != nil {
		return err
	}

	out := newPrinter(cmd, cfg, outputFormat)
	values := snapshotValues(snap)
	if out.format == formatJSON {
		rs := make([]interface{}, len(results))
		for i, r := range results {
			rs[i] = resultRecordValues(r)
		}
		values["results"] = rs
		return out.record(nil, values)
	}
	if err := out.record(snapshotKeys, values); err != nil {
		return err
	}
	if len(results) > 0 {
		out.header("results")
		for _, r := range results {
			fmt.Fprintf(out.w, "  f%d at {%s} = %s  (%s)\n", r.Function, r.Point, out.style(valueStyle, r.Value), strconv.FormatFloat(r.Double, 'g', -1, 64))
		}
	}
	return nil
}

func resultRecordValues(r *store.Result) map[string]interface{} {
	return map[string]interface{}{
		"function": r.Function,
		"point":    r.Point,
		"value":    r.Value,
		"double":   strconv.FormatFloat(r.Double, 'g', -1, 64),
		"run_id":   r.RunID,
		"created":  r.CreatedAt.Format(time.RFC3339),
	}
}

func runStoreEval(cmd *cobra.Command, args []string) error {
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
		client, closeFn, err := dialRemote()
		if err != nil {
			return err
		}
		defer closeFn()
		resp, err := withTimeout(cmd.Context(), func(ctx context.Context) (*structpb.Struct, error) {
			return client.EvaluateSnapshot(ctx, args[0], evalFunction, point, recordResult)
		})
		if err != nil {
			return err
		}
		return out.record(resultKeys, resp.AsMap())
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	snap, err := st.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	ec, err := newEngine(cfg)
	if err != nil {
		return err
	}
	hs, err := ec.Import(bytes.NewReader(snap.Document))
	if err != nil {
		return err
	}
	if evalFunction < 0 || evalFunction >= len(hs) {
		return pverrors.OutOfRange(pverrors.ModuleEngine, "evaluate", evalFunction, 0, len(hs)-1)
	}
	pt, err := ec.ParsePoint(point)
	if err != nil {
		return err
	}
	res := ec.EvaluateHandle(hs[evalFunction], pt)

	if recordResult {
		err := st.RecordResult(cmd.Context(), &store.Result{
			SnapshotID: snap.ID,
			Function:   evalFunction,
			Point:      pt.Key(),
			Value:      res.Value.String(),
			Double:     res.Double,
			Lo:         res.Lo,
			Hi:         res.Hi,
			RunID:      ec.ID(),
		})
		if err != nil {
			return err
		}
	}
	return out.record(resultKeys, resultValues(ec, res, out.precision))
}

func runStoreDelete(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
	return nil
}

func runStorePrune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	n, err := st.Prune(cmd.Context(), pruneOlder)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "pruned %d snapshots\n", n)
	return nil
}

func runStoreStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	stats, err := st.Stats(cmd.Context())
	if err != nil {
		return err
	}
	path := cfg.Store.Path
	if storePath != "" {
		path = storePath
	}
	return newPrinter(cmd, cfg, outputFormat).record(storeStatKeys, map[string]interface{}{
		"path":      path,
		"snapshots": stats.Snapshots,
		"results":   stats.Results,
	})
}
