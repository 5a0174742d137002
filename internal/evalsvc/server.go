package evalsvc

import (
	"bytes"
	"context"
	"math"
	"net"
	"strconv"
	"sync/atomic"
	"time"

	pverrors "github.com/msto63/paramval/foundation/core/errors"
	"github.com/msto63/paramval/internal/store"
	coreGrpc "github.com/msto63/paramval/pkg/core/grpc"
	"github.com/msto63/paramval/pkg/core/health"
	"github.com/msto63/paramval/pkg/core/logging"
	"github.com/msto63/paramval/pkg/core/version"
	"github.com/msto63/paramval/pkg/dag"
	"github.com/msto63/paramval/pkg/engine"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Server is the Evaluator gRPC server
type Server struct {
	grpc   *coreGrpc.Server
	health *health.Registry
	logger *logging.Logger
	config Config
	store  store.SnapshotStore

	cancelHits   atomic.Int64
	cancelMisses atomic.Int64
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	RequestTimeout time.Duration
	Engine         engine.Config
	// Store is optional; without it snapshot requests fail
	Store  store.SnapshotStore
	Logger *logging.Logger
	// MinCancelHitRate is the percentage below which the cancel cache
	// reports degraded; zero only reports the rate
	MinCancelHitRate float64
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           9330,
		RequestTimeout: 30 * time.Second,
		Engine:         engine.DefaultConfig(),
	}
}

// New creates a new Evaluator server
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.New("evaluator-server")
	}

	grpcCfg := coreGrpc.DefaultServerConfig()
	grpcCfg.Host = cfg.Host
	grpcCfg.Port = cfg.Port
	grpcCfg.RequestTimeout = cfg.RequestTimeout
	grpcCfg.Logger = logger

	s := &Server{
		grpc:   coreGrpc.NewServer(grpcCfg),
		health: health.NewRegistry("evaluator", version.Evaluator),
		logger: logger,
		config: cfg,
		store:  cfg.Store,
	}

	s.health.Register(health.SelfTestCheck("engine", s.selfTest))
	s.health.Register(health.HitRateCheck("cancel_cache", s.cancelCounters, cfg.MinCancelHitRate, 100))
	if s.store != nil {
		s.health.Register(health.PingCheck("store", func(ctx context.Context) error {
			_, err := s.store.Stats(ctx)
			return err
		}, 2*time.Second))
	}

	RegisterEvaluatorServer(s.grpc.GRPCServer(), s)
	return s
}

// selfTest evaluates x/(x+1) at x=1/2
func (s *Server) selfTest() error {
	ec := s.newContext()
	res, err := ec.Evaluate("x/(x+1)", map[string]string{"x": "1/2"})
	if err != nil {
		return err
	}
	if got := res.Value.String(); got != "1/3" {
		return pverrors.NewErrorBuilder(pverrors.ModuleEngine).
			Operation("self_test").
			Messagef("x/(x+1) at x=1/2 evaluated to %s, want 1/3", got).
			Build()
	}
	return nil
}

// newContext builds the per-request run context
func (s *Server) newContext() *engine.Context {
	return engine.New(s.config.Engine, engine.WithLogger(s.logger))
}

// Evaluate evaluates an expression or a snapshot function at a point
func (s *Server) Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ec := s.newContext()
	defer s.collect(ec)

	expr := stringField(req, "expression")
	snapshotID := stringField(req, "snapshot_id")

	var h dag.Handle
	var function int
	switch {
	case expr != "" && snapshotID != "":
		return nil, pverrors.InvalidInput(pverrors.ModuleEngine, "evaluate", "expression and snapshot_id", "one of expression or snapshot_id")
	case expr != "":
		hs, err := ec.Build(expr)
		if err != nil {
			return nil, err
		}
		h = hs[0]
	case snapshotID != "":
		hs, err := s.loadSnapshot(ctx, ec, snapshotID)
		if err != nil {
			return nil, err
		}
		if f, ok := numberField(req, "function"); ok {
			function = int(f)
		}
		if function < 0 || function >= len(hs) {
			return nil, pverrors.OutOfRange(pverrors.ModuleEngine, "evaluate", function, 0, len(hs)-1)
		}
		h = hs[function]
	default:
		return nil, pverrors.InvalidInput(pverrors.ModuleEngine, "evaluate", "", "expression or snapshot_id")
	}

	pt, err := ec.ParsePoint(pointField(req, "point"))
	if err != nil {
		return nil, err
	}
	res := ec.EvaluateHandle(h, pt)

	if boolField(req, "record") {
		if snapshotID == "" {
			return nil, pverrors.InvalidInput(pverrors.ModuleEngine, "evaluate", "record", "snapshot_id to record against")
		}
		err := s.store.RecordResult(ctx, &store.Result{
			SnapshotID: snapshotID,
			Function:   function,
			Point:      pt.Key(),
			Value:      res.Value.String(),
			Double:     res.Double,
			Lo:         res.Lo,
			Hi:         res.Hi,
			RunID:      ec.ID(),
		})
		if err != nil {
			return nil, pverrors.OperationFailed(pverrors.ModuleStore, "record_result", err)
		}
	}

	return structpb.NewStruct(map[string]interface{}{
		"run_id":     ec.ID(),
		"expression": res.Expression,
		"value":      res.Value.String(),
		"double":     FormatFloat(res.Double),
		"lo":         FormatFloat(res.Lo),
		"hi":         FormatFloat(res.Hi),
	})
}

func (s *Server) loadSnapshot(ctx context.Context, ec *engine.Context, id string) ([]dag.Handle, error) {
	if s.store == nil {
		return nil, pverrors.NewErrorBuilder(pverrors.ModuleStore).
			Operation("get").
			Message("no snapshot store configured").
			Code(pverrors.CodeOperationFailed).
			Build()
	}
	snap, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return ec.Import(bytes.NewReader(snap.Document))
}

// Cancel reduces numerator/denominator to lowest terms
func (s *Server) Cancel(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ec := s.newContext()
	defer s.collect(ec)

	num := stringField(req, "numerator")
	den := stringField(req, "denominator")
	if num == "" {
		return nil, pverrors.InvalidInput(pverrors.ModuleCancel, "cancel", "", "numerator polynomial")
	}
	if den == "" {
		den = "1"
	}

	r, err := ec.Cancel(num, den)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(map[string]interface{}{
		"run_id":      ec.ID(),
		"result":      r.String(),
		"numerator":   r.Numerator().String(),
		"denominator": r.Denominator().String(),
	})
}

// Export renders expressions as dag-json or dot and optionally saves a
// snapshot
func (s *Server) Export(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ec := s.newContext()
	defer s.collect(ec)

	exprs := stringList(req, "expressions")
	if len(exprs) == 0 {
		return nil, pverrors.InvalidInput(pverrors.ModuleDag, "export", "", "non-empty expressions list")
	}
	hs, err := ec.Build(exprs...)
	if err != nil {
		return nil, err
	}

	format := stringField(req, "format")
	var buf bytes.Buffer
	if err := ec.Export(&buf, format, hs...); err != nil {
		return nil, err
	}
	resp := map[string]interface{}{
		"run_id":   ec.ID(),
		"document": buf.String(),
	}

	if boolField(req, "save") {
		if s.store == nil {
			return nil, pverrors.InvalidInput(pverrors.ModuleStore, "save", "save", "a configured snapshot store")
		}
		snap, err := store.NewSnapshot(stringField(req, "name"), ec.Pool(), hs...)
		if err != nil {
			return nil, pverrors.OperationFailed(pverrors.ModuleStore, "save", err)
		}
		if err := s.store.Save(ctx, snap); err != nil {
			return nil, pverrors.OperationFailed(pverrors.ModuleStore, "save", err)
		}
		resp["snapshot_id"] = snap.ID
	}
	return structpb.NewStruct(resp)
}

// Health runs the registered checks
func (s *Server) Health(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	report := s.health.Check(ctx)
	checks := make(map[string]interface{}, len(report.Checks))
	for _, c := range report.Checks {
		checks[c.Name] = string(c.Status)
	}
	return structpb.NewStruct(map[string]interface{}{
		"service": report.Service,
		"version": report.Version,
		"status":  string(report.Status),
		"uptime":  report.Uptime.String(),
		"checks":  checks,
	})
}

// collect adds the cancel cache counters of a finished request to the
// server totals
func (s *Server) collect(ec *engine.Context) {
	if st, ok := ec.CancelStats(); ok {
		s.cancelHits.Add(st.Hits)
		s.cancelMisses.Add(st.Misses)
		s.logger.Debug("request finished",
			"run_id", ec.ID(),
			"cancel_hits", st.Hits,
			"cancel_misses", st.Misses,
		)
	}
}

func (s *Server) cancelCounters() (hits, misses int64) {
	return s.cancelHits.Load(), s.cancelMisses.Load()
}

// Start starts the gRPC server (blocking)
func (s *Server) Start() error {
	s.logger.Info("Starting Evaluator server", "port", s.config.Port)
	return s.grpc.Start()
}

// Serve serves on an existing listener
func (s *Server) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) {
	s.logger.Info("Stopping Evaluator server")
	s.grpc.StopWithTimeout(ctx)
}

// GRPCServer returns the underlying gRPC server
func (s *Server) GRPCServer() *grpc.Server {
	return s.grpc.GRPCServer()
}

// HealthRegistry returns the health registry
func (s *Server) HealthRegistry() *health.Registry {
	return s.health
}

// FormatFloat renders NaN and the infinities as strings; structpb numbers
// cannot carry them through JSON
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
