// Package store persists expression DAGs and evaluation results
package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	pverrors "github.com/msto63/paramval/foundation/core/errors"
	"github.com/msto63/paramval/pkg/dag"
	"github.com/msto63/paramval/pkg/param"
)

// Snapshot is a saved set of root expressions in the dag-json layout
type Snapshot struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	Parameters []string  `json:"parameters"`
	Functions  int       `json:"functions"`
	Nodes      int       `json:"nodes"`
	Document   []byte    `json:"-"`
}

// NewSnapshot serializes the expressions reachable from roots
func NewSnapshot(name string, pool *dag.Pool, roots ...dag.Handle) (*Snapshot, error) {
	var buf bytes.Buffer
	if err := pool.WriteJSON(&buf, roots...); err != nil {
		return nil, fmt.Errorf("failed to encode dag: %w", err)
	}
	return &Snapshot{
		Name:       name,
		Parameters: pool.Registry().Names(),
		Functions:  len(roots),
		Nodes:      pool.StatsOf(roots...).Total(),
		Document:   buf.Bytes(),
	}, nil
}

// Restore loads the snapshot document into a new pool over reg
func (s *Snapshot) Restore(reg *param.Registry, opts ...dag.Option) (*dag.Pool, []dag.Handle, error) {
	return dag.LoadJSON(bytes.NewReader(s.Document), reg, opts...)
}

// Result is one recorded evaluation of a snapshot function
type Result struct {
	ID         string    `json:"id"`
	SnapshotID string    `json:"snapshot_id"`
	Function   int       `json:"function"`
	Point      string    `json:"point"`
	Value      string    `json:"value"`
	Double     float64   `json:"double"`
	Lo         float64   `json:"lo"`
	Hi         float64   `json:"hi"`
	RunID      string    `json:"run_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Stats summarizes store contents
type Stats struct {
	Snapshots int64 `json:"snapshots"`
	Results   int64 `json:"results"`
}

// SnapshotStore defines the interface for snapshot persistence
type SnapshotStore interface {
	// Snapshot operations
	Save(ctx context.Context, snap *Snapshot) error
	Get(ctx context.Context, id string) (*Snapshot, error)
	List(ctx context.Context, limit int) ([]*Snapshot, error)
	Delete(ctx context.Context, id string) error

	// Result operations
	RecordResult(ctx context.Context, res *Result) error
	Results(ctx context.Context, snapshotID string) ([]*Result, error)

	// Statistics
	Stats(ctx context.Context) (Stats, error)

	// Maintenance
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
	Close() error
}

func notFound(op, id string) error {
	return pverrors.NotFound(pverrors.ModuleStore, op, id)
}

// prepare assigns ID and timestamp when missing
func prepare(id *string, ts *time.Time) {
	if *id == "" {
		*id = uuid.New().String()
	}
	if ts.IsZero() {
		*ts = time.Now().UTC()
	}
}

// SQLiteStore implements SnapshotStore using SQLite
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// SQLiteConfig holds configuration for SQLite store
type SQLiteConfig struct {
	Path string
}

// DefaultSQLiteConfig returns default configuration
func DefaultSQLiteConfig() SQLiteConfig {
	return SQLiteConfig{
		Path: "./data/paramval.db",
	}
}

// NewSQLiteStore opens or creates the database at cfg.Path
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// Open database with WAL mode
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the necessary tables
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		parameters TEXT NOT NULL,
		functions INTEGER NOT NULL,
		nodes INTEGER NOT NULL,
		document BLOB NOT NULL
	);

	CREATE TABLE IF NOT EXISTS results (
		id TEXT PRIMARY KEY,
		snapshot_id TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
		function INTEGER NOT NULL,
		point TEXT NOT NULL,
		value TEXT NOT NULL,
		double REAL,
		lo REAL,
		hi REAL,
		run_id TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_results_snapshot ON results(snapshot_id, function);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Save inserts a snapshot, assigning an ID when it has none
func (s *SQLiteStore) Save(ctx context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(&snap.ID, &snap.CreatedAt)
	params, err := json.Marshal(snap.Parameters)
	if err != nil {
		return fmt.Errorf("failed to encode parameters: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, name, created_at, parameters, functions, nodes, document)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, snap.ID, snap.Name, snap.CreatedAt, string(params), snap.Functions, snap.Nodes, snap.Document)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

// Get returns the snapshot with the given ID
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, parameters, functions, nodes, document
		FROM snapshots WHERE id = ?
	`, id)
	snap, err := scanSnapshot(row.Scan, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("get", id)
	}
	return snap, err
}

// List returns snapshots newest first, without their documents
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, name, created_at, parameters, functions, nodes FROM snapshots ORDER BY created_at DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows.Scan, false)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

func scanSnapshot(scan func(dest ...interface{}) error, withDocument bool) (*Snapshot, error) {
	var snap Snapshot
	var params string
	dest := []interface{}{&snap.ID, &snap.Name, &snap.CreatedAt, &params, &snap.Functions, &snap.Nodes}
	if withDocument {
		dest = append(dest, &snap.Document)
	}
	if err := scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(params), &snap.Parameters); err != nil {
		return nil, fmt.Errorf("failed to decode parameters: %w", err)
	}
	return &snap, nil
}

// Delete removes a snapshot and its results
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("delete", id)
	}
	return nil
}

// RecordResult inserts an evaluation result
func (s *SQLiteStore) RecordResult(ctx context.Context, r *Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(&r.ID, &r.CreatedAt)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO results (id, snapshot_id, function, point, value, double, lo, hi, run_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.SnapshotID, r.Function, r.Point, r.Value, nullFloat(r.Double), nullFloat(r.Lo), nullFloat(r.Hi), r.RunID, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}
	return nil
}

// Results returns the results of a snapshot ordered by function and time
func (s *SQLiteStore) Results(ctx context.Context, snapshotID string) ([]*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, snapshot_id, function, point, value, double, lo, hi, run_id, created_at
		FROM results WHERE snapshot_id = ? ORDER BY function, created_at
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []*Result
	for rows.Next() {
		var r Result
		var double, lo, hi sql.NullFloat64
		var runID sql.NullString
		if err := rows.Scan(&r.ID, &r.SnapshotID, &r.Function, &r.Point, &r.Value,
			&double, &lo, &hi, &runID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		r.Double, r.Lo, r.Hi = floatOrNaN(double), floatOrNaN(lo), floatOrNaN(hi)
		r.RunID = runID.String
		results = append(results, &r)
	}
	return results, rows.Err()
}

// Stats returns row counts
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st Stats
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots`).Scan(&st.Snapshots); err != nil {
		return st, fmt.Errorf("failed to count snapshots: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM results`).Scan(&st.Results); err != nil {
		return st, fmt.Errorf("failed to count results: %w", err)
	}
	return st, nil
}

// Prune removes snapshots older than the specified duration
func (s *SQLiteStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-olderThan)
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SQLite turns NaN into NULL; NULL reads back as NaN
func nullFloat(f float64) sql.NullFloat64 {
	if math.IsNaN(f) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

func floatOrNaN(f sql.NullFloat64) float64 {
	if !f.Valid {
		return math.NaN()
	}
	return f.Float64
}

// MemoryStore is an in-memory implementation for testing
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]*Snapshot
	results   []*Result
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]*Snapshot)}
}

// Save stores a snapshot
func (s *MemoryStore) Save(ctx context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(&snap.ID, &snap.CreatedAt)
	if _, ok := s.snapshots[snap.ID]; ok {
		return fmt.Errorf("failed to insert snapshot: duplicate id %s", snap.ID)
	}
	cp := *snap
	s.snapshots[snap.ID] = &cp
	return nil
}

// Get returns the snapshot with the given ID
func (s *MemoryStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[id]
	if !ok {
		return nil, notFound("get", id)
	}
	cp := *snap
	return &cp, nil
}

// List returns snapshots newest first, without their documents
func (s *MemoryStore) List(ctx context.Context, limit int) ([]*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snaps := make([]*Snapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		cp := *snap
		cp.Document = nil
		snaps = append(snaps, &cp)
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].CreatedAt.After(snaps[j].CreatedAt) })
	if limit > 0 && len(snaps) > limit {
		snaps = snaps[:limit]
	}
	return snaps, nil
}

// Delete removes a snapshot and its results
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snapshots[id]; !ok {
		return notFound("delete", id)
	}
	delete(s.snapshots, id)
	s.dropResults(func(r *Result) bool { return r.SnapshotID == id })
	return nil
}

func (s *MemoryStore) dropResults(drop func(*Result) bool) {
	kept := s.results[:0]
	for _, r := range s.results {
		if !drop(r) {
			kept = append(kept, r)
		}
	}
	s.results = kept
}

// RecordResult stores an evaluation result
func (s *MemoryStore) RecordResult(ctx context.Context, r *Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snapshots[r.SnapshotID]; !ok {
		return fmt.Errorf("failed to insert result: unknown snapshot %s", r.SnapshotID)
	}
	prepare(&r.ID, &r.CreatedAt)
	cp := *r
	s.results = append(s.results, &cp)
	return nil
}

// Results returns the results of a snapshot ordered by function and time
func (s *MemoryStore) Results(ctx context.Context, snapshotID string) ([]*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Result
	for _, r := range s.results {
		if r.SnapshotID == snapshotID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Function < out[j].Function })
	return out, nil
}

// Stats returns entry counts
func (s *MemoryStore) Stats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{Snapshots: int64(len(s.snapshots)), Results: int64(len(s.results))}, nil
}

// Prune removes snapshots older than the specified duration
func (s *MemoryStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-olderThan)
	var n int64
	for id, snap := range s.snapshots {
		if snap.CreatedAt.Before(cutoff) {
			delete(s.snapshots, id)
			n++
		}
	}
	s.dropResults(func(r *Result) bool {
		_, ok := s.snapshots[r.SnapshotID]
		return !ok
	})
	return n, nil
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}
