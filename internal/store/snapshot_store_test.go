package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	pverrors "github.com/msto63/paramval/foundation/core/errors"
	"github.com/msto63/paramval/pkg/dag"
	"github.com/msto63/paramval/pkg/fraction"
	"github.com/msto63/paramval/pkg/param"
)

func testStores(t *testing.T) map[string]SnapshotStore {
	t.Helper()
	sqlite, err := NewSQLiteStore(SQLiteConfig{Path: filepath.Join(t.TempDir(), "sub", "paramval.db")})
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })
	return map[string]SnapshotStore{
		"sqlite": sqlite,
		"memory": NewMemoryStore(),
	}
}

// p/(p+1) and p*q
func testSnapshot(t *testing.T, name string) *Snapshot {
	t.Helper()
	reg := param.NewRegistry()
	pool := dag.NewPool(reg)
	p, q := pool.Parameter("p"), pool.Parameter("q")
	f := pool.Divide(p, pool.Add(p, pool.Int(1)))
	g := pool.Multiply(p, q)

	snap, err := NewSnapshot(name, pool, f, g)
	if err != nil {
		t.Fatalf("NewSnapshot() error = %v", err)
	}
	return snap
}

func TestNewSnapshot(t *testing.T) {
	snap := testSnapshot(t, "model")
	if snap.Functions != 2 {
		t.Errorf("Functions = %v, want 2", snap.Functions)
	}
	if snap.Nodes != 6 {
		t.Errorf("Nodes = %v, want 6", snap.Nodes)
	}
	if len(snap.Parameters) != 2 || snap.Parameters[0] != "p" || snap.Parameters[1] != "q" {
		t.Errorf("Parameters = %v, want [p q]", snap.Parameters)
	}
}

func TestSaveGetRestore(t *testing.T) {
	ctx := context.Background()
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			snap := testSnapshot(t, "model")
			if err := s.Save(ctx, snap); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if snap.ID == "" {
				t.Fatal("Save() did not assign an ID")
			}

			got, err := s.Get(ctx, snap.ID)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.Name != "model" || got.Functions != 2 || len(got.Parameters) != 2 {
				t.Errorf("Get() = %+v", got)
			}

			reg := param.NewRegistry()
			pool, roots, err := got.Restore(reg)
			if err != nil {
				t.Fatalf("Restore() error = %v", err)
			}
			pt := param.NewPoint(reg)
			pt.SetByName("p", fraction.FromInt64(3))
			if v := pool.Evaluate(roots[0], pt); v.String() != "3/4" {
				t.Errorf("Evaluate(restored) = %v, want 3/4", v)
			}
		})
	}
}

func TestGetMissing(t *testing.T) {
	ctx := context.Background()
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "missing")
			if !pverrors.HasModuleCode(err, pverrors.CodeNotFound) {
				t.Errorf("Get() error = %v, want NOT_FOUND", err)
			}
			err = s.Delete(ctx, "missing")
			if !pverrors.HasModuleCode(err, pverrors.CodeNotFound) {
				t.Errorf("Delete() error = %v, want NOT_FOUND", err)
			}
		})
	}
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			for i, n := range []string{"a", "b", "c"} {
				snap := testSnapshot(t, n)
				snap.CreatedAt = base.Add(time.Duration(i) * time.Hour)
				if err := s.Save(ctx, snap); err != nil {
					t.Fatalf("Save() error = %v", err)
				}
			}

			snaps, err := s.List(ctx, 2)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(snaps) != 2 {
				t.Fatalf("List() returned %d snapshots, want 2", len(snaps))
			}
			if snaps[0].Name != "c" || snaps[1].Name != "b" {
				t.Errorf("List() = [%s %s], want [c b]", snaps[0].Name, snaps[1].Name)
			}
			if snaps[0].Document != nil {
				t.Error("List() returned documents")
			}
		})
	}
}

func TestResults(t *testing.T) {
	ctx := context.Background()
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			snap := testSnapshot(t, "model")
			if err := s.Save(ctx, snap); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			results := []*Result{
				{SnapshotID: snap.ID, Function: 1, Point: "p=1,q=2", Value: "2", Double: 2, Lo: 2, Hi: 2},
				{SnapshotID: snap.ID, Function: 0, Point: "p=-1", Value: "invalid", Double: math.NaN(), Lo: math.Inf(-1), Hi: math.Inf(1)},
			}
			for _, r := range results {
				if err := s.RecordResult(ctx, r); err != nil {
					t.Fatalf("RecordResult() error = %v", err)
				}
			}

			got, err := s.Results(ctx, snap.ID)
			if err != nil {
				t.Fatalf("Results() error = %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("Results() returned %d results, want 2", len(got))
			}
			if got[0].Function != 0 || got[0].Value != "invalid" {
				t.Errorf("Results()[0] = %+v", got[0])
			}
			if !math.IsNaN(got[0].Double) || !math.IsInf(got[0].Lo, -1) || !math.IsInf(got[0].Hi, 1) {
				t.Errorf("Results()[0] = (%v, %v, %v), want (NaN, -Inf, +Inf)", got[0].Double, got[0].Lo, got[0].Hi)
			}
			if got[1].Double != 2 {
				t.Errorf("Results()[1].Double = %v, want 2", got[1].Double)
			}

			st, err := s.Stats(ctx)
			if err != nil {
				t.Fatalf("Stats() error = %v", err)
			}
			if st.Snapshots != 1 || st.Results != 2 {
				t.Errorf("Stats() = %+v, want 1 snapshot, 2 results", st)
			}

			if err := s.Delete(ctx, snap.ID); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			got, err = s.Results(ctx, snap.ID)
			if err != nil {
				t.Fatalf("Results() error = %v", err)
			}
			if len(got) != 0 {
				t.Errorf("Results() after Delete returned %d results, want 0", len(got))
			}
		})
	}
}

func TestRecordResultUnknownSnapshot(t *testing.T) {
	ctx := context.Background()
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			err := s.RecordResult(ctx, &Result{SnapshotID: "missing", Point: "", Value: "0"})
			if err == nil {
				t.Error("RecordResult() expected error for unknown snapshot")
			}
		})
	}
}

func TestPrune(t *testing.T) {
	ctx := context.Background()
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			old := testSnapshot(t, "old")
			old.CreatedAt = time.Now().UTC().Add(-48 * time.Hour)
			fresh := testSnapshot(t, "fresh")
			for _, snap := range []*Snapshot{old, fresh} {
				if err := s.Save(ctx, snap); err != nil {
					t.Fatalf("Save() error = %v", err)
				}
			}

			n, err := s.Prune(ctx, 24*time.Hour)
			if err != nil {
				t.Fatalf("Prune() error = %v", err)
			}
			if n != 1 {
				t.Errorf("Prune() = %d, want 1", n)
			}
			if _, err := s.Get(ctx, fresh.ID); err != nil {
				t.Errorf("Get(fresh) error = %v", err)
			}
		})
	}
}
