package cache

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := New(Config{MaxItems: 10})
	c.Set("a", 1)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %v, %v, want 1, true", v, ok)
	}
	if _, ok := c.Get("b"); ok {
		t.Error("Get(b) should miss")
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Size != 1 {
		t.Errorf("Stats() = %+v", stats)
	}
	if stats.HitRate() != 50 {
		t.Errorf("HitRate() = %v, want 50", stats.HitRate())
	}
}

func TestEvictsOldestInsert(t *testing.T) {
	c := New(Config{MaxItems: 2})
	c.Set("first", 1)
	c.Set("second", 2)
	c.Set("first", 10)
	c.Set("third", 3)

	if _, ok := c.Get("second"); ok {
		t.Error("second should have been evicted")
	}
	if v, ok := c.Get("first"); !ok || v != 10 {
		t.Errorf("Get(first) = %v, %v, want 10", v, ok)
	}
	if c.Stats().Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", c.Stats().Evictions)
	}
}

func TestTTLExpiry(t *testing.T) {
	c := New(Config{MaxItems: 4})
	c.SetWithTTL("short", 1, time.Nanosecond)
	time.Sleep(time.Millisecond)

	if _, ok := c.Get("short"); ok {
		t.Error("expired entry was returned")
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d, want 0", c.Size())
	}
}

func TestGetOrSet(t *testing.T) {
	c := New(DefaultConfig())
	calls := 0
	fn := func() (interface{}, error) {
		calls++
		return "value", nil
	}

	for i := 0; i < 3; i++ {
		if v, err := c.GetOrSet("k", fn); err != nil || v != "value" {
			t.Fatalf("GetOrSet() = %v, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}

	boom := errors.New("boom")
	if _, err := c.GetOrSet("bad", func() (interface{}, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Errorf("GetOrSet() error = %v, want boom", err)
	}
	if _, ok := c.Get("bad"); ok {
		t.Error("failed computation was stored")
	}
}

func TestKey(t *testing.T) {
	if got := Key("x+1", "x"); got != "x+1\x1fx" {
		t.Errorf("Key() = %q", got)
	}
	long := Key(strings.Repeat("x", 200))
	if !strings.HasPrefix(long, "sha256:") || len(long) != len("sha256:")+64 {
		t.Errorf("Key(long) = %q", long)
	}
	if Key("a", "bc") == Key("ab", "c") {
		t.Error("Key() collides on part boundaries")
	}
}
