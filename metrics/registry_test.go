package metrics

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
)

func TestCounter_IgnoresNonPositive(t *testing.T) {
	c := NewCounter("test.negatives")
	c.Add(10)
	c.Add(0)
	c.Add(-1)
	c.Add(-math.MaxInt64)
	if c.Value() != 10 {
		t.Fatalf("non-positive adds should be ignored: want 10, got %d", c.Value())
	}
}

func TestCounter_ConcurrentIncrement(t *testing.T) {
	c := NewCounter("test.conc_inc")
	const n = 10000
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			c.Inc()
		}()
	}
	wg.Wait()
	if c.Value() != n {
		t.Fatalf("concurrent Inc: want %d, got %d", n, c.Value())
	}
}

func TestGauge_SetOverwrite(t *testing.T) {
	g := NewGauge("test.overwrite")
	g.Set(100)
	g.Set(-50)
	if g.Value() != -50 {
		t.Fatalf("Set should overwrite: want -50, got %d", g.Value())
	}
	if g.Name() != "test.overwrite" {
		t.Fatalf("name: want %q, got %q", "test.overwrite", g.Name())
	}
}

func TestRegistry_Empty(t *testing.T) {
	r := NewRegistry()
	if snap := r.Snapshot(); len(snap) != 0 {
		t.Fatalf("empty registry snapshot: want 0 entries, got %d", len(snap))
	}
	if names := r.Names(); len(names) != 0 {
		t.Fatalf("empty registry names: got %v", names)
	}
}

func TestRegistry_SnapshotIsIsolated(t *testing.T) {
	r := NewRegistry()
	r.Counter("c").Add(5)
	snap := r.Snapshot()

	r.Counter("c").Add(10)
	if snap["c"] != 5 {
		t.Fatalf("snapshot should be isolated: want 5, got %d", snap["c"])
	}
	if got := r.Snapshot()["c"]; got != 15 {
		t.Fatalf("new snapshot: want 15, got %d", got)
	}
}

func TestRegistry_HighContentionGetOrCreate(t *testing.T) {
	r := NewRegistry()
	const goroutines = 200
	const names = 10

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			name := fmt.Sprintf("contended_%d", id%names)
			r.Counter(name).Inc()
			r.Gauge(name + ".g").Inc()
		}(i)
	}
	wg.Wait()

	for i := 0; i < names; i++ {
		name := fmt.Sprintf("contended_%d", i)
		if got := r.Counter(name).Value(); got != goroutines/names {
			t.Errorf("counter %s: want %d, got %d", name, goroutines/names, got)
		}
		if got := r.Gauge(name + ".g").Value(); got != goroutines/names {
			t.Errorf("gauge %s.g: want %d, got %d", name, goroutines/names, got)
		}
	}
}

func TestStandardMetrics_Names(t *testing.T) {
	expected := []string{
		"handler.commits",
		"handler.reveals",
		"handler.reverts",
		"handler.pause_toggles",
		"handler.open_secrets",
		"ledger.height",
		"ledger.calls",
	}
	snap := DefaultRegistry.Snapshot()
	for _, name := range expected {
		if _, ok := snap[name]; !ok {
			t.Errorf("standard metric %q not found in DefaultRegistry snapshot", name)
		}
	}
	for name := range snap {
		if !strings.Contains(name, ".") {
			t.Errorf("metric name %q does not follow dot convention", name)
		}
	}
}
