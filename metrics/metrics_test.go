package metrics

import (
	"sync"
	"testing"
)

func TestCounter(t *testing.T) {
	c := NewCounter("c")
	c.Inc()
	c.Add(4)
	c.Add(-3)
	if c.Value() != 5 {
		t.Errorf("Value() = %d, want 5", c.Value())
	}
	if c.Name() != "c" {
		t.Errorf("Name() = %q, want %q", c.Name(), "c")
	}
}

func TestGauge(t *testing.T) {
	g := NewGauge("g")
	g.Set(10)
	g.Inc()
	g.Dec()
	g.Dec()
	if g.Value() != 9 {
		t.Errorf("Value() = %d, want 9", g.Value())
	}
}

func TestRegistryGetOrCreate(t *testing.T) {
	r := NewRegistry()
	if r.Counter("a") != r.Counter("a") {
		t.Error("Counter should return the same instance for the same name")
	}
	if r.Gauge("b") != r.Gauge("b") {
		t.Error("Gauge should return the same instance for the same name")
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Counter("shared").Inc()
		}()
	}
	wg.Wait()
	if got := r.Counter("shared").Value(); got != 16 {
		t.Errorf("shared counter = %d, want 16", got)
	}
}

func TestRegistrySnapshot(t *testing.T) {
	r := NewRegistry()
	r.Counter("x").Add(2)
	r.Gauge("y").Set(-1)

	snap := r.Snapshot()
	if snap["x"] != 2 || snap["y"] != -1 {
		t.Errorf("Snapshot() = %v", snap)
	}
	names := r.Names()
	if len(names) != 2 || names[0] != "x" || names[1] != "y" {
		t.Errorf("Names() = %v, want [x y]", names)
	}
}
