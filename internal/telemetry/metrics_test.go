package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetGauge().GetValue()
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestCollectorSetCounts(t *testing.T) {
	c := NewCollector("test")
	c.SetCounts(3, 2, 1)

	if got := gaugeValue(t, c.AliveBots); got != 3 {
		t.Fatalf("alive = %v, want 3", got)
	}
	if got := gaugeValue(t, c.QueuedBots); got != 2 {
		t.Fatalf("queued = %v, want 2", got)
	}
	if got := gaugeValue(t, c.DeadBots); got != 1 {
		t.Fatalf("dead = %v, want 1", got)
	}
}

func TestCollectorRecordKills(t *testing.T) {
	c := NewCollector("test")
	c.RecordKills(2)
	c.RecordKills(0)
	c.RecordKills(-1)

	if got := counterValue(t, c.BotsKilled); got != 2 {
		t.Fatalf("killed = %v, want 2", got)
	}
}

func TestCollectorMustRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector("test")
	c.MustRegister(reg)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected at least one registered metric family")
	}
}

func TestCollectorObserveTick(t *testing.T) {
	c := NewCollector("test")
	c.ObserveTick(50 * time.Millisecond)

	var m dto.Metric
	if err := c.TickDuration.(prometheus.Histogram).Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := m.GetHistogram().GetSampleCount(); got != 1 {
		t.Fatalf("sample count = %v, want 1", got)
	}
}
