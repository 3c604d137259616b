package telemetry

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/lixenwraith/strider/system"
)

func TestCollectorObserveFrame(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector() error = %v", err)
	}

	c.ObserveFrame(system.FrameStats{Frame: 1, Drop: 0.25, GroundedLegs: 3, ClampedLegs: 1, Duration: 40 * time.Microsecond})
	c.ObserveFrame(system.FrameStats{Frame: 2, Drop: -0.1, GroundedLegs: 4, ClampedLegs: 2, Duration: 60 * time.Microsecond})

	if got := testutil.ToFloat64(c.bodyDrop); got != -0.1 {
		t.Errorf("body_drop = %v, want -0.1", got)
	}
	if got := testutil.ToFloat64(c.groundedLegs); got != 4 {
		t.Errorf("grounded_legs = %v, want 4", got)
	}
	if got := testutil.ToFloat64(c.frames); got != 2 {
		t.Errorf("frames_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.clamped); got != 3 {
		t.Errorf("reach_clamped_total = %v, want 3", got)
	}

	expected := `
# HELP strider_frames_total Solver frames advanced
# TYPE strider_frames_total counter
strider_frames_total 2
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "strider_frames_total"); err != nil {
		t.Errorf("GatherAndCompare() error = %v", err)
	}

	if n := testutil.CollectAndCount(c.solveSeconds); n != 1 {
		t.Errorf("solve_seconds series = %d, want 1", n)
	}
}

func TestCollectorDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewCollector(reg); err != nil {
		t.Fatalf("first NewCollector() error = %v", err)
	}
	if _, err := NewCollector(reg); err == nil {
		t.Error("second NewCollector() on same registry should fail")
	}
}
