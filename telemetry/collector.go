// Package telemetry exports solver frame stats as Prometheus metrics
package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lixenwraith/strider/system"
)

const namespace = "strider"

// Collector records FrameStats into Prometheus metrics
type Collector struct {
	bodyDrop     prometheus.Gauge
	groundedLegs prometheus.Gauge
	frames       prometheus.Counter
	clamped      prometheus.Counter
	solveSeconds prometheus.Histogram
}

var _ system.Observer = (*Collector)(nil)

// NewCollector creates the metrics and registers them on reg
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		bodyDrop: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "body_drop",
			Help:      "Vertical body offset published by the last frame",
		}),
		groundedLegs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "grounded_legs",
			Help:      "Legs planted on the ground in the last frame",
		}),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Solver frames advanced",
		}),
		clamped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reach_clamped_total",
			Help:      "Limb solves whose target was pulled into the reachable range",
		}),
		solveSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "solve_seconds",
			Help:      "Wall time of one Advance call",
			Buckets:   []float64{1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 5e-4, 1e-3, 5e-3, 0.01},
		}),
	}

	for _, m := range []prometheus.Collector{c.bodyDrop, c.groundedLegs, c.frames, c.clamped, c.solveSeconds} {
		if err := reg.Register(m); err != nil {
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}
	return c, nil
}

// ObserveFrame records one frame
func (c *Collector) ObserveFrame(stats system.FrameStats) {
	c.bodyDrop.Set(stats.Drop)
	c.groundedLegs.Set(float64(stats.GroundedLegs))
	c.frames.Inc()
	c.clamped.Add(float64(stats.ClampedLegs))
	c.solveSeconds.Observe(stats.Duration.Seconds())
}
