package audio

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/strider/parameter"
)

// constant is a full-scale DC streamer for checking gain shapes
func constant() beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{1, 1}
		}
		return len(samples), true
	})
}

func TestGlideRangeAndDrain(t *testing.T) {
	rate := beep.SampleRate(1000)
	g := newGlide(100, 50, 50*time.Millisecond, rate)

	samples := make([][2]float64, 80)
	n, ok := g.Stream(samples)
	if n != 50 || !ok {
		t.Fatalf("Expected 50 samples on partial read, got %d ok=%v", n, ok)
	}
	for i := 0; i < n; i++ {
		if math.Abs(samples[i][0]) > 1 || samples[i][0] != samples[i][1] {
			t.Fatalf("Sample %d invalid: %v", i, samples[i])
		}
	}

	if n, ok = g.Stream(samples); n != 0 || ok {
		t.Errorf("Expected drained glide, got %d ok=%v", n, ok)
	}
	if g.Err() != nil {
		t.Errorf("Expected no error, got %v", g.Err())
	}
}

func TestGlidePitchFalls(t *testing.T) {
	rate := beep.SampleRate(8000)
	g := newGlide(400, 100, time.Second, rate)

	buf := render(g, rate.N(time.Second))
	crossings := func(part floatBuffer) int {
		c := 0
		for i := 1; i < len(part); i++ {
			if (part[i-1] < 0) != (part[i] < 0) {
				c++
			}
		}
		return c
	}
	q := len(buf) / 4
	if first, last := crossings(buf[:q]), crossings(buf[3*q:]); first <= last {
		t.Errorf("Expected more zero crossings early (%d) than late (%d)", first, last)
	}
}

func TestDecayShape(t *testing.T) {
	rate := beep.SampleRate(1000)
	d := newDecay(constant(), 10*time.Millisecond, 40*time.Millisecond, 100*time.Millisecond, rate)

	samples := make([][2]float64, 150)
	n, _ := d.Stream(samples)
	if n != 100 {
		t.Fatalf("Expected cut at 100 samples, got %d", n)
	}

	if samples[0][0] != 0 {
		t.Errorf("Expected attack to start at 0, got %f", samples[0][0])
	}
	if math.Abs(samples[10][0]-1) > 1e-12 {
		t.Errorf("Expected full gain at the end of the attack, got %f", samples[10][0])
	}
	for i := 11; i < n; i++ {
		if samples[i][0] >= samples[i-1][0] {
			t.Fatalf("Expected monotone decay, sample %d = %f after %f", i, samples[i][0], samples[i-1][0])
		}
	}
	if want := math.Exp(-4); math.Abs(samples[50][0]-want) > 1e-9 {
		t.Errorf("Expected e^-4 one release after the attack, got %f", samples[50][0])
	}

	if n, ok := d.Stream(samples); n != 0 || ok {
		t.Errorf("Expected drained decay, got %d ok=%v", n, ok)
	}
}

func TestGritIsSeeded(t *testing.T) {
	a := render(beep.Take(64, grit(3)), 64)
	b := render(beep.Take(64, grit(3)), 64)
	c := render(beep.Take(64, grit(4)), 64)

	same, differs := true, false
	for i := range a {
		same = same && a[i] == b[i]
		differs = differs || a[i] != c[i]
		if math.Abs(a[i]) > 1 {
			t.Fatalf("Sample %d out of range: %f", i, a[i])
		}
	}
	if !same || !differs {
		t.Errorf("Expected equal seeds to match and different seeds to differ")
	}
}

func TestFootfallFrequency(t *testing.T) {
	seen := make(map[float64]bool)
	for leg := 0; leg < 4; leg++ {
		f := FootfallFrequency(leg)
		if seen[f] {
			t.Errorf("Leg %d shares pitch %f with another leg", leg, f)
		}
		seen[f] = true
	}
	if FootfallFrequency(0) != parameter.FootfallBaseFrequency {
		t.Errorf("Expected leg 0 at base frequency, got %f", FootfallFrequency(0))
	}
	if FootfallFrequency(-1) != FootfallFrequency(1) {
		t.Error("Expected negative leg index to mirror")
	}
}

func TestCreateFootfallSound(t *testing.T) {
	cfg := DefaultConfig()
	limit := beep.SampleRate(cfg.SampleRate).N(parameter.FootfallDuration)

	buf := render(CreateFootfallSound(cfg, 1, 1), limit)
	if len(buf) != limit {
		t.Fatalf("Expected %d samples, got %d", limit, len(buf))
	}

	peak := 0.0
	for _, v := range buf {
		peak = math.Max(peak, math.Abs(v))
	}
	if peak == 0 || peak > 1 {
		t.Errorf("Expected audible peak in (0, 1], got %f", peak)
	}

	// Same leg renders identically, the cache relies on it
	again := render(CreateFootfallSound(cfg, 1, 1), limit)
	for i := range buf {
		if buf[i] != again[i] {
			t.Fatalf("Expected deterministic render, sample %d differs", i)
		}
	}

	silent := render(CreateFootfallSound(cfg, 1, 0), limit)
	for i, v := range silent {
		if v != 0 {
			t.Fatalf("Zero strength should be silent, sample %d = %f", i, v)
		}
	}
}
