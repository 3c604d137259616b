package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/lixenwraith/strider/parameter"
)

// glide is a sine whose pitch slides linearly from one frequency to another over its length
type glide struct {
	from, to float64
	rate     float64
	phase    float64
	pos, n   int
}

// newGlide creates a pitch glide lasting d
func newGlide(from, to float64, d time.Duration, rate beep.SampleRate) *glide {
	return &glide{from: from, to: to, rate: float64(rate), n: rate.N(d)}
}

func (g *glide) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if g.pos >= g.n {
			return i, i > 0
		}
		v := math.Sin(2 * math.Pi * g.phase)
		samples[i] = [2]float64{v, v}

		freq := g.from + (g.to-g.from)*float64(g.pos)/float64(g.n)
		g.phase += freq / g.rate
		g.phase -= math.Floor(g.phase)
		g.pos++
	}
	return len(samples), true
}

func (g *glide) Err() error { return nil }

// grit is endless white noise from a fixed seed, so each leg's click is reproducible
func grit(seed int64) beep.Streamer {
	rng := rand.New(rand.NewSource(seed))
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			v := rng.Float64()*2 - 1
			samples[i] = [2]float64{v, v}
		}
		return len(samples), true
	})
}

// decay ramps in linearly over attack, then falls exponentially and cuts off at length
type decay struct {
	s      beep.Streamer
	attack int
	length int
	tau    float64 // Samples per e-fold
	pos    int
}

// newDecay shapes s so it is near silent (e^-4) once release has elapsed after the attack
func newDecay(s beep.Streamer, attack, release, length time.Duration, rate beep.SampleRate) beep.Streamer {
	return &decay{
		s:      s,
		attack: rate.N(attack),
		length: rate.N(length),
		tau:    math.Max(1, float64(rate.N(release))/4),
	}
}

func (d *decay) Stream(samples [][2]float64) (int, bool) {
	left := d.length - d.pos
	if left <= 0 {
		return 0, false
	}
	if len(samples) > left {
		samples = samples[:left]
	}

	n, ok := d.s.Stream(samples)
	for i := 0; i < n; i++ {
		gain := math.Exp(-float64(d.pos-d.attack) / d.tau)
		if d.pos < d.attack {
			gain = float64(d.pos) / float64(d.attack)
		}
		samples[i][0] *= gain
		samples[i][1] *= gain
		d.pos++
	}
	return n, ok
}

func (d *decay) Err() error { return d.s.Err() }

// newVolume wraps s in a linear gain; math.Log2(0) is -Inf so zero gain maps to silent
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// FootfallFrequency returns the starting thump pitch of a leg, spread so neighbouring legs are distinguishable
func FootfallFrequency(leg int) float64 {
	if leg < 0 {
		leg = -leg
	}
	return parameter.FootfallBaseFrequency + parameter.FootfallFrequencySpread*float64(leg%4)
}

// CreateFootfallSound builds one planted foot: a downward pitch glide for the weight landing
// plus a short noise click for the sole. strength in [0, 1] scales the gain
func CreateFootfallSound(cfg *Config, leg int, strength float64) beep.Streamer {
	rate := beep.SampleRate(cfg.SampleRate)
	strength = math.Max(0, math.Min(1, strength))

	f := FootfallFrequency(leg)
	weight := newDecay(
		newGlide(f, f*parameter.FootfallPitchDrop, parameter.FootfallDuration, rate),
		parameter.FootfallAttack, parameter.FootfallRelease, parameter.FootfallDuration, rate,
	)

	clickLen := parameter.FootfallDuration / 6
	click := newDecay(grit(int64(leg)+1), 0, clickLen/2, clickLen, rate)

	body := beep.Mix(
		newVolume(weight, 1-parameter.FootfallClickLevel),
		newVolume(click, parameter.FootfallClickLevel),
	)
	return newVolume(body, cfg.MasterVolume*strength)
}

// render drains s into a mono buffer averaging both channels, stopping at limit samples
func render(s beep.Streamer, limit int) floatBuffer {
	out := make(floatBuffer, 0, limit)
	chunk := make([][2]float64, 512)
	for len(out) < limit {
		if rest := limit - len(out); rest < len(chunk) {
			chunk = chunk[:rest]
		}
		n, ok := s.Stream(chunk)
		for i := 0; i < n; i++ {
			out = append(out, (chunk[i][0]+chunk[i][1])/2)
		}
		if !ok || n == 0 {
			break
		}
	}
	return out
}
