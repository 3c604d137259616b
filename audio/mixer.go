package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/strider/parameter"
)

// voice is one footfall being played back
type voice struct {
	buf floatBuffer
	pos int
	age uint64
}

func (v *voice) live() bool { return v.pos < len(v.buf) }

// Mixer sums up to AudioMaxVoices footfalls and writes s16le stereo to out at a fixed period
// Silence is written between footfalls so CLI players keep their stream open
type Mixer struct {
	out    io.Writer
	period time.Duration

	queue chan floatBuffer
	quit  chan struct{}
	done  chan struct{}
	errs  chan error

	startOnce sync.Once
	stopOnce  sync.Once
	started   atomic.Bool
	stopped   atomic.Bool

	played  atomic.Uint64
	dropped atomic.Uint64
	stolen  atomic.Uint64

	// Owned by the mix goroutine
	voices [parameter.AudioMaxVoices]voice
	clock  uint64
	frame  []float64
	pcm    []byte
}

// NewMixer creates a stopped mixer writing to out at sampleRate
func NewMixer(out io.Writer, sampleRate int) *Mixer {
	period := parameter.AudioBufferDuration
	n := int(int64(sampleRate) * int64(period) / int64(time.Second))
	return &Mixer{
		out:    out,
		period: period,
		queue:  make(chan floatBuffer, parameter.AudioQueueSize),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
		errs:   make(chan error, 1),
		frame:  make([]float64, n),
		pcm:    make([]byte, n*parameter.AudioBytesPerFrame),
	}
}

// Start launches the mix goroutine once
func (m *Mixer) Start() {
	m.startOnce.Do(func() {
		m.started.Store(true)
		go m.run()
	})
}

// Stop halts the mixer and waits for the goroutine; safe without Start and when repeated
func (m *Mixer) Stop() {
	m.stopOnce.Do(func() {
		m.stopped.Store(true)
		close(m.quit)
	})
	if m.started.Load() {
		<-m.done
	}
}

// Play queues a rendered footfall; it is counted as dropped when the queue is full
func (m *Mixer) Play(buf floatBuffer) {
	if len(buf) == 0 || m.stopped.Load() {
		return
	}
	select {
	case m.queue <- buf:
	default:
		m.dropped.Add(1)
	}
}

// Errors delivers at most one output failure, after which the mixer has stopped writing
func (m *Mixer) Errors() <-chan error {
	return m.errs
}

// Done is closed when the mix goroutine exits
func (m *Mixer) Done() <-chan struct{} {
	return m.done
}

// Stats returns played, dropped (queue full) and stolen (voice replaced early) counts
func (m *Mixer) Stats() (played, dropped, stolen uint64) {
	return m.played.Load(), m.dropped.Load(), m.stolen.Load()
}

func (m *Mixer) run() {
	defer close(m.done)

	tick := time.NewTicker(m.period)
	defer tick.Stop()

	for {
		select {
		case <-m.quit:
			return
		case buf := <-m.queue:
			m.assign(buf)
		case <-tick.C:
			m.mix()
			encodePCM(m.frame, m.pcm)
			if _, err := m.out.Write(m.pcm); err != nil {
				m.errs <- fmt.Errorf("%w: %v", ErrPipeClosed, err)
				return
			}
		}
	}
}

// assign places buf in a free voice, or replaces the oldest one
func (m *Mixer) assign(buf floatBuffer) {
	m.clock++
	slot := 0
	for i := range m.voices {
		if !m.voices[i].live() {
			slot = i
			break
		}
		if m.voices[i].age < m.voices[slot].age {
			slot = i
		}
	}
	if m.voices[slot].live() {
		m.stolen.Add(1)
	}
	m.voices[slot] = voice{buf: buf, age: m.clock}
	m.played.Add(1)
}

// mix fills the frame with the sum of every live voice
func (m *Mixer) mix() {
	clear(m.frame)
	for i := range m.voices {
		v := &m.voices[i]
		if !v.live() {
			continue
		}
		n := copyAdd(m.frame, v.buf[v.pos:])
		v.pos += n
	}
}

func copyAdd(dst, src []float64) int {
	n := min(len(dst), len(src))
	for i := 0; i < n; i++ {
		dst[i] += src[i]
	}
	return n
}

// encodePCM writes mono float samples as interleaved s16le stereo
// Summed voices are soft clipped with tanh so overlapping footfalls saturate instead of wrapping
func encodePCM(in []float64, out []byte) {
	for i, v := range in {
		s := int16(math.Round(math.Tanh(v) * math.MaxInt16))
		binary.LittleEndian.PutUint16(out[4*i:], uint16(s))
		binary.LittleEndian.PutUint16(out[4*i+2:], uint16(s))
	}
}
