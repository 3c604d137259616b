package audio

import (
	"io"
	"log"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/strider/component"
	"github.com/lixenwraith/strider/parameter"
	"github.com/lixenwraith/strider/system"
)

// FootfallPlayer turns leg touchdowns into thumps piped to a CLI audio player
// Without a usable output it stays running but silent, and contact events are ignored
type FootfallPlayer struct {
	config *Config

	mu    sync.Mutex // Protects cache
	cache map[int]floatBuffer

	mixer *Mixer
	sink  io.Closer
	cmd   *exec.Cmd

	running atomic.Bool
	muted   atomic.Bool
	silent  atomic.Bool

	wg sync.WaitGroup
}

var _ system.ContactListener = (*FootfallPlayer)(nil)

// NewFootfallPlayer creates a stopped player, muted unless cfg enables it; nil cfg uses DefaultConfig
func NewFootfallPlayer(cfg *Config) *FootfallPlayer {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	p := &FootfallPlayer{
		config: cfg,
		cache:  make(map[int]floatBuffer),
	}
	p.muted.Store(!cfg.Enabled)
	return p
}

// Start finds an output and starts mixing; a missing or failing output only logs and goes silent
func (p *FootfallPlayer) Start() error {
	if p.running.Load() {
		return ErrRunning
	}

	backend, err := DetectBackend(p.config.SampleRate)
	if err != nil {
		p.goSilent("%v", err)
		return nil
	}
	sink, cmd, err := openSink(backend)
	if err != nil {
		p.goSilent("open %s: %v", backend.Name, err)
		return nil
	}

	p.sink, p.cmd = sink, cmd
	if cmd != nil {
		p.wg.Add(1)
		go p.waitBackend()
	}

	log.Printf("audio: footfalls via %s at %d Hz", backend.Name, p.config.SampleRate)
	p.StartWriter(sink)
	return nil
}

// openSink starts the player command with a stdin pipe, or opens the OSS device directly
func openSink(b *BackendConfig) (io.WriteCloser, *exec.Cmd, error) {
	if b.Type == BackendOSS {
		f, err := os.OpenFile(b.Path, os.O_WRONLY, 0)
		if err != nil {
			return nil, nil, err
		}
		return f, nil, nil
	}

	cmd := exec.Command(b.Path, b.Args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, err
	}
	if err := cmd.Start(); err != nil {
		stdin.Close()
		return nil, nil, err
	}
	return stdin, cmd, nil
}

func (p *FootfallPlayer) goSilent(format string, args ...any) {
	log.Printf("audio: "+format+", footfalls disabled", args...)
	p.silent.Store(true)
	p.running.Store(true)
}

// StartWriter mixes into w directly, skipping backend detection
func (p *FootfallPlayer) StartWriter(w io.Writer) {
	p.mixer = NewMixer(w, p.config.SampleRate)
	p.mixer.Start()

	p.wg.Add(1)
	go p.watchMixer()

	p.running.Store(true)
}

func (p *FootfallPlayer) waitBackend() {
	defer p.wg.Done()
	if err := p.cmd.Wait(); err != nil && p.running.Load() && !p.silent.Load() {
		log.Printf("audio: player exited: %v", err)
		p.silent.Store(true)
	}
}

func (p *FootfallPlayer) watchMixer() {
	defer p.wg.Done()
	select {
	case err := <-p.mixer.Errors():
		log.Printf("audio: %v", err)
		p.silent.Store(true)
	case <-p.mixer.Done():
	}
}

// Stop shuts down the mixer and output; repeated calls are no-ops
func (p *FootfallPlayer) Stop() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}

	if p.mixer != nil {
		p.mixer.Stop()
	}
	if p.sink != nil {
		p.sink.Close()
	}
	if p.cmd != nil && p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}
	p.wg.Wait()
}

// OnContact plays a thump when a leg touches down; lift-offs are silent
func (p *FootfallPlayer) OnContact(ev system.ContactEvent) {
	if ev.Phase == component.LegGrounded {
		p.Play(ev.Leg)
	}
}

// Play queues the footfall of leg, false when muted, silent or not started
func (p *FootfallPlayer) Play(leg int) bool {
	if !p.IsEnabled() || p.mixer == nil {
		return false
	}
	p.mixer.Play(p.footfall(leg))
	return true
}

// footfall renders each leg's sound once at full strength
func (p *FootfallPlayer) footfall(leg int) floatBuffer {
	p.mu.Lock()
	defer p.mu.Unlock()

	buf, ok := p.cache[leg]
	if !ok {
		n := beep.SampleRate(p.config.SampleRate).N(parameter.FootfallDuration)
		buf = render(CreateFootfallSound(p.config, leg, 1), n)
		p.cache[leg] = buf
	}
	return buf
}

// ToggleMute flips mute, returns true when now audible
func (p *FootfallPlayer) ToggleMute() bool {
	muted := !p.muted.Load()
	p.muted.Store(muted)
	return !muted
}

// IsMuted reports the mute flag
func (p *FootfallPlayer) IsMuted() bool {
	return p.muted.Load()
}

// IsEnabled reports whether footfalls are currently audible
func (p *FootfallPlayer) IsEnabled() bool {
	return p.running.Load() && !p.muted.Load() && !p.silent.Load()
}

// IsRunning reports whether Start or StartWriter ran, silent or not
func (p *FootfallPlayer) IsRunning() bool {
	return p.running.Load()
}

// Stats returns the mixer's played, dropped and stolen footfall counts
func (p *FootfallPlayer) Stats() (played, dropped, stolen uint64) {
	if p.mixer == nil {
		return 0, 0, 0
	}
	return p.mixer.Stats()
}
