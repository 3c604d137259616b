// ik-sandbox renders a mech walking over rolling terrain in the terminal, side view
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"runtime/debug"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lixenwraith/strider/audio"
	"github.com/lixenwraith/strider/config"
	"github.com/lixenwraith/strider/engine"
	"github.com/lixenwraith/strider/parameter"
	"github.com/lixenwraith/strider/system"
	"github.com/lixenwraith/strider/telemetry"
)

var (
	configFlag   = flag.String("config", "", "Rig config file (.toml, .yaml); empty uses the built-in quadruped")
	watchFlag    = flag.Bool("watch", false, "Reload the config file when it changes")
	debugFlag    = flag.Bool("debug", false, "Write logs to logs/ik-sandbox.log")
	metricsFlag  = flag.String("metrics", "", "Serve Prometheus metrics on this address, e.g. :9100")
	audioFlag    = flag.Bool("audio", false, "Play footfall sounds")
	parallelFlag = flag.Bool("parallel", false, "Solve legs concurrently")
)

func main() {
	flag.Parse()

	if logFile := setupLogging(*debugFlag); logFile != nil {
		defer logFile.Close()
	}

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ik-sandbox: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize terminal: %v\n", err)
		os.Exit(1)
	}

	// Panic recovery: restore the terminal before printing the crash
	defer func() {
		if r := recover(); r != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "\n\x1b[31mIK-SANDBOX CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	if err := run(screen, cfg); err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "ik-sandbox: %v\n", err)
		os.Exit(1)
	}
	screen.Fini()
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.Default()
		return cfg, config.Validate(cfg)
	}
	return config.Load(path)
}

// run owns the frame loop until the user quits
func run(screen tcell.Screen, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var observers []system.Observer
	var listeners []system.ContactListener

	if *metricsFlag != "" {
		reg := prometheus.NewRegistry()
		collector, err := telemetry.NewCollector(reg)
		if err != nil {
			return err
		}
		observers = append(observers, collector)

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: *metricsFlag, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("metrics: %v", err)
			}
		}()
		defer srv.Close()
		log.Printf("metrics: serving on %s", *metricsFlag)
	}

	if *audioFlag {
		audioCfg := audio.LoadConfig()
		audioCfg.Enabled = true
		player := audio.NewFootfallPlayer(audioCfg)
		if err := player.Start(); err != nil {
			log.Printf("audio: %v", err)
		} else {
			defer player.Stop()
			listeners = append(listeners, player)
		}
	}

	s, err := newScene(cfg, *parallelFlag, 0, 0)
	if err != nil {
		return err
	}
	attach := func(s *scene) {
		for _, o := range observers {
			s.ik.AddObserver(o)
		}
		for _, l := range listeners {
			s.ik.AddListener(l)
		}
	}
	attach(s)

	reloads := make(chan *config.Config, 1)
	if *watchFlag && *configFlag != "" {
		go func() {
			err := config.Watch(ctx, *configFlag, func(c *config.Config) {
				queueLatest(reloads, c)
			})
			if err != nil {
				log.Printf("config: watch stopped: %v", err)
			}
		}()
	}

	clock := engine.NewFrameClock(engine.NewSystemTimeProvider(), time.Duration(cfg.Solver.MaxDeltaTime*float64(time.Second)))

	eventChan := make(chan tcell.Event, 64)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	ticker := time.NewTicker(parameter.FrameUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case ev := <-eventChan:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
			case *tcell.EventKey:
				if !handleKey(ev, s, clock) {
					return nil
				}
			}

		case c := <-reloads:
			next, err := newScene(c, *parallelFlag, s.x, s.z)
			if err != nil {
				log.Printf("config: rebuild failed, keeping current rig: %v", err)
				continue
			}
			next.velocity = s.velocity
			next.ground.IsGrounded = s.ground.IsGrounded
			attach(next)
			s = next

		case <-ticker.C:
			s.step(clock.Tick())
			render(screen, s, clock.Paused())
		}
	}
}

// handleKey applies one key press, returns false on quit
func handleKey(ev *tcell.EventKey, s *scene, clock *engine.FrameClock) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyRight:
		s.walk(1)
	case tcell.KeyLeft:
		s.walk(-1)
	case tcell.KeyUp:
		s.shift(1)
	case tcell.KeyDown:
		s.shift(-1)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case 's':
			s.walk(0)
		case 'g':
			log.Printf("sandbox: grounded=%v", s.toggleGrounded())
		case ' ':
			clock.SetPaused(!clock.Paused())
		}
	}
	return true
}

// queueLatest puts c on a single-slot channel, replacing any config still waiting there
func queueLatest(ch chan *config.Config, c *config.Config) {
	for {
		select {
		case ch <- c:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
