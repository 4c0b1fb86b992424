package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/docopt/docopt-go"
	"github.com/golang/glog"

	"go-ringbridge/config"
	"go-ringbridge/fakedaw"
	"go-ringbridge/ring"
	"go-ringbridge/surface/midisurface"
	"go-ringbridge/surface/wsrelay"
)

const LocalVersion = "0.0.0-local"

func main() {
	usage := `ringbridge.

Usage:
    ringbridge run [--fake] [--config=<path>] [--midi] [--ws] [--ws-addr=<addr>]
    ringbridge -h | --help

Options:
    -h --help           Show this screen.
    --version            Show version.
    --fake               Run against the in-memory fake DAW (always used; no live DAW binding is built in).
    --config=<path>      Path to config.json (default: ~/.config/ringbridge/config.json).
    --midi               Force-enable the MIDI grid-controller surface.
    --ws                 Force-enable the WebSocket relay surface.
    --ws-addr=<addr>     Override the WebSocket relay listen address.`

	opts, err := docopt.ParseArgs(usage, os.Args[1:], LocalVersion)
	if err != nil {
		panic(err)
	}

	if run_, _ := opts.Bool("run"); run_ {
		run(opts)
	}
}

func run(opts docopt.Opts) {
	var cfg *config.Config
	var err error
	if pathAny := opts["--config"]; pathAny != nil {
		cfg, err = config.LoadFrom(pathAny.(string))
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		glog.Errorf("ringbridge: load config: %v", err)
		cfg = config.DefaultConfig()
	}

	if enable, _ := opts.Bool("--midi"); enable {
		cfg.MIDISurface.Enabled = true
	}
	if enable, _ := opts.Bool("--ws"); enable {
		cfg.WSRelay.Enabled = true
	}
	if addrAny := opts["--ws-addr"]; addrAny != nil {
		cfg.WSRelay.Addr = addrAny.(string)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	song, teardown := buildSong(opts)
	defer teardown()

	manager := ring.NewManager(song, nil)
	manager.Init()
	manager.SetupRing(cfg.Ring.Width, cfg.Ring.Scenes, 0, 0)

	sinks := wireSinks(ctx, cfg, manager)
	manager.SetSink(sinks)

	glog.Infof("ringbridge: running (fake=%v midi=%v ws=%v)", opts["--fake"], cfg.MIDISurface.Enabled, cfg.WSRelay.Enabled)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	glog.Infof("ringbridge: shutting down")
	manager.Destroy()
}

func buildSong(opts docopt.Opts) (song *fakedaw.Song, teardown func()) {
	// A live DAW binding (the DAW-side injection script talking back to
	// this process) is a separate collaborator this repository doesn't
	// implement, so the fake DAW is used whether or not --fake is given.
	s := fakedaw.NewSong()
	seedDemoTracks(s)
	return s, s.Close
}

// seedDemoTracks populates the fake DAW with enough tracks to exercise the
// ring window and focus machinery without any external input.
func seedDemoTracks(s *fakedaw.Song) {
	for i := 0; i < 16; i++ {
		s.AddTrack(fmt.Sprintf("Track %d", i+1), i%4 == 0)
	}
	s.AddReturnTrack("Reverb")
	s.AddReturnTrack("Delay")
	s.SetMasterTrack("Master")
}

// wireSinks starts whichever surfaces are configured and returns a single
// ring.Sink fanning every event out to all of them.
func wireSinks(ctx context.Context, cfg *config.Config, manager *ring.Manager) ring.Sink {
	var sinks []ring.Sink

	if cfg.MIDISurface.Enabled {
		sinks = append(sinks, wireMIDISurface(ctx, manager))
	}

	if cfg.WSRelay.Enabled {
		sinks = append(sinks, wireWSRelay(ctx, cfg, manager))
	}

	return func(e ring.Event) {
		for _, sink := range sinks {
			sink(e)
		}
	}
}

func wireMIDISurface(ctx context.Context, manager *ring.Manager) ring.Sink {
	devices := midisurface.NewDeviceWatcher()
	go devices.Run(ctx)

	bridge := midisurface.NewBridge(manager)
	go func() {
		for ev := range devices.Events() {
			switch ev.Type {
			case midisurface.DeviceConnected:
				glog.Infof("ringbridge: midi surface connected: %s", ev.ID)
				if ev.Controller.Type() == midisurface.ControllerLaunchpad {
					bridge.Attach(ctx, ev.Controller)
				}
			case midisurface.DeviceDisconnected:
				glog.Infof("ringbridge: midi surface disconnected: %s", ev.ID)
			}
		}
	}()

	return bridge.RenderEvent
}

func wireWSRelay(ctx context.Context, cfg *config.Config, manager *ring.Manager) ring.Sink {
	server := wsrelay.NewServer(manager)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		server.ServeHTTP(ctx, w, r)
	})

	httpServer := &http.Server{Addr: cfg.WSRelay.Addr, Handler: mux}
	go func() {
		glog.Infof("ringbridge: ws relay listening on %s", cfg.WSRelay.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			glog.Errorf("ringbridge: ws relay: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		httpServer.Close()
	}()

	return server.Sink()
}
