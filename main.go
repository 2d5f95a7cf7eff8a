package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmehl/quaver/internal/cli"
	"github.com/lmehl/quaver/internal/config"
	"github.com/lmehl/quaver/internal/engine"
	"github.com/lmehl/quaver/internal/event"
	"github.com/lmehl/quaver/internal/library"
	"github.com/lmehl/quaver/internal/logging"
	"github.com/lmehl/quaver/internal/player"
	"github.com/lmehl/quaver/internal/playlist"
	"github.com/lmehl/quaver/internal/source"
	"github.com/lmehl/quaver/internal/source/mpris"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "quaver: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logging.New(cfg)
	log.Info().Msg("starting")

	bus := event.NewBus(log)
	eng := engine.New(cfg.DefaultVolume)
	reg := source.NewRegistry(bus, log)

	reg.Register(source.LocalName, func() (source.Source, error) {
		return source.NewLocal(eng), nil
	})
	for name, spec := range cfg.Mpris {
		name, busName := name, spec.BusName
		reg.Register(name, func() (source.Source, error) {
			return mpris.New(name, busName, log)
		})
	}
	if err := reg.Enable(source.LocalName); err != nil {
		return fmt.Errorf("enable local source: %w", err)
	}
	for _, name := range cfg.EnabledSources {
		if err := reg.Enable(name); err != nil {
			log.Warn().Err(err).Str("source", name).Msg("could not enable source")
		}
	}

	list := playlist.New()
	if len(cfg.LibrarySources) > 0 {
		tracks := library.Scan(cfg.LibrarySources, library.SortMode(cfg.SortMode),
			time.Now().UnixNano(), log)
		list.Add(tracks...)
		log.Info().Int("tracks", len(tracks)).Msg("library scanned")
	}

	p := player.New(eng, reg, bus, list, cfg.WatchdogInterval(), log)
	if cfg.Shuffle {
		p.Navigator().SetShuffle(true)
	}
	p.Start()

	// Ctrl-C tears down the same way quit does.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			p.Shutdown()
			os.Exit(0)
		case <-done:
		}
	}()

	fmt.Printf("quaver - %d tracks loaded, type help for commands\n", list.Len())
	err = cli.New(p, bus, cfg.PlaylistsDir, os.Stdin, os.Stdout, log).Run()
	close(done)

	p.Shutdown()
	return err
}
