package player

import (
	"time"

	"github.com/rs/zerolog"
)

// DefaultWatchdogInterval is how often the watchdog polls the engine
// for natural end-of-track.
const DefaultWatchdogInterval = 100 * time.Millisecond

// Watchdog runs a check function on a fixed interval in its own
// goroutine. A panicking check is recovered and logged so one bad tick
// cannot kill auto-advance for the rest of the session.
type Watchdog struct {
	interval time.Duration
	check    func()
	stopCh   chan struct{}
	done     chan struct{}
	log      zerolog.Logger
}

// NewWatchdog creates a watchdog; Start must be called to run it.
// A non-positive interval falls back to the default.
func NewWatchdog(interval time.Duration, check func(), log zerolog.Logger) *Watchdog {
	if interval <= 0 {
		interval = DefaultWatchdogInterval
	}
	return &Watchdog{
		interval: interval,
		check:    check,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
		log:      log.With().Str("component", "watchdog").Logger(),
	}
}

// Start launches the polling loop.
func (w *Watchdog) Start() {
	go w.loop()
}

func (w *Watchdog) loop() {
	defer close(w.done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.tick()
		}
	}
}

func (w *Watchdog) tick() {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error().Interface("panic", r).Msg("watchdog check panicked")
		}
	}()
	w.check()
}

// Stop asks the loop to exit and waits up to timeout for it. Returns
// false if the loop did not confirm in time; shutdown proceeds anyway.
func (w *Watchdog) Stop(timeout time.Duration) bool {
	select {
	case <-w.stopCh:
		// already stopped
	default:
		close(w.stopCh)
	}

	select {
	case <-w.done:
		return true
	case <-time.After(timeout):
		w.log.Warn().Dur("timeout", timeout).Msg("watchdog did not stop in time")
		return false
	}
}
