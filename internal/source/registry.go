package source

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/lmehl/quaver/internal/event"
)

// ErrNotFound is returned when an operation targets a source that is
// not loaded.
var ErrNotFound = errors.New("source not found")

// Factory instantiates a source. Factories are registered at startup;
// a registered factory makes the source "available" without loading it.
type Factory func() (Source, error)

// FailoverFunc forces playback back to the named fallback source before
// a source is torn down. Wired to the orchestrator at startup; the
// registry only knows this narrow callback, not the orchestrator.
type FailoverFunc func(fallback string) error

// Status describes one source for display.
type Status struct {
	Name         string
	Available    bool
	Enabled      bool
	Loaded       bool
	Capabilities Capability
}

type entry struct {
	src  Source
	caps Capability
	subs []event.Subscription
}

// Registry owns all sources by name. "Available" sources have a
// registered factory; "enabled/loaded" sources are instantiated,
// subscribed to the bus and controllable.
type Registry struct {
	mu        sync.Mutex
	factories map[string]Factory
	loaded    map[string]*entry
	enabled   map[string]bool

	bus      *event.Bus
	log      zerolog.Logger
	failover FailoverFunc
}

// NewRegistry creates an empty registry publishing through the given
// bus.
func NewRegistry(bus *event.Bus, log zerolog.Logger) *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		loaded:    make(map[string]*entry),
		enabled:   make(map[string]bool),
		bus:       bus,
		log:       log.With().Str("component", "registry").Logger(),
	}
}

// SetFailover installs the orchestrator callback used when the active
// source is being disabled.
func (r *Registry) SetFailover(fn FailoverFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failover = fn
}

// Register makes a source available without loading it.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Enable instantiates an available source, caches its capability mask
// and bridges its optional event hooks onto the bus.
func (r *Registry) Enable(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.loaded[name]; ok {
		r.enabled[name] = true
		return nil
	}
	f, ok := r.factories[name]
	if !ok {
		return fmt.Errorf("enable %s: %w", name, ErrNotFound)
	}

	src, err := f()
	if err != nil {
		return fmt.Errorf("enable %s: %w", name, err)
	}

	e := &entry{src: src, caps: src.Capabilities()}
	e.subs = r.bridgeHooks(src)
	r.loaded[name] = e
	r.enabled[name] = true

	r.log.Info().Str("source", name).Stringer("capabilities", e.caps).Msg("source enabled")
	return nil
}

// bridgeHooks inspects the source once for optional listener interfaces
// and subscribes a bus handler per implemented hook.
func (r *Registry) bridgeHooks(src Source) []event.Subscription {
	var subs []event.Subscription
	if l, ok := src.(StateListener); ok {
		subs = append(subs, r.bus.Subscribe(event.StateChanged, func(e event.Event) {
			if p, ok := e.Data.(event.StateChange); ok {
				l.OnStateChanged(p.Previous, p.New, p.Source)
			}
		}))
	}
	if l, ok := src.(TrackListener); ok {
		subs = append(subs, r.bus.Subscribe(event.TrackChanged, func(e event.Event) {
			if p, ok := e.Data.(event.TrackChange); ok {
				l.OnTrackChanged(p.Previous, p.New)
			}
		}))
	}
	if l, ok := src.(SourceListener); ok {
		subs = append(subs, r.bus.Subscribe(event.SourceChanged, func(e event.Event) {
			if p, ok := e.Data.(event.SourceChange); ok {
				l.OnSourceChanged(p.Previous, p.New)
			}
		}))
	}
	if l, ok := src.(VolumeListener); ok {
		subs = append(subs, r.bus.Subscribe(event.VolumeChanged, func(e event.Event) {
			if p, ok := e.Data.(event.VolumeChange); ok {
				l.OnVolumeChanged(p.Previous, p.New)
			}
		}))
	}
	return subs
}

// Disable tears a loaded source down in order: fail playback over to
// the fallback source if this one is active, drop its bus
// subscriptions, notify it of shutdown, then remove it from the loaded
// set. The factory stays registered, so the source remains available.
func (r *Registry) Disable(name, fallback string) error {
	r.mu.Lock()
	e, ok := r.loaded[name]
	failover := r.failover
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("disable %s: %w", name, ErrNotFound)
	}

	// Failover runs outside the registry lock: the orchestrator will
	// call back into Get while switching away from this source.
	if failover != nil {
		if err := failover(fallback); err != nil {
			r.log.Warn().Err(err).Str("source", name).Msg("failover before disable failed")
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range e.subs {
		r.bus.Unsubscribe(sub)
	}
	if e.caps.Has(CapShutdown) {
		if err := e.src.Shutdown(); err != nil {
			r.log.Warn().Err(err).Str("source", name).Msg("source shutdown reported error")
		}
	}
	delete(r.loaded, name)
	r.enabled[name] = false

	r.log.Info().Str("source", name).Msg("source disabled")
	return nil
}

// Get returns a loaded source by name.
func (r *Registry) Get(name string) (Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.loaded[name]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", name, ErrNotFound)
	}
	return e.src, nil
}

// Capabilities returns the cached capability mask for a loaded source.
func (r *Registry) Capabilities(name string) (Capability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.loaded[name]
	if !ok {
		return 0, fmt.Errorf("capabilities %s: %w", name, ErrNotFound)
	}
	return e.caps, nil
}

// IsLoaded reports whether the named source is instantiated.
func (r *Registry) IsLoaded(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.loaded[name]
	return ok
}

// List enumerates every known source, available and loaded alike,
// sorted by name.
func (r *Registry) List() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := lo.Uniq(append(lo.Keys(r.factories), lo.Keys(r.loaded)...))
	sort.Strings(names)

	return lo.Map(names, func(name string, _ int) Status {
		st := Status{
			Name:    name,
			Enabled: r.enabled[name],
		}
		_, st.Available = r.factories[name]
		if e, ok := r.loaded[name]; ok {
			st.Loaded = true
			st.Capabilities = e.caps
		}
		return st
	})
}

// Loaded returns the names of all loaded sources, sorted.
func (r *Registry) Loaded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := lo.Keys(r.loaded)
	sort.Strings(names)
	return names
}

// ShutdownAll notifies every loaded source of shutdown, best-effort.
// Errors are logged and do not stop the iteration.
func (r *Registry) ShutdownAll() {
	r.mu.Lock()
	entries := make(map[string]*entry, len(r.loaded))
	for name, e := range r.loaded {
		entries[name] = e
	}
	r.mu.Unlock()

	for name, e := range entries {
		if !e.caps.Has(CapShutdown) {
			continue
		}
		if err := e.src.Shutdown(); err != nil {
			r.log.Warn().Err(err).Str("source", name).Msg("shutdown notification failed")
		}
	}
}
