// Package event implements the publish/subscribe hub that carries player
// state between the playback core and its observers.
package event

import (
	"sync"

	"github.com/rs/zerolog"
)

const (
	defaultWorkers = 4
	queueSize      = 256
)

// Subscription identifies a registered handler so it can be removed later.
type Subscription struct {
	id int64
	t  Type
}

type subscriber struct {
	id int64
	fn Handler
}

type task struct {
	ev Event
	fn Handler
}

// Bus dispatches events to subscribers through a bounded worker pool.
// Publishing never blocks on subscriber execution: handlers run on the
// pool, one task per handler, and a panicking handler is isolated from
// the publisher and from other handlers.
type Bus struct {
	mu     sync.Mutex
	subs   map[Type][]subscriber
	nextID int64
	closed bool

	tasks   chan task
	pending sync.WaitGroup
	workers sync.WaitGroup

	log zerolog.Logger
}

// NewBus creates a bus and starts its worker pool.
func NewBus(log zerolog.Logger) *Bus {
	b := &Bus{
		subs:  make(map[Type][]subscriber),
		tasks: make(chan task, queueSize),
		log:   log.With().Str("component", "eventbus").Logger(),
	}
	for i := 0; i < defaultWorkers; i++ {
		b.workers.Add(1)
		go b.worker()
	}
	return b
}

func (b *Bus) worker() {
	defer b.workers.Done()
	for t := range b.tasks {
		b.dispatch(t)
		b.pending.Done()
	}
}

// dispatch runs one handler, recovering a panic so it cannot take down
// the pool or suppress delivery to other subscribers.
func (b *Bus) dispatch(t task) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Str("event", string(t.ev.Type)).
				Interface("panic", r).
				Msg("subscriber panicked")
		}
	}()
	t.fn(t.ev)
}

// Subscribe registers a handler for the given event type. Handlers for
// the same type are invoked in best-effort subscription order.
func (b *Bus) Subscribe(t Type, fn Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.subs[t] = append(b.subs[t], subscriber{id: b.nextID, fn: fn})
	return Subscription{id: b.nextID, t: t}
}

// Unsubscribe removes a previously registered handler.
func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[sub.t]
	for i, s := range list {
		if s.id == sub.id {
			b.subs[sub.t] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// Publish schedules delivery of an event to all current subscribers of
// its type. The subscriber list is snapshotted under the lock; handler
// execution happens outside it, so a handler may itself call Subscribe
// or Publish without deadlocking the bus. Publish returns once dispatch
// is scheduled, not once delivered. If the queue is saturated the event
// is dropped for that handler and a warning is logged.
func (b *Bus) Publish(t Type, data any) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	snapshot := make([]subscriber, len(b.subs[t]))
	copy(snapshot, b.subs[t])
	b.mu.Unlock()

	ev := Event{Type: t, Data: data}
	for _, s := range snapshot {
		b.pending.Add(1)
		select {
		case b.tasks <- task{ev: ev, fn: s.fn}:
		default:
			b.pending.Done()
			b.log.Warn().Str("event", string(t)).Msg("event queue full, dropping delivery")
		}
	}
}

// Flush blocks until every scheduled delivery has run. Intended for
// tests and shutdown; concurrent publishers make the wait best-effort.
func (b *Bus) Flush() {
	b.pending.Wait()
}

// Close drains scheduled deliveries and stops the worker pool. Publish
// calls after Close are no-ops.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	b.pending.Wait()
	close(b.tasks)
	b.workers.Wait()
}
