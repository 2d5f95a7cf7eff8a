package playlist

import (
	"math/rand"
	"sync"
)

// Direction selects which way Navigate moves the cursor.
type Direction int

const (
	Next Direction = iota
	Prev
)

// String returns the direction name.
func (d Direction) String() string {
	if d == Prev {
		return "prev"
	}
	return "next"
}

// Navigator maintains the (current, next, prev) cursor over a playlist.
//
// The cursor is derived state, never authoritative: every call re-reads
// the live playlist length and clamps indices into range, so navigation
// never indexes out of bounds even if the playlist shrank since the
// cursor was last set.
//
// In shuffle mode only one level of history is kept: Prev returns to
// exactly the index that was current before the last Next, and repeated
// Prev calls do not walk further back.
type Navigator struct {
	mu      sync.Mutex
	list    *Playlist
	current int
	next    int
	prev    int
	shuffle bool
	rng     *rand.Rand
}

// NewNavigator creates a navigator over the given playlist.
func NewNavigator(list *Playlist, seed int64) *Navigator {
	n := &Navigator{
		list: list,
		rng:  rand.New(rand.NewSource(seed)),
	}
	n.Reset()
	return n
}

// Reset reinitializes the cursor to the head of the playlist. Called
// whenever a new playlist is loaded.
func (n *Navigator) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = 0
	n.recomputeLocked(n.list.Len())
}

// SetShuffle switches between sequential and shuffle navigation.
func (n *Navigator) SetShuffle(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.shuffle = enabled
	n.recomputeLocked(n.list.Len())
}

// Shuffle reports whether shuffle mode is enabled.
func (n *Navigator) Shuffle() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.shuffle
}

// Current returns the track under the cursor, or nil if the playlist is
// empty.
func (n *Navigator) Current() *Track {
	n.mu.Lock()
	defer n.mu.Unlock()
	length := n.list.Len()
	if length == 0 {
		return nil
	}
	n.clampLocked(length)
	return n.list.Track(n.current)
}

// CurrentIndex returns the current cursor index.
func (n *Navigator) CurrentIndex() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Cursor returns the (current, next, prev) index triple.
func (n *Navigator) Cursor() (current, next, prev int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current, n.next, n.prev
}

// JumpTo moves the cursor directly to the given index.
// Returns the track there, or nil if the index is out of range.
func (n *Navigator) JumpTo(index int) *Track {
	n.mu.Lock()
	defer n.mu.Unlock()
	length := n.list.Len()
	if index < 0 || index >= length {
		return nil
	}
	n.current = index
	n.recomputeLocked(length)
	return n.list.Track(n.current)
}

// Navigate advances or retreats the cursor and returns the new current
// track. Returns nil on an empty playlist. Both the command path and
// the watchdog call this, so the whole move is made under the lock.
func (n *Navigator) Navigate(d Direction) *Track {
	n.mu.Lock()
	defer n.mu.Unlock()

	length := n.list.Len()
	if length == 0 {
		return nil
	}
	n.clampLocked(length)

	if n.shuffle {
		n.navigateShuffleLocked(d, length)
	} else {
		n.navigateSequentialLocked(d, length)
	}
	return n.list.Track(n.current)
}

func (n *Navigator) navigateSequentialLocked(d Direction, length int) {
	switch d {
	case Next:
		n.current = (n.current + 1) % length
	case Prev:
		n.current = (n.current - 1 + length) % length
	}
	n.recomputeLocked(length)
}

func (n *Navigator) navigateShuffleLocked(d Direction, length int) {
	switch d {
	case Next:
		outgoing := n.current
		n.current = n.randomOtherLocked(length)
		n.prev = outgoing
	case Prev:
		if n.prev >= 0 && n.prev < length {
			n.current = n.prev
		}
	}
	n.next = -1 // chosen at random on the next call
}

// randomOtherLocked picks a uniformly random index different from the
// current one. With a single track it stays put.
func (n *Navigator) randomOtherLocked(length int) int {
	if length <= 1 {
		return 0
	}
	pick := n.rng.Intn(length - 1)
	if pick >= n.current {
		pick++
	}
	return pick
}

// recomputeLocked refreshes the precomputed next/prev indices after the
// current index moved or the playlist length changed.
func (n *Navigator) recomputeLocked(length int) {
	if length == 0 {
		n.current, n.next, n.prev = 0, 0, 0
		return
	}
	n.clampLocked(length)
	if n.shuffle {
		n.next = -1
		if n.prev >= length {
			n.prev = length - 1
		}
		return
	}
	n.next = (n.current + 1) % length
	n.prev = (n.current - 1 + length) % length
}

// clampLocked pulls the current index back into [0, length-1] if the
// playlist shrank underneath the cursor.
func (n *Navigator) clampLocked(length int) {
	if length <= 0 {
		n.current = 0
		return
	}
	if n.current >= length {
		n.current = length - 1
	}
	if n.current < 0 {
		n.current = 0
	}
}
