package source

import (
	"sync"
	"time"
)

// Mock is a controllable fake source for tests.
type Mock struct {
	mu sync.Mutex

	name string
	caps Capability

	playing  bool
	snapshot *Snapshot

	playErr  error
	pauseErr error
	stopErr  error

	playCalls     int
	pauseCalls    int
	stopCalls     int
	shutdownCalls int

	// recorded hook invocations
	stateChanges  []string
	trackChanges  []string
	sourceChanges []string
}

// NewMock creates a mock source with the given name and capabilities.
func NewMock(name string, caps Capability) *Mock {
	return &Mock{name: name, caps: caps}
}

func (m *Mock) Name() string { return m.name }

func (m *Mock) Capabilities() Capability { return m.caps }

func (m *Mock) Play(_ []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playCalls++
	if m.playErr != nil {
		return m.playErr
	}
	m.playing = true
	return nil
}

func (m *Mock) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauseCalls++
	if m.pauseErr != nil {
		return m.pauseErr
	}
	m.playing = false
	return nil
}

func (m *Mock) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCalls++
	if m.stopErr != nil {
		return m.stopErr
	}
	m.playing = false
	return nil
}

func (m *Mock) Next() error { return nil }

func (m *Mock) Prev() error { return nil }

func (m *Mock) SetVolume(_ float64) error { return nil }

func (m *Mock) CurrentPlayback() (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapshot != nil {
		s := *m.snapshot
		s.IsPlaying = m.playing
		s.Taken = time.Now()
		return &s, nil
	}
	if !m.playing {
		return nil, nil
	}
	return &Snapshot{TrackName: "mock track", IsPlaying: true, Taken: time.Now()}, nil
}

func (m *Mock) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdownCalls++
	m.playing = false
	return nil
}

// Test helpers

func (m *Mock) SetPlaying(playing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = playing
}

func (m *Mock) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

func (m *Mock) SetSnapshot(s *Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = s
}

func (m *Mock) SetPlayError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

func (m *Mock) SetStopError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopErr = err
}

func (m *Mock) PauseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauseCalls
}

func (m *Mock) StopCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCalls
}

func (m *Mock) ShutdownCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shutdownCalls
}

var _ Source = (*Mock)(nil)

// ListeningMock also implements every optional hook, recording calls.
type ListeningMock struct {
	Mock
}

// NewListeningMock creates a mock that records hook invocations.
func NewListeningMock(name string, caps Capability) *ListeningMock {
	return &ListeningMock{Mock: Mock{name: name, caps: caps}}
}

func (m *ListeningMock) OnStateChanged(previous, current, sourceName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stateChanges = append(m.stateChanges, previous+"->"+current+"@"+sourceName)
}

func (m *ListeningMock) OnTrackChanged(previous, current string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trackChanges = append(m.trackChanges, previous+"->"+current)
}

func (m *ListeningMock) OnSourceChanged(previous, current string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sourceChanges = append(m.sourceChanges, previous+"->"+current)
}

func (m *ListeningMock) StateChanges() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.stateChanges...)
}

func (m *ListeningMock) TrackChanges() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.trackChanges...)
}

func (m *ListeningMock) SourceChanges() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sourceChanges...)
}

var (
	_ Source         = (*ListeningMock)(nil)
	_ StateListener  = (*ListeningMock)(nil)
	_ TrackListener  = (*ListeningMock)(nil)
	_ SourceListener = (*ListeningMock)(nil)
)
