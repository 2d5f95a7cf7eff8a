package mpris

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"
)

// fakeObject implements dbus.BusObject against an in-memory property
// table.
type fakeObject struct {
	props     map[string]any
	propErr   error
	calls     []string
	propReads int
}

func (f *fakeObject) Call(method string, _ dbus.Flags, _ ...any) *dbus.Call {
	f.calls = append(f.calls, method)
	return &dbus.Call{}
}

func (f *fakeObject) CallWithContext(_ context.Context, method string, flags dbus.Flags, args ...any) *dbus.Call {
	return f.Call(method, flags, args...)
}

func (f *fakeObject) Go(_ string, _ dbus.Flags, ch chan *dbus.Call, _ ...any) *dbus.Call {
	return &dbus.Call{Done: ch}
}

func (f *fakeObject) GoWithContext(_ context.Context, method string, flags dbus.Flags, ch chan *dbus.Call, args ...any) *dbus.Call {
	return f.Go(method, flags, ch, args...)
}

func (f *fakeObject) AddMatchSignal(_, _ string, _ ...dbus.MatchOption) *dbus.Call {
	return &dbus.Call{}
}

func (f *fakeObject) RemoveMatchSignal(_, _ string, _ ...dbus.MatchOption) *dbus.Call {
	return &dbus.Call{}
}

func (f *fakeObject) GetProperty(p string) (dbus.Variant, error) {
	f.propReads++
	if f.propErr != nil {
		return dbus.Variant{}, f.propErr
	}
	v, ok := f.props[p]
	if !ok {
		return dbus.Variant{}, errors.New("no such property")
	}
	return dbus.MakeVariant(v), nil
}

func (f *fakeObject) StoreProperty(p string, value any) error {
	_, err := f.GetProperty(p)
	return err
}

func (f *fakeObject) SetProperty(p string, v any) error {
	f.props[p] = v
	return nil
}

func (f *fakeObject) Destination() string { return "org.mpris.MediaPlayer2.fake" }

func (f *fakeObject) Path() dbus.ObjectPath { return objectPath }

type fakeConn struct {
	obj    *fakeObject
	closed bool
}

func (c *fakeConn) Object(_ string, _ dbus.ObjectPath) dbus.BusObject { return c.obj }

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func newFakeSource(props map[string]any) (*Source, *fakeConn) {
	conn := &fakeConn{obj: &fakeObject{props: props}}
	return newWithConn("fake", "org.mpris.MediaPlayer2.fake", conn, zerolog.Nop()), conn
}

func playingProps() map[string]any {
	return map[string]any{
		playerInterface + ".PlaybackStatus": "Playing",
		playerInterface + ".Position":       int64(30_000_000),
		playerInterface + ".Metadata": map[string]dbus.Variant{
			"xesam:title":  dbus.MakeVariant("Echoes"),
			"xesam:artist": dbus.MakeVariant([]string{"Pink Floyd"}),
			"xesam:album":  dbus.MakeVariant("Meddle"),
			"mpris:length": dbus.MakeVariant(int64(1_412_000_000)),
		},
	}
}

func TestSource_TransportCommands(t *testing.T) {
	s, conn := newFakeSource(playingProps())

	if err := s.Play(nil); err != nil {
		t.Fatal(err)
	}
	if err := s.Pause(); err != nil {
		t.Fatal(err)
	}
	if err := s.Next(); err != nil {
		t.Fatal(err)
	}

	want := []string{
		playerInterface + ".Play",
		playerInterface + ".Pause",
		playerInterface + ".Next",
	}
	got := conn.obj.calls
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSource_CurrentPlayback_ParsesMetadata(t *testing.T) {
	s, _ := newFakeSource(playingProps())

	snap, err := s.CurrentPlayback()
	if err != nil {
		t.Fatal(err)
	}
	if snap == nil {
		t.Fatal("snapshot should not be nil while playing")
	}

	if snap.TrackName != "Echoes" {
		t.Errorf("TrackName = %q, want Echoes", snap.TrackName)
	}
	if snap.Artist != "Pink Floyd" {
		t.Errorf("Artist = %q, want Pink Floyd", snap.Artist)
	}
	if snap.Position != 30*time.Second {
		t.Errorf("Position = %v, want 30s", snap.Position)
	}
	if !snap.IsPlaying {
		t.Error("IsPlaying should be true")
	}
}

func TestSource_CurrentPlayback_CachesWithinInterval(t *testing.T) {
	s, conn := newFakeSource(playingProps())

	if _, err := s.CurrentPlayback(); err != nil {
		t.Fatal(err)
	}
	readsAfterFirst := conn.obj.propReads
	if _, err := s.CurrentPlayback(); err != nil {
		t.Fatal(err)
	}

	if conn.obj.propReads != readsAfterFirst {
		t.Error("second query within the refresh interval should hit the cache")
	}
}

func TestSource_CurrentPlayback_StoppedIsNil(t *testing.T) {
	s, _ := newFakeSource(map[string]any{
		playerInterface + ".PlaybackStatus": "Stopped",
	})

	snap, err := s.CurrentPlayback()
	if err != nil {
		t.Fatal(err)
	}
	if snap != nil {
		t.Errorf("snapshot = %+v, want nil for stopped player", snap)
	}
}

func TestSource_CommandInvalidatesCache(t *testing.T) {
	s, conn := newFakeSource(playingProps())

	if _, err := s.CurrentPlayback(); err != nil {
		t.Fatal(err)
	}
	if err := s.Pause(); err != nil {
		t.Fatal(err)
	}
	readsBefore := conn.obj.propReads
	if _, err := s.CurrentPlayback(); err != nil {
		t.Fatal(err)
	}

	if conn.obj.propReads == readsBefore {
		t.Error("query after a transport command should bypass the cache")
	}
}

func TestSource_ShutdownClosesConnection(t *testing.T) {
	s, conn := newFakeSource(map[string]any{
		playerInterface + ".PlaybackStatus": "Stopped",
	})

	if err := s.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if !conn.closed {
		t.Error("Shutdown should close the bus connection")
	}
}
