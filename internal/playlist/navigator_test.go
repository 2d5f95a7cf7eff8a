package playlist

import "testing"

func listOf(paths ...string) *Playlist {
	p := New()
	for _, path := range paths {
		p.Add(Track{Path: path})
	}
	return p
}

func TestNavigator_Sequential(t *testing.T) {
	nav := NewNavigator(listOf("a", "b", "c"), 1)

	tr := nav.Navigate(Next)
	if tr == nil || tr.Path != "b" {
		t.Fatalf("Navigate(Next) = %v, want b", tr)
	}
	cur, next, prev := nav.Cursor()
	if cur != 1 || next != 2 || prev != 0 {
		t.Errorf("cursor = (%d,%d,%d), want (1,2,0)", cur, next, prev)
	}

	if tr = nav.Navigate(Next); tr.Path != "c" {
		t.Errorf("Navigate(Next) = %q, want c", tr.Path)
	}
	// Wraparound.
	if tr = nav.Navigate(Next); tr.Path != "a" {
		t.Errorf("Navigate(Next) = %q, want a (wraparound)", tr.Path)
	}
}

func TestNavigator_SequentialPrev_Wraparound(t *testing.T) {
	nav := NewNavigator(listOf("a", "b", "c"), 1)

	tr := nav.Navigate(Prev)
	if tr == nil || tr.Path != "c" {
		t.Fatalf("Navigate(Prev) from head = %v, want c", tr)
	}
}

func TestNavigator_EmptyPlaylist(t *testing.T) {
	nav := NewNavigator(New(), 1)

	if nav.Navigate(Next) != nil {
		t.Error("Navigate(Next) on empty playlist should be nil")
	}
	if nav.Navigate(Prev) != nil {
		t.Error("Navigate(Prev) on empty playlist should be nil")
	}
	if nav.Current() != nil {
		t.Error("Current() on empty playlist should be nil")
	}
}

func TestNavigator_ShuffleNeverReturnsCurrent(t *testing.T) {
	nav := NewNavigator(listOf("a", "b", "c", "d"), 42)
	nav.SetShuffle(true)

	for n := 0; n < 50; n++ {
		before := nav.CurrentIndex()
		tr := nav.Navigate(Next)
		if tr == nil {
			t.Fatal("Navigate(Next) returned nil")
		}
		if nav.CurrentIndex() == before {
			t.Fatalf("shuffle next returned the current index %d", before)
		}
	}
}

func TestNavigator_ShufflePrevReturnsToPrior(t *testing.T) {
	nav := NewNavigator(listOf("a", "b", "c", "d"), 7)
	nav.SetShuffle(true)

	for n := 0; n < 10; n++ {
		before := nav.CurrentIndex()
		nav.Navigate(Next)
		nav.Navigate(Prev)
		if nav.CurrentIndex() != before {
			t.Fatalf("prev after next = %d, want %d", nav.CurrentIndex(), before)
		}
		nav.Navigate(Next)
	}
}

func TestNavigator_ShuffleSingleTrack(t *testing.T) {
	nav := NewNavigator(listOf("a"), 3)
	nav.SetShuffle(true)

	tr := nav.Navigate(Next)
	if tr == nil || tr.Path != "a" {
		t.Errorf("Navigate(Next) with one track = %v, want a", tr)
	}
}

func TestNavigator_ClampsWhenPlaylistShrinks(t *testing.T) {
	list := listOf("a", "b", "c", "d")
	nav := NewNavigator(list, 1)
	nav.JumpTo(3)

	// Shrink the playlist underneath the cursor.
	list.Remove(3)
	list.Remove(2)

	tr := nav.Navigate(Next)
	if tr == nil {
		t.Fatal("Navigate(Next) returned nil after shrink")
	}
	if idx := nav.CurrentIndex(); idx < 0 || idx >= list.Len() {
		t.Errorf("index %d out of range [0,%d)", idx, list.Len())
	}
}

func TestNavigator_CurrentClampsAfterShrink(t *testing.T) {
	list := listOf("a", "b", "c")
	nav := NewNavigator(list, 1)
	nav.JumpTo(2)

	list.Remove(2)

	tr := nav.Current()
	if tr == nil || tr.Path != "b" {
		t.Errorf("Current() after shrink = %v, want b", tr)
	}
}

func TestNavigator_JumpTo_OutOfRange(t *testing.T) {
	nav := NewNavigator(listOf("a", "b"), 1)

	if nav.JumpTo(5) != nil {
		t.Error("JumpTo(5) should be nil")
	}
	if nav.JumpTo(-1) != nil {
		t.Error("JumpTo(-1) should be nil")
	}
}

func TestNavigator_Reset(t *testing.T) {
	nav := NewNavigator(listOf("a", "b", "c"), 1)
	nav.Navigate(Next)
	nav.Navigate(Next)

	nav.Reset()

	if nav.CurrentIndex() != 0 {
		t.Errorf("CurrentIndex() after Reset = %d, want 0", nav.CurrentIndex())
	}
}
