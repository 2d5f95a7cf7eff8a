package playlist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestScan_ReadsNamedPlaylist(t *testing.T) {
	dir := t.TempDir()

	track := filepath.Join(dir, "song.mp3")
	if err := os.WriteFile(track, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	content := "# comment\nname: Road Trip\n\n" + track + "\n" + filepath.Join(dir, "missing.mp3") + "\n"
	if err := os.WriteFile(filepath.Join(dir, "road_trip.txt"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	lists, err := Scan(dir, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	if len(lists) != 1 {
		t.Fatalf("len(lists) = %d, want 1", len(lists))
	}
	if lists[0].Name != "Road Trip" {
		t.Errorf("Name = %q, want Road Trip", lists[0].Name)
	}
	if len(lists[0].Tracks) != 1 {
		t.Fatalf("len(Tracks) = %d, want 1 (missing track skipped)", len(lists[0].Tracks))
	}
	if lists[0].Tracks[0].Path != track {
		t.Errorf("track path = %q, want %q", lists[0].Tracks[0].Path, track)
	}
}

func TestScan_MissingDirCreated(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "playlists")

	lists, err := Scan(dir, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if len(lists) != 0 {
		t.Errorf("len(lists) = %d, want 0", len(lists))
	}
	if _, err := os.Stat(dir); err != nil {
		t.Error("playlists directory should have been created")
	}
}

func TestSaveThenScan_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	track := filepath.Join(dir, "a.mp3")
	if err := os.WriteFile(track, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Save(dir, "My Mix!", []Track{{Path: track}}); err != nil {
		t.Fatal(err)
	}

	lists, err := Scan(dir, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if len(lists) != 1 {
		t.Fatalf("len(lists) = %d, want 1", len(lists))
	}
	if lists[0].Name != "My Mix!" {
		t.Errorf("Name = %q, want My Mix!", lists[0].Name)
	}
	if lists[0].File != "My_Mix_.txt" {
		t.Errorf("File = %q, want My_Mix_.txt", lists[0].File)
	}
}
