package playlist

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Stored is a named playlist read from disk.
type Stored struct {
	Name   string
	File   string // filename inside the playlists directory
	Tracks []Track
}

// Playlist files are plain text: a "name:" line sets the display name,
// "#" lines are comments, every other non-empty line is a track path.
// Paths that no longer exist are skipped with a warning.

// Scan reads every .txt playlist in dir. A missing directory is not an
// error; it is created so later saves succeed.
func Scan(dir string, log zerolog.Logger) ([]Stored, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create playlists dir: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read playlists dir: %w", err)
	}

	var out []Stored
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		st, err := readFile(filepath.Join(dir, e.Name()), log)
		if err != nil {
			log.Warn().Err(err).Str("file", e.Name()).Msg("skipping unreadable playlist")
			continue
		}
		st.File = e.Name()
		if len(st.Tracks) == 0 {
			log.Debug().Str("playlist", st.Name).Msg("skipping empty playlist")
			continue
		}
		out = append(out, st)
	}
	return out, nil
}

func readFile(path string, log zerolog.Logger) (Stored, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stored{}, err
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), ".txt")
	var tracks []Track

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(strings.ToLower(line), "name:"):
			if n := strings.TrimSpace(line[5:]); n != "" {
				name = n
			}
		default:
			if _, err := os.Stat(line); err != nil {
				log.Warn().Str("track", line).Msg("track not found, skipping")
				continue
			}
			tracks = append(tracks, Track{Path: line, Title: filepath.Base(line)})
		}
	}
	if err := sc.Err(); err != nil {
		return Stored{}, err
	}
	return Stored{Name: name, Tracks: tracks}, nil
}

// Save writes a playlist to dir under a filename derived from its name.
func Save(dir, name string, tracks []Track) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create playlists dir: %w", err)
	}

	var b strings.Builder
	for _, r := range name {
		if r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	path := filepath.Join(dir, b.String()+".txt")

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create playlist file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "# Playlist file created %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "name: %s\n\n", name)
	for _, t := range tracks {
		fmt.Fprintln(w, t.Path)
	}
	return w.Flush()
}
