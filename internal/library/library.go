// Package library discovers playable tracks on disk and turns them into
// playlist entries.
package library

import (
	"io/fs"
	"math/rand"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/lmehl/quaver/internal/engine"
	"github.com/lmehl/quaver/internal/playlist"
)

// SortMode selects the track order of a scan.
type SortMode string

const (
	SortByName SortMode = "name"
	SortByDate SortMode = "date"
	SortRandom SortMode = "random"
)

type found struct {
	path    string
	modTime int64
}

// Scan walks the given roots, collects every supported audio file and
// returns it as a track list in the requested order. Unreadable
// directories are logged and skipped; tag read failures fall back to
// filename-only entries.
func Scan(roots []string, mode SortMode, seed int64, log zerolog.Logger) []playlist.Track {
	var files []found
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("skipping unreadable entry")
				return fs.SkipDir
			}
			if d.IsDir() {
				if strings.HasPrefix(d.Name(), ".") && path != root {
					return fs.SkipDir
				}
				return nil
			}
			if !engine.SupportedExt(filepath.Ext(path)) {
				return nil
			}
			f := found{path: path}
			if info, err := d.Info(); err == nil {
				f.modTime = info.ModTime().UnixNano()
			}
			files = append(files, f)
			return nil
		})
		if err != nil {
			log.Warn().Err(err).Str("root", root).Msg("library scan failed")
		}
	}

	order(files, mode, seed)

	return lo.Map(files, func(f found, _ int) playlist.Track {
		info, err := engine.ReadTrackInfo(f.path)
		if err != nil {
			log.Debug().Err(err).Str("path", f.path).Msg("tag read failed")
		}
		return playlist.Track{
			Path:     f.path,
			Title:    info.Title,
			Artist:   info.Artist,
			Album:    info.Album,
			Genre:    info.Genre,
			Duration: info.Duration,
		}
	})
}

func order(files []found, mode SortMode, seed int64) {
	switch mode {
	case SortByDate:
		sort.Slice(files, func(i, j int) bool {
			if files[i].modTime != files[j].modTime {
				return files[i].modTime > files[j].modTime // newest first
			}
			return files[i].path < files[j].path
		})
	case SortRandom:
		rng := rand.New(rand.NewSource(seed))
		rng.Shuffle(len(files), func(i, j int) {
			files[i], files[j] = files[j], files[i]
		})
	default:
		sort.Slice(files, func(i, j int) bool {
			return files[i].path < files[j].path
		})
	}
}
