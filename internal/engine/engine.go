package engine

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
)

const (
	extMP3  = ".mp3"
	extFLAC = ".flac"
)

// SupportedExt reports whether the engine can decode files with the
// given extension.
func SupportedExt(ext string) bool {
	switch strings.ToLower(ext) {
	case extMP3, extFLAC:
		return true
	default:
		return false
	}
}

var (
	speakerInitialized bool
	speakerSampleRate  beep.SampleRate
)

// Engine is the beep-backed local decoder.
type Engine struct {
	mu          sync.Mutex
	state       State
	ctrl        *beep.Ctrl
	volume      *effects.Volume
	streamer    beep.StreamSeekCloser
	format      beep.Format
	file        *os.File
	trackInfo   *TrackInfo
	volumeLevel float64
	busy        bool
}

// New creates a stopped engine with the given initial volume level
// (0.0 to 1.0).
func New(volume float64) *Engine {
	return &Engine{
		state:       Stopped,
		volumeLevel: clampLevel(volume),
	}
}

// Play stops any current track and starts playback of the given file.
func (e *Engine) Play(path string) error {
	e.Stop()

	ext := strings.ToLower(filepath.Ext(path))
	if !SupportedExt(ext) {
		return fmt.Errorf("unsupported format: %s", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch ext {
	case extMP3:
		streamer, format, err = mp3.Decode(f)
	case extFLAC:
		streamer, format, err = flac.Decode(f)
	}
	if err != nil {
		f.Close()
		return err
	}

	if !speakerInitialized {
		speakerSampleRate = format.SampleRate
		if err := speaker.Init(speakerSampleRate, speakerSampleRate.N(time.Second/10)); err != nil {
			streamer.Close()
			f.Close()
			return err
		}
		speakerInitialized = true
	}

	e.mu.Lock()
	e.file = f
	e.streamer = streamer
	e.format = format

	// Resample if the track's sample rate differs from the speaker's.
	var playStreamer beep.Streamer = streamer
	if format.SampleRate != speakerSampleRate {
		playStreamer = beep.Resample(4, format.SampleRate, speakerSampleRate, streamer)
	}
	e.ctrl = &beep.Ctrl{Streamer: playStreamer, Paused: false}
	e.volume = &effects.Volume{Streamer: e.ctrl, Base: 2, Volume: levelToVolume(e.volumeLevel), Silent: false}

	info, _ := ReadTrackInfo(path)
	info.Duration = format.SampleRate.D(streamer.Len())
	e.trackInfo = info

	e.state = Playing
	e.busy = true
	vol := e.volume
	e.mu.Unlock()

	speaker.Play(beep.Seq(vol, beep.Callback(func() {
		e.mu.Lock()
		e.busy = false
		e.mu.Unlock()
	})))

	return nil
}

// Stop stops playback and releases the decoder resources.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Stopped {
		return
	}

	speaker.Clear()

	if e.streamer != nil {
		e.streamer.Close()
		e.streamer = nil
	}
	if e.file != nil {
		e.file.Close()
		e.file = nil
	}

	e.ctrl = nil
	e.volume = nil
	e.trackInfo = nil
	e.state = Stopped
	e.busy = false
}

// Pause pauses playback.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Playing || e.ctrl == nil {
		return
	}
	speaker.Lock()
	e.ctrl.Paused = true
	speaker.Unlock()
	e.state = Paused
}

// Resume resumes paused playback.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Paused || e.ctrl == nil {
		return
	}
	speaker.Lock()
	e.ctrl.Paused = false
	speaker.Unlock()
	e.state = Playing
}

// State returns the current engine state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Busy reports whether the engine is still producing audio.
func (e *Engine) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == Playing && e.busy
}

// Position returns the current playback position.
func (e *Engine) Position() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := e.format.SampleRate.D(e.streamer.Position())
	speaker.Unlock()
	return pos
}

// Duration returns the current track duration.
func (e *Engine) Duration() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.trackInfo == nil {
		return 0
	}
	return e.trackInfo.Duration
}

// TrackInfo returns metadata for the loaded track, or nil when stopped.
func (e *Engine) TrackInfo() *TrackInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.trackInfo
}

// SetVolume sets the volume level (0.0 to 1.0). Applies immediately if
// a track is loaded; otherwise the level is used for the next track.
func (e *Engine) SetVolume(level float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volumeLevel = clampLevel(level)
	if e.volume != nil {
		speaker.Lock()
		e.volume.Volume = levelToVolume(e.volumeLevel)
		speaker.Unlock()
	}
}

// Volume returns the current volume level (0.0 to 1.0).
func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volumeLevel
}

func clampLevel(level float64) float64 {
	if level < 0 {
		return 0
	}
	if level > 1 {
		return 1
	}
	return level
}

// levelToVolume converts a 0.0-1.0 level to beep's logarithmic volume.
// beep treats Volume as an exponent with the configured base: 0 is no
// change, -1 halves, -2 quarters. 0 maps to -10, essentially silent.
func levelToVolume(level float64) float64 {
	if level <= 0 {
		return -10
	}
	if level >= 1 {
		return 0
	}
	return math.Log2(level)
}
