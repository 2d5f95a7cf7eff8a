// Package cli implements the interactive command prompt.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/lmehl/quaver/internal/event"
	"github.com/lmehl/quaver/internal/player"
	"github.com/lmehl/quaver/internal/playlist"
)

const prompt = "quaver> "

// CLI reads commands from in and drives the player. It also listens on
// the bus so track changes show up without polling.
type CLI struct {
	p            *player.Player
	bus          *event.Bus
	playlistsDir string
	in           io.Reader
	out          io.Writer
	log          zerolog.Logger
}

// New creates a CLI bound to the given streams.
func New(p *player.Player, bus *event.Bus, playlistsDir string, in io.Reader, out io.Writer, log zerolog.Logger) *CLI {
	return &CLI{
		p:            p,
		bus:          bus,
		playlistsDir: playlistsDir,
		in:           in,
		out:          out,
		log:          log.With().Str("component", "cli").Logger(),
	}
}

// Run loops until quit or EOF. The returned error is a read failure,
// never a command failure; those are printed and the loop continues.
func (c *CLI) Run() error {
	sub := c.bus.Subscribe(event.TrackChanged, func(e event.Event) {
		if p, ok := e.Data.(event.TrackChange); ok {
			fmt.Fprintf(c.out, "\n♪ %s\n%s", p.New, prompt)
		}
	})
	defer c.bus.Unsubscribe(sub)

	sc := bufio.NewScanner(c.in)
	for {
		fmt.Fprint(c.out, prompt)
		if !sc.Scan() {
			return sc.Err()
		}
		if c.execute(strings.TrimSpace(sc.Text())) {
			return nil
		}
	}
}

// execute runs one command line; returns true on quit.
func (c *CLI) execute(line string) bool {
	if line == "" {
		return false
	}
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	var err error
	switch cmd {
	case "help", "?":
		c.printHelp()
	case "play":
		err = c.play(args)
	case "pause":
		err = c.p.Pause()
	case "stop":
		err = c.p.Stop()
	case "next", "n":
		err = c.p.NextTrack()
	case "prev", "p":
		err = c.p.PreviousTrack()
	case "volume", "vol":
		err = c.volume(args)
	case "shuffle":
		fmt.Fprintf(c.out, "shuffle %s\n", onOff(c.p.ToggleShuffle()))
	case "status", "st":
		c.printStatus()
	case "tracks", "ls":
		c.printTracks()
	case "sources":
		c.printSources()
	case "enable":
		err = c.oneArg(args, c.p.EnableSource)
	case "disable":
		err = c.oneArg(args, c.p.DisableSource)
	case "use":
		err = c.oneArg(args, c.p.UseSource)
	case "remote":
		err = c.remote(args)
	case "playlists":
		err = c.printPlaylists()
	case "load":
		err = c.load(args)
	case "save":
		err = c.save(args)
	case "quit", "exit", "q":
		return true
	default:
		fmt.Fprintf(c.out, "unknown command %q, try help\n", cmd)
	}

	if err != nil {
		fmt.Fprintf(c.out, "error: %v\n", err)
	}
	return false
}

func (c *CLI) play(args []string) error {
	if len(args) == 0 {
		return c.p.Play()
	}
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("play: %q is not a track number", args[0])
	}
	return c.p.PlayIndex(index - 1) // 1-based on the prompt
}

func (c *CLI) volume(args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(c.out, "volume %.0f%%\n", c.p.Volume()*100)
		return nil
	}
	level, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("volume: %q is not a level", args[0])
	}
	if level > 1 { // accept percentages
		level /= 100
	}
	return c.p.SetVolume(level)
}

func (c *CLI) remote(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("remote: source name required")
	}
	return c.p.PlaySource(args[0], args[1:])
}

func (c *CLI) oneArg(args []string, fn func(string) error) error {
	if len(args) != 1 {
		return fmt.Errorf("source name required")
	}
	return fn(args[0])
}

func (c *CLI) printStatus() {
	st := c.p.Status()
	fmt.Fprintf(c.out, "[%s] source=%s", st.State, st.Source)
	if st.TrackName != "" {
		fmt.Fprintf(c.out, " track=%q", st.TrackName)
		if st.Artist != "" {
			fmt.Fprintf(c.out, " artist=%q", st.Artist)
		}
		fmt.Fprintf(c.out, " %s/%s", formatDuration(st.Position), formatDuration(st.Duration))
	}
	fmt.Fprintln(c.out)
}

func (c *CLI) printTracks() {
	tracks := c.p.Playlist().Tracks()
	if len(tracks) == 0 {
		fmt.Fprintln(c.out, "playlist is empty")
		return
	}
	current := c.p.Navigator().CurrentIndex()
	for i, tr := range tracks {
		marker := "  "
		if i == current {
			marker = "> "
		}
		fmt.Fprintf(c.out, "%s%3d  %s\n", marker, i+1, tr.Name())
	}
}

func (c *CLI) printSources() {
	for _, st := range c.p.Sources() {
		flags := lo.Ternary(st.Loaded, "loaded", lo.Ternary(st.Available, "available", "unknown"))
		fmt.Fprintf(c.out, "%-12s %-10s", st.Name, flags)
		if st.Loaded {
			fmt.Fprintf(c.out, " caps=%s", st.Capabilities)
		}
		fmt.Fprintln(c.out)
	}
}

func (c *CLI) printPlaylists() error {
	stored, err := playlist.Scan(c.playlistsDir, c.log)
	if err != nil {
		return err
	}
	if len(stored) == 0 {
		fmt.Fprintln(c.out, "no playlists")
		return nil
	}
	sort.Slice(stored, func(i, j int) bool { return stored[i].Name < stored[j].Name })
	for _, st := range stored {
		fmt.Fprintf(c.out, "%-24s %d tracks\n", st.Name, len(st.Tracks))
	}
	return nil
}

func (c *CLI) load(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("load: playlist name required")
	}
	name := strings.Join(args, " ")

	stored, err := playlist.Scan(c.playlistsDir, c.log)
	if err != nil {
		return err
	}
	match, ok := lo.Find(stored, func(st playlist.Stored) bool {
		return strings.EqualFold(st.Name, name)
	})
	if !ok {
		return fmt.Errorf("no playlist named %q", name)
	}
	if err := c.p.LoadTracks(match.Tracks); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "loaded %q (%d tracks)\n", match.Name, len(match.Tracks))
	return nil
}

func (c *CLI) save(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("save: playlist name required")
	}
	name := strings.Join(args, " ")
	tracks := c.p.Playlist().Tracks()
	if len(tracks) == 0 {
		return fmt.Errorf("nothing to save, playlist is empty")
	}
	if err := playlist.Save(c.playlistsDir, name, tracks); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "saved %q (%d tracks)\n", name, len(tracks))
	return nil
}

func (c *CLI) printHelp() {
	fmt.Fprint(c.out, `commands:
  play [n]          start playback (optionally at track n)
  pause             pause the active source
  stop              stop the active source
  next, prev        move between tracks
  volume [level]    show or set volume (0-1 or percent)
  shuffle           toggle shuffle mode
  status            show what is playing
  tracks            list the current playlist
  sources           list playback sources
  enable <name>     load a source
  disable <name>    unload a source
  use <name>        make a source active
  remote <name> ... play on a remote source
  playlists         list saved playlists
  load <name>       load a saved playlist
  save <name>       save the current playlist
  quit              exit
`)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func formatDuration(d time.Duration) string {
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
