package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"fluxcut/internal/beats"
	"fluxcut/internal/database"
	"fluxcut/internal/manifest"
	"fluxcut/internal/mediapool"
	"fluxcut/internal/render"
	"fluxcut/internal/store"
	"fluxcut/internal/timecode"
	"fluxcut/pkg/models"

	"github.com/sirupsen/logrus"
)

// shell is the interactive command loop driving the mutation engine.
type shell struct {
	store    *store.Store
	pool     *mediapool.Pool
	db       *database.Database
	analyzer *beats.Analyzer
	logger   *logrus.Logger
}

func newShell(st *store.Store, pool *mediapool.Pool, db *database.Database, logger *logrus.Logger) *shell {
	return &shell{
		store:    st,
		pool:     pool,
		db:       db,
		analyzer: beats.NewAnalyzer(logger),
		logger:   logger,
	}
}

func (sh *shell) run() {
	fmt.Println("=== FluxCut ===")
	fmt.Printf("Project: %s  (%g fps)\n", sh.store.Settings().Name, sh.store.Settings().FrameRate)
	fmt.Println("Type 'help' for commands.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("fluxcut> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		if !sh.dispatch(parts[0], parts[1:]) {
			return
		}
	}
}

// dispatch runs one command; returns false to exit the loop.
func (sh *shell) dispatch(cmd string, args []string) bool {
	switch cmd {
	case "exit", "quit", "q":
		return false

	case "help", "h":
		sh.printHelp()

	case "status", "ls", "s":
		sh.printTimeline()

	case "pool":
		sh.printPool()

	case "add":
		sh.cmdAdd(args)

	case "dup":
		if c, ok := sh.clipArg(args); ok {
			if _, ok := sh.store.DuplicateClip(c.ID); ok {
				fmt.Println("duplicated")
			}
		}

	case "rm":
		if c, ok := sh.clipArg(args); ok {
			sh.store.RemoveClip(c.ID)
			fmt.Println("removed")
		}

	case "reset":
		sh.store.Reset()
		fmt.Println("timeline cleared")

	case "slip":
		if c, ok := sh.clipArg(args); ok {
			sh.apply(func() bool {
				return sh.store.Apply(func(clips []models.Clip, settings models.ProjectSettings) ([]models.Clip, bool) {
					return sh.store.Engine().RandomizeSegment(clips, settings, c.ID)
				})
			})
		}

	case "flux":
		if len(args) == 0 {
			sh.apply(func() bool {
				return sh.store.Apply(sh.store.Engine().GlobalFlux)
			})
			break
		}
		if c, ok := sh.clipArg(args); ok {
			sh.apply(func() bool {
				return sh.store.Apply(func(clips []models.Clip, settings models.ProjectSettings) ([]models.Clip, bool) {
					return sh.store.Engine().RandomizeClipDuration(clips, settings, c.ID)
				})
			})
		}

	case "shuffle":
		sh.apply(func() bool {
			return sh.store.Apply(sh.store.Engine().ShuffleClips)
		})

	case "swap":
		if c, ok := sh.clipArg(args); ok {
			sh.apply(func() bool {
				return sh.store.Apply(func(clips []models.Clip, settings models.ProjectSettings) ([]models.Clip, bool) {
					return sh.store.Engine().SwapClip(clips, settings, c.ID)
				})
			})
		}

	case "chaos":
		sh.apply(func() bool {
			return sh.store.Apply(sh.store.Engine().Chaos)
		})

	case "magnetize", "mag":
		sh.apply(func() bool {
			return sh.store.Apply(func(clips []models.Clip, _ models.ProjectSettings) ([]models.Clip, bool) {
				return sh.store.Engine().MagnetizeClips(clips)
			})
		})

	case "reorder":
		sh.cmdReorder(args)

	case "regen":
		seed := sh.store.Settings().Seed
		if len(args) > 0 {
			seed = args[0]
		}
		sh.apply(func() bool {
			return sh.store.Apply(func(clips []models.Clip, settings models.ProjectSettings) ([]models.Clip, bool) {
				return sh.store.Engine().RegenerateTimeline(clips, settings, sh.pool.Items(), seed)
			})
		})

	case "pin":
		if c, ok := sh.clipArg(args); ok {
			sh.store.PinClip(c.ID, !c.IsPinned)
			fmt.Printf("pinned=%v\n", !c.IsPinned)
		}

	case "lock":
		if c, ok := sh.clipArg(args); ok {
			sh.store.LockClip(c.ID, !c.Locked)
			fmt.Printf("locked=%v\n", !c.Locked)
		}

	case "mute":
		if c, ok := sh.clipArg(args); ok {
			sh.store.SetClipMuted(c.ID, !c.IsMuted)
			fmt.Printf("muted=%v\n", !c.IsMuted)
		}

	case "volume":
		sh.cmdVolume(args)

	case "speed":
		sh.cmdSpeed(args)

	case "select":
		if c, ok := sh.clipArg(args); ok {
			sh.store.SelectSegment(c.ID)
			fmt.Printf("selected %s [%d..%d)\n", c.Name, c.TrimStartFrame, c.TrimEndFrame)
		}

	case "seed":
		if len(args) == 0 {
			fmt.Printf("seed: %q\n", sh.store.Settings().Seed)
			break
		}
		settings := sh.store.Settings()
		settings.Seed = args[0]
		sh.store.SetSettings(settings)

	case "target":
		sh.cmdTarget(args)

	case "export":
		sh.cmdExport(args)

	case "import":
		sh.cmdImport(args)

	case "save":
		sh.cmdSave(args)

	case "load":
		sh.cmdLoad(args)

	case "projects":
		names, err := sh.db.ListProjects()
		if err != nil {
			fmt.Printf("error: %v\n", err)
			break
		}
		for _, n := range names {
			fmt.Println(" ", n)
		}

	case "render":
		sh.cmdRender()

	case "beats":
		sh.cmdBeats(args)

	default:
		fmt.Printf("unknown command %q (try 'help')\n", cmd)
	}
	return true
}

func (sh *shell) apply(fn func() bool) {
	if fn() {
		sh.printTimeline()
	} else {
		fmt.Println("no change")
	}
}

// clipArg resolves a 1-based timeline index argument to a clip.
func (sh *shell) clipArg(args []string) (models.Clip, bool) {
	if len(args) == 0 {
		fmt.Println("usage: <command> <clip#>")
		return models.Clip{}, false
	}
	n, err := strconv.Atoi(args[0])
	clips := sh.store.Clips()
	if err != nil || n < 1 || n > len(clips) {
		fmt.Printf("no clip #%s (1-%d)\n", args[0], len(clips))
		return models.Clip{}, false
	}
	return clips[n-1], true
}

func (sh *shell) cmdAdd(args []string) {
	items := sh.pool.Items()
	if len(args) == 0 {
		fmt.Println("usage: add <pool#>")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(items) {
		fmt.Printf("no pool item #%s (1-%d)\n", args[0], len(items))
		return
	}
	clip := sh.store.AddMediaClip(items[n-1], models.OriginManual)
	fmt.Printf("added %s (%d frames)\n", clip.Name, clip.DurationFrames())
}

func (sh *shell) cmdReorder(args []string) {
	if len(args) < 2 {
		fmt.Println("usage: reorder <from#> <to#>")
		return
	}
	from, err1 := strconv.Atoi(args[0])
	to, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		fmt.Println("usage: reorder <from#> <to#>")
		return
	}
	sh.apply(func() bool {
		return sh.store.Apply(func(clips []models.Clip, _ models.ProjectSettings) ([]models.Clip, bool) {
			return sh.store.Engine().ReorderClips(clips, from-1, to-1)
		})
	})
}

func (sh *shell) cmdVolume(args []string) {
	if len(args) < 2 {
		fmt.Println("usage: volume <clip#> <0-100>")
		return
	}
	c, ok := sh.clipArg(args)
	if !ok {
		return
	}
	v, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		fmt.Println("usage: volume <clip#> <0-100>")
		return
	}
	sh.store.SetClipVolume(c.ID, v)
}

func (sh *shell) cmdSpeed(args []string) {
	if len(args) < 2 {
		fmt.Println("usage: speed <clip#> <multiplier>")
		return
	}
	c, ok := sh.clipArg(args)
	if !ok {
		return
	}
	v, err := strconv.ParseFloat(args[1], 64)
	if err != nil || v <= 0 {
		fmt.Println("speed must be a positive number")
		return
	}
	sh.store.SetClipSpeed(c.ID, v)
	sh.printTimeline()
}

func (sh *shell) cmdTarget(args []string) {
	settings := sh.store.Settings()
	if len(args) == 0 {
		fmt.Printf("target duration: %gs\n", settings.TargetDurationSeconds)
		return
	}
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil || v < 0 {
		fmt.Println("usage: target <seconds>")
		return
	}
	settings.TargetDurationSeconds = v
	sh.store.SetSettings(settings)
}

func (sh *shell) cmdExport(args []string) {
	path := "timeline.json"
	if len(args) > 0 {
		path = args[0]
	}
	m := manifest.FromState(sh.store.Settings(), sh.store.Clips())
	if err := manifest.Save(path, m); err != nil {
		fmt.Printf("export failed: %v\n", err)
		return
	}
	fmt.Printf("exported %d clips to %s\n", len(m.Clips), path)
}

func (sh *shell) cmdImport(args []string) {
	if len(args) == 0 {
		fmt.Println("usage: import <path>")
		return
	}
	m, err := manifest.Load(args[0])
	if err != nil {
		fmt.Printf("import failed: %v\n", err)
		return
	}
	if res := manifest.Validate(m); !res.Valid {
		fmt.Println("manifest validation failed:")
		for _, e := range res.Errors {
			fmt.Println("  -", e)
		}
		return
	}
	settings, clips := manifest.ToState(m)
	sh.store.SetSettings(settings)
	sh.store.Replace(clips)
	fmt.Printf("imported %d clips\n", len(clips))
}

func (sh *shell) cmdSave(args []string) {
	name := sh.store.Settings().Name
	if len(args) > 0 {
		name = args[0]
	}
	m := manifest.FromState(sh.store.Settings(), sh.store.Clips())
	if err := sh.db.SaveProject(name, m); err != nil {
		fmt.Printf("save failed: %v\n", err)
		return
	}
	fmt.Printf("saved project %q\n", name)
}

func (sh *shell) cmdLoad(args []string) {
	if len(args) == 0 {
		fmt.Println("usage: load <name>")
		return
	}
	m, err := sh.db.LoadProject(args[0])
	if err != nil {
		fmt.Printf("load failed: %v\n", err)
		return
	}
	if res := manifest.Validate(m); !res.Valid {
		// Saved documents are our own; warn but proceed.
		for _, e := range res.Errors {
			sh.logger.WithField("error", e).Warn("Project document validation issue")
		}
	}
	settings, clips := manifest.ToState(m)
	sh.store.SetSettings(settings)
	sh.store.Replace(clips)
	fmt.Printf("loaded project %q (%d clips)\n", args[0], len(clips))
}

func (sh *shell) cmdRender() {
	req := render.BuildRequest(sh.store.Settings(), sh.store.Clips())
	fmt.Printf("render request: %dx%d @ %g fps, %d instructions\n",
		req.Width, req.Height, req.FrameRate, len(req.Instructions))
	for i, inst := range req.Instructions {
		fmt.Printf("  %2d. %-20s [%d..%d) %s\n", i+1, inst.File, inst.StartFrame, inst.EndFrame, inst.Filter)
	}
}

func (sh *shell) cmdBeats(args []string) {
	if len(args) < 2 {
		fmt.Println("usage: beats <clip#> <wav-path>")
		return
	}
	c, ok := sh.clipArg(args)
	if !ok {
		return
	}
	done := sh.analyzer.DetectBeats(sh.store, c.ID, args[1])
	<-done
	if updated, ok := sh.store.GetClip(c.ID); ok && updated.BPM > 0 {
		fmt.Printf("%s: %.0f BPM, %d beats\n", updated.Name, updated.BPM, len(updated.Beats))
	}
}

func (sh *shell) printTimeline() {
	settings := sh.store.Settings()
	clips := sh.store.Clips()
	if len(clips) == 0 {
		fmt.Println("timeline is empty")
		return
	}
	for i := range clips {
		c := &clips[i]
		flags := ""
		if c.IsPinned {
			flags += "P"
		}
		if c.Locked {
			flags += "L"
		}
		if c.IsMuted {
			flags += "M"
		}
		fmt.Printf("%2d. %-24s %s - %s  trim[%d..%d)  x%.2g %-5s %s\n",
			i+1, c.Name,
			timecode.FormatTimecode(c.StartFrame, settings.FrameRate),
			timecode.FormatTimecode(c.EndFrame, settings.FrameRate),
			c.TrimStartFrame, c.TrimEndFrame,
			c.Speed, c.Origin, flags)
	}
}

func (sh *shell) printPool() {
	items := sh.pool.Items()
	if len(items) == 0 {
		fmt.Println("media pool is empty")
		return
	}
	for i, item := range items {
		probed := ""
		if !item.Probed {
			probed = " (unprobed)"
		}
		fmt.Printf("%2d. %-28s %-5s %6d frames%s\n", i+1, item.Filename, item.Type, item.DurationFrames, probed)
	}
}

func (sh *shell) printHelp() {
	fmt.Print(`timeline:
  status|ls            show timeline
  pool                 show media pool
  add <pool#>          add media to timeline
  dup|rm <clip#>       duplicate / remove clip
  reset                clear timeline
mutations:
  slip <clip#>         randomize trim position (length fixed)
  flux [clip#]         randomize duration (all clips when no arg)
  shuffle              shuffle auto clips
  swap <clip#>         swap with a random clip
  chaos                shuffle + flux everything
  magnetize            remove gaps on the primary track
  reorder <a#> <b#>    move clip and repack
  regen [seed]         rebuild auto clips from the media pool
properties:
  pin|lock|mute <clip#>      toggle flags
  volume <clip#> <0-100>     set volume
  speed <clip#> <mult>       set speed (repacks)
  select <clip#>             select trim segment
  seed [value]               show/set project seed
  target [seconds]           show/set target duration
io:
  export [path]        write manifest JSON
  import <path>        load manifest JSON
  save [name] / load <name> / projects
  render               print export instructions
  beats <clip#> <wav>  detect beats from a wav file
  quit
`)
}
