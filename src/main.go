// Beamplot renders two-column beamline scan files as line charts.
//
// Layouts:
//  1. Overlay (default): each file becomes its own trace; with several files
//     a shared legend sits above the axes.
//  2. Waterfall (--waterfall): traces stack with cumulative vertical offsets
//     so near-identical curves stay readable.
//  3. Difference (--diff): exactly two files; the second is subtracted from
//     the first, resampled onto its x-grid when the grids differ.
//
// Output is an interactive window by default; --export writes a PNG and
// --term draws the chart in the terminal instead. In window mode --watch
// redraws whenever an input file changes on disk.
//
// Design notes:
//   - Multi-file modes skip unreadable files with a warning and fail only when
//     nothing is left to plot. The difference mode needs both files.
//   - Settings resolve in order: built-in defaults, the optional TOML config
//     file, explicit command-line flags.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cadenmyers13/oct2025-beamtime/src/analysis"
	"github.com/cadenmyers13/oct2025-beamtime/src/render"
	"github.com/cadenmyers13/oct2025-beamtime/src/scans"
)

const (
	modeOverlay   = "overlay"
	modeWaterfall = "waterfall"
	modeDiff      = "diff"
)

// session carries the parsed inputs and rendering options through the life
// of one invocation, including reloads in watch mode.
type session struct {
	mode    string
	files   []string
	opt     render.Options
	set     []*scans.Series
	skipped int
}

// load reads every input file. Overlay and waterfall skip files that fail
// to parse; the difference mode requires both.
func (s *session) load() error {
	if s.mode == modeDiff {
		a, err := scans.ReadFile(s.files[0])
		if err != nil {
			return err
		}
		b, err := scans.ReadFile(s.files[1])
		if err != nil {
			return err
		}
		s.set = []*scans.Series{a, b}
		return nil
	}
	loaded := make([]*scans.Series, 0, len(s.files))
	skipped := 0
	for _, path := range s.files {
		sr, err := scans.ReadFile(path)
		if err != nil {
			scans.Warnf("skipping %v", err)
			skipped++
			continue
		}
		loaded = append(loaded, sr)
	}
	if len(loaded) == 0 {
		return errors.New("no plottable files")
	}
	s.set = loaded
	s.skipped = skipped
	return nil
}

// frame renders the current data at the requested pixel size.
func (s *session) frame(w, h int) render.Frame {
	opt := s.opt
	opt.Width, opt.Height = w, h
	switch s.mode {
	case modeDiff:
		return render.Diff(s.set[0], s.set[1], opt)
	case modeWaterfall:
		return render.Waterfall(s.set, opt)
	default:
		if len(s.set) == 1 {
			return render.Single(s.set[0], opt)
		}
		return render.Overlay(s.set, opt)
	}
}

// termSet prepares the series list for the terminal renderer, applying the
// same per-mode transforms the image layouts use.
func (s *session) termSet() []*scans.Series {
	switch s.mode {
	case modeDiff:
		d := analysis.Difference(s.set[0], s.set[1])
		d.Path = fmt.Sprintf("%s - %s", s.set[0].Name(), s.set[1].Name())
		return []*scans.Series{d}
	case modeWaterfall:
		scale := s.opt.Scale
		if scale == 0 {
			scale = render.DefaultScale
		}
		subs := s.opt.LabelSubs
		if subs == nil {
			subs = analysis.DefaultLabelSubs
		}
		offs := analysis.WaterfallOffsets(s.set, scale)
		out := make([]*scans.Series, len(s.set))
		for i, sr := range s.set {
			out[i] = &scans.Series{
				Path:   analysis.DisplayLabel(sr.Name(), subs),
				XLabel: sr.XLabel,
				YLabel: sr.YLabel,
				X:      sr.X,
				Y:      analysis.OffsetY(sr.Y, offs[i]),
			}
		}
		return out
	default:
		return s.set
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: beamplot [flags] <file> [file ...]\n")
	fmt.Fprintf(os.Stderr, "       beamplot --waterfall [flags] <file> [file ...]\n")
	fmt.Fprintf(os.Stderr, "       beamplot --diff [flags] <file1> <file2>\n\nFlags:\n")
	flag.PrintDefaults()
}

func main() {
	waterfall := flag.Bool("waterfall", false, "Stack the series with cumulative vertical offsets")
	diff := flag.Bool("diff", false, "Plot the difference of exactly two files")
	flag.Float64("scale", render.DefaultScale, "Waterfall separation as a multiple of each series' value span (0 means the default)")
	title := flag.String("title", "", "Chart title override")
	flag.Int("width", render.DefaultWidth, "Chart width in pixels for --export")
	flag.Int("height", render.DefaultHeight, "Chart height in pixels for --export")
	export := flag.String("export", "", "Write the chart to this PNG file instead of opening a window")
	term := flag.Bool("term", false, "Draw the chart in the terminal instead of opening a window")
	watch := flag.Bool("watch", false, "Redraw when the input files change (window mode only)")
	configPath := flag.String("config", "", "Path to a TOML settings file (default: the per-user config)")
	logLevel := flag.String("log-level", "info", "Log level (debug|info|warn|error)")
	flag.Usage = usage
	flag.Parse()

	scans.SetLogLevel(*logLevel)

	cfgPath, err := resolveConfigPath(*configPath)
	if err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}
	cfg, err := LoadConfig(cfgPath)
	if err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}
	// Explicit flags beat the config file.
	applyFlagOverrides(&cfg, flag.CommandLine)
	scans.SetLogLevel(cfg.LogLevel)

	if *waterfall && *diff {
		fmt.Println("cannot combine --waterfall and --diff")
		os.Exit(1)
	}
	if *export != "" && *term {
		fmt.Println("cannot combine --export and --term")
		os.Exit(1)
	}
	if *watch && (*export != "" || *term) {
		fmt.Println("--watch only applies to the interactive window")
		os.Exit(1)
	}
	files := flag.Args()
	if len(files) == 0 {
		usage()
		os.Exit(1)
	}
	if *diff && len(files) != 2 {
		fmt.Println("--diff needs exactly two files")
		os.Exit(1)
	}

	mode := modeOverlay
	switch {
	case *waterfall:
		mode = modeWaterfall
	case *diff:
		mode = modeDiff
	}

	sess := &session{
		mode:  mode,
		files: files,
		opt: render.Options{
			Title:     *title,
			Width:     cfg.Width,
			Height:    cfg.Height,
			Scale:     cfg.Scale,
			LineWidth: cfg.LineWidth,
			NoGrid:    !cfg.Grid,
			LabelSubs: cfg.labelSubs(),
		},
	}
	if err := sess.load(); err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}

	switch {
	case *export != "":
		if err := render.WritePNG(sess.frame(cfg.Width, cfg.Height), *export); err != nil {
			fmt.Printf("export: %v\n", err)
			os.Exit(1)
		}
		scans.Infof("wrote %s", *export)
	case *term:
		render.Term(sess.termSet(), 0, 0)
	default:
		viewer := &render.Viewer{
			Title: windowTitle(files),
			Paths: files,
			Watch: *watch,
			Render: func(w, h int) render.Frame {
				f := sess.frame(w, h)
				if sess.skipped > 0 {
					f.Image = render.Stamp(f.Image, fmt.Sprintf("skipped %d of %d files", sess.skipped, len(files)))
				}
				return f
			},
			Reload: sess.load,
		}
		viewer.Run()
	}
}

// windowTitle names the window after the plotted files.
func windowTitle(files []string) string {
	if len(files) == 0 {
		return "beamplot"
	}
	title := "beamplot - " + filepath.Base(files[0])
	if len(files) > 1 {
		title = fmt.Sprintf("%s +%d", title, len(files)-1)
	}
	return title
}
