package render

import (
	"image/color"
	"image/png"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/fsnotify/fsnotify"

	"github.com/cadenmyers13/oct2025-beamtime/src/scans"
)

const watchDebounce = 250 * time.Millisecond

// Viewer displays rendered frames in an interactive window with export,
// reload and an optional file watcher that redraws on changes.
type Viewer struct {
	AppID string
	Title string
	// Paths are the source files; in watch mode their directories are
	// observed and changes trigger a reload.
	Paths []string
	Watch bool
	// Render draws the current data at the given pixel size. Called on the
	// UI goroutine.
	Render func(w, h int) Frame
	// Reload re-reads the source files. Optional; a nil Reload makes the
	// reload menu entry redraw only.
	Reload func() error
}

// Run opens the window and blocks until it is closed.
func (v *Viewer) Run() {
	if v.Render == nil {
		return
	}
	if v.AppID == "" {
		v.AppID = "com.beamtime.beamplot"
	}
	if v.Title == "" {
		v.Title = "beamplot"
	}
	a := app.NewWithID(v.AppID)
	w := a.NewWindow(v.Title)
	w.Resize(fyne.NewSize(1000, 700))

	imgCanvas := canvas.NewImageFromImage(blank(DefaultWidth, DefaultHeight))
	imgCanvas.FillMode = canvas.ImageFillContain
	imgCanvas.SetMinSize(fyne.NewSize(640, 420))

	readout := widget.NewLabel("")
	var geom Geometry

	redraw := func(note string) {
		cw, chh := windowChartSize(w)
		frame := v.Render(cw, chh)
		if note != "" {
			frame.Image = Stamp(frame.Image, note)
		}
		geom = frame.Geom
		imgCanvas.Image = frame.Image
		imgCanvas.Refresh()
	}
	reload := func(note string) {
		if v.Reload != nil {
			if err := v.Reload(); err != nil {
				scans.Warnf("reload failed: %v; keeping previous chart", err)
				return
			}
		}
		redraw(note)
	}

	// cursor readout in data coordinates
	hover := newHoverArea(
		func(pos fyne.Position, size fyne.Size) {
			if imgCanvas.Image == nil {
				return
			}
			b := imgCanvas.Image.Bounds()
			px, py, ok := viewToImage(float64(pos.X), float64(pos.Y), float64(size.Width), float64(size.Height), float64(b.Dx()), float64(b.Dy()))
			if !ok {
				readout.SetText("")
				return
			}
			x, y, ok := geom.DataAt(px, py, float64(b.Dx()), float64(b.Dy()))
			if !ok {
				readout.SetText("")
				return
			}
			readout.SetText("x=" + formatTick(x) + "  y=" + formatTick(y))
		},
		func() { readout.SetText("") },
	)

	w.SetContent(container.NewBorder(nil, readout, nil, nil, container.NewStack(imgCanvas, hover)))
	v.buildMenus(w, imgCanvas, func() { reload("") })

	done := make(chan struct{})
	w.SetOnClosed(func() { close(done) })

	// Redraw on window resize so the chart re-renders at the new width
	if w.Canvas() != nil {
		prevW := int(w.Canvas().Size().Width)
		go func() {
			t := time.NewTicker(300 * time.Millisecond)
			defer t.Stop()
			for {
				select {
				case <-done:
					return
				case <-t.C:
					c := w.Canvas()
					if c == nil {
						continue
					}
					curW := int(c.Size().Width)
					if curW != prevW {
						prevW = curW
						fyne.Do(func() { redraw("") })
					}
				}
			}
		}()
	}

	if v.Watch && len(v.Paths) > 0 {
		v.watchFiles(done, reload)
	}

	redraw("")
	w.ShowAndRun()
}

// watchFiles observes the directories holding the source files and reloads
// after a short debounce. Watching directories instead of the files
// themselves survives the rename-and-replace saves editors do.
func (v *Viewer) watchFiles(done <-chan struct{}, reload func(note string)) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		scans.Warnf("file watching unavailable: %v", err)
		return
	}
	want := map[string]bool{}
	dirs := map[string]bool{}
	for _, p := range v.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		want[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for d := range dirs {
		if err := watcher.Add(d); err != nil {
			scans.Warnf("watch %s: %v", d, err)
		}
	}
	go func() {
		defer watcher.Close()
		debounce := time.NewTimer(watchDebounce)
		if !debounce.Stop() {
			<-debounce.C
		}
		for {
			select {
			case <-done:
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				abs, err := filepath.Abs(ev.Name)
				if err != nil || !want[abs] {
					continue
				}
				scans.Debugf("change detected: %s (%s)", ev.Name, ev.Op)
				debounce.Reset(watchDebounce)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				scans.Warnf("watch error: %v", err)
			case <-debounce.C:
				fyne.Do(func() { reload("updated " + time.Now().Format("15:04:05")) })
			}
		}
	}()
}

func (v *Viewer) buildMenus(w fyne.Window, img *canvas.Image, reload func()) {
	export := fyne.NewMenuItem("Export PNG…", func() { exportDialog(w, img, v.exportName()) })
	fileMenu := fyne.NewMenu("File",
		export,
		fyne.NewMenuItem("Reload", reload),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { w.Close() }),
	)
	w.SetMainMenu(fyne.NewMainMenu(fileMenu))

	canv := w.Canvas()
	if canv == nil {
		return
	}
	canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyR, Modifier: fyne.KeyModifierSuper}, func(fyne.Shortcut) { reload() })
	canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyR, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { reload() })
	canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyW, Modifier: fyne.KeyModifierSuper}, func(fyne.Shortcut) { w.Close() })
	canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyW, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { w.Close() })
	canv.SetOnTypedKey(func(k *fyne.KeyEvent) {
		if k.Name == fyne.KeyEscape {
			w.Close()
		}
	})
}

// exportName suggests a PNG name derived from the first source file.
func (v *Viewer) exportName() string {
	if len(v.Paths) == 0 {
		return "plot.png"
	}
	base := filepath.Base(v.Paths[0])
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".png"
}

func exportDialog(w fyne.Window, img *canvas.Image, defaultName string) {
	if img == nil || img.Image == nil {
		dialog.ShowInformation("Export", "No chart to export.", w)
		return
	}
	fs := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		defer wc.Close()
		if err := png.Encode(wc, img.Image); err != nil {
			scans.Errorf("export failed: %v", err)
		}
	}, w)
	fs.SetFileName(defaultName)
	fs.Show()
}

// hoverArea is an invisible widget stacked over the chart that feeds mouse
// positions to the readout.
type hoverArea struct {
	widget.BaseWidget
	onMove func(pos fyne.Position, size fyne.Size)
	onOut  func()
}

func newHoverArea(onMove func(fyne.Position, fyne.Size), onOut func()) *hoverArea {
	h := &hoverArea{onMove: onMove, onOut: onOut}
	h.ExtendBaseWidget(h)
	return h
}

func (h *hoverArea) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(canvas.NewRectangle(color.Transparent))
}

func (h *hoverArea) MouseIn(*desktop.MouseEvent) {}

func (h *hoverArea) MouseMoved(ev *desktop.MouseEvent) {
	if h.onMove != nil {
		h.onMove(ev.Position, h.Size())
	}
}

func (h *hoverArea) MouseOut() {
	if h.onOut != nil {
		h.onOut()
	}
}

// windowChartSize picks render dimensions from the current window width so
// the chart gains x-axis space as the window grows.
func windowChartSize(w fyne.Window) (int, int) {
	if w == nil || w.Canvas() == nil {
		return DefaultWidth, DefaultHeight
	}
	sz := w.Canvas().Size()
	cw := int(sz.Width*0.95) - 12
	if cw < 640 {
		cw = 640
	}
	// Keep roughly the 3:2 shape of the standalone figure
	ch := int(float32(cw) * 0.66)
	if ch < 360 {
		ch = 360
	}
	if ch > 900 {
		ch = 900
	}
	return cw, ch
}
