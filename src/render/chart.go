// Package render turns parsed scan series into chart images: the overlay,
// waterfall and difference layouts, plus the interactive window and the
// terminal fallback that display them.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/cadenmyers13/oct2025-beamtime/src/analysis"
	"github.com/cadenmyers13/oct2025-beamtime/src/scans"
)

// traceColor picks the palette color for the i-th trace.
func traceColor(i int) drawing.Color {
	return chart.GetDefaultColor(i)
}

const (
	DefaultWidth  = 900
	DefaultHeight = 600
	// DefaultScale separates waterfall traces by a little more than each
	// predecessor's full value span.
	DefaultScale     = 1.1
	DefaultLineWidth = 1.5
)

// Options adjust a rendered chart. Zero values fall back to the defaults;
// the grid is drawn unless NoGrid is set.
type Options struct {
	Title     string
	Width     int
	Height    int
	Scale     float64
	LineWidth float64
	NoGrid    bool
	LabelSubs []analysis.LabelSub
}

func (o Options) size() (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

// scale treats 0 as unset; negative separations stack downward.
func (o Options) scale() float64 {
	if o.Scale == 0 {
		return DefaultScale
	}
	return o.Scale
}

func (o Options) lineWidth() float64 {
	if o.LineWidth <= 0 {
		return DefaultLineWidth
	}
	return o.LineWidth
}

func (o Options) subs() []analysis.LabelSub {
	if o.LabelSubs == nil {
		return analysis.DefaultLabelSubs
	}
	return o.LabelSubs
}

// Frame is one rendered chart image plus the mapping back to data space
// used by the window's cursor readout.
type Frame struct {
	Image image.Image
	Geom  Geometry
}

// lineStyle returns the stroke style for the i-th trace.
func lineStyle(i int, width float64) chart.Style {
	return chart.Style{
		StrokeWidth: width,
		StrokeColor: traceColor(i),
	}
}

// gridStyle is the dashed light grid drawn behind every layout.
func gridStyle(hidden bool) chart.Style {
	return chart.Style{
		Hidden:          hidden,
		StrokeColor:     chart.ColorAlternateGray.WithAlpha(153),
		StrokeWidth:     1.0,
		StrokeDashArray: []float64{4.0, 4.0},
	}
}

// padSinglePoint pads one-point data to two points so the x-range is valid.
func padSinglePoint(xs, ys []float64) ([]float64, []float64) {
	if len(xs) != 1 {
		return xs, ys
	}
	return []float64{xs[0], xs[0] + 1}, []float64{ys[0], ys[0]}
}

// figure accumulates traces and their joint bounds before building the
// final chart. All four layouts go through it.
type figure struct {
	title      string
	xLabel     string
	yLabel     string
	legend     bool
	noGrid     bool
	width      int
	height     int
	series     []chart.Series
	minX, maxX float64
	minY, maxY float64
	haveX      bool
	haveY      bool
}

func newFigure(opt Options) *figure {
	w, h := opt.size()
	return &figure{
		title:  opt.Title,
		noGrid: opt.NoGrid,
		width:  w,
		height: h,
		minX:   math.MaxFloat64,
		maxX:   -math.MaxFloat64,
		minY:   math.MaxFloat64,
		maxY:   -math.MaxFloat64,
	}
}

func (fig *figure) add(name string, xs, ys []float64, st chart.Style) {
	xs, ys = padSinglePoint(xs, ys)
	if lo, hi, ok := analysis.ValueRange(xs); ok {
		if lo < fig.minX {
			fig.minX = lo
		}
		if hi > fig.maxX {
			fig.maxX = hi
		}
		fig.haveX = true
	}
	if lo, hi, ok := analysis.ValueRange(ys); ok {
		if lo < fig.minY {
			fig.minY = lo
		}
		if hi > fig.maxY {
			fig.maxY = hi
		}
		fig.haveY = true
	}
	fig.series = append(fig.series, chart.ContinuousSeries{
		Name:    name,
		XValues: xs,
		YValues: ys,
		Style:   st,
	})
}

// build assembles the chart with nice rounded axis bounds and tick marks.
func (fig *figure) build() (chart.Chart, Geometry) {
	xAxis := chart.XAxis{Name: fig.xLabel, GridMajorStyle: gridStyle(fig.noGrid)}
	yAxis := chart.YAxis{Name: fig.yLabel, GridMajorStyle: gridStyle(fig.noGrid)}
	geom := Geometry{PadLeft: 16, PadRight: 12, PadTop: 14, PadBottom: 28}
	if fig.legend {
		geom.PadTop = 40
	}
	if fig.haveX {
		lo, hi := niceAxisBounds(fig.minX, fig.maxX)
		xAxis.Range = &chart.ContinuousRange{Min: lo, Max: hi}
		xAxis.Ticks = niceTicks(lo, hi, 7)
		geom.XMin, geom.XMax = lo, hi
	}
	if fig.haveY {
		lo, hi := niceAxisBounds(fig.minY, fig.maxY)
		yAxis.Range = &chart.ContinuousRange{Min: lo, Max: hi}
		yAxis.Ticks = niceTicks(lo, hi, 6)
		geom.YMin, geom.YMax = lo, hi
	}
	ch := chart.Chart{
		Title: fig.title,
		Background: chart.Style{Padding: chart.Box{
			Top:    int(geom.PadTop),
			Left:   int(geom.PadLeft),
			Right:  int(geom.PadRight),
			Bottom: int(geom.PadBottom),
		}},
		Width:  fig.width,
		Height: fig.height,
		XAxis:  xAxis,
		YAxis:  yAxis,
		Series: fig.series,
	}
	if fig.legend {
		ch.Elements = []chart.Renderable{chart.LegendThin(&ch)}
	}
	return ch, geom
}

// buildOverlay plots every series as its own trace with a shared legend
// above the axes. Axis names come from the first series.
func buildOverlay(set []*scans.Series, opt Options) (chart.Chart, Geometry) {
	fig := newFigure(opt)
	fig.legend = len(set) > 1
	if len(set) > 0 {
		fig.xLabel, fig.yLabel = set[0].XLabel, set[0].YLabel
	}
	for i, s := range set {
		fig.add(s.Name(), s.X, s.Y, lineStyle(i, opt.lineWidth()))
	}
	return fig.build()
}

// buildWaterfall stacks the series with cumulative vertical offsets and
// legend labels tidied from the file names.
func buildWaterfall(set []*scans.Series, opt Options) (chart.Chart, Geometry) {
	fig := newFigure(opt)
	fig.legend = len(set) > 1
	if len(set) > 0 {
		fig.xLabel, fig.yLabel = set[0].XLabel, set[0].YLabel
	}
	offs := analysis.WaterfallOffsets(set, opt.scale())
	for i, s := range set {
		fig.add(analysis.DisplayLabel(s.Name(), opt.subs()), s.X, analysis.OffsetY(s.Y, offs[i]), lineStyle(i, opt.lineWidth()))
	}
	return fig.build()
}

// buildDiff plots a minus b on a's grid. No legend; the subtraction is
// spelled out in the title instead.
func buildDiff(a, b *scans.Series, opt Options) (chart.Chart, Geometry) {
	d := analysis.Difference(a, b)
	fig := newFigure(opt)
	if fig.title == "" {
		fig.title = fmt.Sprintf("%s - %s", a.Name(), b.Name())
	}
	fig.xLabel, fig.yLabel = d.XLabel, d.YLabel
	fig.add("", d.X, d.Y, lineStyle(0, opt.lineWidth()))
	return fig.build()
}

// buildSingle plots one series titled with its file name.
func buildSingle(s *scans.Series, opt Options) (chart.Chart, Geometry) {
	fig := newFigure(opt)
	if fig.title == "" {
		fig.title = s.Name()
	}
	fig.xLabel, fig.yLabel = s.XLabel, s.YLabel
	fig.add("", s.X, s.Y, lineStyle(0, opt.lineWidth()))
	return fig.build()
}

// Overlay renders the default multi-series layout.
func Overlay(set []*scans.Series, opt Options) Frame {
	ch, geom := buildOverlay(set, opt)
	return Frame{Image: renderImage(ch), Geom: geom}
}

// Waterfall renders the vertically offset stack.
func Waterfall(set []*scans.Series, opt Options) Frame {
	ch, geom := buildWaterfall(set, opt)
	return Frame{Image: renderImage(ch), Geom: geom}
}

// Diff renders the difference of two series.
func Diff(a, b *scans.Series, opt Options) Frame {
	ch, geom := buildDiff(a, b, opt)
	return Frame{Image: renderImage(ch), Geom: geom}
}

// Single renders one series on its own axes.
func Single(s *scans.Series, opt Options) Frame {
	ch, geom := buildSingle(s, opt)
	return Frame{Image: renderImage(ch), Geom: geom}
}

// renderImage rasterizes the chart. Render errors fall back to a blank
// image so the window still updates visibly.
func renderImage(ch chart.Chart) image.Image {
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		scans.Warnf("chart render error: %v; showing blank fallback", err)
		return blank(ch.Width, ch.Height)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		scans.Warnf("chart decode error: %v; showing blank fallback", err)
		return blank(ch.Width, ch.Height)
	}
	return img
}

// WritePNG encodes a rendered frame to path.
func WritePNG(frame Frame, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, frame.Image); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func blank(w, h int) image.Image {
	if w <= 0 || h <= 0 {
		w, h = DefaultWidth, DefaultHeight
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	// subtle background
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 18, G: 18, B: 18, A: 255})
		}
	}
	return img
}

func niceAxisBounds(min, max float64) (float64, float64) {
	if math.IsNaN(min) || math.IsNaN(max) {
		return min, max
	}
	if max <= min {
		max = min + 1
	}
	span := max - min
	// 5% margin on both sides
	pad := span * 0.05
	if pad <= 0 {
		pad = 1
	}
	a := min - pad
	b := max + pad
	// round to nearest "nice" increments based on span order of magnitude
	mag := math.Pow(10, math.Floor(math.Log10(span)))
	if !math.IsInf(mag, 0) && mag > 0 {
		a = math.Floor(a/mag) * mag
		b = math.Ceil(b/mag) * mag
	}
	return a, b
}

// niceTicks generates up to n desired tick marks between [min, max] using nice increments.
func niceTicks(min, max float64, n int) []chart.Tick {
	if n < 2 || math.IsNaN(min) || math.IsNaN(max) {
		return nil
	}
	if max <= min {
		max = min + 1
	}
	span := max - min
	// Preferred tick steps: 1, 2, 2.5, 5, 10 ... scaled by power of 10
	mag := math.Pow(10, math.Floor(math.Log10(span/float64(n-1))))
	candidates := []float64{1, 2, 2.5, 5, 10}
	bestStep := mag
	bestScore := math.MaxFloat64
	for _, c := range candidates {
		step := c * mag
		count := math.Ceil((max - min) / step)
		if count < 2 {
			count = 2
		}
		score := math.Abs(count - float64(n))
		if score < bestScore {
			bestScore = score
			bestStep = step
		}
	}
	start := math.Floor(min/bestStep) * bestStep
	end := math.Ceil(max/bestStep) * bestStep
	// limit to a reasonable number of ticks (<= n+2)
	ticks := []chart.Tick{}
	for v := start; v <= end+bestStep/2; v += bestStep {
		ticks = append(ticks, chart.Tick{Value: v, Label: formatTick(v)})
		if len(ticks) > n+2 {
			break
		}
	}
	return ticks
}

func formatTick(v float64) string {
	if v == 0 {
		return "0"
	}
	av := math.Abs(v)
	switch {
	case av >= 1000:
		return fmt.Sprintf("%.0f", v)
	case av >= 100:
		return fmt.Sprintf("%.0f", v)
	case av >= 10:
		return fmt.Sprintf("%.1f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
