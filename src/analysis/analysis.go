// Package analysis holds the numeric pieces shared by the plotting modes:
// value ranges, linear resampling, series differences and the cumulative
// offsets that separate waterfall stacks.
package analysis

import (
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cadenmyers13/oct2025-beamtime/src/scans"
)

// ValueRange returns the smallest and largest finite values in vs.
// ok is false when vs contains no finite value.
func ValueRange(vs []float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
		ok = true
	}
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}

// Interp evaluates the piecewise-linear function through (xs, ys) at x.
// Outside the grid the end values are held constant; a NaN x yields NaN.
// xs must be non-decreasing; no validation is performed.
func Interp(x float64, xs, ys []float64) float64 {
	n := len(xs)
	if n == 0 || math.IsNaN(x) {
		return math.NaN()
	}
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[n-1] {
		return ys[n-1]
	}
	j := sort.SearchFloat64s(xs, x)
	if xs[j] == x {
		return ys[j]
	}
	t := (x - xs[j-1]) / (xs[j] - xs[j-1])
	return ys[j-1] + t*(ys[j]-ys[j-1])
}

// Resample evaluates the series (xs, ys) on a new grid.
func Resample(grid, xs, ys []float64) []float64 {
	out := make([]float64, len(grid))
	for i, x := range grid {
		out[i] = Interp(x, xs, ys)
	}
	return out
}

// SameGrid reports whether two x-grids are elementwise identical.
func SameGrid(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Difference subtracts b from a on a's grid. When the grids differ, b is
// first resampled onto a's grid. Axis labels carry over from a.
func Difference(a, b *scans.Series) *scans.Series {
	by := b.Y
	if !SameGrid(a.X, b.X) {
		by = Resample(a.X, b.X, b.Y)
	}
	x := make([]float64, len(a.X))
	copy(x, a.X)
	y := make([]float64, len(a.Y))
	for i := range y {
		y[i] = a.Y[i] - by[i]
	}
	return &scans.Series{XLabel: a.XLabel, YLabel: a.YLabel, X: x, Y: y}
}

// WaterfallOffsets returns the vertical shift for each series in a stack.
// The first is unshifted; each later one sits above the previous by that
// series' own value span times scale, accumulated in order.
func WaterfallOffsets(set []*scans.Series, scale float64) []float64 {
	offs := make([]float64, len(set))
	for i := 1; i < len(set); i++ {
		span := 0.0
		if lo, hi, ok := ValueRange(set[i-1].Y); ok {
			span = hi - lo
		}
		offs[i] = offs[i-1] + span*scale
	}
	return offs
}

// OffsetY returns ys shifted by off.
func OffsetY(ys []float64, off float64) []float64 {
	out := make([]float64, len(ys))
	for i, v := range ys {
		out[i] = v + off
	}
	return out
}

// LabelSub rewrites one fragment of a legend label.
type LabelSub struct {
	Old string
	New string
}

// DefaultLabelSubs tidy the file-name fragments our acquisition scripts
// produce. Applied in order by DisplayLabel.
var DefaultLabelSubs = []LabelSub{
	{Old: "bkgd", New: "background"},
	{Old: "degC", New: "°C"},
	{Old: "_", New: " "},
}

// DisplayLabel derives a legend label from a file name: the extension is
// dropped and each substitution applied in order. An empty result falls
// back to the original name.
func DisplayLabel(name string, subs []LabelSub) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	for _, s := range subs {
		base = strings.ReplaceAll(base, s.Old, s.New)
	}
	base = strings.TrimSpace(base)
	if base == "" {
		return name
	}
	return base
}
