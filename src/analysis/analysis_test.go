package analysis

import (
	"math"
	"testing"

	"github.com/cadenmyers13/oct2025-beamtime/src/scans"
)

const eps = 1e-12

func almost(a, b float64) bool { return math.Abs(a-b) <= eps }

// TestInterpInterior checks linear interpolation between knots and exact
// values at the knots themselves.
func TestInterpInterior(t *testing.T) {
	xs := []float64{0, 1, 2}
	ys := []float64{0, 10, 40}
	if got := Interp(0.5, xs, ys); !almost(got, 5) {
		t.Fatalf("Interp(0.5) = %g, want 5", got)
	}
	if got := Interp(1.5, xs, ys); !almost(got, 25) {
		t.Fatalf("Interp(1.5) = %g, want 25", got)
	}
	if got := Interp(1, xs, ys); !almost(got, 10) {
		t.Fatalf("Interp(1) = %g, want 10", got)
	}
}

// TestInterpClamps verifies values outside the grid hold the end values,
// matching the resampling used by difference plots.
func TestInterpClamps(t *testing.T) {
	xs := []float64{1, 2}
	ys := []float64{3, 7}
	if got := Interp(-5, xs, ys); got != 3 {
		t.Fatalf("left clamp = %g, want 3", got)
	}
	if got := Interp(99, xs, ys); got != 7 {
		t.Fatalf("right clamp = %g, want 7", got)
	}
	if got := Interp(math.Inf(-1), xs, ys); got != 3 {
		t.Fatalf("-inf clamp = %g, want 3", got)
	}
}

// TestInterpNaN checks a NaN sample point comes back as NaN instead of
// running off the end of the grid search.
func TestInterpNaN(t *testing.T) {
	if got := Interp(math.NaN(), []float64{1, 2}, []float64{3, 7}); !math.IsNaN(got) {
		t.Fatalf("Interp(NaN) = %g, want NaN", got)
	}
}

// TestDifferenceSameGrid checks elementwise subtraction when the grids match
// exactly, with labels carried from the first series.
func TestDifferenceSameGrid(t *testing.T) {
	a := &scans.Series{XLabel: "tth", YLabel: "counts", X: []float64{1, 2, 3}, Y: []float64{10, 20, 30}}
	b := &scans.Series{XLabel: "other", YLabel: "other", X: []float64{1, 2, 3}, Y: []float64{1, 2, 3}}
	d := Difference(a, b)
	want := []float64{9, 18, 27}
	for i := range want {
		if !almost(d.Y[i], want[i]) {
			t.Fatalf("d.Y[%d] = %g, want %g", i, d.Y[i], want[i])
		}
	}
	if d.XLabel != "tth" || d.YLabel != "counts" {
		t.Fatalf("labels = %q, %q, want tth, counts", d.XLabel, d.YLabel)
	}
}

// TestDifferenceResamples checks that a mismatched grid is interpolated onto
// the first series' grid before subtracting.
func TestDifferenceResamples(t *testing.T) {
	a := &scans.Series{X: []float64{0, 1, 2}, Y: []float64{5, 5, 5}}
	b := &scans.Series{X: []float64{0, 2}, Y: []float64{0, 4}}
	d := Difference(a, b)
	// b at x=1 interpolates to 2
	want := []float64{5, 3, 1}
	for i := range want {
		if !almost(d.Y[i], want[i]) {
			t.Fatalf("d.Y[%d] = %g, want %g", i, d.Y[i], want[i])
		}
	}
	if !SameGrid(d.X, a.X) {
		t.Fatal("difference must live on the first series' grid")
	}
}

// TestWaterfallOffsetsCumulative verifies the stack: the second series is
// lifted by the first's span times scale, the third by that plus the
// second's own scaled span.
func TestWaterfallOffsetsCumulative(t *testing.T) {
	set := []*scans.Series{
		{Y: []float64{0, 10}}, // span 10
		{Y: []float64{5, 25}}, // span 20
		{Y: []float64{1, 2}},
	}
	offs := WaterfallOffsets(set, 1.1)
	if offs[0] != 0 {
		t.Fatalf("offs[0] = %g, want 0", offs[0])
	}
	if !almost(offs[1], 11) {
		t.Fatalf("offs[1] = %g, want 11", offs[1])
	}
	if !almost(offs[2], 11+22) {
		t.Fatalf("offs[2] = %g, want 33", offs[2])
	}
}

// TestWaterfallOffsetsSkipsNaN ensures a series of NaNs contributes no span
// instead of poisoning every later offset.
func TestWaterfallOffsetsSkipsNaN(t *testing.T) {
	set := []*scans.Series{
		{Y: []float64{math.NaN(), math.NaN()}},
		{Y: []float64{0, 1}},
	}
	offs := WaterfallOffsets(set, 2)
	if offs[1] != 0 {
		t.Fatalf("offs[1] = %g, want 0 for an all-NaN predecessor", offs[1])
	}
}

// TestValueRange covers the finite filter and the empty case.
func TestValueRange(t *testing.T) {
	lo, hi, ok := ValueRange([]float64{3, math.NaN(), -1, math.Inf(1), 7})
	if !ok || lo != -1 || hi != 7 {
		t.Fatalf("ValueRange = %g, %g, %v, want -1, 7, true", lo, hi, ok)
	}
	if _, _, ok := ValueRange(nil); ok {
		t.Fatal("empty slice must report ok=false")
	}
}

// TestDisplayLabel checks extension stripping and the standard filename
// substitutions used for waterfall legends.
func TestDisplayLabel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"bkgd_LaB6_25degC.txt", "background LaB6 25°C"},
		{"sample.dat", "sample"},
		{"plain", "plain"},
		{".txt", ".txt"},
	}
	for _, c := range cases {
		if got := DisplayLabel(c.in, DefaultLabelSubs); got != c.want {
			t.Errorf("DisplayLabel(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
