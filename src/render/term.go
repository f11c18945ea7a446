package render

import (
	"math"

	tm "github.com/buger/goterm"

	"github.com/cadenmyers13/oct2025-beamtime/src/analysis"
	"github.com/cadenmyers13/oct2025-beamtime/src/scans"
)

// Term draws the series as a line chart directly in the terminal, the
// fallback for sessions without a display. All series are resampled onto
// the first one's x-grid since the chart shares one row per x value.
func Term(set []*scans.Series, width, height int) {
	if len(set) == 0 {
		return
	}
	data, ok := termData(set)
	if !ok {
		scans.Warnf("no plottable points for the terminal chart")
		return
	}
	if width <= 0 {
		width = tm.Width() - 4
		if width <= 0 {
			width = 100
		}
	}
	if height <= 0 {
		height = tm.Height() - 6
		if height <= 0 {
			height = 20
		}
	}
	chart := tm.NewLineChart(width, height)
	tm.Println(chart.Draw(data))
	tm.Flush()
}

// termData lays the series out as one shared-grid table, one column per
// series. The terminal chart scales cells by the x and y spans, so rows
// with non-finite values are dropped and a grid left with a single x value
// is padded the same way padSinglePoint does it. ok is false when no
// plottable row remains.
func termData(set []*scans.Series) (*tm.DataTable, bool) {
	grid := set[0].X
	cols := make([][]float64, len(set))
	for i, s := range set {
		cols[i] = analysis.Resample(grid, s.X, s.Y)
	}
	rows := make([][]float64, 0, len(grid))
	for r, x := range grid {
		row := make([]float64, 0, len(set)+1)
		row = append(row, x)
		for _, c := range cols {
			row = append(row, c[r])
		}
		if !finiteRow(row) {
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, false
	}
	rows = padFlatGrid(rows)
	data := new(tm.DataTable)
	data.AddColumn(set[0].XLabel)
	for _, s := range set {
		data.AddColumn(s.Name())
	}
	for _, row := range rows {
		data.AddRow(row...)
	}
	return data, true
}

// finiteRow reports whether every value in the row is an ordinary number.
func finiteRow(row []float64) bool {
	for _, v := range row {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// padFlatGrid appends a copy of the last row one x-unit to the right when
// every row sits on the same x value, so the chart's x-range is valid.
func padFlatGrid(rows [][]float64) [][]float64 {
	x := rows[0][0]
	for _, row := range rows[1:] {
		if row[0] != x {
			return rows
		}
	}
	last := rows[len(rows)-1]
	pad := make([]float64, len(last))
	copy(pad, last)
	pad[0]++
	return append(rows, pad)
}
