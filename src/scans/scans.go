// Package scans reads beamline scan files: a handful of free-form metadata
// lines followed by rows of whitespace or comma separated numbers. The first
// line whose tokens are all numeric starts the data block; everything above
// it is header. Column labels come from a "#L" header line when present.
package scans

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// LabelMarker prefixes the header line that names the data columns.
// Matching is case sensitive: "#l" is ordinary metadata.
const LabelMarker = "#L"

var (
	// ErrNoNumericData means no line in the file parsed as an all-numeric row.
	ErrNoNumericData = errors.New("no numeric data found")
	// ErrTooFewColumns means the numeric block has fewer than two columns.
	ErrTooFewColumns = errors.New("must have at least two numeric columns")
)

// Series is one scan: the first numeric column against the second,
// with axis labels recovered from the header.
type Series struct {
	Path   string
	XLabel string
	YLabel string
	X      []float64
	Y      []float64
}

// Name returns the base file name, the default legend entry for the series.
func (s *Series) Name() string {
	if s.Path == "" {
		return "scan"
	}
	return filepath.Base(s.Path)
}

// Len returns the number of points.
func (s *Series) Len() int { return len(s.X) }

// splitTokens breaks a line on runs of commas and whitespace.
// Unlike strings.Split it never yields empty tokens.
func splitTokens(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\r' || r == '\v' || r == '\f'
	})
}

func isNumericRow(tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	for _, tok := range tokens {
		if _, err := strconv.ParseFloat(tok, 64); err != nil {
			return false
		}
	}
	return true
}

// DataStart returns the index of the first line whose tokens all parse as
// floats. Blank lines are skipped. ErrNoNumericData when no such line exists.
func DataStart(lines []string) (int, error) {
	for i, line := range lines {
		toks := splitTokens(line)
		if len(toks) == 0 {
			continue
		}
		if isNumericRow(toks) {
			return i, nil
		}
	}
	return 0, ErrNoNumericData
}

// markerLabel scans the header for LabelMarker lines and returns the text of
// the last one before the data block. Later markers override earlier ones.
func markerLabel(lines []string, start int) (string, bool) {
	text, found := "", false
	for _, line := range lines[:start] {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, LabelMarker) {
			text = strings.TrimSpace(trimmed[len(LabelMarker):])
			found = true
		}
	}
	return text, found
}

// precedingLabel returns the header line immediately above the data block,
// the label convention of older acquisition scripts.
func precedingLabel(lines []string, start int) string {
	if start == 0 {
		return ""
	}
	return strings.TrimSpace(lines[start-1])
}

// SplitLabels turns a label line into (x, y) axis names. Missing positions
// fall back to "X" and "Y"; extra tokens beyond the second are ignored.
func SplitLabels(text string) (string, string) {
	toks := splitTokens(text)
	x, y := "X", "Y"
	if len(toks) >= 1 {
		x = toks[0]
	}
	if len(toks) >= 2 {
		y = toks[1]
	}
	return x, y
}

// ParseTable reads the numeric block into two columns. Blank lines are
// skipped and '#' starts a comment that runs to the end of the line. Rows
// must be rectangular with at least two columns; the first two are kept.
func ParseTable(lines []string) (xs, ys []float64, err error) {
	width := -1
	row := 0
	for _, line := range lines {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		toks := splitTokens(line)
		if len(toks) == 0 {
			continue
		}
		row++
		if width == -1 {
			width = len(toks)
			if width < 2 {
				return nil, nil, ErrTooFewColumns
			}
		} else if len(toks) != width {
			return nil, nil, fmt.Errorf("row %d has %d columns, want %d", row, len(toks), width)
		}
		var vals [2]float64
		for j := 0; j < 2; j++ {
			v, perr := strconv.ParseFloat(toks[j], 64)
			if perr != nil {
				return nil, nil, fmt.Errorf("row %d: %w", row, perr)
			}
			vals[j] = v
		}
		xs = append(xs, vals[0])
		ys = append(ys, vals[1])
	}
	if len(xs) == 0 {
		return nil, nil, ErrNoNumericData
	}
	return xs, ys, nil
}

// Parse builds a Series from the raw lines of a scan file. Axis labels come
// from the last "#L" header line; headers without one get the defaults.
func Parse(path string, lines []string) (*Series, error) {
	start, err := DataStart(lines)
	if err != nil {
		return nil, err
	}
	text, _ := markerLabel(lines, start)
	xl, yl := SplitLabels(text)
	xs, ys, err := ParseTable(lines[start:])
	if err != nil {
		return nil, err
	}
	return &Series{Path: path, XLabel: xl, YLabel: yl, X: xs, Y: ys}, nil
}

// ParseLegacy is Parse with the older label convention: the axis names are
// taken from the line immediately above the data block, marker or not.
func ParseLegacy(path string, lines []string) (*Series, error) {
	start, err := DataStart(lines)
	if err != nil {
		return nil, err
	}
	xl, yl := SplitLabels(precedingLabel(lines, start))
	xs, ys, err := ParseTable(lines[start:])
	if err != nil {
		return nil, err
	}
	return &Series{Path: path, XLabel: xl, YLabel: yl, X: xs, Y: ys}, nil
}

func readLines(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return strings.Split(string(raw), "\n"), nil
}

// ReadFile loads and parses one scan file.
func ReadFile(path string) (*Series, error) {
	defer TimeTrack(time.Now(), "read "+filepath.Base(path))
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(path, lines)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	Debugf("parsed %s: %d points, labels %q/%q", path, s.Len(), s.XLabel, s.YLabel)
	return s, nil
}

// ReadFileLegacy loads one scan file using the preceding-line label rule.
func ReadFileLegacy(path string) (*Series, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	s, err := ParseLegacy(path, lines)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
