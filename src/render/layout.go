package render

// Geometry records the data ranges and padding a chart was rendered with,
// enough to map a pixel on the image back to approximate data coordinates.
// The pads cover the chart background only; the space go-chart spends on
// axis labels is not accounted for, so the mapping is a readout aid, not a
// measurement.
type Geometry struct {
	XMin, XMax float64
	YMin, YMax float64
	PadLeft    float64
	PadRight   float64
	PadTop     float64
	PadBottom  float64
}

// valid reports whether both data ranges are usable.
func (g Geometry) valid() bool {
	return g.XMax > g.XMin && g.YMax > g.YMin
}

// DataAt maps a point in image pixel space to data coordinates.
// ok is false outside the plot area or when the geometry is unset.
func (g Geometry) DataAt(px, py, imgW, imgH float64) (x, y float64, ok bool) {
	if !g.valid() || imgW <= 0 || imgH <= 0 {
		return 0, 0, false
	}
	plotW := imgW - g.PadLeft - g.PadRight
	plotH := imgH - g.PadTop - g.PadBottom
	if plotW <= 0 || plotH <= 0 {
		return 0, 0, false
	}
	fx := (px - g.PadLeft) / plotW
	fy := (py - g.PadTop) / plotH
	if fx < 0 || fx > 1 || fy < 0 || fy > 1 {
		return 0, 0, false
	}
	x = g.XMin + fx*(g.XMax-g.XMin)
	y = g.YMax - fy*(g.YMax-g.YMin)
	return x, y, true
}

// containRect returns the rectangle an image of imgW x imgH occupies inside
// a view of viewW x viewH under contain-fit scaling, plus the scale factor.
func containRect(viewW, viewH, imgW, imgH float64) (x, y, w, h, scale float64) {
	if imgW <= 0 || imgH <= 0 || viewW <= 0 || viewH <= 0 {
		return 0, 0, viewW, viewH, 1
	}
	sx := viewW / imgW
	sy := viewH / imgH
	scale = sx
	if sy < sx {
		scale = sy
	}
	w = imgW * scale
	h = imgH * scale
	x = (viewW - w) / 2
	y = (viewH - h) / 2
	return x, y, w, h, scale
}

// viewToImage maps view coordinates to image pixel coordinates under the
// same contain-fit placement. ok is false outside the drawn rectangle.
func viewToImage(vx, vy, viewW, viewH, imgW, imgH float64) (px, py float64, ok bool) {
	x, y, w, h, scale := containRect(viewW, viewH, imgW, imgH)
	if scale <= 0 || vx < x || vx > x+w || vy < y || vy > y+h {
		return 0, 0, false
	}
	return (vx - x) / scale, (vy - y) / scale, true
}
