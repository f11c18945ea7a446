package main

import (
	"fmt"
	"math"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"

	"github.com/cadenmyers13/oct2025-beamtime/src/render"
	"github.com/cadenmyers13/oct2025-beamtime/src/scans"
)

// Renders a synthetic curve in a short-lived window to verify the chart and
// display stack work on this machine.
func main() {
	fmt.Println("[plotprobe] starting minimal chart window")
	n := 200
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		x := float64(i) * 4 * math.Pi / float64(n-1)
		xs[i] = x
		ys[i] = math.Sin(x) * math.Exp(-x/8)
	}
	s := &scans.Series{Path: "probe", XLabel: "x", YLabel: "damped sin(x)", X: xs, Y: ys}
	frame := render.Single(s, render.Options{Width: 640, Height: 400})

	a := app.New()
	w := a.NewWindow("Plot Probe")
	img := canvas.NewImageFromImage(frame.Image)
	img.FillMode = canvas.ImageFillContain
	img.SetMinSize(fyne.NewSize(640, 400))
	w.SetContent(img)
	go func() {
		time.Sleep(5 * time.Second)
		fmt.Println("[plotprobe] closing window via fyne.Do")
		fyne.Do(func() { w.Close() })
	}()
	w.ShowAndRun()
	fmt.Println("[plotprobe] exited cleanly")
}
