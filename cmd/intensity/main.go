// Intensity is the older single-file plotter, kept around because the
// beamline notebooks still call it: one scan file, axis labels taken from
// the line directly above the numeric block, curve shown in a window.
// Its messages and exit codes are part of that contract.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/cadenmyers13/oct2025-beamtime/src/render"
	"github.com/cadenmyers13/oct2025-beamtime/src/scans"
)

func main() {
	var export string
	flag.StringVar(&export, "export", "", "Write the chart to this PNG file instead of opening a window")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Println("Usage: intensity <filename>")
		os.Exit(1)
	}
	path := flag.Arg(0)
	if _, err := os.Stat(path); err != nil {
		fmt.Printf("Error: file not found -> %s\n", path)
		os.Exit(1)
	}
	s, err := scans.ReadFileLegacy(path)
	if err != nil {
		fmt.Println(legacyMessage(err))
		os.Exit(1)
	}
	if export != "" {
		if err := render.WritePNG(render.Single(s, render.Options{}), export); err != nil {
			fmt.Printf("Error writing %s: %v\n", export, err)
			os.Exit(1)
		}
		return
	}
	viewer := &render.Viewer{
		Title: s.Name(),
		Paths: []string{path},
		Render: func(w, h int) render.Frame {
			return render.Single(s, render.Options{Width: w, Height: h})
		},
		Reload: func() error {
			ns, err := scans.ReadFileLegacy(path)
			if err != nil {
				return err
			}
			s = ns
			return nil
		},
	}
	viewer.Run()
}

// legacyMessage maps parse failures onto the wording the old tool printed.
func legacyMessage(err error) string {
	switch {
	case errors.Is(err, scans.ErrNoNumericData):
		return "Error: No numeric data found in file."
	case errors.Is(err, scans.ErrTooFewColumns):
		return "Error: file must have at least two numeric columns."
	default:
		return fmt.Sprintf("Error reading numeric data: %v", err)
	}
}
