// Command staticpoly shows a fixed polygon whose vertices can be
// dragged. Hovering an edge pops up its length in raw pixels.
package main

import (
	"flag"

	"polygon-measure/internal/app"
	"polygon-measure/ui/canvas"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
)

func main() {
	width := flag.Float64("width", 400, "Canvas width in pixels")
	height := flag.Float64("height", 300, "Canvas height in pixels")
	flag.Parse()

	fyneApp := fyneapp.New()
	win := fyneApp.NewWindow("Static Polygon")

	editor := app.DefaultEditor(*width, *height)
	view := canvas.NewStaticEditor(editor, fyne.NewSize(float32(*width), float32(*height)))

	win.SetContent(view)
	win.Resize(fyne.NewSize(float32(*width), float32(*height)))
	win.ShowAndRun()
}
