// Package panels provides UI panels for the application.
package panels

import (
	"fmt"
	"strconv"

	"polygon-measure/internal/app"
	"polygon-measure/pkg/geometry"
	"polygon-measure/ui/canvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// SidePanel provides the calibration and polygon management panel.
type SidePanel struct {
	state     *app.State
	canvas    *canvas.SketchCanvas
	container fyne.CanvasObject

	scaleEntry  *widget.Entry
	dpiEntry    *widget.Entry
	calibStatus *widget.Label

	drawButton  *widget.Button
	drawStatus  *widget.Label
	list        *widget.List
	countLabel  *widget.Label
	deleteBtn   *widget.Button
	selectedIdx int

	onExport func()
	onImport func()
}

// NewSidePanel creates a new side panel bound to the shared state.
func NewSidePanel(state *app.State, cvs *canvas.SketchCanvas) *SidePanel {
	sp := &SidePanel{
		state:       state,
		canvas:      cvs,
		selectedIdx: -1,
	}

	// Calibration entries. Values apply on submit or via the Apply button.
	sp.scaleEntry = widget.NewEntry()
	sp.dpiEntry = widget.NewEntry()
	sp.calibStatus = widget.NewLabel("")
	sp.refreshCalibration()

	applyCalibration := func(string) { sp.applyCalibration() }
	sp.scaleEntry.OnSubmitted = applyCalibration
	sp.dpiEntry.OnSubmitted = applyCalibration
	applyBtn := widget.NewButton("Apply", sp.applyCalibration)

	calibForm := container.New(layout.NewFormLayout(),
		widget.NewLabel("Scale:"), sp.scaleEntry,
		widget.NewLabel("DPI:"), sp.dpiEntry,
	)

	// Drawing mode toggle
	sp.drawStatus = widget.NewLabel("")
	sp.drawButton = widget.NewButton("Start Drawing", func() {
		state.ToggleDrawingMode()
	})
	sp.refreshDrawingMode()

	// Polygon list with live areas
	sp.list = widget.NewList(
		func() int {
			return len(state.Polygons())
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("Polygon")
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			label := obj.(*widget.Label)
			polys := state.Polygons()
			if int(id) >= len(polys) {
				return
			}
			area := geometry.Area(polys[id].Points, state.Scale(), state.DPI())
			label.SetText(fmt.Sprintf("Polygon %d: %.2f", int(id)+1, area))
		},
	)
	sp.list.OnSelected = func(id widget.ListItemID) {
		sp.selectedIdx = int(id)
		sp.deleteBtn.Enable()
		cvs.SetSelected(int(id))
	}
	sp.list.OnUnselected = func(id widget.ListItemID) {
		if sp.selectedIdx == int(id) {
			sp.selectedIdx = -1
			sp.deleteBtn.Disable()
			cvs.SetSelected(-1)
		}
	}

	sp.countLabel = widget.NewLabel("No polygons")

	sp.deleteBtn = widget.NewButton("Delete", func() {
		if sp.selectedIdx >= 0 {
			state.DeletePolygon(sp.selectedIdx)
		}
	})
	sp.deleteBtn.Disable()

	clearBtn := widget.NewButton("Clear All", func() {
		state.Clear()
	})

	exportBtn := widget.NewButton("Export...", func() {
		if sp.onExport != nil {
			sp.onExport()
		}
	})
	importBtn := widget.NewButton("Import...", func() {
		if sp.onImport != nil {
			sp.onImport()
		}
	})

	sp.container = container.NewVBox(
		widget.NewCard("Calibration", "", container.NewVBox(
			calibForm,
			applyBtn,
			sp.calibStatus,
		)),
		widget.NewCard("Drawing", "", container.NewVBox(
			sp.drawButton,
			sp.drawStatus,
		)),
		widget.NewCard("Polygons", "", container.NewVBox(
			sp.countLabel,
			container.NewGridWrap(fyne.NewSize(220, 180), sp.list),
			container.NewHBox(sp.deleteBtn, clearBtn),
		)),
		widget.NewCard("Snapshot", "", container.NewHBox(
			exportBtn, importBtn,
		)),
	)

	state.On(app.EventModeChanged, func(data interface{}) {
		sp.refreshDrawingMode()
	})
	state.On(app.EventPolygonAdded, func(data interface{}) {
		sp.refreshList()
	})
	state.On(app.EventPolygonRemoved, func(data interface{}) {
		sp.list.UnselectAll()
		sp.refreshList()
	})
	state.On(app.EventVertexMoved, func(data interface{}) {
		sp.list.Refresh()
	})
	state.On(app.EventCalibrationChanged, func(data interface{}) {
		sp.refreshCalibration()
		sp.list.Refresh()
	})
	state.On(app.EventSnapshotLoaded, func(data interface{}) {
		sp.list.UnselectAll()
		sp.refreshCalibration()
		sp.refreshList()
	})

	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// OnExport sets the callback for the Export button.
func (sp *SidePanel) OnExport(callback func()) {
	sp.onExport = callback
}

// OnImport sets the callback for the Import button.
func (sp *SidePanel) OnImport(callback func()) {
	sp.onImport = callback
}

func (sp *SidePanel) applyCalibration() {
	scale, err := strconv.ParseFloat(sp.scaleEntry.Text, 64)
	if err != nil {
		sp.calibStatus.SetText("Scale must be a number")
		return
	}
	dpi, err := strconv.ParseFloat(sp.dpiEntry.Text, 64)
	if err != nil {
		sp.calibStatus.SetText("DPI must be a number")
		return
	}
	if !sp.state.SetCalibration(scale, dpi) {
		sp.calibStatus.SetText("Scale and DPI must be positive")
		return
	}
	sp.calibStatus.SetText("")
}

func (sp *SidePanel) refreshCalibration() {
	sp.scaleEntry.SetText(strconv.FormatFloat(sp.state.Scale(), 'g', -1, 64))
	sp.dpiEntry.SetText(strconv.FormatFloat(sp.state.DPI(), 'g', -1, 64))
}

func (sp *SidePanel) refreshDrawingMode() {
	if sp.state.DrawingEnabled() {
		sp.drawButton.SetText("Stop Drawing")
		sp.drawStatus.SetText("Click to place vertices.\nClick the first vertex to close.")
	} else {
		sp.drawButton.SetText("Start Drawing")
		sp.drawStatus.SetText("Drag a vertex to move it.")
	}
}

func (sp *SidePanel) refreshList() {
	count := len(sp.state.Polygons())
	switch count {
	case 0:
		sp.countLabel.SetText("No polygons")
	case 1:
		sp.countLabel.SetText("1 polygon")
	default:
		sp.countLabel.SetText(fmt.Sprintf("%d polygons", count))
	}
	sp.list.Refresh()
}
