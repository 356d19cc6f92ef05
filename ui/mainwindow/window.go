// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"polygon-measure/internal/app"
	"polygon-measure/internal/snapshot"
	"polygon-measure/internal/version"
	"polygon-measure/pkg/geometry"
	"polygon-measure/ui/canvas"
	"polygon-measure/ui/panels"
	"polygon-measure/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

const baseTitle = "Polygon Measure"

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *app.State
	prefs     *prefs.Prefs
	canvas    *canvas.SketchCanvas
	sidePanel *panels.SidePanel
	statusBar *widget.Label
	zoomLabel *widget.Label
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, store *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow(baseTitle)

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  store,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewSketchCanvas(mw.state)

	mw.sidePanel = panels.NewSidePanel(mw.state, mw.canvas)
	mw.sidePanel.OnExport(mw.onSaveSnapshotAs)
	mw.sidePanel.OnImport(mw.onOpenSnapshot)

	mw.statusBar = widget.NewLabel("Ready")
	mw.zoomLabel = widget.NewLabel("100%")
	mw.canvas.OnZoomChange(func(zoom float64) {
		mw.zoomLabel.SetText(fmt.Sprintf("%.0f%%", zoom*100))
	})
	mw.canvas.OnPolygonHover(func(index int) {
		if index < 0 {
			mw.updateStatus("")
			return
		}
		polys := mw.state.Polygons()
		if index >= len(polys) {
			return
		}
		area := geometry.Area(polys[index].Points, mw.state.Scale(), mw.state.DPI())
		mw.updateStatus(fmt.Sprintf("Polygon %d: %d vertices, area %.2f",
			index+1, len(polys[index].Points), area))
	})

	toolbar := mw.createToolbar()

	canvasArea := container.NewBorder(
		toolbar, // top
		nil,     // bottom
		nil,     // left
		nil,     // right
		mw.canvas.Container(),
	)

	split := container.NewHSplit(
		mw.sidePanel.Container(),
		canvasArea,
	)
	split.SetOffset(0.25)

	content := container.NewBorder(
		nil,
		container.NewPadded(container.NewBorder(nil, nil, nil, mw.zoomLabel, mw.statusBar)),
		nil,
		nil,
		split,
	)

	mw.SetContent(content)
	mw.Resize(fyne.NewSize(1100, 750))
}

// createToolbar creates the toolbar with zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	zoomOutBtn := widget.NewButton("-", mw.canvas.ZoomOut)
	zoomInBtn := widget.NewButton("+", mw.canvas.ZoomIn)
	actualBtn := widget.NewButton("1:1", func() {
		mw.canvas.SetZoom(1.0)
	})

	return container.NewHBox(
		widget.NewLabel("Zoom:"),
		zoomOutBtn,
		zoomInBtn,
		actualBtn,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New Sketch", mw.onNewSketch),
		fyne.NewMenuItem("Open Snapshot...", mw.onOpenSnapshot),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save Snapshot", mw.onSaveSnapshot),
		fyne.NewMenuItem("Save Snapshot As...", mw.onSaveSnapshotAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Cancel Polygon", mw.state.CancelInProgress),
		fyne.NewMenuItem("Clear All", mw.onClearAll),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.canvas.ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.canvas.ZoomOut),
		fyne.NewMenuItem("Actual Size", func() { mw.canvas.SetZoom(1.0) }),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu, helpMenu))
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventSnapshotLoaded, func(data interface{}) {
		if path, ok := data.(string); ok && path != "" {
			mw.SetTitle(baseTitle + " - " + filepath.Base(path))
			mw.updateStatus("Loaded " + path)
		} else {
			mw.SetTitle(baseTitle)
		}
	})

	mw.state.On(app.EventSnapshotSaved, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.SetTitle(baseTitle + " - " + filepath.Base(path))
			mw.updateStatus("Saved " + path)
		}
	})

	mw.state.On(app.EventModified, func(data interface{}) {
		modified, ok := data.(bool)
		if !ok {
			return
		}
		title := strings.TrimSuffix(mw.Title(), " *")
		if modified {
			title += " *"
		}
		mw.SetTitle(title)
	})

	mw.state.On(app.EventPolygonAdded, func(data interface{}) {
		mw.updateStatus(fmt.Sprintf("Polygon closed (%d total)", len(mw.state.Polygons())))
	})

	mw.state.On(app.EventCalibrationChanged, func(data interface{}) {
		mw.prefs.SetFloat(prefs.KeyScale, mw.state.Scale())
		mw.prefs.SetFloat(prefs.KeyDPI, mw.state.DPI())
	})
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.String(prefs.KeyLastDirectory)
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.prefs.SetString(prefs.KeyLastDirectory, filepath.Dir(filePath))
}

// RestoreLastSnapshot reloads the snapshot that was open when the
// application last exited. Called on startup when no file argument
// was given.
func (mw *MainWindow) RestoreLastSnapshot() {
	path := mw.prefs.String(prefs.KeyLastSnapshot)
	if path == "" {
		return
	}
	if err := mw.state.LoadSnapshot(path); err != nil {
		mw.updateStatus(fmt.Sprintf("Could not restore %s: %v", filepath.Base(path), err))
	}
}

// OpenSnapshotFile loads a snapshot by path, reporting errors in a dialog.
func (mw *MainWindow) OpenSnapshotFile(path string) {
	if err := mw.state.LoadSnapshot(path); err != nil {
		log.Printf("loading snapshot %s: %v", path, err)
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.saveLastDir(path)
	mw.prefs.SetString(prefs.KeyLastSnapshot, path)
}

// Menu action handlers

func (mw *MainWindow) onNewSketch() {
	mw.state.Clear()
	mw.state.SnapshotPath = ""
	mw.state.SetModified(false)
	mw.SetTitle(baseTitle)
	mw.updateStatus("New sketch")
}

func (mw *MainWindow) onOpenSnapshot() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		mw.OpenSnapshotFile(reader.URI().Path())
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{snapshot.Ext}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onSaveSnapshot() {
	if mw.state.SnapshotPath == "" {
		mw.onSaveSnapshotAs()
		return
	}
	if err := mw.state.SaveSnapshot(mw.state.SnapshotPath); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onSaveSnapshotAs() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if filepath.Ext(path) != snapshot.Ext {
			path += snapshot.Ext
		}
		if err := mw.state.SaveSnapshot(path); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.saveLastDir(path)
		mw.prefs.SetString(prefs.KeyLastSnapshot, path)
	}, mw.Window)
	fd.SetFileName("sketch" + snapshot.Ext)
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onClearAll() {
	if len(mw.state.Polygons()) == 0 && len(mw.state.InProgress()) == 0 {
		return
	}
	dialog.ShowConfirm("Clear All", "Remove all polygons?", func(ok bool) {
		if ok {
			mw.state.Clear()
		}
	}, mw.Window)
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About Polygon Measure",
		fmt.Sprintf("Polygon Measure v%s\n\n"+
			"A calibrated polygon sketching and measurement tool.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
