// Polygon Measure is a desktop tool for sketching polygons over a
// calibrated coordinate sheet and reading off their areas and edge
// lengths in real units.
package main

import (
	"log"
	"os"
	"time"

	"polygon-measure/internal/app"
	"polygon-measure/ui/mainwindow"
	"polygon-measure/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	fyneApp := fyneapp.NewWithID("io.polygonmeasure.app")
	fyneApp.Settings().SetTheme(&app.SketchTheme{})

	store := prefs.Load()
	state := app.NewState()
	state.SetCalibration(
		store.Float(prefs.KeyScale, app.DefaultScale),
		store.Float(prefs.KeyDPI, app.DefaultDPI),
	)
	state.SetModified(false)

	win := mainwindow.New(fyneApp, state, store)

	if len(os.Args) > 1 {
		win.OpenSnapshotFile(os.Args[1])
	} else {
		win.RestoreLastSnapshot()
	}

	// Restart into a rebuilt binary during development, and piggyback
	// the poll to flush preference changes to disk.
	if reloader := app.NewHotReloader(2 * time.Second); reloader != nil {
		reloader.OnTick(func() {
			if err := store.SaveIfDirty(); err != nil {
				log.Printf("saving preferences: %v", err)
			}
		})
		reloader.OnNewBinary(func() {
			dialog.ShowConfirm("New Build",
				"A newer binary was found. Restart now?",
				func(ok bool) {
					if !ok {
						return
					}
					if err := store.Save(); err != nil {
						log.Printf("saving preferences: %v", err)
					}
					if err := reloader.Restart(); err != nil {
						log.Printf("restart failed: %v", err)
					}
				}, win)
		})
		reloader.Start()
		defer reloader.Stop()
	}

	win.ShowAndRun()

	if err := store.Save(); err != nil {
		log.Printf("saving preferences: %v", err)
	}
}
