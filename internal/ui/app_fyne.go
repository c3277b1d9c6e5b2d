//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */


package ui

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"gridtrace/internal/crash"
	"gridtrace/internal/export"
	"gridtrace/internal/imageimport"
	applog "gridtrace/internal/log"
	"gridtrace/internal/version"
)

// Run opens the desktop window around opts.Controller and blocks until it is
// closed.
func Run(opts Options) error {
	ctrl := opts.Controller
	if ctrl == nil {
		return fmt.Errorf("ui: no controller")
	}
	l := applog.WithComponent("ui")
	l.Info("starting UI")
	defer crash.Recover(ctrl.Describe)

	fyneApp := app.NewWithID("gridtrace")
	w := fyneApp.NewWindow("GridTrace " + version.String())
	// Restore window size from preferences (with sane minimums)
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1200)
	winH := prefs.IntWithFallback("window.height", 800)
	if winW < 800 {
		winW = 800
	}
	if winH < 600 {
		winH = 600
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	gc := NewGridCanvas(ctrl)
	gc.focus = func() { w.Canvas().Focus(gc) }

	rowsEntry := widget.NewEntry()
	colsEntry := widget.NewEntry()
	rowsEntry.Text, colsEntry.Text = ctrl.CountInputs()
	onCounts := func(string) { ctrl.SetCountInputs(rowsEntry.Text, colsEntry.Text) }
	rowsEntry.OnChanged = onCounts
	colsEntry.OnChanged = onCounts
	apply := func(string) {
		ctrl.SetCountInputs(rowsEntry.Text, colsEntry.Text)
		ctrl.ApplyCountInputs()
	}
	rowsEntry.OnSubmitted = apply
	colsEntry.OnSubmitted = apply

	stateLabel := widget.NewLabel("")
	lockCheck := widget.NewCheck("Lock", nil)
	lockCheck.OnChanged = func(v bool) {
		if v != ctrl.Lock().Locked() {
			ctrl.ToggleLock()
		}
	}

	var rowBtns, colBtns []*widget.Button
	ctrl.OnChange(func() {
		r, k := ctrl.CountInputs()
		if rowsEntry.Text != r {
			rowsEntry.SetText(r)
		}
		if colsEntry.Text != k {
			colsEntry.SetText(k)
		}
		stateLabel.SetText(ctrl.State().String())
		lockCheck.SetChecked(ctrl.Lock().Locked())
		_, _, ok := ctrl.CurrentCounts()
		for _, b := range append(append([]*widget.Button{}, rowBtns...), colBtns...) {
			if ok {
				b.Enable()
			} else {
				b.Disable()
			}
		}
	})

	rowBtns = []*widget.Button{
		widget.NewButton("+ Row", ctrl.AddRow),
		widget.NewButton("- Row", ctrl.RemoveRow),
	}
	colBtns = []*widget.Button{
		widget.NewButton("+ Col", ctrl.AddCol),
		widget.NewButton("- Col", ctrl.RemoveCol),
	}

	paste := func() {
		text := fyneApp.Clipboard().Content()
		if ctrl.PasteText(text) {
			status.SetText("Picture pasted")
			return
		}
		status.SetText("Clipboard holds no picture")
	}

	exportAs := func(ext string) {
		dir := opts.ExportDir
		if strings.TrimSpace(dir) == "" {
			dir = "."
		}
		path := export.DefaultName(dir, ext, time.Now())
		if err := export.File(path, ctrl.Scene(), opts.Export); err != nil {
			l.Error("export failed", slog.String("path", path), slog.Any("err", err))
			dialog.ShowError(err, w)
			return
		}
		l.Info("exported", slog.String("path", path))
		status.SetText("Exported " + filepath.Base(path))
	}

	exportPreset := func(p export.PresetName) {
		paths, err := export.Batch(ctrl.Scene(), export.BatchOptions{Preset: p, Options: opts.Export, OutDir: opts.ExportDir}, time.Now())
		if err != nil {
			l.Error("batch export failed", slog.String("preset", string(p)), slog.Any("err", err))
			dialog.ShowError(err, w)
			return
		}
		l.Info("exported", slog.String("preset", string(p)), slog.Int("files", len(paths)))
		status.SetText(fmt.Sprintf("Exported %d files (%s)", len(paths), p))
	}

	drawBtn := widget.NewButton("Draw grid", func() {
		ctrl.StartDraw()
		w.Canvas().Focus(gc)
	})
	deleteBtn := widget.NewButton("Delete", ctrl.Delete)
	applyBtn := widget.NewButton("Apply", func() { apply("") })
	resetBtn := widget.NewButton("Reset view", func() {
		ctrl.Space().Reset()
		gc.Refresh()
	})

	form := widget.NewForm(
		widget.NewFormItem("Rows", rowsEntry),
		widget.NewFormItem("Columns", colsEntry),
	)
	left := container.NewVBox(
		widget.NewLabel("Grid"),
		drawBtn,
		deleteBtn,
		lockCheck,
		widget.NewSeparator(),
		form,
		applyBtn,
		container.NewGridWithColumns(2, rowBtns[0], rowBtns[1]),
		container.NewGridWithColumns(2, colBtns[0], colBtns[1]),
		widget.NewSeparator(),
		widget.NewLabel("Canvas"),
		widget.NewButton("Paste picture", paste),
		resetBtn,
		widget.NewButton("Export PNG", func() { exportAs("png") }),
		widget.NewButton("Export PDF", func() { exportAs("pdf") }),
		widget.NewButton("Export SVG", func() { exportAs("svg") }),
		widget.NewButton("Export print set", func() { exportPreset(export.PresetPrint) }),
	)
	bottom := container.NewBorder(nil, nil, nil, stateLabel, status)
	w.SetContent(container.NewBorder(nil, bottom, left, nil, gc))

	w.Canvas().AddShortcut(&fyne.ShortcutPaste{}, func(fyne.Shortcut) { paste() })
	w.SetOnDropped(func(_ fyne.Position, uris []fyne.URI) {
		for _, u := range uris {
			if u.Scheme() != "file" {
				continue
			}
			img, err := imageimport.DecodeFile(u.Path())
			if err != nil {
				l.Warn("drop ignored", slog.String("path", u.Path()), slog.Any("err", err))
				status.SetText("Not an image: " + u.Name())
				continue
			}
			ctrl.AddPicture(img)
			status.SetText("Picture added: " + u.Name())
		}
	})

	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		l.Info("window closed", slog.Int("grids", ctrl.Registry().Len()))
	})

	stateLabel.SetText(ctrl.State().String())
	for _, b := range append(rowBtns, colBtns...) {
		b.Disable()
	}
	w.Canvas().Focus(gc)
	w.ShowAndRun()
	return nil
}
