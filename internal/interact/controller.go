/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package interact turns pointer, keyboard and control-panel input into grid
// mutations. All methods run to completion on the caller's goroutine; the
// controller is not safe for concurrent use and front ends must serialise
// events onto one goroutine.
package interact

import (
	"fmt"
	"image"
	"log/slog"
	"strconv"
	"strings"

	"gridtrace/internal/grid"
	"gridtrace/internal/imageimport"
	applog "gridtrace/internal/log"
	"gridtrace/internal/vector"
	"gridtrace/internal/viewport"
)

// Options configures a Controller.
type Options struct {
	Limits      grid.Limits
	DefaultRows int
	DefaultCols int
	ZoomFactor  float64
	MinScale    float64
	MaxScale    float64
	// DesignWidth is the width in local units that Resize fits to the
	// container; 0 leaves the scale alone on resize.
	DesignWidth float64
	Palette     grid.Palette
	Logger      *slog.Logger
}

// DefaultOptions returns the stock configuration.
func DefaultOptions() Options {
	return Options{
		Limits:      grid.DefaultLimits(),
		DefaultRows: grid.DefaultCount,
		DefaultCols: grid.DefaultCount,
		ZoomFactor:  viewport.DefaultZoomFactor,
		Palette:     grid.DefaultPalette(),
	}
}

type dragKind uint8

const (
	dragNone dragKind = iota
	dragPan
	dragElement
)

// Controller is the interaction state machine.
type Controller struct {
	opts  Options
	log   *slog.Logger
	space *viewport.Space
	reg   *Registry
	lock  *Lock
	state State

	rowsInput string
	colsInput string

	// onMove is the pointer-move subscription; it is non-nil only while in
	// AwaitingGridEnd.
	onMove func(screen vector.Pt)

	pictures    []*Picture
	nextPicture uint64
	viewW       float64
	viewH       float64

	dragMode   dragKind
	dragHandle Handle
	dragLast   vector.Pt

	listeners []func()
	observers []func(event string)
}

// New builds a controller in the Deselected state.
func New(opts Options) *Controller {
	def := DefaultOptions()
	if opts.DefaultRows < 1 {
		opts.DefaultRows = def.DefaultRows
	}
	if opts.DefaultCols < 1 {
		opts.DefaultCols = def.DefaultCols
	}
	if opts.Palette == nil {
		opts.Palette = def.Palette
	}
	l := opts.Logger
	if l == nil {
		l = applog.WithComponent("interact")
	}
	c := &Controller{
		opts:  opts,
		log:   l,
		space: viewport.New(opts.ZoomFactor, opts.MinScale, opts.MaxScale),
		reg:   NewRegistry(opts.Limits),
		lock:  NewLock(),
		state: Deselected,
	}
	c.rowsInput = strconv.Itoa(opts.DefaultRows)
	c.colsInput = strconv.Itoa(opts.DefaultCols)
	return c
}

func (c *Controller) State() State               { return c.state }
func (c *Controller) Space() *viewport.Space     { return c.space }
func (c *Controller) Registry() *Registry        { return c.reg }
func (c *Controller) Lock() *Lock                { return c.lock }
func (c *Controller) Palette() grid.Palette      { return c.opts.Palette }
func (c *Controller) Tracking() bool             { return c.onMove != nil }
func (c *Controller) CountInputs() (r, k string) { return c.rowsInput, c.colsInput }

// OnChange registers fn to run after every mutation that needs a re-layout.
func (c *Controller) OnChange(fn func()) {
	if fn != nil {
		c.listeners = append(c.listeners, fn)
	}
}

// OnEvent registers fn to receive lifecycle events: grid-created,
// grid-committed, grid-destroyed, picture-added and lock-toggled.
func (c *Controller) OnEvent(fn func(event string)) {
	if fn != nil {
		c.observers = append(c.observers, fn)
	}
}

func (c *Controller) emit(event string) {
	for _, fn := range c.observers {
		fn(event)
	}
}

func (c *Controller) changed() {
	for _, fn := range c.listeners {
		fn()
	}
}

func (c *Controller) setState(next State, event string) {
	if next != c.state {
		c.log.Debug("transition", slog.String("event", event), slog.String("from", c.state.String()), slog.String("to", next.String()))
	}
	c.state = next
}

// StartDraw enters AwaitingGridStart from any state, dropping the current
// selection or preview.
func (c *Controller) StartDraw() {
	switch c.state {
	case Selected:
		c.reg.Deselect()
	case AwaitingGridEnd:
		c.cancelPreview()
	}
	c.setState(AwaitingGridStart, "start-draw")
	c.changed()
}

// PointerDown handles a press at a raw screen position. Grids are hit-tested
// before the background, so a press on a grid never reaches the empty-canvas
// branch.
func (c *Controller) PointerDown(screen vector.Pt) {
	local := c.space.ToLocal(screen)
	switch c.state {
	case AwaitingGridStart:
		c.beginPreview(local)
	case AwaitingGridEnd:
		c.commitPreview("pointer-down")
	case Deselected:
		hit := c.reg.HitTest(local)
		if hit == nil {
			return
		}
		c.reg.Select(hit)
		c.syncInputs()
		c.setState(Selected, "pointer-down-grid")
	case Selected:
		hit := c.reg.HitTest(local)
		switch {
		case hit == nil:
			c.reg.Deselect()
			c.setState(Deselected, "pointer-down-canvas")
		case hit == c.reg.Selected():
			return
		default:
			c.reg.Select(hit)
			c.syncInputs()
			c.setState(Selected, "pointer-down-grid")
		}
	}
	c.changed()
}

// PointerMove feeds the preview while a grid is being drawn and is ignored
// otherwise.
func (c *Controller) PointerMove(screen vector.Pt) {
	if c.onMove == nil {
		return
	}
	c.onMove(screen)
	c.changed()
}

// KeyPress handles arrows, Enter and Escape.
func (c *Controller) KeyPress(k Key) {
	switch {
	case k == KeyEnter && c.state == AwaitingGridEnd:
		c.commitPreview("enter")
	case k == KeyEscape && c.state == AwaitingGridEnd:
		c.cancelPreview()
		c.setState(Deselected, "escape")
	case c.state == Selected:
		d, ok := k.direction()
		if !ok {
			return
		}
		c.reg.Selected().MoveCursor(d)
	default:
		return
	}
	c.changed()
}

// Delete destroys the selected grid or cancels the preview.
func (c *Controller) Delete() {
	switch c.state {
	case Selected:
		g := c.reg.Selected()
		c.lock.Unregister(GridHandle(g.ID()))
		c.reg.Destroy(g)
		c.log.Debug("grid destroyed", slog.Uint64("grid", g.ID()))
		c.emit("grid-destroyed")
	case AwaitingGridEnd:
		c.cancelPreview()
	default:
		return
	}
	c.setState(Deselected, "delete")
	c.changed()
}

// ToggleLock flips lock mode for every grid and picture and returns the new
// lock state.
func (c *Controller) ToggleLock() bool {
	locked := c.lock.Toggle()
	c.log.Debug("lock toggled", slog.Bool("locked", locked))
	c.emit("lock-toggled")
	c.changed()
	return locked
}

func (c *Controller) AddRow()    { c.withSelected(func(g *grid.Grid) { g.AddRows(1) }) }
func (c *Controller) RemoveRow() { c.withSelected(func(g *grid.Grid) { g.AddRows(-1) }) }
func (c *Controller) AddCol()    { c.withSelected(func(g *grid.Grid) { g.AddCols(1) }) }
func (c *Controller) RemoveCol() { c.withSelected(func(g *grid.Grid) { g.AddCols(-1) }) }

func (c *Controller) SetRowCount(n int) { c.withSelected(func(g *grid.Grid) { g.SetRowCount(n) }) }
func (c *Controller) SetColCount(n int) { c.withSelected(func(g *grid.Grid) { g.SetColCount(n) }) }

// SetCountInputs stores the raw text of the row/column fields. New previews
// take their counts from it.
func (c *Controller) SetCountInputs(rows, cols string) {
	c.rowsInput, c.colsInput = rows, cols
}

// ApplyCountInputs applies the field text to the selected grid, the way a
// form submit does. Malformed text counts as the default.
func (c *Controller) ApplyCountInputs() {
	rows, cols := ParseCount(c.rowsInput), ParseCount(c.colsInput)
	c.withSelected(func(g *grid.Grid) {
		g.SetRowCount(rows)
		g.SetColCount(cols)
	})
}

// CurrentCounts reports the selected grid's counts.
func (c *Controller) CurrentCounts() (rows, cols int, ok bool) {
	g := c.reg.Selected()
	if c.state != Selected || g == nil {
		return 0, 0, false
	}
	return g.Rows(), g.Cols(), true
}

// Wheel zooms around the pointer. A positive deltaY zooms in.
func (c *Controller) Wheel(screen vector.Pt, deltaY float64) {
	if deltaY == 0 {
		return
	}
	c.space.Zoom(screen, deltaY)
	c.changed()
}

// Resize records the visible area in screen units and, when a design width
// is configured, scales the canvas to fit it.
func (c *Controller) Resize(w, h float64) {
	c.viewW, c.viewH = w, h
	if c.opts.DesignWidth > 0 {
		c.space.FitWidth(w, c.opts.DesignWidth)
	}
	c.changed()
}

// DragStart begins a drag gesture. A gesture that starts on a draggable grid
// or picture moves it; anything else pans the canvas. Drags never change the
// interaction state.
func (c *Controller) DragStart(screen vector.Pt) {
	c.dragLast = screen
	c.dragMode = dragPan
	local := c.space.ToLocal(screen)
	if g := c.reg.HitTest(local); g != nil {
		if h := GridHandle(g.ID()); c.lock.Draggable(h) {
			c.dragMode, c.dragHandle = dragElement, h
			return
		}
		return
	}
	for i := len(c.pictures) - 1; i >= 0; i-- {
		p := c.pictures[i]
		if !p.Bounds.Contains(local) {
			continue
		}
		if h := PictureHandle(p.ID); c.lock.Draggable(h) {
			c.dragMode, c.dragHandle = dragElement, h
		}
		return
	}
}

// DragMove continues the gesture started by DragStart.
func (c *Controller) DragMove(screen vector.Pt) {
	if c.dragMode == dragNone {
		c.DragStart(screen)
		return
	}
	delta := screen.Sub(c.dragLast)
	c.dragLast = screen
	switch c.dragMode {
	case dragPan:
		c.space.Pan(delta)
	case dragElement:
		if !c.lock.Draggable(c.dragHandle) {
			return
		}
		c.moveElement(c.dragHandle, delta.Mul(1/c.space.Scale()))
	}
	c.changed()
}

func (c *Controller) DragEnd() { c.dragMode = dragNone }

// AddPicture places img inside the visible area and registers it with the
// lock.
func (c *Controller) AddPicture(img image.Image) *Picture {
	if img == nil {
		return nil
	}
	view := c.visibleArea()
	b := img.Bounds()
	c.nextPicture++
	p := &Picture{ID: c.nextPicture, Image: img, Bounds: imageimport.Fit(b.Dx(), b.Dy(), view)}
	c.pictures = append(c.pictures, p)
	c.lock.Register(PictureHandle(p.ID))
	c.log.Debug("picture added", slog.Uint64("picture", p.ID), slog.Int("w", b.Dx()), slog.Int("h", b.Dy()))
	c.emit("picture-added")
	c.changed()
	return p
}

// PasteBlob decodes a pasted binary blob. Anything that is not an image is
// ignored without touching any state.
func (c *Controller) PasteBlob(data []byte) bool {
	img, err := imageimport.DecodeBytes(data)
	if err != nil {
		c.log.Debug("paste ignored", slog.Any("err", err))
		return false
	}
	return c.AddPicture(img) != nil
}

// PasteText accepts clipboard text naming an image (file path, file:// URL
// or data URL). Anything else is ignored.
func (c *Controller) PasteText(text string) bool {
	img, err := imageimport.FromClipboardText(text)
	if err != nil {
		c.log.Debug("paste ignored", slog.Any("err", err))
		return false
	}
	return c.AddPicture(img) != nil
}

// Pictures returns the pasted pictures in draw order.
func (c *Controller) Pictures() []*Picture {
	return append([]*Picture(nil), c.pictures...)
}

// Scene snapshots everything a renderer needs.
func (c *Controller) Scene() Scene {
	s := Scene{
		State:     c.state,
		Locked:    c.lock.Locked(),
		Transform: c.space.Transform(),
		Scale:     c.space.Scale(),
		Palette:   c.opts.Palette,
	}
	for _, p := range c.pictures {
		s.Pictures = append(s.Pictures, PictureView{Picture: *p, Draggable: c.lock.Draggable(PictureHandle(p.ID))})
	}
	for _, g := range c.reg.Grids() {
		s.Grids = append(s.Grids, GridView{Layout: g.Layout(), Draggable: c.lock.Draggable(GridHandle(g.ID()))})
	}
	if p := c.reg.Preview(); p != nil {
		s.Grids = append(s.Grids, GridView{Layout: p.Layout(), Draggable: c.lock.Draggable(GridHandle(p.ID()))})
	}
	return s
}

// Describe renders a plain-text dump of the canvas for crash reports.
func (c *Controller) Describe() string {
	var b strings.Builder
	x, y := c.space.Offset()
	fmt.Fprintf(&b, "state=%s locked=%t scale=%g pan=(%g,%g)\n", c.state, c.lock.Locked(), c.space.Scale(), x, y)
	for _, g := range c.reg.Grids() {
		row, col := g.Cursor()
		fmt.Fprintf(&b, "grid %d bounds=%+v rows=%d cols=%d cursor=(%d,%d) selected=%t\n",
			g.ID(), g.Bounds(), g.Rows(), g.Cols(), row, col, g.IsSelected())
	}
	if p := c.reg.Preview(); p != nil {
		fmt.Fprintf(&b, "preview %d bounds=%+v\n", p.ID(), p.Bounds())
	}
	for _, p := range c.pictures {
		fmt.Fprintf(&b, "picture %d bounds=%+v\n", p.ID, p.Bounds)
	}
	return b.String()
}

func (c *Controller) beginPreview(local vector.Pt) {
	g := c.reg.BeginPreview(local, ParseCount(c.rowsInput), ParseCount(c.colsInput))
	c.lock.Register(GridHandle(g.ID()))
	c.onMove = func(screen vector.Pt) { g.ResizeTo(c.space.ToLocal(screen)) }
	c.log.Debug("grid created", slog.Uint64("grid", g.ID()), slog.Int("rows", g.Rows()), slog.Int("cols", g.Cols()))
	c.emit("grid-created")
	c.setState(AwaitingGridEnd, "pointer-down")
}

func (c *Controller) commitPreview(event string) {
	c.onMove = nil
	g := c.reg.CommitPreview()
	if g == nil {
		c.setState(Deselected, event)
		return
	}
	c.syncInputs()
	c.log.Debug("grid committed", slog.Uint64("grid", g.ID()), slog.Any("bounds", g.Bounds()))
	c.emit("grid-committed")
	c.setState(Selected, event)
}

func (c *Controller) cancelPreview() {
	c.onMove = nil
	if p := c.reg.Preview(); p != nil {
		c.lock.Unregister(GridHandle(p.ID()))
		c.log.Debug("grid destroyed", slog.Uint64("grid", p.ID()))
		c.emit("grid-destroyed")
	}
	c.reg.CancelPreview()
}

func (c *Controller) withSelected(fn func(g *grid.Grid)) {
	g := c.reg.Selected()
	if c.state != Selected || g == nil {
		return
	}
	fn(g)
	c.syncInputs()
	c.changed()
}

// syncInputs reflects the selected grid's counts back into the fields.
func (c *Controller) syncInputs() {
	if g := c.reg.Selected(); g != nil {
		c.rowsInput = strconv.Itoa(g.Rows())
		c.colsInput = strconv.Itoa(g.Cols())
	}
}

func (c *Controller) moveElement(h Handle, d vector.Pt) {
	switch h.Kind {
	case KindGrid:
		if g, ok := c.reg.Get(h.ID); ok {
			g.MoveBy(d)
		}
	case KindPicture:
		for _, p := range c.pictures {
			if p.ID == h.ID {
				p.Bounds = p.Bounds.Offset(d)
				return
			}
		}
	}
}

// visibleArea returns the on-screen area in local coordinates.
func (c *Controller) visibleArea() vector.Rect {
	w, h := c.viewW, c.viewH
	if w <= 0 || h <= 0 {
		w, h = 1280, 800
	}
	tl := c.space.ToLocal(vector.P(0, 0))
	br := c.space.ToLocal(vector.P(w, h))
	return vector.Span(tl, br)
}

// ParseCount reads a subdivision count the way a lenient numeric field does:
// leading whitespace, an optional sign and leading digits. Text without
// digits yields grid.DefaultCount.
func ParseCount(s string) int {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n, digits := 0, 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		if n < 1<<20 {
			n = n*10 + int(r-'0')
		}
		digits++
	}
	if digits == 0 {
		return grid.DefaultCount
	}
	if neg {
		return -n
	}
	return n
}
