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
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"gridtrace/internal/grid"
	"gridtrace/internal/interact"
	"gridtrace/internal/vector"
)

var (
	canvasBackground = color.NRGBA{R: 30, G: 30, B: 34, A: 255}
	helpColor        = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
)

var helpText = []string{
	"Paste a chart picture (Ctrl+V) or drop an image file onto the window.",
	"Draw grid, then click two corners. Arrows move the highlighted row and column.",
	"Enter commits, Esc abandons, Delete removes the selected grid.",
	"Drag to pan, drag a grid or picture to move it, scroll to zoom.",
}

// GridCanvas shows the pictures and grids of a controller and forwards
// pointer and key input to it.
type GridCanvas struct {
	widget.BaseWidget
	ctrl *interact.Controller

	// gesture state for the primary button
	pressed   bool
	dragging  bool
	dragOK    bool
	pressedAt vector.Pt

	// focus is set by the window so a press can take keyboard focus.
	focus func()
}

// NewGridCanvas builds the widget and subscribes it to ctrl changes.
func NewGridCanvas(ctrl *interact.Controller) *GridCanvas {
	g := &GridCanvas{ctrl: ctrl}
	g.ExtendBaseWidget(g)
	ctrl.OnChange(g.Refresh)
	return g
}

// CreateRenderer builds the renderer; objects are rebuilt from the scene on
// every refresh.
func (g *GridCanvas) CreateRenderer() fyne.WidgetRenderer {
	r := &gridCanvasRenderer{gc: g, bg: canvas.NewRectangle(canvasBackground), images: map[uint64]*canvas.Image{}}
	r.rebuild()
	return r
}

// PreferredSize sets a decent default size for the widget.
func (g *GridCanvas) PreferredSize() fyne.Size { return fyne.NewSize(800, 600) }

// Resize keeps the controller's view size in step with the widget.
func (g *GridCanvas) Resize(size fyne.Size) {
	g.BaseWidget.Resize(size)
	g.ctrl.Resize(float64(size.Width), float64(size.Height))
}

func toPt(p fyne.Position) vector.Pt { return vector.P(float64(p.X), float64(p.Y)) }

func (g *GridCanvas) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	if g.focus != nil {
		g.focus()
	}
	before := g.ctrl.State()
	g.pressed, g.dragging = true, false
	g.dragOK = before != interact.AwaitingGridStart && before != interact.AwaitingGridEnd
	g.pressedAt = toPt(e.Position)
	g.ctrl.PointerDown(g.pressedAt)
	g.Refresh()
}

func (g *GridCanvas) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	g.pressed = false
	if g.dragging {
		g.DragEnd()
	}
}

func (g *GridCanvas) MouseIn(*desktop.MouseEvent) {}
func (g *GridCanvas) MouseOut()                   {}

func (g *GridCanvas) MouseMoved(e *desktop.MouseEvent) {
	if g.ctrl.Tracking() {
		g.ctrl.PointerMove(toPt(e.Position))
	}
}

// Dragged moves the element under the press, or pans when there is none.
// A press that committed or started a grid never turns into a drag.
func (g *GridCanvas) Dragged(e *fyne.DragEvent) {
	p := toPt(e.Position)
	if g.ctrl.Tracking() {
		g.ctrl.PointerMove(p)
	}
	if !g.dragOK {
		return
	}
	if !g.dragging {
		g.dragging = true
		g.ctrl.DragStart(g.pressedAt)
	}
	g.ctrl.DragMove(p)
}

func (g *GridCanvas) DragEnd() {
	if g.dragging {
		g.ctrl.DragEnd()
	}
	g.dragging = false
}

// Scrolled zooms around the pointer.
func (g *GridCanvas) Scrolled(e *fyne.ScrollEvent) {
	g.ctrl.Wheel(toPt(e.Position), float64(e.Scrolled.DY))
}

func (g *GridCanvas) FocusGained()   {}
func (g *GridCanvas) FocusLost()     {}
func (g *GridCanvas) TypedRune(rune) {}

func (g *GridCanvas) TypedKey(e *fyne.KeyEvent) {
	switch e.Name {
	case fyne.KeyUp:
		g.ctrl.KeyPress(interact.KeyUp)
	case fyne.KeyDown:
		g.ctrl.KeyPress(interact.KeyDown)
	case fyne.KeyLeft:
		g.ctrl.KeyPress(interact.KeyLeft)
	case fyne.KeyRight:
		g.ctrl.KeyPress(interact.KeyRight)
	case fyne.KeyReturn, fyne.KeyEnter:
		g.ctrl.KeyPress(interact.KeyEnter)
	case fyne.KeyEscape:
		g.ctrl.KeyPress(interact.KeyEscape)
	case fyne.KeyDelete, fyne.KeyBackspace:
		g.ctrl.Delete()
	default:
		return
	}
	g.Refresh()
}

// gridCanvasRenderer lays out the scene in screen coordinates.
type gridCanvasRenderer struct {
	gc      *GridCanvas
	bg      *canvas.Rectangle
	objects []fyne.CanvasObject
	// canvas.Image per picture so textures survive refreshes
	images map[uint64]*canvas.Image
}

func (r *gridCanvasRenderer) Destroy()                     {}
func (r *gridCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *gridCanvasRenderer) MinSize() fyne.Size           { return fyne.NewSize(200, 150) }
func (r *gridCanvasRenderer) Layout(size fyne.Size)        { r.bg.Resize(size) }

func (r *gridCanvasRenderer) Refresh() {
	r.rebuild()
	r.Layout(r.gc.Size())
	canvas.Refresh(r.gc)
}

func (r *gridCanvasRenderer) rebuild() {
	s := r.gc.ctrl.Scene()
	objs := []fyne.CanvasObject{r.bg}

	live := make(map[uint64]bool, len(s.Pictures))
	for _, p := range s.Pictures {
		live[p.ID] = true
		img, ok := r.images[p.ID]
		if !ok {
			img = canvas.NewImageFromImage(p.Image)
			img.FillMode = canvas.ImageFillStretch
			img.ScaleMode = canvas.ImageScaleSmooth
			r.images[p.ID] = img
		}
		place(img, screenRect(s.Transform, p.Bounds))
		objs = append(objs, img)
	}
	for id := range r.images {
		if !live[id] {
			delete(r.images, id)
		}
	}

	for _, g := range s.Grids {
		objs = append(objs, gridObjects(s, g.Layout)...)
	}

	if len(s.Pictures) == 0 {
		for i, line := range helpText {
			t := canvas.NewText(line, helpColor)
			t.TextSize = 13
			t.Move(fyne.NewPos(16, 16+float32(i)*20))
			objs = append(objs, t)
		}
	}
	r.objects = objs
}

func screenRect(m vector.Affine2D, r vector.Rect) vector.Rect {
	return vector.Span(m.Apply(r.Min()), m.Apply(r.Max()))
}

func place(o fyne.CanvasObject, r vector.Rect) {
	o.Move(fyne.NewPos(float32ToFixed(float32(r.X)), float32ToFixed(float32(r.Y))))
	o.Resize(fyne.NewSize(float32ToFixed(float32(r.W)), float32ToFixed(float32(r.H))))
}

func float32ToFixed(v float32) float32 { return fyne.NewSize(v, 0).Width }

// strokeWidth scales a local stroke width to the screen, never thinner than
// one pixel.
func strokeWidth(st vector.Stroke, scale float64) float32 {
	return float32(math.Max(1, st.Width*scale))
}

// gridObjects draws one grid: row bands, column dividers, then the border on
// top.
func gridObjects(s interact.Scene, l grid.Layout) []fyne.CanvasObject {
	var objs []fyne.CanvasObject
	for _, row := range l.Rows {
		st := s.Palette.Style(row.Role)
		rect := canvas.NewRectangle(color.Transparent)
		if st.Fill.Enabled {
			rect.FillColor = st.Fill.Color.NRGBA()
		}
		if st.Stroke.Enabled {
			rect.StrokeColor = st.Stroke.Color.NRGBA()
			rect.StrokeWidth = strokeWidth(st.Stroke, s.Scale)
		}
		place(rect, screenRect(s.Transform, row.Rect))
		objs = append(objs, rect)
	}
	for _, col := range l.Cols {
		st := s.Palette.Style(col.Role)
		objs = append(objs, strokeLine(s, s.Transform.Apply(col.Line.A), s.Transform.Apply(col.Line.B), st.Stroke)...)
	}
	st := s.Palette.Style(l.Role).Stroke
	b := screenRect(s.Transform, l.Border)
	corners := []vector.Pt{b.Min(), vector.P(b.X+b.W, b.Y), b.Max(), vector.P(b.X, b.Y+b.H)}
	for i := range corners {
		objs = append(objs, strokeLine(s, corners[i], corners[(i+1)%4], st)...)
	}
	return objs
}

// strokeLine draws a screen-space segment, splitting it into dashes when the
// stroke has a dash pattern.
func strokeLine(s interact.Scene, a, b vector.Pt, st vector.Stroke) []fyne.CanvasObject {
	if !st.Enabled {
		return nil
	}
	mk := func(p, q vector.Pt) fyne.CanvasObject {
		ln := canvas.NewLine(st.Color.NRGBA())
		ln.StrokeWidth = strokeWidth(st, s.Scale)
		ln.Position1 = fyne.NewPos(float32(p.X), float32(p.Y))
		ln.Position2 = fyne.NewPos(float32(q.X), float32(q.Y))
		return ln
	}
	if !st.Dashed() {
		return []fyne.CanvasObject{mk(a, b)}
	}
	d := b.Sub(a)
	length := math.Hypot(d.X, d.Y)
	if length == 0 {
		return nil
	}
	unit := d.Mul(1 / length)
	var objs []fyne.CanvasObject
	on := true
	for pos, i := 0.0, 0; pos < length; i++ {
		seg := st.Dash[i%len(st.Dash)] * s.Scale
		if seg <= 0 {
			seg = 1
		}
		end := math.Min(pos+seg, length)
		if on {
			objs = append(objs, mk(a.Add(unit.Mul(pos)), a.Add(unit.Mul(end))))
		}
		on = !on
		pos = end
	}
	return objs
}
