/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package tui

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xdraw "golang.org/x/image/draw"

	"gridtrace/internal/grid"
	"gridtrace/internal/interact"
	"gridtrace/internal/vector"
)

var canvasBg = color.NRGBA{R: 0x1e, G: 0x1e, B: 0x22, A: 0xff}

var helpLines = []string{
	"Paste an image with p (clipboard holds a file path or data URL).",
	"d draw a grid: click a corner, move, click again (Enter commits, Esc cancels).",
	"Click a grid to select it; arrows move the row/column cursor.",
	"+/- rows, ]/[ columns, n type counts, x delete, l lock, e export PNG, E export PNG+SVG.",
	"Drag grids or pictures to move them, drag the canvas to pan, wheel zooms, z resets.",
	"h toggles this help, q quits.",
}

type cell struct {
	ch     rune
	fg, bg color.NRGBA
}

// raster is a cell buffer. Pictures use the upper half block so each cell
// carries two vertical pixels: fg on top, bg below.
type raster struct {
	w, h  int
	cells []cell
	// xform maps local coordinates to cell coordinates.
	xform vector.Affine2D
}

func newRaster(w, h int) *raster {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	r := &raster{w: w, h: h, cells: make([]cell, w*h)}
	for i := range r.cells {
		r.cells[i] = cell{ch: ' ', fg: canvasBg, bg: canvasBg}
	}
	return r
}

func (r *raster) at(x, y int) *cell {
	if x < 0 || y < 0 || x >= r.w || y >= r.h {
		return nil
	}
	return &r.cells[y*r.w+x]
}

func (r *raster) drawScene(s interact.Scene) {
	r.xform = vector.Scale(1/cellW, 1/cellH).Mul(s.Transform)
	for _, p := range s.Pictures {
		r.drawPicture(p)
	}
	for _, g := range s.Grids {
		r.drawGrid(g.Layout, s.Palette)
	}
}

// cellRect returns the cell span covering a local rect, unclipped.
func (r *raster) cellRect(lr vector.Rect) image.Rectangle {
	a := r.xform.Apply(lr.Min())
	b := r.xform.Apply(lr.Max())
	return image.Rect(int(math.Floor(a.X)), int(math.Floor(a.Y)), int(math.Ceil(b.X)), int(math.Ceil(b.Y)))
}

func (r *raster) drawPicture(p interact.PictureView) {
	full := r.cellRect(p.Bounds)
	vis := full.Intersect(image.Rect(0, 0, r.w, r.h))
	if vis.Empty() || p.Image == nil {
		return
	}
	sample := r.pictureSampler(p.Image, full)
	for y := vis.Min.Y; y < vis.Max.Y; y++ {
		for x := vis.Min.X; x < vis.Max.X; x++ {
			c := r.at(x, y)
			c.ch = '▀'
			c.fg = sample(x-full.Min.X, 2*(y-full.Min.Y))
			c.bg = sample(x-full.Min.X, 2*(y-full.Min.Y)+1)
		}
	}
}

// pictureSampler returns a lookup of half-cell pixels of img scaled to span.
// Small spans are resampled once; spans far larger than the terminal fall
// back to nearest-pixel lookups.
func (r *raster) pictureSampler(img image.Image, span image.Rectangle) func(x, y int) color.NRGBA {
	w, h := span.Dx(), span.Dy()*2
	if w*h <= 8*r.w*r.h+1 {
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(dst, dst.Bounds(), image.NewUniform(canvasBg), image.Point{}, draw.Src)
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
		return func(x, y int) color.NRGBA { return dst.NRGBAAt(x, y) }
	}
	b := img.Bounds()
	return func(x, y int) color.NRGBA {
		sx := b.Min.X + x*b.Dx()/w
		sy := b.Min.Y + y*b.Dy()/h
		c := color.NRGBAModel.Convert(img.At(sx, sy)).(color.NRGBA)
		return blend(canvasBg, c)
	}
}

func (r *raster) drawGrid(g grid.Layout, pal grid.Palette) {
	for _, row := range g.Rows {
		st := pal.Style(row.Role)
		if st.Fill.Enabled {
			r.tint(r.cellRect(row.Rect), st.Fill.Color)
		}
	}
	// Interior row boundaries; the border covers the outer edges.
	for _, row := range g.Rows {
		if row.Rect.Y <= g.Border.Y {
			continue
		}
		st := pal.Style(row.Role).Stroke
		a := r.xform.Apply(row.Rect.Min())
		b := r.xform.Apply(row.Rect.Max())
		r.hline(int(math.Floor(a.X)), int(math.Floor(b.X)), int(math.Floor(a.Y)), '─', st)
	}
	for _, col := range g.Cols {
		st := pal.Style(col.Role).Stroke
		a := r.xform.Apply(col.Line.A)
		b := r.xform.Apply(col.Line.B)
		r.vline(int(math.Floor(a.X)), int(math.Floor(a.Y)), int(math.Floor(b.Y)), '│', st)
	}
	r.border(g.Border, g.Role, pal.Style(g.Role).Stroke)
}

func (r *raster) tint(span image.Rectangle, c vector.Color) {
	span = span.Intersect(image.Rect(0, 0, r.w, r.h))
	for y := span.Min.Y; y < span.Max.Y; y++ {
		for x := span.Min.X; x < span.Max.X; x++ {
			cl := r.at(x, y)
			cl.fg = blend(cl.fg, c.NRGBA())
			cl.bg = blend(cl.bg, c.NRGBA())
		}
	}
}

// stroke paints a line glyph, keeping the cell background.
func (r *raster) stroke(x, y int, ch rune, st vector.Stroke) {
	c := r.at(x, y)
	if c == nil || !st.Enabled {
		return
	}
	switch {
	case ch == '─' && c.ch == '│', ch == '│' && c.ch == '─':
		ch = '┼'
	case c.ch == '▀':
		c.bg = blend(c.fg, c.bg)
	}
	c.ch = ch
	c.fg = blend(c.bg, st.Color.NRGBA())
}

func (r *raster) hline(x0, x1, y int, ch rune, st vector.Stroke) {
	for x := x0; x <= x1; x++ {
		r.stroke(x, y, ch, st)
	}
}

func (r *raster) vline(x, y0, y1 int, ch rune, st vector.Stroke) {
	for y := y0; y <= y1; y++ {
		r.stroke(x, y, ch, st)
	}
}

type boxGlyphs struct{ h, v, tl, tr, bl, br rune }

var (
	lightBox  = boxGlyphs{'─', '│', '┌', '┐', '└', '┘'}
	dashedBox = boxGlyphs{'╌', '╎', '┌', '┐', '└', '┘'}
	heavyBox  = boxGlyphs{'━', '┃', '┏', '┓', '┗', '┛'}
)

func (r *raster) border(b vector.Rect, role grid.Role, st vector.Stroke) {
	g := lightBox
	switch {
	case role == grid.RoleBorderSelected:
		g = heavyBox
	case st.Dashed():
		g = dashedBox
	}
	a := r.xform.Apply(b.Min())
	z := r.xform.Apply(b.Max())
	x0, y0 := int(math.Floor(a.X)), int(math.Floor(a.Y))
	x1, y1 := int(math.Floor(z.X)), int(math.Floor(z.Y))
	for x := x0 + 1; x < x1; x++ {
		r.stroke(x, y0, g.h, st)
		r.stroke(x, y1, g.h, st)
	}
	for y := y0 + 1; y < y1; y++ {
		r.stroke(x0, y, g.v, st)
		r.stroke(x1, y, g.v, st)
	}
	r.stroke(x0, y0, g.tl, st)
	r.stroke(x1, y0, g.tr, st)
	r.stroke(x0, y1, g.bl, st)
	r.stroke(x1, y1, g.br, st)
}

func (r *raster) drawText(x, y int, lines []string) {
	fg := color.NRGBA{R: 0xe4, G: 0xe4, B: 0xe7, A: 0xff}
	for i, line := range lines {
		col := x
		for _, ch := range line {
			if c := r.at(col, y+i); c != nil {
				*c = cell{ch: ch, fg: fg, bg: canvasBg}
			}
			col++
		}
	}
}

// blend composites src over an opaque dst.
func blend(dst, src color.NRGBA) color.NRGBA {
	a := float64(src.A) / 255
	mix := func(d, s uint8) uint8 { return uint8(math.Round(float64(d)*(1-a) + float64(s)*a)) }
	return color.NRGBA{R: mix(dst.R, src.R), G: mix(dst.G, src.G), B: mix(dst.B, src.B), A: 0xff}
}

func hex(c color.NRGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

// String renders the raster, emitting one styled run per colour change.
func (r *raster) String() string {
	var b strings.Builder
	for y := 0; y < r.h; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		row := r.cells[y*r.w : (y+1)*r.w]
		for i := 0; i < len(row); {
			j := i
			var run strings.Builder
			for j < len(row) && row[j].fg == row[i].fg && row[j].bg == row[i].bg {
				run.WriteRune(row[j].ch)
				j++
			}
			st := lipgloss.NewStyle().Foreground(hex(row[i].fg)).Background(hex(row[i].bg))
			b.WriteString(st.Render(run.String()))
			i = j
		}
	}
	return b.String()
}

var (
	statusStyle = lipgloss.NewStyle().Background(lipgloss.Color("#2d2d32")).Foreground(lipgloss.Color("#e4e4e7"))
	stateStyle  = lipgloss.NewStyle().Background(lipgloss.Color("#083d77")).Foreground(lipgloss.Color("#ffffff")).Bold(true).Padding(0, 1)
	lockStyle   = lipgloss.NewStyle().Background(lipgloss.Color("#4d2d52")).Foreground(lipgloss.Color("#fada5e")).Bold(true).Padding(0, 1)
	editStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f49d37")).Bold(true)
)

func (m Model) statusBar() string {
	c := m.ctrl
	parts := []string{stateStyle.Render(c.State().String())}
	if c.Lock().Locked() {
		parts = append(parts, lockStyle.Render("locked"))
	}
	rows, cols := c.CountInputs()
	switch m.editing {
	case editRows:
		parts = append(parts, editStyle.Render(fmt.Sprintf(" rows: %s_  cols: %s", m.rowsText, m.colsText)))
	case editCols:
		parts = append(parts, editStyle.Render(fmt.Sprintf(" rows: %s  cols: %s_", m.rowsText, m.colsText)))
	default:
		if r, k, ok := c.CurrentCounts(); ok {
			rr, cc := c.Registry().Selected().Cursor()
			parts = append(parts, fmt.Sprintf(" %dx%d  cursor r%d c%d", r, k, rr+1, cc))
		} else {
			parts = append(parts, fmt.Sprintf(" next %sx%s", rows, cols))
		}
	}
	parts = append(parts, fmt.Sprintf("  %.0f%%", c.Space().Scale()*100))
	if m.status != "" {
		parts = append(parts, "  "+m.status)
	}
	return statusStyle.Width(m.width).Render(strings.Join(parts, ""))
}
