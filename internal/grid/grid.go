/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package grid implements a single chart grid overlay: its bounding box,
// row and column subdivisions and the row/column cursor.
//
// Out-of-range input is clamped, never rejected. A destroyed grid ignores
// every further call.
package grid

import "gridtrace/internal/vector"

// DefaultCount is used for row/column counts that are missing or malformed.
const DefaultCount = 5

// Limits bounds the subdivision counts.
type Limits struct {
	MaxRows int
	MaxCols int
}

// DefaultLimits returns the stock 250x250 bound.
func DefaultLimits() Limits { return Limits{MaxRows: 250, MaxCols: 250} }

func (l Limits) normalized() Limits {
	if l.MaxRows < 1 {
		l.MaxRows = DefaultLimits().MaxRows
	}
	if l.MaxCols < 1 {
		l.MaxCols = DefaultLimits().MaxCols
	}
	return l
}

// Direction is a cursor movement.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "unknown"
}

// Grid is one overlay. It starts life as a preview anchored at its start
// point and becomes a committed grid through Commit.
type Grid struct {
	id     uint64
	limits Limits

	start  vector.Pt
	bounds vector.Rect
	rows   int
	cols   int
	selRow int
	selCol int

	preview   bool
	selected  bool
	destroyed bool

	// shapes are kept relative to the grid origin; cols has one more entry
	// than the column count.
	rowShapes []RowShape
	colShapes []ColShape
}

// New creates a preview grid with a zero-sized box at start. Counts below 1
// fall back to DefaultCount before clamping to lim.
func New(id uint64, start vector.Pt, rows, cols int, lim Limits) *Grid {
	if rows < 1 {
		rows = DefaultCount
	}
	if cols < 1 {
		cols = DefaultCount
	}
	g := &Grid{
		id:      id,
		limits:  lim.normalized(),
		start:   start,
		bounds:  vector.R(start.X, start.Y, 0, 0),
		selCol:  1,
		preview: true,
	}
	g.rows = clamp(rows, 1, g.limits.MaxRows)
	g.cols = clamp(cols, 1, g.limits.MaxCols)
	g.syncShapes()
	return g
}

func (g *Grid) ID() uint64             { return g.id }
func (g *Grid) Bounds() vector.Rect    { return g.bounds }
func (g *Grid) Rows() int              { return g.rows }
func (g *Grid) Cols() int              { return g.cols }
func (g *Grid) Cursor() (row, col int) { return g.selRow, g.selCol }
func (g *Grid) IsPreview() bool        { return g.preview }
func (g *Grid) IsSelected() bool       { return g.selected }
func (g *Grid) Destroyed() bool        { return g.destroyed }
func (g *Grid) Limits() Limits         { return g.limits }

// ResizeTo spans the bounding box between the start point and end, whichever
// direction the pointer was dragged in.
func (g *Grid) ResizeTo(end vector.Pt) {
	if g.destroyed {
		return
	}
	g.bounds = vector.Span(g.start, end)
	g.relayout()
}

// MoveBy translates the whole grid by d local units.
func (g *Grid) MoveBy(d vector.Pt) {
	if g.destroyed {
		return
	}
	g.start = g.start.Add(d)
	g.bounds = g.bounds.Offset(d)
}

// SetRowCount clamps n to [1, MaxRows] and keeps the row cursor inside the
// new range.
func (g *Grid) SetRowCount(n int) {
	if g.destroyed {
		return
	}
	g.rows = clamp(n, 1, g.limits.MaxRows)
	g.selRow = clamp(g.selRow, 0, g.rows-1)
	g.syncShapes()
}

// SetColCount clamps n to [1, MaxCols] and keeps the column cursor inside
// [0, n].
func (g *Grid) SetColCount(n int) {
	if g.destroyed {
		return
	}
	g.cols = clamp(n, 1, g.limits.MaxCols)
	g.selCol = clamp(g.selCol, 0, g.cols)
	g.syncShapes()
}

func (g *Grid) AddRows(n int) { g.SetRowCount(g.rows + n) }
func (g *Grid) AddCols(n int) { g.SetColCount(g.cols + n) }

// MoveCursor steps the cursor one row or divider. Rows grow upward and
// dividers grow leftward, so Up and Left increase the index. There is no
// wraparound.
func (g *Grid) MoveCursor(d Direction) {
	if g.destroyed {
		return
	}
	switch d {
	case Up:
		g.selRow = clamp(g.selRow+1, 0, g.rows-1)
	case Down:
		g.selRow = clamp(g.selRow-1, 0, g.rows-1)
	case Left:
		g.selCol = clamp(g.selCol+1, 0, g.cols)
	case Right:
		g.selCol = clamp(g.selCol-1, 0, g.cols)
	default:
		return
	}
	g.relayout()
}

// Select and Deselect only change the paint roles.
func (g *Grid) Select() {
	if g.destroyed {
		return
	}
	g.selected = true
	g.relayout()
}

func (g *Grid) Deselect() {
	if g.destroyed {
		return
	}
	g.selected = false
	g.relayout()
}

// Commit turns a preview into a committed grid.
func (g *Grid) Commit() {
	if g.destroyed {
		return
	}
	g.preview = false
	g.relayout()
}

// Destroy releases all shapes. The grid is unusable afterwards.
func (g *Grid) Destroy() {
	g.destroyed = true
	g.selected = false
	g.preview = false
	g.rowShapes = nil
	g.colShapes = nil
}

// Contains reports whether p (local coordinates) hits the grid.
func (g *Grid) Contains(p vector.Pt) bool {
	if g.destroyed {
		return false
	}
	return g.Layout().HitBounds().Contains(p)
}

// Layout returns the current shapes translated to canvas-local coordinates.
func (g *Grid) Layout() Layout {
	origin := g.bounds.Min()
	l := Layout{
		ID:      g.id,
		Border:  g.bounds,
		Role:    g.borderRole(),
		Preview: g.preview,
		Rows:    make([]RowShape, len(g.rowShapes)),
		Cols:    make([]ColShape, len(g.colShapes)),
	}
	for i, r := range g.rowShapes {
		r.Rect = r.Rect.Offset(origin)
		l.Rows[i] = r
	}
	for j, c := range g.colShapes {
		c.Line = c.Line.Offset(origin)
		l.Cols[j] = c
	}
	return l
}

// syncShapes adds or drops shapes so that there is one per row and one per
// column divider, then lays them out.
func (g *Grid) syncShapes() {
	if n := len(g.rowShapes); n < g.rows {
		for i := n; i < g.rows; i++ {
			g.rowShapes = append(g.rowShapes, RowShape{Index: i})
		}
	} else if n > g.rows {
		g.rowShapes = g.rowShapes[:g.rows]
	}
	if n := len(g.colShapes); n < g.cols+1 {
		for j := n; j < g.cols+1; j++ {
			g.colShapes = append(g.colShapes, ColShape{Index: j})
		}
	} else if n > g.cols+1 {
		g.colShapes = g.colShapes[:g.cols+1]
	}
	g.relayout()
}

func (g *Grid) relayout() {
	size := vector.R(0, 0, g.bounds.W, g.bounds.H)
	inactive := !g.preview && !g.selected
	for i := range g.rowShapes {
		role := RoleRow
		switch {
		case i == g.selRow:
			role = RoleRowSelected
		case inactive:
			role = RoleRowInactive
		}
		g.rowShapes[i].Rect = RowRect(size, g.rows, i)
		g.rowShapes[i].Role = role
	}
	for j := range g.colShapes {
		role := RoleCol
		switch {
		case j == g.selCol:
			role = RoleColSelected
		case inactive:
			role = RoleColInactive
		}
		g.colShapes[j].Line = ColLine(size, g.cols, j)
		g.colShapes[j].Role = role
	}
}

func (g *Grid) borderRole() Role {
	switch {
	case g.selected:
		return RoleBorderSelected
	case g.preview:
		return RoleBorder
	default:
		return RoleBorderInactive
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
