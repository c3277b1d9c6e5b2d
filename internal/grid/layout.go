/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package grid

// Subdivision geometry. All results are relative to the grid's own origin
// (the top-left corner of its bounding box). Rows count from the bottom edge
// upward and column dividers from the right edge leftward, matching the way
// charts are read when working a pattern.

import "gridtrace/internal/vector"

// ColOverhang is how far each column divider extends past the top and bottom
// edges of the bounding box.
const ColOverhang = 10

// RowRect returns the band occupied by row i. A zero-sized box yields
// zero-sized rows.
func RowRect(size vector.Rect, rows, i int) vector.Rect {
	if rows < 1 {
		rows = 1
	}
	h := size.H / float64(rows)
	return vector.R(0, size.H-float64(i+1)*h, size.W, h)
}

// ColLine returns divider j for j in [0, cols]; divider 0 is the right edge
// and divider cols the left edge.
func ColLine(size vector.Rect, cols, j int) vector.Line {
	if cols < 1 {
		cols = 1
	}
	w := size.W / float64(cols)
	x := size.W - float64(j)*w
	return vector.Line{A: vector.P(x, -ColOverhang), B: vector.P(x, size.H+ColOverhang)}
}

// RowShape is a laid out row band.
type RowShape struct {
	Index int
	Rect  vector.Rect
	Role  Role
}

// ColShape is a laid out column divider.
type ColShape struct {
	Index int
	Line  vector.Line
	Role  Role
}

// Layout is everything a renderer needs to draw one grid, in canvas-local
// coordinates.
type Layout struct {
	ID      uint64
	Border  vector.Rect
	Role    Role
	Rows    []RowShape
	Cols    []ColShape
	Preview bool
}

// HitBounds returns the area a pointer must land in to hit the grid, which
// includes the divider overhang.
func (l Layout) HitBounds() vector.Rect {
	b := l.Border
	return vector.R(b.X, b.Y-ColOverhang, b.W, b.H+2*ColOverhang)
}
