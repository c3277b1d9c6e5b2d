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

import (
	"math"
	"testing"

	"gridtrace/internal/vector"
)

func TestRowRect_BottomUp(t *testing.T) {
	size := vector.R(0, 0, 200, 150)
	cases := []struct {
		i    int
		want vector.Rect
	}{
		{0, vector.R(0, 120, 200, 30)},
		{1, vector.R(0, 90, 200, 30)},
		{4, vector.R(0, 0, 200, 30)},
	}
	for _, c := range cases {
		if got := RowRect(size, 5, c.i); got != c.want {
			t.Fatalf("RowRect(%d) = %+v, want %+v", c.i, got, c.want)
		}
	}
}

func TestColLine_RightToLeft(t *testing.T) {
	size := vector.R(0, 0, 200, 150)
	for j, wantX := range []float64{200, 160, 120, 80, 40, 0} {
		l := ColLine(size, 5, j)
		if l.A.X != wantX || l.B.X != wantX {
			t.Fatalf("ColLine(%d).x = %v, want %v", j, l.A.X, wantX)
		}
		if l.A.Y != -ColOverhang || l.B.Y != 150+ColOverhang {
			t.Fatalf("ColLine(%d) vertical extent = %v..%v", j, l.A.Y, l.B.Y)
		}
	}
}

func TestGeometry_ZeroSizeIsFinite(t *testing.T) {
	zero := vector.R(0, 0, 0, 0)
	for i := 0; i < 3; i++ {
		r := RowRect(zero, 3, i)
		if math.IsNaN(r.Y) || math.IsNaN(r.H) || r.W != 0 || r.H != 0 {
			t.Fatalf("row %d on zero box: %+v", i, r)
		}
	}
	for j := 0; j <= 3; j++ {
		l := ColLine(zero, 3, j)
		if math.IsNaN(l.A.X) || l.A.X != 0 {
			t.Fatalf("col %d on zero box: %+v", j, l)
		}
	}
	g := New(1, vector.P(10, 10), 4, 4, DefaultLimits())
	g.ResizeTo(vector.P(10, 60))
	if b := g.Bounds(); b.W != 0 || b.H != 50 {
		t.Fatalf("zero-width drag bounds: %+v", b)
	}
}

func TestNew_Defaults(t *testing.T) {
	g := New(7, vector.P(100, 100), 0, -3, DefaultLimits())
	if g.Rows() != DefaultCount || g.Cols() != DefaultCount {
		t.Fatalf("counts = %dx%d, want defaults", g.Rows(), g.Cols())
	}
	if b := g.Bounds(); b != vector.R(100, 100, 0, 0) {
		t.Fatalf("initial bounds = %+v", b)
	}
	if !g.IsPreview() || g.IsSelected() {
		t.Fatalf("new grid must be an unselected preview")
	}
	row, col := g.Cursor()
	if row != 0 || col != 1 {
		t.Fatalf("initial cursor = (%d,%d)", row, col)
	}
	l := g.Layout()
	if len(l.Rows) != 5 || len(l.Cols) != 6 {
		t.Fatalf("shape counts = %d rows, %d cols", len(l.Rows), len(l.Cols))
	}
}

func TestResizeTo_AnyDirection(t *testing.T) {
	for _, end := range []vector.Pt{vector.P(300, 250), vector.P(-100, -50), vector.P(300, -50), vector.P(-100, 250)} {
		g := New(1, vector.P(100, 100), 5, 5, DefaultLimits())
		g.ResizeTo(end)
		want := vector.Span(vector.P(100, 100), end)
		if g.Bounds() != want {
			t.Fatalf("ResizeTo(%v) bounds = %+v, want %+v", end, g.Bounds(), want)
		}
	}
}

func TestLayout_AbsoluteCoordinates(t *testing.T) {
	g := New(1, vector.P(100, 100), 5, 5, DefaultLimits())
	g.ResizeTo(vector.P(300, 250))
	l := g.Layout()
	if l.Rows[0].Rect != vector.R(100, 220, 200, 30) {
		t.Fatalf("row 0 = %+v", l.Rows[0].Rect)
	}
	if l.Cols[0].Line.A.X != 300 || l.Cols[5].Line.A.X != 100 {
		t.Fatalf("divider x = %v / %v", l.Cols[0].Line.A.X, l.Cols[5].Line.A.X)
	}
	if !g.Contains(vector.P(150, 95)) {
		t.Fatalf("divider overhang should be hittable")
	}
	if g.Contains(vector.P(99, 150)) {
		t.Fatalf("point left of grid should miss")
	}
}

func TestSetRowCount_Clamps(t *testing.T) {
	lim := Limits{MaxRows: 250, MaxCols: 250}
	for _, n := range []int{-10, 0, 1, 2, 5, 249, 250, 251, 10000} {
		g := New(1, vector.P(0, 0), 5, 5, lim)
		g.SetRowCount(n)
		if want := clamp(n, 1, 250); g.Rows() != want {
			t.Fatalf("SetRowCount(%d) rows = %d, want %d", n, g.Rows(), want)
		}
		if len(g.Layout().Rows) != g.Rows() {
			t.Fatalf("row shapes out of sync for %d", n)
		}
		g.SetColCount(n)
		if want := clamp(n, 1, 250); g.Cols() != want {
			t.Fatalf("SetColCount(%d) cols = %d, want %d", n, g.Cols(), want)
		}
		if len(g.Layout().Cols) != g.Cols()+1 {
			t.Fatalf("col shapes out of sync for %d", n)
		}
	}
}

func TestShrinkReclampsCursor(t *testing.T) {
	g := New(1, vector.P(0, 0), 5, 5, DefaultLimits())
	for i := 0; i < 10; i++ {
		g.MoveCursor(Up)
		g.MoveCursor(Left)
	}
	row, col := g.Cursor()
	if row != 4 || col != 5 {
		t.Fatalf("cursor at edges = (%d,%d), want (4,5)", row, col)
	}
	g.SetRowCount(2)
	if row, _ := g.Cursor(); g.Rows() != 2 || row != 1 {
		t.Fatalf("after SetRowCount(2): rows=%d row=%d", g.Rows(), row)
	}
	g.SetColCount(3)
	if _, col := g.Cursor(); col != 3 {
		t.Fatalf("after SetColCount(3): col=%d", col)
	}
	g.SetColCount(1)
	g.SetRowCount(1)
	if row, col := g.Cursor(); row != 0 || col != 1 {
		t.Fatalf("after shrinking to 1x1: (%d,%d)", row, col)
	}
}

func TestCursorValidAfterAnyResize(t *testing.T) {
	g := New(1, vector.P(0, 0), 20, 20, DefaultLimits())
	for _, n := range []int{20, 3, 50, 0, 7, 1, 250, 2} {
		for i := 0; i < 60; i++ {
			g.MoveCursor(Up)
			g.MoveCursor(Left)
		}
		g.SetRowCount(n)
		g.SetColCount(n)
		row, col := g.Cursor()
		if row < 0 || row >= g.Rows() || col < 0 || col > g.Cols() {
			t.Fatalf("cursor (%d,%d) invalid for %dx%d", row, col, g.Rows(), g.Cols())
		}
	}
}

func TestMoveCursor_NoWrap(t *testing.T) {
	g := New(1, vector.P(0, 0), 3, 3, DefaultLimits())
	g.MoveCursor(Down)
	g.MoveCursor(Right)
	g.MoveCursor(Right)
	if row, col := g.Cursor(); row != 0 || col != 0 {
		t.Fatalf("cursor = (%d,%d), want (0,0)", row, col)
	}
	g.MoveCursor(Up)
	if row, _ := g.Cursor(); row != 1 {
		t.Fatalf("Up should increase row index, got %d", row)
	}
}

func TestRoles_FollowSelection(t *testing.T) {
	g := New(1, vector.P(0, 0), 3, 3, DefaultLimits())
	g.ResizeTo(vector.P(90, 90))
	l := g.Layout()
	if l.Role != RoleBorder || l.Rows[0].Role != RoleRowSelected || l.Rows[1].Role != RoleRow {
		t.Fatalf("preview roles: border=%v row0=%v row1=%v", l.Role, l.Rows[0].Role, l.Rows[1].Role)
	}
	if l.Cols[1].Role != RoleColSelected || l.Cols[0].Role != RoleCol {
		t.Fatalf("preview col roles: %v %v", l.Cols[0].Role, l.Cols[1].Role)
	}
	g.Commit()
	g.Select()
	if l := g.Layout(); l.Role != RoleBorderSelected || l.Preview {
		t.Fatalf("selected border role = %v preview=%v", l.Role, l.Preview)
	}
	g.Deselect()
	l = g.Layout()
	if l.Role != RoleBorderInactive || l.Rows[1].Role != RoleRowInactive || l.Cols[0].Role != RoleColInactive {
		t.Fatalf("inactive roles: %v %v %v", l.Role, l.Rows[1].Role, l.Cols[0].Role)
	}
	if l.Rows[0].Role != RoleRowSelected {
		t.Fatalf("cursor row keeps its highlight when deselected")
	}
}

func TestSelectDoesNotChangeGeometry(t *testing.T) {
	g := New(1, vector.P(10, 20), 4, 6, DefaultLimits())
	g.ResizeTo(vector.P(110, 220))
	before := g.Layout()
	g.Commit()
	g.Select()
	g.Deselect()
	after := g.Layout()
	if before.Border != after.Border || before.Rows[2].Rect != after.Rows[2].Rect || before.Cols[3].Line != after.Cols[3].Line {
		t.Fatalf("selection changed geometry")
	}
}

func TestMoveBy(t *testing.T) {
	g := New(1, vector.P(0, 0), 2, 2, DefaultLimits())
	g.ResizeTo(vector.P(40, 40))
	g.MoveBy(vector.P(5, -5))
	if g.Bounds() != vector.R(5, -5, 40, 40) {
		t.Fatalf("moved bounds = %+v", g.Bounds())
	}
	g.ResizeTo(vector.P(25, 15))
	if g.Bounds() != vector.R(5, -5, 20, 20) {
		t.Fatalf("resize after move should anchor at moved start: %+v", g.Bounds())
	}
}

func TestDestroy_MakesGridInert(t *testing.T) {
	g := New(1, vector.P(0, 0), 5, 5, DefaultLimits())
	g.ResizeTo(vector.P(50, 50))
	g.Destroy()
	g.SetRowCount(9)
	g.ResizeTo(vector.P(500, 500))
	g.MoveCursor(Up)
	g.Select()
	if !g.Destroyed() || g.Rows() != 5 || g.Bounds().W != 50 || g.IsSelected() {
		t.Fatalf("destroyed grid mutated")
	}
	if l := g.Layout(); len(l.Rows) != 0 || len(l.Cols) != 0 {
		t.Fatalf("destroyed grid still owns shapes")
	}
	if g.Contains(vector.P(10, 10)) {
		t.Fatalf("destroyed grid must not be hittable")
	}
}

func TestPaletteFallback(t *testing.T) {
	p := Palette{RoleRow: {Fill: vector.Fill{Enabled: true, Color: vector.Black}}}
	if s := p.Style(RoleRow); s.Fill.Color != vector.Black {
		t.Fatalf("explicit role not used")
	}
	if s := p.Style(RoleColSelected); s.Stroke.Width != 3 {
		t.Fatalf("missing role should fall back to default, got %+v", s)
	}
	if !DefaultPalette().Style(RoleBorder).Stroke.Dashed() {
		t.Fatalf("preview border should be dashed")
	}
	if DefaultPalette().Style(RoleBorderSelected).Stroke.Dashed() {
		t.Fatalf("selected border should be solid")
	}
	if RoleColInactive.String() != "col-inactive" || Role(200).String() != "unknown" {
		t.Fatalf("role names")
	}
}
