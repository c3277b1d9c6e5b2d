/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package interact

import (
	"testing"

	"gridtrace/internal/grid"
	"gridtrace/internal/vector"
)

func commitAt(r *Registry, a, b vector.Pt) *grid.Grid {
	p := r.BeginPreview(a, 3, 3)
	p.ResizeTo(b)
	return r.CommitPreview()
}

func TestRegistry_SinglePreview(t *testing.T) {
	r := NewRegistry(grid.DefaultLimits())
	first := r.BeginPreview(vector.P(0, 0), 2, 2)
	second := r.BeginPreview(vector.P(5, 5), 2, 2)
	if !first.Destroyed() {
		t.Fatalf("older preview should be destroyed")
	}
	if r.Preview() != second {
		t.Fatalf("preview slot should hold the newest preview")
	}
	if r.Len() != 0 {
		t.Fatalf("previews are not committed: len=%d", r.Len())
	}
}

func TestRegistry_CommitSelects(t *testing.T) {
	r := NewRegistry(grid.DefaultLimits())
	a := commitAt(r, vector.P(0, 0), vector.P(10, 10))
	if r.Selected() != a || !a.IsSelected() || a.IsPreview() {
		t.Fatalf("committed grid should be the selected grid")
	}
	if r.Preview() != nil {
		t.Fatalf("preview slot should be empty after commit")
	}
	b := commitAt(r, vector.P(20, 20), vector.P(30, 30))
	if a.IsSelected() || r.Selected() != b {
		t.Fatalf("only one grid may be selected")
	}
	if got := r.CommitPreview(); got != nil {
		t.Fatalf("commit without preview = %v, want nil", got)
	}
}

func TestRegistry_SelectRefusesPreviewAndStrangers(t *testing.T) {
	r := NewRegistry(grid.DefaultLimits())
	p := r.BeginPreview(vector.P(0, 0), 2, 2)
	if r.Select(p) {
		t.Fatalf("a preview must not become selected")
	}
	stranger := grid.New(99, vector.P(0, 0), 2, 2, grid.DefaultLimits())
	stranger.Commit()
	if r.Select(stranger) {
		t.Fatalf("unregistered grid must not become selected")
	}
	if r.Selected() != nil {
		t.Fatalf("selection should stay empty")
	}
}

func TestRegistry_DestroyAndHitTest(t *testing.T) {
	r := NewRegistry(grid.DefaultLimits())
	a := commitAt(r, vector.P(0, 0), vector.P(100, 100))
	b := commitAt(r, vector.P(50, 50), vector.P(150, 150))
	c := commitAt(r, vector.P(300, 300), vector.P(400, 400))

	if got := r.HitTest(vector.P(75, 75)); got != b {
		t.Fatalf("overlap should hit the top-most grid, got %v", got)
	}
	r.Destroy(b)
	if !b.Destroyed() || r.Selected() == b {
		t.Fatalf("destroyed grid still live")
	}
	if got := r.HitTest(vector.P(75, 75)); got != a {
		t.Fatalf("after destroy expected a, got %v", got)
	}
	if _, ok := r.Get(b.ID()); ok {
		t.Fatalf("destroyed grid still registered")
	}
	grids := r.Grids()
	if len(grids) != 2 || grids[0] != a || grids[1] != c {
		t.Fatalf("draw order = %v", grids)
	}
	if got := r.HitTest(vector.P(200, 200)); got != nil {
		t.Fatalf("empty area hit %v", got)
	}
}

func TestRegistry_DestroyPreview(t *testing.T) {
	r := NewRegistry(grid.DefaultLimits())
	p := r.BeginPreview(vector.P(0, 0), 2, 2)
	r.Destroy(p)
	if r.Preview() != nil || !p.Destroyed() {
		t.Fatalf("preview should be released")
	}
}
