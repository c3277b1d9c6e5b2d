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
	"sort"

	"gridtrace/internal/grid"
	"gridtrace/internal/vector"
)

// Registry tracks the committed grids, the single selected slot and the
// single preview slot. A grid is never selected while it is a preview.
type Registry struct {
	limits    grid.Limits
	nextID    uint64
	committed map[uint64]*grid.Grid
	order     []uint64 // draw order, oldest first
	selected  *grid.Grid
	preview   *grid.Grid
}

func NewRegistry(lim grid.Limits) *Registry {
	return &Registry{limits: lim, committed: make(map[uint64]*grid.Grid)}
}

func (r *Registry) Selected() *grid.Grid { return r.selected }
func (r *Registry) Preview() *grid.Grid  { return r.preview }

// Len returns the number of committed grids.
func (r *Registry) Len() int { return len(r.order) }

// Get looks up a committed grid.
func (r *Registry) Get(id uint64) (*grid.Grid, bool) {
	g, ok := r.committed[id]
	return g, ok
}

// Grids returns the committed grids in draw order.
func (r *Registry) Grids() []*grid.Grid {
	out := make([]*grid.Grid, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.committed[id])
	}
	return out
}

// BeginPreview creates the preview grid. Any previous preview is destroyed
// first so that at most one exists.
func (r *Registry) BeginPreview(start vector.Pt, rows, cols int) *grid.Grid {
	r.CancelPreview()
	r.nextID++
	r.preview = grid.New(r.nextID, start, rows, cols, r.limits)
	return r.preview
}

// CancelPreview destroys the preview, if any.
func (r *Registry) CancelPreview() {
	if r.preview == nil {
		return
	}
	r.preview.Destroy()
	r.preview = nil
}

// CommitPreview moves the preview into the committed set and makes it the
// sole selected grid. It returns nil when there is no preview.
func (r *Registry) CommitPreview() *grid.Grid {
	g := r.preview
	if g == nil {
		return nil
	}
	r.preview = nil
	g.Commit()
	r.committed[g.ID()] = g
	r.order = append(r.order, g.ID())
	r.Select(g)
	return g
}

// Select makes g the selected grid, deselecting the previous one. Previews
// and unknown grids are refused. Selecting the current grid is a no-op.
func (r *Registry) Select(g *grid.Grid) bool {
	if g == nil || g.IsPreview() || g.Destroyed() {
		return false
	}
	if _, ok := r.committed[g.ID()]; !ok {
		return false
	}
	if r.selected == g {
		return true
	}
	r.Deselect()
	g.Select()
	r.selected = g
	return true
}

// Deselect clears the selected slot.
func (r *Registry) Deselect() {
	if r.selected == nil {
		return
	}
	r.selected.Deselect()
	r.selected = nil
}

// Destroy removes a committed grid (or the preview) and releases it.
func (r *Registry) Destroy(g *grid.Grid) {
	if g == nil {
		return
	}
	if g == r.preview {
		r.CancelPreview()
		return
	}
	if g == r.selected {
		r.selected = nil
	}
	if _, ok := r.committed[g.ID()]; ok {
		delete(r.committed, g.ID())
		i := sort.Search(len(r.order), func(i int) bool { return r.order[i] >= g.ID() })
		if i < len(r.order) && r.order[i] == g.ID() {
			r.order = append(r.order[:i], r.order[i+1:]...)
		}
	}
	g.Destroy()
}

// HitTest returns the top-most committed grid under p (local coordinates).
func (r *Registry) HitTest(p vector.Pt) *grid.Grid {
	for i := len(r.order) - 1; i >= 0; i-- {
		if g := r.committed[r.order[i]]; g.Contains(p) {
			return g
		}
	}
	return nil
}
