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

import "gridtrace/internal/vector"

// Role names the semantic part a shape plays so that renderers can look up
// its paint in a Palette.
type Role uint8

const (
	RoleBorder Role = iota
	RoleBorderSelected
	RoleBorderInactive
	RoleRow
	RoleRowSelected
	RoleRowInactive
	RoleCol
	RoleColSelected
	RoleColInactive
)

var roleNames = [...]string{
	"border", "border-selected", "border-inactive",
	"row", "row-selected", "row-inactive",
	"col", "col-selected", "col-inactive",
}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return "unknown"
}

// Style is the paint for one role.
type Style struct {
	Fill   vector.Fill
	Stroke vector.Stroke
}

// Colors is the user-facing colour set a Palette is derived from.
type Colors struct {
	GridStroke        vector.Color
	RowFill           vector.Color
	RowStroke         vector.Color
	SelectedRowFill   vector.Color
	SelectedRowStroke vector.Color
	ColStroke         vector.Color
	SelectedColStroke vector.Color
	InactiveStroke    vector.Color
}

// DefaultColors returns the stock chart colours.
func DefaultColors() Colors {
	return Colors{
		GridStroke:        vector.Color{R: 0x4d, G: 0x2d, B: 0x52, A: 0xdd},
		RowFill:           vector.Color{R: 200, G: 200, B: 200, A: 13},
		RowStroke:         vector.Color{R: 0xf4, G: 0x9d, B: 0x37, A: 0x6a},
		SelectedRowFill:   vector.Color{R: 0xfa, G: 0xda, B: 0x5e, A: 0x4a},
		SelectedRowStroke: vector.Color{R: 0xf4, G: 0x9d, B: 0x37, A: 0xdd},
		ColStroke:         vector.Color{R: 0x3c, G: 0x6c, B: 0x82, A: 0xaa},
		SelectedColStroke: vector.Color{R: 0x08, G: 0x3d, B: 0x77, A: 0xdd},
		InactiveStroke:    vector.Color{R: 0xaa, G: 0xaa, B: 0xaa, A: 0xaa},
	}
}

// Palette maps each role to its style.
type Palette map[Role]Style

func stroke(c vector.Color, w float64, dash ...float64) vector.Stroke {
	return vector.Stroke{Color: c, Width: w, Dash: dash, Enabled: true}
}

func fill(c vector.Color) vector.Fill { return vector.Fill{Color: c, Enabled: true} }

// NewPalette derives the per-role styles from a colour set.
func NewPalette(c Colors) Palette {
	return Palette{
		RoleBorder:         {Stroke: stroke(c.GridStroke, 2, 3, 3)},
		RoleBorderSelected: {Stroke: stroke(c.GridStroke, 4)},
		RoleBorderInactive: {Stroke: stroke(c.InactiveStroke, 2, 3, 3)},
		RoleRow:            {Fill: fill(c.RowFill), Stroke: stroke(c.RowStroke, 1)},
		RoleRowSelected:    {Fill: fill(c.SelectedRowFill), Stroke: stroke(c.SelectedRowStroke, 2)},
		RoleRowInactive:    {Fill: fill(c.RowFill), Stroke: stroke(c.InactiveStroke, 1)},
		RoleCol:            {Stroke: stroke(c.ColStroke, 1)},
		RoleColSelected:    {Stroke: stroke(c.SelectedColStroke, 3)},
		RoleColInactive:    {Stroke: stroke(c.InactiveStroke, 1)},
	}
}

// DefaultPalette is NewPalette(DefaultColors()).
func DefaultPalette() Palette { return NewPalette(DefaultColors()) }

// Style returns the style for r, falling back to the default palette for
// roles the receiver does not define.
func (p Palette) Style(r Role) Style {
	if s, ok := p[r]; ok {
		return s
	}
	return DefaultPalette()[r]
}
