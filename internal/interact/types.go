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
	"image"

	"gridtrace/internal/grid"
	"gridtrace/internal/vector"
)

// State is the interaction state of the controller. Lock mode is tracked
// separately by Lock.
type State uint8

const (
	Deselected State = iota
	Selected
	AwaitingGridStart
	AwaitingGridEnd
)

func (s State) String() string {
	switch s {
	case Deselected:
		return "deselected"
	case Selected:
		return "selected"
	case AwaitingGridStart:
		return "awaiting-grid-start"
	case AwaitingGridEnd:
		return "awaiting-grid-end"
	}
	return "unknown"
}

// Key is a keyboard key the controller understands.
type Key uint8

const (
	KeyUp Key = iota
	KeyDown
	KeyLeft
	KeyRight
	KeyEnter
	KeyEscape
)

func (k Key) direction() (grid.Direction, bool) {
	switch k {
	case KeyUp:
		return grid.Up, true
	case KeyDown:
		return grid.Down, true
	case KeyLeft:
		return grid.Left, true
	case KeyRight:
		return grid.Right, true
	}
	return 0, false
}

// Picture is a pasted reference image placed on the canvas.
type Picture struct {
	ID     uint64
	Image  image.Image
	Bounds vector.Rect
}

// GridView is a grid layout plus its current drag-ability.
type GridView struct {
	grid.Layout
	Draggable bool
}

// PictureView is a picture plus its current drag-ability.
type PictureView struct {
	Picture
	Draggable bool
}

// Scene is a read-only snapshot for renderers. Grids holds the committed
// grids in draw order followed by the preview, if any.
type Scene struct {
	State     State
	Locked    bool
	Transform vector.Affine2D
	Scale     float64
	Palette   grid.Palette
	Pictures  []PictureView
	Grids     []GridView
}
