/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package viewport maps raw pointer positions to canvas-local coordinates.
// The canvas is shown through a uniform scale followed by a pan offset:
//
//	screen = local*scale + pan
package viewport

import "gridtrace/internal/vector"

// DefaultZoomFactor is the per-notch wheel zoom multiplier.
const DefaultZoomFactor = 1.05

// Space holds the pan offset and scale of the canvas. The zero value is not
// usable; call New.
type Space struct {
	panX, panY float64
	scale      float64
	factor     float64
	minScale   float64
	maxScale   float64
}

// New returns a Space at scale 1 with no pan. A factor <= 1 falls back to
// DefaultZoomFactor. minScale/maxScale <= 0 disable the respective bound.
func New(factor, minScale, maxScale float64) *Space {
	if factor <= 1 {
		factor = DefaultZoomFactor
	}
	return &Space{scale: 1, factor: factor, minScale: minScale, maxScale: maxScale}
}

func (s *Space) Scale() float64         { return s.scale }
func (s *Space) Offset() (x, y float64) { return s.panX, s.panY }
func (s *Space) ZoomFactor() float64    { return s.factor }

func (s *Space) Transform() vector.Affine2D {
	return vector.Translate(s.panX, s.panY).Mul(vector.Scale(s.scale, s.scale))
}

// ToLocal applies the inverse of the current transform to a raw position.
func (s *Space) ToLocal(p vector.Pt) vector.Pt {
	return vector.Pt{X: (p.X - s.panX) / s.scale, Y: (p.Y - s.panY) / s.scale}
}

// ToScreen is the forward transform.
func (s *Space) ToScreen(p vector.Pt) vector.Pt {
	return vector.Pt{X: p.X*s.scale + s.panX, Y: p.Y*s.scale + s.panY}
}

// Zoom multiplies the scale by the zoom factor for a positive deltaSign and
// divides it for a negative one, then re-pans so that the local point under
// pointer stays under pointer. A zero delta or a step beyond the configured
// bounds leaves the space untouched.
func (s *Space) Zoom(pointer vector.Pt, deltaSign float64) {
	var next float64
	switch {
	case deltaSign > 0:
		next = s.scale * s.factor
	case deltaSign < 0:
		next = s.scale / s.factor
	default:
		return
	}
	if !s.inBounds(next) {
		return
	}
	anchor := s.ToLocal(pointer)
	s.scale = next
	s.panX = pointer.X - anchor.X*next
	s.panY = pointer.Y - anchor.Y*next
}

// Pan translates the offset by a raw screen delta.
func (s *Space) Pan(delta vector.Pt) {
	s.panX += delta.X
	s.panY += delta.Y
}

// FitWidth scales the canvas so that designWidth local units fill
// containerWidth screen units. Non-positive inputs are ignored.
func (s *Space) FitWidth(containerWidth, designWidth float64) {
	if containerWidth <= 0 || designWidth <= 0 {
		return
	}
	s.scale = containerWidth / designWidth
}

// Reset returns to scale 1 without pan.
func (s *Space) Reset() {
	s.panX, s.panY, s.scale = 0, 0, 1
}

func (s *Space) inBounds(scale float64) bool {
	if scale <= 0 {
		return false
	}
	if s.minScale > 0 && scale < s.minScale {
		return false
	}
	if s.maxScale > 0 && scale > s.maxScale {
		return false
	}
	return true
}
