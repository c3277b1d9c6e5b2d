/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package viewport

import (
	"testing"

	"gridtrace/internal/vector"
)

func TestToLocalInvertsToScreen(t *testing.T) {
	s := New(1.05, 0, 0)
	s.Pan(vector.P(40, -15))
	s.Zoom(vector.P(200, 120), 1)
	s.Zoom(vector.P(10, 300), 1)
	p := vector.P(123.5, 77.25)
	if got := s.ToLocal(s.ToScreen(p)); !got.Near(p, 1e-9) {
		t.Fatalf("round trip = %+v, want %+v", got, p)
	}
	if got := s.Transform().Apply(p); !got.Near(s.ToScreen(p), 1e-9) {
		t.Fatalf("Transform disagrees with ToScreen: %+v", got)
	}
}

func TestZoomKeepsPointerFixed(t *testing.T) {
	s := New(DefaultZoomFactor, 0, 0)
	s.Pan(vector.P(13, 29))
	p := vector.P(321, 654)
	before := s.ToLocal(p)
	steps := []float64{1, 1, -1, 1, 1, 1, -1, -1, -1, -1, -1, 1}
	for i, d := range steps {
		s.Zoom(p, d)
		if got := s.ToLocal(p); !got.Near(before, 1e-9) {
			t.Fatalf("step %d: ToLocal(p) = %+v, want %+v", i, got, before)
		}
	}
}

func TestZoomDirection(t *testing.T) {
	s := New(2, 0, 0)
	s.Zoom(vector.P(0, 0), 1)
	if s.Scale() != 2 {
		t.Fatalf("positive delta should multiply, scale=%v", s.Scale())
	}
	s.Zoom(vector.P(0, 0), -1)
	s.Zoom(vector.P(0, 0), -1)
	if s.Scale() != 0.5 {
		t.Fatalf("negative delta should divide, scale=%v", s.Scale())
	}
	s.Zoom(vector.P(0, 0), 0)
	if s.Scale() != 0.5 {
		t.Fatalf("zero delta must be a no-op")
	}
}

func TestZoomBoundsLeaveSpaceUntouched(t *testing.T) {
	s := New(2, 0.5, 2)
	s.Pan(vector.P(7, 9))
	s.Zoom(vector.P(50, 50), 1)
	x, y := s.Offset()
	s.Zoom(vector.P(50, 50), 1)
	if s.Scale() != 2 {
		t.Fatalf("scale exceeded max: %v", s.Scale())
	}
	if nx, ny := s.Offset(); nx != x || ny != y {
		t.Fatalf("pan changed on rejected zoom")
	}
}

func TestFitWidthAndReset(t *testing.T) {
	s := New(0, 0, 0)
	if s.ZoomFactor() != DefaultZoomFactor {
		t.Fatalf("factor fallback = %v", s.ZoomFactor())
	}
	s.FitWidth(800, 1600)
	if s.Scale() != 0.5 {
		t.Fatalf("FitWidth scale = %v", s.Scale())
	}
	s.FitWidth(0, 1600)
	if s.Scale() != 0.5 {
		t.Fatalf("invalid FitWidth should be ignored")
	}
	s.Pan(vector.P(1, 1))
	s.Reset()
	if x, y := s.Offset(); s.Scale() != 1 || x != 0 || y != 0 {
		t.Fatalf("reset failed")
	}
}
