/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package vector

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Color is a non-premultiplied RGBA colour.
type Color struct{ R, G, B, A uint8 }

var (
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
	Transparent = Color{0, 0, 0, 0}
)

// NRGBA converts to the image/color representation.
func (c Color) NRGBA() color.NRGBA { return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A} }

// Alpha returns the opacity in [0,1].
func (c Color) Alpha() float64 { return float64(c.A) / 255 }

// Hex formats the colour as #rrggbbaa.
func (c Color) Hex() string { return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A) }

// ParseColor accepts CSS-like notations: #rgb, #rrggbb, #rrggbbaa, rgb(r, g, b)
// and rgba(r, g, b, a) with a in [0,1].
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		return parseFunc(s[len("rgba("):len(s)-1], true)
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		return parseFunc(s[len("rgb("):len(s)-1], false)
	}
	return Color{}, fmt.Errorf("unsupported colour %q", s)
}

func parseHex(h string) (Color, error) {
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return Color{}, fmt.Errorf("bad hex colour length %d", len(h))
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("bad hex colour: %w", err)
	}
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func parseFunc(body string, withAlpha bool) (Color, error) {
	parts := strings.Split(body, ",")
	want := 3
	if withAlpha {
		want = 4
	}
	if len(parts) != want {
		return Color{}, fmt.Errorf("expected %d components, got %d", want, len(parts))
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || n < 0 || n > 255 {
			return Color{}, fmt.Errorf("bad colour component %q", parts[i])
		}
		ch[i] = uint8(n)
	}
	c := Color{R: ch[0], G: ch[1], B: ch[2], A: 255}
	if withAlpha {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return Color{}, fmt.Errorf("bad alpha %q", parts[3])
		}
		c.A = uint8(math.Round(a * 255))
	}
	return c, nil
}

type Fill struct {
	Color   Color
	Enabled bool
}

// Stroke describes an outline. Dash alternates on/off lengths; empty means solid.
type Stroke struct {
	Color   Color
	Width   float64
	Dash    []float64
	Enabled bool
}

// Dashed reports whether the stroke has a visible dash pattern.
func (s Stroke) Dashed() bool {
	for _, d := range s.Dash {
		if d > 0 {
			return true
		}
	}
	return false
}
