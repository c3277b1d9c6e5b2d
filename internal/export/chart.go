/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package export renders the canvas (pictures plus committed grids) to flat
// PNG, PDF or SVG charts. Exports are write-only; nothing reads them back.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	xdraw "golang.org/x/image/draw"

	"gridtrace/internal/grid"
	"gridtrace/internal/interact"
	"gridtrace/internal/vector"
)

var (
	// ErrEmpty means the scene has no committed grid and no picture.
	ErrEmpty = errors.New("export: nothing to export")
	// ErrFormat means the output extension is not .png, .pdf or .svg.
	ErrFormat = errors.New("export: unsupported format")
)

// Options controls both renderers. Lengths are canvas-local units; Scale
// converts them to pixels (PNG) or points (PDF).
type Options struct {
	Margin float64
	Scale  float64
	Labels bool
}

// DefaultOptions matches the export section defaults of the config.
func DefaultOptions() Options { return Options{Margin: 20, Scale: 1, Labels: true} }

func (o Options) normalized() Options {
	if o.Scale <= 0 {
		o.Scale = 1
	}
	if o.Margin < 0 {
		o.Margin = 0
	}
	return o
}

// labelRoom is the extra space reserved left of and above grids for numbers.
const labelRoom = 24

// chart is a scene reduced to what is exported.
type chart struct {
	pictures []interact.PictureView
	grids    []grid.Layout
	palette  grid.Palette
	bounds   vector.Rect // local units, margin included
	opt      Options
}

func newChart(s interact.Scene, opt Options) (*chart, error) {
	opt = opt.normalized()
	c := &chart{pictures: s.Pictures, palette: s.Palette, opt: opt}
	if c.palette == nil {
		c.palette = grid.DefaultPalette()
	}
	for _, g := range s.Grids {
		if !g.Preview {
			c.grids = append(c.grids, g.Layout)
		}
	}
	var b vector.Rect
	first := true
	add := func(r vector.Rect) {
		if first {
			b, first = r, false
			return
		}
		b = b.Union(r)
	}
	for _, p := range c.pictures {
		add(p.Bounds)
	}
	for _, g := range c.grids {
		hb := g.HitBounds()
		if opt.Labels {
			hb = vector.R(hb.X-labelRoom, hb.Y-labelRoom, hb.W+labelRoom, hb.H+labelRoom)
		}
		add(hb)
	}
	if first {
		return nil, ErrEmpty
	}
	c.bounds = b.Inset(-opt.Margin, -opt.Margin)
	return c, nil
}

// size returns the output size in device units.
func (c *chart) size() (w, h float64) {
	return c.bounds.W * c.opt.Scale, c.bounds.H * c.opt.Scale
}

// dev maps a local point to device coordinates.
func (c *chart) dev(p vector.Pt) vector.Pt {
	return p.Sub(c.bounds.Min()).Mul(c.opt.Scale)
}

func (c *chart) devRect(r vector.Rect) vector.Rect {
	o := c.dev(r.Min())
	return vector.R(o.X, o.Y, r.W*c.opt.Scale, r.H*c.opt.Scale)
}

// rowLabel and colLabel number rows bottom-up and columns right-to-left,
// the order the grid indexes them.
func rowLabel(i int) string { return strconv.Itoa(i + 1) }
func colLabel(j int) string { return strconv.Itoa(j + 1) }

// colCentre is the x midpoint between divider j and j+1.
func colCentre(g grid.Layout, j int) float64 {
	return (g.Cols[j].Line.A.X + g.Cols[j+1].Line.A.X) / 2
}

// resample scales img to w x h device pixels.
func resample(img image.Image, w, h int) *image.NRGBA {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// DefaultName builds a timestamped file name in dir.
func DefaultName(dir, ext string, t time.Time) string {
	ext = "." + strings.TrimPrefix(strings.ToLower(ext), ".")
	return filepath.Join(dir, "gridtrace-"+t.Format("20060102-150405")+ext)
}

// File writes the scene to path, picking the format from the extension.
func File(path string, s interact.Scene, opt Options) error {
	var write func(io.Writer, interact.Scene, Options) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		write = WritePNG
	case ".pdf":
		write = WritePDF
	case ".svg":
		write = WriteSVG
	default:
		return fmt.Errorf("%w: %q", ErrFormat, filepath.Ext(path))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f, s, opt); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
