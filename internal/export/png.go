/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"gridtrace/internal/grid"
	"gridtrace/internal/interact"
	"gridtrace/internal/vector"
)

// maxPixels bounds the PNG canvas.
const maxPixels = 12000

// WritePNG renders the scene as a PNG on a white background.
func WritePNG(w io.Writer, s interact.Scene, opt Options) error {
	c, err := newChart(s, opt)
	if err != nil {
		return err
	}
	fw, fh := c.size()
	if fw > maxPixels || fh > maxPixels {
		return fmt.Errorf("export: chart too large (%.0fx%.0f px)", fw, fh)
	}
	dc := gg.NewContext(int(math.Ceil(fw)), int(math.Ceil(fh)))
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	for _, p := range c.pictures {
		r := c.devRect(p.Bounds)
		img := resample(p.Image, int(math.Round(r.W)), int(math.Round(r.H)))
		dc.DrawImage(img, int(math.Round(r.X)), int(math.Round(r.Y)))
	}
	for _, g := range c.grids {
		c.drawGridPNG(dc, g)
	}
	if c.opt.Labels && len(c.grids) > 0 {
		face, err := labelFace(9 * c.opt.Scale)
		if err != nil {
			return err
		}
		dc.SetFontFace(face)
		for _, g := range c.grids {
			c.drawLabelsPNG(dc, g)
		}
	}
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func labelFace(size float64) (font.Face, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull}), nil
}

func (c *chart) setStroke(dc *gg.Context, st vector.Stroke) bool {
	if !st.Enabled || st.Width <= 0 {
		return false
	}
	dc.SetColor(st.Color.NRGBA())
	dc.SetLineWidth(st.Width * c.opt.Scale)
	if st.Dashed() {
		d := make([]float64, len(st.Dash))
		for i, v := range st.Dash {
			d[i] = v * c.opt.Scale
		}
		dc.SetDash(d...)
	} else {
		dc.SetDash()
	}
	return true
}

func (c *chart) drawGridPNG(dc *gg.Context, g grid.Layout) {
	for _, row := range g.Rows {
		st := c.palette.Style(row.Role)
		r := c.devRect(row.Rect)
		dc.DrawRectangle(r.X, r.Y, r.W, r.H)
		if st.Fill.Enabled {
			dc.SetColor(st.Fill.Color.NRGBA())
			dc.FillPreserve()
		}
		if c.setStroke(dc, st.Stroke) {
			dc.Stroke()
		} else {
			dc.ClearPath()
		}
	}
	for _, col := range g.Cols {
		if !c.setStroke(dc, c.palette.Style(col.Role).Stroke) {
			continue
		}
		a, b := c.dev(col.Line.A), c.dev(col.Line.B)
		dc.DrawLine(a.X, a.Y, b.X, b.Y)
		dc.Stroke()
	}
	if c.setStroke(dc, c.palette.Style(g.Role).Stroke) {
		r := c.devRect(g.Border)
		dc.DrawRectangle(r.X, r.Y, r.W, r.H)
		dc.Stroke()
	}
	dc.SetDash()
}

func (c *chart) drawLabelsPNG(dc *gg.Context, g grid.Layout) {
	dc.SetRGB(0.2, 0.2, 0.2)
	for _, row := range g.Rows {
		p := c.dev(vector.P(row.Rect.X-4, row.Rect.Y+row.Rect.H/2))
		dc.DrawStringAnchored(rowLabel(row.Index), p.X, p.Y, 1, 0.35)
	}
	for j := 0; j+1 < len(g.Cols); j++ {
		p := c.dev(vector.P(colCentre(g, j), g.Border.Y-grid.ColOverhang-4))
		dc.DrawStringAnchored(colLabel(j), p.X, p.Y, 0.5, 0)
	}
}
