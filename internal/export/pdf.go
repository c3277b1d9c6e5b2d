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
	"bytes"
	"fmt"
	"image/png"
	"io"
	"math"

	"github.com/jung-kurt/gofpdf"

	"gridtrace/internal/grid"
	"gridtrace/internal/interact"
	"gridtrace/internal/vector"
	"gridtrace/internal/version"
)

// WritePDF renders the scene onto a single page sized to the chart, one
// point per local unit at Scale 1.
func WritePDF(w io.Writer, s interact.Scene, opt Options) error {
	c, err := newChart(s, opt)
	if err != nil {
		return err
	}
	pw, ph := c.size()
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pw, Ht: ph},
	})
	pdf.SetTitle("GridTrace chart", false)
	pdf.SetCreator("gridtrace "+version.String(), false)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	for i, p := range c.pictures {
		r := c.devRect(p.Bounds)
		if r.W <= 0 || r.H <= 0 {
			continue
		}
		// Embed at the source resolution capped to 2x the placed size.
		b := p.Image.Bounds()
		iw := int(math.Min(float64(b.Dx()), math.Ceil(r.W*2)))
		ih := int(math.Min(float64(b.Dy()), math.Ceil(r.H*2)))
		var buf bytes.Buffer
		if err := png.Encode(&buf, resample(p.Image, iw, ih)); err != nil {
			return fmt.Errorf("encode picture %d: %w", p.ID, err)
		}
		name := fmt.Sprintf("picture-%d", i)
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, opts, &buf)
		pdf.ImageOptions(name, r.X, r.Y, r.W, r.H, false, opts, 0, "")
	}
	for _, g := range c.grids {
		c.drawGridPDF(pdf, g)
	}
	if c.opt.Labels {
		pdf.SetAlpha(1, "Normal")
		pdf.SetFont("Helvetica", "", 9*c.opt.Scale)
		pdf.SetTextColor(51, 51, 51)
		for _, g := range c.grids {
			c.drawLabelsPDF(pdf, g)
		}
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func (c *chart) strokePDF(pdf *gofpdf.Fpdf, st vector.Stroke) bool {
	if !st.Enabled || st.Width <= 0 {
		return false
	}
	pdf.SetDrawColor(int(st.Color.R), int(st.Color.G), int(st.Color.B))
	pdf.SetAlpha(st.Color.Alpha(), "Normal")
	pdf.SetLineWidth(st.Width * c.opt.Scale)
	if st.Dashed() {
		d := make([]float64, len(st.Dash))
		for i, v := range st.Dash {
			d[i] = v * c.opt.Scale
		}
		pdf.SetDashPattern(d, 0)
	} else {
		pdf.SetDashPattern(nil, 0)
	}
	return true
}

func (c *chart) drawGridPDF(pdf *gofpdf.Fpdf, g grid.Layout) {
	// gofpdf has one alpha for fill and stroke, so the two passes are split.
	for _, row := range g.Rows {
		st := c.palette.Style(row.Role)
		r := c.devRect(row.Rect)
		if st.Fill.Enabled {
			f := st.Fill.Color
			pdf.SetFillColor(int(f.R), int(f.G), int(f.B))
			pdf.SetAlpha(f.Alpha(), "Normal")
			pdf.Rect(r.X, r.Y, r.W, r.H, "F")
		}
		if c.strokePDF(pdf, st.Stroke) {
			pdf.Rect(r.X, r.Y, r.W, r.H, "D")
		}
	}
	for _, col := range g.Cols {
		if !c.strokePDF(pdf, c.palette.Style(col.Role).Stroke) {
			continue
		}
		a, b := c.dev(col.Line.A), c.dev(col.Line.B)
		pdf.Line(a.X, a.Y, b.X, b.Y)
	}
	if c.strokePDF(pdf, c.palette.Style(g.Role).Stroke) {
		r := c.devRect(g.Border)
		pdf.Rect(r.X, r.Y, r.W, r.H, "D")
	}
	pdf.SetDashPattern(nil, 0)
}

func (c *chart) drawLabelsPDF(pdf *gofpdf.Fpdf, g grid.Layout) {
	_, fontH := pdf.GetFontSize()
	for _, row := range g.Rows {
		s := rowLabel(row.Index)
		p := c.dev(vector.P(row.Rect.X-4, row.Rect.Y+row.Rect.H/2))
		pdf.Text(p.X-pdf.GetStringWidth(s), p.Y+fontH*0.35, s)
	}
	for j := 0; j+1 < len(g.Cols); j++ {
		s := colLabel(j)
		p := c.dev(vector.P(colCentre(g, j), g.Border.Y-grid.ColOverhang-4))
		pdf.Text(p.X-pdf.GetStringWidth(s)/2, p.Y, s)
	}
}
