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
	"encoding/base64"
	"fmt"
	"image/png"
	"io"
	"strings"

	"gridtrace/internal/grid"
	"gridtrace/internal/interact"
	"gridtrace/internal/vector"
)

// WriteSVG renders the scene as a standalone SVG document. Pictures are
// embedded as base64 PNG at their source resolution.
func WriteSVG(w io.Writer, s interact.Scene, opt Options) error {
	c, err := newChart(s, opt)
	if err != nil {
		return err
	}
	fw, fh := c.size()

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%g\" height=\"%g\" viewBox=\"0 0 %g %g\">\n", fw, fh, fw, fh)
	wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"#ffffff\"/>\n", fw, fh)

	for _, p := range c.pictures {
		r := c.devRect(p.Bounds)
		if r.W <= 0 || r.H <= 0 {
			continue
		}
		var pb bytes.Buffer
		if err := png.Encode(&pb, p.Image); err != nil {
			return fmt.Errorf("encode picture %d: %w", p.ID, err)
		}
		wf("  <image x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" preserveAspectRatio=\"none\" href=\"data:image/png;base64,%s\"/>\n",
			r.X, r.Y, r.W, r.H, base64.StdEncoding.EncodeToString(pb.Bytes()))
	}
	for _, g := range c.grids {
		c.writeGridSVG(wf, g)
	}
	if c.opt.Labels {
		for _, g := range c.grids {
			c.writeLabelsSVG(wf, g)
		}
	}
	wf("</svg>\n")
	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// svgPaint returns an RGB hex colour and a separate opacity, which SVG 1.1
// viewers handle better than #rrggbbaa.
func svgPaint(col vector.Color) (string, float64) {
	return fmt.Sprintf("#%02x%02x%02x", col.R, col.G, col.B), vector.FloatRound(col.Alpha(), 3)
}

func (c *chart) svgStroke(st vector.Stroke) string {
	if !st.Enabled || st.Width <= 0 {
		return ` stroke="none"`
	}
	hex, op := svgPaint(st.Color)
	attrs := fmt.Sprintf(` stroke="%s" stroke-opacity="%g" stroke-width="%g"`, hex, op, st.Width*c.opt.Scale)
	if st.Dashed() {
		parts := make([]string, len(st.Dash))
		for i, d := range st.Dash {
			parts[i] = fmt.Sprintf("%g", d*c.opt.Scale)
		}
		attrs += fmt.Sprintf(` stroke-dasharray="%s"`, strings.Join(parts, ","))
	}
	return attrs
}

func (c *chart) svgFill(f vector.Fill) string {
	if !f.Enabled {
		return ` fill="none"`
	}
	hex, op := svgPaint(f.Color)
	return fmt.Sprintf(` fill="%s" fill-opacity="%g"`, hex, op)
}

func (c *chart) writeGridSVG(wf func(string, ...any), g grid.Layout) {
	wf("  <g id=\"grid-%d\">\n", g.ID)
	for _, row := range g.Rows {
		st := c.palette.Style(row.Role)
		r := c.devRect(row.Rect)
		wf("    <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\"%s%s/>\n", r.X, r.Y, r.W, r.H, c.svgFill(st.Fill), c.svgStroke(st.Stroke))
	}
	for _, col := range g.Cols {
		st := c.palette.Style(col.Role).Stroke
		if !st.Enabled {
			continue
		}
		a, b := c.dev(col.Line.A), c.dev(col.Line.B)
		wf("    <line x1=\"%g\" y1=\"%g\" x2=\"%g\" y2=\"%g\"%s/>\n", a.X, a.Y, b.X, b.Y, c.svgStroke(st))
	}
	r := c.devRect(g.Border)
	wf("    <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"none\"%s/>\n", r.X, r.Y, r.W, r.H, c.svgStroke(c.palette.Style(g.Role).Stroke))
	wf("  </g>\n")
}

func (c *chart) writeLabelsSVG(wf func(string, ...any), g grid.Layout) {
	size := 9 * c.opt.Scale
	wf("  <g font-family=\"Helvetica, Arial, sans-serif\" font-size=\"%g\" fill=\"#333333\">\n", size)
	for _, row := range g.Rows {
		p := c.dev(vector.P(row.Rect.X-4, row.Rect.Y+row.Rect.H/2))
		wf("    <text x=\"%g\" y=\"%g\" text-anchor=\"end\" dominant-baseline=\"middle\">%s</text>\n", p.X, p.Y, rowLabel(row.Index))
	}
	for j := 0; j+1 < len(g.Cols); j++ {
		p := c.dev(vector.P(colCentre(g, j), g.Border.Y-grid.ColOverhang-4))
		wf("    <text x=\"%g\" y=\"%g\" text-anchor=\"middle\">%s</text>\n", p.X, p.Y, colLabel(j))
	}
	wf("  </g>\n")
}
