/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"pricerange/internal/render"
	"pricerange/internal/vector"
)

// WritePDF emits root as a single page whose size in points equals the
// media size in pixels. Labels use the core Helvetica and Courier fonts so
// nothing is embedded.
func WritePDF(w io.Writer, root vector.Node, opt Options) error {
	if err := opt.validate(); err != nil {
		return err
	}
	size := gofpdf.SizeType{Wd: float64(opt.Width), Ht: float64(opt.Height)}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: size})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	if opt.Title != "" {
		pdf.SetTitle(opt.Title, true)
	}
	pdf.SetCreator("pricerange", false)
	pdf.AddPageFormat("", size)

	vector.Walk(root, vector.Identity, func(n vector.Node, m vector.Affine2D) {
		scale := xfScale(m)
		switch n := n.(type) {
		case *vector.RectNode:
			r := m.ApplyRect(n.Rect)
			paintShape(pdf, n.Fill(), n.Stroke(), scale, func(st string) { pdf.Rect(r.X, r.Y, r.W, r.H, st) })
		case *vector.CircleNode:
			c := m.Apply(n.Circle.C)
			paintShape(pdf, n.Fill(), n.Stroke(), scale, func(st string) { pdf.Circle(c.X, c.Y, n.Circle.R*scale, st) })
		case *vector.PathNode:
			if len(n.Path.Cmds) == 0 {
				break
			}
			paintShape(pdf, n.Fill(), n.Stroke(), scale, func(st string) {
				for _, c := range n.Path.Cmds {
					q := m.Apply(c.P)
					switch c.Op {
					case vector.MoveTo:
						pdf.MoveTo(q.X, q.Y)
					case vector.LineTo:
						pdf.LineTo(q.X, q.Y)
					case vector.Close:
						pdf.ClosePath()
					}
				}
				pdf.DrawPath(st)
			})
		case *vector.TextNode:
			b := m.ApplyRect(n.Box)
			paintShape(pdf, n.Fill(), n.Stroke(), scale, func(st string) { pdf.Rect(b.X, b.Y, b.W, b.H, st) })
			pdfText(pdf, n, b, scale)
		}
	})
	pdf.SetAlpha(1, "Normal")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func pdfText(pdf *gofpdf.Fpdf, n *vector.TextNode, box vector.Rect, scale float64) {
	spec, err := render.ParseFont(n.Font)
	if err != nil {
		spec = render.FontSpec{Family: "sans-serif", SizePx: 12, Weight: 400}
	}
	family := "Helvetica"
	if f := strings.ToLower(spec.Family); f == "monospace" || strings.Contains(f, "mono") || strings.Contains(f, "courier") {
		family = "Courier"
	}
	var style string
	if spec.Weight >= 600 {
		style += "B"
	}
	if spec.Italic {
		style += "I"
	}
	size := spec.SizePx * scale
	pdf.SetFont(family, style, size)
	pdf.SetAlpha(n.Color.Alpha(), "Normal")
	pdf.SetTextColor(int(n.Color.R), int(n.Color.G), int(n.Color.B))
	c := box.Center()
	tw := pdf.GetStringWidth(n.Text)
	// cap height of the core fonts is roughly 0.7em
	pdf.Text(c.X-tw/2, c.Y+size*0.35, n.Text)
}

// paintShape fills then strokes the outline emitted by draw. gofpdf keeps
// one alpha for both operations, so each runs as its own pass.
func paintShape(pdf *gofpdf.Fpdf, f vector.Fill, s vector.Stroke, scale float64, draw func(style string)) {
	if f.Enabled {
		setFillColor(pdf, f.Color)
		pdf.SetAlpha(f.Color.Alpha(), "Normal")
		draw("F")
	}
	if s.Enabled && s.Width > 0 {
		setDrawColor(pdf, s.Color)
		pdf.SetLineWidth(s.Width * scale)
		switch s.Cap {
		case vector.CapRound:
			pdf.SetLineCapStyle("round")
		case vector.CapSquare:
			pdf.SetLineCapStyle("square")
		default:
			pdf.SetLineCapStyle("butt")
		}
		pdf.SetAlpha(s.Color.Alpha(), "Normal")
		draw("D")
	}
}

func setDrawColor(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}

func xfScale(m vector.Affine2D) float64 {
	return math.Sqrt(math.Abs(m.A*m.D - m.B*m.C))
}
