/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"image"
	"math"

	"github.com/fogleman/gg"

	"pricerange/internal/vector"
)

// Rasterize paints root onto a w x h pixel canvas. ratio scales media pixels
// to device pixels, so the canvas is w*ratio by h*ratio.
func Rasterize(root vector.Node, w, h int, ratio float64, fonts Provider) image.Image {
	if ratio <= 0 {
		ratio = 1
	}
	dc := gg.NewContext(int(math.Ceil(float64(w)*ratio)), int(math.Ceil(float64(h)*ratio)))
	Paint(dc, root, vector.Scale(ratio, ratio), fonts)
	return dc.Image()
}

// Paint draws root and its children onto dc under xf.
func Paint(dc *gg.Context, root vector.Node, xf vector.Affine2D, fonts Provider) {
	if fonts == nil {
		fonts = BasicProvider{}
	}
	vector.Walk(root, xf, func(n vector.Node, m vector.Affine2D) {
		scale := math.Sqrt(math.Abs(m.A*m.D - m.B*m.C))
		switch n := n.(type) {
		case *vector.RectNode:
			r := m.ApplyRect(n.Rect)
			dc.DrawRectangle(r.X, r.Y, r.W, r.H)
			fillStroke(dc, n.Fill(), n.Stroke(), scale)
		case *vector.CircleNode:
			c := m.Apply(n.Circle.C)
			dc.DrawCircle(c.X, c.Y, n.Circle.R*scale)
			fillStroke(dc, n.Fill(), n.Stroke(), scale)
		case *vector.PathNode:
			for _, cmd := range n.Path.Cmds {
				p := m.Apply(cmd.P)
				switch cmd.Op {
				case vector.MoveTo:
					dc.MoveTo(p.X, p.Y)
				case vector.LineTo:
					dc.LineTo(p.X, p.Y)
				case vector.Close:
					dc.ClosePath()
				}
			}
			fillStroke(dc, n.Fill(), n.Stroke(), scale)
		case *vector.TextNode:
			paintText(dc, n, m, scale, fonts)
		}
	})
}

func paintText(dc *gg.Context, n *vector.TextNode, m vector.Affine2D, scale float64, fonts Provider) {
	box := m.ApplyRect(n.Box)
	dc.DrawRectangle(box.X, box.Y, box.W, box.H)
	fillStroke(dc, n.Fill(), n.Stroke(), scale)
	spec, err := ParseFont(n.Font)
	if err != nil {
		spec = FontSpec{Family: "sans-serif", SizePx: 12, Weight: 400}
	}
	spec.SizePx *= scale
	dc.SetFontFace(fonts.Face(spec))
	dc.SetColor(n.Color)
	c := box.Center()
	dc.DrawStringAnchored(n.Text, c.X, c.Y, 0.5, 0.5)
}

func fillStroke(dc *gg.Context, f vector.Fill, s vector.Stroke, scale float64) {
	stroke := s.Enabled && s.Width > 0
	if f.Enabled {
		dc.SetColor(f.Color)
		if stroke {
			dc.FillPreserve()
		} else {
			dc.Fill()
		}
	}
	if !stroke {
		dc.ClearPath()
		return
	}
	dc.SetColor(s.Color)
	dc.SetLineWidth(s.Width * scale)
	switch s.Cap {
	case vector.CapRound:
		dc.SetLineCapRound()
	case vector.CapSquare:
		dc.SetLineCapSquare()
	default:
		dc.SetLineCapButt()
	}
	dc.Stroke()
}
