/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"pricerange/internal/annotation"
	"pricerange/internal/chart"
	"pricerange/internal/style"
	"pricerange/internal/vector"
)

const (
	labelHeight  = 20.0
	labelPadX    = 5.0
	labelGap     = 5.0
	arrowHead    = 5.0
	candleBodyW  = 0.6
	minCandleBar = 1.0
)

var (
	Background = vector.White
	UpColor    = vector.MustParseColor("#26a69a")
	DownColor  = vector.MustParseColor("#ef5350")
)

// Annotations builds the nodes for views in paint order. Views that do not
// project produce nothing.
func Annotations(views []annotation.View, fonts Provider) []vector.Node {
	var out []vector.Node
	for _, v := range views {
		out = append(out, annotationNodes(v, fonts)...)
	}
	return out
}

func palette(o style.Options) style.Palette {
	p, err := o.Palette()
	if err != nil {
		p, _ = style.Defaults().Palette()
	}
	return p
}

func annotationNodes(v annotation.View, fonts Provider) []vector.Node {
	if !v.Visible {
		return nil
	}
	pal := palette(v.Style)
	fill := pal.Fill
	switch {
	case v.Selected:
		fill = pal.SelectedFill
	case v.Hovered:
		fill = pal.HoverFill
	}
	bw := v.Style.BorderWidthFor(v.Selected, v.Hovered)
	r := v.Rect
	nodes := []vector.Node{vector.NewRect(r, vector.SolidFill(fill), vector.SolidStroke(pal.Border, bw))}

	if v.Label != nil {
		cx := r.Center().X
		var p vector.Path
		p.MoveTo(cx, r.Bottom())
		p.LineTo(cx, r.Top())
		p.LineTo(cx-arrowHead, r.Top()+arrowHead)
		p.MoveTo(cx, r.Top())
		p.LineTo(cx+arrowHead, r.Top()+arrowHead)
		nodes = append(nodes, vector.NewPath(p, vector.Fill{}, vector.SolidStroke(pal.Arrow, v.Style.ArrowWidth)))
		nodes = append(nodes, labelNode(v, pal, fonts))
	}

	if v.ShowHandles {
		hf := vector.SolidFill(pal.Handle)
		for _, e := range v.Handles.Edges {
			nodes = append(nodes, vector.NewRect(e, hf, vector.Stroke{}))
		}
		for _, c := range v.Handles.Corners {
			nodes = append(nodes, vector.NewCircle(c, hf, vector.Stroke{}))
		}
	}
	return nodes
}

// LabelBox is the label rectangle for text of width textW above r.
func LabelBox(r vector.Rect, textW float64) vector.Rect {
	w := textW + 2*labelPadX
	return vector.R(r.Center().X-w/2, r.Top()-labelHeight-labelGap, w, labelHeight)
}

func labelNode(v annotation.View, pal style.Palette, fonts Provider) *vector.TextNode {
	text := v.Label.String()
	spec, err := ParseFont(v.Style.LabelFont)
	if err != nil {
		spec = FontSpec{Family: "sans-serif", SizePx: 12, Weight: 400}
	}
	w, _ := Measure(fonts.Face(spec), text)
	return vector.NewText(LabelBox(v.Rect, w), text, v.Style.LabelFont, pal.LabelText,
		vector.SolidFill(pal.LabelBackground), vector.SolidStroke(pal.LabelBorder, v.Style.LabelBorderWidth))
}

// Candles builds a wick and body per visible bar.
func Candles(vp *chart.Viewport) []vector.Node {
	bars := vp.Bars()
	from, to := vp.VisibleIndexRange()
	bodyW := vp.BarSpacing() * candleBodyW
	if bodyW < minCandleBar {
		bodyW = minCandleBar
	}
	var out []vector.Node
	from = max(from, 0)
	for i := from; i <= to && i < len(bars); i++ {
		b := bars[i]
		x, ok := vp.TimeToX(b.Time)
		if !ok {
			continue
		}
		c := UpColor
		if b.Close < b.Open {
			c = DownColor
		}
		hi, ok1 := vp.PriceToY(b.High)
		lo, ok2 := vp.PriceToY(b.Low)
		top, ok3 := vp.PriceToY(b.Open)
		bot, ok4 := vp.PriceToY(b.Close)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			continue
		}
		var wick vector.Path
		wick.MoveTo(x, hi)
		wick.LineTo(x, lo)
		out = append(out, vector.NewPath(wick, vector.Fill{}, vector.SolidStroke(c, 1)))
		body := vector.FromCorners(vector.Pt{X: x - bodyW/2, Y: top}, vector.Pt{X: x + bodyW/2, Y: bot})
		if body.H < minCandleBar {
			body.H = minCandleBar
		}
		out = append(out, vector.NewRect(body, vector.SolidFill(c), vector.Stroke{}))
	}
	return out
}

// Frame is the whole chart: background, candles, then annotations.
func Frame(vp *chart.Viewport, views []annotation.View, fonts Provider) *vector.Group {
	w, h := vp.Size()
	g := vector.NewGroup(vector.NewRect(vector.R(0, 0, w, h), vector.SolidFill(Background), vector.Stroke{}))
	g.Children = append(g.Children, Candles(vp)...)
	g.Children = append(g.Children, Annotations(views, fonts)...)
	return g
}
