/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"pricerange/internal/render"
	"pricerange/internal/vector"
)

// WriteSVG emits root as an SVG 1.1 document. Text is left to the viewer's
// fonts; the family from the label font is passed through.
func WriteSVG(w io.Writer, root vector.Node, opt Options) error {
	if err := opt.validate(); err != nil {
		return err
	}
	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%dpx\" height=\"%dpx\" viewBox=\"0 0 %d %d\">\n", opt.Width, opt.Height, opt.Width, opt.Height)
	if opt.Title != "" {
		wf("  <title>%s</title>\n", escText(opt.Title))
	}

	vector.Walk(root, vector.Identity, func(n vector.Node, m vector.Affine2D) {
		scale := xfScale(m)
		switch n := n.(type) {
		case *vector.RectNode:
			r := m.ApplyRect(n.Rect)
			wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\"%s/>\n", r.X, r.Y, r.W, r.H, svgPaint(n.Fill(), n.Stroke(), scale))
		case *vector.CircleNode:
			c := m.Apply(n.Circle.C)
			wf("  <circle cx=\"%g\" cy=\"%g\" r=\"%g\"%s/>\n", c.X, c.Y, n.Circle.R*scale, svgPaint(n.Fill(), n.Stroke(), scale))
		case *vector.PathNode:
			wf("  <path d=\"%s\"%s/>\n", svgPath(n.Path, m), svgPaint(n.Fill(), n.Stroke(), scale))
		case *vector.TextNode:
			b := m.ApplyRect(n.Box)
			wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\"%s/>\n", b.X, b.Y, b.W, b.H, svgPaint(n.Fill(), n.Stroke(), scale))
			spec, err := render.ParseFont(n.Font)
			if err != nil {
				spec = render.FontSpec{Family: "sans-serif", SizePx: 12, Weight: 400}
			}
			c := b.Center()
			wf("  <text x=\"%g\" y=\"%g\" text-anchor=\"middle\" dominant-baseline=\"middle\" font-family=\"%s\" font-size=\"%g\" font-weight=\"%d\"%s fill=\"%s\"%s>%s</text>\n",
				c.X, c.Y, escAttr(spec.Family), spec.SizePx*scale, spec.Weight, italicAttr(spec.Italic),
				n.Color.Hex(), opacityAttr("fill-opacity", n.Color), escText(n.Text))
		}
	})
	wf("</svg>\n")

	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func svgPaint(f vector.Fill, s vector.Stroke, scale float64) string {
	var b bytes.Buffer
	if f.Enabled {
		fmt.Fprintf(&b, " fill=\"%s\"%s", f.Color.Hex(), opacityAttr("fill-opacity", f.Color))
	} else {
		b.WriteString(" fill=\"none\"")
	}
	if s.Enabled && s.Width > 0 {
		fmt.Fprintf(&b, " stroke=\"%s\"%s stroke-width=\"%g\"", s.Color.Hex(), opacityAttr("stroke-opacity", s.Color), s.Width*scale)
		switch s.Cap {
		case vector.CapRound:
			b.WriteString(" stroke-linecap=\"round\"")
		case vector.CapSquare:
			b.WriteString(" stroke-linecap=\"square\"")
		}
	}
	return b.String()
}

func svgPath(p vector.Path, m vector.Affine2D) string {
	var b bytes.Buffer
	for i, c := range p.Cmds {
		if i > 0 {
			b.WriteByte(' ')
		}
		q := m.Apply(c.P)
		switch c.Op {
		case vector.MoveTo:
			fmt.Fprintf(&b, "M%g %g", q.X, q.Y)
		case vector.LineTo:
			fmt.Fprintf(&b, "L%g %g", q.X, q.Y)
		case vector.Close:
			b.WriteByte('Z')
		}
	}
	return b.String()
}

func opacityAttr(name string, c vector.Color) string {
	if c.A == 255 {
		return ""
	}
	return " " + name + "=\"" + strconv.FormatFloat(vector.FloatRound(c.Alpha(), 3), 'f', -1, 64) + "\""
}

func italicAttr(italic bool) string {
	if italic {
		return " font-style=\"italic\""
	}
	return ""
}

func escAttr(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '"':
			out = append(out, '&', 'q', 'u', 'o', 't', ';')
		case '&':
			out = append(out, '&', 'a', 'm', 'p', ';')
		case '<':
			out = append(out, '&', 'l', 't', ';')
		case '\n':
			out = append(out, ' ')
		case '\r':
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&':
			out = append(out, '&', 'a', 'm', 'p', ';')
		case '<':
			out = append(out, '&', 'l', 't', ';')
		case '>':
			out = append(out, '&', 'g', 't', ';')
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
