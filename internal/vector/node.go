/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Node is a scene item that the raster, SVG and PDF backends know how to paint.
// Geometry is stored in media pixels; Transform maps it to the output surface.
type Node interface {
	Bounds() Rect
	Transform() Affine2D
	SetTransform(Affine2D)
	Fill() Fill
	Stroke() Stroke
}

type baseNode struct {
	xf     Affine2D
	fill   Fill
	stroke Stroke
}

func (b *baseNode) Transform() Affine2D     { return b.xf }
func (b *baseNode) SetTransform(m Affine2D) { b.xf = m }
func (b *baseNode) Fill() Fill              { return b.fill }
func (b *baseNode) Stroke() Stroke          { return b.stroke }

// RectNode draws an axis-aligned rectangle.
type RectNode struct {
	baseNode
	Rect Rect
}

func NewRect(r Rect, f Fill, s Stroke) *RectNode {
	return &RectNode{baseNode: baseNode{xf: Identity, fill: f, stroke: s}, Rect: r}
}

func (n *RectNode) Bounds() Rect { return n.xf.ApplyRect(n.Rect) }

// CircleNode draws a disc; corner handles use it.
type CircleNode struct {
	baseNode
	Circle Circle
}

func NewCircle(c Circle, f Fill, s Stroke) *CircleNode {
	return &CircleNode{baseNode: baseNode{xf: Identity, fill: f, stroke: s}, Circle: c}
}

func (n *CircleNode) Bounds() Rect {
	c := n.Circle
	return n.xf.ApplyRect(R(c.C.X-c.R, c.C.Y-c.R, 2*c.R, 2*c.R))
}

// PathNode draws a polyline or polygon.
type PathNode struct {
	baseNode
	Path Path
}

func NewPath(p Path, f Fill, s Stroke) *PathNode {
	return &PathNode{baseNode: baseNode{xf: Identity, fill: f, stroke: s}, Path: p}
}

func (n *PathNode) Bounds() Rect { return n.xf.ApplyRect(n.Path.Bounds()) }

// TextNode is a single label line centred in a box. The box is painted with
// the node's fill and stroke before the text.
type TextNode struct {
	baseNode
	Box   Rect
	Text  string
	Font  string // CSS shorthand, e.g. "12px sans-serif"
	Color Color
}

func NewText(box Rect, text, font string, c Color, bg Fill, border Stroke) *TextNode {
	return &TextNode{baseNode: baseNode{xf: Identity, fill: bg, stroke: border}, Box: box, Text: text, Font: font, Color: c}
}

func (n *TextNode) Bounds() Rect { return n.xf.ApplyRect(n.Box) }

// Group is a container for child nodes with its own transform.
type Group struct {
	baseNode
	Children []Node
}

func NewGroup(children ...Node) *Group {
	g := &Group{baseNode: baseNode{xf: Identity}}
	g.Children = append(g.Children, children...)
	return g
}

func (g *Group) Bounds() Rect {
	var b Rect
	for i, c := range g.Children {
		cb := g.xf.ApplyRect(c.Bounds())
		if i == 0 {
			b = cb
		} else {
			b = b.Union(cb)
		}
	}
	return b
}

// Walk visits every leaf node depth-first in paint order together with its
// accumulated transform.
func Walk(n Node, parent Affine2D, fn func(n Node, xf Affine2D)) {
	xf := parent.Mul(n.Transform())
	if g, ok := n.(*Group); ok {
		for _, c := range g.Children {
			Walk(c, xf, fn)
		}
		return
	}
	fn(n, xf)
}
