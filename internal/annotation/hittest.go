/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package annotation

import "pricerange/internal/vector"

// HitRadii sizes the handle hit zones in pixels.
type HitRadii struct {
	// Corner is the radius of the disc centred on each corner.
	Corner float64
	// Edge is the half-width of the band centred on each edge.
	Edge float64
}

// DefaultHitRadii matches the drawn handles: 10px corner discs, 10px wide
// edge bands.
var DefaultHitRadii = HitRadii{Corner: 10, Edge: 5}

// Handles holds the hit and paint geometry of the eight handles of a rect.
type Handles struct {
	Corners [4]vector.Circle // TopLeft, TopRight, BottomLeft, BottomRight
	Edges   [4]vector.Rect   // Left, Right, Top, Bottom
}

var (
	cornerOrder = [4]Target{TopLeft, TopRight, BottomLeft, BottomRight}
	edgeOrder   = [4]Target{Left, Right, Top, Bottom}
)

// HandleGeometry builds the handle shapes for r.
func HandleGeometry(r vector.Rect, radii HitRadii) Handles {
	var h Handles
	for i, c := range r.Corners() {
		h.Corners[i] = vector.Circle{C: c, R: radii.Corner}
	}
	e := radii.Edge
	h.Edges = [4]vector.Rect{
		vector.R(r.Left()-e, r.Top(), 2*e, r.H),
		vector.R(r.Right()-e, r.Top(), 2*e, r.H),
		vector.R(r.Left(), r.Top()-e, r.W, 2*e),
		vector.R(r.Left(), r.Bottom()-e, r.W, 2*e),
	}
	return h
}

// HitTest resolves pt against a projected rectangle. Idle annotations
// (active == false) only expose their body. Active ones test corners, then
// edges, then the body; the first match wins.
func HitTest(pt vector.Pt, r vector.Rect, ok, active bool, radii HitRadii) Target {
	if !ok {
		return None
	}
	if active {
		h := HandleGeometry(r, radii)
		for i, c := range h.Corners {
			if c.ContainsStrict(pt) {
				return cornerOrder[i]
			}
		}
		for i, e := range h.Edges {
			if e.Contains(pt) {
				return edgeOrder[i]
			}
		}
	}
	if r.Contains(pt) {
		return Body
	}
	return None
}
