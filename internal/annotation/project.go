/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package annotation

import (
	"pricerange/internal/chart"
	"pricerange/internal/vector"
)

// Project maps two anchors to their normalized pixel rectangle. ok is false
// when any of the four coordinates has no pixel position; the anchors
// themselves are never reordered.
func Project(p chart.Projector, p1, p2 chart.DomainPoint) (vector.Rect, bool) {
	if p == nil {
		return vector.Rect{}, false
	}
	x1, ok1 := p.TimeToX(p1.Time)
	x2, ok2 := p.TimeToX(p2.Time)
	y1, ok3 := p.PriceToY(p1.Price)
	y2, ok4 := p.PriceToY(p2.Price)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return vector.Rect{}, false
	}
	return vector.FromCorners(vector.Pt{X: x1, Y: y1}, vector.Pt{X: x2, Y: y2}), true
}

// Unproject resolves a pixel position to a domain point. Both axes must
// resolve.
func Unproject(p chart.Projector, pt vector.Pt) (chart.DomainPoint, bool) {
	if p == nil {
		return chart.DomainPoint{}, false
	}
	t, ok := p.XToTime(pt.X)
	if !ok {
		return chart.DomainPoint{}, false
	}
	price, ok := p.YToPrice(pt.Y)
	if !ok {
		return chart.DomainPoint{}, false
	}
	return chart.DomainPoint{Time: t, Price: price}, true
}
