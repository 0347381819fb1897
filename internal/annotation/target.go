/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package annotation

import "pricerange/internal/chart"

// Target is what a pointer position resolves to on an annotation: nothing,
// the body, or one of the eight resize handles.
type Target uint8

const (
	None Target = iota
	Body
	Left
	Right
	Top
	Bottom
	TopLeft
	TopRight
	BottomLeft
	BottomRight

	targetCount
)

var targetNames = [...]string{
	None:        "none",
	Body:        "body",
	Left:        "left-handle",
	Right:       "right-handle",
	Top:         "top-handle",
	Bottom:      "bottom-handle",
	TopLeft:     "top-left-handle",
	TopRight:    "top-right-handle",
	BottomLeft:  "bottom-left-handle",
	BottomRight: "bottom-right-handle",
}

func (t Target) String() string {
	if t >= targetCount {
		return "invalid"
	}
	return targetNames[t]
}

// IsHandle reports whether t is one of the eight resize handles.
func (t Target) IsHandle() bool { return t >= Left && t < targetCount }

// IsCorner reports whether t is a corner handle.
func (t Target) IsCorner() bool { return t >= TopLeft && t <= BottomRight }

// ParseTarget is the inverse of String.
func ParseTarget(s string) (Target, bool) {
	for i, n := range targetNames {
		if n == s {
			return Target(i), true
		}
	}
	return None, false
}

// Cursor names the CSS-style pointer cursor a host should show over t.
func (t Target) Cursor() string {
	switch t {
	case Body:
		return "move"
	case Left, Right:
		return "ew-resize"
	case Top, Bottom:
		return "ns-resize"
	case TopLeft, BottomRight:
		return "nwse-resize"
	case TopRight, BottomLeft:
		return "nesw-resize"
	}
	return "default"
}

// axisRule selects which anchor a handle edits on one axis.
type axisRule uint8

const (
	keep axisRule = iota
	atMin
	atMax
)

// handleRule pairs the time-axis rule with the price-axis rule of a handle.
type handleRule struct {
	time  axisRule
	price axisRule
}

// Top is the maximum price, bottom the minimum; left is the earliest time.
var handleRules = [...]handleRule{
	None:        {keep, keep},
	Body:        {keep, keep},
	Left:        {atMin, keep},
	Right:       {atMax, keep},
	Top:         {keep, atMax},
	Bottom:      {keep, atMin},
	TopLeft:     {atMin, atMax},
	TopRight:    {atMax, atMax},
	BottomLeft:  {atMin, atMin},
	BottomRight: {atMax, atMin},
}

// The name and rule tables must cover exactly the closed set of targets.
var (
	_ = [1]struct{}{}[len(handleRules)-int(targetCount)]
	_ = [1]struct{}{}[len(targetNames)-int(targetCount)]
)

// governsP1 decides whether the anchor at the requested extreme is p1. Ties
// go to p1.
func governsP1(rule axisRule, a, b float64) bool {
	if rule == atMin {
		return a <= b
	}
	return a >= b
}

// resize moves the anchor components governed by handle h to cur. The
// governed anchor is chosen from the anchors as they are now, so a handle
// dragged past the opposite edge hands over to the other anchor on the next
// call.
func resize(p1, p2 chart.DomainPoint, h Target, cur chart.DomainPoint) (chart.DomainPoint, chart.DomainPoint) {
	if !h.IsHandle() {
		return p1, p2
	}
	r := handleRules[h]
	if r.time != keep {
		if governsP1(r.time, float64(p1.Time), float64(p2.Time)) {
			p1.Time = cur.Time
		} else {
			p2.Time = cur.Time
		}
	}
	if r.price != keep {
		if governsP1(r.price, p1.Price, p2.Price) {
			p1.Price = cur.Price
		} else {
			p2.Price = cur.Price
		}
	}
	return p1, p2
}

// translate shifts both anchors by the same delta.
func translate(p1, p2 chart.DomainPoint, d chart.Delta) (chart.DomainPoint, chart.DomainPoint) {
	return p1.Add(d), p2.Add(d)
}
