/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package script reads YAML scenarios: a chart size, a bar source, ranges
// to attach and a list of pointer events to replay against a manager.
package script

import (
	"fmt"

	"pricerange/internal/bars"
	"pricerange/internal/chart"
	"pricerange/internal/style"
	"pricerange/internal/vector"
)

// Scenario is a parsed scenario file.
type Scenario struct {
	Name   string      `yaml:"name"`
	Width  int         `yaml:"width"`
	Height int         `yaml:"height"`
	Mode   string      `yaml:"mode"`
	Bars   BarSource   `yaml:"bars"`
	Style  style.Patch `yaml:"style"`
	Ranges []RangeSpec `yaml:"ranges"`
	Events []Event     `yaml:"-"`
}

// BarSource names stored bars by Symbol, or describes synthetic ones.
type BarSource struct {
	Symbol string `yaml:"symbol"`
	Limit  int    `yaml:"limit"`
	Count  int    `yaml:"count"`
	Start  int64  `yaml:"start"`
	Step   int64  `yaml:"step"`
	Seed   uint64 `yaml:"seed"`
}

// Synthetic generates the bars described by b. Count defaults to 60.
func (b BarSource) Synthetic() []chart.Bar {
	n := b.Count
	if n <= 0 {
		n = 60
	}
	return bars.Synthetic(n, chart.Time(b.Start), b.Step, b.Seed)
}

// Anchor is a domain point as written in scenario files.
type Anchor struct {
	Time  int64   `yaml:"time"`
	Price float64 `yaml:"price"`
}

func (a Anchor) Point() chart.DomainPoint {
	return chart.DomainPoint{Time: chart.Time(a.Time), Price: a.Price}
}

// RangeSpec is one range to attach before the events run.
type RangeSpec struct {
	ID    string      `yaml:"id"`
	P1    Anchor      `yaml:"p1"`
	P2    Anchor      `yaml:"p2"`
	Style style.Patch `yaml:"style"`
}

// Kind is an event verb.
type Kind string

const (
	KindDown    Kind = "down"    // button press
	KindMove    Kind = "move"    // pointer motion with the button held
	KindUp      Kind = "up"      // button release
	KindLeave   Kind = "leave"   // pointer left the chart element
	KindClick   Kind = "click"   // chart click
	KindHover   Kind = "hover"   // crosshair motion
	KindUnhover Kind = "unhover" // crosshair left the plot
	KindDraw    Kind = "draw"    // start drawing a new range
	KindCancel  Kind = "cancel"  // abort drawing
	KindPan     Kind = "pan"     // scroll the time axis by a pixel delta
)

var pointKinds = map[Kind]bool{KindDown: true, KindMove: true, KindClick: true, KindHover: true}

var bareKinds = map[Kind]bool{KindUp: true, KindLeave: true, KindUnhover: true, KindDraw: true, KindCancel: true}

// Point is either a pixel or a domain coordinate.
type Point struct {
	Pixel  *vector.Pt
	Domain *chart.DomainPoint
}

func (p Point) String() string {
	switch {
	case p.Pixel != nil:
		return fmt.Sprintf("px(%g, %g)", p.Pixel.X, p.Pixel.Y)
	case p.Domain != nil:
		return p.Domain.String()
	}
	return "-"
}

// Event is one scripted input. Line is the 1-based source line.
type Event struct {
	Kind   Kind
	At     Point
	Amount float64 // pan delta in pixels
	Line   int
}

func (e Event) String() string {
	switch {
	case e.Kind == KindPan:
		return fmt.Sprintf("%s %g", e.Kind, e.Amount)
	case pointKinds[e.Kind]:
		return fmt.Sprintf("%s %s", e.Kind, e.At)
	}
	return string(e.Kind)
}

// Error is a parse error with position context.
type Error struct {
	Line    int
	Column  int
	Message string
}

func (e Error) Error() string {
	if e.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}
