/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package chart defines the chart-domain types an annotation lives in and the
// host boundary it projects through.
package chart

import (
	"fmt"
	"time"
)

// Time is a point on the horizontal axis in UTC seconds.
type Time int64

// FromTime converts a wall-clock time.
func FromTime(t time.Time) Time { return Time(t.Unix()) }

// UTC returns the wall-clock time.
func (t Time) UTC() time.Time { return time.Unix(int64(t), 0).UTC() }

// DomainPoint is an anchor in chart-domain coordinates.
type DomainPoint struct {
	Time  Time
	Price float64
}

func (p DomainPoint) String() string { return fmt.Sprintf("(%d, %g)", p.Time, p.Price) }

// Delta is the difference between two domain points. Time and price deltas
// are independent.
type Delta struct {
	Time  Time
	Price float64
}

// Sub returns p - q.
func (p DomainPoint) Sub(q DomainPoint) Delta {
	return Delta{Time: p.Time - q.Time, Price: p.Price - q.Price}
}

// Add applies d to p.
func (p DomainPoint) Add(d Delta) DomainPoint {
	return DomainPoint{Time: p.Time + d.Time, Price: p.Price + d.Price}
}

// Projector converts between the chart domain and media pixels. Every
// method reports an unavailable mapping through ok == false.
type Projector interface {
	TimeToX(t Time) (x float64, ok bool)
	PriceToY(p float64) (y float64, ok bool)
	XToTime(x float64) (t Time, ok bool)
	YToPrice(y float64) (p float64, ok bool)
	IndexOfTime(t Time) (i int, ok bool)
}

// Host is the chart an annotation is attached to.
type Host interface {
	Projector
	SetPanningEnabled(enabled bool)
	RequestRedraw()
}

// Bar is one OHLC sample of the host series.
type Bar struct {
	Time   Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}
