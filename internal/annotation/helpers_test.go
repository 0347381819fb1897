/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package annotation

import (
	"math"

	"pricerange/internal/chart"
	"pricerange/internal/vector"
)

// fakeHost maps time straight to x and price to y = 1000 - price. Bar
// indices are time/10.
type fakeHost struct {
	panning   bool
	redraws   int
	hidden    map[chart.Time]bool
	noInverse bool
	noIndex   bool
}

func newFakeHost() *fakeHost { return &fakeHost{panning: true, hidden: map[chart.Time]bool{}} }

func (h *fakeHost) TimeToX(t chart.Time) (float64, bool) {
	if h.hidden[t] {
		return 0, false
	}
	return float64(t), true
}

func (h *fakeHost) PriceToY(p float64) (float64, bool) { return 1000 - p, true }

func (h *fakeHost) XToTime(x float64) (chart.Time, bool) {
	if h.noInverse {
		return 0, false
	}
	return chart.Time(math.Round(x)), true
}

func (h *fakeHost) YToPrice(y float64) (float64, bool) {
	if h.noInverse {
		return 0, false
	}
	return 1000 - y, true
}

func (h *fakeHost) IndexOfTime(t chart.Time) (int, bool) {
	if h.noIndex {
		return 0, false
	}
	return int(t) / 10, true
}

func (h *fakeHost) SetPanningEnabled(v bool) { h.panning = v }
func (h *fakeHost) RequestRedraw()           { h.redraws++ }

func dp(t chart.Time, p float64) chart.DomainPoint { return chart.DomainPoint{Time: t, Price: p} }

// px converts a domain point to the fake host's pixel space.
func px(t chart.Time, p float64) vector.Pt { return vector.Pt{X: float64(t), Y: 1000 - p} }

func newTestManager(mode ResizeMode) (*Manager, *fakeHost) {
	h := newFakeHost()
	return NewManager(h, NewCoordinator(Config{Mode: mode})), h
}
