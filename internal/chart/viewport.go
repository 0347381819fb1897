/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package chart

import (
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// Viewport is an in-memory Host over a bar series. Bar i is centred at
// x = Offset + (i+0.5)*BarSpacing; prices map linearly onto [0, Height]
// with MaxPrice at the top.
//
// Viewport is safe for concurrent use.
type Viewport struct {
	mu         sync.RWMutex
	bars       []Bar
	width      float64
	height     float64
	barSpacing float64
	offset     float64
	minPrice   float64
	maxPrice   float64

	panning bool
	redraws int
	onDraw  func()
}

// NewViewport creates a viewport of the given plot size. Bars must be sorted
// by time; call Autofit to derive spacing and price range.
func NewViewport(bars []Bar, width, height float64) *Viewport {
	v := &Viewport{
		bars:       append([]Bar(nil), bars...),
		width:      width,
		height:     height,
		barSpacing: 6,
		panning:    true,
	}
	sort.Slice(v.bars, func(i, j int) bool { return v.bars[i].Time < v.bars[j].Time })
	v.Autofit()
	return v
}

// Autofit spreads all bars over the width and fits the price range to the
// bars' lows and highs with a 10% margin.
func (v *Viewport) Autofit() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if n := len(v.bars); n > 0 && v.width > 0 {
		v.barSpacing = v.width / float64(n)
		v.offset = 0
	}
	lo, hi, ok := barsRange(v.bars)
	if !ok {
		return
	}
	v.setPriceRangeLocked(lo, hi)
}

func barsRange(bars []Bar) (lo, hi float64, ok bool) {
	if len(bars) == 0 {
		return 0, 0, false
	}
	lows := make([]float64, len(bars))
	highs := make([]float64, len(bars))
	for i, b := range bars {
		lows[i], highs[i] = b.Low, b.High
	}
	return floats.Min(lows), floats.Max(highs), true
}

func (v *Viewport) setPriceRangeLocked(lo, hi float64) {
	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.01, 1)
	}
	v.minPrice, v.maxPrice = lo-pad, hi+pad
}

// FitPrices widens the price range so [lo, hi] is visible, e.g. to include
// annotation autoscale ranges.
func (v *Viewport) FitPrices(lo, hi float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	blo, bhi, ok := barsRange(v.bars)
	if ok {
		lo, hi = math.Min(lo, blo), math.Max(hi, bhi)
	}
	v.setPriceRangeLocked(lo, hi)
}

// SetPriceRange sets the visible price range directly.
func (v *Viewport) SetPriceRange(lo, hi float64) {
	v.mu.Lock()
	v.minPrice, v.maxPrice = lo, hi
	v.mu.Unlock()
}

// SetBarSpacing sets the horizontal distance between bar centres.
func (v *Viewport) SetBarSpacing(px float64) {
	v.mu.Lock()
	if px > 0 {
		v.barSpacing = px
	}
	v.mu.Unlock()
}

// Resize changes the plot size without touching spacing or prices.
func (v *Viewport) Resize(width, height float64) {
	v.mu.Lock()
	v.width, v.height = width, height
	v.mu.Unlock()
}

// Pan scrolls horizontally by dx pixels. It is a no-op while panning is
// disabled and reports whether the viewport moved.
func (v *Viewport) Pan(dx float64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.panning || dx == 0 {
		return false
	}
	v.offset += dx
	return true
}

func (v *Viewport) Bars() []Bar {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]Bar(nil), v.bars...)
}

func (v *Viewport) Size() (w, h float64) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.width, v.height
}

func (v *Viewport) BarSpacing() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.barSpacing
}

// PriceRange returns the visible price bounds.
func (v *Viewport) PriceRange() (lo, hi float64) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.minPrice, v.maxPrice
}

// VisibleIndexRange returns the logical bar indices at the plot edges.
func (v *Viewport) VisibleIndexRange() (from, to int) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	from = int(math.Floor(-v.offset/v.barSpacing - 0.5))
	to = int(math.Ceil((v.width-v.offset)/v.barSpacing - 0.5))
	return from, to
}

// PanningEnabled reports the flag last set through SetPanningEnabled.
func (v *Viewport) PanningEnabled() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.panning
}

// Redraws counts RequestRedraw calls.
func (v *Viewport) Redraws() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.redraws
}

// OnRedraw registers fn to run after each RequestRedraw. fn runs without the
// viewport lock held.
func (v *Viewport) OnRedraw(fn func()) {
	v.mu.Lock()
	v.onDraw = fn
	v.mu.Unlock()
}

func (v *Viewport) SetPanningEnabled(enabled bool) {
	v.mu.Lock()
	v.panning = enabled
	v.mu.Unlock()
}

func (v *Viewport) RequestRedraw() {
	v.mu.Lock()
	v.redraws++
	fn := v.onDraw
	v.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (v *Viewport) indexToX(i float64) float64 { return v.offset + (i+0.5)*v.barSpacing }

// step is the typical time distance between bars, from the outermost pair on
// the requested side.
func (v *Viewport) step(after bool) (Time, bool) {
	n := len(v.bars)
	if n < 2 {
		return 0, false
	}
	if after {
		return v.bars[n-1].Time - v.bars[n-2].Time, true
	}
	return v.bars[1].Time - v.bars[0].Time, true
}

// logical returns the fractional bar index of t: exact on bars,
// interpolated between them and extrapolated outside the series.
func (v *Viewport) logical(t Time) (float64, bool) {
	n := len(v.bars)
	if n == 0 {
		return 0, false
	}
	i := sort.Search(n, func(i int) bool { return v.bars[i].Time >= t })
	switch {
	case i < n && v.bars[i].Time == t:
		return float64(i), true
	case i == 0:
		s, ok := v.step(false)
		if !ok || s <= 0 {
			return 0, false
		}
		return -float64(v.bars[0].Time-t) / float64(s), true
	case i == n:
		s, ok := v.step(true)
		if !ok || s <= 0 {
			return 0, false
		}
		return float64(n-1) + float64(t-v.bars[n-1].Time)/float64(s), true
	default:
		a, b := v.bars[i-1].Time, v.bars[i].Time
		return float64(i-1) + float64(t-a)/float64(b-a), true
	}
}

func (v *Viewport) TimeToX(t Time) (float64, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	l, ok := v.logical(t)
	if !ok {
		return 0, false
	}
	return v.indexToX(l), true
}

// XToTime snaps x to the nearest bar slot. Slots beyond the series resolve
// to extrapolated times; x outside the plot is unmapped.
func (v *Viewport) XToTime(x float64) (Time, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	n := len(v.bars)
	if n == 0 || x < 0 || x > v.width || v.barSpacing <= 0 {
		return 0, false
	}
	i := int(math.Round((x-v.offset)/v.barSpacing - 0.5))
	switch {
	case i >= 0 && i < n:
		return v.bars[i].Time, true
	case i < 0:
		s, ok := v.step(false)
		if !ok {
			return 0, false
		}
		return v.bars[0].Time + Time(i)*s, true
	default:
		s, ok := v.step(true)
		if !ok {
			return 0, false
		}
		return v.bars[n-1].Time + Time(i-n+1)*s, true
	}
}

func (v *Viewport) PriceToY(p float64) (float64, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	span := v.maxPrice - v.minPrice
	if !(span > 0) || math.IsNaN(p) {
		return 0, false
	}
	return (v.maxPrice - p) / span * v.height, true
}

func (v *Viewport) YToPrice(y float64) (float64, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	span := v.maxPrice - v.minPrice
	if !(span > 0) || v.height <= 0 || y < 0 || y > v.height {
		return 0, false
	}
	return v.maxPrice - y/v.height*span, true
}

// IndexOfTime returns the nearest bar index, extrapolating logically
// outside the series.
func (v *Viewport) IndexOfTime(t Time) (int, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	l, ok := v.logical(t)
	if !ok {
		return 0, false
	}
	return int(math.Round(l)), true
}
