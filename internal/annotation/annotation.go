/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package annotation implements the interactive price/time range: projection
// of its two anchors, hit testing of body and handles, and the hover,
// selection, drag and resize state shared by every range on a chart.
package annotation

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"pricerange/internal/chart"
	"pricerange/internal/style"
	"pricerange/internal/vector"
)

// Annotation is one range rectangle spanned by anchors P1 and P2. The anchors
// carry no ordering; extremes are always derived. Anchors change only through
// drags and resizes driven by a Manager.
type Annotation struct {
	mu       sync.RWMutex
	id       string
	p1, p2   chart.DomainPoint
	opts     style.Options
	hovered  bool
	selected bool
	drag     *dragSession // non-nil only while a drag is in progress

	// set while attached
	host chart.Host
	mgr  *Manager
}

// dragSession is the scratch state of one press-drag-release gesture.
type dragSession struct {
	part   Target
	origin chart.DomainPoint
	initP1 chart.DomainPoint
	initP2 chart.DomainPoint
}

// Option customizes New.
type Option func(*Annotation)

// WithStyle replaces the default style options.
func WithStyle(o style.Options) Option { return func(a *Annotation) { a.opts = o } }

// WithID sets a caller-chosen identifier instead of a random UUID.
func WithID(id string) Option { return func(a *Annotation) { a.id = id } }

// New creates a detached annotation.
func New(p1, p2 chart.DomainPoint, opts ...Option) *Annotation {
	a := &Annotation{p1: p1, p2: p2, opts: style.Defaults()}
	for _, o := range opts {
		o(a)
	}
	if a.id == "" {
		a.id = uuid.NewString()
	}
	return a
}

func (a *Annotation) ID() string { return a.id }

// Anchors returns P1 and P2 as stored.
func (a *Annotation) Anchors() (p1, p2 chart.DomainPoint) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.p1, a.p2
}

func (a *Annotation) Options() style.Options {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.opts
}

// ApplyOptions merges a partial style override and requests a redraw. On
// error the options are left untouched.
func (a *Annotation) ApplyOptions(p style.Patch) error {
	a.mu.Lock()
	next, err := a.opts.Apply(p)
	if err == nil {
		a.opts = next
	}
	host := a.host
	a.mu.Unlock()
	if err != nil {
		return err
	}
	if host != nil {
		host.RequestRedraw()
	}
	return nil
}

func (a *Annotation) Hovered() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.hovered
}

func (a *Annotation) Selected() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.selected
}

// Dragging reports the part being dragged, or None.
func (a *Annotation) Dragging() Target {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.drag == nil {
		return None
	}
	return a.drag.part
}

func (a *Annotation) setHovered(v bool) {
	a.mu.Lock()
	a.hovered = v
	a.mu.Unlock()
}

func (a *Annotation) setSelected(v bool) {
	a.mu.Lock()
	a.selected = v
	a.mu.Unlock()
}

// Rect projects the anchors through the host. ok is false while detached or
// unprojectable.
func (a *Annotation) Rect() (vector.Rect, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return Project(a.host, a.p1, a.p2)
}

// HitTest resolves a pixel point against this annotation in its current state.
func (a *Annotation) HitTest(pt vector.Pt, radii HitRadii) Target {
	a.mu.RLock()
	defer a.mu.RUnlock()
	r, ok := Project(a.host, a.p1, a.p2)
	return HitTest(pt, r, ok, a.hovered || a.selected, radii)
}

// InfoLabel is the measurement text shown above the range.
type InfoLabel struct {
	PriceDiff   string // p2 - p1
	PercentDiff string // relative to p1, "n/a" when p1 is zero
	BarDiff     int    // bar index of p2 minus bar index of p1
}

func (l InfoLabel) String() string {
	return fmt.Sprintf("%s (%s) %d", l.PriceDiff, l.PercentDiff, l.BarDiff)
}

// InfoLabel computes the label; ok is false when either anchor has no bar
// index on the host.
func (a *Annotation) InfoLabel() (InfoLabel, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.infoLabelLocked()
}

func (a *Annotation) infoLabelLocked() (InfoLabel, bool) {
	if a.host == nil {
		return InfoLabel{}, false
	}
	i1, ok1 := a.host.IndexOfTime(a.p1.Time)
	i2, ok2 := a.host.IndexOfTime(a.p2.Time)
	if !ok1 || !ok2 {
		return InfoLabel{}, false
	}
	diff := a.p2.Price - a.p1.Price
	pct := "n/a"
	if a.p1.Price != 0 {
		pct = strconv.FormatFloat(diff/a.p1.Price*100, 'f', 2, 64) + "%"
	}
	return InfoLabel{
		PriceDiff:   a.opts.FormatPrice(diff),
		PercentDiff: pct,
		BarDiff:     i2 - i1,
	}, true
}

// Autoscale reports the anchors' price span when either anchor's bar index
// lies within [from, to].
func (a *Annotation) Autoscale(from, to int) (lo, hi float64, ok bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.host == nil {
		return 0, 0, false
	}
	visible := func(t chart.Time) bool {
		i, ok := a.host.IndexOfTime(t)
		return ok && i >= from && i <= to
	}
	if !visible(a.p1.Time) && !visible(a.p2.Time) {
		return 0, 0, false
	}
	return min(a.p1.Price, a.p2.Price), max(a.p1.Price, a.p2.Price), true
}

func (a *Annotation) String() string {
	p1, p2 := a.Anchors()
	return fmt.Sprintf("range %s p1=%s p2=%s", a.id, p1, p2)
}
