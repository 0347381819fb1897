/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package annotation

import (
	"log/slog"
	"sort"
	"sync"

	applog "pricerange/internal/log"
)

// ResizeMode selects how a handle resize is started. A coordinator uses
// exactly one mode for its whole lifetime.
type ResizeMode uint8

const (
	// ResizeSticky: clicking a handle arms it, pointer moves with no button
	// resize, and the next click disarms.
	ResizeSticky ResizeMode = iota
	// ResizePressHold: pressing on a handle starts a drag that ends on
	// release, like a body drag.
	ResizePressHold
)

func (m ResizeMode) String() string {
	if m == ResizePressHold {
		return "press-hold"
	}
	return "sticky"
}

// ParseResizeMode accepts "sticky" and "press-hold".
func ParseResizeMode(s string) (ResizeMode, bool) {
	switch s {
	case "sticky":
		return ResizeSticky, true
	case "press-hold":
		return ResizePressHold, true
	}
	return ResizeSticky, false
}

// Config tunes a Coordinator.
type Config struct {
	Mode  ResizeMode
	Radii HitRadii
}

// DefaultConfig is sticky resizing with the stock hit radii.
func DefaultConfig() Config { return Config{Mode: ResizeSticky, Radii: DefaultHitRadii} }

// SelectionKind tells listeners what happened to an annotation.
type SelectionKind uint8

const (
	Deselected SelectionKind = iota
	Selected
)

func (k SelectionKind) String() string {
	if k == Selected {
		return "selected"
	}
	return "deselected"
}

// SelectionEvent is delivered to selection listeners.
type SelectionEvent struct {
	Kind       SelectionKind
	Annotation *Annotation
}

// Coordinator owns the slots that are global across all annotations sharing
// it: the single selection, the single hovered annotation and the armed
// sticky handle. Share one Coordinator between managers to keep selection
// exclusive across charts.
type Coordinator struct {
	cfg Config
	log *slog.Logger

	mu        sync.Mutex
	selected  *Annotation
	hovered   *Annotation
	sticky    *Annotation
	stickyH   Target
	listeners map[int]func(SelectionEvent)
	nextID    int
}

// NewCoordinator creates a coordinator. Zero radii fall back to
// DefaultHitRadii.
func NewCoordinator(cfg Config) *Coordinator {
	if cfg.Radii.Corner <= 0 {
		cfg.Radii.Corner = DefaultHitRadii.Corner
	}
	if cfg.Radii.Edge <= 0 {
		cfg.Radii.Edge = DefaultHitRadii.Edge
	}
	return &Coordinator{
		cfg:       cfg,
		log:       applog.WithComponent("annotation.coordinator"),
		listeners: map[int]func(SelectionEvent){},
	}
}

func (c *Coordinator) Config() Config { return c.cfg }

// OnSelectionChange registers fn and returns a function that removes it.
// Listeners run synchronously on the event path once the coordinator and the
// originating Manager have released their locks, so they may call back in.
func (c *Coordinator) OnSelectionChange(fn func(SelectionEvent)) (remove func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// Select makes a the only selected annotation. Selecting the current holder
// is a no-op; selecting nil clears. The previous holder is deselected first.
func (c *Coordinator) Select(a *Annotation) { c.doSelect(a).fire() }

// Clear deselects the current holder, if any.
func (c *Coordinator) Clear() { c.doClear().fire() }

// notice is a batch of selection events waiting to be delivered once every
// lock on the event path has been released.
type notice struct {
	fns    []func(SelectionEvent)
	events []SelectionEvent
}

func (n notice) fire() {
	for _, ev := range n.events {
		for _, fn := range n.fns {
			fn(ev)
		}
	}
}

func (c *Coordinator) doSelect(a *Annotation) notice {
	if a == nil {
		return c.doClear()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == a {
		return notice{}
	}
	var n notice
	if prev := c.selected; prev != nil {
		prev.setSelected(false)
		n.events = append(n.events, SelectionEvent{Kind: Deselected, Annotation: prev})
	}
	a.setSelected(true)
	c.selected = a
	n.events = append(n.events, SelectionEvent{Kind: Selected, Annotation: a})
	n.fns = c.listenersLocked()
	c.log.Debug("selection changed", slog.String("id", a.ID()))
	return n
}

func (c *Coordinator) doClear() notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.selected
	if prev == nil {
		return notice{}
	}
	prev.setSelected(false)
	c.selected = nil
	c.log.Debug("selection cleared", slog.String("id", prev.ID()))
	return notice{fns: c.listenersLocked(), events: []SelectionEvent{{Kind: Deselected, Annotation: prev}}}
}

// Current returns the selected annotation or nil.
func (c *Coordinator) Current() *Annotation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// Hovered returns the hovered annotation or nil.
func (c *Coordinator) Hovered() *Annotation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hovered
}

// Sticky returns the armed annotation and handle.
func (c *Coordinator) Sticky() (*Annotation, Target, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sticky, c.stickyH, c.sticky != nil
}

// setHover moves the hover flag to a (nil clears). It reports a change.
func (c *Coordinator) setHover(a *Annotation) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hovered == a {
		return false
	}
	if c.hovered != nil {
		c.hovered.setHovered(false)
	}
	if a != nil {
		a.setHovered(true)
	}
	c.hovered = a
	return true
}

func (c *Coordinator) arm(a *Annotation, h Target) {
	c.mu.Lock()
	c.sticky, c.stickyH = a, h
	c.mu.Unlock()
	c.log.Debug("sticky resize armed", slog.String("id", a.ID()), slog.String("handle", h.String()))
}

// disarm clears the sticky slot and returns its previous holder.
func (c *Coordinator) disarm() *Annotation {
	c.mu.Lock()
	prev := c.sticky
	c.sticky, c.stickyH = nil, None
	c.mu.Unlock()
	if prev != nil {
		c.log.Debug("sticky resize disarmed", slog.String("id", prev.ID()))
	}
	return prev
}

// release drops every slot a holds. It reports whether a held the sticky slot.
func (c *Coordinator) release(a *Annotation) (wasSticky bool, n notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == a {
		a.setSelected(false)
		c.selected = nil
		n = notice{fns: c.listenersLocked(), events: []SelectionEvent{{Kind: Deselected, Annotation: a}}}
	}
	if c.hovered == a {
		a.setHovered(false)
		c.hovered = nil
	}
	if c.sticky == a {
		c.sticky, c.stickyH = nil, None
		wasSticky = true
	}
	return wasSticky, n
}

func (c *Coordinator) listenersLocked() []func(SelectionEvent) {
	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids) // registration order
	fns := make([]func(SelectionEvent), len(ids))
	for i, id := range ids {
		fns[i] = c.listeners[id]
	}
	return fns
}
