/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image"
	"image/draw"
	"log/slog"
	"sync"

	"pricerange/internal/annotation"
	"pricerange/internal/chart"
	applog "pricerange/internal/log"
	"pricerange/internal/render"
	"pricerange/internal/vector"
)

// Session translates widget input into manager calls and renders frames.
// It holds no toolkit types so it can be driven from tests.
type Session struct {
	vp    *chart.Viewport
	mgr   *annotation.Manager
	fonts render.Provider
	log   *slog.Logger

	mu       sync.Mutex
	lastDrag *vector.Pt
}

// NewSession wires a manager whose host is vp.
func NewSession(vp *chart.Viewport, mgr *annotation.Manager, fonts render.Provider) *Session {
	if fonts == nil {
		fonts = &render.GoProvider{}
	}
	return &Session{vp: vp, mgr: mgr, fonts: fonts, log: applog.WithComponent("ui")}
}

func (s *Session) Viewport() *chart.Viewport     { return s.vp }
func (s *Session) Manager() *annotation.Manager { return s.mgr }

// Resize keeps the viewport in step with the widget size.
func (s *Session) Resize(w, h float64) {
	if cw, ch := s.vp.Size(); cw == w && ch == h {
		return
	}
	s.vp.Resize(w, h)
}

func (s *Session) inside(pt vector.Pt) bool {
	w, h := s.vp.Size()
	return pt.X >= 0 && pt.Y >= 0 && pt.X <= w && pt.Y <= h
}

// Hover is plain pointer motion; it drives the crosshair.
func (s *Session) Hover(pt vector.Pt) { s.mgr.CrosshairMove(pt, s.inside(pt)) }

// Leave is the pointer leaving the widget. It clears hover and ends drags.
func (s *Session) Leave() {
	s.mgr.CrosshairMove(vector.Pt{}, false)
	s.mgr.PointerLeave()
	s.endPan()
}

func (s *Session) Press(pt vector.Pt) {
	s.mgr.PointerDown(pt)
	s.mu.Lock()
	s.lastDrag = &pt
	s.mu.Unlock()
}

// Drag is motion with the button held. A running range drag consumes it;
// otherwise the time axis scrolls, unless panning is disabled.
func (s *Session) Drag(pt vector.Pt) {
	s.mgr.PointerMove(pt)
	s.mu.Lock()
	prev := s.lastDrag
	s.lastDrag = &pt
	s.mu.Unlock()
	if prev != nil && s.vp.Pan(pt.X-prev.X) {
		s.vp.RequestRedraw()
	}
}

func (s *Session) Release() {
	s.mgr.PointerUp()
	s.endPan()
}

func (s *Session) endPan() {
	s.mu.Lock()
	s.lastDrag = nil
	s.mu.Unlock()
}

// Tap is a click without movement.
func (s *Session) Tap(pt vector.Pt) { s.mgr.Click(pt) }

// BeginDrawing arms range creation; done receives the new range.
func (s *Session) BeginDrawing(done func(*annotation.Annotation)) {
	s.log.Info("drawing armed")
	s.mgr.BeginDrawing(done)
}

func (s *Session) CancelDrawing() bool { return s.mgr.CancelDrawing() }

// DeleteSelected detaches the selected range, if this chart holds it.
func (s *Session) DeleteSelected() bool {
	a := s.mgr.Coordinator().Current()
	if a == nil {
		return false
	}
	return s.mgr.Detach(a)
}

// Fit autofits bars and widens the price range to cover every range.
func (s *Session) Fit() {
	s.vp.Autofit()
	from, to := s.vp.VisibleIndexRange()
	if lo, hi, ok := s.mgr.Autoscale(from, to); ok {
		s.vp.FitPrices(lo, hi)
	}
	s.vp.RequestRedraw()
}

func (s *Session) Cursor(pt vector.Pt) string { return s.mgr.CursorAt(pt) }

// Status is a one-line summary for the status bar.
func (s *Session) Status() string {
	switch {
	case s.mgr.Drawing():
		return "Click two points to place a range"
	case s.mgr.Coordinator().Current() != nil:
		a := s.mgr.Coordinator().Current()
		if l, ok := a.InfoLabel(); ok {
			return a.ID() + ": " + l.String()
		}
		return a.ID()
	}
	return "Ready"
}

// Render paints the current frame at w x h device pixels; ratio is device
// pixels per widget unit.
func (s *Session) Render(w, h int, ratio float64) image.Image {
	if ratio <= 0 {
		ratio = 1
	}
	cw, ch := s.vp.Size()
	root := render.Frame(s.vp, s.mgr.Views(), s.fonts)
	img := render.Rasterize(root, int(cw), int(ch), ratio, s.fonts)
	if b := img.Bounds(); b.Dx() == w && b.Dy() == h {
		return img
	}
	// the raster may ask for a size one pixel off the scaled widget size
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), img, image.Point{}, draw.Src)
	return out
}
