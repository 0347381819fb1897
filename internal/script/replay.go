/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"errors"
	"fmt"
	"log/slog"

	"pricerange/internal/annotation"
	"pricerange/internal/chart"
	applog "pricerange/internal/log"
	"pricerange/internal/style"
	"pricerange/internal/vector"
)

var (
	// ErrUnresolved is returned when a domain point does not project.
	ErrUnresolved = errors.New("point does not project onto the chart")
	// ErrNoPan is returned for pan events on hosts that cannot scroll.
	ErrNoPan = errors.New("host does not support panning")
)

const (
	defaultWidth  = 1200
	defaultHeight = 700
)

// Size returns the chart size, filling zero dimensions with defaults.
func (s Scenario) Size() (w, h int) {
	w, h = s.Width, s.Height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

// Build creates a viewport over bars and a manager holding the scenario's
// ranges. A non-empty Mode overrides cfg.Mode; Style patches defaults.
func (s Scenario) Build(bars []chart.Bar, cfg annotation.Config, defaults style.Options) (*chart.Viewport, *annotation.Manager, error) {
	if s.Mode != "" {
		mode, ok := annotation.ParseResizeMode(s.Mode)
		if !ok {
			return nil, nil, fmt.Errorf("unknown resize mode %q", s.Mode)
		}
		cfg.Mode = mode
	}
	base, ranges, err := s.Annotations(defaults)
	if err != nil {
		return nil, nil, err
	}
	w, h := s.Size()
	vp := chart.NewViewport(bars, float64(w), float64(h))
	m := annotation.NewManager(vp, annotation.NewCoordinator(cfg))
	m.SetDefaultStyle(base)
	for i, a := range ranges {
		if err := m.Attach(a); err != nil {
			return nil, nil, fmt.Errorf("range %d: %w", i, err)
		}
	}
	return vp, m, nil
}

// Annotations applies the scenario style to defaults and creates the
// scenario's ranges, unattached.
func (s Scenario) Annotations(defaults style.Options) (style.Options, []*annotation.Annotation, error) {
	base, err := defaults.Apply(s.Style)
	if err != nil {
		return defaults, nil, fmt.Errorf("scenario style: %w", err)
	}
	out := make([]*annotation.Annotation, 0, len(s.Ranges))
	for i, r := range s.Ranges {
		opts, err := base.Apply(r.Style)
		if err != nil {
			return base, nil, fmt.Errorf("range %d style: %w", i, err)
		}
		o := []annotation.Option{annotation.WithStyle(opts)}
		if r.ID != "" {
			o = append(o, annotation.WithID(r.ID))
		}
		out = append(out, annotation.New(r.P1.Point(), r.P2.Point(), o...))
	}
	return base, out, nil
}

// Step records the state after one replayed event.
type Step struct {
	Event    Event
	Selected string // ID of the selected range, "" for none
	Hovered  string
	Cursor   string
	Panned   bool
}

func (s Step) String() string {
	return fmt.Sprintf("line %d: %-28s selected=%q hovered=%q cursor=%s", s.Event.Line, s.Event, s.Selected, s.Hovered, s.Cursor)
}

type panner interface {
	Pan(dx float64) bool
}

// Replay feeds events to m in order. Domain points are projected through
// the manager's host at the moment each event runs.
func Replay(m *annotation.Manager, events []Event) ([]Step, error) {
	l := applog.WithOperation(applog.WithComponent("script"), "replay")
	steps := make([]Step, 0, len(events))
	for _, ev := range events {
		st := Step{Event: ev}
		var (
			pt     vector.Pt
			havePt bool
		)
		if pointKinds[ev.Kind] {
			pt, havePt = resolve(m.Host(), ev.At)
			if !havePt && ev.Kind != KindHover {
				return steps, fmt.Errorf("line %d: %s: %w", ev.Line, ev, ErrUnresolved)
			}
			if !havePt {
				// the crosshair is simply off the plot
				ev.Kind = KindUnhover
			}
		}
		switch ev.Kind {
		case KindDown:
			m.PointerDown(pt)
		case KindMove:
			m.PointerMove(pt)
		case KindUp:
			m.PointerUp()
		case KindLeave:
			m.PointerLeave()
		case KindClick:
			m.Click(pt)
		case KindHover:
			m.CrosshairMove(pt, true)
		case KindUnhover:
			m.CrosshairMove(vector.Pt{}, false)
		case KindDraw:
			m.BeginDrawing(nil)
		case KindCancel:
			m.CancelDrawing()
		case KindPan:
			p, ok := m.Host().(panner)
			if !ok {
				return steps, fmt.Errorf("line %d: %w", ev.Line, ErrNoPan)
			}
			st.Panned = p.Pan(ev.Amount)
		default:
			return steps, fmt.Errorf("line %d: unknown event %q", ev.Line, ev.Kind)
		}
		if havePt {
			st.Cursor = m.CursorAt(pt)
		}
		if a := m.Coordinator().Current(); a != nil {
			st.Selected = a.ID()
		}
		if a := m.Coordinator().Hovered(); a != nil {
			st.Hovered = a.ID()
		}
		l.Debug("event", slog.Int("line", ev.Line), slog.String("event", ev.String()),
			slog.String("selected", st.Selected), slog.String("hovered", st.Hovered))
		steps = append(steps, st)
	}
	return steps, nil
}

func resolve(p chart.Projector, at Point) (vector.Pt, bool) {
	switch {
	case at.Pixel != nil:
		return *at.Pixel, true
	case at.Domain != nil:
		x, okX := p.TimeToX(at.Domain.Time)
		y, okY := p.PriceToY(at.Domain.Price)
		return vector.Pt{X: x, Y: y}, okX && okY
	}
	return vector.Pt{}, false
}
