/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package annotation

import (
	"errors"
	"log/slog"
	"strings"
	"sync"

	"gonum.org/v1/gonum/floats"

	"pricerange/internal/chart"
	applog "pricerange/internal/log"
	"pricerange/internal/style"
	"pricerange/internal/vector"
)

// ErrAttached is returned when attaching an annotation that already belongs
// to a manager.
var ErrAttached = errors.New("annotation already attached")

// Manager routes one chart's pointer events to its annotations. Hit testing
// walks annotations in attach order and the first hit wins. All entry points
// are serialized by an internal mutex.
type Manager struct {
	mu       sync.Mutex
	host     chart.Host
	coord    *Coordinator
	items    []*Annotation
	defaults style.Options
	draw     *drawing
	log      *slog.Logger

	// work deferred until mu is released
	after  []func()
	redraw bool
}

// drawing is an armed two-click creation gesture.
type drawing struct {
	first  *chart.DomainPoint
	cursor *chart.DomainPoint
	done   func(*Annotation)
}

// NewManager binds a manager to host. coord may be shared with other
// managers; nil creates a private one with DefaultConfig.
func NewManager(host chart.Host, coord *Coordinator) *Manager {
	if coord == nil {
		coord = NewCoordinator(DefaultConfig())
	}
	return &Manager{
		host:     host,
		coord:    coord,
		defaults: style.Defaults(),
		log:      applog.WithComponent("annotation"),
	}
}

// unlock releases mu and then runs deferred notifications, so host redraws
// and listeners may call back into the manager.
func (m *Manager) unlock() {
	after, redraw := m.after, m.redraw
	m.after, m.redraw = nil, false
	m.mu.Unlock()
	for _, fn := range after {
		fn()
	}
	if redraw {
		m.host.RequestRedraw()
	}
}

func (m *Manager) later(fn func()) { m.after = append(m.after, fn) }
func (m *Manager) notify(n notice) { m.later(n.fire) }
func (m *Manager) requestRedraw()  { m.redraw = true }

func (m *Manager) Coordinator() *Coordinator { return m.coord }
func (m *Manager) Host() chart.Host          { return m.host }

// SetDefaultStyle sets the options given to annotations created by drawing.
func (m *Manager) SetDefaultStyle(o style.Options) {
	m.mu.Lock()
	m.defaults = o
	m.mu.Unlock()
}

// Attach registers a on this manager's chart.
func (m *Manager) Attach(a *Annotation) error {
	m.mu.Lock()
	defer m.unlock()
	return m.attachLocked(a)
}

func (m *Manager) attachLocked(a *Annotation) error {
	a.mu.Lock()
	if a.mgr != nil {
		a.mu.Unlock()
		return ErrAttached
	}
	a.mgr, a.host = m, m.host
	a.mu.Unlock()
	m.items = append(m.items, a)
	m.log.Debug("attached", slog.String("id", a.ID()))
	m.requestRedraw()
	return nil
}

// Detach removes a and frees any selection, hover or sticky slot it holds.
// Host panning is restored when a was being dragged or held the sticky slot.
func (m *Manager) Detach(a *Annotation) bool {
	m.mu.Lock()
	defer m.unlock()
	idx := -1
	for i, it := range m.items {
		if it == a {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	m.items = append(m.items[:idx], m.items[idx+1:]...)

	wasSticky, n := m.coord.release(a)
	m.notify(n)
	wasDragging := a.endDrag()
	a.mu.Lock()
	a.mgr, a.host = nil, nil
	a.mu.Unlock()
	if wasSticky || wasDragging {
		m.host.SetPanningEnabled(true)
	}
	m.log.Debug("detached", slog.String("id", a.ID()), slog.Bool("sticky", wasSticky), slog.Bool("dragging", wasDragging))
	m.requestRedraw()
	return true
}

// Annotations returns the attached annotations in registration order.
func (m *Manager) Annotations() []*Annotation {
	m.mu.Lock()
	defer m.unlock()
	return append([]*Annotation(nil), m.items...)
}

// Lookup finds an attached annotation by ID.
func (m *Manager) Lookup(id string) (*Annotation, bool) {
	m.mu.Lock()
	defer m.unlock()
	for _, a := range m.items {
		if a.ID() == id {
			return a, true
		}
	}
	return nil, false
}

// firstHit returns the first annotation hit at pt in registration order.
func (m *Manager) firstHit(pt vector.Pt) (*Annotation, Target) {
	radii := m.coord.cfg.Radii
	for _, a := range m.items {
		if t := a.HitTest(pt, radii); t != None {
			return a, t
		}
	}
	return nil, None
}

func (m *Manager) owns(a *Annotation) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mgr == m
}

// PointerDown starts a drag on the first annotation hit: always for the body,
// and for handles only in press-hold mode. Nothing starts while a sticky
// resize is armed, while a drag is already running, while a drawing is
// armed, or when the pointer's domain point cannot be resolved.
func (m *Manager) PointerDown(pt vector.Pt) {
	m.mu.Lock()
	defer m.unlock()
	if m.draw != nil {
		return
	}
	if _, _, armed := m.coord.Sticky(); armed || m.dragTargetLocked() != nil {
		return
	}
	a, t := m.firstHit(pt)
	if a == nil {
		return
	}
	if t.IsHandle() && m.coord.cfg.Mode != ResizePressHold {
		return
	}
	origin, ok := Unproject(m.host, pt)
	if !ok {
		return
	}
	if a.beginDrag(t, origin) {
		m.host.SetPanningEnabled(false)
		m.log.Debug("drag started", slog.String("id", a.ID()), slog.String("part", t.String()))
	}
}

func (m *Manager) dragTargetLocked() *Annotation {
	for _, a := range m.items {
		if a.Dragging() != None {
			return a
		}
	}
	return nil
}

// PointerMove advances an active drag. Unresolvable positions are skipped.
func (m *Manager) PointerMove(pt vector.Pt) {
	m.mu.Lock()
	defer m.unlock()
	a := m.dragTargetLocked()
	if a == nil {
		return
	}
	cur, ok := Unproject(m.host, pt)
	if !ok {
		return
	}
	if a.updateDrag(cur) {
		m.requestRedraw()
	}
}

// PointerUp ends any drag and restores host panning.
func (m *Manager) PointerUp() { m.endDrags("pointer-up") }

// PointerLeave ends any drag like PointerUp. An armed sticky resize stays
// armed.
func (m *Manager) PointerLeave() { m.endDrags("pointer-leave") }

func (m *Manager) endDrags(reason string) {
	m.mu.Lock()
	defer m.unlock()
	ended := false
	for _, a := range m.items {
		if a.endDrag() {
			ended = true
			m.log.Debug("drag ended", slog.String("id", a.ID()), slog.String("reason", reason))
		}
	}
	if ended {
		m.host.SetPanningEnabled(true)
		m.requestRedraw()
	}
}

// Click handles a completed click: it places drawing points, disarms an armed
// sticky resize, arms a handle (sticky mode), toggles the selection of a hit
// body, or clears the selection on empty space.
func (m *Manager) Click(pt vector.Pt) {
	m.mu.Lock()
	defer m.unlock()
	if m.draw != nil {
		m.placeLocked(pt)
		return
	}
	if armed := m.coord.disarm(); armed != nil {
		if h := armed.hostOf(); h != nil {
			h.SetPanningEnabled(true)
			m.later(h.RequestRedraw)
		}
		return
	}

	a, t := m.firstHit(pt)
	m.coord.setHover(a)
	switch {
	case a == nil:
		m.notify(m.coord.doClear())
	case t.IsHandle():
		if m.coord.cfg.Mode == ResizeSticky {
			m.coord.arm(a, t)
			m.host.SetPanningEnabled(false)
		}
	case m.coord.Current() == a:
		m.notify(m.coord.doClear())
	default:
		m.notify(m.coord.doSelect(a))
	}
	m.requestRedraw()
}

func (a *Annotation) hostOf() chart.Host {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.host
}

// CrosshairMove handles pointer motion with no button held. ok is false when
// the pointer has left the plot. An armed sticky resize owned by this chart
// follows the pointer; otherwise the first annotation hit becomes the hovered
// one.
func (m *Manager) CrosshairMove(pt vector.Pt, ok bool) {
	m.mu.Lock()
	defer m.unlock()
	if m.draw != nil {
		if !ok {
			return
		}
		if cur, resolved := Unproject(m.host, pt); resolved {
			m.draw.cursor = &cur
			m.requestRedraw()
		}
		return
	}
	if a, h, armed := m.coord.Sticky(); armed && ok {
		if !m.owns(a) {
			return
		}
		if cur, resolved := Unproject(m.host, pt); resolved {
			a.resizeTo(h, cur)
			m.requestRedraw()
		}
		return
	}
	var hit *Annotation
	if ok {
		hit, _ = m.firstHit(pt)
	}
	if m.coord.setHover(hit) {
		m.requestRedraw()
	}
}

// CursorAt names the pointer cursor for pt, taking an armed resize or a
// running drag into account.
func (m *Manager) CursorAt(pt vector.Pt) string {
	m.mu.Lock()
	defer m.unlock()
	if a, h, armed := m.coord.Sticky(); armed && m.owns(a) {
		return h.Cursor()
	}
	if a := m.dragTargetLocked(); a != nil {
		return a.Dragging().Cursor()
	}
	if m.draw != nil {
		return "crosshair"
	}
	_, t := m.firstHit(pt)
	return t.Cursor()
}

// BeginDrawing arms creation of a new range: the next two clicks place P1
// and P2. done, if non-nil, receives the attached annotation. An armed sticky
// resize is disarmed and running drags end, with host panning restored.
func (m *Manager) BeginDrawing(done func(*Annotation)) {
	m.mu.Lock()
	if armed := m.coord.disarm(); armed != nil {
		if h := armed.hostOf(); h != nil {
			h.SetPanningEnabled(true)
			m.later(h.RequestRedraw)
		}
	}
	for _, a := range m.items {
		if a.endDrag() {
			m.host.SetPanningEnabled(true)
			m.log.Debug("drag ended", slog.String("id", a.ID()), slog.String("reason", "drawing"))
		}
	}
	m.draw = &drawing{done: done}
	m.requestRedraw()
	m.unlock()
	m.log.Debug("drawing armed")
}

// CancelDrawing aborts an armed drawing. It reports whether one was armed.
func (m *Manager) CancelDrawing() bool {
	m.mu.Lock()
	defer m.unlock()
	if m.draw == nil {
		return false
	}
	m.draw = nil
	m.requestRedraw()
	return true
}

// Drawing reports whether a drawing is armed.
func (m *Manager) Drawing() bool {
	m.mu.Lock()
	defer m.unlock()
	return m.draw != nil
}

func (m *Manager) placeLocked(pt vector.Pt) {
	p, ok := Unproject(m.host, pt)
	if !ok {
		return
	}
	if m.draw.first == nil {
		m.draw.first = &p
		m.draw.cursor = &p
		m.requestRedraw()
		return
	}
	d := m.draw
	m.draw = nil
	a := New(*d.first, p, WithStyle(m.defaults))
	if err := m.attachLocked(a); err != nil {
		m.log.Error("attach drawn range", slog.Any("err", err))
		return
	}
	m.log.Info("range drawn", slog.String("id", a.ID()), slog.String("p1", d.first.String()), slog.String("p2", p.String()))
	if d.done != nil {
		m.later(func() { d.done(a) })
	}
}

// Autoscale merges the price spans of every annotation visible within the
// bar index range [from, to].
func (m *Manager) Autoscale(from, to int) (lo, hi float64, ok bool) {
	m.mu.Lock()
	items := append([]*Annotation(nil), m.items...)
	m.mu.Unlock()
	var los, his []float64
	for _, a := range items {
		if l, h, vis := a.Autoscale(from, to); vis {
			los = append(los, l)
			his = append(his, h)
		}
	}
	if len(los) == 0 {
		return 0, 0, false
	}
	return floats.Min(los), floats.Max(his), true
}

// Views snapshots every annotation for rendering, in paint order, followed
// by the drawing preview when one is in progress.
func (m *Manager) Views() []View {
	m.mu.Lock()
	defer m.unlock()
	sticky, h, armed := m.coord.Sticky()
	out := make([]View, 0, len(m.items)+1)
	for _, a := range m.items {
		active := None
		if armed && sticky == a {
			active = h
		}
		out = append(out, a.view(m.coord.cfg.Radii, active))
	}
	if d := m.draw; d != nil && d.first != nil && d.cursor != nil {
		r, ok := Project(m.host, *d.first, *d.cursor)
		out = append(out, View{Rect: r, Visible: ok, Style: m.defaults, Preview: true})
	}
	return out
}

// Describe dumps every attached range, one per line.
func (m *Manager) Describe() string {
	var b strings.Builder
	for _, a := range m.Annotations() {
		b.WriteString(a.String())
		if a.Selected() {
			b.WriteString(" selected")
		}
		b.WriteByte('\n')
	}
	return b.String()
}
