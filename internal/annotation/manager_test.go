/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package annotation

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricerange/internal/style"
	"pricerange/internal/vector"
)

func TestStickyResizeThenBodyDragScenario(t *testing.T) {
	m, h := newTestManager(ResizeSticky)
	a := New(dp(100, 50), dp(200, 80))
	require.NoError(t, m.Attach(a))

	m.CrosshairMove(px(150, 65), true)
	require.True(t, a.Hovered())

	// click the top edge: arms the sticky resize
	m.Click(px(150, 80))
	got, handle, armed := m.Coordinator().Sticky()
	require.True(t, armed)
	assert.Same(t, a, got)
	assert.Equal(t, Top, handle)
	assert.False(t, h.panning)
	assert.False(t, a.Selected(), "arming a handle does not select")

	m.CrosshairMove(px(170, 90), true)
	p1, p2 := a.Anchors()
	assert.Equal(t, dp(100, 50), p1)
	assert.Equal(t, dp(200, 90), p2)

	// second click disarms wherever it lands
	m.Click(px(500, 500))
	_, _, armed = m.Coordinator().Sticky()
	assert.False(t, armed)
	assert.True(t, h.panning)

	m.PointerDown(px(150, 70))
	assert.Equal(t, Body, a.Dragging())
	assert.False(t, h.panning)
	m.PointerMove(px(160, 75))
	m.PointerUp()

	p1, p2 = a.Anchors()
	assert.Equal(t, dp(110, 55), p1)
	assert.Equal(t, dp(210, 95), p2)
	assert.Equal(t, None, a.Dragging())
	assert.True(t, h.panning)
}

func TestPressHoldResize(t *testing.T) {
	m, h := newTestManager(ResizePressHold)
	a := New(dp(100, 50), dp(200, 80))
	require.NoError(t, m.Attach(a))
	m.CrosshairMove(px(150, 65), true)

	m.PointerDown(px(150, 80))
	assert.Equal(t, Top, a.Dragging())
	assert.False(t, h.panning)

	m.PointerMove(px(150, 90))
	m.PointerMove(px(150, 95))
	p1, p2 := a.Anchors()
	assert.Equal(t, dp(100, 50), p1)
	assert.Equal(t, dp(200, 95), p2)

	m.PointerUp()
	assert.Equal(t, None, a.Dragging())
	assert.True(t, h.panning)

	// a click on a handle never arms anything in this mode
	m.Click(px(150, 95))
	_, _, armed := m.Coordinator().Sticky()
	assert.False(t, armed)
}

func TestPressHoldBottomHandleCrossesTop(t *testing.T) {
	m, _ := newTestManager(ResizePressHold)
	a := New(dp(100, 50), dp(200, 80))
	require.NoError(t, m.Attach(a))
	m.CrosshairMove(px(150, 65), true)

	m.PointerDown(px(150, 50))
	require.Equal(t, Bottom, a.Dragging())
	m.PointerMove(px(150, 100))
	p1, p2 := a.Anchors()
	assert.Equal(t, dp(100, 100), p1)
	assert.Equal(t, dp(200, 80), p2)

	m.PointerMove(px(150, 60))
	p1, p2 = a.Anchors()
	assert.Equal(t, dp(100, 100), p1)
	assert.Equal(t, dp(200, 60), p2)
	m.PointerUp()
}

func TestStickyModeHandlePressDoesNotDrag(t *testing.T) {
	m, h := newTestManager(ResizeSticky)
	a := New(dp(100, 50), dp(200, 80))
	require.NoError(t, m.Attach(a))
	m.CrosshairMove(px(150, 65), true)

	m.PointerDown(px(100, 50)) // bottom-left corner
	assert.Equal(t, None, a.Dragging())
	assert.True(t, h.panning)

	// while armed, pressing the body starts nothing
	m.Click(px(100, 50))
	m.PointerDown(px(150, 65))
	assert.Equal(t, None, a.Dragging())

	// moves keep resizing the corner
	m.CrosshairMove(px(90, 40), true)
	p1, _ := a.Anchors()
	assert.Equal(t, dp(90, 40), p1)
}

func TestBodyDragIsPureTranslation(t *testing.T) {
	m, _ := newTestManager(ResizeSticky)
	a := New(dp(300, 20), dp(100, 60))
	require.NoError(t, m.Attach(a))

	m.PointerDown(px(200, 40))
	require.Equal(t, Body, a.Dragging())
	for _, pt := range []vector.Pt{px(210, 41), px(180, 30), px(250, 75)} {
		m.PointerMove(pt)
	}
	m.PointerUp()
	p1, p2 := a.Anchors()
	assert.Equal(t, dp(350, 55), p1)
	assert.Equal(t, dp(150, 95), p2)
	assert.Equal(t, p1.Sub(p2), dp(300, 20).Sub(dp(100, 60)), "size unchanged")
}

func TestDragSkipsUnresolvablePoints(t *testing.T) {
	m, h := newTestManager(ResizeSticky)
	a := New(dp(100, 50), dp(200, 80))
	require.NoError(t, m.Attach(a))

	m.PointerDown(px(150, 65))
	h.noInverse = true
	m.PointerMove(px(170, 70))
	p1, _ := a.Anchors()
	assert.Equal(t, dp(100, 50), p1)
	h.noInverse = false
	m.PointerUp()

	h.noInverse = true
	m.PointerDown(px(150, 65))
	assert.Equal(t, None, a.Dragging(), "no drag without a resolvable origin")
	assert.True(t, h.panning)
}

func TestPointerLeaveEndsDragButKeepsSticky(t *testing.T) {
	m, h := newTestManager(ResizeSticky)
	a := New(dp(100, 50), dp(200, 80))
	b := New(dp(400, 50), dp(500, 80))
	require.NoError(t, m.Attach(a))
	require.NoError(t, m.Attach(b))

	m.PointerDown(px(150, 65))
	m.PointerLeave()
	assert.Equal(t, None, a.Dragging())
	assert.True(t, h.panning)

	m.CrosshairMove(px(450, 65), true)
	m.Click(px(400, 65))
	m.PointerLeave()
	_, handle, armed := m.Coordinator().Sticky()
	assert.True(t, armed)
	assert.Equal(t, Left, handle)
	assert.False(t, h.panning)
}

func TestClickSelectionToggleAndClear(t *testing.T) {
	m, _ := newTestManager(ResizeSticky)
	a := New(dp(100, 50), dp(200, 80))
	b := New(dp(150, 60), dp(300, 90)) // overlaps a
	require.NoError(t, m.Attach(a))
	require.NoError(t, m.Attach(b))
	c := m.Coordinator()

	m.Click(px(170, 70)) // inside both: registration order wins
	assert.Same(t, a, c.Current())
	assert.Same(t, a, c.Hovered())

	m.Click(px(250, 80)) // only b's body
	assert.Same(t, b, c.Current())
	assert.False(t, a.Selected())

	m.Click(px(250, 80))
	assert.Nil(t, c.Current(), "second click on the selected body deselects")

	m.Click(px(250, 80))
	m.Click(px(900, 900))
	assert.Nil(t, c.Current())
	assert.False(t, b.Selected())
}

func TestCrosshairHoverIsExclusive(t *testing.T) {
	m, h := newTestManager(ResizeSticky)
	a := New(dp(100, 50), dp(200, 80))
	b := New(dp(300, 50), dp(400, 80))
	require.NoError(t, m.Attach(a))
	require.NoError(t, m.Attach(b))

	m.CrosshairMove(px(150, 60), true)
	assert.True(t, a.Hovered())
	before := h.redraws
	m.CrosshairMove(px(151, 60), true)
	assert.Equal(t, before, h.redraws, "no redraw without a hover change")

	m.CrosshairMove(px(350, 60), true)
	assert.False(t, a.Hovered())
	assert.True(t, b.Hovered())
	assert.Nil(t, m.Coordinator().Current(), "hover never selects")

	m.CrosshairMove(px(0, 0), false)
	assert.False(t, b.Hovered())
	assert.Nil(t, m.Coordinator().Hovered())
}

func TestSingleSelectionUnderRandomOperations(t *testing.T) {
	c := NewCoordinator(DefaultConfig())
	m := NewManager(newFakeHost(), c)
	var items []*Annotation
	for i := 0; i < 6; i++ {
		a := New(dp(100, 10), dp(200, 20))
		require.NoError(t, m.Attach(a))
		items = append(items, a)
	}
	var events []SelectionEvent
	c.OnSelectionChange(func(ev SelectionEvent) { events = append(events, ev) })

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		switch rng.Intn(4) {
		case 0:
			c.Clear()
		default:
			c.Select(items[rng.Intn(len(items))])
		}
		n := 0
		for _, a := range items {
			if a.Selected() {
				n++
				assert.Same(t, a, c.Current())
			}
		}
		require.LessOrEqual(t, n, 1, "step %d", i)
	}
	// deselect always precedes select and never pairs up twice
	held := 0
	for _, ev := range events {
		if ev.Kind == Selected {
			held++
		} else {
			held--
		}
		require.True(t, held == 0 || held == 1)
	}
}

func TestSelectEmitsDeselectThenSelect(t *testing.T) {
	c := NewCoordinator(DefaultConfig())
	a, b := New(dp(1, 1), dp(2, 2)), New(dp(1, 1), dp(2, 2))
	var log []string
	remove := c.OnSelectionChange(func(ev SelectionEvent) {
		log = append(log, ev.Kind.String()+":"+ev.Annotation.ID())
	})

	c.Select(a)
	c.Select(a)
	c.Select(b)
	assert.Equal(t, []string{"selected:" + a.ID(), "deselected:" + a.ID(), "selected:" + b.ID()}, log)

	remove()
	c.Clear()
	assert.Len(t, log, 3)
	assert.False(t, b.Selected())
}

func TestSharedCoordinatorAcrossCharts(t *testing.T) {
	c := NewCoordinator(DefaultConfig())
	m1 := NewManager(newFakeHost(), c)
	m2 := NewManager(newFakeHost(), c)
	a, b := New(dp(100, 50), dp(200, 80)), New(dp(100, 50), dp(200, 80))
	require.NoError(t, m1.Attach(a))
	require.NoError(t, m2.Attach(b))

	m1.Click(px(150, 60))
	m2.Click(px(150, 60))
	assert.False(t, a.Selected())
	assert.True(t, b.Selected())

	// a sticky resize armed on chart 1 ignores crosshair moves on chart 2
	m1.CrosshairMove(px(150, 65), true)
	m1.Click(px(150, 80)) // top handle of the hovered range
	m2.CrosshairMove(px(150, 99), true)
	_, p2 := a.Anchors()
	assert.Equal(t, 80.0, p2.Price)
	_, _, armed := c.Sticky()
	assert.True(t, armed)
}

func TestDetachClearsEverySlot(t *testing.T) {
	m, h := newTestManager(ResizeSticky)
	a := New(dp(100, 50), dp(200, 80))
	require.NoError(t, m.Attach(a))
	assert.ErrorIs(t, m.Attach(a), ErrAttached)

	var kinds []SelectionKind
	m.Coordinator().OnSelectionChange(func(ev SelectionEvent) { kinds = append(kinds, ev.Kind) })

	m.Click(px(150, 60)) // select + hover
	m.Click(px(150, 80)) // arm top
	require.False(t, h.panning)

	require.True(t, m.Detach(a))
	c := m.Coordinator()
	assert.Nil(t, c.Current())
	assert.Nil(t, c.Hovered())
	_, _, armed := c.Sticky()
	assert.False(t, armed)
	assert.True(t, h.panning)
	assert.False(t, a.Selected())
	assert.False(t, a.Hovered())
	assert.Equal(t, []SelectionKind{Selected, Deselected}, kinds)
	assert.Empty(t, m.Annotations())
	assert.False(t, m.Detach(a))

	_, ok := a.Rect()
	assert.False(t, ok, "detached annotations do not project")
	require.NoError(t, m.Attach(a), "can be attached again")
}

func TestDetachWhileDraggingRestoresPanning(t *testing.T) {
	m, h := newTestManager(ResizeSticky)
	a := New(dp(100, 50), dp(200, 80))
	require.NoError(t, m.Attach(a))
	m.PointerDown(px(150, 60))
	require.False(t, h.panning)
	m.Detach(a)
	assert.True(t, h.panning)
	assert.Equal(t, None, a.Dragging())
}

func TestUnprojectableAnnotationIsInert(t *testing.T) {
	m, h := newTestManager(ResizeSticky)
	a := New(dp(100, 50), dp(200, 80))
	require.NoError(t, m.Attach(a))
	m.CrosshairMove(px(150, 60), true)
	require.True(t, a.Hovered())

	h.hidden[200] = true
	assert.Equal(t, None, a.HitTest(px(150, 60), DefaultHitRadii))
	assert.Equal(t, None, a.HitTest(px(100, 50), DefaultHitRadii))
	v := m.Views()[0]
	assert.False(t, v.Visible)
	assert.False(t, v.ShowHandles)
	assert.Nil(t, v.Label)

	m.CrosshairMove(px(150, 60), true)
	assert.False(t, a.Hovered())
}

func TestViewsAndInfoLabel(t *testing.T) {
	m, h := newTestManager(ResizeSticky)
	a := New(dp(100, 50), dp(200, 80), WithID("r1"))
	require.NoError(t, m.Attach(a))

	v := m.Views()[0]
	assert.Equal(t, "r1", v.ID)
	assert.True(t, v.Visible)
	assert.False(t, v.ShowHandles, "idle ranges hide handles")
	require.NotNil(t, v.Label)
	assert.Equal(t, "30.00 (60.00%) 10", v.Label.String())

	m.CrosshairMove(px(150, 60), true)
	m.Click(px(200, 80)) // top-right corner
	v = m.Views()[0]
	assert.True(t, v.ShowHandles)
	assert.Equal(t, TopRight, v.ActiveHandle)

	got, ok := m.Lookup("r1")
	require.True(t, ok)
	assert.Same(t, a, got)

	h.noIndex = true
	assert.Nil(t, m.Views()[0].Label)
}

func TestInfoLabelZeroBasePrice(t *testing.T) {
	m, _ := newTestManager(ResizeSticky)
	a := New(dp(100, 0), dp(130, -2.5))
	require.NoError(t, m.Attach(a))
	l, ok := a.InfoLabel()
	require.True(t, ok)
	assert.Equal(t, InfoLabel{PriceDiff: "-2.50", PercentDiff: "n/a", BarDiff: 3}, l)
}

func TestAutoscale(t *testing.T) {
	m, _ := newTestManager(ResizeSticky)
	a := New(dp(100, 50), dp(200, 80))
	b := New(dp(400, 10), dp(450, 30))
	require.NoError(t, m.Attach(a))
	require.NoError(t, m.Attach(b))

	_, _, ok := a.Autoscale(0, 5)
	assert.False(t, ok)
	lo, hi, ok := a.Autoscale(15, 30)
	require.True(t, ok)
	assert.Equal(t, 50.0, lo)
	assert.Equal(t, 80.0, hi)

	lo, hi, ok = m.Autoscale(0, 100)
	require.True(t, ok)
	assert.Equal(t, 10.0, lo)
	assert.Equal(t, 80.0, hi)
	_, _, ok = m.Autoscale(50, 60)
	assert.False(t, ok)
}

func TestDrawingMode(t *testing.T) {
	m, _ := newTestManager(ResizeSticky)
	custom := style.Defaults()
	custom.FillColor = "rgba(255, 0, 0, 0.2)"
	m.SetDefaultStyle(custom)

	var drawn *Annotation
	m.BeginDrawing(func(a *Annotation) {
		drawn = a
		assert.Len(t, m.Annotations(), 1, "callback may re-enter the manager")
	})
	require.True(t, m.Drawing())

	m.Click(px(100, 50))
	m.CrosshairMove(px(150, 70), true)
	views := m.Views()
	require.Len(t, views, 1)
	assert.True(t, views[0].Preview)

	m.Click(px(200, 80))
	require.NotNil(t, drawn)
	assert.False(t, m.Drawing())
	p1, p2 := drawn.Anchors()
	assert.Equal(t, dp(100, 50), p1)
	assert.Equal(t, dp(200, 80), p2)
	assert.Equal(t, "rgba(255, 0, 0, 0.2)", drawn.Options().FillColor)
	assert.Nil(t, m.Coordinator().Current(), "drawing clicks do not select")

	m.BeginDrawing(nil)
	assert.True(t, m.CancelDrawing())
	assert.False(t, m.CancelDrawing())
}

func TestApplyOptionsRequestsRedraw(t *testing.T) {
	m, h := newTestManager(ResizeSticky)
	a := New(dp(100, 50), dp(200, 80))
	require.NoError(t, m.Attach(a))
	before := h.redraws
	require.NoError(t, a.ApplyOptions(style.Patch{"showInfoLabel": false}))
	assert.Equal(t, before+1, h.redraws)
	assert.False(t, a.Options().ShowInfoLabel)
	assert.Nil(t, m.Views()[0].Label)

	assert.Error(t, a.ApplyOptions(style.Patch{"borderWidth": "wide"}))
	assert.Equal(t, before+1, h.redraws)
}

func TestCursorAt(t *testing.T) {
	m, _ := newTestManager(ResizeSticky)
	a := New(dp(100, 50), dp(200, 80))
	require.NoError(t, m.Attach(a))
	assert.Equal(t, "move", m.CursorAt(px(150, 60)))
	m.CrosshairMove(px(150, 60), true)
	assert.Equal(t, "ew-resize", m.CursorAt(px(100, 60)))
	m.Click(px(150, 50))
	assert.Equal(t, "ns-resize", m.CursorAt(px(0, 0)))
}

func TestDescribe(t *testing.T) {
	m, _ := newTestManager(ResizeSticky)
	a := New(dp(100, 50), dp(200, 80), WithID("r1"))
	require.NoError(t, m.Attach(a))
	m.Click(px(150, 60))
	out := m.Describe()
	assert.True(t, strings.HasPrefix(out, "range r1 p1=(100, 50) p2=(200, 80) selected"), out)
}

func TestParseResizeMode(t *testing.T) {
	mode, ok := ParseResizeMode("press-hold")
	assert.True(t, ok)
	assert.Equal(t, ResizePressHold, mode)
	assert.Equal(t, "press-hold", mode.String())
	_, ok = ParseResizeMode("hover")
	assert.False(t, ok)
}

func TestDrawingDisarmsStickyResize(t *testing.T) {
	m, h := newTestManager(ResizeSticky)
	a := New(dp(100, 50), dp(200, 80))
	require.NoError(t, m.Attach(a))
	m.CrosshairMove(px(150, 65), true)
	m.Click(px(150, 80))
	_, _, armed := m.Coordinator().Sticky()
	require.True(t, armed)
	require.False(t, h.panning)

	m.BeginDrawing(nil)
	_, _, armed = m.Coordinator().Sticky()
	assert.False(t, armed)
	assert.True(t, h.panning)

	m.CrosshairMove(px(300, 10), true)
	m.Click(px(300, 10))
	m.Click(px(400, 20))
	require.Len(t, m.Annotations(), 2)
	m.CrosshairMove(px(500, 5), true)

	p1, p2 := a.Anchors()
	assert.Equal(t, dp(100, 50), p1)
	assert.Equal(t, dp(200, 80), p2)
	_, _, armed = m.Coordinator().Sticky()
	assert.False(t, armed)
	assert.True(t, h.panning)
}

func TestDrawingBlocksBodyDrag(t *testing.T) {
	m, h := newTestManager(ResizePressHold)
	a := New(dp(100, 50), dp(200, 80))
	require.NoError(t, m.Attach(a))

	m.PointerDown(px(150, 65))
	require.Equal(t, Body, a.Dragging())
	m.BeginDrawing(nil)
	assert.Equal(t, None, a.Dragging(), "arming a drawing ends the drag")
	assert.True(t, h.panning)

	m.PointerDown(px(150, 65))
	assert.Equal(t, None, a.Dragging())
	assert.True(t, h.panning)
	m.PointerMove(px(170, 75))
	m.Click(px(150, 65))
	m.PointerUp()

	p1, p2 := a.Anchors()
	assert.Equal(t, dp(100, 50), p1)
	assert.Equal(t, dp(200, 80), p2)
	assert.True(t, m.Drawing(), "one point placed, one to go")
}
