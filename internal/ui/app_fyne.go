//go:build fyne && cgo

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
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"pricerange/internal/annotation"
	"pricerange/internal/crash"
	applog "pricerange/internal/log"
	"pricerange/internal/vector"
)

// Run opens the chart window and blocks until it closes.
func Run(opts RunOptions) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI")

	sess, err := NewSessionFor(opts)
	if err != nil {
		return err
	}
	defer crash.Recover(&crash.Report{State: sess.Manager().Describe})

	title := opts.Title
	if title == "" {
		title = "Price ranges"
	}
	fyneApp := app.NewWithID("pricerange")
	w := fyneApp.NewWindow(title)
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1200)
	winH := prefs.IntWithFallback("window.height", 760)
	w.Resize(fyne.NewSize(float32(max(winW, 640)), float32(max(winH, 480))))

	status := widget.NewLabel("Ready")
	chartWidget := NewChartCanvas(sess)
	chartWidget.OnChange = func() { status.SetText(sess.Status()) }

	sess.Manager().Coordinator().OnSelectionChange(func(e annotation.SelectionEvent) {
		l.Debug("selection", slog.String("kind", e.Kind.String()), slog.String("id", e.Annotation.ID()))
	})

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.ContentAddIcon(), func() {
			sess.BeginDrawing(func(a *annotation.Annotation) {
				l.Info("range placed", slog.String("range", a.String()))
				chartWidget.changed()
			})
			chartWidget.changed()
		}),
		widget.NewToolbarAction(theme.CancelIcon(), func() {
			if sess.CancelDrawing() {
				chartWidget.changed()
			}
		}),
		widget.NewToolbarAction(theme.DeleteIcon(), func() {
			if sess.DeleteSelected() {
				chartWidget.changed()
			}
		}),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ViewRestoreIcon(), func() {
			sess.Fit()
			chartWidget.changed()
		}),
	)
	drawBtn := widget.NewButtonWithIcon("Draw range", theme.ContentAddIcon(), func() {
		sess.BeginDrawing(func(*annotation.Annotation) { chartWidget.changed() })
		chartWidget.changed()
	})

	top := container.NewHBox(toolbar, drawBtn)
	w.SetContent(container.NewBorder(top, status, nil, nil, chartWidget))
	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		l.Info("window closed", slog.String("ranges", sess.Manager().Describe()))
	})
	w.ShowAndRun()
	return nil
}

// ChartCanvas is the chart widget. Input goes to the session; the picture
// is a raster repainted on every redraw the manager requests.
type ChartCanvas struct {
	widget.BaseWidget
	sess   *Session
	raster *canvas.Raster
	cursor desktop.Cursor
	// OnChange runs after any input that may change selection or anchors.
	OnChange func()
}

var (
	_ desktop.Hoverable  = (*ChartCanvas)(nil)
	_ desktop.Mouseable  = (*ChartCanvas)(nil)
	_ desktop.Cursorable = (*ChartCanvas)(nil)
	_ fyne.Tappable      = (*ChartCanvas)(nil)
	_ fyne.Draggable     = (*ChartCanvas)(nil)
)

func NewChartCanvas(sess *Session) *ChartCanvas {
	c := &ChartCanvas{sess: sess, cursor: desktop.DefaultCursor}
	c.raster = canvas.NewRaster(c.paint)
	sess.Viewport().OnRedraw(func() { c.raster.Refresh() })
	c.ExtendBaseWidget(c)
	return c
}

func (c *ChartCanvas) paint(w, h int) image.Image {
	sz := c.Size()
	if sz.Width <= 0 || w <= 0 {
		return image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	}
	return c.sess.Render(w, h, float64(w)/float64(sz.Width))
}

func (c *ChartCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(c.raster)
}

func (c *ChartCanvas) MinSize() fyne.Size { return fyne.NewSize(320, 200) }

func (c *ChartCanvas) Resize(s fyne.Size) {
	c.sess.Resize(float64(s.Width), float64(s.Height))
	c.BaseWidget.Resize(s)
}

func toPt(p fyne.Position) vector.Pt { return vector.Pt{X: float64(p.X), Y: float64(p.Y)} }

func (c *ChartCanvas) changed() {
	c.raster.Refresh()
	if c.OnChange != nil {
		c.OnChange()
	}
}

func (c *ChartCanvas) updateCursor(pt vector.Pt) {
	switch c.sess.Cursor(pt) {
	case "move":
		c.cursor = desktop.PointerCursor
	case "ew-resize":
		c.cursor = desktop.HResizeCursor
	case "ns-resize":
		c.cursor = desktop.VResizeCursor
	case "nwse-resize", "nesw-resize", "crosshair":
		c.cursor = desktop.CrosshairCursor
	default:
		c.cursor = desktop.DefaultCursor
	}
}

func (c *ChartCanvas) Cursor() desktop.Cursor { return c.cursor }

func (c *ChartCanvas) MouseIn(e *desktop.MouseEvent) { c.MouseMoved(e) }

func (c *ChartCanvas) MouseMoved(e *desktop.MouseEvent) {
	pt := toPt(e.Position)
	c.sess.Hover(pt)
	c.updateCursor(pt)
}

func (c *ChartCanvas) MouseOut() {
	c.sess.Leave()
	c.cursor = desktop.DefaultCursor
	c.changed()
}

func (c *ChartCanvas) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	c.sess.Press(toPt(e.Position))
}

func (c *ChartCanvas) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	c.sess.Release()
	c.changed()
}

func (c *ChartCanvas) Tapped(e *fyne.PointEvent) {
	pt := toPt(e.Position)
	c.sess.Tap(pt)
	c.updateCursor(pt)
	c.changed()
}

func (c *ChartCanvas) Dragged(e *fyne.DragEvent) {
	pt := toPt(e.Position)
	c.sess.Drag(pt)
	c.updateCursor(pt)
}

func (c *ChartCanvas) DragEnd() {
	c.sess.Release()
	c.changed()
}
