/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"pricerange/internal/annotation"
	"pricerange/internal/chart"
	"pricerange/internal/style"
)

// RunOptions configures the desktop window.
type RunOptions struct {
	Title  string
	Bars   []chart.Bar
	Width  int
	Height int
	Config annotation.Config
	Style  style.Options
	// Ranges are attached before the window opens.
	Ranges []*annotation.Annotation
}

// NewSessionFor builds the viewport, manager and session described by opts.
func NewSessionFor(opts RunOptions) (*Session, error) {
	w, h := opts.Width, opts.Height
	if w <= 0 {
		w = 1200
	}
	if h <= 0 {
		h = 700
	}
	vp := chart.NewViewport(opts.Bars, float64(w), float64(h))
	mgr := annotation.NewManager(vp, annotation.NewCoordinator(opts.Config))
	mgr.SetDefaultStyle(opts.Style)
	for _, a := range opts.Ranges {
		if err := mgr.Attach(a); err != nil {
			return nil, err
		}
	}
	return NewSession(vp, mgr, nil), nil
}
