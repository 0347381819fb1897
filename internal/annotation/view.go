/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package annotation

import (
	"pricerange/internal/style"
	"pricerange/internal/vector"
)

// View is a render snapshot of one annotation. It refers back to its
// annotation by ID only; use Manager.Lookup to reach the live object.
type View struct {
	ID       string
	Rect     vector.Rect
	Visible  bool // false when the anchors do not project
	Hovered  bool
	Selected bool
	// ShowHandles is set for visible, active annotations whose style
	// enables handles.
	ShowHandles bool
	Handles     Handles
	// ActiveHandle is the handle being resized, if any.
	ActiveHandle Target
	Style        style.Options
	Label        *InfoLabel
	// Preview marks the rubber band of an in-progress drawing.
	Preview bool
}

func (a *Annotation) view(radii HitRadii, active Target) View {
	a.mu.RLock()
	defer a.mu.RUnlock()
	r, ok := Project(a.host, a.p1, a.p2)
	v := View{
		ID:           a.id,
		Rect:         r,
		Visible:      ok,
		Hovered:      a.hovered,
		Selected:     a.selected,
		ActiveHandle: active,
		Style:        a.opts,
	}
	if a.drag != nil && a.drag.part.IsHandle() {
		v.ActiveHandle = a.drag.part
	}
	if !ok {
		return v
	}
	if (a.hovered || a.selected) && a.opts.ShowHandles {
		v.ShowHandles = true
		v.Handles = HandleGeometry(r, radii)
	}
	if a.opts.ShowInfoLabel {
		if l, ok := a.infoLabelLocked(); ok {
			v.Label = &l
		}
	}
	return v
}
