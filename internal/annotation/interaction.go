/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package annotation

import "pricerange/internal/chart"

// beginDrag snapshots the anchors and the domain point under the pointer.
// It refuses to start a second session.
func (a *Annotation) beginDrag(part Target, origin chart.DomainPoint) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.drag != nil || part == None {
		return false
	}
	a.drag = &dragSession{part: part, origin: origin, initP1: a.p1, initP2: a.p2}
	return true
}

// updateDrag applies the pointer's current domain point to the session.
// Body drags translate both anchors by cur-origin from their snapshots;
// handle drags move the governed components to cur.
func (a *Annotation) updateDrag(cur chart.DomainPoint) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	d := a.drag
	if d == nil {
		return false
	}
	if d.part == Body {
		a.p1, a.p2 = translate(d.initP1, d.initP2, cur.Sub(d.origin))
	} else {
		a.p1, a.p2 = resize(a.p1, a.p2, d.part, cur)
	}
	return true
}

// endDrag drops the session; it reports whether one was active.
func (a *Annotation) endDrag() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	active := a.drag != nil
	a.drag = nil
	return active
}

// resizeTo applies a sticky-resize step for handle h.
func (a *Annotation) resizeTo(h Target, cur chart.DomainPoint) {
	a.mu.Lock()
	a.p1, a.p2 = resize(a.p1, a.p2, h, cur)
	a.mu.Unlock()
}
