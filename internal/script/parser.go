/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"pricerange/internal/chart"
	"pricerange/internal/vector"
)

type rawScenario struct {
	Scenario `yaml:",inline"`
	Events   []yaml.Node `yaml:"events"`
}

// Parse decodes a scenario. Document level YAML errors stop parsing; event
// errors are collected so a file reports all of its bad events at once.
func Parse(data []byte) (Scenario, []Error) {
	var raw rawScenario
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Scenario{}, []Error{{Message: err.Error()}}
	}
	s := raw.Scenario
	var errs []Error
	for i := range raw.Events {
		ev, err := parseEvent(&raw.Events[i])
		if err != nil {
			errs = append(errs, *err)
			continue
		}
		s.Events = append(s.Events, ev)
	}
	if s.Width < 0 || s.Height < 0 {
		errs = append(errs, Error{Message: fmt.Sprintf("negative size %dx%d", s.Width, s.Height)})
	}
	for i, r := range s.Ranges {
		if r.ID == "" {
			continue
		}
		for _, o := range s.Ranges[:i] {
			if o.ID == r.ID {
				errs = append(errs, Error{Message: fmt.Sprintf("duplicate range id %q", r.ID)})
			}
		}
	}
	return s, errs
}

// ParseFile reads and parses path; all errors are joined into one.
func ParseFile(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario %s: %w", path, err)
	}
	s, errs := Parse(data)
	if len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return s, fmt.Errorf("scenario %s: %s", path, strings.Join(msgs, "; "))
	}
	return s, nil
}

func errAt(n *yaml.Node, format string, args ...any) *Error {
	return &Error{Line: n.Line, Column: n.Column, Message: fmt.Sprintf(format, args...)}
}

// parseEvent accepts "up" style scalars and single-key mappings such as
// {click: [x, y]}, {hover: {time: t, price: p}} or {pan: -40}.
func parseEvent(n *yaml.Node) (Event, *Error) {
	switch n.Kind {
	case yaml.ScalarNode:
		k := Kind(strings.ToLower(strings.TrimSpace(n.Value)))
		if !bareKinds[k] {
			if pointKinds[k] || k == KindPan {
				return Event{}, errAt(n, "event %q needs an argument", k)
			}
			return Event{}, errAt(n, "unknown event %q", n.Value)
		}
		return Event{Kind: k, Line: n.Line}, nil
	case yaml.MappingNode:
		if len(n.Content) != 2 {
			return Event{}, errAt(n, "event must have exactly one key")
		}
	default:
		return Event{}, errAt(n, "event must be a name or a single-key mapping")
	}
	key, val := n.Content[0], n.Content[1]
	k := Kind(strings.ToLower(strings.TrimSpace(key.Value)))
	ev := Event{Kind: k, Line: key.Line}
	switch {
	case bareKinds[k]:
		if val.Tag != "!!null" {
			return Event{}, errAt(val, "event %q takes no argument", k)
		}
	case k == KindPan:
		if err := val.Decode(&ev.Amount); err != nil {
			return Event{}, errAt(val, "pan needs a number: %v", err)
		}
	case pointKinds[k]:
		p, err := parsePoint(val)
		if err != nil {
			return Event{}, err
		}
		ev.At = p
	default:
		return Event{}, errAt(key, "unknown event %q", key.Value)
	}
	return ev, nil
}

func parsePoint(n *yaml.Node) (Point, *Error) {
	switch n.Kind {
	case yaml.SequenceNode:
		var xy []float64
		if err := n.Decode(&xy); err != nil || len(xy) != 2 {
			return Point{}, errAt(n, "pixel point must be [x, y]")
		}
		return Point{Pixel: &vector.Pt{X: xy[0], Y: xy[1]}}, nil
	case yaml.MappingNode:
		var a struct {
			Time  *int64   `yaml:"time"`
			Price *float64 `yaml:"price"`
		}
		if err := n.Decode(&a); err != nil {
			return Point{}, errAt(n, "domain point: %v", err)
		}
		if a.Time == nil || a.Price == nil {
			return Point{}, errAt(n, "domain point needs time and price")
		}
		return Point{Domain: &chart.DomainPoint{Time: chart.Time(*a.Time), Price: *a.Price}}, nil
	}
	return Point{}, errAt(n, "point must be [x, y] or {time, price}")
}
