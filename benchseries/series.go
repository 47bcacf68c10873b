// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchseries

import (
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/parbench/benchlog"
	"golang.org/x/parbench/benchproc"
)

// A Series is the finalized output of a Builder: for each group, for
// each method, the points ordered by x.
type Series struct {
	Family     *benchlog.Family `json:"-"`
	FamilyName string           `json:"family"`
	XName      string           `json:"x"`

	// GroupBy names the context dimensions in each group key.
	GroupBy []string `json:"groupBy,omitempty"`

	Groups []*Group `json:"groups"`
}

// A Group is the set of lines that share one grouping key.
type Group struct {
	// Key is the projected grouping key. It is zero for a Series
	// decoded from JSON.
	Key benchproc.Key `json:"-"`

	// Name is Key as "dim:value" pairs, or "" for a single group.
	Name string `json:"name"`

	// Values are the values of Series.GroupBy for this group.
	Values []string `json:"values,omitempty"`

	Lines []*Line `json:"lines"`
}

// A Line is the series of one method (from one labeled input).
type Line struct {
	Method string  `json:"method"`
	Label  string  `json:"label,omitempty"`
	Unit   string  `json:"unit,omitempty"`
	Points []Point `json:"points"`
}

// A Point is one finalized value. Points of a Line are in strictly
// increasing order of X.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Name returns the display name of l: the method, prefixed by the
// input label if there is one.
func (l *Line) Name() string {
	return lineName(l.Label, l.Method)
}

// Line returns the line of g with the given display name, or nil.
func (g *Group) Line(name string) *Line {
	for _, l := range g.Lines {
		if l.Name() == name {
			return l
		}
	}
	return nil
}

// Group returns the group with the given name, or nil.
func (s *Series) Group(name string) *Group {
	for _, g := range s.Groups {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// Lookup returns the points of the named line of the named group.
func (s *Series) Lookup(group, line string) ([]Point, bool) {
	g := s.Group(group)
	if g == nil {
		return nil, false
	}
	l := g.Line(line)
	if l == nil {
		return nil, false
	}
	return l.Points, true
}

// Map returns s as a map from group name to line name to points.
func (s *Series) Map() map[string]map[string][]Point {
	m := make(map[string]map[string][]Point)
	for _, g := range s.Groups {
		lines := make(map[string][]Point)
		for _, l := range g.Lines {
			lines[l.Name()] = l.Points
		}
		m[g.Name] = lines
	}
	return m
}

// Title returns the chart title for group g.
func (s *Series) Title(g *Group) string {
	title := s.FamilyName
	if s.Family != nil && s.Family.Chart.Title != "" {
		title = s.Family.Chart.Title
	}
	if g.Name != "" {
		title += " (" + g.Name + ")"
	}
	return title
}

// WriteJSON writes s to w as indented JSON.
func (s *Series) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "\t")
	return enc.Encode(s)
}

// ReadJSON reads a Series written by WriteJSON. lookup resolves the
// family name; it may be nil, or return nil for an unknown family, in
// which case the Series has no Family and renders without its hints.
func ReadJSON(r io.Reader, lookup func(name string) *benchlog.Family) (*Series, error) {
	var s Series
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decoding series: %w", err)
	}
	if lookup != nil {
		s.Family = lookup(s.FamilyName)
	}
	return &s, nil
}
