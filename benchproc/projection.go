// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchproc

import (
	"fmt"
	"strings"

	"golang.org/x/parbench/benchlog"
)

// A ProjectionParser parses one or more related projection
// expressions over the dimensions of one benchmark family.
type ProjectionParser struct {
	Family *benchlog.Family

	projected map[string]bool // dimensions named by any parsed projection
}

// A SyntaxError is an error in a projection expression.
type SyntaxError struct {
	Input string // the projection expression
	Msg   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error in %q: %s", e.Input, e.Msg)
}

// Parse parses a single projection expression, such as
// "m,sparsity@alpha". The empty expression projects nothing: every
// Context maps to the same Key.
func (p *ProjectionParser) Parse(projection string) (*Projection, error) {
	if p.projected == nil {
		p.projected = make(map[string]bool)
	}
	proj := newProjection()
	if strings.TrimSpace(projection) == "" {
		return proj, nil
	}

	seen := make(map[string]bool)
	var names []string
	for _, part := range strings.Split(projection, ",") {
		part = strings.TrimSpace(part)
		name, order := part, "num"
		if i := strings.IndexByte(part, '@'); i >= 0 {
			name, order = part[:i], part[i+1:]
		}
		switch {
		case name == "":
			return nil, &SyntaxError{projection, "missing dimension name"}
		case p.Family.DimIndex(name) < 0:
			return nil, &SyntaxError{projection, fmt.Sprintf("unknown dimension %q", name)}
		case seen[name]:
			return nil, &SyntaxError{projection, fmt.Sprintf("dimension %q projected twice", name)}
		}
		seen[name] = true

		field := proj.addField(name)
		if order == "first" {
			field.order = make(map[string]int)
			field.cmp = func(a, b string) int {
				return field.order[a] - field.order[b]
			}
		} else if cmp, ok := builtinOrders[order]; ok {
			field.cmp = cmp
		} else {
			return nil, &SyntaxError{projection, fmt.Sprintf("unknown order %q", order)}
		}
		names = append(names, name)
	}
	// Only record the dimensions once the whole expression is valid.
	for _, name := range names {
		p.projected[name] = true
	}
	return proj, nil
}

// Residue returns a projection for every dimension of the family not
// yet projected by any projection parsed by p.
//
// The intended use of this is to report when a user may have
// over-aggregated results: if measurements folded into a single cell
// have more than one distinct residue, NonSingularFields reports
// exactly which dimensions differed.
func (p *ProjectionParser) Residue() *Projection {
	s := newProjection()
	for _, d := range p.Family.Dims {
		if p.projected[d.Name] {
			continue
		}
		s.addField(d.Name).cmp = builtinOrders["num"]
	}
	return s
}

// A Projection extracts some subset of the dimensions of a
// benchlog.Context into a Key.
//
// A Projection also implies a sort order over Keys that is
// lexicographic over the fields of the Projection.
type Projection struct {
	fields []*Field

	// row is the buffer used to construct a projection.
	row []string

	// keys interns the Keys of this Projection by their
	// NUL-joined values.
	keys map[string]*keyNode
}

func newProjection() *Projection {
	return &Projection{keys: make(map[string]*keyNode)}
}

func (p *Projection) addField(name string) *Field {
	field := &Field{Name: name, proj: p, idx: len(p.fields)}
	p.fields = append(p.fields, field)
	p.row = append(p.row, "")
	return field
}

// Fields returns the fields of p in projection order.
//
// The caller must not modify the returned slice.
func (p *Projection) Fields() []*Field {
	return p.fields
}

// A Field is a single field of a Projection.
type Field struct {
	Name string

	proj *Projection

	// idx gives the index of this field's values in a keyNode.
	idx int

	// cmp is the comparison function for values of this field. It
	// returns <0 if a < b, >0 if a > b, or 0 if a == b or a and b
	// are unorderable.
	cmp func(a, b string) int

	// order, if non-nil, records the observation order of this
	// field.
	order map[string]int
}

// String returns the name of Field f.
func (f Field) String() string {
	return f.Name
}

// Project returns the Key holding the values c gives to the fields of
// p. Contexts that agree on those fields get the same Key.
func (p *Projection) Project(c benchlog.Context) Key {
	for i, f := range p.fields {
		p.row[i] = c.Get(f.Name)
	}
	return p.internRow()
}

func (p *Projection) internRow() Key {
	id := strings.Join(p.row, "\x00")
	if n, ok := p.keys[id]; ok {
		return Key{n}
	}

	// First sighting: extend the observation orders.
	for i, field := range p.fields {
		if field.order == nil {
			continue
		}
		if _, ok := field.order[p.row[i]]; !ok {
			field.order[p.row[i]] = len(field.order)
		}
	}

	n := &keyNode{p, append([]string(nil), p.row...)}
	p.keys[id] = n
	return Key{n}
}
