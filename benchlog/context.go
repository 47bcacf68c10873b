// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchlog

import (
	"fmt"
	"strconv"
	"strings"
)

// A Context is a snapshot of every dimension of a family's context
// schema. Contexts are interned per family, so two Contexts are equal
// under == exactly when they hold the same values, and a Context can
// be used as a map key.
//
// The zero Context means "no context".
type Context struct {
	n *ctxNode
}

type ctxNode struct {
	fam  *Family
	vals []string
	str  string
}

// intern returns the interned Context for vals, which must be
// complete and canonical.
func (f *Family) intern(vals []string) Context {
	k := strings.Join(vals, "\x00")
	f.mu.Lock()
	defer f.mu.Unlock()
	if n, ok := f.interned[k]; ok {
		return Context{n}
	}
	n := &ctxNode{fam: f, vals: append([]string(nil), vals...)}
	var buf strings.Builder
	for i, v := range vals {
		if i > 0 {
			buf.WriteByte(' ')
		}
		fmt.Fprintf(&buf, "%s:%s", f.Dims[i].Name, v)
	}
	n.str = buf.String()
	f.interned[k] = n
	return Context{n}
}

// IsZero reports whether c is the zero Context.
func (c Context) IsZero() bool {
	return c.n == nil
}

// Family returns the family c belongs to, or nil for the zero Context.
func (c Context) Family() *Family {
	if c.n == nil {
		return nil
	}
	return c.n.fam
}

// Get returns the canonical value of dimension dim, or "" if c has no
// such dimension.
func (c Context) Get(dim string) string {
	if c.n == nil {
		return ""
	}
	i := c.n.fam.DimIndex(dim)
	if i < 0 {
		return ""
	}
	return c.n.vals[i]
}

// Float returns the value of dimension dim as a number.
func (c Context) Float(dim string) float64 {
	v, _ := strconv.ParseFloat(c.Get(dim), 64)
	return v
}

// Values returns the values of c in schema order.
func (c Context) Values() []string {
	if c.n == nil {
		return nil
	}
	return append([]string(nil), c.n.vals...)
}

// String returns c as space-separated "dim:value" pairs.
func (c Context) String() string {
	if c.n == nil {
		return "<none>"
	}
	return c.n.str
}

// A Stack tracks the context in effect while reading a log. Header
// lines update it; measurement lines take a snapshot of it.
type Stack struct {
	fam  *Family
	vals []string // "" for unset dimensions
	x    float64
	hasX bool
	gen  uint64
}

// NewStack returns an empty Stack for family f.
func NewStack(f *Family) *Stack {
	return &Stack{fam: f, vals: make([]string, len(f.Dims))}
}

// Reset clears every dimension and the x-value.
func (s *Stack) Reset() {
	for i := range s.vals {
		s.vals[i] = ""
	}
	s.x, s.hasX = 0, false
	s.gen++
}

// Apply sets dimension dim to value and clears every dimension after
// it in the schema. If dim is a scope dimension, Apply also clears the
// x-value. Applying the x-axis name is the same as SetX.
func (s *Stack) Apply(dim, value string) error {
	if s.fam.IsX(dim) {
		return s.SetX(value)
	}
	i := s.fam.DimIndex(dim)
	if i < 0 {
		return fmt.Errorf("unknown dimension %q", dim)
	}
	_, text, err := parseValue(value)
	if err != nil {
		return err
	}
	s.vals[i] = text
	for j := i + 1; j < len(s.vals); j++ {
		s.vals[j] = ""
	}
	if s.fam.Dims[i].Scope {
		s.x, s.hasX = 0, false
	}
	return nil
}

// SetX sets the x-value without touching any dimension.
func (s *Stack) SetX(value string) error {
	v, _, err := parseValue(value)
	if err != nil {
		return err
	}
	s.x, s.hasX = v, true
	return nil
}

// Current returns a snapshot of the context. It fails with
// ErrContextIncomplete if any dimension is unset.
func (s *Stack) Current() (Context, error) {
	for i, v := range s.vals {
		if v == "" {
			return Context{}, fmt.Errorf("%w: %s not set", ErrContextIncomplete, s.fam.Dims[i].Name)
		}
	}
	return s.fam.intern(s.vals), nil
}

// X returns the current x-value and whether one is set.
func (s *Stack) X() (float64, bool) {
	return s.x, s.hasX
}

// Mark starts a new header generation. The Reader calls it for every
// header line, whether or not the line changes any value; context
// carried inline by a measurement row does not start one.
func (s *Stack) Mark() {
	s.gen++
}

// Gen returns the current header generation.
func (s *Stack) Gen() uint64 {
	return s.gen
}
