// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchseries aggregates benchmark log measurements into
// series of (x, y) points, one series per method and group, and
// renders them as charts, tables and reports.
package benchseries

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"golang.org/x/parbench/benchlog"
	"golang.org/x/parbench/benchmath"
	"golang.org/x/parbench/benchproc"
)

// A DupePolicy says what happens to raw samples for a key that is
// observed again after an intervening header line.
type DupePolicy int

const (
	// DupeCombine accumulates every raw sample for a key.
	DupeCombine DupePolicy = iota
	// DupeReplace discards the samples held for a key when a sample
	// arrives under a different header generation.
	DupeReplace
)

func (p DupePolicy) String() string {
	switch p {
	case DupeCombine:
		return "combine"
	case DupeReplace:
		return "replace"
	}
	return fmt.Sprintf("DupePolicy(%d)", int(p))
}

// ParseDupePolicy parses "combine" or "replace".
func ParseDupePolicy(s string) (DupePolicy, error) {
	switch s {
	case "combine":
		return DupeCombine, nil
	case "replace":
		return DupeReplace, nil
	}
	return 0, fmt.Errorf("unknown duplicate policy %q (want combine or replace)", s)
}

type BuilderOptions struct {
	Group  string     // projection of context dimensions to group series by (e.g., "iterations", "m,sparsity", "" (one group))
	Filter string     // measurements to keep (e.g., "m:1000 iterations:(5 OR 10)", "" or "*" (all))
	Dupes  DupePolicy // what to do with raw samples for a key seen again
	Warn   func(format string, args ...interface{})
}

// DefaultBuilderOptions returns options that group by the family's
// default grouping, combine duplicate samples, and warn on stderr.
func DefaultBuilderOptions(f *benchlog.Family) *BuilderOptions {
	return &BuilderOptions{
		Group: f.Group,
		Dupes: DupeCombine,
		Warn: func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format, args...)
		},
	}
}

// A Builder collects benchmark measurements and folds them into one
// value per context, method and x-value.
type Builder struct {
	fam *benchlog.Family

	groupBy, residue *benchproc.Projection
	filter           *benchproc.Filter

	dupes DupePolicy
	warn  func(format string, args ...interface{})

	cells map[cellKey]*cell
}

// cellKey identifies one finalized value.
type cellKey struct {
	ctx    benchlog.Context
	label  string
	method string
	x      float64
}

type cell struct {
	// avg is the precomputed average, if promised.
	avg      float64
	promised bool

	sample benchmath.Sample
	gen    uint64 // header generation of the samples in sample

	unit string
}

// NewBuilder returns a Builder for measurements of family f. If bo is
// nil, it uses DefaultBuilderOptions(f).
func NewBuilder(f *benchlog.Family, bo *BuilderOptions) (*Builder, error) {
	if bo == nil {
		bo = DefaultBuilderOptions(f)
	}
	pp := &benchproc.ProjectionParser{Family: f}
	groupBy, err := pp.Parse(bo.Group)
	if err != nil {
		return nil, fmt.Errorf("parsing group: %w", err)
	}
	var filter *benchproc.Filter
	if bo.Filter != "" {
		if filter, err = benchproc.NewFilter(f, bo.Filter); err != nil {
			return nil, fmt.Errorf("parsing filter: %w", err)
		}
	}
	warn := bo.Warn
	if warn == nil {
		warn = func(string, ...interface{}) {}
	}
	return &Builder{
		fam:     f,
		groupBy: groupBy,
		residue: pp.Residue(),
		filter:  filter,
		dupes:   bo.Dupes,
		warn:    warn,
		cells:   make(map[cellKey]*cell),
	}, nil
}

// A Scanner is a source of measurements, such as a *benchlog.Reader or
// *benchlog.Files.
type Scanner interface {
	Scan() bool
	Result() *benchlog.Measurement
	Err() error
}

// AddFiles adds every measurement of files to the Builder. It stops at
// the first error, which may come from reading or from Add.
func (b *Builder) AddFiles(files Scanner) error {
	for files.Scan() {
		if err := b.Add(files.Result()); err != nil {
			return err
		}
	}
	return files.Err()
}

// Add adds one measurement to the Builder.
//
// A precomputed average becomes the value of its key, replacing any
// raw samples and any earlier average. Raw samples for a key that has
// an average are ignored. Otherwise raw samples accumulate, subject to
// the duplicate policy.
//
// m must have a context and an x-value (X may not be NaN); otherwise
// Add returns an error wrapping benchlog.ErrContextIncomplete. A
// measurement the filter rejects is dropped after that check.
func (b *Builder) Add(m *benchlog.Measurement) error {
	if m.Context.IsZero() || math.IsNaN(m.X) {
		fileName, line := m.Pos()
		return &benchlog.SyntaxError{
			FileName: fileName,
			Line:     line,
			Msg:      "average/sample line before context established",
			Err:      benchlog.ErrContextIncomplete,
		}
	}
	if f := m.Context.Family(); f != b.fam {
		panic(fmt.Sprintf("measurement of family %s added to builder for %s", f.Name, b.fam.Name))
	}
	if b.filter != nil && !b.filter.Match(m) {
		return nil
	}

	k := cellKey{m.Context, m.Label, m.Method, m.X}
	c := b.cells[k]
	if c == nil {
		c = &cell{unit: m.Unit}
		b.cells[k] = c
	}

	if m.Average {
		if c.promised && c.avg != m.Value {
			fileName, line := m.Pos()
			b.warn("%s:%d: %s average %v at %s replaces earlier average %v\n",
				fileName, line, lineName(m.Label, m.Method), m.Value, b.where(k), c.avg)
		}
		c.avg, c.promised = m.Value, true
		c.sample.Values = nil
		return nil
	}
	if c.promised {
		return nil
	}
	if b.dupes == DupeReplace && c.sample.Len() > 0 && c.gen != m.Gen {
		c.sample.Values = c.sample.Values[:0]
	}
	c.gen = m.Gen
	c.sample.Add(m.Value)
	return nil
}

// where describes the context and x-value of k for diagnostics.
func (b *Builder) where(k cellKey) string {
	x := fmt.Sprintf("%s=%v", b.fam.X.Name, k.x)
	if s := k.ctx.String(); s != "" {
		return s + " " + x
	}
	return x
}

func lineName(label, method string) string {
	if label == "" {
		return method
	}
	return label + " " + method
}

// Finalize folds the accumulated measurements into a Series.
//
// Each key yields its average if one was given and otherwise the mean
// of its raw samples. If the grouping projection folds several
// contexts onto the same group, method and x-value, their values are
// averaged and a warning names the dimensions that differed.
//
// Finalize returns benchlog.ErrEmpty if no measurement was added.
func (b *Builder) Finalize() (*Series, error) {
	if len(b.cells) == 0 {
		return nil, benchlog.ErrEmpty
	}

	// Visit cells in a fixed order so folding is deterministic.
	keys := make([]cellKey, 0, len(b.cells))
	for k := range b.cells {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ki, kj := keys[i], keys[j]
		if ki.ctx != kj.ctx {
			return ki.ctx.String() < kj.ctx.String()
		}
		if ki.label != kj.label {
			return ki.label < kj.label
		}
		if ki.method != kj.method {
			return ki.method < kj.method
		}
		return ki.x < kj.x
	})

	type lineKey struct {
		group         benchproc.Key
		label, method string
	}
	type point struct {
		sample   benchmath.Sample
		residues map[benchproc.Key]struct{}
	}
	lines := make(map[lineKey]map[float64]*point)
	units := make(map[lineKey]string)
	groups := make(map[benchproc.Key][]lineKey)
	for _, k := range keys {
		c := b.cells[k]
		v := c.avg
		if !c.promised {
			v = c.sample.Mean()
		}
		g := b.groupBy.Project(k.ctx)
		lk := lineKey{g, k.label, k.method}
		pts := lines[lk]
		if pts == nil {
			pts = make(map[float64]*point)
			lines[lk] = pts
			units[lk] = c.unit
			groups[g] = append(groups[g], lk)
		}
		p := pts[k.x]
		if p == nil {
			p = &point{residues: make(map[benchproc.Key]struct{})}
			pts[k.x] = p
		}
		p.sample.Add(v)
		p.residues[b.residue.Project(k.ctx)] = struct{}{}
	}

	s := &Series{
		Family:     b.fam,
		FamilyName: b.fam.Name,
		XName:      b.fam.X.Name,
	}
	for _, f := range b.groupBy.Fields() {
		s.GroupBy = append(s.GroupBy, f.Name)
	}

	groupKeys := make([]benchproc.Key, 0, len(groups))
	for g := range groups {
		groupKeys = append(groupKeys, g)
	}
	benchproc.SortKeys(groupKeys)

	for _, g := range groupKeys {
		grp := &Group{Key: g, Name: g.String()}
		for _, f := range b.groupBy.Fields() {
			grp.Values = append(grp.Values, g.Get(f))
		}
		lks := groups[g]
		sort.Slice(lks, func(i, j int) bool {
			mi, mj := b.fam.MethodIndex(lks[i].method), b.fam.MethodIndex(lks[j].method)
			if mi != mj {
				return mi < mj
			}
			return lks[i].label < lks[j].label
		})
		for _, lk := range lks {
			line := &Line{Method: lk.method, Label: lk.label, Unit: units[lk]}
			for x, p := range lines[lk] {
				if p.sample.Len() > 1 {
					b.warnFolded(grp, line, x, p.residues)
				}
				line.Points = append(line.Points, Point{X: x, Y: p.sample.Mean()})
			}
			sort.Slice(line.Points, func(i, j int) bool {
				return line.Points[i].X < line.Points[j].X
			})
			grp.Lines = append(grp.Lines, line)
		}
		s.Groups = append(s.Groups, grp)
	}
	return s, nil
}

func (b *Builder) warnFolded(g *Group, l *Line, x float64, residues map[benchproc.Key]struct{}) {
	keys := make([]benchproc.Key, 0, len(residues))
	for k := range residues {
		keys = append(keys, k)
	}
	var names []string
	for _, f := range benchproc.NonSingularFields(keys) {
		names = append(names, f.Name)
	}
	where := fmt.Sprintf("%s=%v", b.fam.X.Name, x)
	if g.Name != "" {
		where = g.Name + " " + where
	}
	b.warn("%s at %s averages contexts differing in %s\n", l.Name(), where, strings.Join(names, ", "))
}
