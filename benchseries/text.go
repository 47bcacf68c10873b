// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchseries

import (
	"fmt"
	"io"
	"strconv"

	"github.com/aclements/go-gg/generic/slice"
	"github.com/aclements/go-gg/table"
	"golang.org/x/parbench/benchunit"
)

// WriteText writes s to w as one text table per group. Each table has
// a row per x-value and a column per line. Values of a line share a
// common SI scale, and missing points print as "-".
func (s *Series) WriteText(w io.Writer) error {
	for i, g := range s.Groups {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s\n", s.Title(g)); err != nil {
			return err
		}
		if err := table.Fprint(w, s.pivot(g)); err != nil {
			return err
		}
	}
	return nil
}

// xValues returns the distinct x-values of g in increasing order.
func (g *Group) xValues() []float64 {
	var xs []float64
	for _, l := range g.Lines {
		for _, p := range l.Points {
			xs = append(xs, p.X)
		}
	}
	slice.Sort(xs)
	return slice.Nub(xs).([]float64)
}

// pivot builds the x × line table of group g.
func (s *Series) pivot(g *Group) *table.Table {
	xs := g.xValues()
	xcol := make([]string, len(xs))
	for i, x := range xs {
		xcol[i] = strconv.FormatFloat(x, 'f', -1, 64)
	}

	var tb table.Builder
	tb.Add(s.XName, xcol)
	for _, l := range g.Lines {
		vals := make([]float64, len(l.Points))
		byX := make(map[float64]float64, len(l.Points))
		for i, p := range l.Points {
			vals[i] = p.Y
			byX[p.X] = p.Y
		}
		scaler := benchunit.CommonScale(vals)
		col := make([]string, len(xs))
		for i, x := range xs {
			if y, ok := byX[x]; ok {
				col[i] = scaler.Format(y)
			} else {
				col[i] = "-"
			}
		}
		name := l.Name()
		if l.Unit != "" {
			name += " (" + l.Unit + ")"
		}
		tb.Add(name, col)
	}
	return tb.Done()
}

// A tableRow is one point of a Series in long form.
type tableRow struct {
	Group  string
	Method string
	X      float64
	Y      float64
	Unit   string
}

// WriteTable writes every point of s to w as a single long-form
// table, with a "-- /group" header before the points of each group.
func (s *Series) WriteTable(w io.Writer) error {
	var rows []tableRow
	for _, g := range s.Groups {
		for _, l := range g.Lines {
			for _, p := range l.Points {
				rows = append(rows, tableRow{g.Name, l.Name(), p.X, p.Y, l.Unit})
			}
		}
	}
	if len(rows) == 0 {
		return nil
	}
	var grouping table.Grouping = table.TableFromStructs(rows)
	if len(s.Groups) > 1 {
		grouping = table.GroupBy(grouping, "Group")
	}
	return table.Fprint(w, grouping, "%s", "%s", "%v", "%.6g", "%s")
}
