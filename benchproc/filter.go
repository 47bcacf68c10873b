// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchproc

import (
	"fmt"
	"math"
	"strconv"

	"golang.org/x/parbench/benchlog"
	"golang.org/x/parbench/benchproc/internal/parse"
)

// A Filter selects measurements by their context, x-value, method and
// label.
type Filter struct {
	match filterFn
}

type filterFn func(m *benchlog.Measurement) bool

// An extractor returns the value of one filter key for a measurement.
type extractor func(m *benchlog.Measurement) string

// NewFilter constructs a filter over measurements of family f from a
// boolean filter expression, such as "m:1000 iterations:(5 OR 10)".
//
// A key is a dimension of f, the name of f's x axis, ".method" or
// ".label". Numeric literals match any spelling of the same number,
// so "sparsity:0.50" matches a sparsity of 0.5. A /regexp/ matches the
// canonical text of a value. Keys, values and operators follow the
// syntax described in package parse.
//
// To create a filter that matches everything, pass "*" for query.
func NewFilter(f *benchlog.Family, query string) (*Filter, error) {
	q, err := parse.ParseFilter(query)
	if err != nil {
		return nil, err
	}

	extractors := make(map[string]extractor)
	var walk func(q parse.Filter) (filterFn, error)
	walk = func(q parse.Filter) (filterFn, error) {
		switch q := q.(type) {
		case *parse.FilterOp:
			subs := make([]filterFn, len(q.Exprs))
			for i, sub := range q.Exprs {
				if subs[i], err = walk(sub); err != nil {
					return nil, err
				}
			}
			return filterOp(q.Op, subs), nil

		case *parse.FilterMatch:
			ext := extractors[q.Key]
			if ext == nil {
				if ext = newExtractor(f, q.Key); ext == nil {
					return nil, &parse.SyntaxError{Query: query, Off: q.Off, Msg: fmt.Sprintf("unknown key %q", q.Key)}
				}
				extractors[q.Key] = ext
			}
			if q.Regexp == nil && q.Key[0] != '.' {
				lit := canonical(q.Lit)
				return func(m *benchlog.Measurement) bool {
					return ext(m) == lit
				}, nil
			}
			return func(m *benchlog.Measurement) bool {
				return q.MatchString(ext(m))
			}, nil
		}
		panic(fmt.Sprintf("unknown filter node type %T", q))
	}
	fn, err := walk(q)
	if err != nil {
		return nil, err
	}
	return &Filter{fn}, nil
}

// newExtractor returns the extractor for key, or nil if f has no such
// key.
func newExtractor(f *benchlog.Family, key string) extractor {
	switch {
	case key == ".method":
		return func(m *benchlog.Measurement) string { return m.Method }
	case key == ".label":
		return func(m *benchlog.Measurement) string { return m.Label }
	case f.IsX(key):
		return func(m *benchlog.Measurement) string {
			return strconv.FormatFloat(m.X, 'f', -1, 64)
		}
	case f.DimIndex(key) >= 0:
		return func(m *benchlog.Measurement) string { return m.Context.Get(key) }
	}
	return nil
}

// canonical returns the canonical text of a numeric literal, or lit
// itself if it is not a number.
func canonical(lit string) string {
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return lit
	}
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func filterOp(op parse.Op, subs []filterFn) filterFn {
	switch op {
	case parse.OpNot:
		sub := subs[0]
		return func(m *benchlog.Measurement) bool {
			return !sub(m)
		}

	case parse.OpAnd:
		return func(m *benchlog.Measurement) bool {
			for _, sub := range subs {
				if !sub(m) {
					return false
				}
			}
			return true
		}

	case parse.OpOr:
		return func(m *benchlog.Measurement) bool {
			for _, sub := range subs {
				if sub(m) {
					return true
				}
			}
			return false
		}
	}
	panic(fmt.Sprintf("unknown filter op %v", op))
}

// Match reports whether f selects measurement m.
func (f *Filter) Match(m *benchlog.Measurement) bool {
	return f.match(m)
}
