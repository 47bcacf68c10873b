// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parse

import (
	"regexp"
	"strings"
)

// A Filter is a node of a parsed filter: a *FilterOp or a
// *FilterMatch.
type Filter interface {
	isFilter()
	String() string
}

// A FilterMatch tests one key against a literal or a regexp.
type FilterMatch struct {
	Key string

	// Regexp, if non-nil, is matched against the value.
	// Otherwise the value must equal Lit.
	Regexp *regexp.Regexp
	Lit    string

	// Off is the byte offset of Key in the query.
	Off int
}

func (q *FilterMatch) isFilter() {}

func (q *FilterMatch) String() string {
	if q.Regexp != nil {
		return quoteWord(q.Key) + ":/" + q.Regexp.String() + "/"
	}
	return quoteWord(q.Key) + ":" + quoteWord(q.Lit)
}

// MatchString reports whether value satisfies q.
func (q *FilterMatch) MatchString(value string) bool {
	if q.Regexp != nil {
		return q.Regexp.MatchString(value)
	}
	return q.Lit == value
}

// A FilterOp combines its operands with a boolean operator. OpNot has
// exactly one operand. An OpAnd with no operands is true and an OpOr
// with no operands is false.
type FilterOp struct {
	Op    Op
	Exprs []Filter
}

func (q *FilterOp) isFilter() {}

func (q *FilterOp) String() string {
	var sep string
	switch q.Op {
	case OpNot:
		return "-" + q.Exprs[0].String()
	case OpAnd:
		if len(q.Exprs) == 0 {
			return "*"
		}
		sep = " AND "
	case OpOr:
		if len(q.Exprs) == 0 {
			return "-*"
		}
		sep = " OR "
	}
	parts := make([]string, len(q.Exprs))
	for i, e := range q.Exprs {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// An Op is a boolean operator.
type Op int

const (
	OpAnd Op = 1 + iota
	OpOr
	OpNot
)

// join returns terms combined by op, or the single term itself.
func join(op Op, terms []Filter) Filter {
	if len(terms) == 1 {
		return terms[0]
	}
	return &FilterOp{op, terms}
}
