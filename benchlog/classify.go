// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchlog

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/parbench/benchunit"
)

// A Line is the classification of one log line.
type Line struct {
	Kind Kind

	// Assign lists the dimensions set by this line, in schema
	// order. Values are in canonical numeric form.
	Assign []Assignment

	// X is the x-value set by this line, if HasX.
	X    string
	HasX bool

	// FixedX is a rule's fixed x-value for this measurement alone
	// (for example 1 for a serial baseline). Unlike X it does not
	// change the context's x-value.
	FixedX string

	// Method, Value and Unit describe a measurement line. Value is
	// in Unit, after normalization by benchunit.Tidy.
	Method string
	Value  float64
	Unit   string
}

// An Assignment sets one context dimension.
type Assignment struct {
	Dim   string
	Value string
}

// Classify classifies a single line of a log in family f.
//
// Lines that no rule recognizes are KindIgnored. A line recognized by
// a rule whose numeric payload does not parse is an error wrapping
// ErrMalformedNumber, and a captured method label outside f's
// vocabulary is an error wrapping ErrUnknownMethod.
func (f *Family) Classify(line string) (Line, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Line{}, nil
	}
	for _, r := range f.Rules {
		if r.Prefix != "" && !strings.HasPrefix(line, r.Prefix) {
			continue
		}
		var match []int
		if r.re != nil {
			match = r.re.FindStringSubmatchIndex(line)
			if match == nil {
				if r.Prefix != "" {
					return Line{}, fmt.Errorf("%w: line does not match %s", ErrMalformedNumber, r.Match)
				}
				continue
			}
		}
		return f.classify(r, line, match)
	}
	return Line{}, nil
}

func (f *Family) classify(r *Rule, line string, match []int) (Line, error) {
	l := Line{Kind: r.Kind}
	if r.Kind == KindIgnored {
		return l, nil
	}

	var label, valTok, unit string
	haveVal := false
	if match != nil {
		for i, name := range r.re.SubexpNames() {
			if name == "" || match[2*i] < 0 {
				continue
			}
			text := line[match[2*i]:match[2*i+1]]
			switch {
			case name == "method":
				label = text
			case name == "value":
				valTok, haveVal = text, true
			case name == "unit":
				unit = text
			case f.IsX(name):
				if err := l.setX(text); err != nil {
					return Line{}, err
				}
			case f.DimIndex(name) >= 0:
				if err := l.assign(name, text); err != nil {
					return Line{}, err
				}
			}
		}
	} else {
		// The payload is the first token after the prefix.
		fields := strings.Fields(strings.TrimLeft(line[len(r.Prefix):], " \t:="))
		if len(fields) == 0 {
			return Line{}, fmt.Errorf("%w: no value after %q", ErrMalformedNumber, r.Prefix)
		}
		valTok, haveVal = fields[0], true
		if len(fields) > 1 && benchunit.IsUnit(strings.TrimRight(fields[1], ".")) {
			unit = strings.TrimRight(fields[1], ".")
		}
	}
	if r.X != "" && !l.HasX {
		if r.Kind == KindHeader {
			if err := l.setX(r.X); err != nil {
				return Line{}, err
			}
		} else {
			_, text, err := parseValue(r.X)
			if err != nil {
				return Line{}, err
			}
			l.FixedX = text
		}
	}

	if r.Kind == KindHeader {
		if r.re == nil {
			var err error
			if f.IsX(r.Dim) {
				err = l.setX(valTok)
			} else {
				err = l.assign(r.Dim, valTok)
			}
			if err != nil {
				return Line{}, err
			}
		}
		f.sortAssign(l.Assign)
		return l, nil
	}

	// Measurement line.
	if !haveVal {
		return Line{}, fmt.Errorf("%w: no value", ErrMalformedNumber)
	}
	if f.isMissing(valTok) {
		return Line{}, nil
	}
	num, suffix := benchunit.SplitSuffix(valTok)
	if suffix != "" && unit == "" {
		unit = suffix
	}
	v, _, err := parseValue(num)
	if err != nil {
		return Line{}, err
	}
	l.Value, l.Unit = benchunit.Tidy(v, unit)

	switch {
	case r.template:
		label = string(r.re.ExpandString(nil, r.Method, line, match))
		fallthrough
	case r.Method == "":
		if l.Method, err = f.method(label); err != nil {
			return Line{}, err
		}
	default:
		l.Method = r.Method
	}
	f.sortAssign(l.Assign)
	return l, nil
}

func (l *Line) setX(tok string) error {
	_, text, err := parseValue(tok)
	if err != nil {
		return err
	}
	l.X, l.HasX = text, true
	return nil
}

func (l *Line) assign(dim, tok string) error {
	_, text, err := parseValue(tok)
	if err != nil {
		return err
	}
	l.Assign = append(l.Assign, Assignment{dim, text})
	return nil
}

func (f *Family) sortAssign(as []Assignment) {
	sort.SliceStable(as, func(i, j int) bool {
		return f.DimIndex(as[i].Dim) < f.DimIndex(as[j].Dim)
	})
}

// parseValue parses a numeric token, which must be finite and
// non-negative, and returns it with its canonical text.
func parseValue(tok string) (float64, string, error) {
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, "", fmt.Errorf("%w %q", ErrMalformedNumber, tok)
	}
	if v == 0 {
		// Drop the sign of -0.
		v = 0
	}
	return v, strconv.FormatFloat(v, 'f', -1, 64), nil
}
