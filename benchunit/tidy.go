// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchunit manipulates the units attached to timing
// measurements in benchmark logs and formats numbers in those units.
//
// Harness output writes units in many spellings ("seconds", "sec",
// "s", "ms"). Tidy maps all of them onto a small set of base units so
// that values from different harnesses can be averaged together.
package benchunit

import (
	"unicode"
	"unicode/utf8"
)

// Base units.
const (
	Seconds = "sec"
	Ratio   = "x"
)

type tidyEntry struct {
	tidied string
	factor float64
}

// tidyTable maps every accepted spelling of a unit to its base unit
// and scale factor.
var tidyTable = map[string]tidyEntry{
	"seconds": {Seconds, 1},
	"second":  {Seconds, 1},
	"secs":    {Seconds, 1},
	"sec":     {Seconds, 1},
	"s":       {Seconds, 1},
	"ms":      {Seconds, 1e-3},
	"msec":    {Seconds, 1e-3},
	"us":      {Seconds, 1e-6},
	"µs":      {Seconds, 1e-6},
	"usec":    {Seconds, 1e-6},
	"ns":      {Seconds, 1e-9},
	"nsec":    {Seconds, 1e-9},
	"x":       {Ratio, 1},
}

// Tidy normalizes a value with a (possibly pre-scaled) unit into base
// units. For example, a value in "ms" is re-scaled to "sec". It
// returns the re-scaled value and its new unit. Units Tidy does not
// recognize are returned unchanged.
func Tidy(value float64, unit string) (tidiedValue float64, tidiedUnit string) {
	e, ok := tidyTable[unit]
	if !ok {
		return value, unit
	}
	return value * e.factor, e.tidied
}

// IsUnit reports whether word is a unit spelling Tidy recognizes.
func IsUnit(word string) bool {
	_, ok := tidyTable[word]
	return ok
}

// SplitSuffix splits a token such as "3.20x" or "0.5s" into its
// numeric part and a recognized unit suffix. If tok has no recognized
// suffix, SplitSuffix returns tok and "".
func SplitSuffix(tok string) (num, unit string) {
	i := len(tok)
	for i > 0 {
		r, n := utf8.DecodeLastRuneInString(tok[:i])
		if !unicode.IsLetter(r) && r != 'µ' {
			break
		}
		i -= n
	}
	if i == 0 || i == len(tok) {
		return tok, ""
	}
	if suffix := tok[i:]; IsUnit(suffix) {
		return tok[:i], suffix
	}
	return tok, ""
}
