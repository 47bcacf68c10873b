// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchunit

import "testing"

func TestTidy(t *testing.T) {
	test := func(unit, tidied string, factor float64) {
		t.Helper()
		gotFactor, got := Tidy(1, unit)
		if got != tidied || gotFactor != factor {
			t.Errorf("for %s, want *%g %s, got *%g %s", unit, factor, tidied, gotFactor, got)
		}
	}

	test("seconds", "sec", 1)
	test("sec", "sec", 1)
	test("s", "sec", 1)
	test("ms", "sec", 1e-3)
	test("us", "sec", 1e-6)
	test("ns", "sec", 1e-9)
	test("x", "x", 1)
	test("", "", 1)
	test("B/op", "B/op", 1)
}

func TestSplitSuffix(t *testing.T) {
	test := func(tok, num, unit string) {
		t.Helper()
		gotNum, gotUnit := SplitSuffix(tok)
		if gotNum != num || gotUnit != unit {
			t.Errorf("SplitSuffix(%q) = %q, %q; want %q, %q", tok, gotNum, gotUnit, num, unit)
		}
	}

	test("3.20x", "3.20", "x")
	test("0.5s", "0.5", "s")
	test("12ms", "12", "ms")
	test("1.5", "1.5", "")
	test("1e5", "1e5", "")
	test("abc", "abc", "")
	test("4.0apples", "4.0apples", "")
	test("", "", "")
}
