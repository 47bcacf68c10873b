// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchproc

import (
	"strings"
	"testing"

	"golang.org/x/parbench/benchlog"
)

const testFamilyYAML = `
- name: test
  dims: [{name: a}, {name: b}, {name: c}]
  x: {name: w}
  methods: [M]
`

func testFamily(t *testing.T) *benchlog.Family {
	t.Helper()
	fams, err := benchlog.LoadFamilies(strings.NewReader(testFamilyYAML))
	if err != nil {
		t.Fatal(err)
	}
	return fams[0]
}

// ctx returns the Context with dimensions a, b, c set to vals.
func ctx(t *testing.T, f *benchlog.Family, a, b, c string) benchlog.Context {
	t.Helper()
	s := benchlog.NewStack(f)
	for _, kv := range [][2]string{{"a", a}, {"b", b}, {"c", c}} {
		if err := s.Apply(kv[0], kv[1]); err != nil {
			t.Fatal(err)
		}
	}
	c2, err := s.Current()
	if err != nil {
		t.Fatal(err)
	}
	return c2
}

func mustParse(t *testing.T, pp *ProjectionParser, proj string) *Projection {
	t.Helper()
	s, err := pp.Parse(proj)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func TestProjection(t *testing.T) {
	f := testFamily(t)
	pp := &ProjectionParser{Family: f}
	s := mustParse(t, pp, "b, a")

	k1 := s.Project(ctx(t, f, "1", "2", "3"))
	k2 := s.Project(ctx(t, f, "1", "2", "4"))
	k3 := s.Project(ctx(t, f, "5", "2", "3"))
	if k1 != k2 {
		t.Errorf("keys differing only in c are not ==")
	}
	if k1 == k3 {
		t.Errorf("keys differing in a are ==")
	}
	if got, want := k3.String(), "b:2 a:5"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := k3.StringValues(), "2 5"; got != want {
		t.Errorf("StringValues() = %q, want %q", got, want)
	}
	if got := k3.Get(s.Fields()[1]); got != "5" {
		t.Errorf("Get(a) = %q, want %q", got, "5")
	}

	res := pp.Residue()
	if len(res.Fields()) != 1 || res.Fields()[0].Name != "c" {
		t.Errorf("residue fields %v, want [c]", res.Fields())
	}
}

func TestProjectionEmpty(t *testing.T) {
	f := testFamily(t)
	s := mustParse(t, &ProjectionParser{Family: f}, "")
	k1 := s.Project(ctx(t, f, "1", "2", "3"))
	k2 := s.Project(ctx(t, f, "4", "5", "6"))
	if k1 != k2 || k1.IsZero() {
		t.Errorf("empty projection: got distinct or zero keys %v, %v", k1, k2)
	}
	if k1.String() != "" {
		t.Errorf("empty projection: String() = %q, want empty", k1)
	}
}

func TestProjectionErrors(t *testing.T) {
	f := testFamily(t)
	for _, test := range []struct {
		proj, want string
	}{
		{"a,", "missing dimension name"},
		{"d", `unknown dimension "d"`},
		{"a,a", `projected twice`},
		{"a@random", `unknown order "random"`},
	} {
		pp := &ProjectionParser{Family: f}
		_, err := pp.Parse(test.proj)
		if err == nil {
			t.Errorf("%s: want error containing %q, got nil", test.proj, test.want)
			continue
		}
		if _, ok := err.(*SyntaxError); !ok {
			t.Errorf("%s: want *SyntaxError, got %T", test.proj, err)
		}
		if !strings.Contains(err.Error(), test.want) {
			t.Errorf("%s: got error %q, want it to contain %q", test.proj, err, test.want)
		}
		if len(pp.Residue().Fields()) != 3 {
			t.Errorf("%s: failed parse recorded projected dimensions", test.proj)
		}
	}
}
