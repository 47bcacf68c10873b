// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchproc

import (
	"reflect"
	"testing"
)

func TestNonSingularFields(t *testing.T) {
	f := testFamily(t)
	s := (&ProjectionParser{Family: f}).Residue()

	var keys []Key
	check := func(want ...string) {
		t.Helper()
		got := NonSingularFields(keys)
		var gots []string
		for _, f := range got {
			gots = append(gots, f.Name)
		}
		if !reflect.DeepEqual(want, gots) {
			t.Errorf("want %v, got %v", want, gots)
		}
	}

	keys = []Key{}
	check()

	keys = []Key{
		s.Project(ctx(t, f, "1", "1", "1")),
	}
	check()

	keys = []Key{
		s.Project(ctx(t, f, "1", "1", "1")),
		s.Project(ctx(t, f, "1", "1", "1")),
	}
	check()

	keys = []Key{
		s.Project(ctx(t, f, "1", "1", "1")),
		s.Project(ctx(t, f, "2", "1", "1")),
	}
	check("a")

	keys = []Key{
		s.Project(ctx(t, f, "1", "1", "1")),
		s.Project(ctx(t, f, "2", "1", "1")),
		s.Project(ctx(t, f, "1", "1", "2")),
	}
	check("a", "c")
}
