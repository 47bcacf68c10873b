// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchproc

import "strings"

// A Key is the tuple of values a Projection extracts from a context.
// Keys are interned per Projection, so == compares them by value.
type Key struct {
	k *keyNode
}

type keyNode struct {
	proj *Projection
	vals []string // by Field.idx
}

// IsZero reports whether k is the zero Key, which belongs to no
// Projection.
func (k Key) IsZero() bool {
	return k.k == nil
}

// Get returns the value of field f in k. f must be a field of k's
// Projection.
func (k Key) Get(f *Field) string {
	switch {
	case k.IsZero():
		panic("Get on zero Key")
	case f.proj != k.k.proj:
		panic("field " + f.Name + " is not part of the Key's projection")
	}
	return k.k.vals[f.idx]
}

// Projection returns the Projection that produced k, or nil for the
// zero Key.
func (k Key) Projection() *Projection {
	if k.IsZero() {
		return nil
	}
	return k.k.proj
}

// String formats k as space-separated "name:value" pairs, omitting
// empty values. This is the display name of a series group.
func (k Key) String() string {
	return k.join(true)
}

// StringValues is like String but omits the field names.
func (k Key) StringValues() string {
	return k.join(false)
}

func (k Key) join(names bool) string {
	if k.IsZero() {
		return "<zero>"
	}
	var parts []string
	for _, f := range k.k.proj.fields {
		v := k.k.vals[f.idx]
		switch {
		case v == "":
		case names:
			parts = append(parts, f.Name+":"+v)
		default:
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// projectionOf returns the Projection shared by keys, or nil if keys
// is empty. Mixing projections is a programming error.
func projectionOf(keys []Key) *Projection {
	if len(keys) == 0 {
		return nil
	}
	p := keys[0].Projection()
	for _, k := range keys[1:] {
		if k.Projection() != p {
			panic("keys from different projections")
		}
	}
	return p
}
