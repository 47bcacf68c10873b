// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchproc

// NonSingularFields returns the fields on which keys do not all agree,
// in projection order.
//
// Applied to the residue keys of the contexts folded into one point,
// it names the dimensions that grouping discarded.
func NonSingularFields(keys []Key) []*Field {
	var out []*Field
	if len(keys) < 2 {
		return out
	}
	for _, f := range projectionOf(keys).fields {
		first := keys[0].Get(f)
		for _, k := range keys[1:] {
			if k.Get(f) != first {
				out = append(out, f)
				break
			}
		}
	}
	return out
}
