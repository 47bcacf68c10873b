// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchproc groups and sorts benchmark measurements by their
// context.
//
// A Projection extracts a subset of the dimensions of a
// benchlog.Context into a Key. Projections are produced by a
// ProjectionParser from expressions such as "m,sparsity@alpha": a
// comma-separated list of dimension names, each optionally followed by
// "@" and a sort order. The orders are "num" (numeric, the default),
// "alpha" (lexical), and "first" (order of first observation).
//
// Keys produced by the same Projection are == exactly when their
// projected values are identical, so they can be used as map keys to
// group measurements. Once grouping is done, SortKeys puts the Keys in
// the order given by the projection expression.
//
// A Filter selects measurements with a boolean query over the same
// dimensions, such as "m:1000 iterations:(5 OR 10)".
package benchproc
