// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package parse parses the boolean filter expressions accepted by
// benchproc.NewFilter.
//
// A filter is a sequence of key:value matches combined with AND
// (or juxtaposition), OR, "-" for negation and parentheses. A value
// is a bare word, a double-quoted Go string, or a /regexp/. The form
// key:(v1 OR v2) matches any of the listed values. "*" matches
// everything.
package parse
