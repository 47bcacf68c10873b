// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchlog

import (
	"errors"
	"fmt"
)

var (
	// ErrContextIncomplete is reported when a measurement line
	// appears before every dimension of its context (or its x-value)
	// has been established by a header line.
	ErrContextIncomplete = errors.New("context incomplete")

	// ErrMalformedNumber is reported when a line is recognized by a
	// rule but its numeric payload cannot be parsed, or is negative
	// or not finite.
	ErrMalformedNumber = errors.New("malformed number")

	// ErrUnknownMethod is reported when a rule captures a method
	// label that is not in the family's vocabulary.
	ErrUnknownMethod = errors.New("unknown method label")

	// ErrEmpty is reported when well-formed input contained no
	// measurements at all.
	ErrEmpty = errors.New("no measurements")
)

// A SyntaxError represents a fatal error on a particular line of a
// benchmark log.
type SyntaxError struct {
	FileName string
	Line     int
	Text     string // the offending line, verbatim
	Msg      string
	Err      error // one of the Err* values, if any
}

func (e *SyntaxError) Pos() (fileName string, line int) {
	return e.FileName, e.Line
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s: %q", e.FileName, e.Line, e.Msg, e.Text)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}
