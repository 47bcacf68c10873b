// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchlog

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// A Reader reads measurements from a benchmark log in one family.
//
// Its API is modeled on bufio.Scanner. A Reader retains ownership of
// the Measurement it returns; a caller should copy anything it needs
// to retain.
//
// To construct a new Reader, either call NewReader, or set Family on a
// zeroed Reader and call Reset.
type Reader struct {
	Family *Family

	s        *bufio.Scanner
	err      error // current error, or io.EOF
	stack    *Stack
	fileName string
	label    string
	line     int

	m Measurement
}

// A Measurement is one average or raw sample read from a log.
type Measurement struct {
	// Context is the context in effect when the line was read.
	Context Context

	// X is the x-value in effect when the line was read.
	X float64

	Method string

	// Label is the label of the input file, or "" if the input was
	// not labeled.
	Label string

	Value float64
	Unit  string

	// Average indicates the line was a precomputed average rather
	// than a raw sample.
	Average bool

	// Gen is the header generation of the reader's Stack when the
	// line was read.
	Gen uint64

	fileName string
	line     int
}

// Pos returns the file name and line number of m.
func (m *Measurement) Pos() (fileName string, line int) {
	return m.fileName, m.line
}

// maxLine is the longest line a Reader accepts.
const maxLine = 1 << 20

// NewReader constructs a reader for logs of family fam read from r.
// fileName is used in error messages; it is purely diagnostic.
func NewReader(r io.Reader, fileName string, fam *Family) *Reader {
	reader := &Reader{Family: fam}
	reader.Reset(r, fileName, "")
	return reader
}

// Reset resets the reader to begin reading from a new input with an
// empty context. label is attached to every Measurement read.
func (r *Reader) Reset(ior io.Reader, fileName, label string) {
	r.s = bufio.NewScanner(ior)
	r.s.Buffer(nil, maxLine)
	if fileName == "" {
		fileName = "<unknown>"
	}
	r.err = nil
	if r.stack == nil || r.stack.fam != r.Family {
		r.stack = NewStack(r.Family)
	} else {
		r.stack.Reset()
	}
	r.fileName, r.label = fileName, label
	r.line = 0
	r.m = Measurement{}
}

func (r *Reader) syntaxError(text, msg string, err error) *SyntaxError {
	if msg == "" {
		msg = err.Error()
	}
	return &SyntaxError{r.fileName, r.line, text, msg, err}
}

// Scan advances the reader to the next measurement and reports
// whether one was read. Header lines update the context as they are
// passed. If Scan reaches EOF or an error occurs, it returns false, in
// which case the caller should use the Err method to check for errors.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	for r.s.Scan() {
		r.line++
		text := r.s.Text()
		l, err := r.Family.Classify(text)
		if err != nil {
			r.err = r.syntaxError(text, "", err)
			return false
		}
		if l.Kind == KindIgnored {
			continue
		}
		for _, a := range l.Assign {
			if err := r.stack.Apply(a.Dim, a.Value); err != nil {
				r.err = r.syntaxError(text, "", err)
				return false
			}
		}
		if l.HasX {
			if err := r.stack.SetX(l.X); err != nil {
				r.err = r.syntaxError(text, "", err)
				return false
			}
		}
		if l.Kind == KindHeader {
			r.stack.Mark()
			continue
		}

		ctx, err := r.stack.Current()
		x, ok := r.stack.X()
		if l.FixedX != "" {
			x, _ = strconv.ParseFloat(l.FixedX, 64)
			ok = true
		}
		if err != nil || !ok {
			r.err = r.syntaxError(text, "average/sample line before context established", ErrContextIncomplete)
			return false
		}
		r.m = Measurement{
			Context:  ctx,
			X:        x,
			Method:   l.Method,
			Label:    r.label,
			Value:    l.Value,
			Unit:     l.Unit,
			Average:  l.Kind == KindAverage,
			Gen:      r.stack.Gen(),
			fileName: r.fileName,
			line:     r.line,
		}
		return true
	}
	if err := r.s.Err(); err != nil {
		r.err = fmt.Errorf("%s:%d: %w", r.fileName, r.line, err)
		return false
	}
	r.err = io.EOF
	return false
}

// Result returns the measurement that was just read by Scan. The
// Measurement is overwritten by the next call to Scan.
func (r *Reader) Result() *Measurement {
	return &r.m
}

// Err returns the first error that stopped Scan, if any. If Scan
// stopped because it read the input to completion, or if Scan has not
// yet returned false, Err returns nil.
func (r *Reader) Err() error {
	if r.err == io.EOF {
		return nil
	}
	return r.err
}
