// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchlog

import (
	"os"
	"strings"
)

// A Files reads measurements from a sequence of log files of one
// family. Each file starts with an empty context.
//
// If AllowLabels is true, entries in Paths may be of the form
// label=path, and every Measurement read from that file carries the
// label. Labels let several runs of the same benchmark, such as a
// threaded and an MPI build, be overlaid as separate lines.
type Files struct {
	// Family is the log format of every file.
	Family *Family

	// Paths is the list of file names to read in.
	Paths []string

	// AllowStdin indicates that the path "-" should be treated as
	// stdin and if the file list is empty, it should be treated
	// as consisting of stdin.
	AllowStdin bool

	// AllowLabels indicates that labels are allowed in Paths.
	AllowLabels bool

	// inputs is the sequence of remaining inputs, or nil if this
	// Files has not started yet.
	inputs []input

	reader  Reader
	file    *os.File
	isStdin bool
	err     error
}

type input struct {
	path    string
	label   string
	isStdin bool
}

func (f *Files) init() {
	f.inputs = []input{}
	if f.AllowStdin && len(f.Paths) == 0 {
		f.inputs = append(f.inputs, input{"-", "", true})
	}
	for _, path := range f.Paths {
		label := ""
		if i := strings.Index(path, "="); f.AllowLabels && i >= 0 {
			label, path = path[:i], path[i+1:]
		}
		isStdin := f.AllowStdin && path == "-"
		f.inputs = append(f.inputs, input{path, label, isStdin})
	}
	f.reader.Family = f.Family
}

// Scan advances to the next measurement in the sequence of files and
// reports whether one was read. The caller should use the Result
// method to get the measurement. If Scan reaches the end of the file
// sequence, or if an error occurs, it returns false. In this case,
// the caller should use the Err method to check for errors.
func (f *Files) Scan() bool {
	if f.err != nil {
		return false
	}
	if f.inputs == nil {
		f.init()
	}

	for {
		if f.file == nil {
			if len(f.inputs) == 0 {
				return false
			}
			inp := f.inputs[0]
			f.inputs = f.inputs[1:]

			if inp.isStdin {
				f.isStdin, f.file = true, os.Stdin
			} else {
				file, err := os.Open(inp.path)
				if err != nil {
					f.err = err
					return false
				}
				f.isStdin, f.file = false, file
			}
			f.reader.Reset(f.file, inp.path, inp.label)
		}

		if f.reader.Scan() {
			return true
		}
		err := f.reader.Err()
		if !f.isStdin {
			f.file.Close()
		}
		f.file = nil
		if err != nil {
			f.err = err
			return false
		}
	}
}

// Result returns the measurement that was just read by Scan.
// See Reader.Result.
func (f *Files) Result() *Measurement {
	return f.reader.Result()
}

// Err returns the error that stopped Scan, if any.
func (f *Files) Err() error {
	return f.err
}
