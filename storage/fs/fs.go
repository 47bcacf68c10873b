// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fs provides a backend-agnostic filesystem layer for storing
// rendered benchmark charts and reports.
package fs

import (
	"io"
	"sort"
	"sync"

	"golang.org/x/net/context"
)

// An FS stores output files.
type FS interface {
	// NewWriter returns a Writer for a given file name.
	// When the Writer is closed, the file will be stored with the
	// given metadata and the data written to the writer.
	NewWriter(ctx context.Context, name string, metadata map[string]string) (Writer, error)
}

// A Writer is an io.Writer that can also be closed with an error.
type Writer interface {
	io.WriteCloser
	// CloseWithError cancels the writing of the file, removing
	// any partially written data.
	CloseWithError(error) error
}

// MemFS is an in-memory filesystem implementing the FS interface.
type MemFS struct {
	mu      sync.Mutex
	content map[string]*MemFile
}

// NewMemFS constructs a new, empty MemFS.
func NewMemFS() *MemFS {
	return &MemFS{
		content: make(map[string]*MemFile),
	}
}

// NewWriter returns a Writer for a given file name. As a side effect,
// it associates the given metadata with the file.
func (fs *MemFS) NewWriter(_ context.Context, name string, metadata map[string]string) (Writer, error) {
	meta := make(map[string]string)
	for k, v := range metadata {
		meta[k] = v
	}
	return &memWriter{fs: fs, f: &MemFile{Name: name, Metadata: meta}}, nil
}

// Files returns the names of the files written to fs, in sorted order.
func (fs *MemFS) Files() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	var files []string
	for f := range fs.content {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// File returns the named file, or nil if it was never closed
// successfully.
func (fs *MemFS) File(name string) *MemFile {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.content[name]
}

// A MemFile is a file stored in a MemFS.
type MemFile struct {
	Name     string
	Metadata map[string]string
	Content  []byte
}

type memWriter struct {
	fs *MemFS
	f  *MemFile
}

func (w *memWriter) Write(p []byte) (int, error) {
	w.f.Content = append(w.f.Content, p...)
	return len(p), nil
}

func (w *memWriter) Close() error {
	w.fs.mu.Lock()
	defer w.fs.mu.Unlock()
	w.fs.content[w.f.Name] = w.f
	return nil
}

func (w *memWriter) CloseWithError(error) error {
	return nil
}
