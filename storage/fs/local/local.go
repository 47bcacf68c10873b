// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package local implements the fs.FS interface using local files.
// Metadata is not stored separately; the caller should ensure that
// files contain all the metadata they need.
package local

import (
	"os"
	"path/filepath"

	"golang.org/x/net/context"
	"golang.org/x/parbench/storage/fs"
)

// impl is an fs.FS backed by local disk.
type impl struct {
	root string
}

// NewFS constructs an FS that writes to the provided directory.
func NewFS(root string) fs.FS {
	return &impl{root}
}

// NewWriter creates a file under the FS root, creating parent
// directories as needed. The file appears at name only once the Writer
// is closed.
func (fs *impl) NewWriter(_ context.Context, name string, _ map[string]string) (fs.Writer, error) {
	path := filepath.Join(fs.root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0777); err != nil {
		return nil, err
	}
	// Write to a temporary file so a failed write never leaves a
	// truncated file at path.
	f, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path))
	if err != nil {
		return nil, err
	}
	return &wrapper{f, path}, nil
}

type wrapper struct {
	*os.File
	path string
}

// Close closes the file and moves it into place.
func (w *wrapper) Close() error {
	if err := w.File.Close(); err != nil {
		os.Remove(w.File.Name())
		return err
	}
	if err := os.Rename(w.File.Name(), w.path); err != nil {
		os.Remove(w.File.Name())
		return err
	}
	return nil
}

// CloseWithError closes the file and attempts to unlink it.
func (w *wrapper) CloseWithError(error) error {
	w.File.Close()
	return os.Remove(w.File.Name())
}
