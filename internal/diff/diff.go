// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diff reports differences between expected and actual
// command output in tests.
package diff

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Diff returns a unified diff from want to got, or "" if they are
// equal. If the diff command is unavailable or fails to produce
// output, Diff quotes both strings instead.
func Diff(want, got string) string {
	if want == got {
		return ""
	}
	cmd := "diff"
	if runtime.GOOS == "plan9" {
		cmd = "/bin/ape/diff"
	}
	if _, err := exec.LookPath(cmd); err != nil {
		return fmt.Sprintf("diff command unavailable\nwant: %q\ngot:  %q", want, got)
	}

	dir, err := os.MkdirTemp("", "diff")
	if err != nil {
		return err.Error()
	}
	defer os.RemoveAll(dir)
	for name, data := range map[string]string{"want": want, "got": got} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0666); err != nil {
			return err.Error()
		}
	}

	c := exec.Command(cmd, "-Nu", "want", "got")
	c.Dir = dir
	// diff exits with a non-zero status when the files differ, so
	// only the output matters.
	data, _ := c.CombinedOutput()
	if len(data) == 0 {
		return fmt.Sprintf("want:\n%s\ngot:\n%s", want, got)
	}
	return string(data)
}
