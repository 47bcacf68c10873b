// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"

	"golang.org/x/net/context"

	"golang.org/x/parbench/benchlog"
	"golang.org/x/parbench/benchseries"
	"golang.org/x/parbench/storage/db"
	"golang.org/x/parbench/storage/fs"
)

// upload is the handler for the /upload endpoint. It processes the
// fields of a multipart/form-data POST request, in order:
//
//	family  the log family of the files (required, first)
//	group   the grouping projection (optional)
//	dupes   combine or replace (optional)
//	label   a label for the files that follow (optional, repeatable)
//	file    a log file (one or more)
//
// The logs are folded into one Series, which is stored in the
// database, and the raw files are saved to the filesystem.
func (a *App) upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user := ""
	if a.Auth != nil {
		var err error
		user, err = a.Auth(w, r)
		switch {
		case err == ErrResponseWritten:
			return
		case err != nil:
			errorf(ctx, "%v", err)
			http.Error(w, err.Error(), 500)
			return
		}
	}

	if r.Method != http.MethodPost {
		http.Error(w, "/upload must be called as a POST request", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.maxUploadBytes())

	// We use r.MultipartReader instead of r.ParseForm so that each
	// log streams through the parser into the filesystem.
	mr, err := r.MultipartReader()
	if err != nil {
		errorf(ctx, "%v", err)
		http.Error(w, err.Error(), 500)
		return
	}

	result, err := a.processUpload(ctx, user, mr)
	if err != nil {
		errorf(ctx, "%v", err)
		code := 500
		var tooBig *http.MaxBytesError
		var reqErr *requestError
		switch {
		case errors.As(err, &tooBig):
			code = http.StatusRequestEntityTooLarge
		case errors.As(err, &reqErr):
			code = http.StatusBadRequest
		}
		http.Error(w, err.Error(), code)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		errorf(ctx, "%v", err)
		http.Error(w, err.Error(), 500)
		return
	}
}

// uploadStatus is the response to an /upload POST served as JSON.
type uploadStatus struct {
	// UploadID is the upload ID assigned to the upload.
	UploadID string `json:"uploadid"`
	// FileIDs is the list of file IDs assigned to the files in the upload.
	FileIDs []string `json:"fileids"`
	// Points is the number of points stored.
	Points int `json:"points"`
	// Warnings are the builder's diagnostics.
	Warnings []string `json:"warnings,omitempty"`
}

// A requestError is a problem with the request itself rather than
// with the server.
type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(format string, args ...interface{}) error {
	return &requestError{fmt.Errorf(format, args...)}
}

// processUpload reads the fields of an upload from mr and folds the
// files into a Series. Each file is parsed as it streams into the
// filesystem under an upload ID reserved at the first file. The files
// are committed before the series is stored; on any failure the files
// are abandoned and the reserved upload is deleted.
func (a *App) processUpload(ctx context.Context, user string, mr *multipart.Reader) (_ *uploadStatus, err error) {
	var (
		status  uploadStatus
		fam     *benchlog.Family
		bo      *benchseries.BuilderOptions
		b       *benchseries.Builder
		label   string
		reader  benchlog.Reader
		upload  *db.Upload
		writers []fs.Writer
	)
	defer func() {
		if err == nil {
			return
		}
		for _, fw := range writers {
			fw.CloseWithError(err)
		}
		if upload != nil {
			if derr := a.DB.DeleteUpload(ctx, upload.ID); derr != nil {
				errorf(ctx, "discarding upload %s: %v", upload.ID, derr)
			}
		}
	}()

	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		name := p.FormName()
		if name != "family" && fam == nil {
			return nil, badRequest("field %q before family", name)
		}
		if name == "file" {
			if b == nil {
				if b, err = benchseries.NewBuilder(fam, bo); err != nil {
					return nil, badRequest("%w", err)
				}
				reader.Family = fam
				if upload, err = a.DB.NewUpload(ctx); err != nil {
					return nil, err
				}
			}
			meta := fileMetadata(upload.ID, len(writers), fam.Name, p.FileName(), label, user)
			fw, err := a.newFileWriter(ctx, meta)
			if err != nil {
				return nil, err
			}
			writers = append(writers, fw)
			reader.Reset(io.TeeReader(p, fw), p.FileName(), label)
			if err := b.AddFiles(&reader); err != nil {
				return nil, badRequest("%w", err)
			}
			status.FileIDs = append(status.FileIDs, meta["fileid"])
			continue
		}

		data, err := io.ReadAll(io.LimitReader(p, maxFieldBytes+1))
		if err != nil {
			return nil, err
		}
		if len(data) > maxFieldBytes {
			return nil, badRequest("field %q too long", name)
		}
		switch name {
		case "family":
			if fam != nil {
				return nil, badRequest("duplicate family field")
			}
			if fam = a.family(string(data)); fam == nil {
				return nil, badRequest("unknown family %q", data)
			}
			bo = benchseries.DefaultBuilderOptions(fam)
			bo.Warn = func(format string, args ...interface{}) {
				status.Warnings = append(status.Warnings, fmt.Sprintf(format, args...))
			}
		case "group", "dupes":
			if b != nil {
				return nil, badRequest("field %q after first file", name)
			}
			if name == "group" {
				bo.Group = string(data)
			} else if bo.Dupes, err = benchseries.ParseDupePolicy(string(data)); err != nil {
				return nil, badRequest("%w", err)
			}
		case "label":
			label = string(data)
		default:
			return nil, badRequest("unexpected field %q", name)
		}
	}
	if b == nil {
		return nil, badRequest("no files uploaded")
	}
	s, err := b.Finalize()
	if err != nil {
		return nil, badRequest("%w", err)
	}

	for len(writers) > 0 {
		fw := writers[0]
		writers = writers[1:]
		if err := fw.Close(); err != nil {
			return nil, err
		}
	}
	u, err := a.DB.ReplaceUpload(ctx, upload.ID, s)
	if err != nil {
		return nil, err
	}
	status.UploadID, status.Points = u.ID, u.Points
	return &status, nil
}

// maxFieldBytes bounds the non-file fields of an upload.
const maxFieldBytes = 1 << 10

// newFileWriter creates the file for an uploaded log and writes its
// metadata to it as leading "key: value" lines.
func (a *App) newFileWriter(ctx context.Context, meta map[string]string) (fs.Writer, error) {
	fw, err := a.FS.NewWriter(ctx, fmt.Sprintf("uploads/%s.txt", meta["fileid"]), meta)
	if err != nil {
		return nil, err
	}
	var keys []string
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(fw, "%s: %s\n", k, meta[k]); err != nil {
			fw.CloseWithError(err)
			return nil, err
		}
	}
	return fw, nil
}

// fileMetadata returns the metadata fields associated with an
// uploaded file.
func fileMetadata(uploadid string, filenum int, family, filename, label, user string) map[string]string {
	m := map[string]string{
		"uploadid": uploadid,
		"fileid":   fmt.Sprintf("%s/%d", uploadid, filenum),
		"family":   family,
	}
	if filename != "" {
		m["filename"] = filename
	}
	if label != "" {
		m["label"] = label
	}
	if user != "" {
		m["by"] = user
	}
	return m
}
