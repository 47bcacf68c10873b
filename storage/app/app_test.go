// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package app

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/parbench/storage/db/dbtest"
	"golang.org/x/parbench/storage/fs"
)

type testApp struct {
	app *App
	fs  *fs.MemFS
	srv *httptest.Server
}

func (app *testApp) Close() {
	app.srv.Close()
}

// createTestApp returns a testApp with a fresh database and an
// in-memory filesystem, served over HTTP.
func createTestApp(t *testing.T) *testApp {
	t.Helper()
	mfs := fs.NewMemFS()
	app := &App{DB: dbtest.NewDB(t), FS: mfs}
	mux := http.NewServeMux()
	app.RegisterOnMux(mux)
	return &testApp{app, mfs, httptest.NewServer(mux)}
}

// uploadFiles posts the multipart form written by writeForm to
// /upload and returns the response.
func (app *testApp) uploadFiles(t *testing.T, writeForm func(mpw *multipart.Writer)) *http.Response {
	t.Helper()
	pr, pw := io.Pipe()
	mpw := multipart.NewWriter(pw)
	go func() {
		defer pw.Close()
		defer mpw.Close()
		writeForm(mpw)
	}()
	resp, err := http.Post(app.srv.URL+"/upload", mpw.FormDataContentType(), pr)
	if err != nil {
		t.Fatalf("post /upload: %v", err)
	}
	return resp
}

// mustUpload is uploadFiles for a request that should succeed.
func (app *testApp) mustUpload(t *testing.T, writeForm func(mpw *multipart.Writer)) *uploadStatus {
	t.Helper()
	resp := app.uploadFiles(t, writeForm)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading /upload response: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("post /upload: %v\n%s", resp.Status, body)
	}
	var status uploadStatus
	if err := json.Unmarshal(body, &status); err != nil {
		t.Fatalf("decoding /upload response %q: %v", body, err)
	}
	return &status
}

func writeField(t *testing.T, mpw *multipart.Writer, name, value string) {
	if err := mpw.WriteField(name, value); err != nil {
		t.Errorf("WriteField: %v", err)
	}
}

func writeFile(t *testing.T, mpw *multipart.Writer, name, content string) {
	w, err := mpw.CreateFormFile("file", name)
	if err != nil {
		t.Errorf("CreateFormFile: %v", err)
		return
	}
	io.WriteString(w, content)
}
