// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package app implements the benchmark series storage server. Combine
// an App with a database and filesystem to get an HTTP server.
package app

import (
	"errors"
	"log"
	"net/http"

	"golang.org/x/net/context"

	"golang.org/x/parbench/benchlog"
	"golang.org/x/parbench/storage/db"
	"golang.org/x/parbench/storage/fs"
)

// App manages the storage server logic. Construct an App instance
// using a literal with DB and FS objects and call RegisterOnMux to
// connect it with an HTTP server.
type App struct {
	DB *db.DB
	FS fs.FS

	// Family resolves a family name given in an upload. If nil,
	// only the built-in families are known.
	Family func(name string) *benchlog.Family

	// Auth obtains the username for the request.
	// If necessary, it can write its own response (e.g. a
	// redirect) and return ErrResponseWritten.
	Auth func(http.ResponseWriter, *http.Request) (string, error)

	// MaxUploadBytes bounds the size of an /upload request body.
	// If zero, DefaultMaxUploadBytes is used.
	MaxUploadBytes int64
}

// DefaultMaxUploadBytes is the default for App.MaxUploadBytes.
const DefaultMaxUploadBytes = 64 << 20

func (a *App) maxUploadBytes() int64 {
	if a.MaxUploadBytes > 0 {
		return a.MaxUploadBytes
	}
	return DefaultMaxUploadBytes
}

// ErrResponseWritten can be returned by App.Auth to abort the normal /upload handling.
var ErrResponseWritten = errors.New("response written")

// RegisterOnMux registers the app's URLs on mux.
func (a *App) RegisterOnMux(mux *http.ServeMux) {
	mux.HandleFunc("/upload", a.upload)
	mux.HandleFunc("/search", a.search)
	mux.HandleFunc("/series", a.series)
}

func (a *App) family(name string) *benchlog.Family {
	if a.Family != nil {
		return a.Family(name)
	}
	return benchlog.Builtin(name)
}

// errorf logs a server-side error.
func errorf(_ context.Context, format string, args ...interface{}) {
	log.Printf(format, args...)
}
