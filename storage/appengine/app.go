// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package appengine contains an AppEngine app serving the series
// storage API, backed by Cloud SQL and Cloud Storage.
package appengine

import (
	"fmt"
	"log"
	"net/http"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"google.golang.org/appengine"
	aelog "google.golang.org/appengine/log"
	"google.golang.org/appengine/user"

	"golang.org/x/parbench/storage/app"
	"golang.org/x/parbench/storage/db"
	"golang.org/x/parbench/storage/fs/gcs"
)

// connectDB returns a DB initialized from the environment variables
// set in app.yaml. CLOUDSQL_CONNECTION_NAME, CLOUDSQL_USER, and
// CLOUDSQL_DATABASE must be set to point to the Cloud SQL instance.
// CLOUDSQL_PASSWORD can be set if needed.
func connectDB() (*db.DB, error) {
	var (
		connectionName = mustGetenv("CLOUDSQL_CONNECTION_NAME")
		user           = mustGetenv("CLOUDSQL_USER")
		password       = os.Getenv("CLOUDSQL_PASSWORD") // may be empty
		dbName         = mustGetenv("CLOUDSQL_DATABASE")
	)

	return db.OpenSQL("mysql", fmt.Sprintf("%s:%s@cloudsql(%s)/%s", user, password, connectionName, dbName))
}

func mustGetenv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Panicf("%s environment variable not set.", k)
	}
	return v
}

// auth requires uploads to come from a signed-in user, redirecting
// anyone else to the login page.
func auth(w http.ResponseWriter, r *http.Request) (string, error) {
	ctx := appengine.NewContext(r)
	u := user.Current(ctx)
	if u != nil {
		return u.Email, nil
	}
	url, err := user.LoginURL(ctx, r.URL.String())
	if err != nil {
		return "", err
	}
	http.Redirect(w, r, url, http.StatusFound)
	return "", app.ErrResponseWritten
}

// appHandler is the default handler, registered to serve "/". It
// creates an App for the request's appengine Context and dispatches
// the request to it. GCS_BUCKET must name the bucket that receives
// uploaded logs.
func appHandler(w http.ResponseWriter, r *http.Request) {
	ctx := appengine.NewContext(r)
	// GCS clients are bound to the request context.
	db, err := connectDB()
	if err != nil {
		aelog.Errorf(ctx, "connectDB: %v", err)
		http.Error(w, err.Error(), 500)
		return
	}
	defer db.Close()

	fs, err := gcs.NewFS(ctx, mustGetenv("GCS_BUCKET"))
	if err != nil {
		aelog.Errorf(ctx, "gcs.NewFS: %v", err)
		http.Error(w, err.Error(), 500)
		return
	}
	mux := http.NewServeMux()
	app := &app.App{DB: db, FS: fs, Auth: auth}
	app.RegisterOnMux(mux)
	mux.ServeHTTP(w, r)
}

func init() {
	http.HandleFunc("/", appHandler)
}
