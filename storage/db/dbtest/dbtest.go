// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dbtest opens throwaway databases for tests of the db
// package and its users.
package dbtest

import (
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"flag"
	"fmt"
	"testing"

	_ "github.com/GoogleCloudPlatform/cloudsql-proxy/proxy/dialers/mysql"

	"golang.org/x/parbench/storage/db"
	_ "golang.org/x/parbench/storage/db/sqlite3"
)

var (
	cloud    = flag.Bool("cloud", false, "connect to Cloud SQL database instead of in-memory SQLite")
	cloudsql = flag.String("cloudsql", "golang-org:us-central1:parbench", "name of Cloud SQL instance to run tests on")
)

// createEmptyCloudDB creates a database with a random name on the
// Cloud SQL instance and returns its DSN and a func that drops it.
func createEmptyCloudDB(t *testing.T) (dsn string, drop func()) {
	t.Helper()
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		t.Fatal(err)
	}
	name := "parbench-test-" + base64.RawURLEncoding.EncodeToString(buf)
	prefix := fmt.Sprintf("root:@cloudsql(%s)/", *cloudsql)

	conn, err := sql.Open("mysql", prefix)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Exec(fmt.Sprintf("CREATE DATABASE `%s`", name)); err != nil {
		conn.Close()
		t.Fatal(err)
	}
	t.Logf("Using database %q", name)

	return prefix + name, func() {
		if _, err := conn.Exec(fmt.Sprintf("DROP DATABASE `%s`", name)); err != nil {
			t.Error(err)
		}
		conn.Close()
	}
}

// NewDB opens an empty testing database: in-memory sqlite3 by
// default, or a fresh Cloud SQL database with -cloud. The database is
// closed (and dropped) when the test finishes.
func NewDB(t *testing.T) *db.DB {
	t.Helper()
	driverName, dataSourceName := "sqlite3", ":memory:"
	if *cloud {
		var drop func()
		driverName = "mysql"
		dataSourceName, drop = createEmptyCloudDB(t)
		t.Cleanup(drop)
	}
	d, err := db.OpenSQL(driverName, dataSourceName)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	// Cleanups run last-in first-out, so d closes before the drop.
	t.Cleanup(func() { d.Close() })

	uploads, err := d.CountUploads()
	if err != nil {
		t.Fatal(err)
	}
	if uploads != 0 {
		t.Fatalf("found %d row(s) in Uploads, want 0", uploads)
	}
	return d
}
