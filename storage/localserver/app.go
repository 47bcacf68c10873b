// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Localserver runs the series storage server against a local
// database, for development and for labs without a cloud setup.
package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"golang.org/x/parbench/benchlog"
	"golang.org/x/parbench/storage/app"
	"golang.org/x/parbench/storage/db"
	_ "golang.org/x/parbench/storage/db/sqlite3"
	"golang.org/x/parbench/storage/fs"
	"golang.org/x/parbench/storage/fs/local"
)

var (
	addr     = flag.String("addr", ":8080", "serve HTTP on `address`")
	dbSpec   = flag.String("db", "sqlite3::memory:", "store series in the database `driver:dsn`")
	dir      = flag.String("dir", "", "save uploaded logs under `dir` (default: in memory)")
	families = flag.String("families", "", "accept the families defined in YAML `file` as well as the built-in ones")
)

func main() {
	log.SetPrefix("localserver: ")
	flag.Parse()

	driver, dsn, ok := strings.Cut(*dbSpec, ":")
	if !ok {
		log.Fatalf("-db %q: want driver:dsn", *dbSpec)
	}
	db, err := db.OpenSQL(driver, dsn)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	var store fs.FS = fs.NewMemFS()
	if *dir != "" {
		store = local.NewFS(*dir)
	}

	user := make(map[string]*benchlog.Family)
	if *families != "" {
		f, err := os.Open(*families)
		if err != nil {
			log.Fatal(err)
		}
		fams, err := benchlog.LoadFamilies(f)
		f.Close()
		if err != nil {
			log.Fatalf("%s: %v", *families, err)
		}
		for _, fam := range fams {
			user[fam.Name] = fam
		}
	}

	app := &app.App{
		DB: db,
		FS: store,
		Family: func(name string) *benchlog.Family {
			if f := user[name]; f != nil {
				return f
			}
			return benchlog.Builtin(name)
		},
		Auth: func(http.ResponseWriter, *http.Request) (string, error) { return "", nil },
	}
	app.RegisterOnMux(http.DefaultServeMux)

	log.Printf("Listening on %s", *addr)

	log.Fatal(http.ListenAndServe(*addr, nil))
}
