// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package app

import (
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"

	"golang.org/x/parbench/storage/db"
)

// search serves the points matching the query in the q parameter as
// CSV. See db.DB.Query for the query syntax.
func (a *App) search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	q := r.Form.Get("q")
	if q == "" {
		http.Error(w, "missing q parameter", 400)
		return
	}

	query := a.DB.Query(ctx, q)
	defer query.Close()

	// Fetch the first result before writing any of the response,
	// so a bad query can still be reported as an error.
	more := query.Next()
	if err := query.Err(); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	cw := csv.NewWriter(w)
	cw.Write([]string{"upload", "family", "group", "method", "label", "x", "value", "unit"})
	for ; more; more = query.Next() {
		rec := query.Result()
		cw.Write([]string{
			rec.UploadID, rec.Family, rec.Group, rec.Method, rec.Label,
			strconv.FormatFloat(rec.X, 'f', -1, 64),
			strconv.FormatFloat(rec.Y, 'f', -1, 64),
			rec.Unit,
		})
	}
	cw.Flush()
	if err := query.Err(); err != nil {
		errorf(ctx, "search %q: %v", q, err)
		return
	}
	if err := cw.Error(); err != nil {
		errorf(ctx, "search %q: %v", q, err)
	}
}

// series serves the Series stored as the upload in the id parameter
// as JSON.
func (a *App) series(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.FormValue("id")
	if id == "" {
		http.Error(w, "missing id parameter", 400)
		return
	}
	s, err := a.DB.Series(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	} else if err != nil {
		errorf(ctx, "series %q: %v", id, err)
		http.Error(w, err.Error(), 500)
		return
	}
	s.Family = a.family(s.FamilyName)
	w.Header().Set("Content-Type", "application/json")
	if err := s.WriteJSON(w); err != nil {
		errorf(ctx, "series %q: %v", id, err)
	}
}
