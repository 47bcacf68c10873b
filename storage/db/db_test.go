// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"golang.org/x/parbench/benchseries"
	. "golang.org/x/parbench/storage/db"
	"golang.org/x/parbench/storage/db/dbtest"
)

func TestSplitQueryWords(t *testing.T) {
	for _, test := range []struct {
		q    string
		want []string
	}{
		{"hello world", []string{"hello", "world"}},
		{"hello\\ world", []string{"hello world"}},
		{`"key:value two" and\ more`, []string{"key:value two", "and more"}},
		{`one" two"\ three four`, []string{"one two three", "four"}},
		{`"4'7\""`, []string{`4'7"`}},
	} {
		have := SplitQueryWords(test.q)
		if !reflect.DeepEqual(have, test.want) {
			t.Errorf("splitQueryWords(%q) = %+v, want %+v", test.q, have, test.want)
		}
	}
}

// syncSeries returns a small two-group series of the sync family.
func syncSeries() *benchseries.Series {
	return &benchseries.Series{
		FamilyName: "sync",
		XName:      "threads",
		GroupBy:    []string{"iterations"},
		Groups: []*benchseries.Group{
			{
				Name:   "iterations:1000",
				Values: []string{"1000"},
				Lines: []*benchseries.Line{
					{Method: "Mutex", Unit: "sec", Points: []benchseries.Point{{X: 2, Y: 0.5}, {X: 4, Y: 0.25}}},
					{Method: "Atomic", Unit: "sec", Points: []benchseries.Point{{X: 2, Y: 0.125}}},
				},
			},
			{
				Name:   "iterations:2000",
				Values: []string{"2000"},
				Lines: []*benchseries.Line{
					{Method: "Mutex", Label: "OMP", Unit: "sec", Points: []benchseries.Point{{X: 2, Y: 1}}},
				},
			},
		},
	}
}

// arraySeries returns a single-group series with no grouping.
func arraySeries() *benchseries.Series {
	return &benchseries.Series{
		FamilyName: "arraystats",
		XName:      "size",
		Groups: []*benchseries.Group{{
			Lines: []*benchseries.Line{
				{Method: "Serial", Unit: "sec", Points: []benchseries.Point{{X: 8, Y: 3}, {X: 16, Y: 6}}},
			},
		}},
	}
}

var ignoreKey = cmpopts.IgnoreFields(benchseries.Group{}, "Key")

func checkSeries(t *testing.T, d *DB, id string, want *benchseries.Series) {
	t.Helper()
	got, err := d.Series(context.Background(), id)
	if err != nil {
		t.Fatalf("Series(%q): %v", id, err)
	}
	if diff := cmp.Diff(want, got, ignoreKey); diff != "" {
		t.Errorf("Series(%q) differs (-want +got):\n%s", id, diff)
	}
}

// TestUploadIDs verifies that InsertSeries generates the correct sequence of upload IDs.
func TestUploadIDs(t *testing.T) {
	ctx := context.Background()
	d := dbtest.NewDB(t)
	defer SetNow(time.Time{})

	tests := []struct {
		sec int64
		id  string
	}{
		{0, "19700101.1"},
		{0, "19700101.2"},
		{86400, "19700102.1"},
		{86400, "19700102.2"},
		{86400, "19700102.3"},
		{86400, "19700102.4"},
		{86400, "19700102.5"},
		{86400, "19700102.6"},
		{86400, "19700102.7"},
		{86400, "19700102.8"},
		{86400, "19700102.9"},
		{86400, "19700102.10"},
		{86400, "19700102.11"},
	}
	for _, test := range tests {
		SetNow(time.Unix(test.sec, 0))
		u, err := d.InsertSeries(ctx, arraySeries())
		if err != nil {
			t.Fatalf("InsertSeries: %v", err)
		}
		if u.ID != test.id {
			t.Fatalf("u.ID = %q, want %q", u.ID, test.id)
		}
	}
	n, err := d.CountUploads()
	if err != nil {
		t.Fatal(err)
	}
	if n != len(tests) {
		t.Errorf("CountUploads = %d, want %d", n, len(tests))
	}
}

func TestInsertSeries(t *testing.T) {
	SetNow(time.Unix(0, 0))
	defer SetNow(time.Time{})
	d := dbtest.NewDB(t)
	ctx := context.Background()

	for _, s := range []*benchseries.Series{syncSeries(), arraySeries()} {
		u, err := d.InsertSeries(ctx, s)
		if err != nil {
			t.Fatalf("InsertSeries: %v", err)
		}
		want := 0
		for _, g := range s.Groups {
			for _, l := range g.Lines {
				want += len(l.Points)
			}
		}
		if u.Points != want || u.Family != s.FamilyName {
			t.Errorf("upload = %+v, want %d points of %s", u, want, s.FamilyName)
		}
		checkSeries(t, d, u.ID, s)
	}

	rows, err := DBSQL(d).Query("SELECT UploadID, GroupIdx, Name, Value FROM GroupLabels ORDER BY GroupIdx")
	if err != nil {
		t.Fatalf("sql.Query: %v", err)
	}
	defer rows.Close()
	var got []string
	for rows.Next() {
		var id, name, value string
		var gi int
		if err := rows.Scan(&id, &gi, &name, &value); err != nil {
			t.Fatalf("rows.Scan: %v", err)
		}
		got = append(got, fmt.Sprintf("%s %d %s=%s", id, gi, name, value))
	}
	if err := rows.Err(); err != nil {
		t.Errorf("rows.Err: %v", err)
	}
	want := []string{"19700101.1 0 iterations=1000", "19700101.1 1 iterations=2000"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("group labels differ (-want +got):\n%s", diff)
	}
}

func TestInsertManyPoints(t *testing.T) {
	d := dbtest.NewDB(t)
	ctx := context.Background()

	// More points than fit in one INSERT.
	s := arraySeries()
	l := s.Groups[0].Lines[0]
	l.Points = nil
	for i := 0; i < 1000; i++ {
		l.Points = append(l.Points, benchseries.Point{X: float64(i + 1), Y: float64(i) / 4})
	}
	u, err := d.InsertSeries(ctx, s)
	if err != nil {
		t.Fatalf("InsertSeries: %v", err)
	}
	checkSeries(t, d, u.ID, s)
}

// TestReplaceUpload verifies that replacing an upload discards its old points.
func TestReplaceUpload(t *testing.T) {
	SetNow(time.Unix(0, 0))
	defer SetNow(time.Time{})
	d := dbtest.NewDB(t)
	ctx := context.Background()

	u, err := d.InsertSeries(ctx, syncSeries())
	if err != nil {
		t.Fatalf("InsertSeries: %v", err)
	}
	for _, id := range []string{u.ID, "new"} {
		if _, err := d.ReplaceUpload(ctx, id, arraySeries()); err != nil {
			t.Fatalf("ReplaceUpload(%q): %v", id, err)
		}
		checkSeries(t, d, id, arraySeries())
	}

	ids, err := d.UploadIDs(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	// "new" has no day, so it sorts first.
	if diff := cmp.Diff([]string{"new", "19700101.1"}, ids); diff != "" {
		t.Errorf("UploadIDs differs (-want +got):\n%s", diff)
	}

	// The replaced upload keeps its sequence number.
	u, err = d.InsertSeries(ctx, arraySeries())
	if err != nil {
		t.Fatalf("InsertSeries: %v", err)
	}
	if u.ID != "19700101.2" {
		t.Errorf("u.ID = %q, want %q", u.ID, "19700101.2")
	}

	var n int
	if err := DBSQL(d).QueryRow("SELECT COUNT(*) FROM SeriesPoints").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 6 {
		t.Errorf("found %d points, want 6", n)
	}
}

// TestNewUpload verifies that a reserved upload holds its ID until it
// is filled or discarded.
func TestNewUpload(t *testing.T) {
	SetNow(time.Unix(0, 0))
	defer SetNow(time.Time{})
	d := dbtest.NewDB(t)
	ctx := context.Background()

	reserved, err := d.NewUpload(ctx)
	if err != nil {
		t.Fatalf("NewUpload: %v", err)
	}
	if reserved.ID != "19700101.1" {
		t.Errorf("reserved ID = %q, want %q", reserved.ID, "19700101.1")
	}
	u, err := d.InsertSeries(ctx, arraySeries())
	if err != nil {
		t.Fatalf("InsertSeries: %v", err)
	}
	if u.ID != "19700101.2" {
		t.Errorf("u.ID = %q, want %q", u.ID, "19700101.2")
	}

	if _, err := d.ReplaceUpload(ctx, reserved.ID, syncSeries()); err != nil {
		t.Fatalf("ReplaceUpload: %v", err)
	}
	checkSeries(t, d, reserved.ID, syncSeries())
	ids, err := d.UploadIDs(ctx, "sync")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{reserved.ID}, ids); diff != "" {
		t.Errorf("UploadIDs differs (-want +got):\n%s", diff)
	}

	discarded, err := d.NewUpload(ctx)
	if err != nil {
		t.Fatalf("NewUpload: %v", err)
	}
	if err := d.DeleteUpload(ctx, discarded.ID); err != nil {
		t.Fatalf("DeleteUpload(%q): %v", discarded.ID, err)
	}
	if n, err := d.CountUploads(); err != nil || n != 2 {
		t.Errorf("CountUploads = %d, %v; want 2", n, err)
	}
}

func TestDeleteUpload(t *testing.T) {
	d := dbtest.NewDB(t)
	ctx := context.Background()

	u, err := d.InsertSeries(ctx, syncSeries())
	if err != nil {
		t.Fatalf("InsertSeries: %v", err)
	}
	if err := d.DeleteUpload(ctx, u.ID); err != nil {
		t.Fatalf("DeleteUpload: %v", err)
	}
	if _, err := d.Series(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Series after delete: got %v, want ErrNotFound", err)
	}
	if err := d.DeleteUpload(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteUpload: got %v, want ErrNotFound", err)
	}
	for _, table := range []string{"SeriesPoints", "SeriesLines", "GroupLabels", "SeriesGroups", "Uploads"} {
		var n int
		if err := DBSQL(d).QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			t.Fatal(err)
		}
		if n != 0 {
			t.Errorf("%s has %d rows after delete, want 0", table, n)
		}
	}
}

func TestQuery(t *testing.T) {
	SetNow(time.Unix(0, 0))
	defer SetNow(time.Time{})
	d := dbtest.NewDB(t)
	ctx := context.Background()

	for _, s := range []*benchseries.Series{syncSeries(), arraySeries()} {
		if _, err := d.InsertSeries(ctx, s); err != nil {
			t.Fatalf("InsertSeries: %v", err)
		}
	}

	tests := []struct {
		q    string
		want []string // nil means we want an error
	}{
		{"family:arraystats", []string{"19700101.2 Serial 8 3", "19700101.2 Serial 16 6"}},
		{"iterations:1000 method:Mutex", []string{"19700101.1 Mutex 2 0.5", "19700101.1 Mutex 4 0.25"}},
		{"label:OMP", []string{"19700101.1 OMP Mutex 2 1"}},
		{"upload:19700101.1 iterations:2000", []string{"19700101.1 OMP Mutex 2 1"}},
		{"iterations:1000 iterations:2000", []string{}},
		{"bogus query", nil},
	}
	for _, test := range tests {
		t.Run("query="+test.q, func(t *testing.T) {
			q := d.Query(ctx, test.q)
			defer q.Close()
			if test.want == nil {
				if q.Next() {
					t.Fatal("Next() = true, want false")
				}
				if err := q.Err(); err == nil {
					t.Fatal("Err() = nil, want error")
				}
				return
			}
			got := []string{}
			for q.Next() {
				r := q.Result()
				name := r.Method
				if r.Label != "" {
					name = r.Label + " " + name
				}
				got = append(got, fmt.Sprintf("%s %s %v %v", r.UploadID, name, r.X, r.Y))
			}
			if err := q.Err(); err != nil {
				t.Fatalf("Err() = %v, want nil", err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("results differ (-want +got):\n%s", diff)
			}
		})
	}
}
