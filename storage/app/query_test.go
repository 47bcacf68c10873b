// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package app

import (
	"encoding/csv"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"

	"golang.org/x/parbench/benchlog"
	"golang.org/x/parbench/benchseries"
)

func TestSearch(t *testing.T) {
	app := createTestApp(t)
	defer app.Close()

	status := app.mustUpload(t, func(mpw *multipart.Writer) {
		writeField(t, mpw, "family", "polymul")
		writeField(t, mpw, "label", "OMP")
		writeFile(t, mpw, "omp.log", ompLog)
		writeField(t, mpw, "label", "MPI")
		writeFile(t, mpw, "mpi.log", mpiLog)
	})
	id := status.UploadID

	for _, test := range []struct {
		q    string
		want [][]string
	}{
		{"label:MPI", [][]string{
			{id, "polymul", "degree:1000", "Parallel", "MPI", "2", "0.625", ""},
		}},
		{"degree:1000 method:Parallel label:OMP", [][]string{
			{id, "polymul", "degree:1000", "Parallel", "OMP", "2", "0.5", ""},
			{id, "polymul", "degree:1000", "Parallel", "OMP", "4", "0.3", ""},
		}},
		{"degree:2000", nil},
	} {
		t.Run(test.q, func(t *testing.T) {
			resp, err := http.Get(app.srv.URL + "/search?" + url.Values{"q": {test.q}}.Encode())
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != 200 {
				t.Fatalf("get /search: %v", resp.Status)
			}
			records, err := csv.NewReader(resp.Body).ReadAll()
			if err != nil {
				t.Fatal(err)
			}
			want := append([][]string{{"upload", "family", "group", "method", "label", "x", "value", "unit"}}, test.want...)
			if diff := cmp.Diff(want, records); diff != "" {
				t.Errorf("search results differ (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSeries(t *testing.T) {
	app := createTestApp(t)
	defer app.Close()

	status := app.mustUpload(t, func(mpw *multipart.Writer) {
		writeField(t, mpw, "family", "polymul")
		writeFile(t, mpw, "mpi.log", mpiLog)
	})

	resp, err := http.Get(app.srv.URL + "/series?id=" + url.QueryEscape(status.UploadID))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("get /series: %v", resp.Status)
	}
	s, err := benchseries.ReadJSON(resp.Body, benchlog.Builtin)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]map[string][]benchseries.Point{
		"degree:1000": {"Parallel": {{X: 2, Y: 0.625}}},
	}
	if diff := cmp.Diff(want, s.Map()); diff != "" {
		t.Errorf("series differs (-want +got):\n%s", diff)
	}
}

func TestQueryErrors(t *testing.T) {
	app := createTestApp(t)
	defer app.Close()

	for _, test := range []struct {
		path string
		code int
	}{
		{"/search", 400},
		{"/search?q=bogus", 400},
		{"/series", 400},
		{"/series?id=19700101.1", 404},
	} {
		resp, err := http.Get(app.srv.URL + test.path)
		if err != nil {
			t.Fatal(err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode != test.code {
			t.Errorf("get %s: %v, want %d", test.path, resp.Status, test.code)
		}
	}
}
