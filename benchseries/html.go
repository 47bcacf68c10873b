// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchseries

import (
	"io"

	"github.com/google/safehtml/template"
)

var htmlTemplate = template.Must(template.New("").Parse(`
{{- range .Tables}}
<h2>{{.Title}}</h2>
<table class='benchseries'>
<tr><th>{{.XName}}{{range .Columns}}<th>{{.}}{{end}}
{{range .Rows -}}
<tr><td>{{.X}}{{range .Cells}}<td>{{.}}{{end}}
{{end -}}
</table>
{{end -}}
`))

type htmlTable struct {
	Title   string
	XName   string
	Columns []string
	Rows    []htmlRow
}

type htmlRow struct {
	X     string
	Cells []string
}

// WriteHTML writes s to w as a sequence of HTML tables, one per group,
// laid out like WriteText.
func (s *Series) WriteHTML(w io.Writer) error {
	var data struct{ Tables []htmlTable }
	for _, g := range s.Groups {
		t := s.pivot(g)
		cols := t.Columns()
		ht := htmlTable{Title: s.Title(g), XName: cols[0], Columns: cols[1:]}
		xs := t.MustColumn(cols[0]).([]string)
		for i, x := range xs {
			row := htmlRow{X: x}
			for _, c := range cols[1:] {
				row.Cells = append(row.Cells, t.MustColumn(c).([]string)[i])
			}
			ht.Rows = append(ht.Rows, row)
		}
		data.Tables = append(data.Tables, ht)
	}
	return htmlTemplate.Execute(w, data)
}
