// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchseries

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteCSV writes every point of s to w in long form. The header row
// is the grouping dimensions, then "method", the x-axis name, "value"
// and "unit".
func (s *Series) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := append([]string{}, s.GroupBy...)
	header = append(header, "method", s.XName, "value", "unit")
	if err := cw.Write(header); err != nil {
		return err
	}
	row := make([]string, len(header))
	for _, g := range s.Groups {
		copy(row, g.Values)
		for _, l := range g.Lines {
			row[len(s.GroupBy)] = l.Name()
			row[len(s.GroupBy)+3] = l.Unit
			for _, p := range l.Points {
				row[len(s.GroupBy)+1] = strof(p.X)
				row[len(s.GroupBy)+2] = strof(p.Y)
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func strof(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
