// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchseries

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"golang.org/x/net/context"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"golang.org/x/parbench/benchmath"
	"golang.org/x/parbench/storage/fs"
)

// ChartOptions controls Chart.
type ChartOptions struct {
	// Format is the image format: "png", "svg" or "pdf".
	Format string

	Width, Height vg.Length

	// Prefix is prepended to every file name, for example a
	// directory such as "charts/".
	Prefix string

	// LogX forces a logarithmic x axis even if the family does not
	// ask for one.
	LogX bool
}

// DefaultChartOptions are the options used by Chart when given nil.
var DefaultChartOptions = ChartOptions{
	Format: "png",
	Width:  8 * vg.Inch,
	Height: 5 * vg.Inch,
}

// Chart renders one line chart per group of s and writes each to fsys.
// It returns the names of the files written.
func (s *Series) Chart(ctx context.Context, fsys fs.FS, opts *ChartOptions) ([]string, error) {
	if opts == nil {
		opts = &DefaultChartOptions
	}
	var names []string
	for _, g := range s.Groups {
		p, err := s.plotGroup(g, opts.LogX)
		if err != nil {
			return names, err
		}
		wt, err := p.WriterTo(opts.Width, opts.Height, opts.Format)
		if err != nil {
			return names, err
		}

		name := opts.Prefix + s.chartName(g) + "." + opts.Format
		fw, err := fsys.NewWriter(ctx, name, map[string]string{
			"family": s.FamilyName,
			"group":  g.Name,
		})
		if err != nil {
			return names, err
		}
		if _, err := wt.WriteTo(fw); err != nil {
			fw.CloseWithError(err)
			return names, err
		}
		if err := fw.Close(); err != nil {
			return names, err
		}
		names = append(names, name)
	}
	return names, nil
}

// chartName returns a file name for g's chart, such as
// "spmv_m_1000_sparsity_0.5".
func (s *Series) chartName(g *Group) string {
	name := s.FamilyName
	if g.Name != "" {
		name += "_" + g.Name
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-' {
			return r
		}
		return '_'
	}, name)
}

func (s *Series) hints() chartHints {
	h := chartHints{xLabel: s.XName, yLabel: "Time (s)"}
	if f := s.Family; f != nil {
		h.xLabel = f.XLabel()
		if f.Chart.YLabel != "" {
			h.yLabel = f.Chart.YLabel
		}
		h.logX = f.Chart.LogX
		h.baselines = make(map[string]bool)
		for _, m := range f.Chart.Baselines {
			h.baselines[m] = true
		}
	}
	return h
}

type chartHints struct {
	xLabel, yLabel string
	logX           bool
	baselines      map[string]bool
}

func (s *Series) plotGroup(g *Group, logX bool) (*plot.Plot, error) {
	h := s.hints()

	p := plot.New()
	p.Title.Text = s.Title(g)
	p.X.Label.Text = h.xLabel
	p.Y.Label.Text = h.yLabel
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	// The x extent of the non-baseline lines, for drawing baselines.
	xmin, xmax := math.Inf(1), math.Inf(-1)
	for _, l := range g.Lines {
		if h.baselines[l.Method] {
			continue
		}
		for _, pt := range l.Points {
			xmin, xmax = math.Min(xmin, pt.X), math.Max(xmax, pt.X)
		}
	}
	if (h.logX || logX) && xmin > 0 {
		p.X.Scale = plot.LogScale{}
		p.X.Tick.Marker = plot.LogTicks{}
	}

	n := len(g.Lines)
	if n < 3 {
		n = 3
	} else if n > 12 {
		n = 12
	}
	pal, err := brewer.GetPalette(brewer.TypeQualitative, "Paired", n)
	if err != nil {
		return nil, err
	}
	colors := pal.Colors()

	for i, l := range g.Lines {
		c := colors[i%len(colors)]
		if h.baselines[l.Method] && !math.IsInf(xmin, 0) {
			var ys benchmath.Sample
			for _, pt := range l.Points {
				ys.Add(pt.Y)
			}
			y := ys.Mean()
			line, err := plotter.NewLine(plotter.XYs{{X: xmin, Y: y}, {X: xmax, Y: y}})
			if err != nil {
				return nil, err
			}
			line.Color = c
			line.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
			p.Add(line)
			p.Legend.Add(l.Name(), line)
			continue
		}

		xys := make(plotter.XYs, len(l.Points))
		for j, pt := range l.Points {
			xys[j].X, xys[j].Y = pt.X, pt.Y
		}
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", l.Name(), err)
		}
		line.Color = c
		points.Color = c
		points.Shape = draw.CircleGlyph{}
		p.Add(line, points)
		p.Legend.Add(l.Name(), line, points)
	}
	return p, nil
}
