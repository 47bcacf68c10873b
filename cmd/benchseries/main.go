// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Benchseries turns the logs of parallel benchmark harnesses into
// series of timings against threads, processes or problem size, and
// prints, charts or stores them.
//
// Usage:
//
//	benchseries -family name [flags] [label=]log...
//
// Each input is the output of a benchmark harness of the given
// family. If there are no inputs, benchseries reads standard input.
// An input of the form label=path prefixes every method read from
// path with label, so that runs of different builds (for example,
// "OMP=omp.log MPI=mpi.log") appear as separate lines.
//
// Every method yields one value per context and x-value: the
// harness's own average if it printed one, and otherwise the mean of
// the raw timings. Series are grouped by the family's grouping
// dimensions unless -group says otherwise.
//
// The -format flag selects the output on standard output: text (a
// table per group), csv, table (every point in long form), html or
// json. -o and -gcs write one chart per group to a local directory or
// a Google Cloud Storage bucket. -db stores the series in a database
// given as driver:dsn, where driver is sqlite3 or mysql.
//
// Use -list to print the known families.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"golang.org/x/net/context"
	"gonum.org/v1/plot/vg"

	"golang.org/x/parbench/benchlog"
	"golang.org/x/parbench/benchseries"
	"golang.org/x/parbench/storage/db"
	_ "golang.org/x/parbench/storage/db/sqlite3"
	"golang.org/x/parbench/storage/fs"
	"golang.org/x/parbench/storage/fs/gcs"
	"golang.org/x/parbench/storage/fs/local"
)

func main() {
	log.SetPrefix("benchseries: ")
	log.SetFlags(0)
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

type options struct {
	family   string
	families string
	group    string
	filter   string
	dupes    string
	format   string

	chartDir    string
	chartBucket string
	chartFormat string
	logX        bool

	jsonIn, jsonOut string
	dbSpec          string
	list            bool
}

func (o *options) flags(name string, stderr io.Writer) *flag.FlagSet {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(stderr, "usage: benchseries -family name [options] [label=]log...\n")
		fmt.Fprintf(stderr, "options:\n")
		flags.PrintDefaults()
	}
	flags.StringVar(&o.family, "family", "", "log `family` of the inputs (see -list)")
	flags.StringVar(&o.families, "families", "", "read additional family definitions from YAML `file`")
	flags.StringVar(&o.group, "group", "", "group series by these context `dimensions` (default: the family's grouping)")
	flags.StringVar(&o.filter, "filter", "*", "use only measurements matching `query`, e.g. 'm:1000 iterations:(5 OR 10)'")
	flags.StringVar(&o.dupes, "dupes", "combine", "raw samples repeated under a new header: combine or replace")
	flags.StringVar(&o.format, "format", "text", "output `format`: text, csv, table, html, json or none")
	flags.StringVar(&o.chartDir, "o", "", "write one chart per group into `dir`")
	flags.StringVar(&o.chartBucket, "gcs", "", "write one chart per group into GCS `bucket`")
	flags.StringVar(&o.chartFormat, "chart", "png", "chart image `format`: png, svg or pdf")
	flags.BoolVar(&o.logX, "log", false, "use a logarithmic x axis in charts")
	flags.StringVar(&o.jsonIn, "ji", "", "read the series from this JSON `file` instead of logs")
	flags.StringVar(&o.jsonOut, "jo", "", "also save the series as JSON in `file`")
	flags.StringVar(&o.dbSpec, "db", "", "store the series in the database `driver:dsn`")
	flags.BoolVar(&o.list, "list", false, "list the known families and exit")
	return flags
}

// run is the whole command, parameterized for testing.
func run(stdout, stderr io.Writer, args []string) error {
	var o options
	flags := o.flags("benchseries", stderr)
	if err := flags.Parse(args); err != nil {
		return err
	}
	groupSet := false
	flags.Visit(func(f *flag.Flag) {
		if f.Name == "group" {
			groupSet = true
		}
	})

	families, err := loadFamilies(o.families)
	if err != nil {
		return err
	}
	if o.list {
		for _, f := range families.list {
			fmt.Fprintf(stdout, "%-12s %s\n", f.Name, f.Description)
		}
		return nil
	}

	warn := func(format string, args ...interface{}) {
		fmt.Fprintf(stderr, format, args...)
	}

	var s *benchseries.Series
	if o.jsonIn != "" {
		s, err = readJSON(o.jsonIn, families.lookup)
		if err != nil {
			return err
		}
	} else {
		fam := families.lookup(o.family)
		if fam == nil {
			if o.family == "" {
				flags.Usage()
				return fmt.Errorf("missing -family")
			}
			return fmt.Errorf("unknown family %q (see -list)", o.family)
		}
		bo := benchseries.DefaultBuilderOptions(fam)
		if groupSet {
			bo.Group = o.group
		}
		bo.Filter = o.filter
		if bo.Dupes, err = benchseries.ParseDupePolicy(o.dupes); err != nil {
			return err
		}
		bo.Warn = warn
		b, err := benchseries.NewBuilder(fam, bo)
		if err != nil {
			return err
		}
		files := &benchlog.Files{Family: fam, Paths: flags.Args(), AllowStdin: true, AllowLabels: true}
		if err := b.AddFiles(files); err != nil {
			return err
		}
		if s, err = b.Finalize(); err != nil {
			return err
		}
	}

	if err := write(stdout, s, o.format); err != nil {
		return err
	}

	if o.jsonOut != "" {
		if err := writeJSON(o.jsonOut, s); err != nil {
			return err
		}
	}

	ctx := context.Background()
	if o.chartDir != "" || o.chartBucket != "" {
		var sink fs.FS
		if o.chartBucket != "" {
			if sink, err = gcs.NewFS(ctx, o.chartBucket); err != nil {
				return err
			}
		} else {
			sink = local.NewFS(o.chartDir)
		}
		copts := &benchseries.ChartOptions{
			Format: o.chartFormat,
			Width:  8 * vg.Inch,
			Height: 5 * vg.Inch,
			LogX:   o.logX,
		}
		names, err := s.Chart(ctx, sink, copts)
		if err != nil {
			return fmt.Errorf("writing charts: %w", err)
		}
		for _, name := range names {
			fmt.Fprintf(stderr, "wrote %s\n", name)
		}
	}

	if o.dbSpec != "" {
		driver, dsn, ok := strings.Cut(o.dbSpec, ":")
		if !ok {
			return fmt.Errorf("-db %q: want driver:dsn", o.dbSpec)
		}
		d, err := db.OpenSQL(driver, dsn)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer d.Close()
		u, err := d.InsertSeries(ctx, s)
		if err != nil {
			return fmt.Errorf("storing series: %w", err)
		}
		fmt.Fprintf(stderr, "stored %d points as upload %s\n", u.Points, u.ID)
	}
	return nil
}

func write(w io.Writer, s *benchseries.Series, format string) error {
	switch format {
	case "text":
		return s.WriteText(w)
	case "csv":
		return s.WriteCSV(w)
	case "table":
		return s.WriteTable(w)
	case "html":
		if _, err := io.WriteString(w, htmlHeader); err != nil {
			return err
		}
		if err := s.WriteHTML(w); err != nil {
			return err
		}
		_, err := io.WriteString(w, htmlFooter)
		return err
	case "json":
		return s.WriteJSON(w)
	case "none":
		return nil
	}
	return fmt.Errorf("unknown format %q", format)
}

func readJSON(path string, lookup func(string) *benchlog.Family) (*benchseries.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not read JSON input file (flag -ji): %w", err)
	}
	defer f.Close()
	return benchseries.ReadJSON(f, lookup)
}

func writeJSON(path string, s *benchseries.Series) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create JSON output file (flag -jo): %w", err)
	}
	if err := s.WriteJSON(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// familySet is the built-in families overlaid with user-defined ones.
type familySet struct {
	list   []*benchlog.Family
	byName map[string]*benchlog.Family
}

func (set *familySet) lookup(name string) *benchlog.Family {
	return set.byName[name]
}

// loadFamilies returns the built-in families, with the families
// defined in the YAML file path (if any) added or replacing built-ins
// of the same name.
func loadFamilies(path string) (*familySet, error) {
	set := &familySet{byName: make(map[string]*benchlog.Family)}
	add := func(f *benchlog.Family) {
		if old := set.byName[f.Name]; old != nil {
			for i, g := range set.list {
				if g == old {
					set.list[i] = f
				}
			}
		} else {
			set.list = append(set.list, f)
		}
		set.byName[f.Name] = f
	}
	for _, f := range benchlog.Families() {
		add(f)
	}
	if path == "" {
		return set, nil
	}
	r, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	fams, err := benchlog.LoadFamilies(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, f := range fams {
		add(f)
	}
	return set, nil
}

var htmlHeader = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Benchmark Series</title>
<style>
.benchseries { border-collapse: collapse; }
.benchseries th { border-top: 1px solid #666; border-bottom: 1px solid #ccc; }
.benchseries td:nth-child(1n+2) { text-align: right; padding: 0em 1em; }
</style>
</head>
<body>
`
var htmlFooter = `</body>
</html>
`
