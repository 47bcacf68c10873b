// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchlog

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// A Family describes the log format of one benchmark harness: the
// dimensions that make up a measurement's context, the x-axis
// dimension, the vocabulary of method labels, and the ordered rules
// that classify lines.
//
// Families are normally loaded from YAML with LoadFamilies or taken
// from the built-in set with Builtin. A Family must not be modified
// after it has been loaded.
type Family struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	// Dims is the context schema, outermost first. Setting a
	// dimension clears every dimension after it.
	Dims []Dim `yaml:"dims,omitempty"`

	// X is the independent variable of the family's series.
	X Axis `yaml:"x"`

	// Methods is the complete vocabulary of method labels, in
	// display order.
	Methods []string `yaml:"methods"`

	// Labels maps free text captured by a rule onto Methods.
	// Captured text that is already in Methods needs no entry.
	Labels map[string]string `yaml:"labels,omitempty"`

	// Missing lists payload tokens that mean "no value", such as
	// "N/A". Measurement lines with such a payload are ignored.
	Missing []string `yaml:"missing,omitempty"`

	// Group is the default grouping projection: a comma-separated
	// list of dimension names.
	Group string `yaml:"group,omitempty"`

	Rules []*Rule `yaml:"rules"`

	Chart ChartHints `yaml:"chart,omitempty"`

	dimIndex    map[string]int
	methodIndex map[string]int

	mu       sync.Mutex
	interned map[string]*ctxNode
}

// A Dim is one dimension of a family's context schema.
type Dim struct {
	Name string `yaml:"name"`

	// Scope indicates that setting this dimension starts a new
	// scope and also clears the x-value.
	Scope bool `yaml:"scope,omitempty"`
}

// An Axis names the x-axis dimension of a family.
type Axis struct {
	Name  string `yaml:"name"`
	Label string `yaml:"label,omitempty"`
}

// ChartHints carries presentation defaults for a family.
type ChartHints struct {
	Title  string `yaml:"title,omitempty"`
	XLabel string `yaml:"xlabel,omitempty"`
	YLabel string `yaml:"ylabel,omitempty"`

	// Baselines are methods drawn as horizontal reference lines
	// rather than as series.
	Baselines []string `yaml:"baselines,omitempty"`

	LogX bool `yaml:"logx,omitempty"`
}

// A Kind is the classification of a log line.
type Kind int

const (
	KindIgnored Kind = iota
	KindHeader
	KindAverage
	KindSample
)

var kindNames = [...]string{"ignore", "header", "average", "sample"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

func (k *Kind) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	for i, name := range kindNames {
		if name == s {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("line %d: unknown rule kind %q", n.Line, s)
}

// A Rule recognizes one kind of log line.
//
// A rule with only Prefix applies to lines starting with Prefix, and
// its payload is the first token after the prefix. A rule with only
// Match applies to lines matching the regular expression. A rule
// with both applies to lines starting with Prefix, and the line is
// malformed if Match then fails.
//
// Named groups in Match assign values: a dimension name or "x" (or
// the x-axis name) assign the context, and "method", "value" and
// "unit" fill in the measurement.
type Rule struct {
	Kind   Kind   `yaml:"kind"`
	Prefix string `yaml:"prefix,omitempty"`
	Match  string `yaml:"match,omitempty"`

	// Dim is the dimension (or x-axis) a prefix header assigns.
	Dim string `yaml:"dim,omitempty"`

	// Method is the method of a measurement rule. It may refer to
	// named groups of Match as in regexp.Regexp.Expand, in which
	// case the expansion is mapped through the family's Labels.
	Method string `yaml:"method,omitempty"`

	// X is a fixed x-value for measurements that have no worker
	// count of their own, such as serial baselines.
	X string `yaml:"x,omitempty"`

	re       *regexp.Regexp
	template bool
}

// DimIndex returns the position of dimension name in f's schema,
// or -1.
func (f *Family) DimIndex(name string) int {
	if i, ok := f.dimIndex[name]; ok {
		return i
	}
	return -1
}

// MethodIndex returns the position of method in f's vocabulary,
// or -1.
func (f *Family) MethodIndex(method string) int {
	if i, ok := f.methodIndex[method]; ok {
		return i
	}
	return -1
}

// IsX reports whether name refers to f's x-axis.
func (f *Family) IsX(name string) bool {
	return name == "x" || name == f.X.Name
}

// XLabel returns the x-axis label for display.
func (f *Family) XLabel() string {
	switch {
	case f.Chart.XLabel != "":
		return f.Chart.XLabel
	case f.X.Label != "":
		return f.X.Label
	}
	return f.X.Name
}

var reservedNames = map[string]bool{"x": true, "method": true, "value": true, "unit": true}

func (f *Family) compile() error {
	if f.Name == "" {
		return errors.New("family has no name")
	}
	errorf := func(format string, args ...interface{}) error {
		return fmt.Errorf("family %s: %s", f.Name, fmt.Sprintf(format, args...))
	}

	if f.X.Name == "" {
		return errorf("no x axis")
	}
	if reservedNames[f.X.Name] && f.X.Name != "x" {
		return errorf("x axis name %q is reserved", f.X.Name)
	}
	f.dimIndex = make(map[string]int)
	for i, d := range f.Dims {
		switch {
		case d.Name == "":
			return errorf("dimension %d has no name", i)
		case reservedNames[d.Name]:
			return errorf("dimension name %q is reserved", d.Name)
		case d.Name == f.X.Name:
			return errorf("dimension %q is also the x axis", d.Name)
		}
		if _, ok := f.dimIndex[d.Name]; ok {
			return errorf("duplicate dimension %q", d.Name)
		}
		f.dimIndex[d.Name] = i
	}

	if len(f.Methods) == 0 {
		return errorf("no methods")
	}
	f.methodIndex = make(map[string]int)
	for i, m := range f.Methods {
		if _, ok := f.methodIndex[m]; ok {
			return errorf("duplicate method %q", m)
		}
		f.methodIndex[m] = i
	}
	for label, m := range f.Labels {
		if f.MethodIndex(m) < 0 {
			return errorf("label %q maps to unknown method %q", label, m)
		}
	}
	for _, m := range f.Chart.Baselines {
		if f.MethodIndex(m) < 0 {
			return errorf("unknown baseline method %q", m)
		}
	}
	if f.Group != "" {
		for _, name := range strings.Split(f.Group, ",") {
			if f.DimIndex(strings.TrimSpace(name)) < 0 {
				return errorf("group refers to unknown dimension %q", name)
			}
		}
	}

	for i, r := range f.Rules {
		if err := f.compileRule(r); err != nil {
			return errorf("rule %d: %v", i, err)
		}
	}
	f.interned = make(map[string]*ctxNode)
	return nil
}

func (f *Family) compileRule(r *Rule) error {
	if r.Prefix == "" && r.Match == "" {
		return errors.New("rule needs a prefix or a match")
	}
	r.template = strings.Contains(r.Method, "$")
	groups := make(map[string]bool)
	if r.Match != "" {
		re, err := regexp.Compile(r.Match)
		if err != nil {
			return err
		}
		r.re = re
		for _, name := range re.SubexpNames() {
			if name == "" {
				continue
			}
			if !reservedNames[name] && !f.IsX(name) && f.DimIndex(name) < 0 && !r.template {
				return fmt.Errorf("group %q names no dimension", name)
			}
			groups[name] = true
		}
	} else if r.template {
		return fmt.Errorf("method %q expands groups but rule has no match", r.Method)
	}
	if r.X != "" {
		if _, _, err := parseValue(r.X); err != nil {
			return err
		}
	}

	switch r.Kind {
	case KindIgnored:
		if r.Method != "" || r.Dim != "" || r.X != "" {
			return errors.New("ignore rule assigns values")
		}
	case KindHeader:
		if r.re == nil {
			if !f.IsX(r.Dim) && f.DimIndex(r.Dim) < 0 {
				return fmt.Errorf("header assigns unknown dimension %q", r.Dim)
			}
		} else if len(groups) == 0 && r.X == "" {
			return errors.New("header match assigns nothing")
		}
	case KindAverage, KindSample:
		if r.re != nil && !groups["value"] {
			return errors.New("measurement match has no value group")
		}
		switch {
		case r.template:
		case r.Method != "":
			if f.MethodIndex(r.Method) < 0 {
				return fmt.Errorf("unknown method %q", r.Method)
			}
		case !groups["method"]:
			return errors.New("measurement rule names no method")
		}
	default:
		return fmt.Errorf("bad kind %v", r.Kind)
	}
	return nil
}

// method resolves a captured label to a method of f's vocabulary.
func (f *Family) method(label string) (string, error) {
	if m, ok := f.Labels[label]; ok {
		return m, nil
	}
	if f.MethodIndex(label) >= 0 {
		return label, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownMethod, label)
}

func (f *Family) isMissing(tok string) bool {
	for _, m := range f.Missing {
		if tok == m {
			return true
		}
	}
	return false
}

// LoadFamilies reads a YAML list of families from r and compiles
// them.
func LoadFamilies(r io.Reader) ([]*Family, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var fams []*Family
	if err := dec.Decode(&fams); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decoding families: %w", err)
	}
	seen := make(map[string]bool)
	for _, f := range fams {
		if err := f.compile(); err != nil {
			return nil, err
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("duplicate family %q", f.Name)
		}
		seen[f.Name] = true
	}
	return fams, nil
}

//go:embed builtin.yaml
var builtinYAML string

var builtin struct {
	once   sync.Once
	fams   []*Family
	byName map[string]*Family
}

func loadBuiltin() {
	fams, err := LoadFamilies(strings.NewReader(builtinYAML))
	if err != nil {
		panic("loading built-in families: " + err.Error())
	}
	builtin.fams = fams
	builtin.byName = make(map[string]*Family)
	for _, f := range fams {
		builtin.byName[f.Name] = f
	}
}

// Builtin returns the built-in family with the given name, or nil.
func Builtin(name string) *Family {
	builtin.once.Do(loadBuiltin)
	return builtin.byName[name]
}

// Families returns the built-in families in definition order.
func Families() []*Family {
	builtin.once.Do(loadBuiltin)
	return append([]*Family(nil), builtin.fams...)
}
