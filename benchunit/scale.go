// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchunit

import (
	"math"
	"strconv"
)

// A Scaler represents a scaling factor for a number and
// its scientific representation.
type Scaler struct {
	Prec   int     // Digits after the decimal point
	Factor float64 // Unscaled value of 1 Prefix (e.g., 1 m => 0.001)
	Prefix string  // Unit prefix ("k", "m", "µ", etc)
}

// Format formats val and appends the unit prefix according to the
// given scale. For example, with a milli scale, Format(0.0123)
// returns "12.30m".
func (s Scaler) Format(val float64) string {
	buf := make([]byte, 0, 20)
	buf = strconv.AppendFloat(buf, val/s.Factor, 'f', s.Prec, 64)
	buf = append(buf, s.Prefix...)
	return string(buf)
}

// NoOpScaler is a Scaler that formats numbers with the smallest
// number of digits necessary to capture the exact value, and no
// prefix. This is intended for when the output will be consumed by
// another program, such as when producing CSV format.
var NoOpScaler = Scaler{-1, 1, ""}

type factor struct {
	factor float64
	prefix string
}

var siFactors = []factor{
	{1e12, "T"},
	{1e9, "G"},
	{1e6, "M"},
	{1e3, "k"},
	{1, ""},
	{1e-3, "m"},
	{1e-6, "µ"},
	{1e-9, "n"},
}

// Rounding thresholds: a scaled value at or above these prints with
// 1, 2, or 3 digits after the decimal point respectively.
const (
	t100 = 99.995
	t10  = 9.9995
	t1   = 0.99995
)

// Scale formats val using at least three significant digits,
// appending an SI prefix.
func Scale(val float64) string {
	return CommonScale([]float64{val}).Format(val)
}

// CommonScale returns a common Scaler to apply to all values in vals.
// This scale will show at least three significant digits for every
// value.
func CommonScale(vals []float64) Scaler {
	// The common scale is determined by the non-zero value
	// closest to zero.
	var min float64
	for _, v := range vals {
		v = math.Abs(v)
		if v != 0 && !math.IsInf(v, 0) && !math.IsNaN(v) && (min == 0 || v < min) {
			min = v
		}
	}
	if min == 0 {
		return Scaler{3, 1, ""}
	}

	for _, f := range siFactors {
		v := min / f.factor
		switch {
		case v >= t100:
			return Scaler{1, f.factor, f.prefix}
		case v >= t10:
			return Scaler{2, f.factor, f.prefix}
		case v >= t1:
			return Scaler{3, f.factor, f.prefix}
		}
	}

	// Smaller than a nanosecond. Use more precision on the
	// smallest factor.
	f := siFactors[len(siFactors)-1]
	prec := 3
	for v := min / f.factor; v < t1 && prec < 12; v *= 10 {
		prec++
	}
	return Scaler{prec, f.factor, f.prefix}
}
