// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchmath computes summary statistics over repeated
// benchmark measurements.
package benchmath

import (
	"math"

	"github.com/aclements/go-moremath/stats"
)

// A Sample is a set of repeated measurements of one benchmark
// configuration.
type Sample struct {
	// Values are the measured values, in observation order.
	Values []float64
}

// NewSample constructs a Sample from a set of measurements. The
// Sample retains values.
func NewSample(values []float64) *Sample {
	return &Sample{values}
}

// Add appends a measurement to s.
func (s *Sample) Add(v float64) {
	s.Values = append(s.Values, v)
}

// Len returns the number of measurements in s.
func (s *Sample) Len() int {
	return len(s.Values)
}

// Mean returns the arithmetic mean of s, or NaN if s is empty.
func (s *Sample) Mean() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return stats.Sample{Xs: s.Values}.Mean()
}
