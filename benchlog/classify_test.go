// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchlog

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClassify(t *testing.T) {
	type tc struct {
		family string
		line   string
		want   Line
	}
	header := func(assign ...Assignment) Line {
		return Line{Kind: KindHeader, Assign: assign}
	}
	for _, test := range []tc{
		{"arraystats", "", Line{}},
		{"arraystats", "   ", Line{}},
		{"arraystats", "some diagnostic chatter", Line{}},
		{"arraystats", "Testing size = 8", Line{Kind: KindHeader, X: "8", HasX: true}},
		{"arraystats", "  Testing size = 08  ", Line{Kind: KindHeader, X: "8", HasX: true}},
		{"arraystats", "Initialization average time: 1.5 seconds",
			Line{Kind: KindAverage, Method: "Initialization", Value: 1.5, Unit: "sec"}},
		{"arraystats", "Arrays creation time: 9.9 seconds",
			Line{Kind: KindSample, Method: "Initialization", Value: 9.9, Unit: "sec"}},
		{"arraystats", "Serial computation time: 2s",
			Line{Kind: KindSample, Method: "Serial", Value: 2, Unit: "sec"}},

		{"sync", "Testing iterations = 1000", header(Assignment{"iterations", "1000"})},
		{"sync", "Running: ./sync threads=4 mode=all", Line{Kind: KindHeader, X: "4", HasX: true}},
		{"sync", "Running: ./sync threads = 16", Line{Kind: KindHeader, X: "16", HasX: true}},
		{"sync", "Mutex average time: 0.25 seconds",
			Line{Kind: KindAverage, Method: "Mutex", Value: 0.25, Unit: "sec"}},
		{"sync", "Elapsed time with atomic operations: 0.125 seconds",
			Line{Kind: KindSample, Method: "Atomic", Value: 0.125, Unit: "sec"}},

		{"bank", "| threads | accounts | txns | pct | lock | variant | mean |", Line{}},
		{"bank", "+---------+----------+", Line{}},
		{"bank", "| 4 | 1000 | 100000 | 10 | mutex | coarse | 0.5 |",
			Line{
				Kind:   KindAverage,
				Assign: []Assignment{{"threads", "4"}, {"pct", "10"}, {"txns", "100000"}},
				X:      "1000", HasX: true,
				Method: "mutex (coarse)", Value: 0.5,
			}},

		{"barrier", "pthread_barrier (5.1)  8  1000  0.75",
			Line{
				Kind:   KindAverage,
				Assign: []Assignment{{"iterations", "1000"}},
				X:      "8", HasX: true,
				Method: "pthread_barrier", Value: 0.75,
			}},
		{"barrier", "label threads iterations avg", Line{}},

		{"polymul", "Testing degree = 10000", header(Assignment{"degree", "10000"})},
		{"polymul", "Sequential multiplication average: 2.5 seconds",
			Line{Kind: KindAverage, FixedX: "1", Method: "Sequential", Value: 2.5, Unit: "sec"}},
		{"polymul", "Parallel multiplication with 4 processes average: 0.75 seconds",
			Line{Kind: KindAverage, X: "4", HasX: true, Method: "Parallel", Value: 0.75}},
		{"polymul", "Parallel multiplication with 8 threads took 0.5 seconds",
			Line{Kind: KindSample, X: "8", HasX: true, Method: "Parallel", Value: 0.5}},
		{"polymul", "Send average: 0.125 seconds",
			Line{Kind: KindAverage, Method: "Send", Value: 0.125, Unit: "sec"}},

		{"spmv", "Testing m = 10000 sparsity = 0.99 iterations = 20",
			header(Assignment{"m", "10000"}, Assignment{"sparsity", "0.99"}, Assignment{"iterations", "20"})},
		{"spmv", "Threads = 2", Line{Kind: KindHeader, X: "2", HasX: true}},
		{"spmv", "CSR parallel multiplication average: 0.5 seconds",
			Line{Kind: KindAverage, Method: "CSR parallel multiplication", Value: 0.5}},
		{"spmv", "Serial conversion to CSR in 0.25 seconds",
			Line{Kind: KindSample, Method: "Serial CSR conversion", Value: 0.25, Unit: "sec"}},

		{"mergesort", "Array size  threads  time", Line{}},
		{"mergesort", "----------------------", Line{}},
		{"mergesort", "1000000 4 0.25",
			Line{
				Kind:   KindAverage,
				Assign: []Assignment{{"n", "1000000"}},
				X:      "4", HasX: true,
				Method: "Parallel", Value: 0.25,
			}},
		{"mergesort", "Time of s mergesort algorithm for 1000 ints with 1 threads is 0.5 seconds.",
			Line{
				Kind:   KindSample,
				Assign: []Assignment{{"n", "1000"}},
				X:      "1", HasX: true,
				Method: "Serial", Value: 0.5,
			}},

		{"mpispmv", "Testing N = 1000, Sparsity = 0.9, Iterations = 5",
			header(Assignment{"n", "1000"}, Assignment{"sparsity", "0.9"}, Assignment{"iterations", "5"})},
		{"mpispmv", "MPI Processes = 4", Line{Kind: KindHeader, X: "4", HasX: true}},
		{"mpispmv", "(rank 0) Avg TOTAL CSR Time : 1.25 sec",
			Line{Kind: KindAverage, Method: "CSR total", Value: 1.25}},
		{"mpispmv", "Total Dense Time = 2 sec",
			Line{Kind: KindSample, Method: "Dense total", Value: 2, Unit: "sec"}},

		{"polymul", "Time to send slices: 0.000125 s", Line{}},
		{"polymul", "Total parallel: 0.5 s", Line{}},

		{"simd", "Testing degree = 512", Line{Kind: KindHeader, X: "512", HasX: true}},
		{"simd", "SIMD Avg Time: 0.125 seconds",
			Line{Kind: KindAverage, Method: "SIMD", Value: 0.125, Unit: "sec"}},
		{"simd", "Speedup (Seq/SIMD): 3.25x",
			Line{Kind: KindAverage, Method: "Speedup", Value: 3.25, Unit: "x"}},
		{"simd", "Speedup (Seq/SIMD): N/A", Line{}},
	} {
		f := Builtin(test.family)
		if f == nil {
			t.Fatalf("no built-in family %q", test.family)
		}
		got, err := f.Classify(test.line)
		if err != nil {
			t.Errorf("%s: Classify(%q): unexpected error %v", test.family, test.line, err)
			continue
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("%s: Classify(%q) mismatch (-want +got):\n%s", test.family, test.line, diff)
		}
	}
}

func TestClassifyErrors(t *testing.T) {
	for _, test := range []struct {
		family string
		line   string
		want   error
	}{
		{"arraystats", "Serial average time: abc seconds", ErrMalformedNumber},
		{"arraystats", "Serial average time: -1 seconds", ErrMalformedNumber},
		{"arraystats", "Serial average time: NaN seconds", ErrMalformedNumber},
		{"arraystats", "Serial average time:", ErrMalformedNumber},
		{"arraystats", "Testing size = big", ErrMalformedNumber},
		{"sync", "Running: ./sync", ErrMalformedNumber},
		{"spmv", "Bogus kernel average: 1.0 seconds", ErrUnknownMethod},
		{"mpispmv", "(rank 0) Avg Bogus Time : 1.0 sec", ErrUnknownMethod},
		{"bank", "| 4 | 1000 | 100000 | 10 | spinlock | coarse | 0.5 |", ErrUnknownMethod},
		{"bank", "| 4 | 1000 | 100000 | 10 | mutex | coarse | fast |", ErrMalformedNumber},
		{"simd", "Speedup (Seq/SIMD): Infx", ErrMalformedNumber},
	} {
		_, err := Builtin(test.family).Classify(test.line)
		if !errors.Is(err, test.want) {
			t.Errorf("%s: Classify(%q): got error %v, want %v", test.family, test.line, err, test.want)
		}
	}
}
