/*
Copyright 2026 The Quantbench Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package backtest

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/quantbench/quantbench/testutil"
)

var nan = math.NaN()

func TestSMA(t *testing.T) {
	tests := []struct {
		description string
		values      []float64
		period      int
		expected    []float64
	}{
		{
			description: "period three",
			values:      []float64{1, 2, 3, 4, 5},
			period:      3,
			expected:    []float64{nan, nan, 2, 3, 4},
		},
		{
			description: "period one follows the series",
			values:      []float64{5, 7, 9},
			period:      1,
			expected:    []float64{5, 7, 9},
		},
		{
			description: "period longer than series stays NaN",
			values:      []float64{1, 2},
			period:      5,
			expected:    []float64{nan, nan},
		},
	}
	for _, test := range tests {
		testutil.Run(t, test.description, func(t *testutil.T) {
			t.CheckDeepEqual(test.expected, SMA(test.values, test.period), cmpopts.EquateNaNs())
		})
	}
}

func TestEMA(t *testing.T) {
	testutil.Run(t, "seeded with the first period's SMA", func(t *testutil.T) {
		got := EMA([]float64{1, 2, 3, 4, 5}, 3)

		// seed (1+2+3)/3 = 2, multiplier 0.5
		t.CheckDeepEqual([]float64{nan, nan, 2, 3, 4}, got, cmpopts.EquateNaNs())
	})
}

func TestRSI(t *testing.T) {
	testutil.Run(t, "Wilder smoothing", func(t *testutil.T) {
		got := RSI([]float64{10, 11, 10, 11}, 2)

		t.CheckDeepEqual([]float64{nan, nan, 50, 75}, got, cmpopts.EquateNaNs())
	})

	testutil.Run(t, "only gains pins to one hundred", func(t *testutil.T) {
		got := RSI([]float64{1, 2, 3, 4}, 2)

		t.CheckDeepEqual([]float64{nan, nan, 100, 100}, got, cmpopts.EquateNaNs())
	})
}

func TestCrossedOver(t *testing.T) {
	at := func(values []float64) func(int) float64 {
		return func(i int) float64 { return values[i] }
	}

	tests := []struct {
		description string
		a           []float64
		b           []float64
		i           int
		expected    bool
	}{
		{
			description: "a crosses above b",
			a:           []float64{1, 3},
			b:           []float64{2, 2},
			i:           1,
			expected:    true,
		},
		{
			description: "touch then rise counts",
			a:           []float64{2, 3},
			b:           []float64{2, 2},
			i:           1,
			expected:    true,
		},
		{
			description: "already above is not a cross",
			a:           []float64{3, 4},
			b:           []float64{2, 2},
			i:           1,
		},
		{
			description: "first bar has no previous",
			a:           []float64{1, 3},
			b:           []float64{2, 2},
			i:           0,
		},
		{
			description: "NaN on the previous bar",
			a:           []float64{nan, 3},
			b:           []float64{2, 2},
			i:           1,
		},
	}
	for _, test := range tests {
		testutil.Run(t, test.description, func(t *testutil.T) {
			t.CheckDeepEqual(test.expected, crossedOver(at(test.a), at(test.b), test.i))
		})
	}
}
