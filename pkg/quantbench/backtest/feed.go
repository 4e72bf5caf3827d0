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
	"context"
	"time"
)

// Candle is one OHLCV bar.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Feed supplies the candles a backtest runs over.
type Feed interface {
	Candles(ctx context.Context) ([]Candle, error)
}

// SyntheticFeed generates the fixed hundred-day ramp the engine has always
// shipped for strategy demos: daily bars from 2023-01-01 climbing 10 points a
// day.
type SyntheticFeed struct{}

func (SyntheticFeed) Candles(context.Context) ([]Candle, error) {
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]Candle, 100)
	for i := range candles {
		candles[i] = Candle{
			Time:   start.AddDate(0, 0, i),
			Open:   20000 + float64(i)*10,
			High:   20500 + float64(i)*10,
			Low:    19500 + float64(i)*10,
			Close:  20200 + float64(i)*10,
			Volume: 1000,
		}
	}
	return candles, nil
}
