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
	"database/sql"
	"fmt"
)

// resampleIntervals maps feed intervals to date_trunc fields.
var resampleIntervals = map[string]string{
	"1m": "minute",
	"1h": "hour",
	"1d": "day",
}

// PostgresFeed resamples imported futures ticks into candles for a single
// contract.
type PostgresFeed struct {
	DB       *sql.DB
	Table    string
	Contract string
	Interval string
}

func (f PostgresFeed) Candles(ctx context.Context) ([]Candle, error) {
	truncField, ok := resampleIntervals[f.Interval]
	if !ok {
		return nil, fmt.Errorf("unsupported resample interval %q, expected 1m, 1h or 1d", f.Interval)
	}

	// First and last tick per bucket via ordered array_agg, the usual
	// pattern without window functions.
	query := fmt.Sprintf(`SELECT date_trunc($1, tick_time) AS bucket,
		(array_agg(last_price ORDER BY tick_time))[1]::float8 AS open,
		max(last_price)::float8 AS high,
		min(last_price)::float8 AS low,
		(array_agg(last_price ORDER BY tick_time DESC))[1]::float8 AS close,
		COALESCE(sum(volume), 0)::float8 AS volume
	FROM %s
	WHERE contract_code = $2 AND last_price IS NOT NULL AND tick_time IS NOT NULL
	GROUP BY bucket
	ORDER BY bucket`, f.Table)

	rows, err := f.DB.QueryContext(ctx, query, truncField, f.Contract)
	if err != nil {
		return nil, fmt.Errorf("resampling ticks for %q: %w", f.Contract, err)
	}
	defer rows.Close()

	var candles []Candle
	for rows.Next() {
		var c Candle
		if err := rows.Scan(&c.Time, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scanning candle: %w", err)
		}
		candles = append(candles, c)
	}
	return candles, rows.Err()
}
