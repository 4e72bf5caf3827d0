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

// Package backtest interprets declarative strategy documents over OHLCV
// candle feeds. Strategy documents are validated against a JSON Schema, so
// the engine never executes caller-provided code.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/acarl005/stripansi"

	"github.com/quantbench/quantbench/pkg/quantbench/constants"
	"github.com/quantbench/quantbench/pkg/quantbench/output/log"
)

// Result is the outcome of a completed run. MaxDrawdown is the largest
// peak-to-trough value decline, in percent.
type Result struct {
	InitialCash float64
	FinalValue  float64
	PnL         float64
	Logs        string
	Trades      int
	MaxDrawdown float64
}

// Run compiles the strategy document and evaluates it over the feed's
// candles, one bar at a time after indicator warmup.
func Run(ctx context.Context, doc []byte, feed Feed, startCash float64) (*Result, error) {
	strategy, err := ParseStrategy(doc)
	if err != nil {
		return nil, fmt.Errorf("compiling strategy: %w", err)
	}

	candles, err := feed.Candles(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading candles: %w", err)
	}
	if len(candles) == 0 {
		return nil, errors.New("feed returned no candles")
	}

	compiled, err := compile(strategy, candles)
	if err != nil {
		return nil, fmt.Errorf("compiling strategy: %w", err)
	}

	if startCash <= 0 {
		startCash = constants.DefaultStartCash
	}
	log.Entry(ctx).Debugf("running %s over %d candles, warmup %d", strategy.Name, len(candles), compiled.warmup)

	var (
		b           = newBroker(startCash)
		runLog      = &runLog{}
		peak        = startCash
		maxDrawdown float64
	)
	for i := compiled.warmup; i < len(candles); i++ {
		candle := candles[i]
		b.processPending(candle, runLog)

		for _, rule := range compiled.rules {
			if !rule.when(i) {
				continue
			}
			if i == len(candles)-1 {
				// No next bar to fill on.
				continue
			}
			b.place(rule.order())
			if strategy.Log {
				runLog.logf(candle.Time, "%s signalled", strings.ToUpper(rule.do.Action))
			}
		}

		value := b.value(candle.Close)
		if strategy.Log {
			runLog.logf(candle.Time, "close=%.2f position=%g value=%.2f", candle.Close, b.size, value)
		}
		if value > peak {
			peak = value
		}
		if peak > 0 {
			if dd := (peak - value) / peak * 100; dd > maxDrawdown {
				maxDrawdown = dd
			}
		}
	}

	finalValue := b.value(candles[len(candles)-1].Close)
	return &Result{
		InitialCash: startCash,
		FinalValue:  finalValue,
		PnL:         finalValue - startCash,
		Logs:        runLog.String(),
		Trades:      b.trades,
		MaxDrawdown: maxDrawdown,
	}, nil
}

// runLog collects order fills and strategy log lines, standing in for the
// stdout capture of earlier engines. Lines are stripped of ANSI sequences so
// feed-sourced values cannot corrupt the transcript.
type runLog struct {
	sb strings.Builder
}

func (l *runLog) logf(t time.Time, format string, args ...interface{}) {
	fmt.Fprintf(&l.sb, "%s %s\n", t.Format("2006-01-02"), stripansi.Strip(fmt.Sprintf(format, args...)))
}

func (l *runLog) String() string {
	return l.sb.String()
}
