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
)

type orderKind int

const (
	orderBuy orderKind = iota
	orderSell
	orderClose
)

type order struct {
	kind orderKind
	size float64
}

// broker tracks cash and a single net position. Market orders placed during
// a bar fill at the next bar's open.
type broker struct {
	cash    float64
	size    float64
	pending []order
	trades  int
}

func newBroker(cash float64) *broker {
	return &broker{cash: cash}
}

func (b *broker) place(o order) {
	b.pending = append(b.pending, o)
}

// processPending fills the previous bar's orders at this bar's open. Buys the
// cash cannot cover are rejected and logged, not fatal.
func (b *broker) processPending(c Candle, log *runLog) {
	for _, o := range b.pending {
		delta := o.size
		switch o.kind {
		case orderSell:
			delta = -o.size
		case orderClose:
			delta = -b.size
		}
		if delta == 0 {
			continue
		}

		cost := delta * c.Open
		if delta > 0 && cost > b.cash {
			log.logf(c.Time, "BUY REJECTED size=%g price=%.2f cash=%.2f", delta, c.Open, b.cash)
			continue
		}

		b.cash -= cost
		b.size += delta
		b.trades++

		verb := "BUY"
		if delta < 0 {
			verb = "SELL"
		}
		log.logf(c.Time, "%s FILLED size=%g price=%.2f cash=%.2f position=%g", verb, math.Abs(delta), c.Open, b.cash, b.size)
	}
	b.pending = nil
}

// value is cash plus the position marked at price.
func (b *broker) value(price float64) float64 {
	return b.cash + b.size*price
}
