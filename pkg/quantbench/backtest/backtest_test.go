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
	"errors"
	"testing"

	"github.com/quantbench/quantbench/testutil"
)

type staticFeed []Candle

func (f staticFeed) Candles(context.Context) ([]Candle, error) {
	return f, nil
}

type failingFeed struct{}

func (failingFeed) Candles(context.Context) ([]Candle, error) {
	return nil, errors.New("connection refused")
}

func TestRunBuyOnLevelCross(t *testing.T) {
	testutil.Run(t, "", func(t *testutil.T) {
		// Synthetic closes climb 10/day from 20200: the level crossover
		// fires once at bar 31 and fills at bar 32's open of 20320.
		doc := `{"rules": [{"when": {"crossover": ["close", 20500]}, "do": {"action": "buy", "size": 2}}]}`

		result, err := Run(context.Background(), []byte(doc), SyntheticFeed{}, 100000)

		t.CheckNoError(err)
		t.CheckDeepEqual(1, result.Trades)
		t.CheckDeepEqual(100000.0, result.InitialCash)
		t.CheckDeepEqual(101740.0, result.FinalValue)
		t.CheckDeepEqual(1740.0, result.PnL)
		t.CheckDeepEqual(0.0, result.MaxDrawdown)
		t.CheckContains("BUY FILLED size=2 price=20320.00", result.Logs)
	})
}

func TestRunSmaCrossRoundTrip(t *testing.T) {
	testutil.Run(t, "", func(t *testutil.T) {
		feed := staticFeed(candlesWithCloses(10, 10, 10, 10, 20, 30, 10, 5))
		doc := `{
			"indicators": [{"id": "slow", "type": "sma", "period": 3}],
			"rules": [
				{"when": {"crossover": ["close", "slow"]}, "do": {"action": "buy"}},
				{"when": {"crossunder": ["close", "slow"]}, "do": {"action": "close"}}
			]
		}`

		result, err := Run(context.Background(), []byte(doc), feed, 100000)

		t.CheckNoError(err)
		// Buy fills at bar 5's open of 30, close fills at bar 7's open of 5.
		t.CheckDeepEqual(2, result.Trades)
		t.CheckDeepEqual(100000.0-25.0, result.FinalValue)
		t.CheckDeepEqual(-25.0, result.PnL)
		t.CheckDeepEqual((100000.0-99975.0)/100000.0*100.0, result.MaxDrawdown)
		t.CheckContains("BUY FILLED size=1 price=30.00", result.Logs)
		t.CheckContains("SELL FILLED size=1 price=5.00", result.Logs)
	})
}

func TestRunRejectsUnaffordableBuys(t *testing.T) {
	testutil.Run(t, "", func(t *testutil.T) {
		feed := staticFeed(candlesWithCloses(20, 20, 20))
		doc := `{"rules": [{"when": {"gt": ["close", 0]}, "do": {"action": "buy"}}]}`

		result, err := Run(context.Background(), []byte(doc), feed, 10)

		t.CheckNoError(err)
		t.CheckDeepEqual(0, result.Trades)
		t.CheckDeepEqual(10.0, result.FinalValue)
		t.CheckDeepEqual(0.0, result.PnL)
		t.CheckContains("BUY REJECTED", result.Logs)
	})
}

func TestRunSkipsLastBarOrders(t *testing.T) {
	testutil.Run(t, "", func(t *testutil.T) {
		feed := staticFeed(candlesWithCloses(10, 20))
		doc := `{"rules": [{"when": {"crossover": ["close", 15]}, "do": {"action": "buy"}}]}`

		result, err := Run(context.Background(), []byte(doc), feed, 100000)

		t.CheckNoError(err)
		t.CheckDeepEqual(0, result.Trades)
		t.CheckDeepEqual("", result.Logs)
	})
}

func TestRunStrategyLogging(t *testing.T) {
	testutil.Run(t, "", func(t *testutil.T) {
		feed := staticFeed(candlesWithCloses(10, 20, 30))
		doc := `{"log": true, "rules": [{"when": {"crossover": ["close", 15]}, "do": {"action": "buy"}}]}`

		result, err := Run(context.Background(), []byte(doc), feed, 100000)

		t.CheckNoError(err)
		t.CheckContains("2023-01-02 BUY signalled", result.Logs)
		t.CheckContains("2023-01-01 close=10.00 position=0 value=100000.00", result.Logs)
		t.CheckContains("2023-01-03 close=30.00 position=1", result.Logs)
	})
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		description string
		doc         string
		feed        Feed
		errContains string
	}{
		{
			description: "invalid document",
			doc:         `{"rules": []}`,
			feed:        SyntheticFeed{},
			errContains: "compiling strategy",
		},
		{
			description: "unknown reference",
			doc:         `{"rules": [{"when": {"gt": ["momentum", 1]}, "do": {"action": "buy"}}]}`,
			feed:        SyntheticFeed{},
			errContains: `unknown operand "momentum"`,
		},
		{
			description: "feed failure",
			doc:         `{"rules": [{"when": {"gt": ["close", 0]}, "do": {"action": "buy"}}]}`,
			feed:        failingFeed{},
			errContains: "loading candles",
		},
		{
			description: "empty feed",
			doc:         `{"rules": [{"when": {"gt": ["close", 0]}, "do": {"action": "buy"}}]}`,
			feed:        staticFeed{},
			errContains: "no candles",
		},
	}
	for _, test := range tests {
		testutil.Run(t, test.description, func(t *testutil.T) {
			_, err := Run(context.Background(), []byte(test.doc), test.feed, 100000)

			t.CheckErrorContains(test.errContains, err)
		})
	}
}

func TestRunDefaultsStartCash(t *testing.T) {
	testutil.Run(t, "", func(t *testutil.T) {
		doc := `{"rules": [{"when": {"lt": ["close", 0]}, "do": {"action": "buy"}}]}`

		result, err := Run(context.Background(), []byte(doc), SyntheticFeed{}, 0)

		t.CheckNoError(err)
		t.CheckDeepEqual(100000.0, result.InitialCash)
		t.CheckDeepEqual(100000.0, result.FinalValue)
	})
}

func TestBrokerShortPosition(t *testing.T) {
	testutil.Run(t, "selling without a position goes short", func(t *testutil.T) {
		b := newBroker(1000)
		log := &runLog{}

		b.place(order{kind: orderSell, size: 2})
		b.processPending(Candle{Open: 50}, log)

		t.CheckDeepEqual(1100.0, b.cash)
		t.CheckDeepEqual(-2.0, b.size)
		t.CheckDeepEqual(1, b.trades)
		// Marked at a lower price, the short gains.
		t.CheckDeepEqual(1020.0, b.value(40))
	})

	testutil.Run(t, "close with no position is a no-op", func(t *testutil.T) {
		b := newBroker(1000)
		log := &runLog{}

		b.place(order{kind: orderClose})
		b.processPending(Candle{Open: 50}, log)

		t.CheckDeepEqual(0, b.trades)
		t.CheckDeepEqual("", log.String())
	})
}
