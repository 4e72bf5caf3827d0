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

package engine

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	_ "github.com/lib/pq"

	"github.com/quantbench/quantbench/pkg/quantbench/backtest"
	"github.com/quantbench/quantbench/pkg/quantbench/schema/latest"
	"github.com/quantbench/quantbench/pkg/quantbench/util"
	"github.com/quantbench/quantbench/testutil"
)

// levelCrossDoc buys twice the synthetic contract when its close crosses
// 20500, which happens exactly once on the demo feed.
const levelCrossDoc = `{"rules": [{"when": {"crossover": ["close", 20500]}, "do": {"action": "buy", "size": 2}}]}`

func TestRunBacktestEndpoint(t *testing.T) {
	tests := []struct {
		description         string
		rawBody             string
		request             *RunRequest
		expectedStatus      string
		messageContains     string
		expectedTrades      int
		expectedInitialCash float64
		expectedPnL         float64
		logsContain         string
	}{
		{
			description:         "synthetic run",
			request:             &RunRequest{Code: levelCrossDoc, StartCash: 100000},
			expectedStatus:      "success",
			expectedTrades:      1,
			expectedInitialCash: 100000,
			expectedPnL:         1740,
			logsContain:         "BUY FILLED size=2 price=20320.00",
		},
		{
			description:         "start cash defaults when omitted",
			request:             &RunRequest{Code: levelCrossDoc},
			expectedStatus:      "success",
			expectedTrades:      1,
			expectedInitialCash: 100000,
			expectedPnL:         1740,
		},
		{
			description:     "compile errors stay in-band",
			request:         &RunRequest{Code: `{}`},
			expectedStatus:  "error",
			messageContains: "compiling strategy",
		},
		{
			description:     "malformed request body",
			rawBody:         `{"code": `,
			expectedStatus:  "error",
			messageContains: "decoding request",
		},
		{
			description:     "csv feed without a path",
			request:         &RunRequest{Code: levelCrossDoc, Feed: &FeedSpec{Type: "csv"}},
			expectedStatus:  "error",
			messageContains: "csv feed needs a path",
		},
		{
			description:     "unknown feed type",
			request:         &RunRequest{Code: levelCrossDoc, Feed: &FeedSpec{Type: "parquet"}},
			expectedStatus:  "error",
			messageContains: `unknown feed type "parquet"`,
		},
		{
			description:     "postgres feed without a database",
			request:         &RunRequest{Code: levelCrossDoc, Feed: &FeedSpec{Type: "postgres", Contract: "ag2406"}},
			expectedStatus:  "error",
			messageContains: "postgres feed needs a database",
		},
	}
	for _, test := range tests {
		testutil.Run(t, test.description, func(t *testutil.T) {
			body := test.rawBody
			if test.request != nil {
				b, err := json.Marshal(test.request)
				t.RequireNoError(err)
				body = string(b)
			}

			rec := httptest.NewRecorder()
			service := NewService(nil, latest.Pipeline{})
			service.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/run_backtest", strings.NewReader(body)))

			// Failures travel in-band, never as HTTP errors.
			t.CheckDeepEqual(http.StatusOK, rec.Code)

			var result RunResult
			t.RequireNoError(json.NewDecoder(rec.Body).Decode(&result))
			t.CheckDeepEqual(test.expectedStatus, result.Status)
			if test.messageContains != "" {
				t.CheckContains(test.messageContains, result.Message)
			}
			if test.expectedStatus == "success" {
				t.CheckDeepEqual(test.expectedTrades, result.Trades)
				t.CheckDeepEqual(test.expectedInitialCash, result.InitialCash)
				t.CheckDeepEqual(test.expectedPnL, result.PnL)
			}
			if test.logsContain != "" {
				t.CheckContains(test.logsContain, result.Logs)
			}
		})
	}
}

func TestRunBacktestCSVFeed(t *testing.T) {
	testutil.Run(t, "", func(t *testutil.T) {
		tmpDir := t.NewTempDir().Write("candles.csv", `time,open,high,low,close,volume
2023-01-01,10,12,9,10,100
2023-01-02,20,22,19,20,100
2023-01-03,30,32,29,30,100
`)
		request := RunRequest{
			Code: `{"rules": [{"when": {"crossover": ["close", 15]}, "do": {"action": "buy"}}]}`,
			Feed: &FeedSpec{Type: "csv", Path: tmpDir.Path("candles.csv")},
		}
		b, err := json.Marshal(request)
		t.RequireNoError(err)

		rec := httptest.NewRecorder()
		service := NewService(nil, latest.Pipeline{})
		service.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/run_backtest", strings.NewReader(string(b))))

		var result RunResult
		t.RequireNoError(json.NewDecoder(rec.Body).Decode(&result))
		t.CheckDeepEqual("success", result.Status)
		t.CheckDeepEqual(1, result.Trades)
		t.CheckContains("BUY FILLED size=1 price=30.00", result.Logs)
	})
}

func TestRunBacktestConfiguredStartCash(t *testing.T) {
	testutil.Run(t, "", func(t *testutil.T) {
		service := NewService(nil, latest.Pipeline{
			Engine: latest.EngineConfig{StartCash: util.Float64Ptr(50000)},
		})

		b, err := json.Marshal(RunRequest{Code: levelCrossDoc})
		t.RequireNoError(err)
		rec := httptest.NewRecorder()
		service.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/run_backtest", strings.NewReader(string(b))))

		var result RunResult
		t.RequireNoError(json.NewDecoder(rec.Body).Decode(&result))
		t.CheckDeepEqual("success", result.Status)
		t.CheckDeepEqual(50000.0, result.InitialCash)
		t.CheckDeepEqual(51740.0, result.FinalValue)
	})
}

func TestFeedFor(t *testing.T) {
	tests := []struct {
		description string
		spec        *FeedSpec
		shouldErr   bool
		errContains string
		expected    backtest.Feed
	}{
		{
			description: "nil spec keeps the synthetic feed",
			expected:    backtest.SyntheticFeed{},
		},
		{
			description: "empty type keeps the synthetic feed",
			spec:        &FeedSpec{},
			expected:    backtest.SyntheticFeed{},
		},
		{
			description: "explicit synthetic",
			spec:        &FeedSpec{Type: "synthetic"},
			expected:    backtest.SyntheticFeed{},
		},
		{
			description: "csv",
			spec:        &FeedSpec{Type: "csv", Path: "ticks.csv"},
			expected:    backtest.CSVFeed{Path: "ticks.csv"},
		},
		{
			description: "csv without a path",
			spec:        &FeedSpec{Type: "csv"},
			shouldErr:   true,
			errContains: "needs a path",
		},
		{
			description: "unknown type",
			spec:        &FeedSpec{Type: "parquet"},
			shouldErr:   true,
			errContains: "unknown feed type",
		},
	}
	for _, test := range tests {
		testutil.Run(t, test.description, func(t *testutil.T) {
			service := NewService(nil, latest.Pipeline{})

			feed, err := service.feedFor(test.spec)

			t.CheckError(test.shouldErr, err)
			if test.errContains != "" {
				t.CheckErrorContains(test.errContains, err)
			}
			if !test.shouldErr {
				t.CheckDeepEqual(test.expected, feed)
			}
		})
	}
}

func TestFeedForPostgres(t *testing.T) {
	testutil.Run(t, "", func(t *testutil.T) {
		// Open never dials, so a throwaway DSN is fine here.
		db, err := sql.Open("postgres", "host=localhost sslmode=disable")
		t.RequireNoError(err)
		defer db.Close()

		service := NewService(db, latest.Pipeline{
			Import: latest.ImportConfig{Table: "futures_tick_data"},
		})

		_, err = service.feedFor(&FeedSpec{Type: "postgres"})
		t.CheckErrorContains("needs a contract", err)

		feed, err := service.feedFor(&FeedSpec{Type: "postgres", Contract: "ag2406"})
		t.RequireNoError(err)
		pgFeed, ok := feed.(backtest.PostgresFeed)
		if !ok {
			t.Fatalf("expected a postgres feed, got %T", feed)
		}
		t.CheckDeepEqual("ag2406", pgFeed.Contract)
		t.CheckDeepEqual("1d", pgFeed.Interval)
		t.CheckDeepEqual("futures_tick_data", pgFeed.Table)

		feed, err = service.feedFor(&FeedSpec{Type: "postgres", Contract: "ag2406", Interval: "1m"})
		t.RequireNoError(err)
		t.CheckDeepEqual("1m", feed.(backtest.PostgresFeed).Interval)
	})
}

func TestHealthz(t *testing.T) {
	testutil.Run(t, "", func(t *testutil.T) {
		rec := httptest.NewRecorder()
		NewService(nil, latest.Pipeline{}).Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		t.CheckDeepEqual(http.StatusOK, rec.Code)
		t.CheckDeepEqual("ok", rec.Body.String())
	})
}

func TestRunBacktestRejectsGet(t *testing.T) {
	testutil.Run(t, "", func(t *testutil.T) {
		rec := httptest.NewRecorder()
		NewService(nil, latest.Pipeline{}).Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/run_backtest", nil))

		t.CheckDeepEqual(http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestRecovererReportsInternalError(t *testing.T) {
	testutil.Run(t, "", func(t *testutil.T) {
		handler := recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/run_backtest", nil))

		var result RunResult
		t.RequireNoError(json.NewDecoder(rec.Body).Decode(&result))
		t.CheckDeepEqual("error", result.Status)
		t.CheckDeepEqual("internal engine error", result.Message)
	})
}
