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

// Package engine serves backtest runs over HTTP and provides the client the
// gateway's tool calls through. Run outcomes, including compile errors, travel
// in-band with HTTP 200: clients switch on the status field, the contract the
// engine has always shipped with.
package engine

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/quantbench/quantbench/pkg/quantbench/backtest"
	"github.com/quantbench/quantbench/pkg/quantbench/constants"
	"github.com/quantbench/quantbench/pkg/quantbench/event"
	"github.com/quantbench/quantbench/pkg/quantbench/instrumentation"
	"github.com/quantbench/quantbench/pkg/quantbench/output/log"
	"github.com/quantbench/quantbench/pkg/quantbench/schema/latest"
)

// RunRequest is the body of POST /run_backtest. Code carries the strategy
// document source; the field name is kept from earlier engine versions.
type RunRequest struct {
	Code      string    `json:"code"`
	StartCash float64   `json:"start_cash,omitempty"`
	Feed      *FeedSpec `json:"feed,omitempty"`
}

// FeedSpec selects the candle source for a single run. Requests without one
// run against the synthetic demo feed.
type FeedSpec struct {
	Type     string `json:"type"`
	Path     string `json:"path,omitempty"`
	Contract string `json:"contract,omitempty"`
	Interval string `json:"interval,omitempty"`
}

type runSuccess struct {
	Status      string  `json:"status"`
	InitialCash float64 `json:"initial_cash"`
	FinalValue  float64 `json:"final_value"`
	PnL         float64 `json:"pnl"`
	Logs        string  `json:"logs"`
	Trades      int     `json:"trades"`
	MaxDrawdown float64 `json:"max_drawdown"`
}

type runError struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Service runs strategy documents posted by the gateway's backtest tool.
type Service struct {
	db        *sql.DB
	tickTable string
	startCash float64
}

// NewService returns the engine service. db may be nil when no database is
// configured; postgres feeds then fail per request instead of at startup.
func NewService(db *sql.DB, pipeline latest.Pipeline) *Service {
	startCash := constants.DefaultStartCash
	if pipeline.Engine.StartCash != nil {
		startCash = *pipeline.Engine.StartCash
	}
	table := pipeline.Import.Table
	if table == "" {
		table = constants.DefaultTickTable
	}
	return &Service{
		db:        db,
		tickTable: table,
		startCash: startCash,
	}
}

// Router returns the engine's HTTP handler.
func (s *Service) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(recoverer)
	r.HandleFunc("/run_backtest", s.runBacktest).Methods(http.MethodPost)
	r.HandleFunc("/healthz", healthz).Methods(http.MethodGet)
	return r
}

func (s *Service) runBacktest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(ctx, w, runError{Status: "error", Message: fmt.Sprintf("decoding request: %v", err)})
		return
	}

	feed, err := s.feedFor(req.Feed)
	if err != nil {
		writeJSON(ctx, w, runError{Status: "error", Message: err.Error()})
		return
	}

	startCash := req.StartCash
	if startCash <= 0 {
		startCash = s.startCash
	}

	runID := uuid.NewString()
	event.BacktestInProgress(runID)
	instrumentation.AddBacktestRun()

	start := time.Now()
	result, err := backtest.Run(ctx, []byte(req.Code), feed, startCash)
	instrumentation.RecordBacktestDuration(time.Since(start))
	if err != nil {
		event.BacktestFailed(runID, err)
		log.Entry(ctx).Warnf("backtest %s failed: %v", runID, err)
		writeJSON(ctx, w, runError{Status: "error", Message: err.Error()})
		return
	}
	event.BacktestComplete(runID)

	log.Entry(ctx).Infof("backtest %s done: pnl %.2f after %d trades", runID, result.PnL, result.Trades)
	writeJSON(ctx, w, runSuccess{
		Status:      "success",
		InitialCash: result.InitialCash,
		FinalValue:  result.FinalValue,
		PnL:         result.PnL,
		Logs:        result.Logs,
		Trades:      result.Trades,
		MaxDrawdown: result.MaxDrawdown,
	})
}

// feedFor picks the candle source for a run. An empty spec keeps the
// synthetic feed the engine has always answered demos with.
func (s *Service) feedFor(spec *FeedSpec) (backtest.Feed, error) {
	if spec == nil || spec.Type == "" || spec.Type == "synthetic" {
		return backtest.SyntheticFeed{}, nil
	}
	switch spec.Type {
	case "csv":
		if spec.Path == "" {
			return nil, errors.New("csv feed needs a path")
		}
		return backtest.CSVFeed{Path: spec.Path}, nil
	case "postgres":
		if s.db == nil {
			return nil, errors.New("postgres feed needs a database, start the engine with --db-uri")
		}
		if spec.Contract == "" {
			return nil, errors.New("postgres feed needs a contract")
		}
		interval := spec.Interval
		if interval == "" {
			interval = "1d"
		}
		return backtest.PostgresFeed{DB: s.db, Table: s.tickTable, Contract: spec.Contract, Interval: interval}, nil
	default:
		return nil, fmt.Errorf("unknown feed type %q, expected synthetic, csv or postgres", spec.Type)
	}
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// recoverer keeps a panicking run from taking the server down. Panics are
// reported like any other run failure so the agent's tool sees a normal
// in-band error.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Entry(r.Context()).Errorf("panic serving %s: %v", r.URL.Path, rec)
				writeJSON(r.Context(), w, runError{Status: "error", Message: "internal engine error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Entry(ctx).Debugf("writing response: %v", err)
	}
}
