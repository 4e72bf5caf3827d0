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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/quantbench/quantbench/pkg/quantbench/constants"
	"github.com/quantbench/quantbench/pkg/quantbench/output/log"
	"github.com/quantbench/quantbench/pkg/quantbench/version"
)

// for testing
var newBackOff = defaultBackOff

// RunResult is the engine's answer to a run request. The engine reports
// failures in-band, so a decoded result can still carry status "error"; the
// agent hands those to the model as tool output rather than escalating.
type RunResult struct {
	Status      string  `json:"status"`
	Message     string  `json:"message,omitempty"`
	InitialCash float64 `json:"initial_cash,omitempty"`
	FinalValue  float64 `json:"final_value,omitempty"`
	PnL         float64 `json:"pnl,omitempty"`
	Logs        string  `json:"logs,omitempty"`
	Trades      int     `json:"trades,omitempty"`
	MaxDrawdown float64 `json:"max_drawdown,omitempty"`
}

// StatusError is a non-200 reply from the engine.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("engine returned status code %d: %s", e.Code, e.Body)
}

// Client posts run requests to a remote engine, typically on behalf of the
// agent's execute_backtest tool.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient returns a client for the engine at url. Requests are bounded by
// the engine timeout so a runaway backtest cannot stall a chat turn.
func NewClient(url string) *Client {
	return &Client{
		url:        strings.TrimSuffix(url, "/"),
		httpClient: &http.Client{Timeout: constants.DefaultEngineTimeoutSeconds * time.Second},
	}
}

// Run posts the request and decodes the engine's reply. Server errors are
// retried with backoff; other non-200 replies surface as a StatusError.
func (c *Client) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshalling run request: %w", err)
	}

	var result RunResult
	op := func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/run_backtest", bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("User-Agent", version.UserAgent())

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			err := &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
			if resp.StatusCode >= http.StatusInternalServerError {
				log.Entry(ctx).Debugf("retrying: %v", err)
				return err
			}
			return backoff.Permanent(err)
		}
		if err := json.Unmarshal(b, &result); err != nil {
			return backoff.Permanent(fmt.Errorf("unmarshalling run result: %w", err))
		}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(newBackOff(), ctx)); err != nil {
		return nil, err
	}
	return &result, nil
}

// Ready checks the engine's health endpoint once, without retries. Callers
// use it to warn early about a missing engine rather than to gate startup.
func (c *Client) Ready(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return nil
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxElapsedTime = 15 * time.Second
	return b
}
