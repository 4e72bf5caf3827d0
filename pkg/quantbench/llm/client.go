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

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/quantbench/quantbench/pkg/quantbench/constants"
	"github.com/quantbench/quantbench/pkg/quantbench/output/log"
	"github.com/quantbench/quantbench/pkg/quantbench/schema/latest"
	"github.com/quantbench/quantbench/pkg/quantbench/version"
)

// for testing
var newBackOff = defaultBackOff

// Client calls an OpenAI-compatible chat completions API.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature *float64
	httpClient  *http.Client
}

// NewClient returns a chat client for the pipeline's agent section. The API
// key is read from the DEEPSEEK_API_KEY environment variable so that it never
// lands in a config file.
func NewClient(cfg latest.AgentConfig) *Client {
	return &Client{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:      os.Getenv(constants.APIKeyEnvironmentVariable),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{},
	}
}

// Chat sends the conversation to the model and returns the assistant's reply.
// When tools are given, tool choice is left to the model.
func (c *Client) Chat(ctx context.Context, messages []Message, tools []Tool) (*ChatResult, error) {
	req := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
	}
	if len(tools) > 0 {
		req.Tools = tools
		req.ToolChoice = "auto"
	}

	var resp chatResponse
	if err := c.post(ctx, "/chat/completions", req, &resp); err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	choice := resp.Choices[0]
	log.Entry(ctx).Debugf("chat completion used %d prompt and %d completion tokens", resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	return &ChatResult{
		Message:      choice.Message,
		FinishReason: choice.FinishReason,
		Usage:        resp.Usage,
	}, nil
}

// post sends body to the given API path and decodes the 200 response into out.
// Rate limits and server errors are retried with exponential backoff until the
// policy gives up; other failures are terminal.
func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshalling request: %w", err)
	}

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", version.UserAgent())
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("%s returned status code %d: %s", path, resp.StatusCode, strings.TrimSpace(string(b)))
			if retryable(resp.StatusCode) {
				log.Entry(ctx).Debugf("retrying: %v", err)
				return err
			}
			return backoff.Permanent(err)
		}
		if err := json.Unmarshal(b, out); err != nil {
			return backoff.Permanent(fmt.Errorf("unmarshalling response: %w", err))
		}
		return nil
	}
	return backoff.Retry(op, backoff.WithContext(newBackOff(), ctx))
}

func retryable(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= http.StatusInternalServerError
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxElapsedTime = time.Minute
	return b
}
