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
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/quantbench/quantbench/pkg/quantbench/constants"
	"github.com/quantbench/quantbench/pkg/quantbench/schema/latest"
)

// EmbeddingsClient calls an OpenAI-compatible embeddings API. It shares the
// chat client's transport and retry policy but targets the retrieval
// section's endpoint and model.
type EmbeddingsClient struct {
	client     *Client
	model      string
	dimensions int
}

// NewEmbeddingsClient returns an embeddings client for the pipeline's
// retrieval section.
func NewEmbeddingsClient(cfg latest.RetrievalConfig) *EmbeddingsClient {
	return &EmbeddingsClient{
		client: &Client{
			baseURL:    strings.TrimSuffix(cfg.EmbeddingURL, "/"),
			apiKey:     os.Getenv(constants.APIKeyEnvironmentVariable),
			httpClient: &http.Client{},
		},
		model:      cfg.EmbeddingModel,
		dimensions: cfg.Dimensions,
	}
}

// Embed returns one vector per input string, in input order.
func (c *EmbeddingsClient) Embed(ctx context.Context, input []string) ([][]float32, error) {
	if len(input) == 0 {
		return nil, nil
	}

	req := embeddingsRequest{
		Model:      c.model,
		Input:      input,
		Dimensions: c.dimensions,
	}
	var resp embeddingsResponse
	if err := c.client.post(ctx, "/embeddings", req, &resp); err != nil {
		return nil, fmt.Errorf("embedding %d inputs: %w", len(input), err)
	}
	if len(resp.Data) != len(input) {
		return nil, fmt.Errorf("embeddings API returned %d vectors for %d inputs", len(resp.Data), len(input))
	}

	// The API may return vectors out of order. Index restores input order.
	vectors := make([][]float32, len(input))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embeddings API returned out of range index %d", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}
