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

package rag

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/quantbench/quantbench/pkg/quantbench/constants"
)

// InMemoryStore keeps documents and their embeddings in process memory.
// Backs gateway runs without a database; documents are lost on restart.
type InMemoryStore struct {
	embedder Embedder

	mu   sync.RWMutex
	docs []Document
	vecs [][]float32
}

func NewInMemoryStore(embedder Embedder) *InMemoryStore {
	return &InMemoryStore{embedder: embedder}
}

// Add embeds the documents and keeps them in memory. Documents without an id
// get a fresh uuid.
func (s *InMemoryStore) Add(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding documents: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, d := range docs {
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		s.docs = append(s.docs, d)
		s.vecs = append(s.vecs, normalize(vectors[i]))
	}
	return nil
}

// Search returns the k documents closest to the query by cosine similarity.
// k values below one fall back to the default.
func (s *InMemoryStore) Search(ctx context.Context, query string, k int) ([]Document, error) {
	if k < 1 {
		k = constants.DefaultRAGTopK
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	queryVec := normalize(vectors[0])

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		index int
		score float64
	}
	ranked := make([]scored, len(s.docs))
	for i, vec := range s.vecs {
		ranked[i] = scored{index: i, score: dot(queryVec, vec)}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if k > len(ranked) {
		k = len(ranked)
	}
	var docs []Document
	for _, r := range ranked[:k] {
		docs = append(docs, s.docs[r.index])
	}
	return docs, nil
}

// dot assumes both vectors are normalized, making it the cosine similarity.
func dot(a, b []float32) float64 {
	var sum float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
