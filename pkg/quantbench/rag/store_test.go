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
	"errors"
	"testing"

	"github.com/quantbench/quantbench/pkg/quantbench/schema/latest"
	"github.com/quantbench/quantbench/testutil"
)

type fakeEmbedder struct {
	inputs [][]string
	err    error
}

func (f *fakeEmbedder) Embed(_ context.Context, input []string) ([][]float32, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float32, len(input))
	for i := range input {
		vectors[i] = []float32{1, 0}
	}
	return vectors, nil
}

func TestAddEmptyDocsSkipsEmbedding(t *testing.T) {
	testutil.Run(t, "", func(t *testutil.T) {
		embedder := &fakeEmbedder{}
		store := NewStore(nil, embedder, latest.RetrievalConfig{Collection: "knowledge_base"})

		err := store.Add(context.Background(), nil)

		t.CheckNoError(err)
		t.CheckDeepEqual(0, len(embedder.inputs))
	})
}

func TestAddEmbeddingFailure(t *testing.T) {
	testutil.Run(t, "", func(t *testutil.T) {
		embedder := &fakeEmbedder{err: errors.New("model offline")}
		store := NewStore(nil, embedder, latest.RetrievalConfig{Collection: "knowledge_base"})

		err := store.Add(context.Background(), []Document{{Content: "margin rules"}})

		t.CheckErrorContains("embedding documents", err)
	})
}

func TestSearchEmbedsOnlyTheQuery(t *testing.T) {
	testutil.Run(t, "", func(t *testutil.T) {
		embedder := &fakeEmbedder{err: errors.New("model offline")}
		store := NewStore(nil, embedder, latest.RetrievalConfig{Collection: "knowledge_base"})

		_, err := store.Search(context.Background(), "settlement timing", 0)

		t.CheckErrorContains("embedding query", err)
		t.CheckDeepEqual([][]string{{"settlement timing"}}, embedder.inputs)
	})
}
