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

package checkpoint

import (
	"context"
	"sync"

	"github.com/quantbench/quantbench/pkg/quantbench/llm"
)

// InMemorySaver keeps transcripts in process memory. Used by tests and by
// local runs without a database; threads are lost on restart.
type InMemorySaver struct {
	mu      sync.RWMutex
	threads map[string][]llm.Message
}

func NewInMemorySaver() *InMemorySaver {
	return &InMemorySaver{threads: map[string][]llm.Message{}}
}

func (s *InMemorySaver) Setup(context.Context) error {
	return nil
}

func (s *InMemorySaver) Load(_ context.Context, threadID string) ([]llm.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := make([]llm.Message, len(s.threads[threadID]))
	copy(messages, s.threads[threadID])
	return messages, nil
}

func (s *InMemorySaver) Save(_ context.Context, threadID string, messages []llm.Message) error {
	copied := make([]llm.Message, len(messages))
	copy(copied, messages)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.threads[threadID] = copied
	return nil
}
