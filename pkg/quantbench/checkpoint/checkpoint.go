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

// Package checkpoint persists chat thread transcripts so that a conversation
// survives across requests and restarts.
package checkpoint

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/quantbench/quantbench/pkg/quantbench/llm"
)

// Saver loads and stores the message transcript of a chat thread.
type Saver interface {
	// Setup creates backing storage when it doesn't exist yet.
	Setup(ctx context.Context) error

	// Load returns the thread's messages, empty for a new thread.
	Load(ctx context.Context, threadID string) ([]llm.Message, error)

	// Save replaces the thread's messages.
	Save(ctx context.Context, threadID string, messages []llm.Message) error
}

// PostgresSaver keeps transcripts in a chat_threads table, one jsonb row per
// thread.
type PostgresSaver struct {
	db *sql.DB
}

func NewPostgresSaver(db *sql.DB) *PostgresSaver {
	return &PostgresSaver{db: db}
}

func (s *PostgresSaver) Setup(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS chat_threads (
		thread_id text PRIMARY KEY,
		messages jsonb NOT NULL,
		updated_at timestamptz NOT NULL DEFAULT now()
	)`)
	if err != nil {
		return fmt.Errorf("creating chat_threads table: %w", err)
	}
	return nil
}

func (s *PostgresSaver) Load(ctx context.Context, threadID string) ([]llm.Message, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT messages FROM chat_threads WHERE thread_id = $1`, threadID).Scan(&raw)
	if err == sql.ErrNoRows {
		return []llm.Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading thread %q: %w", threadID, err)
	}

	var messages []llm.Message
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		return nil, fmt.Errorf("unmarshalling thread %q: %w", threadID, err)
	}
	return messages, nil
}

func (s *PostgresSaver) Save(ctx context.Context, threadID string, messages []llm.Message) error {
	payload, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshalling thread %q: %w", threadID, err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO chat_threads (thread_id, messages, updated_at) VALUES ($1, $2::jsonb, now())
		ON CONFLICT (thread_id) DO UPDATE SET messages = EXCLUDED.messages, updated_at = now()`,
		threadID, string(payload))
	if err != nil {
		return fmt.Errorf("saving thread %q: %w", threadID, err)
	}
	return nil
}
