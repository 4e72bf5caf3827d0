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

// Package rag stores knowledge documents in Postgres with pgvector and
// retrieves them by embedding similarity.
package rag

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/quantbench/quantbench/pkg/quantbench/constants"
	"github.com/quantbench/quantbench/pkg/quantbench/output/log"
	"github.com/quantbench/quantbench/pkg/quantbench/schema/latest"
)

const documentsTable = "knowledge_documents"

// Embedder produces one vector per input text.
type Embedder interface {
	Embed(ctx context.Context, input []string) ([][]float32, error)
}

// Document is a unit of knowledge in a collection.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// Store reads and writes embedded documents for a single collection.
type Store struct {
	db         *sql.DB
	embedder   Embedder
	collection string
	dimensions int
}

// NewStore returns a store over db scoped to the configured collection.
func NewStore(db *sql.DB, embedder Embedder, cfg latest.RetrievalConfig) *Store {
	return &Store{
		db:         db,
		embedder:   embedder,
		collection: cfg.Collection,
		dimensions: cfg.Dimensions,
	}
}

// EnsureSchema creates the pgvector extension and the documents table when
// they don't exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id uuid PRIMARY KEY,
			collection text NOT NULL,
			document text NOT NULL,
			metadata jsonb,
			embedding vector(%d) NOT NULL
		)`, documentsTable, s.dimensions),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_collection_idx ON %s (collection)`, documentsTable, documentsTable),
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensuring knowledge schema: %w", err)
		}
	}
	return nil
}

// Add embeds the documents and inserts them into the collection. Documents
// without an id get a fresh uuid.
func (s *Store) Add(ctx context.Context, docs []Document) error {
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

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting insert: %w", err)
	}
	for i, d := range docs {
		id := d.ID
		if id == "" {
			id = uuid.NewString()
		}
		metadata, err := json.Marshal(d.Metadata)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("marshalling metadata: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO `+documentsTable+` (id, collection, document, metadata, embedding) VALUES ($1, $2, $3, $4::jsonb, $5::vector)`,
			id, s.collection, d.Content, string(metadata), vectorLiteral(normalize(vectors[i]))); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting document: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing insert: %w", err)
	}
	log.Entry(ctx).Debugf("stored %d documents in collection %q", len(docs), s.collection)
	return nil
}

// Search returns the k documents closest to the query by cosine distance.
// k values below one fall back to the default.
func (s *Store) Search(ctx context.Context, query string, k int) ([]Document, error) {
	if k < 1 {
		k = constants.DefaultRAGTopK
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document, metadata FROM `+documentsTable+` WHERE collection = $1 ORDER BY embedding <=> $2::vector LIMIT $3`,
		s.collection, vectorLiteral(normalize(vectors[0])), k)
	if err != nil {
		return nil, fmt.Errorf("searching collection %q: %w", s.collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			d        Document
			metadata sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.Content, &metadata); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		if metadata.Valid && metadata.String != "null" {
			if err := json.Unmarshal([]byte(metadata.String), &d.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshalling metadata: %w", err)
			}
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
