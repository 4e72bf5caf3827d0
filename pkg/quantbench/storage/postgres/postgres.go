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

// Package postgres opens the shared connection pool and owns the tick store
// schema and its bulk loading path.
package postgres

import (
	"database/sql"
	"fmt"

	// The pq driver backs every Postgres pool in the project.
	_ "github.com/lib/pq"

	"github.com/quantbench/quantbench/pkg/quantbench/constants"
	"github.com/quantbench/quantbench/pkg/quantbench/schema/latest"
)

// Open connects the pool shared by the knowledge base, the chat transcripts
// and the tick store. Connections are dialed lazily, so a bad URI surfaces
// on first use, not here.
func Open(cfg latest.DatabaseConfig) (*sql.DB, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("no database URI configured: set database.uri in %s, the %s environment variable or --db-uri", constants.DefaultConfigFile, constants.DBURIEnvironmentVariable)
	}

	db, err := sql.Open("postgres", cfg.URI)
	if err != nil {
		return nil, fmt.Errorf("opening postgres pool: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen == 0 {
		maxOpen = constants.DefaultDBMaxOpenConns
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle == 0 {
		maxIdle = constants.DefaultDBMaxIdleConns
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	return db, nil
}
