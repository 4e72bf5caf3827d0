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

package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/quantbench/quantbench/pkg/quantbench/constants"
	"github.com/quantbench/quantbench/pkg/quantbench/tick"
)

// TickStore bulk-loads tick records into a Postgres table.
type TickStore struct {
	db    *sql.DB
	table string
}

func NewTickStore(db *sql.DB, table string) *TickStore {
	if table == "" {
		table = constants.DefaultTickTable
	}
	return &TickStore{db: db, table: table}
}

// Migrate creates the tick table and its contract lookup index. Cells are
// typed server-side so that a malformed file fails its batch instead of
// poisoning the table.
func (s *TickStore) Migrate(ctx context.Context) error {
	createTable := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		market_code   text,
		contract_code text,
		tick_time     timestamp,
		last_price    double precision,
		open_interest double precision,
		oi_change     double precision,
		turnover      double precision,
		volume        double precision,
		open_volume   double precision,
		close_volume  double precision,
		trade_type    text,
		direction     text,
		bid_price     double precision,
		ask_price     double precision,
		bid_volume    double precision,
		ask_volume    double precision
	)`, s.table)
	if _, err := s.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("creating table %s: %w", s.table, err)
	}

	createIndex := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_contract_time ON %s (contract_code, tick_time)`, s.table, s.table)
	if _, err := s.db.ExecContext(ctx, createIndex); err != nil {
		return fmt.Errorf("indexing table %s: %w", s.table, err)
	}
	return nil
}

// CopyTicks writes records through COPY inside a single transaction and
// returns the number of rows written. Nothing is left behind when the copy
// fails, so callers can drop the batch and move on.
func (s *TickStore) CopyTicks(ctx context.Context, records []tick.Record) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning copy transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(s.table, tick.Columns...))
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("preparing copy: %w", err)
	}

	for _, record := range records {
		if _, err := stmt.ExecContext(ctx, record.Values()...); err != nil {
			stmt.Close()
			tx.Rollback()
			return 0, fmt.Errorf("buffering row: %w", err)
		}
	}

	// An Exec without arguments flushes the buffered rows to the server.
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		tx.Rollback()
		return 0, fmt.Errorf("flushing copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("closing copy: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing copy: %w", err)
	}
	return int64(len(records)), nil
}
