/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package bars persists OHLCV bars that feed the chart viewport. SQLite is
// the embedded default; a postgres:// DSN switches to PostgreSQL via pgx.
package bars

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"pricerange/internal/chart"
	applog "pricerange/internal/log"
	"pricerange/internal/version"
)

// schemaVersion is bumped on breaking changes to the bars table.
const schemaVersion = 1

var ErrEmptySymbol = errors.New("symbol is required")

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

func (d dialect) String() string {
	if d == dialectPostgres {
		return "postgres"
	}
	return "sqlite"
}

// Store is a bar repository over database/sql.
type Store struct {
	db      *sql.DB
	dialect dialect
	log     *slog.Logger
}

// Open connects to dsn, bootstraps the schema and returns a ready Store.
// postgres:// and postgresql:// URLs use pgx; anything else is a SQLite
// path, optionally prefixed with "sqlite:". ":memory:" opens a private
// in-memory database.
func Open(ctx context.Context, dsn string) (*Store, error) {
	l := applog.WithOperation(applog.WithComponent("bars"), "open")
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("bars dsn is required")
	}
	s := &Store{log: applog.WithComponent("bars")}
	var (
		db  *sql.DB
		err error
	)
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		s.dialect = dialectPostgres
		db, err = sql.Open("pgx", dsn)
	default:
		path := strings.TrimPrefix(dsn, "sqlite:")
		var uri string
		if path == ":memory:" {
			uri = "file::memory:?_pragma=busy_timeout(5000)"
		} else {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("create bars dir: %w", err)
			}
			uri = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", filepath.ToSlash(path))
		}
		db, err = sql.Open("sqlite", uri)
		if err == nil {
			// One connection keeps :memory: databases alive and serializes writers.
			db.SetMaxOpenConns(1)
			db.SetMaxIdleConns(1)
		}
	}
	if err != nil {
		l.Error("open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open %s: %w", s.dialect, err)
	}
	s.db = db

	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		l.Error("ping failed", slog.Any("err", err))
		return nil, fmt.Errorf("ping %s: %w", s.dialect, err)
	}
	if err := s.ensureSchema(pctx); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	l.Info("bar store ready", slog.String("driver", s.dialect.String()))
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *Store) rebind(q string) string {
	if s.dialect != dialectPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS bars_meta (
			id         INTEGER PRIMARY KEY CHECK(id=1),
			schema     INTEGER NOT NULL,
			app        TEXT,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS bars (
			symbol TEXT NOT NULL,
			time   BIGINT NOT NULL,
			open   DOUBLE PRECISION NOT NULL,
			high   DOUBLE PRECISION NOT NULL,
			low    DOUBLE PRECISION NOT NULL,
			close  DOUBLE PRECISION NOT NULL,
			volume DOUBLE PRECISION NOT NULL DEFAULT 0,
			PRIMARY KEY (symbol, time)
		)`,
	}
	for _, q := range ddl {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	var cur int
	err := s.db.QueryRowContext(ctx, `SELECT schema FROM bars_meta WHERE id=1`).Scan(&cur)
	now := time.Now().UTC().Format(time.RFC3339)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO bars_meta (id, schema, app, updated_at) VALUES (1, ?, ?, ?)`), schemaVersion, version.String(), now); err != nil {
			return fmt.Errorf("insert schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case cur > schemaVersion:
		return fmt.Errorf("bars schema %d is newer than supported %d", cur, schemaVersion)
	}
	return nil
}

// Insert upserts bars for symbol in one transaction.
func (s *Store) Insert(ctx context.Context, symbol string, bars []chart.Bar) (err error) {
	if strings.TrimSpace(symbol) == "" {
		return ErrEmptySymbol
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	stmt, err := tx.PrepareContext(ctx, s.rebind(`INSERT INTO bars (symbol, time, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (symbol, time) DO UPDATE SET
			open = excluded.open, high = excluded.high, low = excluded.low,
			close = excluded.close, volume = excluded.volume`))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()
	for _, b := range bars {
		if _, err = stmt.ExecContext(ctx, symbol, int64(b.Time), b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			return fmt.Errorf("insert bar %d: %w", b.Time, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.log.Debug("bars stored", slog.String("symbol", symbol), slog.Int("count", len(bars)))
	return nil
}

// Load returns the latest limit bars of symbol in ascending time order.
// limit <= 0 loads everything.
func (s *Store) Load(ctx context.Context, symbol string, limit int) ([]chart.Bar, error) {
	if strings.TrimSpace(symbol) == "" {
		return nil, ErrEmptySymbol
	}
	q := `SELECT time, open, high, low, close, volume FROM bars WHERE symbol = ? ORDER BY time DESC`
	args := []any{symbol}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("query bars: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []chart.Bar
	for rows.Next() {
		var (
			b chart.Bar
			t int64
		)
		if err := rows.Scan(&t, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		b.Time = chart.Time(t)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bars: %w", err)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// Symbols lists stored symbols alphabetically.
func (s *Store) Symbols(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT symbol FROM bars ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("query symbols: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		out = append(out, sym)
	}
	return out, rows.Err()
}
