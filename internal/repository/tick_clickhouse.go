package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"SimuTrade/internal/domain/models"
	"SimuTrade/internal/domain/repository"
)

// TickSchema returns DDL for the tick archive table, idempotent.
func TickSchema(table string) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			ts     DateTime,
			symbol LowCardinality(String),
			price  Float64,
			volume Float64,
			source LowCardinality(String)
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMMDD(ts)
		ORDER BY (symbol, ts)
		TTL ts + INTERVAL 30 DAY`, table),
	}
}

// ClickHouseArchiver writes live ticks into a ClickHouse table.
type ClickHouseArchiver struct {
	db    *sql.DB
	table string
}

// NewClickHouseArchiver creates a ClickHouse-backed tick archiver.
func NewClickHouseArchiver(db *sql.DB, table string) repository.Archiver {
	return &ClickHouseArchiver{db: db, table: table}
}

func (a *ClickHouseArchiver) Archive(ctx context.Context, t *models.Tick) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, symbol, price, volume, source) VALUES (?, ?, ?, ?, ?)", a.table)
	_, err := a.db.ExecContext(ctx, q,
		time.Unix(t.Timestamp, 0),
		t.Symbol,
		t.Price,
		t.Volume,
		"binance",
	)
	return err
}

func (a *ClickHouseArchiver) ArchiveBatch(ctx context.Context, ticks []*models.Tick) error {
	if len(ticks) == 0 {
		return nil
	}
	// Multi-row VALUES insert, chunked to keep statements bounded.
	const chunkSize = 2000
	for start := 0; start < len(ticks); start += chunkSize {
		end := start + chunkSize
		if end > len(ticks) {
			end = len(ticks)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*5)
		for _, t := range ticks[start:end] {
			if t == nil || t.Symbol == "" || t.Timestamp == 0 {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?)")
			args = append(args,
				time.Unix(t.Timestamp, 0),
				t.Symbol,
				t.Price,
				t.Volume,
				"binance",
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (ts, symbol, price, volume, source) VALUES %s", a.table, strings.Join(values, ","))
		if _, err := a.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

// Close is a no-op; the connection pool is owned by pkg/clickhouse.
func (a *ClickHouseArchiver) Close() error {
	return nil
}
