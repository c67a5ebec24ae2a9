// Package store reads block rows from the PostgreSQL database populated by
// the indexer. One row per chain block, keyed by the block number.
package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/lucgerrits/eth-indexer-dashboard/internal/config"
)

// ErrNoBlocks reports an empty blocks table.
var ErrNoBlocks = errors.New("blocks table is empty")

// BlockRow is one row of the blocks table, reduced to the columns the
// dashboard plots. Rows are immutable once fetched.
type BlockRow struct {
	Number    uint64 // primary ordering key, unique
	Timestamp int64  // seconds since epoch
	TxCount   uint64
	GasUsed   uint64
	SizeBytes uint64
}

// The indexer schema uses quoted camelCase column names. gasUsed is stored
// as NUMERIC(100) and cast down; real chains stay far below the BIGINT cap.
const (
	selectColumns = `"number", "timestamp", COALESCE("transactionsCount", 0), "gasUsed"::BIGINT, "size"`

	latestBlocksQuery = `SELECT ` + selectColumns + ` FROM blocks ORDER BY "number" DESC LIMIT $1`
	blockRangeQuery   = `SELECT ` + selectColumns + ` FROM blocks WHERE "number" BETWEEN $1 AND $2 ORDER BY "number" ASC`
	latestNumberQuery = `SELECT "number" FROM blocks ORDER BY "number" DESC LIMIT 1`
)

// Store wraps the shared database handle. All queries take a context so
// session teardown aborts anything in flight.
type Store struct {
	db *sql.DB
}

// Open connects to PostgreSQL and verifies the connection with a ping.
func Open(ctx context.Context, cfg config.Store) (*Store, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "opening postgres connection")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "pinging postgres at %s:%d", cfg.Host, cfg.Port)
	}

	log.WithFields(log.Fields{
		"host":     cfg.Host,
		"port":     cfg.Port,
		"database": cfg.Database,
	}).Debug("connected to postgres")

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the connection is still usable.
func (s *Store) Ping(ctx context.Context) error {
	return errors.Wrap(s.db.PingContext(ctx), "pinging postgres")
}

// LatestBlocks returns up to n of the newest rows, reversed to ascending
// block-number order before returning.
func (s *Store) LatestBlocks(ctx context.Context, n int) ([]BlockRow, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, latestBlocksQuery, n)
	if err != nil {
		return nil, errors.Wrapf(err, "querying latest %d blocks", n)
	}
	defer rows.Close()

	out, err := scanBlockRows(rows)
	if err != nil {
		return nil, err
	}

	// The query returns newest-first; callers get oldest-first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}

	log.WithFields(log.Fields{
		"limit":   n,
		"rows":    len(out),
		"elapsed": time.Since(start),
	}).Debug("fetched latest blocks")

	return out, nil
}

// BlocksInRange returns all rows with number in [start, stop], ascending.
func (s *Store) BlocksInRange(ctx context.Context, start, stop uint64) ([]BlockRow, error) {
	began := time.Now()
	rows, err := s.db.QueryContext(ctx, blockRangeQuery, start, stop)
	if err != nil {
		return nil, errors.Wrapf(err, "querying blocks %d-%d", start, stop)
	}
	defer rows.Close()

	out, err := scanBlockRows(rows)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"start":   start,
		"stop":    stop,
		"rows":    len(out),
		"elapsed": time.Since(began),
	}).Debug("fetched block range")

	return out, nil
}

// LatestBlockNumber returns the newest block number in the store.
// Returns ErrNoBlocks when the table is empty.
func (s *Store) LatestBlockNumber(ctx context.Context) (uint64, error) {
	var number uint64
	err := s.db.QueryRowContext(ctx, latestNumberQuery).Scan(&number)
	if err == sql.ErrNoRows {
		return 0, ErrNoBlocks
	}
	if err != nil {
		return 0, errors.Wrap(err, "querying latest block number")
	}
	return number, nil
}

func scanBlockRows(rows *sql.Rows) ([]BlockRow, error) {
	var out []BlockRow
	for rows.Next() {
		var r BlockRow
		if err := rows.Scan(&r.Number, &r.Timestamp, &r.TxCount, &r.GasUsed, &r.SizeBytes); err != nil {
			return nil, errors.Wrap(err, "scanning block row")
		}
		out = append(out, r)
	}
	return out, errors.Wrap(rows.Err(), "iterating block rows")
}
