package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"VRSentinel/internal/model"
)

// SQLiteStore persists fetched series to a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string, log zerolog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so readers are not blocked by a batch writing fresh series.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, log: log.With().Str("component", "store").Logger()}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s.log.Info().Str("path", dbPath).Msg("sqlite store opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS price_series (
			symbol     TEXT    NOT NULL,
			start_date TEXT    NOT NULL,
			end_date   TEXT    NOT NULL,
			source     TEXT,
			bars       INTEGER,
			payload    BLOB    NOT NULL,
			fetched_at INTEGER NOT NULL,
			PRIMARY KEY (symbol, start_date, end_date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_series_fetched ON price_series(fetched_at)`,
	}

	for _, st := range stmts {
		if _, err := s.db.Exec(st); err != nil {
			return fmt.Errorf("exec %q: %w", st[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, key model.SeriesKey) (model.CachedSeries, bool, error) {
	var (
		payload   []byte
		fetchedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM price_series WHERE symbol = ? AND start_date = ? AND end_date = ?`,
		key.Symbol, key.Start.Format("2006-01-02"), key.End.Format("2006-01-02"),
	).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CachedSeries{}, false, nil
	}
	if err != nil {
		return model.CachedSeries{}, false, fmt.Errorf("load %s: %w", key, err)
	}
	entry, err := decodeSeries(key.Symbol, payload, time.Unix(fetchedAt, 0).UTC())
	if err != nil {
		return model.CachedSeries{}, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return entry, true, nil
}

func (s *SQLiteStore) Save(ctx context.Context, key model.SeriesKey, entry model.CachedSeries) error {
	payload, err := encodeSeries(entry)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	fetchedAt := entry.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO price_series
		(symbol, start_date, end_date, source, bars, payload, fetched_at)
		VALUES (?,?,?,?,?,?,?)`,
		key.Symbol, key.Start.Format("2006-01-02"), key.End.Format("2006-01-02"),
		entry.Source, entry.Series.Len(), payload, fetchedAt.Unix(),
	)
	return err
}

// Prune removes entries fetched before cutoff and returns how many were deleted.
func (s *SQLiteStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM price_series WHERE fetched_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Close() error {
	s.log.Info().Msg("closing sqlite store")
	return s.db.Close()
}
