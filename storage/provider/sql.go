package provider

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/dreitier/treefactor/storage"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"
)

const (
	DriverSqlite   = "sqlite3"
	DriverPostgres = "postgres"
)

var schemas = map[string]string{
	DriverSqlite: `CREATE TABLE IF NOT EXISTS documents (
		key TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	DriverPostgres: `CREATE TABLE IF NOT EXISTS documents (
		key TEXT PRIMARY KEY,
		data BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
}

// SqlStore keeps documents in the table "documents" of a sqlite3 or postgres database.
type SqlStore struct {
	driver string
	db     *sql.DB
}

func NewSqlStore(ctx context.Context, driver string, dsn string) (*SqlStore, error) {
	schema, supported := schemas[driver]
	if !supported {
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if driver == DriverSqlite {
		// sqlite allows a single writer
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	log.Debugf("Using %s database for documents", driver)
	return &SqlStore{driver: driver, db: db}, nil
}

// arg returns the placeholder of the n-th query argument, starting at 1.
func (s *SqlStore) arg(n int) string {
	if s.driver == DriverPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func (s *SqlStore) Save(ctx context.Context, key string, data []byte) error {
	query := fmt.Sprintf(`INSERT INTO documents (key, data, updated_at) VALUES (%s, %s, %s)
		ON CONFLICT (key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		s.arg(1), s.arg(2), s.arg(3))

	if data == nil {
		data = []byte{}
	}

	if _, err := s.db.ExecContext(ctx, query, key, data, time.Now().UTC()); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *SqlStore) Load(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	query := fmt.Sprintf(`SELECT data FROM documents WHERE key = %s`, s.arg(1))

	err := s.db.QueryRowContext(ctx, query, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return data, nil
}

func (s *SqlStore) Delete(ctx context.Context, key string) error {
	query := fmt.Sprintf(`DELETE FROM documents WHERE key = %s`, s.arg(1))

	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *SqlStore) List(ctx context.Context, prefix string) ([]string, error) {
	query := fmt.Sprintf(`SELECT key FROM documents WHERE substr(key, 1, %s) = %s ORDER BY key`, s.arg(1), s.arg(2))

	rows, err := s.db.QueryContext(ctx, query, utf8.RuneCountInString(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", prefix, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (s *SqlStore) Close() error {
	return s.db.Close()
}
