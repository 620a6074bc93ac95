package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/cybersib/cybersib/internal/dbx"
	"github.com/cybersib/cybersib/internal/filex"
	"github.com/cybersib/cybersib/internal/kvstore/migrations"
)

// SQLStore keeps values in a single kv table.
type SQLStore struct {
	db      *sql.DB
	dialect dbx.Dialect
}

func NewSQLStore(db *sql.DB, dialect dbx.Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// OpenSQLite opens (creating if needed) the database file at dsn.
func OpenSQLite(ctx context.Context, dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, errors.New("sqlite: empty dsn")
	}
	if dsn != ":memory:" {
		if err := filex.EnsureParentDir(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	// one writer; also keeps ":memory:" on a single connection
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db, dbx.SQLite); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return NewSQLStore(db, dbx.SQLite), nil
}

// OpenPostgres connects through the pgx stdlib driver.
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	if err := RunMigrations(ctx, db, dbx.Postgres); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return NewSQLStore(db, dbx.Postgres), nil
}

// RunMigrations applies the embedded migrations for dialect.
func RunMigrations(ctx context.Context, db *sql.DB, dialect dbx.Dialect) error {
	dir := "sqlite"
	if dialect == dbx.Postgres {
		dir = "postgres"
	}

	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, dir)
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.get(ctx, s.db, key)
}

func (s *SQLStore) get(ctx context.Context, q dbx.DBTX, key string) ([]byte, error) {
	var value []byte
	err := q.QueryRowContext(ctx, s.dialect.Rebind(`SELECT value FROM kv WHERE key = ?`), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get kv[%s]: %w", key, err)
	}
	return value, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	return s.set(ctx, s.db, key, value)
}

func (s *SQLStore) set(ctx context.Context, q dbx.DBTX, key string, value []byte) error {
	_, err := q.ExecContext(ctx, s.dialect.Rebind(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`), key, value)
	if err != nil {
		return fmt.Errorf("failed to set kv[%s]: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, s.dialect.Rebind(`DELETE FROM kv WHERE key = ?`), key)
	if err != nil {
		return fmt.Errorf("failed to delete kv[%s]: %w", key, err)
	}
	return nil
}

// SetMany writes all values in one transaction, in key order.
func (s *SQLStore) SetMany(ctx context.Context, values map[string][]byte) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, k := range keys {
			if err := s.set(ctx, tx, k, values[k]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Keys lists stored keys in order.
func (s *SQLStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list kv: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan kv row: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate kv rows: %w", err)
	}
	return keys, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
