// Package duckdb provides a DuckDB-backed transcript index and annotation
// result store. The transcripts table serves positional lookups for the
// annotator; annotation results are append-only and queryable.
package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	goduckdb "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding transcripts and annotation results.
type Store struct {
	db   *sql.DB
	path string

	mu      sync.RWMutex
	contigs map[string]bool // nil until first HasContig after an import
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// IsDuckDB reports whether path names a DuckDB database file.
func IsDuckDB(path string) bool {
	return strings.HasSuffix(path, ".duckdb") || strings.HasSuffix(path, ".db")
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database path, "" for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS transcripts (
			chrom VARCHAR,
			tx_start BIGINT,
			tx_end BIGINT,
			record VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS annotations (
			chrom VARCHAR,
			pos BIGINT,
			ref VARCHAR,
			alt VARCHAR,
			transcript_id VARCHAR,
			gene VARCHAR,
			gene_id VARCHAR,
			trinfo VARCHAR,
			loc VARCHAR,
			csn VARCHAR,
			protpos VARCHAR,
			protref VARCHAR,
			protalt VARCHAR,
			class VARCHAR,
			so VARCHAR,
			impact VARCHAR,
			altann VARCHAR,
			altclass VARCHAR,
			altso VARCHAR,
			altflag VARCHAR,
			dbsnp VARCHAR,
			PRIMARY KEY (chrom, pos, ref, alt, transcript_id)
		)`,
		`CREATE TABLE IF NOT EXISTS source_files (
			kind VARCHAR PRIMARY KEY,
			path VARCHAR,
			size BIGINT,
			mod_time BIGINT
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// withAppender runs fn with a DuckDB appender on table and flushes it.
func (s *Store) withAppender(table string, fn func(*goduckdb.Appender) error) error {
	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	if err := fn(appender); err != nil {
		return err
	}
	return appender.Flush()
}
