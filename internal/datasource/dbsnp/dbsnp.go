// Package dbsnp provides dbSNP identifier lookups backed by DuckDB. Data is
// loaded from a tab-separated file, plain or bgzipped, with one record per
// line:
//
//	rsid  chrom  pos  alts
//
// where alts is a comma-separated list of alternate alleles.
package dbsnp

import (
	"bufio"
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-cava/internal/cache"
)

// Store provides dbSNP lookups backed by DuckDB. It is safe for concurrent use.
type Store struct {
	db       *sql.DB
	lookupPS *sql.Stmt

	mu      sync.RWMutex
	contigs map[string]bool // nil until first HasContig after a load
}

// Open opens or creates a DuckDB database for dbSNP data at the given path.
// Use an empty string for an in-memory database.
func Open(dbPath string) (*Store, error) {
	if dbPath != "" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	s.lookupPS, err = db.Prepare("SELECT rsid, alts FROM dbsnp WHERE chrom=? AND pos=? ORDER BY rsid")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare lookup: %w", err)
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS dbsnp (
		rsid VARCHAR,
		chrom VARCHAR,
		pos BIGINT,
		alts VARCHAR
	)`); err != nil {
		return err
	}
	// Index for fast point lookups
	s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_dbsnp_lookup ON dbsnp (chrom, pos)`)
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.lookupPS != nil {
		s.lookupPS.Close()
	}
	return s.db.Close()
}

// Loaded returns true if the dbSNP table has data.
func (s *Store) Loaded() bool {
	n, err := s.Count()
	return err == nil && n > 0
}

// Count returns the number of rows in the dbSNP table.
func (s *Store) Count() (int64, error) {
	var count int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM dbsnp").Scan(&count); err != nil {
		return 0, fmt.Errorf("count dbsnp rows: %w", err)
	}
	return count, nil
}

// Load replaces the table contents with the records of a dbSNP file.
// Lines starting with '#' and blank lines are skipped.
func (s *Store) Load(path string) (int64, error) {
	rc, err := cache.Open(path)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	if _, err := s.db.Exec("DELETE FROM dbsnp"); err != nil {
		return 0, fmt.Errorf("clear dbsnp: %w", err)
	}
	defer s.resetContigs()

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return 0, fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "dbsnp")
		return err
	}); err != nil {
		return 0, fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var n int64
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if line == "" || line[0] == '#' {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 4 {
			return n, fmt.Errorf("%s line %d: expected 4 columns, found %d", path, lineNum, len(cols))
		}
		pos, err := strconv.ParseInt(cols[2], 10, 64)
		if err != nil {
			return n, fmt.Errorf("%s line %d: invalid position %q", path, lineNum, cols[2])
		}
		if err := appender.AppendRow(cols[0], cols[1], pos, cols[3]); err != nil {
			return n, fmt.Errorf("append dbsnp record: %w", err)
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return n, fmt.Errorf("read %s: %w", path, err)
	}
	if err := appender.Flush(); err != nil {
		return n, fmt.Errorf("flush dbsnp records: %w", err)
	}
	return n, nil
}

func (s *Store) resetContigs() {
	s.mu.Lock()
	s.contigs = nil
	s.mu.Unlock()
}

// HasContig reports whether any record is stored on chrom.
func (s *Store) HasContig(chrom string) bool {
	s.mu.RLock()
	contigs := s.contigs
	s.mu.RUnlock()
	if contigs != nil {
		return contigs[chrom]
	}

	rows, err := s.db.Query("SELECT DISTINCT chrom FROM dbsnp")
	if err != nil {
		return false
	}
	defer rows.Close()

	contigs = make(map[string]bool)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return false
		}
		contigs[c] = true
	}
	if rows.Err() != nil {
		return false
	}

	s.mu.Lock()
	s.contigs = contigs
	s.mu.Unlock()
	return contigs[chrom]
}

// Lookup returns the ids of records at chrom:pos that list alt among their
// alternate alleles, in id order.
func (s *Store) Lookup(chrom string, pos int64, alt string) ([]string, error) {
	rows, err := s.lookupPS.Query(chrom, pos)
	if err != nil {
		return nil, fmt.Errorf("query dbsnp %s:%d: %w", chrom, pos, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var rsid, alts string
		if err := rows.Scan(&rsid, &alts); err != nil {
			return nil, fmt.Errorf("scan dbsnp: %w", err)
		}
		for _, a := range strings.Split(alts, ",") {
			if a == alt {
				ids = append(ids, rsid)
				break
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dbsnp: %w", err)
	}
	return ids, nil
}
