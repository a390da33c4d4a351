package duckdb

import (
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-cava/internal/cache"
)

// ImportTranscripts replaces the indexed transcripts with records.
func (s *Store) ImportTranscripts(records []*cache.IndexedRecord) error {
	if _, err := s.db.Exec("DELETE FROM transcripts"); err != nil {
		return fmt.Errorf("clear transcripts: %w", err)
	}

	err := s.withAppender("transcripts", func(appender *goduckdb.Appender) error {
		for _, r := range records {
			if err := appender.AppendRow(r.Chrom, r.Start, r.End, r.Line); err != nil {
				return fmt.Errorf("append transcript: %w", err)
			}
		}
		return nil
	})

	s.mu.Lock()
	s.contigs = nil
	s.mu.Unlock()
	return err
}

// HasContig reports whether any transcript is indexed on chrom.
func (s *Store) HasContig(chrom string) bool {
	s.mu.RLock()
	contigs := s.contigs
	s.mu.RUnlock()

	if contigs == nil {
		list, err := s.Contigs()
		if err != nil {
			return false
		}
		contigs = make(map[string]bool, len(list))
		for _, c := range list {
			contigs[c] = true
		}
		s.mu.Lock()
		s.contigs = contigs
		s.mu.Unlock()
	}
	return contigs[chrom]
}

// Fetch returns the raw records on chrom whose span overlaps [start, end],
// ordered by start.
func (s *Store) Fetch(chrom string, start, end int64) ([]string, error) {
	rows, err := s.db.Query(`SELECT record FROM transcripts
		WHERE chrom = ? AND tx_start <= ? AND tx_end >= ?
		ORDER BY tx_start, record`, chrom, end, start)
	if err != nil {
		return nil, fmt.Errorf("fetch %s:%d-%d: %w", chrom, start, end, err)
	}
	defer rows.Close()

	var records []string
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transcripts: %w", err)
	}
	return records, nil
}

// Contigs returns the sorted list of chromosomes with indexed transcripts.
func (s *Store) Contigs() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT chrom FROM transcripts ORDER BY chrom")
	if err != nil {
		return nil, fmt.Errorf("query contigs: %w", err)
	}
	defer rows.Close()

	var contigs []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan contig: %w", err)
		}
		contigs = append(contigs, c)
	}
	return contigs, rows.Err()
}

// TranscriptCount returns the number of indexed transcripts.
func (s *Store) TranscriptCount() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM transcripts").Scan(&n)
	return n, err
}
