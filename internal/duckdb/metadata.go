package duckdb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"
)

// SourceTranscripts is the source_files kind of the imported transcript database.
const SourceTranscripts = "transcripts"

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Matches reports whether two fingerprints describe the same file contents.
func (f FileFingerprint) Matches(other FileFingerprint) bool {
	return f.Size == other.Size && f.ModTime.Equal(other.ModTime)
}

// SetSource records the fingerprint of the file a table was imported from.
func (s *Store) SetSource(kind string, fp FileFingerprint) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM source_files WHERE kind = ?", kind); err != nil {
		return fmt.Errorf("clear source %s: %w", kind, err)
	}
	if _, err := tx.Exec("INSERT INTO source_files VALUES (?, ?, ?, ?)",
		kind, fp.Path, fp.Size, fp.ModTime.UnixNano()); err != nil {
		return fmt.Errorf("record source %s: %w", kind, err)
	}
	return tx.Commit()
}

// Source returns the recorded fingerprint for kind; ok is false when
// nothing was imported yet.
func (s *Store) Source(kind string) (fp FileFingerprint, ok bool, err error) {
	var modTime int64
	err = s.db.QueryRow("SELECT path, size, mod_time FROM source_files WHERE kind = ?", kind).
		Scan(&fp.Path, &fp.Size, &modTime)
	if errors.Is(err, sql.ErrNoRows) {
		return FileFingerprint{}, false, nil
	}
	if err != nil {
		return FileFingerprint{}, false, fmt.Errorf("query source %s: %w", kind, err)
	}
	fp.ModTime = time.Unix(0, modTime)
	return fp, true, nil
}

// IsCurrent reports whether the table of kind was imported from the file
// as it is now on disk.
func (s *Store) IsCurrent(kind string, fp FileFingerprint) bool {
	recorded, ok, err := s.Source(kind)
	return err == nil && ok && recorded.Matches(fp)
}
