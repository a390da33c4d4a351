package duckdb

import (
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-cava/internal/annotate"
)

// flagDBSNP is the source flag persisted alongside the transcript rows.
const flagDBSNP = "DBSNP"

// AnnotationRecord is one stored transcript row with its variant key.
type AnnotationRecord struct {
	Chrom string
	Pos   int64
	Ref   string
	Alt   string
	DBSNP string
	Row   annotate.Row
}

// resultKey is the composite key for deduplicating rows before writing.
type resultKey struct {
	chrom, ref, alt, transcript string
	pos                         int64
}

const annotationColumns = `chrom, pos, ref, alt, transcript_id,
	gene, gene_id, trinfo, loc, csn, protpos, protref, protalt,
	class, so, impact, altann, altclass, altso, altflag, dbsnp`

// WriteAnnotations batch-inserts the transcript rows of anns using the
// Appender API, keyed by the variant as read from the input. Annotations
// without rows are skipped; duplicate keys keep the first row.
func (s *Store) WriteAnnotations(anns []*annotate.Annotation) error {
	var records []AnnotationRecord
	seen := make(map[resultKey]bool)
	for _, ann := range anns {
		if ann == nil || ann.Variant == nil {
			continue
		}
		v := ann.Variant
		dbsnp, _ := ann.GetExtra(flagDBSNP)
		for _, row := range ann.Rows {
			k := resultKey{v.Chrom, v.Ref, v.Alt, row.Transcript, v.Pos}
			if seen[k] {
				continue
			}
			seen[k] = true
			records = append(records, AnnotationRecord{
				Chrom: v.Chrom, Pos: v.Pos, Ref: v.Ref, Alt: v.Alt, DBSNP: dbsnp, Row: row,
			})
		}
	}
	if len(records) == 0 {
		return nil
	}

	return s.withAppender("annotations", func(appender *goduckdb.Appender) error {
		for _, r := range records {
			row := r.Row
			if err := appender.AppendRow(
				r.Chrom, r.Pos, r.Ref, r.Alt, row.Transcript,
				row.Gene, row.GeneID, row.TrInfo, row.Loc, row.CSN,
				row.ProtPos, row.ProtRef, row.ProtAlt,
				row.Class, row.SO, row.Impact,
				row.AltAnn, row.AltClass, row.AltSO, row.AltFlag, r.DBSNP,
			); err != nil {
				return fmt.Errorf("append annotation: %w", err)
			}
		}
		return nil
	})
}

// ClearAnnotations removes all stored annotation rows.
func (s *Store) ClearAnnotations() error {
	_, err := s.db.Exec("DELETE FROM annotations")
	return err
}

// LookupVariant returns the stored rows of a variant, ordered by transcript.
func (s *Store) LookupVariant(chrom string, pos int64, ref, alt string) ([]AnnotationRecord, error) {
	rows, err := s.db.Query(`SELECT `+annotationColumns+`
		FROM annotations
		WHERE chrom=? AND pos=? AND ref=? AND alt=?
		ORDER BY transcript_id`,
		chrom, pos, ref, alt)
	if err != nil {
		return nil, fmt.Errorf("query variant: %w", err)
	}
	defer rows.Close()

	return scanAnnotations(rows)
}

// SearchByGene returns every stored row for a gene symbol.
func (s *Store) SearchByGene(gene string) ([]AnnotationRecord, error) {
	rows, err := s.db.Query(`SELECT `+annotationColumns+`
		FROM annotations
		WHERE gene=?
		ORDER BY chrom, pos, transcript_id`, gene)
	if err != nil {
		return nil, fmt.Errorf("query by gene: %w", err)
	}
	defer rows.Close()

	return scanAnnotations(rows)
}

// scanAnnotations scans rows into AnnotationRecord slices.
func scanAnnotations(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]AnnotationRecord, error) {
	var results []AnnotationRecord
	for rows.Next() {
		var r AnnotationRecord
		row := &r.Row
		if err := rows.Scan(
			&r.Chrom, &r.Pos, &r.Ref, &r.Alt, &row.Transcript,
			&row.Gene, &row.GeneID, &row.TrInfo, &row.Loc, &row.CSN,
			&row.ProtPos, &row.ProtRef, &row.ProtAlt,
			&row.Class, &row.SO, &row.Impact,
			&row.AltAnn, &row.AltClass, &row.AltSO, &row.AltFlag, &r.DBSNP,
		); err != nil {
			return nil, fmt.Errorf("scan annotation: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate annotations: %w", err)
	}
	return results, nil
}
