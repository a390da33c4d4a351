package cache

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/biogo/hts/bgzf"
)

// IndexedRecord is a raw transcript record with the span it is indexed under.
type IndexedRecord struct {
	Chrom string
	Start int64
	End   int64
	Line  string
}

// Index is an in-memory positional index of raw transcript records keyed by
// chromosome. It is safe for concurrent reads once built.
type Index struct {
	records map[string][]*IndexedRecord
	trees   map[string]*IntervalTree
}

// NewIndex creates a new empty index.
func NewIndex() *Index {
	return &Index{
		records: make(map[string][]*IndexedRecord),
		trees:   make(map[string]*IntervalTree),
	}
}

// Add parses and stages one raw record. Call Build before querying.
func (x *Index) Add(line string) error {
	t, err := ParseTranscript(line)
	if err != nil {
		return err
	}
	x.records[t.Chrom] = append(x.records[t.Chrom], &IndexedRecord{
		Chrom: t.Chrom,
		Start: t.Start,
		End:   t.End,
		Line:  strings.TrimRight(line, "\r\n"),
	})
	delete(x.trees, t.Chrom)
	return nil
}

// Build creates the interval trees for all staged records.
func (x *Index) Build() {
	for chrom, recs := range x.records {
		if _, ok := x.trees[chrom]; !ok {
			x.trees[chrom] = BuildIntervalTree(recs)
		}
	}
}

// HasContig returns true if the index holds records for chrom.
func (x *Index) HasContig(chrom string) bool {
	_, ok := x.records[chrom]
	return ok
}

// Fetch returns the raw records on chrom whose span overlaps [start, end].
func (x *Index) Fetch(chrom string, start, end int64) ([]string, error) {
	if _, ok := x.records[chrom]; !ok {
		return nil, nil
	}
	tree, ok := x.trees[chrom]
	if !ok {
		return nil, fmt.Errorf("fetch %s:%d-%d: index not built", chrom, start, end)
	}
	return tree.FindOverlaps(start, end), nil
}

// Contigs returns a sorted list of indexed chromosomes.
func (x *Index) Contigs() []string {
	chroms := make([]string, 0, len(x.records))
	for chrom := range x.records {
		chroms = append(chroms, chrom)
	}
	sort.Strings(chroms)
	return chroms
}

// Records returns the staged records of every chromosome in contig order.
func (x *Index) Records() []*IndexedRecord {
	var all []*IndexedRecord
	for _, chrom := range x.Contigs() {
		all = append(all, x.records[chrom]...)
	}
	return all
}

// Len returns the total number of indexed records.
func (x *Index) Len() int {
	n := 0
	for _, recs := range x.records {
		n += len(recs)
	}
	return n
}

// LoadIndex reads a transcript database and builds an index over it.
// Lines starting with '#' and blank lines are skipped.
func LoadIndex(r io.Reader) (*Index, error) {
	x := NewIndex()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if line == "" || line[0] == '#' {
			continue
		}
		if err := x.Add(line); err != nil {
			var rerr *RecordError
			if errors.As(err, &rerr) {
				rerr.Line = lineNum
			}
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan transcript database: %w", err)
	}

	x.Build()
	return x, nil
}

// LoadIndexFile opens a plain or compressed transcript database and indexes it.
func LoadIndexFile(path string) (*Index, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return LoadIndex(rc)
}

// Open opens a plain, gzipped or bgzipped text file for reading.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	// Check for gzip magic number (0x1f, 0x8b)
	magic := make([]byte, 2)
	n, err := io.ReadFull(f, magic)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		f.Close()
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("seek %s: %w", path, err)
	}
	if n < 2 || magic[0] != 0x1f || magic[1] != 0x8b {
		return f, nil
	}

	if bg, err := bgzf.NewReader(f, 1); err == nil {
		return &stackedReader{Reader: bg, closers: []io.Closer{bg, f}}, nil
	}

	// Plain gzip: not block-compressed.
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("seek %s: %w", path, err)
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create gzip reader for %s: %w", path, err)
	}
	return &stackedReader{Reader: gz, closers: []io.Closer{gz, f}}, nil
}

type stackedReader struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedReader) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
