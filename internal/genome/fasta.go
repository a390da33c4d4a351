package genome

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/biogo/hts/fai"
)

// IndexedFASTA is a Store backed by a FASTA file and its samtools .fai index.
// Reads go through io.ReaderAt, so concurrent Fetch calls are safe.
type IndexedFASTA struct {
	file *os.File
	idx  fai.Index
	seqs *fai.File
}

// OpenFASTA opens a FASTA file, reading path+".fai" when present and
// building the index by scanning the file otherwise.
func OpenFASTA(path string) (*IndexedFASTA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference: %w", err)
	}

	idx, err := loadFAI(path + ".fai")
	if errors.Is(err, os.ErrNotExist) {
		idx, err = fai.NewIndex(f)
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("index reference %s: %w", path, err)
	}

	return &IndexedFASTA{file: f, idx: idx, seqs: fai.NewFile(f, idx)}, nil
}

func loadFAI(path string) (fai.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return fai.ReadFrom(f)
}

// WriteIndex writes the samtools-compatible .fai index for the open file.
func (s *IndexedFASTA) WriteIndex(w io.Writer) error {
	return fai.WriteTo(w, s.idx)
}

// References returns the sorted contig names.
func (s *IndexedFASTA) References() []string {
	names := make([]string, 0, len(s.idx))
	for name := range s.idx {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Length returns the contig length.
func (s *IndexedFASTA) Length(chrom string) (int64, bool) {
	rec, ok := s.idx[chrom]
	if !ok {
		return 0, false
	}
	return int64(rec.Length), true
}

// Fetch returns the bases of chrom in [start, end).
func (s *IndexedFASTA) Fetch(chrom string, start, end int64) (string, error) {
	r, err := s.seqs.SeqRange(chrom, int(start), int(end))
	if err != nil {
		return "", fmt.Errorf("fetch %s:%d-%d: %w", chrom, start, end, err)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s:%d-%d: %w", chrom, start, end, err)
	}
	return string(b), nil
}

// Close closes the underlying file.
func (s *IndexedFASTA) Close() error {
	return s.file.Close()
}
