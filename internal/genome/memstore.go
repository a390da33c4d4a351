package genome

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
)

// MemStore is a Store that holds whole contigs in memory.
type MemStore struct {
	contigs map[string]string
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{contigs: make(map[string]string)}
}

// Add stores a contig, replacing any existing sequence of that name.
func (m *MemStore) Add(name, seq string) {
	m.contigs[name] = seq
}

// ParseFASTA reads FASTA content into a new MemStore. The contig name is the
// header up to the first whitespace.
func ParseFASTA(r io.Reader) (*MemStore, error) {
	m := NewMemStore()
	scanner := bufio.NewScanner(r)
	// Increase buffer size for long sequence lines
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	var name string
	var seq strings.Builder
	flush := func() {
		if name != "" {
			m.contigs[name] = seq.String()
		}
		seq.Reset()
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ">") {
			flush()
			fields := strings.Fields(line[1:])
			if len(fields) == 0 {
				return nil, fmt.Errorf("parse FASTA: empty header")
			}
			name = fields[0]
			continue
		}
		seq.WriteString(strings.TrimSpace(line))
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan FASTA: %w", err)
	}
	return m, nil
}

// References returns the sorted contig names.
func (m *MemStore) References() []string {
	names := make([]string, 0, len(m.contigs))
	for name := range m.contigs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Length returns the contig length.
func (m *MemStore) Length(chrom string) (int64, bool) {
	seq, ok := m.contigs[chrom]
	return int64(len(seq)), ok
}

// Fetch returns the bases of chrom in [start, end).
func (m *MemStore) Fetch(chrom string, start, end int64) (string, error) {
	seq, ok := m.contigs[chrom]
	if !ok {
		return "", fmt.Errorf("unknown contig %q", chrom)
	}
	if start < 0 || end > int64(len(seq)) || start > end {
		return "", fmt.Errorf("range %d-%d out of bounds for %s (length %d)", start, end, chrom, len(seq))
	}
	return seq[start:end], nil
}
