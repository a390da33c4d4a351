// Package output provides annotation output formatters.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-cava/internal/annotate"
)

// recordColumns are the leading columns copied from the input record.
var recordColumns = []string{"ID", "CHROM", "POS", "REF", "ALT", "QUAL", "FILTER"}

// TabWriter writes one tab-delimited line per annotated variant: the input
// record columns, then each transcript flag as a ':'-joined string, then the
// flags of the annotation sources.
type TabWriter struct {
	w       *bufio.Writer
	flags   []string
	extras  []string
	columns []string
}

// NewTabWriter creates a tab-delimited writer for the given transcript flags
// and annotation sources.
func NewTabWriter(w io.Writer, flags []string, sources []annotate.AnnotationSource) *TabWriter {
	tw := &TabWriter{
		w:     bufio.NewWriter(w),
		flags: flags,
	}
	for _, s := range sources {
		for _, c := range s.Columns() {
			tw.extras = append(tw.extras, c.Name)
		}
	}
	tw.columns = append(tw.columns, recordColumns...)
	tw.columns = append(tw.columns, tw.flags...)
	tw.columns = append(tw.columns, tw.extras...)
	return tw
}

// Columns returns the header columns.
func (tw *TabWriter) Columns() []string {
	return tw.columns
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single annotation. Transcript flags of a variant without
// transcripts, and source flags a source did not set, are written as ".".
func (tw *TabWriter) Write(ann *annotate.Annotation) error {
	v := ann.Variant
	values := make([]string, 0, len(tw.columns))
	values = append(values,
		orDot(v.ID),
		v.Chrom,
		strconv.FormatInt(v.Pos, 10),
		v.Ref,
		v.Alt,
		formatQual(v.Qual),
		orDot(v.Filter),
	)

	for _, f := range tw.flags {
		if len(ann.Rows) == 0 {
			values = append(values, ".")
			continue
		}
		values = append(values, ann.Join(f))
	}
	for _, f := range tw.extras {
		value, ok := ann.GetExtra(f)
		if !ok {
			value = "."
		}
		values = append(values, value)
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

func orDot(s string) string {
	if s == "" {
		return "."
	}
	return s
}

func formatQual(q float64) string {
	if q == 0 {
		return "."
	}
	return strconv.FormatFloat(q, 'f', -1, 64)
}
