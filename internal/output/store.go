package output

import (
	"fmt"

	"github.com/inodb/vibe-cava/internal/annotate"
)

// DefaultBatchSize is the number of annotations buffered before a store write.
const DefaultBatchSize = 1000

// ResultStore persists annotations, e.g. a *duckdb.Store.
type ResultStore interface {
	WriteAnnotations(anns []*annotate.Annotation) error
}

// StoreWriter forwards annotations to another writer and batches them into
// a ResultStore.
type StoreWriter struct {
	next      annotate.AnnotationWriter
	store     ResultStore
	batch     []*annotate.Annotation
	batchSize int
}

// NewStoreWriter wraps next; a nil next only persists.
func NewStoreWriter(next annotate.AnnotationWriter, store ResultStore, batchSize int) *StoreWriter {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &StoreWriter{next: next, store: store, batchSize: batchSize}
}

// WriteHeader writes the header of the wrapped writer.
func (sw *StoreWriter) WriteHeader() error {
	if sw.next == nil {
		return nil
	}
	return sw.next.WriteHeader()
}

// Write forwards ann and adds it to the pending batch.
func (sw *StoreWriter) Write(ann *annotate.Annotation) error {
	if sw.next != nil {
		if err := sw.next.Write(ann); err != nil {
			return err
		}
	}
	sw.batch = append(sw.batch, ann)
	if len(sw.batch) >= sw.batchSize {
		return sw.flushBatch()
	}
	return nil
}

// Flush writes the pending batch and flushes the wrapped writer.
func (sw *StoreWriter) Flush() error {
	if err := sw.flushBatch(); err != nil {
		return err
	}
	if sw.next == nil {
		return nil
	}
	return sw.next.Flush()
}

func (sw *StoreWriter) flushBatch() error {
	if len(sw.batch) == 0 {
		return nil
	}
	if err := sw.store.WriteAnnotations(sw.batch); err != nil {
		return fmt.Errorf("store annotations: %w", err)
	}
	sw.batch = sw.batch[:0]
	return nil
}
