package cache

import "sort"

// IntervalTree provides O(log n + k) overlap queries using a sorted-slice approach.
// Records are loaded once and never modified after build.
type IntervalTree struct {
	intervals []interval
	maxEnd    []int64 // maxEnd[i] = max(End) for intervals[:i+1]
}

type interval struct {
	start  int64
	end    int64
	record string
}

// BuildIntervalTree creates an interval tree over raw transcript records.
func BuildIntervalTree(records []*IndexedRecord) *IntervalTree {
	if len(records) == 0 {
		return &IntervalTree{}
	}

	intervals := make([]interval, len(records))
	for i, r := range records {
		intervals[i] = interval{start: r.Start, end: r.End, record: r.Line}
	}

	sort.SliceStable(intervals, func(i, j int) bool {
		return intervals[i].start < intervals[j].start
	})

	// Build prefix-max array: maxEnd[i] = max(end) for intervals[:i+1]
	maxEnd := make([]int64, len(intervals))
	maxEnd[0] = intervals[0].end
	for i := 1; i < len(intervals); i++ {
		maxEnd[i] = intervals[i].end
		if maxEnd[i-1] > maxEnd[i] {
			maxEnd[i] = maxEnd[i-1]
		}
	}

	return &IntervalTree{intervals: intervals, maxEnd: maxEnd}
}

// FindOverlaps returns the records whose [Start, End] range overlaps
// [start, end], in ascending start order.
func (t *IntervalTree) FindOverlaps(start, end int64) []string {
	if len(t.intervals) == 0 {
		return nil
	}

	// hi is the first index with start > end; candidates are [0, hi).
	hi := sort.Search(len(t.intervals), func(i int) bool {
		return t.intervals[i].start > end
	})

	var result []string
	for i := hi - 1; i >= 0; i-- {
		// Prune: no interval from 0..i reaches start.
		if t.maxEnd[i] < start {
			break
		}
		if t.intervals[i].end >= start {
			result = append(result, t.intervals[i].record)
		}
	}

	// Restore ascending order.
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result
}

// Len returns the number of indexed records.
func (t *IntervalTree) Len() int {
	return len(t.intervals)
}
