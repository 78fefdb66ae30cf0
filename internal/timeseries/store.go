// Package timeseries holds the in-memory, timestamp-ordered set of
// consumption readings and answers inclusive range queries over it.
package timeseries

import (
	"slices"
	"sort"
	"time"

	"github.com/jgoulah/gridserve/pkg/models"
)

// Range selects readings by timestamp. A nil bound is unbounded; both
// bounds are inclusive.
type Range struct {
	Start *time.Time
	End   *time.Time
}

// Result is the answer to a range query
type Result struct {
	Readings   []models.Reading
	TotalCount int
}

// Store is an immutable, timestamp-sorted set of readings. It is safe for
// concurrent use because nothing writes to it after New returns.
type Store struct {
	readings []models.Reading
}

// New creates a store from readings. Equal timestamps keep their input order.
func New(readings []models.Reading) *Store {
	sorted := slices.Clone(readings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return &Store{readings: sorted}
}

// Len returns the number of readings
func (s *Store) Len() int {
	return len(s.readings)
}

// Span returns the first and last timestamps, or ok=false for an empty store
func (s *Store) Span() (first, last time.Time, ok bool) {
	if len(s.readings) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return s.readings[0].Timestamp, s.readings[len(s.readings)-1].Timestamp, true
}

// Query returns every reading inside r, in store order. An inverted range
// yields an empty result.
func (s *Store) Query(r Range) Result {
	lo, hi := 0, len(s.readings)
	if r.Start != nil {
		start := *r.Start
		lo = sort.Search(len(s.readings), func(i int) bool {
			return !s.readings[i].Timestamp.Before(start)
		})
	}
	if r.End != nil {
		end := *r.End
		hi = sort.Search(len(s.readings), func(i int) bool {
			return s.readings[i].Timestamp.After(end)
		})
	}

	if lo >= hi {
		return Result{Readings: []models.Reading{}}
	}

	out := make([]models.Reading, hi-lo)
	copy(out, s.readings[lo:hi])
	return Result{Readings: out, TotalCount: len(out)}
}
