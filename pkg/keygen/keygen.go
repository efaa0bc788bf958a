package keygen

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// NewAccountID generates an opaque account identifier
func NewAccountID() string {
	return uuid.New().String()
}

// RecordIDGenerator issues time-derived record IDs. IDs are the decimal
// Unix-nanosecond stamp of the creation time and are strictly increasing
// within one generator, so the paired timestamp never ties.
type RecordIDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewRecordIDGenerator creates a generator using the wall clock
func NewRecordIDGenerator() *RecordIDGenerator {
	return &RecordIDGenerator{now: time.Now}
}

// NewRecordIDGeneratorWithClock creates a generator with a custom clock
func NewRecordIDGeneratorWithClock(now func() time.Time) *RecordIDGenerator {
	return &RecordIDGenerator{now: now}
}

// Next returns a new ID and the creation time it encodes
func (g *RecordIDGenerator) Next() (string, time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	stamp := g.now().UnixNano()
	if stamp <= g.last {
		stamp = g.last + 1
	}
	g.last = stamp

	return strconv.FormatInt(stamp, 10), time.Unix(0, stamp).UTC()
}

// CompareRecordIDs orders two record IDs numerically.
// Returns -1, 0 or 1.
func CompareRecordIDs(a, b string) int {
	// Equal-length decimal strings compare lexically; shorter is smaller
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
