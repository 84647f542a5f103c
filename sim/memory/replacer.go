package memory

import (
	"fmt"
	"strings"
)

// PageReplacer simulates a bounded pool of page frames under one eviction discipline.
type PageReplacer interface {
	// Access references page and reports whether it was already resident.
	// A miss loads the page, evicting a victim when the pool is full.
	Access(page int) (hit bool)
	// Replacements is the number of misses that required an eviction.
	Replacements() int
	// Faults is the number of misses, with or without eviction.
	Faults() int
	// Capacity is the frame count.
	Capacity() int
	// Resident lists resident pages in eviction order (next victim first).
	Resident() []int
}

// ReplacementFIFO is the only implemented replacement policy.
const ReplacementFIFO = "fifo"

// ValidReplacementPolicies is the set of recognized replacement policy names.
var ValidReplacementPolicies = map[string]bool{"": true, ReplacementFIFO: true}

// NewPageReplacer creates the named replacer with capacity frames.
// Empty name selects FIFO.
func NewPageReplacer(name string, capacity int) (PageReplacer, error) {
	switch strings.ToLower(name) {
	case "", ReplacementFIFO:
		if capacity < 1 {
			return nil, fmt.Errorf("frame capacity must be >= 1, got %d", capacity)
		}
		return NewFIFOReplacer(capacity), nil
	default:
		return nil, fmt.Errorf("unknown replacement policy %q", name)
	}
}

// FIFOReplacer evicts the page that has been resident longest. Hits do not
// change the eviction order.
type FIFOReplacer struct {
	capacity     int
	resident     map[int]bool
	arrival      []int // insertion order; arrival[0] is the next victim
	replacements int
	faults       int
}

// NewFIFOReplacer creates an empty FIFO frame table. Panics on capacity < 1.
func NewFIFOReplacer(capacity int) *FIFOReplacer {
	if capacity < 1 {
		panic(fmt.Sprintf("NewFIFOReplacer: capacity must be >= 1, got %d", capacity))
	}
	return &FIFOReplacer{
		capacity: capacity,
		resident: make(map[int]bool, capacity),
		arrival:  make([]int, 0, capacity),
	}
}

func (f *FIFOReplacer) Access(page int) bool {
	if f.resident[page] {
		return true
	}
	f.faults++
	if len(f.arrival) >= f.capacity {
		victim := f.arrival[0]
		f.arrival = f.arrival[1:]
		delete(f.resident, victim)
		f.replacements++
	}
	f.resident[page] = true
	f.arrival = append(f.arrival, page)
	return false
}

func (f *FIFOReplacer) Replacements() int { return f.replacements }
func (f *FIFOReplacer) Faults() int       { return f.faults }
func (f *FIFOReplacer) Capacity() int     { return f.capacity }

func (f *FIFOReplacer) Resident() []int {
	return append([]int(nil), f.arrival...)
}

// Replay feeds every page of seq to r and returns r's replacement count.
func Replay(r PageReplacer, seq []int) int {
	for _, page := range seq {
		r.Access(page)
	}
	return r.Replacements()
}
