// Package nbschedule implements the time-schedule algebra and clock
// (spec Component G): binary functions of integer (BFI) over epoch
// seconds, and the timer wheel that drives `~(schedule)` and `~^`
// temporal cells.
//
// Grounded on original_source/lib/nbbfi.c's segment-list model (a
// binary function of integer is -1/unknown outside its known domain,
// else 0/false or 1/true per whether a point falls in one of its True
// segments) and original_source/lib/nbclock.c's timer-queue main loop.
// The Go encoding departs from nbbfi.c's circular doubly-linked
// free-listed segment structure: a sorted []Segment slice with an
// explicit domain bound expresses the identical "binary function of
// integer" semantics using ordinary slice/sort idioms instead of a
// hand-rolled allocator, which buys nothing in a garbage-collected
// language. The algebra (And/Or/Xor/Not/Select/Reject/Union/Until/
// Yield/Known) is grounded on nbbfi.c's documented operation semantics,
// reimplemented as a sorted-breakpoint sweep rather than a literal
// pointer-chasing port.
package nbschedule

import (
	"math"
	"time"
)

// Segment is a half-open interval of epoch seconds over which a BFI is
// True: [Start, End).
type Segment struct {
	Start, End int64
}

func (s Segment) contains(i int64) bool { return s.Start <= i && i < s.End }
func (s Segment) overlaps(t Segment) bool {
	return s.Start < t.End && t.Start < s.End
}
func (s Segment) empty() bool { return s.End <= s.Start }

// negInf/posInf stand in for an unbounded domain edge so domain
// arithmetic (intersection, union) never needs a has-bound branch.
const (
	negInf = math.MinInt64
	posInf = math.MaxInt64
)

// BFI is a binary function of integer: Unknown outside its known
// domain, else True over its (sorted, non-overlapping, non-touching)
// True segments and False elsewhere within the domain.
type BFI struct {
	hasDomain        bool
	domStart, domEnd int64 // valid only if hasDomain
	segs             []Segment
}

// New returns the BFI that is False everywhere (no domain bound: known
// for all i).
func New() *BFI { return &BFI{} }

// NewBounded returns the BFI that is False over [domStart,domEnd) and
// Unknown outside it (spec: "Creation: empty, domain-bounded").
func NewBounded(domStart, domEnd int64) *BFI {
	return &BFI{hasDomain: true, domStart: domStart, domEnd: domEnd}
}

// FromSegments builds a BFI true over exactly the given segments, with
// domain computed as their overall span (min start to max end) — mirrors
// nbbfi.c's bfiNew deriving a domain node from the segment extremes when
// a function is built directly from literal segments rather than via an
// existing domain-bounded function.
func FromSegments(segs ...Segment) *BFI {
	normalized := connect(append([]Segment(nil), segs...), false)
	if len(normalized) == 0 {
		return New()
	}
	start, end := normalized[0].Start, normalized[len(normalized)-1].End
	return &BFI{hasDomain: true, domStart: start, domEnd: end, segs: normalized}
}

func (f *BFI) bounds() (int64, int64) {
	if f.hasDomain {
		return f.domStart, f.domEnd
	}
	return negInf, posInf
}

// Segments exposes the BFI's True segments read-only.
func (f *BFI) Segments() []Segment { return f.segs }

// HasDomain and Domain expose the known-ness bound, if any.
func (f *BFI) HasDomain() bool      { return f.hasDomain }
func (f *BFI) Domain() (int64, int64) { return f.domStart, f.domEnd }

// clone makes an independent copy (algebra never mutates its inputs).
func (f *BFI) clone() *BFI {
	segs := append([]Segment(nil), f.segs...)
	return &BFI{hasDomain: f.hasDomain, domStart: f.domStart, domEnd: f.domEnd, segs: segs}
}

// Eval returns -1 (Unknown), 0 (False), or 1 (True) for point i, per
// nbbfi.c's documented three-value contract.
func (f *BFI) Eval(i int64) int {
	if f.hasDomain && (i < f.domStart || i >= f.domEnd) {
		return -1
	}
	lo, hi := 0, len(f.segs)
	for lo < hi {
		mid := (lo + hi) / 2
		if f.segs[mid].End <= i {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(f.segs) && f.segs[lo].contains(i) {
		return 1
	}
	return 0
}

// ValueAt and NextChange satisfy nbcondition.Schedule so a BFI can drive
// a `~(schedule)` cell directly.
func (f *BFI) ValueAt(t time.Time) bool { return f.Eval(t.Unix()) == 1 }

// NextChange returns the smallest boundary (domain edge or segment edge)
// strictly greater than after (spec: schedNext).
func (f *BFI) NextChange(after time.Time) (time.Time, bool) {
	sec := after.Unix()
	var best int64
	found := false
	consider := func(b int64) {
		if b > sec && (!found || b < best) {
			best, found = b, true
		}
	}
	if f.hasDomain {
		consider(f.domStart)
		consider(f.domEnd)
	}
	for _, s := range f.segs {
		consider(s.Start)
		consider(s.End)
	}
	if !found {
		return time.Time{}, false
	}
	return time.Unix(best, 0).UTC(), true
}

// connect sorts and merges a raw (possibly overlapping or unsorted)
// segment slice into canonical form (spec: the "normal" coalescing
// variant when preserveEdges is false, the "preserving edges" variant
// when true — grounded on nbbfi.c's bfiOr_/bfiOre_ self-normalization
// pair). Touching segments (a.End == b.Start) are merged unless
// preserveEdges keeps a zero-length boundary between them.
func connect(segs []Segment, preserveEdges bool) []Segment {
	filtered := segs[:0]
	for _, s := range segs {
		if !s.empty() {
			filtered = append(filtered, s)
		}
	}
	segs = filtered
	sortSegments(segs)
	if len(segs) == 0 {
		return segs
	}
	out := make([]Segment, 0, len(segs))
	cur := segs[0]
	for _, s := range segs[1:] {
		touches := s.Start == cur.End
		if s.Start < cur.End || (touches && !preserveEdges) {
			if s.End > cur.End {
				cur.End = s.End
			}
			continue
		}
		out = append(out, cur)
		cur = s
	}
	out = append(out, cur)
	return out
}

func sortSegments(segs []Segment) {
	// insertion sort: segment counts in schedule algebra are small and
	// this keeps the dependency-free stdlib-only footprint nbbfi.c itself
	// has (no qsort call in the segment routines — insertion into the
	// linked list keeps it ordered as it grows).
	for i := 1; i < len(segs); i++ {
		for j := i; j > 0 && less(segs[j], segs[j-1]); j-- {
			segs[j], segs[j-1] = segs[j-1], segs[j]
		}
	}
}

func less(a, b Segment) bool {
	if a.Start != b.Start {
		return a.Start < b.Start
	}
	return a.End < b.End
}

// clip truncates/drops segs to fit within [lo,hi).
func clip(segs []Segment, lo, hi int64) []Segment {
	out := make([]Segment, 0, len(segs))
	for _, s := range segs {
		cs, ce := s.Start, s.End
		if lo != negInf && cs < lo {
			cs = lo
		}
		if hi != posInf && ce > hi {
			ce = hi
		}
		if ce > cs {
			out = append(out, Segment{cs, ce})
		}
	}
	return out
}

// Known clips g's segments to its own domain (spec: "known (clip to
// domain)"), dropping any segment (or part of a segment) that strayed
// outside it via some prior construction.
func Known(g *BFI) *BFI {
	lo, hi := g.bounds()
	return &BFI{hasDomain: g.hasDomain, domStart: g.domStart, domEnd: g.domEnd, segs: clip(g.segs, lo, hi)}
}
