package nbschedule

// combinedDomain computes the domain over which a pairwise Boolean
// combination of g and h is known: the intersection of their known
// domains (spec §4.7's algebra is only defined "for all i in the
// domain"; outside either operand's own domain the combination is
// unknown too). Grounded on nbbfi.c's bfiDomain, which intersects two
// domain segments the same way (the C source's reversed start/end naming
// for a domain node does not carry over here — domStart/domEnd keep
// their ordinary sense throughout this package).
func combinedDomain(g, h *BFI) (bool, int64, int64) {
	gs, ge := g.bounds()
	hs, he := h.bounds()
	start := gs
	if hs > start {
		start = hs
	}
	end := ge
	if he < end {
		end = he
	}
	if end < start {
		end = start
	}
	if start == negInf && end == posInf {
		return false, 0, 0
	}
	return true, start, end
}

// breakpoints collects the sorted, deduplicated set of segment/domain
// boundaries at which either g or h's Eval result can change, clipped to
// [lo,hi]. Between consecutive breakpoints, both functions are constant,
// so a pairwise combinator only needs to sample one representative point
// per interval.
func breakpoints(g, h *BFI, lo, hi int64) []int64 {
	var pts []int64
	add := func(v int64) {
		if (lo == negInf || v >= lo) && (hi == posInf || v <= hi) {
			pts = append(pts, v)
		}
	}
	if lo != negInf {
		add(lo)
	}
	if hi != posInf {
		add(hi)
	}
	for _, s := range g.segs {
		add(s.Start)
		add(s.End)
	}
	for _, s := range h.segs {
		add(s.Start)
		add(s.End)
	}
	sortInt64s(pts)
	out := pts[:0]
	for i, v := range pts {
		if i == 0 || v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

func sortInt64s(v []int64) {
	for i := 1; i < len(v); i++ {
		for j := i; j > 0 && v[j] < v[j-1]; j-- {
			v[j], v[j-1] = v[j-1], v[j]
		}
	}
}

// combine builds the BFI whose True segments are exactly the maximal
// intervals (sampled at each breakpoint run) where op(g.Eval, h.Eval)
// evaluates to 1, within the combined domain, normalized by connect with
// the given edge-preservation policy.
func combine(g, h *BFI, op func(a, b int) int, preserveEdges bool) *BFI {
	hasDomain, lo, hi := combinedDomain(g, h)
	if !hasDomain {
		lo, hi = negInf, posInf
	} else if lo >= hi {
		return &BFI{hasDomain: true, domStart: lo, domEnd: hi}
	}
	pts := breakpoints(g, h, lo, hi)
	var segs []Segment
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		if op(g.Eval(a), h.Eval(a)) == 1 {
			segs = append(segs, Segment{a, b})
		}
	}
	out := &BFI{hasDomain: hasDomain, domStart: lo, domEnd: hi, segs: connect(segs, preserveEdges)}
	return out
}

func kleeneAnd(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	if a == 1 && b == 1 {
		return 1
	}
	return -1
}

func kleeneOr(a, b int) int {
	if a == 1 || b == 1 {
		return 1
	}
	if a == 0 && b == 0 {
		return 0
	}
	return -1
}

func kleeneXor(a, b int) int {
	if a == -1 || b == -1 {
		return -1
	}
	if a != b {
		return 1
	}
	return 0
}

func kleeneNot(a int) int {
	switch a {
	case 1:
		return 0
	case 0:
		return 1
	default:
		return -1
	}
}

// And, Or, Xor are the coalescing (edge-merging) pairwise Boolean
// combinators; OrE/XorE preserve a zero-length boundary between adjacent
// True segments instead of merging them (spec: "the 'preserving edges'
// variants retain zero-length boundary between adjacent True segments;
// the normal variants coalesce").
func And(g, h *BFI) *BFI  { return combine(g, h, kleeneAnd, false) }
func Or(g, h *BFI) *BFI   { return combine(g, h, kleeneOr, false) }
func OrE(g, h *BFI) *BFI  { return combine(g, h, kleeneOr, true) }
func Xor(g, h *BFI) *BFI  { return combine(g, h, kleeneXor, false) }
func XorE(g, h *BFI) *BFI { return combine(g, h, kleeneXor, true) }

func Nand(g, h *BFI) *BFI { return Not(And(g, h)) }
func Nor(g, h *BFI) *BFI  { return Not(Or(g, h)) }

// Not complements g within its own domain (outside it, Unknown is
// unaffected by complementation). A domain-less g (known everywhere) has
// no finite complement to enumerate as segments and is returned as an
// all-False BFI, since "not known anywhere in particular" has no boundary
// to derive a segment list from.
func Not(g *BFI) *BFI {
	if !g.hasDomain {
		return New()
	}
	var segs []Segment
	cursor := g.domStart
	for _, s := range g.segs {
		if s.Start > cursor {
			segs = append(segs, Segment{cursor, s.Start})
		}
		if s.End > cursor {
			cursor = s.End
		}
	}
	if cursor < g.domEnd {
		segs = append(segs, Segment{cursor, g.domEnd})
	}
	return &BFI{hasDomain: true, domStart: g.domStart, domEnd: g.domEnd, segs: segs}
}
