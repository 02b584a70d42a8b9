package nbschedule

import "testing"

func TestNthFromStartAndEnd(t *testing.T) {
	g := FromSegments(seg(0, 10), seg(20, 30), seg(40, 50))
	if s, ok := g.Nth(1); !ok || s != seg(0, 10) {
		t.Fatalf("Nth(1) = (%v,%v), want ([0,10),true)", s, ok)
	}
	if s, ok := g.Nth(2); !ok || s != seg(20, 30) {
		t.Fatalf("Nth(2) = (%v,%v), want ([20,30),true)", s, ok)
	}
	if s, ok := g.Nth(-1); !ok || s != seg(40, 50) {
		t.Fatalf("Nth(-1) = (%v,%v), want ([40,50),true)", s, ok)
	}
	if s, ok := g.Nth(-2); !ok || s != seg(20, 30) {
		t.Fatalf("Nth(-2) = (%v,%v), want ([20,30),true)", s, ok)
	}
}

func TestNthZeroAndOutOfRangeFail(t *testing.T) {
	g := FromSegments(seg(0, 10))
	if _, ok := g.Nth(0); ok {
		t.Fatalf("Nth(0) should never match")
	}
	if _, ok := g.Nth(5); ok {
		t.Fatalf("Nth(5) out of range should fail")
	}
	if _, ok := g.Nth(-5); ok {
		t.Fatalf("Nth(-5) out of range should fail")
	}
}

func TestRangeIndexSelectsInclusiveSlice(t *testing.T) {
	g := FromSegments(seg(0, 10), seg(20, 30), seg(40, 50), seg(60, 70))
	got := RangeIndex(g, 2, 3)
	if segs := got.Segments(); len(segs) != 2 || segs[0] != seg(20, 30) || segs[1] != seg(40, 50) {
		t.Fatalf("RangeIndex(2,3) segments = %v", segs)
	}
}

func TestRangeIndexInvalidBoundsReturnsEmpty(t *testing.T) {
	g := FromSegments(seg(0, 10), seg(20, 30))
	got := RangeIndex(g, 5, 6)
	if len(got.Segments()) != 0 {
		t.Fatalf("RangeIndex out of range should be empty, got %v", got.Segments())
	}
}

func TestSpanJoinsStartOfIToEndOfJ(t *testing.T) {
	g := FromSegments(seg(0, 10), seg(20, 30), seg(40, 50))
	s, ok := Span(g, 1, 3)
	if !ok || s != seg(0, 50) {
		t.Fatalf("Span(1,3) = (%v,%v), want ([0,50),true)", s, ok)
	}
}

func TestSpanNegativeIndices(t *testing.T) {
	g := FromSegments(seg(0, 10), seg(20, 30), seg(40, 50))
	s, ok := Span(g, 1, -1)
	if !ok || s != seg(0, 50) {
		t.Fatalf("Span(1,-1) = (%v,%v), want ([0,50),true)", s, ok)
	}
}
