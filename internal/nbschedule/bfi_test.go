package nbschedule

import (
	"testing"
	"time"
)

func seg(start, end int64) Segment { return Segment{start, end} }

func TestEvalUnknownOutsideDomain(t *testing.T) {
	f := NewBounded(100, 200)
	if f.Eval(50) != -1 {
		t.Fatalf("Eval(50) = %d, want -1 (before domain)", f.Eval(50))
	}
	if f.Eval(200) != -1 {
		t.Fatalf("Eval(200) = %d, want -1 (domain end is exclusive)", f.Eval(200))
	}
	if f.Eval(150) != 0 {
		t.Fatalf("Eval(150) = %d, want 0 (empty but known)", f.Eval(150))
	}
}

func TestEvalTrueWithinSegment(t *testing.T) {
	f := FromSegments(seg(100, 110), seg(200, 210))
	cases := map[int64]int{99: -1, 100: 1, 109: 1, 110: 0, 150: 0, 200: 1, 210: -1}
	for i, want := range cases {
		if got := f.Eval(i); got != want {
			t.Fatalf("Eval(%d) = %d, want %d", i, got, want)
		}
	}
}

func TestFromSegmentsMergesOverlap(t *testing.T) {
	f := FromSegments(seg(100, 150), seg(140, 160))
	segs := f.Segments()
	if len(segs) != 1 || segs[0] != seg(100, 160) {
		t.Fatalf("segments = %v, want single merged [100,160)", segs)
	}
}

func TestFromSegmentsMergesTouching(t *testing.T) {
	f := FromSegments(seg(100, 150), seg(150, 160))
	segs := f.Segments()
	if len(segs) != 1 || segs[0] != seg(100, 160) {
		t.Fatalf("segments = %v, want touching segments merged", segs)
	}
}

func TestValueAtMatchesEval(t *testing.T) {
	f := FromSegments(seg(1000, 2000))
	if !f.ValueAt(time.Unix(1500, 0)) {
		t.Fatalf("ValueAt(1500) = false, want true")
	}
	if f.ValueAt(time.Unix(2000, 0)) {
		t.Fatalf("ValueAt(2000) = true, want false (exclusive end)")
	}
}

func TestNextChangeFindsNearestBoundary(t *testing.T) {
	f := FromSegments(seg(1000, 2000), seg(3000, 4000))
	got, ok := f.NextChange(time.Unix(1500, 0))
	if !ok || got.Unix() != 2000 {
		t.Fatalf("NextChange(1500) = (%v,%v), want (2000,true)", got, ok)
	}
	got, ok = f.NextChange(time.Unix(2500, 0))
	if !ok || got.Unix() != 3000 {
		t.Fatalf("NextChange(2500) = (%v,%v), want (3000,true)", got, ok)
	}
	_, ok = f.NextChange(time.Unix(4000, 0))
	if ok {
		t.Fatalf("NextChange(4000) should report no further boundary")
	}
}

func TestKnownClipsToDomain(t *testing.T) {
	f := &BFI{hasDomain: true, domStart: 100, domEnd: 200, segs: []Segment{seg(50, 250)}}
	clipped := Known(f)
	segs := clipped.Segments()
	if len(segs) != 1 || segs[0] != seg(100, 200) {
		t.Fatalf("Known segments = %v, want [100,200)", segs)
	}
}
