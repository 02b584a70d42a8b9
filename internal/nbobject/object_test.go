package nbobject

import "testing"

func TestInternStringIdempotent(t *testing.T) {
	h := NewHeap()
	a := h.InternString("hello")
	b := h.InternString("hello")
	if a != b {
		t.Fatal("expected same interned String pointer")
	}
}

func TestInternRealIdempotent(t *testing.T) {
	h := NewHeap()
	a := h.InternReal(3.14)
	b := h.InternReal(3.14)
	if a != b {
		t.Fatal("expected same interned Real pointer")
	}
}

func TestInternZeroAndNegativeZero(t *testing.T) {
	h := NewHeap()
	pos := h.InternReal(0.0)
	neg := h.InternReal(-0.0)
	if pos != neg {
		t.Fatal("0.0 and -0.0 must intern to the same Real object")
	}
	if pos != False {
		t.Fatal("0.0 must intern to the False singleton")
	}
}

func TestInternOneIsTrueSingleton(t *testing.T) {
	h := NewHeap()
	one := h.InternReal(1.0)
	if one != True {
		t.Fatal("1.0 must intern to the True singleton")
	}
}

func TestGrabDropLifecycle(t *testing.T) {
	h := NewHeap()
	s := h.InternString("ephemeral")
	Grab(s)
	if Refcount(s) != 1 {
		t.Fatalf("refcount = %d, want 1", Refcount(s))
	}
	h.Drop(s)
	if Refcount(s) != 0 {
		t.Fatalf("refcount = %d, want 0", Refcount(s))
	}
	// Re-interning after the refcount reached zero and the entry was
	// unlinked reconstructs a fresh object.
	s2 := h.InternString("ephemeral")
	if s2 == nil {
		t.Fatal("expected re-intern to succeed")
	}
}

func TestSentinelsArePermanentSingletons(t *testing.T) {
	if !Permanent(Unknown) || !Permanent(Disabled) || !Permanent(Placeholder) {
		t.Fatal("sentinels must be permanent")
	}
	if Unknown.Value() != Object(Unknown) {
		t.Fatal("sentinel must be its own value (constant)")
	}
}

func TestCompileRegexInterning(t *testing.T) {
	h := NewHeap()
	r1, err := h.CompileRegex(`^foo\d+$`)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := h.CompileRegex(`^foo\d+$`)
	if err != nil {
		t.Fatal(err)
	}
	if r1 != r2 {
		t.Fatal("expected same interned Regex pointer")
	}
	if !r1.MatchString("foo123") || r1.MatchString("bar") {
		t.Fatal("regex match behavior wrong")
	}
}

func TestBoolObjectAndClassification(t *testing.T) {
	if !IsTrue(BoolObject(true)) {
		t.Fatal("BoolObject(true) must be True")
	}
	if !IsFalse(BoolObject(false)) {
		t.Fatal("BoolObject(false) must be False")
	}
	if !IsUnknownOrDisabled(Unknown) || !IsUnknownOrDisabled(Disabled) {
		t.Fatal("Unknown/Disabled must classify as such")
	}
	if IsUnknownOrDisabled(True) {
		t.Fatal("True must not classify as unknown/disabled")
	}
}
