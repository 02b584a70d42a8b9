package nbobject

import (
	"math"
	"regexp"
)

// Regex is an interned compiled pattern (spec: compile_regex -> Regex
// cell). Go's regexp package is RE2, not PCRE; it covers the match
// condition's needs (spec §4.5 "~regex" evaluates ... True/False per
// regex match") without requiring a PCRE binding.
type Regex struct {
	header
	pattern string
	re      *regexp.Regexp
}

func (r *Regex) TypeName() string       { return "regex" }
func (r *Regex) Value() Object          { return r }
func (r *Regex) MatchString(s string) bool { return r.re.MatchString(s) }
func (r *Regex) Pattern() string        { return r.pattern }

// Heap owns the per-type interning tables and the refcounted lifecycle
// (Grab/Drop). Per Design Notes, this replaces the C source's
// process-wide globals: callers thread one *Heap (embedded in
// nbengine.Engine) instead of relying on package-level state.
type Heap struct {
	strings map[string]*String
	reals   map[float64]*Real
	regexes map[string]*Regex

	// internCount counts the objects interned so far. Go's built-in maps
	// rehash internally, so the count drives no rehashing; nothing in
	// this package reads it.
	internCount int
}

// NewHeap creates an empty object heap.
func NewHeap() *Heap {
	return &Heap{
		strings: make(map[string]*String),
		reals:   make(map[float64]*Real),
		regexes: make(map[string]*Regex),
	}
}

// InternString returns the unique interned String for text, constructing
// it on first use (spec: intern_string).
func (h *Heap) InternString(text string) *String {
	if s, ok := h.strings[text]; ok {
		return s
	}
	s := &String{s: text}
	h.strings[text] = s
	h.internCount++
	return s
}

// normalizeZero folds -0.0 into 0.0 so the two are interned as one
// object (spec boundary behavior: "Interning 0.0 and -0.0 produces the
// same Real object").
func normalizeZero(f float64) float64 {
	if f == 0 {
		return 0
	}
	return f
}

// InternReal returns the unique interned Real for v (spec:
// intern_real). True (1.0) and False (0.0) are pre-interned permanent
// singletons and always returned for those exact values.
func (h *Heap) InternReal(v float64) *Real {
	v = normalizeZero(v)
	if v == 1.0 {
		return True
	}
	if v == 0.0 {
		return False
	}
	if r, ok := h.reals[v]; ok {
		return r
	}
	r := &Real{v: v}
	h.reals[v] = r
	h.internCount++
	return r
}

// CompileRegex returns the unique interned Regex for pattern (spec:
// compile_regex). A malformed pattern is a User error (spec §7); the
// caller is expected to translate the returned error into that
// classification (see nberrors.User).
func (h *Heap) CompileRegex(pattern string) (*Regex, error) {
	if r, ok := h.regexes[pattern]; ok {
		return r, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	r := &Regex{pattern: pattern, re: re}
	h.regexes[pattern] = r
	h.internCount++
	return r, nil
}

// Grab increments obj's refcount, saturating at the permanent maximum.
func Grab(obj Object) {
	if obj == nil {
		return
	}
	if g, ok := obj.(grabber); ok {
		g.grabHeader().grab()
	}
}

// Drop decrements obj's refcount. When it reaches zero and obj is an
// interned value owned by h, Drop unlinks it from h's table so it can be
// garbage collected and a future intern of the same key reconstructs it.
// Sentinels and the True/False singletons are permanent and never
// unlinked.
func (h *Heap) Drop(obj Object) {
	if obj == nil {
		return
	}
	g, ok := obj.(grabber)
	if !ok {
		return
	}
	if !g.grabHeader().drop() {
		return
	}
	switch v := obj.(type) {
	case *String:
		if cur, ok := h.strings[v.s]; ok && cur == v {
			delete(h.strings, v.s)
		}
	case *Real:
		if cur, ok := h.reals[v.v]; ok && cur == v {
			delete(h.reals, v.v)
		}
	case *Regex:
		if cur, ok := h.regexes[v.pattern]; ok && cur == v {
			delete(h.regexes, v.pattern)
		}
	}
}

// grabber is implemented by every concrete Object via its embedded
// header, letting the free functions above operate without a type
// switch over every kind.
type grabber interface {
	grabHeader() *header
}

func (h *header) grabHeader() *header { return h }

// Refcount and Permanent are re-exported as free functions for callers
// holding only an Object, not a concrete type.
func Refcount(obj Object) int32 {
	if g, ok := obj.(grabber); ok {
		return g.grabHeader().Refcount()
	}
	return math.MaxInt32
}

func Permanent(obj Object) bool {
	if g, ok := obj.(grabber); ok {
		return g.grabHeader().Permanent()
	}
	return true
}
