// Package nbobject implements the engine's object heap and interning
// tables (spec Component A): reference-counted objects with type
// descriptors, and per-type hashes that guarantee structural uniqueness
// for small-value kinds (strings, reals, regexes).
//
// Grounded on the boxed-Value idiom of the teacher's internal/vm/value.go
// and internal/bytecode/chunk.go's constant-pool dedup, generalized to
// refcounted interning per original_source/lib/nbcell.c's object header
// (type descriptor, refcount, hash-chain link, cached value).
package nbobject

import "math"

// permanentRefcount is the saturating maximum; an object whose refcount
// reaches it is treated as permanent and never destroyed.
const permanentRefcount = math.MaxInt32

// Object is the interface satisfied by every heap value: reals, strings,
// regexes, and (in package nbcell) cells themselves. A constant is an
// Object whose Value() returns itself.
type Object interface {
	// TypeName is the type descriptor's printable name.
	TypeName() string
	// Value returns the object's own cached value. For constants this is
	// the object itself; for cells it is the last published value.
	Value() Object
}

// header is embedded in every concrete Object to provide the refcount
// bookkeeping described by spec Component A (interning is done by the
// Heap's Go maps, not by a hash chain in the header). It is not
// itself exported; concrete types expose Grab/Drop through the Heap.
type header struct {
	refcount int32
}

func (h *header) grab() {
	if h.refcount >= permanentRefcount {
		return
	}
	h.refcount++
}

// drop decrements the refcount and reports whether it reached zero.
func (h *header) drop() bool {
	if h.refcount >= permanentRefcount {
		return false
	}
	h.refcount--
	return h.refcount <= 0
}

// Refcount exposes the header's count read-only, for tests and
// diagnostics (spec invariant 6).
func (h *header) Refcount() int32 { return h.refcount }

// Permanent reports whether the object's refcount has saturated.
func (h *header) Permanent() bool { return h.refcount >= permanentRefcount }

// Sentinel is one of the three distinguished singleton objects.
type Sentinel struct {
	header
	name string
}

func (s *Sentinel) TypeName() string { return s.name }
func (s *Sentinel) Value() Object    { return s }
func (s *Sentinel) String() string   { return s.name }

func newSentinel(name string) *Sentinel {
	s := &Sentinel{name: name}
	s.header.refcount = permanentRefcount
	return s
}

// The three sentinels. They are process-wide singletons by construction
// (not a process-global var the Engine consults — callers hold them via
// the Heap that created them, per Design Notes' "collect globals into a
// context struct", but since sentinels are pure and type-less there is
// exactly one valid instance of each and no harm in sharing package-level
// singletons for identity comparison).
var (
	Unknown     = newSentinel("Unknown")
	Disabled    = newSentinel("Disabled")
	Placeholder = newSentinel("Placeholder")
)

// Real is an interned IEEE-754 double. Two equal doubles share one
// Object: pointer equality implies value equality.
type Real struct {
	header
	v float64
}

func (r *Real) TypeName() string { return "real" }
func (r *Real) Value() Object    { return r }
func (r *Real) Float() float64   { return r.v }

// True and False are the constant Reals representing the two known
// boolean values (spec: "Booleans are represented by constant Reals 1.0
// and 0.0; Unknown is neither").
var (
	True  = &Real{v: 1.0}
	False = &Real{v: 0.0}
)

func init() {
	True.header.refcount = permanentRefcount
	False.header.refcount = permanentRefcount
}

// IsTrue/IsFalse/IsUnknown classify a cell value against the three-valued
// domain. Only False(0.0) is false and only Unknown/Disabled is unknown;
// every other object (a nonzero Real, an interned String, a Regex, a
// Node) is logically true, per original_source/trunk/lib/nbcondition.c's
// evalRule: anything not Unknown/Disabled and not False is true. A nil
// Object is never produced by a conforming eval method, but defensively
// treated as Unknown.
func IsTrue(o Object) bool { return !IsFalse(o) && !IsUnknownOrDisabled(o) }
func IsFalse(o Object) bool { return o == Object(False) }
func IsUnknownOrDisabled(o Object) bool {
	return o == Object(Unknown) || o == Object(Disabled) || o == nil
}

// BoolObject converts a Go bool to the corresponding constant Real.
func BoolObject(b bool) Object {
	if b {
		return True
	}
	return False
}

// String is an interned text value.
type String struct {
	header
	s string
}

func (s *String) TypeName() string { return "string" }
func (s *String) Value() Object    { return s }
func (s *String) Text() string     { return s.s }
