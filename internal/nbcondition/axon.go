package nbcondition

import (
	"cmp"

	"nodebrain/internal/nbavl"
	"nodebrain/internal/nbcell"
	"nodebrain/internal/nbobject"
)

// Axon accelerators reduce evaluation of many relational conditions
// sharing the same left operand. Instead of every "left = 5",
// "left = 6", ... condition subscribing to left directly and
// re-evaluating on each change, an axon cell subscribes to left once
// and keeps a value-ordered index of the dependent conditions. On a
// change of left's value, the axon walks only the segment of the
// index affected by the transition and pushes True/False directly
// into those dependents, skipping eval of everything else.
//
// Grounded on original_source/lib/nbaxon.c (evalAxonRelEq,
// evalAxonRelReal, evalAxonRelString): the "subscription tree ordered
// by value instead of address" idea is carried over, using nbavl's
// generic Tree with a value comparator instead of nbcell's default
// address-ordered subscriber tree (which a dependent condition is
// deliberately NOT inserted into — axon dependents are driven directly
// by the axon, never scheduled for their own Eval).

// valueKey is AxonRelEq's index key: C's single AxonRelEq type
// compares right operands by pointer identity regardless of their
// underlying type (Real or String), so the Go index key spans both.
type valueKey struct {
	isReal bool
	r      float64
	s      string
}

func axonEqKey(o nbobject.Object) (valueKey, bool) {
	switch v := o.(type) {
	case *nbobject.Real:
		return valueKey{isReal: true, r: v.Float()}, true
	case *nbobject.String:
		return valueKey{s: v.Text()}, true
	default:
		return valueKey{}, false
	}
}

func cmpValueKey(a, b valueKey) int {
	if a.isReal != b.isReal {
		if a.isReal {
			return -1
		}
		return 1
	}
	if a.isReal {
		switch {
		case a.r < b.r:
			return -1
		case a.r > b.r:
			return 1
		default:
			return 0
		}
	}
	switch {
	case a.s < b.s:
		return -1
	case a.s > b.s:
		return 1
	default:
		return 0
	}
}

// AxonRelEq accelerates many "left = const" conditions sharing left.
// Grounded on evalAxonRelEq: on change, look up the single dependent
// whose right constant equals the new value (an O(log N) tree find)
// instead of re-evaluating every dependent.
type AxonRelEq struct {
	left        nbobject.Object
	index       *nbavl.Tree[valueKey, *nbcell.Cell]
	trueCell    *nbcell.Cell
	trueUnknown bool
	self        *nbcell.Cell
}

// NewAxonRelEq creates an axon over left. The axon does not subscribe
// to left until its first dependent is registered.
func NewAxonRelEq(left nbobject.Object) *AxonRelEq {
	a := &AxonRelEq{
		left:  left,
		index: nbavl.New[valueKey, *nbcell.Cell](cmpValueKey),
	}
	a.self = nbcell.New(&axonEqLogic{axon: a})
	return a
}

// Register adds a dependent "left = right" condition, returning its
// cell. The cell's value is driven entirely by the axon from this
// point on (its own Eval just reports the axon's current verdict).
func (a *AxonRelEq) Register(right nbobject.Object) *nbcell.Cell {
	dep := nbcell.New(&axonEqDepLogic{axon: a})
	key, _ := axonEqKey(right)
	a.index.Insert(key, dep)
	if a.index.Len() == 1 {
		nbcell.Enable(a.left, a.self)
	}
	leftVal := nbcell.OperandValue(a.left)
	switch {
	case nbobject.IsUnknownOrDisabled(leftVal):
		a.trueUnknown = true
	case nbobject.IsTrue(relEq(leftVal, right)):
		a.trueUnknown = false
		a.trueCell = dep
	}
	return dep
}

// Unregister removes a previously registered dependent, disabling the
// axon's own subscription to left once no dependents remain.
func (a *AxonRelEq) Unregister(right nbobject.Object, dep *nbcell.Cell) {
	key, _ := axonEqKey(right)
	a.index.RemoveValue(key, func(v *nbcell.Cell) bool { return v == dep })
	if a.trueCell == dep {
		a.trueCell = nil
	}
	if a.index.Len() == 0 {
		nbcell.Disable(a.left, a.self)
	}
}

type axonEqDepLogic struct{ axon *AxonRelEq }

func (l *axonEqDepLogic) TypeName() string { return "axon=" }

// Eval only runs once, from inside nbcell.Enable when a consumer
// subscribes to this dependent for the first time; all later updates
// come directly from axonEqLogic.Alert via SetValue+Publish.
func (l *axonEqDepLogic) Eval(c *nbcell.Cell) nbobject.Object {
	switch {
	case l.axon.trueUnknown:
		return nbobject.Object(nbobject.Unknown)
	case l.axon.trueCell == c:
		return nbobject.Object(nbobject.True)
	default:
		return nbobject.Object(nbobject.False)
	}
}
func (l *axonEqDepLogic) Activate(c *nbcell.Cell)   {}
func (l *axonEqDepLogic) Deactivate(c *nbcell.Cell) {}

// axonEqLogic is the axon's own cell Logic: it implements Alerter so a
// change of left is handled synchronously (the index walk) rather than
// being merely scheduled like an ordinary dependent.
type axonEqLogic struct{ axon *AxonRelEq }

func (l *axonEqLogic) TypeName() string                       { return "AxonRelEq" }
func (l *axonEqLogic) Eval(c *nbcell.Cell) nbobject.Object     { return nbobject.Object(nbobject.Unknown) }
func (l *axonEqLogic) Activate(c *nbcell.Cell)                 {}
func (l *axonEqLogic) Deactivate(c *nbcell.Cell)                {}

func (l *axonEqLogic) Alert(c *nbcell.Cell, sched nbcell.Scheduler) {
	a := l.axon
	newVal := nbcell.OperandValue(a.left)
	key, ok := axonEqKey(newVal)
	if !ok {
		// Unknown, Disabled, or a value type this axon can't index: the
		// original flags this with a TODO ("replace this with tree
		// traversal setting to unknown and publish subscribers") rather
		// than implementing it; here it is implemented directly.
		a.index.InOrder(func(n *nbavl.Node[valueKey, *nbcell.Cell]) bool {
			dep := n.Val()
			dep.SetValue(nbobject.Object(nbobject.Unknown))
			nbcell.Publish(dep, sched)
			return true
		})
		a.trueCell = nil
		a.trueUnknown = true
		return
	}
	wasUnknown := a.trueUnknown
	a.trueUnknown = false
	var newTrue *nbcell.Cell
	if node := a.index.Find(key); node != nil {
		newTrue = node.Val()
	}
	if wasUnknown {
		// Every dependent was Unknown: each one gets its own verdict now.
		a.index.InOrder(func(n *nbavl.Node[valueKey, *nbcell.Cell]) bool {
			dep := n.Val()
			dep.SetValue(nbobject.BoolObject(dep == newTrue))
			nbcell.Publish(dep, sched)
			return true
		})
		a.trueCell = newTrue
		return
	}
	if newTrue == a.trueCell {
		return
	}
	if newTrue != nil {
		newTrue.SetValue(nbobject.Object(nbobject.True))
		nbcell.Publish(newTrue, sched)
	}
	if a.trueCell != nil {
		a.trueCell.SetValue(nbobject.Object(nbobject.False))
		nbcell.Publish(a.trueCell, sched)
	}
	a.trueCell = newTrue
}

// rangeAxon accelerates many "left < const" or "left > const"
// conditions sharing left, for any ordered constant type (Real or
// String). Grounded on evalAxonRelReal/evalAxonRelString, which the
// original duplicates near-verbatim per value type; the Go version
// generalizes over cmp.Ordered once instead.
type rangeAxon[K cmp.Ordered] struct {
	left  nbobject.Object
	gt    bool // true: AxonRelGt*, false: AxonRelLt*
	index *nbavl.Tree[K, *nbcell.Cell]
	have  bool
	last  K
	self  *nbcell.Cell
	asKey func(nbobject.Object) (K, bool)
}

func newRangeAxon[K cmp.Ordered](left nbobject.Object, gt bool, asKey func(nbobject.Object) (K, bool)) *rangeAxon[K] {
	cmpK := func(a, b K) int {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	}
	a := &rangeAxon[K]{left: left, gt: gt, asKey: asKey, index: nbavl.New[K, *nbcell.Cell](cmpK)}
	a.self = nbcell.New(&rangeAxonLogic[K]{axon: a})
	return a
}

// Register adds a dependent "left < right" or "left > right"
// condition, returning its cell.
func (a *rangeAxon[K]) Register(right K) *nbcell.Cell {
	dep := nbcell.New(&rangeDepLogic[K]{})
	a.index.Insert(right, dep)
	if a.index.Len() == 1 {
		nbcell.Enable(a.left, a.self)
	}
	if k, ok := a.asKey(nbcell.OperandValue(a.left)); ok {
		if a.gt {
			dep.SetValue(nbobject.BoolObject(k > right))
		} else {
			dep.SetValue(nbobject.BoolObject(k < right))
		}
	} else {
		dep.SetValue(nbobject.Object(nbobject.Unknown))
	}
	return dep
}

// Unregister removes a previously registered dependent.
func (a *rangeAxon[K]) Unregister(right K, dep *nbcell.Cell) {
	a.index.RemoveValue(right, func(v *nbcell.Cell) bool { return v == dep })
	if a.index.Len() == 0 {
		nbcell.Disable(a.left, a.self)
		a.have = false
	}
}

// rangeDepLogic never computes independently; the owning axon drives
// its value directly via SetValue+Publish.
type rangeDepLogic[K cmp.Ordered] struct{}

func (l *rangeDepLogic[K]) TypeName() string                   { return "axon-range" }
func (l *rangeDepLogic[K]) Eval(c *nbcell.Cell) nbobject.Object { return c.CachedValue() }
func (l *rangeDepLogic[K]) Activate(c *nbcell.Cell)             {}
func (l *rangeDepLogic[K]) Deactivate(c *nbcell.Cell)           {}

type rangeAxonLogic[K cmp.Ordered] struct{ axon *rangeAxon[K] }

func (l *rangeAxonLogic[K]) TypeName() string { return "AxonRelRange" }
func (l *rangeAxonLogic[K]) Eval(c *nbcell.Cell) nbobject.Object {
	return nbobject.Object(nbobject.Unknown)
}
func (l *rangeAxonLogic[K]) Activate(c *nbcell.Cell)   {}
func (l *rangeAxonLogic[K]) Deactivate(c *nbcell.Cell) {}

// Alert walks only the segment of the index between the prior and new
// value of left (spec: "the axon walks only the affected segment of
// the index (the open interval between old and new value, for </>;
// the equal-value node for =)"), setting the crossed dependents to the
// direction-appropriate boolean and leaving everything else untouched.
// The first known value of left (initially, or after an Unknown) has no
// prior value to walk from, so it sets every dependent.
func (l *rangeAxonLogic[K]) Alert(c *nbcell.Cell, sched nbcell.Scheduler) {
	a := l.axon
	newVal := nbcell.OperandValue(a.left)
	k, ok := a.asKey(newVal)
	if !ok {
		if a.have {
			a.index.InOrder(func(n *nbavl.Node[K, *nbcell.Cell]) bool {
				dep := n.Val()
				dep.SetValue(nbobject.Object(nbobject.Unknown))
				nbcell.Publish(dep, sched)
				return true
			})
			a.have = false
		}
		return
	}
	if !a.have {
		// No prior known value to walk from: set every dependent from k.
		a.index.InOrder(func(n *nbavl.Node[K, *nbcell.Cell]) bool {
			v := nbobject.BoolObject(k < n.Key())
			if a.gt {
				v = nbobject.BoolObject(k > n.Key())
			}
			if dep := n.Val(); dep.CachedValue() != v {
				dep.SetValue(v)
				nbcell.Publish(dep, sched)
			}
			return true
		})
		a.have = true
		a.last = k
		return
	}
	if a.last == k {
		return
	}

	var lo, hi K
	var flipTrue bool
	// In either direction, a Gt dependent whose constant equals the lower
	// bound and an Lt dependent whose constant equals the upper bound
	// change value; the opposite edges do not.
	includeLo, includeHi := a.gt, !a.gt
	switch {
	case a.last < k: // rising
		lo, hi = a.last, k
		flipTrue = a.gt
	default: // falling
		lo, hi = k, a.last
		flipTrue = !a.gt
	}

	condValue := nbobject.Object(nbobject.False)
	if flipTrue {
		condValue = nbobject.Object(nbobject.True)
	}

	a.index.Range(lo, hi, func(n *nbavl.Node[K, *nbcell.Cell]) bool {
		v := n.Key()
		include := (v > lo && v < hi) || (v == lo && includeLo) || (v == hi && includeHi)
		if include {
			dep := n.Val()
			dep.SetValue(condValue)
			nbcell.Publish(dep, sched)
		}
		return true
	})

	a.last = k
}

// AxonRelLtReal / AxonRelGtReal accelerate "left < real" / "left >
// real" conditions sharing a real-valued left.
type AxonRelLtReal struct{ *rangeAxon[float64] }
type AxonRelGtReal struct{ *rangeAxon[float64] }

func NewAxonRelLtReal(left nbobject.Object) *AxonRelLtReal {
	return &AxonRelLtReal{newRangeAxon(left, false, asReal)}
}
func NewAxonRelGtReal(left nbobject.Object) *AxonRelGtReal {
	return &AxonRelGtReal{newRangeAxon(left, true, asReal)}
}

// AxonRelLtString / AxonRelGtString accelerate "left < string" / "left
// > string" conditions (lexical order) sharing a string-valued left.
type AxonRelLtString struct{ *rangeAxon[string] }
type AxonRelGtString struct{ *rangeAxon[string] }

func NewAxonRelLtString(left nbobject.Object) *AxonRelLtString {
	return &AxonRelLtString{newRangeAxon(left, false, asText)}
}
func NewAxonRelGtString(left nbobject.Object) *AxonRelGtString {
	return &AxonRelGtString{newRangeAxon(left, true, asText)}
}
