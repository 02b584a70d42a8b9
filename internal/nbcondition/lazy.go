package nbcondition

import (
	"nodebrain/internal/nbcell"
	"nodebrain/internal/nbobject"
)

// lazyLogic is the shape of the lazy boolean family (spec: "evaluate
// left first; if the result alone determines the outcome ... the right
// operand is disabled — its cost is avoided"). rightEnabled tracks
// whether this specific cell currently holds a subscription on its
// right operand, since that subscription is toggled dynamically rather
// than fixed at Activate time.
type lazyLogic struct {
	name         string
	shortCircuit truth                       // the left value that alone determines the outcome
	combine      func(left, right truth) truth // used when left does not short-circuit
	rightEnabled bool
}

func (l *lazyLogic) TypeName() string { return l.name }

func (l *lazyLogic) Eval(c *nbcell.Cell) nbobject.Object {
	left := classify(nbcell.OperandValue(c.Operand(0)))
	if left == l.shortCircuit {
		if l.rightEnabled {
			nbcell.Disable(c.Operand(1), c)
			l.rightEnabled = false
		}
		return left.object()
	}
	if !l.rightEnabled {
		nbcell.Enable(c.Operand(1), c)
		l.rightEnabled = true
	}
	right := classify(nbcell.OperandValue(c.Operand(1)))
	return l.combine(left, right).object()
}

func (l *lazyLogic) Activate(c *nbcell.Cell) {
	nbcell.Enable(c.Operand(0), c)
	// The right operand is enabled lazily from within Eval, driven by
	// the first evaluation's left value, not unconditionally here.
}

func (l *lazyLogic) Deactivate(c *nbcell.Cell) {
	nbcell.Disable(c.Operand(0), c)
	if l.rightEnabled {
		nbcell.Disable(c.Operand(1), c)
		l.rightEnabled = false
	}
}

// LazyAnd builds the `&&` condition: False on the left short-circuits
// without ever enabling right.
func LazyAnd(left, right nbobject.Object) *nbcell.Cell {
	return nbcell.New(&lazyLogic{name: "&&", shortCircuit: tFalse, combine: and3}, left, right)
}

// LazyOr builds the `||` condition: True on the left short-circuits
// without ever enabling right.
func LazyOr(left, right nbobject.Object) *nbcell.Cell {
	return nbcell.New(&lazyLogic{name: "||", shortCircuit: tTrue, combine: or3}, left, right)
}
