package nbcondition

import (
	"nodebrain/internal/nbcell"
	"nodebrain/internal/nbobject"
)

// unary is the common shape of the unary boolean family: one operand,
// subscribe/unsubscribe to it if it is a cell.
type unary struct {
	name string
	fn   func(nbobject.Object) nbobject.Object
}

func (u *unary) TypeName() string { return u.name }
func (u *unary) Eval(c *nbcell.Cell) nbobject.Object {
	return u.fn(nbcell.OperandValue(c.Operand(0)))
}
func (u *unary) Activate(c *nbcell.Cell)   { nbcell.Enable(c.Operand(0), c) }
func (u *unary) Deactivate(c *nbcell.Cell) { nbcell.Disable(c.Operand(0), c) }

// Not builds the `!` condition: standard Kleene negation.
func Not(operand nbobject.Object) *nbcell.Cell {
	return nbcell.New(&unary{name: "!", fn: func(v nbobject.Object) nbobject.Object {
		return not3(classify(v)).object()
	}}, operand)
}

// CoerceTrue builds the `!!` condition: any non-False, non-Unknown value
// coerces to True, else False (never Unknown).
func CoerceTrue(operand nbobject.Object) *nbcell.Cell {
	return nbcell.New(&unary{name: "!!", fn: func(v nbobject.Object) nbobject.Object {
		if nbobject.IsFalse(v) || nbobject.IsUnknownOrDisabled(v) {
			return nbobject.Object(nbobject.False)
		}
		return nbobject.Object(nbobject.True)
	}}, operand)
}

// IsUnknown builds the `?` condition: True iff the operand is Unknown.
func IsUnknown(operand nbobject.Object) *nbcell.Cell {
	return nbcell.New(&unary{name: "?", fn: func(v nbobject.Object) nbobject.Object {
		return nbobject.BoolObject(nbobject.IsUnknownOrDisabled(v))
	}}, operand)
}

// IsKnown builds the `!?` condition: True iff the operand is not
// Unknown.
func IsKnown(operand nbobject.Object) *nbcell.Cell {
	return nbcell.New(&unary{name: "!?", fn: func(v nbobject.Object) nbobject.Object {
		return nbobject.BoolObject(!nbobject.IsUnknownOrDisabled(v))
	}}, operand)
}

// ClosedWorld builds the `[]` condition: Unknown becomes False, every
// other value passes through unchanged.
func ClosedWorld(operand nbobject.Object) *nbcell.Cell {
	return nbcell.New(&unary{name: "[]", fn: func(v nbobject.Object) nbobject.Object {
		if nbobject.IsUnknownOrDisabled(v) {
			return nbobject.Object(nbobject.False)
		}
		return v
	}}, operand)
}
