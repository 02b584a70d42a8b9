package nbcondition

import (
	"nodebrain/internal/nbcell"
	"nodebrain/internal/nbobject"
)

// relational implements the type-polymorphic relational family (spec:
// "=, <>, <, <=, >, >=. Type-polymorphic over interned Reals and
// Strings"). Grounded on evalRelEQ..evalRelGE: Unknown on either
// operand short-circuits to Unknown; a type mismatch between operands
// is Unknown for ordering and handled explicitly for equality (pointer
// identity covers interned equality, with a numeric fallback for Reals
// crossing heaps).
type relational struct {
	name string
	fn   func(left, right nbobject.Object) nbobject.Object
}

func (r *relational) TypeName() string { return r.name }
func (r *relational) Eval(c *nbcell.Cell) nbobject.Object {
	left := nbcell.OperandValue(c.Operand(0))
	right := nbcell.OperandValue(c.Operand(1))
	if nbobject.IsUnknownOrDisabled(left) || nbobject.IsUnknownOrDisabled(right) {
		return nbobject.Object(nbobject.Unknown)
	}
	return r.fn(left, right)
}
func (r *relational) Activate(c *nbcell.Cell) {
	nbcell.Enable(c.Operand(0), c)
	nbcell.Enable(c.Operand(1), c)
}
func (r *relational) Deactivate(c *nbcell.Cell) {
	nbcell.Disable(c.Operand(0), c)
	nbcell.Disable(c.Operand(1), c)
}

func asReal(o nbobject.Object) (float64, bool) {
	r, ok := o.(*nbobject.Real)
	if !ok {
		return 0, false
	}
	return r.Float(), true
}

func asText(o nbobject.Object) (string, bool) {
	s, ok := o.(*nbobject.String)
	if !ok {
		return "", false
	}
	return s.Text(), true
}

func relEq(left, right nbobject.Object) nbobject.Object {
	if left == right {
		return nbobject.Object(nbobject.True)
	}
	if lv, ok := asReal(left); ok {
		if rv, ok := asReal(right); ok && lv == rv {
			return nbobject.Object(nbobject.True)
		}
	}
	return nbobject.Object(nbobject.False)
}

func relNe(left, right nbobject.Object) nbobject.Object {
	return nbobject.BoolObject(!nbobject.IsTrue(relEq(left, right)))
}

// relOrder compares left and right, returning (cmp, ok): cmp<0, ==0, or
// >0, and ok false on a type mismatch (spec: "type mismatch yields
// Unknown").
func relOrder(left, right nbobject.Object) (int, bool) {
	if ls, ok := asText(left); ok {
		if rs, ok := asText(right); ok {
			switch {
			case ls < rs:
				return -1, true
			case ls > rs:
				return 1, true
			default:
				return 0, true
			}
		}
		return 0, false
	}
	if lv, ok := asReal(left); ok {
		if rv, ok := asReal(right); ok {
			switch {
			case lv < rv:
				return -1, true
			case lv > rv:
				return 1, true
			default:
				return 0, true
			}
		}
		return 0, false
	}
	return 0, false
}

func relLt(left, right nbobject.Object) nbobject.Object {
	cmp, ok := relOrder(left, right)
	if !ok {
		return nbobject.Object(nbobject.Unknown)
	}
	return nbobject.BoolObject(cmp < 0)
}
func relLe(left, right nbobject.Object) nbobject.Object {
	cmp, ok := relOrder(left, right)
	if !ok {
		return nbobject.Object(nbobject.Unknown)
	}
	return nbobject.BoolObject(cmp <= 0)
}
func relGt(left, right nbobject.Object) nbobject.Object {
	cmp, ok := relOrder(left, right)
	if !ok {
		return nbobject.Object(nbobject.Unknown)
	}
	return nbobject.BoolObject(cmp > 0)
}
func relGe(left, right nbobject.Object) nbobject.Object {
	cmp, ok := relOrder(left, right)
	if !ok {
		return nbobject.Object(nbobject.Unknown)
	}
	return nbobject.BoolObject(cmp >= 0)
}

// Eq, Ne, Lt, Le, Gt, Ge build the six relational conditions.
func Eq(left, right nbobject.Object) *nbcell.Cell {
	return nbcell.New(&relational{name: "=", fn: relEq}, left, right)
}
func Ne(left, right nbobject.Object) *nbcell.Cell {
	return nbcell.New(&relational{name: "<>", fn: relNe}, left, right)
}
func Lt(left, right nbobject.Object) *nbcell.Cell {
	return nbcell.New(&relational{name: "<", fn: relLt}, left, right)
}
func Le(left, right nbobject.Object) *nbcell.Cell {
	return nbcell.New(&relational{name: "<=", fn: relLe}, left, right)
}
func Gt(left, right nbobject.Object) *nbcell.Cell {
	return nbcell.New(&relational{name: ">", fn: relGt}, left, right)
}
func Ge(left, right nbobject.Object) *nbcell.Cell {
	return nbcell.New(&relational{name: ">=", fn: relGe}, left, right)
}
