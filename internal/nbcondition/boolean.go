package nbcondition

import (
	"nodebrain/internal/nbcell"
	"nodebrain/internal/nbobject"
)

// binary is the common shape of the strict binary boolean family (spec:
// "Binary boolean, three-valued Kleene logic"): both operands are
// always enabled and both contribute on every eval.
type binary struct {
	name string
	fn   func(a, b truth) truth
	edge bool // true for the "e" (edge-preserving) variants
}

func (b *binary) TypeName() string { return b.name }
func (b *binary) Eval(c *nbcell.Cell) nbobject.Object {
	left := classify(nbcell.OperandValue(c.Operand(0)))
	right := classify(nbcell.OperandValue(c.Operand(1)))
	result := b.fn(left, right)
	if b.edge && result == tUnknown {
		// Edge-preserving variants surface a known operand's edge instead
		// of collapsing to Unknown when only one side is indeterminate.
		if left != tUnknown {
			return left.object()
		}
		if right != tUnknown {
			return right.object()
		}
	}
	return result.object()
}
func (b *binary) Activate(c *nbcell.Cell) {
	nbcell.Enable(c.Operand(0), c)
	nbcell.Enable(c.Operand(1), c)
}
func (b *binary) Deactivate(c *nbcell.Cell) {
	nbcell.Disable(c.Operand(0), c)
	nbcell.Disable(c.Operand(1), c)
}

func newBinary(name string, fn func(a, b truth) truth, left, right nbobject.Object, edge bool) *nbcell.Cell {
	return nbcell.New(&binary{name: name, fn: fn, edge: edge}, left, right)
}

// And builds the `&` condition.
func And(left, right nbobject.Object) *nbcell.Cell { return newBinary("&", and3, left, right, false) }

// Or builds the `|` condition.
func Or(left, right nbobject.Object) *nbcell.Cell { return newBinary("|", or3, left, right, false) }

// Nand builds the `!&` condition.
func Nand(left, right nbobject.Object) *nbcell.Cell {
	return newBinary("!&", func(a, b truth) truth { return not3(and3(a, b)) }, left, right, false)
}

// Nor builds the `!|` condition.
func Nor(left, right nbobject.Object) *nbcell.Cell {
	return newBinary("!|", func(a, b truth) truth { return not3(or3(a, b)) }, left, right, false)
}

// Xor builds the `|!&` condition.
func Xor(left, right nbobject.Object) *nbcell.Cell {
	return newBinary("|!&", xor3, left, right, false)
}

// AndE, OrE, NandE, NorE, XorE build the edge-preserving `e` variants:
// when exactly one operand is Unknown, the result follows the known
// operand's edge rather than defaulting to Unknown.
func AndE(left, right nbobject.Object) *nbcell.Cell { return newBinary("&e", and3, left, right, true) }
func OrE(left, right nbobject.Object) *nbcell.Cell  { return newBinary("|e", or3, left, right, true) }
func NandE(left, right nbobject.Object) *nbcell.Cell {
	return newBinary("!&e", func(a, b truth) truth { return not3(and3(a, b)) }, left, right, true)
}
func NorE(left, right nbobject.Object) *nbcell.Cell {
	return newBinary("!|e", func(a, b truth) truth { return not3(or3(a, b)) }, left, right, true)
}
func XorE(left, right nbobject.Object) *nbcell.Cell {
	return newBinary("|!&e", xor3, left, right, true)
}
