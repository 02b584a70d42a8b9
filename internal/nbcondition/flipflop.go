package nbcondition

import (
	"nodebrain/internal/nbcell"
	"nodebrain/internal/nbobject"
)

// flipFlopLogic implements `^` (spec: "flip-flop: transitions from
// either side drive the stored value"). Both operands stay enabled
// always; the stored value only changes when exactly one side is
// known-true and the other known-false, and otherwise holds — grounded
// on evalFlipFlop.
type flipFlopLogic struct{}

func (flipFlopLogic) TypeName() string { return "^" }

func (flipFlopLogic) Eval(c *nbcell.Cell) nbobject.Object {
	left := classify(nbcell.OperandValue(c.Operand(0)))
	right := classify(nbcell.OperandValue(c.Operand(1)))
	if left == tUnknown || right == tUnknown {
		return c.CachedValue()
	}
	if left == tTrue && right == tFalse {
		return nbobject.Object(nbobject.True)
	}
	if left == tFalse && right == tTrue {
		return nbobject.Object(nbobject.False)
	}
	return c.CachedValue()
}

func (flipFlopLogic) Activate(c *nbcell.Cell) {
	c.SetValue(nbobject.Object(nbobject.Unknown))
	nbcell.Enable(c.Operand(0), c)
	nbcell.Enable(c.Operand(1), c)
}

func (flipFlopLogic) Deactivate(c *nbcell.Cell) {
	nbcell.Disable(c.Operand(0), c)
	nbcell.Disable(c.Operand(1), c)
}

// FlipFlop builds the `^` condition.
func FlipFlop(left, right nbobject.Object) *nbcell.Cell {
	return nbcell.New(&flipFlopLogic{}, left, right)
}
