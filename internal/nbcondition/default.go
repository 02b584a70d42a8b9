package nbcondition

import (
	"nodebrain/internal/nbcell"
	"nodebrain/internal/nbobject"
)

// defaultLogic implements the `?` infix condition (spec: "returns
// right if left is Unknown, else left"). Grounded on evalDefault.
type defaultLogic struct{}

func (defaultLogic) TypeName() string { return "?" }
func (defaultLogic) Eval(c *nbcell.Cell) nbobject.Object {
	left := nbcell.OperandValue(c.Operand(0))
	if nbobject.IsUnknownOrDisabled(left) {
		return nbcell.OperandValue(c.Operand(1))
	}
	return left
}
func (defaultLogic) Activate(c *nbcell.Cell) {
	nbcell.Enable(c.Operand(0), c)
	nbcell.Enable(c.Operand(1), c)
}
func (defaultLogic) Deactivate(c *nbcell.Cell) {
	nbcell.Disable(c.Operand(0), c)
	nbcell.Disable(c.Operand(1), c)
}

// Default builds the `?` infix condition.
func Default(left, right nbobject.Object) *nbcell.Cell {
	return nbcell.New(defaultLogic{}, left, right)
}
