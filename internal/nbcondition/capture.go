package nbcondition

import (
	"nodebrain/internal/nbcell"
	"nodebrain/internal/nbobject"
)

// captureLogic implements the `&^&`/`|^|` family (spec: "capture:
// latches right's computed value at the moment of guard activation,
// then holds"). Unlike monitor, the right operand is never subscribed
// at all — it is read with a one-shot solve (nbcell.OperandValue, which
// recursively computes a disabled operand) exactly when the guard is
// on, and the cell's own cached value is returned unchanged (held)
// otherwise. Grounded on evalAndCapture/evalOrCapture, which call
// nbCellCompute_ (a one-shot solve) rather than enabling the right
// operand.
type captureLogic struct {
	name    string
	guardOn truth
}

func (cl *captureLogic) TypeName() string { return cl.name }

func (cl *captureLogic) Eval(c *nbcell.Cell) nbobject.Object {
	left := classify(nbcell.OperandValue(c.Operand(0)))
	if left != cl.guardOn {
		return c.CachedValue()
	}
	return nbcell.OperandValue(c.Operand(1))
}

// Activate enables only the guard and seeds the held value at Unknown
// (spec/C: "initialize capture to Unknown because eval may return
// current value" on its very first call).
func (cl *captureLogic) Activate(c *nbcell.Cell) {
	c.SetValue(nbobject.Object(nbobject.Unknown))
	nbcell.Enable(c.Operand(0), c)
}

func (cl *captureLogic) Deactivate(c *nbcell.Cell) {
	nbcell.Disable(c.Operand(0), c)
}

// AndCapture builds the `&^&` condition: captures right when left is
// True.
func AndCapture(left, right nbobject.Object) *nbcell.Cell {
	return nbcell.New(&captureLogic{name: "&^&", guardOn: tTrue}, left, right)
}

// OrCapture builds the `|^|` condition: captures right when left is
// False, mirroring the Or family's inverted-guard convention.
func OrCapture(left, right nbobject.Object) *nbcell.Cell {
	return nbcell.New(&captureLogic{name: "|^|", guardOn: tFalse}, left, right)
}
