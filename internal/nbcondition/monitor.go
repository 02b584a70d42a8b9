package nbcondition

import (
	"nodebrain/internal/nbcell"
	"nodebrain/internal/nbobject"
)

// monitorLogic implements the `&~&`/`|~|` family (spec: "monitor: result
// is Unknown when guard off, right's value when guard on"). The guard
// (left operand) is always subscribed; the right operand is
// subscribed only while the guard is on, toggled from within Eval —
// matching original_source/lib/nbcondition.c's evalAndMonitor /
// evalOrMonitor, which call nbCellEnable/nbCellDisable on the right
// operand directly from eval rather than at Activate/Deactivate time.
type monitorLogic struct {
	name         string
	guardOn      truth // the left value that turns the guard on for this variant
	rightEnabled bool
}

func (m *monitorLogic) TypeName() string { return m.name }

func (m *monitorLogic) Eval(c *nbcell.Cell) nbobject.Object {
	left := classify(nbcell.OperandValue(c.Operand(0)))
	if left != m.guardOn {
		if m.rightEnabled {
			nbcell.Disable(c.Operand(1), c)
			m.rightEnabled = false
		}
		return nbobject.Object(nbobject.Unknown)
	}
	if !m.rightEnabled {
		nbcell.Enable(c.Operand(1), c)
		m.rightEnabled = true
	}
	return nbcell.OperandValue(c.Operand(1))
}

func (m *monitorLogic) Activate(c *nbcell.Cell)   { nbcell.Enable(c.Operand(0), c) }
func (m *monitorLogic) Deactivate(c *nbcell.Cell) {
	nbcell.Disable(c.Operand(0), c)
	if m.rightEnabled {
		nbcell.Disable(c.Operand(1), c)
		m.rightEnabled = false
	}
}

// AndMonitor builds the `&~&` condition: guard on when left is True.
func AndMonitor(left, right nbobject.Object) *nbcell.Cell {
	return nbcell.New(&monitorLogic{name: "&~&", guardOn: tTrue}, left, right)
}

// OrMonitor builds the `|~|` condition: guard on when left is False,
// mirroring the Or family's inverted-guard convention relative to And.
func OrMonitor(left, right nbobject.Object) *nbcell.Cell {
	return nbcell.New(&monitorLogic{name: "|~|", guardOn: tFalse}, left, right)
}
