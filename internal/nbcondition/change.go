package nbcondition

import (
	"nodebrain/internal/nbcell"
	"nodebrain/internal/nbobject"
)

// ChangeList is the reset list for `~=` conditions (spec: "it registers
// itself onto a reset list, and a once-per-cycle reset phase publishes
// False and clears the list"). Grounded on evalChange/condChangeReset's
// global `change` linked list; here it is an explicit value owned by
// the scheduler instead of process-global state (Design Notes).
//
// The spec leaves the exact cycle boundary to the hosting layer (Open
// Question, resolved in SPEC_FULL.md §4): this engine resets exactly
// once per react() drain, immediately after the drain reaches
// quiescence and before React returns.
type ChangeList struct {
	pending []*nbcell.Cell
}

// Register adds c to the pending reset list. Duplicate registration
// within one cycle (the same change cell re-alerted before reset) is
// harmless: Reset below visits each cell once via a dedup pass.
func (cl *ChangeList) Register(c *nbcell.Cell) {
	cl.pending = append(cl.pending, c)
}

// Reset publishes False to every registered cell not already False and
// clears the list, returning true if the list was non-empty (the caller
// may need to drain once more to propagate the resulting False values).
func (cl *ChangeList) Reset(sched nbcell.Scheduler) bool {
	if len(cl.pending) == 0 {
		return false
	}
	seen := make(map[*nbcell.Cell]bool, len(cl.pending))
	for _, c := range cl.pending {
		if seen[c] {
			continue
		}
		seen[c] = true
		if nbobject.IsFalse(c.CachedValue()) {
			continue
		}
		c.SetValue(nbobject.Object(nbobject.False))
		nbcell.Publish(c, sched)
	}
	cl.pending = cl.pending[:0]
	return true
}

// changeLogic implements `~=` (spec: "fires True on the transition of
// its operand"). Eval runs when the operand's publish alerts this cell,
// and once when the cell is first enabled; every call registers the
// cell onto the reset list and reports True, so a newly enabled `~=`
// cell reads True until the next reset.
type changeLogic struct {
	list *ChangeList
}

func (cg *changeLogic) TypeName() string { return "~=" }
func (cg *changeLogic) Eval(c *nbcell.Cell) nbobject.Object {
	cg.list.Register(c)
	return nbobject.Object(nbobject.True)
}
func (cg *changeLogic) Activate(c *nbcell.Cell)   { nbcell.Enable(c.Operand(0), c) }
func (cg *changeLogic) Deactivate(c *nbcell.Cell) { nbcell.Disable(c.Operand(0), c) }

// Change builds the `~=` condition against operand, registering its
// transitions onto list.
func Change(operand nbobject.Object, list *ChangeList) *nbcell.Cell {
	return nbcell.New(&changeLogic{list: list}, operand)
}
