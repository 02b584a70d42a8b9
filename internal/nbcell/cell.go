// Package nbcell implements the cell graph (spec Component C): typed
// cells, value caching, subscriber sets, and level numbering, plus the
// Term/Context/Node types of the data model (spec §3).
//
// Grounded on original_source/lib/nbcell.c and nbterm.c for the
// enable/disable protocol and level-adjustment walk; the Go encoding
// follows the Design Notes: subscriber back-edges are "weak" references
// held only in the publisher's subscriber tree (no cyclic strong
// ownership), and there is no process-global state — every cell is
// reached through an explicit graph rooted at the caller's Engine.
package nbcell

import (
	"unsafe"

	"nodebrain/internal/nbavl"
	"nodebrain/internal/nberrors"
	"nodebrain/internal/nbobject"
)

// MaxLevel bounds the scheduler's level vector (spec §4.4: "a vector of
// linked lists indexed by cell level (bounded, e.g. 100 levels)"),
// matching original_source/lib/nbcell.c's `maxLevel 100`.
const MaxLevel = 100

// Logic is the trait implemented by each concrete condition/rule type
// (spec Component E's ~40 subtypes). It replaces the C source's
// per-type function-pointer table (Design Notes).
type Logic interface {
	// TypeName is the type descriptor's printable name.
	TypeName() string
	// Eval returns the new cached value given the cell's current
	// operand values (read through OperandValue, below). Must be pure
	// and total over the operand value domain including sentinels
	// (spec §7: "never fail; type mismatches return Unknown").
	Eval(c *Cell) nbobject.Object
	// Activate is called exactly once, when a cell's subscriber count
	// transitions from zero to one: it recursively enables operands
	// that are themselves cells. The Cell's own Eval of the initial
	// value happens after Activate returns (driven by Enable below), not
	// inside it; Enable caches that value without publishing it.
	Activate(c *Cell)
	// Deactivate is called exactly once, when a cell's subscriber count
	// transitions from one to zero: it unsubscribes from operand cells.
	Deactivate(c *Cell)
}

// Alerter is optionally implemented by a Logic to divert the default
// scheduling behavior (spec §4.3 "alert (optional)"); rule types use
// this to queue their action instead of re-evaluating via eval+compare.
type Alerter interface {
	Alert(c *Cell, sched Scheduler)
}

// Scheduler is the narrow interface nbcell needs from the propagation
// scheduler (package nbscheduler) to avoid an import cycle: schedule a
// cell for re-evaluation at its current level.
type Scheduler interface {
	Schedule(c *Cell)
}

// Printer is optionally implemented by a Logic to supply a symbolic
// representation (spec §4.3 "print").
type Printer interface {
	Print(c *Cell) string
}

// Cell is the engine's fundamental propagating node: an Object extended
// with a cached value, a subscriber set, and a level. Operands are
// generic Objects, not necessarily Cells: a constant operand (an
// interned Real, String, Regex, or sentinel) is value-equal to itself
// and needs no subscriber bookkeeping at all (spec §3/§4.3) — only
// operands that are themselves *Cell participate in enable/disable and
// the level invariant.
type Cell struct {
	refcount  int32
	Logic     Logic
	value     nbobject.Object
	level     int
	subs      *nbavl.Tree[uintptr, *Cell]
	operands  []nbobject.Object
	scheduled bool // scheduler dedup flag (spec §4.4); stored here since
	              // it's intrinsically per-cell
}

func ptrKey(c *Cell) uintptr { return uintptr(unsafe.Pointer(c)) }

func cellCompare(a, b uintptr) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// New constructs a cell of the given logic over operands. It starts
// Disabled, as spec requires: "new_object ... set cached value to self
// (constant) or Disabled (cell)" — Cell is always the latter; true
// constants are plain nbobject.Object values (Real/String/Regex/
// sentinels), never a *Cell.
func New(logic Logic, operands ...nbobject.Object) *Cell {
	return &Cell{
		Logic:    logic,
		value:    nbobject.Disabled,
		subs:     nbavl.New[uintptr, *Cell](cellCompare),
		operands: operands,
	}
}

// TypeName satisfies nbobject.Object.
func (c *Cell) TypeName() string { return c.Logic.TypeName() }

// Value satisfies nbobject.Object: a cell's "value" as an operand of
// another cell is its currently cached value.
func (c *Cell) Value() nbobject.Object { return c.value }

// CachedValue is an alias for Value with a name matching spec
// terminology exactly.
func (c *Cell) CachedValue() nbobject.Object { return c.value }

// Level returns the cell's current level.
func (c *Cell) Level() int { return c.level }

// Operands returns the cell's operand objects (left/right for
// conditions, antecedent for rules, etc). An operand may be a *Cell or
// a plain constant Object.
func (c *Cell) Operands() []nbobject.Object { return c.operands }

// Operand is a convenience accessor for a fixed operand position (left
// = 0, right = 1), returning nil if absent.
func (c *Cell) Operand(i int) nbobject.Object {
	if i < 0 || i >= len(c.operands) {
		return nil
	}
	return c.operands[i]
}

// Scheduled reports, and SetScheduled maintains, the per-cell scheduler
// dedup flag described in spec §4.4.
func (c *Cell) Scheduled() bool     { return c.scheduled }
func (c *Cell) SetScheduled(v bool) { c.scheduled = v }

// Subscribers exposes the subscriber tree read-only, for tests and
// diagnostics (spec invariant 2).
func (c *Cell) Subscribers() *nbavl.Tree[uintptr, *Cell] { return c.subs }

// SubscriberCount reports the number of subscriber entries (duplicate
// subscriptions counted separately, spec invariant 4).
func (c *Cell) SubscriberCount() int { return c.subs.Len() }

// Grab/Drop give Cell the same refcounted lifecycle as other Objects
// (spec §3 Lifecycle), independent of subscriber-count-driven
// enable/disable.
func (c *Cell) Grab() { c.refcount++ }

// Drop decrements the reference count and reports whether it reached
// zero, at which point the caller (typically a Term releasing its old
// definition) must ensure the cell is fully disabled and destroyed.
func (c *Cell) Drop() bool {
	c.refcount--
	return c.refcount <= 0
}

func (c *Cell) Refcount() int32 { return c.refcount }

// Print renders the cell's symbolic representation if its Logic
// supplies one, else a generic fallback.
func (c *Cell) Print() string {
	if p, ok := c.Logic.(Printer); ok {
		return p.Print(c)
	}
	return c.Logic.TypeName()
}

// asCell reports whether op is a *Cell (participates in subscription
// and level bookkeeping) versus a plain constant Object.
func asCell(op nbobject.Object) (*Cell, bool) {
	c, ok := op.(*Cell)
	return c, ok
}

// Enable registers subscriber as a subscriber of a cell operand (spec
// §4.3 "Enable protocol"). If op is not a *Cell (a plain constant), it
// is short-circuited: constants need no subscription. If this is the
// cell's first subscriber, its Logic.Activate is invoked (recursively
// enabling its own cell operands), then its value is computed and
// cached — all before the subscription is considered complete, so the
// subscriber never observes a stale Disabled value.
func Enable(op nbobject.Object, subscriber *Cell) {
	c, ok := asCell(op)
	if !ok {
		return
	}
	first := c.subs.Len() == 0
	c.subs.Insert(ptrKey(subscriber), subscriber)
	if first {
		c.Logic.Activate(c)
		c.value = c.Logic.Eval(c)
	}
}

// Disable removes one subscription of subscriber from op (spec §4.3).
// If op is not a *Cell, this is a no-op. If the subscriber tree becomes
// empty, the cell's Logic.Deactivate is invoked (unsubscribing from
// operand cells) and its value reverts to Disabled — unless its Logic
// implements neverDisabled (Term), in which case the cached value is
// left as-is and further reads go through Compute.
func Disable(op nbobject.Object, subscriber *Cell) {
	c, ok := asCell(op)
	if !ok {
		return
	}
	removed := c.subs.RemoveValue(ptrKey(subscriber), func(v *Cell) bool { return v == subscriber })
	if removed == nil {
		return
	}
	if c.subs.Len() == 0 {
		c.Logic.Deactivate(c)
		if !c.exemptFromDisabled() {
			c.value = nbobject.Disabled
		}
	}
}

// exemptFromDisabled is overridden (via a marker interface) by logic
// types, like Term, that must never show Disabled to a reader resolving
// them on demand.
type neverDisabled interface{ NeverDisabled() bool }

func (c *Cell) exemptFromDisabled() bool {
	if m, ok := c.Logic.(neverDisabled); ok {
		return m.NeverDisabled()
	}
	return false
}

// Compute is the one-shot value accessor for a disabled cell (spec §6
// "compute"): it recursively requests operand values without installing
// any subscription, matching the "solve" method contract of spec §4.3.
// Logic.Eval implementations must read operand values through
// OperandValue, not by asserting *Cell themselves, so this recursive
// solve reaches disabled operand cells too.
func Compute(c *Cell) nbobject.Object {
	if c.subs.Len() > 0 {
		return c.value // already enabled and current
	}
	return c.Logic.Eval(c)
}

// OperandValue returns op's logical value for use by a Logic.Eval
// implementation: op itself if it is a plain constant, the cached value
// if op is an enabled cell, or a one-shot recursive solve if op is a
// disabled cell (spec §4.3 "solve").
func OperandValue(op nbobject.Object) nbobject.Object {
	c, ok := asCell(op)
	if !ok {
		return op
	}
	if c.subs.Len() > 0 {
		return c.value
	}
	return Compute(c)
}

// OperandLevel returns op's level for the level invariant: 0 for a
// plain constant, else the cell's level.
func OperandLevel(op nbobject.Object) int {
	if c, ok := asCell(op); ok {
		return c.level
	}
	return 0
}

// Publish walks c's subscriber tree and alerts each subscriber, per
// spec §4.4. The walk is robust against a subscriber's Alert mutating a
// *different* cell's subscriber set (it flattens the current set first)
// but not c's own set during this exact walk, per spec's stated
// guarantee.
func Publish(c *Cell, sched Scheduler) {
	nodes := c.subs.Flatten()
	for _, n := range nodes {
		sub := n.Val()
		if a, ok := sub.Logic.(Alerter); ok {
			a.Alert(sub, sched)
			continue
		}
		sched.Schedule(sub)
	}
}

// SetValue installs a new cached value without publishing; used by the
// scheduler's react() loop, which publishes separately after comparing
// old and new values.
func (c *Cell) SetValue(v nbobject.Object) { c.value = v }

// RaiseLevel implements the level-adjustment walk of spec §4.3: raising
// publisher's level to newLevel, then depth-first raising every
// transitive subscriber to at least publisher.level+1. A cycle (the
// start node revisited) is reported as a Logic error and the offending
// cell is forced to level 0 to break the loop, matching
// original_source/lib/nbcell.c's loop-breaking behavior.
func RaiseLevel(publisher *Cell, newLevel int) error {
	if newLevel <= publisher.level {
		return nil
	}
	publisher.level = newLevel
	return raiseSubscribers(publisher, publisher, make(map[*Cell]bool))
}

func raiseSubscribers(start, publisher *Cell, visited map[*Cell]bool) error {
	if visited[publisher] {
		return nil
	}
	visited[publisher] = true
	var walkErr error
	nodes := publisher.subs.Flatten()
	for _, n := range nodes {
		sub := n.Val()
		if sub == start {
			start.level = 0
			return nberrors.Logicf("cycle detected raising cell level; forced to level 0").WithTerm(start.Print())
		}
		if sub.level <= publisher.level {
			sub.level = publisher.level + 1
			if sub.level > 2*MaxLevel {
				sub.level = 0
				walkErr = nberrors.Logicf("cell level too high; forced to level 0").WithTerm(sub.Print())
				continue
			}
			if err := raiseSubscribers(start, sub, visited); err != nil {
				walkErr = err
			}
		}
	}
	return walkErr
}

// CheckLevelInvariant verifies spec invariant 3 for a single enabled
// cell: its level must exceed every cell-typed operand's level.
func (c *Cell) CheckLevelInvariant() bool {
	for _, op := range c.operands {
		if c.level <= OperandLevel(op) {
			if _, ok := asCell(op); ok {
				return false
			}
		}
	}
	return true
}
