package nbengine

import (
	"time"

	"nodebrain/internal/nbcell"
	"nodebrain/internal/nbcondition"
	"nodebrain/internal/nberrors"
	"nodebrain/internal/nbglossary"
	"nodebrain/internal/nbobject"
	"nodebrain/internal/nbschedule"
	"nodebrain/internal/nbscheduler"
)

// binaryConditions maps a spec §4.5 binary type token to its
// constructor, covering the strict/edge-preserving Kleene booleans,
// the relational family, and the remaining two-operand types that need
// no extra construction-time argument beyond their operands.
var binaryConditions = map[string]func(left, right nbobject.Object) *nbcell.Cell{
	"&": nbcondition.And, "|": nbcondition.Or, "!&": nbcondition.Nand,
	"!|": nbcondition.Nor, "|!&": nbcondition.Xor,
	"&e": nbcondition.AndE, "|e": nbcondition.OrE, "!&e": nbcondition.NandE,
	"!|e": nbcondition.NorE, "|!&e": nbcondition.XorE,
	"=": nbcondition.Eq, "<>": nbcondition.Ne, "<": nbcondition.Lt,
	"<=": nbcondition.Le, ">": nbcondition.Gt, ">=": nbcondition.Ge,
	"^":   nbcondition.FlipFlop,
	"?":   nbcondition.Default,
	"&&":  nbcondition.LazyAnd,
	"||":  nbcondition.LazyOr,
	"&c":  nbcondition.AndCapture,
	"|c":  nbcondition.OrCapture,
	"&m":  nbcondition.AndMonitor,
	"|m":  nbcondition.OrMonitor,
}

// unaryConditions maps a one-operand type token to its constructor.
var unaryConditions = map[string]func(operand nbobject.Object) *nbcell.Cell{
	"!": nbcondition.Not, "!!": nbcondition.CoerceTrue,
	"isunknown": nbcondition.IsUnknown, "!?": nbcondition.IsKnown,
	"[]": nbcondition.ClosedWorld,
}

// MakeCondition implements spec §6's make_condition(type, left, right)
// for every condition type that needs no construction-time argument
// beyond its operand(s) — the Kleene boolean family, the relational
// family, flip-flop, default, the lazy/capturing/monitoring `&&`/`||`
// variants, and the unary family (right is ignored for a unary type).
// The few types that need engine-owned state (rules, `~(schedule)`,
// `~=`, `~"regex"`) are built through their own dedicated Engine
// methods below instead, since spec's three-argument contract has no
// room for a clock, a change list, or an antecedent-firing context. A
// `~^` delay is built with nbcondition.Delay over ClockAdapter, and the
// axon-backed relational optimizations directly in nbcondition; neither
// has an Engine method.
func (e *Engine) MakeCondition(typ string, left, right nbobject.Object) (*nbcell.Cell, error) {
	if fn, ok := binaryConditions[typ]; ok {
		return fn(left, right), nil
	}
	if fn, ok := unaryConditions[typ]; ok {
		return fn(left), nil
	}
	return nil, nberrors.Userf("unknown condition type %q", typ)
}

// Rule builds an `on`/`when`/`if` rule cell (spec §4.5's rule family).
// kind must be "on", "when", or "if"; see SPEC_FULL.md's resolved Open
// Question on on/if firing timing. All three fire through the same
// Alert path whenever the antecedent publishes a true value: a rule
// wired directly off a term fires inside that term's AssignTerm call,
// before the host calls React, and one wired off a condition cell fires
// during React's drain. `if` differs from `on` only in its type name.
func (e *Engine) Rule(kind, context, command string, assertions []string, priority int, antecedent nbobject.Object) (*nbcell.Cell, error) {
	switch kind {
	case "on":
		return nbcondition.On(context, command, assertions, priority, antecedent), nil
	case "when":
		return nbcondition.When(context, command, assertions, priority, antecedent), nil
	case "if":
		return nbcondition.If(context, command, assertions, priority, antecedent), nil
	default:
		return nil, nberrors.Userf("unknown rule kind %q", kind)
	}
}

// Nerve builds a `nerve` condition logging every value change of
// antecedent through the Engine's logger.
func (e *Engine) Nerve(name string, antecedent nbobject.Object) *nbcell.Cell {
	return nbcondition.Nerve(name, antecedent, e.Log)
}

// Match builds a `~"regex"` condition.
func (e *Engine) Match(operand nbobject.Object, pattern *nbobject.Regex) *nbcell.Cell {
	return nbcondition.Match(operand, pattern)
}

// Change builds a `~=` condition registered on the Engine's one change
// list (spec §4.7's "resets exactly once per react() drain").
func (e *Engine) Change(operand nbobject.Object) *nbcell.Cell {
	return nbcondition.Change(operand, e.ChangeList)
}

// Schedule builds a `~(schedule)` condition driving itself off the
// Engine's clock, publishing through the Engine's scheduler when a
// scheduled transition's timer fires.
func (e *Engine) Schedule(sched *nbschedule.BFI) *nbcell.Cell {
	return nbcondition.ScheduleCondition(sched, e.clockAdapter, e.Scheduler)
}

// ClockAdapter exposes the Engine's clock as the narrow nbcondition.Clock
// view, for constructing a `~^1`/`~^0`/`~^?` delay condition directly via
// nbcondition.Delay — that constructor's delayKind parameter is an
// unexported type (only its three named values, DelayTrue/DelayFalse/
// DelayUnknown, are exported), so a caller selects a kind by passing one
// of those constants straight through rather than via an Engine-side
// wrapper that would have no way to name the parameter's type.
func (e *Engine) ClockAdapter() nbcondition.Clock { return e.clockAdapter }

// DefineTerm implements spec §6's define_term: resolve-or-create
// dotted_name within context and bind it to definition (nbglossary.Create,
// spec §4.6).
func (e *Engine) DefineTerm(context *nbcell.Term, dottedName string, definition nbobject.Object) (*nbcell.Term, error) {
	return nbglossary.Create(context, e.Roots, dottedName, definition, e.Scheduler)
}

// AssignTerm implements spec §6's assign_term: rebind term's definition
// and publish the resulting value change. Rules (`on`/`when`/`if`)
// wired directly as subscribers of term fire synchronously inside this
// call (via
// Term.AssignDefinition's own Publish), before the caller's next React.
func (e *Engine) AssignTerm(term *nbcell.Term, newDefinition nbobject.Object) error {
	return term.AssignDefinition(newDefinition, e.Scheduler)
}

// Enable implements spec §6's enable(cell, subscriber).
func (e *Engine) Enable(cell nbobject.Object, subscriber *nbcell.Cell) {
	nbcell.Enable(cell, subscriber)
}

// Disable implements spec §6's disable(cell, subscriber).
func (e *Engine) Disable(cell nbobject.Object, subscriber *nbcell.Cell) {
	nbcell.Disable(cell, subscriber)
}

// Compute implements spec §6's compute(cell): a one-shot value read
// from a disabled cell. The caller owns the returned reference and
// must Drop it per spec's "caller must drop the returned reference".
func (e *Engine) Compute(cell *nbcell.Cell) nbobject.Object {
	v := nbcell.Compute(cell)
	nbobject.Grab(v)
	return v
}

// React implements spec §6's react(): drive propagation to quiescence,
// draining the change-cell reset list exactly once per cycle along the
// way (nbscheduler.Scheduler.React already folds that reset into its
// own drain loop per SPEC_FULL.md's resolved Open Question), then
// dispatch the queued rule actions.
func (e *Engine) React() ([]nbcondition.Action, nbscheduler.Stats, error) {
	stats, err := e.Scheduler.React()
	if err != nil {
		return nil, stats, err
	}
	return e.Scheduler.Actions(), stats, nil
}

// SetTimer implements spec §6's set_timer(cell, epoch_seconds):
// register cell for re-evaluation when the clock reaches t. The
// returned handle's Cancel is the inverse operation.
func (e *Engine) SetTimer(cell *nbcell.Cell, epochSeconds int64) nbschedule.TimerHandle {
	return e.Clock.At(time.Unix(epochSeconds, 0).UTC(), func() { e.Scheduler.Schedule(cell) })
}

// Advance moves the Engine's clock forward to t, firing every timer due
// at or before t (spec §4.7's schedule/delay timer callbacks); the host
// is expected to call React afterward to drain any resulting
// propagation, mirroring S4's "advance clock, cell value changes,
// publishes" scenario.
func (e *Engine) Advance(t time.Time) { e.Clock.Advance(t) }

// DrainChangeList implements spec §6's drain_change_list() as a
// directly callable operation, for a host that wants to reset `~=`
// cells without a full React drain. React does not call this method;
// Scheduler.React performs the same reset itself after each drain pass.
// Calling it with nothing pending is a no-op.
func (e *Engine) DrainChangeList() bool { return e.ChangeList.Reset(e.Scheduler) }

// ParseSchedule implements spec §6's schedule-literal parsing path
// (used by S5): the nbschedule literal segment-list format.
func (e *Engine) ParseSchedule(text string) (*nbschedule.BFI, error) { return nbschedule.Parse(text) }

// AssertAndReact combines define_term and react() into the single
// operation a transport or a log replay actually wants: rebind
// dottedName within context to value, then drive propagation to
// quiescence, returning whatever rules fired (spec §6, supplemented by
// SPEC_FULL.md §6 for `nbstore.Replay` and `nbtransport`'s read loop,
// which both feed an inbound assertion stream one record at a time
// rather than calling DefineTerm/React separately).
func (e *Engine) AssertAndReact(context *nbcell.Term, dottedName string, value nbobject.Object) (*nbcell.Term, []nbcondition.Action, nbscheduler.Stats, error) {
	term, err := e.DefineTerm(context, dottedName, value)
	if err != nil {
		return nil, nil, nbscheduler.Stats{}, err
	}
	actions, stats, err := e.React()
	return term, actions, stats, err
}
