package nbcondition

import (
	"nodebrain/internal/nbcell"
	"nodebrain/internal/nblog"
	"nodebrain/internal/nbobject"
)

// ActionStatus is a queued rule action's firing status (spec §4.5:
// "Ready -> on fire -> Scheduled (queued for external dispatch) ->
// dispatched -> Ready").
type ActionStatus int

const (
	ActionReady ActionStatus = iota
	ActionScheduled
	ActionError
)

// Action is a queued command emitted by a fired rule, carried to the
// external command dispatcher (spec §6 outbound command stream: "a
// sequence of (context, command_text, assertion_list, priority)
// records from fired rules").
type Action struct {
	Rule       *nbcell.Cell
	Context    string
	Command    string
	Assertions []string
	Priority   int
	Status     ActionStatus
}

// RuleScheduler is the narrow scheduler view a rule's Alert needs: the
// default Schedule method (inherited from nbcell.Scheduler, used by
// `nerve`, which passes its value through like an ordinary cell) plus
// QueueAction for the three firing rule types.
type RuleScheduler interface {
	nbcell.Scheduler
	QueueAction(a Action)
}

// ruleLogic is the common shape of `on`/`when`/`if` (spec: "fires the
// action on every transition of the antecedent to True"). It implements
// nbcell.Alerter so nbcell.Publish diverts to Alert instead of the
// default Eval+compare scheduling (spec §4.3 "alert (optional)").
type ruleLogic struct {
	name       string
	context    string
	command    string
	assertions []string
	priority   int
	oneShot    bool // `when`: remove after first fire
	fired      bool
	removed    bool
}

func (r *ruleLogic) TypeName() string { return r.name }

// Eval mirrors the antecedent's value; rules never compute independent
// state, per spec: "sets its own value to True/False/Unknown mirroring"
// the antecedent.
func (r *ruleLogic) Eval(c *nbcell.Cell) nbobject.Object {
	return nbcell.OperandValue(c.Operand(0))
}

func (r *ruleLogic) Activate(c *nbcell.Cell)   { nbcell.Enable(c.Operand(0), c) }
func (r *ruleLogic) Deactivate(c *nbcell.Cell) { nbcell.Disable(c.Operand(0), c) }

// Alert implements nbcell.Alerter: inspects the new antecedent value
// directly (bypassing eval+compare) and queues the action record when
// the antecedent is at True, per spec §4.5.
func (r *ruleLogic) Alert(c *nbcell.Cell, sched nbcell.Scheduler) {
	if r.removed {
		return
	}
	value := classify(nbcell.OperandValue(c.Operand(0)))
	c.SetValue(value.object())
	if value != tTrue {
		return
	}
	rs, ok := sched.(RuleScheduler)
	if !ok {
		return
	}
	rs.QueueAction(Action{
		Rule:       c,
		Context:    r.context,
		Command:    r.command,
		Assertions: r.assertions,
		Priority:   r.priority,
	})
	if r.oneShot {
		r.removed = true
		nbcell.Disable(c.Operand(0), c)
	}
}

func newRule(name, context, command string, assertions []string, priority int, oneShot bool, antecedent nbobject.Object) *nbcell.Cell {
	return nbcell.New(&ruleLogic{
		name:       name,
		context:    context,
		command:    command,
		assertions: assertions,
		priority:   priority,
		oneShot:    oneShot,
	}, antecedent)
}

// On builds an `on` rule: fires on every transition of antecedent to
// True, including transitions among distinct true values (spec: "fires
// also when the antecedent transitions among distinct true values").
func On(context, command string, assertions []string, priority int, antecedent nbobject.Object) *nbcell.Cell {
	return newRule("on", context, command, assertions, priority, false, antecedent)
}

// When builds a `when` rule: like On but fires at most once, then
// unsubscribes (spec: "one-shot: after firing, the rule is removed").
func When(context, command string, assertions []string, priority int, antecedent nbobject.Object) *nbcell.Cell {
	return newRule("when", context, command, assertions, priority, true, antecedent)
}

// If builds an `if` rule: identical firing logic and timing to On; only
// the type name differs (spec §4.5 "left to a higher layer's
// distinction"; see SPEC_FULL.md §4). Like any rule, it queues its
// action from Alert when its antecedent publishes, so one wired
// directly off a term fires inside that term's assignment, before
// react().
func If(context, command string, assertions []string, priority int, antecedent nbobject.Object) *nbcell.Cell {
	return newRule("if", context, command, assertions, priority, false, antecedent)
}

// nerveLogic implements `nerve` (spec: "on any value change of the
// antecedent, emits a log record 'Nerve <name>=<value>' and passes the
// value through unchanged"). Unlike the firing rule types, nerve uses
// ordinary Eval+compare scheduling (no Alert divergence) since it never
// queues an action.
type nerveLogic struct {
	name string
	log  *nblog.Logger
}

func (n *nerveLogic) TypeName() string { return "nerve" }
func (n *nerveLogic) Eval(c *nbcell.Cell) nbobject.Object {
	value := nbcell.OperandValue(c.Operand(0))
	if n.log != nil {
		n.log.Message('I', "Nerve %s=%v", n.name, value)
	}
	return value
}
func (n *nerveLogic) Activate(c *nbcell.Cell)   { nbcell.Enable(c.Operand(0), c) }
func (n *nerveLogic) Deactivate(c *nbcell.Cell) { nbcell.Disable(c.Operand(0), c) }

// Nerve builds a `nerve` condition named name over antecedent.
func Nerve(name string, antecedent nbobject.Object, log *nblog.Logger) *nbcell.Cell {
	return nbcell.New(&nerveLogic{name: name, log: log}, antecedent)
}
