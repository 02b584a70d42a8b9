package nbengine

import (
	"testing"
	"time"

	"nodebrain/internal/nbcell"
	"nodebrain/internal/nbcondition"
	"nodebrain/internal/nbobject"
	"nodebrain/internal/nbschedule"
)

// passthroughLogic mirrors its single operand, used only to give a test
// a subscriber that keeps a cell under test enabled — the way a rule or
// a host-held reference would in a real engine.
type passthroughLogic struct{}

func (passthroughLogic) TypeName() string { return "test-holder" }
func (passthroughLogic) Eval(c *nbcell.Cell) nbobject.Object {
	return nbcell.OperandValue(c.Operand(0))
}
func (passthroughLogic) Activate(c *nbcell.Cell)   { nbcell.Enable(c.Operand(0), c) }
func (passthroughLogic) Deactivate(c *nbcell.Cell) { nbcell.Disable(c.Operand(0), c) }

func hold(op nbobject.Object) *nbcell.Cell {
	holder := nbcell.New(passthroughLogic{}, op)
	nbcell.Enable(op, holder)
	return holder
}

func newTestEngine() *Engine {
	return New(time.Unix(0, 0).UTC(), nil)
}

// TestS1SimpleBooleanPropagation mirrors spec scenario S1: a and b start
// Unknown, c = a & b, rule r fires "fired" on(c). Asserting a=1 alone
// must not fire; asserting b=1 afterward must fire exactly once.
func TestS1SimpleBooleanPropagation(t *testing.T) {
	e := newTestEngine()
	root := e.Root()

	a, err := e.DefineTerm(root, "a", nbobject.Unknown)
	if err != nil {
		t.Fatalf("define a: %v", err)
	}
	b, err := e.DefineTerm(root, "b", nbobject.Unknown)
	if err != nil {
		t.Fatalf("define b: %v", err)
	}

	c, err := e.MakeCondition("&", a, b)
	if err != nil {
		t.Fatalf("make_condition &: %v", err)
	}
	r, err := e.Rule("on", "_", "fired", nil, 0, c)
	if err != nil {
		t.Fatalf("rule: %v", err)
	}
	hold(r)

	if err := e.AssignTerm(a, e.InternReal(1)); err != nil {
		t.Fatalf("assign a: %v", err)
	}
	actions, _, err := e.React()
	if err != nil {
		t.Fatalf("react: %v", err)
	}
	if len(actions) != 0 {
		t.Fatalf("after asserting a=1 alone, actions = %v, want none", actions)
	}

	if err := e.AssignTerm(b, e.InternReal(1)); err != nil {
		t.Fatalf("assign b: %v", err)
	}
	actions, _, err = e.React()
	if err != nil {
		t.Fatalf("react: %v", err)
	}
	if len(actions) != 1 {
		t.Fatalf("after asserting b=1, actions = %v, want exactly one fire", actions)
	}
	if actions[0].Command != "fired" {
		t.Fatalf("action command = %q, want %q", actions[0].Command, "fired")
	}
}

// TestNonUnitTrueValueFires is a regression guard for a classify() defect
// where only the True (1.0) singleton was treated as true: per
// original_source/trunk/lib/nbcondition.c's evalRule, any value that is
// not Unknown/Disabled and not False(0.0) is logically true, including a
// nonzero Real like 5 or an interned String. Asserting a to such a value
// must still satisfy `a & b` and fire an on(a) rule.
func TestNonUnitTrueValueFires(t *testing.T) {
	e := newTestEngine()
	root := e.Root()

	a, err := e.DefineTerm(root, "a", nbobject.Unknown)
	if err != nil {
		t.Fatalf("define a: %v", err)
	}
	b, err := e.DefineTerm(root, "b", nbobject.True)
	if err != nil {
		t.Fatalf("define b: %v", err)
	}

	c, err := e.MakeCondition("&", a, b)
	if err != nil {
		t.Fatalf("make_condition &: %v", err)
	}
	r, err := e.Rule("on", "_", "fired", nil, 0, a)
	if err != nil {
		t.Fatalf("rule: %v", err)
	}
	hold(c)
	hold(r)

	if err := e.AssignTerm(a, e.InternReal(5)); err != nil {
		t.Fatalf("assign a=5: %v", err)
	}
	actions, _, err := e.React()
	if err != nil {
		t.Fatalf("react: %v", err)
	}
	if got := c.CachedValue(); got != nbobject.Object(nbobject.True) {
		t.Fatalf("a & b with a=5 = %v, want True", got)
	}
	if len(actions) != 1 {
		t.Fatalf("on(a) with a=5, actions = %v, want exactly one fire", actions)
	}

	str, err := e.MakeCondition("&", e.InternString("alert"), nbobject.True)
	if err != nil {
		t.Fatalf("make_condition & (string): %v", err)
	}
	if got := e.Compute(str); got != nbobject.Object(nbobject.True) {
		t.Fatalf(`"alert" & True = %v, want True`, got)
	}
}

// TestS2ThreeValuedLogicSpotChecks checks a handful of Kleene truth-table
// cells directly via Compute, without any propagation.
func TestS2ThreeValuedLogicSpotChecks(t *testing.T) {
	e := newTestEngine()

	and, err := e.MakeCondition("&", nbobject.Unknown, nbobject.False)
	if err != nil {
		t.Fatal(err)
	}
	if got := e.Compute(and); got != nbobject.Object(nbobject.False) {
		t.Fatalf("Unknown & False = %v, want False", got)
	}

	or, err := e.MakeCondition("|", nbobject.Unknown, nbobject.True)
	if err != nil {
		t.Fatal(err)
	}
	if got := e.Compute(or); got != nbobject.Object(nbobject.True) {
		t.Fatalf("Unknown | True = %v, want True", got)
	}

	unkAnd, err := e.MakeCondition("&", nbobject.Unknown, nbobject.True)
	if err != nil {
		t.Fatal(err)
	}
	if got := e.Compute(unkAnd); got != nbobject.Object(nbobject.Unknown) {
		t.Fatalf("Unknown & True = %v, want Unknown", got)
	}

	not, err := e.MakeCondition("!", nbobject.False, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := e.Compute(not); got != nbobject.Object(nbobject.True) {
		t.Fatalf("!False = %v, want True", got)
	}
}

// TestS3LazyShortCircuit mirrors spec scenario S3: c = a && expensive.
// While a is False, expensive must stay disabled (never subscribed);
// once a becomes True, expensive is enabled and its value contributes.
func TestS3LazyShortCircuit(t *testing.T) {
	e := newTestEngine()
	root := e.Root()

	a, err := e.DefineTerm(root, "a", nbobject.False)
	if err != nil {
		t.Fatalf("define a: %v", err)
	}
	expensive, err := e.DefineTerm(root, "expensive", nbobject.True)
	if err != nil {
		t.Fatalf("define expensive: %v", err)
	}

	c, err := e.MakeCondition("&&", a, expensive)
	if err != nil {
		t.Fatalf("make_condition &&: %v", err)
	}
	hold(c)

	if n := expensive.SubscriberCount(); n != 0 {
		t.Fatalf("expensive subscriber count = %d while a is False, want 0 (short-circuited)", n)
	}
	if got := c.CachedValue(); got != nbobject.Object(nbobject.False) {
		t.Fatalf("c = %v while a is False, want False", got)
	}

	if err := e.AssignTerm(a, nbobject.True); err != nil {
		t.Fatalf("assign a=True: %v", err)
	}
	if _, _, err := e.React(); err != nil {
		t.Fatalf("react: %v", err)
	}

	if n := expensive.SubscriberCount(); n != 1 {
		t.Fatalf("expensive subscriber count = %d once a is True, want 1 (enabled)", n)
	}
	if got := c.CachedValue(); got != nbobject.Object(nbobject.True) {
		t.Fatalf("c = %v once both operands are True, want True", got)
	}
}

// TestS4TimeScheduleTransition mirrors spec scenario S4: a `~(h(9)_h(17))`
// style office-hours schedule starts False before 09:00:00, flips True at
// 09:00:00, and flips False again at 17:00:00, each transition publishing
// through the engine.
func TestS4TimeScheduleTransition(t *testing.T) {
	day := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	nine := day.Add(9 * time.Hour)
	seventeen := day.Add(17 * time.Hour)

	e := New(nine.Add(-time.Second), nil)
	sched := nbschedule.FromSegments(nbschedule.Segment{Start: nine.Unix(), End: seventeen.Unix()})

	s := e.Schedule(sched)
	hold(s)

	if got := s.CachedValue(); got != nbobject.Object(nbobject.False) {
		t.Fatalf("schedule value at 08:59:59 = %v, want False", got)
	}

	e.Advance(nine)
	if _, _, err := e.React(); err != nil {
		t.Fatalf("react: %v", err)
	}
	if got := s.CachedValue(); got != nbobject.Object(nbobject.True) {
		t.Fatalf("schedule value at 09:00:00 = %v, want True", got)
	}

	e.Advance(seventeen)
	if _, _, err := e.React(); err != nil {
		t.Fatalf("react: %v", err)
	}
	if got := s.CachedValue(); got != nbobject.Object(nbobject.False) {
		t.Fatalf("schedule value at 17:00:00 = %v, want False", got)
	}
}

// TestS5ScheduleAlgebra mirrors spec scenario S5: parsing two literal
// schedules sharing a domain and checking and_/or_/not_ against one of
// them directly through the Component G algebra.
func TestS5ScheduleAlgebra(t *testing.T) {
	e := newTestEngine()

	g, err := e.ParseSchedule("10_20:12_15")
	if err != nil {
		t.Fatalf("parse g: %v", err)
	}
	h, err := e.ParseSchedule("10_20:13_14")
	if err != nil {
		t.Fatalf("parse h: %v", err)
	}

	and := nbschedule.And(g, h)
	wantAnd := []nbschedule.Segment{{Start: 13, End: 14}}
	if !segmentsEqual(and.Segments(), wantAnd) {
		t.Fatalf("and_ segments = %v, want %v", and.Segments(), wantAnd)
	}

	or := nbschedule.Or(g, h)
	wantOr := []nbschedule.Segment{{Start: 12, End: 15}}
	if !segmentsEqual(or.Segments(), wantOr) {
		t.Fatalf("or_ segments = %v, want %v", or.Segments(), wantOr)
	}

	not := nbschedule.Not(g)
	wantNot := []nbschedule.Segment{{Start: 10, End: 12}, {Start: 15, End: 20}}
	if !segmentsEqual(not.Segments(), wantNot) {
		t.Fatalf("not_ segments = %v, want %v", not.Segments(), wantNot)
	}
}

func segmentsEqual(got, want []nbschedule.Segment) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// TestS6RuleCycleDetection mirrors spec scenario S6: a rule like
// "on(a): assert a=a+1" fires once, and a second attempt to fire the same
// rule cell within one react() drain (before Actions drains the Scheduled
// set) must be rejected as a logic error rather than looping.
func TestS6RuleCycleDetection(t *testing.T) {
	e := newTestEngine()
	root := e.Root()

	a, err := e.DefineTerm(root, "a", nbobject.True)
	if err != nil {
		t.Fatalf("define a: %v", err)
	}
	r, err := e.Rule("on", "_", "assert a=a+1", nil, 0, a)
	if err != nil {
		t.Fatalf("rule: %v", err)
	}
	hold(r)

	e.Scheduler.QueueAction(nbcondition.Action{Rule: r, Context: "_", Command: "assert a=a+1"})
	e.Scheduler.QueueAction(nbcondition.Action{Rule: r, Context: "_", Command: "assert a=a+1"})

	actions := e.Scheduler.Actions()
	if len(actions) != 2 {
		t.Fatalf("actions = %v, want 2 entries", actions)
	}
	if actions[0].Status != nbcondition.ActionScheduled {
		t.Fatalf("first action status = %v, want Scheduled", actions[0].Status)
	}
	if actions[1].Status != nbcondition.ActionError {
		t.Fatalf("second action status = %v, want Error (re-fired while already scheduled)", actions[1].Status)
	}
}
