package nbcondition

import (
	"time"

	"nodebrain/internal/nbcell"
	"nodebrain/internal/nbobject"
)

// Schedule is the narrow view nbcondition needs of the time-schedule
// algebra (package nbschedule, Component G): whether the schedule holds
// at a point in time, and when it next changes. Defined here rather
// than imported from nbschedule to avoid a dependency cycle (nbschedule
// does not need to know about conditions).
type Schedule interface {
	ValueAt(t time.Time) bool
	NextChange(after time.Time) (at time.Time, ok bool)
}

// TimerHandle cancels a registered timer.
type TimerHandle interface {
	Cancel()
}

// Clock is the narrow view nbcondition needs of the engine clock: the
// current time and the ability to register a one-shot timer.
type Clock interface {
	Now() time.Time
	At(t time.Time, fire func()) TimerHandle
}

// scheduleLogic implements `~(schedule)` (spec: "value is True during
// every interval in the schedule, False otherwise. On enable, it
// consults the schedule-algebra engine for the next transition and
// registers a timer; when the timer fires, it flips value, publishes,
// and re-registers for the next transition.").
type scheduleLogic struct {
	name     string
	sched    Schedule
	clock    Clock
	timer    TimerHandle
	cellRef  *nbcell.Cell
	schedRef nbcell.Scheduler
}

func (sl *scheduleLogic) TypeName() string { return sl.name }

func (sl *scheduleLogic) Eval(c *nbcell.Cell) nbobject.Object {
	return nbobject.BoolObject(sl.sched.ValueAt(sl.clock.Now()))
}

func (sl *scheduleLogic) Activate(c *nbcell.Cell) {
	sl.cellRef = c
	sl.arm()
}

func (sl *scheduleLogic) Deactivate(c *nbcell.Cell) {
	if sl.timer != nil {
		sl.timer.Cancel()
		sl.timer = nil
	}
}

// arm registers the next scheduled transition with the clock.
func (sl *scheduleLogic) arm() {
	at, ok := sl.sched.NextChange(sl.clock.Now())
	if !ok {
		return
	}
	sl.timer = sl.clock.At(at, sl.fire)
}

// fire is the timer callback: flip, publish, and re-arm for the
// following transition.
func (sl *scheduleLogic) fire() {
	c := sl.cellRef
	next := nbobject.BoolObject(sl.sched.ValueAt(sl.clock.Now()))
	if next != c.CachedValue() {
		c.SetValue(next)
		nbcell.Publish(c, sl.schedRef)
	}
	sl.arm()
}

// ScheduleCondition builds the `~(schedule)` condition. sched evaluates
// to the new Time Schedule & Clock components (Component G); the
// returned cell must be enabled through a Scheduler that is also
// passed here so the timer callback can publish through it.
func ScheduleCondition(sched Schedule, clock Clock, s nbcell.Scheduler) *nbcell.Cell {
	return nbcell.New(&scheduleLogic{name: "~(schedule)", sched: sched, clock: clock, schedRef: s})
}

// delayKind distinguishes the three delay-by-schedule variants.
type delayKind int

const (
	DelayTrue delayKind = iota
	DelayFalse
	DelayUnknown
)

func (k delayKind) matches(t truth) bool {
	switch k {
	case DelayTrue:
		return t == tTrue
	case DelayFalse:
		return t == tFalse
	default:
		return t == tUnknown
	}
}

func (k delayKind) name() string {
	switch k {
	case DelayTrue:
		return "~^1"
	case DelayFalse:
		return "~^0"
	default:
		return "~^?"
	}
}

// delayLogic implements `~^1`/`~^0`/`~^?` (spec: "tracks the operand;
// when operand enters the specified state, start the timer; if the
// timer expires before the operand leaves that state, emit the delayed
// value"). Grounded on evalDelay's three-state timer-value encoding
// (Unknown/Disabled = idle, True = armed, False = expired).
type delayLogic struct {
	kind    delayKind
	delay   time.Duration
	clock   Clock
	cellRef *nbcell.Cell
	sched   nbcell.Scheduler
	timer   TimerHandle
	armed   bool
	expired bool
}

func (d *delayLogic) TypeName() string { return d.kind.name() }

func (d *delayLogic) Eval(c *nbcell.Cell) nbobject.Object {
	value := classify(nbcell.OperandValue(c.Operand(0)))
	if !d.kind.matches(value) {
		if d.armed {
			d.timer.Cancel()
			d.timer = nil
			d.armed = false
		}
		d.expired = false
		return value.object()
	}
	if d.expired {
		return value.object()
	}
	if !d.armed {
		d.armed = true
		d.cellRef = c
		d.timer = d.clock.At(d.clock.Now().Add(d.delay), d.onExpire)
	}
	return c.CachedValue()
}

func (d *delayLogic) onExpire() {
	d.armed = false
	d.expired = true
	c := d.cellRef
	value := classify(nbcell.OperandValue(c.Operand(0)))
	if d.kind.matches(value) {
		next := value.object()
		if next != c.CachedValue() {
			c.SetValue(next)
			nbcell.Publish(c, d.sched)
		}
	}
}

func (d *delayLogic) Activate(c *nbcell.Cell) {
	d.cellRef = c
	nbcell.Enable(c.Operand(0), c)
}
func (d *delayLogic) Deactivate(c *nbcell.Cell) {
	nbcell.Disable(c.Operand(0), c)
	if d.armed {
		d.timer.Cancel()
		d.armed = false
	}
}

// Delay builds a `~^1`/`~^0`/`~^?` condition over operand, delaying by
// the given duration.
func Delay(kind delayKind, operand nbobject.Object, delay time.Duration, clock Clock, s nbcell.Scheduler) *nbcell.Cell {
	return nbcell.New(&delayLogic{kind: kind, delay: delay, clock: clock, sched: s}, operand)
}
