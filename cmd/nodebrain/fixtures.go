package main

import (
	"time"

	"nodebrain/internal/nbcell"
	"nodebrain/internal/nbengine"
	"nodebrain/internal/nberrors"
	"nodebrain/internal/nbobject"
	"nodebrain/internal/nbschedule"
)

// fixture is a small, hand-built cell graph standing in for the
// program a tokenizer/parser would otherwise load from a source file
// (SPEC_FULL.md's "no tokenizer/parser component is in scope" note for
// cmd/nodebrain: a fixture builds its condition tree directly via the
// Engine API, the way an external parser would). build returns the
// assertable terms a caller can address by name with `run <fixture>
// name=literal`.
type fixture struct {
	describe string
	build    func(e *nbengine.Engine) (map[string]*nbcell.Term, error)
}

var fixtures = map[string]fixture{
	"andgate":     andGateFixture,
	"officehours": officeHoursFixture,
	"lazy":        lazyFixture,
}

// andGateFixture mirrors spec scenario S1: two Unknown terms a and b,
// c = a & b, an on(c) rule that fires "fired".
var andGateFixture = fixture{
	describe: "a, b: Unknown terms. rule on(a & b): fired",
	build: func(e *nbengine.Engine) (map[string]*nbcell.Term, error) {
		root := e.Root()
		a, err := e.DefineTerm(root, "a", nbobject.Unknown)
		if err != nil {
			return nil, err
		}
		b, err := e.DefineTerm(root, "b", nbobject.Unknown)
		if err != nil {
			return nil, err
		}
		c, err := e.MakeCondition("&", a, b)
		if err != nil {
			return nil, err
		}
		r, err := e.Rule("on", "_", "fired", nil, 0, c)
		if err != nil {
			return nil, err
		}
		holdCell(r)
		return map[string]*nbcell.Term{"a": a, "b": b}, nil
	},
}

// officeHoursFixture drives a `~(schedule)` condition against the
// Engine's own clock: a single 09:00-17:00 segment starting the day
// the fixture is built, with an on() rule announcing each transition.
var officeHoursFixture = fixture{
	describe: "schedule: 09:00-17:00 UTC on the engine's start day. rule on(~=schedule): transitioned",
	build: func(e *nbengine.Engine) (map[string]*nbcell.Term, error) {
		root := e.Root()
		day := e.Clock.Now().Truncate(24 * time.Hour)
		nine := day.Add(9 * time.Hour)
		seventeen := day.Add(17 * time.Hour)
		sched := nbschedule.FromSegments(nbschedule.Segment{Start: nine.Unix(), End: seventeen.Unix()})
		s := e.Schedule(sched)
		changed := e.Change(s)
		r, err := e.Rule("on", "_", "transitioned", nil, 0, changed)
		if err != nil {
			return nil, err
		}
		holdCell(r)
		hours, err := e.DefineTerm(root, "hours", s)
		if err != nil {
			return nil, err
		}
		return map[string]*nbcell.Term{"hours": hours}, nil
	},
}

// lazyFixture mirrors spec scenario S3: c = a && expensive, where
// expensive is never enabled while a is False.
var lazyFixture = fixture{
	describe: "a: False, expensive: True. c = a && expensive (short-circuits)",
	build: func(e *nbengine.Engine) (map[string]*nbcell.Term, error) {
		root := e.Root()
		a, err := e.DefineTerm(root, "a", nbobject.False)
		if err != nil {
			return nil, err
		}
		expensive, err := e.DefineTerm(root, "expensive", nbobject.True)
		if err != nil {
			return nil, err
		}
		c, err := e.MakeCondition("&&", a, expensive)
		if err != nil {
			return nil, err
		}
		holdCell(c)
		r, err := e.Rule("on", "_", "both-true", nil, 0, c)
		if err != nil {
			return nil, err
		}
		holdCell(r)
		return map[string]*nbcell.Term{"a": a, "expensive": expensive}, nil
	},
}

// holderLogic mirrors its single operand, keeping a cell enabled the
// way a persistent rule reference or a host subscription would.
type holderLogic struct{}

func (holderLogic) TypeName() string { return "cli-holder" }
func (holderLogic) Eval(c *nbcell.Cell) nbobject.Object {
	return nbcell.OperandValue(c.Operand(0))
}
func (holderLogic) Activate(c *nbcell.Cell)   { nbcell.Enable(c.Operand(0), c) }
func (holderLogic) Deactivate(c *nbcell.Cell) { nbcell.Disable(c.Operand(0), c) }

func holdCell(op nbobject.Object) *nbcell.Cell {
	holder := nbcell.New(holderLogic{}, op)
	nbcell.Enable(op, holder)
	return holder
}

func lookupFixture(name string) (fixture, error) {
	f, ok := fixtures[name]
	if !ok {
		return fixture{}, nberrors.Userf("unknown fixture %q (try: andgate, officehours, lazy)", name)
	}
	return f, nil
}
