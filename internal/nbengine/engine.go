// Package nbengine collects every component into the single context
// struct an external host drives (spec §6's Engine API): the object
// heap, the cell/term graph roots, the propagation scheduler, the
// change-cell reset list, and the clock. No package-level state is
// kept anywhere in NodeBrain; every operation reaches its data only
// through an *Engine (Design Notes: "replace global mutable state with
// a context struct").
//
// Grounded on internal/vm/vm.go's EnhancedVM: one struct holding every
// subsystem (modules, frames, globals, ...) that the VM's op-handlers
// are methods of, rather than free functions closing over package
// globals.
package nbengine

import (
	"time"

	"nodebrain/internal/nbcell"
	"nodebrain/internal/nbcondition"
	"nodebrain/internal/nbglossary"
	"nodebrain/internal/nblog"
	"nodebrain/internal/nbobject"
	"nodebrain/internal/nbschedule"
	"nodebrain/internal/nbscheduler"
)

// Engine is the context struct threading every component (spec §6).
type Engine struct {
	Heap       *nbobject.Heap
	Scheduler  *nbscheduler.Scheduler
	ChangeList *nbcondition.ChangeList
	Clock      *nbschedule.Clock
	Roots      nbglossary.Roots
	Log        *nblog.Logger

	clockAdapter clockAdapter
}

// New builds a ready-to-use Engine: a fresh object heap, an empty root
// context (`_`) with `@` (local) and `%` (symbolic) both aliased to it
// until a host rebinds them, a clock starting at startTime, and log
// directed at logger (nil discards diagnostics, mirroring
// nblog.Logger's own nil-tolerant Err/Message contract at the call
// sites below — callers wanting output should pass nblog.Default()).
func New(startTime time.Time, logger *nblog.Logger) *Engine {
	heap := nbobject.NewHeap()
	sched := nbscheduler.New(logger)
	changeList := &nbcondition.ChangeList{}
	sched.SetChangeList(changeList)

	root := nbcell.NewTerm("_", nil)
	if err := root.AssignDefinition(nbcell.NewNode("_", ""), sched); err != nil {
		// Assigning a fresh Node to a brand-new, never-enabled term cannot
		// fail (no level conflict, no prior subscription to tear down);
		// surfacing a panic here would only mask a real bug in AssignDefinition.
		panic(err)
	}

	e := &Engine{
		Heap:       heap,
		Scheduler:  sched,
		ChangeList: changeList,
		Clock:      nbschedule.NewClock(startTime),
		Roots:      nbglossary.Roots{Root: root, Local: root, Sym: root},
		Log:        logger,
	}
	e.clockAdapter = clockAdapter{e.Clock}
	return e
}

// Root returns the engine's root context term (spec §3's top-level
// context, the `_` sigil's target).
func (e *Engine) Root() *nbcell.Term { return e.Roots.Root }

// SetLocal/SetSym rebind the `@`/`%` scope-selector roots (spec §4.6),
// used by a host that pushes a new lexical scope or symbolic-table
// context.
func (e *Engine) SetLocal(t *nbcell.Term) { e.Roots.Local = t }
func (e *Engine) SetSym(t *nbcell.Term)   { e.Roots.Sym = t }

// InternString, InternReal, CompileRegex implement spec §6's
// intern_string/intern_real/compile_regex.
func (e *Engine) InternString(text string) nbobject.Object { return e.Heap.InternString(text) }
func (e *Engine) InternReal(v float64) nbobject.Object     { return e.Heap.InternReal(v) }
func (e *Engine) CompileRegex(pattern string) (nbobject.Object, error) {
	r, err := e.Heap.CompileRegex(pattern)
	if err != nil {
		return nil, err
	}
	return r, nil
}
