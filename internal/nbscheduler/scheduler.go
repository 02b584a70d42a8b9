// Package nbscheduler implements the propagation scheduler (spec
// Component D): a level-bucketed queue that drains cells from level 0
// upward until quiescence, plus the post-drain rule-action dispatch
// queue (spec §4.5's firing-status lifecycle).
//
// Grounded on internal/concurrency.go's TaskQueue (ID/Running/mu
// shape, priority-bucket naming) — adapted from channel-based
// concurrent dispatch to a deterministic, single-threaded,
// level-ordered vector, since spec invariant 3 and the quiescence
// guarantee (§4.4) require strictly increasing levels along publish
// edges within one drain, which a goroutine pool cannot offer without
// re-adding the same ordering machinery. Thread-level parallelism
// within an engine instance is an explicit spec Non-goal.
package nbscheduler

import (
	"time"

	"nodebrain/internal/nbcell"
	"nodebrain/internal/nbcondition"
	"nodebrain/internal/nberrors"
	"nodebrain/internal/nblog"
)

// Scheduler is the level-bucketed propagation queue. It implements
// nbcell.Scheduler so cell.Publish can hand it cells directly.
type Scheduler struct {
	buckets    [2*nbcell.MaxLevel + 1][]*nbcell.Cell
	highWater  int
	actions    []nbcondition.Action
	fired      map[*nbcell.Cell]bool // rule cells currently Scheduled this drain
	changeList *nbcondition.ChangeList
	log        *nblog.Logger
}

// New creates an empty scheduler. log may be nil, in which case
// diagnostics are discarded.
func New(log *nblog.Logger) *Scheduler {
	return &Scheduler{log: log, fired: make(map[*nbcell.Cell]bool)}
}

// SetChangeList attaches the `~=` reset list this scheduler drains
// exactly once per React call (resolving spec's Open Question on the
// `~=` reset cycle boundary — see SPEC_FULL.md §4).
func (s *Scheduler) SetChangeList(list *nbcondition.ChangeList) { s.changeList = list }

// Schedule places c on its level's bucket, guarded by the per-cell
// scheduled flag to suppress duplicate inserts within a drain (spec
// §4.4).
func (s *Scheduler) Schedule(c *nbcell.Cell) {
	if c.Scheduled() {
		return
	}
	lvl := c.Level()
	if lvl < 0 {
		lvl = 0
	}
	if lvl >= len(s.buckets) {
		lvl = len(s.buckets) - 1
	}
	c.SetScheduled(true)
	s.buckets[lvl] = append(s.buckets[lvl], c)
	if lvl > s.highWater {
		s.highWater = lvl
	}
}

// QueueAction enqueues a fired rule's action and transitions the rule
// cell Ready -> Scheduled (implements nbcondition.RuleScheduler). It is
// the scheduler-side half of a rule's Alert: rule Logic types implement
// nbcell.Alerter and call this instead of Schedule, per spec §4.3's
// "alert (optional): ... used by rule types to divert scheduling".
//
// Per spec §4.5 ("Double-firing within one react() drain is not
// permitted and produces an error"): if a.Rule is already Scheduled,
// the action is logged as a Logic error and marked Error rather than
// queued a second time.
func (s *Scheduler) QueueAction(a nbcondition.Action) {
	if a.Rule != nil && s.fired[a.Rule] {
		a.Status = nbcondition.ActionError
		if s.log != nil {
			s.log.Err(nberrors.Logicf("rule re-fired while already scheduled").WithTerm(a.Rule.Print()))
		}
		s.actions = append(s.actions, a)
		return
	}
	if a.Rule != nil {
		s.fired[a.Rule] = true
	}
	a.Status = nbcondition.ActionScheduled
	s.actions = append(s.actions, a)
}

// Actions returns the queued actions in priority-then-insertion order
// (spec invariant: "Rule actions fire in level-then-insertion order
// within a drain"), clearing the queue and returning each action's
// rule cell to Ready (spec §4.5's dispatched -> Ready transition).
func (s *Scheduler) Actions() []nbcondition.Action {
	out := make([]nbcondition.Action, len(s.actions))
	copy(out, s.actions)
	// stable sort by priority descending, then original insertion order
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Priority > out[j-1].Priority; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	for _, a := range s.actions {
		if a.Rule != nil {
			delete(s.fired, a.Rule)
		}
	}
	s.actions = s.actions[:0]
	return out
}

// Stats summarizes one React drain for logging (spec §7 diagnostic
// format).
type Stats struct {
	CellsEvaluated int
	ActionsFired   int
	Elapsed        time.Duration
}

// React drains the bucket vector from level 0 upward to quiescence
// (spec §4.4): for each scheduled cell, eval, compare to cached value,
// and on change write the new value and publish. Because subscribers
// always have strictly higher levels (spec invariant 3), publish only
// ever inserts into buckets not yet drained in this pass, so the walk
// terminates once the high-water bucket empties (spec §4.4 quiescence
// guarantee).
func (s *Scheduler) React() (Stats, error) {
	start := time.Now()
	var stats Stats

	for {
		for lvl := 0; lvl <= s.highWater; lvl++ {
			for len(s.buckets[lvl]) > 0 {
				batch := s.buckets[lvl]
				s.buckets[lvl] = nil
				for _, c := range batch {
					c.SetScheduled(false)
					stats.CellsEvaluated++
					old := c.CachedValue()
					next := c.Logic.Eval(c)
					if next == old {
						continue
					}
					c.SetValue(next)
					nbcell.Publish(c, s)
					if c.Level() > s.highWater {
						s.highWater = c.Level()
					}
				}
				// a same-level re-alert raised highWater already handled by
				// the outer loop; buckets[lvl] may have been refilled by a
				// lower-level cell's side effect (permitted by spec §5.1).
			}
		}
		s.highWater = 0
		// The `~=` reset phase runs exactly once per drain, after the
		// bucket vector empties; if the list was non-empty, drain again
		// to propagate any False values it published before React
		// returns (spec's reset
		// boundary pinned to "once per react() drain").
		if s.changeList == nil || !s.changeList.Reset(s) {
			break
		}
	}

	stats.ActionsFired = len(s.actions)
	stats.Elapsed = time.Since(start)
	if s.log != nil {
		s.log.Cycle(stats.CellsEvaluated, stats.ActionsFired, stats.Elapsed)
	}
	return stats, nil
}
