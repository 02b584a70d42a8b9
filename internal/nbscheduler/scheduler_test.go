package nbscheduler

import (
	"testing"

	"nodebrain/internal/nbcell"
	"nodebrain/internal/nbcondition"
	"nodebrain/internal/nbobject"
)

// counterLogic is a test Logic whose value flips each time Eval is
// called, to exercise change-driven publish.
type counterLogic struct{ n int }

func (l *counterLogic) TypeName() string { return "test-counter" }
func (l *counterLogic) Eval(c *nbcell.Cell) nbobject.Object {
	l.n++
	if l.n%2 == 0 {
		return nbobject.Object(nbobject.True)
	}
	return nbobject.Object(nbobject.False)
}
func (l *counterLogic) Activate(c *nbcell.Cell)   {}
func (l *counterLogic) Deactivate(c *nbcell.Cell) {}

func TestReactDrainsLevelOrder(t *testing.T) {
	a := nbcell.New(&counterLogic{})
	b := nbcell.New(&counterLogic{})
	nbcell.RaiseLevel(b, a.Level()+1)

	s := New(nil)
	s.Schedule(b)
	s.Schedule(a)

	stats, err := s.React()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.CellsEvaluated != 2 {
		t.Fatalf("cells evaluated = %d, want 2", stats.CellsEvaluated)
	}
}

func TestScheduleDedupesWithinDrain(t *testing.T) {
	a := nbcell.New(&counterLogic{})
	s := New(nil)
	s.Schedule(a)
	s.Schedule(a) // duplicate insert must be suppressed
	if len(s.buckets[0]) != 1 {
		t.Fatalf("bucket[0] len = %d, want 1", len(s.buckets[0]))
	}
}

func TestQueueActionOrdersByPriorityThenInsertion(t *testing.T) {
	s := New(nil)
	s.QueueAction(nbcondition.Action{Context: "c1", Priority: 0})
	s.QueueAction(nbcondition.Action{Context: "c2", Priority: 5})
	s.QueueAction(nbcondition.Action{Context: "c3", Priority: 5})
	s.QueueAction(nbcondition.Action{Context: "c4", Priority: 2})

	got := s.Actions()
	want := []string{"c2", "c3", "c4", "c1"}
	if len(got) != len(want) {
		t.Fatalf("got %d actions, want %d", len(got), len(want))
	}
	for i, ctx := range want {
		if got[i].Context != ctx {
			t.Fatalf("action[%d].Context = %q, want %q", i, got[i].Context, ctx)
		}
	}
}

func TestDoubleFireWhileScheduledIsError(t *testing.T) {
	rule := nbcell.New(&counterLogic{})
	s := New(nil)

	s.QueueAction(nbcondition.Action{Rule: rule, Context: "c1"})
	s.QueueAction(nbcondition.Action{Rule: rule, Context: "c1-again"})

	got := s.Actions()
	if got[0].Status != nbcondition.ActionScheduled {
		t.Fatalf("first fire status = %v, want Scheduled", got[0].Status)
	}
	if got[1].Status != nbcondition.ActionError {
		t.Fatalf("re-fire status = %v, want Error", got[1].Status)
	}
}

func TestActionsReturnsRuleToReadyAfterDispatch(t *testing.T) {
	rule := nbcell.New(&counterLogic{})
	s := New(nil)
	s.QueueAction(nbcondition.Action{Rule: rule, Context: "c1"})
	s.Actions()

	// After dispatch, the rule may fire again without being flagged an
	// error.
	s.QueueAction(nbcondition.Action{Rule: rule, Context: "c2"})
	got := s.Actions()
	if got[0].Status != nbcondition.ActionScheduled {
		t.Fatalf("status after re-arming = %v, want Scheduled", got[0].Status)
	}
}
