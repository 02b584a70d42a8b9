package nbengine

import (
	"time"

	"nodebrain/internal/nbcondition"
	"nodebrain/internal/nbschedule"
)

// clockAdapter satisfies nbcondition.Clock over a *nbschedule.Clock.
// The two packages each declare their own independent Cancel-only
// interface (nbcondition.TimerHandle, nbschedule.TimerHandle) to stay
// decoupled, so *nbschedule.Clock's At method returns a type distinct
// from what nbcondition.Clock's At signature requires even though both
// interfaces have an identical single-method shape: Go's interface
// satisfaction rule requires a method's declared return type to match
// exactly, not merely structurally, so *nbschedule.Clock cannot be
// handed to nbcondition.ScheduleCondition/Delay directly. This adapter
// is the one place that bridges them; the forwarding return below
// type-checks because an nbschedule.TimerHandle value is assignable to
// an nbcondition.TimerHandle-typed result (both declare exactly
// Cancel()).
type clockAdapter struct {
	clock *nbschedule.Clock
}

func (a clockAdapter) Now() time.Time { return a.clock.Now() }

func (a clockAdapter) At(t time.Time, fire func()) nbcondition.TimerHandle {
	return a.clock.At(t, fire)
}
