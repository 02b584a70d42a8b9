package nbcondition

import (
	"testing"

	"nodebrain/internal/nbcell"
	"nodebrain/internal/nbobject"
)

type fakeScheduler struct{ scheduled []*nbcell.Cell }

func (f *fakeScheduler) Schedule(c *nbcell.Cell) { f.scheduled = append(f.scheduled, c) }

func unk() nbobject.Object { return nbobject.Object(nbobject.Unknown) }
func tru() nbobject.Object { return nbobject.Object(nbobject.True) }
func fls() nbobject.Object { return nbobject.Object(nbobject.False) }

func enableAndValue(t *testing.T, c *nbcell.Cell) nbobject.Object {
	t.Helper()
	holder := nbcell.New(passthrough{}, c)
	nbcell.Enable(c, holder)
	return nbcell.OperandValue(c)
}

type passthrough struct{}

func (passthrough) TypeName() string { return "test-pass" }
func (passthrough) Eval(c *nbcell.Cell) nbobject.Object {
	return nbcell.OperandValue(c.Operand(0))
}
func (passthrough) Activate(c *nbcell.Cell)   {}
func (passthrough) Deactivate(c *nbcell.Cell) {}

func TestNotInverts(t *testing.T) {
	cases := []struct {
		in, want nbobject.Object
	}{{tru(), fls()}, {fls(), tru()}, {unk(), unk()}}
	for _, tc := range cases {
		c := Not(tc.in)
		if got := enableAndValue(t, c); got != tc.want {
			t.Fatalf("Not(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestAndTruthTable(t *testing.T) {
	vals := []nbobject.Object{tru(), fls(), unk()}
	want := map[[2]nbobject.Object]nbobject.Object{
		{tru(), tru()}: tru(), {tru(), fls()}: fls(), {tru(), unk()}: unk(),
		{fls(), tru()}: fls(), {fls(), fls()}: fls(), {fls(), unk()}: fls(),
		{unk(), tru()}: unk(), {unk(), fls()}: fls(), {unk(), unk()}: unk(),
	}
	for _, l := range vals {
		for _, r := range vals {
			c := And(l, r)
			if got := enableAndValue(t, c); got != want[[2]nbobject.Object{l, r}] {
				t.Fatalf("And(%v,%v) = %v, want %v", l, r, got, want[[2]nbobject.Object{l, r}])
			}
		}
	}
}

func TestXorTruthTable(t *testing.T) {
	cases := []struct{ l, r, want nbobject.Object }{
		{tru(), fls(), tru()}, {fls(), tru(), tru()},
		{tru(), tru(), fls()}, {fls(), fls(), fls()},
		{unk(), tru(), unk()}, {unk(), fls(), unk()},
	}
	for _, tc := range cases {
		c := Xor(tc.l, tc.r)
		if got := enableAndValue(t, c); got != tc.want {
			t.Fatalf("Xor(%v,%v) = %v, want %v", tc.l, tc.r, got, tc.want)
		}
	}
}

func TestLazyAndShortCircuitsRightOnFalseLeft(t *testing.T) {
	right := nbcell.New(passthrough{}, tru())
	c := LazyAnd(fls(), right)
	enableAndValue(t, c)
	if right.SubscriberCount() != 0 {
		t.Fatal("lazy-and with false left must never enable right")
	}
}

func TestLazyAndEnablesRightOnTrueLeft(t *testing.T) {
	right := nbcell.New(passthrough{}, tru())
	c := LazyAnd(tru(), right)
	got := enableAndValue(t, c)
	if got != tru() {
		t.Fatalf("LazyAnd(true,true) = %v, want true", got)
	}
	if right.SubscriberCount() != 1 {
		t.Fatal("lazy-and with true left must enable right")
	}
}

func TestAndMonitorGuardsOnLeftTrue(t *testing.T) {
	right := nbcell.New(passthrough{}, tru())
	c := AndMonitor(fls(), right)
	got := enableAndValue(t, c)
	if got != unk() {
		t.Fatalf("AndMonitor with false left = %v, want Unknown", got)
	}
	if right.SubscriberCount() != 0 {
		t.Fatal("AndMonitor guard off must not subscribe right")
	}
}

func TestAndCaptureNeverSubscribesRight(t *testing.T) {
	right := nbcell.New(passthrough{}, tru())
	c := AndCapture(tru(), right)
	got := enableAndValue(t, c)
	if got != tru() {
		t.Fatalf("AndCapture guard-on one-shot read = %v, want True", got)
	}
	if right.SubscriberCount() != 0 {
		t.Fatal("AndCapture must never subscribe its right operand")
	}
}

func TestFlipFlopStartsUnknown(t *testing.T) {
	c := FlipFlop(unk(), unk())
	holder := nbcell.New(passthrough{}, c)
	nbcell.Enable(c, holder)
	if c.CachedValue() != unk() {
		t.Fatalf("flip-flop initial value = %v, want Unknown", c.CachedValue())
	}
}

func TestRelationalEquality(t *testing.T) {
	heap := nbobject.NewHeap()
	five := heap.InternReal(5)
	five2 := heap.InternReal(5)
	six := heap.InternReal(6)

	if got := enableAndValue(t, Eq(five, five2)); got != tru() {
		t.Fatalf("Eq(5,5) = %v, want True", got)
	}
	if got := enableAndValue(t, Eq(five, six)); got != fls() {
		t.Fatalf("Eq(5,6) = %v, want False", got)
	}
	if got := enableAndValue(t, Lt(five, six)); got != tru() {
		t.Fatalf("Lt(5,6) = %v, want True", got)
	}
}

func TestRelationalTypeMismatchIsUnknownForOrdering(t *testing.T) {
	heap := nbobject.NewHeap()
	five := heap.InternReal(5)
	s := heap.InternString("five")
	if got := enableAndValue(t, Lt(five, s)); got != unk() {
		t.Fatalf("Lt(real,string) = %v, want Unknown", got)
	}
}

func TestMatchCondition(t *testing.T) {
	heap := nbobject.NewHeap()
	s := heap.InternString("hello world")
	re, err := heap.CompileRegex("^hello")
	if err != nil {
		t.Fatal(err)
	}
	if got := enableAndValue(t, Match(s, re)); got != tru() {
		t.Fatalf("Match = %v, want True", got)
	}
}

func TestMatchOnNonStringIsFalse(t *testing.T) {
	heap := nbobject.NewHeap()
	re, err := heap.CompileRegex("^hello")
	if err != nil {
		t.Fatal(err)
	}
	if got := enableAndValue(t, Match(tru(), re)); got != fls() {
		t.Fatalf("Match(non-string) = %v, want False", got)
	}
}

func TestDefaultOperator(t *testing.T) {
	heap := nbobject.NewHeap()
	five := heap.InternReal(5)
	if got := enableAndValue(t, Default(unk(), five)); got != nbobject.Object(five) {
		t.Fatalf("Default(Unknown,5) = %v, want 5", got)
	}
	if got := enableAndValue(t, Default(tru(), five)); got != tru() {
		t.Fatalf("Default(True,5) = %v, want True", got)
	}
}
