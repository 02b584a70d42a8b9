package nbstore

import (
	"context"
	"testing"
	"time"

	"nodebrain/internal/nbengine"
	"nodebrain/internal/nbobject"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAndAll(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Append(ctx, "a", "1"); err != nil {
		t.Fatalf("append a: %v", err)
	}
	if _, err := s.Append(ctx, "b", "?"); err != nil {
		t.Fatalf("append b: %v", err)
	}

	rows, err := s.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Term != "a" || rows[0].Literal != "1" {
		t.Fatalf("rows[0] = %+v, want term=a literal=1", rows[0])
	}
	if rows[1].Term != "b" || rows[1].Literal != "?" {
		t.Fatalf("rows[1] = %+v, want term=b literal=?", rows[1])
	}
}

func TestParseLiteral(t *testing.T) {
	e := nbengine.New(time.Unix(0, 0).UTC(), nil)

	cases := []struct {
		text string
		want nbobject.Object
	}{
		{"?", nbobject.Object(nbobject.Unknown)},
		{"true", nbobject.Object(nbobject.True)},
		{"false", nbobject.Object(nbobject.False)},
		{"1", nbobject.Object(nbobject.True)},
		{"0", nbobject.Object(nbobject.False)},
		{"3.5", e.InternReal(3.5)},
	}
	for _, c := range cases {
		got, err := ParseLiteral(e, c.text)
		if err != nil {
			t.Fatalf("ParseLiteral(%q): %v", c.text, err)
		}
		if got != c.want {
			t.Fatalf("ParseLiteral(%q) = %v, want %v", c.text, got, c.want)
		}
	}

	str, err := ParseLiteral(e, `"hello"`)
	if err != nil {
		t.Fatalf("ParseLiteral(quoted string): %v", err)
	}
	if str != nbobject.Object(e.InternString("hello")) {
		t.Fatalf("ParseLiteral(quoted string) = %v, want interned \"hello\"", str)
	}

	if _, err := ParseLiteral(e, "not-a-literal"); err == nil {
		t.Fatalf("ParseLiteral(garbage) should return a User error")
	}
}

func TestReplayReconstructsState(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Append(ctx, "a", "1"); err != nil {
		t.Fatalf("append a: %v", err)
	}
	if _, err := s.Append(ctx, "b", "1"); err != nil {
		t.Fatalf("append b: %v", err)
	}

	e := nbengine.New(time.Unix(0, 0).UTC(), nil)
	root := e.Root()
	termA, err := e.DefineTerm(root, "a", nbobject.Unknown)
	if err != nil {
		t.Fatalf("predefine a: %v", err)
	}
	termB, err := e.DefineTerm(root, "b", nbobject.Unknown)
	if err != nil {
		t.Fatalf("predefine b: %v", err)
	}

	n, err := Replay(ctx, s, e, root)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if n != 2 {
		t.Fatalf("Replay replayed %d rows, want 2", n)
	}

	if got := termA.Definition(); got != nbobject.Object(nbobject.True) {
		t.Fatalf("a after replay = %v, want True", got)
	}
	if got := termB.Definition(); got != nbobject.Object(nbobject.True) {
		t.Fatalf("b after replay = %v, want True", got)
	}
}
