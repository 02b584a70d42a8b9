package nbtransport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nodebrain/internal/nbcell"
	"nodebrain/internal/nbengine"
	"nodebrain/internal/nbobject"
)

func newTestEngine(t *testing.T) *nbengine.Engine {
	t.Helper()
	return nbengine.New(time.Unix(0, 0).UTC(), nil)
}

// holderLogic mirrors its single operand, used only to keep a cell
// under test enabled the way a rule or a host-held reference would.
type holderLogic struct{}

func (holderLogic) TypeName() string { return "test-holder" }
func (holderLogic) Eval(c *nbcell.Cell) nbobject.Object {
	return nbcell.OperandValue(c.Operand(0))
}
func (holderLogic) Activate(c *nbcell.Cell)   { nbcell.Enable(c.Operand(0), c) }
func (holderLogic) Deactivate(c *nbcell.Cell) { nbcell.Disable(c.Operand(0), c) }

func hold(op nbobject.Object) *nbcell.Cell {
	holder := nbcell.New(holderLogic{}, op)
	nbcell.Enable(op, holder)
	return holder
}

func dialURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestListenerAppliesAssertion(t *testing.T) {
	e := newTestEngine(t)
	root := e.Root()
	a, err := e.DefineTerm(root, "a", nbobject.Unknown)
	if err != nil {
		t.Fatalf("define a: %v", err)
	}

	l := NewListener(e, root, nil)
	srv := httptest.NewServer(http.HandlerFunc(l.serveHTTP))
	defer srv.Close()

	client, err := Dial(dialURL(srv))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	if err := client.Assert("a", "1"); err != nil {
		t.Fatalf("assert: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for a.Definition() != nbobject.Object(nbobject.True) {
		if time.Now().After(deadline) {
			t.Fatalf("a.Definition() = %v after assert, want True", a.Definition())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestListenerBroadcastsFiredActions(t *testing.T) {
	e := newTestEngine(t)
	root := e.Root()
	a, err := e.DefineTerm(root, "a", nbobject.Unknown)
	if err != nil {
		t.Fatalf("define a: %v", err)
	}
	r, err := e.Rule("on", "_", "fired", nil, 0, a)
	if err != nil {
		t.Fatalf("rule: %v", err)
	}
	hold(r)

	l := NewListener(e, root, nil)
	srv := httptest.NewServer(http.HandlerFunc(l.serveHTTP))
	defer srv.Close()

	client, err := Dial(dialURL(srv))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	if err := client.Assert("a", "1"); err != nil {
		t.Fatalf("assert: %v", err)
	}

	client.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	rec, err := client.ReadAction()
	if err != nil {
		t.Fatalf("read action: %v", err)
	}
	if rec.Command != "fired" {
		t.Fatalf("action command = %q, want %q", rec.Command, "fired")
	}
}
